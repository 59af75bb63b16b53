package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"maumcare/internal/models"
)

var (
	ErrNotFound   = errors.New("conversation not found")
	ErrInvalidKey = errors.New("invalid conversation key")
)

const (
	// TestPrefix marks keys of the test partition.
	TestPrefix = "test_"
	// NoSummary is listed for conversations that ended without a report.
	NoSummary = "대화 요약 없음"

	keyLayout = "20060102_150405"
	keyExt    = ".json"
	maxSuffix = 1000
)

// Store archives conversations in a production and a test partition.
type Store interface {
	Save(ctx context.Context, record *models.ConversationRecord) (string, error)
	List(ctx context.Context, includeTest bool) ([]models.ConversationSummary, error)
	Get(ctx context.Context, key string, isTest bool) (*models.ConversationRecord, error)
}

// keyCandidate returns the n-th key for a save at t; n > 0 adds a numeric suffix.
func keyCandidate(t time.Time, isTest bool, n int) string {
	base := t.Format(keyLayout)
	if isTest {
		base = TestPrefix + base
	}
	if n > 0 {
		base = fmt.Sprintf("%s_%d", base, n)
	}
	return base + keyExt
}

// ValidateKey rejects keys that could escape the partition.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// IsTestKey reports whether key addresses the test partition.
func IsTestKey(key string, isTest bool) bool {
	return isTest || strings.HasPrefix(key, TestPrefix)
}

func stamp(record *models.ConversationRecord, now time.Time, key string) {
	record.Key = key
	record.Timestamp = now
	record.Date = now.Format("2006-01-02")
	record.Time = now.Format("15:04:05")
}

func summarize(record *models.ConversationRecord) models.ConversationSummary {
	summary := NoSummary
	if record.EndReport != nil && record.EndReport.Summary != "" {
		summary = record.EndReport.Summary
	}
	distress := record.Analysis.Distress
	if distress == "" {
		distress = models.DistressLow
	}
	return models.ConversationSummary{
		Key:       record.Key,
		Date:      record.Date,
		Time:      record.Time,
		Timestamp: record.Timestamp,
		Summary:   summary,
		RiskScore: record.Analysis.RiskScore,
		Distress:  distress,
		IsTest:    record.IsTest,
	}
}

// sortSummaries orders production before test, newest first within each.
func sortSummaries(list []models.ConversationSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsTest != list[j].IsTest {
			return !list[i].IsTest
		}
		return list[i].Key > list[j].Key
	})
}
