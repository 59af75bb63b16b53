package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"maumcare/internal/models"
)

// SQLStore keeps conversations in the conversations table. The full record is
// stored as JSON next to a few queryable columns.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
	mu     sync.Mutex
}

// NewSQLStore wraps a migrated database.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: NormalizeDriver(driver), now: time.Now}
}

func (s *SQLStore) q(query string) string {
	return rebind(s.driver, query)
}

func (s *SQLStore) Save(ctx context.Context, record *models.ConversationRecord) (string, error) {
	if record == nil {
		return "", errors.New("record required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var key string
	for n := 0; ; n++ {
		if n >= maxSuffix {
			return "", fmt.Errorf("no free key for %s", now.Format(keyLayout))
		}
		candidate := keyCandidate(now, record.IsTest, n)
		taken, err := s.exists(ctx, candidate, record.IsTest)
		if err != nil {
			return "", err
		}
		if !taken {
			key = candidate
			break
		}
	}

	stamp(record, now, key)
	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode conversation: %w", err)
	}
	summary := summarize(record)
	_, err = s.db.ExecContext(ctx,
		s.q(`INSERT INTO conversations (conv_key, is_test, created_at, risk_score, distress, summary, payload) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		key, record.IsTest, now.UTC(), summary.RiskScore, string(summary.Distress), summary.Summary, string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}
	return key, nil
}

func (s *SQLStore) exists(ctx context.Context, key string, isTest bool) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(1) FROM conversations WHERE conv_key = ? AND is_test = ?`),
		key, isTest,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check conversation key: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) List(ctx context.Context, includeTest bool) ([]models.ConversationSummary, error) {
	out, err := s.listPartition(ctx, false)
	if err != nil {
		return nil, err
	}
	if includeTest {
		tests, err := s.listPartition(ctx, true)
		if err != nil {
			return nil, err
		}
		out = append(out, tests...)
	}
	sortSummaries(out)
	return out, nil
}

func (s *SQLStore) listPartition(ctx context.Context, isTest bool) ([]models.ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT conv_key, payload FROM conversations WHERE is_test = ? ORDER BY conv_key DESC`),
		isTest,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.ConversationSummary
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		var record models.ConversationRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			log.Printf("conversation row decode failed (%s): %v", key, err)
			continue
		}
		record.Key = key
		record.IsTest = isTest
		out = append(out, summarize(&record))
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, key string, isTest bool) (*models.ConversationRecord, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	isTest = IsTestKey(key, isTest)
	var payload string
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT payload FROM conversations WHERE conv_key = ? AND is_test = ?`),
		key, isTest,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	var record models.ConversationRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	record.Key = key
	record.IsTest = isTest
	return &record, nil
}
