package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"maumcare/internal/models"
)

// FileStore keeps one JSON document per conversation under
// <dataDir>/conversations and <dataDir>/conversations/test.
type FileStore struct {
	root string
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileStore creates the partition directories below dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	root := filepath.Join(dataDir, "conversations")
	for _, dir := range []string{root, filepath.Join(root, "test")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return &FileStore{root: root, now: time.Now}, nil
}

func (s *FileStore) dir(isTest bool) string {
	if isTest {
		return filepath.Join(s.root, "test")
	}
	return s.root
}

func (s *FileStore) Save(ctx context.Context, record *models.ConversationRecord) (string, error) {
	if record == nil {
		return "", errors.New("record required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dir := s.dir(record.IsTest)
	for n := 0; n < maxSuffix; n++ {
		key := keyCandidate(now, record.IsTest, n)
		f, err := os.OpenFile(filepath.Join(dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create conversation file: %w", err)
		}
		stamp(record, now, key)
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("encode conversation: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close conversation file: %w", err)
		}
		return key, nil
	}
	return "", fmt.Errorf("no free key for %s", now.Format(keyLayout))
}

func (s *FileStore) List(ctx context.Context, includeTest bool) ([]models.ConversationSummary, error) {
	out, err := s.listDir(ctx, false)
	if err != nil {
		return nil, err
	}
	if includeTest {
		tests, err := s.listDir(ctx, true)
		if err != nil {
			return nil, err
		}
		out = append(out, tests...)
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) listDir(ctx context.Context, isTest bool) ([]models.ConversationSummary, error) {
	entries, err := os.ReadDir(s.dir(isTest))
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	var out []models.ConversationSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), keyExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := s.read(filepath.Join(s.dir(isTest), entry.Name()))
		if err != nil {
			log.Printf("conversation file read failed (%s): %v", entry.Name(), err)
			continue
		}
		record.Key = entry.Name()
		record.IsTest = isTest
		out = append(out, summarize(record))
	}
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, key string, isTest bool) (*models.ConversationRecord, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	isTest = IsTestKey(key, isTest)
	record, err := s.read(filepath.Join(s.dir(isTest), key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record.Key = key
	record.IsTest = isTest
	return record, nil
}

func (s *FileStore) read(path string) (*models.ConversationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record models.ConversationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &record, nil
}
