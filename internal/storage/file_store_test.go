package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	store.now = func() time.Time { return fixedNow }

	exerciseStore(t, store)

	if _, err := os.Stat(filepath.Join(dir, "conversations", "test", "test_20250314_092653.json")); err != nil {
		t.Fatalf("test conversation not in test dir: %v", err)
	}
}

func TestFileStoreSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "conversations", "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Save(context.Background(), sampleRecord(false, 10, "")); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := store.List(context.Background(), false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected broken file to be skipped, got %d entries", len(list))
	}
}
