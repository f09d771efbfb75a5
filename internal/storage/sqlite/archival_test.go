// ABOUTME: Tests for archival entry storage operations
// ABOUTME: Verifies append-only inserts and LIKE-based search
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/engram/internal/models"
)

func TestArchivalInsertAndGet(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewArchivalStore(db)
	entry := &models.ArchivalEntry{
		ID:        "archival_1700000000000_abcd1234",
		Content:   "Historical fact",
		CreatedAt: time.Now(),
		Metadata:  map[string]interface{}{"category": "history"},
	}

	if err := store.Insert(entry); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	retrieved, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if retrieved == nil {
		t.Fatal("Get() returned nil")
	}
	if retrieved.Content != "Historical fact" {
		t.Errorf("Content = %q, want Historical fact", retrieved.Content)
	}
	if retrieved.Metadata["category"] != "history" {
		t.Errorf("Metadata = %v, want category=history", retrieved.Metadata)
	}
	if retrieved.VectorID != "" {
		t.Errorf("VectorID = %q, want empty", retrieved.VectorID)
	}
}

func TestArchivalSearch(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewArchivalStore(db)
	base := time.Now()

	entries := []models.ArchivalEntry{
		{ID: "archival_1_a", Content: "Moved to Chicago in 2019", CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "archival_2_b", Content: "Started a new project", CreatedAt: base.Add(-time.Hour)},
		{ID: "archival_3_c", Content: "Chicago has great pizza", CreatedAt: base},
	}
	for i := range entries {
		if err := store.Insert(&entries[i]); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	results, err := store.Search("Chicago", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	// Newest first
	if results[0].ID != "archival_3_c" || results[1].ID != "archival_1_a" {
		t.Errorf("Search() order = [%s, %s], want newest first", results[0].ID, results[1].ID)
	}

	limited, err := store.Search("Chicago", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Search(limit=1) returned %d results, want 1", len(limited))
	}
}

func TestArchivalListAll(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewArchivalStore(db)
	base := time.Now()

	for i, id := range []string{"archival_1_a", "archival_2_b"} {
		entry := &models.ArchivalEntry{
			ID:        id,
			Content:   "entry",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Insert(entry); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	all, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAll() returned %d entries, want 2", len(all))
	}
	if all[0].ID != "archival_2_b" {
		t.Errorf("ListAll()[0].ID = %q, want archival_2_b (newest first)", all[0].ID)
	}
}
