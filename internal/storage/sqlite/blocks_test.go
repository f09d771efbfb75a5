// ABOUTME: Tests for block storage operations
// ABOUTME: Verifies insert, lookup, listing, update, and delete
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/engram/internal/models"
)

func newTestBlock(id string) *models.Block {
	return &models.Block{
		ID:        id,
		Label:     "Test Block",
		Content:   "Test content",
		Type:      models.BlockTypeCore,
		UpdatedAt: time.Now(),
		Metadata:  map[string]interface{}{},
	}
}

func TestBlockInsertAndGet(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	block := newTestBlock("test-block")

	if err := store.Insert(block); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	retrieved, err := store.Get("test-block")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if retrieved == nil {
		t.Fatal("Get() returned nil")
	}
	if retrieved.ID != "test-block" {
		t.Errorf("ID = %q, want test-block", retrieved.ID)
	}
	if retrieved.Label != "Test Block" {
		t.Errorf("Label = %q, want Test Block", retrieved.Label)
	}
	if retrieved.Content != "Test content" {
		t.Errorf("Content = %q, want Test content", retrieved.Content)
	}
	if retrieved.Type != models.BlockTypeCore {
		t.Errorf("Type = %q, want core", retrieved.Type)
	}
	if retrieved.Metadata == nil || len(retrieved.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty map", retrieved.Metadata)
	}
}

func TestBlockGetMissing(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	block, err := store.Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if block != nil {
		t.Errorf("Get(missing) = %v, want nil", block)
	}
}

func TestBlockListByType(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)

	core := newTestBlock("core-1")
	archival := newTestBlock("archival-1")
	archival.Type = models.BlockTypeArchival

	if err := store.Insert(core); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(archival); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	coreBlocks, err := store.ListByType(models.BlockTypeCore)
	if err != nil {
		t.Fatalf("ListByType() error = %v", err)
	}
	if len(coreBlocks) != 1 || coreBlocks[0].ID != "core-1" {
		t.Errorf("ListByType(core) = %v, want [core-1]", coreBlocks)
	}

	all, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll() returned %d blocks, want 2", len(all))
	}
}

func TestBlockListOrder(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	base := time.Now()

	older := newTestBlock("older")
	older.UpdatedAt = base.Add(-time.Hour)
	newer := newTestBlock("newer")
	newer.UpdatedAt = base

	if err := store.Insert(older); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(newer); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	all, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if all[0].ID != "newer" || all[1].ID != "older" {
		t.Errorf("ListAll() order = [%s, %s], want [newer, older]", all[0].ID, all[1].ID)
	}
}

func TestBlockUpdateContent(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	block := newTestBlock("b")
	if err := store.Insert(block); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	later := block.UpdatedAt.Add(time.Minute)
	if err := store.UpdateContent("b", "New content", later); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}

	retrieved, err := store.Get("b")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if retrieved.Content != "New content" {
		t.Errorf("Content = %q, want New content", retrieved.Content)
	}
	if retrieved.UpdatedAt.UnixMilli() != later.UnixMilli() {
		t.Errorf("UpdatedAt = %d, want %d", retrieved.UpdatedAt.UnixMilli(), later.UnixMilli())
	}
	// Type is immutable
	if retrieved.Type != models.BlockTypeCore {
		t.Errorf("Type changed to %q", retrieved.Type)
	}
}

func TestBlockDelete(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewBlockStore(db)
	if err := store.Insert(newTestBlock("doomed")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Delete("doomed"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	block, err := store.Get("doomed")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if block != nil {
		t.Error("block still present after Delete()")
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}
