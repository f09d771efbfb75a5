// ABOUTME: Tests for summary ladder storage operations
// ABOUTME: Verifies inserts, consolidation marking, and context queries
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/engram/internal/models"
)

func insertSummary(t *testing.T, store *SummaryStore, text string, level int, createdAt time.Time) int64 {
	t.Helper()
	id, err := store.Insert(&models.Summary{
		Summary:      text,
		Level:        level,
		MessageCount: 20,
		CreatedAt:    createdAt,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	return id
}

func TestSummaryInsertReturnsID(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSummaryStore(db)
	first := insertSummary(t, store, "first", 0, time.Now())
	second := insertSummary(t, store, "second", 0, time.Now())

	if first == 0 || second == 0 {
		t.Errorf("Insert() ids = %d, %d, want non-zero", first, second)
	}
	if second <= first {
		t.Errorf("ids not increasing: %d then %d", first, second)
	}

	summary, err := store.Get(first)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if summary == nil || summary.Summary != "first" {
		t.Errorf("Get(%d) = %v, want first", first, summary)
	}
	if summary.Consolidated() {
		t.Error("new summary already consolidated")
	}
}

func TestSummaryUnconsolidatedOrderAndLimit(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSummaryStore(db)
	base := time.Now()

	insertSummary(t, store, "newest", 0, base)
	insertSummary(t, store, "oldest", 0, base.Add(-2*time.Hour))
	insertSummary(t, store, "middle", 0, base.Add(-time.Hour))
	insertSummary(t, store, "other level", 1, base)

	summaries, err := store.Unconsolidated(0, 10)
	if err != nil {
		t.Fatalf("Unconsolidated() error = %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Unconsolidated() returned %d, want 3", len(summaries))
	}
	// Oldest first
	want := []string{"oldest", "middle", "newest"}
	for i, text := range want {
		if summaries[i].Summary != text {
			t.Errorf("summaries[%d] = %q, want %q", i, summaries[i].Summary, text)
		}
	}

	limited, err := store.Unconsolidated(0, 2)
	if err != nil {
		t.Fatalf("Unconsolidated() error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Unconsolidated(limit=2) returned %d, want 2", len(limited))
	}
}

func TestSummaryMarkConsolidated(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSummaryStore(db)
	a := insertSummary(t, store, "a", 0, time.Now())
	b := insertSummary(t, store, "b", 0, time.Now())
	parent := insertSummary(t, store, "parent", 1, time.Now())

	if err := store.MarkConsolidated([]int64{a, b}, parent); err != nil {
		t.Fatalf("MarkConsolidated() error = %v", err)
	}

	remaining, err := store.Unconsolidated(0, 10)
	if err != nil {
		t.Fatalf("Unconsolidated() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Unconsolidated() returned %d after marking, want 0", len(remaining))
	}

	summary, err := store.Get(a)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if summary.ParentSummaryID == nil || *summary.ParentSummaryID != parent {
		t.Errorf("ParentSummaryID = %v, want %d", summary.ParentSummaryID, parent)
	}
}

func TestSummaryRecentBase(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSummaryStore(db)
	base := time.Now()
	for i := 0; i < 5; i++ {
		insertSummary(t, store, "s", 0, base.Add(time.Duration(i)*time.Minute))
	}

	recent, err := store.RecentBase(3)
	if err != nil {
		t.Fatalf("RecentBase() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentBase(3) returned %d, want 3", len(recent))
	}
	if !recent[0].CreatedAt.After(recent[2].CreatedAt) {
		t.Error("RecentBase() not newest first")
	}
}

func TestSummaryTopRecursive(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSummaryStore(db)
	base := time.Now()

	insertSummary(t, store, "level 1 old", 1, base.Add(-time.Hour))
	insertSummary(t, store, "level 1 new", 1, base)
	insertSummary(t, store, "level 2", 2, base.Add(-2*time.Hour))
	insertSummary(t, store, "base", 0, base)

	top, err := store.TopRecursive(2)
	if err != nil {
		t.Fatalf("TopRecursive() error = %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("TopRecursive(2) returned %d, want 2", len(top))
	}
	// Highest level first, then newest
	if top[0].Summary != "level 2" {
		t.Errorf("top[0] = %q, want level 2", top[0].Summary)
	}
	if top[1].Summary != "level 1 new" {
		t.Errorf("top[1] = %q, want level 1 new", top[1].Summary)
	}
}
