// ABOUTME: Tests for the semantic index search and ensure pass
// ABOUTME: Verifies threshold filtering, ordering, and unavailable fallback
package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

func newSemanticEnv(t *testing.T, embedder Embedder) (*SemanticIndex, *sqlite.EmbeddingStore) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := sqlite.NewEmbeddingStore(db)
	return NewSemanticIndex(store, embedder), store
}

func testBlock(id string) models.Block {
	return models.Block{
		ID:        id,
		Label:     id,
		Content:   "content of " + id,
		Type:      models.BlockTypeCore,
		UpdatedAt: time.Now(),
	}
}

func TestSearchBlocksRanksByScore(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"query": {1, 0, 0},
	}}
	index, store := newSemanticEnv(t, embedder)

	// close is nearly parallel to the query, far is orthogonal
	if err := store.SaveBlock("close", []float64{0.9, 0.1, 0}); err != nil {
		t.Fatalf("SaveBlock() error = %v", err)
	}
	if err := store.SaveBlock("mid", []float64{0.5, 0.5, 0}); err != nil {
		t.Fatalf("SaveBlock() error = %v", err)
	}
	if err := store.SaveBlock("far", []float64{0, 1, 0}); err != nil {
		t.Fatalf("SaveBlock() error = %v", err)
	}

	blocks := []models.Block{testBlock("far"), testBlock("mid"), testBlock("close")}
	matches, err := index.SearchBlocks("query", blocks, 5, 0.5)
	if err != nil {
		t.Fatalf("SearchBlocks() error = %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("SearchBlocks() returned %d matches, want 2 (far is under threshold)", len(matches))
	}
	if matches[0].Block.ID != "close" || matches[1].Block.ID != "mid" {
		t.Errorf("order = [%s, %s], want [close, mid]", matches[0].Block.ID, matches[1].Block.ID)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not descending: %v then %v", matches[0].Score, matches[1].Score)
	}
}

func TestSearchBlocksSkipsMissingEmbeddings(t *testing.T) {
	embedder := &stubEmbedder{}
	index, store := newSemanticEnv(t, embedder)

	if err := store.SaveBlock("embedded", []float64{1, 0, 0}); err != nil {
		t.Fatalf("SaveBlock() error = %v", err)
	}

	blocks := []models.Block{testBlock("embedded"), testBlock("never-embedded")}
	matches, err := index.SearchBlocks("anything", blocks, 5, 0.0)
	if err != nil {
		t.Fatalf("SearchBlocks() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Block.ID != "embedded" {
		t.Errorf("matches = %v, want only the embedded block", matches)
	}
}

func TestSearchBlocksLimit(t *testing.T) {
	embedder := &stubEmbedder{}
	index, store := newSemanticEnv(t, embedder)

	var blocks []models.Block
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("b%d", i)
		if err := store.SaveBlock(id, []float64{1, 0, 0}); err != nil {
			t.Fatalf("SaveBlock() error = %v", err)
		}
		blocks = append(blocks, testBlock(id))
	}

	matches, err := index.SearchBlocks("anything", blocks, 2, 0.0)
	if err != nil {
		t.Fatalf("SearchBlocks() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("SearchBlocks(limit=2) returned %d matches", len(matches))
	}
	// Equal scores keep input order
	if matches[0].Block.ID != "b0" || matches[1].Block.ID != "b1" {
		t.Errorf("tie-break order = [%s, %s], want [b0, b1]", matches[0].Block.ID, matches[1].Block.ID)
	}
}

func TestSearchBlocksUnavailableEmbedder(t *testing.T) {
	index, _ := newSemanticEnv(t, nil)

	_, err := index.SearchBlocks("query", []models.Block{testBlock("b")}, 5, 0.5)
	var unavailable *EmbeddingUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want EmbeddingUnavailableError", err)
	}

	failing := &stubEmbedder{err: fmt.Errorf("timeout")}
	index2, _ := newSemanticEnv(t, failing)
	_, err = index2.SearchBlocks("query", []models.Block{testBlock("b")}, 5, 0.5)
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want EmbeddingUnavailableError", err)
	}
}

func TestEnsureBlockEmbeddings(t *testing.T) {
	embedder := &stubEmbedder{}
	index, store := newSemanticEnv(t, embedder)

	if err := store.SaveBlock("already", []float64{1, 0, 0}); err != nil {
		t.Fatalf("SaveBlock() error = %v", err)
	}

	blocks := []models.Block{testBlock("already"), testBlock("new-1"), testBlock("new-2")}
	generated, err := index.EnsureBlockEmbeddings(blocks)
	if err != nil {
		t.Fatalf("EnsureBlockEmbeddings() error = %v", err)
	}
	if generated != 2 {
		t.Errorf("generated = %d, want 2", generated)
	}

	stored, _ := store.LoadAllBlocks()
	if len(stored) != 3 {
		t.Errorf("stored embeddings = %d, want 3", len(stored))
	}
}

func TestEnsureBlockEmbeddingsContinuesOnFailure(t *testing.T) {
	// Fails every generation; partial work already stored must remain valid
	embedder := &stubEmbedder{err: fmt.Errorf("unreachable")}
	index, store := newSemanticEnv(t, embedder)

	generated, err := index.EnsureBlockEmbeddings([]models.Block{testBlock("a"), testBlock("b")})
	if err != nil {
		t.Fatalf("EnsureBlockEmbeddings() error = %v", err)
	}
	if generated != 0 {
		t.Errorf("generated = %d, want 0", generated)
	}

	stored, _ := store.LoadAllBlocks()
	if len(stored) != 0 {
		t.Errorf("stored embeddings = %d, want 0", len(stored))
	}
}

func TestSearchArchivalMatches(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"query": {0, 1, 0},
	}}
	index, store := newSemanticEnv(t, embedder)

	if err := store.SaveArchival("archival_1_a", []float64{0, 1, 0}); err != nil {
		t.Fatalf("SaveArchival() error = %v", err)
	}

	entries := []models.ArchivalEntry{
		{ID: "archival_1_a", Content: "match", CreatedAt: time.Now()},
		{ID: "archival_2_b", Content: "no embedding", CreatedAt: time.Now()},
	}
	matches, err := index.SearchArchival("query", entries, 5, 0.5)
	if err != nil {
		t.Fatalf("SearchArchival() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Entry.ID != "archival_1_a" {
		t.Errorf("matches = %v, want the embedded entry", matches)
	}
}
