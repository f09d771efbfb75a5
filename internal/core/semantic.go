// ABOUTME: Semantic index over block and archival embeddings
// ABOUTME: Cosine ranking with threshold filtering and a batch ensure pass
package core

import (
	"log"
	"sort"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

// BlockMatch pairs a block with its similarity score
type BlockMatch struct {
	Block models.Block
	Score float64
}

// ArchivalMatch pairs an archival entry with its similarity score
type ArchivalMatch struct {
	Entry models.ArchivalEntry
	Score float64
}

// SemanticIndex ranks stored content against a query embedding
type SemanticIndex struct {
	embeddings *sqlite.EmbeddingStore
	embedder   Embedder
}

// NewSemanticIndex creates a SemanticIndex. A nil embedder leaves only the
// ensure/search operations failing with EmbeddingUnavailableError.
func NewSemanticIndex(embeddings *sqlite.EmbeddingStore, embedder Embedder) *SemanticIndex {
	return &SemanticIndex{
		embeddings: embeddings,
		embedder:   embedder,
	}
}

// EnsureBlockEmbeddings generates and stores an embedding for every block
// that lacks one. Per-item failures are logged and skipped; the count of
// successful generations is returned.
func (idx *SemanticIndex) EnsureBlockEmbeddings(blocks []models.Block) (int, error) {
	if idx.embedder == nil {
		return 0, &EmbeddingUnavailableError{}
	}

	stored, err := idx.embeddings.LoadAllBlocks()
	if err != nil {
		return 0, &StorageError{Op: "load block embeddings", Err: err}
	}

	generated := 0
	for _, block := range blocks {
		if _, ok := stored[block.ID]; ok {
			continue
		}
		vector, err := idx.embedder.GenerateEmbedding(block.Content)
		if err != nil {
			log.Printf("Warning: failed to embed block %s: %v", block.ID, err)
			continue
		}
		if err := idx.embeddings.SaveBlock(block.ID, vector); err != nil {
			log.Printf("Warning: failed to store embedding for block %s: %v", block.ID, err)
			continue
		}
		generated++
	}

	return generated, nil
}

// SearchBlocks ranks the given blocks against the query. Blocks without a
// stored embedding are silently skipped, never scored as zero. Ties keep
// the input order of blocks.
func (idx *SemanticIndex) SearchBlocks(query string, blocks []models.Block, limit int, threshold float64) ([]BlockMatch, error) {
	queryVector, err := idx.embedQuery(query)
	if err != nil {
		return nil, err
	}

	stored, err := idx.embeddings.LoadAllBlocks()
	if err != nil {
		return nil, &StorageError{Op: "load block embeddings", Err: err}
	}

	var matches []BlockMatch
	for _, block := range blocks {
		vector, ok := stored[block.ID]
		if !ok {
			continue
		}
		score, err := sqlite.CosineSimilarity(queryVector, vector)
		if err != nil {
			// A stale row from an older embedding model; skip it
			log.Printf("Warning: skipping embedding for block %s: %v", block.ID, err)
			continue
		}
		if score >= threshold {
			matches = append(matches, BlockMatch{Block: block, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// SearchArchival ranks the given archival entries against the query with
// the same contract as SearchBlocks.
func (idx *SemanticIndex) SearchArchival(query string, entries []models.ArchivalEntry, limit int, threshold float64) ([]ArchivalMatch, error) {
	queryVector, err := idx.embedQuery(query)
	if err != nil {
		return nil, err
	}

	stored, err := idx.embeddings.LoadAllArchival()
	if err != nil {
		return nil, &StorageError{Op: "load archival embeddings", Err: err}
	}

	var matches []ArchivalMatch
	for _, entry := range entries {
		vector, ok := stored[entry.ID]
		if !ok {
			continue
		}
		score, err := sqlite.CosineSimilarity(queryVector, vector)
		if err != nil {
			log.Printf("Warning: skipping embedding for archival entry %s: %v", entry.ID, err)
			continue
		}
		if score >= threshold {
			matches = append(matches, ArchivalMatch{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// embedQuery embeds the search query, mapping any failure to
// EmbeddingUnavailableError so callers can fall back to substring search.
func (idx *SemanticIndex) embedQuery(query string) ([]float64, error) {
	if idx.embedder == nil {
		return nil, &EmbeddingUnavailableError{}
	}
	vector, err := idx.embedder.GenerateEmbedding(query)
	if err != nil {
		return nil, &EmbeddingUnavailableError{Err: err}
	}
	return vector, nil
}
