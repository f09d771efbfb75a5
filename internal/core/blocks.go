// ABOUTME: Block manager with core-block cache and structured edit operations
// ABOUTME: Drives the best-effort embedding refresh on every content write
package core

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

// InsertPosition selects where insert_content places new text
type InsertPosition string

const (
	// PositionStart prepends the new text
	PositionStart InsertPosition = "start"
	// PositionEnd appends the new text (the default)
	PositionEnd InsertPosition = "end"
)

// BlockManager owns the blocks and archival tables plus the in-process
// block cache. The cache is exclusive to this manager and is rebuilt from
// SQL when a store is reopened.
type BlockManager struct {
	blocks     *sqlite.BlockStore
	archival   *sqlite.ArchivalStore
	embeddings *sqlite.EmbeddingStore
	embedder   Embedder
	cache      map[string]models.Block
}

// NewBlockManager creates a BlockManager and warms the cache with core
// blocks, best-effort. A nil embedder disables the embedding side-channel.
func NewBlockManager(blocks *sqlite.BlockStore, archival *sqlite.ArchivalStore,
	embeddings *sqlite.EmbeddingStore, embedder Embedder) *BlockManager {

	m := &BlockManager{
		blocks:     blocks,
		archival:   archival,
		embeddings: embeddings,
		embedder:   embedder,
		cache:      make(map[string]models.Block),
	}

	if coreBlocks, err := blocks.ListByType(models.BlockTypeCore); err == nil {
		for _, block := range coreBlocks {
			m.cache[block.ID] = block
		}
	} else {
		log.Printf("Warning: failed to warm block cache: %v", err)
	}

	return m
}

// GetBlock retrieves a block by id, cache first. Nil means not present.
func (m *BlockManager) GetBlock(id string) (*models.Block, error) {
	if block, ok := m.cache[id]; ok {
		return &block, nil
	}

	block, err := m.blocks.Get(id)
	if err != nil {
		return nil, &StorageError{Op: "get block", Err: err}
	}
	if block == nil {
		return nil, nil
	}

	m.cache[block.ID] = *block
	return block, nil
}

// GetAllBlocks lists blocks newest first, optionally filtered by type, and
// refreshes the cache entries it sees.
func (m *BlockManager) GetAllBlocks(typeFilter ...models.BlockType) ([]models.Block, error) {
	var (
		blocks []models.Block
		err    error
	)
	if len(typeFilter) > 0 {
		blocks, err = m.blocks.ListByType(typeFilter[0])
	} else {
		blocks, err = m.blocks.ListAll()
	}
	if err != nil {
		return nil, &StorageError{Op: "list blocks", Err: err}
	}

	for _, block := range blocks {
		m.cache[block.ID] = block
	}
	return blocks, nil
}

// CreateBlock inserts a new block. An empty type defaults to core. Returns
// BlockConflictError if the id is already taken. The embedding refresh is
// best-effort: an unavailable embedder never fails the create.
func (m *BlockManager) CreateBlock(id, label, content string, typ models.BlockType) (*models.Block, error) {
	if typ == "" {
		typ = models.BlockTypeCore
	}

	existing, err := m.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &BlockConflictError{ID: id}
	}

	block := models.Block{
		ID:        id,
		Label:     label,
		Content:   content,
		Type:      typ,
		UpdatedAt: time.Now(),
		Metadata:  map[string]interface{}{},
	}

	if err := m.blocks.Insert(&block); err != nil {
		return nil, &StorageError{Op: "create block", Err: err}
	}

	m.cache[id] = block
	m.refreshBlockEmbedding(id, content)

	return &block, nil
}

// UpdateBlock replaces a block's content in place and refreshes its embedding
func (m *BlockManager) UpdateBlock(id, content string) (*models.Block, error) {
	block, err := m.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, &BlockNotFoundError{ID: id}
	}

	block.Content = content
	block.UpdatedAt = time.Now()

	if err := m.blocks.UpdateContent(id, content, block.UpdatedAt); err != nil {
		return nil, &StorageError{Op: "update block", Err: err}
	}

	m.cache[id] = *block
	m.refreshBlockEmbedding(id, content)

	return block, nil
}

// DeleteBlock removes a block and, best-effort, its embedding row
func (m *BlockManager) DeleteBlock(id string) error {
	if err := m.blocks.Delete(id); err != nil {
		return &StorageError{Op: "delete block", Err: err}
	}
	delete(m.cache, id)

	if err := m.embeddings.DeleteBlock(id); err != nil {
		log.Printf("Warning: failed to delete embedding for block %s: %v", id, err)
	}
	return nil
}

// InsertContent merges new text into an existing block at the start or end,
// separated by a newline, with the result trimmed.
func (m *BlockManager) InsertContent(id, newText string, position InsertPosition) (*models.Block, error) {
	if position == "" {
		position = PositionEnd
	}

	block, err := m.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, &BlockNotFoundError{ID: id}
	}

	var merged string
	if position == PositionStart {
		merged = strings.TrimSpace(newText + "\n" + block.Content)
	} else {
		merged = strings.TrimSpace(block.Content + "\n" + newText)
	}

	return m.UpdateBlock(id, merged)
}

// ReplaceContent substitutes the first occurrence of oldText in the block.
// Returns ContentNotFoundError when oldText does not occur; the storage
// layer is never touched in that case.
func (m *BlockManager) ReplaceContent(id, oldText, newText string) (*models.Block, error) {
	block, err := m.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, &BlockNotFoundError{ID: id}
	}

	if !strings.Contains(block.Content, oldText) {
		return nil, &ContentNotFoundError{BlockID: id}
	}

	return m.UpdateBlock(id, strings.Replace(block.Content, oldText, newText, 1))
}

// RethinkBlock rewrites a block wholesale. The reason is logged, not stored.
func (m *BlockManager) RethinkBlock(id, newContent, reason string) (*models.Block, error) {
	block, err := m.GetBlock(id)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, &BlockNotFoundError{ID: id}
	}

	if reason != "" {
		log.Printf("Rethinking block %s: %s", id, reason)
	}

	return m.UpdateBlock(id, newContent)
}

// InsertArchival appends an archival entry and returns its generated id
func (m *BlockManager) InsertArchival(content string, metadata map[string]interface{}) (*models.ArchivalEntry, error) {
	entry := models.ArchivalEntry{
		ID:        models.NewArchivalID(time.Now()),
		Content:   content,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]interface{}{}
	}

	if err := m.archival.Insert(&entry); err != nil {
		return nil, &StorageError{Op: "insert archival", Err: err}
	}

	m.refreshArchivalEmbedding(entry.ID, content)

	return &entry, nil
}

// SearchArchivalText is the substring fallback search over archival entries
func (m *BlockManager) SearchArchivalText(query string, limit int) ([]models.ArchivalEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := m.archival.Search(query, limit)
	if err != nil {
		return nil, &StorageError{Op: "search archival", Err: err}
	}
	return entries, nil
}

// GetAllArchival lists every archival entry newest first
func (m *BlockManager) GetAllArchival() ([]models.ArchivalEntry, error) {
	entries, err := m.archival.ListAll()
	if err != nil {
		return nil, &StorageError{Op: "list archival", Err: err}
	}
	return entries, nil
}

// CorePromptFragment renders the always-on core memory section, or the
// empty string when no core blocks exist.
func (m *BlockManager) CorePromptFragment() string {
	coreBlocks, err := m.GetAllBlocks(models.BlockTypeCore)
	if err != nil {
		log.Printf("Warning: failed to load core blocks for prompt: %v", err)
		return ""
	}
	if len(coreBlocks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Core Memory\n\n")
	for _, block := range coreBlocks {
		sb.WriteString(fmt.Sprintf("### %s (%s)\n", block.Label, block.ID))
		sb.WriteString(fmt.Sprintf("*Last updated: %s*\n\n", block.UpdatedAt.Format("Jan 2, 2006 3:04 PM")))
		sb.WriteString(block.Content)
		sb.WriteString("\n\n---\n\n")
	}
	sb.WriteString("Edit core memory with memory_insert, memory_replace, and memory_rethink.\n")
	return sb.String()
}

// refreshBlockEmbedding regenerates a block's embedding after a content
// write. Failures are swallowed with a warning: the SQL write has already
// succeeded and must stand even when the embedding service is down.
func (m *BlockManager) refreshBlockEmbedding(id, content string) {
	if m.embedder == nil {
		return
	}
	vector, err := m.embedder.GenerateEmbedding(content)
	if err != nil {
		log.Printf("Warning: failed to embed block %s: %v", id, err)
		return
	}
	if err := m.embeddings.SaveBlock(id, vector); err != nil {
		log.Printf("Warning: failed to store embedding for block %s: %v", id, err)
	}
}

// refreshArchivalEmbedding embeds a new archival entry, best-effort
func (m *BlockManager) refreshArchivalEmbedding(id, content string) {
	if m.embedder == nil {
		return
	}
	vector, err := m.embedder.GenerateEmbedding(content)
	if err != nil {
		log.Printf("Warning: failed to embed archival entry %s: %v", id, err)
		return
	}
	if err := m.embeddings.SaveArchival(id, vector); err != nil {
		log.Printf("Warning: failed to store embedding for archival entry %s: %v", id, err)
	}
}
