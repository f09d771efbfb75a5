// ABOUTME: Block storage operations for SQLite
// ABOUTME: Implements insert, lookup, listing, and content updates over blocks
package sqlite

import (
	"database/sql"
	"time"

	"github.com/harper/engram/internal/models"
)

// BlockStore handles block persistence
type BlockStore struct {
	db *DB
}

// NewBlockStore creates a new BlockStore
func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

// Insert creates a new block row. The caller is responsible for checking
// for id conflicts first (read-before-write).
func (s *BlockStore) Insert(block *models.Block) error {
	_, err := s.db.Exec(`
		INSERT INTO blocks (id, label, content, type, updated_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`, block.ID, block.Label, block.Content, string(block.Type),
		toMillis(block.UpdatedAt), block.MetadataJSON())
	return err
}

// Get retrieves a block by id; nil means not present
func (s *BlockStore) Get(id string) (*models.Block, error) {
	var (
		block    models.Block
		typ      string
		ms       int64
		metadata string
	)

	err := s.db.QueryRow(`
		SELECT id, label, content, type, updated_at, metadata
		FROM blocks
		WHERE id = ?
	`, id).Scan(&block.ID, &block.Label, &block.Content, &typ, &ms, &metadata)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	block.Type = models.BlockType(typ)
	block.UpdatedAt = fromMillis(ms)
	block.Metadata = models.ParseMetadata(metadata)

	return &block, nil
}

// ListAll retrieves all blocks ordered by updated_at descending
func (s *BlockStore) ListAll() ([]models.Block, error) {
	rows, err := s.db.Query(`
		SELECT id, label, content, type, updated_at, metadata
		FROM blocks
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanBlocks(rows)
}

// ListByType retrieves blocks of one type ordered by updated_at descending
func (s *BlockStore) ListByType(typ models.BlockType) ([]models.Block, error) {
	rows, err := s.db.Query(`
		SELECT id, label, content, type, updated_at, metadata
		FROM blocks
		WHERE type = ?
		ORDER BY updated_at DESC
	`, string(typ))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanBlocks(rows)
}

// UpdateContent replaces a block's content and bumps updated_at.
// The type column is never touched; it is immutable after creation.
func (s *BlockStore) UpdateContent(id, content string, updatedAt time.Time) error {
	_, err := s.db.Exec(`
		UPDATE blocks
		SET content = ?, updated_at = ?
		WHERE id = ?
	`, content, toMillis(updatedAt), id)
	return err
}

// Delete removes a block row
func (s *BlockStore) Delete(id string) error {
	_, err := s.db.Exec("DELETE FROM blocks WHERE id = ?", id)
	return err
}

// Count returns the number of block rows
func (s *BlockStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blocks").Scan(&n)
	return n, err
}

// scanBlocks scans rows into a slice of Block
func (s *BlockStore) scanBlocks(rows *sql.Rows) ([]models.Block, error) {
	var blocks []models.Block

	for rows.Next() {
		var (
			block    models.Block
			typ      string
			ms       int64
			metadata string
		)

		if err := rows.Scan(&block.ID, &block.Label, &block.Content, &typ, &ms, &metadata); err != nil {
			return nil, err
		}

		block.Type = models.BlockType(typ)
		block.UpdatedAt = fromMillis(ms)
		block.Metadata = models.ParseMetadata(metadata)

		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}
