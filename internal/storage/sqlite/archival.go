// ABOUTME: Archival entry storage operations for SQLite
// ABOUTME: Append-only inserts with LIKE-based fallback text search
package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/harper/engram/internal/models"
)

// ArchivalStore handles archival entry persistence
type ArchivalStore struct {
	db *DB
}

// NewArchivalStore creates a new ArchivalStore
func NewArchivalStore(db *DB) *ArchivalStore {
	return &ArchivalStore{db: db}
}

// Insert appends a new archival entry. Entries are never updated.
func (s *ArchivalStore) Insert(entry *models.ArchivalEntry) error {
	metadata := "{}"
	if len(entry.Metadata) > 0 {
		if data, err := json.Marshal(entry.Metadata); err == nil {
			metadata = string(data)
		}
	}

	var vectorID interface{}
	if entry.VectorID != "" {
		vectorID = entry.VectorID
	}

	_, err := s.db.Exec(`
		INSERT INTO archival (id, content, created_at, metadata, vector_id)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.Content, toMillis(entry.CreatedAt), metadata, vectorID)
	return err
}

// Get retrieves one entry by id; nil means not present
func (s *ArchivalStore) Get(id string) (*models.ArchivalEntry, error) {
	row := s.db.QueryRow(`
		SELECT id, content, created_at, metadata, vector_id
		FROM archival
		WHERE id = ?
	`, id)

	entry, err := scanArchivalRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Search performs a substring match over content, newest first
func (s *ArchivalStore) Search(query string, limit int) ([]models.ArchivalEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, content, created_at, metadata, vector_id
		FROM archival
		WHERE content LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanEntries(rows)
}

// ListAll retrieves every entry ordered newest first
func (s *ArchivalStore) ListAll() ([]models.ArchivalEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, content, created_at, metadata, vector_id
		FROM archival
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanEntries(rows)
}

// scanEntries scans rows into archival entries
func (s *ArchivalStore) scanEntries(rows *sql.Rows) ([]models.ArchivalEntry, error) {
	var entries []models.ArchivalEntry

	for rows.Next() {
		entry, err := scanArchivalRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// scanArchivalRow scans one archival row via the given scan function
func scanArchivalRow(scan func(...interface{}) error) (*models.ArchivalEntry, error) {
	var (
		entry    models.ArchivalEntry
		ms       int64
		metadata string
		vectorID sql.NullString
	)

	if err := scan(&entry.ID, &entry.Content, &ms, &metadata, &vectorID); err != nil {
		return nil, err
	}

	entry.CreatedAt = fromMillis(ms)
	entry.Metadata = models.ParseMetadata(metadata)
	if vectorID.Valid {
		entry.VectorID = vectorID.String
	}

	return &entry, nil
}
