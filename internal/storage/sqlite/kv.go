// ABOUTME: Legacy key-value memory storage operations for SQLite
// ABOUTME: Implements upsert, lookup, and newest-first listing over kv_memory
package sqlite

import (
	"database/sql"
	"time"

	"github.com/harper/engram/internal/models"
)

// KVStore handles legacy kv_memory persistence
type KVStore struct {
	db *DB
}

// NewKVStore creates a new KVStore
func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Write upserts a purpose -> text entry with the given timestamp
func (s *KVStore) Write(purpose, text string, updatedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO kv_memory (purpose, text, updated_at)
		VALUES (?, ?, ?)
	`, purpose, text, toMillis(updatedAt))
	return err
}

// Read retrieves one entry by purpose; nil means not present
func (s *KVStore) Read(purpose string) (*models.KVEntry, error) {
	var (
		entry models.KVEntry
		ms    int64
	)

	err := s.db.QueryRow(`
		SELECT purpose, text, updated_at FROM kv_memory WHERE purpose = ?
	`, purpose).Scan(&entry.Purpose, &entry.Text, &ms)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry.UpdatedAt = fromMillis(ms)
	return &entry, nil
}

// ListAll retrieves every entry ordered newest first
func (s *KVStore) ListAll() ([]models.KVEntry, error) {
	rows, err := s.db.Query(`
		SELECT purpose, text, updated_at FROM kv_memory ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.KVEntry
	for rows.Next() {
		var (
			entry models.KVEntry
			ms    int64
		)
		if err := rows.Scan(&entry.Purpose, &entry.Text, &ms); err != nil {
			return nil, err
		}
		entry.UpdatedAt = fromMillis(ms)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Delete removes an entry by purpose
func (s *KVStore) Delete(purpose string) error {
	_, err := s.db.Exec("DELETE FROM kv_memory WHERE purpose = ?", purpose)
	return err
}
