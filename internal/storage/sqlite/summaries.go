// ABOUTME: Summary ladder storage operations for SQLite
// ABOUTME: Inserts, consolidation marking, and the context-loading queries
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/harper/engram/internal/models"
)

// SummaryStore handles summary persistence
type SummaryStore struct {
	db *DB
}

// NewSummaryStore creates a new SummaryStore
func NewSummaryStore(db *DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// Insert adds a summary row and returns its auto-increment id
func (s *SummaryStore) Insert(summary *models.Summary) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO summaries (summary, summary_level, message_count, parent_summary_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, summary.Summary, summary.Level, summary.MessageCount, summary.ParentSummaryID,
		toMillis(summary.CreatedAt))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Get retrieves one summary by id; nil means not present
func (s *SummaryStore) Get(id int64) (*models.Summary, error) {
	row := s.db.QueryRow(`
		SELECT id, summary, summary_level, message_count, parent_summary_id, created_at
		FROM summaries
		WHERE id = ?
	`, id)

	summary, err := scanSummaryRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Unconsolidated retrieves summaries at one level with no parent yet,
// oldest first, limited
func (s *SummaryStore) Unconsolidated(level, limit int) ([]models.Summary, error) {
	rows, err := s.db.Query(`
		SELECT id, summary, summary_level, message_count, parent_summary_id, created_at
		FROM summaries
		WHERE summary_level = ? AND parent_summary_id IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`, level, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanSummaries(rows)
}

// RecentBase retrieves the newest level-0 summaries, newest first
func (s *SummaryStore) RecentBase(limit int) ([]models.Summary, error) {
	rows, err := s.db.Query(`
		SELECT id, summary, summary_level, message_count, parent_summary_id, created_at
		FROM summaries
		WHERE summary_level = 0
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanSummaries(rows)
}

// TopRecursive retrieves the highest-level recursive summaries. The limit
// applies across all levels, not per level.
func (s *SummaryStore) TopRecursive(limit int) ([]models.Summary, error) {
	rows, err := s.db.Query(`
		SELECT id, summary, summary_level, message_count, parent_summary_id, created_at
		FROM summaries
		WHERE summary_level > 0
		ORDER BY summary_level DESC, created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanSummaries(rows)
}

// MarkConsolidated sets parent_summary_id on each given row. Once set, a
// row is frozen and never promoted again.
func (s *SummaryStore) MarkConsolidated(ids []int64, parentID int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, parentID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	_, err := s.db.Exec(fmt.Sprintf(`
		UPDATE summaries
		SET parent_summary_id = ?
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", ")), args...)
	return err
}

// scanSummaries scans rows into summaries
func (s *SummaryStore) scanSummaries(rows *sql.Rows) ([]models.Summary, error) {
	var summaries []models.Summary

	for rows.Next() {
		summary, err := scanSummaryRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	return summaries, rows.Err()
}

// scanSummaryRow scans one summaries row via the given scan function
func scanSummaryRow(scan func(...interface{}) error) (*models.Summary, error) {
	var (
		summary  models.Summary
		parentID sql.NullInt64
		ms       int64
	)

	if err := scan(&summary.ID, &summary.Summary, &summary.Level,
		&summary.MessageCount, &parentID, &ms); err != nil {
		return nil, err
	}

	if parentID.Valid {
		summary.ParentSummaryID = &parentID.Int64
	}
	summary.CreatedAt = fromMillis(ms)

	return &summary, nil
}
