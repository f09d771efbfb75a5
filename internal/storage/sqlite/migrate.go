// ABOUTME: Table-level helpers for the legacy kv_memory migration
// ABOUTME: Existence checks, row counts, and the backup rename/restore pair
package sqlite

import "fmt"

// TableExists reports whether a table is present in the database
func (db *DB) TableExists(name string) (bool, error) {
	var n int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
	`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountRows returns the row count of a table, or 0 if the table is missing
func (db *DB) CountRows(table string) (int, error) {
	exists, err := db.TableExists(table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var n int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RenameKVToBackup moves kv_memory aside after a successful migration
func (db *DB) RenameKVToBackup() error {
	_, err := db.Exec("ALTER TABLE kv_memory RENAME TO kv_memory_backup")
	return err
}

// RestoreKVBackup drops any current kv_memory and renames the backup back.
// Fails if no backup table exists.
func (db *DB) RestoreKVBackup() error {
	exists, err := db.TableExists("kv_memory_backup")
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no kv_memory_backup table to restore")
	}

	if _, err := db.Exec("DROP TABLE IF EXISTS kv_memory"); err != nil {
		return err
	}
	_, err = db.Exec("ALTER TABLE kv_memory_backup RENAME TO kv_memory")
	return err
}

// EnsureKVTable recreates kv_memory if it was renamed away by migration
func (db *DB) EnsureKVTable() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_memory (
			purpose TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}
