// ABOUTME: One-shot legacy kv_memory to blocks migration with rollback
// ABOUTME: Classifies purposes into the standard human/persona/context blocks
package core

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

var (
	humanPurpose   = regexp.MustCompile(`(?i)user|customer|person|human|client|people`)
	personaPurpose = regexp.MustCompile(`(?i)agent|persona|identity|role|assistant`)
)

// standardBlocks are ensured before migration, in creation order
var standardBlocks = []struct {
	id    string
	label string
}{
	{models.BlockHuman, "Human"},
	{models.BlockPersona, "Persona"},
	{models.BlockContext, "Context"},
}

// MigrationResult reports what one migration pass did
type MigrationResult struct {
	Total    int      `json:"total"`
	Migrated int      `json:"migrated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Migrator moves legacy kv_memory entries into structured blocks
type Migrator struct {
	db     *sqlite.DB
	kv     *sqlite.KVStore
	blocks *BlockManager
}

// NewMigrator creates a Migrator
func NewMigrator(db *sqlite.DB, kv *sqlite.KVStore, blocks *BlockManager) *Migrator {
	return &Migrator{db: db, kv: kv, blocks: blocks}
}

// MigrationNeeded reports whether kv_memory holds entries while blocks is
// still empty. A missing kv_memory table resolves to false; a missing blocks
// table counts as empty.
func (m *Migrator) MigrationNeeded() (bool, error) {
	kvRows, err := m.db.CountRows("kv_memory")
	if err != nil {
		return false, &StorageError{Op: "count kv_memory", Err: err}
	}
	if kvRows == 0 {
		return false, nil
	}

	blockRows, err := m.db.CountRows("blocks")
	if err != nil {
		return false, &StorageError{Op: "count blocks", Err: err}
	}
	return blockRows == 0, nil
}

// MigrateKVToBlocks migrates every legacy entry into the standard blocks,
// oldest first so block content reads chronologically. After at least one
// successful migration kv_memory is renamed to kv_memory_backup; a failed
// rename is non-fatal.
func (m *Migrator) MigrateKVToBlocks() (*MigrationResult, error) {
	result := &MigrationResult{Errors: []string{}}

	for _, std := range standardBlocks {
		existing, err := m.blocks.GetBlock(std.id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if _, err := m.blocks.CreateBlock(std.id, std.label, "", models.BlockTypeCore); err != nil {
				return nil, err
			}
		}
	}

	entries, err := m.kv.ListAll()
	if err != nil {
		return nil, &StorageError{Op: "scan kv_memory", Err: err}
	}
	// ListAll is newest first; migrate oldest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	result.Total = len(entries)
	for _, entry := range entries {
		target := classifyPurpose(entry.Purpose)
		text := fmt.Sprintf("**%s**\n%s", entry.Purpose, entry.Text)
		if _, err := m.blocks.InsertContent(target, text, PositionEnd); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Purpose, err))
			result.Skipped++
			continue
		}
		result.Migrated++
	}

	if result.Migrated > 0 {
		if err := m.db.RenameKVToBackup(); err != nil {
			log.Printf("Warning: failed to rename kv_memory to kv_memory_backup: %v", err)
		}
	}

	return result, nil
}

// RollbackMigration restores kv_memory from the backup taken at migration
// time. Fails when no backup exists.
func (m *Migrator) RollbackMigration() error {
	if err := m.db.RestoreKVBackup(); err != nil {
		return &StorageError{Op: "rollback migration", Err: err}
	}
	return nil
}

// ExportBlocksToKV writes every core block back into kv_memory, keyed by
// its lowercased, underscored label. Returns the exported count.
func (m *Migrator) ExportBlocksToKV() (int, error) {
	if err := m.db.EnsureKVTable(); err != nil {
		return 0, &StorageError{Op: "ensure kv_memory", Err: err}
	}

	coreBlocks, err := m.blocks.GetAllBlocks(models.BlockTypeCore)
	if err != nil {
		return 0, err
	}

	exported := 0
	for _, block := range coreBlocks {
		purpose := strings.ToLower(strings.ReplaceAll(block.Label, " ", "_"))
		if err := m.kv.Write(purpose, block.Content, block.UpdatedAt); err != nil {
			return exported, &StorageError{Op: "export block", Err: err}
		}
		exported++
	}

	return exported, nil
}

// classifyPurpose maps a legacy purpose onto a standard block id
func classifyPurpose(purpose string) string {
	switch {
	case humanPurpose.MatchString(purpose):
		return models.BlockHuman
	case personaPurpose.MatchString(purpose):
		return models.BlockPersona
	default:
		return models.BlockContext
	}
}
