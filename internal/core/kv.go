// ABOUTME: Legacy key-value memory surface with in-process cache
// ABOUTME: Emits the instructional memory prompt fragment
package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

// privacyMarkers flag an entry as sensitive in the directory listing
var privacyMarkers = []string{"[PRIVATE]", "[CONFIDENTIAL]", "[DO NOT SHARE]", "[PERSONAL]"}

// memoryPolicy is the fixed instructional section appended to the fragment.
// It is part of the external contract and must stay stable across rebuilds.
const memoryPolicy = `### Memory Policy

**When to write memory:**
- The user shares a lasting fact, preference, or correction
- You learn something that future sessions will need
- The user explicitly asks you to remember something

**What to store:**
- Stable facts, not transient conversation state
- One purpose per entry; keep entries short and current

**Read before write:**
- Always read an entry before updating it so existing content is preserved

**Block organization:**
- Prefer the structured blocks: facts about the user belong in 'human',
  facts about yourself in 'persona', everything else in 'context'`

// KVMemory is the flat purpose -> text store kept for backward compatibility
type KVMemory struct {
	store *sqlite.KVStore
	cache map[string]models.KVEntry
}

// NewKVMemory creates a KVMemory and loads the cache best-effort
func NewKVMemory(store *sqlite.KVStore) *KVMemory {
	kv := &KVMemory{
		store: store,
		cache: make(map[string]models.KVEntry),
	}
	// Missing or renamed table is tolerated; the cache just starts empty
	if entries, err := store.ListAll(); err == nil {
		for _, entry := range entries {
			kv.cache[entry.Purpose] = entry
		}
	}
	return kv
}

// LoadAll returns all entries ordered newest first and refreshes the cache
func (kv *KVMemory) LoadAll() ([]models.KVEntry, error) {
	entries, err := kv.store.ListAll()
	if err != nil {
		return nil, &StorageError{Op: "kv load_all", Err: err}
	}
	kv.cache = make(map[string]models.KVEntry, len(entries))
	for _, entry := range entries {
		kv.cache[entry.Purpose] = entry
	}
	return entries, nil
}

// Write upserts an entry with the current timestamp
func (kv *KVMemory) Write(purpose, text string) (*models.KVEntry, error) {
	entry := models.KVEntry{
		Purpose:   purpose,
		Text:      text,
		UpdatedAt: time.Now(),
	}
	if err := kv.store.Write(purpose, text, entry.UpdatedAt); err != nil {
		return nil, &StorageError{Op: "kv write", Err: err}
	}
	kv.cache[purpose] = entry
	return &entry, nil
}

// Read returns an entry by purpose; nil means not present
func (kv *KVMemory) Read(purpose string) (*models.KVEntry, error) {
	if entry, ok := kv.cache[purpose]; ok {
		return &entry, nil
	}
	entry, err := kv.store.Read(purpose)
	if err != nil {
		return nil, &StorageError{Op: "kv read", Err: err}
	}
	if entry != nil {
		kv.cache[purpose] = *entry
	}
	return entry, nil
}

// Delete removes an entry by purpose
func (kv *KVMemory) Delete(purpose string) error {
	if err := kv.store.Delete(purpose); err != nil {
		return &StorageError{Op: "kv delete", Err: err}
	}
	delete(kv.cache, purpose)
	return nil
}

// PromptFragment builds the instructional memory string. It never fails:
// it renders whatever the cache currently holds.
func (kv *KVMemory) PromptFragment() string {
	entries := kv.cachedNewestFirst()

	var sb strings.Builder
	sb.WriteString("## Memory\n\n")

	if len(entries) > 0 {
		sb.WriteString("### Directory\n\n")
		for _, entry := range entries {
			line := fmt.Sprintf("- %s: %s", entry.Purpose, preview(entry.Text, 60))
			if isPrivate(entry.Text) {
				line += " 🔒"
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n### Entries\n\n")
		for _, entry := range entries {
			sb.WriteString(fmt.Sprintf("#### %s\n", entry.Purpose))
			sb.WriteString(fmt.Sprintf("*Updated: %s*\n\n", entry.UpdatedAt.Format("Jan 2, 2006 3:04 PM")))
			sb.WriteString(entry.Text + "\n\n")
		}
	}

	sb.WriteString(memoryPolicy)
	return sb.String()
}

// cachedNewestFirst snapshots the cache ordered by updated_at descending
func (kv *KVMemory) cachedNewestFirst() []models.KVEntry {
	entries := make([]models.KVEntry, 0, len(kv.cache))
	for _, entry := range kv.cache {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].Purpose < entries[j].Purpose
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}

// isPrivate reports whether any privacy marker occurs in the text
func isPrivate(text string) bool {
	upper := strings.ToUpper(text)
	for _, marker := range privacyMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// preview shortens a single-line rendering of text to maxLen runes
func preview(text string, maxLen int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= maxLen {
		return flat
	}
	return string(runes[:maxLen-1]) + "…"
}
