// ABOUTME: Tests for the legacy key-value memory surface
// ABOUTME: Verifies cache behavior and the instructional prompt fragment
package core

import (
	"strings"
	"testing"

	"github.com/harper/engram/internal/storage/sqlite"
)

func newKVMemory(t *testing.T) *KVMemory {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewKVMemory(sqlite.NewKVStore(db))
}

func TestKVMemoryWriteReadDelete(t *testing.T) {
	kv := newKVMemory(t)

	entry, err := kv.Write("user_name", "Harper")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if entry.Purpose != "user_name" || entry.Text != "Harper" {
		t.Errorf("Write() = %+v", entry)
	}

	read, err := kv.Read("user_name")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if read == nil || read.Text != "Harper" {
		t.Errorf("Read() = %v, want Harper", read)
	}

	missing, err := kv.Read("nothing")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if missing != nil {
		t.Errorf("Read(missing) = %v, want nil", missing)
	}

	if err := kv.Delete("user_name"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	read, _ = kv.Read("user_name")
	if read != nil {
		t.Error("entry still readable after Delete()")
	}
}

func TestKVMemoryPromptFragmentEmpty(t *testing.T) {
	kv := newKVMemory(t)

	fragment := kv.PromptFragment()
	if !strings.Contains(fragment, "## Memory") {
		t.Error("fragment missing header")
	}
	if !strings.Contains(fragment, "### Memory Policy") {
		t.Error("fragment missing policy section")
	}
	if strings.Contains(fragment, "### Directory") {
		t.Error("empty store should not render a directory")
	}
}

func TestKVMemoryPromptFragmentEntries(t *testing.T) {
	kv := newKVMemory(t)

	if _, err := kv.Write("user_name", "Harper, lives in Chicago and builds hardware startups for fun"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := kv.Write("api_key", "[PRIVATE] sk-123456"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	fragment := kv.PromptFragment()

	if !strings.Contains(fragment, "### Directory") {
		t.Error("fragment missing directory")
	}
	if !strings.Contains(fragment, "### Entries") {
		t.Error("fragment missing entries section")
	}
	if !strings.Contains(fragment, "#### user_name") {
		t.Error("fragment missing full entry for user_name")
	}
	if !strings.Contains(fragment, "🔒") {
		t.Error("private entry not marked with lock icon")
	}

	// Directory previews are capped at 60 runes
	for _, line := range strings.Split(fragment, "\n") {
		if strings.HasPrefix(line, "- user_name: ") {
			previewText := strings.TrimPrefix(line, "- user_name: ")
			if len([]rune(previewText)) > 60 {
				t.Errorf("preview too long (%d runes): %q", len([]rune(previewText)), previewText)
			}
		}
	}
}

func TestKVMemoryPromptFragmentStable(t *testing.T) {
	kv := newKVMemory(t)
	if _, err := kv.Write("user_name", "Harper"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	first := kv.PromptFragment()
	second := kv.PromptFragment()
	if first != second {
		t.Error("fragment not stable across rebuilds")
	}
}

func TestKVMemoryLockMarkersCaseInsensitive(t *testing.T) {
	kv := newKVMemory(t)
	if _, err := kv.Write("notes", "this is [do not share] material"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if !strings.Contains(kv.PromptFragment(), "🔒") {
		t.Error("lowercase privacy marker not detected")
	}
}
