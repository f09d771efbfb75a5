// ABOUTME: Tests for prompt assembly ordering
// ABOUTME: Verifies section order and the tool instruction suffix
package core

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/engram/internal/models"
	"github.com/harper/engram/internal/storage/sqlite"
)

func newHydratorEnv(t *testing.T) (*ContextHydrator, *KVMemory, *BlockManager, *sqlite.SummaryStore) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	kv := NewKVMemory(sqlite.NewKVStore(db))
	blocks := NewBlockManager(sqlite.NewBlockStore(db), sqlite.NewArchivalStore(db),
		sqlite.NewEmbeddingStore(db), nil)
	summaryStore := sqlite.NewSummaryStore(db)
	ladder := NewSummaryLadder(summaryStore, NewScribe(nil), DefaultLadderConfig())

	return NewContextHydrator(kv, blocks, ladder), kv, blocks, summaryStore
}

func TestAssemblePromptOrder(t *testing.T) {
	hydrator, kv, blocks, summaries := newHydratorEnv(t)

	if _, err := kv.Write("user_name", "Harper"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := blocks.CreateBlock("human", "Human", "Likes Go", models.BlockTypeCore); err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if _, err := summaries.Insert(&models.Summary{
		Summary: "talked about testing", Level: 0, MessageCount: 20, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	prompt := hydrator.AssemblePrompt("You are a helpful assistant.")

	sections := []string{
		"You are a helpful assistant.",
		"## Memory",
		"## Core Memory",
		"## Conversation History",
		"## Memory Tools",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(prompt, section)
		if idx < 0 {
			t.Fatalf("prompt missing section %q:\n%s", section, prompt)
		}
		if idx < last {
			t.Errorf("section %q out of order", section)
		}
		last = idx
	}
}

func TestAssemblePromptMinimal(t *testing.T) {
	hydrator, _, _, _ := newHydratorEnv(t)

	prompt := hydrator.AssemblePrompt("")

	// No persona, no blocks, no summaries: legacy fragment and tools remain
	if !strings.Contains(prompt, "## Memory") {
		t.Error("prompt missing memory fragment")
	}
	if !strings.Contains(prompt, "## Memory Tools") {
		t.Error("prompt missing tool instructions")
	}
	if strings.Contains(prompt, "## Core Memory") {
		t.Error("prompt contains empty core section")
	}
	if strings.Contains(prompt, "## Conversation History") {
		t.Error("prompt contains empty history section")
	}
}
