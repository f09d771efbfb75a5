// ABOUTME: Tests for the engine facade
// ABOUTME: Verifies wiring and operation without external capabilities
package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/harper/engram/internal/core"
	"github.com/harper/engram/internal/models"
)

func TestOpenInMemoryWiring(t *testing.T) {
	eng, err := OpenInMemory(Options{})
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = eng.Close() }()

	if eng.KV == nil || eng.Blocks == nil || eng.Index == nil ||
		eng.Ladder == nil || eng.Migrator == nil || eng.Hydrator == nil {
		t.Fatal("engine components not wired")
	}

	if eng.Ladder.Config().RecursiveThreshold != 10 {
		t.Errorf("default ladder config not applied: %+v", eng.Ladder.Config())
	}
}

func TestEngineWithoutCapabilities(t *testing.T) {
	eng, err := OpenInMemory(Options{})
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = eng.Close() }()

	// Content operations succeed with no embedding service
	if _, err := eng.Blocks.CreateBlock("human", "Human", "Likes Go", models.BlockTypeCore); err != nil {
		t.Fatalf("CreateBlock() error = %v", err)
	}
	if _, err := eng.KV.Write("user_name", "Harper"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Semantic search reports the embedding service as unavailable
	blocks, err := eng.Blocks.GetAllBlocks()
	if err != nil {
		t.Fatalf("GetAllBlocks() error = %v", err)
	}
	_, err = eng.Index.SearchBlocks("go", blocks, 5, 0.5)
	var unavailable *core.EmbeddingUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("SearchBlocks() error = %v, want EmbeddingUnavailableError", err)
	}

	// Summarization fails without corrupting state
	_, err = eng.Ladder.CreateBaseSummary([]models.Message{{Role: "user", Content: "hi"}})
	var llmErr *core.LLMError
	if !errors.As(err, &llmErr) {
		t.Fatalf("CreateBaseSummary() error = %v, want LLMError", err)
	}

	// The assembled prompt still carries everything stored
	prompt := eng.Hydrator.AssemblePrompt("persona")
	for _, want := range []string{"persona", "user_name", "Likes Go", "## Memory Tools"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEngineLadderConfigOverride(t *testing.T) {
	eng, err := OpenInMemory(Options{
		Ladder: core.LadderConfig{
			BaseThreshold:      5,
			RecursiveThreshold: 3,
			MaxLevel:           2,
			RecentCount:        1,
		},
	})
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = eng.Close() }()

	if eng.Ladder.Config().RecursiveThreshold != 3 {
		t.Errorf("ladder config override not applied: %+v", eng.Ladder.Config())
	}
}
