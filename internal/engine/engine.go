// ABOUTME: Engine is the library boundary wiring all memory components
// ABOUTME: One Engine per store; single-writer, not safe for concurrent use
package engine

import (
	"fmt"

	"github.com/harper/engram/internal/core"
	"github.com/harper/engram/internal/storage/sqlite"
)

// Options configures an Engine. Both capabilities are optional: a nil
// Embedder degrades semantic search to substring search, a nil LLM makes
// summarization fail without touching stored state.
type Options struct {
	Embedder core.Embedder
	LLM      core.LLM
	Ladder   core.LadderConfig
}

// Engine owns one memory store. It must be used from a single goroutine;
// concurrent calls on the same Engine have undefined behavior. The SQL
// store is the source of truth: reopening a store into a new process
// rebuilds every cache from scratch.
type Engine struct {
	db *sqlite.DB

	KV       *core.KVMemory
	Blocks   *core.BlockManager
	Index    *core.SemanticIndex
	Ladder   *core.SummaryLadder
	Migrator *core.Migrator
	Hydrator *core.ContextHydrator
}

// Open opens or creates the store at path and wires every component
func Open(path string, opts Options) (*Engine, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return newEngine(db, opts), nil
}

// OpenInMemory creates an engine over an in-memory store (for testing)
func OpenInMemory(opts Options) (*Engine, error) {
	db, err := sqlite.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return newEngine(db, opts), nil
}

func newEngine(db *sqlite.DB, opts Options) *Engine {
	if opts.Ladder == (core.LadderConfig{}) {
		opts.Ladder = core.DefaultLadderConfig()
	}

	kvStore := sqlite.NewKVStore(db)
	embeddingStore := sqlite.NewEmbeddingStore(db)

	kv := core.NewKVMemory(kvStore)
	blocks := core.NewBlockManager(sqlite.NewBlockStore(db), sqlite.NewArchivalStore(db),
		embeddingStore, opts.Embedder)
	index := core.NewSemanticIndex(embeddingStore, opts.Embedder)
	ladder := core.NewSummaryLadder(sqlite.NewSummaryStore(db), core.NewScribe(opts.LLM), opts.Ladder)

	return &Engine{
		db:       db,
		KV:       kv,
		Blocks:   blocks,
		Index:    index,
		Ladder:   ladder,
		Migrator: core.NewMigrator(db, kvStore, blocks),
		Hydrator: core.NewContextHydrator(kv, blocks, ladder),
	}
}

// DB exposes the underlying store for maintenance surfaces
func (e *Engine) DB() *sqlite.DB {
	return e.db
}

// Close closes the underlying store
func (e *Engine) Close() error {
	return e.db.Close()
}
