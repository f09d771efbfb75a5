// ABOUTME: SQLite database schema for the memory engine
// ABOUTME: Creates the six tables and their indexes; timestamps are integer ms
package sqlite

// Schema contains all SQL statements for database initialization.
// Column names and the millisecond timestamps are a persistence contract:
// databases created here must stay readable by any reimplementation.
const Schema = `
-- Legacy flat purpose -> text store (migration source)
CREATE TABLE IF NOT EXISTS kv_memory (
    purpose TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Typed, labeled content blocks (core or archival)
CREATE TABLE IF NOT EXISTS blocks (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    content TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'core',
    updated_at INTEGER NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}'
);

-- Append-only archival entries
CREATE TABLE IF NOT EXISTS archival (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    vector_id TEXT
);

-- Per-block embeddings; block_id is a weak reference, stale rows tolerated
CREATE TABLE IF NOT EXISTS block_embeddings (
    block_id TEXT PRIMARY KEY,
    embedding TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Per-archival-entry embeddings, same weak-reference semantics
CREATE TABLE IF NOT EXISTS archival_embeddings (
    entry_id TEXT PRIMARY KEY,
    embedding TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Hierarchical conversation summaries
CREATE TABLE IF NOT EXISTS summaries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    summary TEXT NOT NULL,
    summary_level INTEGER NOT NULL DEFAULT 0,
    message_count INTEGER NOT NULL DEFAULT 0,
    parent_summary_id INTEGER,
    created_at INTEGER NOT NULL
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_kv_memory_updated ON kv_memory(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_blocks_type_updated ON blocks(type, updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_blocks_label ON blocks(label);
CREATE INDEX IF NOT EXISTS idx_archival_created ON archival(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_summaries_level_created ON summaries(summary_level, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_summaries_parent ON summaries(parent_summary_id);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
