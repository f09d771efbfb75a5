// ABOUTME: MCP tool definitions and registration for the memory engine
// ABOUTME: Defines JSON schemas for the eleven memory tools
package mcp

import (
	"github.com/harper/engram/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all memory tools with the server
func RegisterTools(server *mcpserver.MCPServer, kv *core.KVMemory, blocks *core.BlockManager,
	index *core.SemanticIndex, searchThreshold float64) *Handlers {

	handlers := &Handlers{
		kv:              kv,
		blocks:          blocks,
		index:           index,
		searchThreshold: searchThreshold,
	}

	// 1. memory_get_block - Fetch one block by id
	server.AddTool(mcp.Tool{
		Name:        "memory_get_block",
		Description: "Get a memory block by its ID, including its full content and last update time.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the block to fetch",
				},
			},
			Required: []string{"block_id"},
		},
	}, handlers.GetBlock)

	// 2. memory_insert - Merge new content into a block
	server.AddTool(mcp.Tool{
		Name:        "memory_insert",
		Description: "Insert content into an existing memory block at the start or end. Existing content is preserved.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the block to insert into",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Content to insert",
				},
				"position": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"start", "end"},
					"description": "Where to insert (default: end)",
				},
			},
			Required: []string{"block_id", "content"},
		},
	}, handlers.Insert)

	// 3. memory_replace - Replace a substring inside a block
	server.AddTool(mcp.Tool{
		Name:        "memory_replace",
		Description: "Replace the first occurrence of old_content in a memory block with new_content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the block to edit",
				},
				"old_content": map[string]interface{}{
					"type":        "string",
					"description": "Exact text to replace",
				},
				"new_content": map[string]interface{}{
					"type":        "string",
					"description": "Replacement text",
				},
			},
			Required: []string{"block_id", "old_content", "new_content"},
		},
	}, handlers.Replace)

	// 4. memory_rethink - Rewrite a block wholesale
	server.AddTool(mcp.Tool{
		Name:        "memory_rethink",
		Description: "Rewrite a memory block's entire content. Use when a block needs reorganizing rather than editing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the block to rewrite",
				},
				"new_content": map[string]interface{}{
					"type":        "string",
					"description": "Complete new content",
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Optional reason for the rewrite (logged, not stored)",
				},
			},
			Required: []string{"block_id", "new_content"},
		},
	}, handlers.Rethink)

	// 5. memory_create_block - Create a new block
	server.AddTool(mcp.Tool{
		Name:        "memory_create_block",
		Description: "Create a new memory block with an ID, label, and initial content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"block_id": map[string]interface{}{
					"type":        "string",
					"description": "Unique ID for the new block",
				},
				"label": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable label",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Initial content",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"core", "archival"},
					"description": "Block type (default: core)",
				},
			},
			Required: []string{"block_id", "label", "content"},
		},
	}, handlers.CreateBlock)

	// 6. memory_list_blocks - List blocks with previews
	server.AddTool(mcp.Tool{
		Name:        "memory_list_blocks",
		Description: "List all memory blocks with a short content preview, optionally filtered by type.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"core", "archival"},
					"description": "Filter by block type",
				},
			},
		},
	}, handlers.ListBlocks)

	// 7. memory_search - Search blocks semantically with substring fallback
	server.AddTool(mcp.Tool{
		Name:        "memory_search",
		Description: "Search memory blocks by meaning. Falls back to substring matching when semantic search is unavailable.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"blocks": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Optional block IDs to restrict the search to",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum results (default: 5)",
					"default":     5,
				},
				"useSemanticSearch": map[string]interface{}{
					"type":        "boolean",
					"description": "Use embedding similarity (default: true)",
					"default":     true,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.Search)

	// 8. archival_insert - Append an archival entry
	server.AddTool(mcp.Tool{
		Name:        "archival_insert",
		Description: "Store a long-term archival memory entry with optional metadata. Entries are append-only.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Content to archive",
				},
				"metadata": map[string]interface{}{
					"type":        "object",
					"description": "Optional metadata object",
				},
			},
			Required: []string{"content"},
		},
	}, handlers.ArchivalInsert)

	// 9. archival_search - Search archival entries
	server.AddTool(mcp.Tool{
		Name:        "archival_search",
		Description: "Search archival memory entries by meaning. Falls back to substring matching when semantic search is unavailable.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum results (default: 10)",
					"default":     10,
				},
				"useSemanticSearch": map[string]interface{}{
					"type":        "boolean",
					"description": "Use embedding similarity (default: true)",
					"default":     true,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.ArchivalSearch)

	// 10. memory_read - Read a legacy key-value entry
	server.AddTool(mcp.Tool{
		Name:        "memory_read",
		Description: "Read a legacy key-value memory entry by purpose.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"purpose": map[string]interface{}{
					"type":        "string",
					"description": "Purpose key of the entry",
				},
			},
			Required: []string{"purpose"},
		},
	}, handlers.Read)

	// 11. memory_write - Write a legacy key-value entry
	server.AddTool(mcp.Tool{
		Name:        "memory_write",
		Description: "Write a legacy key-value memory entry. Overwrites any existing entry for the same purpose.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"purpose": map[string]interface{}{
					"type":        "string",
					"description": "Purpose key of the entry",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to store",
				},
			},
			Required: []string{"purpose", "text"},
		},
	}, handlers.Write)

	return handlers
}
