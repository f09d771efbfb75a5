// ABOUTME: MCP tool handler implementations for the memory engine
// ABOUTME: Logical failures return structured success=false responses in-band
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harper/engram/internal/core"
	"github.com/harper/engram/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all memory tools
type Handlers struct {
	kv              *core.KVMemory
	blocks          *core.BlockManager
	index           *core.SemanticIndex
	searchThreshold float64
}

// statusResponse is the common success/message payload
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetBlock handles the memory_get_block tool
func (h *Handlers) GetBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}

	block, err := h.blocks.GetBlock(blockID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get block: %v", err)), nil
	}
	if block == nil {
		return marshalResult(statusResponse{
			Success: false,
			Message: fmt.Sprintf("Block '%s' does not exist", blockID),
		})
	}

	return marshalResult(map[string]interface{}{
		"block_id":   block.ID,
		"label":      block.Label,
		"content":    block.Content,
		"updated_at": formatTimestamp(block.UpdatedAt),
	})
}

// Insert handles the memory_insert tool
func (h *Handlers) Insert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}
	position := core.InsertPosition(request.GetString("position", string(core.PositionEnd)))

	if _, err := h.blocks.InsertContent(blockID, content, position); err != nil {
		return blockEditFailure(err)
	}

	return marshalResult(statusResponse{
		Success: true,
		Message: fmt.Sprintf("Content inserted into block '%s'", blockID),
	})
}

// Replace handles the memory_replace tool
func (h *Handlers) Replace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}
	oldContent, err := request.RequireString("old_content")
	if err != nil {
		return mcp.NewToolResultError("old_content argument is required and must be a string"), nil
	}
	newContent, err := request.RequireString("new_content")
	if err != nil {
		return mcp.NewToolResultError("new_content argument is required and must be a string"), nil
	}

	if _, err := h.blocks.ReplaceContent(blockID, oldContent, newContent); err != nil {
		return blockEditFailure(err)
	}

	return marshalResult(statusResponse{
		Success: true,
		Message: fmt.Sprintf("Content replaced in block '%s'", blockID),
	})
}

// Rethink handles the memory_rethink tool
func (h *Handlers) Rethink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}
	newContent, err := request.RequireString("new_content")
	if err != nil {
		return mcp.NewToolResultError("new_content argument is required and must be a string"), nil
	}
	reason := request.GetString("reason", "")

	if _, err := h.blocks.RethinkBlock(blockID, newContent, reason); err != nil {
		return blockEditFailure(err)
	}

	return marshalResult(statusResponse{
		Success: true,
		Message: fmt.Sprintf("Block '%s' rewritten", blockID),
	})
}

// CreateBlock handles the memory_create_block tool
func (h *Handlers) CreateBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := request.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError("block_id argument is required and must be a string"), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError("label argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}
	blockType := models.BlockType(request.GetString("type", string(models.BlockTypeCore)))

	block, err := h.blocks.CreateBlock(blockID, label, content, blockType)
	if err != nil {
		var conflict *core.BlockConflictError
		if errors.As(err, &conflict) {
			return marshalResult(map[string]interface{}{
				"success":  false,
				"message":  fmt.Sprintf("Block '%s' already exists", blockID),
				"block_id": blockID,
			})
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to create block: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{
		"success":  true,
		"message":  fmt.Sprintf("Block '%s' created", block.ID),
		"block_id": block.ID,
	})
}

// ListBlocks handles the memory_list_blocks tool
func (h *Handlers) ListBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		blocks []models.Block
		err    error
	)
	if typeFilter := request.GetString("type", ""); typeFilter != "" {
		blocks, err = h.blocks.GetAllBlocks(models.BlockType(typeFilter))
	} else {
		blocks, err = h.blocks.GetAllBlocks()
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list blocks: %v", err)), nil
	}

	type blockInfo struct {
		ID        string `json:"id"`
		Label     string `json:"label"`
		Type      string `json:"type"`
		Preview   string `json:"preview"`
		UpdatedAt string `json:"updated_at"`
	}

	infos := make([]blockInfo, 0, len(blocks))
	for _, block := range blocks {
		infos = append(infos, blockInfo{
			ID:        block.ID,
			Label:     block.Label,
			Type:      string(block.Type),
			Preview:   previewContent(block.Content, 100),
			UpdatedAt: formatTimestamp(block.UpdatedAt),
		})
	}

	return marshalResult(map[string]interface{}{"blocks": infos})
}

// Search handles the memory_search tool
func (h *Handlers) Search(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 5)
	useSemantic := request.GetBool("useSemanticSearch", true)

	candidates, err := h.searchCandidates(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load blocks: %v", err)), nil
	}

	type searchResult struct {
		BlockID string  `json:"block_id"`
		Label   string  `json:"label"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	}

	results := []searchResult{}

	if useSemantic {
		matches, err := h.index.SearchBlocks(query, candidates, limit, h.searchThreshold)
		if err == nil {
			for _, match := range matches {
				results = append(results, searchResult{
					BlockID: match.Block.ID,
					Label:   match.Block.Label,
					Content: match.Block.Content,
					Score:   roundScore(match.Score),
				})
			}
			return marshalResult(map[string]interface{}{"results": results})
		}
		// Semantic search failed; fall through to substring matching
	}

	lowered := strings.ToLower(query)
	for _, block := range candidates {
		if len(results) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(block.Content), lowered) ||
			strings.Contains(strings.ToLower(block.Label), lowered) {
			results = append(results, searchResult{
				BlockID: block.ID,
				Label:   block.Label,
				Content: block.Content,
				Score:   1.0,
			})
		}
	}

	return marshalResult(map[string]interface{}{"results": results})
}

// searchCandidates resolves the optional blocks argument to actual blocks
func (h *Handlers) searchCandidates(request mcp.CallToolRequest) ([]models.Block, error) {
	all, err := h.blocks.GetAllBlocks()
	if err != nil {
		return nil, err
	}

	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return all, nil
	}
	rawIDs, ok := args["blocks"].([]interface{})
	if !ok || len(rawIDs) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(rawIDs))
	for _, raw := range rawIDs {
		if id, ok := raw.(string); ok {
			wanted[id] = true
		}
	}

	var filtered []models.Block
	for _, block := range all {
		if wanted[block.ID] {
			filtered = append(filtered, block)
		}
	}
	return filtered, nil
}

// ArchivalInsert handles the archival_insert tool
func (h *Handlers) ArchivalInsert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	var metadata map[string]interface{}
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		if raw, ok := args["metadata"].(map[string]interface{}); ok {
			metadata = raw
		}
	}

	entry, err := h.blocks.InsertArchival(content, metadata)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to insert archival entry: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{
		"success": true,
		"message": "Archival entry stored",
		"id":      entry.ID,
	})
}

// ArchivalSearch handles the archival_search tool
func (h *Handlers) ArchivalSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 10)
	useSemantic := request.GetBool("useSemanticSearch", true)

	type archivalResult struct {
		ID        string                 `json:"id"`
		Content   string                 `json:"content"`
		CreatedAt string                 `json:"created_at"`
		Metadata  map[string]interface{} `json:"metadata"`
		Score     *float64               `json:"score,omitempty"`
	}

	results := []archivalResult{}

	if useSemantic {
		entries, err := h.blocks.GetAllArchival()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load archival entries: %v", err)), nil
		}
		matches, err := h.index.SearchArchival(query, entries, limit, h.searchThreshold)
		if err == nil {
			for _, match := range matches {
				score := roundScore(match.Score)
				results = append(results, archivalResult{
					ID:        match.Entry.ID,
					Content:   match.Entry.Content,
					CreatedAt: formatTimestamp(match.Entry.CreatedAt),
					Metadata:  match.Entry.Metadata,
					Score:     &score,
				})
			}
			return marshalResult(map[string]interface{}{"results": results})
		}
		// Semantic search failed; fall through to substring matching
	}

	entries, err := h.blocks.SearchArchivalText(query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search archival entries: %v", err)), nil
	}
	for _, entry := range entries {
		results = append(results, archivalResult{
			ID:        entry.ID,
			Content:   entry.Content,
			CreatedAt: formatTimestamp(entry.CreatedAt),
			Metadata:  entry.Metadata,
		})
	}

	return marshalResult(map[string]interface{}{"results": results})
}

// Read handles the memory_read tool
func (h *Handlers) Read(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	purpose, err := request.RequireString("purpose")
	if err != nil {
		return mcp.NewToolResultError("purpose argument is required and must be a string"), nil
	}

	entry, err := h.kv.Read(purpose)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read memory: %v", err)), nil
	}
	if entry == nil {
		return marshalResult(statusResponse{
			Success: false,
			Message: fmt.Sprintf("No memory stored for purpose '%s'", purpose),
		})
	}

	return marshalResult(map[string]interface{}{
		"purpose":    entry.Purpose,
		"text":       entry.Text,
		"updated_at": formatTimestamp(entry.UpdatedAt),
	})
}

// Write handles the memory_write tool
func (h *Handlers) Write(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	purpose, err := request.RequireString("purpose")
	if err != nil {
		return mcp.NewToolResultError("purpose argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	entry, err := h.kv.Write(purpose, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write memory: %v", err)), nil
	}

	return marshalResult(map[string]interface{}{
		"success":    true,
		"message":    fmt.Sprintf("Memory stored for purpose '%s'", purpose),
		"updated_at": formatTimestamp(entry.UpdatedAt),
	})
}

// blockEditFailure maps edit errors: logical failures become structured
// success=false responses, everything else a tool error.
func blockEditFailure(err error) (*mcp.CallToolResult, error) {
	var (
		notFound        *core.BlockNotFoundError
		contentNotFound *core.ContentNotFoundError
	)
	switch {
	case errors.As(err, &notFound):
		return marshalResult(statusResponse{
			Success: false,
			Message: fmt.Sprintf("Block '%s' does not exist", notFound.ID),
		})
	case errors.As(err, &contentNotFound):
		return marshalResult(statusResponse{
			Success: false,
			Message: fmt.Sprintf("Content not found in block '%s'", contentNotFound.BlockID),
		})
	default:
		return mcp.NewToolResultError(fmt.Sprintf("edit failed: %v", err)), nil
	}
}

// marshalResult serializes a response payload into a text result
func marshalResult(payload interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// formatTimestamp renders a timestamp for the tool layer
func formatTimestamp(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

// previewContent shortens content for listings, appending an ellipsis
func previewContent(content string, maxLen int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= maxLen {
		return flat
	}
	return string(runes[:maxLen]) + "…"
}

// roundScore rounds a similarity score to two decimal places
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
