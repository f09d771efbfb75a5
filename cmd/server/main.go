// ABOUTME: Main entry point for the engram MCP server with stdio transport
// ABOUTME: Initializes the engine and serves the memory tools
package main

import (
	"log"

	"github.com/harper/engram/internal/config"
	"github.com/harper/engram/internal/engine"
	"github.com/harper/engram/internal/llm"
	"github.com/harper/engram/internal/mcp"
	"github.com/harper/engram/internal/storage/sqlite"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - semantic search and summarization will not work")
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = sqlite.DefaultDBPath()
	}

	opts := engine.Options{}
	if cfg.OpenAIKey != "" {
		clientCfg := llm.DefaultConfig(cfg.OpenAIKey)
		clientCfg.ChatModel = cfg.ChatModel
		clientCfg.Dimension = cfg.VectorDimension
		client, err := llm.NewOpenAIClientWithConfig(clientCfg)
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			opts.Embedder = client
			opts.LLM = client
		}
	}

	eng, err := engine.Open(dbPath, opts)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = eng.Close() }()

	server := mcpserver.NewMCPServer(
		"Engram Memory",
		"0.1.0",
	)

	mcp.RegisterTools(server, eng.KV, eng.Blocks, eng.Index, cfg.SearchThreshold)

	log.Println("Engram MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
