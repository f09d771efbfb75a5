// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use engram memory via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/engram/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs engram as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to use durable memory via stdio.

Configure in Claude Desktop's config file to enable memory tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  engram mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "engram": {
  #       "command": "engram",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" && !quiet {
		log.Println("Warning: OPENAI_API_KEY not set - semantic search and summarization will not work")
	}

	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}

	// Run the legacy migration once, if the store still needs it
	needed, err := eng.Migrator.MigrationNeeded()
	if err != nil {
		return fmt.Errorf("checking migration: %w", err)
	}
	if needed {
		result, err := eng.Migrator.MigrateKVToBlocks()
		if err != nil {
			return fmt.Errorf("migrating legacy memory: %w", err)
		}
		if !quiet {
			log.Printf("Migrated %d/%d legacy memory entries into blocks", result.Migrated, result.Total)
		}
	}

	server := mcpserver.NewMCPServer(
		"Engram Memory",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, eng.KV, eng.Blocks, eng.Index, cfg.SearchThreshold)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Engram MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		if err := eng.Close(); err != nil {
			log.Printf("Warning: error closing store: %v", err)
		}
		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
