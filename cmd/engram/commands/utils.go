// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Engine setup, truncation, and relative time formatting
package commands

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harper/engram/internal/config"
	"github.com/harper/engram/internal/core"
	"github.com/harper/engram/internal/engine"
	"github.com/harper/engram/internal/llm"
	"github.com/harper/engram/internal/storage/sqlite"
	openai "github.com/sashabaranov/go-openai"
)

// openEngine loads configuration and opens the memory engine. The OpenAI
// client is attached only when an API key is configured; without it the
// engine still works with substring search and no summarization.
func openEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = sqlite.DefaultDBPath()
	}

	opts := engine.Options{
		Ladder: core.LadderConfig{
			BaseThreshold:      cfg.SummaryBaseThreshold,
			RecursiveThreshold: cfg.SummaryRecursiveThreshold,
			MaxLevel:           cfg.SummaryMaxLevel,
			RecentCount:        cfg.SummaryRecentCount,
		},
	}

	if cfg.OpenAIKey != "" {
		clientCfg := llm.DefaultConfig(cfg.OpenAIKey)
		clientCfg.ChatModel = cfg.ChatModel
		clientCfg.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
		clientCfg.Dimension = cfg.VectorDimension
		clientCfg.MaxRetries = cfg.MaxRetries
		clientCfg.RetryDelay = cfg.RetryDelay
		clientCfg.Timeout = cfg.Timeout

		client, err := llm.NewOpenAIClientWithConfig(clientCfg)
		if err != nil {
			log.Printf("Warning: failed to initialize OpenAI client: %v", err)
		} else {
			opts.Embedder = client
			opts.LLM = client
		}
	} else if verbose {
		log.Println("OPENAI_API_KEY not set - semantic search and summarization disabled")
	}

	eng, err := engine.Open(dbPath, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	return eng, cfg, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated; when
// maxLen is 3 or less it cuts without adding "..."
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// containsFold reports whether substr occurs in s, case-insensitively
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
