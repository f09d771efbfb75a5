// ABOUTME: CLI command to search memory blocks and archival entries
// ABOUTME: Semantic search with automatic substring fallback
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

var (
	searchLimit    int
	searchArchival bool
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memory",
		Long: `Search memory blocks by meaning.

Uses embedding similarity when an OpenAI API key is configured, and
falls back to substring matching otherwise.

Examples:
  engram search "favorite programming language"
  engram search --archival "project decisions"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")
	cmd.Flags().BoolVar(&searchArchival, "archival", false, "Search archival entries instead of blocks")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	query := args[0]

	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	out := cmd.OutOrStdout()

	if searchArchival {
		entries, err := eng.Blocks.GetAllArchival()
		if err != nil {
			return fmt.Errorf("loading archival entries: %w", err)
		}

		matches, err := eng.Index.SearchArchival(query, entries, searchLimit, cfg.SearchThreshold)
		if err == nil {
			if len(matches) == 0 {
				fmt.Fprintln(out, "No matches.")
				return nil
			}
			for _, match := range matches {
				fmt.Fprintf(out, "[%.2f] %s  %s\n", match.Score, match.Entry.ID, truncate(match.Entry.Content, 80))
			}
			return nil
		}

		// Semantic search unavailable; substring fallback
		fallback, err := eng.Blocks.SearchArchivalText(query, searchLimit)
		if err != nil {
			return fmt.Errorf("searching archival entries: %w", err)
		}
		if len(fallback) == 0 {
			fmt.Fprintln(out, "No matches.")
			return nil
		}
		for _, entry := range fallback {
			fmt.Fprintf(out, "%s  %s\n", entry.ID, truncate(entry.Content, 80))
		}
		return nil
	}

	blocks, err := eng.Blocks.GetAllBlocks()
	if err != nil {
		return fmt.Errorf("loading blocks: %w", err)
	}

	matches, err := eng.Index.SearchBlocks(query, blocks, searchLimit, cfg.SearchThreshold)
	if err == nil {
		if len(matches) == 0 {
			fmt.Fprintln(out, "No matches.")
			return nil
		}
		for _, match := range matches {
			fmt.Fprintf(out, "[%.2f] %s (%s)  %s\n", match.Score, match.Block.Label,
				match.Block.ID, truncate(match.Block.Content, 60))
		}
		return nil
	}

	// Semantic search unavailable; substring fallback over block content
	found := 0
	for _, block := range blocks {
		if found >= searchLimit {
			break
		}
		if containsFold(block.Content, query) || containsFold(block.Label, query) {
			fmt.Fprintf(out, "%s (%s)  %s\n", block.Label, block.ID, truncate(block.Content, 60))
			found++
		}
	}
	if found == 0 {
		fmt.Fprintln(out, "No matches.")
	}
	return nil
}
