// ABOUTME: CLI command to list memory blocks
// ABOUTME: Shows blocks with type, preview, and last update
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/engram/internal/models"
	"github.com/joho/godotenv"
)

var listType string

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memory blocks",
		Long: `List memory blocks with a short preview of their content.

Examples:
  engram list
  engram list --type core
  engram list --format json`,
		RunE: runList,
	}

	cmd.Flags().StringVar(&listType, "type", "", "Filter by block type (core or archival)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	eng, _, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	var blocks []models.Block
	if listType != "" {
		blocks, err = eng.Blocks.GetAllBlocks(models.BlockType(listType))
	} else {
		blocks, err = eng.Blocks.GetAllBlocks()
	}
	if err != nil {
		return fmt.Errorf("listing blocks: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(blocks)
	}

	if len(blocks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No memory blocks stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTYPE\tUPDATED\tPREVIEW")
	for _, block := range blocks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			block.ID, block.Label, block.Type,
			formatTime(block.UpdatedAt), truncate(block.Content, 50))
	}
	return w.Flush()
}
