// ABOUTME: CLI command to print the assembled prompt fragment
// ABOUTME: Useful for inspecting what an agent will see at session start
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

var contextPersona string

// NewContextCmd creates the context command
func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the assembled memory context",
		Long: `Print the full prompt fragment the engine assembles for an agent:
legacy memory, core blocks, conversation summaries, and tool instructions.

Examples:
  engram context
  engram context --persona "You are a helpful research assistant."`,
		RunE: runContext,
	}

	cmd.Flags().StringVar(&contextPersona, "persona", "", "Persona prompt to prepend")

	return cmd
}

func runContext(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	eng, _, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	fmt.Fprintln(cmd.OutOrStdout(), eng.Hydrator.AssemblePrompt(contextPersona))
	return nil
}
