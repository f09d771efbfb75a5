// ABOUTME: CLI command for the legacy kv_memory migration
// ABOUTME: Runs, rolls back, or exports the kv-to-blocks migration
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joho/godotenv"
)

// NewMigrateCmd creates the migrate command group
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy key-value memory into blocks",
		Long: `Migrate legacy key-value memory into structured blocks.

Entries are classified by purpose into the standard blocks (human,
persona, context). The original kv_memory table is kept as
kv_memory_backup until you roll back or delete it.`,
		RunE: runMigrate,
	}

	cmd.AddCommand(newMigrateStatusCmd())
	cmd.AddCommand(newMigrateRollbackCmd())
	cmd.AddCommand(newMigrateExportCmd())

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	eng, _, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	needed, err := eng.Migrator.MigrationNeeded()
	if err != nil {
		return fmt.Errorf("checking migration: %w", err)
	}
	if !needed {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
		return nil
	}

	result, err := eng.Migrator.MigrateKVToBlocks()
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d/%d entries (%d skipped)\n",
		result.Migrated, result.Total, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", msg)
	}
	return nil
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a migration is needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			eng, _, err := openEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			needed, err := eng.Migrator.MigrationNeeded()
			if err != nil {
				return fmt.Errorf("checking migration: %w", err)
			}
			if needed {
				fmt.Fprintln(cmd.OutOrStdout(), "Migration needed: legacy entries present, blocks empty.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No migration needed.")
			}
			return nil
		},
	}
}

func newMigrateRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore kv_memory from the migration backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			eng, _, err := openEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if err := eng.Migrator.RollbackMigration(); err != nil {
				return fmt.Errorf("rolling back: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back; kv_memory restored.")
			return nil
		},
	}
}

func newMigrateExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export core blocks back into kv_memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			eng, _, err := openEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			count, err := eng.Migrator.ExportBlocksToKV()
			if err != nil {
				return fmt.Errorf("exporting: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d core blocks to kv_memory\n", count)
			return nil
		},
	}
}
