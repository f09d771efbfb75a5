// ABOUTME: Sync commands for Charm cloud backup of legacy memory
// ABOUTME: Provides status, push, and pull of kv_memory entries
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/engram/internal/charm"
	"github.com/joho/godotenv"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Back up legacy memory to Charm cloud",
		Long: `Back up legacy key-value memory to Charm cloud.

Engram can mirror kv_memory entries to a Charm account via SSH keys,
so legacy memory survives a lost machine. Structured blocks stay local;
this covers only the legacy surface.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncPushCmd())
	cmd.AddCommand(newSyncPullCmd())

	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and connection info",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := charm.NewClient(charm.DefaultConfig())
			if err != nil {
				return fmt.Errorf("connecting to Charm: %w", err)
			}
			defer func() { _ = client.Close() }()

			id, err := client.ID()
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Status: Not connected")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Status: Connected")
			fmt.Fprintf(cmd.OutOrStdout(), "Charm ID: %s\n", id)
			return nil
		},
	}
}

func newSyncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push legacy memory entries to the cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			eng, _, err := openEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			entries, err := eng.KV.LoadAll()
			if err != nil {
				return fmt.Errorf("loading entries: %w", err)
			}

			client, err := charm.NewClient(charm.DefaultConfig())
			if err != nil {
				return fmt.Errorf("connecting to Charm: %w", err)
			}
			defer func() { _ = client.Close() }()

			pushed, err := client.PushEntries(entries)
			if err != nil {
				return fmt.Errorf("pushing entries: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d entries\n", pushed)
			return nil
		},
	}
}

func newSyncPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull backed-up entries into the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			client, err := charm.NewClient(charm.DefaultConfig())
			if err != nil {
				return fmt.Errorf("connecting to Charm: %w", err)
			}
			defer func() { _ = client.Close() }()

			entries, err := client.PullEntries()
			if err != nil {
				return fmt.Errorf("pulling entries: %w", err)
			}

			eng, _, err := openEngine()
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			for _, entry := range entries {
				if _, err := eng.KV.Write(entry.Purpose, entry.Text); err != nil {
					return fmt.Errorf("writing entry %s: %w", entry.Purpose, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d entries\n", len(entries))
			return nil
		},
	}
}
