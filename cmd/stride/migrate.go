// ABOUTME: Migration command for copying stride data between storage backends
// ABOUTME: Supports sqlite and charm targets with an empty-target safety check

package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/stride/internal/charm"
	"github.com/harper/stride/internal/config"
	"github.com/harper/stride/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
	Long: `Copy all todos and activities from the currently configured backend
to another backend.

Does NOT update the config file; verify the migration was successful
then update config.json manually.

Examples:
  stride migrate --to charm
  stride migrate --to sqlite --data-dir ~/stride-sqlite
  stride migrate --to sqlite --force`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var (
	migrateTo      string
	migrateDataDir string
	migrateForce   bool
)

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "target data directory for sqlite (defaults to current config data_dir)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "allow writing into a target that already holds data")
	_ = migrateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	sourceBackend := c.GetBackend()
	targetBackend := migrateTo

	if targetBackend != config.BackendSQLite && targetBackend != config.BackendCharm {
		return fmt.Errorf("invalid target backend %q: must be %q or %q", targetBackend, config.BackendSQLite, config.BackendCharm)
	}

	targetDataDir := c.GetDataDir()
	if migrateDataDir != "" {
		targetDataDir = config.ExpandPath(migrateDataDir)
	}
	if targetBackend == sourceBackend && (targetBackend == config.BackendCharm || targetDataDir == c.GetDataDir()) {
		return fmt.Errorf("target backend %q is the same as the current backend", targetBackend)
	}

	dst, err := openMigrateStorage(c, targetBackend, targetDataDir)
	if err != nil {
		return fmt.Errorf("open target storage (%s): %w", targetBackend, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing target storage: %v\n", cerr)
		}
	}()

	todos, activities, err := countData(dst)
	if err != nil {
		return fmt.Errorf("check target storage: %w", err)
	}
	if todos+activities > 0 && !migrateForce {
		return fmt.Errorf("target %s already holds %d todos and %d activities; use --force to merge", targetBackend, todos, activities)
	}

	color.Yellow("Migrating stride data:")
	fmt.Printf("  Source:  %s (%s)\n", sourceBackend, c.GetDataDir())
	if targetBackend == config.BackendCharm {
		fmt.Printf("  Target:  %s (%s)\n", targetBackend, c.GetCharmHost())
	} else {
		fmt.Printf("  Target:  %s (%s)\n", targetBackend, targetDataDir)
	}
	fmt.Println()

	summary, err := storage.MigrateData(repo, dst)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("Migration complete!")
	fmt.Printf("  Todos:      %d\n", summary.Todos)
	fmt.Printf("  Activities: %d\n", summary.Activities)
	fmt.Println()
	color.Yellow("Note: config.json was NOT updated. To switch to the new backend, edit:")
	fmt.Printf("  %s\n", config.GetConfigPath())
	fmt.Printf("  Set \"backend\": %q", targetBackend)
	if migrateDataDir != "" {
		fmt.Printf(" and \"data_dir\": %q", migrateDataDir)
	}
	fmt.Println()

	return nil
}

// openMigrateStorage creates a Repository implementation for the given backend and data directory.
func openMigrateStorage(c *config.Config, backend, dataDir string) (storage.Repository, error) {
	switch backend {
	case config.BackendSQLite:
		return storage.NewSQLiteDB(filepath.Join(dataDir, "stride.db"))
	case config.BackendCharm:
		return charm.NewClient(&charm.Config{CharmHost: c.GetCharmHost(), AutoSync: true})
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}
