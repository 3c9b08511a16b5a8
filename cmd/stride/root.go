// ABOUTME: Root Cobra command and shared command state
// ABOUTME: Loads config, sets up logging, opens storage and resolves the current user

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/harper/stride/internal/config"
	"github.com/harper/stride/internal/logging"
	"github.com/harper/stride/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	repo   storage.Repository
	logger = logging.Discard()
	userID string
)

// skipStorage marks commands that never touch the document store.
const skipStorage = "skip-storage"

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Activity tracking and todos from the terminal",
	Long: `
███████╗████████╗██████╗ ██╗██████╗ ███████╗
██╔════╝╚══██╔══╝██╔══██╗██║██╔══██╗██╔════╝
███████╗   ██║   ██████╔╝██║██║  ██║█████╗
╚════██║   ██║   ██╔══██╗██║██║  ██║██╔══╝
███████║   ██║   ██║  ██║██║██████╔╝███████╗
╚══════╝   ╚═╝   ╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝

      Track walks, runs and yoga, and keep a todo list

Examples:
  stride track start --type running
  stride track sample --lat 41.8781 --lng -87.6298 --speed 2.8
  stride track commit
  stride todo add "Stretch" --category Yoga --date 2024-12-15
  stride activity list`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger = logging.New(os.Stderr, cfg.GetLogLevel())

		// kv and client read the host from the environment
		if err := os.Setenv("CHARM_HOST", cfg.GetCharmHost()); err != nil {
			return err
		}

		if cmd.Annotations[skipStorage] == "true" {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Debug("storage opened", "backend", cfg.GetBackend())

		userID, err = cfg.Identity().UserID(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to resolve user: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// cmdContext returns the command's context, or Background when run outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// currentConfig returns the loaded config, falling back to defaults.
func currentConfig() *config.Config {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return cfg
}
