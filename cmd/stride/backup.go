// ABOUTME: Backup command for exporting data to YAML
// ABOUTME: Creates portable backup files for data migration

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harper/stride/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a YAML backup of all data",
	Long: `Create a YAML backup file containing all todos and activities.

The backup file can be used to:
- Migrate data between machines
- Restore after data loss
- Import into a fresh database

Examples:
  stride backup --output stride.yaml
  stride backup -o ~/backups/stride-$(date +%Y%m%d).yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		data, err := storage.ExportBackup(repo)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}

		if output == "" {
			output = fmt.Sprintf("stride-%s.yaml", time.Now().Format("20060102-150405"))
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for backup files
			return fmt.Errorf("failed to write backup: %w", err)
		}

		todos, activities, err := countData(repo)
		if err != nil {
			return err
		}

		color.Green("Backup created: %s", output)
		fmt.Printf("  %d todos, %d activities\n", todos, activities)

		return nil
	},
}

// countData totals every user's todos and activities in repo.
func countData(r storage.Repository) (int, int, error) {
	todos, err := r.ListAllTodos()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list todos: %w", err)
	}
	activities, err := r.ListAllActivities()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return len(todos), len(activities), nil
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "output file (default: stride-YYYYMMDD-HHMMSS.yaml)")

	rootCmd.AddCommand(backupCmd)
}
