// ABOUTME: Import command for restoring data from YAML backup
// ABOUTME: Supports importing backup files created by the backup command

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harper/stride/internal/storage"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import data from a YAML backup",
	Long: `Import todos and activities from a YAML backup file.

This restores data from a backup created with 'stride backup'.

WARNING: This will add to existing data, not replace it.

Examples:
  stride import stride.yaml
  stride import ~/backups/stride-20241214.yaml --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !confirmTyped(fmt.Sprintf("Import data from '%s'? [y/N] ", filename), "y", "yes") {
			fmt.Println("Canceled.")
			return nil
		}

		if err := storage.ImportBackup(repo, data); err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		todos, activities, err := countData(repo)
		if err != nil {
			return err
		}

		color.Green("Import complete")
		fmt.Printf("  %d todos, %d activities in database\n", todos, activities)

		return nil
	},
}

func init() {
	importCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(importCmd)
}
