// ABOUTME: Yoga routine commands
// ABOUTME: Lists the routine catalog and logs a completed routine to history

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/ui"
	"github.com/spf13/cobra"
)

var yogaCmd = &cobra.Command{
	Use:   "yoga",
	Short: "Guided yoga routines",
	Long: `Browse yoga routines and log the ones you finish.

Examples:
  stride yoga list
  stride yoga start "Morning Yoga"
  stride yoga start 3 --minutes 20`,
}

var yogaListCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "List yoga routines",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)
		for _, r := range models.YogaRoutines {
			fmt.Printf("%s %s %s\n", faint.Sprint(r.ID), color.GreenString(r.Name), color.CyanString("(%s)", r.Duration))
			fmt.Printf("  %s\n", faint.Sprint(r.Description))
		}
		return nil
	},
}

var yogaStartCmd = &cobra.Command{
	Use:   "start <routine>",
	Short: "Start a routine and log it to history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		routine, ok := models.FindYogaRoutine(args[0])
		if !ok {
			return fmt.Errorf("yoga routine '%s' not found", args[0])
		}

		duration := routine.Duration
		if cmd.Flags().Changed("minutes") {
			minutes, _ := cmd.Flags().GetInt("minutes")
			if minutes <= 0 {
				return fmt.Errorf("--minutes must be positive")
			}
			duration = time.Duration(minutes) * time.Minute
		}

		color.Green("✓ Yoga session started")
		fmt.Printf("You are now doing %s. Duration: %s.\n", routine.Name, duration)

		entry := models.NewActivityEntry(userID, models.ActivityYoga, 0, int64(duration/time.Second), nil)
		if err := repo.CreateActivity(entry); err != nil {
			return fmt.Errorf("failed to save activity: %w", err)
		}
		fmt.Println(ui.FormatActivity(entry))
		return nil
	},
}

func init() {
	yogaStartCmd.Flags().Int("minutes", 0, "override the routine length")

	yogaCmd.AddCommand(yogaListCmd, yogaStartCmd)
	rootCmd.AddCommand(yogaCmd)
}
