// ABOUTME: Activity history commands
// ABOUTME: Lists committed sessions, exports them as GeoJSON, removes entries and manages the goal

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harper/stride/internal/geojson"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
	"github.com/harper/stride/internal/ui"
	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:     "activity",
	Aliases: []string{"act"},
	Short:   "Browse your activity history",
	Long: `Browse and manage committed activities.

Examples:
  stride activity list
  stride activity list --type running --limit 5
  stride activity list --geojson tracks > runs.geojson
  stride activity rm 3f2a9c1e --confirm
  stride activity goal 10000`,
}

var activityListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List committed activities, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")
		geometry, _ := cmd.Flags().GetString("geojson")

		entries, err := repo.ListActivities(userID)
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}
		if typeName != "" {
			typ, err := models.ParseActivityType(typeName)
			if err != nil {
				return err
			}
			entries = filterActivities(entries, typ)
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		if geometry != "" {
			return printActivityGeoJSON(entries, geometry)
		}

		if len(entries) == 0 {
			fmt.Println("No activities recorded.")
			return nil
		}
		var total float64
		for _, e := range entries {
			fmt.Println(ui.FormatActivity(e))
			total += e.DistanceMeters
		}
		fmt.Printf("\n%d activities, %s total\n", len(entries), ui.FormatDistance(total))
		return nil
	},
}

func filterActivities(entries []*models.ActivityEntry, typ models.ActivityType) []*models.ActivityEntry {
	out := make([]*models.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func printActivityGeoJSON(entries []*models.ActivityEntry, geometry string) error {
	var fc *geojson.FeatureCollection
	switch geometry {
	case "tracks":
		fc = geojson.ToTrackFeatureCollection(entries)
	case "starts":
		fc = geojson.ToStartPointsFeatureCollection(entries)
	default:
		return fmt.Errorf("unsupported geometry: %s (use 'tracks' or 'starts')", geometry)
	}
	data, err := fc.ToJSONIndent()
	if err != nil {
		return fmt.Errorf("failed to generate GeoJSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

var activityRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove an activity from history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := storage.FindActivity(repo, userID, args[0])
		if err != nil {
			return fmt.Errorf("activity '%s' not found: %w", args[0], err)
		}

		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm && !confirmTyped(fmt.Sprintf("Remove %s from %s? [y/N] ", entry.Type, entry.RecordedAt.Format("Jan 2 15:04")), "y", "yes") {
			fmt.Println("Canceled.")
			return nil
		}

		if err := repo.DeleteActivity(entry.ID); err != nil {
			return fmt.Errorf("failed to remove activity: %w", err)
		}
		color.Green("✓ Removed %s %s", entry.Type, color.New(color.Faint).Sprint(ui.ShortID(entry.ID)))
		return nil
	},
}

var activityGoalCmd = &cobra.Command{
	Use:   "goal [meters]",
	Short: "Show or set the distance goal",
	Long: `Show the distance goal and progress of your latest walk or run,
or set a new goal in meters.

Examples:
  stride activity goal
  stride activity goal 10000`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if len(args) == 1 {
			meters, err := strconv.ParseFloat(args[0], 64)
			if err != nil || meters <= 0 {
				return fmt.Errorf("goal must be a positive number of meters")
			}
			c.GoalMeters = meters
			if err := c.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			color.Green("✓ Goal set to %s", ui.FormatDistance(meters))
			return nil
		}

		goal := c.GetGoalMeters()
		fmt.Printf("Goal: %s\n", ui.FormatDistance(goal))

		entries, err := repo.ListActivities(userID)
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}
		for _, e := range entries {
			if e.Type.UsesLocation() {
				fmt.Printf("Latest %s: %s\n", e.Type, ui.FormatGoal(e.DistanceMeters, goal))
				return nil
			}
		}
		fmt.Println("No walks or runs recorded yet.")
		return nil
	},
}

func init() {
	activityListCmd.Flags().StringP("type", "t", "", "filter by activity type (walking, running, yoga)")
	activityListCmd.Flags().IntP("limit", "n", 0, "show at most this many entries")
	activityListCmd.Flags().String("geojson", "", "print GeoJSON instead (tracks or starts)")

	activityRmCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	activityCmd.AddCommand(activityListCmd, activityRmCmd, activityGoalCmd)
	rootCmd.AddCommand(activityCmd)
}
