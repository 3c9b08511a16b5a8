// ABOUTME: Export command for generating GeoJSON, markdown, and YAML output
// ABOUTME: Time filters narrow the activities included in GeoJSON exports

package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/harper/stride/internal/geojson"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
	"github.com/spf13/cobra"
)

// durationRegex matches relative duration strings like "24h", "7d", "1w", "1m".
var durationRegex = regexp.MustCompile(`^(\d+)([hdwm])$`)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export activities and todos in various formats",
	Long: `Export your data as GeoJSON, Markdown, or YAML.

GeoJSON holds activity tracks (or start points); Markdown is a readable
summary of todos and activities; YAML is a full backup.

Examples:
  # Export activity tracks as GeoJSON
  stride export --format geojson

  # Only the last week, as start points
  stride export --format geojson --geometry starts --since 7d

  # Absolute range
  stride export --format geojson --from 2024-12-01 --to 2024-12-14

  # Markdown summary to a file
  stride export --format markdown --output stride.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "geojson" && format != "markdown" && format != "yaml" {
			return fmt.Errorf("unsupported format: %s (use 'geojson', 'markdown', or 'yaml')", format)
		}

		geometry, _ := cmd.Flags().GetString("geometry")
		if geometry != "tracks" && geometry != "starts" {
			return fmt.Errorf("unsupported geometry: %s (use 'tracks' or 'starts')", geometry)
		}

		since, _ := cmd.Flags().GetString("since")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		var fromTime, toTime time.Time
		var err error

		if since != "" {
			fromTime, err = parseDuration(since)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
		}
		if from != "" {
			fromTime, err = parseDate(from)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
		}
		if to != "" {
			toTime, err = parseDate(to)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			// Set to end of day
			toTime = toTime.Add(24*time.Hour - time.Second)
		}

		output, _ := cmd.Flags().GetString("output")

		switch format {
		case "markdown":
			return exportMarkdown(output)
		case "yaml":
			return exportYAML(output)
		default:
			entries, err := repo.ListActivities(userID)
			if err != nil {
				return fmt.Errorf("failed to list activities: %w", err)
			}
			return exportGeoJSON(activitiesBetween(entries, fromTime, toTime), geometry, output)
		}
	},
}

// activitiesBetween keeps entries recorded within [from, to]; zero bounds are open.
func activitiesBetween(entries []*models.ActivityEntry, from, to time.Time) []*models.ActivityEntry {
	out := make([]*models.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		if !from.IsZero() && e.RecordedAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.RecordedAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func exportGeoJSON(entries []*models.ActivityEntry, geometry, output string) error {
	if len(entries) == 0 {
		return fmt.Errorf("no activities found")
	}

	fc := geojson.ToTrackFeatureCollection(entries)
	if geometry == "starts" {
		fc = geojson.ToStartPointsFeatureCollection(entries)
	}
	data, err := fc.ToJSONIndent()
	if err != nil {
		return fmt.Errorf("failed to generate GeoJSON: %w", err)
	}
	return writeExport(output, append(data, '\n'), fmt.Sprintf("%d features", len(fc.Features)))
}

func exportMarkdown(output string) error {
	data, err := storage.ExportToMarkdown(repo, userID)
	if err != nil {
		return fmt.Errorf("failed to generate markdown: %w", err)
	}
	return writeExport(output, data, "markdown")
}

func exportYAML(output string) error {
	data, err := storage.ExportToYAML(repo)
	if err != nil {
		return fmt.Errorf("failed to generate YAML: %w", err)
	}
	return writeExport(output, data, "YAML")
}

// writeExport writes data to output, or to stdout when output is empty.
func writeExport(output string, data []byte, what string) error {
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // export files are meant to be shared
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", what, output)
	return nil
}

// parseDuration turns relative durations like "24h", "7d", "1w" into a point in the past.
func parseDuration(s string) (time.Time, error) {
	matches := durationRegex.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("invalid duration format (use e.g., 24h, 7d, 1w)")
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number in duration '%s': %w", s, err)
	}

	var duration time.Duration
	switch matches[2] {
	case "h":
		duration = time.Duration(num) * time.Hour
	case "d":
		duration = time.Duration(num) * 24 * time.Hour
	case "w":
		duration = time.Duration(num) * 7 * 24 * time.Hour
	case "m":
		duration = time.Duration(num) * 30 * 24 * time.Hour
	}

	return time.Now().Add(-duration), nil
}

// parseDate parses date strings in RFC3339 or YYYY-MM-DD format.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format (use YYYY-MM-DD or RFC3339)")
	}
	return t, nil
}

func init() {
	exportCmd.Flags().StringP("format", "f", "geojson", "output format (geojson, markdown, yaml)")
	exportCmd.Flags().StringP("geometry", "g", "tracks", "GeoJSON geometry (tracks, starts)")
	exportCmd.Flags().String("since", "", "relative time filter (e.g., 24h, 7d, 1w, 1m)")
	exportCmd.Flags().String("from", "", "start date (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().String("to", "", "end date (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
