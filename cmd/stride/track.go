// ABOUTME: Live tracking commands backed by the persisted session store
// ABOUTME: Start, feed samples, stop, commit to history, replay files and follow stdin

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harper/stride/internal/location"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/sessionstore"
	"github.com/harper/stride/internal/tracker"
	"github.com/harper/stride/internal/ui"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track a walk, run or yoga session",
	Long: `Track an activity session between commands.

The live session is kept on disk until it is committed to your
activity history or reset.

Examples:
  stride track start --type running
  stride track sample --lat 41.8781 --lng -87.6298 --speed 2.8
  stride track status
  stride track stop
  stride track commit

  # Replay a recorded track
  stride track replay morning.gpx --type walking --commit

  # Follow NDJSON samples from another process
  gpspipe -w | my-filter | stride track follow --type running`,
}

var trackStartCmd = &cobra.Command{
	Use:         "start",
	Short:       "Start a tracking session",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		typ, err := models.ParseActivityType(typeName)
		if err != nil {
			return err
		}

		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := loadOrNewRecord(store)
		if err != nil {
			return err
		}
		if err := checkStartable(rec); err != nil {
			return err
		}

		session, err := rec.Session.Start(time.Now())
		if err != nil {
			return err
		}
		rec = &sessionstore.Record{ActivityType: typ, Session: session}
		if err := store.Save(rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		color.Green("✓ Started %s session", typ)
		if !typ.UsesLocation() {
			fmt.Println("Yoga sessions are timed only; run 'stride track commit' when done.")
		}
		return nil
	},
}

var trackSampleCmd = &cobra.Command{
	Use:         "sample --lat <latitude> --lng <longitude>",
	Short:       "Record a position sample",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		atStr, _ := cmd.Flags().GetString("at")

		at := time.Now()
		if atStr != "" {
			parsed, err := time.Parse(time.RFC3339, atStr)
			if err != nil {
				return fmt.Errorf("invalid timestamp format (use RFC3339): %w", err)
			}
			at = parsed
		}
		sample := tracker.NewSample(lat, lng, at)
		if cmd.Flags().Changed("speed") {
			speed, _ := cmd.Flags().GetFloat64("speed")
			sample = sample.WithSpeed(speed)
		}

		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := loadRecord(store)
		if err != nil {
			return err
		}
		if !rec.ActivityType.UsesLocation() {
			return fmt.Errorf("%s sessions do not take location samples", rec.ActivityType)
		}

		t := tracker.New(tracker.WithSession(rec.Session), tracker.WithLogger(logger))
		applied, err := t.Record(sample)
		if err != nil {
			return fmt.Errorf("sample rejected: %w", err)
		}
		if !applied {
			color.Yellow("⚠ Session is stopped; sample ignored")
			return nil
		}

		rec.Session = t.Snapshot()
		rec.AppendPoint(sample)
		if err := store.Save(rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Println(ui.FormatSession(rec.ActivityType, rec.Session, time.Now()))
		return nil
	},
}

var trackStopCmd = &cobra.Command{
	Use:         "stop",
	Short:       "Stop the running session",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := loadRecord(store)
		if err != nil {
			return err
		}
		if !rec.Session.IsActive() {
			color.Yellow("⚠ Session already stopped")
			return nil
		}

		stopSession(rec, time.Now())
		if err := store.Save(rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		color.Green("✓ Stopped %s session", rec.ActivityType)
		fmt.Println(ui.FormatSession(rec.ActivityType, rec.Session, *rec.StoppedAt))
		fmt.Println("Run 'stride track commit' to save it to your history.")
		return nil
	},
}

var trackStatusCmd = &cobra.Command{
	Use:         "status",
	Aliases:     []string{"st"},
	Short:       "Show the live session",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := store.Load()
		if errors.Is(err, sessionstore.ErrNoSession) {
			fmt.Println("No tracking session.")
			return nil
		}
		if err != nil {
			return err
		}

		asOf := time.Now()
		if rec.StoppedAt != nil {
			asOf = *rec.StoppedAt
		}
		fmt.Println(ui.FormatSession(rec.ActivityType, rec.Session, asOf))
		if rec.ActivityType.UsesLocation() {
			fmt.Printf("  %d points\n", len(rec.Track))
			fmt.Println("  " + ui.FormatGoal(rec.Session.AccumulatedDistanceMeters, currentConfig().GetGoalMeters()))
		}
		if rec.StoppedAt != nil {
			fmt.Println("  stopped, not yet committed")
		}
		return nil
	},
}

var trackResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Discard the live session",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		color.Green("✓ Session discarded")
		return nil
	},
}

var trackCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Save the session to your activity history",
	Long: `Stop the session if it is still running and append it to your
activity history. Distance sessions report progress toward your goal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := loadRecord(store)
		if err != nil {
			return err
		}
		if rec.Session.StartedAt == nil {
			return fmt.Errorf("session was never started")
		}
		now := time.Now()
		if rec.Session.IsActive() {
			stopSession(rec, now)
		}

		entry := models.NewActivityEntry(userID, rec.ActivityType,
			rec.Session.AccumulatedDistanceMeters, rec.Duration(now), rec.Track)
		if err := repo.CreateActivity(entry); err != nil {
			return fmt.Errorf("failed to save activity: %w", err)
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		color.Green("✓ Saved %s to history", rec.ActivityType)
		fmt.Println(ui.FormatActivity(entry))
		if rec.ActivityType.UsesLocation() {
			fmt.Println(ui.FormatGoal(entry.DistanceMeters, currentConfig().GetGoalMeters()))
		}
		return nil
	},
}

var trackReplayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a GPX, FIT or NDJSON track",
	Long: `Run a recorded track through a fresh session and report distance,
duration and last speed. The session starts at the first sample.

Examples:
  stride track replay morning.gpx
  stride track replay watch.fit --type running --commit
  stride track replay noisy.ndjson --drop-invalid`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		typ, err := models.ParseActivityType(typeName)
		if err != nil {
			return err
		}
		if !typ.UsesLocation() {
			return fmt.Errorf("%s sessions do not take location samples", typ)
		}
		dropInvalid, _ := cmd.Flags().GetBool("drop-invalid")
		commit, _ := cmd.Flags().GetBool("commit")

		src, err := location.OpenFile(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()

		sum, err := location.Replay(cmdContext(cmd), src, location.ReplayOptions{
			Policy: invalidPolicy(dropInvalid),
			Logger: logger,
		})
		if err != nil {
			return err
		}
		if sum.Accepted == 0 {
			return fmt.Errorf("no samples in %s", args[0])
		}

		fmt.Printf("Distance:   %s\n", ui.FormatDistance(sum.DistanceMeters))
		fmt.Printf("Duration:   %s\n", ui.FormatDuration(sum.ElapsedSeconds))
		fmt.Printf("Last speed: %s\n", ui.FormatSpeed(sum.LastSpeed))
		fmt.Printf("Points:     %d", sum.Accepted)
		if sum.Dropped > 0 {
			fmt.Printf(" (%d dropped)", sum.Dropped)
		}
		fmt.Println()

		if !commit {
			return nil
		}
		entry := models.NewActivityEntryAt(userID, typ, sum.DistanceMeters, sum.ElapsedSeconds, sum.Track, sum.StartedAt)
		if err := repo.CreateActivity(entry); err != nil {
			return fmt.Errorf("failed to save activity: %w", err)
		}
		color.Green("✓ Saved %s to history", typ)
		fmt.Println(ui.FormatGoal(entry.DistanceMeters, currentConfig().GetGoalMeters()))
		return nil
	},
}

var trackFollowCmd = &cobra.Command{
	Use:   "follow",
	Short: "Track live NDJSON samples from stdin",
	Long: `Read one JSON sample per line from stdin and apply each to the live
session as it arrives. Lines look like:

  {"lat": 41.8781, "lng": -87.6298, "speed": 2.8, "at": "2024-12-14T15:00:00Z"}

A running session is resumed. Progress is saved after every sample,
so an interrupted follow can be committed later.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		typ, err := models.ParseActivityType(typeName)
		if err != nil {
			return err
		}
		dropInvalid, _ := cmd.Flags().GetBool("drop-invalid")

		store, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := loadOrNewRecord(store)
		if err != nil {
			return err
		}
		if !rec.Session.IsActive() {
			if err := checkStartable(rec); err != nil {
				return err
			}
			rec = &sessionstore.Record{ActivityType: typ}
		}
		if !rec.ActivityType.UsesLocation() {
			return fmt.Errorf("%s sessions do not take location samples", rec.ActivityType)
		}

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var saveErr error
		t := tracker.New(tracker.WithSession(rec.Session), tracker.WithLogger(logger))
		src := location.NewNDJSONSource("stdin", cmd.InOrStdin())
		feed := location.NewFeed(t, []location.Source{src},
			location.WithPolicy(invalidPolicy(dropInvalid)),
			location.WithFeedLogger(logger),
			location.WithUpdateFunc(func(u location.Update) {
				rec.Session = u.Session
				rec.AppendPoint(u.Sample)
				if err := store.Save(rec); err != nil && saveErr == nil {
					saveErr = err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSession(rec.ActivityType, u.Session, time.Now()))
			}),
		)

		stats, runErr := feed.Run(ctx)
		rec.Session = t.Snapshot()
		if err := store.Save(rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if saveErr != nil {
			return fmt.Errorf("failed to save session: %w", saveErr)
		}
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d samples applied", stats.Accepted)
		if stats.Dropped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d dropped", stats.Dropped)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func openSessions() (*sessionstore.Store, error) {
	store, err := sessionstore.Open(currentConfig().SessionStorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

func loadRecord(store *sessionstore.Store) (*sessionstore.Record, error) {
	rec, err := store.Load()
	if errors.Is(err, sessionstore.ErrNoSession) {
		return nil, fmt.Errorf("%w: run 'stride track start' first", err)
	}
	return rec, err
}

func loadOrNewRecord(store *sessionstore.Store) (*sessionstore.Record, error) {
	rec, err := store.Load()
	if errors.Is(err, sessionstore.ErrNoSession) {
		return &sessionstore.Record{}, nil
	}
	return rec, err
}

// checkStartable refuses to replace a running or uncommitted session.
func checkStartable(rec *sessionstore.Record) error {
	if rec.Session.IsActive() {
		return fmt.Errorf("%s session in progress: %w", rec.ActivityType, tracker.ErrAlreadyActive)
	}
	if rec.Session.StartedAt != nil {
		return fmt.Errorf("uncommitted %s session; run 'stride track commit' or 'stride track reset'", rec.ActivityType)
	}
	return nil
}

func stopSession(rec *sessionstore.Record, now time.Time) {
	rec.Session = rec.Session.Stop()
	rec.StoppedAt = &now
}

func invalidPolicy(drop bool) location.InvalidPolicy {
	if drop {
		return location.DropInvalid
	}
	return location.HaltOnInvalid
}

func init() {
	trackStartCmd.Flags().StringP("type", "t", string(models.ActivityWalking), "activity type (walking, running, yoga)")

	trackSampleCmd.Flags().Float64("lat", 0, "latitude (-90 to 90)")
	trackSampleCmd.Flags().Float64("lng", 0, "longitude (-180 to 180)")
	trackSampleCmd.Flags().Float64("speed", 0, "speed in meters per second")
	trackSampleCmd.Flags().String("at", "", "timestamp (RFC3339, default now)")
	_ = trackSampleCmd.MarkFlagRequired("lat")
	_ = trackSampleCmd.MarkFlagRequired("lng")

	trackReplayCmd.Flags().StringP("type", "t", string(models.ActivityWalking), "activity type (walking, running)")
	trackReplayCmd.Flags().Bool("drop-invalid", false, "skip invalid samples instead of stopping")
	trackReplayCmd.Flags().Bool("commit", false, "save the replayed track to your history")

	trackFollowCmd.Flags().StringP("type", "t", string(models.ActivityWalking), "activity type for a new session (walking, running)")
	trackFollowCmd.Flags().Bool("drop-invalid", false, "skip invalid samples instead of stopping")

	trackCmd.AddCommand(trackStartCmd, trackSampleCmd, trackStopCmd, trackStatusCmd,
		trackResetCmd, trackCommitCmd, trackReplayCmd, trackFollowCmd)
	rootCmd.AddCommand(trackCmd)
}
