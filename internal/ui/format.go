// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Human-readable output for todos, activity history and live sessions

package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/tracker"
)

var faint = color.New(color.Faint)

// ShortID is the id prefix shown in listings and accepted by commands.
func ShortID(id fmt.Stringer) string {
	return id.String()[:8]
}

// FormatDistance renders meters, switching to SI prefixes from a kilometer up.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return humanize.SIWithDigits(meters, 2, "m")
}

// FormatSpeed renders meters per second with a km/h hint.
func FormatSpeed(mps float64) string {
	return fmt.Sprintf("%.2f m/s (%.1f km/h)", mps, mps*3.6)
}

// FormatDuration renders whole seconds as M:SS or H:MM:SS.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatTodo formats a todo for list display.
func FormatTodo(t *models.Todo) string {
	if t == nil {
		return faint.Sprint("(invalid todo)")
	}
	box := "[ ]"
	title := color.GreenString(t.Title)
	if t.Completed {
		box = color.GreenString("[x]")
		title = faint.Sprint(t.Title)
	}
	when := fmt.Sprintf("%s %s-%s",
		t.StartDate.Format("Jan 2"),
		t.StartTime.Format("3:04 PM"),
		t.EndTime.Format("3:04 PM"))

	return fmt.Sprintf("%s %s %s %s %s",
		faint.Sprint(ShortID(t.ID)),
		box,
		title,
		color.CyanString("(%s)", t.Category),
		faint.Sprint(when))
}

// FormatActivity formats one history entry.
func FormatActivity(e *models.ActivityEntry) string {
	if e == nil {
		return faint.Sprint("(invalid activity)")
	}
	parts := fmt.Sprintf("%s %s", color.CyanString("%-7s", e.Type), FormatDuration(e.DurationSeconds))
	if e.Type.UsesLocation() {
		parts = fmt.Sprintf("%s %s in %s (%s)",
			color.CyanString("%-7s", e.Type),
			color.GreenString(FormatDistance(e.DistanceMeters)),
			FormatDuration(e.DurationSeconds),
			FormatSpeed(e.AverageSpeed()))
	}
	return fmt.Sprintf("%s %s - %s",
		faint.Sprint(ShortID(e.ID)),
		parts,
		faint.Sprint(FormatRelativeTime(e.RecordedAt)))
}

// FormatSession formats the live session for status output.
func FormatSession(activity models.ActivityType, s tracker.Session, now time.Time) string {
	state := color.YellowString("● idle")
	if s.IsActive() {
		state = color.GreenString("● %s", activity)
	}
	return fmt.Sprintf("%s  %s  %s  %s",
		state,
		FormatDistance(s.AccumulatedDistanceMeters),
		FormatDuration(s.ElapsedSeconds(now)),
		FormatSpeed(s.LastSpeedMetersPerSecond))
}

// FormatGoal reports progress against a distance goal.
func FormatGoal(distance, goal float64) string {
	if models.GoalReached(distance, goal) {
		return color.GreenString("🎯 Goal reached: %s of %s", FormatDistance(distance), FormatDistance(goal))
	}
	return faint.Sprintf("%s to go (goal %s)", FormatDistance(goal-distance), FormatDistance(goal))
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
