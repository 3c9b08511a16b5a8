// ABOUTME: Unit tests for data models
// ABOUTME: Tests constructors, validators, filters, and catalog lookups

package models

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 41.8781, -87.6298, false},
		{"boundaries", 90, -180, false},
		{"lat too high", 90.1, 0, true},
		{"lat too low", -90.1, 0, true},
		{"lng too high", 0, 180.1, true},
		{"lng too low", 0, -180.1, true},
		{"nan", math.NaN(), 0, true},
		{"inf", 0, math.Inf(-1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates(%f, %f) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("buy shoes"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTitle("   "); err == nil {
		t.Error("expected error for whitespace title")
	}
	if err := ValidateTitle(strings.Repeat("x", 256)); err == nil {
		t.Error("expected error for long title")
	}
}

func TestNewTodo(t *testing.T) {
	start := time.Date(2024, 12, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	todo := NewTodo("user-1", "morning run", "", start, end)

	if todo.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if todo.Category != DefaultCategory {
		t.Errorf("expected default category, got %q", todo.Category)
	}
	if !todo.StartTime.Equal(start) || !todo.EndDate.Equal(end) {
		t.Error("expected start/end to populate date and time fields")
	}
	if todo.Completed {
		t.Error("new todos should be pending")
	}
	if todo.Status() != StatusPending {
		t.Errorf("expected pending status, got %q", todo.Status())
	}
}

func TestTodoSetStatus(t *testing.T) {
	todo := NewTodo("u", "t", "Yoga", time.Now(), time.Now())
	before := todo.UpdatedAt
	time.Sleep(time.Millisecond)

	todo.SetStatus(true)
	if !todo.Completed || todo.Status() != StatusCompleted {
		t.Error("expected completed")
	}
	if !todo.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		category, custom, want string
	}{
		{"Running", "", "Running"},
		{"Other", "Gardening", "Gardening"},
		{"Other", "  ", "Other"},
		{"", "", DefaultCategory},
		{"Yoga", "ignored", "Yoga"},
	}
	for _, tt := range tests {
		if got := ResolveCategory(tt.category, tt.custom); got != tt.want {
			t.Errorf("ResolveCategory(%q, %q) = %q, want %q", tt.category, tt.custom, got, tt.want)
		}
	}
}

func TestFilterTodos(t *testing.T) {
	now := time.Now()
	run := NewTodo("u", "Morning Run", "Running", now, now)
	yoga := NewTodo("u", "Evening stretch", "Yoga", now, now)
	yoga.SetStatus(true)
	design := NewTodo("u", "Design review run-through", "Design", now, now)
	todos := []*Todo{run, yoga, design}

	tests := []struct {
		name   string
		filter TodoFilter
		want   []*Todo
	}{
		{"empty", TodoFilter{}, todos},
		{"query case-insensitive", TodoFilter{Query: "RUN"}, []*Todo{run, design}},
		{"completed", TodoFilter{Status: StatusCompleted}, []*Todo{yoga}},
		{"pending", TodoFilter{Status: StatusPending}, []*Todo{run, design}},
		{"all status", TodoFilter{Status: StatusAll}, todos},
		{"category", TodoFilter{Category: "yoga"}, []*Todo{yoga}},
		{"combined", TodoFilter{Query: "run", Category: "Design"}, []*Todo{design}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTodos(todos, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d todos, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: expected %q, got %q", i, tt.want[i].Title, got[i].Title)
				}
			}
		})
	}
}

func TestParseActivityType(t *testing.T) {
	for _, s := range []string{"walking", "Running", "YOGA"} {
		if _, err := ParseActivityType(s); err != nil {
			t.Errorf("ParseActivityType(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseActivityType("swimming"); err == nil {
		t.Error("expected error for unknown activity")
	}
	if ActivityYoga.UsesLocation() {
		t.Error("yoga should not use location")
	}
	if !ActivityRunning.UsesLocation() {
		t.Error("running should use location")
	}
}

func TestNewActivityEntry(t *testing.T) {
	track := []TrackPoint{
		{Latitude: 41.8781, Longitude: -87.6298, RecordedAt: time.Now()},
		{Latitude: 41.8791, Longitude: -87.6298, RecordedAt: time.Now()},
	}
	entry := NewActivityEntry("user-1", ActivityWalking, 111.2, 60, track)

	if entry.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if len(entry.StartGeohash) != GeohashPrecision {
		t.Errorf("expected %d-char geohash, got %q", GeohashPrecision, entry.StartGeohash)
	}
	if !strings.HasPrefix(entry.StartGeohash, "dp3w") {
		t.Errorf("expected Chicago geohash prefix dp3w, got %q", entry.StartGeohash)
	}
	if got := entry.AverageSpeed(); math.Abs(got-111.2/60) > 1e-9 {
		t.Errorf("unexpected average speed %f", got)
	}
}

func TestNewActivityEntry_NoTrack(t *testing.T) {
	entry := NewActivityEntry("user-1", ActivityYoga, 0, 0, nil)
	if entry.StartGeohash != "" {
		t.Errorf("expected empty geohash, got %q", entry.StartGeohash)
	}
	if entry.AverageSpeed() != 0 {
		t.Error("expected zero average speed without duration")
	}
}

func TestGoalReached(t *testing.T) {
	if !GoalReached(5000, 5000) {
		t.Error("meeting the goal exactly should count")
	}
	if GoalReached(4999.9, 5000) {
		t.Error("below goal should not count")
	}
	if GoalReached(100, 0) {
		t.Error("zero goal disables achievements")
	}
}

func TestFindYogaRoutine(t *testing.T) {
	r, ok := FindYogaRoutine("2")
	if !ok || r.Name != "Relaxation Yoga" {
		t.Errorf("lookup by id failed: %+v", r)
	}
	r, ok = FindYogaRoutine("strength yoga")
	if !ok || r.Duration != 30*time.Minute {
		t.Errorf("lookup by name failed: %+v", r)
	}
	if _, ok := FindYogaRoutine("hot yoga"); ok {
		t.Error("expected miss")
	}
}

func TestParseSchedule(t *testing.T) {
	start, end, err := ParseSchedule("2024-12-14", "07:30", "08:15", time.UTC)
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	if !start.Equal(time.Date(2024, 12, 14, 7, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	if end.Sub(start) != 45*time.Minute {
		t.Errorf("unexpected end %v", end)
	}

	start, end, err = ParseSchedule("2024-12-14", "", "", time.UTC)
	if err != nil || start.Hour() != 9 || end.Sub(start) != time.Hour {
		t.Errorf("expected 09:00 default and one hour span, got %v-%v (%v)", start, end, err)
	}

	for _, bad := range [][3]string{
		{"14/12/2024", "07:00", ""},
		{"2024-12-14", "7am", ""},
		{"2024-12-14", "09:00", "08:00"},
	} {
		if _, _, err := ParseSchedule(bad[0], bad[1], bad[2], time.UTC); err == nil {
			t.Errorf("expected error for %v", bad)
		}
	}
}
