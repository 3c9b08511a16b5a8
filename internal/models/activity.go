// ABOUTME: Activity history entries committed after a tracking session
// ABOUTME: Carries distance, duration, the recorded track, and a start geohash

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
)

// ActivityType is the kind of workout being tracked.
type ActivityType string

const (
	ActivityWalking ActivityType = "walking"
	ActivityRunning ActivityType = "running"
	ActivityYoga    ActivityType = "yoga"
)

// ActivityTypes lists every supported activity.
var ActivityTypes = []ActivityType{ActivityWalking, ActivityRunning, ActivityYoga}

// ParseActivityType accepts a case-insensitive activity name.
func ParseActivityType(s string) (ActivityType, error) {
	for _, t := range ActivityTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown activity type %q (use walking, running, or yoga)", s)
}

// UsesLocation reports whether the activity is tracked with position samples.
func (t ActivityType) UsesLocation() bool {
	return t == ActivityWalking || t == ActivityRunning
}

// GeohashPrecision gives cells of roughly 150m, enough to group routes by start area.
const GeohashPrecision = 7

// TrackPoint is one accepted position within a committed activity.
type TrackPoint struct {
	Latitude   float64   `json:"latitude" yaml:"latitude"`
	Longitude  float64   `json:"longitude" yaml:"longitude"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// ActivityEntry is a snapshot appended to a user's history.
type ActivityEntry struct {
	ID              uuid.UUID    `json:"id"`
	UserID          string       `json:"user_id"`
	Type            ActivityType `json:"type"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds int64        `json:"duration_seconds"`
	RecordedAt      time.Time    `json:"recorded_at"`
	StartGeohash    string       `json:"start_geohash,omitempty"`
	Track           []TrackPoint `json:"track,omitempty"`
}

// NewActivityEntry creates a history entry recorded now.
func NewActivityEntry(userID string, typ ActivityType, distance float64, duration int64, track []TrackPoint) *ActivityEntry {
	return NewActivityEntryAt(userID, typ, distance, duration, track, time.Now())
}

// NewActivityEntryAt creates a history entry with a specific recorded time.
func NewActivityEntryAt(userID string, typ ActivityType, distance float64, duration int64, track []TrackPoint, recordedAt time.Time) *ActivityEntry {
	entry := &ActivityEntry{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            typ,
		DistanceMeters:  distance,
		DurationSeconds: duration,
		RecordedAt:      recordedAt,
		Track:           track,
	}
	if len(track) > 0 {
		entry.StartGeohash = geohash.EncodeWithPrecision(track[0].Latitude, track[0].Longitude, GeohashPrecision)
	}
	return entry
}

// AverageSpeed returns meters per second over the whole activity, or 0 without a duration.
func (e *ActivityEntry) AverageSpeed() float64 {
	if e.DurationSeconds <= 0 {
		return 0
	}
	return e.DistanceMeters / float64(e.DurationSeconds)
}

// DefaultGoalMeters is the distance goal used when none is configured.
const DefaultGoalMeters = 5000

// GoalReached reports whether distance meets a positive goal.
func GoalReached(distance, goal float64) bool {
	return goal > 0 && distance >= goal
}
