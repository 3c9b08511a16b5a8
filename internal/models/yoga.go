// ABOUTME: Built-in yoga routine catalog
// ABOUTME: Routines are timed sessions without location samples

package models

import (
	"strings"
	"time"
)

// YogaRoutine is a guided session with a suggested duration.
type YogaRoutine struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
}

// YogaRoutines is the fixed routine catalog.
var YogaRoutines = []YogaRoutine{
	{ID: "1", Name: "Morning Yoga", Duration: 15 * time.Minute, Description: "A quick routine to energize your day."},
	{ID: "2", Name: "Relaxation Yoga", Duration: 20 * time.Minute, Description: "Perfect for winding down after a long day."},
	{ID: "3", Name: "Strength Yoga", Duration: 30 * time.Minute, Description: "Build strength with these poses."},
	{ID: "4", Name: "Flexibility Yoga", Duration: 25 * time.Minute, Description: "Improve flexibility and mobility."},
}

// FindYogaRoutine looks a routine up by ID or case-insensitive name.
func FindYogaRoutine(key string) (YogaRoutine, bool) {
	for _, r := range YogaRoutines {
		if r.ID == key || strings.EqualFold(r.Name, key) {
			return r, true
		}
	}
	return YogaRoutine{}, false
}
