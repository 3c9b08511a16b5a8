// ABOUTME: Shared validators for stride data models
// ABOUTME: Coordinate and title checks used by the tracker, commands, storage, and the MCP server

package models

import (
	"fmt"
	"math"
	"strings"
)

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %g must be between -90 and 90", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %g must be between -180 and 180", lng)
	}
	return nil
}

// ValidateTitle checks that a todo title is non-empty and within length limits.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty or whitespace")
	}
	if len(title) > 255 {
		return fmt.Errorf("title too long (max 255 characters)")
	}
	return nil
}
