// ABOUTME: Geographic position samples consumed by the activity tracker
// ABOUTME: Validates coordinates and speed at the tracker boundary

package tracker

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/harper/stride/internal/models"
)

// ErrInvalidSample is returned when a sample has out-of-range coordinates or a bad speed.
var ErrInvalidSample = errors.New("invalid sample")

// GeoSample is a single position observation produced by a location source.
type GeoSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     *float64  `json:"speed,omitempty"` // meters per second, nil when unmeasured
	Timestamp time.Time `json:"timestamp"`
}

// NewSample builds a sample without a speed reading.
func NewSample(lat, lng float64, at time.Time) GeoSample {
	return GeoSample{Latitude: lat, Longitude: lng, Timestamp: at}
}

// WithSpeed returns a copy of the sample carrying the given speed.
func (s GeoSample) WithSpeed(mps float64) GeoSample {
	s.Speed = &mps
	return s
}

// ValidateSample checks the sample's coordinates and optional speed.
func ValidateSample(s GeoSample) error {
	if err := models.ValidateCoordinates(s.Latitude, s.Longitude); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	if s.Speed != nil {
		v := *s.Speed
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: speed %g must be a non-negative number", ErrInvalidSample, v)
		}
	}
	return nil
}
