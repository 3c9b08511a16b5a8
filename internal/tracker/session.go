// ABOUTME: Tracking session state machine (Idle and Active)
// ABOUTME: Value-semantic transitions so every update is a pure function of its inputs

package tracker

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrIllegalTransition is the family of errors for operations invalid in the current state.
var ErrIllegalTransition = errors.New("illegal transition")

// ErrAlreadyActive is returned by Start on a session that is already tracking.
// Callers must Stop (or Reset) first; a second Start never discards distance.
var ErrAlreadyActive = fmt.Errorf("%w: session already active", ErrIllegalTransition)

// Status is the tracking state of a session.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
)

// Session is the mutable state of one tracking run. The zero value is an Idle session.
type Session struct {
	Status                    Status     `json:"status"`
	PreviousSample            *GeoSample `json:"previous_sample,omitempty"`
	AccumulatedDistanceMeters float64    `json:"accumulated_distance_meters"`
	LastSpeedMetersPerSecond  float64    `json:"last_speed_mps"`
	StartedAt                 *time.Time `json:"started_at,omitempty"`
}

// IsActive reports whether the session is currently accepting samples.
func (s Session) IsActive() bool {
	return s.Status == StatusActive
}

// Start moves an Idle session to Active, zeroing distance and stamping the start time.
// Starting an Active session returns ErrAlreadyActive and the session unchanged.
func (s Session) Start(now time.Time) (Session, error) {
	if s.IsActive() {
		return s, ErrAlreadyActive
	}
	started := now
	return Session{Status: StatusActive, StartedAt: &started}, nil
}

// Stop moves the session to Idle. Distance and start time stay readable.
func (s Session) Stop() Session {
	s.Status = StatusIdle
	s.PreviousSample = nil
	return s
}

// Reset returns a fresh Idle session regardless of the current state.
func (s Session) Reset() Session {
	return Session{Status: StatusIdle}
}

// Record applies one sample. Idle sessions drop the sample and return unchanged.
// An invalid sample returns ErrInvalidSample and leaves the session untouched.
func (s Session) Record(sample GeoSample) (Session, error) {
	if !s.IsActive() {
		return s, nil
	}
	if err := ValidateSample(sample); err != nil {
		return s, err
	}

	next := s
	if prev := s.PreviousSample; prev != nil {
		d := Haversine(prev.Latitude, prev.Longitude, sample.Latitude, sample.Longitude)
		next.AccumulatedDistanceMeters += math.Max(0, d)
	}
	if sample.Speed != nil {
		next.LastSpeedMetersPerSecond = *sample.Speed
	}

	accepted := sample
	if sample.Speed != nil {
		v := *sample.Speed
		accepted.Speed = &v
	}
	next.PreviousSample = &accepted
	return next, nil
}

// ElapsedSeconds returns whole seconds since the session started, or 0 if never started.
// Clock skew that puts now before the start time yields 0.
func (s Session) ElapsedSeconds(now time.Time) int64 {
	if s.StartedAt == nil {
		return 0
	}
	d := now.Sub(*s.StartedAt)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
