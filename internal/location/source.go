// ABOUTME: Location source abstraction feeding geo samples into the tracker
// ABOUTME: Defines permissions, the push-based Source interface and in-memory sources

package location

import (
	"context"
	"errors"
	"time"

	"github.com/harper/stride/internal/tracker"
)

// ErrPermissionDenied is returned when a source refuses access to location data.
var ErrPermissionDenied = errors.New("location permission denied")

// ErrUnsupportedFormat is returned for track files we cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported track format")

// Permission is the result of asking a source for location access.
type Permission int

const (
	PermissionGranted Permission = iota
	PermissionDenied
)

func (p Permission) String() string {
	if p == PermissionGranted {
		return "granted"
	}
	return "denied"
}

// EmitFunc receives samples in the order a source produces them.
// Returning an error stops the source.
type EmitFunc func(tracker.GeoSample) error

// Source produces geo samples by pushing them to an EmitFunc.
type Source interface {
	Name() string
	Permission(ctx context.Context) (Permission, error)
	Watch(ctx context.Context, emit EmitFunc) error
}

// SliceSource replays a fixed list of samples.
type SliceSource struct {
	Label    string
	Samples  []tracker.GeoSample
	Denied   bool
	Interval time.Duration
}

// Name returns Label, or "memory" when unset.
func (s *SliceSource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

// Permission reports Denied as the user's answer.
func (s *SliceSource) Permission(ctx context.Context) (Permission, error) {
	if s.Denied {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

// Watch emits every sample, pausing Interval between them when set.
func (s *SliceSource) Watch(ctx context.Context, emit EmitFunc) error {
	for i, sample := range s.Samples {
		if i > 0 && s.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.Interval):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(sample); err != nil {
			return err
		}
	}
	return nil
}

// normalizeSpeed treats the platform convention of a negative speed as unknown.
func normalizeSpeed(speed *float64) *float64 {
	if speed == nil || *speed < 0 {
		return nil
	}
	v := *speed
	return &v
}
