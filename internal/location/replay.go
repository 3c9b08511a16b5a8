// ABOUTME: Replays a recorded track through a fresh tracking session
// ABOUTME: Anchors the session start at the first sample's timestamp

package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/stride/internal/logging"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/tracker"
)

// Summary is the outcome of replaying a track.
type Summary struct {
	DistanceMeters float64
	LastSpeed      float64
	ElapsedSeconds int64
	Accepted       int
	Dropped        int
	StartedAt      time.Time
	EndedAt        time.Time
	Track          []models.TrackPoint
}

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	Policy InvalidPolicy
	Logger *log.Logger
}

var errHalt = errors.New("halt replay")

// Replay feeds every sample from src through a new session in order.
func Replay(ctx context.Context, src Source, opts ReplayOptions) (Summary, error) {
	var sum Summary
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	perm, err := src.Permission(ctx)
	if err != nil {
		return sum, fmt.Errorf("permission %s: %w", src.Name(), err)
	}
	if perm != PermissionGranted {
		return sum, fmt.Errorf("%s: %w", src.Name(), ErrPermissionDenied)
	}

	var (
		session tracker.Session
		last    time.Time
		invalid error
	)
	err = src.Watch(ctx, func(s tracker.GeoSample) error {
		if verr := tracker.ValidateSample(s); verr != nil {
			if opts.Policy == DropInvalid {
				sum.Dropped++
				logger.Warn("dropped invalid sample", "source", src.Name(), "err", verr)
				return nil
			}
			invalid = verr
			return errHalt
		}
		if !session.IsActive() {
			session, _ = session.Start(s.Timestamp)
			sum.StartedAt = s.Timestamp
		}
		next, rerr := session.Record(s)
		if rerr != nil {
			return rerr
		}
		session = next
		last = s.Timestamp
		sum.Accepted++
		sum.Track = append(sum.Track, models.TrackPoint{
			Latitude:   s.Latitude,
			Longitude:  s.Longitude,
			RecordedAt: s.Timestamp,
		})
		return nil
	})
	if invalid != nil {
		return sum, fmt.Errorf("%s sample %d: %w", src.Name(), sum.Accepted+sum.Dropped+1, invalid)
	}
	if err != nil {
		return sum, fmt.Errorf("replay %s: %w", src.Name(), err)
	}

	sum.DistanceMeters = session.AccumulatedDistanceMeters
	sum.LastSpeed = session.LastSpeedMetersPerSecond
	sum.EndedAt = last
	if session.IsActive() {
		sum.ElapsedSeconds = session.ElapsedSeconds(last)
	}
	return sum, nil
}
