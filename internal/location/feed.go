// ABOUTME: Fans samples from many sources into one queue applied to a tracker
// ABOUTME: Enforces permission checks and the invalid-sample policy

package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harper/stride/internal/logging"
	"github.com/harper/stride/internal/tracker"
	"golang.org/x/sync/errgroup"
)

// InvalidPolicy decides what happens when a sample fails validation.
type InvalidPolicy int

const (
	// HaltOnInvalid stops the feed and returns the validation error.
	HaltOnInvalid InvalidPolicy = iota
	// DropInvalid logs the sample and keeps going.
	DropInvalid
)

// Update describes one sample applied to the tracker.
type Update struct {
	Source  string
	Sample  tracker.GeoSample
	Session tracker.Session
}

// FeedStats counts what happened to samples during a run.
type FeedStats struct {
	Accepted int
	Dropped  int
	Ignored  int
}

type queued struct {
	source string
	sample tracker.GeoSample
}

// Feed serializes samples from its sources into a single tracker.
type Feed struct {
	tracker  *tracker.Tracker
	sources  []Source
	policy   InvalidPolicy
	logger   *log.Logger
	onUpdate func(Update)
	buffer   int
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithPolicy sets how invalid samples are handled. The default halts.
func WithPolicy(p InvalidPolicy) FeedOption {
	return func(f *Feed) { f.policy = p }
}

// WithFeedLogger logs source lifecycle and dropped samples.
func WithFeedLogger(l *log.Logger) FeedOption {
	return func(f *Feed) { f.logger = l }
}

// WithUpdateFunc is called from the consumer goroutine after each accepted sample.
func WithUpdateFunc(fn func(Update)) FeedOption {
	return func(f *Feed) { f.onUpdate = fn }
}

// WithBuffer sizes the queue between sources and the tracker.
func WithBuffer(n int) FeedOption {
	return func(f *Feed) { f.buffer = n }
}

// NewFeed fans sources into t.
func NewFeed(t *tracker.Tracker, sources []Source, opts ...FeedOption) *Feed {
	f := &Feed{
		tracker: t,
		sources: sources,
		logger:  logging.Discard(),
		buffer:  16,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run checks permissions, starts the tracker and applies samples until every
// source is exhausted, ctx is cancelled, or an invalid sample halts the feed.
// An already active tracker is resumed.
func (f *Feed) Run(ctx context.Context) (FeedStats, error) {
	var stats FeedStats

	for _, src := range f.sources {
		perm, err := src.Permission(ctx)
		if err != nil {
			return stats, fmt.Errorf("permission %s: %w", src.Name(), err)
		}
		if perm != PermissionGranted {
			return stats, fmt.Errorf("%s: %w", src.Name(), ErrPermissionDenied)
		}
	}

	if err := f.tracker.Start(); err != nil {
		if !errors.Is(err, tracker.ErrAlreadyActive) {
			return stats, fmt.Errorf("start tracker: %w", err)
		}
		f.logger.Debug("resuming active session")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan queued, f.buffer)
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range f.sources {
		src := src
		g.Go(func() error {
			f.logger.Debug("source started", "source", src.Name())
			err := src.Watch(gctx, func(s tracker.GeoSample) error {
				select {
				case queue <- queued{source: src.Name(), sample: s}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", src.Name(), err)
			}
			f.logger.Debug("source exhausted", "source", src.Name())
			return nil
		})
	}

	var producerErr error
	go func() {
		producerErr = g.Wait()
		close(queue)
	}()

	var haltErr error
	for item := range queue {
		if haltErr != nil {
			continue
		}
		applied, err := f.tracker.Record(item.sample)
		if err != nil {
			if f.policy == DropInvalid && errors.Is(err, tracker.ErrInvalidSample) {
				stats.Dropped++
				f.logger.Warn("dropped invalid sample", "source", item.source, "err", err)
				continue
			}
			haltErr = fmt.Errorf("%s: %w", item.source, err)
			cancel()
			continue
		}
		if !applied {
			stats.Ignored++
			continue
		}
		stats.Accepted++
		if f.onUpdate != nil {
			f.onUpdate(Update{Source: item.source, Sample: item.sample, Session: f.tracker.Snapshot()})
		}
	}

	if haltErr != nil {
		return stats, haltErr
	}
	return stats, producerErr
}
