// ABOUTME: Stateful single-owner wrapper around a tracking session
// ABOUTME: Supplies the clock, logs dropped samples, and serializes access

package tracker

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Tracker owns one Session for the lifetime of a tracking screen or command.
type Tracker struct {
	mu      sync.Mutex
	session Session
	clock   Clock
	logger  *log.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the wall clock, mostly for tests and replays.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger attaches a logger for dropped-sample diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithSession resumes from a previously persisted session.
func WithSession(s Session) Option {
	return func(t *Tracker) { t.session = s }
}

// New creates an Idle tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		session: Session{Status: StatusIdle},
		clock:   SystemClock{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins tracking. See Session.Start.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := t.session.Start(t.clock.Now())
	if err != nil {
		return err
	}
	t.session = next
	return nil
}

// Stop ends tracking, keeping the totals readable.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = t.session.Stop()
}

// Reset discards all session state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = t.session.Reset()
}

// Record applies a sample and reports whether it was accepted.
// Samples arriving while Idle are dropped and logged, never queued.
func (t *Tracker) Record(sample GeoSample) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.IsActive() {
		t.logger.Debug("dropped sample", "reason", "session idle",
			"lat", sample.Latitude, "lng", sample.Longitude)
		return false, nil
	}

	next, err := t.session.Record(sample)
	if err != nil {
		return false, err
	}
	t.session = next
	return true, nil
}

// Elapsed returns whole seconds since start according to the tracker's clock.
func (t *Tracker) Elapsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.ElapsedSeconds(t.clock.Now())
}

// Snapshot returns a copy of the current session.
func (t *Tracker) Snapshot() Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}
