// ABOUTME: Tests for the stateful tracker wrapper
// ABOUTME: Uses a simulated clock and verifies dropped-sample logging

package tracker

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTracker_ElapsedWithSimulatedClock(t *testing.T) {
	clock := &fakeClock{now: epoch}
	tr := New(WithClock(clock))

	if got := tr.Elapsed(); got != 0 {
		t.Fatalf("expected 0 before start, got %d", got)
	}
	if err := tr.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.Advance(5 * time.Second)
	if got := tr.Elapsed(); got != 5 {
		t.Errorf("expected 5 seconds, got %d", got)
	}
}

func TestTracker_RecordWhileIdleIsDroppedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	tr := New(WithLogger(logger))
	accepted, err := tr.Record(NewSample(1, 1, epoch))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted {
		t.Error("sample should not be accepted while idle")
	}
	if !bytes.Contains(buf.Bytes(), []byte("dropped sample")) {
		t.Errorf("expected drop to be logged, got %q", buf.String())
	}
	if tr.Snapshot().PreviousSample != nil {
		t.Error("idle tracker must not retain samples")
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	clock := &fakeClock{now: epoch}
	tr := New(WithClock(clock))

	if err := tr.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tr.Start(); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}

	for _, lng := range []float64{0, 1, 2} {
		if _, err := tr.Record(NewSample(0, lng, clock.now)); err != nil {
			t.Fatalf("record: %v", err)
		}
		clock.Advance(time.Second)
	}

	before := tr.Snapshot().AccumulatedDistanceMeters
	tr.Stop()
	after := tr.Snapshot()
	if after.AccumulatedDistanceMeters != before {
		t.Errorf("stop changed distance: %f -> %f", before, after.AccumulatedDistanceMeters)
	}
	if after.IsActive() {
		t.Error("expected idle after stop")
	}

	tr.Reset()
	if s := tr.Snapshot(); s.AccumulatedDistanceMeters != 0 || s.StartedAt != nil {
		t.Errorf("expected cleared session, got %+v", s)
	}
}

func TestTracker_InvalidSampleSurfaced(t *testing.T) {
	tr := New()
	_ = tr.Start()
	if _, err := tr.Record(NewSample(200, 0, epoch)); !errors.Is(err, ErrInvalidSample) {
		t.Fatalf("expected ErrInvalidSample, got %v", err)
	}
	if tr.Snapshot().PreviousSample != nil {
		t.Error("invalid sample must not be retained")
	}
}

func TestTracker_ResumeFromSession(t *testing.T) {
	s, _ := Session{}.Start(epoch)
	s, _ = s.Record(NewSample(0, 0, epoch))

	tr := New(WithSession(s))
	if _, err := tr.Record(NewSample(0, 1, epoch)); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := tr.Snapshot().AccumulatedDistanceMeters
	if got < 111190 || got > 111200 {
		t.Errorf("expected one degree accumulated after resume, got %f", got)
	}
}

func TestTracker_ConcurrentStopDuringRecord(t *testing.T) {
	tr := New()
	_ = tr.Start()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _ = tr.Record(NewSample(0, float64(i)*0.0001, epoch))
		}
	}()
	go func() {
		defer wg.Done()
		tr.Stop()
	}()
	wg.Wait()

	if tr.Snapshot().IsActive() {
		t.Error("expected idle after concurrent stop")
	}
}
