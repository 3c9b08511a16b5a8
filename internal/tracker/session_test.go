// ABOUTME: Tests for the tracking session state machine
// ABOUTME: Covers transitions, distance accumulation, speed handling, and elapsed time

package tracker

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 12, 14, 15, 0, 0, 0, time.UTC)

func mustStart(t *testing.T) Session {
	t.Helper()
	s, err := Session{}.Start(epoch)
	require.NoError(t, err)
	return s
}

func record(t *testing.T, s Session, lat, lng float64) Session {
	t.Helper()
	next, err := s.Record(NewSample(lat, lng, epoch))
	require.NoError(t, err)
	return next
}

func TestZeroSessionIsIdle(t *testing.T) {
	var s Session
	assert.False(t, s.IsActive())
	assert.Nil(t, s.PreviousSample)
	assert.Equal(t, int64(0), s.ElapsedSeconds(epoch))
}

func TestStart_ActivatesAndStampsTime(t *testing.T) {
	s := mustStart(t)

	assert.Equal(t, StatusActive, s.Status)
	require.NotNil(t, s.StartedAt)
	assert.True(t, s.StartedAt.Equal(epoch))
	assert.Zero(t, s.AccumulatedDistanceMeters)
	assert.Nil(t, s.PreviousSample)
}

func TestStart_TwiceReturnsErrAlreadyActive(t *testing.T) {
	s := record(t, record(t, mustStart(t), 0, 0), 0, 1)

	again, err := s.Start(epoch.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyActive))
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Equal(t, s, again, "double start must not discard distance")
}

func TestStart_AfterStopResetsDistance(t *testing.T) {
	s := record(t, record(t, mustStart(t), 0, 0), 0, 1).Stop()
	require.Greater(t, s.AccumulatedDistanceMeters, 0.0)

	restarted, err := s.Start(epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, restarted.AccumulatedDistanceMeters)
	assert.Nil(t, restarted.PreviousSample)
	assert.True(t, restarted.StartedAt.Equal(epoch.Add(time.Hour)))
}

func TestStop_KeepsDistanceAndStart(t *testing.T) {
	active := record(t, record(t, mustStart(t), 0, 0), 0, 1)
	stopped := active.Stop()

	assert.Equal(t, StatusIdle, stopped.Status)
	assert.Nil(t, stopped.PreviousSample)
	assert.Equal(t, active.AccumulatedDistanceMeters, stopped.AccumulatedDistanceMeters)
	assert.Equal(t, active.StartedAt, stopped.StartedAt)
}

func TestReset_FromEitherState(t *testing.T) {
	active := record(t, record(t, mustStart(t), 0, 0), 0, 1)
	for name, s := range map[string]Session{"active": active, "stopped": active.Stop(), "idle": {}} {
		t.Run(name, func(t *testing.T) {
			r := s.Reset()
			assert.Equal(t, StatusIdle, r.Status)
			assert.Zero(t, r.AccumulatedDistanceMeters)
			assert.Nil(t, r.PreviousSample)
			assert.Nil(t, r.StartedAt)
		})
	}
}

func TestRecord_IdleIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	idle := record(t, mustStart(t), 10, 10).Stop()

	for i := 0; i < 200; i++ {
		sample := NewSample(rng.Float64()*400-200, rng.Float64()*400-200, epoch)
		got, err := idle.Record(sample)
		require.NoError(t, err)
		assert.Equal(t, idle, got)
	}
}

func TestRecord_FirstSampleAddsNoDistance(t *testing.T) {
	s := record(t, mustStart(t), 41.8781, -87.6298)
	assert.Zero(t, s.AccumulatedDistanceMeters)
	require.NotNil(t, s.PreviousSample)
	assert.Equal(t, 41.8781, s.PreviousSample.Latitude)
}

func TestRecord_IdenticalCoordinateAddsZero(t *testing.T) {
	s := record(t, mustStart(t), 41.8781, -87.6298)
	s = record(t, s, 41.8781, -87.6298)
	assert.Equal(t, 0.0, s.AccumulatedDistanceMeters)
}

func TestRecord_OneDegreeFixture(t *testing.T) {
	s := record(t, record(t, mustStart(t), 0, 0), 0, 1)
	assert.InDelta(t, 111194.9, s.AccumulatedDistanceMeters, 1)
}

func TestRecord_SumsHopsNotChord(t *testing.T) {
	s := mustStart(t)
	s = record(t, s, 0, 0)
	s = record(t, s, 0, 1)
	s = record(t, s, 0, 2)
	assert.InDelta(t, 222389.8, s.AccumulatedDistanceMeters, 1)
}

func TestRecord_PathDependsOnOrder(t *testing.T) {
	forward := mustStart(t)
	for _, p := range [][2]float64{{0, 0}, {0, 2}, {0, 1}} {
		forward = record(t, forward, p[0], p[1])
	}
	sorted := mustStart(t)
	for _, p := range [][2]float64{{0, 0}, {0, 1}, {0, 2}} {
		sorted = record(t, sorted, p[0], p[1])
	}
	assert.Greater(t, forward.AccumulatedDistanceMeters, sorted.AccumulatedDistanceMeters)
}

func TestRecord_InvalidSampleLeavesStateUnchanged(t *testing.T) {
	s := record(t, mustStart(t), 0, 0)

	cases := map[string]GeoSample{
		"latitude 200":   NewSample(200, 0, epoch),
		"latitude -91":   NewSample(-91, 0, epoch),
		"longitude 181":  NewSample(0, 181, epoch),
		"nan latitude":   NewSample(math.NaN(), 0, epoch),
		"infinite lng":   NewSample(0, math.Inf(1), epoch),
		"negative speed": NewSample(0, 1, epoch).WithSpeed(-1),
		"nan speed":      NewSample(0, 1, epoch).WithSpeed(math.NaN()),
	}
	for name, sample := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := s.Record(sample)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSample))
			assert.Equal(t, s, got)
		})
	}
}

func TestValidateSample_ReportsCoordinateRule(t *testing.T) {
	err := ValidateSample(NewSample(95, 0, epoch))
	require.ErrorIs(t, err, ErrInvalidSample)
	assert.Contains(t, err.Error(), "latitude 95 must be between -90 and 90")

	err = ValidateSample(NewSample(0, -190, epoch))
	require.ErrorIs(t, err, ErrInvalidSample)
	assert.Contains(t, err.Error(), "longitude -190")

	require.NoError(t, ValidateSample(NewSample(45, 90, epoch).WithSpeed(0)))
}

func TestRecord_BoundaryCoordinatesAccepted(t *testing.T) {
	s := mustStart(t)
	for _, p := range [][2]float64{{90, 180}, {-90, -180}, {0, 0}} {
		var err error
		s, err = s.Record(NewSample(p[0], p[1], epoch))
		require.NoError(t, err)
	}
}

func TestRecord_SpeedUpdatesAndStaysStale(t *testing.T) {
	s := mustStart(t)
	s, _ = s.Record(NewSample(0, 0, epoch).WithSpeed(2.5))
	assert.Equal(t, 2.5, s.LastSpeedMetersPerSecond)

	s, _ = s.Record(NewSample(0, 0.001, epoch))
	assert.Equal(t, 2.5, s.LastSpeedMetersPerSecond, "absent speed keeps the last reading")

	s, _ = s.Record(NewSample(0, 0.002, epoch).WithSpeed(0))
	assert.Equal(t, 0.0, s.LastSpeedMetersPerSecond)
}

func TestRecord_DoesNotAliasCallerSpeed(t *testing.T) {
	speed := 3.0
	sample := GeoSample{Latitude: 1, Longitude: 1, Speed: &speed}
	s, err := mustStart(t).Record(sample)
	require.NoError(t, err)

	speed = 99
	assert.Equal(t, 3.0, *s.PreviousSample.Speed)
}

func TestRecord_DistanceNonNegativeAndNonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		s := mustStart(t)
		lat, lng := rng.Float64()*170-85, rng.Float64()*340-170
		prev := 0.0
		for i := 0; i < 100; i++ {
			lat = math.Max(-90, math.Min(90, lat+rng.NormFloat64()*0.01))
			lng = math.Max(-180, math.Min(180, lng+rng.NormFloat64()*0.01))
			var err error
			s, err = s.Record(NewSample(lat, lng, epoch))
			require.NoError(t, err)
			require.GreaterOrEqual(t, s.AccumulatedDistanceMeters, prev)
			prev = s.AccumulatedDistanceMeters
		}
		require.GreaterOrEqual(t, prev, 0.0)
	}
}

func TestStop_DoesNotChangeDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		s := record(t, mustStart(t), 0, 0)
		s = record(t, s, rng.Float64()*10, rng.Float64()*10)
		assert.Equal(t, s.AccumulatedDistanceMeters, s.Stop().AccumulatedDistanceMeters)
	}
}

func TestElapsedSeconds(t *testing.T) {
	s := mustStart(t)

	assert.Equal(t, int64(0), Session{}.ElapsedSeconds(epoch.Add(time.Hour)), "never started")
	assert.Equal(t, int64(5), s.ElapsedSeconds(epoch.Add(5*time.Second)))
	assert.Equal(t, int64(5), s.ElapsedSeconds(epoch.Add(5*time.Second+999*time.Millisecond)), "floors")
	assert.Equal(t, int64(0), s.ElapsedSeconds(epoch.Add(-time.Minute)), "clock skew clamps to 0")
	assert.Equal(t, int64(90), s.Stop().ElapsedSeconds(epoch.Add(90*time.Second)), "readable after stop")
	assert.Equal(t, int64(0), s.Reset().ElapsedSeconds(epoch.Add(time.Hour)), "cleared by reset")
}
