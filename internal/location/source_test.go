// ABOUTME: Tests for location sources and file decoding
// ABOUTME: Covers slice, NDJSON, GPX and FIT record conversion

package location

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/stride/internal/tracker"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 12, 14, 15, 0, 0, 0, time.UTC)

func collect(t *testing.T, src Source) []tracker.GeoSample {
	t.Helper()
	var out []tracker.GeoSample
	err := src.Watch(context.Background(), func(s tracker.GeoSample) error {
		out = append(out, s)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestSliceSource(t *testing.T) {
	src := &SliceSource{Samples: []tracker.GeoSample{
		tracker.NewSample(0, 0, epoch),
		tracker.NewSample(0, 1, epoch.Add(time.Second)),
	}}

	perm, err := src.Permission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, perm)
	assert.Equal(t, "memory", src.Name())
	assert.Len(t, collect(t, src), 2)

	src.Denied = true
	perm, _ = src.Permission(context.Background())
	assert.Equal(t, PermissionDenied, perm)
	assert.Equal(t, "denied", perm.String())
}

func TestSliceSource_StopsOnEmitError(t *testing.T) {
	src := &SliceSource{Samples: []tracker.GeoSample{
		tracker.NewSample(0, 0, epoch),
		tracker.NewSample(0, 1, epoch),
	}}
	boom := errors.New("boom")
	calls := 0
	err := src.Watch(context.Background(), func(tracker.GeoSample) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestNDJSONSource(t *testing.T) {
	input := strings.Join([]string{
		`{"lat": 41.88, "lng": -87.63, "at": "2024-12-14T15:00:00Z"}`,
		``,
		`# comment`,
		`{"lat": 41.89, "lng": -87.62, "speed": 3.5, "at": "2024-12-14T15:00:05Z"}`,
		`{"lat": 41.90, "lng": -87.61, "speed": -1}`,
	}, "\n")
	src := NewNDJSONSource("stdin", strings.NewReader(input))
	src.now = func() time.Time { return epoch.Add(time.Minute) }

	samples := collect(t, src)
	require.Len(t, samples, 3)

	assert.Nil(t, samples[0].Speed)
	assert.Equal(t, epoch, samples[0].Timestamp)

	require.NotNil(t, samples[1].Speed)
	assert.Equal(t, 3.5, *samples[1].Speed)

	assert.Nil(t, samples[2].Speed, "negative speed means unknown")
	assert.Equal(t, epoch.Add(time.Minute), samples[2].Timestamp)
}

func TestNDJSONSource_BadLine(t *testing.T) {
	src := NewNDJSONSource("stdin", strings.NewReader("{\"lat\": 1}\n"))
	err := src.Watch(context.Background(), func(tracker.GeoSample) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	src = NewNDJSONSource("stdin", strings.NewReader("not json\n"))
	err = src.Watch(context.Background(), func(tracker.GeoSample) error { return nil })
	assert.Error(t, err)
}

const gpxDoc = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.0" creator="test">
  <trk><name>loop</name><trkseg>
    <trkpt lat="0" lon="0"><time>2024-12-14T15:00:00Z</time></trkpt>
    <trkpt lat="0" lon="0.001"><time>2024-12-14T15:00:10Z</time><speed>2.5</speed></trkpt>
    <trkpt lat="0" lon="0.002"><time>2024-12-14T15:00:20Z</time></trkpt>
  </trkseg></trk>
</gpx>`

func TestGPXSource(t *testing.T) {
	samples := collect(t, NewGPXSource("loop.gpx", strings.NewReader(gpxDoc)))
	require.Len(t, samples, 3)

	assert.Equal(t, 0.001, samples[1].Longitude)
	require.NotNil(t, samples[1].Speed)
	assert.Equal(t, 2.5, *samples[1].Speed)
	assert.Equal(t, epoch.Add(20*time.Second), samples[2].Timestamp)
}

func TestGPXSource_BadTime(t *testing.T) {
	doc := `<gpx><trk><trkseg><trkpt lat="0" lon="0"><time>yesterday</time></trkpt></trkseg></trk></gpx>`
	err := NewGPXSource("bad.gpx", strings.NewReader(doc)).Watch(context.Background(), func(tracker.GeoSample) error { return nil })
	assert.Error(t, err)
}

func semicircle(deg float64) int32 {
	return int32(deg * (1 << 31) / 180)
}

func TestRecordSample(t *testing.T) {
	rec := &mesgdef.Record{
		Timestamp:     epoch,
		PositionLat:   semicircle(41.88),
		PositionLong:  semicircle(-87.63),
		Speed:         basetype.Uint16Invalid,
		EnhancedSpeed: 3250,
	}
	sample, ok := recordSample(rec)
	require.True(t, ok)
	assert.InDelta(t, 41.88, sample.Latitude, 1e-6)
	assert.InDelta(t, -87.63, sample.Longitude, 1e-6)
	require.NotNil(t, sample.Speed)
	assert.InDelta(t, 3.25, *sample.Speed, 1e-9)
	assert.Equal(t, epoch, sample.Timestamp)
}

func TestRecordSample_FallsBackToSpeed(t *testing.T) {
	rec := &mesgdef.Record{
		PositionLat:   0,
		PositionLong:  0,
		Speed:         1500,
		EnhancedSpeed: basetype.Uint32Invalid,
	}
	sample, ok := recordSample(rec)
	require.True(t, ok)
	require.NotNil(t, sample.Speed)
	assert.InDelta(t, 1.5, *sample.Speed, 1e-9)

	rec.Speed = basetype.Uint16Invalid
	sample, _ = recordSample(rec)
	assert.Nil(t, sample.Speed)
}

func TestRecordSample_SkipsMissingFix(t *testing.T) {
	rec := &mesgdef.Record{PositionLat: basetype.Sint32Invalid, PositionLong: 0}
	_, ok := recordSample(rec)
	assert.False(t, ok)

	_, ok = recordSample(nil)
	assert.False(t, ok)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	gpxPath := filepath.Join(dir, "loop.GPX")
	require.NoError(t, os.WriteFile(gpxPath, []byte(gpxDoc), 0600))
	src, err := OpenFile(gpxPath)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "loop.GPX", src.Name())
	assert.Len(t, collect(t, src), 3)

	ndPath := filepath.Join(dir, "fixes.jsonl")
	require.NoError(t, os.WriteFile(ndPath, []byte(`{"lat":1,"lng":2}`+"\n"), 0600))
	nd, err := OpenFile(ndPath)
	require.NoError(t, err)
	defer nd.Close()
	assert.Len(t, collect(t, nd), 1)

	_, err = OpenFile(filepath.Join(dir, "track.kml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = OpenFile(filepath.Join(dir, "missing.gpx"))
	assert.Error(t, err)
}
