// ABOUTME: GPX track file source decoding trkpt elements as they stream past
// ABOUTME: Reads lat/lon attributes plus optional time and speed children

package location

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/harper/stride/internal/tracker"
)

type gpxPoint struct {
	Lat   float64  `xml:"lat,attr"`
	Lon   float64  `xml:"lon,attr"`
	Time  string   `xml:"time"`
	Speed *float64 `xml:"speed"`
}

// GPXSource emits every track point of a GPX document in file order.
type GPXSource struct {
	name string
	r    io.Reader
}

func NewGPXSource(name string, r io.Reader) *GPXSource {
	return &GPXSource{name: name, r: r}
}

func (s *GPXSource) Name() string { return s.name }

func (s *GPXSource) Permission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (s *GPXSource) Watch(ctx context.Context, emit EmitFunc) error {
	dec := xml.NewDecoder(s.r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode gpx %s: %w", s.name, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "trkpt" {
			continue
		}
		var pt gpxPoint
		if err := dec.DecodeElement(&pt, &start); err != nil {
			return fmt.Errorf("decode trkpt: %w", err)
		}
		sample, err := pt.sample()
		if err != nil {
			return err
		}
		if err := emit(sample); err != nil {
			return err
		}
	}
}

func (p gpxPoint) sample() (tracker.GeoSample, error) {
	var at time.Time
	if p.Time != "" {
		t, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return tracker.GeoSample{}, fmt.Errorf("trkpt time %q: %w", p.Time, err)
		}
		at = t
	}
	sample := tracker.NewSample(p.Lat, p.Lon, at)
	sample.Speed = normalizeSpeed(p.Speed)
	return sample, nil
}
