// ABOUTME: FIT activity file source built on the muktihari/fit decoder
// ABOUTME: Converts record messages with a position fix into geo samples

package location

import (
	"context"
	"fmt"
	"io"

	"github.com/harper/stride/internal/tracker"
	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/kit/semicircles"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/filedef"
	"github.com/muktihari/fit/profile/mesgdef"
)

// FITSource emits the positioned records of every activity in a FIT stream.
type FITSource struct {
	name string
	r    io.Reader
}

func NewFITSource(name string, r io.Reader) *FITSource {
	return &FITSource{name: name, r: r}
}

func (s *FITSource) Name() string { return s.name }

func (s *FITSource) Permission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (s *FITSource) Watch(ctx context.Context, emit EmitFunc) error {
	dec := decoder.New(s.r)
	// A FIT file may chain several FIT sequences.
	for dec.Next() {
		fit, err := dec.Decode()
		if err != nil {
			return fmt.Errorf("decode fit %s: %w", s.name, err)
		}
		activity := filedef.NewActivity(fit.Messages...)
		for _, rec := range activity.Records {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample, ok := recordSample(rec)
			if !ok {
				continue
			}
			if err := emit(sample); err != nil {
				return err
			}
		}
	}
	return nil
}

// recordSample converts a record message, skipping records without a fix.
func recordSample(rec *mesgdef.Record) (tracker.GeoSample, bool) {
	if rec == nil || rec.PositionLat == basetype.Sint32Invalid || rec.PositionLong == basetype.Sint32Invalid {
		return tracker.GeoSample{}, false
	}
	sample := tracker.NewSample(
		semicircles.ToDegrees(rec.PositionLat),
		semicircles.ToDegrees(rec.PositionLong),
		rec.Timestamp,
	)
	switch {
	case rec.EnhancedSpeed != basetype.Uint32Invalid:
		sample = sample.WithSpeed(float64(rec.EnhancedSpeed) / 1000)
	case rec.Speed != basetype.Uint16Invalid:
		sample = sample.WithSpeed(float64(rec.Speed) / 1000)
	}
	return sample, true
}
