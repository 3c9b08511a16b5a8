// ABOUTME: Streaming NDJSON location source, one sample object per line
// ABOUTME: Used for piping live fixes into stride and for plain-text track files

package location

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harper/stride/internal/tracker"
)

// ndjsonSample is the wire shape of one line.
type ndjsonSample struct {
	Lat   *float64   `json:"lat"`
	Lng   *float64   `json:"lng"`
	Speed *float64   `json:"speed,omitempty"`
	At    *time.Time `json:"at,omitempty"`
}

// NDJSONSource reads samples line by line from a reader.
type NDJSONSource struct {
	name string
	r    io.Reader
	now  func() time.Time
}

// NewNDJSONSource wraps r. Lines without "at" are stamped with the read time.
func NewNDJSONSource(name string, r io.Reader) *NDJSONSource {
	return &NDJSONSource{name: name, r: r, now: time.Now}
}

// Name labels samples and errors from this source.
func (s *NDJSONSource) Name() string { return s.name }

// Permission is always granted for a stream the caller opened.
func (s *NDJSONSource) Permission(ctx context.Context) (Permission, error) {
	return PermissionGranted, nil
}

// Watch emits one sample per line. A read blocked on a live stream
// does not hold up cancellation; Watch returns as soon as ctx is done.
func (s *NDJSONSource) Watch(ctx context.Context, emit EmitFunc) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read %s: %w", s.name, err)
				}
				return nil
			}
			lineNo++
			line := strings.TrimSpace(text)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			sample, err := s.parseLine(line)
			if err != nil {
				return fmt.Errorf("%s line %d: %w", s.name, lineNo, err)
			}
			if err := emit(sample); err != nil {
				return err
			}
		}
	}
}

func (s *NDJSONSource) parseLine(line string) (tracker.GeoSample, error) {
	var raw ndjsonSample
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return tracker.GeoSample{}, fmt.Errorf("parse sample: %w", err)
	}
	if raw.Lat == nil || raw.Lng == nil {
		return tracker.GeoSample{}, fmt.Errorf("sample needs lat and lng")
	}
	at := s.now()
	if raw.At != nil {
		at = *raw.At
	}
	sample := tracker.NewSample(*raw.Lat, *raw.Lng, at)
	sample.Speed = normalizeSpeed(raw.Speed)
	return sample, nil
}
