// ABOUTME: Opens track files as location sources based on their extension
// ABOUTME: Supports .gpx, .fit, .ndjson and .jsonl

package location

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSource is a Source backed by an open file.
type FileSource struct {
	Source
	f *os.File
}

// Close releases the underlying file.
func (fs *FileSource) Close() error {
	return fs.f.Close()
}

// OpenFile picks a decoder from the file extension.
func OpenFile(path string) (*FileSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gpx", ".fit", ".ndjson", ".jsonl":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}

	name := filepath.Base(path)
	var src Source
	switch ext {
	case ".gpx":
		src = NewGPXSource(name, f)
	case ".fit":
		src = NewFITSource(name, f)
	default:
		src = NewNDJSONSource(name, f)
	}
	return &FileSource{Source: src, f: f}, nil
}
