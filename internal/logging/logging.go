// ABOUTME: Shared charmbracelet/log setup for stride commands and services
// ABOUTME: Parses level names and falls back to warn for unknown values

package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// New returns a logger writing to w at the named level.
// Unknown or empty levels fall back to DefaultLevel.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:  ParseLevel(level),
		Prefix: "stride",
	})
}

// ParseLevel maps a level name onto a log.Level.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl, _ = log.ParseLevel(DefaultLevel)
	}
	return lvl
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
