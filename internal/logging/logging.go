// Package logging builds the structured logger shared by the CLI and the
// HTTP server.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "gobeam"

// New returns a timestamped logger writing to stderr at the named level.
// An empty level means info.
func New(level string) (*log.Logger, error) {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          Prefix,
		Level:           lvl,
	}), nil
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
