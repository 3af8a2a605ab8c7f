// Package logging builds the process logger. Log events go to a file
// rather than stdout: in MCP server mode stdout carries the protocol
// stream and must stay clean.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const logFileMode = 0o664

// New opens the log file at path for appending and returns a logger
// writing to it. With verbose set, events are mirrored to stderr and
// the level drops to debug. The returned closer flushes and closes the
// underlying file.
func New(path string, verbose bool) (zerolog.Logger, func(), error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var w io.Writer = zerolog.SyncWriter(file)
	if verbose {
		w = io.MultiWriter(w, os.Stderr)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	closer := func() {
		_ = file.Close()
	}
	return logger, closer, nil
}
