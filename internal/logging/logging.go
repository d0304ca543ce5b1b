// Package logging builds the pslog logger. The dashboard owns the
// terminal, so logs go to a file rather than stderr.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// FileName is the log file created in the logs directory.
const FileName = "panewatch.log"

// Options returns structured, colourless pslog options at level.
// Unknown levels fall back to info; ok reports whether level was known.
func Options(level string) (opts pslog.Options, ok bool) {
	opts = pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      pslog.InfoLevel,
	}
	ok = true
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "info", "":
	case "warn", "warning":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		ok = false
	}
	return opts, ok
}

// New returns a logger writing to w.
func New(w io.Writer, level string) pslog.Logger {
	opts, ok := Options(level)
	logger := pslog.NewWithOptions(w, opts)
	if !ok {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger
}

// Open creates dir if needed and returns a logger appending to
// <dir>/panewatch.log. The returned closer closes the file.
func Open(dir, level string) (pslog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating logs directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(f, level), f, nil
}

// RedirectStdlib sends the standard library logger to logger.
func RedirectStdlib(logger pslog.Logger) {
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
}
