// Package output formats command results as text or JSON so every
// subcommand prints the same way.
package output

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Format is an output format.
type Format int

const (
	// FormatText is human-readable text (default).
	FormatText Format = iota
	// FormatJSON is machine-readable JSON.
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// Formatter writes results in one format.
type Formatter struct {
	format Format
	writer io.Writer
	pretty bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// New returns a text formatter on stdout, adjusted by opts.
func New(opts ...Option) *Formatter {
	f := &Formatter{format: FormatText, writer: os.Stdout, pretty: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(f *Formatter) { f.format = format }
}

// WithJSON selects JSON when enabled and text otherwise.
func WithJSON(enabled bool) Option {
	return func(f *Formatter) {
		if enabled {
			f.format = FormatJSON
		} else {
			f.format = FormatText
		}
	}
}

// WithWriter sets the destination.
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) { f.writer = w }
}

// WithPretty toggles JSON indentation.
func WithPretty(pretty bool) Option {
	return func(f *Formatter) { f.pretty = pretty }
}

// Format returns the current format.
func (f *Formatter) Format() Format { return f.format }

// IsJSON reports whether output is JSON.
func (f *Formatter) IsJSON() bool { return f.format == FormatJSON }

// Writer returns the destination.
func (f *Formatter) Writer() io.Writer { return f.writer }

// DetectFormat picks a format: the --json flag wins, then
// PANEWATCH_OUTPUT_FORMAT, then text.
func DetectFormat(jsonFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PANEWATCH_OUTPUT_FORMAT"))) {
	case "json":
		return FormatJSON
	}
	return FormatText
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
