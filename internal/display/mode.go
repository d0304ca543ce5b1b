// Package display turns a pane's output history into the text shown in its body.
package display

import (
	"fmt"
	"strings"
)

// Mode selects how a pane's history is rendered.
type Mode int

const (
	Raw Mode = iota
	Wrapped
	Multiline
	MultilineTime
	MultilineDateTime
	DiffChar
	DiffWord
	DiffLine
)

var modeTokens = [...]string{
	Raw:               "raw",
	Wrapped:           "wrapped",
	Multiline:         "multiline",
	MultilineTime:     "multiline-time",
	MultilineDateTime: "multiline-datetime",
	DiffChar:          "diff-char",
	DiffWord:          "diff-word",
	DiffLine:          "diff-line",
}

var modeLabels = [...]string{
	Raw:               "Raw text",
	Wrapped:           "Raw text (wrapped)",
	Multiline:         "History",
	MultilineTime:     "History with time",
	MultilineDateTime: "History with date and time",
	DiffChar:          "Diff by character",
	DiffWord:          "Diff by word",
	DiffLine:          "Diff by line",
}

// Modes lists every mode in menu order.
func Modes() []Mode {
	modes := make([]Mode, len(modeTokens))
	for i := range modeTokens {
		modes[i] = Mode(i)
	}
	return modes
}

func (m Mode) valid() bool { return m >= 0 && int(m) < len(modeTokens) }

// String returns the persisted token for m.
func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeTokens[m]
}

// Label returns a human readable name for menus.
func (m Mode) Label() string {
	if !m.valid() {
		return m.String()
	}
	return modeLabels[m]
}

// IsDiff reports whether m compares the last two outputs.
func (m Mode) IsDiff() bool {
	return m == DiffChar || m == DiffWord || m == DiffLine
}

// IsHistory reports whether m lists the whole history.
func (m Mode) IsHistory() bool {
	return m == Multiline || m == MultilineTime || m == MultilineDateTime
}

// ParseMode maps a token to a Mode. Unknown tokens yield Raw and an error.
// The empty string is Raw.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Raw, nil
	}
	for i, tok := range modeTokens {
		if tok == s {
			return Mode(i), nil
		}
	}
	return Raw, fmt.Errorf("unknown display mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("invalid display mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
