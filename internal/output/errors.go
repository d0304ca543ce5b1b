package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/panewatch/internal/tui/theme"
)

// CLIError is an error with an optional remediation hint and code.
type CLIError struct {
	Message string
	Cause   error
	Hint    string
	Code    string
}

func (e *CLIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CLIError) Unwrap() error { return e.Cause }

// NewCLIError returns an error with msg.
func NewCLIError(msg string) *CLIError {
	return &CLIError{Message: msg}
}

// WithCause records the underlying error.
func (e *CLIError) WithCause(err error) *CLIError {
	e.Cause = err
	return e
}

// WithHint adds a remediation hint.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// WithCode adds a code for scripts.
func (e *CLIError) WithCode(code string) *CLIError {
	e.Code = code
	return e
}

// Common hints.
const (
	HintNotTerminal     = "run panewatch from an interactive terminal"
	HintSessionNotFound = "run 'panewatch sessions list' to see saved sessions"
	HintNoSessions      = "press s in the dashboard to save one"
	HintConfigInvalid   = "check the file with 'panewatch config show' or recreate it with 'panewatch config init'"
)

// NotTerminalError is returned when the dashboard cannot own the terminal.
func NotTerminalError() *CLIError {
	return NewCLIError("stdout is not a terminal").
		WithCode("NOT_A_TERMINAL").
		WithHint(HintNotTerminal)
}

// SessionNotFoundError wraps a missing session lookup.
func SessionNotFoundError(name string, cause error) *CLIError {
	return NewCLIError(fmt.Sprintf("session %q not found", name)).
		WithCause(cause).
		WithCode("SESSION_NOT_FOUND").
		WithHint(HintSessionNotFound)
}

// FormatError renders err for stderr. CLIErrors show their code and hint;
// color styles them with the current theme.
func FormatError(err error, color bool) string {
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &CLIError{Message: err.Error()}
	}

	label := "Error: "
	code := ""
	if cliErr.Code != "" {
		code = " [" + cliErr.Code + "]"
	}
	hint := "  Hint: "
	if color {
		t := theme.Current()
		label = lipgloss.NewStyle().Foreground(t.Red).Bold(true).Render(label)
		code = lipgloss.NewStyle().Foreground(t.Overlay).Render(code)
		hint = lipgloss.NewStyle().Foreground(t.Sky).Render(hint)
	}

	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString(err.Error())
	sb.WriteString(code)
	sb.WriteString("\n")
	if cliErr.Hint != "" {
		sb.WriteString(hint)
		sb.WriteString(cliErr.Hint)
		sb.WriteString("\n")
	}
	return sb.String()
}

// PrintError writes err to w, as JSON when jsonMode is set.
func PrintError(w io.Writer, err error, jsonMode bool) {
	if jsonMode {
		resp := ErrorResponse{Error: err.Error()}
		var cliErr *CLIError
		if errors.As(err, &cliErr) {
			resp.Code, resp.Hint = cliErr.Code, cliErr.Hint
		}
		_ = WriteJSON(w, resp, true)
		return
	}
	fmt.Fprint(w, FormatError(err, IsTerminal(w) && !theme.NoColorEnabled()))
}

// ErrorResponse is the JSON form of an error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Hint  string `json:"hint,omitempty"`
}
