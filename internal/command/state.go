// Package command runs one shell command per pane on a fixed interval.
// Each pane gets an independent job goroutine that reports back to the UI
// loop over a shared bounded event channel; the UI owns the Command record
// and is the only goroutine that mutates it.
package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/panewatch/internal/pane"
)

// State is the lifecycle state shown for a pane's command.
type State int

const (
	StateIdle State = iota
	StateExecuting
	StatePaused
	StateStopped
)

var stateNames = [...]string{"idle", "executing", "paused", "stopped"}

// String returns the stable token used in session files.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Label is the upper-case form drawn in pane titles.
func (s State) Label() string {
	return strings.ToUpper(s.String())
}

// ParseState reverses State.String.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if strings.EqualFold(s, name) {
			return State(i), nil
		}
	}
	return StateIdle, fmt.Errorf("unknown command state %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Control is a request sent from the UI to a pane's job.
type Control int

const (
	ControlResume Control = iota
	ControlStop
	ControlPause
	ControlIntervalIncrease
	ControlIntervalDecrease
	ControlExecute
	ControlIntervalSet
)

func (c Control) String() string {
	switch c {
	case ControlResume:
		return "resume"
	case ControlStop:
		return "stop"
	case ControlPause:
		return "pause"
	case ControlIntervalIncrease:
		return "interval-increase"
	case ControlIntervalDecrease:
		return "interval-decrease"
	case ControlExecute:
		return "execute"
	case ControlIntervalSet:
		return "interval-set"
	}
	return fmt.Sprintf("control(%d)", int(c))
}

// signal is what actually travels to the job. Interval is only meaningful
// for ControlIntervalSet.
type signal struct {
	ctrl     Control
	interval time.Duration
}

// Output is the immutable record of one run.
type Output struct {
	Text     string
	Time     time.Time
	ExitCode *int
	Duration time.Duration
}

// Success reports whether the run exited with status 0.
func (o Output) Success() bool {
	return o.ExitCode != nil && *o.ExitCode == 0
}

// EventKind tags an Event.
type EventKind int

const (
	// EventStarted is sent just before the shell is spawned.
	EventStarted EventKind = iota
	// EventOutput carries a completed run.
	EventOutput
	// EventFailed is sent when the shell could not be run at all. No output
	// is recorded for the run.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	default:
		return "failed"
	}
}

// Event is a job-to-UI message. Job distinguishes events of a replaced
// command from those of its successor on the same pane.
type Event struct {
	Pane   pane.Key
	Job    uint64
	Kind   EventKind
	Output Output
	Err    error
}
