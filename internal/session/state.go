// Package session saves and restores dashboard snapshots: the pane tree
// plus the command assigned to each pane, keyed by friendly pane id.
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/panewatch/internal/command"
	"github.com/theirongolddev/panewatch/internal/display"
	"github.com/theirongolddev/panewatch/internal/pane"
)

// StateVersion is the schema version for migrations
const StateVersion = 1

// ErrInvalidState is returned when a decoded session cannot be restored.
var ErrInvalidState = errors.New("invalid session state")

// SessionState is one saved dashboard.
type SessionState struct {
	Version  int            `toml:"version" yaml:"version"`
	ID       string         `toml:"id" yaml:"id"`
	Name     string         `toml:"name" yaml:"name"`
	SavedAt  time.Time      `toml:"saved_at" yaml:"saved_at"`
	Panes    pane.Snapshot  `toml:"panes" yaml:"panes"`
	Commands []CommandState `toml:"commands" yaml:"commands"`
}

// CommandState is the saved command of one pane. Interval is whole
// seconds for compatibility; IntervalMS carries sub-second intervals and
// wins when set.
type CommandState struct {
	Pane       int           `toml:"pane" yaml:"pane"`
	Exec       string        `toml:"exec" yaml:"exec"`
	Interval   int64         `toml:"interval" yaml:"interval"`
	IntervalMS int64         `toml:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`
	State      command.State `toml:"state" yaml:"state"`
	Display    string        `toml:"display" yaml:"display"`
	History    []OutputState `toml:"history,omitempty" yaml:"history,omitempty"`
}

// OutputState is one saved run.
type OutputState struct {
	Text       string    `toml:"text" yaml:"text"`
	Time       time.Time `toml:"time" yaml:"time"`
	ExitCode   *int      `toml:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	DurationMS int64     `toml:"duration_ms" yaml:"duration_ms"`
}

// interval returns the saved interval, preferring the millisecond field.
func (c CommandState) interval() time.Duration {
	if c.IntervalMS > 0 {
		return time.Duration(c.IntervalMS) * time.Millisecond
	}
	return time.Duration(c.Interval) * time.Second
}

// Capture builds a SessionState from the live tree and the commands of its
// panes. Commands on keys that are no longer leaves are skipped.
func Capture(name string, panes *pane.Manager, commands map[pane.Key]command.Snapshot) *SessionState {
	state := &SessionState{
		Version: StateVersion,
		ID:      uuid.NewString(),
		Name:    name,
		SavedAt: time.Now(),
		Panes:   panes.Snapshot(),
	}
	for _, key := range panes.Leaves() {
		snap, ok := commands[key]
		if !ok {
			continue
		}
		id, _ := panes.FriendlyID(key)
		cs := CommandState{
			Pane:     id,
			Exec:     snap.Exec,
			Interval: int64(snap.Interval / time.Second),
			State:    snap.State,
			Display:  snap.Display,
		}
		if snap.Interval%time.Second != 0 {
			cs.IntervalMS = snap.Interval.Milliseconds()
		}
		for _, out := range snap.History {
			cs.History = append(cs.History, OutputState{
				Text:       out.Text,
				Time:       out.Time,
				ExitCode:   out.ExitCode,
				DurationMS: out.Duration.Milliseconds(),
			})
		}
		state.Commands = append(state.Commands, cs)
	}
	return state
}

// Restored is a validated session ready to replace live state.
type Restored struct {
	Panes    *pane.Manager
	Commands map[pane.Key]command.Snapshot
}

// Restore validates the whole state and rebuilds the tree and command
// snapshots. Nothing is returned unless every part is valid.
func (s *SessionState) Restore() (*Restored, error) {
	if s.Version > StateVersion {
		return nil, fmt.Errorf("%w: version %d is newer than supported %d", ErrInvalidState, s.Version, StateVersion)
	}
	panes, err := pane.Restore(s.Panes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	commands := make(map[pane.Key]command.Snapshot, len(s.Commands))
	for _, cs := range s.Commands {
		key, ok := panes.KeyForFriendlyID(cs.Pane)
		if !ok {
			return nil, fmt.Errorf("%w: command for unknown pane %d", ErrInvalidState, cs.Pane)
		}
		if _, dup := commands[key]; dup {
			return nil, fmt.Errorf("%w: pane %d has two commands", ErrInvalidState, cs.Pane)
		}
		if cs.Exec == "" {
			return nil, fmt.Errorf("%w: pane %d has an empty command", ErrInvalidState, cs.Pane)
		}
		interval := cs.interval()
		if interval <= 0 {
			return nil, fmt.Errorf("%w: pane %d has interval %v", ErrInvalidState, cs.Pane, interval)
		}
		if _, err := display.ParseMode(cs.Display); err != nil {
			return nil, fmt.Errorf("%w: pane %d: %w", ErrInvalidState, cs.Pane, err)
		}

		snap := command.Snapshot{
			Exec:     cs.Exec,
			Interval: interval,
			State:    cs.State,
			Display:  cs.Display,
		}
		for _, out := range cs.History {
			snap.History = append(snap.History, command.Output{
				Text:     out.Text,
				Time:     out.Time,
				ExitCode: out.ExitCode,
				Duration: time.Duration(out.DurationMS) * time.Millisecond,
			})
		}
		commands[key] = snap
	}
	return &Restored{Panes: panes, Commands: commands}, nil
}

// ExportYAML writes the state as YAML.
func ExportYAML(w io.Writer, state *SessionState) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encoding session yaml: %w", err)
	}
	return enc.Close()
}

func countLeaves(n pane.NodeSnapshot) int {
	if len(n.Children) == 0 {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += countLeaves(c)
	}
	return total
}
