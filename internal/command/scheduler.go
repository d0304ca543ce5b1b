package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/pane"
)

// EventBuffer is the capacity of the shared job-to-UI event channel.
const EventBuffer = 100

// ErrUnknownPane is returned when no command is assigned to a pane.
var ErrUnknownPane = errors.New("no command for pane")

// Scheduler keeps the commands of every pane and the event channel their
// jobs report on. Like Command, it belongs to the UI loop.
type Scheduler struct {
	ctx      context.Context
	opts     Options
	events   chan Event
	commands map[pane.Key]*Command
}

// NewScheduler returns an empty scheduler. Jobs inherit ctx, including
// its logger.
func NewScheduler(ctx context.Context, opts Options) *Scheduler {
	return &Scheduler{
		ctx:      ctx,
		opts:     opts.withDefaults(),
		events:   make(chan Event, EventBuffer),
		commands: make(map[pane.Key]*Command),
	}
}

// Events is the channel every job reports on.
func (s *Scheduler) Events() <-chan Event { return s.events }

// Options returns the settings new commands are spawned with.
func (s *Scheduler) Options() Options { return s.opts }

// SetOptions changes the settings for commands spawned from now on.
func (s *Scheduler) SetOptions(opts Options) { s.opts = opts.withDefaults() }

// Len returns the number of panes with a command.
func (s *Scheduler) Len() int { return len(s.commands) }

// Get returns the command assigned to key.
func (s *Scheduler) Get(key pane.Key) (*Command, bool) {
	c, ok := s.commands[key]
	return c, ok
}

// Set assigns line to key, stopping any command it replaces. The new
// command runs once immediately and then on its interval.
func (s *Scheduler) Set(key pane.Key, line string) *Command {
	opts := s.opts
	if old, ok := s.commands[key]; ok {
		old.Stop()
		opts.Display = old.Display
	}
	c := Spawn(s.ctx, key, line, opts, s.events)
	if err := c.Control(ControlExecute); err != nil {
		pslog.Ctx(s.ctx).Warn("initial execute not queued", "pane", key.String(), "err", err)
	}
	s.commands[key] = c
	return c
}

// Remove stops and forgets the command for key.
func (s *Scheduler) Remove(key pane.Key) bool {
	c, ok := s.commands[key]
	if !ok {
		return false
	}
	c.Stop()
	delete(s.commands, key)
	return true
}

// Control forwards ctrl to the command for key.
func (s *Scheduler) Control(key pane.Key, ctrl Control) error {
	c, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownPane, key)
	}
	return c.Control(ctrl)
}

// SetInterval changes the interval of the command for key.
func (s *Scheduler) SetInterval(key pane.Key, d time.Duration) error {
	c, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownPane, key)
	}
	return c.SetInterval(d)
}

// Apply routes a job event to its command. It returns nil for events of
// removed panes or replaced jobs.
func (s *Scheduler) Apply(ev Event) *Command {
	c, ok := s.commands[ev.Pane]
	if !ok || !c.ApplyEvent(ev) {
		return nil
	}
	return c
}

// StopAll stops and forgets every command.
func (s *Scheduler) StopAll() {
	for key, c := range s.commands {
		c.Stop()
		delete(s.commands, key)
	}
}

// Snapshot captures every command by pane key.
func (s *Scheduler) Snapshot() map[pane.Key]Snapshot {
	out := make(map[pane.Key]Snapshot, len(s.commands))
	for key, c := range s.commands {
		out[key] = c.Snapshot()
	}
	return out
}

// Restore stops the current commands and respawns states.
func (s *Scheduler) Restore(states map[pane.Key]Snapshot) {
	s.StopAll()
	for key, snap := range states {
		s.commands[key] = SpawnFromSnapshot(s.ctx, key, snap, s.opts, s.events)
	}
	pslog.Ctx(s.ctx).Info("commands restored", "count", len(states))
}
