package command

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/pane"
)

var (
	// ErrJobStopped is returned when signalling a command whose job has exited.
	ErrJobStopped = errors.New("command job stopped")
	// ErrSignalDropped is returned when the job has not consumed the
	// previous signal yet.
	ErrSignalDropped = errors.New("command signal dropped")
)

// DefaultMaxHistory bounds output history when Options leaves it unset.
const DefaultMaxHistory = 100

var jobSeq atomic.Uint64

// Options are the per-command settings taken from configuration.
type Options struct {
	Interval   time.Duration
	MaxHistory int
	Display    string
	Executor   Executor
}

func (o Options) withDefaults() Options {
	o.Interval = ClampInterval(o.Interval)
	if o.MaxHistory <= 0 {
		o.MaxHistory = DefaultMaxHistory
	}
	return o
}

// Snapshot is the persistable state of a Command.
type Snapshot struct {
	Exec     string
	Interval time.Duration
	History  []Output
	State    State
	Display  string
}

// Command is the UI-side record of a pane's command. It is owned by the UI
// loop and must not be shared with other goroutines; its job runs
// separately and reports through Events.
type Command struct {
	Exec     string
	Interval time.Duration
	State    State
	Display  string

	history    []Output
	maxHistory int

	job     uint64
	signals chan signal
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
	log     pslog.Logger
}

// Spawn starts a job for line on pane key. The first scheduled run happens
// one interval from now; send ControlExecute for an immediate run.
func Spawn(ctx context.Context, key pane.Key, line string, opts Options, events chan<- Event) *Command {
	opts = opts.withDefaults()
	return spawn(ctx, key, Snapshot{
		Exec:     line,
		Interval: opts.Interval,
		State:    StateIdle,
		Display:  opts.Display,
	}, opts, events)
}

// SpawnFromSnapshot recreates a command from saved state. A saved
// Executing state comes back as Idle. A Paused command starts paused
// without an initial run. A Stopped command keeps its history but no job
// is started.
func SpawnFromSnapshot(ctx context.Context, key pane.Key, snap Snapshot, opts Options, events chan<- Event) *Command {
	opts = opts.withDefaults()
	if snap.Interval <= 0 {
		snap.Interval = opts.Interval
	}
	snap.Interval = ClampInterval(snap.Interval)
	if snap.State == StateExecuting {
		snap.State = StateIdle
	}
	return spawn(ctx, key, snap, opts, events)
}

func spawn(ctx context.Context, key pane.Key, snap Snapshot, opts Options, events chan<- Event) *Command {
	id := jobSeq.Add(1)
	log := pslog.Ctx(ctx).With("pane", key.String(), "job", id)

	c := &Command{
		Exec:       snap.Exec,
		Interval:   snap.Interval,
		State:      snap.State,
		Display:    snap.Display,
		maxHistory: opts.MaxHistory,
		job:        id,
		done:       make(chan struct{}),
		log:        log,
	}
	for _, out := range snap.History {
		c.appendHistory(out)
	}

	if snap.State == StateStopped {
		c.stopped = true
		close(c.done)
		log.Info("restored stopped command", "exec", snap.Exec)
		return c
	}

	jobCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.signals = make(chan signal, 1)
	j := &job{
		pane:     key,
		id:       id,
		line:     snap.Exec,
		interval: snap.Interval,
		paused:   snap.State == StatePaused,
		signals:  c.signals,
		events:   events,
		executor: opts.Executor,
		log:      log,
	}
	go j.run(jobCtx, c.done)
	log.Info("command spawned", "exec", snap.Exec, "interval", snap.Interval)
	return c
}

// JobID identifies the job that produces this command's events.
func (c *Command) JobID() uint64 { return c.job }

// Done is closed once the job goroutine has exited.
func (c *Command) Done() <-chan struct{} { return c.done }

// Stopped reports whether Stop has been called.
func (c *Command) Stopped() bool { return c.stopped }

// Control forwards ctrl to the job without blocking and, once the job has
// the signal, updates local state to match. Interval steps are sent as an
// absolute interval. A dropped signal returns ErrSignalDropped and leaves
// the record unchanged.
func (c *Command) Control(ctrl Control) error {
	if ctrl == ControlStop {
		c.Stop()
		return nil
	}
	if c.stopped {
		return ErrJobStopped
	}

	sig := signal{ctrl: ctrl}
	switch ctrl {
	case ControlIntervalIncrease:
		sig = signal{ctrl: ControlIntervalSet, interval: IncreaseInterval(c.Interval)}
	case ControlIntervalDecrease:
		sig = signal{ctrl: ControlIntervalSet, interval: DecreaseInterval(c.Interval)}
	case ControlIntervalSet:
		sig.interval = c.Interval
	}
	if err := c.send(sig); err != nil {
		return err
	}
	switch ctrl {
	case ControlIntervalIncrease, ControlIntervalDecrease:
		c.Interval = sig.interval
	case ControlPause:
		c.State = StatePaused
	case ControlResume:
		c.State = StateIdle
	}
	return nil
}

// SetInterval replaces the interval and reschedules the job.
func (c *Command) SetInterval(d time.Duration) error {
	if c.stopped {
		return ErrJobStopped
	}
	d = ClampInterval(d)
	if err := c.send(signal{ctrl: ControlIntervalSet, interval: d}); err != nil {
		return err
	}
	c.Interval = d
	return nil
}

func (c *Command) send(sig signal) error {
	select {
	case c.signals <- sig:
		return nil
	default:
		c.log.Warn("control channel full, dropping signal", "control", sig.ctrl.String())
		return ErrSignalDropped
	}
}

// Stop ends the job. It is safe to call more than once.
func (c *Command) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	c.State = StateStopped
	select {
	case c.signals <- signal{ctrl: ControlStop}:
	default:
	}
	c.cancel()
	c.log.Info("command stopped")
}

// ApplyEvent folds a job event into the record. Events from another job
// are ignored and reported as false.
func (c *Command) ApplyEvent(ev Event) bool {
	if ev.Job != c.job {
		return false
	}
	switch ev.Kind {
	case EventStarted:
		if c.State == StateIdle {
			c.State = StateExecuting
		}
	case EventOutput:
		c.appendHistory(ev.Output)
		if c.State == StateExecuting {
			c.State = StateIdle
		}
	case EventFailed:
		if c.State == StateExecuting {
			c.State = StateIdle
		}
	}
	return true
}

func (c *Command) appendHistory(out Output) {
	c.history = append(c.history, out)
	if over := len(c.history) - c.maxHistory; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
}

// History returns outputs oldest first. The slice must not be modified.
func (c *Command) History() []Output { return c.history }

// MaxHistory is the history capacity.
func (c *Command) MaxHistory() int { return c.maxHistory }

// Last returns the newest output.
func (c *Command) Last() (Output, bool) {
	if len(c.history) == 0 {
		return Output{}, false
	}
	return c.history[len(c.history)-1], true
}

// Previous returns the output before the newest one.
func (c *Command) Previous() (Output, bool) {
	if len(c.history) < 2 {
		return Output{}, false
	}
	return c.history[len(c.history)-2], true
}

// Changed reports whether the two newest outputs differ in text.
func (c *Command) Changed() bool {
	last, ok := c.Last()
	if !ok {
		return false
	}
	prev, ok := c.Previous()
	return ok && prev.Text != last.Text
}

// Snapshot captures the command for persistence.
func (c *Command) Snapshot() Snapshot {
	return Snapshot{
		Exec:     c.Exec,
		Interval: c.Interval,
		History:  append([]Output(nil), c.history...),
		State:    c.State,
		Display:  c.Display,
	}
}
