package command

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/pane"
)

// job is the goroutine side of a Command. It only ever talks to the UI
// through signals (in) and events (out).
type job struct {
	pane     pane.Key
	id       uint64
	line     string
	interval time.Duration
	paused   bool
	signals  <-chan signal
	events   chan<- Event
	executor Executor
	log      pslog.Logger
}

// run blocks until Stop is received or ctx is cancelled. The ticker keeps
// its cadence across natural ticks; ticks missed while a run is in flight
// are dropped rather than replayed.
func (j *job) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Debug("job started", "exec", j.line, "interval", j.interval, "paused", j.paused)
	for {
		var tick <-chan time.Time
		if !j.paused {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			j.log.Debug("job cancelled")
			return
		case sig := <-j.signals:
			switch sig.ctrl {
			case ControlStop:
				j.log.Info("job received stop")
				return
			case ControlPause:
				j.log.Info("job paused")
				j.paused = true
			case ControlResume:
				j.log.Info("job resumed")
				j.paused = false
				j.execute(ctx)
				ticker.Reset(j.interval)
			case ControlExecute:
				j.log.Debug("job ad-hoc execution")
				j.execute(ctx)
				ticker.Reset(j.interval)
			case ControlIntervalSet:
				j.interval = ClampInterval(sig.interval)
				ticker.Reset(j.interval)
				j.log.Info("job interval set", "interval", j.interval)
			default:
				j.log.Warn("job ignoring control", "control", sig.ctrl.String())
			}
		case <-tick:
			j.execute(ctx)
		}
	}
}

func (j *job) execute(ctx context.Context) {
	j.send(Event{Kind: EventStarted})
	out, err := j.executor.Run(ctx, j.line)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		j.log.Warn("command run failed", "exec", j.line, "err", err)
		j.send(Event{Kind: EventFailed, Err: err})
		return
	}
	if ctx.Err() != nil {
		j.log.Debug("job stopped during run, discarding output")
		return
	}
	j.log.Trace("command finished", "duration", out.Duration, "success", out.Success())
	j.send(Event{Kind: EventOutput, Output: out})
}

// send never blocks: a full channel drops the event.
func (j *job) send(ev Event) {
	ev.Pane = j.pane
	ev.Job = j.id
	select {
	case j.events <- ev:
	default:
		j.log.Warn("event channel full, dropping event", "kind", ev.Kind.String())
	}
}
