package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/panewatch/internal/pane"
)

func testKey() pane.Key {
	return pane.NewManager().Active()
}

// collect gathers events for d, or until n output events were seen when
// n > 0.
func collect(events <-chan Event, d time.Duration, n int) []Event {
	var got []Event
	outputs := 0
	deadline := time.After(d)
	for {
		select {
		case ev := <-events:
			got = append(got, ev)
			if ev.Kind == EventOutput {
				outputs++
				if n > 0 && outputs >= n {
					return got
				}
			}
		case <-deadline:
			return got
		}
	}
}

func outputsOf(events []Event) []Output {
	var outs []Output
	for _, ev := range events {
		if ev.Kind == EventOutput {
			outs = append(outs, ev.Output)
		}
	}
	return outs
}

func waitDone(t *testing.T, c *Command, d time.Duration) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(d):
		t.Fatalf("job did not exit within %v", d)
	}
}

func TestSpawnRunsOnInterval(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "echo hi", Options{Interval: time.Second}, events)
	defer c.Stop()

	got := collect(events, 1100*time.Millisecond, 0)
	outs := outputsOf(got)
	require.Len(t, outs, 1)
	require.Equal(t, "hi\n", outs[0].Text)
	require.NotNil(t, outs[0].ExitCode)
	require.Equal(t, 0, *outs[0].ExitCode)
	require.Equal(t, EventStarted, got[0].Kind)
}

func TestApplyEventStateTransitions(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "echo hi", Options{Interval: time.Hour}, events)
	defer c.Stop()

	require.NoError(t, c.Control(ControlExecute))
	started := collect(events, 2*time.Second, 1)
	require.NotEmpty(t, started)

	require.True(t, c.ApplyEvent(started[0]))
	require.Equal(t, StateExecuting, c.State)
	require.True(t, c.ApplyEvent(started[len(started)-1]))
	require.Equal(t, StateIdle, c.State)
	require.Len(t, c.History(), 1)

	require.False(t, c.ApplyEvent(Event{Job: c.JobID() + 1000, Kind: EventOutput}))
	require.Len(t, c.History(), 1)
}

func TestMaxHistoryKeepsNewest(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "date +%s%N", Options{Interval: time.Hour, MaxHistory: 2}, events)
	defer c.Stop()

	var all []Output
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Control(ControlExecute))
		for _, ev := range collect(events, 2*time.Second, 1) {
			c.ApplyEvent(ev)
			if ev.Kind == EventOutput {
				all = append(all, ev.Output)
			}
		}
	}
	require.Len(t, all, 3)
	require.Len(t, c.History(), 2)
	require.Equal(t, all[1:], c.History())
}

func TestPauseResumeRunsOnce(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "echo tick", Options{Interval: 300 * time.Millisecond}, events)
	defer c.Stop()

	require.NoError(t, c.Control(ControlPause))
	require.Equal(t, StatePaused, c.State)
	require.Empty(t, outputsOf(collect(events, 500*time.Millisecond, 0)))

	require.NoError(t, c.Control(ControlResume))
	require.Equal(t, StateIdle, c.State)
	require.Len(t, outputsOf(collect(events, 200*time.Millisecond, 0)), 1)
}

func TestExecuteWhilePausedKeepsPaused(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "echo x", Options{Interval: time.Hour}, events)
	defer c.Stop()

	require.NoError(t, c.Control(ControlPause))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, c.Control(ControlExecute))
	for _, ev := range collect(events, 2*time.Second, 1) {
		c.ApplyEvent(ev)
	}
	require.Equal(t, StatePaused, c.State)
	require.Len(t, c.History(), 1)
}

func TestStopIsIdempotent(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "echo hi", Options{Interval: time.Hour}, events)

	c.Stop()
	c.Stop()
	require.NoError(t, c.Control(ControlStop))
	require.Equal(t, StateStopped, c.State)
	waitDone(t, c, time.Second)
	require.ErrorIs(t, c.Control(ControlExecute), ErrJobStopped)
	require.ErrorIs(t, c.SetInterval(time.Second), ErrJobStopped)
}

func TestSoftStopDiscardsInFlightOutput(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "sleep 0.3; echo late", Options{Interval: time.Hour}, events)

	require.NoError(t, c.Control(ControlExecute))
	select {
	case ev := <-events:
		require.Equal(t, EventStarted, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("no started event")
	}
	c.Stop()
	waitDone(t, c, 2*time.Second)
	require.Empty(t, outputsOf(collect(events, 100*time.Millisecond, 0)))
}

func TestHardKillStopsInFlightRun(t *testing.T) {
	events := make(chan Event, EventBuffer)
	opts := Options{Interval: time.Hour, Executor: Executor{HardKill: true}}
	c := Spawn(context.Background(), testKey(), "sleep 5", opts, events)

	require.NoError(t, c.Control(ControlExecute))
	select {
	case ev := <-events:
		require.Equal(t, EventStarted, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("no started event")
	}
	c.Stop()
	waitDone(t, c, 3*time.Second)
	require.Empty(t, outputsOf(collect(events, 100*time.Millisecond, 0)))
}

func TestOutputTimestampsOrdered(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "echo t", Options{Interval: 100 * time.Millisecond}, events)
	defer c.Stop()

	outs := outputsOf(collect(events, 3*time.Second, 5))
	require.Len(t, outs, 5)
	for i := 1; i < len(outs); i++ {
		require.False(t, outs[i].Time.Before(outs[i-1].Time), "output %d precedes %d", i, i-1)
	}
}

func TestIntervalControlsUpdateLocalState(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "true", Options{Interval: 2 * time.Second}, events)
	defer c.Stop()

	require.NoError(t, c.Control(ControlIntervalIncrease))
	require.Equal(t, 3*time.Second, c.Interval)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Control(ControlIntervalDecrease))
	require.Equal(t, 2*time.Second, c.Interval)
}

func TestDroppedSignalLeavesRecordUnchanged(t *testing.T) {
	events := make(chan Event, EventBuffer)
	c := Spawn(context.Background(), testKey(), "sleep 0.5", Options{Interval: 2 * time.Second}, events)
	defer c.Stop()

	require.NoError(t, c.Control(ControlExecute))
	select {
	case ev := <-events:
		require.Equal(t, EventStarted, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("no started event")
	}

	// The job is busy running; pause fills the signal buffer.
	require.NoError(t, c.Control(ControlPause))
	require.Equal(t, StatePaused, c.State)

	require.ErrorIs(t, c.Control(ControlResume), ErrSignalDropped)
	require.Equal(t, StatePaused, c.State)
	require.ErrorIs(t, c.Control(ControlIntervalIncrease), ErrSignalDropped)
	require.Equal(t, 2*time.Second, c.Interval)
	require.ErrorIs(t, c.SetInterval(5*time.Second), ErrSignalDropped)
	require.Equal(t, 2*time.Second, c.Interval)

	// Once the run finishes the job drains pause and accepts resume.
	for _, ev := range collect(events, 2*time.Second, 1) {
		c.ApplyEvent(ev)
	}
	require.Eventually(t, func() bool {
		return c.Control(ControlResume) == nil
	}, 2*time.Second, 20*time.Millisecond)
	require.Equal(t, StateIdle, c.State)
	require.Len(t, outputsOf(collect(events, 2*time.Second, 1)), 1)
}

func TestSpawnFromSnapshot(t *testing.T) {
	code := 0
	history := []Output{
		{Text: "a", Time: time.Now().Add(-2 * time.Second), ExitCode: &code},
		{Text: "b", Time: time.Now().Add(-time.Second), ExitCode: &code},
		{Text: "c", Time: time.Now(), ExitCode: &code},
	}

	t.Run("paused starts without running", func(t *testing.T) {
		events := make(chan Event, EventBuffer)
		c := SpawnFromSnapshot(context.Background(), testKey(), Snapshot{
			Exec: "echo p", Interval: 100 * time.Millisecond, State: StatePaused, History: history,
		}, Options{MaxHistory: 2}, events)
		defer c.Stop()

		require.Equal(t, StatePaused, c.State)
		require.Len(t, c.History(), 2)
		require.Equal(t, "c", c.History()[1].Text)
		require.Empty(t, collect(events, 350*time.Millisecond, 0))
	})

	t.Run("executing comes back idle", func(t *testing.T) {
		events := make(chan Event, EventBuffer)
		c := SpawnFromSnapshot(context.Background(), testKey(), Snapshot{
			Exec: "true", Interval: time.Hour, State: StateExecuting,
		}, Options{}, events)
		defer c.Stop()
		require.Equal(t, StateIdle, c.State)
	})

	t.Run("stopped keeps history without a job", func(t *testing.T) {
		events := make(chan Event, EventBuffer)
		c := SpawnFromSnapshot(context.Background(), testKey(), Snapshot{
			Exec: "true", Interval: time.Second, State: StateStopped, History: history,
		}, Options{}, events)
		require.Equal(t, StateStopped, c.State)
		require.Len(t, c.History(), 3)
		waitDone(t, c, 10*time.Millisecond)
		c.Stop()
		require.ErrorIs(t, c.Control(ControlResume), ErrJobStopped)
	})
}

func TestChanged(t *testing.T) {
	code := 0
	c := &Command{maxHistory: 10}
	require.False(t, c.Changed())
	c.appendHistory(Output{Text: "x", ExitCode: &code})
	require.False(t, c.Changed())
	c.appendHistory(Output{Text: "x", ExitCode: &code})
	require.False(t, c.Changed())
	c.appendHistory(Output{Text: "y", ExitCode: &code})
	require.True(t, c.Changed())
	prev, ok := c.Previous()
	require.True(t, ok)
	require.Equal(t, "x", prev.Text)
}

func TestStateTokens(t *testing.T) {
	for _, s := range []State{StateIdle, StateExecuting, StatePaused, StateStopped} {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	parsed, err := ParseState("PAUSED")
	require.NoError(t, err)
	require.Equal(t, StatePaused, parsed)
	_, err = ParseState("running")
	require.Error(t, err)
	require.True(t, strings.HasPrefix(StateExecuting.Label(), "EXEC"))
}
