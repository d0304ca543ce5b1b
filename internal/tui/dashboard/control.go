package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/command"
	"github.com/theirongolddev/panewatch/internal/pane"
)

// ControlQueueSize bounds pending app controls.
const ControlQueueSize = 10

// ControlKind tags an AppControl.
type ControlKind int

const (
	// SetCommand assigns Exec to Pane, replacing any running command.
	SetCommand ControlKind = iota
	// SendControl forwards Control to the command of Pane.
	SendControl
)

func (k ControlKind) String() string {
	if k == SetCommand {
		return "set-command"
	}
	return "send-control"
}

// AppControl is a request to the UI loop from outside a key handler.
type AppControl struct {
	Kind    ControlKind
	Pane    pane.Key
	Exec    string
	Control command.Control
}

// ControlQueue carries AppControls into the UI loop.
type ControlQueue struct {
	ch  chan AppControl
	log pslog.Logger
}

// NewControlQueue returns an empty queue.
func NewControlQueue(log pslog.Logger) *ControlQueue {
	return &ControlQueue{ch: make(chan AppControl, ControlQueueSize), log: log}
}

// Enqueue adds c without blocking. A full queue drops c and logs a warning.
func (q *ControlQueue) Enqueue(c AppControl) bool {
	select {
	case q.ch <- c:
		return true
	default:
		q.log.Warn("app control queue full, dropping control", "kind", c.Kind.String(), "pane", c.Pane.String())
		return false
	}
}

// Len returns the number of pending controls.
func (q *ControlQueue) Len() int { return len(q.ch) }

type controlMsg AppControl

func (q *ControlQueue) wait() tea.Cmd {
	return func() tea.Msg {
		return controlMsg(<-q.ch)
	}
}
