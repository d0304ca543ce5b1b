// Package dashboard is the interactive pane dashboard: it owns the pane
// tree and the commands of its panes, and multiplexes key presses, job
// events, app controls and config reloads in one bubbletea loop.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/command"
	"github.com/theirongolddev/panewatch/internal/config"
	"github.com/theirongolddev/panewatch/internal/display"
	"github.com/theirongolddev/panewatch/internal/pane"
	"github.com/theirongolddev/panewatch/internal/session"
	"github.com/theirongolddev/panewatch/internal/shellhistory"
	"github.com/theirongolddev/panewatch/internal/tui/theme"
)

// RedrawInterval is how often the dashboard repaints regardless of input.
const RedrawInterval = 250 * time.Millisecond

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeDisplay
	modeSave
	modeLoad
	modeHelp
)

func (m mode) popup() bool {
	return m == modeEdit || m == modeDisplay || m == modeSave || m == modeLoad
}

type tickMsg time.Time

type jobEventMsg command.Event

type reloadMsg struct{ cfg *config.Config }

// Options configures New.
type Options struct {
	Config  *config.Config
	Store   *session.Store
	History *shellhistory.History
	Theme   theme.Theme

	// Command is assigned to the root pane on start.
	Command string
	// Session names a saved session to load on start. Latest loads the
	// newest one instead.
	Session string
	Latest  bool

	// Reloads delivers configs re-read from disk.
	Reloads <-chan *config.Config
	// Bell receives "\a" when beep is enabled and a run fails.
	Bell io.Writer

	// Initial terminal size, until the first WindowSizeMsg.
	Width, Height int
}

// Model is the dashboard state.
type Model struct {
	log      pslog.Logger
	cfg      *config.Config
	keys     KeyMap
	panes    *pane.Manager
	sched    *command.Scheduler
	store    *session.Store
	history  *shellhistory.History
	renderer *display.Renderer
	theme    theme.Theme
	styles   theme.Styles
	controls *ControlQueue
	reloads  <-chan *config.Config
	bell     io.Writer

	mode        mode
	input       textinput.Model
	suggestions []string
	selected    int
	sessions    []session.SavedSession
	sessionName string
	helpView    string

	width    int
	height   int
	message  string
	err      error
	quitting bool

	exitCode   int
	exitReason string
}

// New builds a dashboard. Jobs run under ctx and log through its logger.
func New(ctx context.Context, opts Options) (Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := pslog.Ctx(ctx)

	keys, err := NewKeyMap(cfg.Keys)
	if err != nil {
		return Model{}, fmt.Errorf("invalid key bindings: %w", err)
	}
	if _, err := display.ParseMode(cfg.Display); err != nil {
		return Model{}, err
	}

	store := opts.Store
	if store == nil {
		store = session.NewStore(cfg.SessionsDir)
	}
	history := opts.History
	if history == nil {
		history = shellhistory.New(nil)
	}
	t := opts.Theme
	if t.Name == "" {
		t = theme.Current()
	}
	styles := theme.NewStyles(t)

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 4096
	input.PromptStyle = styles.PopupTitle
	input.Cursor.SetMode(cursor.CursorStatic)

	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 80, 24
	}

	m := Model{
		log:      log,
		cfg:      cfg,
		keys:     keys,
		panes:    pane.NewManager(),
		sched:    command.NewScheduler(ctx, schedulerOptions(cfg)),
		store:    store,
		history:  history,
		renderer: display.NewRenderer(styles.Display),
		theme:    t,
		styles:   styles,
		controls: NewControlQueue(log),
		reloads:  opts.Reloads,
		bell:     opts.Bell,
		input:    input,
		selected: -1,
		width:    width,
		height:   height,
	}

	switch {
	case opts.Session != "":
		st, err := store.Load(opts.Session)
		if err != nil {
			return Model{}, err
		}
		if err := m.loadSession(st); err != nil {
			return Model{}, err
		}
	case opts.Latest:
		st, err := store.Latest()
		if err != nil {
			return Model{}, err
		}
		if err := m.loadSession(st); err != nil {
			return Model{}, err
		}
	}

	if line := strings.TrimSpace(opts.Command); line != "" {
		m.controls.Enqueue(AppControl{Kind: SetCommand, Pane: m.panes.Active(), Exec: line})
	}
	return m, nil
}

func schedulerOptions(cfg *config.Config) command.Options {
	return command.Options{
		Interval:   cfg.IntervalDuration(),
		MaxHistory: cfg.MaxHistory,
		Display:    cfg.Display,
		Executor:   command.Executor{Shell: cfg.Shell, HardKill: cfg.HardKill},
	}
}

// Controls returns the queue feeding AppControls into the loop.
func (m Model) Controls() *ControlQueue { return m.controls }

// ExitCode is the process status the dashboard asked to exit with.
func (m Model) ExitCode() int { return m.exitCode }

// ExitReason explains an automatic exit (err_exit, chg_exit).
func (m Model) ExitReason() string { return m.exitReason }

// Close stops every command. It is safe to call after a quit.
func (m Model) Close() { m.sched.StopAll() }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tick(),
		waitForEvent(m.sched.Events()),
		m.controls.wait(),
		waitForReload(m.reloads),
	)
}

func tick() tea.Cmd {
	return tea.Tick(RedrawInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(events <-chan command.Event) tea.Cmd {
	return func() tea.Msg {
		return jobEventMsg(<-events)
	}
}

func waitForReload(reloads <-chan *config.Config) tea.Cmd {
	if reloads == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-reloads
		if !ok {
			return reloadMsg{}
		}
		return reloadMsg{cfg: cfg}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.mode == modeHelp {
			m.helpView = m.renderHelp()
		}
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()

	case jobEventMsg:
		m, cmd := m.handleEvent(command.Event(msg))
		if m.quitting {
			return m, cmd
		}
		return m, tea.Batch(cmd, waitForEvent(m.sched.Events()))

	case controlMsg:
		m.applyControl(AppControl(msg))
		return m, m.controls.wait()

	case reloadMsg:
		if msg.cfg == nil {
			return m, nil
		}
		m.applyConfig(msg.cfg)
		return m, waitForReload(m.reloads)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit(0, "")
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeSave:
			return m.updateSave(msg)
		case modeDisplay:
			return m.updateDisplay(msg)
		case modeLoad:
			return m.updateLoad(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message, m.err = "", nil
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return m.quit(0, "")

	case key.Matches(msg, k.Help):
		m.mode = modeHelp
		m.helpView = m.renderHelp()

	case key.Matches(msg, k.Edit):
		line := ""
		if c, ok := m.sched.Get(m.panes.Active()); ok {
			line = c.Exec
		}
		m.openInput(modeEdit, line)
		m.refreshSuggestions()

	case key.Matches(msg, k.DisplaySelect):
		c, ok := m.sched.Get(m.panes.Active())
		if !ok {
			m.message = "no command in this pane"
			break
		}
		current, _ := display.ParseMode(c.Display)
		m.mode = modeDisplay
		m.selected = int(current)

	case key.Matches(msg, k.LoadMenu):
		sessions, err := m.store.List()
		if err != nil {
			m.setError(err)
			break
		}
		if len(sessions) == 0 {
			m.message = "no saved sessions"
			break
		}
		m.sessions = sessions
		m.mode = modeLoad
		m.selected = 0

	case key.Matches(msg, k.SaveAs):
		m.openInput(modeSave, m.sessionName)

	case key.Matches(msg, k.Save):
		m.saveSession(m.sessionName)

	case key.Matches(msg, k.LoadLatest):
		st, err := m.store.Latest()
		if err != nil {
			m.setError(err)
			break
		}
		if err := m.loadSession(st); err != nil {
			m.setError(err)
		}

	case key.Matches(msg, k.Cycle):
		m.panes.Cycle()

	case key.Matches(msg, k.Up):
		m.panes.Navigate(pane.Up, m.paneArea())
	case key.Matches(msg, k.Down):
		m.panes.Navigate(pane.Down, m.paneArea())
	case key.Matches(msg, k.Left):
		m.panes.Navigate(pane.Left, m.paneArea())
	case key.Matches(msg, k.Right):
		m.panes.Navigate(pane.Right, m.paneArea())

	case key.Matches(msg, k.SplitHorizontal):
		m.split(pane.Horizontal)
	case key.Matches(msg, k.SplitVertical):
		m.split(pane.Vertical)

	case key.Matches(msg, k.Kill):
		old, ok := m.panes.Kill()
		if !ok {
			m.message = "cannot close the last pane"
			break
		}
		m.sched.Remove(old)
		m.log.Debug("pane killed", "pane", old.String(), "tree", m.panes.String())

	case key.Matches(msg, k.ShrinkWidth):
		m.panes.Resize(pane.Left, -1)
	case key.Matches(msg, k.GrowWidth):
		m.panes.Resize(pane.Right, 1)
	case key.Matches(msg, k.ShrinkHeight):
		m.panes.Resize(pane.Up, -1)
	case key.Matches(msg, k.GrowHeight):
		m.panes.Resize(pane.Down, 1)

	case key.Matches(msg, k.Pause):
		m.control(command.ControlPause)
	case key.Matches(msg, k.Resume):
		m.control(command.ControlResume)
	case key.Matches(msg, k.Execute):
		m.control(command.ControlExecute)
	case key.Matches(msg, k.IntervalIncrease):
		m.control(command.ControlIntervalIncrease)
	case key.Matches(msg, k.IntervalDecrease):
		m.control(command.ControlIntervalDecrease)
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Escape):
		m.closeInput()

	case key.Matches(msg, k.Confirm):
		line := m.input.Value()
		if m.selected >= 0 && m.selected < len(m.suggestions) {
			line = m.suggestions[m.selected]
		}
		line = strings.TrimSpace(line)
		m.closeInput()
		if line == "" {
			m.message = "command unchanged"
			break
		}
		key := m.panes.Active()
		m.sched.Set(key, line)
		m.log.Info("command set", "pane", key.String(), "exec", line)

	case key.Matches(msg, k.Complete):
		if len(m.suggestions) == 0 {
			break
		}
		pick := m.suggestions[max(m.selected, 0)]
		m.input.SetValue(pick)
		m.input.CursorEnd()
		m.refreshSuggestions()

	case key.Matches(msg, k.Up):
		m.selected = max(m.selected-1, -1)
	case key.Matches(msg, k.Down):
		m.selected = min(m.selected+1, len(m.suggestions)-1)

	default:
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.refreshSuggestions()
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSave(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeInput()
	case key.Matches(msg, m.keys.Confirm):
		name := strings.TrimSpace(m.input.Value())
		m.closeInput()
		m.saveSession(name)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateDisplay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modes := display.Modes()
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Up):
		m.selected = max(m.selected-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.selected = min(m.selected+1, len(modes)-1)
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeNormal
		c, ok := m.sched.Get(m.panes.Active())
		if !ok || m.selected < 0 || m.selected >= len(modes) {
			break
		}
		c.Display = modes[m.selected].String()
		m.message = "display: " + modes[m.selected].Label()
	}
	return m, nil
}

func (m Model) updateLoad(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Up):
		m.selected = max(m.selected-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.selected = min(m.selected+1, len(m.sessions)-1)
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeNormal
		if m.selected < 0 || m.selected >= len(m.sessions) {
			break
		}
		st, err := m.store.Load(m.sessions[m.selected].Name)
		if err != nil {
			m.setError(err)
			break
		}
		if err := m.loadSession(st); err != nil {
			m.setError(err)
		}
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit(0, "")
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help):
		m.mode = modeNormal
		m.helpView = ""
	}
	return m, nil
}

func (m *Model) openInput(md mode, value string) {
	m.mode = md
	m.selected = -1
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
	m.suggestions = nil
	m.selected = -1
}

func (m *Model) refreshSuggestions() {
	m.suggestions = m.history.Filter(m.input.Value())
	m.selected = -1
}

func (m *Model) split(o pane.Orientation) {
	key, ok := m.panes.Split(o)
	if !ok {
		return
	}
	m.log.Debug("pane split", "pane", key.String(), "orientation", o.String(), "tree", m.panes.String())
}

func (m *Model) control(ctrl command.Control) {
	key := m.panes.Active()
	err := m.sched.Control(key, ctrl)
	switch {
	case err == nil:
	case errors.Is(err, command.ErrUnknownPane):
		m.message = "no command in this pane"
	default:
		m.setError(err)
	}
}

func (m *Model) setError(err error) {
	m.err = err
	m.log.Warn("dashboard error", "err", err)
}

// handleEvent applies a job event and enforces beep, err_exit and chg_exit.
func (m Model) handleEvent(ev command.Event) (Model, tea.Cmd) {
	c := m.sched.Apply(ev)
	if c == nil {
		return m, nil
	}

	switch ev.Kind {
	case command.EventFailed:
		id, _ := m.panes.FriendlyID(ev.Pane)
		m.setError(fmt.Errorf("pane %d: %w", id, ev.Err))

	case command.EventOutput:
		out := ev.Output
		if !out.Success() {
			if m.cfg.Beep && m.bell != nil {
				_, _ = io.WriteString(m.bell, "\a")
			}
			if m.cfg.ErrExit {
				model, cmd := m.quit(1, fmt.Sprintf("%q exited with %s", c.Exec, exitStatus(out)))
				return model.(Model), cmd
			}
		}
		if m.cfg.ChgExit && c.Changed() {
			model, cmd := m.quit(0, fmt.Sprintf("output of %q changed", c.Exec))
			return model.(Model), cmd
		}
	}
	return m, nil
}

func exitStatus(out command.Output) string {
	if out.ExitCode == nil {
		return "no exit status"
	}
	return fmt.Sprintf("status %d", *out.ExitCode)
}

func (m *Model) applyControl(c AppControl) {
	n, ok := m.panes.Node(c.Pane)
	if !ok || !n.IsLeaf() {
		m.log.Warn("app control for unknown pane", "kind", c.Kind.String(), "pane", c.Pane.String())
		return
	}
	switch c.Kind {
	case SetCommand:
		m.sched.Set(c.Pane, c.Exec)
		m.log.Info("command set", "pane", c.Pane.String(), "exec", c.Exec)
	case SendControl:
		if err := m.sched.Control(c.Pane, c.Control); err != nil {
			m.log.Warn("app control failed", "pane", c.Pane.String(), "control", c.Control.String(), "err", err)
		}
	}
}

// applyConfig adopts a reloaded config. Running commands keep their
// intervals; only commands spawned afterwards see the new defaults.
func (m *Model) applyConfig(cfg *config.Config) {
	keys, err := NewKeyMap(cfg.Keys)
	if err != nil {
		m.setError(fmt.Errorf("config reload rejected: %w", err))
		return
	}
	m.keys = keys
	m.cfg = cfg
	m.sched.SetOptions(schedulerOptions(cfg))
	m.message = "config reloaded"
	m.log.Info("config reloaded", "path", cfg.Path)
}

func (m *Model) saveSession(name string) {
	st := session.Capture(name, m.panes, m.sched.Snapshot())
	path, err := m.store.Save(st, name)
	if err != nil {
		m.setError(err)
		return
	}
	m.sessionName = st.Name
	m.message = "saved " + st.Name
	m.log.Info("session saved", "name", st.Name, "path", path)
}

// loadSession replaces the tree and commands with st. Live state is
// untouched when st does not validate.
func (m *Model) loadSession(st *session.SessionState) error {
	restored, err := st.Restore()
	if err != nil {
		return err
	}
	m.sched.Restore(restored.Commands)
	m.panes = restored.Panes
	for key := range restored.Commands {
		c, ok := m.sched.Get(key)
		if !ok || c.State != command.StateIdle {
			continue
		}
		if err := c.Control(command.ControlExecute); err != nil {
			m.log.Warn("initial execute not queued", "pane", key.String(), "err", err)
		}
	}
	m.sessionName = st.Name
	m.message = "loaded " + st.Name
	m.log.Info("session loaded", "name", st.Name, "panes", len(m.panes.Leaves()), "commands", len(restored.Commands))
	return nil
}

func (m Model) quit(code int, reason string) (tea.Model, tea.Cmd) {
	m.quitting = true
	m.exitCode = code
	m.exitReason = reason
	m.sched.StopAll()
	m.log.Info("dashboard quitting", "code", code, "reason", reason)
	return m, tea.Quit
}

// paneArea is the screen region tiled by panes.
func (m Model) paneArea() pane.Rect {
	h := m.height
	if !m.cfg.Zen {
		h--
	}
	return pane.Rect{W: max(m.width, 1), H: max(h, 1)}
}
