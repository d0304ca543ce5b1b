package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/theirongolddev/panewatch/internal/command"
	"github.com/theirongolddev/panewatch/internal/display"
	"github.com/theirongolddev/panewatch/internal/pane"
	"github.com/theirongolddev/panewatch/internal/tui/components"
	"github.com/theirongolddev/panewatch/internal/tui/layout"
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	area := m.paneArea()
	var body string
	if m.mode == modeHelp {
		body = strings.Join(fitBlock(m.helpView, area.W, area.H), "\n")
	} else {
		body = m.renderPanes(area)
	}

	if m.cfg.Zen {
		return body
	}
	return body + "\n" + m.renderStatus()
}

// renderPanes draws every leaf into its rectangle and stitches the rows
// together left to right.
func (m Model) renderPanes(area pane.Rect) string {
	rects := m.panes.Bounds(area)
	leaves := m.panes.Leaves()

	blocks := make(map[pane.Key][]string, len(leaves))
	for _, k := range leaves {
		if r, ok := rects[k]; ok && r.W > 0 && r.H > 0 {
			blocks[k] = m.renderPane(k, r)
		}
	}

	type cell struct {
		x    int
		text string
	}
	rows := make([]string, area.H)
	for y := 0; y < area.H; y++ {
		var cells []cell
		for k, block := range blocks {
			r := rects[k]
			if y >= r.Y && y < r.Y+r.H {
				cells = append(cells, cell{x: r.X, text: block[y-r.Y]})
			}
		}
		sort.Slice(cells, func(i, j int) bool { return cells[i].x < cells[j].x })

		var b strings.Builder
		for _, c := range cells {
			b.WriteString(c.text)
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

// renderPane returns exactly r.H lines of r.W cells.
func (m Model) renderPane(k pane.Key, r pane.Rect) []string {
	active := k == m.panes.Active()
	c, _ := m.sched.Get(k)

	if m.cfg.Zen || r.W < 4 || r.H < 3 {
		return fitBlock(m.paneBody(c, r.W, r.H, active), r.W, r.H)
	}

	innerW, innerH := r.W-2, r.H-2
	border, edge := lipgloss.NormalBorder(), m.styles.Border
	if active {
		border, edge = lipgloss.ThickBorder(), m.styles.ActiveBorder
	}

	content := strings.Join(fitBlock(m.paneBody(c, innerW, innerH, active), innerW, innerH), "\n")
	boxed := lipgloss.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(edge.GetForeground()).
		Render(content)

	lines := make([]string, 0, r.H)
	lines = append(lines, m.titleBar(k, c, border, edge, r.W))
	lines = append(lines, strings.Split(boxed, "\n")...)
	return lines
}

// titleBar draws the top border with the pane id and command on the left
// and interval, state and history meter on the right. The right side is
// dropped when both do not fit.
func (m Model) titleBar(k pane.Key, c *command.Command, border lipgloss.Border, edge lipgloss.Style, width int) string {
	id, _ := m.panes.FriendlyID(k)
	avail := width - 2

	left := fmt.Sprintf(" %d ", id)
	if c != nil {
		left = fmt.Sprintf(" %d %s ", id, c.Exec)
	}

	type part struct {
		text  string
		style lipgloss.Style
	}
	var right []part
	if c != nil {
		right = append(right, part{formatInterval(c.Interval), m.styles.TitleLabel})
		right = append(right, part{c.State.Label(), m.stateStyle(c.State)})
		if md, _ := display.ParseMode(c.Display); md.IsDiff() {
			if prev, ok := c.Previous(); ok {
				last, _ := c.Last()
				right = append(right, part{fmt.Sprintf("%.0f%%", display.Similarity(prev.Text, last.Text)*100), m.styles.Dim})
			}
		}
		right = append(right, part{components.HistoryMeter(len(c.History()), c.MaxHistory()), m.styles.Meter})
	}

	rightWidth := 0
	for _, p := range right {
		rightWidth += lipgloss.Width(p.text) + 1
	}
	if rightWidth > 0 {
		rightWidth++
	}
	if lipgloss.Width(left)+rightWidth > avail {
		right, rightWidth = nil, 0
	}
	left = layout.Truncate(left, avail)
	fill := max(avail-lipgloss.Width(left)-rightWidth, 0)

	var b strings.Builder
	b.WriteString(edge.Render(border.TopLeft))
	b.WriteString(m.styles.Title.Render(left))
	b.WriteString(edge.Render(strings.Repeat(border.Top, fill)))
	if len(right) > 0 {
		b.WriteString(" ")
		for _, p := range right {
			b.WriteString(p.style.Render(p.text))
			b.WriteString(" ")
		}
	}
	b.WriteString(edge.Render(border.TopRight))
	return b.String()
}

func (m Model) stateStyle(s command.State) lipgloss.Style {
	switch s {
	case command.StateExecuting:
		return m.styles.StateExecuting
	case command.StatePaused:
		return m.styles.StatePaused
	case command.StateStopped:
		return m.styles.StateStopped
	default:
		return m.styles.StateIdle
	}
}

func formatInterval(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}

// paneBody is the content inside a pane's border. The active pane hosts
// open popups.
func (m Model) paneBody(c *command.Command, w, h int, active bool) string {
	if active && m.mode.popup() {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.renderPopup(w))
	}
	if c == nil {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.styles.Dim.Render("no command"))
	}
	if len(c.History()) == 0 {
		return m.styles.Dim.Render("waiting")
	}
	md, _ := display.ParseMode(c.Display)
	return m.renderer.Render(md, c.History(), w, h, m.cfg.Wrap)
}

func (m Model) renderPopup(w int) string {
	inner := max(min(w-4, 72), 1)

	var title string
	var lines []string
	switch m.mode {
	case modeEdit:
		title = "Command"
		in := m.input
		in.Width = max(inner-lipgloss.Width(in.Prompt)-1, 1)
		lines = append(lines, in.View())
		for i, s := range m.suggestions {
			lines = append(lines, m.listItem(s, i == m.selected, inner))
		}
	case modeSave:
		title = "Save session as"
		in := m.input
		in.Width = max(inner-lipgloss.Width(in.Prompt)-1, 1)
		lines = append(lines, in.View(), m.styles.Dim.Render(layout.Truncate("empty name saves with a timestamp", inner)))
	case modeDisplay:
		title = "Display"
		for i, md := range display.Modes() {
			lines = append(lines, m.listItem(md.Label(), i == m.selected, inner))
		}
	case modeLoad:
		title = "Load session"
		for i, s := range m.sessions {
			row := fmt.Sprintf("%s  %s  %d panes", s.Name, s.SavedAt.Local().Format("2006-01-02 15:04"), s.Panes)
			lines = append(lines, m.listItem(row, i == m.selected, inner))
		}
	}

	content := m.styles.PopupTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	return m.styles.Popup.Render(content)
}

func (m Model) listItem(text string, selected bool, width int) string {
	text = layout.Truncate(text, max(width-2, 1))
	if selected {
		return m.styles.ListSelected.Render(text)
	}
	return m.styles.ListItem.Render(text)
}

// renderHelp renders the key reference through glamour, falling back to
// the raw markdown.
func (m Model) renderHelp() string {
	md := components.HelpMarkdown("panewatch", m.helpSettings(), m.keys.HelpSections())
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(max(m.width-4, 20)),
	)
	if err != nil {
		m.log.Warn("help renderer unavailable", "err", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		m.log.Warn("help render failed", "err", err)
		return md
	}
	return strings.Trim(out, "\n")
}

func (m Model) helpSettings() []components.Setting {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	settings := []components.Setting{
		{Name: "Interval", Value: formatInterval(m.cfg.IntervalDuration())},
		{Name: "Max history", Value: fmt.Sprint(m.cfg.MaxHistory)},
		{Name: "Display", Value: m.cfg.Display},
		{Name: "Shell", Value: m.cfg.Shell},
		{Name: "Beep", Value: onOff(m.cfg.Beep)},
		{Name: "Exit on error", Value: onOff(m.cfg.ErrExit)},
		{Name: "Exit on change", Value: onOff(m.cfg.ChgExit)},
		{Name: "Wrap", Value: onOff(m.cfg.Wrap)},
		{Name: "Sessions", Value: m.store.Dir},
	}
	if m.sessionName != "" {
		settings = append(settings, components.Setting{Name: "Session", Value: m.sessionName})
	}
	return settings
}

// renderStatus is the bottom line: the last message or error, then as
// many key hints as fit.
func (m Model) renderStatus() string {
	var left string
	switch {
	case m.err != nil:
		left = m.styles.Error.Render(layout.Truncate(m.err.Error(), m.width))
	case m.message != "":
		left = m.styles.Message.Render(layout.Truncate(m.message, m.width))
	}

	room := m.width - lipgloss.Width(left)
	if left != "" {
		room -= 2
	}
	bar := components.RenderHelpBar(components.HelpBarOptions{
		Hints:     m.modeHints(),
		Width:     room,
		KeyStyle:  m.styles.Title,
		DescStyle: m.styles.Dim,
	})

	line := left
	if left != "" && bar != "" {
		line += "  "
	}
	line += bar
	return m.styles.StatusBar.Width(m.width).MaxWidth(m.width).Render(line)
}

func (m Model) modeHints() []components.KeyHint {
	k := m.keys
	switch m.mode {
	case modeEdit:
		return []components.KeyHint{hint(k.Confirm), hint(k.Escape), hint(k.Complete), {Key: "↑/↓", Desc: "suggestion"}}
	case modeSave:
		return []components.KeyHint{hint(k.Confirm), hint(k.Escape)}
	case modeDisplay, modeLoad:
		return []components.KeyHint{hint(k.Confirm), hint(k.Escape), {Key: "↑/↓", Desc: "select"}}
	case modeHelp:
		return []components.KeyHint{hint(k.Escape), hint(k.Quit)}
	default:
		return k.ShortHints()
	}
}

// fitBlock cuts or pads s to exactly h lines of w cells.
func fitBlock(s string, w, h int) []string {
	if h <= 0 {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make([]string, h)
	for i := range out {
		var l string
		if i < len(lines) {
			l = truncate.String(lines[i], uint(max(w, 0)))
		}
		if pad := w - lipgloss.Width(l); pad > 0 {
			l += strings.Repeat(" ", pad)
		}
		out[i] = l
	}
	return out
}
