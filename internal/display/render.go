package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/theirongolddev/panewatch/internal/command"
)

const (
	timeLayout     = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
	tabWidth       = 4
)

// Styles holds the lipgloss styles applied to rendered output.
type Styles struct {
	Output    lipgloss.Style
	Failed    lipgloss.Style
	Timestamp lipgloss.Style
	Added     lipgloss.Style
	Removed   lipgloss.Style
	Unchanged lipgloss.Style
}

// DefaultStyles returns the styles used when no theme is supplied.
func DefaultStyles() Styles {
	return Styles{
		Output:    lipgloss.NewStyle(),
		Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Added:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Underline(true),
		Removed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true),
		Unchanged: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// PlainStyles returns unstyled styles.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Output: plain, Failed: plain, Timestamp: plain, Added: plain, Removed: plain, Unchanged: plain}
}

// Renderer renders pane bodies with a fixed set of styles.
type Renderer struct {
	Styles Styles
}

// NewRenderer returns a Renderer using styles.
func NewRenderer(styles Styles) *Renderer {
	return &Renderer{Styles: styles}
}

// Render renders history with DefaultStyles.
func Render(mode Mode, history []command.Output, width, height int, wrapLines bool) string {
	return NewRenderer(DefaultStyles()).Render(mode, history, width, height, wrapLines)
}

type segment struct {
	text  string
	style lipgloss.Style
}

type line []segment

// Render returns the body for a pane of the given size. Lines longer than
// width are wrapped when wrap is set and truncated otherwise; Wrapped mode
// always wraps. History modes keep the newest lines when clipping to height,
// the others keep the first lines. A width or height <= 0 is unbounded.
func (r *Renderer) Render(mode Mode, history []command.Output, width, height int, wrapLines bool) string {
	if len(history) == 0 {
		return ""
	}

	var lines []line
	switch {
	case mode.IsHistory():
		lines = r.historyLines(mode, history)
	case mode.IsDiff():
		cur := history[len(history)-1].Text
		prev := ""
		if len(history) > 1 {
			prev = history[len(history)-2].Text
		}
		lines = r.diffLines(mode, prev, cur)
	default:
		lines = r.textLines(history[len(history)-1])
	}

	if mode == Wrapped {
		wrapLines = true
	}
	out := layout(lines, width, wrapLines)
	out = clip(out, height, mode.IsHistory())
	return strings.Join(out, "\n")
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func (r *Renderer) outputStyle(o command.Output) lipgloss.Style {
	if o.ExitCode != nil && *o.ExitCode != 0 {
		return r.Styles.Failed
	}
	return r.Styles.Output
}

func (r *Renderer) textLines(o command.Output) []line {
	style := r.outputStyle(o)
	text := strings.TrimRight(sanitize(o.Text), "\n")
	var lines []line
	for _, s := range strings.Split(text, "\n") {
		lines = append(lines, line{{text: s, style: style}})
	}
	return lines
}

func (r *Renderer) historyLines(mode Mode, history []command.Output) []line {
	var lines []line
	for _, o := range history {
		var prefix string
		switch mode {
		case MultilineTime:
			prefix = "[" + o.Time.Format(timeLayout) + "] "
		case MultilineDateTime:
			prefix = "[" + o.Time.Format(dateTimeLayout) + "] "
		}
		entry := r.textLines(o)
		if prefix != "" {
			entry[0] = append(line{{text: prefix, style: r.Styles.Timestamp}}, entry[0]...)
		}
		lines = append(lines, entry...)
	}
	return lines
}

// layout renders lines to strings no wider than width.
func layout(lines []line, width int, wrapLines bool) []string {
	var out []string
	for _, l := range lines {
		switch {
		case width <= 0:
			out = append(out, l.render())
		case wrapLines:
			wrapped := wrap.String(wordwrap.String(l.render(), width), width)
			out = append(out, strings.Split(wrapped, "\n")...)
		default:
			out = append(out, l.truncate(width).render())
		}
	}
	return out
}

func (l line) render() string {
	var b strings.Builder
	for _, seg := range l {
		if seg.text == "" {
			continue
		}
		b.WriteString(seg.style.Render(seg.text))
	}
	return b.String()
}

// truncate cuts l to at most width terminal cells.
func (l line) truncate(width int) line {
	var out line
	used := 0
	for _, seg := range l {
		w := runewidth.StringWidth(seg.text)
		if used+w <= width {
			out = append(out, seg)
			used += w
			continue
		}
		out = append(out, segment{text: runewidth.Truncate(seg.text, width-used, ""), style: seg.style})
		break
	}
	return out
}

func clip(lines []string, height int, keepTail bool) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if keepTail {
		return lines[len(lines)-height:]
	}
	return lines[:height]
}
