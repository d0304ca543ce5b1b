// Package components provides shared TUI building blocks.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/panewatch/internal/tui/layout"
)

// KeyHint represents a single keybinding hint (e.g., "↑/↓" → "navigate").
type KeyHint struct {
	Key  string // The key(s) to press, e.g., "↑/↓", "Enter", "q"
	Desc string // Brief description, e.g., "navigate", "select", "quit"
}

// HelpBarOptions configures HelpBar rendering.
type HelpBarOptions struct {
	Hints     []KeyHint // Key hints to display
	Width     int       // Available width (0 = unlimited)
	Separator string    // Separator between hints (default: "  ")
	KeyStyle  lipgloss.Style
	DescStyle lipgloss.Style
}

// RenderHelpBar renders a horizontal bar of key hints, respecting width constraints.
// Hints are progressively hidden from right-to-left if they don't fit, so
// the most important hints belong first.
func RenderHelpBar(opts HelpBarOptions) string {
	if len(opts.Hints) == 0 {
		return ""
	}

	sep := opts.Separator
	if sep == "" {
		sep = "  "
	}

	keyStyle := opts.KeyStyle
	if opts.Width > 0 && layout.TierForWidth(opts.Width) == layout.TierNarrow {
		keyStyle = keyStyle.Copy().UnsetPadding().UnsetBackground()
	}

	var rendered []string
	for _, h := range opts.Hints {
		rendered = append(rendered, keyStyle.Render(h.Key)+" "+opts.DescStyle.Render(h.Desc))
	}

	if opts.Width <= 0 {
		return strings.Join(rendered, sep)
	}

	sepWidth := lipgloss.Width(sep)
	for len(rendered) > 0 {
		total := 0
		for i, r := range rendered {
			total += lipgloss.Width(r)
			if i > 0 {
				total += sepWidth
			}
		}
		if total <= opts.Width {
			break
		}
		rendered = rendered[:len(rendered)-1]
	}

	return strings.Join(rendered, sep)
}

// HelpSection groups related key hints under a heading.
type HelpSection struct {
	Title string
	Hints []KeyHint
}

// Setting is a name/value row shown in the help overlay.
type Setting struct {
	Name  string
	Value string
}

// HelpMarkdown renders the help overlay as a markdown document: a settings
// table followed by one key table per section.
func HelpMarkdown(title string, settings []Setting, sections []HelpSection) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}

	if len(settings) > 0 {
		b.WriteString("## Settings\n\n| Setting | Value |\n|---|---|\n")
		for _, s := range settings {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(s.Name), escapeCell(s.Value))
		}
		b.WriteString("\n")
	}

	for _, section := range sections {
		if len(section.Hints) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n| Key | Action |\n|---|---|\n", section.Title)
		for _, h := range section.Hints {
			fmt.Fprintf(&b, "| `%s` | %s |\n", strings.ReplaceAll(h.Key, "`", "'"), escapeCell(h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString("_Press ? or Esc to close_\n")
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

const (
	meterFilled = "▮"
	meterEmpty  = "▯"
)

// HistoryMeter draws how full a bounded history is. Capacities above ten
// are scaled to ten cells.
func HistoryMeter(current, capacity int) string {
	if capacity <= 0 {
		return ""
	}
	if current > capacity {
		current = capacity
	}
	if current < 0 {
		current = 0
	}
	filled, cells := current, capacity
	if capacity > 10 {
		filled, cells = current*10/capacity, 10
	}
	return strings.Repeat(meterFilled, filled) + strings.Repeat(meterEmpty, cells-filled)
}
