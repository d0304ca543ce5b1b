package components

import (
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestRenderHelpBar(t *testing.T) {
	hints := []KeyHint{
		{Key: "q", Desc: "quit"},
		{Key: "?", Desc: "help"},
		{Key: "tab", Desc: "cycle"},
	}

	t.Run("unlimited width", func(t *testing.T) {
		got := RenderHelpBar(HelpBarOptions{Hints: hints})
		if got != "q quit  ? help  tab cycle" {
			t.Errorf("RenderHelpBar = %q", got)
		}
	})

	t.Run("drops hints from the right", func(t *testing.T) {
		got := RenderHelpBar(HelpBarOptions{Hints: hints, Width: 14})
		if got != "q quit  ? help" {
			t.Errorf("RenderHelpBar = %q", got)
		}
	})

	t.Run("custom separator", func(t *testing.T) {
		got := RenderHelpBar(HelpBarOptions{Hints: hints[:2], Separator: " | "})
		if got != "q quit | ? help" {
			t.Errorf("RenderHelpBar = %q", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := RenderHelpBar(HelpBarOptions{}); got != "" {
			t.Errorf("RenderHelpBar = %q, want empty", got)
		}
	})
}

func TestHelpMarkdown(t *testing.T) {
	md := HelpMarkdown("Help",
		[]Setting{{Name: "Interval", Value: "5s"}},
		[]HelpSection{
			{Title: "Panes", Hints: []KeyHint{{Key: "h", Desc: "split | stacked"}}},
			{Title: "Empty"},
		})

	for _, want := range []string{"# Help", "| Interval | 5s |", "## Panes", "| `h` | split \\| stacked |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Empty") {
		t.Error("sections without hints should be skipped")
	}
}

func TestHistoryMeter(t *testing.T) {
	tests := []struct {
		current, capacity int
		want              string
	}{
		{3, 5, "▮▮▮▯▯"},
		{20, 100, "▮▮▯▯▯▯▯▯▯▯"},
		{10, 10, "▮▮▮▮▮▮▮▮▮▮"},
		{12, 10, "▮▮▮▮▮▮▮▮▮▮"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		if got := HistoryMeter(tt.current, tt.capacity); got != tt.want {
			t.Errorf("HistoryMeter(%d, %d) = %q, want %q", tt.current, tt.capacity, got, tt.want)
		}
	}

	got := HistoryMeter(7, 15)
	if utf8.RuneCountInString(got) != 10 || !strings.HasPrefix(got, "▮▮▮▮") {
		t.Errorf("HistoryMeter(7, 15) = %q", got)
	}
}
