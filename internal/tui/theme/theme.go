// Package theme holds the dashboard color palettes and the styles built from them.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/panewatch/internal/display"
)

// Theme defines a complete color palette for the TUI
type Theme struct {
	Name string

	// Base colors
	Base     lipgloss.Color
	Surface0 lipgloss.Color
	Surface1 lipgloss.Color
	Surface2 lipgloss.Color

	// Text colors
	Text    lipgloss.Color
	Subtext lipgloss.Color
	Overlay lipgloss.Color

	// Accents
	Red    lipgloss.Color
	Peach  lipgloss.Color
	Yellow lipgloss.Color
	Green  lipgloss.Color
	Sky    lipgloss.Color
	Blue   lipgloss.Color
	Mauve  lipgloss.Color

	// Diff backgrounds
	AddedBg   lipgloss.Color
	RemovedBg lipgloss.Color
}

// Catppuccin Mocha - the default dark theme
var CatppuccinMocha = Theme{
	Name:      "mocha",
	Base:      lipgloss.Color("#1e1e2e"),
	Surface0:  lipgloss.Color("#313244"),
	Surface1:  lipgloss.Color("#45475a"),
	Surface2:  lipgloss.Color("#585b70"),
	Text:      lipgloss.Color("#cdd6f4"),
	Subtext:   lipgloss.Color("#a6adc8"),
	Overlay:   lipgloss.Color("#6c7086"),
	Red:       lipgloss.Color("#f38ba8"),
	Peach:     lipgloss.Color("#fab387"),
	Yellow:    lipgloss.Color("#f9e2af"),
	Green:     lipgloss.Color("#a6e3a1"),
	Sky:       lipgloss.Color("#89dceb"),
	Blue:      lipgloss.Color("#89b4fa"),
	Mauve:     lipgloss.Color("#cba6f7"),
	AddedBg:   lipgloss.Color("#2b3b2c"),
	RemovedBg: lipgloss.Color("#3b2630"),
}

// Catppuccin Latte - light theme for light terminals
var CatppuccinLatte = Theme{
	Name:      "latte",
	Base:      lipgloss.Color("#eff1f5"),
	Surface0:  lipgloss.Color("#ccd0da"),
	Surface1:  lipgloss.Color("#bcc0cc"),
	Surface2:  lipgloss.Color("#acb0be"),
	Text:      lipgloss.Color("#4c4f69"),
	Subtext:   lipgloss.Color("#6c6f85"),
	Overlay:   lipgloss.Color("#7c7f93"),
	Red:       lipgloss.Color("#d20f39"),
	Peach:     lipgloss.Color("#fe640b"),
	Yellow:    lipgloss.Color("#df8e1d"),
	Green:     lipgloss.Color("#40a02b"),
	Sky:       lipgloss.Color("#04a5e5"),
	Blue:      lipgloss.Color("#1e66f5"),
	Mauve:     lipgloss.Color("#8839ef"),
	AddedBg:   lipgloss.Color("#d5f0d0"),
	RemovedBg: lipgloss.Color("#f5d0d8"),
}

// Nord - popular arctic theme
var Nord = Theme{
	Name:      "nord",
	Base:      lipgloss.Color("#2e3440"),
	Surface0:  lipgloss.Color("#3b4252"),
	Surface1:  lipgloss.Color("#434c5e"),
	Surface2:  lipgloss.Color("#4c566a"),
	Text:      lipgloss.Color("#eceff4"),
	Subtext:   lipgloss.Color("#d8dee9"),
	Overlay:   lipgloss.Color("#7b88a1"),
	Red:       lipgloss.Color("#bf616a"),
	Peach:     lipgloss.Color("#d08770"),
	Yellow:    lipgloss.Color("#ebcb8b"),
	Green:     lipgloss.Color("#a3be8c"),
	Sky:       lipgloss.Color("#88c0d0"),
	Blue:      lipgloss.Color("#5e81ac"),
	Mauve:     lipgloss.Color("#b48ead"),
	AddedBg:   lipgloss.Color("#3b4a3c"),
	RemovedBg: lipgloss.Color("#4a3b40"),
}

// Plain is a no-color theme that uses the terminal defaults.
// Used when NO_COLOR is set.
var Plain = Theme{Name: "plain"}

// NoColorEnabled returns true if color output should be disabled.
// PANEWATCH_NO_COLOR wins over the NO_COLOR convention in both directions.
func NoColorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PANEWATCH_NO_COLOR"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	_, noColorSet := os.LookupEnv("NO_COLOR")
	return noColorSet
}

// FromName returns a theme by name
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "nord":
		return Nord
	case "latte", "light":
		return CatppuccinLatte
	case "mocha", "dark":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

// Current returns the theme named by PANEWATCH_THEME, detecting the
// terminal background when unset.
func Current() Theme {
	return FromName(os.Getenv("PANEWATCH_THEME"))
}

// detectDarkBackground inspects the terminal to determine if a dark background is in use.
// It is a variable for tests.
var detectDarkBackground = func() bool {
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

var resetAutoTheme = func() {
	autoThemeOnce = sync.Once{}
	cachedAutoTheme = Theme{}
}

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha

		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()

		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}

// IsDark reports whether t is meant for a dark background.
func (t Theme) IsDark() bool {
	return t.Name != CatppuccinLatte.Name
}

// GlamourStyle names the glamour standard style matching t.
func (t Theme) GlamourStyle() string {
	switch {
	case t.Name == Plain.Name:
		return "notty"
	case t.IsDark():
		return "dark"
	default:
		return "light"
	}
}

// Styles contains pre-built lipgloss styles for the theme
type Styles struct {
	Border       lipgloss.Style
	ActiveBorder lipgloss.Style
	Title        lipgloss.Style
	TitleLabel   lipgloss.Style
	Dim          lipgloss.Style
	Meter        lipgloss.Style

	StateIdle      lipgloss.Style
	StateExecuting lipgloss.Style
	StatePaused    lipgloss.Style
	StateStopped   lipgloss.Style

	StatusBar lipgloss.Style
	Message   lipgloss.Style
	Error     lipgloss.Style

	Popup        lipgloss.Style
	PopupTitle   lipgloss.Style
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	Display display.Styles
}

// NewStyles creates a Styles instance from a theme
func NewStyles(t Theme) Styles {
	styles := Styles{
		Border: lipgloss.NewStyle().
			Foreground(t.Surface2),

		ActiveBorder: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Green),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Blue),

		TitleLabel: lipgloss.NewStyle().
			Foreground(t.Subtext),

		Dim: lipgloss.NewStyle().
			Foreground(t.Overlay),

		Meter: lipgloss.NewStyle().
			Foreground(t.Mauve),

		StateIdle:      lipgloss.NewStyle().Bold(true).Foreground(t.Blue),
		StateExecuting: lipgloss.NewStyle().Bold(true).Foreground(t.Yellow),
		StatePaused:    lipgloss.NewStyle().Bold(true).Foreground(t.Peach),
		StateStopped:   lipgloss.NewStyle().Bold(true).Foreground(t.Red),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.Subtext).
			Background(t.Surface0),

		Message: lipgloss.NewStyle().
			Foreground(t.Green),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Red),

		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Surface2).
			Padding(0, 1),

		PopupTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Mauve),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Text).
			Padding(0, 1),

		ListSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Base).
			Background(t.Blue).
			Padding(0, 1),

		Display: display.Styles{
			Output:    lipgloss.NewStyle().Foreground(t.Text),
			Failed:    lipgloss.NewStyle().Foreground(t.Red),
			Timestamp: lipgloss.NewStyle().Foreground(t.Overlay),
			Added:     lipgloss.NewStyle().Foreground(t.Green).Background(t.AddedBg).Underline(true),
			Removed:   lipgloss.NewStyle().Foreground(t.Red).Background(t.RemovedBg).Strikethrough(true),
			Unchanged: lipgloss.NewStyle().Foreground(t.Overlay),
		},
	}

	// Without color, selection and diffs must still be visible.
	if t.Name == Plain.Name {
		styles.ListSelected = lipgloss.NewStyle().
			Bold(true).
			Reverse(true).
			Padding(0, 1)
		plain := lipgloss.NewStyle()
		styles.Display = display.Styles{
			Output:    plain,
			Failed:    plain.Copy().Bold(true),
			Timestamp: plain,
			Added:     plain.Copy().Underline(true),
			Removed:   plain.Copy().Strikethrough(true),
			Unchanged: plain,
		}
	}

	return styles
}
