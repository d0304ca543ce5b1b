package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/theirongolddev/panewatch/internal/tui/components"
)

// KeyMap defines dashboard keybindings. Each binding has an action name
// that the [keys] table of the config file can rebind.
type KeyMap struct {
	Confirm       key.Binding
	Escape        key.Binding
	Cycle         key.Binding
	Complete      key.Binding
	Edit          key.Binding
	DisplaySelect key.Binding
	LoadMenu      key.Binding
	SaveAs        key.Binding
	Save          key.Binding
	LoadLatest    key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	SplitHorizontal key.Binding
	SplitVertical   key.Binding
	Kill            key.Binding
	ShrinkWidth     key.Binding
	GrowWidth       key.Binding
	ShrinkHeight    key.Binding
	GrowHeight      key.Binding

	Pause            key.Binding
	Resume           key.Binding
	Execute          key.Binding
	IntervalIncrease key.Binding
	IntervalDecrease key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Escape:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Cycle:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Complete:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete suggestion")),
		Edit:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "edit command")),
		DisplaySelect: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "display mode")),
		LoadMenu:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "load session")),
		SaveAs:        key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "save session as")),
		Save:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save session")),
		LoadLatest:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load latest session")),

		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "move up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "move down")),
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "move left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "move right")),

		SplitHorizontal: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "split stacked")),
		SplitVertical:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "split side by side")),
		Kill:            key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "kill pane")),
		ShrinkWidth:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower")),
		GrowWidth:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "wider")),
		ShrinkHeight:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "shorter")),
		GrowHeight:      key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "taller")),

		Pause:            key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:           key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Execute:          key.NewBinding(key.WithKeys("e", " "), key.WithHelp("e", "run now")),
		IntervalIncrease: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "slower")),
		IntervalDecrease: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "faster")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// actions maps config action names to bindings.
func (k *KeyMap) actions() map[string]*key.Binding {
	return map[string]*key.Binding{
		"confirm":           &k.Confirm,
		"escape":            &k.Escape,
		"cycle":             &k.Cycle,
		"complete":          &k.Complete,
		"edit":              &k.Edit,
		"display_select":    &k.DisplaySelect,
		"load_menu":         &k.LoadMenu,
		"save_as":           &k.SaveAs,
		"save":              &k.Save,
		"load_latest":       &k.LoadLatest,
		"move_up":           &k.Up,
		"move_down":         &k.Down,
		"move_left":         &k.Left,
		"move_right":        &k.Right,
		"split_horizontal":  &k.SplitHorizontal,
		"split_vertical":    &k.SplitVertical,
		"kill":              &k.Kill,
		"shrink_width":      &k.ShrinkWidth,
		"grow_width":        &k.GrowWidth,
		"shrink_height":     &k.ShrinkHeight,
		"grow_height":       &k.GrowHeight,
		"pause":             &k.Pause,
		"resume":            &k.Resume,
		"execute":           &k.Execute,
		"interval_increase": &k.IntervalIncrease,
		"interval_decrease": &k.IntervalDecrease,
		"help":              &k.Help,
		"quit":              &k.Quit,
	}
}

// Binding returns the binding for a config action name.
func (k KeyMap) Binding(action string) (key.Binding, bool) {
	b, ok := k.actions()[action]
	if !ok {
		return key.Binding{}, false
	}
	return *b, true
}

// ActionNames lists every rebindable action, sorted.
func ActionNames() []string {
	km := DefaultKeyMap()
	names := make([]string, 0, len(km.actions()))
	for name := range km.actions() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewKeyMap applies overrides on top of DefaultKeyMap. Unknown action
// names and empty key lists are reported together; valid overrides
// still apply.
func NewKeyMap(overrides map[string][]string) (KeyMap, error) {
	km := DefaultKeyMap()
	actions := km.actions()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		b, ok := actions[strings.ToLower(name)]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown key action %q", name))
			continue
		}
		keys := overrides[name]
		if len(keys) == 0 {
			errs = append(errs, fmt.Errorf("key action %q has no keys", name))
			continue
		}
		b.SetKeys(keys...)
		b.SetHelp(strings.Join(keys, "/"), b.Help().Desc)
	}
	return km, errors.Join(errs...)
}

func hint(b key.Binding) components.KeyHint {
	return components.KeyHint{Key: b.Help().Key, Desc: b.Help().Desc}
}

// ShortHints returns the hints shown in the status bar, most important first.
func (k KeyMap) ShortHints() []components.KeyHint {
	return []components.KeyHint{
		hint(k.Quit), hint(k.Help), hint(k.Edit), hint(k.SplitVertical),
		hint(k.SplitHorizontal), hint(k.Kill), hint(k.Cycle), hint(k.DisplaySelect),
	}
}

// HelpSections groups every binding for the help overlay.
func (k KeyMap) HelpSections() []components.HelpSection {
	return []components.HelpSection{
		{Title: "Panes", Hints: []components.KeyHint{
			hint(k.SplitVertical), hint(k.SplitHorizontal), hint(k.Kill), hint(k.Cycle),
			hint(k.Up), hint(k.Down), hint(k.Left), hint(k.Right),
			hint(k.ShrinkWidth), hint(k.GrowWidth), hint(k.ShrinkHeight), hint(k.GrowHeight),
		}},
		{Title: "Commands", Hints: []components.KeyHint{
			hint(k.Edit), hint(k.Execute), hint(k.Pause), hint(k.Resume),
			hint(k.IntervalIncrease), hint(k.IntervalDecrease), hint(k.DisplaySelect),
		}},
		{Title: "Sessions", Hints: []components.KeyHint{
			hint(k.Save), hint(k.SaveAs), hint(k.LoadLatest), hint(k.LoadMenu),
		}},
		{Title: "General", Hints: []components.KeyHint{
			hint(k.Confirm), hint(k.Escape), hint(k.Complete), hint(k.Help), hint(k.Quit),
		}},
	}
}
