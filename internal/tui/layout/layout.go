package layout

import "github.com/mattn/go-runewidth"

// Width tiers shared by the dashboard surfaces. Pane titles and the key
// hint bar drop secondary details below SplitViewThreshold.
const (
	SplitViewThreshold = 120
	WideViewThreshold  = 200
)

// Tier describes the current width bucket.
type Tier int

const (
	TierNarrow Tier = iota
	TierSplit
	TierWide
)

// TierForWidth maps a terminal width to a tier.
func TierForWidth(width int) Tier {
	switch {
	case width >= WideViewThreshold:
		return TierWide
	case width >= SplitViewThreshold:
		return TierSplit
	default:
		return TierNarrow
	}
}

// TruncateCells trims s to max terminal cells and appends suffix if truncated.
// Wide glyphs count as two cells and are never split.
func TruncateCells(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if runewidth.StringWidth(suffix) > max {
		suffix = ""
	}
	return runewidth.Truncate(s, max, suffix)
}

// Truncate is TruncateCells with the single-character ellipsis "…".
func Truncate(s string, max int) string {
	return TruncateCells(s, max, "…")
}

// Center returns the offset that centers an item of size inner within outer.
func Center(outer, inner int) int {
	if inner >= outer {
		return 0
	}
	return (outer - inner) / 2
}
