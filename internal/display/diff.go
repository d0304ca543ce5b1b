package display

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Tokens are encoded as runes starting in the private use area.
const (
	tokenBase = 0xE000
	maxTokens = 0x10FFFF - tokenBase
)

func (r *Renderer) diffStyle(op diffmatchpatch.Operation) lipgloss.Style {
	switch op {
	case diffmatchpatch.DiffInsert:
		return r.Styles.Added
	case diffmatchpatch.DiffDelete:
		return r.Styles.Removed
	default:
		return r.Styles.Unchanged
	}
}

func (r *Renderer) diffLines(mode Mode, prev, cur string) []line {
	prev, cur = sanitize(prev), sanitize(cur)
	switch mode {
	case DiffLine:
		return r.lineDiff(prev, cur)
	case DiffWord:
		if diffs, ok := wordDiff(prev, cur); ok {
			return r.inlineDiff(diffs)
		}
		return r.lineDiff(prev, cur)
	default:
		dmp := diffmatchpatch.New()
		return r.inlineDiff(dmp.DiffMain(strings.TrimRight(prev, "\n"), strings.TrimRight(cur, "\n"), false))
	}
}

// inlineDiff lays diffs out as running text, breaking lines on newlines.
func (r *Renderer) inlineDiff(diffs []diffmatchpatch.Diff) []line {
	lines := []line{nil}
	for _, d := range diffs {
		style := r.diffStyle(d.Type)
		parts := strings.Split(d.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				lines[len(lines)-1] = append(lines[len(lines)-1], segment{text: part, style: style})
			}
		}
	}
	return lines
}

// lineDiff renders one line per changed or kept line, prefixed with +, - or a space.
func (r *Renderer) lineDiff(prev, cur string) []line {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToRunes(terminate(prev), terminate(cur))
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), table)

	var lines []line
	for _, d := range diffs {
		sign, style := " ", r.Styles.Output
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sign, style = "+", r.Styles.Added
		case diffmatchpatch.DiffDelete:
			sign, style = "-", r.Styles.Removed
		}
		for _, s := range strings.SplitAfter(d.Text, "\n") {
			if s == "" {
				continue
			}
			lines = append(lines, line{
				{text: sign, style: style},
				{text: strings.TrimSuffix(s, "\n"), style: style},
			})
		}
	}
	if len(lines) == 0 {
		lines = []line{nil}
	}
	return lines
}

func terminate(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// wordDiff diffs prev and cur token by token, where a token is a word, a
// run of blanks or a single newline.
func wordDiff(prev, cur string) ([]diffmatchpatch.Diff, bool) {
	prev, cur = strings.TrimRight(prev, "\n"), strings.TrimRight(cur, "\n")
	var table []string
	ids := make(map[string]rune)
	encode := func(s string) ([]rune, bool) {
		var out []rune
		for _, tok := range tokenize(s) {
			id, ok := ids[tok]
			if !ok {
				if len(table) >= maxTokens {
					return nil, false
				}
				id = rune(tokenBase + len(table))
				ids[tok] = id
				table = append(table, tok)
			}
			out = append(out, id)
		}
		return out, true
	}
	a, ok := encode(prev)
	if !ok {
		return nil, false
	}
	b, ok := encode(cur)
	if !ok {
		return nil, false
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)
	for i, d := range diffs {
		var sb strings.Builder
		for _, id := range d.Text {
			sb.WriteString(table[id-tokenBase])
		}
		diffs[i].Text = sb.String()
	}
	return diffs, true
}

func tokenize(s string) []string {
	var tokens []string
	start := -1
	kind := 0
	classify := func(r rune) int {
		switch {
		case r == '\n':
			return 1
		case unicode.IsSpace(r):
			return 2
		default:
			return 3
		}
	}
	for i, r := range s {
		k := classify(r)
		if start >= 0 && (k != kind || k == 1) {
			tokens = append(tokens, s[start:i])
			start = -1
		}
		if start < 0 {
			start, kind = i, k
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// Similarity returns how alike two outputs are, from 0 (nothing shared) to 1 (identical).
func Similarity(prev, cur string) float64 {
	if prev == cur {
		return 1
	}
	dmp := diffmatchpatch.New()
	dist := dmp.DiffLevenshtein(dmp.DiffMain(prev, cur, true))
	maxLen := len([]rune(prev))
	if n := len([]rune(cur)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}
