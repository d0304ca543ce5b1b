package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Result is a command result that can be printed as text or JSON.
type Result interface {
	// Text writes the human-readable form.
	Text(w io.Writer) error
	// JSON returns the value to encode.
	JSON() any
}

// Output writes r in the formatter's format.
func (f *Formatter) Output(r Result) error {
	if f.IsJSON() {
		return f.JSON(r.JSON())
	}
	return r.Text(f.writer)
}

// JSON encodes v to the formatter's writer.
func (f *Formatter) JSON(v any) error {
	return WriteJSON(f.writer, v, f.pretty)
}

// WriteJSON encodes v to w.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// Table lays out rows in padded columns. Widths are measured in terminal
// cells so wide glyphs line up.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable returns a table with headers.
func NewTable(headers ...string) *Table {
	t := &Table{headers: headers, widths: make([]int, len(headers))}
	for i, h := range headers {
		t.widths[i] = runewidth.StringWidth(h)
	}
	return t
}

// AddRow appends a row. Extra columns are ignored.
func (t *Table) AddRow(cols ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cols) {
			row[i] = cols[i]
		}
		if w := runewidth.StringWidth(row[i]); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the header, a dashed rule and the rows.
func (t *Table) Render(w io.Writer) error {
	rule := make([]string, len(t.widths))
	for i, width := range t.widths {
		rule[i] = strings.Repeat("-", width)
	}
	for _, row := range append([][]string{t.headers, rule}, t.rows...) {
		if _, err := fmt.Fprintln(w, t.line(row)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) line(cols []string) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(cols)-1 {
			b.WriteString(c)
			break
		}
		b.WriteString(runewidth.FillRight(c, t.widths[i]))
	}
	return b.String()
}

// Pluralize returns singular when count is 1.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// CountStr returns "N item(s)".
func CountStr(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(count, singular, plural))
}
