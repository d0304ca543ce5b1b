package output

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeResult struct{ Name string }

func (r fakeResult) Text(w io.Writer) error {
	_, err := io.WriteString(w, "name: "+r.Name+"\n")
	return err
}

func (r fakeResult) JSON() any { return r }

func TestFormatString(t *testing.T) {
	if FormatText.String() != "text" || FormatJSON.String() != "json" {
		t.Errorf("Format strings = %q, %q", FormatText, FormatJSON)
	}
}

func TestFormatterOutput(t *testing.T) {
	tests := []struct {
		name string
		json bool
		want string
	}{
		{"text", false, "name: work\n"},
		{"json", true, "{\n  \"Name\": \"work\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := New(WithJSON(tt.json), WithWriter(&buf))
			if err := f.Output(fakeResult{Name: "work"}); err != nil {
				t.Fatalf("Output: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteJSONCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"a": 1}, false); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("WriteJSON = %q", buf.String())
	}
}

func TestDetectFormat(t *testing.T) {
	t.Setenv("PANEWATCH_OUTPUT_FORMAT", "")
	if got := DetectFormat(true); got != FormatJSON {
		t.Errorf("DetectFormat(true) = %v", got)
	}
	if got := DetectFormat(false); got != FormatText {
		t.Errorf("DetectFormat(false) = %v", got)
	}
	t.Setenv("PANEWATCH_OUTPUT_FORMAT", "JSON")
	if got := DetectFormat(false); got != FormatJSON {
		t.Errorf("DetectFormat with env = %v", got)
	}
}

func TestIsTerminalNonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffer reported as terminal")
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable("NAME", "PANES")
	tbl.AddRow("work", "2")
	tbl.AddRow("日本", "10", "ignored")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatal(err)
	}
	want := "  NAME  PANES\n" +
		"  ----  -----\n" +
		"  work  2\n" +
		"  日本  10\n"
	if buf.String() != want {
		t.Errorf("Render =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestCountStr(t *testing.T) {
	if got := CountStr(1, "pane", "panes"); got != "1 pane" {
		t.Errorf("CountStr(1) = %q", got)
	}
	if got := CountStr(3, "pane", "panes"); got != "3 panes" {
		t.Errorf("CountStr(3) = %q", got)
	}
}

func TestFormatError(t *testing.T) {
	cause := errors.New("open x.toml: no such file")
	err := SessionNotFoundError("x", cause)
	if !errors.Is(err, cause) {
		t.Error("CLIError should unwrap to its cause")
	}

	got := FormatError(err, false)
	for _, want := range []string{"Error: session \"x\" not found: open x.toml", "[SESSION_NOT_FOUND]", "Hint: " + HintSessionNotFound} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatError missing %q:\n%s", want, got)
		}
	}

	if got := FormatError(errors.New("plain"), false); got != "Error: plain\n" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}

func TestPrintErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, NotTerminalError(), true)
	got := buf.String()
	if !strings.Contains(got, `"code": "NOT_A_TERMINAL"`) || !strings.Contains(got, `"hint"`) {
		t.Errorf("PrintError json = %s", got)
	}
}
