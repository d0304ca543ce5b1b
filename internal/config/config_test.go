package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Interval != DefaultInterval {
		t.Errorf("Interval = %d, want %d", cfg.Interval, DefaultInterval)
	}
	if !cfg.Wrap {
		t.Error("Wrap should default to true")
	}
	if cfg.MaxHistory != 100 {
		t.Errorf("MaxHistory = %d, want 100", cfg.MaxHistory)
	}
	if cfg.Display != "raw" || cfg.Shell != "sh" {
		t.Errorf("Display/Shell = %q/%q", cfg.Display, cfg.Shell)
	}
	if cfg.IntervalDuration() != 5*time.Second {
		t.Errorf("IntervalDuration = %v", cfg.IntervalDuration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get user home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/foo", filepath.Join(home, "foo")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~user/x", "~user/x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandHome(tt.input); got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	content := `
interval = 2
beep = true
wrap = false
display = "diff-line"
hard_kill = true
sessions_dir = "/tmp/pw-sessions"

[keys]
split_vertical = ["v", "|"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 2 || !cfg.Beep || cfg.Wrap || !cfg.HardKill {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.Display != "diff-line" {
		t.Errorf("Display = %q", cfg.Display)
	}
	if cfg.MaxHistory != DefaultMaxHistory {
		t.Errorf("MaxHistory not backfilled: %d", cfg.MaxHistory)
	}
	if cfg.Shell != DefaultShell {
		t.Errorf("Shell not backfilled: %q", cfg.Shell)
	}
	if cfg.SessionsDir != "/tmp/pw-sessions" {
		t.Errorf("SessionsDir = %q", cfg.SessionsDir)
	}
	if got := cfg.Keys["split_vertical"]; len(got) != 2 || got[1] != "|" {
		t.Errorf("Keys = %v", cfg.Keys)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("interval = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Interval != DefaultInterval {
		t.Errorf("Interval = %d", cfg.Interval)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PANEWATCH_INTERVAL", "9")
	t.Setenv("PANEWATCH_MAX_HISTORY", "7")
	t.Setenv("PANEWATCH_SESSIONS_DIR", "/srv/sessions")
	t.Setenv("PANEWATCH_LOG_LEVEL", "DEBUG")
	t.Setenv("PANEWATCH_SHELL", "bash")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("interval = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interval != 9 || cfg.MaxHistory != 7 || cfg.SessionsDir != "/srv/sessions" || cfg.LogLevel != "debug" || cfg.Shell != "bash" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("PANEWATCH_INTERVAL", "soon")
	t.Setenv("PANEWATCH_MAX_HISTORY", "-4")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interval != DefaultInterval || cfg.MaxHistory != DefaultMaxHistory {
		t.Errorf("garbage env applied: %+v", cfg)
	}
}

func TestDefaultPathWithXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != "/xdg/panewatch/config.toml" {
		t.Errorf("DefaultPath = %q", got)
	}
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultLogsDir(); got != "/state/panewatch/logs" {
		t.Errorf("DefaultLogsDir = %q", got)
	}
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultSessionsDir(); got != "/data/panewatch/sessions" {
		t.Errorf("DefaultSessionsDir = %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Interval = 0
	cfg.Display = "sparkline"
	cfg.LogLevel = "loud"
	cfg.Shell = " "
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"interval", "display", "log_level", "shell"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestMergeFlags(t *testing.T) {
	interval, history, display := 1, 3, "wrapped"
	cfg := MergeFlags(Default(), Flags{
		Interval:   &interval,
		MaxHistory: &history,
		Display:    &display,
		Beep:       true,
		ErrExit:    true,
		ChgExit:    true,
		NoWrap:     true,
		Zen:        true,
		Verbose:    1,
	})
	if cfg.Interval != 1 || cfg.MaxHistory != 3 || cfg.Display != "wrapped" {
		t.Errorf("numeric flags not merged: %+v", cfg)
	}
	if !cfg.Beep || !cfg.ErrExit || !cfg.ChgExit || cfg.Wrap || !cfg.Zen {
		t.Errorf("bool flags not merged: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}

	untouched := MergeFlags(Default(), Flags{})
	if untouched.Interval != DefaultInterval || !untouched.Wrap || untouched.LogLevel != "info" {
		t.Errorf("empty flags changed config: %+v", untouched)
	}
}

func TestRaiseLevel(t *testing.T) {
	tests := []struct {
		level string
		n     int
		want  string
	}{
		{"info", 1, "debug"},
		{"info", 2, "trace"},
		{"info", 9, "trace"},
		{"error", 1, "warn"},
		{"bogus", 1, "debug"},
	}
	for _, tt := range tests {
		if got := raiseLevel(tt.level, tt.n); got != tt.want {
			t.Errorf("raiseLevel(%q, %d) = %q, want %q", tt.level, tt.n, got, tt.want)
		}
	}
}

func TestPrintRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Keys["quit"] = []string{"q", "ctrl+c"}
	cfg.HardKill = true

	var buf bytes.Buffer
	if err := Print(cfg, &buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("printed config does not load: %v\n%s", err, buf.String())
	}
	if !loaded.HardKill || len(loaded.Keys["quit"]) != 2 || loaded.Interval != cfg.Interval {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	got, err := CreateDefault(path)
	if err != nil {
		t.Fatalf("CreateDefault: %v", err)
	}
	if got != path {
		t.Errorf("path = %q", got)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("created config does not load: %v", err)
	}
	if _, err := CreateDefault(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("interval = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var (
		mu   sync.Mutex
		got  *Config
		errs []error
	)
	stop, err := Watch(path, func(cfg *Config) {
		mu.Lock()
		got = cfg
		mu.Unlock()
	}, func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("interval = 7\nzen = true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := got != nil
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatalf("no reload observed, errors: %v", errs)
	}
	if got.Interval != 7 || !got.Zen {
		t.Errorf("reloaded config = %+v", got)
	}
}
