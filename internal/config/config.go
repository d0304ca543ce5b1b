// Package config loads the TOML configuration, applies environment and
// command-line overrides, and watches the file for changes.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/panewatch/internal/display"
)

const appName = "panewatch"

// Defaults for values the config file may leave out.
const (
	DefaultInterval   = 5
	DefaultMaxHistory = 100
	DefaultDisplay    = "raw"
	DefaultShell      = "sh"
	DefaultLogLevel   = "info"
)

// Config represents the main configuration
type Config struct {
	Interval    int                 `toml:"interval"`    // seconds between runs of a new command
	Beep        bool                `toml:"beep"`        // ring the bell on a non-zero exit
	ErrExit     bool                `toml:"err_exit"`    // quit on a non-zero exit
	ChgExit     bool                `toml:"chg_exit"`    // quit when output changes
	Wrap        bool                `toml:"wrap"`        // wrap long lines
	MaxHistory  int                 `toml:"max_history"` // outputs kept per pane
	Zen         bool                `toml:"zen"`         // hide borders and status line
	Display     string              `toml:"display"`     // display mode for new panes
	Shell       string              `toml:"shell"`       // shell used as `<shell> -c <command>`
	HardKill    bool                `toml:"hard_kill"`   // kill in-flight runs on stop
	SessionsDir string              `toml:"sessions_dir"`
	LogsDir     string              `toml:"logs_dir"`
	LogLevel    string              `toml:"log_level"`
	Keys        map[string][]string `toml:"keys"` // action name -> key strings

	// Path is the file the config was read from, if any.
	Path string `toml:"-"`
}

// IntervalDuration returns Interval as a time.Duration.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, "config.toml")
}

// DefaultLogsDir returns the log directory under XDG_STATE_HOME.
func DefaultLogsDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "logs")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName, "logs")
}

// DefaultSessionsDir returns the session directory under XDG_DATA_HOME.
func DefaultSessionsDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "sessions")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName, "sessions")
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Interval:    DefaultInterval,
		Wrap:        true,
		MaxHistory:  DefaultMaxHistory,
		Display:     DefaultDisplay,
		Shell:       DefaultShell,
		SessionsDir: DefaultSessionsDir(),
		LogsDir:     DefaultLogsDir(),
		LogLevel:    DefaultLogLevel,
		Keys:        map[string][]string{},
	}
}

// Load reads path (DefaultPath when empty). A missing file is an error
// the caller may treat as "use Default()". Values absent from the file
// keep their defaults, then environment overrides apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Path = path

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.Display == "" {
		cfg.Display = DefaultDisplay
	}
	if cfg.Shell == "" {
		cfg.Shell = DefaultShell
	}
	if cfg.SessionsDir == "" {
		cfg.SessionsDir = DefaultSessionsDir()
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = DefaultLogsDir()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string][]string{}
	}
	cfg.SessionsDir = ExpandHome(cfg.SessionsDir)
	cfg.LogsDir = ExpandHome(cfg.LogsDir)

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default (with environment
// overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PANEWATCH_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Interval = n
		}
	}
	if v := os.Getenv("PANEWATCH_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxHistory = n
		}
	}
	if v := os.Getenv("PANEWATCH_SESSIONS_DIR"); v != "" {
		cfg.SessionsDir = ExpandHome(v)
	}
	if v := os.Getenv("PANEWATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PANEWATCH_SHELL"); v != "" {
		cfg.Shell = v
	}
}

var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate reports every problem with cfg at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %d", c.Interval))
	}
	if c.MaxHistory <= 0 {
		errs = append(errs, fmt.Errorf("max_history must be positive, got %d", c.MaxHistory))
	}
	if _, err := display.ParseMode(c.Display); err != nil {
		errs = append(errs, err)
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if strings.TrimSpace(c.Shell) == "" {
		errs = append(errs, errors.New("shell must not be empty"))
	}
	return errors.Join(errs...)
}

// CreateDefault writes Default() to path (DefaultPath when empty).
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Print(Default(), f); err != nil {
		return "", err
	}
	return path, nil
}

// Print writes config to a writer in TOML format
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# panewatch configuration")
	fmt.Fprintln(w, "# Environment overrides: PANEWATCH_INTERVAL, PANEWATCH_MAX_HISTORY,")
	fmt.Fprintln(w, "# PANEWATCH_SESSIONS_DIR, PANEWATCH_LOG_LEVEL, PANEWATCH_SHELL")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Seconds between runs of a newly assigned command")
	fmt.Fprintf(w, "interval = %d\n", cfg.Interval)
	fmt.Fprintln(w, "# Outputs kept per pane")
	fmt.Fprintf(w, "max_history = %d\n", cfg.MaxHistory)
	fmt.Fprintln(w, "# raw, wrapped, multiline, multiline-time, multiline-datetime, diff-char, diff-word, diff-line")
	fmt.Fprintf(w, "display = %q\n", cfg.Display)
	fmt.Fprintf(w, "wrap = %t\n", cfg.Wrap)
	fmt.Fprintf(w, "zen = %t\n", cfg.Zen)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Reactions to command results")
	fmt.Fprintf(w, "beep = %t\n", cfg.Beep)
	fmt.Fprintf(w, "err_exit = %t\n", cfg.ErrExit)
	fmt.Fprintf(w, "chg_exit = %t\n", cfg.ChgExit)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Commands run as `<shell> -c <command>`")
	fmt.Fprintf(w, "shell = %q\n", cfg.Shell)
	fmt.Fprintln(w, "# Kill a running command when its pane is stopped or closed")
	fmt.Fprintf(w, "hard_kill = %t\n", cfg.HardKill)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "sessions_dir = %q\n", cfg.SessionsDir)
	fmt.Fprintf(w, "logs_dir = %q\n", cfg.LogsDir)
	fmt.Fprintln(w, "# trace, debug, info, warn, error")
	fmt.Fprintf(w, "log_level = %q\n", cfg.LogLevel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[keys]")
	fmt.Fprintln(w, "# Override bindings by action name, e.g. split_vertical = [\"v\", \"|\"]")
	actions := make([]string, 0, len(cfg.Keys))
	for action := range cfg.Keys {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		quoted := make([]string, len(cfg.Keys[action]))
		for i, k := range cfg.Keys[action] {
			quoted[i] = strconv.Quote(k)
		}
		fmt.Fprintf(w, "%s = [%s]\n", action, strings.Join(quoted, ", "))
	}
	return nil
}
