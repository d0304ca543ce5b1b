package config

import "strings"

// Flags are command-line overrides. Nil pointers and false booleans mean
// "not given" and leave the config value alone.
type Flags struct {
	Interval   *int
	MaxHistory *int
	Display    *string
	Beep       bool
	ErrExit    bool
	ChgExit    bool
	NoWrap     bool
	Zen        bool
	Verbose    int
}

var verbosityLevels = []string{"error", "warn", "info", "debug", "trace"}

// MergeFlags applies command-line overrides to cfg. Command-line values
// win over the file and the environment.
func MergeFlags(cfg *Config, f Flags) *Config {
	if f.Interval != nil && *f.Interval > 0 {
		cfg.Interval = *f.Interval
	}
	if f.MaxHistory != nil && *f.MaxHistory > 0 {
		cfg.MaxHistory = *f.MaxHistory
	}
	if f.Display != nil && *f.Display != "" {
		cfg.Display = *f.Display
	}
	if f.Beep {
		cfg.Beep = true
	}
	if f.ErrExit {
		cfg.ErrExit = true
	}
	if f.ChgExit {
		cfg.ChgExit = true
	}
	if f.NoWrap {
		cfg.Wrap = false
	}
	if f.Zen {
		cfg.Zen = true
	}
	if f.Verbose > 0 {
		cfg.LogLevel = raiseLevel(cfg.LogLevel, f.Verbose)
	}
	return cfg
}

// raiseLevel moves level n steps towards trace.
func raiseLevel(level string, n int) string {
	idx := 2
	for i, l := range verbosityLevels {
		if strings.EqualFold(l, level) {
			idx = i
			break
		}
	}
	idx += n
	if idx >= len(verbosityLevels) {
		idx = len(verbosityLevels) - 1
	}
	return verbosityLevels[idx]
}
