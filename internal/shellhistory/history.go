// Package shellhistory suggests previously typed shell commands for the
// command editor.
package shellhistory

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxSuggestions bounds the result of Filter.
const MaxSuggestions = 10

// History is an in-memory copy of the user's shell history, oldest first.
type History struct {
	commands []string
}

// New returns a History over commands, oldest first.
func New(commands []string) *History {
	return &History{commands: commands}
}

// DefaultPath picks ~/.zsh_history for zsh users and ~/.bash_history
// otherwise.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	if strings.Contains(os.Getenv("SHELL"), "zsh") {
		return filepath.Join(home, ".zsh_history"), nil
	}
	return filepath.Join(home, ".bash_history"), nil
}

// Load reads a history file. A missing file yields an empty History.
func Load(path string) (*History, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("opening shell history: %w", err)
	}
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line, ok := parseLine(scanner.Text()); ok {
			commands = append(commands, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading shell history: %w", err)
	}
	return New(commands), nil
}

// parseLine strips the zsh extended history prefix (": <ts>:<dur>;")
// and drops blank lines and comments.
func parseLine(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if strings.HasPrefix(line, ": ") {
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = strings.TrimSpace(line[idx+1:])
		}
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	return line, true
}

// Len returns the number of commands.
func (h *History) Len() int { return len(h.commands) }

// Filter returns up to MaxSuggestions distinct commands starting with
// prefix, most recent first. An empty prefix matches nothing.
func (h *History) Filter(prefix string) []string {
	if prefix == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for i := len(h.commands) - 1; i >= 0 && len(out) < MaxSuggestions; i-- {
		cmd := h.commands[i]
		if !strings.HasPrefix(cmd, prefix) || seen[cmd] {
			continue
		}
		seen[cmd] = true
		out = append(out, cmd)
	}
	return out
}
