package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	sessionDirName = "sessions"
	fileExtension  = ".toml"
	defaultPrefix  = "session-"
	timeLayout     = "20060102T150405"
)

var (
	// ErrNotFound is returned for a session name with no file.
	ErrNotFound = errors.New("session not found")
	// ErrNoSessions is returned by Latest when the directory holds none.
	ErrNoSessions = errors.New("no saved sessions")
)

// DefaultDir returns the session directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share/panewatch/sessions/
func DefaultDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return sessionDirName
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "panewatch", sessionDirName)
}

// Store reads and writes session files in Dir.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir, or at DefaultDir when dir is
// empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{Dir: dir}
}

// DefaultName is the file name used when saving without a name.
func DefaultName(t time.Time) string {
	return defaultPrefix + t.Format(timeLayout) + fileExtension
}

// Path resolves name to a file in the store. Absolute paths are returned
// unchanged.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	name = sanitizeFilename(name)
	if !strings.HasSuffix(name, fileExtension) {
		name += fileExtension
	}
	return filepath.Join(s.Dir, name)
}

// Save writes state under name and returns the file path. An empty name
// picks a timestamped default. Existing files are replaced.
func (s *Store) Save(state *SessionState, name string) (string, error) {
	unlock, err := s.acquireLock()
	if err != nil {
		return "", err
	}
	defer unlock()

	if name == "" {
		name = DefaultName(state.SavedAt)
	}
	if state.Name == "" {
		state.Name = strings.TrimSuffix(filepath.Base(name), fileExtension)
	}
	path := s.Path(name)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(state); err != nil {
		return "", fmt.Errorf("failed to serialize session state: %w", err)
	}
	if err := writeFileAtomic(filepath.Dir(path), path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func writeFileAtomic(dir, path string, data []byte) (err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing to temp file: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming session file: %w", err)
	}
	return nil
}

// Load reads the session saved under name.
func (s *Store) Load(name string) (*SessionState, error) {
	return readState(s.Path(name))
}

func readState(path string) (*SessionState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state SessionState
	if _, err := toml.Decode(string(data), &state); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}
	return &state, nil
}

// Latest loads the most recently saved session.
func (s *Store) Latest() (*SessionState, error) {
	saved, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, ErrNoSessions
	}
	return readState(saved[0].FilePath)
}

// Delete removes a saved session.
func (s *Store) Delete(name string) error {
	unlock, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer unlock()

	path := s.Path(name)
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// Exists checks if a saved session exists.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// SavedSession represents a saved session entry.
type SavedSession struct {
	Name     string    `json:"name" yaml:"name"`
	ID       string    `json:"id" yaml:"id"`
	SavedAt  time.Time `json:"saved_at" yaml:"saved_at"`
	Panes    int       `json:"panes" yaml:"panes"`
	Commands int       `json:"commands" yaml:"commands"`
	FilePath string    `json:"file_path" yaml:"file_path"`
	FileSize int64     `json:"file_size" yaml:"file_size"`
}

// List returns all saved sessions, newest first. Unreadable files are
// skipped.
func (s *Store) List() ([]SavedSession, error) {
	unlock, err := s.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SavedSession{}, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []SavedSession
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		path := filepath.Join(s.Dir, entry.Name())
		state, err := readState(path)
		if err != nil {
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		sessions = append(sessions, SavedSession{
			Name:     strings.TrimSuffix(entry.Name(), fileExtension),
			ID:       state.ID,
			SavedAt:  state.SavedAt,
			Panes:    countLeaves(state.Panes.Root),
			Commands: len(state.Commands),
			FilePath: path,
			FileSize: size,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].SavedAt.Equal(sessions[j].SavedAt) {
			return sessions[i].Name > sessions[j].Name
		}
		return sessions[i].SavedAt.After(sessions[j].SavedAt)
	})
	return sessions, nil
}

// sanitizeFilename removes or replaces characters not suitable for filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
