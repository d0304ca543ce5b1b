package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

const lockFileName = ".lock"

var localMu sync.Mutex

// acquireLock takes the in-process mutex and an exclusive flock on the
// store directory. The returned func releases both.
func (s *Store) acquireLock() (func(), error) {
	localMu.Lock()

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		localMu.Unlock()
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	fl := flock.New(filepath.Join(s.Dir, lockFileName))
	if err := fl.Lock(); err != nil {
		localMu.Unlock()
		return nil, fmt.Errorf("locking sessions directory: %w", err)
	}

	return func() {
		_ = fl.Unlock()
		localMu.Unlock()
	}, nil
}
