package watcher

import (
	"sync"
	"time"
)

// DefaultSettleWindow is how long a watched file must stay quiet before
// its pending events are delivered.
const DefaultSettleWindow = 250 * time.Millisecond

// settler calls fire once a burst of pokes has been quiet for window. A
// single save can reach the watcher as create, write and rename events;
// the handler sees them as one batch.
type settler struct {
	window time.Duration
	fire   func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func newSettler(window time.Duration, fire func()) *settler {
	if window <= 0 {
		window = DefaultSettleWindow
	}
	return &settler{window: window, fire: fire}
}

// poke restarts the quiet window.
func (s *settler) poke() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, func() { s.expire(gen) })
}

// expire fires unless a later poke or stop superseded gen. A timer that
// was already running when Stop was called lands here and is ignored.
func (s *settler) expire(gen uint64) {
	s.mu.Lock()
	current := gen == s.gen
	if current {
		s.timer = nil
	}
	s.mu.Unlock()

	if current {
		s.fire()
	}
}

// stop drops a pending fire. Later pokes start a new window.
func (s *settler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
