// Package watcher reports changes to individual files using fsnotify,
// batching the events of one save until the file settles.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when operations are called on a closed Watcher.
var ErrClosed = errors.New("watcher closed")

// EventType represents the type of file system event.
type EventType uint32

const (
	Create EventType = 1 << iota
	Write
	Remove
	Rename
	Chmod

	All = Create | Write | Remove | Rename | Chmod
)

func (t EventType) String() string {
	var parts []string
	for _, p := range []struct {
		bit  EventType
		name string
	}{{Create, "create"}, {Write, "write"}, {Remove, "remove"}, {Rename, "rename"}, {Chmod, "chmod"}} {
		if t&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "|" + p
	}
	return out
}

// Event is a change to a watched file.
type Event struct {
	Path string
	Type EventType
}

func eventTypeFromFsnotify(op fsnotify.Op) EventType {
	var t EventType
	if op&fsnotify.Create != 0 {
		t |= Create
	}
	if op&fsnotify.Write != 0 {
		t |= Write
	}
	if op&fsnotify.Remove != 0 {
		t |= Remove
	}
	if op&fsnotify.Rename != 0 {
		t |= Rename
	}
	if op&fsnotify.Chmod != 0 {
		t |= Chmod
	}
	return t
}

// Handler receives the events of one settle window.
type Handler func(events []Event)

// ErrorHandler is called when a watch error occurs.
type ErrorHandler func(err error)

// Watcher watches individual files. It watches their parent directories
// so that editors which replace a file by rename are still seen.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	window       time.Duration
	settle       *settler
	handler      Handler
	errorHandler ErrorHandler
	eventFilter  EventType

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]int
	pending []Event
	closed  bool
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long a file must stay quiet before its
// events are delivered.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.window = d
	}
}

// WithEventFilter sets which event types are delivered.
func WithEventFilter(filter EventType) Option {
	return func(w *Watcher) {
		w.eventFilter = filter
	}
}

// WithErrorHandler sets the error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(w *Watcher) {
		w.errorHandler = handler
	}
}

// New creates a Watcher that calls handler once each burst of events
// has settled.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsWatcher:   fsWatcher,
		window:      DefaultSettleWindow,
		handler:     handler,
		eventFilter: All,
		files:       make(map[string]bool),
		dirs:        make(map[string]int),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.settle = newSettler(w.window, w.flush)
	go w.run()
	return w, nil
}

// Add starts watching path. The file does not need to exist yet, but its
// directory does.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.fsWatcher.Remove(dir)
	}
	return nil
}

// WatchedPaths returns the watched files.
func (w *Watcher) WatchedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	return paths
}

// Close stops the watcher. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.settle.stop()
	err := w.fsWatcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.errorHandler != nil {
				w.errorHandler(err)
			}
		}
	}
}

func (w *Watcher) handleEvent(fsEvent fsnotify.Event) {
	eventType := eventTypeFromFsnotify(fsEvent.Op)
	if eventType&w.eventFilter == 0 {
		return
	}
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	if w.closed || !w.files[path] {
		w.mu.Unlock()
		return
	}
	w.pending = append(w.pending, Event{Path: path, Type: eventType})
	w.mu.Unlock()

	w.settle.poke()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	events := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(events) > 0 && w.handler != nil {
		w.handler(events)
	}
}
