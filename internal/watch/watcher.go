// Package watch re-runs work when any of a fixed set of files changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreated EventType = iota + 1
	EventModified
	EventDeleted
	EventRenamed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is a change to one watched file.
type Event struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Config contains configuration for the watcher
type Config struct {
	// Files are the files to watch. Their parent directories are watched so
	// that files replaced by rename (as editors do) keep being tracked.
	Files []string

	// Debounce is the quiet period after the last event before a batch fires.
	Debounce time.Duration
}

// DefaultConfig returns a config watching files with a 200ms debounce.
func DefaultConfig(files ...string) *Config {
	return &Config{
		Files:    files,
		Debounce: 200 * time.Millisecond,
	}
}

// Watcher watches a set of files and delivers debounced batches of changes.
type Watcher struct {
	config  *Config
	watcher *fsnotify.Watcher
	files   map[string]bool
	logger  *log.Logger
	fire    chan struct{}

	mu    sync.Mutex
	batch []Event
	timer *time.Timer
}

// New creates a watcher and starts observing the parent directories of the
// configured files. A nil logger discards output.
func New(config *Config, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(config.Files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:  config,
		watcher: fsWatcher,
		files:   make(map[string]bool, len(config.Files)),
		logger:  logger,
		fire:    make(chan struct{}, 1),
	}

	dirs := make(map[string]bool)
	for _, f := range config.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	return w, nil
}

// Run calls fn with each debounced batch of changes until ctx is done. Calls
// to fn never overlap. Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, events []Event)) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		case <-w.fire:
			w.mu.Lock()
			batch := w.batch
			w.batch = nil
			w.mu.Unlock()
			if len(batch) > 0 {
				fn(ctx, batch)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// handleEvent handles a single fsnotify event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.files[filepath.Clean(event.Name)] {
		return
	}

	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventCreated
	case event.Op.Has(fsnotify.Write):
		eventType = EventModified
	case event.Op.Has(fsnotify.Remove):
		eventType = EventDeleted
	case event.Op.Has(fsnotify.Rename):
		eventType = EventRenamed
	default:
		return
	}

	w.logger.Debug("file changed", "path", event.Name, "type", eventType)
	w.debounce(Event{
		Path:      filepath.Clean(event.Name),
		Type:      eventType,
		Timestamp: time.Now(),
	})
}

// debounce adds event to the current batch and restarts the quiet timer.
func (w *Watcher) debounce(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, event)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}
