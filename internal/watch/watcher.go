package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	krfs "github.com/kr/fs"

	"github.com/joe/sync-onboard/pkg/clock"
)

// Timing defaults.
const (
	DefaultDebounce   = 500 * time.Millisecond
	DefaultPairWindow = 200 * time.Millisecond
	eventBuffer       = 100
	errorBuffer       = 10
)

// ErrAlreadyRunning is returned by Start on a running watcher.
var ErrAlreadyRunning = errors.New("watcher already running")

// Options tunes a Watcher. Zero values select the defaults.
type Options struct {
	Debounce   time.Duration
	PairWindow time.Duration
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Watcher reports settled changes to matching files anywhere under a root.
type Watcher struct {
	fsw    *fsnotify.Watcher
	root   string
	filter Filter
	clock  clock.Clock
	logger *slog.Logger
	tick   time.Duration

	queue   *changeQueue
	renames *renamePairer

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New creates a Watcher for root. It must be started with Start.
func New(root string, filter Filter, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if opts.PairWindow <= 0 {
		opts.PairWindow = DefaultPairWindow
	}

	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Watcher{
		fsw:     fsw,
		root:    root,
		filter:  filter,
		clock:   opts.Clock,
		logger:  opts.Logger,
		tick:    min(opts.Debounce, opts.PairWindow) / 2,
		queue:   newChangeQueue(opts.Debounce),
		renames: &renamePairer{window: opts.PairWindow},
		events:  make(chan Event, eventBuffer),
		errors:  make(chan error, errorBuffer),
		done:    make(chan struct{}),
	}, nil
}

// Start registers every directory under the root and begins emitting events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrAlreadyRunning
	}

	if err := w.addTree(w.root); err != nil {
		return err
	}

	w.running = true
	w.wg.Add(1)

	go w.processEvents()

	return nil
}

// Stop stops watching and closes the Events and Errors channels.
// Changes still inside their debounce window are discarded.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)

	err := w.fsw.Close()

	w.wg.Wait()

	close(w.events)
	close(w.errors)

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// Events returns the channel of settled changes. It has a single consumer.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	walker := krfs.Walk(dir)

	for walker.Step() {
		if err := walker.Err(); err != nil {
			if walker.Path() == dir {
				return fmt.Errorf("failed to walk %s: %w", dir, err)
			}

			w.logger.Warn("skipping unreadable path", "path", walker.Path(), "error", err)

			continue
		}

		if !walker.Stat().IsDir() {
			continue
		}

		if err := w.fsw.Add(walker.Path()); err != nil {
			return fmt.Errorf("failed to watch %s: %w", walker.Path(), err)
		}
	}

	return nil
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if !w.handle(event) {
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			case <-w.done:
				return
			}

		case <-ticker.C():
			if !w.flush() {
				return
			}
		}
	}
}

// handle applies one fsnotify event. It returns false once the watcher is stopping.
func (w *Watcher) handle(event fsnotify.Event) bool {
	now := w.clock.Now()

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}

			return true
		}

		if oldPath, ok := w.renames.created(event.Name, now); oldPath != "" {
			if ok && !exists(oldPath) {
				if !w.filter.Matches(oldPath) && !w.filter.Matches(event.Name) {
					return true
				}

				w.queue.drop(oldPath)

				return w.emit(Event{Type: Renamed, Path: event.Name, OldPath: oldPath})
			}

			// A move out of the tree followed by an unrelated write.
			w.logger.Debug("dropping unpaired rename", "path", oldPath, "created", event.Name)
		}

		if w.filter.Matches(event.Name) {
			w.queue.add(event.Name, now)
		}

	case event.Has(fsnotify.Write):
		if w.filter.Matches(event.Name) {
			w.queue.add(event.Name, now)
		}

	case event.Has(fsnotify.Rename):
		w.queue.drop(event.Name)

		if dropped := w.renames.renamed(event.Name, now); dropped != "" {
			w.logger.Debug("dropping unpaired rename", "path", dropped)
		}

	case event.Has(fsnotify.Remove):
		w.queue.drop(event.Name)
	}

	return true
}

// flush emits changes whose debounce window has passed.
func (w *Watcher) flush() bool {
	now := w.clock.Now()

	if dropped := w.renames.expire(now); dropped != "" {
		w.logger.Debug("dropping unpaired rename", "path", dropped)
	}

	for _, path := range w.queue.due(now) {
		if !w.emit(Event{Type: Modified, Path: path}) {
			return false
		}
	}

	return true
}

func (w *Watcher) emit(event Event) bool {
	w.logger.Debug("file event", "event", event.String())

	select {
	case w.events <- event:
		return true
	case <-w.done:
		return false
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)

	return err == nil
}
