package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nimbus/internal/logging"
	"nimbus/internal/services"
)

const (
	stageWatch       = "watch"
	defaultWindow    = time.Second
	defaultQueueSize = 64
	minTick          = 10 * time.Millisecond
)

// Options configures a Watcher.
type Options struct {
	// Window is how long a path must stay quiet before its event is emitted.
	Window    time.Duration
	QueueSize int
	Recursive bool
	Logger    *slog.Logger
}

// Watcher produces debounced event batches for a directory tree.
type Watcher struct {
	root   string
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

type pendingEvent struct {
	op       Op
	seq      uint64
	lastSeen time.Time
}

// New returns a Watcher for root. Nothing is watched until Start.
func New(root string, opts Options) *Watcher {
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &Watcher{
		root:   filepath.Clean(root),
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "watcher"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Start establishes the watch and begins delivering batches. The returned
// channel is closed once ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) (<-chan Batch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil, services.Wrap(services.ErrFatalSetup, stageWatch, "start", "watcher already started", nil)
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalSetup, stageWatch, "start", "stat watch root", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrFatalSetup, stageWatch, "start", w.root+" is not a directory", nil)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, services.Wrap(services.ErrFatalSetup, stageWatch, "start", "create notifier", err)
	}
	if err := fsw.Add(w.root); err != nil {
		_ = fsw.Close()
		return nil, services.Wrap(services.ErrFatalSetup, stageWatch, "start", "watch "+w.root, err)
	}
	if w.opts.Recursive {
		if err := w.addTree(fsw, w.root, nil); err != nil {
			_ = fsw.Close()
			return nil, services.Wrap(services.ErrFatalSetup, stageWatch, "start", "watch subdirectories", err)
		}
	}

	w.started = true
	out := make(chan Batch, w.opts.QueueSize)
	go w.run(ctx, fsw, out)

	w.logger.Info("watching directory",
		logging.String("root", w.root),
		logging.Bool("recursive", w.opts.Recursive),
		logging.Duration("window", w.opts.Window),
		logging.String(logging.FieldEventType, "watch_started"),
	)
	return out, nil
}

// Close stops the watch and waits for the delivery goroutine to exit.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.stop) })
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Batch) {
	defer close(w.done)
	defer close(out)
	defer fsw.Close()

	tick := w.opts.Window / 4
	if tick < minTick {
		tick = minTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]*pendingEvent)
	var (
		seq  uint64
		errs []error
	)
	record := func(path string, op Op, now time.Time) {
		entry, ok := pending[path]
		if !ok {
			seq++
			pending[path] = &pendingEvent{op: op, seq: seq, lastSeen: now}
			return
		}
		merged, drop := coalesce(entry.op, op)
		if drop {
			delete(pending, path)
			return
		}
		entry.op = merged
		entry.lastSeen = now
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			now := time.Now()
			op, tracked := opFromNotify(ev.Op)
			if !tracked {
				continue
			}
			if op == OpCreated && w.opts.Recursive {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, ev.Name, func(path string) { record(path, OpCreated, now) }); err != nil {
						errs = append(errs, services.Wrap(services.ErrTransientEvent, stageWatch, "add", "watch new directory", err))
					}
					continue
				}
			}
			record(ev.Name, op, now)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			errs = append(errs, services.Wrap(services.ErrTransientEvent, stageWatch, "notify", "watch error", err))
		case now := <-ticker.C:
			batch := Batch{Events: w.settled(pending, now), Errors: errs}
			if batch.Empty() {
				continue
			}
			errs = nil
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			}
		}
	}
}

// settled removes and returns the pending events that have been quiet for a
// full window, ordered by when each path was first seen.
func (w *Watcher) settled(pending map[string]*pendingEvent, now time.Time) []Event {
	type ready struct {
		seq   uint64
		event Event
	}
	var settled []ready
	for path, entry := range pending {
		if now.Sub(entry.lastSeen) < w.opts.Window {
			continue
		}
		settled = append(settled, ready{seq: entry.seq, event: Event{Op: entry.op, Path: path, Time: entry.lastSeen}})
		delete(pending, path)
	}
	if len(settled) == 0 {
		return nil
	}
	sort.Slice(settled, func(i, j int) bool { return settled[i].seq < settled[j].seq })
	events := make([]Event, len(settled))
	for i, r := range settled {
		events[i] = r.event
	}
	return events
}

// addTree watches every directory below dir (dir itself included when it is
// not the root) and reports regular files found along the way to onFile.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string, onFile func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != dir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path == w.root {
				return nil
			}
			return fsw.Add(path)
		}
		if onFile != nil && d.Type().IsRegular() {
			onFile(path)
		}
		return nil
	})
}
