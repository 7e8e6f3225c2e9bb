package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"nimbus/internal/classify"
	"nimbus/internal/config"
	"nimbus/internal/journal"
	"nimbus/internal/llm"
	"nimbus/internal/logging"
	"nimbus/internal/monitor"
	"nimbus/internal/notifications"
	"nimbus/internal/provenance"
	"nimbus/internal/services"
	"nimbus/internal/watcher"
)

// ErrAlreadyRunning reports that another monitor holds the lock.
var ErrAlreadyRunning = errors.New("another nimbus monitor instance is already running")

// Daemon owns the watcher and monitor loop for one download directory.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal *journal.Journal
	watcher *watcher.Watcher
	loop    *monitor.Loop
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	loopErr error
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	WatchRoot    string
	JournalPath  string
	LockFilePath string
	LogPath      string
	Monitor      monitor.StatusSummary
}

// Option customizes a Daemon.
type Option func(*options)

type options struct {
	notifier   notifications.Service
	reader     provenance.Reader
	classifier classify.Classifier
	logPath    string
}

// WithNotifier overrides the notification service built from config.
func WithNotifier(notifier notifications.Service) Option {
	return func(o *options) { o.notifier = notifier }
}

// WithAttributeReader overrides the extended attribute reader.
func WithAttributeReader(reader provenance.Reader) Option {
	return func(o *options) { o.reader = reader }
}

// WithClassifier overrides the classifier chain built from config.
func WithClassifier(classifier classify.Classifier) Option {
	return func(o *options) { o.classifier = classifier }
}

// WithLogPath records the run log location for status output.
func WithLogPath(path string) Option {
	return func(o *options) { o.logPath = path }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrFatalSetup, "daemon", "init", "ensure directories", err)
	}

	j, err := journal.Open(cfg.Paths.JournalPath, logger)
	if err != nil {
		return nil, err
	}
	if o.notifier == nil {
		o.notifier = notifications.NewService(cfg)
	}
	if o.classifier == nil {
		o.classifier = NewClassifier(cfg, logger)
	}

	normalizer := provenance.NewNormalizer(o.reader, cfg.Watcher.Ignore, logger)
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "daemon"),
		journal: j,
		watcher: watcher.New(cfg.Paths.DownloadDir, watcher.Options{
			Window:    time.Duration(cfg.Watcher.DebounceMillis) * time.Millisecond,
			QueueSize: cfg.Watcher.QueueSize,
			Recursive: cfg.Watcher.Recursive,
			Logger:    logger,
		}),
		loop:     monitor.NewLoop(cfg, normalizer, o.classifier, j, logger, monitor.WithNotifier(o.notifier)),
		logPath:  o.logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// NewClassifier builds the course-code classifier, chained with the LLM
// fallback when llm.enabled is set.
func NewClassifier(cfg *config.Config, logger *slog.Logger) classify.Classifier {
	if !cfg.LLM.Enabled {
		return classify.CourseCode{}
	}
	settings := cfg.GetLLM()
	client := llm.NewClient(llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		Referer:        settings.Referer,
		Title:          settings.Title,
		TimeoutSeconds: settings.TimeoutSeconds,
	})
	fallback := classify.NewLLMClassifier(client, cfg.LLM.MinConfidence, logger)
	return classify.NewChain(classify.CourseCode{}, fallback, logger)
}

// Start acquires the instance lock, establishes the watch and launches the
// monitor loop. A watch that cannot be established is returned as
// services.ErrFatalSetup.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrFatalSetup, "daemon", "start", "acquire lock", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, d.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	batches, err := d.watcher.Start(runCtx)
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.mu.Lock()
	d.cancel = cancel
	d.done = make(chan struct{})
	d.loopErr = nil
	done := d.done
	d.mu.Unlock()

	d.running.Store(true)
	go func() {
		defer close(done)
		err := d.loop.Run(runCtx, batches)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		d.mu.Lock()
		d.loopErr = err
		d.mu.Unlock()
	}()

	d.logger.Info("nimbus monitor started",
		logging.String("lock", d.lockPath),
		logging.String("watch_root", d.watcher.Root()),
		logging.String("journal", d.journal.Path()),
		logging.Int("courses", len(d.cfg.Courses)),
		logging.Bool("llm_fallback", d.cfg.LLM.Enabled),
	)
	return nil
}

// Done is closed when the monitor loop exits.
func (d *Daemon) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return d.done
}

// Err returns the loop's exit error, if any, after Done is closed.
func (d *Daemon) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loopErr
}

// Stop stops the watcher and loop and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := d.watcher.Close(); err != nil {
		d.logger.Warn("failed to stop watcher", logging.Error(err))
	}
	if done != nil {
		<-done
	}
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release monitor lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no monitor is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("nimbus monitor stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// LogPath returns the path to the run log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		WatchRoot:    d.watcher.Root(),
		JournalPath:  d.journal.Path(),
		LockFilePath: d.lockPath,
		LogPath:      d.logPath,
		Monitor:      d.loop.Status(),
	}
}
