package monitor

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"nimbus/internal/classify"
	"nimbus/internal/config"
	"nimbus/internal/journal"
	"nimbus/internal/logging"
	"nimbus/internal/notifications"
	"nimbus/internal/provenance"
	"nimbus/internal/services"
	"nimbus/internal/watcher"
)

const (
	stageClassify = "classify"
	stageJournal  = "journal"
)

// Normalizer turns a watcher event into a provenance candidate.
type Normalizer interface {
	Normalize(event watcher.Event) (provenance.Candidate, bool, error)
}

// Appender persists commands.
type Appender interface {
	Append(ctx context.Context, cmd journal.Command) error
}

// Loop consumes watcher batches and journals one command per candidate file.
type Loop struct {
	cfg        *config.Config
	normalizer Normalizer
	classifier classify.Classifier
	journal    Appender
	notifier   notifications.Service
	logger     *slog.Logger
	now        func() time.Time

	mu     sync.RWMutex
	status StatusSummary
}

// Option customizes a Loop.
type Option func(*Loop)

// WithNotifier sets the notification service. The default is a no-op.
func WithNotifier(notifier notifications.Service) Option {
	return func(l *Loop) {
		if notifier != nil {
			l.notifier = notifier
		}
	}
}

// WithClock overrides the clock used for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoop wires a loop from its collaborators.
func NewLoop(cfg *config.Config, normalizer Normalizer, classifier classify.Classifier, appender Appender, logger *slog.Logger, opts ...Option) *Loop {
	if classifier == nil {
		classifier = classify.CourseCode{}
	}
	loop := &Loop{
		cfg:        cfg,
		normalizer: normalizer,
		classifier: classifier,
		journal:    appender,
		notifier:   notifications.NewService(nil),
		logger:     logging.NewComponentLogger(logger, "monitor"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(loop)
	}
	return loop
}

// Run processes batches until ctx is cancelled or batches is closed. It only
// returns ctx.Err() on cancellation; per-event failures never end the loop.
func (l *Loop) Run(ctx context.Context, batches <-chan watcher.Batch) error {
	l.setState(StateWatching)
	defer l.setState(StateStopped)
	l.logger.Info("monitor loop started", logging.Int("courses", len(l.cfg.Courses)))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("monitor loop stopping", logging.String("reason", "context cancelled"))
			return ctx.Err()
		case batch, ok := <-batches:
			if !ok {
				l.logger.Info("monitor loop stopping", logging.String("reason", "watcher closed"))
				return nil
			}
			l.setState(StateDispatching)
			l.dispatch(ctx, batch)
			l.setState(StateWatching)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, batch watcher.Batch) {
	for _, err := range batch.Errors {
		logging.WarnWithContext(l.logger, "watcher reported an error", "watch_error",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check inotify limits and download directory permissions"),
			logging.String(logging.FieldImpact, "some file changes may have been missed"),
		)
	}
	for _, event := range batch.Events {
		if ctx.Err() != nil {
			return
		}
		eventCtx := services.WithEventPath(ctx, event.Path)
		if _, _, err := l.HandleEvent(eventCtx, event); err != nil {
			l.record(func(s *StatusSummary) {
				s.Failed++
				s.LastError = err.Error()
			})
			logging.WarnWithContext(logging.WithContext(eventCtx, l.logger), "event dropped", "event_dropped",
				logging.String("op", event.Op.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, errorHint(err)),
				logging.String(logging.FieldImpact, "no command recorded for this file"),
			)
		}
	}
}

// HandleEvent runs one event through normalize, classify and append. ok is
// false when the event was ignored.
func (l *Loop) HandleEvent(ctx context.Context, event watcher.Event) (journal.Command, bool, error) {
	l.record(func(s *StatusSummary) { s.Events++ })

	candidate, ok, err := l.normalizer.Normalize(event)
	if err != nil {
		return journal.Command{}, false, err
	}
	if !ok {
		l.record(func(s *StatusSummary) { s.Ignored++ })
		return journal.Command{}, false, nil
	}

	decision, err := l.classifier.Classify(services.WithStage(ctx, stageClassify), candidate, l.cfg.Courses)
	if err != nil {
		return journal.Command{}, false, services.Wrap(services.ErrTransientEvent, stageClassify, "classify", candidate.Name, err)
	}
	cmd := l.commandFor(candidate, decision)

	if err := l.journal.Append(services.WithStage(ctx, stageJournal), cmd); err != nil {
		return journal.Command{}, false, err
	}
	l.record(func(s *StatusSummary) {
		s.Recorded++
		s.LastCommand = &cmd
	})
	l.logger.Info("command recorded",
		logging.String(logging.FieldEventPath, cmd.FilePath),
		logging.String("action", cmd.Action.String()),
		logging.String("destination", cmd.Destination),
		logging.String(logging.FieldReason, cmd.Reason.String()),
	)

	if err := l.notifier.CommandRecorded(ctx, cmd); err != nil {
		logging.WarnWithContext(l.logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "command recorded without a push notification"),
		)
	}
	return cmd, true, nil
}

func (l *Loop) commandFor(candidate provenance.Candidate, decision classify.Decision) journal.Command {
	if decision.Verdict != classify.Matched {
		return journal.Indeterminate(candidate.Path)
	}
	dest := l.cfg.CourseDir(decision.Course)
	if filepath.Clean(filepath.Dir(candidate.Path)) == filepath.Clean(dest) {
		return journal.Skip(candidate.Path, decision.Reason)
	}
	return journal.Move(candidate.Path, dest, decision.Reason)
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrDecodeFailed):
		return "the download origin attribute is not a valid property list"
	case errors.Is(err, services.ErrJournalIO):
		return "check journal_path permissions and free disk space"
	default:
		return "check logs for details"
	}
}
