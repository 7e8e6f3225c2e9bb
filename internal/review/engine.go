package review

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"nimbus/internal/fileutil"
	"nimbus/internal/history"
	"nimbus/internal/journal"
	"nimbus/internal/logging"
	"nimbus/internal/notifications"
	"nimbus/internal/services"
)

const stageReview = "review"

// Prompt is what the operator is asked about one command.
type Prompt struct {
	Index   int
	Total   int
	Command journal.Command
	// Note carries context such as "applied previously".
	Note string
}

// Text renders the prompt as a single line.
func (p Prompt) Text() string {
	text := fmt.Sprintf("[%d/%d] %s", p.Index, p.Total, p.Command.Describe())
	if p.Note != "" {
		text += " [" + p.Note + "]"
	}
	return text
}

// Confirmer asks the operator to accept or decline a command. An error
// aborts the pass.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// Journal is the subset of journal.Journal the engine needs.
type Journal interface {
	Drain(ctx context.Context) (journal.Snapshot, error)
	Release(ctx context.Context, snapshot journal.Snapshot) error
}

// History records outcomes. It is optional.
type History interface {
	Record(ctx context.Context, outcome history.Outcome) (int64, error)
	LastApplied(ctx context.Context, filePath string) (*history.Outcome, error)
}

// Failure describes a command that could not be applied.
type Failure struct {
	Command journal.Command
	Err     error
}

// Summary reports what a pass did.
type Summary struct {
	SessionID string
	Total     int
	Applied   int
	Declined  int
	NoAction  int
	Failed    int
	Malformed int
	Failures  []Failure
}

// Engine runs review passes.
type Engine struct {
	journal   Journal
	confirmer Confirmer
	history   History
	notifier  notifications.Service
	logger    *slog.Logger
	newID     func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithHistory enables outcome recording.
func WithHistory(store History) Option {
	return func(e *Engine) {
		e.history = store
	}
}

// WithNotifier sets the notification service used for the completion summary.
func WithNotifier(notifier notifications.Service) Option {
	return func(e *Engine) {
		if notifier != nil {
			e.notifier = notifier
		}
	}
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.newID = func() string { return id }
	}
}

// NewEngine builds an engine.
func NewEngine(j Journal, confirmer Confirmer, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		journal:   j,
		confirmer: confirmer,
		notifier:  notifications.NewService(nil),
		logger:    logging.NewComponentLogger(logger, "review"),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Run performs one review pass. The journal prefix is released only after
// every drained command was presented; a confirmer error returns early and
// leaves the journal as it was.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	summary := Summary{SessionID: e.newID()}
	ctx = services.WithSessionID(services.WithStage(ctx, stageReview), summary.SessionID)
	logger := logging.WithContext(ctx, e.logger)

	snapshot, err := e.journal.Drain(ctx)
	if err != nil {
		return summary, err
	}
	summary.Total = len(snapshot.Commands)
	summary.Malformed = len(snapshot.Skipped)
	if snapshot.Empty() {
		logger.Info("journal is empty; nothing to review")
		return summary, nil
	}
	logger.Info("review started",
		logging.Int("commands", summary.Total),
		logging.Int("malformed_lines", summary.Malformed),
	)

	for i, cmd := range snapshot.Commands {
		prompt := Prompt{Index: i + 1, Total: summary.Total, Command: cmd, Note: e.note(ctx, cmd)}
		accepted, err := e.confirmer.Confirm(ctx, prompt)
		if err != nil {
			logger.Info("review aborted; journal left intact",
				logging.Int("presented", i),
				logging.Error(err),
			)
			return summary, err
		}
		e.apply(services.WithEventPath(ctx, cmd.FilePath), cmd, accepted, &summary)
	}

	if err := e.journal.Release(ctx, snapshot); err != nil {
		return summary, err
	}
	logger.Info("review completed",
		logging.Int("applied", summary.Applied),
		logging.Int("declined", summary.Declined),
		logging.Int("no_action", summary.NoAction),
		logging.Int("failed", summary.Failed),
	)
	if err := e.notifier.ReviewCompleted(ctx, summary.Applied, summary.Declined, summary.Failed); err != nil {
		logging.WarnWithContext(logger, "review notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "review summary not pushed"),
		)
	}
	return summary, nil
}

func (e *Engine) apply(ctx context.Context, cmd journal.Command, accepted bool, summary *Summary) {
	outcome := history.Outcome{SessionID: summary.SessionID, Command: cmd}
	switch {
	case cmd.Action != journal.ActionMove:
		summary.NoAction++
		outcome.Result = history.ResultNoAction
	case !accepted:
		summary.Declined++
		outcome.Result = history.ResultDeclined
	default:
		newPath := filepath.Join(cmd.Destination, filepath.Base(cmd.FilePath))
		if err := fileutil.MoveNoReplace(cmd.FilePath, newPath); err != nil {
			err = services.Wrap(services.ErrApply, stageReview, "move", newPath, err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Command: cmd, Err: err})
			outcome.Result = history.ResultFailed
			outcome.Error = err.Error()
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "move failed", "apply_failed",
				logging.String("destination", newPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, applyHint(err)),
				logging.String(logging.FieldImpact, "file left in place"),
			)
			break
		}
		summary.Applied++
		outcome.Result = history.ResultApplied
		outcome.NewPath = newPath
		e.logger.Info("file moved",
			logging.String(logging.FieldEventPath, cmd.FilePath),
			logging.String("new_path", newPath),
		)
	}
	e.recordOutcome(ctx, outcome)
}

func (e *Engine) note(ctx context.Context, cmd journal.Command) string {
	if e.history == nil || cmd.Action != journal.ActionMove {
		return ""
	}
	previous, err := e.history.LastApplied(ctx, cmd.FilePath)
	if err != nil {
		e.logger.Debug("history lookup failed", logging.Error(err))
		return ""
	}
	if previous == nil {
		return ""
	}
	return "applied previously"
}

func (e *Engine) recordOutcome(ctx context.Context, outcome history.Outcome) {
	if e.history == nil {
		return
	}
	if _, err := e.history.Record(ctx, outcome); err != nil {
		logging.WarnWithContext(e.logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "outcome missing from nimbus history"),
		)
	}
}

func applyHint(err error) string {
	switch {
	case errors.Is(err, fileutil.ErrTargetExists):
		return "a file with the same name is already in the course directory"
	case errors.Is(err, fs.ErrNotExist):
		return "the file or course directory no longer exists"
	default:
		return "check permissions on the download and course directories"
	}
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt Prompt) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}
