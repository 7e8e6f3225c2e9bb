package journal

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"nimbus/internal/fileutil"
	"nimbus/internal/logging"
	"nimbus/internal/services"
	"nimbus/internal/textutil"
)

const (
	stageJournal   = "journal"
	lockRetryDelay = 50 * time.Millisecond
)

// LineError describes a journal line that could not be decoded.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Snapshot is the result of a drain: the decoded commands plus enough state
// to later release exactly the consumed prefix.
type Snapshot struct {
	Commands []Command
	Skipped  []LineError
	Offset   int64
	digest   [sha256.Size]byte
}

// Empty reports whether the drain found nothing to review.
func (s Snapshot) Empty() bool {
	return len(s.Commands) == 0 && len(s.Skipped) == 0
}

// Journal is a JSON-lines command log guarded by an advisory file lock.
type Journal struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	mu     sync.Mutex
}

// Open returns a Journal for path, creating the parent directory if needed.
// The journal file itself is created lazily by the first append.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageJournal, "open", "journal path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrJournalIO, stageJournal, "open", "create journal directory", err)
	}
	return &Journal{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "journal"),
	}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Append writes cmd as one line and syncs it to disk before returning.
func (j *Journal) Append(ctx context.Context, cmd Command) error {
	line, err := json.Marshal(cmd)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageJournal, "append", "encode command", err)
	}
	line = append(line, '\n')

	unlock, err := j.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return services.Wrap(services.ErrJournalIO, stageJournal, "append", "open journal", err)
	}
	defer file.Close()

	torn, err := endsWithoutNewline(file)
	if err != nil {
		return services.Wrap(services.ErrJournalIO, stageJournal, "append", "inspect journal tail", err)
	}
	if torn {
		line = append([]byte{'\n'}, line...)
	}
	if _, err := file.Write(line); err != nil {
		return services.Wrap(services.ErrJournalIO, stageJournal, "append", "write command", err)
	}
	if err := file.Sync(); err != nil {
		return services.Wrap(services.ErrJournalIO, stageJournal, "append", "sync journal", err)
	}
	j.logger.Debug("command journaled",
		logging.String("action", cmd.Action.String()),
		logging.String("file_path", cmd.FilePath),
		logging.String(logging.FieldEventType, "journal_append"),
	)
	return nil
}

// Drain reads every well-formed command in order. Malformed lines are logged,
// reported in Snapshot.Skipped, and never abort the drain. A missing journal
// drains as empty.
func (j *Journal) Drain(ctx context.Context) (Snapshot, error) {
	unlock, err := j.acquire(ctx, false)
	if err != nil {
		return Snapshot{}, err
	}
	defer unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{digest: sha256.Sum256(nil)}, nil
		}
		return Snapshot{}, services.Wrap(services.ErrJournalIO, stageJournal, "drain", "read journal", err)
	}

	snapshot := Snapshot{Offset: int64(len(data)), digest: sha256.Sum256(data)}
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		var raw []byte
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			raw, data = data[:idx], data[idx+1:]
		} else {
			raw, data = data, nil
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			lineErr := LineError{Line: lineNo, Text: string(raw), Err: err}
			snapshot.Skipped = append(snapshot.Skipped, lineErr)
			logging.WarnWithContext(j.logger, "journal line skipped", "journal_line_malformed",
				logging.Int("line", lineNo),
				logging.String("text", textutil.Ellipsize(string(raw), 120)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect or remove the line with `nimbus journal list`"),
				logging.String(logging.FieldImpact, "the command on this line will not be reviewed"),
			)
			continue
		}
		snapshot.Commands = append(snapshot.Commands, cmd)
	}
	return snapshot, nil
}

// Clear replaces the journal with an empty file.
func (j *Journal) Clear(ctx context.Context) error {
	unlock, err := j.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := fileutil.WriteAtomic(j.path, nil, 0o644); err != nil {
		return services.Wrap(services.ErrJournalIO, stageJournal, "clear", "truncate journal", err)
	}
	return nil
}

// Release removes the prefix consumed by snapshot and keeps any commands
// appended after the drain. It fails if the drained prefix changed.
func (j *Journal) Release(ctx context.Context, snapshot Snapshot) error {
	unlock, err := j.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && snapshot.Offset == 0 {
			return nil
		}
		return services.Wrap(services.ErrJournalIO, stageJournal, "release", "read journal", err)
	}
	if int64(len(data)) < snapshot.Offset || sha256.Sum256(data[:snapshot.Offset]) != snapshot.digest {
		return services.Wrap(services.ErrJournalIO, stageJournal, "release", "journal changed since drain", nil)
	}
	tail := data[snapshot.Offset:]
	if err := fileutil.WriteAtomic(j.path, tail, 0o644); err != nil {
		return services.Wrap(services.ErrJournalIO, stageJournal, "release", "rewrite journal", err)
	}
	if len(tail) > 0 {
		j.logger.Info("journal released with pending commands",
			logging.Int("pending_bytes", len(tail)),
			logging.String(logging.FieldEventType, "journal_release_partial"),
		)
	}
	return nil
}

func (j *Journal) acquire(ctx context.Context, exclusive bool) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	j.mu.Lock()
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = j.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = j.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil || !locked {
		j.mu.Unlock()
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return nil, services.Wrap(services.ErrJournalIO, stageJournal, "lock", "acquire journal lock", err)
	}
	return func() {
		if err := j.lock.Unlock(); err != nil {
			j.logger.Debug("journal unlock failed", logging.Error(err))
		}
		j.mu.Unlock()
	}, nil
}

func endsWithoutNewline(file *os.File) (bool, error) {
	info, err := file.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return last[0] != '\n', nil
}
