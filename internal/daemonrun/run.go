package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"nimbus/internal/config"
	"nimbus/internal/daemon"
	"nimbus/internal/logging"
	"nimbus/internal/preflight"
)

// Options configures monitor process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the nimbus monitor and blocks until SIGINT/SIGTERM, cmdCtx
// cancellation, or the watcher closing.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	sessionID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("nimbus-%s.log", runID))

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		Outputs:     []string{"stderr"},
		Development: opts.Development,
		SessionID:   sessionID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	fileHandler, logFile, err := logging.NewFileHandler(logPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to open run log: %v\n", err)
		logPath = ""
	} else {
		defer logFile.Close()
		logger = logging.TeeLogger(logger, logging.WithSessionID(fileHandler, sessionID))
		if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to update nimbus.log link: %v\n", err)
		}
	}

	logConfigSnapshot(logger, cfg)
	logging.PruneRunLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logPath)
	for _, check := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldErrorHint, "run nimbus status for a full readiness report"),
			logging.String(logging.FieldImpact, "files for this course or service may fail to file"),
		)
	}
	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	d, err := daemon.New(cfg, logger, daemon.WithLogPath(logPath))
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "monitor start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.download_dir exists and is readable"),
			logging.String(logging.FieldImpact, "no downloads will be filed"),
		)
		return err
	}

	select {
	case <-signalCtx.Done():
		logger.Info("nimbus monitor shutting down")
	case <-d.Done():
		if err := d.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("watcher closed; nimbus monitor exiting")
	}
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "nimbus.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	codes := make([]string, 0, len(cfg.Courses))
	for _, course := range cfg.Courses {
		codes = append(codes, course.Name)
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("download_dir", cfg.Paths.DownloadDir),
		logging.String("base_dir", cfg.Paths.BaseDir),
		logging.String("term", cfg.Term.Current),
		logging.String("courses", strings.Join(codes, ",")),
		logging.Int("debounce_ms", cfg.Watcher.DebounceMillis),
		logging.Bool("recursive", cfg.Watcher.Recursive),
		logging.Bool("llm_enabled", cfg.LLM.Enabled),
		logging.Bool("llm_key_present", strings.TrimSpace(cfg.LLM.APIKey) != ""),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
	)
}
