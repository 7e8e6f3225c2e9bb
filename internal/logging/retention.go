package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RunLogPattern matches the per-run log files the monitor writes.
const RunLogPattern = "nimbus-*.log"

// PruneRunLogs deletes run logs in dir last modified more than retentionDays
// ago, never touching keep (normally the current run's log). It returns how
// many files were removed; retentionDays <= 0 disables pruning.
func PruneRunLogs(logger *slog.Logger, dir string, retentionDays int, keep string) int {
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	return pruneBefore(logger, dir, time.Now().AddDate(0, 0, -retentionDays), keep)
}

func pruneBefore(logger *slog.Logger, dir string, cutoff time.Time, keep string) int {
	matches, err := filepath.Glob(filepath.Join(dir, RunLogPattern))
	if err != nil {
		return 0
	}
	if keep != "" {
		if abs, err := filepath.Abs(keep); err == nil {
			keep = abs
		}
	}

	removed := 0
	for _, path := range matches {
		if abs, err := filepath.Abs(path); err == nil && abs == keep {
			continue
		}
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "old run log not removed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check ownership of log_dir"),
				String(FieldImpact, "old run log stays on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("run log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return removed
}
