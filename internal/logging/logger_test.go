package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nimbus/internal/logging"
	"nimbus/internal/services"
)

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath, logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller",
		logging.String("size", "12"),
		logging.String(logging.FieldComponent, "watcher"),
		logging.String(logging.FieldEventPath, "/dl/a b.pdf"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "INFO  watcher: message without caller") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, `caller event_path="/dl/a b.pdf" size=12`) {
		t.Fatalf("expected quoted event path ahead of other fields, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "debug",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewStampsSessionID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	logger, err := logging.New(logging.Options{
		Format:    "json",
		Level:     "info",
		Outputs:   []string{logPath},
		SessionID: "run-1",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record[logging.FieldSessionID] != "run-1" {
		t.Fatalf("expected session id, got %v", record)
	}
	if record["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewFileHandlerTeesWithConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nimbus-run.log")
	handler, file, err := logging.NewFileHandler(path, "info")
	if err != nil {
		t.Fatalf("NewFileHandler: %v", err)
	}
	defer file.Close()

	var console bytes.Buffer
	base := slog.New(slog.NewTextHandler(&console, nil))
	logger := logging.TeeLogger(base, handler)
	logger.Info("mirrored", logging.String("k", "v"))

	if !strings.Contains(console.String(), "mirrored") {
		t.Fatalf("expected console output, got %q", console.String())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"mirrored"`) {
		t.Fatalf("expected json record in run log, got %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEventPath(ctx, "/tmp/dl/a.pdf")
	ctx = services.WithStage(ctx, "classify")
	ctx = services.WithSessionID(ctx, "sess-1")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for key, want := range map[string]string{
		logging.FieldEventPath: "/tmp/dl/a.pdf",
		logging.FieldStage:     "classify",
		logging.FieldSessionID: "sess-1",
	} {
		if record[key] != want {
			t.Fatalf("field %s = %v, want %q", key, record[key], want)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "journal append failed", "journal_append_failed",
		logging.String(logging.FieldImpact, "command lost"),
	)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "journal_append_failed" {
		t.Fatalf("unexpected event type: %v", record[logging.FieldEventType])
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
	if record[logging.FieldImpact] != "command lost" {
		t.Fatalf("explicit impact should win, got %v", record[logging.FieldImpact])
	}
}

func TestPruneRunLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "nimbus-20240101.log")
	current := filepath.Join(dir, "nimbus-20240102.log")
	fresh := filepath.Join(dir, "nimbus-20990101.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, fresh, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().Add(-72 * time.Hour)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	if removed := logging.PruneRunLogs(logging.NewNop(), dir, 1, current); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{current, fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}

	if removed := logging.PruneRunLogs(nil, dir, 0, ""); removed != 0 {
		t.Fatalf("retention 0 should disable pruning, removed %d", removed)
	}
}
