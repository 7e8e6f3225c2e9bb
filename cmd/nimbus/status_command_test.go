package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"nimbus/internal/journal"
	"nimbus/internal/testsupport"
)

func TestStatusReportsPendingAndChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	j := testsupport.MustOpenJournal(t, env.cfg)
	testsupport.AppendAll(t, j, journal.Indeterminate(filepath.Join(env.cfg.Paths.DownloadDir, "a.bin")))

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Monitor: Not running")
	requireContains(t, out, "Pending commands: 1")
	requireContains(t, out, "Course CS246")

	out, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Monitor.Running || report.Pending != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, check := range report.Checks {
		if !check.Passed {
			t.Errorf("check %s failed: %s", check.Name, check.Detail)
		}
	}
}

func TestLogsShowsCurrentRunLog(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"logs"}, env.configPath); err == nil {
		t.Fatal("expected error before any monitor run")
	}

	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	runLog := filepath.Join(env.cfg.Paths.LogDir, "nimbus-20260101T000000.000Z.log")
	if err := os.WriteFile(runLog, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(runLog, filepath.Join(env.cfg.Paths.LogDir, "nimbus.log")); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "second\nthird\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stop"}, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Monitor is not running")
}
