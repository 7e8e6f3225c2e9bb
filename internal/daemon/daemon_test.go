package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nimbus/internal/daemon"
	"nimbus/internal/journal"
	"nimbus/internal/logging"
	"nimbus/internal/provenance"
	"nimbus/internal/services"
	"nimbus/internal/testsupport"
)

// urlReader reports a learn.uwaterloo.ca origin for every file.
func urlReader() provenance.Reader {
	return provenance.ReaderFunc(func(path string) (provenance.Attribute, bool, error) {
		url := "https://learn.uwaterloo.ca/d2l/" + filepath.Base(path)
		return provenance.Attribute{Name: provenance.XDGOriginAttr, Data: []byte(url), Encoding: provenance.EncodingURL}, true, nil
	})
}

func waitForCommands(t *testing.T, j *journal.Journal, want int) []journal.Command {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snapshot, err := j.Drain(context.Background())
		if err != nil {
			t.Fatalf("Drain: %v", err)
		}
		if len(snapshot.Commands) >= want {
			return snapshot.Commands
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d commands", want)
	return nil
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, logging.NewNop(), daemon.WithAttributeReader(urlReader()))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := d.Status()
	if !status.Running || status.WatchRoot != cfg.Paths.DownloadDir {
		t.Fatalf("unexpected status %+v", status)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	testsupport.WriteDownload(t, filepath.Join(cfg.Paths.DownloadDir, "CS246_a1.pdf"))
	commands := waitForCommands(t, testsupport.MustOpenJournal(t, cfg), 1)
	if commands[0].Action != journal.ActionMove || commands[0].Destination != cfg.CourseDir(cfg.Courses[0]) {
		t.Fatalf("unexpected command %+v", commands[0])
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	select {
	case <-d.Done():
	default:
		t.Fatal("expected loop to have exited")
	}
	if err := d.Err(); err != nil {
		t.Fatalf("unexpected loop error: %v", err)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = first.Close() })
	second, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = second.Close() })

	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestDaemonMissingWatchRootIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.RemoveAll(cfg.Paths.DownloadDir); err != nil {
		t.Fatal(err)
	}
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = d.Close() })

	err = d.Start(context.Background())
	if !errors.Is(err, services.ErrFatalSetup) {
		t.Fatalf("expected ErrFatalSetup, got %v", err)
	}
	if d.Status().Running {
		t.Fatal("daemon should not report running")
	}

	// The lock must have been released.
	other, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.DownloadDir, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = other.Close() })
	if err := other.Start(context.Background()); err != nil {
		t.Fatalf("start after failed start: %v", err)
	}
}
