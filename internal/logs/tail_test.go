package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"nimbus/internal/logs"
)

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nimbus-run.log")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	result, err := logs.Tail(path, 2)
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, result.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if result.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", result.Offset)
	}
}

func TestTailShortFileAndPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nimbus-run.log")
	if err := os.WriteFile(path, []byte("one\ntwo"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	result, err := logs.Tail(path, 10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if diff := cmp.Diff([]string{"one"}, result.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if result.Offset != 4 {
		t.Fatalf("partial line should not advance the offset, got %d", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestReadFromRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nimbus-run.log")
	if err := os.WriteFile(path, []byte("fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := logs.ReadFrom(path, 1000)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if diff := cmp.Diff([]string{"fresh"}, result.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestCurrentResolvesPointer(t *testing.T) {
	dir := t.TempDir()
	if _, err := logs.Current(dir); !errors.Is(err, logs.ErrNoLog) {
		t.Fatalf("expected ErrNoLog, got %v", err)
	}

	target := filepath.Join(dir, "nimbus-20260101T000000.000Z.log")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "nimbus.log")); err != nil {
		t.Fatal(err)
	}
	got, err := logs.Current(dir)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	want, _ := filepath.EvalSymlinks(target)
	if got != want {
		t.Fatalf("Current = %q, want %q", got, want)
	}
}

func TestFollowDeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nimbus-run.log")
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	start, err := logs.Tail(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, start.Offset, func(line string) {
			mu.Lock()
			seen = append(seen, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		got := append([]string(nil), seen...)
		mu.Unlock()
		if len(got) == 1 {
			if got[0] != "later" {
				t.Fatalf("unexpected line %q", got[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("follow did not deliver appended line, saw %v", got)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
