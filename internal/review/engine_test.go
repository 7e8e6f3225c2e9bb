package review

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nimbus/internal/history"
	"nimbus/internal/journal"
	"nimbus/internal/logging"
	"nimbus/internal/services"
	"nimbus/internal/testsupport"
)

type scriptedConfirmer struct {
	answers []bool
	abortAt int
	prompts []Prompt
}

func (s *scriptedConfirmer) Confirm(_ context.Context, prompt Prompt) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	if s.abortAt > 0 && len(s.prompts) == s.abortAt {
		return false, errors.New("interrupted")
	}
	if len(s.answers) == 0 {
		return true, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func writeDownload(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteDownload(t, path)
	return path
}

func TestRunAppliesAcceptedMoves(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCourseDirs())
	j := testsupport.MustOpenJournal(t, cfg)
	courseDir := cfg.CourseDir(cfg.Courses[0])
	accepted := writeDownload(t, cfg.Paths.DownloadDir, "CS246_a1.pdf")
	declined := writeDownload(t, cfg.Paths.DownloadDir, "CS246_a2.pdf")
	testsupport.AppendAll(t, j,
		journal.Move(accepted, courseDir, journal.ReasonCourseCode),
		journal.Move(declined, courseDir, journal.ReasonCourseCode),
		journal.Indeterminate(filepath.Join(cfg.Paths.DownloadDir, "receipt.pdf")),
	)

	confirmer := &scriptedConfirmer{answers: []bool{true, false, true}}
	summary, err := NewEngine(j, confirmer, logging.NewNop(), WithSessionID("session-1")).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Applied != 1 || summary.Declined != 1 || summary.NoAction != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.SessionID != "session-1" {
		t.Fatalf("session id = %q", summary.SessionID)
	}
	if _, err := os.Stat(filepath.Join(courseDir, "CS246_a1.pdf")); err != nil {
		t.Fatalf("expected moved file: %v", err)
	}
	if _, err := os.Stat(declined); err != nil {
		t.Fatalf("declined file should stay: %v", err)
	}
	if got := confirmer.prompts[2].Text(); !strings.HasPrefix(got, "[3/3] Indeterminate") {
		t.Fatalf("unexpected prompt text %q", got)
	}

	snapshot, err := j.Drain(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !snapshot.Empty() {
		t.Fatalf("journal should be empty after review, got %+v", snapshot.Commands)
	}
}

func TestRunContinuesAfterApplyFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	missingParent := writeDownload(t, cfg.Paths.DownloadDir, "CS246_a1.pdf")
	ok := writeDownload(t, cfg.Paths.DownloadDir, "MATH239_a1.pdf")
	mathDir := cfg.CourseDir(cfg.Courses[1])
	if err := os.MkdirAll(mathDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.AppendAll(t, j,
		journal.Move(missingParent, cfg.CourseDir(cfg.Courses[0]), journal.ReasonCourseCode),
		journal.Move(ok, mathDir, journal.ReasonCourseCode),
	)

	summary, err := NewEngine(j, &scriptedConfirmer{}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Applied != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	failure := summary.Failures[0].Err
	if !errors.Is(failure, services.ErrApply) || !errors.Is(failure, fs.ErrNotExist) {
		t.Fatalf("expected ErrApply wrapping not-exist, got %v", failure)
	}
	if _, err := os.Stat(missingParent); err != nil {
		t.Fatalf("source should remain after failed move: %v", err)
	}
}

func TestRunRefusesToOverwrite(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCourseDirs())
	j := testsupport.MustOpenJournal(t, cfg)
	courseDir := cfg.CourseDir(cfg.Courses[0])
	src := writeDownload(t, cfg.Paths.DownloadDir, "CS246_a1.pdf")
	existing := writeDownload(t, courseDir, "CS246_a1.pdf")
	testsupport.AppendAll(t, j, journal.Move(src, courseDir, journal.ReasonCourseCode))

	summary, err := NewEngine(j, &scriptedConfirmer{}, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected failure, got %+v", summary)
	}
	for _, path := range []string{src, existing} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should still exist: %v", path, err)
		}
	}
}

func TestRunAbortLeavesJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCourseDirs())
	j := testsupport.MustOpenJournal(t, cfg)
	courseDir := cfg.CourseDir(cfg.Courses[0])
	first := writeDownload(t, cfg.Paths.DownloadDir, "CS246_a1.pdf")
	second := writeDownload(t, cfg.Paths.DownloadDir, "CS246_a2.pdf")
	cmds := []journal.Command{
		journal.Move(first, courseDir, journal.ReasonCourseCode),
		journal.Move(second, courseDir, journal.ReasonCourseCode),
	}
	testsupport.AppendAll(t, j, cmds...)

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = NewEngine(j, &scriptedConfirmer{abortAt: 2}, nil, WithHistory(store)).Run(context.Background())
	if err == nil {
		t.Fatal("expected abort error")
	}
	snapshot, err := j.Drain(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Commands) != 2 {
		t.Fatalf("journal should be intact after abort, got %d commands", len(snapshot.Commands))
	}

	// The first move was applied before the abort; the next pass re-presents it
	// with a note and the repeated rename fails on the missing source.
	confirmer := &scriptedConfirmer{}
	summary, err := NewEngine(j, confirmer, nil, WithHistory(store)).Run(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if confirmer.prompts[0].Note != "applied previously" || confirmer.prompts[1].Note != "" {
		t.Fatalf("unexpected notes %q %q", confirmer.prompts[0].Note, confirmer.prompts[1].Note)
	}
	if summary.Applied != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	recent, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(recent))
	}
}

func TestRunKeepsCommandsAppendedDuringReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	early := journal.Indeterminate(filepath.Join(cfg.Paths.DownloadDir, "a.bin"))
	late := journal.Indeterminate(filepath.Join(cfg.Paths.DownloadDir, "b.bin"))
	testsupport.AppendAll(t, j, early)

	confirmer := ConfirmFunc(func(ctx context.Context, _ Prompt) (bool, error) {
		return true, j.Append(ctx, late)
	})
	if _, err := NewEngine(j, confirmer, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snapshot, err := j.Drain(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Commands) != 1 || snapshot.Commands[0] != late {
		t.Fatalf("expected late command to survive, got %+v", snapshot.Commands)
	}
}

func TestRunEmptyJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	j := testsupport.MustOpenJournal(t, cfg)
	confirmer := &scriptedConfirmer{}
	summary, err := NewEngine(j, confirmer, nil).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 0 || len(confirmer.prompts) != 0 {
		t.Fatalf("expected nothing presented, got %+v", summary)
	}
}
