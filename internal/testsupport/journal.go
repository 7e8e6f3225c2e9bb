package testsupport

import (
	"context"
	"testing"

	"nimbus/internal/config"
	"nimbus/internal/journal"
	"nimbus/internal/logging"
)

// MustOpenJournal opens the journal configured in cfg.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Journal {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	j, err := journal.Open(cfg.Paths.JournalPath, logging.NewNop())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	return j
}

// AppendAll appends every command or fails the test.
func AppendAll(t testing.TB, j *journal.Journal, cmds ...journal.Command) {
	t.Helper()

	for _, cmd := range cmds {
		if err := j.Append(context.Background(), cmd); err != nil {
			t.Fatalf("Append(%s): %v", cmd.Describe(), err)
		}
	}
}
