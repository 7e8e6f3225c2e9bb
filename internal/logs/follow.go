package logs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const followPoll = 500 * time.Millisecond

// Follow calls fn for every line appended to path after offset until ctx is
// done. File notifications wake the reader early; a slow poll covers
// filesystems that do not deliver them.
func Follow(ctx context.Context, path string, offset int64, fn func(string)) error {
	var wake <-chan fsnotify.Event
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		defer fsw.Close()
		if err := fsw.Add(filepath.Dir(path)); err == nil {
			wake = fsw.Events
		}
	}

	ticker := time.NewTicker(followPoll)
	defer ticker.Stop()

	for {
		result, err := ReadFrom(path, offset)
		if err != nil {
			return err
		}
		for _, line := range result.Lines {
			fn(line)
		}
		offset = result.Offset

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				wake = nil
			}
		}
	}
}
