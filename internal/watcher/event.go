package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the coalesced kind of change observed for a path.
type Op int

const (
	OpCreated Op = iota + 1
	OpModified
	OpRemoved
	OpRenamed
	OpAttributeChanged
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpRemoved:
		return "removed"
	case OpRenamed:
		return "renamed"
	case OpAttributeChanged:
		return "attribute_changed"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Event is one debounced change for a path.
type Event struct {
	Op   Op
	Path string
	Time time.Time
}

// Batch groups the events that settled during one tick together with any
// watch errors observed since the previous batch.
type Batch struct {
	Events []Event
	Errors []error
}

// Empty reports whether the batch carries neither events nor errors.
func (b Batch) Empty() bool {
	return len(b.Events) == 0 && len(b.Errors) == 0
}

// opFromNotify maps an fsnotify bitmask to a single Op. ok is false for
// notifications nimbus does not track.
func opFromNotify(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreated, true
	case op.Has(fsnotify.Remove):
		return OpRemoved, true
	case op.Has(fsnotify.Rename):
		return OpRenamed, true
	case op.Has(fsnotify.Write):
		return OpModified, true
	case op.Has(fsnotify.Chmod):
		return OpAttributeChanged, true
	default:
		return 0, false
	}
}

// coalesce folds next into prev. drop reports that the pair cancels out
// (a file created and removed inside one window).
func coalesce(prev, next Op) (op Op, drop bool) {
	switch next {
	case OpCreated:
		return OpCreated, false
	case OpRemoved:
		if prev == OpCreated {
			return 0, true
		}
		if prev == OpRenamed {
			return OpRenamed, false
		}
		return OpRemoved, false
	case OpRenamed:
		return OpRenamed, false
	case OpModified:
		switch prev {
		case OpCreated, OpRenamed:
			return prev, false
		default:
			return OpModified, false
		}
	default:
		return prev, false
	}
}
