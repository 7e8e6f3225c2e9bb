package monitor

import (
	"fmt"
	"time"

	"nimbus/internal/journal"
)

// State is the loop lifecycle state.
type State int

const (
	StateIdle State = iota
	StateWatching
	StateDispatching
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateDispatching:
		return "dispatching"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StatusSummary is a point-in-time view of the loop.
type StatusSummary struct {
	State        State
	Events       int
	Recorded     int
	Ignored      int
	Failed       int
	LastError    string
	LastCommand  *journal.Command
	LastActivity time.Time
}

// Status returns the latest loop counters.
func (l *Loop) Status() StatusSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	summary := l.status
	if l.status.LastCommand != nil {
		cmd := *l.status.LastCommand
		summary.LastCommand = &cmd
	}
	return summary
}

func (l *Loop) setState(state State) {
	l.mu.Lock()
	l.status.State = state
	l.mu.Unlock()
}

func (l *Loop) record(update func(*StatusSummary)) {
	l.mu.Lock()
	update(&l.status)
	l.status.LastActivity = l.now()
	l.mu.Unlock()
}
