// Package monitor turns debounced watcher batches into journal commands.
//
// A single Loop consumes batches sequentially so journal order matches event
// arrival order. Each event is normalized, classified and recorded as exactly
// one command. Per-event failures are logged and the event is dropped; the
// loop only stops when its context is cancelled or the batch channel closes.
package monitor
