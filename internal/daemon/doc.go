// Package daemon coordinates the long-running nimbus monitor.
//
// It wires configuration, the command journal, the debounced watcher, the
// classifier chain and the monitor loop into a single lifecycle, holding a
// flock-based lock so only one monitor watches a download directory.
//
// Keep orchestration logic here: normalization, classification and journal
// semantics live in their own packages while the daemon focuses on startup,
// shutdown and status.
package daemon
