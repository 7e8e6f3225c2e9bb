// Package logs reads monitor run logs for the CLI.
//
// Tail returns the last N lines of a log with bounded memory, and Follow
// streams lines appended after an offset until the context ends. Current
// resolves the nimbus.log pointer the monitor maintains in log_dir.
package logs
