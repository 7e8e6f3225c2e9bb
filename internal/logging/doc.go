// Package logging assembles the slog loggers nimbus uses.
//
// New builds the console or JSON logger for a command or monitor run.
// NewFileHandler and TeeLogger mirror monitor output into the per-run JSON
// log, WithSessionID stamps run or review session ids, and PruneRunLogs
// enforces logging.retention_days. WarnWithContext and ErrorWithContext keep
// warning records queryable by event_type with an operator hint attached.
package logging
