// Package history persists review outcomes in SQLite.
//
// Every command presented during `nimbus review` produces one row recording
// what the operator decided and whether the rename succeeded. The review
// engine consults LastApplied to annotate commands whose file was already
// moved in an earlier pass, and `nimbus history` lists recent rows.
package history
