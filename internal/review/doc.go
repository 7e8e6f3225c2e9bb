// Package review applies journaled commands after operator confirmation.
//
// A pass drains the journal, presents every command to a Confirmer, renames
// accepted moves into their course directory and finally releases the
// drained prefix of the journal. Commands appended by a running monitor
// while the pass is in progress survive the release.
//
// A pass interrupted before release leaves the journal untouched, so every
// command is presented again next time. Moves already applied are annotated
// from the history store but still re-presented; applying one again fails
// harmlessly because the source no longer exists.
package review
