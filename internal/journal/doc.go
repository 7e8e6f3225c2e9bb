// Package journal persists proposed filing commands as JSON lines.
//
// The monitor appends one Command per classified download; the review pass
// drains the file, applies what the operator confirms, and then releases the
// drained prefix. Every operation takes an advisory lock on a sibling
// "<journal>.lock" file so a running monitor and a review invocation can share
// the journal safely. Appends are a single write followed by fsync; a line
// that fails to decode is reported and skipped instead of aborting a drain.
package journal
