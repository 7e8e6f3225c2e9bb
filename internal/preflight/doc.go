// Package preflight provides readiness checks for the directories and
// external services nimbus depends on.
//
// These checks run in two contexts:
//   - The monitor runs RunAll at startup and logs every failed check as a
//     warning, so a missing course folder is visible before the first
//     download is journaled.
//   - The CLI "nimbus status" command renders the same results next to a
//     probe of the running monitor.
//
// Each service check is gated by its config toggle; disabled features are
// skipped.
package preflight
