// Package prompt provides the review confirmers: an interactive Yes/No
// selector for terminals, a line-based fallback for pipes and an automatic
// confirmer for --assume-yes.
package prompt
