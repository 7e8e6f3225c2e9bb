// Package notifications delivers monitor and review events via ntfy.
//
// The default implementation publishes to the ntfy topic URL configured in
// config.toml and degrades to a no-op when no topic is set. Per-event toggles
// let operators hear only about files that need a manual decision.
//
// Callers treat delivery as best effort: a failed notification is logged and
// never affects journaling or review.
package notifications
