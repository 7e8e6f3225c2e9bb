// Package services defines shared utilities consumed by the monitor pipeline
// and the review pass.
//
// Key responsibilities:
//   - Context helpers that stamp the watched file path and the review session
//     identifier for logging.
//   - Structured error markers plus the Wrap helper that tag failures with the
//     class the caller reacts to (fatal setup, per-event, journal, apply).
//
// Use these helpers when wiring new pipeline steps so operational behaviour
// (error handling, observability) stays uniform across the monitor and review.
package services
