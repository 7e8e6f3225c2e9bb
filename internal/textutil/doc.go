// Package textutil provides the small text helpers shared by classification
// and terminal rendering.
//
// The primary use cases are:
//   - Normalizing downloaded file names to NFC and stripping whitespace before
//     course-code matching (macOS stores names decomposed)
//   - Normalizing course codes to their canonical uppercase form
//   - Shortening long paths and URLs for prompts and tables
package textutil
