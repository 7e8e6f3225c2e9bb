// Package provenance recovers the URL a file was downloaded from.
//
// Browsers record the origin in an extended attribute: a binary property list
// array under com.apple.metadata:kMDItemWhereFroms on macOS, and a plain
// user.xdg.origin.url string on Linux. XattrReader reads whichever attribute
// the platform provides, DecodeWhereFroms parses the plist form, and
// Normalizer turns a debounced watcher event into a Candidate for
// classification. Nothing in this package writes to the filesystem.
package provenance
