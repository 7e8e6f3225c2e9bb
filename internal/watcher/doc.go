// Package watcher turns raw fsnotify notifications into debounced batches.
//
// A single goroutine owns the fsnotify handle and a ticker. Notifications are
// coalesced per path until the path has been quiet for the debounce window,
// then delivered in first-seen order on a bounded channel. The consumer
// applies back-pressure simply by not reading. Notification errors travel in
// the next batch and never stop the watch; failing to establish the watch is
// reported from Start as services.ErrFatalSetup.
package watcher
