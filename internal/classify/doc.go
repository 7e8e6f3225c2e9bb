// Package classify decides which configured course a downloaded file belongs
// to.
//
// CourseCode is the primary heuristic: cheap, explainable and deterministic.
// Chain runs a second, costlier classifier (LLMClassifier) only when the
// primary stage finds nothing, and turns any failure of that second stage
// into Unmatched so a flaky network never stops the monitor.
package classify
