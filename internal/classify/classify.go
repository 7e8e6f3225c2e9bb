package classify

import (
	"context"
	"fmt"

	"nimbus/internal/config"
	"nimbus/internal/journal"
	"nimbus/internal/provenance"
)

// Verdict is the outcome of a classification.
type Verdict int

const (
	Unmatched Verdict = iota
	Matched
)

func (v Verdict) String() string {
	switch v {
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Decision is a classification result. Course and Reason are only meaningful
// when Verdict is Matched.
type Decision struct {
	Verdict Verdict
	Course  config.Course
	Reason  journal.Reason
}

// MatchedCourse builds a Matched decision.
func MatchedCourse(course config.Course, reason journal.Reason) Decision {
	return Decision{Verdict: Matched, Course: course, Reason: reason}
}

// Classifier maps a candidate to a course from an ordered course list.
type Classifier interface {
	Classify(ctx context.Context, candidate provenance.Candidate, courses []config.Course) (Decision, error)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, candidate provenance.Candidate, courses []config.Course) (Decision, error)

// Classify implements Classifier.
func (f Func) Classify(ctx context.Context, candidate provenance.Candidate, courses []config.Course) (Decision, error) {
	return f(ctx, candidate, courses)
}
