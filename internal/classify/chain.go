package classify

import (
	"context"
	"log/slog"

	"nimbus/internal/config"
	"nimbus/internal/logging"
	"nimbus/internal/provenance"
)

// Chain runs Primary and, only on Unmatched, Fallback. A nil Fallback makes
// the chain equivalent to Primary.
type Chain struct {
	Primary  Classifier
	Fallback Classifier
	Logger   *slog.Logger
}

// NewChain builds a chain with a component logger.
func NewChain(primary, fallback Classifier, logger *slog.Logger) *Chain {
	return &Chain{
		Primary:  primary,
		Fallback: fallback,
		Logger:   logging.NewComponentLogger(logger, "classifier"),
	}
}

// Classify implements Classifier. Primary errors are returned; fallback
// errors are logged and reported as Unmatched.
func (c *Chain) Classify(ctx context.Context, candidate provenance.Candidate, courses []config.Course) (Decision, error) {
	primary := c.Primary
	if primary == nil {
		primary = CourseCode{}
	}
	decision, err := primary.Classify(ctx, candidate, courses)
	if err != nil || decision.Verdict == Matched || c.Fallback == nil {
		return decision, err
	}

	fallback, err := c.Fallback.Classify(ctx, candidate, courses)
	if err != nil {
		logging.WarnWithContext(c.logger(), "fallback classifier failed", "classify_fallback_failed",
			logging.String(logging.FieldEventPath, candidate.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the llm api key and network access"),
			logging.String(logging.FieldImpact, "file recorded as indeterminate"),
		)
		return Decision{Verdict: Unmatched}, nil
	}
	if fallback.Verdict == Matched && !knownCourse(courses, fallback.Course.Name) {
		return Decision{Verdict: Unmatched}, nil
	}
	return fallback, nil
}

func (c *Chain) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

func knownCourse(courses []config.Course, code string) bool {
	for _, course := range courses {
		if course.Name == code {
			return true
		}
	}
	return false
}
