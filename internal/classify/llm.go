package classify

import (
	"context"
	"errors"
	"log/slog"

	"nimbus/internal/config"
	"nimbus/internal/journal"
	"nimbus/internal/llm"
	"nimbus/internal/logging"
	"nimbus/internal/provenance"
	"nimbus/internal/textutil"
)

// CourseAsker is the subset of llm.Client used by LLMClassifier.
type CourseAsker interface {
	ClassifyCourse(ctx context.Context, fileName, url string, courses []llm.CourseOption) (llm.CourseAnswer, error)
}

// LLMClassifier asks a chat completion model to pick a course. Answers below
// MinConfidence or naming a course outside the list are Unmatched.
type LLMClassifier struct {
	asker         CourseAsker
	minConfidence float64
	logger        *slog.Logger
}

// NewLLMClassifier wraps asker.
func NewLLMClassifier(asker CourseAsker, minConfidence float64, logger *slog.Logger) *LLMClassifier {
	return &LLMClassifier{
		asker:         asker,
		minConfidence: minConfidence,
		logger:        logging.NewComponentLogger(logger, "llm-classifier"),
	}
}

// Classify implements Classifier.
func (l *LLMClassifier) Classify(ctx context.Context, candidate provenance.Candidate, courses []config.Course) (Decision, error) {
	if l == nil || l.asker == nil {
		return Decision{}, errors.New("llm classifier not configured")
	}
	if len(courses) == 0 {
		return Decision{Verdict: Unmatched}, nil
	}
	options := make([]llm.CourseOption, 0, len(courses))
	for _, course := range courses {
		options = append(options, llm.CourseOption{Code: course.Name, Description: course.Description})
	}
	answer, err := l.asker.ClassifyCourse(ctx, candidate.Name, candidate.URL, options)
	if err != nil {
		return Decision{}, err
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventPath, candidate.Path),
		logging.String(logging.FieldCourse, answer.Course),
		logging.Float64("confidence", answer.Confidence),
		logging.String(logging.FieldReason, textutil.Ellipsize(answer.Reason, 120)),
	}
	if !answer.Matched() {
		l.logger.Debug("llm found no course", logging.Args(attrs...)...)
		return Decision{Verdict: Unmatched}, nil
	}
	if answer.Confidence < l.minConfidence {
		l.logger.Info("llm answer below confidence threshold", logging.Args(append(attrs,
			logging.Float64("min_confidence", l.minConfidence))...)...)
		return Decision{Verdict: Unmatched}, nil
	}
	for _, course := range courses {
		if course.Name == answer.Course {
			l.logger.Info("llm matched course", logging.Args(attrs...)...)
			return MatchedCourse(course, journal.ReasonChatCompletion), nil
		}
	}
	logging.WarnWithContext(l.logger, "llm named an unknown course", "llm_unknown_course",
		append(attrs,
			logging.String(logging.FieldErrorHint, "the model answered outside the configured course list"),
			logging.String(logging.FieldImpact, "file recorded as indeterminate"),
		)...,
	)
	return Decision{Verdict: Unmatched}, nil
}
