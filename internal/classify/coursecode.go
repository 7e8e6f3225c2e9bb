package classify

import (
	"context"
	"strings"

	"nimbus/internal/config"
	"nimbus/internal/journal"
	"nimbus/internal/provenance"
	"nimbus/internal/textutil"
)

// CourseCode matches a course when the whitespace-stripped file name or the
// raw origin URL contains the course code. The first course in list order
// wins.
type CourseCode struct{}

// Classify implements Classifier. It never returns an error.
func (CourseCode) Classify(_ context.Context, candidate provenance.Candidate, courses []config.Course) (Decision, error) {
	name := textutil.CompactName(candidate.Name)
	for _, course := range courses {
		if course.Name == "" {
			continue
		}
		if strings.Contains(name, course.Name) || strings.Contains(candidate.URL, course.Name) {
			return MatchedCourse(course, journal.ReasonCourseCode), nil
		}
	}
	return Decision{Verdict: Unmatched}, nil
}
