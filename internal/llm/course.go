package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NoCourse is the answer the model gives when no course fits.
const NoCourse = "NONE"

// CourseClassificationPrompt instructs the model to pick one configured
// course for a downloaded file.
const CourseClassificationPrompt = `You decide whether a downloaded file belongs to one of a student's courses.
You receive the file name, the URL it was downloaded from, and the list of courses as code and description.
A URL on learn.uwaterloo.ca almost always means the file is course material.
Respond with JSON only: {"course": "<course code from the list or NONE>", "confidence": <0..1>, "reason": "<short explanation>"}.
Answer NONE when the file does not clearly belong to a listed course.`

// CourseOption is one course offered to the model.
type CourseOption struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// CourseAnswer is the model's course choice.
type CourseAnswer struct {
	Course     string  `json:"course"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Raw        string  `json:"-"`
}

// Matched reports whether the model named a course rather than NONE.
func (a CourseAnswer) Matched() bool {
	return a.Course != "" && a.Course != NoCourse
}

type courseRequest struct {
	FileName string         `json:"file_name"`
	URL      string         `json:"url"`
	Courses  []CourseOption `json:"courses"`
}

// ClassifyCourse asks the model which course fileName belongs to.
func (c *Client) ClassifyCourse(ctx context.Context, fileName, url string, courses []CourseOption) (CourseAnswer, error) {
	var empty CourseAnswer
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return empty, errors.New("llm classify: file name required")
	}
	if len(courses) == 0 {
		return empty, errors.New("llm classify: at least one course required")
	}
	prompt, err := json.Marshal(courseRequest{FileName: fileName, URL: strings.TrimSpace(url), Courses: courses})
	if err != nil {
		return empty, fmt.Errorf("llm classify: encode prompt: %w", err)
	}
	content, err := c.CompleteJSON(ctx, CourseClassificationPrompt, string(prompt))
	if err != nil {
		return empty, err
	}
	var parsed CourseAnswer
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return empty, fmt.Errorf("llm classify: parse payload: %w", err)
	}
	parsed.Raw = content
	parsed.Course = strings.ToUpper(strings.Join(strings.Fields(parsed.Course), ""))
	if parsed.Course == "" {
		parsed.Course = NoCourse
	}
	parsed.Confidence = min(max(parsed.Confidence, 0), 1)
	parsed.Reason = strings.TrimSpace(parsed.Reason)
	return parsed, nil
}
