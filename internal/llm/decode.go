package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nimbus/internal/textutil"
)

// DecodeLLMJSON unmarshals a model answer into target. Models sometimes wrap
// the object in a ```json fence or a sentence; both are tolerated.
func DecodeLLMJSON(content string, target any) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(content), target)
	if err == nil {
		return nil
	}
	object, ok := outermostObject(content)
	if !ok || object == content {
		return fmt.Errorf("%w (payload snippet: %s)", err, summarizePayloadSnippet(content))
	}
	if err := json.Unmarshal([]byte(object), target); err != nil {
		return fmt.Errorf("%w (extracted object: %s)", err, summarizePayloadSnippet(object))
	}
	return nil
}

// outermostObject returns the text from the first '{' to the last '}' after
// dropping a markdown code fence.
func outermostObject(content string) (string, bool) {
	if body, ok := strings.CutPrefix(content, "```"); ok {
		body = strings.TrimPrefix(strings.TrimLeft(body, " \t"), "json")
		if end := strings.LastIndex(body, "```"); end >= 0 {
			body = body[:end]
		}
		content = strings.TrimSpace(body)
	}
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	return textutil.Ellipsize(clean, 160)
}
