package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type chatRequest struct {
	Model          string            `json:"model,omitempty"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatChoice struct {
	Message chatReply `json:"message"`
	// Some providers answer with the streaming shape even when stream=false.
	Delta        chatReply `json:"delta"`
	Text         string    `json:"text"`
	FinishReason string    `json:"finish_reason"`
}

type chatReply struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, e.Body)
}

type emptyContentError struct {
	Op           string
	FinishReason string
	Refusal      string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.Op, e.FinishReason, e.Refusal, e.Snippet)
}

// complete sends req until it yields content or the retry policy gives up.
func (c *Client) complete(ctx context.Context, op string, req chatRequest) (string, error) {
	var err error
	attempt := 1
	for ; ; attempt++ {
		var content string
		content, err = c.attempt(ctx, op, req)
		if err == nil {
			return content, nil
		}
		delay, again := c.retry.next(ctx, err, attempt)
		if !again {
			break
		}
		if waitErr := c.retry.wait(ctx, delay); waitErr != nil {
			return "", waitErr
		}
	}
	if attempt == 1 {
		return "", err
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempt, err)
}

func (c *Client) attempt(ctx context.Context, op string, req chatRequest) (string, error) {
	resp, body, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	var finish, refusal string
	for _, choice := range resp.Choices {
		if content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); content != "" {
			return content, nil
		}
		finish = firstNonEmpty(finish, choice.FinishReason)
		refusal = firstNonEmpty(refusal, choice.Message.Refusal, choice.Delta.Refusal)
	}
	return "", &emptyContentError{Op: op, FinishReason: finish, Refusal: refusal, Snippet: summarizePayloadSnippet(string(body))}
}

func (c *Client) post(ctx context.Context, payload chatRequest) (chatResponse, []byte, error) {
	var decoded chatResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "nimbus")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return decoded, nil, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return decoded, body, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return decoded, body, fmt.Errorf("llm request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return decoded, body, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	return decoded, body, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
