package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// Config holds the chat completion endpoint settings from the [llm] table.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Referer and Title are sent as OpenRouter attribution headers when set.
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client talks to an OpenAI-compatible chat completion endpoint and only
// asks for JSON answers.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes the client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts caps how many requests one call may make.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff sets the first retry delay and the ceiling it doubles to.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.baseDelay = baseDelay
		c.retry.maxDelay = maxDelay
	}
}

// WithSleeper replaces the retry timer.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleeper = sleeper }
}

// NewClient builds a client. An empty BaseURL targets OpenRouter.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		retry:      retryPolicy{attempts: 3, baseDelay: time.Second, maxDelay: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CompleteJSON sends one system and one user message and returns the JSON
// text the model produced.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "llm complete"
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return "", errors.New(op + ": system prompt required")
	case userPrompt == "":
		return "", errors.New(op + ": user prompt required")
	case c.cfg.APIKey == "":
		return "", errors.New(op + ": api key required")
	}
	return c.complete(ctx, op, c.jsonRequest(systemPrompt, userPrompt))
}

// HealthCheck verifies the key and model with a trivial JSON round trip.
func (c *Client) HealthCheck(ctx context.Context) error {
	const op = "llm health"
	if c.cfg.APIKey == "" {
		return errors.New(op + ": api key required")
	}
	content, err := c.complete(ctx, op, c.jsonRequest("You must respond with JSON only.", `Respond with {"ok":true}`))
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("%s: parse payload: %w", op, err)
	}
	if !parsed.OK {
		return errors.New(op + ": unexpected response")
	}
	return nil
}

func (c *Client) jsonRequest(systemPrompt, userPrompt string) chatRequest {
	return chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
}
