package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nimbus/internal/textutil"
)

const (
	defaultBaseURL     = "https://openapi.data.uwaterloo.ca/v3"
	defaultHTTPTimeout = 15 * time.Second
)

// Config describes the catalog client configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client wraps the OpenData v3 Courses endpoint.
type Client struct {
	apiKey  string
	baseURL *url.URL
	http    *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("catalog: api key is required (set catalog.api_key or WATERLOO_API_KEY)")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, http: client}, nil
}

type courseInfo struct {
	CourseID      string `json:"courseId"`
	TermCode      string `json:"termCode"`
	SubjectCode   string `json:"subjectCode"`
	CatalogNumber string `json:"catalogNumber"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

// Courses returns course descriptions for termCode keyed by subject code
// plus catalog number, e.g. "CS246". Entries missing either part are
// skipped.
func (c *Client) Courses(ctx context.Context, termCode string) (map[string]string, error) {
	if c == nil {
		return nil, errors.New("catalog: client is nil")
	}
	termCode = strings.TrimSpace(termCode)
	if termCode == "" {
		return nil, errors.New("catalog: term code is required")
	}
	endpoint := c.baseURL.JoinPath("Courses", termCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog: courses request failed (%s): %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload []courseInfo
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog: decode courses: %w", err)
	}
	courses := make(map[string]string, len(payload))
	for _, course := range payload {
		subject := strings.TrimSpace(course.SubjectCode)
		number := strings.TrimSpace(course.CatalogNumber)
		if subject == "" || number == "" {
			continue
		}
		description := strings.TrimSpace(course.Description)
		if description == "" {
			description = strings.TrimSpace(course.Title)
		}
		courses[textutil.CourseCode(subject+number)] = description
	}
	return courses, nil
}

// Lookup resolves codes against the term catalog. missing lists, in input
// order, the codes the catalog does not offer.
func (c *Client) Lookup(ctx context.Context, termCode string, codes ...string) (found map[string]string, missing []string, err error) {
	courses, err := c.Courses(ctx, termCode)
	if err != nil {
		return nil, nil, err
	}
	found = make(map[string]string, len(codes))
	for _, raw := range codes {
		code := textutil.CourseCode(raw)
		if description, ok := courses[code]; ok {
			found[code] = description
			continue
		}
		missing = append(missing, code)
	}
	return found, missing, nil
}

// TermCode returns the OpenData term code for t: "1", the two-digit year and
// the first month of the term (1 winter, 5 spring, 9 fall).
func TermCode(t time.Time) string {
	var month int
	switch {
	case t.Month() <= time.April:
		month = 1
	case t.Month() <= time.August:
		month = 5
	default:
		month = 9
	}
	return fmt.Sprintf("1%02d%d", t.Year()%100, month)
}
