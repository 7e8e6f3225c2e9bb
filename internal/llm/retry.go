package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy decides whether a failed completion is worth another attempt
// and how long to wait first.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	// sleeper replaces the timer in tests.
	sleeper func(time.Duration)
}

func (p retryPolicy) maxAttempts() int {
	return max(p.attempts, 1)
}

// next returns the delay before attempt+1, or false when err is final.
func (p retryPolicy) next(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if err == nil || attempt >= p.maxAttempts() || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	var emptyErr *emptyContentError
	var netErr net.Error
	switch {
	case errors.As(err, &emptyErr):
		return p.backoff(attempt), true
	case errors.As(err, &statusErr):
		if !retryableStatus(statusErr.StatusCode) {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.clamp(statusErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	case errors.As(err, &netErr) && netErr.Timeout():
		return p.backoff(attempt), true
	default:
		return 0, false
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// backoff doubles from baseDelay per attempt and stops at maxDelay.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.baseDelay <= 0 {
		return 0
	}
	delay := p.baseDelay
	for range attempt - 1 {
		if p.maxDelay > 0 && delay >= p.maxDelay {
			break
		}
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) clamp(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.maxDelay > 0 {
		return min(delay, p.maxDelay)
	}
	return delay
}

func (p retryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil || delay <= 0 {
		return err
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, seconds >= 0
	}
	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	delay := time.Until(when)
	return delay, delay > 0
}
