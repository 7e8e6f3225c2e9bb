package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"nimbus/internal/config"
	"nimbus/internal/journal"
)

const userAgent = "nimbus/0.1.0"

// Service defines the notification surface used by the monitor and review.
type Service interface {
	CommandRecorded(ctx context.Context, cmd journal.Command) error
	ReviewCompleted(ctx context.Context, applied, declined, failed int) error
	Test(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) CommandRecorded(ctx context.Context, cmd journal.Command) error {
	if !n.settings.CommandRecorded {
		return nil
	}
	if n.settings.IndeterminateOnly && cmd.Action != journal.ActionIndeterminate {
		return nil
	}
	name := filepath.Base(cmd.FilePath)
	var data payload
	switch cmd.Action {
	case journal.ActionMove:
		data = payload{
			title:   "nimbus - Move Proposed",
			message: fmt.Sprintf("📁 %s → %s", name, filepath.Base(cmd.Destination)),
			tags:    []string{"nimbus", "move", strings.ToLower(cmd.Reason.String())},
		}
	case journal.ActionSkip:
		data = payload{
			title:    "nimbus - Already Filed",
			message:  fmt.Sprintf("%s is already in its course folder", name),
			tags:     []string{"nimbus", "skip"},
			priority: "low",
		}
	case journal.ActionIndeterminate:
		data = payload{
			title:   "nimbus - Review Needed",
			message: fmt.Sprintf("❓ No course matched: %s\nRun `nimbus review` to decide", name),
			tags:    []string{"nimbus", "indeterminate", "review"},
		}
	default:
		return nil
	}
	return n.send(ctx, data)
}

func (n *ntfyService) ReviewCompleted(ctx context.Context, applied, declined, failed int) error {
	if !n.settings.Review {
		return nil
	}
	title := "nimbus - Review Complete"
	priority := ""
	if failed > 0 {
		title = "nimbus - Review Complete (with errors)"
		priority = "high"
	}
	data := payload{
		title:    title,
		message:  fmt.Sprintf("✅ %d moved, %d declined, %d failed", applied, declined, failed),
		tags:     []string{"nimbus", "review", "completed"},
		priority: priority,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) Test(ctx context.Context) error {
	data := payload{
		title:    "nimbus - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"nimbus", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) CommandRecorded(context.Context, journal.Command) error { return nil }
func (noopService) ReviewCompleted(context.Context, int, int, int) error   { return nil }
func (noopService) Test(context.Context) error                             { return nil }
