package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vodmux/internal/config"
)

const userAgent = "Vodmux/0.1.0"

// Event identifies a run milestone that may produce a notification.
type Event string

const (
	// EventRunStarted fires once when a run begins processing its manifests.
	EventRunStarted Event = "run-started"
	// EventRunCompleted fires once with the run's final outcome counts.
	EventRunCompleted Event = "run-completed"
	// EventJobFailed fires for every episode that ends in failure.
	EventJobFailed Event = "job-failed"
	// EventTest exercises the notification transport on demand.
	EventTest Event = "test"
)

// Payload carries per-event values keyed by name.
//
// Recognized keys by event:
//   - EventRunStarted: "count"
//   - EventRunCompleted: "completed", "skipped", "failed", "cancelled", "duration"
//   - EventJobFailed: "episode", "error"
type Payload map[string]string

func (p Payload) get(key, fallback string) string {
	if p == nil {
		return fallback
	}
	value := strings.TrimSpace(p[key])
	if value == "" {
		return fallback
	}
	return value
}

// RunSummaryPayload builds the payload for run lifecycle events from the
// final outcome counts.
func RunSummaryPayload(completed, skipped, failed, cancelled int, duration time.Duration) Payload {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return Payload{
		"completed": strconv.Itoa(completed),
		"skipped":   strconv.Itoa(skipped),
		"failed":    strconv.Itoa(failed),
		"cancelled": strconv.Itoa(cancelled),
		"duration":  duration.String(),
	}
}

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		runSummary:  cfg.Notifications.RunSummary,
		jobFailures: cfg.Notifications.JobFailures,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	runSummary  bool
	jobFailures bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.compose(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) compose(event Event, data Payload) (message, bool) {
	switch event {
	case EventRunStarted:
		if !n.runSummary {
			return message{}, false
		}
		return message{
			title: "Vodmux - Run Started",
			body:  fmt.Sprintf("Started processing %s episode(s)", data.get("count", "0")),
			tags:  []string{"vodmux", "run", "started"},
		}, true
	case EventRunCompleted:
		if !n.runSummary {
			return message{}, false
		}
		return composeRunCompleted(data), true
	case EventJobFailed:
		if !n.jobFailures {
			return message{}, false
		}
		return message{
			title:    "Vodmux - Episode Failed",
			body:     fmt.Sprintf("❌ %s failed: %s", data.get("episode", "unknown episode"), data.get("error", "unknown error")),
			tags:     []string{"vodmux", "episode", "failed"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Vodmux - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"vodmux", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func composeRunCompleted(data Payload) message {
	failed := data.get("failed", "0")
	parts := []string{fmt.Sprintf("%s completed", data.get("completed", "0"))}
	for _, outcome := range []string{"skipped", "failed", "cancelled"} {
		if count := data.get(outcome, "0"); count != "0" {
			parts = append(parts, fmt.Sprintf("%s %s", count, outcome))
		}
	}
	summary := fmt.Sprintf("%s in %s", strings.Join(parts, ", "), data.get("duration", "0s"))

	if failed != "0" {
		return message{
			title:    "Vodmux - Run Complete (with errors)",
			body:     fmt.Sprintf("Run complete: %s", summary),
			tags:     []string{"vodmux", "run", "completed"},
			priority: "high",
		}
	}
	return message{
		title: "Vodmux - Run Complete",
		body:  fmt.Sprintf("✅ Run complete: %s", summary),
		tags:  []string{"vodmux", "run", "completed"},
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
