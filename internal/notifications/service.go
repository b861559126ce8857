package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bulwark/internal/config"
)

const userAgent = "Bulwark/0.1.0"

// Event identifies a run milestone that can be published.
type Event string

// Events published by the runner. Each maps to a toggle in the
// notifications config section.
const (
	EventRunStarted          Event = "run_started"
	EventRunCompleted        Event = "run_completed"
	EventProtectionCompleted Event = "protection_completed"
	EventError               Event = "error"
)

// Payload carries the event-specific fields used to compose a message.
// Values are preformatted strings; callers format counts and durations.
type Payload map[string]string

// Service publishes run milestones to the configured transport.
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventRunStarted:          cfg.Notifications.RunStarted,
			EventRunCompleted:        cfg.Notifications.RunCompleted,
			EventProtectionCompleted: cfg.Notifications.Protection,
			EventError:               cfg.Notifications.Errors,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	data, err := compose(event, payload)
	if err != nil {
		return err
	}
	if !n.enabled[event] {
		return nil
	}
	return n.send(ctx, data)
}

func compose(event Event, payload Payload) (message, error) {
	get := func(key string) string { return strings.TrimSpace(payload[key]) }

	switch event {
	case EventRunStarted:
		policy := get("policy")
		if policy == "" {
			policy = "backup"
		}
		body := fmt.Sprintf("Started %s run", policy)
		if folders := get("folders"); folders != "" {
			body = fmt.Sprintf("%s covering %s folders", body, folders)
		}
		return message{
			title: "Bulwark - Run Started",
			body:  body,
			tags:  []string{"bulwark", "run", "started"},
		}, nil

	case EventRunCompleted:
		policy := get("policy")
		if policy == "" {
			policy = "backup"
		}
		duration := get("duration")
		if duration == "" {
			duration = "0s"
		}
		failed := get("failed")
		if failed == "" || failed == "0" {
			return message{
				title: "Bulwark - Run Complete",
				body:  fmt.Sprintf("✅ %s run complete: %s archives in %s", policy, get("processed"), duration),
				tags:  []string{"bulwark", "run", "completed"},
			}, nil
		}
		return message{
			title: "Bulwark - Run Complete (with errors)",
			body:  fmt.Sprintf("%s run complete: %s succeeded, %s failed in %s", policy, get("processed"), failed, duration),
			tags:  []string{"bulwark", "run", "completed"},
		}, nil

	case EventProtectionCompleted:
		archive := get("archive")
		failed := get("failed")
		if failed == "" || failed == "0" {
			return message{
				title: "Bulwark - Protection Complete",
				body:  fmt.Sprintf("🛡️ Recovery built for %s: %s groups over %s chunks", archive, get("groups"), get("chunks")),
				tags:  []string{"bulwark", "protection", "completed"},
			}, nil
		}
		return message{
			title: "Bulwark - Protection Complete (with errors)",
			body:  fmt.Sprintf("⚠️ Recovery incomplete for %s: %s of %s groups failed", archive, failed, get("groups")),
			tags:  []string{"bulwark", "protection", "completed"},
		}, nil

	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if contextLabel := get("context"); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := get("error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Bulwark - Error",
			body:     builder.String(),
			tags:     []string{"bulwark", "error", "alert"},
			priority: "high",
		}, nil
	}

	return message{}, fmt.Errorf("unknown notification event %q", event)
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
