package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bulwark/internal/config"
	"bulwark/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"processed": "3"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "run started",
			event: notifications.EventRunStarted,
			payload: notifications.Payload{
				"policy":  "monthly",
				"folders": "7",
			},
			expectTitle:   "Bulwark - Run Started",
			expectMessage: "Started monthly run covering 7 folders",
			expectTags:    "bulwark,run,started",
		},
		{
			name:  "run completed",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"policy":    "monthly",
				"processed": "7",
				"failed":    "0",
				"duration":  "32m10s",
			},
			expectTitle:   "Bulwark - Run Complete",
			expectMessage: "✅ monthly run complete: 7 archives in 32m10s",
			expectTags:    "bulwark,run,completed",
		},
		{
			name:  "run completed with errors",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"policy":    "weekly",
				"processed": "5",
				"failed":    "2",
				"duration":  "12m0s",
			},
			expectTitle:   "Bulwark - Run Complete (with errors)",
			expectMessage: "weekly run complete: 5 succeeded, 2 failed in 12m0s",
			expectTags:    "bulwark,run,completed",
		},
		{
			name:  "protection completed",
			event: notifications.EventProtectionCompleted,
			payload: notifications.Payload{
				"archive": "documents",
				"groups":  "7",
				"chunks":  "95",
				"failed":  "0",
			},
			expectTitle:   "Bulwark - Protection Complete",
			expectMessage: "🛡️ Recovery built for documents: 7 groups over 95 chunks",
			expectTags:    "bulwark,protection,completed",
		},
		{
			name:  "protection completed with failures",
			event: notifications.EventProtectionCompleted,
			payload: notifications.Payload{
				"archive": "media",
				"groups":  "5",
				"failed":  "2",
			},
			expectTitle:   "Bulwark - Protection Complete (with errors)",
			expectMessage: "⚠️ Recovery incomplete for media: 2 of 5 groups failed",
			expectTags:    "bulwark,protection,completed",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "archive task",
				"error":   "7z exited with status 2",
			},
			expectTitle:    "Bulwark - Error",
			expectMessage:  "❌ Error with archive task: 7z exited with status 2",
			expectTags:     "bulwark,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSilencedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for silenced event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RunStarted = false
	cfg.Notifications.RunCompleted = false
	cfg.Notifications.Protection = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	silenced := []notifications.Event{
		notifications.EventRunStarted,
		notifications.EventRunCompleted,
		notifications.EventProtectionCompleted,
		notifications.EventError,
	}

	for _, event := range silenced {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"error": "ignored"}); err != nil {
			t.Fatalf("expected no error for silenced event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("limit reached"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventError, notifications.Payload{"error": "boom"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "ntfy returned 429") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "limit reached") {
		t.Fatalf("expected body tail in error: %v", err)
	}
}

func TestNtfyServiceRejectsUnknownEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected call for unknown event")
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.Event("bogus"), nil); err == nil {
		t.Fatal("expected error for unknown event")
	}
}
