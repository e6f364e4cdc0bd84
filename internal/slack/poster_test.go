package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatAnnouncement_WithRule(t *testing.T) {
	msg := formatAnnouncement(Announcement{
		Version: 12,
		Mode:    "feedback",
		Rule:    "List the passport and bank statement when asked about documents.",
		Lines:   31,
	})

	checks := []string{"Prompt v12", "feedback", "31 lines", "New rule: List the passport"}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got %q", check, msg)
		}
	}
}

func TestFormatAnnouncement_Reset(t *testing.T) {
	msg := formatAnnouncement(Announcement{Version: 4, Mode: "reset"})

	if !strings.Contains(msg, "No new rule") {
		t.Errorf("expected no-rule message, got %q", msg)
	}
}

func TestAnnounceRule_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}
		if text, _ := payload["text"].(string); !strings.Contains(text, "Always greet") {
			t.Errorf("expected rule in text, got %q", text)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.AnnounceRule(context.Background(), Announcement{
		Version: 2,
		Mode:    "manual",
		Rule:    "Always greet the client by name.",
		Notes:   "Manual update: greet by name...",
		Lines:   20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestAnnounceRule_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	_, err := p.AnnounceRule(context.Background(), Announcement{Version: 1, Mode: "manual"})
	if err == nil {
		t.Fatal("expected error for slack error response")
	}
}
