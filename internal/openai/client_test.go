package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"

	"github.com/MikeSquared-Agency/mentor/internal/conversation"
	"github.com/MikeSquared-Agency/mentor/internal/llm"
)

type chatRequest struct {
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func TestComplete_JSONMode(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(`{"reply":"hi"}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", option.WithMaxRetries(0))

	result, err := c.Complete(context.Background(), llm.Request{
		Turns: []conversation.Turn{
			{Role: conversation.RoleSystem, Content: "be helpful"},
			{Role: conversation.RoleAssistant, Content: "earlier"},
			{Role: "agent", Content: "odd label"},
			{Role: conversation.RoleUser, Content: "hello"},
		},
		Temperature: 0.7,
		MaxTokens:   500,
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"reply":"hi"}` {
		t.Errorf("unexpected result %q", result)
	}

	if got.Model != "test-model" {
		t.Errorf("expected default model, got %q", got.Model)
	}
	if got.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", got.Temperature)
	}
	if got.MaxTokens != 500 {
		t.Errorf("expected max_tokens 500, got %d", got.MaxTokens)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", got.ResponseFormat)
	}

	roles := make([]string, len(got.Messages))
	for i, m := range got.Messages {
		roles[i] = m.Role
	}
	want := []string{"system", "assistant", "user", "user", "system"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Errorf("roles = %v, want %v", roles, want)
	}
	if last := got.Messages[len(got.Messages)-1]; last.Content != llm.JSONReminder {
		t.Errorf("expected trigger reminder to be appended, got %q", last.Content)
	}
}

func TestComplete_PlainModeOverridesModel(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("- Always greet the client."))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", option.WithMaxRetries(0))

	result, err := c.Complete(context.Background(), llm.Request{
		Model:       "editor-model",
		Turns:       []conversation.Turn{{Role: conversation.RoleUser, Content: "hello"}},
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "- Always greet the client." {
		t.Errorf("unexpected result %q", result)
	}
	if got.Model != "editor-model" {
		t.Errorf("expected request model override, got %q", got.Model)
	}
	if got.ResponseFormat != nil {
		t.Errorf("expected no response format, got %+v", got.ResponseFormat)
	}
	if len(got.Messages) != 1 {
		t.Errorf("expected no reminder in plain mode, got %d messages", len(got.Messages))
	}
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "'messages' must contain the word 'json'", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", option.WithMaxRetries(0))

	_, err := c.Complete(context.Background(), llm.Request{
		Turns: []conversation.Turn{{Role: conversation.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for API error response")
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := completionBody("")
		body["choices"] = []map[string]any{}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL, "test-model", option.WithMaxRetries(0))

	_, err := c.Complete(context.Background(), llm.Request{
		Turns: []conversation.Turn{{Role: conversation.RoleUser, Content: "hi"}},
	})
	if err != llm.ErrEmptyCompletion {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}
