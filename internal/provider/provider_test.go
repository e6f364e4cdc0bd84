package provider

import (
	"testing"

	"github.com/MikeSquared-Agency/mentor/internal/anthropic"
	"github.com/MikeSquared-Agency/mentor/internal/config"
	"github.com/MikeSquared-Agency/mentor/internal/openai"
)

func TestNew(t *testing.T) {
	c, err := New(config.Config{LLMProvider: config.ProviderOpenAI, LLMAPIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*openai.Client); !ok {
		t.Errorf("expected *openai.Client, got %T", c)
	}

	c, err = New(config.Config{LLMProvider: config.ProviderAnthropic, LLMAPIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*anthropic.Client); !ok {
		t.Errorf("expected *anthropic.Client, got %T", c)
	}

	if _, err := New(config.Config{LLMProvider: "groq"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
