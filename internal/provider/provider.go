// Package provider builds the configured completion collaborator.
package provider

import (
	"fmt"

	"github.com/MikeSquared-Agency/mentor/internal/anthropic"
	"github.com/MikeSquared-Agency/mentor/internal/config"
	"github.com/MikeSquared-Agency/mentor/internal/llm"
	"github.com/MikeSquared-Agency/mentor/internal/openai"
)

// New returns the completer selected by cfg.LLMProvider.
func New(cfg config.Config) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.Model), nil
	case config.ProviderAnthropic:
		return anthropic.NewClient(cfg.LLMAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
