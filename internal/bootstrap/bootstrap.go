// Package bootstrap builds the mentor service from configuration for both
// the HTTP server and the training CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/mentor/internal/config"
	"github.com/MikeSquared-Agency/mentor/internal/editor"
	"github.com/MikeSquared-Agency/mentor/internal/hermes"
	"github.com/MikeSquared-Agency/mentor/internal/llm"
	"github.com/MikeSquared-Agency/mentor/internal/mentor"
	"github.com/MikeSquared-Agency/mentor/internal/provider"
	"github.com/MikeSquared-Agency/mentor/internal/slack"
	"github.com/MikeSquared-Agency/mentor/internal/store"
	"github.com/MikeSquared-Agency/mentor/internal/synth"
	"github.com/MikeSquared-Agency/mentor/internal/versions"
)

// App owns every connection opened for the service.
type App struct {
	Service *mentor.Service
	Repo    store.Repository
	hermes  *hermes.Client
}

// New connects the store, the completion provider and the optional NATS and
// Slack integrations.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	completer, err := provider.New(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("llm client ready", "provider", cfg.LLMProvider, "model", cfg.Model)

	return open(ctx, cfg, completer, logger)
}

// OpenStore wires the service without a completion provider, so no LLM
// credentials are needed. Its Service supports ActiveInstructions, Reset
// and Versions only.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	return open(ctx, cfg, nil, logger)
}

func open(ctx context.Context, cfg config.Config, completer llm.Completer, logger *slog.Logger) (*App, error) {
	repo, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Info("store ready", "backend", fmt.Sprintf("%T", repo))

	app := &App{Repo: repo}

	// NATS is optional; without it commits are not broadcast.
	var publisher mentor.Publisher
	if cfg.NatsURL != "" {
		h, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			repo.Close()
			return nil, err
		}
		app.hermes = h
		publisher = h
		logger.Info("NATS connected", "url", cfg.NatsURL)
	}

	var notifier mentor.Notifier
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		notifier = slack.NewPoster(cfg.SlackToken, cfg.SlackChannel, logger)
		logger.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	var (
		sy *synth.Synthesizer
		ed *editor.Editor
	)
	if completer != nil {
		sy = synth.New(completer, logger)
		ed = editor.New(completer, logger)
	}

	app.Service = mentor.New(
		sy,
		ed,
		versions.New(repo, cfg.StoreReadAttempts, cfg.StoreReadDelay, logger),
		publisher,
		notifier,
		logger,
	)
	return app, nil
}

func (a *App) Close() {
	if a.hermes != nil {
		a.hermes.Close()
	}
	a.Repo.Close()
}
