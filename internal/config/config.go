package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port         int
	LogLevel     string
	DatabaseURL  string
	LLMProvider  string
	LLMAPIKey    string
	LLMBaseURL   string
	Model        string
	NatsURL      string
	NatsToken    string
	SlackToken   string
	SlackChannel string
	APIToken     string
	CORSOrigins  []string

	StoreReadAttempts int
	StoreReadDelay    time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory, if present, is applied first without overriding
// variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              envInt("MENTOR_PORT", 8760),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		DatabaseURL:       envStr("DATABASE_URL", "mentor.db"),
		LLMProvider:       strings.ToLower(envStr("LLM_PROVIDER", ProviderOpenAI)),
		LLMAPIKey:         envStr("LLM_API_KEY", ""),
		LLMBaseURL:        envStr("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:             envStr("MODEL_NAME", "llama-3.1-8b-instant"),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
		SlackToken:        envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:      envStr("SLACK_CHANNEL", ""),
		APIToken:          envStr("MENTOR_API_TOKEN", ""),
		CORSOrigins:       envList("CORS_ORIGINS", []string{"*"}),
		StoreReadAttempts: envInt("STORE_READ_ATTEMPTS", 3),
		StoreReadDelay:    envDuration("STORE_READ_DELAY", time.Second),
	}
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	if c.LLMAPIKey == "" {
		return errors.New("LLM_API_KEY is required")
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return errors.New("LLM_PROVIDER must be openai or anthropic")
	}
	return c.ValidateStore()
}

// ValidateStore checks only what store access needs; it accepts configs
// without LLM credentials.
func (c Config) ValidateStore() error {
	if c.StoreReadAttempts < 1 {
		return errors.New("STORE_READ_ATTEMPTS must be >= 1")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
