package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for problems that would break the service at runtime.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.LLM.APIKey == "" {
		errs = append(errs, "LLM_API_KEY is required")
	}

	if c.Chat.MemoryWindow < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_MEMORY_WINDOW must be at least 1, got %d", c.Chat.MemoryWindow))
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.Redis.Enabled && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if c.RateLimit.Enabled && !c.Redis.Enabled {
		errs = append(errs, "RATELIMIT_ENABLED requires REDIS_ENABLED")
	}

	if c.LLM.BaseURL == "" {
		slog.Debug("LLM_BASE_URL is empty — using the provider default endpoint")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
