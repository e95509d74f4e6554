// Package ai provides the completion client used for chat replies and lead
// extraction, with interchangeable OpenAI-compatible and Gemini backends.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"leadchat/internal/config"
)

// Client defines the interface for completion operations.
type Client interface {
	// Complete sends one chat-style prompt to the configured backend and
	// returns the generated text, trimmed. An empty string with a nil error
	// means the backend produced no content; callers substitute their own
	// fallback phrase.
	Complete(ctx context.Context, req Request) (string, error)
}

// New creates a completion Client for the configured backend.
// It acts as a factory, selecting either the OpenAI-compatible or Gemini
// implementation.
func New(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	slog.Info("Initializing completion client", "backend", cfg.Backend, "model", cfg.Model)

	switch cfg.Backend {
	case "openai":
		return newOpenAIClient(cfg, log), nil
	case "gemini":
		client, err := newGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown completion backend specified: %s", cfg.Backend)
	}
}
