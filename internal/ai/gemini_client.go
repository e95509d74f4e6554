package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"leadchat/internal/config"
	apperrors "leadchat/internal/errors"
)

// geminiClient is the alternative backend using Google's Gemini API.
// Unlike the OpenAI backend, the SDK needs a credential at construction
// time, so selecting this backend without a token fails at startup.
type geminiClient struct {
	genaiClient *genai.Client
	cfg         config.AIConfig
	log         *slog.Logger
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*geminiClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Token,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &geminiClient{
		genaiClient: gi,
		cfg:         cfg,
		log:         logger,
	}, nil
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	model, maxTokens, temperature := resolveOptions(c.cfg, req)
	prompt := buildMessages(req.SystemPrompt, req.History, req.UserMessage)

	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(maxTokens),
	}

	var contents []*genai.Content
	for _, m := range prompt {
		switch m.Role {
		case "system":
			genCfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	c.log.DebugContext(ctx, "Sending completion request",
		"model", model, "max_tokens", maxTokens, "content_count", len(contents))

	resp, err := c.genaiClient.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini API call failed", "model", model, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return "", apperrors.NewUpstreamError("completion API returned an error", apiErr.Message, err)
		}
		return "", apperrors.NewUpstreamError("completion API unreachable", err.Error(), err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "model", model)
		return "", nil
	}

	return strings.TrimSpace(resp.Text()), nil
}
