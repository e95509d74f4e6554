package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"leadchat/internal/config"
	apperrors "leadchat/internal/errors"
)

// openAIClient talks to an OpenAI-compatible chat completions endpoint.
type openAIClient struct {
	client *openai.Client
	cfg    config.AIConfig
	log    *slog.Logger
}

// newOpenAIClient creates the default backend. A missing API token is not
// an error here; it is reported per request so the server can start without
// a credential, as the original deployment does.
func newOpenAIClient(cfg config.AIConfig, log *slog.Logger) *openAIClient {
	clientCfg := openai.DefaultConfig(cfg.Token)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &openAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		log:    log.With("component", "openai_client"),
	}
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.cfg.Token == "" {
		return "", apperrors.NewConfigError("server is missing completion API credential", nil)
	}

	model, maxTokens, temperature := resolveOptions(c.cfg, req)
	prompt := buildMessages(req.SystemPrompt, req.History, req.UserMessage)

	messages := make([]openai.ChatCompletionMessage, 0, len(prompt))
	for _, m := range prompt {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	c.log.DebugContext(ctx, "Sending completion request",
		"model", model, "max_tokens", maxTokens, "message_count", len(messages))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Completion API call failed", "model", model, "error", err)
		return "", upstreamError(err)
	}

	if len(resp.Choices) == 0 {
		c.log.WarnContext(ctx, "Completion response contained no choices", "model", model)
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// upstreamError converts a go-openai error into an UpstreamError carrying
// whatever raw detail the upstream provided.
func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.NewUpstreamError("completion API returned an error", apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.NewUpstreamError("completion API request failed", string(reqErr.Body), err)
	}

	return apperrors.NewUpstreamError("completion API unreachable", err.Error(), err)
}
