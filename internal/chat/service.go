// Package chat orchestrates one widget chat turn: prompt assembly, the
// completion call, and best-effort persistence of the exchanged pair.
package chat

import (
	"context"
	"io"
	"log/slog"
	"time"

	"leadchat/internal/ai"
	"leadchat/internal/database"
	apperrors "leadchat/internal/errors"
)

// FallbackReply is returned whenever the completion backend produces no
// usable text. The widget always receives a non-empty reply.
const FallbackReply = "I'm not sure how to answer that."

// TurnRequest carries one user turn plus optional client-side prompt options.
type TurnRequest struct {
	ConversationID string
	Message        string
	History        []ai.Turn
	SystemPrompt   string

	Model       string
	MaxTokens   int
	Temperature *float32
}

// TurnResult is the outcome of a handled turn.
type TurnResult struct {
	Reply          string
	ConversationID string
}

// Service handles chat turns against the completion client and the
// persistence gateway.
type Service struct {
	client              ai.Client
	gateway             *database.Gateway
	defaultSystemPrompt string
	log                 *slog.Logger
}

// NewService creates a chat service. defaultSystemPrompt is used when a
// request does not carry its own system prompt.
func NewService(client ai.Client, gateway *database.Gateway, defaultSystemPrompt string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		client:              client,
		gateway:             gateway,
		defaultSystemPrompt: defaultSystemPrompt,
		log:                 log.With("component", "chat_service"),
	}
}

// HandleTurn validates the message, obtains a completion, and best-effort
// persists the (user, assistant) pair onto the conversation when a
// conversation id was supplied. Persistence failures never fail the turn;
// the reply reaches the widget regardless.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	if req.Message == "" {
		return TurnResult{}, apperrors.NewValidationError("Missing message", nil)
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = s.defaultSystemPrompt
	}

	reply, err := s.client.Complete(ctx, ai.Request{
		SystemPrompt: systemPrompt,
		History:      req.History,
		UserMessage:  req.Message,
		Model:        req.Model,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
	})
	if err != nil {
		return TurnResult{}, err
	}

	if reply == "" {
		s.log.WarnContext(ctx, "Empty completion text, using fallback reply",
			"conversation_id", req.ConversationID)
		reply = FallbackReply
	}

	if req.ConversationID != "" {
		s.persistTurn(ctx, req.ConversationID, req.Message, reply)
	}

	return TurnResult{
		Reply:          reply,
		ConversationID: req.ConversationID,
	}, nil
}

// persistTurn appends the exchanged pair to the conversation, creating the
// record if it does not exist yet. Every failure here is absorbed: the chat
// UX must not depend on storage availability.
func (s *Service) persistTurn(ctx context.Context, conversationID, userMessage, reply string) {
	conv := s.gateway.Get(ctx, conversationID)
	if conv == nil {
		conv = s.gateway.Create(ctx, conversationID)
	}
	if conv == nil {
		s.log.WarnContext(ctx, "Conversation unavailable, turn not persisted",
			"conversation_id", conversationID)
		return
	}

	now := time.Now().UTC()
	messages := append(conv.Messages,
		database.Message{Role: database.RoleUser, Content: userMessage, Timestamp: now},
		database.Message{Role: database.RoleAssistant, Content: reply, Timestamp: now},
	)

	if updated := s.gateway.Update(ctx, conversationID, messages); updated == nil {
		s.log.WarnContext(ctx, "Failed to persist chat turn",
			"conversation_id", conversationID, "message_count", len(messages))
		return
	}

	s.log.DebugContext(ctx, "Chat turn persisted",
		"conversation_id", conversationID, "message_count", len(messages))
}
