package database

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Gateway wraps a primary Store and an in-memory fallback Store behind the
// persistence contract the services consume: no operation ever returns an
// error. Store failures are logged and converted to nil/false/empty results,
// and writes fall through to the fallback store so chat keeps working while
// the primary is unreachable.
//
// The nil result deliberately conflates "not found" with "store failure",
// matching the contract the dashboard and widget were built against. Callers
// that need the distinction should use a Store directly.
type Gateway struct {
	primary  Store
	fallback Store
	logger   *slog.Logger
}

// NewGateway creates a Gateway over the given primary and fallback stores.
// The fallback is optional; without one, failed operations simply yield nil.
func NewGateway(primary, fallback Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With("component", "gateway"),
	}
}

// Create inserts a new conversation, preferring the primary store.
// Returns nil when creation fails everywhere.
func (g *Gateway) Create(ctx context.Context, id string) *Conversation {
	conv, err := g.primary.CreateConversation(ctx, id)
	if err == nil && conv != nil {
		return conv
	}
	if err != nil {
		g.logger.ErrorContext(ctx, "Primary store create failed, trying fallback",
			"conversation_id", id, "error", err)
	}

	if g.fallback == nil {
		return nil
	}

	conv, err = g.fallback.CreateConversation(ctx, id)
	if err != nil {
		g.logger.ErrorContext(ctx, "Fallback store create failed", "conversation_id", id, "error", err)
		return nil
	}
	g.logger.WarnContext(ctx, "Primary store unavailable, conversation created in memory only",
		"conversation_id", id)
	return conv
}

// Get retrieves a conversation by id from the primary store, falling back to
// the in-memory store. Returns nil when absent or on failure.
func (g *Gateway) Get(ctx context.Context, id string) *Conversation {
	conv, err := g.primary.GetConversation(ctx, id)
	if err != nil {
		g.logger.ErrorContext(ctx, "Primary store get failed", "conversation_id", id, "error", err)
	}
	if conv != nil {
		return conv
	}

	if g.fallback == nil {
		return nil
	}

	conv, err = g.fallback.GetConversation(ctx, id)
	if err != nil {
		g.logger.ErrorContext(ctx, "Fallback store get failed", "conversation_id", id, "error", err)
		return nil
	}
	return conv
}

// Update fully replaces the messages of a conversation in whichever store
// holds it. Returns the updated conversation, or nil on failure.
func (g *Gateway) Update(ctx context.Context, id string, msgs []Message) *Conversation {
	conv, err := g.primary.UpdateMessages(ctx, id, msgs)
	if err != nil {
		g.logger.ErrorContext(ctx, "Primary store update failed", "conversation_id", id, "error", err)
	}
	if conv != nil {
		return conv
	}

	if g.fallback == nil {
		return nil
	}

	conv, err = g.fallback.UpdateMessages(ctx, id, msgs)
	if err != nil {
		g.logger.ErrorContext(ctx, "Fallback store update failed", "conversation_id", id, "error", err)
		return nil
	}
	return conv
}

// SaveAnalysis stores a lead analysis result onto a conversation.
// Returns the updated conversation, or nil on failure.
func (g *Gateway) SaveAnalysis(ctx context.Context, id string, lead *Lead, analyzedAt time.Time) *Conversation {
	conv, err := g.primary.SaveLeadAnalysis(ctx, id, lead, analyzedAt)
	if err != nil {
		g.logger.WarnContext(ctx, "Primary store analysis save failed", "conversation_id", id, "error", err)
	}
	if conv != nil {
		return conv
	}

	if g.fallback == nil {
		return nil
	}

	conv, err = g.fallback.SaveLeadAnalysis(ctx, id, lead, analyzedAt)
	if err != nil {
		g.logger.WarnContext(ctx, "Fallback store analysis save failed", "conversation_id", id, "error", err)
		return nil
	}
	return conv
}

// ListAll retrieves all conversations, newest-created-first. When the primary
// store fails or holds nothing, the fallback store's contents are returned.
// Returns an empty slice on total failure.
func (g *Gateway) ListAll(ctx context.Context) []*Conversation {
	conversations, err := g.primary.ListConversations(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "Primary store list failed", "error", err)
	}
	if len(conversations) > 0 {
		return conversations
	}

	if g.fallback == nil {
		return []*Conversation{}
	}

	conversations, err = g.fallback.ListConversations(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "Fallback store list failed", "error", err)
		return []*Conversation{}
	}
	return conversations
}

// Delete removes a conversation from whichever store holds it.
// Returns false when nothing was deleted.
func (g *Gateway) Delete(ctx context.Context, id string) bool {
	deleted, err := g.primary.DeleteConversation(ctx, id)
	if err != nil {
		g.logger.ErrorContext(ctx, "Primary store delete failed", "conversation_id", id, "error", err)
	}
	if deleted {
		return true
	}

	if g.fallback == nil {
		return false
	}

	deleted, err = g.fallback.DeleteConversation(ctx, id)
	if err != nil {
		g.logger.ErrorContext(ctx, "Fallback store delete failed", "conversation_id", id, "error", err)
		return false
	}
	return deleted
}

// ClearFallback empties only the in-memory fallback store. The bulk-delete
// endpoint is documented to leave the primary store untouched; see the
// API notes before "fixing" this.
func (g *Gateway) ClearFallback(ctx context.Context) int {
	if g.fallback == nil {
		return 0
	}

	count, err := g.fallback.ClearConversations(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "Fallback store clear failed", "error", err)
		return 0
	}
	return count
}

// Ping reports primary store reachability.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.primary.Ping(ctx)
}
