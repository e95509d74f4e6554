package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadchat/internal/ai"
	"leadchat/internal/chat"
	"leadchat/internal/database"
	apperrors "leadchat/internal/errors"
	"leadchat/internal/lead"
)

// handlers bundles the services the API routes dispatch to.
type handlers struct {
	chat     *chat.Service
	analyzer *lead.Analyzer
	gateway  *database.Gateway
	log      *slog.Logger
}

// chatRequest is the wire format of one widget chat turn. Option fields are
// optional; unset values fall back to the configured defaults.
type chatRequest struct {
	Message             string    `json:"message"`
	Model               string    `json:"model"`
	MaxTokens           int       `json:"max_tokens"`
	Temperature         *float32  `json:"temperature"`
	SystemPrompt        string    `json:"system_prompt"`
	ConversationHistory []ai.Turn `json:"conversation_history"`
	ConversationID      string    `json:"conversation_id"`
}

// conversationView is the projection of a conversation returned by the
// single-conversation and creation endpoints. Analysis fields are not part
// of this view; the dashboard fetches them through the analyze endpoint.
type conversationView struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Messages  []database.Message `json:"messages"`
}

// conversationSummary is one row of the dashboard listing.
type conversationSummary struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	MessageCount int               `json:"messageCount"`
	LastMessage  *database.Message `json:"lastMessage"`
}

func newConversationView(conv *database.Conversation) conversationView {
	messages := conv.Messages
	if messages == nil {
		messages = []database.Message{}
	}
	return conversationView{ID: conv.ID, CreatedAt: conv.CreatedAt, Messages: messages}
}

// handleChat runs one chat turn and echoes the conversation id back so the
// widget can thread followup turns.
func (h *handlers) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.NewValidationError("Missing message", err))
		return
	}

	result, err := h.chat.HandleTurn(c.Request.Context(), chat.TurnRequest{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		History:        req.ConversationHistory,
		SystemPrompt:   req.SystemPrompt,
		Model:          req.Model,
		MaxTokens:      req.MaxTokens,
		Temperature:    req.Temperature,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":           result.Reply,
		"conversation_id": result.ConversationID,
	})
}

// handleListConversations returns dashboard summaries, newest first.
func (h *handlers) handleListConversations(c *gin.Context) {
	conversations := h.gateway.ListAll(c.Request.Context())

	summaries := make([]conversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary := conversationSummary{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			MessageCount: len(conv.Messages),
		}
		if len(conv.Messages) > 0 {
			summary.LastMessage = &conv.Messages[len(conv.Messages)-1]
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// handleCreateConversation mints a fresh conversation id and stores an empty
// record. Even a total storage failure answers 200 with a synthesized record;
// the widget proceeds and the chat path retries persistence per turn.
func (h *handlers) handleCreateConversation(c *gin.Context) {
	id := database.NewConversationID()

	conv := h.gateway.Create(c.Request.Context(), id)
	if conv == nil {
		conv = &database.Conversation{
			ID:        id,
			CreatedAt: time.Now().UTC(),
			Messages:  []database.Message{},
		}
	}

	c.JSON(http.StatusOK, gin.H{"conversation": newConversationView(conv)})
}

// handleClearConversations empties only the in-memory fallback store. The
// primary store is deliberately untouched; see the gateway notes.
func (h *handlers) handleClearConversations(c *gin.Context) {
	h.gateway.ClearFallback(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "All conversations cleared successfully (in-memory only)"})
}

func (h *handlers) handleGetConversation(c *gin.Context) {
	conv := h.gateway.Get(c.Request.Context(), c.Param("id"))
	if conv == nil {
		h.writeError(c, apperrors.NewNotFoundError("Conversation not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": newConversationView(conv)})
}

// updateConversationRequest carries a full replacement message list. The
// widget uses this to persist its client-synthesized welcome turn.
type updateConversationRequest struct {
	Messages []database.Message `json:"messages"`
}

// handleUpdateConversation fully replaces the messages of a conversation.
func (h *handlers) handleUpdateConversation(c *gin.Context) {
	var req updateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Messages == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages must be an array"})
		return
	}

	conv := h.gateway.Update(c.Request.Context(), c.Param("id"), req.Messages)
	if conv == nil {
		h.writeError(c, apperrors.NewNotFoundError("Conversation not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": newConversationView(conv)})
}

func (h *handlers) handleDeleteConversation(c *gin.Context) {
	if !h.gateway.Delete(c.Request.Context(), c.Param("id")) {
		h.writeError(c, apperrors.NewNotFoundError("Conversation not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}

// handleAnalyzeConversation runs lead extraction over the stored transcript.
func (h *handlers) handleAnalyzeConversation(c *gin.Context) {
	result, err := h.analyzer.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"leadAnalysis": result.Lead,
		"conversation": result.Conversation,
		"note":         result.Note,
	})
}

// handleHealth reports process liveness plus primary store reachability.
func (h *handlers) handleHealth(c *gin.Context) {
	dbState := "up"
	if err := h.gateway.Ping(c.Request.Context()); err != nil {
		dbState = "down"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": dbState})
}

// writeError maps a service error onto the wire contract the widget and
// dashboard expect: a JSON body with an "error" message, plus a "detail"
// field carrying the raw upstream body for 502s. Unrecognized errors become
// an opaque 500.
func (h *handlers) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch apperrors.Code(err) {
	case apperrors.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message"})
	case apperrors.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	case apperrors.CodeConfig:
		h.log.ErrorContext(ctx, "Request failed on missing configuration", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server is missing OPENAI_API_KEY"})
	case apperrors.CodeUpstream:
		h.log.ErrorContext(ctx, "Upstream completion call failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Upstream error",
			"detail": apperrors.UpstreamBody(err),
		})
	default:
		h.log.ErrorContext(ctx, "Unhandled request error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
