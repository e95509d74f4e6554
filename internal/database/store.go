package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for conversation persistence. Implementations
// return errors to their caller; the Gateway on top of a Store converts
// failures into the null/boolean results the services consume.
type Store interface {
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// CreateConversation inserts a conversation row with an empty message
	// list and the current timestamp.
	CreateConversation(ctx context.Context, id string) (*Conversation, error)

	// GetConversation retrieves a conversation by id. Returns nil, nil if not found.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// UpdateMessages fully replaces the messages field of a conversation.
	// Returns nil, nil when the conversation does not exist.
	UpdateMessages(ctx context.Context, id string, msgs []Message) (*Conversation, error)

	// SaveLeadAnalysis stores the lead analysis result and analysis timestamp.
	// Returns nil, nil when the conversation does not exist.
	SaveLeadAnalysis(ctx context.Context, id string, lead *Lead, analyzedAt time.Time) (*Conversation, error)

	// ListConversations retrieves all conversations, newest-created-first.
	ListConversations(ctx context.Context) ([]*Conversation, error)

	// DeleteConversation removes a conversation. Returns true when a row was deleted.
	DeleteConversation(ctx context.Context, id string) (bool, error)

	// ClearConversations removes every conversation and returns the count removed.
	ClearConversations(ctx context.Context) (int, error)

	// RunMaintenance performs store maintenance tasks like VACUUM.
	RunMaintenance(ctx context.Context) error
}

// conversationRow mirrors the conversations table. Messages and the lead
// analysis are stored as JSON text, keeping the table document-style with
// exactly one row per conversation.
type conversationRow struct {
	ConversationID string         `db:"conversation_id"`
	CreatedAt      time.Time      `db:"created_at"`
	Messages       string         `db:"messages"`
	LeadAnalysis   sql.NullString `db:"lead_analysis"`
	AnalyzedAt     sql.NullTime   `db:"analyzed_at"`
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateConversation inserts a conversation row with an empty message list.
func (s *sqlxStore) CreateConversation(ctx context.Context, id string) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	row := conversationRow{
		ConversationID: id,
		CreatedAt:      time.Now().UTC(),
		Messages:       "[]",
	}

	query := `
        INSERT INTO conversations (conversation_id, created_at, messages)
        VALUES (:conversation_id, :created_at, :messages);
    `

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating conversation", "conversation_id", id, "error", err)
		return nil, fmt.Errorf("failed to create conversation %s: %w", id, err)
	}

	if affected, affErr := result.RowsAffected(); affErr == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when creating conversation",
			"conversation_id", id, "affected", affected)
	}

	s.logger.DebugContext(ctx, "Conversation created successfully", "conversation_id", id)
	return rowToConversation(&row)
}

// GetConversation retrieves a conversation by id. Returns nil, nil if not found.
func (s *sqlxStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var row conversationRow
	query := `SELECT conversation_id, created_at, messages, lead_analysis, analyzed_at
	          FROM conversations WHERE conversation_id = ?`

	err := s.db.GetContext(ctx, &row, query, id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Not found is expected in some cases, not an error
		s.logger.DebugContext(ctx, "No conversation found", "conversation_id", id)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching conversation",
			"conversation_id", id, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting conversation", "conversation_id", id, "error", err)
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}

	return rowToConversation(&row)
}

// UpdateMessages fully replaces the messages field of a conversation.
func (s *sqlxStore) UpdateMessages(ctx context.Context, id string, msgs []Message) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	encoded, err := encodeMessages(msgs)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET messages = ? WHERE conversation_id = ?`, encoded, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating conversation messages",
			"conversation_id", id, "message_count", len(msgs), "error", err)
		return nil, fmt.Errorf("failed to update messages for conversation %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when updating messages",
			"conversation_id", id, "error", err)
	} else if affected == 0 {
		s.logger.DebugContext(ctx, "No conversation row to update", "conversation_id", id)
		return nil, nil
	}

	s.logger.DebugContext(ctx, "Conversation messages updated successfully",
		"conversation_id", id, "message_count", len(msgs))
	return s.GetConversation(ctx, id)
}

// SaveLeadAnalysis stores the lead analysis result and analysis timestamp.
func (s *sqlxStore) SaveLeadAnalysis(ctx context.Context, id string, lead *Lead, analyzedAt time.Time) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}
	if lead == nil {
		return nil, fmt.Errorf("cannot save nil lead analysis")
	}

	encoded, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lead analysis: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET lead_analysis = ?, analyzed_at = ? WHERE conversation_id = ?`,
		string(encoded), analyzedAt.UTC(), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving lead analysis", "conversation_id", id, "error", err)
		return nil, fmt.Errorf("failed to save lead analysis for conversation %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when saving lead analysis",
			"conversation_id", id, "error", err)
	} else if affected == 0 {
		s.logger.DebugContext(ctx, "No conversation row for lead analysis", "conversation_id", id)
		return nil, nil
	}

	s.logger.DebugContext(ctx, "Lead analysis saved successfully", "conversation_id", id)
	return s.GetConversation(ctx, id)
}

// ListConversations retrieves all conversations, newest-created-first.
func (s *sqlxStore) ListConversations(ctx context.Context) ([]*Conversation, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var rows []conversationRow
	query := `SELECT conversation_id, created_at, messages, lead_analysis, analyzed_at
	          FROM conversations
	          ORDER BY created_at DESC`

	s.logger.DebugContext(ctx, "Fetching all conversations")
	err := s.db.SelectContext(ctx, &rows, query)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing conversations", "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error listing conversations", "error", err)
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]*Conversation, 0, len(rows))
	for i := range rows {
		conv, convErr := rowToConversation(&rows[i])
		if convErr != nil {
			s.logger.WarnContext(ctx, "Skipping undecodable conversation row",
				"conversation_id", rows[i].ConversationID, "error", convErr)
			continue
		}
		conversations = append(conversations, conv)
	}

	s.logger.DebugContext(ctx, "Fetched conversations successfully", "count", len(conversations))
	return conversations, nil
}

// DeleteConversation removes a conversation. Returns true when a row was deleted.
func (s *sqlxStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("conversation id cannot be empty")
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE conversation_id = ?`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting conversation", "conversation_id", id, "error", err)
		return false, fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count when deleting conversation",
			"conversation_id", id, "error", err)
		return false, nil
	}

	s.logger.DebugContext(ctx, "Conversation delete executed", "conversation_id", id, "affected", affected)
	return affected > 0, nil
}

// ClearConversations removes every conversation and returns the count removed.
func (s *sqlxStore) ClearConversations(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error clearing conversations", "error", err)
		return 0, fmt.Errorf("failed to clear conversations: %w", err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Cleared all conversations", "count", count)
	return int(count), nil
}

// RunMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

// encodeMessages serializes a message list for storage. A nil slice is
// stored as an empty JSON array so reads always yield a list.
func encodeMessages(msgs []Message) (string, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("failed to encode messages: %w", err)
	}
	return string(encoded), nil
}

// rowToConversation decodes a table row into the domain model.
func rowToConversation(row *conversationRow) (*Conversation, error) {
	conv := &Conversation{
		ID:        row.ConversationID,
		CreatedAt: row.CreatedAt,
		Messages:  []Message{},
	}

	if row.Messages != "" {
		if err := json.Unmarshal([]byte(row.Messages), &conv.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages for conversation %s: %w", row.ConversationID, err)
		}
	}

	if row.LeadAnalysis.Valid && row.LeadAnalysis.String != "" {
		lead := &Lead{}
		if err := json.Unmarshal([]byte(row.LeadAnalysis.String), lead); err != nil {
			return nil, fmt.Errorf("failed to decode lead analysis for conversation %s: %w", row.ConversationID, err)
		}
		conv.LeadAnalysis = lead
	}

	if row.AnalyzedAt.Valid {
		at := row.AnalyzedAt.Time
		conv.AnalyzedAt = &at
	}

	return conv, nil
}
