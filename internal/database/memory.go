package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// memoryStore is a process-lifetime Store used as a degraded-mode fallback
// when the primary store is unreachable. Data held here is lost on restart;
// it exists only so the chat widget keeps working while the database is down.
type memoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	logger        *slog.Logger
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore(logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &memoryStore{
		conversations: make(map[string]*Conversation),
		logger:        logger.With("component", "memory_store"),
	}
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *memoryStore) CreateConversation(ctx context.Context, id string) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.conversations[id]; ok {
		return copyConversation(existing), nil
	}

	conv := &Conversation{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Messages:  []Message{},
	}
	s.conversations[id] = conv

	s.logger.DebugContext(ctx, "Conversation created in memory store", "conversation_id", id)
	return copyConversation(conv), nil
}

func (s *memoryStore) GetConversation(_ context.Context, id string) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	return copyConversation(conv), nil
}

func (s *memoryStore) UpdateMessages(_ context.Context, id string, msgs []Message) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}

	conv.Messages = append([]Message(nil), msgs...)
	return copyConversation(conv), nil
}

func (s *memoryStore) SaveLeadAnalysis(_ context.Context, id string, lead *Lead, analyzedAt time.Time) (*Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("conversation id cannot be empty")
	}
	if lead == nil {
		return nil, fmt.Errorf("cannot save nil lead analysis")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}

	leadCopy := *lead
	at := analyzedAt.UTC()
	conv.LeadAnalysis = &leadCopy
	conv.AnalyzedAt = &at
	return copyConversation(conv), nil
}

func (s *memoryStore) ListConversations(_ context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversations := make([]*Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		conversations = append(conversations, copyConversation(conv))
	}

	// Newest-created-first, matching the primary store's ordering.
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})

	return conversations, nil
}

func (s *memoryStore) DeleteConversation(_ context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("conversation id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return false, nil
	}
	delete(s.conversations, id)
	return true, nil
}

func (s *memoryStore) ClearConversations(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.conversations)
	s.conversations = make(map[string]*Conversation)

	s.logger.InfoContext(ctx, "Cleared in-memory conversations", "count", count)
	return count, nil
}

func (s *memoryStore) RunMaintenance(_ context.Context) error {
	return nil
}

// copyConversation returns a deep copy so callers cannot mutate store state.
func copyConversation(conv *Conversation) *Conversation {
	out := &Conversation{
		ID:        conv.ID,
		CreatedAt: conv.CreatedAt,
		Messages:  append([]Message(nil), conv.Messages...),
	}
	if conv.LeadAnalysis != nil {
		lead := *conv.LeadAnalysis
		out.LeadAnalysis = &lead
	}
	if conv.AnalyzedAt != nil {
		at := *conv.AnalyzedAt
		out.AnalyzedAt = &at
	}
	return out
}
