package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"leadchat/internal/database"
)

// newSQLStore opens a fresh on-disk SQLite database in a temp dir and
// returns a Store over it.
func newSQLStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestSQLStoreConversationLifecycle(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "conv_1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if conv.ID != "conv_1" {
		t.Errorf("expected id conv_1, got %q", conv.ID)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("expected empty message list, got %d", len(conv.Messages))
	}
	if conv.LeadAnalysis != nil || conv.AnalyzedAt != nil {
		t.Error("new conversation should carry no analysis")
	}

	got, err := store.GetConversation(ctx, "conv_1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.ID != "conv_1" {
		t.Fatalf("expected stored conversation, got %+v", got)
	}

	messages := []database.Message{
		{Role: database.RoleUser, Content: "hi", Timestamp: time.Now().UTC()},
		{Role: database.RoleAssistant, Content: "hello", Timestamp: time.Now().UTC()},
	}
	updated, err := store.UpdateMessages(ctx, "conv_1", messages)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(updated.Messages))
	}
	if updated.Messages[1].Content != "hello" {
		t.Errorf("unexpected assistant message: %+v", updated.Messages[1])
	}

	deleted, err := store.DeleteConversation(ctx, "conv_1")
	if err != nil || !deleted {
		t.Fatalf("expected delete to report true, got %v, %v", deleted, err)
	}

	got, err = store.GetConversation(ctx, "conv_1")
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestSQLStoreGetMissingReturnsNil(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)

	conv, err := store.GetConversation(context.Background(), "conv_missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv != nil {
		t.Errorf("expected nil for missing conversation, got %+v", conv)
	}
}

func TestSQLStoreUpdateMissingReturnsNil(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)

	conv, err := store.UpdateMessages(context.Background(), "conv_missing", []database.Message{
		{Role: database.RoleUser, Content: "hi", Timestamp: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv != nil {
		t.Errorf("expected nil when updating missing conversation, got %+v", conv)
	}
}

func TestSQLStoreDeleteMissingReturnsFalse(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)

	deleted, err := store.DeleteConversation(context.Background(), "conv_missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected false when deleting missing conversation")
	}
}

func TestSQLStoreSaveLeadAnalysis(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)
	ctx := context.Background()

	if _, err := store.CreateConversation(ctx, "conv_1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	lead := &database.Lead{
		CustomerName: "Ada Lovelace",
		LeadQuality:  database.LeadQualityGood,
	}
	analyzedAt := time.Now().UTC()

	conv, err := store.SaveLeadAnalysis(ctx, "conv_1", lead, analyzedAt)
	if err != nil {
		t.Fatalf("save analysis failed: %v", err)
	}
	if conv == nil || conv.LeadAnalysis == nil {
		t.Fatal("expected analysis attached to the returned conversation")
	}
	if conv.LeadAnalysis.CustomerName != "Ada Lovelace" {
		t.Errorf("unexpected analysis round-trip: %+v", conv.LeadAnalysis)
	}
	if conv.AnalyzedAt == nil {
		t.Error("expected analyzedAt to be set")
	}

	missing, err := store.SaveLeadAnalysis(ctx, "conv_missing", lead, analyzedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil when analyzing missing conversation, got %+v", missing)
	}
}

func TestSQLStoreListNewestFirst(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)
	ctx := context.Background()

	for _, id := range []string{"conv_a", "conv_b", "conv_c"} {
		if _, err := store.CreateConversation(ctx, id); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
		// Distinct created_at values so the ordering is deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	conversations, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(conversations) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(conversations))
	}
	if conversations[0].ID != "conv_c" || conversations[2].ID != "conv_a" {
		t.Errorf("expected newest-first ordering, got %s, %s, %s",
			conversations[0].ID, conversations[1].ID, conversations[2].ID)
	}
}

func TestSQLStoreClearConversations(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)
	ctx := context.Background()

	for _, id := range []string{"conv_a", "conv_b"} {
		if _, err := store.CreateConversation(ctx, id); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	count, err := store.ClearConversations(ctx)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 cleared, got %d", count)
	}

	conversations, err := store.ListConversations(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(conversations) != 0 {
		t.Errorf("expected empty store after clear, got %d", len(conversations))
	}
}

func TestSQLStoreRunMaintenance(t *testing.T) {
	t.Parallel()

	store := newSQLStore(t)

	if err := store.RunMaintenance(context.Background()); err != nil {
		t.Errorf("maintenance failed: %v", err)
	}
}
