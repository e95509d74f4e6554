package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadchat/internal/database"
)

var errStoreDown = errors.New("store down")

// downStore fails every operation, simulating an unreachable primary.
type downStore struct{}

func (downStore) Ping(context.Context) error { return errStoreDown }
func (downStore) CreateConversation(context.Context, string) (*database.Conversation, error) {
	return nil, errStoreDown
}
func (downStore) GetConversation(context.Context, string) (*database.Conversation, error) {
	return nil, errStoreDown
}
func (downStore) UpdateMessages(context.Context, string, []database.Message) (*database.Conversation, error) {
	return nil, errStoreDown
}
func (downStore) SaveLeadAnalysis(context.Context, string, *database.Lead, time.Time) (*database.Conversation, error) {
	return nil, errStoreDown
}
func (downStore) ListConversations(context.Context) ([]*database.Conversation, error) {
	return nil, errStoreDown
}
func (downStore) DeleteConversation(context.Context, string) (bool, error) {
	return false, errStoreDown
}
func (downStore) ClearConversations(context.Context) (int, error) { return 0, errStoreDown }
func (downStore) RunMaintenance(context.Context) error            { return errStoreDown }

func TestGatewayPrimaryPath(t *testing.T) {
	t.Parallel()

	gateway := database.NewGateway(database.NewMemoryStore(nil), database.NewMemoryStore(nil), nil)
	ctx := context.Background()

	if conv := gateway.Create(ctx, "conv_1"); conv == nil || conv.ID != "conv_1" {
		t.Fatalf("expected created conversation, got %+v", conv)
	}
	if conv := gateway.Get(ctx, "conv_1"); conv == nil {
		t.Fatal("expected conversation retrievable")
	}
	if conv := gateway.Get(ctx, "conv_missing"); conv != nil {
		t.Errorf("expected nil for missing conversation, got %+v", conv)
	}
	if !gateway.Delete(ctx, "conv_1") {
		t.Error("expected delete to report true")
	}
	if gateway.Delete(ctx, "conv_1") {
		t.Error("expected second delete to report false")
	}
}

func TestGatewayFallsBackWhenPrimaryDown(t *testing.T) {
	t.Parallel()

	gateway := database.NewGateway(downStore{}, database.NewMemoryStore(nil), nil)
	ctx := context.Background()

	conv := gateway.Create(ctx, "conv_1")
	if conv == nil {
		t.Fatal("expected creation to land in the fallback store")
	}

	messages := []database.Message{
		{Role: database.RoleUser, Content: "hi", Timestamp: time.Now().UTC()},
	}
	if updated := gateway.Update(ctx, "conv_1", messages); updated == nil || len(updated.Messages) != 1 {
		t.Fatalf("expected update via fallback, got %+v", updated)
	}

	if got := gateway.Get(ctx, "conv_1"); got == nil {
		t.Error("expected read via fallback")
	}

	list := gateway.ListAll(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 conversation from fallback, got %d", len(list))
	}
}

func TestGatewayAbsorbsTotalFailure(t *testing.T) {
	t.Parallel()

	gateway := database.NewGateway(downStore{}, nil, nil)
	ctx := context.Background()

	if conv := gateway.Create(ctx, "conv_1"); conv != nil {
		t.Errorf("expected nil on total failure, got %+v", conv)
	}
	if conv := gateway.Get(ctx, "conv_1"); conv != nil {
		t.Errorf("expected nil on total failure, got %+v", conv)
	}
	if conv := gateway.Update(ctx, "conv_1", nil); conv != nil {
		t.Errorf("expected nil on total failure, got %+v", conv)
	}
	if gateway.Delete(ctx, "conv_1") {
		t.Error("expected false on total failure")
	}

	list := gateway.ListAll(ctx)
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil slice on total failure, got %v", list)
	}

	if err := gateway.Ping(ctx); err == nil {
		t.Error("expected ping to surface primary failure")
	}
}

func TestGatewayClearFallbackOnly(t *testing.T) {
	t.Parallel()

	primary := database.NewMemoryStore(nil)
	fallback := database.NewMemoryStore(nil)
	gateway := database.NewGateway(primary, fallback, nil)
	ctx := context.Background()

	// One conversation in each store.
	if _, err := primary.CreateConversation(ctx, "conv_primary"); err != nil {
		t.Fatalf("seed primary failed: %v", err)
	}
	if _, err := fallback.CreateConversation(ctx, "conv_fallback"); err != nil {
		t.Fatalf("seed fallback failed: %v", err)
	}

	if count := gateway.ClearFallback(ctx); count != 1 {
		t.Errorf("expected 1 cleared from fallback, got %d", count)
	}

	// The primary store keeps its data.
	if conv, _ := primary.GetConversation(ctx, "conv_primary"); conv == nil {
		t.Error("expected primary store untouched by clear")
	}
	if conv, _ := fallback.GetConversation(ctx, "conv_fallback"); conv != nil {
		t.Error("expected fallback store emptied")
	}
}
