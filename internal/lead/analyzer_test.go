package lead

import (
	"context"
	"testing"
	"time"

	"leadchat/internal/ai"
	"leadchat/internal/database"
	apperrors "leadchat/internal/errors"
)

// stubClient returns a canned completion, recording the request it received.
type stubClient struct {
	reply   string
	err     error
	lastReq ai.Request
}

func (c *stubClient) Complete(_ context.Context, req ai.Request) (string, error) {
	c.lastReq = req
	return c.reply, c.err
}

func newTestGateway(t *testing.T) *database.Gateway {
	t.Helper()
	return database.NewGateway(database.NewMemoryStore(nil), nil, nil)
}

func seedConversation(t *testing.T, gateway *database.Gateway, id string) {
	t.Helper()

	if conv := gateway.Create(context.Background(), id); conv == nil {
		t.Fatalf("failed to seed conversation %q", id)
	}
	messages := []database.Message{
		{Role: database.RoleUser, Content: "I need a website", Timestamp: time.Now().UTC()},
		{Role: database.RoleAssistant, Content: "Happy to help", Timestamp: time.Now().UTC()},
	}
	if conv := gateway.Update(context.Background(), id, messages); conv == nil {
		t.Fatalf("failed to seed messages for %q", id)
	}
}

func TestAnalyzeUnknownConversation(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubClient{}, newTestGateway(t), nil)

	_, err := analyzer.Analyze(context.Background(), "conv_missing")
	if err == nil {
		t.Fatal("expected error for unknown conversation")
	}
	if apperrors.Code(err) != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", apperrors.Code(err))
	}
}

func TestAnalyzeParsesLeadAndPersists(t *testing.T) {
	t.Parallel()

	client := &stubClient{reply: `{
		"customerName": "Ada Lovelace",
		"customerEmail": "ada@example.com",
		"customerPhone": "+1 555 0100",
		"customerIndustry": "Software",
		"customerProblem": "Needs a marketing site",
		"customerAvailability": "Weekday mornings",
		"customerConsultation": true,
		"specialNotes": "Referred by a client",
		"leadQuality": "good"
	}`}
	gateway := newTestGateway(t)
	seedConversation(t, gateway, "conv_1")

	analyzer := NewAnalyzer(client, gateway, nil)
	result, err := analyzer.Analyze(context.Background(), "conv_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Lead.CustomerName != "Ada Lovelace" {
		t.Errorf("expected customer name Ada Lovelace, got %q", result.Lead.CustomerName)
	}
	if result.Lead.LeadQuality != database.LeadQualityGood {
		t.Errorf("expected lead quality good, got %q", result.Lead.LeadQuality)
	}
	if !result.Lead.CustomerConsultation {
		t.Error("expected customerConsultation true")
	}
	if result.Note != NoteSaved {
		t.Errorf("expected note %q, got %q", NoteSaved, result.Note)
	}
	if result.Conversation == nil || result.Conversation.LeadAnalysis == nil {
		t.Fatal("expected persisted conversation with analysis attached")
	}
	if result.Conversation.AnalyzedAt == nil {
		t.Error("expected analyzedAt to be set on the persisted conversation")
	}

	// The extraction call must be single-shot and deterministic.
	if len(client.lastReq.History) != 0 {
		t.Errorf("extraction request should carry no history, got %d entries", len(client.lastReq.History))
	}
	if client.lastReq.Temperature == nil || *client.lastReq.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %v", client.lastReq.Temperature)
	}
	if client.lastReq.MaxTokens != 1000 {
		t.Errorf("expected max tokens 1000, got %d", client.lastReq.MaxTokens)
	}
}

func TestAnalyzeCompletionFailurePassedThrough(t *testing.T) {
	t.Parallel()

	client := &stubClient{err: apperrors.NewUpstreamError("completion API returned an error", "rate limited", nil)}
	gateway := newTestGateway(t)
	seedConversation(t, gateway, "conv_1")

	analyzer := NewAnalyzer(client, gateway, nil)
	_, err := analyzer.Analyze(context.Background(), "conv_1")
	if apperrors.Code(err) != apperrors.CodeUpstream {
		t.Fatalf("expected UPSTREAM error, got %v", err)
	}
}

func TestParseLeadFallbackRecord(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubClient{}, newTestGateway(t), nil)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "I could not find any customer details."},
		{name: "truncated json", raw: `{"customerName": "Ada`},
		{name: "wrong field type", raw: `{"customerConsultation": "yes"}`},
	}

	want := database.Lead{
		CustomerName:         "Analysis failed",
		CustomerEmail:        "Not available",
		CustomerPhone:        "Not available",
		CustomerIndustry:     "Not specified",
		CustomerProblem:      "Could not extract from conversation",
		CustomerAvailability: "Not specified",
		CustomerConsultation: false,
		SpecialNotes:         "Analysis parsing failed",
		LeadQuality:          "ok",
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := analyzer.parseLead(context.Background(), tc.raw)
			if *got != want {
				t.Errorf("expected fallback record %+v, got %+v", want, *got)
			}
		})
	}
}

func TestParseLeadDefaults(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(&stubClient{}, newTestGateway(t), nil)

	tests := []struct {
		name        string
		raw         string
		wantName    string
		wantQuality string
	}{
		{
			name:        "missing name and quality",
			raw:         `{"customerEmail": "ada@example.com"}`,
			wantName:    "Not provided",
			wantQuality: "ok",
		},
		{
			name:        "unknown quality value",
			raw:         `{"customerName": "Ada", "leadQuality": "excellent"}`,
			wantName:    "Ada",
			wantQuality: "ok",
		},
		{
			name:        "spam preserved",
			raw:         `{"customerName": "Ada", "leadQuality": "spam"}`,
			wantName:    "Ada",
			wantQuality: "spam",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := analyzer.parseLead(context.Background(), tc.raw)
			if got.CustomerName != tc.wantName {
				t.Errorf("expected customer name %q, got %q", tc.wantName, got.CustomerName)
			}
			if got.LeadQuality != tc.wantQuality {
				t.Errorf("expected lead quality %q, got %q", tc.wantQuality, got.LeadQuality)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no fence", input: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fence with surrounding whitespace", input: "  ```json\n{\"a\":1}\n```  ", want: `{"a":1}`},
		{name: "fence marker mid-text untouched", input: "see ```json above", want: "see ```json above"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := stripFences(tc.input); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRenderTranscript(t *testing.T) {
	t.Parallel()

	messages := []database.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}

	want := "user: hello\nassistant: hi there"
	if got := renderTranscript(messages); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if got := renderTranscript(nil); got != "" {
		t.Errorf("expected empty transcript for no messages, got %q", got)
	}
}
