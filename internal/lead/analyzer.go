// Package lead extracts structured lead records from stored conversations
// using the completion backend.
package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"leadchat/internal/ai"
	"leadchat/internal/database"
	apperrors "leadchat/internal/errors"
)

// Extraction call options. The analysis pass wants deterministic output and
// enough room for the full JSON record, independent of the chat defaults.
const (
	extractionMaxTokens   = 1000
	extractionTemperature = float32(0.1)
)

// Notes reported alongside an analysis result.
const (
	NoteSaved    = "Analysis saved to database"
	NoteNotSaved = "Analysis completed (database columns not yet added)"
)

// Result is the outcome of analyzing one conversation. Conversation is the
// persisted row carrying the analysis, or nil when persistence failed; the
// Lead itself is always present.
type Result struct {
	Lead         *database.Lead
	Conversation *database.Conversation
	Note         string
}

// Analyzer runs lead extraction over stored conversations.
type Analyzer struct {
	client  ai.Client
	gateway *database.Gateway
	log     *slog.Logger
}

// NewAnalyzer creates a lead analyzer.
func NewAnalyzer(client ai.Client, gateway *database.Gateway, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		client:  client,
		gateway: gateway,
		log:     log.With("component", "lead_analyzer"),
	}
}

// Analyze loads the conversation, sends its rendered transcript through the
// completion backend, and parses the reply into a Lead. Parsing never fails
// the operation: unusable output degrades to a fixed fallback record, and a
// failed persistence attempt degrades to a note on the result.
func (a *Analyzer) Analyze(ctx context.Context, conversationID string) (Result, error) {
	conv := a.gateway.Get(ctx, conversationID)
	if conv == nil {
		return Result{}, apperrors.NewNotFoundError("Conversation not found")
	}

	transcript := renderTranscript(conv.Messages)

	temperature := extractionTemperature
	raw, err := a.client.Complete(ctx, ai.Request{
		SystemPrompt: ExtractionSystemPrompt,
		UserMessage:  buildExtractionPrompt(transcript),
		MaxTokens:    extractionMaxTokens,
		Temperature:  &temperature,
	})
	if err != nil {
		return Result{}, err
	}
	if raw == "" {
		return Result{}, fmt.Errorf("completion backend returned no analysis text")
	}

	lead := a.parseLead(ctx, raw)

	result := Result{Lead: lead, Note: NoteNotSaved}
	if saved := a.gateway.SaveAnalysis(ctx, conversationID, lead, time.Now().UTC()); saved != nil {
		result.Conversation = saved
		result.Note = NoteSaved
	} else {
		a.log.WarnContext(ctx, "Lead analysis not persisted",
			"conversation_id", conversationID)
	}

	a.log.InfoContext(ctx, "Lead analysis completed",
		"conversation_id", conversationID,
		"lead_quality", lead.LeadQuality,
		"persisted", result.Conversation != nil)
	return result, nil
}

// parseLead turns raw model output into a Lead. Code fences are stripped
// first; output that still is not valid JSON yields the fixed fallback
// record rather than an error.
func (a *Analyzer) parseLead(ctx context.Context, raw string) *database.Lead {
	cleaned := stripFences(raw)

	var lead database.Lead
	if err := json.Unmarshal([]byte(cleaned), &lead); err != nil {
		a.log.WarnContext(ctx, "Analysis output is not valid JSON, using fallback record",
			"error", err, "output_length", len(raw))
		return fallbackLead()
	}

	if lead.CustomerName == "" {
		a.log.WarnContext(ctx, "Analysis output missing customer name, defaulting")
		lead.CustomerName = "Not provided"
	}
	switch lead.LeadQuality {
	case database.LeadQualityGood, database.LeadQualityOK, database.LeadQualitySpam:
	default:
		a.log.WarnContext(ctx, "Analysis output carries unknown lead quality, defaulting",
			"lead_quality", lead.LeadQuality)
		lead.LeadQuality = database.LeadQualityOK
	}

	return &lead
}

// stripFences removes a Markdown code fence wrapper (```json ... ``` or
// ``` ... ```) that models commonly add around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// renderTranscript flattens stored messages into the "role: content" lines
// the extraction prompt operates on.
func renderTranscript(messages []database.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

// fallbackLead is the fixed record recorded when the model's output cannot
// be parsed. All nine fields stay populated so the dashboard never renders
// a partial lead.
func fallbackLead() *database.Lead {
	return &database.Lead{
		CustomerName:         "Analysis failed",
		CustomerEmail:        "Not available",
		CustomerPhone:        "Not available",
		CustomerIndustry:     "Not specified",
		CustomerProblem:      "Could not extract from conversation",
		CustomerAvailability: "Not specified",
		CustomerConsultation: false,
		SpecialNotes:         "Analysis parsing failed",
		LeadQuality:          database.LeadQualityOK,
	}
}
