package database

import (
	"time"
)

// Message roles. System messages are synthesized per request for the
// completion prompt and never persisted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Lead quality categories produced by the analysis pass.
const (
	LeadQualityGood = "good"
	LeadQualityOK   = "ok"
	LeadQualitySpam = "spam"
)

// Message represents a single chat turn entry inside a conversation.
// Persisted messages always occur in (user, assistant) pairs appended
// together, except a possible leading assistant-only welcome message.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Lead is the structured extraction of customer intent and contact info
// derived from a conversation transcript. All nine fields are always
// present in responses, even when extraction fails.
type Lead struct {
	CustomerName         string `json:"customerName"`
	CustomerEmail        string `json:"customerEmail"`
	CustomerPhone        string `json:"customerPhone"`
	CustomerIndustry     string `json:"customerIndustry"`
	CustomerProblem      string `json:"customerProblem"`
	CustomerAvailability string `json:"customerAvailability"`
	CustomerConsultation bool   `json:"customerConsultation"`
	SpecialNotes         string `json:"specialNotes"`
	LeadQuality          string `json:"leadQuality"`
}

// Conversation is the persisted record of one chat session.
type Conversation struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"createdAt"`
	Messages     []Message  `json:"messages"`
	LeadAnalysis *Lead      `json:"leadAnalysis,omitempty"`
	AnalyzedAt   *time.Time `json:"analyzedAt,omitempty"`
}
