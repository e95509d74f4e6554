package lead

import "fmt"

// ExtractionSystemPrompt frames the extraction call. The analysis pass runs
// single-shot over the rendered transcript, with no chat history.
const ExtractionSystemPrompt = "You are a lead analysis assistant. Extract customer information from conversation transcripts and return structured JSON data."

// extractionPromptTemplate embeds the target JSON shape as a guide for the
// model. The schema is advisory only; the parser tolerates deviations and
// falls back to a fixed record when the output is not valid JSON.
const extractionPromptTemplate = `Extract the following customer details from the transcript:
- Name
- Email address
- Phone number
- Industry
- Problems, needs, and goals summary
- Availability
- Whether they have booked a consultation (true/false)
- Any special notes
- Lead quality (categorize as 'good', 'ok', or 'spam')

Format the response using this JSON schema:
{
  "type": "object",
  "properties": {
    "customerName": { "type": "string" },
    "customerEmail": { "type": "string" },
    "customerPhone": { "type": "string" },
    "customerIndustry": { "type": "string" },
    "customerProblem": { "type": "string" },
    "customerAvailability": { "type": "string" },
    "customerConsultation": { "type": "boolean" },
    "specialNotes": { "type": "string" },
    "leadQuality": { "type": "string", "enum": ["good", "ok", "spam"] }
  },
  "required": ["customerName", "customerEmail", "customerProblem", "leadQuality"]
}

Conversation transcript:
%s

Please analyze this conversation and return only the JSON response.`

// buildExtractionPrompt renders the full extraction prompt for a transcript.
func buildExtractionPrompt(transcript string) string {
	return fmt.Sprintf(extractionPromptTemplate, transcript)
}
