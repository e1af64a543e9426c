package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/medsignals/internal/models"
)

// extractionSystemPrompt instructs the LLM strategies to return only the
// structured fields the engine consumes
const extractionSystemPrompt = `You are an information extraction service for medical and financial news.
Extract structured fields from the provided text and respond with a single JSON object, no prose:
{
  "drug": "drug or therapy name, or empty string",
  "company": "company name, or empty string",
  "ticker": "stock ticker if explicitly stated, or empty string",
  "cik": "SEC CIK number if present, or empty string",
  "phase": "clinical trial phase, or empty string",
  "outcome": "one of: approved, rejected, endpoint_met, endpoint_missed, positive, negative, or empty string",
  "stats": {"p_value": 0, "efficacy": 0, "enrollment": 0, "nct_id": ""}
}
Use empty strings and zeros for anything not present. Never invent values.`

// buildExtractionPrompt wraps the source text for one extraction request
func buildExtractionPrompt(text string) string {
	return fmt.Sprintf("Extract the fields from this text:\n\n%s", text)
}

// parseExtractionResponse decodes the LLM's JSON reply, tolerating
// markdown code fences around the object
func parseExtractionResponse(response string) (models.ExtractedFields, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var fields models.ExtractedFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return models.ExtractedFields{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return fields, nil
}
