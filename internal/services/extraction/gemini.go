package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/models"
	"google.golang.org/genai"
)

// GeminiExtractor implements the Extractor interface using the Google
// Gemini API
type GeminiExtractor struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiExtractor creates a Gemini-backed extraction strategy
func NewGeminiExtractor(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiExtractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required for Gemini extraction (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout duration '%s': %w", config.Timeout, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Debug().Str("model", config.Model).Msg("Gemini extractor initialized")

	return &GeminiExtractor{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}, nil
}

// Mode identifies the strategy
func (e *GeminiExtractor) Mode() string { return "gemini" }

// Extract sends the text to Gemini and parses the structured reply
func (e *GeminiExtractor) Extract(ctx context.Context, text string) (models.ExtractedFields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(e.config.Temperature),
		SystemInstruction: genai.NewContentFromText(extractionSystemPrompt, genai.RoleUser),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildExtractionPrompt(text), genai.RoleUser),
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.config.Model, contents, config)
	if err != nil {
		return models.ExtractedFields{}, fmt.Errorf("Gemini API call failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return models.ExtractedFields{}, fmt.Errorf("no response generated from Gemini API")
	}

	return parseExtractionResponse(response.String())
}
