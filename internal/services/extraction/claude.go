package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/models"
)

// ClaudeExtractor implements the Extractor interface using the Anthropic
// Claude API
type ClaudeExtractor struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	timeout time.Duration
}

// NewClaudeExtractor creates a Claude-backed extraction strategy
func NewClaudeExtractor(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeExtractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude extraction (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout duration '%s': %w", config.Timeout, err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	logger.Debug().Str("model", config.Model).Msg("Claude extractor initialized")

	return &ClaudeExtractor{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}, nil
}

// Mode identifies the strategy
func (e *ClaudeExtractor) Mode() string { return "claude" }

// Extract sends the text to Claude and parses the structured reply
func (e *ClaudeExtractor) Extract(ctx context.Context, text string) (models.ExtractedFields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.config.Model),
		MaxTokens: int64(e.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildExtractionPrompt(text))),
		},
		System: []anthropic.TextBlockParam{
			{Text: extractionSystemPrompt},
		},
	}
	if e.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(e.config.Temperature))
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return models.ExtractedFields{}, fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return models.ExtractedFields{}, fmt.Errorf("no response generated from Claude API")
	}

	return parseExtractionResponse(response.String())
}
