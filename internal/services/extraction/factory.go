package extraction

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
)

// NewExtractor builds the configured extraction strategy
func NewExtractor(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.Extractor, error) {
	switch cfg.Extraction.Mode {
	case "regex", "":
		return NewRegexExtractor(logger), nil
	case "claude":
		return NewClaudeExtractor(&cfg.Claude, logger)
	case "gemini":
		return NewGeminiExtractor(ctx, &cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", cfg.Extraction.Mode)
	}
}
