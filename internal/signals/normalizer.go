package signals

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/models"
)

// Normalizer canonicalizes raw collector records into RawEvents. Pure apart
// from logging; a record failing its type's required fields is dropped and
// the batch continues.
type Normalizer struct {
	logger arbor.ILogger
}

// NewNormalizer creates a Normalizer
func NewNormalizer(logger arbor.ILogger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts one collector record into canonical form. Returns a
// NormalizationError when the declared type's required fields are missing.
func (n *Normalizer) Normalize(record models.RawRecord) (models.RawEvent, error) {
	signalType, ok := MapTypeHint(record.TypeHint)
	if !ok {
		return models.RawEvent{}, &models.NormalizationError{
			Source:   record.Source,
			TypeHint: record.TypeHint,
			Missing:  "recognized type hint",
		}
	}

	if missing := requiredFieldMissing(signalType, record.Extracted); missing != "" {
		return models.RawEvent{}, &models.NormalizationError{
			Source:   record.Source,
			TypeHint: record.TypeHint,
			Missing:  missing,
		}
	}

	timestamp := record.Timestamp
	if timestamp.IsZero() {
		return models.RawEvent{}, &models.NormalizationError{
			Source:   record.Source,
			TypeHint: record.TypeHint,
			Missing:  "timestamp",
		}
	}

	return models.RawEvent{
		Source:     record.Source,
		URL:        strings.TrimSpace(record.URL),
		SignalType: signalType,
		Sentiment:  inferSentiment(signalType, record.Extracted),
		Timestamp:  timestamp.UTC(),
		Text:       strings.TrimSpace(record.RawText),
		Extracted:  record.Extracted,
	}, nil
}

// NormalizeBatch normalizes a batch, dropping and logging failed records.
// Returns the surviving events and the drop count.
func (n *Normalizer) NormalizeBatch(records []models.RawRecord) ([]models.RawEvent, int) {
	events := make([]models.RawEvent, 0, len(records))
	dropped := 0
	for _, record := range records {
		event, err := n.Normalize(record)
		if err != nil {
			dropped++
			n.logger.Warn().
				Str("source", record.Source).
				Str("type_hint", record.TypeHint).
				Err(err).
				Msg("Dropping record that failed normalization")
			continue
		}
		events = append(events, event)
	}
	return events, dropped
}

// requiredFieldMissing returns the name of the first required field absent
// for the given type, or "" when the record is complete
func requiredFieldMissing(signalType models.SignalType, fields models.ExtractedFields) string {
	switch {
	case isClinicalType(signalType):
		// Clinical events need something to resolve a company from
		if fields.Company == "" && fields.Drug == "" && fields.Ticker == "" {
			return "drug or company"
		}
	case signalType == models.SignalSECFiling:
		if fields.Ticker == "" && fields.CIK == "" && fields.Company == "" {
			return "ticker or CIK"
		}
	case signalType == models.SignalRedditSentiment:
		if fields.Ticker == "" && fields.Company == "" {
			return "ticker or company"
		}
	}
	return ""
}

// inferSentiment picks the event direction. The type's default applies
// unless the extracted outcome overrides it for sentiment-style events.
func inferSentiment(signalType models.SignalType, fields models.ExtractedFields) models.Sentiment {
	if signalType == models.SignalRedditSentiment || signalType == models.SignalSECFiling {
		switch strings.ToLower(fields.Outcome) {
		case "positive", "bullish":
			return models.SentimentPositive
		case "negative", "bearish":
			return models.SentimentNegative
		}
	}
	return defaultSentiment[signalType]
}
