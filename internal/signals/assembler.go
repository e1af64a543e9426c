package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// Assembler builds candidate signals from resolved events and validates
// final signals before emission. A signal failing validation is discarded
// with a logged reason, never emitted partially formed.
type Assembler struct {
	validate *validator.Validate
	calendar interfaces.HolidayCalendar
	logger   arbor.ILogger
	now      func() time.Time
}

// NewAssembler creates an Assembler. The calendar collaborator may be nil,
// which disables the holiday check.
func NewAssembler(calendar interfaces.HolidayCalendar, logger arbor.ILogger) *Assembler {
	return &Assembler{
		validate: validator.New(),
		calendar: calendar,
		logger:   logger,
		now:      time.Now,
	}
}

// Assemble builds the candidate signal for one resolved event: scored,
// targeted, keyed for deduplication, with its deterministic id.
func (a *Assembler) Assemble(event models.RawEvent, entity *models.ResolvedEntity, window time.Duration) *models.Signal {
	now := a.now()
	reliability := SourceReliability(event.Source)

	source := models.SourceRef{
		Name:        event.Source,
		URL:         event.URL,
		Reliability: reliability,
	}

	dedupKey := models.DedupKey(event.SignalType, entity.Ticker, event.Timestamp, window)
	confidence := Score(reliability, entity.Confidence, event.Timestamp, now, 1)
	upside, downside := computeTargets(event.SignalType, []models.SourceRef{source}, confidence)

	return &models.Signal{
		SignalID:          models.SignalID(dedupKey),
		SignalType:        event.SignalType,
		Ticker:            entity.Ticker,
		Company:           entity.Company,
		Confidence:        confidence,
		Sentiment:         event.Sentiment,
		TargetUpsidePct:   upside,
		TargetDownsidePct: downside,
		Sources:           []models.SourceRef{source},
		CreatedAt:         now.UTC(),
		UpdatedAt:         now.UTC(),
		DedupKey:          dedupKey,
		EventTime:         event.Timestamp,
		Resolution:        entity.Confidence,
		SentimentScore:    sentimentVote(event.Sentiment, reliability),
	}
}

// Validate rejects malformed or out-of-bounds signals. Returns a
// ValidationError naming the failed check.
func (a *Assembler) Validate(ctx context.Context, signal *models.Signal) error {
	if err := a.validate.Struct(signal); err != nil {
		return &models.ValidationError{SignalID: signal.SignalID, Reason: err.Error()}
	}
	if !tickerPattern.MatchString(signal.Ticker) {
		return &models.ValidationError{
			SignalID: signal.SignalID,
			Reason:   fmt.Sprintf("malformed ticker %q", signal.Ticker),
		}
	}
	if seen := duplicateSourceName(signal.Sources); seen != "" {
		return &models.ValidationError{
			SignalID: signal.SignalID,
			Reason:   fmt.Sprintf("duplicate source name %q", seen),
		}
	}
	if signal.CreatedAt.After(a.now().Add(time.Minute)) {
		return &models.ValidationError{SignalID: signal.SignalID, Reason: "created_at in the future"}
	}

	if a.calendar != nil {
		holiday, err := a.calendar.IsMarketHoliday(ctx, signal.EventTime)
		if err != nil {
			// Calendar outage must not block emission
			a.logger.Warn().
				Str("signal_id", signal.SignalID).
				Err(err).
				Msg("Holiday calendar unavailable, skipping check")
		} else if holiday {
			return &models.ValidationError{SignalID: signal.SignalID, Reason: "event date is a market holiday"}
		}
	}
	return nil
}

// computeTargets scales the per-type base move table by the
// reliability-weighted effective source strength and the final confidence.
// Targets are percentages rounded to one decimal.
func computeTargets(signalType models.SignalType, sources []models.SourceRef, confidence int) (float64, float64) {
	base, ok := baseTargets[signalType]
	if !ok {
		return 0, 0
	}

	var sum, sumSquares float64
	for _, source := range sources {
		sum += source.Reliability
		sumSquares += source.Reliability * source.Reliability
	}
	if sum == 0 {
		return 0, 0
	}
	effective := sumSquares / sum
	scale := effective * float64(confidence) / 100

	return round(base.UpsidePct*scale, 1), round(base.DownsidePct*scale, 1)
}

// duplicateSourceName returns the first repeated source name, or ""
func duplicateSourceName(sources []models.SourceRef) string {
	seen := make(map[string]bool, len(sources))
	for _, source := range sources {
		if seen[source.Name] {
			return source.Name
		}
		seen[source.Name] = true
	}
	return ""
}
