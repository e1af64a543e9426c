package signals

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/models"
)

// fakeCalendar is a scriptable HolidayCalendar collaborator
type fakeCalendar struct {
	holiday bool
	err     error
}

func (f *fakeCalendar) IsMarketHoliday(ctx context.Context, date time.Time) (bool, error) {
	return f.holiday, f.err
}

func TestAssembler_FreshRegulatoryApproval(t *testing.T) {
	a := NewAssembler(nil, common.GetLogger())
	now := time.Now().UTC()

	event := models.RawEvent{
		Source:     "fda.gov",
		URL:        "https://fda.gov/news/1",
		SignalType: models.SignalFDAApproval,
		Sentiment:  models.SentimentPositive,
		Timestamp:  now,
	}
	entity := &models.ResolvedEntity{Ticker: "PFE", Company: "Pfizer", Tier: models.TierManual, Confidence: 1.0}

	signal := a.Assemble(event, entity, 72*time.Hour)

	if signal.Ticker != "PFE" {
		t.Errorf("ticker = %s, want PFE", signal.Ticker)
	}
	if len(signal.Sources) != 1 || signal.Sources[0].Reliability != 1.0 {
		t.Errorf("sources = %+v, want one fda.gov source at reliability 1.0", signal.Sources)
	}
	// reliability 1.0 x recency 1.0 x resolution 1.0 x 100
	if signal.Confidence != 100 {
		t.Errorf("confidence = %d, want 100", signal.Confidence)
	}
	// Base move scaled by full confidence and a single full-weight source
	if math.Abs(signal.TargetUpsidePct-15.2) > 1e-9 {
		t.Errorf("target upside = %v, want 15.2", signal.TargetUpsidePct)
	}
	if math.Abs(signal.TargetDownsidePct-(-5.0)) > 1e-9 {
		t.Errorf("target downside = %v, want -5.0", signal.TargetDownsidePct)
	}
	if signal.SignalID != models.SignalID(signal.DedupKey) {
		t.Error("signal id not derived from dedup key")
	}
}

func TestAssembler_IdsAreIdempotent(t *testing.T) {
	a := NewAssembler(nil, common.GetLogger())
	timestamp := time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC)

	event := models.RawEvent{
		Source:     "fda.gov",
		SignalType: models.SignalFDAApproval,
		Sentiment:  models.SentimentPositive,
		Timestamp:  timestamp,
	}
	entity := &models.ResolvedEntity{Ticker: "PFE", Company: "Pfizer", Confidence: 1.0}

	first := a.Assemble(event, entity, 72*time.Hour)
	second := a.Assemble(event, entity, 72*time.Hour)

	if first.SignalID != second.SignalID {
		t.Errorf("identical input produced different ids: %s vs %s", first.SignalID, second.SignalID)
	}
}

func validSignal() *models.Signal {
	now := time.Now().UTC()
	return &models.Signal{
		SignalID:   "sig_0123456789abcdef",
		SignalType: models.SignalFDAApproval,
		Ticker:     "PFE",
		Company:    "Pfizer",
		Confidence: 85,
		Sentiment:  models.SentimentPositive,
		Sources: []models.SourceRef{
			{Name: "fda.gov", URL: "https://fda.gov/news/1", Reliability: 1.0},
		},
		CreatedAt: now,
		UpdatedAt: now,
		EventTime: now.Add(-2 * time.Hour),
	}
}

func TestAssembler_ValidateAcceptsWellFormed(t *testing.T) {
	a := NewAssembler(&fakeCalendar{}, common.GetLogger())

	if err := a.Validate(context.Background(), validSignal()); err != nil {
		t.Fatalf("valid signal rejected: %v", err)
	}
}

func TestAssembler_ValidateRejections(t *testing.T) {
	a := NewAssembler(&fakeCalendar{}, common.GetLogger())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.Signal)
	}{
		{"lowercase ticker", func(s *models.Signal) { s.Ticker = "pfe" }},
		{"overlong ticker", func(s *models.Signal) { s.Ticker = "TOOLONG" }},
		{"confidence above bounds", func(s *models.Signal) { s.Confidence = 101 }},
		{"no sources", func(s *models.Signal) { s.Sources = nil }},
		{"duplicate source names", func(s *models.Signal) {
			s.Sources = append(s.Sources, s.Sources[0])
		}},
		{"created in the future", func(s *models.Signal) {
			s.CreatedAt = time.Now().UTC().Add(48 * time.Hour)
		}},
		{"missing company", func(s *models.Signal) { s.Company = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := validSignal()
			tt.mutate(signal)

			err := a.Validate(ctx, signal)
			var valErr *models.ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAssembler_ValidateRejectsHolidayEvents(t *testing.T) {
	a := NewAssembler(&fakeCalendar{holiday: true}, common.GetLogger())

	err := a.Validate(context.Background(), validSignal())
	var valErr *models.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for holiday event, got %v", err)
	}
}

func TestAssembler_CalendarOutageDoesNotBlock(t *testing.T) {
	a := NewAssembler(&fakeCalendar{err: errors.New("timeout")}, common.GetLogger())

	if err := a.Validate(context.Background(), validSignal()); err != nil {
		t.Fatalf("calendar outage must not reject the signal: %v", err)
	}
}

func TestComputeTargets_WeightedByReliability(t *testing.T) {
	strongOnly := []models.SourceRef{{Name: "fda.gov", Reliability: 1.0}}
	mixed := []models.SourceRef{
		{Name: "fda.gov", Reliability: 1.0},
		{Name: "reddit.com", Reliability: 0.4},
	}

	strongUp, _ := computeTargets(models.SignalFDAApproval, strongOnly, 100)
	mixedUp, _ := computeTargets(models.SignalFDAApproval, mixed, 100)

	// A weak corroborating source dilutes the effective weight
	if mixedUp >= strongUp {
		t.Errorf("mixed-source upside %v not below strong-only %v", mixedUp, strongUp)
	}
	if mixedUp <= 0 {
		t.Errorf("upside %v lost its sign", mixedUp)
	}
}

func TestComputeTargets_ScalesWithConfidence(t *testing.T) {
	sources := []models.SourceRef{{Name: "fda.gov", Reliability: 1.0}}

	fullUp, fullDown := computeTargets(models.SignalFDAApproval, sources, 100)
	halfUp, halfDown := computeTargets(models.SignalFDAApproval, sources, 50)

	if math.Abs(halfUp-fullUp/2) > 0.05 {
		t.Errorf("half-confidence upside = %v, want about %v", halfUp, fullUp/2)
	}
	if math.Abs(halfDown-fullDown/2) > 0.05 {
		t.Errorf("half-confidence downside = %v, want about %v", halfDown, fullDown/2)
	}
}
