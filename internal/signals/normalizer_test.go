package signals

import (
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/models"
)

func TestNormalizer_CanonicalizesRecord(t *testing.T) {
	n := NewNormalizer(common.GetLogger())
	sydney, _ := time.LoadLocation("Australia/Sydney")
	timestamp := time.Date(2026, 8, 20, 9, 30, 0, 0, sydney)

	event, err := n.Normalize(models.RawRecord{
		Source:    "fda.gov",
		URL:       "https://fda.gov/news/1",
		TypeHint:  "approval",
		Timestamp: timestamp,
		RawText:   "  FDA approves drug X  ",
		Extracted: models.ExtractedFields{Company: "Pfizer", Drug: "Drug X"},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if event.SignalType != models.SignalFDAApproval {
		t.Errorf("signal type = %s, want FDA_APPROVAL", event.SignalType)
	}
	if event.Sentiment != models.SentimentPositive {
		t.Errorf("sentiment = %s, want positive", event.Sentiment)
	}
	if event.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp not converted to UTC: %v", event.Timestamp)
	}
	if !event.Timestamp.Equal(timestamp) {
		t.Errorf("timestamp instant changed: %v vs %v", event.Timestamp, timestamp)
	}
	if event.Text != "FDA approves drug X" {
		t.Errorf("text not trimmed: %q", event.Text)
	}
}

func TestNormalizer_UnknownTypeHint(t *testing.T) {
	n := NewNormalizer(common.GetLogger())

	_, err := n.Normalize(models.RawRecord{
		Source:    "fda.gov",
		TypeHint:  "horoscope",
		Timestamp: time.Now(),
		Extracted: models.ExtractedFields{Company: "Pfizer"},
	})

	var normErr *models.NormalizationError
	if !errors.As(err, &normErr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestNormalizer_RequiredFields(t *testing.T) {
	n := NewNormalizer(common.GetLogger())
	now := time.Now()

	tests := []struct {
		name    string
		record  models.RawRecord
		wantErr bool
	}{
		{
			name: "clinical type without drug or company",
			record: models.RawRecord{
				Source: "fda.gov", TypeHint: "fda_approval", Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "clinical type with drug only",
			record: models.RawRecord{
				Source: "fda.gov", TypeHint: "fda_approval", Timestamp: now,
				Extracted: models.ExtractedFields{Drug: "Keytruda"},
			},
			wantErr: false,
		},
		{
			name: "filing without ticker or CIK",
			record: models.RawRecord{
				Source: "sec.gov", TypeHint: "8-k", Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "filing with CIK",
			record: models.RawRecord{
				Source: "sec.gov", TypeHint: "8-k", Timestamp: now,
				Extracted: models.ExtractedFields{CIK: "0000078003", Company: "Pfizer"},
			},
			wantErr: false,
		},
		{
			name: "sentiment without ticker or company",
			record: models.RawRecord{
				Source: "reddit.com", TypeHint: "dd", Timestamp: now,
			},
			wantErr: true,
		},
		{
			name: "missing timestamp",
			record: models.RawRecord{
				Source: "fda.gov", TypeHint: "fda_approval",
				Extracted: models.ExtractedFields{Company: "Pfizer"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.record)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizer_SentimentOverrideFromOutcome(t *testing.T) {
	n := NewNormalizer(common.GetLogger())

	event, err := n.Normalize(models.RawRecord{
		Source:    "reddit.com",
		TypeHint:  "sentiment",
		Timestamp: time.Now(),
		Extracted: models.ExtractedFields{Ticker: "MRNA", Outcome: "bearish"},
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if event.Sentiment != models.SentimentNegative {
		t.Errorf("sentiment = %s, want negative", event.Sentiment)
	}
}

func TestNormalizer_BatchContinuesPastFailures(t *testing.T) {
	n := NewNormalizer(common.GetLogger())
	now := time.Now()

	events, dropped := n.NormalizeBatch([]models.RawRecord{
		{Source: "fda.gov", TypeHint: "approval", Timestamp: now, Extracted: models.ExtractedFields{Company: "Pfizer"}},
		{Source: "fda.gov", TypeHint: "bogus", Timestamp: now},
		{Source: "sec.gov", TypeHint: "10-k", Timestamp: now, Extracted: models.ExtractedFields{Ticker: "JNJ"}},
	})

	if len(events) != 2 || dropped != 1 {
		t.Errorf("got %d events, %d dropped; want 2 events, 1 dropped", len(events), dropped)
	}
}
