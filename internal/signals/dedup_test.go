package signals

import (
	"testing"
	"time"

	"github.com/ternarybob/medsignals/internal/models"
)

// bucketStart aligns test event times to the current dedup bucket so
// offsets within the window never straddle a bucket boundary
func bucketStart(window time.Duration) time.Time {
	seconds := int64(window.Seconds())
	return time.Unix((time.Now().UTC().Unix()/seconds)*seconds, 0).UTC()
}

func testCandidate(t *testing.T, source string, reliability float64, eventTime time.Time, window time.Duration) *models.Signal {
	t.Helper()
	dedupKey := models.DedupKey(models.SignalFDAApproval, "PFE", eventTime, window)
	now := time.Now().UTC()
	src := models.SourceRef{Name: source, URL: "https://" + source + "/x", Reliability: reliability}
	confidence := Score(reliability, 1.0, eventTime, now, 1)
	up, down := computeTargets(models.SignalFDAApproval, []models.SourceRef{src}, confidence)
	return &models.Signal{
		SignalID:          models.SignalID(dedupKey),
		SignalType:        models.SignalFDAApproval,
		Ticker:            "PFE",
		Company:           "Pfizer",
		Confidence:        confidence,
		Sentiment:         models.SentimentPositive,
		TargetUpsidePct:   up,
		TargetDownsidePct: down,
		Sources:           []models.SourceRef{src},
		CreatedAt:         now,
		UpdatedAt:         now,
		DedupKey:          dedupKey,
		EventTime:         eventTime,
		Resolution:        1.0,
		SentimentScore:    sentimentVote(models.SentimentPositive, reliability),
	}
}

func TestRegistry_InsertThenMerge(t *testing.T) {
	window := 72 * time.Hour
	registry := NewRegistry(window)
	base := bucketStart(window)

	first := testCandidate(t, "fda.gov", 1.0, base, window)
	inserted, merged := registry.Upsert(first)
	if merged {
		t.Fatal("first upsert must insert, not merge")
	}
	originalID := inserted.SignalID
	originalCreated := inserted.CreatedAt
	singleConfidence := inserted.Confidence

	second := testCandidate(t, "pubmed.ncbi.nlm.nih.gov", 0.95, base.Add(10*time.Hour), window)
	result, merged := registry.Upsert(second)
	if !merged {
		t.Fatal("corroborating event within window must merge")
	}
	if result.SignalID != originalID {
		t.Errorf("merge changed signal id: %s -> %s", originalID, result.SignalID)
	}
	if !result.CreatedAt.Equal(originalCreated) {
		t.Error("merge must retain original created_at")
	}
	if len(result.Sources) != 2 {
		t.Fatalf("merged source count = %d, want 2", len(result.Sources))
	}
	if result.Confidence <= singleConfidence {
		t.Errorf("merged confidence %d not above single-source %d", result.Confidence, singleConfidence)
	}
	if registry.Len() != 1 {
		t.Errorf("registry holds %d signals, want 1", registry.Len())
	}
}

func TestRegistry_MergeIsIdempotent(t *testing.T) {
	window := 72 * time.Hour
	registry := NewRegistry(window)
	base := bucketStart(window)

	registry.Upsert(testCandidate(t, "fda.gov", 1.0, base, window))
	registry.Upsert(testCandidate(t, "reuters.com", 0.9, base.Add(time.Hour), window))
	result, _ := registry.Upsert(testCandidate(t, "reuters.com", 0.9, base.Add(time.Hour), window))

	if len(result.Sources) != 2 {
		t.Errorf("re-merging duplicate source produced %d sources, want 2", len(result.Sources))
	}
}

func TestRegistry_DistinctSignalsOutsideWindow(t *testing.T) {
	window := time.Hour
	registry := NewRegistry(window)
	base := time.Now().UTC().Add(-100 * time.Hour)

	first, merged := registry.Upsert(testCandidate(t, "fda.gov", 1.0, base, window))
	if merged {
		t.Fatal("unexpected merge")
	}

	// Same type and ticker, far outside the merge window
	second, merged := registry.Upsert(testCandidate(t, "reuters.com", 0.9, base.Add(90*time.Hour), window))
	if merged {
		t.Fatal("events separated beyond the window must not merge")
	}
	if first.SignalID == second.SignalID {
		t.Error("distinct occurrences share a signal id")
	}
}

func TestRegistry_MergesEventsOlderThanWindow(t *testing.T) {
	window := 72 * time.Hour
	registry := NewRegistry(window)
	// Both events predate the run by well over the merge window; only
	// the gap between the events themselves decides corroboration
	base := bucketStart(window).Add(-2 * window)

	first := testCandidate(t, "fda.gov", 1.0, base, window)
	inserted, merged := registry.Upsert(first)
	if merged {
		t.Fatal("first upsert must insert, not merge")
	}
	originalID := inserted.SignalID

	second := testCandidate(t, "reuters.com", 0.9, base.Add(10*time.Hour), window)
	result, merged := registry.Upsert(second)
	if !merged {
		t.Fatal("stale corroborating events 10h apart must merge")
	}
	if result.SignalID != originalID {
		t.Errorf("merge changed signal id: %s -> %s", originalID, result.SignalID)
	}
	if len(result.Sources) != 2 {
		t.Errorf("merged source count = %d, want 2", len(result.Sources))
	}
	if registry.Len() != 1 {
		t.Errorf("registry holds %d signals, want 1", registry.Len())
	}
}

func TestRegistry_DisplacedEntryIsRetainedForEmission(t *testing.T) {
	window := time.Hour
	registry := NewRegistry(window)
	base := bucketStart(window).Add(-10 * window)

	first, _ := registry.Upsert(testCandidate(t, "fda.gov", 1.0, base, window))

	// Force the displacement path: same key, events beyond the window
	second := testCandidate(t, "reuters.com", 0.9, base.Add(5*window), window)
	second.DedupKey = first.DedupKey
	displaced, merged := registry.Upsert(second)
	if merged {
		t.Fatal("events separated beyond the window must not merge")
	}
	if displaced.SignalID == first.SignalID {
		t.Error("displacing candidate shares the retired signal's id")
	}

	if registry.Len() != 2 {
		t.Fatalf("registry holds %d signals, want 2", registry.Len())
	}
	seen := make(map[string]bool)
	for _, signal := range registry.Signals() {
		seen[signal.SignalID] = true
	}
	if !seen[first.SignalID] || !seen[displaced.SignalID] {
		t.Errorf("snapshot missing a signal: have %v", seen)
	}
}

func TestRegistry_SentimentVoteResolvesConflicts(t *testing.T) {
	window := 72 * time.Hour
	registry := NewRegistry(window)
	base := bucketStart(window)

	positive := testCandidate(t, "fda.gov", 1.0, base, window)
	registry.Upsert(positive)

	negative := testCandidate(t, "reddit.com", 0.4, base.Add(time.Hour), window)
	negative.Sentiment = models.SentimentNegative
	negative.SentimentScore = sentimentVote(models.SentimentNegative, 0.4)

	result, merged := registry.Upsert(negative)
	if !merged {
		t.Fatal("expected merge")
	}
	// fda.gov (1.0, positive) outweighs reddit (0.4, negative)
	if result.Sentiment != models.SentimentPositive {
		t.Errorf("weighted sentiment = %s, want positive", result.Sentiment)
	}
}

func TestRegistry_MergeUsesEarliestEventTime(t *testing.T) {
	window := 72 * time.Hour
	registry := NewRegistry(window)
	base := bucketStart(window)

	later := testCandidate(t, "reuters.com", 0.9, base.Add(20*time.Hour), window)
	registry.Upsert(later)

	earlier := testCandidate(t, "fda.gov", 1.0, base, window)
	result, merged := registry.Upsert(earlier)
	if !merged {
		t.Fatal("expected merge")
	}
	if !result.EventTime.Equal(base) {
		t.Errorf("merged event time = %v, want earliest %v", result.EventTime, base)
	}
}
