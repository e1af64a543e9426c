package signals

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// fakeLookup is a scriptable EntityLookup collaborator
type fakeLookup struct {
	calls   atomic.Int64
	match   *interfaces.EntityMatch
	err     error
	failFor int64 // fail this many calls before succeeding
}

func (f *fakeLookup) LookupTicker(ctx context.Context, company string) (*interfaces.EntityMatch, error) {
	n := f.calls.Add(1)
	if f.err != nil && n <= f.failFor {
		return nil, f.err
	}
	if f.err != nil && f.failFor == 0 {
		return nil, f.err
	}
	return f.match, nil
}

func testResolver(lookup interfaces.EntityLookup) *Resolver {
	opts := DefaultResolverOptions()
	opts.LookupBackoff = time.Millisecond
	opts.LookupRetries = 2
	return NewResolver(lookup, opts, common.GetLogger())
}

func TestResolver_ManualTier(t *testing.T) {
	r := testResolver(nil)

	entity, err := r.Resolve(context.Background(), "Pfizer Inc.")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entity.Ticker != "PFE" || entity.Tier != models.TierManual {
		t.Errorf("got %+v, want PFE via manual tier", entity)
	}
	if entity.Confidence != 1.0 {
		t.Errorf("manual tier confidence = %v, want exactly 1.0", entity.Confidence)
	}
}

func TestResolver_FuzzyTier(t *testing.T) {
	r := testResolver(nil)

	entity, err := r.Resolve(context.Background(), "Modernna Therapeutics")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entity.Ticker != "MRNA" || entity.Tier != models.TierFuzzy {
		t.Errorf("got %+v, want MRNA via fuzzy tier", entity)
	}
	if entity.Confidence >= 0.7 || entity.Confidence <= 0 {
		t.Errorf("fuzzy tier confidence = %v, want in (0, 0.7)", entity.Confidence)
	}
}

func TestResolver_ExternalTier(t *testing.T) {
	lookup := &fakeLookup{match: &interfaces.EntityMatch{Ticker: "xyzb", Company: "Xyz Biosciences"}}
	r := testResolver(lookup)

	entity, err := r.Resolve(context.Background(), "Xyz Biosciences")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entity.Ticker != "XYZB" || entity.Tier != models.TierExternal {
		t.Errorf("got %+v, want XYZB via external tier", entity)
	}
	if entity.Confidence != 0.5 {
		t.Errorf("external tier confidence = %v, want 0.5", entity.Confidence)
	}
}

func TestResolver_Unresolved(t *testing.T) {
	lookup := &fakeLookup{} // returns (nil, nil): no match
	r := testResolver(lookup)

	_, err := r.Resolve(context.Background(), "Quantum Widget Factory")
	if !errors.Is(err, models.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestResolver_EmptyMention(t *testing.T) {
	r := testResolver(nil)

	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, models.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved for empty mention, got %v", err)
	}
}

func TestResolver_CachesResults(t *testing.T) {
	lookup := &fakeLookup{match: &interfaces.EntityMatch{Ticker: "XYZB", Company: "Xyz Biosciences"}}
	r := testResolver(lookup)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := r.Resolve(ctx, "Xyz Biosciences"); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	if got := lookup.calls.Load(); got != 1 {
		t.Errorf("external lookup called %d times, want 1 (cached)", got)
	}
}

func TestResolver_CachesNegatives(t *testing.T) {
	lookup := &fakeLookup{} // no match
	r := testResolver(lookup)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r.Resolve(ctx, "Quantum Widget Factory")
	}
	if got := lookup.calls.Load(); got != 1 {
		t.Errorf("external lookup called %d times for a cached negative, want 1", got)
	}
}

func TestResolver_SingleFlight(t *testing.T) {
	lookup := &fakeLookup{match: &interfaces.EntityMatch{Ticker: "XYZB", Company: "Xyz Biosciences"}}
	r := testResolver(lookup)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve(ctx, "Xyz Biosciences")
		}()
	}
	wg.Wait()

	if got := lookup.calls.Load(); got != 1 {
		t.Errorf("concurrent resolves made %d lookups, want 1", got)
	}
}

func TestResolver_RetriesTransientFailures(t *testing.T) {
	lookup := &fakeLookup{
		match:   &interfaces.EntityMatch{Ticker: "XYZB", Company: "Xyz Biosciences"},
		err:     errors.New("connection reset"),
		failFor: 2,
	}
	r := testResolver(lookup)

	entity, err := r.Resolve(context.Background(), "Xyz Biosciences")
	if err != nil {
		t.Fatalf("Resolve failed despite retries: %v", err)
	}
	if entity.Ticker != "XYZB" {
		t.Errorf("got %+v after retries", entity)
	}
	if got := lookup.calls.Load(); got != 3 {
		t.Errorf("lookup called %d times, want 3 (2 failures + 1 success)", got)
	}
}

func TestResolver_ExhaustedRetriesDegradeToUnresolved(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection reset")}
	r := testResolver(lookup)

	_, err := r.Resolve(context.Background(), "Xyz Biosciences")
	if !errors.Is(err, models.ErrUnresolved) {
		t.Fatalf("expected downgrade to ErrUnresolved, got %v", err)
	}
}

func TestResolver_EventWithExtractedTicker(t *testing.T) {
	r := testResolver(nil)

	entity, err := r.ResolveEvent(context.Background(), models.RawEvent{
		SignalType: models.SignalRedditSentiment,
		Extracted:  models.ExtractedFields{Ticker: "mrna"},
	})
	if err != nil {
		t.Fatalf("ResolveEvent failed: %v", err)
	}
	if entity.Ticker != "MRNA" || entity.Confidence != 1.0 {
		t.Errorf("got %+v, want MRNA at confidence 1.0", entity)
	}
}
