package signals

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
	"golang.org/x/sync/singleflight"
)

// tickerPattern is the syntactic shape of a US-listed ticker
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// Resolution confidence per tier
const (
	manualConfidence   = 1.0
	fuzzyScale         = 0.7
	externalConfidence = 0.5
)

// ResolverOptions tunes the resolution tiers and the external lookup policy
type ResolverOptions struct {
	MinSimilarity float64
	CacheTTL      time.Duration
	LookupTimeout time.Duration
	LookupRetries int
	LookupBackoff time.Duration
}

// DefaultResolverOptions returns the baseline resolver tuning
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		MinSimilarity: 0.6,
		CacheTTL:      time.Hour,
		LookupTimeout: 10 * time.Second,
		LookupRetries: 3,
		LookupBackoff: 500 * time.Millisecond,
	}
}

type cacheEntry struct {
	entity  *models.ResolvedEntity // nil records a negative result
	expires time.Time
}

// Resolver maps company mentions to tickers in three tiers: curated manual
// table, fuzzy registry match, external entity lookup. Results (including
// negatives) are cached with a TTL; concurrent lookups for the same
// uncached name collapse into one outstanding call.
type Resolver struct {
	lookup interfaces.EntityLookup
	opts   ResolverOptions
	logger arbor.ILogger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cacheEntry

	now func() time.Time
}

// NewResolver creates a Resolver. The lookup collaborator may be nil, which
// disables the external tier.
func NewResolver(lookup interfaces.EntityLookup, opts ResolverOptions, logger arbor.ILogger) *Resolver {
	return &Resolver{
		lookup: lookup,
		opts:   opts,
		logger: logger,
		cache:  make(map[string]cacheEntry),
		now:    time.Now,
	}
}

// ResolveEvent resolves the entity an event refers to. An extracted ticker
// of valid shape short-circuits resolution; otherwise the company mention
// (falling back to the drug maker mention) goes through the tiers.
func (r *Resolver) ResolveEvent(ctx context.Context, event models.RawEvent) (*models.ResolvedEntity, error) {
	if ticker := strings.ToUpper(strings.TrimSpace(event.Extracted.Ticker)); tickerPattern.MatchString(ticker) {
		company := event.Extracted.Company
		if company == "" {
			company = ticker
		}
		return &models.ResolvedEntity{
			Ticker:     ticker,
			Company:    company,
			Tier:       models.TierManual,
			Confidence: manualConfidence,
		}, nil
	}

	mention := event.Extracted.Company
	if mention == "" {
		mention = event.Extracted.Drug
	}
	return r.Resolve(ctx, mention)
}

// Resolve maps a company mention to a ticker, or returns a
// ResolutionFailure wrapping ErrUnresolved when no tier matches.
func (r *Resolver) Resolve(ctx context.Context, company string) (*models.ResolvedEntity, error) {
	mention := strings.TrimSpace(company)
	if mention == "" {
		return nil, &models.ResolutionFailure{Company: company}
	}

	key := normalizeCompany(mention)
	if entry, ok := r.cached(key); ok {
		if entry.entity == nil {
			return nil, &models.ResolutionFailure{Company: mention}
		}
		return entry.entity, nil
	}

	result, err, _ := r.group.Do(key, func() (interface{}, error) {
		// A previous flight may have populated the cache between the
		// caller's miss and this call
		if entry, ok := r.cached(key); ok {
			return entry.entity, nil
		}
		entity := r.resolveUncached(ctx, mention)
		r.store(key, entity)
		return entity, nil
	})
	if err != nil {
		return nil, err
	}

	entity, _ := result.(*models.ResolvedEntity)
	if entity == nil {
		return nil, &models.ResolutionFailure{Company: mention}
	}
	return entity, nil
}

func (r *Resolver) cached(key string) (cacheEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || r.now().After(entry.expires) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (r *Resolver) store(key string, entity *models.ResolvedEntity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = cacheEntry{entity: entity, expires: r.now().Add(r.opts.CacheTTL)}
}

// resolveUncached walks the tiers in order, stopping at the first hit.
// Returns nil when every tier misses.
func (r *Resolver) resolveUncached(ctx context.Context, mention string) *models.ResolvedEntity {
	if entity, ok := manualLookup(mention); ok {
		return &models.ResolvedEntity{
			Ticker:     entity.Ticker,
			Company:    entity.Company,
			Tier:       models.TierManual,
			Confidence: manualConfidence,
		}
	}

	if entity, score, ok := fuzzyLookup(mention, r.opts.MinSimilarity); ok {
		return &models.ResolvedEntity{
			Ticker:     entity.Ticker,
			Company:    entity.Company,
			Tier:       models.TierFuzzy,
			Confidence: round(fuzzyScale*score, 4),
		}
	}

	if r.lookup == nil {
		return nil
	}

	match, err := r.lookupWithRetry(ctx, mention)
	if err != nil {
		r.logger.Warn().
			Str("company", mention).
			Err(err).
			Msg("External lookup exhausted retries, treating as unresolved")
		return nil
	}
	if match == nil {
		return nil
	}
	ticker := strings.ToUpper(match.Ticker)
	if !tickerPattern.MatchString(ticker) {
		return nil
	}
	company := match.Company
	if company == "" {
		company = mention
	}
	return &models.ResolvedEntity{
		Ticker:     ticker,
		Company:    company,
		Tier:       models.TierExternal,
		Confidence: externalConfidence,
	}
}

// lookupWithRetry calls the external collaborator with a per-call timeout
// and bounded exponential backoff on transient failures
func (r *Resolver) lookupWithRetry(ctx context.Context, mention string) (*interfaces.EntityMatch, error) {
	backoff := r.opts.LookupBackoff
	var lastErr error

	for attempt := 0; attempt <= r.opts.LookupRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, r.opts.LookupTimeout)
		match, err := r.lookup.LookupTicker(callCtx, mention)
		cancel()

		if err == nil {
			return match, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = &models.TransientLookupFailure{Collaborator: "entity lookup", Err: err}
		r.logger.Debug().
			Str("company", mention).
			Int("attempt", attempt+1).
			Err(err).
			Msg("Transient entity lookup failure")
	}
	return nil, lastErr
}
