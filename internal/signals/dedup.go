package signals

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/medsignals/internal/models"
)

// Registry is the live-signal store for one pipeline run, mapping dedup
// keys to their current Signal. It is the engine's single point of shared
// mutable state; all mutations are serialized behind one lock so
// corroborating events never lose updates.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*models.Signal
	retired []*models.Signal
	window  time.Duration
	now     func() time.Time
}

// NewRegistry creates a Registry with the given merge window
func NewRegistry(window time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*models.Signal),
		window:  window,
		now:     time.Now,
	}
}

// Upsert inserts a candidate signal or merges it into the live entry
// sharing its dedup key. Returns the resulting signal and whether a merge
// happened. Merging unions the source sets, rescores confidence with the
// corroboration bonus, recomputes targets and keeps the original signal id
// and created_at.
func (r *Registry) Upsert(candidate *models.Signal) (*models.Signal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[candidate.DedupKey]
	if ok && r.withinWindow(existing, candidate) {
		r.merge(existing, candidate)
		return existing, true
	}

	if ok {
		// Same key but the events lie further apart than the window: the
		// old entry is complete. Retire it so it is still emitted, and
		// start a distinct signal with an id derived from its own event
		// time
		r.retired = append(r.retired, existing)
		candidate.SignalID = models.SignalID(fmt.Sprintf("%s|%d", candidate.DedupKey, candidate.EventTime.UTC().Unix()))
	}
	r.entries[candidate.DedupKey] = candidate
	return candidate, false
}

// Get returns the live entry for a dedup key
func (r *Registry) Get(dedupKey string) (*models.Signal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	signal, ok := r.entries[dedupKey]
	return signal, ok
}

// Len returns the number of signals held, live and retired
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries) + len(r.retired)
}

// Signals returns a stable snapshot of all signals, retired entries
// included, oldest first
func (r *Registry) Signals() []*models.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	signals := make([]*models.Signal, 0, len(r.entries)+len(r.retired))
	for _, signal := range r.entries {
		signals = append(signals, signal)
	}
	signals = append(signals, r.retired...)
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].CreatedAt.Equal(signals[j].CreatedAt) {
			return signals[i].SignalID < signals[j].SignalID
		}
		return signals[i].CreatedAt.Before(signals[j].CreatedAt)
	})
	return signals
}

// withinWindow reports whether the candidate corroborates the existing
// entry rather than describing a later distinct occurrence. The question
// is about the underlying events, so the gap is measured between event
// times, independent of when the run happens to process them.
func (r *Registry) withinWindow(existing, candidate *models.Signal) bool {
	gap := candidate.EventTime.Sub(existing.EventTime)
	if gap < 0 {
		gap = -gap
	}
	return gap <= r.window
}

// merge folds the candidate into the existing entry in place. Duplicate
// source names are skipped so re-merging the same pair is idempotent.
func (r *Registry) merge(existing, candidate *models.Signal) {
	for _, source := range candidate.Sources {
		if existing.HasSource(source.Name) {
			continue
		}
		existing.Sources = append(existing.Sources, source)
		existing.SentimentScore += sentimentVote(candidate.Sentiment, source.Reliability)
	}

	if candidate.EventTime.Before(existing.EventTime) {
		existing.EventTime = candidate.EventTime
	}
	existing.Resolution = maxFloat(existing.Resolution, candidate.Resolution)
	existing.Sentiment = sentimentFromScore(existing.SentimentScore)

	reliability := maxSourceReliability(existing.Sources)
	now := r.now()
	existing.Confidence = Score(reliability, existing.Resolution, existing.EventTime, now, len(existing.Sources))
	existing.TargetUpsidePct, existing.TargetDownsidePct = computeTargets(existing.SignalType, existing.Sources, existing.Confidence)
	existing.UpdatedAt = now.UTC()
}

// sentimentVote is one source's contribution to the weighted sentiment tally
func sentimentVote(sentiment models.Sentiment, reliability float64) float64 {
	switch sentiment {
	case models.SentimentPositive:
		return reliability
	case models.SentimentNegative:
		return -reliability
	}
	return 0
}

// sentimentFromScore resolves the weighted tally. Ties resolve to neutral.
func sentimentFromScore(score float64) models.Sentiment {
	switch {
	case score > 0:
		return models.SentimentPositive
	case score < 0:
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

// maxSourceReliability returns the strongest attached source's weight
func maxSourceReliability(sources []models.SourceRef) float64 {
	best := 0.0
	for _, source := range sources {
		if source.Reliability > best {
			best = source.Reliability
		}
	}
	return best
}
