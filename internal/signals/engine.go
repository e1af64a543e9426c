package signals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
	"golang.org/x/sync/errgroup"
)

// Dependencies wires the engine to its collaborators. Storage and Events
// are optional; a nil value disables that consumer.
type Dependencies struct {
	Collectors []interfaces.Collector
	Extractor  interfaces.Extractor
	Normalizer *Normalizer
	Resolver   *Resolver
	Assembler  *Assembler
	Storage    interfaces.SignalStorage
	Events     interfaces.EventService
	Logger     arbor.ILogger

	MergeWindow time.Duration
	RunTimeout  time.Duration
}

// Engine runs the signal generation pipeline: collect concurrently,
// normalize, resolve, score, deduplicate, validate, emit. One run is a
// bounded batch; signals computed before the run timeout are still emitted.
type Engine struct {
	deps Dependencies
}

// NewEngine creates an Engine
func NewEngine(deps Dependencies) *Engine {
	return &Engine{deps: deps}
}

// Run executes one pipeline run and returns the emitted signals with the
// run's statistics. A per-collector failure is counted, not fatal; the
// returned error is non-nil only when the run produced nothing at all.
func (e *Engine) Run(ctx context.Context) ([]*models.Signal, *models.RunStats, error) {
	stats := &models.RunStats{
		RunID:     common.NewRunID(),
		StartedAt: time.Now().UTC(),
	}
	log := e.deps.Logger
	log.Info().Str("run_id", stats.RunID).Int("collectors", len(e.deps.Collectors)).Msg("Starting pipeline run")

	if e.deps.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.deps.RunTimeout)
		defer cancel()
	}

	batches := e.collect(ctx, stats)
	registry := NewRegistry(e.deps.MergeWindow)

	// From here on a single worker owns the registry
processing:
	for _, batch := range batches {
		for _, record := range batch {
			if ctx.Err() != nil {
				log.Warn().Str("run_id", stats.RunID).Msg("Run timeout reached, emitting partial results")
				break processing
			}
			stats.Processed++
			e.process(ctx, record, registry, stats)
		}
	}

	signals := e.emit(ctx, registry, stats)

	stats.FinishedAt = time.Now().UTC()
	log.Info().
		Str("run_id", stats.RunID).
		Int("processed", stats.Processed).
		Int("emitted", stats.Emitted).
		Int("merged", stats.Merged).
		Int("dropped", stats.DroppedNormalized).
		Int("unresolved", stats.Unresolved).
		Int("invalid", stats.Invalid).
		Int("collector_failures", stats.CollectorFailures).
		Msg("Pipeline run completed")

	if e.deps.Events != nil {
		if err := e.deps.Events.Publish(ctx, interfaces.Event{Type: interfaces.EventRunCompleted, Payload: stats}); err != nil {
			log.Warn().Err(err).Msg("Failed to publish run completion event")
		}
	}
	return signals, stats, nil
}

// collect fans out over the collectors concurrently and returns the
// per-source batches in deterministic source order. Collector failures are
// counted and the run proceeds with whatever sources succeeded.
func (e *Engine) collect(ctx context.Context, stats *models.RunStats) [][]models.RawRecord {
	var mu sync.Mutex
	bySource := make(map[string][]models.RawRecord)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, collector := range e.deps.Collectors {
		group.Go(func() error {
			records, err := collector.Collect(groupCtx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.CollectorFailures++
				e.deps.Logger.Warn().Str("source", collector.Source()).Err(err).Msg("Collector failed, continuing without it")
				return nil
			}
			bySource[collector.Source()] = records
			return nil
		})
	}
	_ = group.Wait()

	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	batches := make([][]models.RawRecord, 0, len(sources))
	for _, source := range sources {
		batches = append(batches, bySource[source])
	}
	return batches
}

// process runs one record through extraction, normalization, resolution,
// scoring and deduplication. Failures drop the record and update stats.
func (e *Engine) process(ctx context.Context, record models.RawRecord, registry *Registry, stats *models.RunStats) {
	log := e.deps.Logger

	if needsExtraction(record) && e.deps.Extractor != nil {
		fields, err := e.deps.Extractor.Extract(ctx, record.RawText)
		if err != nil {
			stats.DroppedNormalized++
			log.Warn().Str("source", record.Source).Err(err).Msg("Extraction failed, dropping record")
			return
		}
		record.Extracted = fields
	}

	event, err := e.deps.Normalizer.Normalize(record)
	if err != nil {
		stats.DroppedNormalized++
		log.Warn().Str("source", record.Source).Err(err).Msg("Dropping record that failed normalization")
		return
	}

	entity, err := e.deps.Resolver.ResolveEvent(ctx, event)
	if err != nil {
		stats.Unresolved++
		log.Warn().
			Str("source", event.Source).
			Str("company", event.Extracted.Company).
			Err(err).
			Msg("No ticker resolved, dropping event")
		return
	}

	candidate := e.deps.Assembler.Assemble(event, entity, e.deps.MergeWindow)
	signal, merged := registry.Upsert(candidate)
	if merged {
		stats.Merged++
		log.Debug().
			Str("signal_id", signal.SignalID).
			Str("ticker", signal.Ticker).
			Int("sources", len(signal.Sources)).
			Msg("Merged corroborating event into live signal")
	}
}

// emit validates the live signals, persists and publishes the survivors.
// Emission proceeds even when the run timeout already fired. A signal id
// never persisted before is published as created, merges within the run
// notwithstanding; a rerun landing on an already-stored id publishes
// updated.
func (e *Engine) emit(ctx context.Context, registry *Registry, stats *models.RunStats) []*models.Signal {
	log := e.deps.Logger
	ctx = context.WithoutCancel(ctx)

	emitted := make([]*models.Signal, 0, registry.Len())
	for _, signal := range registry.Signals() {
		if err := e.deps.Assembler.Validate(ctx, signal); err != nil {
			stats.Invalid++
			log.Warn().Str("signal_id", signal.SignalID).Err(err).Msg("Discarding signal that failed validation")
			continue
		}

		existed := false
		if e.deps.Storage != nil {
			if _, err := e.deps.Storage.Get(ctx, signal.SignalID); err == nil {
				existed = true
			}
			if err := e.deps.Storage.Save(ctx, signal); err != nil {
				log.Error().Str("signal_id", signal.SignalID).Err(err).Msg("Failed to persist signal")
			}
		}

		if e.deps.Events != nil {
			eventType := interfaces.EventSignalCreated
			if existed {
				eventType = interfaces.EventSignalUpdated
			}
			if err := e.deps.Events.Publish(ctx, interfaces.Event{Type: eventType, Payload: signal}); err != nil {
				log.Warn().Str("signal_id", signal.SignalID).Err(err).Msg("Failed to publish signal event")
			}
		}

		emitted = append(emitted, signal)
		stats.Emitted++
	}
	return emitted
}

// needsExtraction reports whether a record arrived without structured fields
func needsExtraction(record models.RawRecord) bool {
	f := record.Extracted
	return f.Company == "" && f.Ticker == "" && f.Drug == "" && f.CIK == ""
}
