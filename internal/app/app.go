package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/collectors"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/handlers"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/services/alerts"
	"github.com/ternarybob/medsignals/internal/services/calendar"
	"github.com/ternarybob/medsignals/internal/services/events"
	"github.com/ternarybob/medsignals/internal/services/extraction"
	"github.com/ternarybob/medsignals/internal/services/paper"
	"github.com/ternarybob/medsignals/internal/services/scheduler"
	"github.com/ternarybob/medsignals/internal/services/wikidata"
	"github.com/ternarybob/medsignals/internal/signals"
	"github.com/ternarybob/medsignals/internal/storage/badger"
)

// App holds the wired application: configuration, storage, the signal
// engine with its collaborators, the event consumers and the HTTP
// handlers.
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager
	Events  interfaces.EventService

	Engine    *signals.Engine
	Scheduler *scheduler.Scheduler
	Alerter   *alerts.Alerter
	Trader    *paper.Trader

	SignalHandler *handlers.SignalHandler
	TradeHandler  *handlers.TradeHandler
	StatusHandler *handlers.StatusHandler
	RunHandler    *handlers.RunHandler
	WSHandler     *handlers.WebSocketHandler
}

// New builds the application from configuration. Optional consumers
// (alerts, paper trading) are only wired when enabled.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Storage: storageManager,
		Events:  events.NewService(logger),
	}

	engine, err := a.buildEngine(ctx)
	if err != nil {
		storageManager.Close()
		return nil, err
	}
	a.Engine = engine
	a.Scheduler = scheduler.NewScheduler(engine, logger)

	if cfg.Alerts.Enabled {
		alerter, err := alerts.NewAlerter(&cfg.Alerts, logger)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to initialize alerter: %w", err)
		}
		if err := alerter.Register(a.Events); err != nil {
			storageManager.Close()
			return nil, err
		}
		a.Alerter = alerter
	}

	if cfg.Paper.Enabled {
		trader, err := paper.NewTrader(ctx, &cfg.Paper, storageManager.TradeStorage(), logger)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to initialize paper trader: %w", err)
		}
		if err := trader.Register(a.Events); err != nil {
			storageManager.Close()
			return nil, err
		}
		a.Trader = trader
	}

	a.SignalHandler = handlers.NewSignalHandler(storageManager.SignalStorage(), logger)
	a.TradeHandler = handlers.NewTradeHandler(storageManager.TradeStorage(), logger)
	a.StatusHandler = handlers.NewStatusHandler(cfg, storageManager.SignalStorage(), logger)
	if err := a.StatusHandler.Register(a.Events); err != nil {
		storageManager.Close()
		return nil, err
	}
	a.RunHandler = handlers.NewRunHandler(a.Scheduler, logger)
	a.WSHandler = handlers.NewWebSocketHandler(logger)
	if err := a.WSHandler.Register(a.Events); err != nil {
		storageManager.Close()
		return nil, err
	}

	return a, nil
}

// buildEngine wires the pipeline stages to the configured collaborators
func (a *App) buildEngine(ctx context.Context) (*signals.Engine, error) {
	cfg := a.Config

	collectorList, err := collectors.Discover(cfg.Pipeline.FeedDir, cfg.Pipeline.Sources, a.Logger)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to discover feed collectors: %w", err)
		}
		// Feed directory may be created later; runs until then emit nothing
		a.Logger.Warn().Str("feed_dir", cfg.Pipeline.FeedDir).Msg("Feed directory not found, no collectors discovered")
	}

	extractor, err := extraction.NewExtractor(ctx, cfg, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}

	lookup := wikidata.NewClient(
		wikidata.WithEndpoint(cfg.Resolver.LookupURL),
		wikidata.WithRateLimit(cfg.Resolver.LookupRate),
		wikidata.WithLogger(a.Logger),
	)

	opts := signals.DefaultResolverOptions()
	if cfg.Resolver.MinSimilarity > 0 {
		opts.MinSimilarity = cfg.Resolver.MinSimilarity
	}
	opts.CacheTTL = parseDuration(cfg.Resolver.CacheTTL, opts.CacheTTL)
	opts.LookupTimeout = parseDuration(cfg.Pipeline.LookupTimeout, opts.LookupTimeout)
	opts.LookupBackoff = parseDuration(cfg.Pipeline.LookupBackoff, opts.LookupBackoff)
	if cfg.Pipeline.LookupRetries > 0 {
		opts.LookupRetries = cfg.Pipeline.LookupRetries
	}

	return signals.NewEngine(signals.Dependencies{
		Collectors:  collectorList,
		Extractor:   extractor,
		Normalizer:  signals.NewNormalizer(a.Logger),
		Resolver:    signals.NewResolver(lookup, opts, a.Logger),
		Assembler:   signals.NewAssembler(calendar.NewService(a.Logger), a.Logger),
		Storage:     a.Storage.SignalStorage(),
		Events:      a.Events,
		Logger:      a.Logger,
		MergeWindow: cfg.MergeWindow(),
		RunTimeout:  cfg.RunTimeout(),
	}), nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
