// Package paper implements the paper trading simulator: signals are
// executed against a virtual portfolio so their quality can be tracked
// without touching a broker.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// basePrice substitutes for a live quote. Entries are priced below it in
// proportion to the expected upside, so a realized target shows as profit.
const basePrice = 100.0

// Trader holds the virtual portfolio and executes signals against it.
// Positive-sentiment signals open long positions; negative-sentiment
// signals close them. Neutral signals are skipped.
type Trader struct {
	cfg     *common.PaperConfig
	storage interfaces.TradeStorage
	logger  arbor.ILogger

	mu        sync.Mutex
	portfolio models.Portfolio
	realized  float64
}

// NewTrader creates a Trader, restoring the persisted portfolio when one
// exists
func NewTrader(ctx context.Context, cfg *common.PaperConfig, storage interfaces.TradeStorage, logger arbor.ILogger) (*Trader, error) {
	t := &Trader{
		cfg:     cfg,
		storage: storage,
		logger:  logger,
		portfolio: models.Portfolio{
			Cash:      cfg.StartingCash,
			Positions: make(map[string]models.Position),
		},
	}

	if storage != nil {
		saved, err := storage.GetPortfolio(ctx)
		if err == nil && saved != nil {
			t.portfolio = *saved
			if t.portfolio.Positions == nil {
				t.portfolio.Positions = make(map[string]models.Position)
			}
			t.realized = saved.TotalPnL
			logger.Info().
				Float64("cash", t.portfolio.Cash).
				Int("positions", len(t.portfolio.Positions)).
				Msg("Restored paper portfolio")
		}
	}
	return t, nil
}

// Register subscribes the trader to signal events
func (t *Trader) Register(events interfaces.EventService) error {
	return events.Subscribe(interfaces.EventSignalCreated, t.HandleEvent)
}

// HandleEvent executes one newly created signal
func (t *Trader) HandleEvent(ctx context.Context, event interfaces.Event) error {
	signal, ok := event.Payload.(*models.Signal)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s event", event.Type)
	}
	_, err := t.Execute(ctx, signal)
	return err
}

// Execute opens or closes a position for a signal. Returns nil without
// error when the signal is skipped (neutral sentiment, below the
// confidence threshold, or no position to close).
func (t *Trader) Execute(ctx context.Context, signal *models.Signal) (*models.PaperTrade, error) {
	if signal.Confidence < t.cfg.MinConfidence {
		t.logger.Debug().
			Str("signal_id", signal.SignalID).
			Int("confidence", signal.Confidence).
			Msg("Signal below paper trading threshold, skipping")
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var trade *models.PaperTrade
	switch signal.Sentiment {
	case models.SentimentPositive:
		trade = t.openLong(signal)
	case models.SentimentNegative:
		trade = t.closeLong(signal)
	default:
		t.logger.Debug().Str("signal_id", signal.SignalID).Msg("Neutral sentiment, no trade")
		return nil, nil
	}
	if trade == nil {
		return nil, nil
	}

	if t.storage != nil {
		if err := t.storage.SaveTrade(ctx, trade); err != nil {
			return trade, fmt.Errorf("failed to persist trade: %w", err)
		}
		snapshot := t.portfolio
		snapshot.TotalPnL = t.realized
		if err := t.storage.SavePortfolio(ctx, &snapshot); err != nil {
			return trade, fmt.Errorf("failed to persist portfolio: %w", err)
		}
	}
	return trade, nil
}

// entryPrice estimates a fill price from the signal's expected upside
func entryPrice(signal *models.Signal) float64 {
	if signal.TargetUpsidePct > 0 {
		return basePrice / (1 + signal.TargetUpsidePct/100)
	}
	return basePrice
}

func (t *Trader) openLong(signal *models.Signal) *models.PaperTrade {
	if _, held := t.portfolio.Positions[signal.Ticker]; held {
		t.logger.Debug().Str("ticker", signal.Ticker).Msg("Position already held, skipping buy")
		return nil
	}

	price := entryPrice(signal)
	quantity := t.cfg.TradeQuantity
	if quantity <= 0 {
		quantity = 100
	}
	cost := float64(quantity) * price
	if cost > t.portfolio.Cash {
		t.logger.Warn().
			Str("ticker", signal.Ticker).
			Float64("cost", cost).
			Float64("cash", t.portfolio.Cash).
			Msg("Insufficient cash for paper trade")
		return nil
	}

	now := time.Now().UTC()
	t.portfolio.Cash -= cost
	t.portfolio.Positions[signal.Ticker] = models.Position{
		Ticker:      signal.Ticker,
		Quantity:    quantity,
		AverageCost: price,
		TotalCost:   cost,
		OpenedAt:    now,
	}

	trade := &models.PaperTrade{
		TradeID:    common.NewTradeID(),
		SignalID:   signal.SignalID,
		Ticker:     signal.Ticker,
		Direction:  models.DirectionLong,
		Quantity:   quantity,
		EntryPrice: price,
		EntryAt:    now,
		Status:     models.TradeOpen,
	}

	t.logger.Info().
		Str("ticker", signal.Ticker).
		Int("quantity", quantity).
		Float64("price", price).
		Msg("Opened paper position")
	return trade
}

func (t *Trader) closeLong(signal *models.Signal) *models.PaperTrade {
	position, held := t.portfolio.Positions[signal.Ticker]
	if !held {
		t.logger.Debug().Str("ticker", signal.Ticker).Msg("No position to close, skipping sell")
		return nil
	}

	// A negative signal implies a drop toward the downside target
	price := basePrice * (1 + signal.TargetDownsidePct/100)
	proceeds := float64(position.Quantity) * price

	t.portfolio.Cash += proceeds
	delete(t.portfolio.Positions, signal.Ticker)

	pnl := (price - position.AverageCost) * float64(position.Quantity)
	pnlPct := (price - position.AverageCost) / position.AverageCost * 100
	t.realized += pnl

	now := time.Now().UTC()
	trade := &models.PaperTrade{
		TradeID:    common.NewTradeID(),
		SignalID:   signal.SignalID,
		Ticker:     signal.Ticker,
		Direction:  models.DirectionLong,
		Quantity:   position.Quantity,
		EntryPrice: position.AverageCost,
		ExitPrice:  price,
		EntryAt:    position.OpenedAt,
		ExitAt:     now,
		PnL:        pnl,
		PnLPct:     pnlPct,
		Status:     models.TradeClosed,
	}

	t.logger.Info().
		Str("ticker", signal.Ticker).
		Float64("pnl", pnl).
		Msg("Closed paper position")
	return trade
}

// Portfolio returns a snapshot of the current virtual account
func (t *Trader) Portfolio() models.Portfolio {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.portfolio
	snapshot.TotalPnL = t.realized
	snapshot.Positions = make(map[string]models.Position, len(t.portfolio.Positions))
	for ticker, position := range t.portfolio.Positions {
		snapshot.Positions[ticker] = position
	}
	return snapshot
}
