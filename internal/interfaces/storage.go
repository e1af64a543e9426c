package interfaces

import (
	"context"

	"github.com/ternarybob/medsignals/internal/models"
)

// SignalFilter narrows signal listings for the read API
type SignalFilter struct {
	Ticker        string
	SignalType    string
	Sentiment     string
	MinConfidence int
	Limit         int
}

// SignalStorage persists emitted signals
type SignalStorage interface {
	// Save inserts or updates a signal by its deterministic id
	Save(ctx context.Context, signal *models.Signal) error

	// Get returns a signal by id, or models.ErrSignalNotFound
	Get(ctx context.Context, signalID string) (*models.Signal, error)

	// List returns signals matching the filter, newest first
	List(ctx context.Context, filter SignalFilter) ([]*models.Signal, error)

	// Count returns the total number of stored signals
	Count(ctx context.Context) (int, error)
}

// TradeStorage persists paper trades and the portfolio snapshot
type TradeStorage interface {
	SaveTrade(ctx context.Context, trade *models.PaperTrade) error
	ListTrades(ctx context.Context, ticker string, limit int) ([]*models.PaperTrade, error)
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	GetPortfolio(ctx context.Context) (*models.Portfolio, error)
}

// StorageManager aggregates the storage backends
type StorageManager interface {
	SignalStorage() SignalStorage
	TradeStorage() TradeStorage
	Close() error
}
