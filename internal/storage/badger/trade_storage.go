package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// portfolioKey is the fixed key of the single persisted portfolio snapshot
const portfolioKey = "portfolio"

// TradeStorage implements the TradeStorage interface for Badger
type TradeStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTradeStorage creates a new TradeStorage instance
func NewTradeStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TradeStorage {
	return &TradeStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TradeStorage) SaveTrade(ctx context.Context, trade *models.PaperTrade) error {
	if trade.TradeID == "" {
		return fmt.Errorf("trade ID is required")
	}
	if err := s.db.Store().Upsert(trade.TradeID, trade); err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

func (s *TradeStorage) ListTrades(ctx context.Context, ticker string, limit int) ([]*models.PaperTrade, error) {
	query := badgerhold.Where("TradeID").Ne("")
	if ticker != "" {
		query = query.And("Ticker").Eq(ticker)
	}
	query = query.SortBy("EntryAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var trades []models.PaperTrade
	if err := s.db.Store().Find(&trades, query); err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}

	result := make([]*models.PaperTrade, len(trades))
	for i := range trades {
		result[i] = &trades[i]
	}
	return result, nil
}

func (s *TradeStorage) SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	if err := s.db.Store().Upsert(portfolioKey, portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

// GetPortfolio returns the persisted portfolio snapshot, or (nil, nil)
// when none has been saved yet
func (s *TradeStorage) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := s.db.Store().Get(portfolioKey, &portfolio); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &portfolio, nil
}
