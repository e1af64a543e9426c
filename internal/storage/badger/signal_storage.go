package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SignalStorage implements the SignalStorage interface for Badger
type SignalStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSignalStorage creates a new SignalStorage instance
func NewSignalStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SignalStorage {
	return &SignalStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SignalStorage) Save(ctx context.Context, signal *models.Signal) error {
	if signal.SignalID == "" {
		return fmt.Errorf("signal ID is required")
	}

	now := time.Now().UTC()
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = now
	}
	if signal.UpdatedAt.IsZero() {
		signal.UpdatedAt = now
	}

	if err := s.db.Store().Upsert(signal.SignalID, signal); err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}
	return nil
}

func (s *SignalStorage) Get(ctx context.Context, signalID string) (*models.Signal, error) {
	var signal models.Signal
	if err := s.db.Store().Get(signalID, &signal); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrSignalNotFound
		}
		return nil, fmt.Errorf("failed to get signal: %w", err)
	}
	return &signal, nil
}

func (s *SignalStorage) List(ctx context.Context, filter interfaces.SignalFilter) ([]*models.Signal, error) {
	query := badgerhold.Where("SignalID").Ne("")
	if filter.Ticker != "" {
		query = query.And("Ticker").Eq(filter.Ticker)
	}
	if filter.SignalType != "" {
		query = query.And("SignalType").Eq(models.SignalType(filter.SignalType))
	}
	if filter.Sentiment != "" {
		query = query.And("Sentiment").Eq(models.Sentiment(filter.Sentiment))
	}
	if filter.MinConfidence > 0 {
		query = query.And("Confidence").Ge(filter.MinConfidence)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var signals []models.Signal
	if err := s.db.Store().Find(&signals, query); err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}

	result := make([]*models.Signal, len(signals))
	for i := range signals {
		result[i] = &signals[i]
	}
	return result, nil
}

func (s *SignalStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Signal{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count signals: %w", err)
	}
	return int(count), nil
}
