package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique pipeline run ID with the "run_" prefix
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewTradeID generates a unique paper trade ID with the "trade_" prefix
func NewTradeID() string {
	return "trade_" + uuid.New().String()
}
