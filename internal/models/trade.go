package models

import "time"

// TradeDirection is the side of a paper trade
type TradeDirection string

const (
	DirectionLong  TradeDirection = "long"
	DirectionShort TradeDirection = "short"
)

// TradeStatus tracks the lifecycle of a paper trade
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// PaperTrade records one simulated trade executed against a signal
type PaperTrade struct {
	TradeID    string         `json:"trade_id" badgerhold:"key"`
	SignalID   string         `json:"signal_id" badgerhold:"index"`
	Ticker     string         `json:"ticker" badgerhold:"index"`
	Direction  TradeDirection `json:"direction"`
	Quantity   int            `json:"quantity"`
	EntryPrice float64        `json:"entry_price"`
	ExitPrice  float64        `json:"exit_price,omitempty"`
	EntryAt    time.Time      `json:"entry_at"`
	ExitAt     time.Time      `json:"exit_at,omitempty"`
	PnL        float64        `json:"pnl,omitempty"`
	PnLPct     float64        `json:"pnl_pct,omitempty"`
	Status     TradeStatus    `json:"status"`
}

// Position is the current simulated holding in one ticker
type Position struct {
	Ticker      string    `json:"ticker"`
	Quantity    int       `json:"quantity"`
	AverageCost float64   `json:"average_cost"`
	TotalCost   float64   `json:"total_cost"`
	OpenedAt    time.Time `json:"opened_at"`
}

// Portfolio is the virtual account state of the paper trader
type Portfolio struct {
	Cash      float64             `json:"cash"`
	Positions map[string]Position `json:"positions"`
	TotalPnL  float64             `json:"total_pnl"`
}
