package types

import (
	"time"
)

// Position represents the net holding in one symbol.
type Position struct {
	Symbol            string  `yaml:"symbol" json:"symbol"`
	Quantity          int64   `yaml:"quantity" json:"quantity"`
	AverageEntryPrice float64 `yaml:"average_entry_price" json:"average_entry_price"`
	CurrentPrice      float64 `yaml:"current_price" json:"current_price"`
	UnrealizedPnL     float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// UnrealizedPnLPercent is (current - average) / average * 100
	UnrealizedPnLPercent float64   `yaml:"unrealized_pnl_percent" json:"unrealized_pnl_percent"`
	OpenedAt             time.Time `yaml:"opened_at" json:"opened_at"`
}

// MarketValue is quantity times the current price.
func (p Position) MarketValue() float64 {
	return float64(p.Quantity) * p.CurrentPrice
}

// ClosedTrade is the record of an executed entry closed by a synthesized exit.
type ClosedTrade struct {
	EntryOrderID string    `yaml:"entry_order_id" json:"entry_order_id"`
	ExitOrderID  string    `yaml:"exit_order_id" json:"exit_order_id"`
	Symbol       string    `yaml:"symbol" json:"symbol"`
	Side         OrderSide `yaml:"side" json:"side"`
	Quantity     int64     `yaml:"quantity" json:"quantity"`
	EntryPrice   float64   `yaml:"entry_price" json:"entry_price"`
	ExitPrice    float64   `yaml:"exit_price" json:"exit_price"`
	// RealizedPnL is the profit of this trade alone, signed by the entry side.
	// For example, buying 100 shares at $100 and exiting at $110 realizes $1000.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Reason is stop_loss or take_profit
	Reason   string    `yaml:"reason" json:"reason"`
	OpenedAt time.Time `yaml:"opened_at" json:"opened_at"`
	ClosedAt time.Time `yaml:"closed_at" json:"closed_at"`
}

// HoldingTime is how long the trade was open.
func (c ClosedTrade) HoldingTime() time.Duration {
	if c.OpenedAt.IsZero() || c.ClosedAt.Before(c.OpenedAt) {
		return 0
	}

	return c.ClosedAt.Sub(c.OpenedAt)
}

// IsWin reports whether the trade closed with a positive realized PnL.
func (c ClosedTrade) IsWin() bool {
	return c.RealizedPnL > 0
}
