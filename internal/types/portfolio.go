package types

import "maps"

// Portfolio represents the simulated account. TotalValue, TotalPnL and DailyPnL
// are derived from the balance and positions and are never set independently.
type Portfolio struct {
	// AvailableBalance is the current cash balance
	AvailableBalance float64 `json:"available_balance" yaml:"available_balance"`
	// Positions holds at most one position per symbol
	Positions map[string]Position `json:"positions" yaml:"positions"`
	// TotalValue is AvailableBalance plus the market value of every position
	TotalValue float64 `json:"total_value" yaml:"total_value"`
	// TotalPnL is the sum of every position's unrealized PnL
	TotalPnL float64 `json:"total_pnl" yaml:"total_pnl"`
	// DailyPnL is TotalValue minus the value at the start of the trading day
	DailyPnL float64 `json:"daily_pnl" yaml:"daily_pnl"`
	// RealizedPnL is the total realized profit/loss from closed quantity
	RealizedPnL float64 `json:"realized_pnl" yaml:"realized_pnl"`
	// TotalTrades counts executed orders
	TotalTrades int `json:"total_trades" yaml:"total_trades"`
	// WinRate is the percentage of closed trades with a positive realized PnL
	WinRate float64 `json:"win_rate" yaml:"win_rate"`
}

// NewPortfolio returns an empty portfolio funded with balance.
func NewPortfolio(balance float64) Portfolio {
	return Portfolio{
		AvailableBalance: balance,
		Positions:        make(map[string]Position),
		TotalValue:       balance,
	}
}

// Clone returns a deep copy of the portfolio.
func (p Portfolio) Clone() Portfolio {
	cloned := p
	cloned.Positions = make(map[string]Position, len(p.Positions))
	maps.Copy(cloned.Positions, p.Positions)

	return cloned
}

// Position returns the position held for symbol, if any.
func (p Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.Positions[symbol]

	return pos, ok
}
