package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in seconds
	Min int `yaml:"min" json:"min"`
	// Maximum holding time of a trade in seconds
	Max int `yaml:"max" json:"max"`
	// Average holding time of a trade in seconds
	Avg int `yaml:"avg" json:"avg"`
}

type TradePnl struct {
	// Realized PnL. Sum of every closed trade's pnl.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Unrealized PnL of the open positions at the last update.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// Total PnL. RealizedPnL plus UnrealizedPnL.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	// Maximum loss of a single closed trade.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss"`
	// Maximum profit of a single closed trade.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit"`
}

type TradeResult struct {
	// Count of closed trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of closed trades with positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of closed trades with negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Win rate in percent.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Maximum drawdown of cumulative realized pnl.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
}

// LiveTradeStats contains statistics for an autopilot session.
type LiveTradeStats struct {
	// ID is the unique identifier for this session.
	ID string `yaml:"id" json:"id"`

	// Date is the date of this statistics record in YYYY-MM-DD format.
	Date string `yaml:"date" json:"date"`

	// SessionStart is when this session started.
	SessionStart time.Time `yaml:"session_start" json:"session_start"`

	// LastUpdated is when these statistics were last updated.
	LastUpdated time.Time `yaml:"last_updated" json:"last_updated"`

	// Symbols traded in this session.
	Symbols []string `yaml:"symbols" json:"symbols"`

	TradeResult      TradeResult      `yaml:"trade_result" json:"trade_result"`
	TradePnl         TradePnl         `yaml:"trade_pnl" json:"trade_pnl"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`

	// ExitReasons counts closed trades per exit reason.
	ExitReasons map[string]int `yaml:"exit_reasons" json:"exit_reasons"`
}

// DailyLiveTradeStats contains both daily and cumulative statistics for a session.
// Daily stats are reset at the start of each day, while cumulative stats track
// the entire session from start to finish.
type DailyLiveTradeStats struct {
	// Daily statistics for this specific day only.
	Daily LiveTradeStats `yaml:"daily" json:"daily"`

	// Cumulative statistics from session start.
	Cumulative LiveTradeStats `yaml:"cumulative" json:"cumulative"`
}

// WriteLiveTradeStats writes live trade statistics to a YAML file.
func WriteLiveTradeStats(path string, stats DailyLiveTradeStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal live trade stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write live trade stats to file: %w", err)
	}

	return nil
}

// ReadLiveTradeStats reads live trade statistics from a YAML file.
func ReadLiveTradeStats(path string) (DailyLiveTradeStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DailyLiveTradeStats{}, fmt.Errorf("failed to read live trade stats file: %w", err)
	}

	var stats DailyLiveTradeStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return DailyLiveTradeStats{}, fmt.Errorf("failed to unmarshal live trade stats: %w", err)
	}

	return stats, nil
}
