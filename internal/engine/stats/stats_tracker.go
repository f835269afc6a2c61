package stats

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"go.uber.org/zap"
)

const dateFormat = "2006-01-02"

// StatsAccumulator holds running statistics for closed trades.
type StatsAccumulator struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	RealizedPnL   float64
	UnrealizedPnL float64
	MaxProfit     float64
	MaxLoss       float64
	MaxDrawdown   float64
	PeakPnL       float64
	HoldingTimes  []int // in seconds
	ExitReasons   map[string]int
}

// StatsTracker attributes realized PnL per closed trade at close time and
// keeps daily and session totals.
type StatsTracker struct {
	symbols      []string
	runID        string
	sessionStart time.Time
	currentDate  string

	// Daily accumulators (reset on date boundary)
	dailyStats *StatsAccumulator

	// Cumulative accumulators (from session start)
	cumulativeStats *StatsAccumulator

	statsOutputPath string

	now    func() time.Time
	mu     sync.Mutex
	logger *logger.Logger
}

// NewStatsTracker creates a new StatsTracker instance.
func NewStatsTracker(log *logger.Logger) *StatsTracker {
	return &StatsTracker{
		dailyStats:      newStatsAccumulator(),
		cumulativeStats: newStatsAccumulator(),
		now:             time.Now,
		logger:          log.Named("stats"),
	}
}

func newStatsAccumulator() *StatsAccumulator {
	return &StatsAccumulator{
		HoldingTimes: make([]int, 0),
		ExitReasons:  make(map[string]int),
	}
}

// WithClock replaces the clock used to stamp LastUpdated.
func (s *StatsTracker) WithClock(now func() time.Time) *StatsTracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now

	return s
}

// Initialize sets up the stats tracker with session information.
func (s *StatsTracker) Initialize(symbols []string, runID string, sessionStart time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.symbols = slices.Clone(symbols)
	s.runID = runID
	s.sessionStart = sessionStart
	s.currentDate = sessionStart.Format(dateFormat)

	s.logger.Info("Stats tracker initialized",
		zap.String("run_id", runID),
		zap.Strings("symbols", symbols),
	)
}

// SetOutputPath sets where WriteStatsYAML writes. An empty path disables writing.
func (s *StatsTracker) SetOutputPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statsOutputPath = path
}

// RecordClosedTrade records a closed trade in the daily and cumulative totals.
func (s *StatsTracker) RecordClosedTrade(trade types.ClosedTrade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updateAccumulator(s.dailyStats, trade)
	updateAccumulator(s.cumulativeStats, trade)

	s.logger.Debug("Closed trade recorded",
		zap.String("entry_order_id", trade.EntryOrderID),
		zap.String("symbol", trade.Symbol),
		zap.String("reason", trade.Reason),
		zap.Float64("pnl", trade.RealizedPnL),
		zap.Int("total_trades", s.cumulativeStats.TotalTrades),
	)
}

func updateAccumulator(acc *StatsAccumulator, trade types.ClosedTrade) {
	acc.TotalTrades++
	acc.RealizedPnL += trade.RealizedPnL

	if trade.RealizedPnL > 0 {
		acc.WinningTrades++
	} else if trade.RealizedPnL < 0 {
		acc.LosingTrades++
	}

	if trade.RealizedPnL > acc.MaxProfit {
		acc.MaxProfit = trade.RealizedPnL
	}

	if trade.RealizedPnL < acc.MaxLoss {
		acc.MaxLoss = trade.RealizedPnL
	}

	if acc.RealizedPnL > acc.PeakPnL {
		acc.PeakPnL = acc.RealizedPnL
	}

	drawdown := acc.PeakPnL - acc.RealizedPnL
	if drawdown > acc.MaxDrawdown {
		acc.MaxDrawdown = drawdown
	}

	if holdingTime := int(trade.HoldingTime().Seconds()); holdingTime > 0 {
		acc.HoldingTimes = append(acc.HoldingTimes, holdingTime)
	}

	if trade.Reason != "" {
		acc.ExitReasons[trade.Reason]++
	}
}

// SetUnrealizedPnL updates the unrealized PnL for current positions.
func (s *StatsTracker) SetUnrealizedPnL(unrealizedPnL float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dailyStats.UnrealizedPnL = unrealizedPnL
	s.cumulativeStats.UnrealizedPnL = unrealizedPnL
}

// WinRate is the percentage of closed trades this session with a positive
// realized PnL. It is 0 before the first close.
func (s *StatsTracker) WinRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return winRate(s.cumulativeStats)
}

func winRate(acc *StatsAccumulator) float64 {
	if acc.TotalTrades == 0 {
		return 0
	}

	return float64(acc.WinningTrades) / float64(acc.TotalTrades) * 100
}

// HandleDateBoundary resets the daily stats when now falls on a new date and
// reports whether it did.
func (s *StatsTracker) HandleDateBoundary(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	newDate := now.Format(dateFormat)
	if newDate == s.currentDate {
		return false
	}

	oldDate := s.currentDate
	s.currentDate = newDate
	s.dailyStats = newStatsAccumulator()
	s.dailyStats.UnrealizedPnL = s.cumulativeStats.UnrealizedPnL

	s.logger.Info("Date boundary handled, daily stats reset",
		zap.String("old_date", oldDate),
		zap.String("new_date", newDate),
	)

	return true
}

// GetDailyStats returns the current daily statistics.
func (s *StatsTracker) GetDailyStats() types.LiveTradeStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buildLiveTradeStats(s.dailyStats, s.currentDate)
}

// GetCumulativeStats returns the cumulative statistics from session start.
func (s *StatsTracker) GetCumulativeStats() types.LiveTradeStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buildLiveTradeStats(s.cumulativeStats, s.sessionStart.Format(dateFormat))
}

//nolint:funcorder // helper method used by GetDailyStats, GetCumulativeStats, WriteStatsYAML
func (s *StatsTracker) buildLiveTradeStats(acc *StatsAccumulator, date string) types.LiveTradeStats {
	holdingTime := types.TradeHoldingTime{}

	if len(acc.HoldingTimes) > 0 {
		total := 0
		for _, t := range acc.HoldingTimes {
			total += t
		}

		holdingTime.Min = slices.Min(acc.HoldingTimes)
		holdingTime.Max = slices.Max(acc.HoldingTimes)
		holdingTime.Avg = total / len(acc.HoldingTimes)
	}

	return types.LiveTradeStats{
		ID:           s.runID,
		Date:         date,
		SessionStart: s.sessionStart,
		LastUpdated:  s.now(),
		Symbols:      slices.Clone(s.symbols),
		TradeResult: types.TradeResult{
			NumberOfTrades:        acc.TotalTrades,
			NumberOfWinningTrades: acc.WinningTrades,
			NumberOfLosingTrades:  acc.LosingTrades,
			WinRate:               winRate(acc),
			MaxDrawdown:           acc.MaxDrawdown,
		},
		TradePnl: types.TradePnl{
			RealizedPnL:   acc.RealizedPnL,
			UnrealizedPnL: acc.UnrealizedPnL,
			TotalPnL:      acc.RealizedPnL + acc.UnrealizedPnL,
			MaximumLoss:   acc.MaxLoss,
			MaximumProfit: acc.MaxProfit,
		},
		TradeHoldingTime: holdingTime,
		ExitReasons:      maps.Clone(acc.ExitReasons),
	}
}

// WriteStatsYAML writes the daily and cumulative stats to the output path.
// It does nothing when no path is set.
func (s *StatsTracker) WriteStatsYAML() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statsOutputPath == "" {
		return nil
	}

	return types.WriteLiveTradeStats(s.statsOutputPath, types.DailyLiveTradeStats{
		Daily:      s.buildLiveTradeStats(s.dailyStats, s.currentDate),
		Cumulative: s.buildLiveTradeStats(s.cumulativeStats, s.sessionStart.Format(dateFormat)),
	})
}

// GetStatsOutputPath returns the stats output path.
func (s *StatsTracker) GetStatsOutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statsOutputPath
}

// GetCurrentDate returns the current date.
func (s *StatsTracker) GetCurrentDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentDate
}

// GetRunID returns the run ID.
func (s *StatsTracker) GetRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runID
}
