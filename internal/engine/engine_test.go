package engine

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autopilot/internal/engine/stats"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/metrics"
	"github.com/rxtech-lab/argo-autopilot/internal/trading/venue"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/mocks"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type EngineTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	venue  *mocks.MockExecutionVenue
	engine *Engine
	now    time.Time
	mu     sync.Mutex
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.venue = mocks.NewMockExecutionVenue(s.ctrl)
	s.now = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	s.engine = s.newEngine()
	s.engine.Start()
}

func (s *EngineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EngineTestSuite) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.now
}

func (s *EngineTestSuite) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = s.now.Add(d)
}

func (s *EngineTestSuite) newEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(s.clock), WithLogger(logger.NewNopLogger())}, opts...)

	e, err := NewEngine(DefaultConfig(), s.venue, opts...)
	s.Require().NoError(err)

	return e
}

// fill executes orders at their own price.
func (s *EngineTestSuite) fill(_ context.Context, order types.Order) (types.Order, error) {
	order.Status = types.OrderStatusExecuted
	order.ExecutedAt = s.clock()

	return order, nil
}

func (s *EngineTestSuite) expectFills(times int) {
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(s.fill).Times(times)
}

func (s *EngineTestSuite) forecast(symbol string, direction types.Direction, confidence float64, price float64) types.Forecast {
	return types.Forecast{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Direction:    direction,
		Confidence:   confidence,
		CurrentPrice: price,
		TargetPrice:  price,
		Timeframe:    "1h",
		CreatedAt:    s.clock(),
		ExpiresAt:    s.clock().Add(time.Hour),
	}
}

func (s *EngineTestSuite) pendingOrder(symbol string, side types.OrderSide, quantity int64, price, stop, target float64) types.Order {
	return types.Order{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		Status:      types.OrderStatusPending,
		SubmittedAt: s.clock(),
		StopLoss:    optional.Some(stop),
		TakeProfit:  optional.Some(target),
		Reason:      types.Reason{Reason: types.OrderReasonForecast},
	}
}

func (s *EngineTestSuite) assertPortfolioIdentity() {
	portfolio := s.engine.Portfolio()

	totalValue := portfolio.AvailableBalance
	totalPnL := 0.0

	for _, symbol := range slices.Sorted(maps.Keys(portfolio.Positions)) {
		position := portfolio.Positions[symbol]
		totalValue += float64(position.Quantity) * position.CurrentPrice
		totalPnL += position.UnrealizedPnL
	}

	s.Equal(totalValue, portfolio.TotalValue)
	s.Equal(totalPnL, portfolio.TotalPnL)
}

func (s *EngineTestSuite) TestNewEngineDefaults() {
	e, err := NewEngine(Config{Settings: types.DefaultRiskSettings()}, s.venue)
	s.Require().NoError(err)

	s.Equal(DefaultInitialBalance, e.Portfolio().AvailableBalance)
	s.False(e.Status().IsActive)
	s.Equal(types.HealthHealthy, e.Status().Health)
	s.Equal(types.DefaultRiskSettings(), e.Settings())
}

func (s *EngineTestSuite) TestNewEngineRejectsInvalidConfig() {
	config := DefaultConfig()
	config.Settings.MinConfidenceLevel = 150

	_, err := NewEngine(config, s.venue)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidSettings))

	config = DefaultConfig()
	config.InitialBalance = -1

	_, err = NewEngine(config, s.venue)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func (s *EngineTestSuite) TestEvaluateExecutesBuy() {
	s.expectFills(1)

	result := s.engine.Evaluate(context.Background(), s.forecast("AAPL", types.DirectionBuy, 80, 100))
	s.Require().True(result.IsSome())

	order := result.Unwrap()
	s.Equal(types.OrderStatusExecuted, order.Status)
	s.Equal(types.OrderSideBuy, order.Side)
	// risk 2% of 100000 over a $2 stop is 1000 shares; the 10% cap allows 100
	s.Equal(int64(100), order.Quantity)
	s.InDelta(98.0, order.StopLoss.Unwrap(), 1e-9)
	s.InDelta(104.0, order.TakeProfit.Unwrap(), 1e-9)
	s.True(order.ForecastID.IsSome())

	portfolio := s.engine.Portfolio()
	s.Equal(90000.0, portfolio.AvailableBalance)
	s.Equal(int64(100), portfolio.Positions["AAPL"].Quantity)
	s.Equal(1, portfolio.TotalTrades)

	status := s.engine.Status()
	s.Zero(status.PendingOrderCount)
	s.Len(s.engine.ActiveOrders(), 1)
	s.assertPortfolioIdentity()
}

func (s *EngineTestSuite) TestEvaluateExecutesSellWithMirroredExits() {
	s.expectFills(1)

	result := s.engine.Evaluate(context.Background(), s.forecast("TSLA", types.DirectionSell, 90, 200))
	s.Require().True(result.IsSome())

	order := result.Unwrap()
	s.Equal(types.OrderSideSell, order.Side)
	s.InDelta(204.0, order.StopLoss.Unwrap(), 1e-9)
	s.InDelta(192.0, order.TakeProfit.Unwrap(), 1e-9)
	s.Equal(int64(50), order.Quantity)
	s.Equal(110000.0, s.engine.Portfolio().AvailableBalance)
}

func (s *EngineTestSuite) TestEvaluateGates() {
	expired := s.forecast("AAPL", types.DirectionBuy, 90, 100)
	expired.CreatedAt = s.clock().Add(-2 * time.Hour)
	expired.ExpiresAt = s.clock().Add(-time.Hour)

	noStop := types.DefaultRiskSettings()
	noStop.StopLossPercent = 0

	disabled := types.DefaultRiskSettings()
	disabled.AutoTradingEnabled = false

	tests := []struct {
		name     string
		forecast types.Forecast
		settings types.RiskSettings
	}{
		{"confidence below minimum", s.forecast("AAPL", types.DirectionBuy, 74.99, 100), types.DefaultRiskSettings()},
		{"auto trading disabled", s.forecast("AAPL", types.DirectionBuy, 90, 100), disabled},
		{"symbol not allowed", s.forecast("MSFT", types.DirectionBuy, 90, 100), types.DefaultRiskSettings()},
		{"hold", s.forecast("AAPL", types.DirectionHold, 99, 100), types.DefaultRiskSettings()},
		{"expired", expired, types.DefaultRiskSettings()},
		{"zero stop distance", s.forecast("AAPL", types.DirectionBuy, 90, 100), noStop},
		{"invalid forecast", s.forecast("AAPL", types.DirectionBuy, 90, math.NaN()), types.DefaultRiskSettings()},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result := s.engine.EvaluateWithSettings(context.Background(), tt.forecast, tt.settings)
			s.True(result.IsNone())
		})
	}

	s.Empty(s.engine.ActiveOrders())
	s.Equal(100000.0, s.engine.Portfolio().AvailableBalance)
	s.Equal(types.HealthHealthy, s.engine.Status().Health)
}

func (s *EngineTestSuite) TestLowConfidenceNeverTrades() {
	for _, direction := range []types.Direction{types.DirectionBuy, types.DirectionSell, types.DirectionHold} {
		for _, confidence := range []float64{0, 10, 50, 74, 74.999} {
			result := s.engine.Evaluate(context.Background(), s.forecast("NVDA", direction, confidence, 500))
			s.True(result.IsNone(), "%s at %.3f", direction, confidence)
		}
	}
}

func (s *EngineTestSuite) TestInactiveEngineRejects() {
	s.engine.Stop()
	s.False(s.engine.Status().IsActive)

	s.True(s.engine.Evaluate(context.Background(), s.forecast("AAPL", types.DirectionBuy, 90, 100)).IsNone())
}

func (s *EngineTestSuite) TestDailyLossLimit() {
	s.expectFills(1)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 500, 100, 1, 1000))
	s.Require().NoError(err)

	// 500 shares down $11 each loses 5.5% of the day-start value
	s.engine.MarkToMarket(map[string]float64{"AAPL": 89})
	s.Equal(-5500.0, s.engine.Portfolio().DailyPnL)
	s.True(s.engine.Evaluate(context.Background(), s.forecast("TSLA", types.DirectionBuy, 90, 200)).IsNone())

	// Disabling the limit admits the forecast
	settings := types.DefaultRiskSettings()
	settings.MaxDailyLossPercent = 0

	s.expectFills(1)
	s.True(s.engine.EvaluateWithSettings(context.Background(), s.forecast("TSLA", types.DirectionBuy, 90, 200), settings).IsSome())
}

func (s *EngineTestSuite) TestNewDayResetsDailyPnL() {
	s.expectFills(1)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 500, 100, 1, 1000))
	s.Require().NoError(err)

	s.engine.MarkToMarket(map[string]float64{"AAPL": 89})
	s.Less(s.engine.Portfolio().DailyPnL, 0.0)

	s.advance(24 * time.Hour)
	s.engine.MarkToMarket(map[string]float64{"AAPL": 89})
	s.Zero(s.engine.Portfolio().DailyPnL)

	s.expectFills(1)
	s.True(s.engine.Evaluate(context.Background(), s.forecast("TSLA", types.DirectionBuy, 90, 200)).IsSome())
}

func (s *EngineTestSuite) TestExecutionFailure() {
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(types.Order{}, fmt.Errorf("exchange rejected order"))

	result := s.engine.Evaluate(context.Background(), s.forecast("AAPL", types.DirectionBuy, 90, 100))
	s.Require().True(result.IsSome())
	s.Equal(types.OrderStatusFailed, result.Unwrap().Status)
	s.Equal(types.OrderReasonExecutionFailed, result.Unwrap().Reason.Reason)

	status := s.engine.Status()
	s.Equal(types.HealthError, status.Health)
	s.True(status.ErrorMessage.IsSome())
	s.Contains(status.ErrorMessage.Unwrap(), "exchange rejected order")

	portfolio := s.engine.Portfolio()
	s.Equal(100000.0, portfolio.AvailableBalance)
	s.Empty(portfolio.Positions)
	s.Zero(portfolio.TotalTrades)
	s.Empty(s.engine.ActiveOrders())
	s.Len(s.engine.History(), 1)

	// Start is the only way back to healthy
	s.engine.ClearWarning()
	s.Equal(types.HealthError, s.engine.Status().Health)

	s.engine.Start()
	s.Equal(types.HealthHealthy, s.engine.Status().Health)
	s.True(s.engine.Status().ErrorMessage.IsNone())
}

func (s *EngineTestSuite) TestVenuePanicIsAFault() {
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, types.Order) (types.Order, error) {
		panic("connection reset")
	})

	result := s.engine.Evaluate(context.Background(), s.forecast("AAPL", types.DirectionBuy, 90, 100))
	s.Require().True(result.IsSome())
	s.Equal(types.OrderStatusFailed, result.Unwrap().Status)
	s.Equal(types.HealthError, s.engine.Status().Health)
	s.Equal(100000.0, s.engine.Portfolio().AvailableBalance)
}

func (s *EngineTestSuite) TestSubmitTimeoutWithSimulatedVenue() {
	simulated, err := venue.NewSimulatedVenue(venue.SimulatedConfig{Latency: time.Second, Timeout: 10 * time.Millisecond, Seed: 1})
	s.Require().NoError(err)

	e, err := NewEngine(DefaultConfig(), simulated, WithClock(s.clock))
	s.Require().NoError(err)
	e.Start()

	order, err := e.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 98, 104))
	s.True(errors.HasCode(err, errors.ErrCodeExecutionTimeout))
	s.Equal(types.OrderStatusFailed, order.Status)
	s.Equal(types.HealthError, e.Status().Health)
	s.Empty(e.Portfolio().Positions)
}

func (s *EngineTestSuite) TestSubmitWithSimulatedVenue() {
	simulated, err := venue.NewSimulatedVenue(venue.SimulatedConfig{Latency: time.Millisecond, Seed: 1})
	s.Require().NoError(err)

	e, err := NewEngine(DefaultConfig(), simulated, WithClock(s.clock))
	s.Require().NoError(err)
	e.Start()

	result := e.Evaluate(context.Background(), s.forecast("GOOGL", types.DirectionBuy, 90, 150))
	s.Require().True(result.IsSome())
	s.Equal(types.OrderStatusExecuted, result.Unwrap().Status)
	s.Equal(int64(66), result.Unwrap().Quantity)
}

func (s *EngineTestSuite) TestSubmitIgnoresCallerCancellation() {
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, order types.Order) (types.Order, error) {
		s.NoError(ctx.Err())

		return s.fill(ctx, order)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	order, err := s.engine.Submit(ctx, s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 98, 104))
	s.NoError(err)
	s.Equal(types.OrderStatusExecuted, order.Status)
}

func (s *EngineTestSuite) TestSubmitRejectsDuplicateInFlight() {
	started := make(chan struct{})
	release := make(chan struct{})

	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, order types.Order) (types.Order, error) {
		close(started)
		<-release

		return s.fill(ctx, order)
	})

	order := s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 98, 104)

	done := make(chan error, 1)
	go func() {
		_, err := s.engine.Submit(context.Background(), order)
		done <- err
	}()

	<-started

	_, err := s.engine.Submit(context.Background(), order)
	s.True(errors.HasCode(err, errors.ErrCodeDuplicateSubmission))

	close(release)
	s.NoError(<-done)
	s.Len(s.engine.ActiveOrders(), 1)
}

func (s *EngineTestSuite) TestSubmitRejectsNonPending() {
	order := s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 98, 104)
	order.Status = types.OrderStatusExecuted

	_, err := s.engine.Submit(context.Background(), order)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))
}

func (s *EngineTestSuite) TestScanExitTriggersBuy() {
	tests := []struct {
		name      string
		price     float64
		triggered bool
		reason    string
	}{
		{"stop loss", 89, true, types.OrderReasonStopLoss},
		{"at stop", 90, true, types.OrderReasonStopLoss},
		{"take profit", 111, true, types.OrderReasonTakeProfit},
		{"at target", 110, true, types.OrderReasonTakeProfit},
		{"inside band", 100, false, ""},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.engine = s.newEngine()
			s.engine.Start()
			s.expectFills(1)

			entry, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110))
			s.Require().NoError(err)

			exits := s.engine.ScanExitTriggers(map[string]float64{"AAPL": tt.price})
			if !tt.triggered {
				s.Empty(exits)
				s.Len(s.engine.ActiveOrders(), 1)

				return
			}

			s.Require().Len(exits, 1)
			exit := exits[0]
			s.Equal(types.OrderSideSell, exit.Side)
			s.Equal(tt.price, exit.Price)
			s.Equal(types.OrderStatusExecuted, exit.Status)
			s.Equal(tt.reason, exit.Reason.Reason)
			s.Equal(int64(10), exit.Quantity)

			s.Empty(s.engine.ActiveOrders())
			s.Equal([]types.Order{entry, exit}, s.engine.History())
			s.Empty(s.engine.Portfolio().Positions)
			s.Equal(100000+10*(tt.price-100), s.engine.Portfolio().AvailableBalance)
			s.Zero(s.engine.Status().PendingOrderCount)

			// A second scan finds nothing left to close
			s.Empty(s.engine.ScanExitTriggers(map[string]float64{"AAPL": tt.price}))
		})
	}
}

func (s *EngineTestSuite) TestScanExitTriggersSell() {
	s.expectFills(2)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("TSLA", types.OrderSideSell, 5, 200, 210, 190))
	s.Require().NoError(err)
	_, err = s.engine.Submit(context.Background(), s.pendingOrder("NVDA", types.OrderSideSell, 5, 500, 520, 480))
	s.Require().NoError(err)

	exits := s.engine.ScanExitTriggers(map[string]float64{"TSLA": 211, "NVDA": 479})
	s.Require().Len(exits, 2)
	s.Equal(types.OrderReasonStopLoss, exits[0].Reason.Reason)
	s.Equal(types.OrderSideBuy, exits[0].Side)
	s.Equal(types.OrderReasonTakeProfit, exits[1].Reason.Reason)

	trades := s.engine.ClosedTrades()
	s.Require().Len(trades, 2)
	s.Equal(-55.0, trades[0].RealizedPnL)
	s.Equal(105.0, trades[1].RealizedPnL)
	s.Equal(50.0, s.engine.Portfolio().WinRate)
}

func (s *EngineTestSuite) TestScanRemovesOnlyTriggeredOrders() {
	s.expectFills(3)

	tight, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 99, 130))
	s.Require().NoError(err)
	wide, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 80, 130))
	s.Require().NoError(err)
	other, err := s.engine.Submit(context.Background(), s.pendingOrder("TSLA", types.OrderSideBuy, 5, 200, 150, 300))
	s.Require().NoError(err)

	exits := s.engine.ScanExitTriggers(map[string]float64{"AAPL": 98.5, "TSLA": 201})
	s.Require().Len(exits, 1)
	s.Contains(exits[0].Reason.Message, tight.ID)

	s.Equal([]types.Order{wide, other}, s.engine.ActiveOrders())
	s.Equal(int64(10), s.engine.Portfolio().Positions["AAPL"].Quantity)
	s.Zero(s.engine.Status().PendingOrderCount)
}

func (s *EngineTestSuite) TestScanSkipsMissingAndInvalidPrices() {
	s.expectFills(1)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110))
	s.Require().NoError(err)

	s.Empty(s.engine.ScanExitTriggers(map[string]float64{"TSLA": 1}))
	s.Empty(s.engine.ScanExitTriggers(map[string]float64{"AAPL": math.NaN()}))
	s.Empty(s.engine.ScanExitTriggers(map[string]float64{"AAPL": -1}))
	s.Len(s.engine.ActiveOrders(), 1)
}

func (s *EngineTestSuite) TestExitsRecordedInStats() {
	tracker := stats.NewStatsTracker(logger.NewNopLogger())
	tracker.Initialize([]string{"AAPL"}, "run", s.clock())

	s.engine = s.newEngine(WithStats(tracker))
	s.engine.Start()
	s.expectFills(2)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110))
	s.Require().NoError(err)
	_, err = s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 95, 140))
	s.Require().NoError(err)

	s.advance(30 * time.Minute)
	s.Len(s.engine.ScanExitTriggers(map[string]float64{"AAPL": 112}), 1)
	s.Len(s.engine.ScanExitTriggers(map[string]float64{"AAPL": 94}), 1)

	cumulative := tracker.GetCumulativeStats()
	s.Equal(2, cumulative.TradeResult.NumberOfTrades)
	s.Equal(50.0, tracker.WinRate())
	s.Equal(120.0-60.0, cumulative.TradePnl.RealizedPnL)
	s.Equal(1800, cumulative.TradeHoldingTime.Max)
}

func (s *EngineTestSuite) TestMarkToMarket() {
	s.expectFills(1)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110))
	s.Require().NoError(err)

	prices := map[string]float64{"AAPL": 105, "TSLA": math.Inf(1), "NVDA": 0}
	s.engine.MarkToMarket(prices)

	first := s.engine.Portfolio()
	s.Equal(105.0, first.Positions["AAPL"].CurrentPrice)
	s.Equal(50.0, first.TotalPnL)
	s.assertPortfolioIdentity()

	s.engine.MarkToMarket(prices)
	s.Equal(first, s.engine.Portfolio())

	s.engine.MarkToMarket(map[string]float64{"AAPL": math.NaN()})
	s.Equal(105.0, s.engine.Portfolio().Positions["AAPL"].CurrentPrice)
}

func (s *EngineTestSuite) TestUpdateSettings() {
	updated, err := s.engine.UpdateSettings(types.RiskSettingsUpdate{
		MinConfidenceLevel: optional.Some(60.0),
		AllowedSymbols:     optional.Some([]string{"MSFT"}),
	})
	s.Require().NoError(err)
	s.Equal(60.0, updated.MinConfidenceLevel)
	s.Equal([]string{"MSFT"}, s.engine.Settings().AllowedSymbols)
	s.Equal(2.0, s.engine.Settings().StopLossPercent)

	_, err = s.engine.UpdateSettings(types.RiskSettingsUpdate{MaxRiskPerTradePercent: optional.Some(-1.0)})
	s.True(errors.HasCode(err, errors.ErrCodeInvalidSettings))
	s.Equal(2.0, s.engine.Settings().MaxRiskPerTradePercent)

	s.expectFills(1)
	s.True(s.engine.Evaluate(context.Background(), s.forecast("MSFT", types.DirectionBuy, 65, 400)).IsSome())
}

func (s *EngineTestSuite) TestSnapshotsAreCopies() {
	s.expectFills(1)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110))
	s.Require().NoError(err)

	settings := s.engine.Settings()
	settings.AllowedSymbols[0] = "XXX"

	active := s.engine.ActiveOrders()
	active[0].Quantity = 999

	portfolio := s.engine.Portfolio()
	delete(portfolio.Positions, "AAPL")

	s.Equal("AAPL", s.engine.Settings().AllowedSymbols[0])
	s.Equal(int64(10), s.engine.ActiveOrders()[0].Quantity)
	s.Contains(s.engine.Portfolio().Positions, "AAPL")

	// Moving the copy's stop up to the entry price must not close the order
	active[0].StopLoss[0] = 1000
	active[0].TakeProfit[0] = 1
	s.Equal(90.0, s.engine.ActiveOrders()[0].StopLoss.Unwrap())
	s.Equal(110.0, s.engine.ActiveOrders()[0].TakeProfit.Unwrap())
	s.Empty(s.engine.ScanExitTriggers(map[string]float64{"AAPL": 100}))

	s.engine.RaiseWarning("feed down")
	status := s.engine.Status()
	status.ErrorMessage[0] = "changed"
	s.Equal("feed down", s.engine.Status().ErrorMessage.Unwrap())
}

func (s *EngineTestSuite) TestStoredOrdersShareNothingWithCaller() {
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(s.fill)
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(types.Order{}, fmt.Errorf("exchange rejected order"))

	order := s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110)
	executed, err := s.engine.Submit(context.Background(), order)
	s.Require().NoError(err)

	order.StopLoss[0] = 1000
	executed.StopLoss[0] = 1000
	s.Equal(90.0, s.engine.ActiveOrders()[0].StopLoss.Unwrap())

	failedOrder := s.pendingOrder("TSLA", types.OrderSideBuy, 10, 200, 190, 220)
	failed, err := s.engine.Submit(context.Background(), failedOrder)
	s.Require().Error(err)

	failed.TakeProfit[0] = 1
	s.Equal(220.0, s.engine.History()[0].TakeProfit.Unwrap())
}

func (s *EngineTestSuite) TestPendingOrderCountTracksInFlightOrders() {
	var during int

	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, order types.Order) (types.Order, error) {
		during = s.engine.Status().PendingOrderCount

		return s.fill(ctx, order)
	})

	executed, err := s.engine.Submit(context.Background(), s.pendingOrder("AAPL", types.OrderSideBuy, 10, 100, 90, 110))
	s.Require().NoError(err)

	s.Equal(1, during)
	s.Equal(types.OrderStatusExecuted, executed.Status)
	s.Zero(s.engine.Status().PendingOrderCount)
	s.Len(s.engine.ActiveOrders(), 1)

	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, types.Order) (types.Order, error) {
		during = s.engine.Status().PendingOrderCount

		return types.Order{}, fmt.Errorf("exchange rejected order")
	})

	_, err = s.engine.Submit(context.Background(), s.pendingOrder("TSLA", types.OrderSideBuy, 10, 200, 190, 220))
	s.Require().Error(err)
	s.Equal(1, during)
	s.Zero(s.engine.Status().PendingOrderCount)
}

func (s *EngineTestSuite) TestSellExitLeavesUntrackedLongPosition() {
	s.expectFills(1)

	_, err := s.engine.Submit(context.Background(), s.pendingOrder("TSLA", types.OrderSideSell, 5, 200, 210, 190))
	s.Require().NoError(err)

	// Selling without a position only credits the balance
	s.Empty(s.engine.Portfolio().Positions)
	s.Equal(101000.0, s.engine.Portfolio().AvailableBalance)

	exits := s.engine.ScanExitTriggers(map[string]float64{"TSLA": 211})
	s.Require().Len(exits, 1)
	s.Equal(types.OrderSideBuy, exits[0].Side)

	// The covering buy is booked as a long position that no active order watches
	portfolio := s.engine.Portfolio()
	s.Empty(s.engine.ActiveOrders())
	s.Require().Contains(portfolio.Positions, "TSLA")
	s.Equal(int64(5), portfolio.Positions["TSLA"].Quantity)
	s.Equal(211.0, portfolio.Positions["TSLA"].AverageEntryPrice)
	s.Equal(99945.0, portfolio.AvailableBalance)

	s.Empty(s.engine.ScanExitTriggers(map[string]float64{"TSLA": 150}))
	s.engine.MarkToMarket(map[string]float64{"TSLA": 220})
	s.Equal(45.0, s.engine.Portfolio().Positions["TSLA"].UnrealizedPnL)
	s.assertPortfolioIdentity()
}

func (s *EngineTestSuite) TestWarnings() {
	s.engine.RaiseWarning("feed down")
	s.Equal(types.HealthWarning, s.engine.Status().Health)
	s.Equal("feed down", s.engine.Status().ErrorMessage.Unwrap())

	s.engine.ClearWarning()
	s.Equal(types.HealthHealthy, s.engine.Status().Health)
	s.True(s.engine.Status().ErrorMessage.IsNone())

	s.engine.SetActivePredictionCount(4)
	s.Equal(4, s.engine.Status().ActivePredictionCount)
}

func (s *EngineTestSuite) TestCallbacksMayReenterEngine() {
	var executed []types.Order
	var faults []string
	var exits []types.ClosedTrade

	onExecuted := OnOrderExecutedCallback(func(order types.Order) {
		executed = append(executed, order)
		_ = s.engine.Status()
	})
	onFault := OnFaultCallback(func(message string) {
		faults = append(faults, s.engine.Status().ErrorMessage.Unwrap())
	})
	onExit := OnExitTriggeredCallback(func(_ types.Order, trade types.ClosedTrade) {
		exits = append(exits, trade)
		_ = s.engine.Portfolio()
	})

	s.engine = s.newEngine(WithCallbacks(Callbacks{OnOrderExecuted: &onExecuted, OnFault: &onFault, OnExitTriggered: &onExit}))
	s.engine.Start()

	s.expectFills(1)
	s.True(s.engine.Evaluate(context.Background(), s.forecast("AAPL", types.DirectionBuy, 90, 100)).IsSome())
	s.Len(s.engine.ScanExitTriggers(map[string]float64{"AAPL": 120}), 1)

	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(types.Order{}, fmt.Errorf("down"))
	s.True(s.engine.Evaluate(context.Background(), s.forecast("AAPL", types.DirectionBuy, 90, 100)).IsSome())

	s.Len(executed, 1)
	s.Len(exits, 1)
	s.Len(faults, 1)
	s.Contains(faults[0], "down")
}

func (s *EngineTestSuite) TestConcurrentEvaluationsKeepPortfolioConsistent() {
	m := metrics.New()
	s.engine = s.newEngine(WithMetrics(m))
	s.engine.Start()
	s.venue.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(s.fill).AnyTimes()

	symbols := types.DefaultRiskSettings().AllowedSymbols

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			symbol := symbols[i%len(symbols)]
			s.engine.Evaluate(context.Background(), s.forecast(symbol, types.DirectionBuy, 90, 50+float64(i)))
			s.engine.MarkToMarket(map[string]float64{symbol: 60})
		}()
	}

	wg.Wait()

	s.Equal(20, s.engine.Portfolio().TotalTrades)
	s.Len(s.engine.ActiveOrders(), 20)
	s.assertPortfolioIdentity()
}

func TestPositionSize(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		risk     float64
		price    float64
		stop     float64
		expected int64
	}{
		{"notional cap binds", 100000, 1, 50, 48, 200},
		{"risk cap binds", 100000, 1, 50, 40, 100},
		{"zero stop distance", 100000, 1, 50, 50, 0},
		{"stop above price", 100000, 1, 50, 52, 200},
		{"no balance", 0, 1, 50, 48, 0},
		{"negative balance", -100, 1, 50, 48, 0},
		{"zero risk", 100000, 0, 50, 48, 0},
		{"price above cap", 1000, 2, 500, 490, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := PositionSize(tt.balance, tt.risk, DefaultNotionalCapPercent, tt.price, tt.stop)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, size)
		})
	}
}

func TestExitPrices(t *testing.T) {
	settings := types.DefaultRiskSettings()

	stop, target := ExitPrices(types.OrderSideBuy, 100, settings)
	assert.InDelta(t, 98.0, stop, 1e-9)
	assert.InDelta(t, 104.0, target, 1e-9)

	stop, target = ExitPrices(types.OrderSideSell, 100, settings)
	assert.InDelta(t, 102.0, stop, 1e-9)
	assert.InDelta(t, 96.0, target, 1e-9)
}
