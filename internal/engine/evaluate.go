package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"go.uber.org/zap"
)

// Admission gates, in the order they are checked.
const (
	GateInvalidForecast = "invalid_forecast"
	GateConfidence      = "confidence"
	GateAutoTrading     = "auto_trading_disabled"
	GateSymbol          = "symbol_not_allowed"
	GateHold            = "hold"
	GateInactive        = "engine_inactive"
	GateDailyLoss       = "daily_loss_limit"
	GateExpired         = "expired"
	GateSize            = "position_size"
)

// Evaluate runs forecast through the admission gates against the current
// settings and submits the resulting order. None means the forecast was
// rejected; a failed execution still returns the FAILED order.
func (e *Engine) Evaluate(ctx context.Context, forecast types.Forecast) optional.Option[types.Order] {
	return e.EvaluateWithSettings(ctx, forecast, e.Settings())
}

// EvaluateWithSettings is Evaluate against an explicit settings snapshot.
func (e *Engine) EvaluateWithSettings(ctx context.Context, forecast types.Forecast, settings types.RiskSettings) (result optional.Option[types.Order]) {
	var n notifier
	defer n.fire()

	defer func() {
		if r := recover(); r != nil {
			e.mu.Lock()
			e.faultLocked(&n, fmt.Sprintf("panic while evaluating forecast for %s: %v", forecast.Symbol, r))
			e.mu.Unlock()

			result = optional.None[types.Order]()
		}
	}()

	if err := forecast.Validate(); err != nil {
		e.reject(forecast, GateInvalidForecast, zap.Error(err))

		return optional.None[types.Order]()
	}

	e.metrics.ObserveForecast(forecast)

	order, ok := e.admit(&n, forecast, settings)
	if !ok {
		return optional.None[types.Order]()
	}

	final, err := e.Submit(ctx, order)
	if err != nil && !errors.HasCode(err, errors.ErrCodeExecutionFailed) && !errors.HasCode(err, errors.ErrCodeExecutionTimeout) {
		return optional.None[types.Order]()
	}

	return optional.Some(final)
}

// admit checks the gates and builds the PENDING order.
func (e *Engine) admit(n *notifier, forecast types.Forecast, settings types.RiskSettings) (types.Order, bool) {
	switch {
	case forecast.Confidence < settings.MinConfidenceLevel:
		e.reject(forecast, GateConfidence, zap.Float64("min_confidence_level", settings.MinConfidenceLevel))

		return types.Order{}, false
	case !settings.AutoTradingEnabled:
		e.reject(forecast, GateAutoTrading)

		return types.Order{}, false
	case !settings.AllowsSymbol(forecast.Symbol):
		e.reject(forecast, GateSymbol)

		return types.Order{}, false
	}

	side := types.SideForDirection(forecast.Direction)
	if side.IsNone() {
		e.reject(forecast, GateHold)

		return types.Order{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.rollDayLocked(now)

	if !e.status.IsActive {
		e.reject(forecast, GateInactive)

		return types.Order{}, false
	}

	if settings.MaxDailyLossPercent > 0 {
		limit := e.ledger.DayStartValue() * settings.MaxDailyLossPercent / 100
		if e.ledger.DailyPnL() <= -limit {
			e.reject(forecast, GateDailyLoss, zap.Float64("daily_pnl", e.ledger.DailyPnL()), zap.Float64("limit", limit))

			return types.Order{}, false
		}
	}

	if forecast.IsExpired(now) {
		e.reject(forecast, GateExpired, zap.Time("expires_at", forecast.ExpiresAt))

		return types.Order{}, false
	}

	price := forecast.CurrentPrice
	stop, target := ExitPrices(side.Unwrap(), price, settings)

	quantity, err := PositionSize(e.ledger.Balance(), settings.MaxRiskPerTradePercent, e.config.NotionalCapPercent, price, stop)
	if err != nil {
		e.faultLocked(n, fmt.Sprintf("Failed to size position for %s: %v", forecast.Symbol, err))

		return types.Order{}, false
	}

	if quantity <= 0 {
		e.reject(forecast, GateSize, zap.Float64("balance", e.ledger.Balance()), zap.Float64("stop_loss", stop))

		return types.Order{}, false
	}

	forecastID := optional.None[string]()
	if forecast.ID != "" {
		forecastID = optional.Some(forecast.ID)
	}

	return types.Order{
		ID:          uuid.New().String(),
		Symbol:      forecast.Symbol,
		Side:        side.Unwrap(),
		Quantity:    quantity,
		Price:       price,
		Status:      types.OrderStatusPending,
		SubmittedAt: now,
		ForecastID:  forecastID,
		StopLoss:    optional.Some(stop),
		TakeProfit:  optional.Some(target),
		Reason: types.Reason{
			Reason:  types.OrderReasonForecast,
			Message: fmt.Sprintf("%s forecast at %.2f%% confidence", forecast.Direction, forecast.Confidence),
		},
	}, true
}

func (e *Engine) reject(forecast types.Forecast, gate string, fields ...zap.Field) {
	e.metrics.ObserveRejection(gate)

	e.log.Info("Forecast rejected", append([]zap.Field{
		zap.String("gate", gate),
		zap.String("symbol", forecast.Symbol),
		zap.String("direction", string(forecast.Direction)),
		zap.Float64("confidence", forecast.Confidence),
	}, fields...)...)
}

// ExitPrices returns the stop-loss and take-profit prices for an entry at
// price. A sell mirrors a buy around the entry.
func ExitPrices(side types.OrderSide, price float64, settings types.RiskSettings) (stop float64, target float64) {
	stopFraction := settings.StopLossPercent / 100
	targetFraction := settings.TakeProfitPercent / 100

	if side == types.OrderSideSell {
		return price * (1 + stopFraction), price * (1 - targetFraction)
	}

	return price * (1 - stopFraction), price * (1 + targetFraction)
}

// PositionSize is the smaller of the shares whose loss at the stop equals
// riskPercent of balance and the shares worth capPercent of balance.
// A zero stop distance sizes to 0. The result is never negative.
func PositionSize(balance float64, riskPercent float64, capPercent float64, price float64, stop float64) (int64, error) {
	if balance <= 0 || price <= 0 {
		return 0, nil
	}

	stopDistance := math.Abs(price - stop)
	if stopDistance == 0 {
		return 0, nil
	}

	riskShares := math.Floor(balance * riskPercent / 100 / stopDistance)
	valueShares := math.Floor(balance * capPercent / 100 / price)
	shares := math.Min(riskShares, valueShares)

	if math.IsNaN(shares) || math.IsInf(shares, 0) || shares >= math.MaxInt64 {
		return 0, errors.Newf(errors.ErrCodeSizingFailed, "position size is not finite (risk %v, value %v)", riskShares, valueShares)
	}

	if shares <= 0 {
		return 0, nil
	}

	return int64(shares), nil
}

// Submit executes a PENDING order on the venue and books the result. The
// venue call is detached from the caller's cancellation and bounded only by
// the venue's own timeout. The same order cannot be submitted twice at once.
// On failure the order is recorded as FAILED, health turns to ERROR and the
// portfolio is untouched.
func (e *Engine) Submit(ctx context.Context, order types.Order) (types.Order, error) {
	var n notifier
	defer n.fire()

	if err := order.Validate(); err != nil {
		return order, err
	}

	if order.Status != types.OrderStatusPending {
		return order, errors.Newf(errors.ErrCodeInvalidOrder, "order %s is %s, not pending", order.ID, order.Status)
	}

	e.mu.Lock()
	if _, busy := e.inFlight[order.ID]; busy {
		e.mu.Unlock()

		return order, errors.Newf(errors.ErrCodeDuplicateSubmission, "order %s is already being submitted", order.ID)
	}

	e.inFlight[order.ID] = struct{}{}
	e.status.PendingOrderCount = len(e.inFlight)
	e.mu.Unlock()

	executed, err := e.execute(context.WithoutCancel(ctx), order)

	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.inFlight, order.ID)
	e.status.PendingOrderCount = len(e.inFlight)

	if err == nil && executed.Status != types.OrderStatusExecuted {
		err = errors.Newf(errors.ErrCodeExecutionFailed, "venue returned order %s as %s", order.ID, executed.Status)
	}

	if err == nil {
		if _, applyErr := e.ledger.ApplyExecution(executed); applyErr != nil {
			err = errors.Wrap(errors.ErrCodeExecutionFailed, "failed to book execution", applyErr)
		}
	}

	if err != nil {
		failed := order
		failed.Status = types.OrderStatusFailed
		failed.ExecutedAt = e.now()
		failed.Reason = types.Reason{Reason: types.OrderReasonExecutionFailed, Message: err.Error()}

		e.history = append(e.history, failed.Clone())
		e.metrics.ObserveOrder(failed)
		e.faultLocked(&n, fmt.Sprintf("Failed to execute %s order for %s: %v", order.Side, order.Symbol, err))

		if !errors.HasCode(err, errors.ErrCodeExecutionTimeout) {
			err = errors.Wrapf(errors.ErrCodeExecutionFailed, err, "order %s failed", order.ID)
		}

		return failed, err
	}

	e.active = append(e.active, executed.Clone())
	e.status.LastUpdate = e.now()
	e.observeLocked()
	e.metrics.ObserveOrder(executed)
	e.callbacks.orderExecuted(&n, executed.Clone())

	e.log.Info("Order executed",
		zap.String("order_id", executed.ID),
		zap.String("symbol", executed.Symbol),
		zap.String("side", string(executed.Side)),
		zap.Int64("quantity", executed.Quantity),
		zap.Float64("price", executed.Price),
		zap.Float64("balance", e.ledger.Balance()),
	)

	return executed, nil
}

// execute calls the venue, turning a venue panic into an execution error.
func (e *Engine) execute(ctx context.Context, order types.Order) (executed types.Order, err error) {
	defer func() {
		if r := recover(); r != nil {
			executed = order
			err = errors.Newf(errors.ErrCodeExecutionFailed, "venue panicked: %v", r)
		}
	}()

	return e.venue.Execute(ctx, order)
}
