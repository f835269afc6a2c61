package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MarkToMarket revalues held positions. Prices that are not positive finite
// numbers are rejected per entry and the rest are applied.
func (e *Engine) MarkToMarket(prices map[string]float64) {
	valid := make(map[string]float64, len(prices))

	for symbol, price := range prices {
		if !types.IsFinitePrice(price) {
			e.log.Warn("Rejected invalid price", zap.String("symbol", symbol), zap.Float64("price", price))

			continue
		}

		valid[symbol] = price
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rollDayLocked(e.now())
	e.ledger.MarkToMarket(valid)
	e.observeLocked()
}

// ScanExitTriggers checks every active order once against prices. The stop
// is checked before the target. Each triggered order is closed by an
// opposite-side exit executed at the current price, and both move to the
// history. The exits are returned in active-order sequence.
func (e *Engine) ScanExitTriggers(prices map[string]float64) []types.Order {
	var n notifier
	defer n.fire()

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	exits := make([]types.Order, 0)
	remaining := make([]types.Order, 0, len(e.active))

	for _, order := range e.active {
		price, ok := prices[order.Symbol]
		if !ok || !types.IsFinitePrice(price) {
			remaining = append(remaining, order)

			continue
		}

		reason, triggered := exitReason(order, price)
		if !triggered {
			remaining = append(remaining, order)

			continue
		}

		exit := types.Order{
			ID:          uuid.New().String(),
			Symbol:      order.Symbol,
			Side:        order.Side.Opposite(),
			Quantity:    order.Quantity,
			Price:       price,
			Status:      types.OrderStatusExecuted,
			SubmittedAt: now,
			ExecutedAt:  now,
			Reason: types.Reason{
				Reason:  reason,
				Message: fmt.Sprintf("%s triggered at %.2f for order %s", reason, price, order.ID),
			},
		}

		if _, err := e.ledger.ApplyExecution(exit); err != nil {
			e.faultLocked(&n, fmt.Sprintf("Failed to book %s exit for %s: %v", reason, order.Symbol, err))
			remaining = append(remaining, order)

			continue
		}

		if order.Side == types.OrderSideSell {
			if position := e.ledger.Position(order.Symbol); position.IsSome() {
				e.log.Warn("Exit left a long position with no active order",
					zap.String("symbol", order.Symbol),
					zap.Int64("quantity", position.Unwrap().Quantity),
					zap.Float64("average_entry_price", position.Unwrap().AverageEntryPrice),
				)
			}
		}

		trade := closeTrade(order, exit)

		e.history = append(e.history, order, exit)
		e.closed = append(e.closed, trade)
		e.ledger.RecordClosedTrade(trade.RealizedPnL)

		if e.stats != nil {
			e.stats.RecordClosedTrade(trade)
		}

		e.metrics.ObserveExit(exit)
		e.callbacks.exitTriggered(&n, exit, trade)

		e.log.Info("Exit triggered",
			zap.String("reason", reason),
			zap.String("order_id", order.ID),
			zap.String("symbol", order.Symbol),
			zap.Float64("price", price),
			zap.Float64("pnl", trade.RealizedPnL),
		)

		exits = append(exits, exit)
	}

	e.active = remaining

	if len(exits) > 0 {
		e.status.LastUpdate = now
		e.observeLocked()
	}

	return exits
}

// exitReason reports which exit, if any, price triggers for order.
func exitReason(order types.Order, price float64) (string, bool) {
	isBuy := order.Side == types.OrderSideBuy

	if order.StopLoss.IsSome() {
		stop := order.StopLoss.Unwrap()
		if (isBuy && price <= stop) || (!isBuy && price >= stop) {
			return types.OrderReasonStopLoss, true
		}
	}

	if order.TakeProfit.IsSome() {
		target := order.TakeProfit.Unwrap()
		if (isBuy && price >= target) || (!isBuy && price <= target) {
			return types.OrderReasonTakeProfit, true
		}
	}

	return "", false
}

// closeTrade builds the closed trade of entry and its exit. The PnL is
// signed by the entry side.
func closeTrade(entry types.Order, exit types.Order) types.ClosedTrade {
	move := decimal.NewFromFloat(exit.Price).Sub(decimal.NewFromFloat(entry.Price))
	if entry.Side == types.OrderSideSell {
		move = move.Neg()
	}

	return types.ClosedTrade{
		EntryOrderID: entry.ID,
		ExitOrderID:  exit.ID,
		Symbol:       entry.Symbol,
		Side:         entry.Side,
		Quantity:     entry.Quantity,
		EntryPrice:   entry.Price,
		ExitPrice:    exit.Price,
		RealizedPnL:  move.Mul(decimal.NewFromInt(entry.Quantity)).InexactFloat64(),
		Reason:       exit.Reason.Reason,
		OpenedAt:     entry.ExecutedAt,
		ClosedAt:     exit.ExecutedAt,
	}
}
