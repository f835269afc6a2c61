package portfolio

import (
	"maps"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"github.com/shopspring/decimal"
)

// Ledger owns a Portfolio. Every mutation goes through one of its methods and
// each of them finishes with recomputeDerived. Ledger is not safe for
// concurrent use; the engine serializes access.
type Ledger struct {
	portfolio     types.Portfolio
	dayStartValue float64
	closedTrades  int
	winningTrades int
}

// NewLedger creates a ledger funded with balance.
func NewLedger(balance float64) *Ledger {
	l := &Ledger{
		portfolio:     types.NewPortfolio(balance),
		dayStartValue: balance,
	}
	recomputeDerived(&l.portfolio, l.dayStartValue)

	return l
}

// ApplyExecution books an executed order. A buy debits the balance and opens
// or grows the position at the weighted average price. A sell credits the
// balance and shrinks the position, dropping it once nothing is left; selling
// more than is held closes the position. The realized PnL of the quantity
// sold out of a position is returned, none when the order closed nothing.
func (l *Ledger) ApplyExecution(order types.Order) (optional.Option[float64], error) {
	if order.Status != types.OrderStatusExecuted {
		return optional.None[float64](), errors.Newf(errors.ErrCodeInvalidOrder, "order %s is %s, not executed", order.ID, order.Status)
	}

	if err := order.Validate(); err != nil {
		return optional.None[float64](), err
	}

	price := decimal.NewFromFloat(order.Price)
	quantity := decimal.NewFromInt(order.Quantity)
	notional := quantity.Mul(price)
	balance := decimal.NewFromFloat(l.portfolio.AvailableBalance)
	realized := optional.None[float64]()

	switch order.Side {
	case types.OrderSideBuy:
		l.portfolio.AvailableBalance = balance.Sub(notional).InexactFloat64()
		l.buy(order, quantity, price)
	case types.OrderSideSell:
		l.portfolio.AvailableBalance = balance.Add(notional).InexactFloat64()
		realized = l.sell(order, price)
	}

	l.portfolio.TotalTrades++
	recomputeDerived(&l.portfolio, l.dayStartValue)

	return realized, nil
}

func (l *Ledger) buy(order types.Order, quantity decimal.Decimal, price decimal.Decimal) {
	position, ok := l.portfolio.Positions[order.Symbol]
	if !ok {
		l.portfolio.Positions[order.Symbol] = valuePosition(types.Position{
			Symbol:            order.Symbol,
			Quantity:          order.Quantity,
			AverageEntryPrice: order.Price,
			CurrentPrice:      order.Price,
			OpenedAt:          order.ExecutedAt,
		})

		return
	}

	heldQuantity := decimal.NewFromInt(position.Quantity)
	heldCost := heldQuantity.Mul(decimal.NewFromFloat(position.AverageEntryPrice))
	totalQuantity := heldQuantity.Add(quantity)

	position.AverageEntryPrice = heldCost.Add(quantity.Mul(price)).Div(totalQuantity).InexactFloat64()
	position.Quantity += order.Quantity
	position.CurrentPrice = order.Price
	l.portfolio.Positions[order.Symbol] = valuePosition(position)
}

func (l *Ledger) sell(order types.Order, price decimal.Decimal) optional.Option[float64] {
	position, ok := l.portfolio.Positions[order.Symbol]
	if !ok || position.Quantity <= 0 {
		return optional.None[float64]()
	}

	closed := min(order.Quantity, position.Quantity)
	pnl := price.Sub(decimal.NewFromFloat(position.AverageEntryPrice)).Mul(decimal.NewFromInt(closed))

	l.portfolio.RealizedPnL = decimal.NewFromFloat(l.portfolio.RealizedPnL).Add(pnl).InexactFloat64()

	position.Quantity -= order.Quantity
	if position.Quantity <= 0 {
		delete(l.portfolio.Positions, order.Symbol)
	} else {
		position.CurrentPrice = order.Price
		l.portfolio.Positions[order.Symbol] = valuePosition(position)
	}

	return optional.Some(pnl.InexactFloat64())
}

// RecordClosedTrade counts a closed trade toward the win rate. A trade wins
// when its own realized PnL is positive.
func (l *Ledger) RecordClosedTrade(realizedPnL float64) {
	l.closedTrades++

	if realizedPnL > 0 {
		l.winningTrades++
	}

	l.portfolio.WinRate = float64(l.winningTrades) / float64(l.closedTrades) * 100
	recomputeDerived(&l.portfolio, l.dayStartValue)
}

// MarkToMarket revalues every held position that has a usable price in prices.
// Calling it twice with the same prices leaves the same state.
func (l *Ledger) MarkToMarket(prices map[string]float64) {
	for symbol, position := range l.portfolio.Positions {
		price, ok := prices[symbol]
		if !ok || !types.IsFinitePrice(price) {
			continue
		}

		position.CurrentPrice = price
		l.portfolio.Positions[symbol] = valuePosition(position)
	}

	recomputeDerived(&l.portfolio, l.dayStartValue)
}

// ResetDay starts a new trading day at the current total value.
func (l *Ledger) ResetDay() {
	recomputeDerived(&l.portfolio, l.dayStartValue)
	l.dayStartValue = l.portfolio.TotalValue
	recomputeDerived(&l.portfolio, l.dayStartValue)
}

// DayStartValue is the total value at the start of the trading day.
func (l *Ledger) DayStartValue() float64 {
	return l.dayStartValue
}

// Balance is the available cash balance.
func (l *Ledger) Balance() float64 {
	return l.portfolio.AvailableBalance
}

// DailyPnL is the change in total value since the start of the day.
func (l *Ledger) DailyPnL() float64 {
	return l.portfolio.DailyPnL
}

// Position returns the position held for symbol, if any.
func (l *Ledger) Position(symbol string) optional.Option[types.Position] {
	position, ok := l.portfolio.Positions[symbol]
	if !ok {
		return optional.None[types.Position]()
	}

	return optional.Some(position)
}

// Snapshot returns a deep copy of the portfolio.
func (l *Ledger) Snapshot() types.Portfolio {
	return l.portfolio.Clone()
}

// valuePosition recomputes a position's unrealized PnL from its current price.
func valuePosition(position types.Position) types.Position {
	diff := position.CurrentPrice - position.AverageEntryPrice
	position.UnrealizedPnL = diff * float64(position.Quantity)

	if position.AverageEntryPrice > 0 {
		position.UnrealizedPnLPercent = diff / position.AverageEntryPrice * 100
	} else {
		position.UnrealizedPnLPercent = 0
	}

	return position
}

// recomputeDerived rebuilds TotalValue, TotalPnL and DailyPnL from the
// balance and positions. Positions are summed in symbol order so the result
// does not depend on map iteration.
func recomputeDerived(portfolio *types.Portfolio, dayStartValue float64) {
	totalValue := portfolio.AvailableBalance
	totalPnL := 0.0

	for _, symbol := range slices.Sorted(maps.Keys(portfolio.Positions)) {
		position := portfolio.Positions[symbol]
		totalValue += position.MarketValue()
		totalPnL += position.UnrealizedPnL
	}

	portfolio.TotalValue = totalValue
	portfolio.TotalPnL = totalPnL
	portfolio.DailyPnL = totalValue - dayStartValue
}
