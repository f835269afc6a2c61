package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

type OrderSide string

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

const (
	OrderReasonStopLoss        string = "stop_loss"
	OrderReasonTakeProfit      string = "take_profit"
	OrderReasonForecast        string = "forecast"
	OrderReasonExecutionFailed string = "execution_failed"
)

type Reason struct {
	Reason  string `yaml:"reason" json:"reason" validate:"required"`
	Message string `yaml:"message" json:"message"`
}

// Opposite returns the side that closes a position opened by s.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}

	return OrderSideBuy
}

// SideForDirection maps a forecast direction to an order side.
// HOLD has no side.
func SideForDirection(direction Direction) optional.Option[OrderSide] {
	switch direction {
	case DirectionBuy:
		return optional.Some(OrderSideBuy)
	case DirectionSell:
		return optional.Some(OrderSideSell)
	default:
		return optional.None[OrderSide]()
	}
}

type Order struct {
	ID          string      `yaml:"id" json:"id" validate:"required,uuid"`
	Symbol      string      `yaml:"symbol" json:"symbol" validate:"required"`
	Side        OrderSide   `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Quantity    int64       `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
	Price       float64     `yaml:"price" json:"price" validate:"required,gt=0"`
	Status      OrderStatus `yaml:"status" json:"status" validate:"required,oneof=PENDING EXECUTED FAILED CANCELLED"`
	SubmittedAt time.Time   `yaml:"submitted_at" json:"submitted_at"`
	// ExecutedAt is zero until the order leaves PENDING
	ExecutedAt time.Time `yaml:"executed_at" json:"executed_at"`
	// ForecastID is the forecast this order was created from. Exit orders have none.
	ForecastID optional.Option[string] `yaml:"forecast_id" json:"forecast_id"`
	// StopLoss is the stop price. Can be none if not set.
	StopLoss optional.Option[float64] `yaml:"stop_loss" json:"stop_loss"`
	// TakeProfit is the target price. Can be none if not set.
	TakeProfit optional.Option[float64] `yaml:"take_profit" json:"take_profit"`
	// Reason is why the order exists, e.g. "forecast", "stop_loss", "take_profit"
	Reason Reason `yaml:"reason" json:"reason" validate:"required"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	if !IsFinitePrice(o.Price) {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order %s has a non-finite price", o.ID)
	}

	if o.StopLoss.IsSome() && !IsFinitePrice(o.StopLoss.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order %s has an invalid stop loss", o.ID)
	}

	if o.TakeProfit.IsSome() && !IsFinitePrice(o.TakeProfit.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order %s has an invalid take profit", o.ID)
	}

	return nil
}

// Notional is quantity times price.
func (o Order) Notional() float64 {
	return float64(o.Quantity) * o.Price
}

// IsTerminal reports whether the order has left PENDING.
func (o Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}

// Clone returns a copy of the order that shares no optional values with o.
func (o Order) Clone() Order {
	cloned := o
	cloned.ForecastID = cloneOption(o.ForecastID)
	cloned.StopLoss = cloneOption(o.StopLoss)
	cloned.TakeProfit = cloneOption(o.TakeProfit)

	return cloned
}

// CloneOrders clones every order in orders.
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}

	cloned := make([]Order, len(orders))
	for i, order := range orders {
		cloned[i] = order.Clone()
	}

	return cloned
}

// cloneOption copies an option's value out of its backing array.
func cloneOption[T any](o optional.Option[T]) optional.Option[T] {
	if o.IsNone() {
		return optional.None[T]()
	}

	return optional.Some(o.Unwrap())
}
