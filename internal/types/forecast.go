package types

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Forecast is a directional prediction for a symbol. A forecast is never
// modified after it is produced; adjusted copies are derived with WithConfidence.
type Forecast struct {
	ID         string    `yaml:"id" json:"id"`
	Symbol     string    `yaml:"symbol" json:"symbol" validate:"required"`
	Direction  Direction `yaml:"direction" json:"direction" validate:"required,oneof=BUY SELL HOLD"`
	Confidence float64   `yaml:"confidence" json:"confidence" validate:"gte=0,lte=100"`
	// CurrentPrice is the price the forecast was made against
	CurrentPrice float64 `yaml:"current_price" json:"current_price" validate:"gt=0"`
	TargetPrice  float64 `yaml:"target_price" json:"target_price" validate:"gte=0"`
	Timeframe    string  `yaml:"timeframe" json:"timeframe"`
	Reasoning    string  `yaml:"reasoning" json:"reasoning"`
	// Signals are the corroborating indicator readings, in computation order
	Signals   []Signal  `yaml:"signals" json:"signals" validate:"dive"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	ExpiresAt time.Time `yaml:"expires_at" json:"expires_at"`
}

// Validate validates the Forecast struct.
func (f *Forecast) Validate() error {
	if err := validator.New().Struct(f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidForecast, "invalid forecast", err)
	}

	if math.IsNaN(f.Confidence) || !IsFinitePrice(f.CurrentPrice) {
		return errors.Newf(errors.ErrCodeInvalidForecast, "forecast for %s has non-finite confidence or price", f.Symbol)
	}

	if !f.ExpiresAt.IsZero() && f.ExpiresAt.Before(f.CreatedAt) {
		return errors.Newf(errors.ErrCodeInvalidForecast, "forecast for %s expires before it was created", f.Symbol)
	}

	return nil
}

// WithConfidence returns a copy of the forecast carrying the given confidence.
// The signal slice is copied so the two forecasts share no state.
func (f Forecast) WithConfidence(confidence float64) Forecast {
	derived := f
	derived.Confidence = confidence
	derived.Signals = append([]Signal(nil), f.Signals...)

	return derived
}

// WithSignals returns a copy of the forecast carrying the given signals.
func (f Forecast) WithSignals(signals []Signal) Forecast {
	derived := f
	derived.Signals = append([]Signal(nil), signals...)

	return derived
}

// IsExpired reports whether the forecast is past its expiry at now.
// A forecast without an expiry never expires.
func (f Forecast) IsExpired(now time.Time) bool {
	if f.ExpiresAt.IsZero() {
		return false
	}

	return !now.Before(f.ExpiresAt)
}
