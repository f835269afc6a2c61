package types

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// PriceSample is a single price/volume observation for a symbol.
type PriceSample struct {
	Symbol string    `yaml:"symbol" json:"symbol" validate:"required"`
	Price  float64   `yaml:"price" json:"price" validate:"gt=0"`
	Volume float64   `yaml:"volume" json:"volume" validate:"gte=0"`
	Time   time.Time `yaml:"time" json:"time" validate:"required"`
}

// Validate validates the PriceSample struct.
func (p *PriceSample) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPriceSample, "invalid price sample", err)
	}

	if !IsFinitePrice(p.Price) || math.IsNaN(p.Volume) || math.IsInf(p.Volume, 0) {
		return errors.Newf(errors.ErrCodeInvalidPriceSample, "price sample for %s is not finite", p.Symbol)
	}

	return nil
}

// IsFinitePrice reports whether price is a usable, strictly positive number.
func IsFinitePrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}

// Prices extracts the price series from samples, oldest first.
func Prices(samples []PriceSample) []float64 {
	prices := make([]float64, len(samples))
	for i, s := range samples {
		prices[i] = s.Price
	}

	return prices
}

// Volumes extracts the volume series from samples, oldest first.
func Volumes(samples []PriceSample) []float64 {
	volumes := make([]float64, len(samples))
	for i, s := range samples {
		volumes[i] = s.Volume
	}

	return volumes
}
