package marketdata

import (
	"context"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

// Feed supplies the latest price sample of every tracked symbol.
type Feed interface {
	// Prices returns the current sample per symbol.
	Prices(ctx context.Context) (map[string]types.PriceSample, error)
}

// PriceMap flattens samples into the symbol to price map consumed by the engine.
func PriceMap(samples map[string]types.PriceSample) map[string]float64 {
	prices := make(map[string]float64, len(samples))
	for symbol, sample := range samples {
		prices[symbol] = sample.Price
	}

	return prices
}
