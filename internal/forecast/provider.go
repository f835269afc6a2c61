package forecast

import (
	"context"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

// Provider produces a directional forecast for a symbol from its history.
type Provider interface {
	Forecast(ctx context.Context, symbol string, history []types.PriceSample) (types.Forecast, error)
}
