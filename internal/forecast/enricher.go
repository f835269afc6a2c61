package forecast

import (
	"context"

	"github.com/rxtech-lab/argo-autopilot/internal/indicator"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"go.uber.org/zap"
)

// Enricher corroborates forecasts from a primary provider with technical
// signals. When the primary provider fails, or there is none, the technical
// fallback answers instead.
type Enricher struct {
	primary    Provider
	fallback   *TechnicalProvider
	aggregator *indicator.Aggregator
	log        *logger.Logger
}

var _ Provider = (*Enricher)(nil)

// NewEnricher creates an enricher. primary may be nil.
func NewEnricher(primary Provider, fallback *TechnicalProvider, aggregator *indicator.Aggregator, log *logger.Logger) *Enricher {
	if aggregator == nil {
		aggregator = indicator.NewAggregator(nil)
	}

	if fallback == nil {
		fallback = NewTechnicalProvider(aggregator, DefaultTimeframe)
	}

	return &Enricher{
		primary:    primary,
		fallback:   fallback,
		aggregator: aggregator,
		log:        log.Named("forecast"),
	}
}

// Forecast returns the primary forecast with the computed signals attached
// and its confidence enhanced by their agreement. The primary's forecast is
// not modified.
func (e *Enricher) Forecast(ctx context.Context, symbol string, history []types.PriceSample) (types.Forecast, error) {
	if e.primary == nil {
		return e.fallback.Forecast(ctx, symbol, history)
	}

	forecast, err := e.primary.Forecast(ctx, symbol, history)
	if err == nil {
		err = forecast.Validate()
	}

	if err != nil {
		e.log.Warn("Forecast provider failed, falling back to technical analysis",
			zap.String("symbol", symbol),
			zap.Error(err),
		)

		return e.fallback.Forecast(ctx, symbol, history)
	}

	signals, err := e.aggregator.ComputeSignals(history)
	if err != nil {
		e.log.Warn("Failed to compute signals, forecast left unadjusted",
			zap.String("symbol", symbol),
			zap.Error(err),
		)

		return forecast.WithConfidence(forecast.Confidence), nil
	}

	enhanced := indicator.EnhanceConfidence(forecast.Confidence, forecast.Direction, signals)

	e.log.Debug("Forecast enriched",
		zap.String("symbol", symbol),
		zap.String("direction", string(forecast.Direction)),
		zap.Float64("base_confidence", forecast.Confidence),
		zap.Float64("confidence", enhanced),
		zap.Int("signals", len(signals)),
	)

	return forecast.WithSignals(signals).WithConfidence(enhanced), nil
}
