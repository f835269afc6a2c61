package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-autopilot/internal/indicator"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

const (
	holdConfidence        = 60.0
	baseConfidence        = 70.0
	confidencePerVote     = 5.0
	maxFallbackConfidence = 90.0
	targetMove            = 0.02
)

// TechnicalProvider forecasts from indicator consensus alone. It is the
// fallback when no other provider is available.
type TechnicalProvider struct {
	aggregator *indicator.Aggregator
	timeframe  string
	now        func() time.Time
}

var _ Provider = (*TechnicalProvider)(nil)

// NewTechnicalProvider creates a provider over aggregator issuing forecasts for timeframe.
func NewTechnicalProvider(aggregator *indicator.Aggregator, timeframe string) *TechnicalProvider {
	if aggregator == nil {
		aggregator = indicator.NewAggregator(nil)
	}

	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	return &TechnicalProvider{
		aggregator: aggregator,
		timeframe:  timeframe,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to stamp forecasts.
func (p *TechnicalProvider) WithClock(now func() time.Time) *TechnicalProvider {
	p.now = now

	return p
}

// Forecast buys when bullish signals outnumber bearish ones, sells on the
// reverse and holds otherwise. Confidence is 70 plus 5 per winning signal,
// capped at 90, and 60 for a hold.
func (p *TechnicalProvider) Forecast(ctx context.Context, symbol string, history []types.PriceSample) (types.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return types.Forecast{}, errors.Wrap(errors.ErrCodeForecastFailed, "forecast cancelled", err)
	}

	if len(history) == 0 {
		return types.Forecast{}, errors.Newf(errors.ErrCodeForecastUnavailable, "no price history for %s", symbol)
	}

	signals, err := p.aggregator.ComputeSignals(history)
	if err != nil {
		return types.Forecast{}, errors.Wrapf(errors.ErrCodeForecastFailed, err, "failed to compute signals for %s", symbol)
	}

	price := history[len(history)-1].Price
	bullish, bearish := indicator.Consensus(signals)

	direction := types.DirectionHold
	confidence := holdConfidence
	target := price

	switch {
	case bullish > bearish:
		direction = types.DirectionBuy
		confidence = baseConfidence + confidencePerVote*float64(bullish)
		target = price * (1 + targetMove)
	case bearish > bullish:
		direction = types.DirectionSell
		confidence = baseConfidence + confidencePerVote*float64(bearish)
		target = price * (1 - targetMove)
	}

	createdAt := p.now()

	return types.Forecast{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Direction:    direction,
		Confidence:   min(confidence, maxFallbackConfidence),
		CurrentPrice: price,
		TargetPrice:  target,
		Timeframe:    p.timeframe,
		Reasoning:    fmt.Sprintf("Technical analysis fallback: %d bullish vs %d bearish signals", bullish, bearish),
		Signals:      signals,
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(TimeframeDuration(p.timeframe)),
	}, nil
}
