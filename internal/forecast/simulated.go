package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"github.com/shopspring/decimal"
)

// SimulatedConfig configures the simulated forecast provider.
type SimulatedConfig struct {
	// Seed makes the confidence noise reproducible
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,default=7"`
	// Lookback is the number of samples the momentum is measured over
	Lookback int `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,minimum=2,default=10" validate:"gte=2"`
	// Threshold is the smallest relative move that is not a hold (0.002 = 0.2%)
	Threshold float64 `yaml:"threshold" json:"threshold" jsonschema:"title=Threshold,minimum=0,default=0.002" validate:"gte=0"`
	// Noise is the largest confidence change drawn per forecast
	Noise float64 `yaml:"noise" json:"noise" jsonschema:"title=Noise,minimum=0,maximum=50,default=10" validate:"gte=0,lte=50"`
}

// DefaultSimulatedConfig returns the default simulated provider configuration.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Seed:      7,
		Lookback:  10,
		Threshold: 0.002,
		Noise:     10,
	}
}

const (
	simulatedBaseConfidence = 65.0
	simulatedMinTargetMove  = 0.01
)

// SimulatedProvider stands in for an external forecasting model. It follows
// the momentum over the last Lookback samples and adds seeded noise to the
// confidence, so its forecasts disagree with the technical signals often
// enough for confidence enhancement to matter.
type SimulatedProvider struct {
	config    SimulatedConfig
	timeframe string
	rng       *rand.Rand
	mu        sync.Mutex
	now       func() time.Time
}

var _ Provider = (*SimulatedProvider)(nil)

// NewSimulatedProvider creates a simulated provider issuing forecasts for timeframe.
func NewSimulatedProvider(config SimulatedConfig, timeframe string) (*SimulatedProvider, error) {
	if config.Lookback < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "lookback must be at least 2, got %d", config.Lookback)
	}

	if config.Threshold < 0 || config.Noise < 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "threshold and noise must not be negative")
	}

	if timeframe == "" {
		timeframe = DefaultTimeframe
	}

	return &SimulatedProvider{
		config:    config,
		timeframe: timeframe,
		rng:       rand.New(rand.NewSource(config.Seed)),
		now:       time.Now,
	}, nil
}

// WithClock replaces the clock used to stamp forecasts.
func (p *SimulatedProvider) WithClock(now func() time.Time) *SimulatedProvider {
	p.now = now

	return p
}

// Forecast buys after a rise larger than Threshold over the lookback, sells
// after a fall and holds otherwise.
func (p *SimulatedProvider) Forecast(ctx context.Context, symbol string, history []types.PriceSample) (types.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return types.Forecast{}, errors.Wrap(errors.ErrCodeForecastFailed, "forecast cancelled", err)
	}

	if len(history) < 2 {
		return types.Forecast{}, errors.Newf(errors.ErrCodeForecastUnavailable, "need at least 2 samples for %s, got %d", symbol, len(history))
	}

	start := history[max(len(history)-p.config.Lookback, 0)].Price
	price := history[len(history)-1].Price
	move := price/start - 1

	direction := types.DirectionHold
	target := price
	targetMove := max(math.Abs(move), simulatedMinTargetMove)

	switch {
	case move > p.config.Threshold:
		direction = types.DirectionBuy
		target = price * (1 + targetMove)
	case move < -p.config.Threshold:
		direction = types.DirectionSell
		target = price * (1 - targetMove)
	}

	confidence := simulatedBaseConfidence + math.Abs(move)*1000 + p.noise()
	confidence, _ = decimal.NewFromFloat(min(max(confidence, 0), 100)).Round(2).Float64()

	createdAt := p.now()

	return types.Forecast{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Direction:    direction,
		Confidence:   confidence,
		CurrentPrice: price,
		TargetPrice:  target,
		Timeframe:    p.timeframe,
		Reasoning:    fmt.Sprintf("Simulated model: %.2f%% move over %d samples", move*100, min(p.config.Lookback, len(history))),
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(TimeframeDuration(p.timeframe)),
	}, nil
}

func (p *SimulatedProvider) noise() float64 {
	if p.config.Noise == 0 {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return (p.rng.Float64()*2 - 1) * p.config.Noise
}
