package marketdata

import (
	"context"
	"maps"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// DefaultPrices are the opening prices of the simulated market.
func DefaultPrices() map[string]float64 {
	return map[string]float64{
		"AAPL":  175.43,
		"TSLA":  242.67,
		"NVDA":  891.23,
		"GOOGL": 138.45,
		"AMZN":  145.23,
	}
}

// SimulatedFeedConfig configures how simulated prices are generated.
type SimulatedFeedConfig struct {
	// Seed makes the walk reproducible
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,default=42"`
	// Prices are the opening prices per symbol
	Prices map[string]float64 `yaml:"prices" json:"prices" jsonschema:"title=Opening Prices" validate:"dive,gt=0"`
	// MaxStep is the largest relative move per tick (0.01 = ±1%)
	MaxStep float64 `yaml:"max_step" json:"max_step" jsonschema:"title=Max Step,minimum=0,maximum=1,default=0.01" validate:"gte=0,lte=1"`
	// VolumeBase is the smallest volume per tick
	VolumeBase float64 `yaml:"volume_base" json:"volume_base" jsonschema:"title=Volume Base,minimum=0" validate:"gte=0"`
	// VolumeRange is added to VolumeBase scaled by a uniform draw
	VolumeRange float64 `yaml:"volume_range" json:"volume_range" jsonschema:"title=Volume Range,minimum=0" validate:"gte=0"`
	// Interval is the spacing of backfilled samples
	Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"title=Backfill Interval,default=1h"`
}

// DefaultSimulatedFeedConfig returns the default random-walk configuration.
func DefaultSimulatedFeedConfig() SimulatedFeedConfig {
	return SimulatedFeedConfig{
		Seed:        42,
		Prices:      DefaultPrices(),
		MaxStep:     0.01,
		VolumeBase:  10_000_000,
		VolumeRange: 50_000_000,
		Interval:    time.Hour,
	}
}

// SimulatedFeed generates prices with a seeded random walk.
type SimulatedFeed struct {
	config SimulatedFeedConfig
	rng    *rand.Rand
	prices map[string]float64
	now    func() time.Time
	mu     sync.Mutex
}

var _ Feed = (*SimulatedFeed)(nil)

// NewSimulatedFeed creates a feed starting from config.Prices.
func NewSimulatedFeed(config SimulatedFeedConfig) (*SimulatedFeed, error) {
	if len(config.Prices) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "simulated feed requires at least one symbol")
	}

	for symbol, price := range config.Prices {
		if !types.IsFinitePrice(price) {
			return nil, errors.Newf(errors.ErrCodeInvalidPrice, "invalid opening price %f for %s", price, symbol)
		}
	}

	if config.Interval <= 0 {
		config.Interval = time.Hour
	}

	return &SimulatedFeed{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)), //nolint:gosec // simulated prices
		prices: maps.Clone(config.Prices),
		now:    time.Now,
	}, nil
}

// WithClock replaces the clock used to stamp samples.
func (f *SimulatedFeed) WithClock(now func() time.Time) *SimulatedFeed {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = now

	return f
}

// Symbols returns the simulated symbols in sorted order.
func (f *SimulatedFeed) Symbols() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Sorted(maps.Keys(f.prices))
}

// Prices advances every symbol by one step and returns the new samples.
func (f *SimulatedFeed) Prices(ctx context.Context) (map[string]types.PriceSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFeedFailed, "feed cancelled", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	samples := make(map[string]types.PriceSample, len(f.prices))

	for _, symbol := range slices.Sorted(maps.Keys(f.prices)) {
		samples[symbol] = f.step(symbol, now)
	}

	return samples, nil
}

// Backfill generates n samples per symbol at the configured interval, the
// last one stamped at the current time. The walk continues from the
// current prices, which are left at the last backfilled value.
func (f *SimulatedFeed) Backfill(n int) map[string][]types.PriceSample {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	history := make(map[string][]types.PriceSample, len(f.prices))

	for _, symbol := range slices.Sorted(maps.Keys(f.prices)) {
		samples := make([]types.PriceSample, 0, max(n, 0))
		for i := n - 1; i >= 0; i-- {
			samples = append(samples, f.step(symbol, now.Add(-time.Duration(i)*f.config.Interval)))
		}

		history[symbol] = samples
	}

	return history
}

func (f *SimulatedFeed) step(symbol string, at time.Time) types.PriceSample {
	change := (f.rng.Float64()*2 - 1) * f.config.MaxStep

	price := f.prices[symbol] * (1 + change)
	if price <= 0 {
		// Prevent negative prices
		price = f.prices[symbol] * 0.99
	}

	f.prices[symbol] = price

	return types.PriceSample{
		Symbol: symbol,
		Price:  roundToDecimals(price, 4),
		Volume: math.Floor(f.rng.Float64()*f.config.VolumeRange) + f.config.VolumeBase,
		Time:   at,
	}
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
