package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

// DataGenerator generates price histories for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // test data
	}
}

// GeneratorConfig configures how samples are generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the time of the first sample
	StartTime time.Time
	// Interval is the duration between samples
	Interval time.Duration
	// Count is the number of samples to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per sample)
	Volatility float64
	// Trend is the drift per sample (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per sample
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "AAPL",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Hour,
		Count:          60,
		InitialPrice:   175.43,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     30_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates samples following a geometric Brownian motion with drift.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PriceSample {
	samples := make([]types.PriceSample, config.Count)
	price := config.InitialPrice
	at := config.StartTime

	for i := 0; i < config.Count; i++ {
		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(1-u1)) * math.Cos(2*math.Pi*u2)

		next := price * (1 + config.Volatility*z + config.Trend)
		if next <= 0 {
			next = price * 0.99 // Prevent negative prices
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		samples[i] = types.PriceSample{
			Symbol: config.Symbol,
			Price:  roundToDecimals(next, 4),
			Volume: roundToDecimals(volume, 0),
			Time:   at,
		}

		price = next
		at = at.Add(config.Interval)
	}

	return samples
}

// Trending returns count samples for symbol drifting by trend per sample
// with no noise.
func Trending(symbol string, start float64, trend float64, count int) []types.PriceSample {
	config := DefaultConfig()
	config.Symbol = symbol
	config.InitialPrice = start
	config.Trend = trend
	config.Volatility = 0
	config.VolumeVariance = 0
	config.Count = count

	return NewDataGenerator(42).Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
