package autopilot

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/engine"
	"github.com/rxtech-lab/argo-autopilot/internal/engine/stats"
	"github.com/rxtech-lab/argo-autopilot/internal/forecast"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/marketdata"
	"github.com/rxtech-lab/argo-autopilot/internal/metrics"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval     = 5 * time.Second
	DefaultForecastInterval = forecast.DefaultCacheTTL
	DefaultMaxConcurrency   = 4
)

// Config holds the runner's cadence.
type Config struct {
	// PollInterval is the time between two ticks
	PollInterval time.Duration
	// ForecastInterval is how long a forecast is reused before a new one is requested
	ForecastInterval time.Duration
	// MaxConcurrency bounds the symbols forecast and evaluated at once
	MaxConcurrency int
}

// TickResult is what one tick did.
type TickResult struct {
	// FeedError is set when the price poll failed
	FeedError error
	// Exits are the stop-loss and take-profit exits booked this tick
	Exits []types.Order
	// Forecasts are the forecasts produced this tick, by symbol
	Forecasts []types.Forecast
	// Orders are the orders submitted this tick, by symbol
	Orders []types.Order
}

// Runner drives the engine: each tick polls prices, revalues the portfolio and
// books exits, then forecasts and evaluates the allowed symbols whose cached
// forecast has gone stale.
type Runner struct {
	config   Config
	engine   *engine.Engine
	feed     marketdata.Feed
	provider forecast.Provider
	window   *marketdata.Window
	cache    *forecast.Cache[types.Forecast]
	stats    *stats.StatsTracker
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) {
		r.log = log.Named("autopilot")
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithWindow uses window for price history instead of an empty one.
func WithWindow(window *marketdata.Window) Option {
	return func(r *Runner) {
		r.window = window
	}
}

// WithStats writes the tracker's stats file after every tick that booked exits.
func WithStats(tracker *stats.StatsTracker) Option {
	return func(r *Runner) {
		r.stats = tracker
	}
}

// NewRunner creates a runner. Zero config values take their defaults.
func NewRunner(config Config, eng *engine.Engine, feed marketdata.Feed, provider forecast.Provider, opts ...Option) *Runner {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	if config.ForecastInterval <= 0 {
		config.ForecastInterval = DefaultForecastInterval
	}

	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}

	r := &Runner{
		config:   config,
		engine:   eng,
		feed:     feed,
		provider: provider,
		window:   marketdata.NewWindow(marketdata.DefaultWindowSize),
		cache:    forecast.NewCache[types.Forecast](config.ForecastInterval),
		log:      logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Window returns the runner's price history.
func (r *Runner) Window() *marketdata.Window {
	return r.window
}

// Run starts the engine and ticks every PollInterval until ctx is done. It
// returns ctx.Err() and leaves the engine stopped.
func (r *Runner) Run(ctx context.Context) error {
	r.engine.Start()
	defer r.engine.Stop()

	r.log.Info("Autopilot started",
		zap.Duration("poll_interval", r.config.PollInterval),
		zap.Duration("forecast_interval", r.config.ForecastInterval),
	)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.Tick(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Autopilot stopped", zap.Error(ctx.Err()))

			return ctx.Err()
		case now := <-ticker.C:
			r.Tick(ctx, now)
		}
	}
}

// Tick runs one iteration at now. A failed price poll raises a warning and
// skips revaluation; forecasting still runs on the history already held.
func (r *Runner) Tick(ctx context.Context, now time.Time) TickResult {
	var result TickResult

	samples, err := r.feed.Prices(ctx)
	if err != nil {
		result.FeedError = err
		r.metrics.ObserveFeedError()
		r.engine.RaiseWarning(fmt.Sprintf("market data unavailable: %v", err))
		r.log.Warn("Failed to poll prices", zap.Error(err))
	} else {
		r.engine.ClearWarning()
		result.Exits = r.ingest(samples)
	}

	if ctx.Err() != nil {
		return result
	}

	result.Forecasts, result.Orders = r.forecastAndEvaluate(ctx, now)

	if len(result.Exits) > 0 && r.stats != nil {
		if err := r.stats.WriteStatsYAML(); err != nil {
			r.log.Warn("Failed to write stats", zap.Error(err))
		}
	}

	return result
}

// ingest records samples, revalues the portfolio and books triggered exits.
func (r *Runner) ingest(samples map[string]types.PriceSample) []types.Order {
	prices := make(map[string]float64, len(samples))

	for symbol, sample := range samples {
		if err := r.window.Add(sample); err != nil {
			r.log.Warn("Dropped price sample", zap.String("symbol", symbol), zap.Error(err))

			continue
		}

		r.metrics.ObserveTick(symbol)
		prices[symbol] = sample.Price
	}

	r.engine.MarkToMarket(prices)

	return r.engine.ScanExitTriggers(prices)
}

// forecastAndEvaluate refreshes stale forecasts concurrently, one symbol per
// goroutine, and evaluates each new forecast. Cached forecasts count as
// active predictions but are not evaluated again.
func (r *Runner) forecastAndEvaluate(ctx context.Context, now time.Time) ([]types.Forecast, []types.Order) {
	symbols := r.engine.Settings().AllowedSymbols

	var (
		mu        sync.Mutex
		forecasts []types.Forecast
		orders    []types.Order
		live      int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.MaxConcurrency)

	for _, symbol := range symbols {
		if cached, ok := r.cache.Get(symbol, now); ok {
			if !cached.IsExpired(now) {
				mu.Lock()
				live++
				mu.Unlock()
			}

			continue
		}

		g.Go(func() error {
			history := r.window.History(symbol)
			if len(history) == 0 {
				return nil
			}

			f, err := r.provider.Forecast(gctx, symbol, history)
			if err != nil {
				r.log.Warn("Failed to forecast", zap.String("symbol", symbol), zap.Error(err))

				return nil
			}

			r.cache.Put(symbol, f, now)

			mu.Lock()
			forecasts = append(forecasts, f)
			if !f.IsExpired(now) {
				live++
			}
			mu.Unlock()

			if f.IsExpired(now) {
				return nil
			}

			if order := r.engine.Evaluate(gctx, f); order.IsSome() {
				mu.Lock()
				orders = append(orders, order.Unwrap())
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	r.cache.Purge(now)
	r.engine.SetActivePredictionCount(live)

	slices.SortFunc(forecasts, func(a, b types.Forecast) int { return cmp.Compare(a.Symbol, b.Symbol) })
	slices.SortFunc(orders, func(a, b types.Order) int { return cmp.Compare(a.Symbol, b.Symbol) })

	return forecasts, orders
}
