package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-autopilot/internal/autopilot"
	"github.com/rxtech-lab/argo-autopilot/internal/config"
	"github.com/rxtech-lab/argo-autopilot/internal/engine"
	"github.com/rxtech-lab/argo-autopilot/internal/engine/stats"
	"github.com/rxtech-lab/argo-autopilot/internal/forecast"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/marketdata"
	"github.com/rxtech-lab/argo-autopilot/internal/metrics"
	"github.com/rxtech-lab/argo-autopilot/internal/trading/venue"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// app is a fully wired autopilot.
type app struct {
	config  config.Config
	engine  *engine.Engine
	runner  *autopilot.Runner
	metrics *metrics.Metrics
	log     *logger.Logger
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	a, err := newApp(cfg, log, time.Now, cmd.Root().Writer)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

// newApp builds the feed, venue, forecast provider, engine and runner
// described by cfg. The feed's backfill is loaded into the runner's window.
// Trading events are printed to events.
func newApp(cfg config.Config, log *logger.Logger, now func() time.Time, events io.Writer) (*app, error) {
	m := metrics.New()

	feed, err := marketdata.NewSimulatedFeed(cfg.Feed)
	if err != nil {
		return nil, err
	}

	feed.WithClock(now)

	executionVenue, err := venue.NewVenue(venue.VenueSimulated, cfg.Venue)
	if err != nil {
		return nil, err
	}

	tracker := stats.NewStatsTracker(log).WithClock(now)
	tracker.Initialize(cfg.Symbols(), uuid.New().String(), now())
	tracker.SetOutputPath(cfg.StatsPath)

	eng, err := engine.NewEngine(cfg.Config, executionVenue,
		engine.WithLogger(log),
		engine.WithMetrics(m),
		engine.WithClock(now),
		engine.WithStats(tracker),
		engine.WithCallbacks(callbacks(events)),
	)
	if err != nil {
		return nil, err
	}

	provider, err := forecast.NewProvider(cfg.Forecast, cfg.Timeframe, now, log)
	if err != nil {
		return nil, err
	}

	window := marketdata.NewWindow(cfg.WindowSize)
	for symbol, samples := range feed.Backfill(cfg.Backfill) {
		if err := window.AddAll(samples); err != nil {
			log.Warn("Failed to backfill history", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	runner := autopilot.NewRunner(autopilot.Config{
		PollInterval:     cfg.PollInterval,
		ForecastInterval: cfg.ForecastInterval,
		MaxConcurrency:   cfg.MaxConcurrency,
	}, eng, feed, provider,
		autopilot.WithLogger(log),
		autopilot.WithMetrics(m),
		autopilot.WithWindow(window),
		autopilot.WithStats(tracker),
	)

	return &app{
		config:  cfg,
		engine:  eng,
		runner:  runner,
		metrics: m,
		log:     log,
	}, nil
}

// callbacks prints one line per trading event to w.
func callbacks(w io.Writer) engine.Callbacks {
	onOrderExecuted := engine.OnOrderExecutedCallback(func(order types.Order) {
		_, _ = fmt.Fprintf(w, "%s %s %d @ %.2f\n", order.Side, order.Symbol, order.Quantity, order.Price)
	})
	onExitTriggered := engine.OnExitTriggeredCallback(func(exit types.Order, trade types.ClosedTrade) {
		_, _ = fmt.Fprintf(w, "%s %s %d @ %.2f (%s, pnl %.2f)\n",
			exit.Side, trade.Symbol, exit.Quantity, exit.Price, trade.Reason, trade.RealizedPnL)
	})
	onFault := engine.OnFaultCallback(func(message string) {
		_, _ = fmt.Fprintf(w, "FAULT %s\n", message)
	})

	return engine.Callbacks{
		OnOrderExecuted: &onOrderExecuted,
		OnExitTriggered: &onExitTriggered,
		OnFault:         &onFault,
	}
}

// run ticks the runner and serves metrics until ctx is done.
func (a *app) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.config.MetricsAddr != "" {
		server := &http.Server{
			Addr:              a.config.MetricsAddr,
			Handler:           newRouter(a.engine, a.metrics),
			ReadHeaderTimeout: shutdownTimeout,
		}

		g.Go(func() error {
			a.log.Info("Serving metrics", zap.String("addr", a.config.MetricsAddr))

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		err := a.runner.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})

	return g.Wait()
}
