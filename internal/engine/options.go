package engine

import (
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/engine/stats"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log.Named("engine")
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock replaces the clock used for order timestamps, expiry and day rollover.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithStats records every closed trade in tracker.
func WithStats(tracker *stats.StatsTracker) Option {
	return func(e *Engine) {
		e.stats = tracker
	}
}

func WithCallbacks(callbacks Callbacks) Option {
	return func(e *Engine) {
		e.callbacks = callbacks
	}
}
