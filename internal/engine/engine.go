package engine

import (
	"slices"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-autopilot/internal/engine/stats"
	"github.com/rxtech-lab/argo-autopilot/internal/logger"
	"github.com/rxtech-lab/argo-autopilot/internal/metrics"
	"github.com/rxtech-lab/argo-autopilot/internal/portfolio"
	"github.com/rxtech-lab/argo-autopilot/internal/trading"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"go.uber.org/zap"
)

const dayFormat = "2006-01-02"

// Engine turns forecasts into sized orders, books executions into the
// portfolio and closes positions on stop-loss and take-profit triggers.
// All state is guarded by one mutex; only the venue call runs outside it.
type Engine struct {
	config    Config
	venue     trading.ExecutionVenue
	ledger    *portfolio.Ledger
	settings  types.RiskSettings
	status    types.BotStatus
	active    []types.Order
	history   []types.Order
	closed    []types.ClosedTrade
	inFlight  map[string]struct{}
	day       string
	log       *logger.Logger
	metrics   *metrics.Metrics
	stats     *stats.StatsTracker
	callbacks Callbacks
	now       func() time.Time
	mu        sync.Mutex
}

// NewEngine creates an inactive engine. Zero config values take their defaults.
func NewEngine(config Config, venue trading.ExecutionVenue, opts ...Option) (*Engine, error) {
	if config.InitialBalance == 0 {
		config.InitialBalance = DefaultInitialBalance
	}

	if config.NotionalCapPercent == 0 {
		config.NotionalCapPercent = DefaultNotionalCapPercent
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:   config,
		venue:    venue,
		ledger:   portfolio.NewLedger(config.InitialBalance),
		settings: config.Settings.Clone(),
		status: types.BotStatus{
			Health:       types.HealthHealthy,
			ErrorMessage: optional.None[string](),
		},
		active:   make([]types.Order, 0),
		history:  make([]types.Order, 0),
		closed:   make([]types.ClosedTrade, 0),
		inFlight: make(map[string]struct{}),
		log:      logger.NewNopLogger(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.day = e.now().Format(dayFormat)
	e.status.LastUpdate = e.now()
	e.metrics.SetHealth(e.status.Health)

	return e, nil
}

// Start activates the engine and resets its health.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.IsActive = true
	e.status.Health = types.HealthHealthy
	e.status.ErrorMessage = optional.None[string]()
	e.status.LastUpdate = e.now()
	e.metrics.SetHealth(types.HealthHealthy)

	e.log.Info("Engine started", zap.Float64("balance", e.ledger.Balance()))
}

// Stop deactivates the engine. Open orders keep being watched for exits.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.IsActive = false
	e.status.LastUpdate = e.now()

	e.log.Info("Engine stopped", zap.Int("active_orders", len(e.active)))
}

// Portfolio returns a snapshot of the portfolio.
func (e *Engine) Portfolio() types.Portfolio {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ledger.Snapshot()
}

// Status returns a snapshot of the bot status.
func (e *Engine) Status() types.BotStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status.Clone()
}

// Settings returns a copy of the current risk settings.
func (e *Engine) Settings() types.RiskSettings {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.settings.Clone()
}

// ActiveOrders returns the executed orders still watched for an exit.
func (e *Engine) ActiveOrders() []types.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	return types.CloneOrders(e.active)
}

// History returns failed orders, closed entries and their exits, oldest first.
func (e *Engine) History() []types.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	return types.CloneOrders(e.history)
}

// ClosedTrades returns every trade closed by an exit trigger, oldest first.
func (e *Engine) ClosedTrades() []types.ClosedTrade {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.closed)
}

// UpdateSettings merges update over the current settings. Invalid merged
// settings are rejected and nothing changes.
func (e *Engine) UpdateSettings(update types.RiskSettingsUpdate) (types.RiskSettings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := update.Apply(e.settings)
	if err := merged.Validate(); err != nil {
		return e.settings.Clone(), err
	}

	e.settings = merged
	e.status.LastUpdate = e.now()

	e.log.Info("Risk settings updated",
		zap.Float64("min_confidence_level", merged.MinConfidenceLevel),
		zap.Bool("auto_trading_enabled", merged.AutoTradingEnabled),
		zap.Strings("allowed_symbols", merged.AllowedSymbols),
	)

	return merged.Clone(), nil
}

// SetActivePredictionCount records how many live forecasts the runner holds.
func (e *Engine) SetActivePredictionCount(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.ActivePredictionCount = n
}

// RaiseWarning marks a degraded but running engine. An ERROR is never
// downgraded.
func (e *Engine) RaiseWarning(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.Health == types.HealthError {
		return
	}

	e.status.Health = types.HealthWarning
	e.status.ErrorMessage = optional.Some(message)
	e.metrics.SetHealth(types.HealthWarning)

	e.log.Warn("Engine degraded", zap.String("message", message))
}

// ClearWarning returns a WARNING engine to HEALTHY. ERROR is left alone.
func (e *Engine) ClearWarning() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.Health != types.HealthWarning {
		return
	}

	e.status.Health = types.HealthHealthy
	e.status.ErrorMessage = optional.None[string]()
	e.metrics.SetHealth(types.HealthHealthy)
}

// faultLocked records an internal fault. Callers hold e.mu.
func (e *Engine) faultLocked(n *notifier, message string) {
	e.status.Health = types.HealthError
	e.status.ErrorMessage = optional.Some(message)
	e.status.LastUpdate = e.now()
	e.metrics.SetHealth(types.HealthError)
	e.callbacks.fault(n, message)

	e.log.Error("Engine fault", zap.String("message", message))
}

// rollDayLocked starts a new trading day when now falls on a new date.
// Callers hold e.mu.
func (e *Engine) rollDayLocked(now time.Time) {
	day := now.Format(dayFormat)
	if day == e.day {
		return
	}

	e.day = day
	e.ledger.ResetDay()

	if e.stats != nil {
		e.stats.HandleDateBoundary(now)
	}

	e.log.Info("New trading day", zap.String("date", day), zap.Float64("day_start_value", e.ledger.DayStartValue()))
}

// observeLocked publishes the portfolio gauges. Callers hold e.mu.
func (e *Engine) observeLocked() {
	e.status.PendingOrderCount = len(e.inFlight)

	if e.metrics == nil && e.stats == nil {
		return
	}

	snapshot := e.ledger.Snapshot()
	e.metrics.ObservePortfolio(snapshot, len(e.active))

	if e.stats != nil {
		e.stats.SetUnrealizedPnL(snapshot.TotalPnL)
	}
}
