package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

const namespace = "autopilot"

var healthStates = []types.Health{types.HealthHealthy, types.HealthWarning, types.HealthError}

// Metrics holds the autopilot's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TicksTotal      *prometheus.CounterVec
	ForecastsTotal  *prometheus.CounterVec
	OrdersTotal     *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
	ExitsTotal      *prometheus.CounterVec
	FeedErrorsTotal prometheus.Counter
	PortfolioValue  prometheus.Gauge
	DailyPnL        prometheus.Gauge
	ActiveOrders    prometheus.Gauge
	Health          *prometheus.GaugeVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "ticks_total", Help: "Count of price samples ingested"},
			[]string{"symbol"},
		),
		ForecastsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "forecasts_total", Help: "Forecasts evaluated"},
			[]string{"symbol", "direction"},
		),
		OrdersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "orders_total", Help: "Orders submitted by final status"},
			[]string{"symbol", "side", "status"},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rejections_total", Help: "Forecasts rejected by admission gate"},
			[]string{"gate"},
		),
		ExitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "exits_total", Help: "Stop-loss and take-profit exits"},
			[]string{"symbol", "reason"},
		),
		FeedErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "feed_errors_total", Help: "Failed market data polls"},
		),
		PortfolioValue: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "portfolio_value", Help: "Total portfolio value"},
		),
		DailyPnL: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "daily_pnl", Help: "Change in portfolio value since the start of the day"},
		),
		ActiveOrders: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "active_orders", Help: "Executed orders waiting for an exit"},
		),
		Health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "health", Help: "1 for the current health state, 0 otherwise"},
			[]string{"state"},
		),
	}

	m.registry.MustRegister(
		m.TicksTotal,
		m.ForecastsTotal,
		m.OrdersTotal,
		m.RejectionsTotal,
		m.ExitsTotal,
		m.FeedErrorsTotal,
		m.PortfolioValue,
		m.DailyPnL,
		m.ActiveOrders,
		m.Health,
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveTick(symbol string) {
	if m == nil {
		return
	}

	m.TicksTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) ObserveForecast(forecast types.Forecast) {
	if m == nil {
		return
	}

	m.ForecastsTotal.WithLabelValues(forecast.Symbol, string(forecast.Direction)).Inc()
}

func (m *Metrics) ObserveOrder(order types.Order) {
	if m == nil {
		return
	}

	m.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side), string(order.Status)).Inc()
}

func (m *Metrics) ObserveRejection(gate string) {
	if m == nil {
		return
	}

	m.RejectionsTotal.WithLabelValues(gate).Inc()
}

func (m *Metrics) ObserveExit(order types.Order) {
	if m == nil {
		return
	}

	m.ExitsTotal.WithLabelValues(order.Symbol, order.Reason.Reason).Inc()
}

func (m *Metrics) ObserveFeedError() {
	if m == nil {
		return
	}

	m.FeedErrorsTotal.Inc()
}

// ObservePortfolio records the portfolio gauges from a snapshot.
func (m *Metrics) ObservePortfolio(portfolio types.Portfolio, activeOrders int) {
	if m == nil {
		return
	}

	m.PortfolioValue.Set(portfolio.TotalValue)
	m.DailyPnL.Set(portfolio.DailyPnL)
	m.ActiveOrders.Set(float64(activeOrders))
}

// SetHealth sets the gauge of health to 1 and the other states to 0.
func (m *Metrics) SetHealth(health types.Health) {
	if m == nil {
		return
	}

	for _, state := range healthStates {
		value := 0.0
		if state == health {
			value = 1
		}

		m.Health.WithLabelValues(string(state)).Set(value)
	}
}
