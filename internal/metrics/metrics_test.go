package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
	metrics *Metrics
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (s *MetricsTestSuite) SetupTest() {
	s.metrics = New()
}

func (s *MetricsTestSuite) family(name string) *dto.MetricFamily {
	families, err := s.metrics.Registry().Gather()
	s.Require().NoError(err)

	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}

	return nil
}

func (s *MetricsTestSuite) TestCounters() {
	s.metrics.ObserveTick("AAPL")
	s.metrics.ObserveTick("AAPL")
	s.metrics.ObserveOrder(types.Order{Symbol: "AAPL", Side: types.OrderSideBuy, Status: types.OrderStatusExecuted})
	s.metrics.ObserveRejection("confidence")
	s.metrics.ObserveFeedError()

	ticks := s.family("autopilot_ticks_total")
	s.Require().NotNil(ticks)
	s.Equal(2.0, ticks.GetMetric()[0].GetCounter().GetValue())

	orders := s.family("autopilot_orders_total")
	s.Require().NotNil(orders)
	s.Len(orders.GetMetric()[0].GetLabel(), 3)

	s.NotNil(s.family("autopilot_rejections_total"))
	s.Equal(1.0, s.family("autopilot_feed_errors_total").GetMetric()[0].GetCounter().GetValue())
}

func (s *MetricsTestSuite) TestSetHealth() {
	s.metrics.SetHealth(types.HealthError)

	health := s.family("autopilot_health")
	s.Require().NotNil(health)
	s.Len(health.GetMetric(), 3)

	for _, metric := range health.GetMetric() {
		expected := 0.0
		if metric.GetLabel()[0].GetValue() == string(types.HealthError) {
			expected = 1
		}

		s.Equal(expected, metric.GetGauge().GetValue())
	}
}

func (s *MetricsTestSuite) TestObservePortfolio() {
	s.metrics.ObservePortfolio(types.Portfolio{TotalValue: 101000, DailyPnL: 1000}, 3)

	s.Equal(101000.0, s.family("autopilot_portfolio_value").GetMetric()[0].GetGauge().GetValue())
	s.Equal(3.0, s.family("autopilot_active_orders").GetMetric()[0].GetGauge().GetValue())
}

func (s *MetricsTestSuite) TestNilMetricsIsNoop() {
	var m *Metrics

	s.NotPanics(func() {
		m.ObserveTick("AAPL")
		m.ObserveForecast(types.Forecast{})
		m.ObserveOrder(types.Order{})
		m.ObserveRejection("symbol")
		m.ObserveExit(types.Order{})
		m.ObserveFeedError()
		m.ObservePortfolio(types.Portfolio{}, 0)
		m.SetHealth(types.HealthHealthy)
	})
}

func (s *MetricsTestSuite) TestHandler() {
	s.metrics.ObserveTick("TSLA")

	recorder := httptest.NewRecorder()
	s.metrics.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, recorder.Code)
	s.True(strings.Contains(recorder.Body.String(), `autopilot_ticks_total{symbol="TSLA"} 1`))
}
