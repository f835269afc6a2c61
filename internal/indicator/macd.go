package indicator

import (
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod int
	slowPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod: 12,
		slowPeriod: 26,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

func (m *MACD) Weight() float64 {
	return 0.9
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 2 parameters: fastPeriod (int), slowPeriod (int)")
	}

	fastPeriod, err := configPeriod(params, 0, "fastPeriod")
	if err != nil {
		return err
	}

	slowPeriod, err := configPeriod(params, 1, "slowPeriod")
	if err != nil {
		return err
	}

	if fastPeriod >= slowPeriod {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be less than slowPeriod (%d)", fastPeriod, slowPeriod)
	}

	m.fastPeriod = fastPeriod
	m.slowPeriod = slowPeriod

	return nil
}

// Compute calculates the MACD signal from the sign of the EMA spread.
func (m *MACD) Compute(history []types.PriceSample) (types.Signal, error) {
	if err := requireHistory(m.Name(), history); err != nil {
		return types.Signal{}, err
	}

	macdValue := m.RawValue(types.Prices(history))

	label := types.SignalLabelNeutral
	if macdValue > 0 {
		label = types.SignalLabelBullish
	} else if macdValue < 0 {
		label = types.SignalLabelBearish
	}

	return types.Signal{
		Name:   m.Name(),
		Value:  macdValue,
		Label:  label,
		Weight: m.Weight(),
	}, nil
}

// RawValue returns the fast EMA minus the slow EMA over the full history.
func (m *MACD) RawValue(prices []float64) float64 {
	return calculateEMA(prices, m.fastPeriod) - calculateEMA(prices, m.slowPeriod)
}
