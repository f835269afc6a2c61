package indicator

import (
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// MovingAverages compares the current price against a short and a long
// simple moving average.
type MovingAverages struct {
	shortPeriod int
	longPeriod  int
}

// NewMovingAverages creates a new moving-average alignment indicator (20/50).
func NewMovingAverages() Indicator {
	return &MovingAverages{
		shortPeriod: 20,
		longPeriod:  50,
	}
}

// Name returns the name of the indicator.
func (m *MovingAverages) Name() types.IndicatorType {
	return types.IndicatorTypeMovingAverages
}

func (m *MovingAverages) Weight() float64 {
	return 0.7
}

// Config configures the indicator. Expected parameters: shortPeriod (int), longPeriod (int).
func (m *MovingAverages) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 2 parameters: shortPeriod (int), longPeriod (int)")
	}

	shortPeriod, err := configPeriod(params, 0, "shortPeriod")
	if err != nil {
		return err
	}

	longPeriod, err := configPeriod(params, 1, "longPeriod")
	if err != nil {
		return err
	}

	if shortPeriod >= longPeriod {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "shortPeriod (%d) must be less than longPeriod (%d)", shortPeriod, longPeriod)
	}

	m.shortPeriod = shortPeriod
	m.longPeriod = longPeriod

	return nil
}

// Compute is bullish when price > short MA > long MA and bearish when
// price < short MA < long MA. The value is the percent deviation of price
// from the short MA.
func (m *MovingAverages) Compute(history []types.PriceSample) (types.Signal, error) {
	if err := requireHistory(m.Name(), history); err != nil {
		return types.Signal{}, err
	}

	prices := types.Prices(history)
	price := prices[len(prices)-1]
	shortMA := calculateSMA(prices, m.shortPeriod)
	longMA := calculateSMA(prices, m.longPeriod)

	label := types.SignalLabelNeutral
	if price > shortMA && shortMA > longMA {
		label = types.SignalLabelBullish
	} else if price < shortMA && shortMA < longMA {
		label = types.SignalLabelBearish
	}

	value := 0.0
	if shortMA != 0 {
		value = (price/shortMA - 1) * 100
	}

	return types.Signal{
		Name:   m.Name(),
		Value:  value,
		Label:  label,
		Weight: m.Weight(),
	}, nil
}
