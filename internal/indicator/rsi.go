package indicator

import (
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period            int
	rsiLowerThreshold float64
	rsiUpperThreshold float64
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period:            14, // Default period
		rsiLowerThreshold: 30,
		rsiUpperThreshold: 70,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

func (r *RSI) Weight() float64 {
	return 0.8
}

// Config configures the RSI indicator. Expected parameters: period (int),
// optional lower threshold (float64), optional upper threshold (float64).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, err := configPeriod(params, 0, "period")
	if err != nil {
		return err
	}

	lower, upper := r.rsiLowerThreshold, r.rsiUpperThreshold

	if len(params) >= 2 {
		if lower, err = configFloat(params, 1, "lower threshold"); err != nil {
			return err
		}
	}

	if len(params) >= 3 {
		if upper, err = configFloat(params, 2, "upper threshold"); err != nil {
			return err
		}
	}

	if lower >= upper {
		return errors.Newf(errors.ErrCodeInvalidParameter, "lower threshold %.2f must be below upper threshold %.2f", lower, upper)
	}

	r.period = period
	r.rsiLowerThreshold = lower
	r.rsiUpperThreshold = upper

	return nil
}

// Compute calculates the RSI signal. Overbought is bearish, oversold is bullish.
func (r *RSI) Compute(history []types.PriceSample) (types.Signal, error) {
	if err := requireHistory(r.Name(), history); err != nil {
		return types.Signal{}, err
	}

	rsiValue := r.RawValue(types.Prices(history))

	label := types.SignalLabelNeutral
	if rsiValue > r.rsiUpperThreshold {
		label = types.SignalLabelBearish
	} else if rsiValue < r.rsiLowerThreshold {
		label = types.SignalLabelBullish
	}

	return types.Signal{
		Name:   r.Name(),
		Value:  rsiValue,
		Label:  label,
		Weight: r.Weight(),
	}, nil
}

// RawValue returns the RSI over the trailing period deltas of prices.
// Too little history yields the neutral 50.
func (r *RSI) RawValue(prices []float64) float64 {
	if len(prices) < r.period+1 {
		return 50
	}

	var gains, losses float64

	for i := 1; i <= r.period; i++ {
		change := prices[len(prices)-i] - prices[len(prices)-i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(r.period)
	avgLoss := losses / float64(r.period)

	// Handle division by zero
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
