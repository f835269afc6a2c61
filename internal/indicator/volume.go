package indicator

import (
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// Volume compares the latest volume against its trailing average.
type Volume struct {
	period         int
	surgeRatio     float64
	exhaustedRatio float64
}

// NewVolume creates a new volume surge indicator with default configuration.
func NewVolume() Indicator {
	return &Volume{
		period:         20,
		surgeRatio:     1.5,
		exhaustedRatio: 0.5,
	}
}

// Name returns the name of the indicator.
func (v *Volume) Name() types.IndicatorType {
	return types.IndicatorTypeVolume
}

func (v *Volume) Weight() float64 {
	return 0.5
}

// Config configures the indicator. Expected parameters: period (int).
func (v *Volume) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := configPeriod(params, 0, "period")
	if err != nil {
		return err
	}

	v.period = period

	return nil
}

// Compute is bullish above a 1.5x surge and bearish below 0.5x.
func (v *Volume) Compute(history []types.PriceSample) (types.Signal, error) {
	if err := requireHistory(v.Name(), history); err != nil {
		return types.Signal{}, err
	}

	ratio := v.RawValue(types.Volumes(history))

	label := types.SignalLabelNeutral
	if ratio > v.surgeRatio {
		label = types.SignalLabelBullish
	} else if ratio < v.exhaustedRatio {
		label = types.SignalLabelBearish
	}

	return types.Signal{
		Name:   v.Name(),
		Value:  ratio,
		Label:  label,
		Weight: v.Weight(),
	}, nil
}

// RawValue returns the latest volume divided by the trailing average.
// A zero average yields a ratio of 1.
func (v *Volume) RawValue(volumes []float64) float64 {
	if len(volumes) == 0 {
		return 1
	}

	average := calculateSMA(volumes, v.period)
	if average == 0 {
		return 1
	}

	return volumes[len(volumes)-1] / average
}
