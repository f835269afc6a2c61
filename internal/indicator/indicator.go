package indicator

import (
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Weight returns the fixed weight of the indicator's signal
	Weight() float64
	// Compute reads the oldest-first history and returns the indicator's signal
	Compute(history []types.PriceSample) (types.Signal, error)
	Config(params ...any) error
}

func requireHistory(name types.IndicatorType, history []types.PriceSample) error {
	if len(history) == 0 {
		return errors.Newf(errors.ErrCodeInsufficientData, "%s requires at least one price sample", name)
	}

	return nil
}

func configPeriod(params []any, index int, name string) (int, error) {
	period, ok := params[index].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "invalid type for %s parameter, expected int", name)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return period, nil
}

func configFloat(params []any, index int, name string) (float64, error) {
	value, ok := params[index].(float64)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "invalid type for %s parameter, expected float64", name)
	}

	return value, nil
}
