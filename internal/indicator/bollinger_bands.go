package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// BollingerBands represents the Bollinger Bands indicator.
type BollingerBands struct {
	period    int
	stdDevMul float64
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period:    20,
		stdDevMul: 2.0,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

func (bb *BollingerBands) Weight() float64 {
	return 0.6
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDevMultiplier (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 2 parameters: period (int), stdDevMultiplier (float64)")
	}

	period, err := configPeriod(params, 0, "period")
	if err != nil {
		return err
	}

	stdDevMul, err := configFloat(params, 1, "stdDevMultiplier")
	if err != nil {
		return err
	}

	if stdDevMul <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDevMultiplier must be a positive number, got %f", stdDevMul)
	}

	bb.period = period
	bb.stdDevMul = stdDevMul

	return nil
}

// Compute is bullish at or below the lower band and bearish at or above the
// upper band. The value is the price's position within the band on a 0-100
// scale, 50 when the band has no width.
func (bb *BollingerBands) Compute(history []types.PriceSample) (types.Signal, error) {
	if err := requireHistory(bb.Name(), history); err != nil {
		return types.Signal{}, err
	}

	prices := types.Prices(history)
	price := prices[len(prices)-1]
	upper, _, lower := bb.Bands(prices)

	label := types.SignalLabelNeutral
	if price <= lower {
		label = types.SignalLabelBullish
	} else if price >= upper {
		label = types.SignalLabelBearish
	}

	// A flat window has zero width and reads as bullish.
	value := 50.0
	if width := upper - lower; width != 0 {
		value = (price - lower) / width * 100
	}

	return types.Signal{
		Name:   bb.Name(),
		Value:  value,
		Label:  label,
		Weight: bb.Weight(),
	}, nil
}

// Bands returns the upper, middle and lower bands over the last period prices.
// The deviation is the population standard deviation.
func (bb *BollingerBands) Bands(prices []float64) (upper, middle, lower float64) {
	middle = calculateSMA(prices, bb.period)
	window := prices[max(0, len(prices)-bb.period):]

	sumSquares := 0.0
	for _, price := range window {
		diff := price - middle
		sumSquares += diff * diff
	}

	stdDev := math.Sqrt(sumSquares / float64(len(window)))

	return middle + bb.stdDevMul*stdDev, middle, middle - bb.stdDevMul*stdDev
}
