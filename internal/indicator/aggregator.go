package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"github.com/shopspring/decimal"
)

// MinimumHistory is the number of samples below which no signals are computed.
const MinimumHistory = 20

// Aggregator turns a price history into the ordered signal set of its registry.
type Aggregator struct {
	registry IndicatorRegistry
}

// NewAggregator creates an aggregator over registry. A nil registry uses
// the default indicators.
func NewAggregator(registry IndicatorRegistry) *Aggregator {
	if registry == nil {
		registry = NewDefaultRegistry()
	}

	return &Aggregator{registry: registry}
}

// ComputeSignals evaluates every registered indicator in order. Fewer than
// MinimumHistory samples yields an empty slice and no error: the caller has
// no corroboration, which is not a failure.
func (a *Aggregator) ComputeSignals(history []types.PriceSample) ([]types.Signal, error) {
	if len(history) < MinimumHistory {
		return []types.Signal{}, nil
	}

	names := a.registry.ListIndicators()
	signals := make([]types.Signal, 0, len(names))

	for _, name := range names {
		ind, err := a.registry.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		signal, err := ind.Compute(history)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s", name)
		}

		signals = append(signals, signal)
	}

	return signals, nil
}

// AgreementFraction is the weight share of signals agreeing with direction.
// With no weight at all the fraction is 0.5.
func AgreementFraction(direction types.Direction, signals []types.Signal) float64 {
	var alignedWeight, totalWeight float64

	for _, signal := range signals {
		totalWeight += signal.Weight

		if signal.Agrees(direction) {
			alignedWeight += signal.Weight
		}
	}

	if totalWeight <= 0 {
		return 0.5
	}

	return alignedWeight / totalWeight
}

// EnhanceConfidence blends base confidence with signal agreement:
// min(100, base * (0.7 + 0.3 * agreement)), floored at 0 and rounded to
// two decimals. A NaN base yields 0.
func EnhanceConfidence(base float64, direction types.Direction, signals []types.Signal) float64 {
	if math.IsNaN(base) {
		return 0
	}

	agreement := AgreementFraction(direction, signals)
	enhanced := math.Min(100, base*(0.7+0.3*agreement))

	if enhanced <= 0 || math.IsNaN(enhanced) {
		return 0
	}

	return decimal.NewFromFloat(enhanced).Round(2).InexactFloat64()
}

// Consensus counts bullish and bearish signals.
func Consensus(signals []types.Signal) (bullish, bearish int) {
	for _, signal := range signals {
		switch signal.Label {
		case types.SignalLabelBullish:
			bullish++
		case types.SignalLabelBearish:
			bearish++
		case types.SignalLabelNeutral:
		}
	}

	return bullish, bearish
}
