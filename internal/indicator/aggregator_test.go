package indicator

import (
	"fmt"
	"math"
	"testing"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type AggregatorTestSuite struct {
	suite.Suite
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}

func (suite *AggregatorTestSuite) TestComputeSignalsInsufficientHistory() {
	aggregator := NewAggregator(nil)

	signals, err := aggregator.ComputeSignals(samplesFromPrices(rampPrices(100, 1, MinimumHistory-1)))
	suite.NoError(err)
	suite.NotNil(signals)
	suite.Empty(signals)

	signals, err = aggregator.ComputeSignals(nil)
	suite.NoError(err)
	suite.Empty(signals)
}

func (suite *AggregatorTestSuite) TestComputeSignalsOrder() {
	aggregator := NewAggregator(nil)

	signals, err := aggregator.ComputeSignals(samplesFromPrices(rampPrices(100, 1, MinimumHistory)))
	suite.NoError(err)
	suite.Len(signals, 5)

	names := make([]types.IndicatorType, 0, len(signals))
	for _, signal := range signals {
		names = append(names, signal.Name)
	}

	suite.Equal(types.DefaultIndicatorOrder, names)
	suite.Equal([]float64{0.8, 0.9, 0.7, 0.6, 0.5}, []float64{
		signals[0].Weight, signals[1].Weight, signals[2].Weight, signals[3].Weight, signals[4].Weight,
	})
}

func (suite *AggregatorTestSuite) TestComputeSignalsIndicatorFailure() {
	registry := NewIndicatorRegistry()
	failing := newMockIndicator(types.IndicatorTypeRSI)
	failing.err = fmt.Errorf("boom")
	suite.NoError(registry.RegisterIndicator(failing))

	_, err := NewAggregator(registry).ComputeSignals(samplesFromPrices(flatPrices(100, 30)))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}

func (suite *AggregatorTestSuite) TestEnhanceConfidence() {
	bullish := func(weight float64) types.Signal {
		return types.Signal{Name: types.IndicatorTypeRSI, Label: types.SignalLabelBullish, Weight: weight}
	}
	bearish := func(weight float64) types.Signal {
		return types.Signal{Name: types.IndicatorTypeMACD, Label: types.SignalLabelBearish, Weight: weight}
	}

	tests := []struct {
		name      string
		base      float64
		direction types.Direction
		signals   []types.Signal
		expected  float64
	}{
		{name: "no signals blends at 0.5", base: 80, direction: types.DirectionBuy, signals: nil, expected: 68},
		{name: "full agreement keeps base", base: 80, direction: types.DirectionBuy, signals: []types.Signal{bullish(0.8), bullish(0.9)}, expected: 80},
		{name: "no agreement", base: 80, direction: types.DirectionSell, signals: []types.Signal{bullish(0.8), bullish(0.9)}, expected: 56},
		{name: "partial agreement", base: 50, direction: types.DirectionBuy, signals: []types.Signal{bullish(0.8), bearish(0.2)}, expected: 47},
		{name: "capped at 100", base: 150, direction: types.DirectionBuy, signals: []types.Signal{bullish(1)}, expected: 100},
		{name: "negative base floors at 0", base: -10, direction: types.DirectionBuy, signals: nil, expected: 0},
		{name: "NaN base is 0", base: math.NaN(), direction: types.DirectionBuy, signals: nil, expected: 0},
		{name: "rounded to two decimals", base: 33.333, direction: types.DirectionHold, signals: nil, expected: 28.33},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, EnhanceConfidence(tt.base, tt.direction, tt.signals))
		})
	}
}

func (suite *AggregatorTestSuite) TestEnhanceConfidenceMonotonicInAgreement() {
	for _, base := range []float64{0, 12.5, 60, 75, 99.99, 100, 140} {
		previous := -1.0

		for aligned := 0; aligned <= 10; aligned++ {
			signals := make([]types.Signal, 0, 10)
			for i := 0; i < 10; i++ {
				label := types.SignalLabelBearish
				if i < aligned {
					label = types.SignalLabelBullish
				}

				signals = append(signals, types.Signal{Name: types.IndicatorTypeRSI, Label: label, Weight: 0.5})
			}

			confidence := EnhanceConfidence(base, types.DirectionBuy, signals)
			suite.GreaterOrEqual(confidence, previous)
			suite.GreaterOrEqual(confidence, 0.0)
			suite.LessOrEqual(confidence, 100.0)

			previous = confidence
		}
	}
}

func (suite *AggregatorTestSuite) TestAgreementFraction() {
	signals := []types.Signal{
		{Label: types.SignalLabelNeutral, Weight: 0.5},
		{Label: types.SignalLabelBullish, Weight: 0.5},
	}

	suite.Equal(0.5, AgreementFraction(types.DirectionHold, signals))
	suite.Equal(0.5, AgreementFraction(types.DirectionBuy, signals))
	suite.Equal(0.0, AgreementFraction(types.DirectionSell, signals))
	suite.Equal(0.5, AgreementFraction(types.DirectionSell, nil))
}

func (suite *AggregatorTestSuite) TestConsensus() {
	bullish, bearish := Consensus([]types.Signal{
		{Label: types.SignalLabelBullish},
		{Label: types.SignalLabelBullish},
		{Label: types.SignalLabelBearish},
		{Label: types.SignalLabelNeutral},
	})

	suite.Equal(2, bullish)
	suite.Equal(1, bearish)
}
