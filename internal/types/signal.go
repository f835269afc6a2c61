package types

type SignalLabel string

const (
	// SignalLabelBullish means the indicator supports a long entry
	SignalLabelBullish SignalLabel = "BULLISH"
	// SignalLabelBearish means the indicator supports a short entry or an exit
	SignalLabelBearish SignalLabel = "BEARISH"
	// SignalLabelNeutral means the indicator has no directional opinion
	SignalLabelNeutral SignalLabel = "NEUTRAL"
)

// Signal is one indicator's computed value and directional label.
type Signal struct {
	// Name is the indicator that produced the signal
	Name IndicatorType `yaml:"name" json:"name" validate:"required"`
	// Value is the raw indicator value (RSI level, MACD spread, band position...)
	Value float64 `yaml:"value" json:"value"`
	// Label is the qualitative reading of Value
	Label SignalLabel `yaml:"label" json:"label" validate:"required,oneof=BULLISH BEARISH NEUTRAL"`
	// Weight is the fixed per-indicator weight used for confidence blending
	Weight float64 `yaml:"weight" json:"weight" validate:"gt=0,lte=1"`
}

// Agrees reports whether the signal's label supports the given direction.
// BUY agrees with BULLISH, SELL with BEARISH and HOLD with NEUTRAL.
func (s Signal) Agrees(direction Direction) bool {
	switch direction {
	case DirectionBuy:
		return s.Label == SignalLabelBullish
	case DirectionSell:
		return s.Label == SignalLabelBearish
	case DirectionHold:
		return s.Label == SignalLabelNeutral
	default:
		return false
	}
}
