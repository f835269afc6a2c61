package types

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeMovingAverages IndicatorType = "moving_averages"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeVolume         IndicatorType = "volume"
)

// DefaultIndicatorOrder is the order in which signals are computed and reported.
var DefaultIndicatorOrder = []IndicatorType{
	IndicatorTypeRSI,
	IndicatorTypeMACD,
	IndicatorTypeMovingAverages,
	IndicatorTypeBollingerBands,
	IndicatorTypeVolume,
}
