package indicator

// calculateEMA returns the exponential moving average of prices with smoothing
// factor 2/(period+1), seeded with the first price.
func calculateEMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]

	for _, price := range prices[1:] {
		ema = (price * multiplier) + (ema * (1 - multiplier))
	}

	return ema
}

// calculateSMA returns the simple average of the last period prices, or of
// every price when fewer are available.
func calculateSMA(prices []float64, period int) float64 {
	if len(prices) == 0 || period <= 0 {
		return 0
	}

	window := prices[max(0, len(prices)-period):]

	sum := 0.0
	for _, price := range window {
		sum += price
	}

	return sum / float64(len(window))
}
