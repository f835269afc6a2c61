package forecast

import (
	"cmp"
	"maps"
	"slices"
	"time"
)

// DefaultTimeframe is used when a timeframe is empty or unknown.
const DefaultTimeframe = "1h"

var timeframes = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// TimeframeDuration returns how long a forecast for timeframe stays valid.
// Unknown timeframes last one hour.
func TimeframeDuration(timeframe string) time.Duration {
	if d, ok := timeframes[timeframe]; ok {
		return d
	}

	return timeframes[DefaultTimeframe]
}

// IsKnownTimeframe reports whether timeframe is in the table.
func IsKnownTimeframe(timeframe string) bool {
	_, ok := timeframes[timeframe]

	return ok
}

// Timeframes lists the known timeframes from shortest to longest.
func Timeframes() []string {
	return slices.SortedFunc(maps.Keys(timeframes), func(a, b string) int {
		return cmp.Compare(timeframes[a], timeframes[b])
	})
}
