package marketdata

import (
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

// DefaultWindowSize is the number of samples kept per symbol when no size is configured.
const DefaultWindowSize = 100

// Window stores price samples using a sliding window algorithm.
// It maintains a fixed-size history per symbol, automatically evicting the
// oldest samples when the history reaches capacity.
type Window struct {
	maxSize int
	// data stores samples per symbol, ordered by time (oldest first)
	data map[string][]types.PriceSample
	mu   sync.RWMutex
}

// NewWindow creates a new Window with the specified maximum size per symbol.
// A non-positive size uses DefaultWindowSize.
func NewWindow(maxSize int) *Window {
	if maxSize <= 0 {
		maxSize = DefaultWindowSize
	}

	return &Window{
		maxSize: maxSize,
		data:    make(map[string][]types.PriceSample),
		mu:      sync.RWMutex{},
	}
}

// Add validates and adds a sample. If the history for this symbol exceeds
// maxSize, the oldest sample is evicted.
// Optimized for the common case where samples arrive in chronological order.
func (w *Window) Add(sample types.PriceSample) error {
	if err := sample.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	symbol := sample.Symbol
	symbolData := w.data[symbol]

	if len(symbolData) == 0 {
		symbolData = make([]types.PriceSample, 0, w.maxSize)
		w.data[symbol] = append(symbolData, sample)

		return nil
	}

	// Fast path: chronological append
	lastTime := symbolData[len(symbolData)-1].Time
	if sample.Time.After(lastTime) {
		symbolData = append(symbolData, sample)
		// Evict oldest if over capacity
		if len(symbolData) > w.maxSize {
			symbolData = symbolData[len(symbolData)-w.maxSize:]
		}

		w.data[symbol] = symbolData

		return nil
	}

	if sample.Time.Equal(lastTime) {
		// Update last entry - O(1)
		symbolData[len(symbolData)-1] = sample

		return nil
	}

	// Slow path: out-of-order insertion
	insertIdx := sort.Search(len(symbolData), func(i int) bool {
		return !symbolData[i].Time.Before(sample.Time)
	})

	if insertIdx < len(symbolData) && symbolData[insertIdx].Time.Equal(sample.Time) {
		symbolData[insertIdx] = sample

		return nil
	}

	symbolData = append(symbolData, types.PriceSample{}) //nolint:exhaustruct // placeholder for slice expansion
	copy(symbolData[insertIdx+1:], symbolData[insertIdx:])
	symbolData[insertIdx] = sample

	if len(symbolData) > w.maxSize {
		symbolData = symbolData[len(symbolData)-w.maxSize:]
	}

	w.data[symbol] = symbolData

	return nil
}

// AddAll adds every sample and returns the first validation error, if any.
// Valid samples are kept even when another sample fails.
func (w *Window) AddAll(samples []types.PriceSample) error {
	var firstErr error

	for _, sample := range samples {
		if err := w.Add(sample); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// History returns a copy of the samples for symbol, oldest first.
func (w *Window) History(symbol string) []types.PriceSample {
	w.mu.RLock()
	defer w.mu.RUnlock()

	symbolData := w.data[symbol]
	result := make([]types.PriceSample, len(symbolData))
	copy(result, symbolData)

	return result
}

// Previous returns the count samples for symbol ending at or before end,
// oldest first. Returns false if the window holds fewer.
func (w *Window) Previous(symbol string, end time.Time, count int) ([]types.PriceSample, bool) {
	if count <= 0 {
		return nil, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	symbolData := w.data[symbol]

	endIdx := sort.Search(len(symbolData), func(i int) bool {
		return symbolData[i].Time.After(end)
	})

	if endIdx < count {
		return nil, false
	}

	result := make([]types.PriceSample, count)
	copy(result, symbolData[endIdx-count:endIdx])

	return result, true
}

// Last returns the most recent sample for symbol.
// Returns false if no sample exists for the symbol.
func (w *Window) Last(symbol string) (types.PriceSample, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	symbolData := w.data[symbol]
	if len(symbolData) == 0 {
		return types.PriceSample{}, false //nolint:exhaustruct // zero value for not found
	}

	return symbolData[len(symbolData)-1], true
}

// LatestPrices returns the most recent price of every symbol.
func (w *Window) LatestPrices() map[string]float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	prices := make(map[string]float64, len(w.data))
	for symbol, symbolData := range w.data {
		if len(symbolData) > 0 {
			prices[symbol] = symbolData[len(symbolData)-1].Price
		}
	}

	return prices
}

// Size returns the current number of samples for a symbol.
func (w *Window) Size(symbol string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.data[symbol])
}

// TotalSize returns the total number of samples across all symbols.
func (w *Window) TotalSize() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	total := 0
	for _, symbolData := range w.data {
		total += len(symbolData)
	}

	return total
}

// Clear removes all samples.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.data = make(map[string][]types.PriceSample)
}

// MaxSize returns the maximum number of samples per symbol.
func (w *Window) MaxSize() int {
	return w.maxSize
}
