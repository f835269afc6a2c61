package venue

import (
	"context"
	stderrors "errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autopilot/internal/trading"
	"github.com/rxtech-lab/argo-autopilot/internal/types"
	"github.com/rxtech-lab/argo-autopilot/pkg/errors"
)

// DefaultLatency is the simulated time between submission and fill.
const DefaultLatency = 100 * time.Millisecond

// SimulatedConfig configures the simulated venue.
type SimulatedConfig struct {
	// Latency is how long each execution takes
	Latency time.Duration `yaml:"latency" json:"latency" jsonschema:"title=Latency,description=Simulated execution latency,default=100ms"`
	// Timeout bounds each execution. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"title=Timeout,description=Execution timeout; a timed out order fails"`
	// FailureRate is the probability in [0,1] that an execution is rejected
	FailureRate float64 `yaml:"failure_rate" json:"failure_rate" jsonschema:"title=Failure Rate,minimum=0,maximum=1,default=0" validate:"gte=0,lte=1"`
	// Seed drives the failure draws
	Seed int64 `yaml:"seed" json:"seed" jsonschema:"title=Seed,default=1"`
}

// DefaultSimulatedConfig returns a venue that always fills after DefaultLatency.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Latency:     DefaultLatency,
		Timeout:     5 * time.Second,
		FailureRate: 0,
		Seed:        1,
	}
}

// SimulatedVenue fills every order at its limit price after a fixed latency.
// With a positive FailureRate it rejects a random share of orders.
type SimulatedVenue struct {
	config SimulatedConfig
	rng    *rand.Rand
	now    func() time.Time
	mu     sync.Mutex
}

var _ trading.ExecutionVenue = (*SimulatedVenue)(nil)

// NewSimulatedVenue creates a simulated venue.
func NewSimulatedVenue(config SimulatedConfig) (*SimulatedVenue, error) {
	if config.Latency < 0 || config.Timeout < 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "latency and timeout must not be negative")
	}

	if config.FailureRate < 0 || config.FailureRate > 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "failure rate must be within [0,1], got %f", config.FailureRate)
	}

	return &SimulatedVenue{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)), //nolint:gosec // simulated rejections
		now:    time.Now,
	}, nil
}

// WithClock replaces the clock used to stamp executions.
func (v *SimulatedVenue) WithClock(now func() time.Time) *SimulatedVenue {
	v.now = now

	return v
}

// Execute waits out the latency, then fills the order at its price.
func (v *SimulatedVenue) Execute(ctx context.Context, order types.Order) (types.Order, error) {
	if err := order.Validate(); err != nil {
		return order, err
	}

	if order.Status != types.OrderStatusPending {
		return order, errors.Newf(errors.ErrCodeInvalidOrder, "order %s is %s, only pending orders can be executed", order.ID, order.Status)
	}

	if v.config.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, v.config.Timeout)
		defer cancel()
	}

	if err := v.wait(ctx); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return order, errors.Wrapf(errors.ErrCodeExecutionTimeout, err, "execution of order %s timed out", order.ID)
		}

		return order, errors.Wrapf(errors.ErrCodeExecutionFailed, err, "execution of order %s interrupted", order.ID)
	}

	if v.reject() {
		return order, errors.Newf(errors.ErrCodeExecutionFailed, "order %s rejected by venue", order.ID)
	}

	executed := order
	executed.Status = types.OrderStatusExecuted
	executed.ExecutedAt = v.now()

	return executed, nil
}

func (v *SimulatedVenue) wait(ctx context.Context) error {
	if v.config.Latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(v.config.Latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *SimulatedVenue) reject() bool {
	if v.config.FailureRate <= 0 {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rng.Float64() < v.config.FailureRate
}
