package trading

import (
	"context"

	"github.com/rxtech-lab/argo-autopilot/internal/types"
)

// ExecutionVenue executes orders. The engine depends only on this interface;
// simulated and real venues are interchangeable behind it.
type ExecutionVenue interface {
	// Execute submits a pending order and returns the executed copy with
	// status EXECUTED and ExecutedAt set. Any error means the order did not fill.
	Execute(ctx context.Context, order types.Order) (types.Order, error)
}
