package engine

import "github.com/rxtech-lab/argo-autopilot/internal/types"

// OnOrderExecutedCallback is called after an entry order is executed and booked.
type OnOrderExecutedCallback func(order types.Order)

// OnExitTriggeredCallback is called after a stop-loss or take-profit exit is booked.
type OnExitTriggeredCallback func(exit types.Order, trade types.ClosedTrade)

// OnFaultCallback is called when the engine's health turns to ERROR.
type OnFaultCallback func(message string)

// Callbacks holds the engine's event callbacks. All fields are pointers; nil
// means no callback will be invoked. Callbacks run after the engine lock is
// released, so they may call back into the engine.
type Callbacks struct {
	OnOrderExecuted *OnOrderExecutedCallback
	OnExitTriggered *OnExitTriggeredCallback
	OnFault         *OnFaultCallback
}

// notifier queues callback invocations made while the engine lock is held.
type notifier []func()

func (n *notifier) add(f func()) {
	*n = append(*n, f)
}

func (n *notifier) fire() {
	for _, f := range *n {
		f()
	}
}

func (c Callbacks) orderExecuted(n *notifier, order types.Order) {
	if c.OnOrderExecuted == nil {
		return
	}

	n.add(func() { (*c.OnOrderExecuted)(order) })
}

func (c Callbacks) exitTriggered(n *notifier, exit types.Order, trade types.ClosedTrade) {
	if c.OnExitTriggered == nil {
		return
	}

	n.add(func() { (*c.OnExitTriggered)(exit, trade) })
}

func (c Callbacks) fault(n *notifier, message string) {
	if c.OnFault == nil {
		return
	}

	n.add(func() { (*c.OnFault)(message) })
}
