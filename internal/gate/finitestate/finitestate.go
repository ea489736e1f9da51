// Gate state machine implementation. Tracks the lifecycle of a single gate
// run from pending through its terminal verdict.
package finitestate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm/v2"
	"github.com/robbyt/go-fsm/v2/hooks"
	"github.com/robbyt/go-fsm/v2/transitions"
)

// Gate run state constants
const (
	// StatePending is the initial state before any check has run
	StatePending = "pending"

	// StateLogicOK means the logic check passed and the integration check may run
	StateLogicOK = "logic_ok"

	// StatePass means every check passed; promotion is authorized (terminal)
	StatePass = "pass"

	// StateLogicFail means the logic check failed (terminal)
	StateLogicFail = "logic_fail"

	// StateIntegrationFail means the integration check failed (terminal)
	StateIntegrationFail = "integration_fail"

	// StateError covers unrecoverable errors outside the checks themselves (terminal)
	StateError = "error"
)

// GateTransitions defines the valid state transitions for a gate run. Every
// failure state is terminal; only StatePass authorizes promotion.
var GateTransitions = map[string][]string{
	StatePending: {StateLogicOK, StateLogicFail, StateError},
	StateLogicOK: {StatePass, StateIntegrationFail, StateError},

	StatePass:            {},
	StateLogicFail:       {},
	StateIntegrationFail: {},
	StateError:           {},
}

// gateConfig is the prebuilt transition table shared by every gate machine.
var gateConfig = transitions.MustNew(GateTransitions)

// Machine defines the interface for the state machine tracking a gate run.
// This abstraction simplifies testing.
type Machine interface {
	// Transition attempts to transition the state machine to the specified state.
	Transition(state string) error

	// GetState returns the current state of the state machine.
	GetState() string

	// GetStateChan returns a channel that emits the state machine's state
	// whenever it changes, starting with the current state. Delivery stops
	// when the context is canceled.
	GetStateChan(ctx context.Context) <-chan string
}

// Terminal reports whether the given state has no outgoing transitions.
func Terminal(state string) bool {
	next, ok := GateTransitions[state]
	return ok && len(next) == 0
}

// GateFSM embeds fsm.Machine and adapts state-change subscription to a
// receive-only channel.
type GateFSM struct {
	*fsm.Machine
	logger *slog.Logger
}

// GetStateChan subscribes a buffered channel to state broadcasts. The channel
// is closed immediately if the subscription fails, so readers never block on
// a dead machine.
func (m *GateFSM) GetStateChan(ctx context.Context) <-chan string {
	ch := make(chan string, 8)
	if err := m.Machine.GetStateChan(ctx, ch); err != nil {
		m.logger.Error("Failed to subscribe to state changes", "error", err)
		close(ch)
	}
	return ch
}

// New creates a gate state machine starting in StatePending. The hook
// registry backs state-change broadcasts for GetStateChan subscribers.
func New(handler slog.Handler) (Machine, error) {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	registry, err := hooks.NewRegistry(
		hooks.WithLogHandler(handler),
		hooks.WithTransitions(gateConfig),
	)
	if err != nil {
		return nil, err
	}

	machine, err := fsm.New(
		StatePending,
		gateConfig,
		fsm.WithLogHandler(handler),
		fsm.WithCallbackRegistry(registry),
	)
	if err != nil {
		return nil, err
	}

	return &GateFSM{Machine: machine, logger: slog.New(handler)}, nil
}
