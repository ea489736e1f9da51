// Package gate implements the promotion gate: the logic and integration
// checks whose combined success is the sole deploy/no-deploy signal consumed
// by external automation.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"

	"github.com/stagehand-ci/stagehand/internal/config"
	"github.com/stagehand-ci/stagehand/internal/gate/finitestate"
)

// CheckResult records the outcome of a single named check.
type CheckResult struct {
	Name string
	Err  error
}

// Run is a single execution of the gate. Each run has a unique identity, a
// state machine tracking its verdict, and a log collector capturing its full
// history for later replay.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time

	cfg   *config.Config
	cases []AdditionCase

	fsm          finitestate.Machine
	logger       *slog.Logger
	logCollector *loglater.LogCollector

	results []CheckResult
}

// RunOption configures a gate run.
type RunOption func(*Run)

// WithAdditionCases overrides the logic check expectations.
func WithAdditionCases(cases []AdditionCase) RunOption {
	return func(r *Run) {
		r.cases = cases
	}
}

// NewRun creates a gate run for the given validated configuration.
func NewRun(cfg *config.Config, handler slog.Handler, opts ...RunOption) (*Run, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	runID := uuid.Must(uuid.NewV6())

	sm, err := finitestate.New(handler)
	if err != nil {
		return nil, fmt.Errorf("%s failed to create state machine: %w", runID, err)
	}

	logCollector := loglater.NewLogCollector(handler)
	logger := slog.New(logCollector).With("gate_run", runID)

	r := &Run{
		ID:           runID,
		CreatedAt:    time.Now(),
		cfg:          cfg,
		cases:        DefaultAdditionCases,
		fsm:          sm,
		logger:       logger,
		logCollector: logCollector,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger.Info("Gate run created", "address", cfg.Gate.Listen)
	return r, nil
}

// Execute runs the logic check, then the integration check. Any failure is
// terminal for the run; only a nil return authorizes promotion.
func (r *Run) Execute(ctx context.Context) error {
	if err := r.runLogic(); err != nil {
		return err
	}
	if err := r.runIntegration(ctx); err != nil {
		return err
	}

	if err := r.fsm.Transition(finitestate.StatePass); err != nil {
		return r.toError(err)
	}

	r.logger.Info("Gate check passed, promotion authorized")
	return nil
}

func (r *Run) runLogic() error {
	err := LogicCheck(r.logger, r.cases)
	r.results = append(r.results, CheckResult{Name: "logic", Err: err})
	if err != nil {
		r.fail(finitestate.StateLogicFail, err)
		return err
	}

	if err := r.fsm.Transition(finitestate.StateLogicOK); err != nil {
		return r.toError(err)
	}
	return nil
}

func (r *Run) runIntegration(ctx context.Context) error {
	err := IntegrationCheck(ctx, r.logger, r.cfg.Gate.Listen, r.cfg.Responder.Message)
	r.results = append(r.results, CheckResult{Name: "integration", Err: err})
	if err != nil {
		r.fail(finitestate.StateIntegrationFail, err)
		return err
	}
	return nil
}

// fail moves the run into the given terminal failure state.
func (r *Run) fail(state string, cause error) {
	if err := r.fsm.Transition(state); err != nil {
		r.logger.Error("Failed to transition to failure state", "state", state, "error", err)
	}
	r.logger.Error("Gate check failed", "state", r.fsm.GetState(), "error", cause)
}

// toError records an unrecoverable error outside the checks themselves.
func (r *Run) toError(cause error) error {
	if err := r.fsm.Transition(finitestate.StateError); err != nil {
		r.logger.Error("Failed to transition to error state", "error", err)
	}
	r.logger.Error("Gate run errored", "error", cause)
	return cause
}

// GetState returns the current state of the run.
func (r *Run) GetState() string {
	return r.fsm.GetState()
}

// Passed reports whether the run reached the pass verdict.
func (r *Run) Passed() bool {
	return r.fsm.GetState() == finitestate.StatePass
}

// Results returns the per-check outcomes in execution order. A check absent
// from the slice never ran.
func (r *Run) Results() []CheckResult {
	results := make([]CheckResult, len(r.results))
	copy(results, r.results)
	return results
}

// PlayLogs replays the run's captured log history to the given handler.
func (r *Run) PlayLogs(handler slog.Handler) error {
	return r.logCollector.PlayLogs(handler)
}
