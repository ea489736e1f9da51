package gate

import "errors"

var (
	// ErrLogicCheck wraps logic check mismatches
	ErrLogicCheck = errors.New("logic check failed")

	// ErrIntegrationCheck wraps integration check failures, covering both
	// body mismatches and request-level errors
	ErrIntegrationCheck = errors.New("integration check failed")
)
