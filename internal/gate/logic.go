package gate

import (
	"fmt"
	"log/slog"
)

// Add returns the sum of a and b. It is the fixed regression target for the
// logic check.
func Add(a, b int) int {
	return a + b
}

// AdditionCase is one logic check expectation.
type AdditionCase struct {
	A, B int
	Want int
}

// DefaultAdditionCases holds the regression expectations the logic check
// evaluates by default.
var DefaultAdditionCases = []AdditionCase{
	{A: 1, B: 1, Want: 2},
}

// LogicCheck evaluates Add against the given regression cases. The first
// mismatch is returned as an error naming got and want.
func LogicCheck(logger *slog.Logger, cases []AdditionCase) error {
	for _, tc := range cases {
		if got := Add(tc.A, tc.B); got != tc.Want {
			return fmt.Errorf(
				"%w: add(%d, %d) = %d, want %d",
				ErrLogicCheck, tc.A, tc.B, got, tc.Want,
			)
		}
	}

	logger.Info("Logic check passed", "cases", len(cases))
	return nil
}
