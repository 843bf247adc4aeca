package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the coordination error taxonomy. Callers should match
// with errors.Is.
var (
	// ErrAgentUnavailable is returned by Process on a Dead agent.
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrRequestTimeout is returned when a request/response call on the
	// bus exceeds its deadline. Distinguishable from generic failures.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrUnroutableIntent is used internally by the orchestrator when an
	// intent has no live target; it never escapes HandleComplexQuery,
	// which degrades to the generic synthesis branch instead.
	ErrUnroutableIntent = errors.New("unroutable intent")
)

// UnknownAction builds the error-shaped result an agent returns for an
// action it does not implement. This is recovered locally and never raised.
func UnknownAction(action string) Result {
	return Result{"error": fmt.Sprintf("unknown action: %s", action)}
}
