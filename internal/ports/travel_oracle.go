package ports

import (
	"context"
	"errors"
)

// ErrOracleUnavailable marks a travel-time lookup that failed or timed out.
// Callers treat the pair as unknown rather than as zero minutes.
var ErrOracleUnavailable = errors.New("travel oracle unavailable")

// Key for one travel-time lookup. It doubles as the memoization key.
type TravelQuery struct {
	From          string
	To            string
	IncludeBuffer bool
}

// Contract for retrieving transit time between two locations.
type TravelTimeOracle interface {
	// Return travel minutes from one location to another, optionally
	// including the configured safety buffer. The result is never negative;
	// failures are returned as errors, never as a silent zero.
	TravelMinutes(ctx context.Context, from, to string, includeBuffer bool) (int, error)
}
