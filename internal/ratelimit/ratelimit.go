// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package ratelimit bounds how often an identifier may perform an action.

Two mechanisms live here:

  - Fixed-window counters ([Limiter]): at most N attempts per identifier per
    window, used for sensitive routes such as login.
  - A per-client token bucket ([Throttle]): a coarse flood guard in front of
    every composed route.

# Window boundaries

Fixed windows are anchored at the first attempt of a window, not at wall
clock boundaries. A client that exhausts one window right before it ends
and starts the next immediately can therefore land up to 2×N attempts in a
short span. This is accepted in exchange for O(1) state per identifier.
*/
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single attempt.
type Decision struct {
	Allowed bool

	// Remaining is the number of attempts left in the current window.
	Remaining int

	// RetryAfter is the time until the window resets. Zero when allowed.
	RetryAfter time.Duration
}

// Limiter counts attempts per identifier in fixed windows.
type Limiter interface {

	/*
		CheckAndRecord records one attempt for id and reports whether it is allowed.

		Description: A window starts on the first attempt after the previous
		one elapsed (now - start >= window). Attempts are allowed while the
		window count is at most maxAttempts. Check and increment are atomic
		per identifier.

		Returns:
		  - Decision: Whether the attempt is allowed
		  - error: Backend failures
	*/
	CheckAndRecord(ctx context.Context, id string, maxAttempts int, window time.Duration) (Decision, error)
}

func decide(count, maxAttempts int, retryAfter time.Duration) Decision {
	decision := Decision{
		Allowed:   count <= maxAttempts,
		Remaining: maxAttempts - count,
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	if !decision.Allowed {
		decision.RetryAfter = retryAfter
	}
	return decision
}
