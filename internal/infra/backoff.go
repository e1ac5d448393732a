package infra

import (
	"time"

	"github.com/jpillora/backoff"
)

const (
	// Standard backoff constants
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// retrySchedule is deterministic: no jitter, doubling from baseDelay.
var retrySchedule = backoff.Backoff{
	Min:    baseDelay,
	Max:    maxDelay,
	Factor: 2,
	Jitter: false,
}

// CalculateBackoff returns the exponential backoff duration for a given retry count.
// Logic: baseDelay * 2^retryCount, capped at maxDelay.
// If retryCount is negative, it returns baseDelay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return baseDelay
	}

	// 2^30 seconds is far past maxDelay; skip the float math.
	if retryCount > 30 {
		return maxDelay
	}

	return retrySchedule.ForAttempt(float64(retryCount))
}
