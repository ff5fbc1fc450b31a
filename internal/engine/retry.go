package engine

import (
	"context"
	"math"
	"time"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
)

// maxRetryDelayMillis is the overflow sentinel used when a RetryConfig has
// exponential backoff but no explicit maxDelay (spec §9 "Retry delay
// overflow"), chosen well above any delay a real workflow would configure.
// The millisecond-domain clamp alone is not sufficient to avoid overflow
// once the value is converted to a time.Duration (nanoseconds); millisToDuration
// applies the final, authoritative clamp in the nanosecond domain.
const maxRetryDelayMillis = float64(1 << 53)

// computeRetryDelay implements spec §4.4's computeRetryDelay: fixed base
// delay, or exponential growth from attemptIndex (1-based, the just-failed
// attempt) when backoff is EXPONENTIAL, clamped to maxDelay if set.
func computeRetryDelay(retry *config.RetryConfig, attemptIndex int) time.Duration {
	base := float64(retry.EffectiveDelayMillis())
	if !retry.IsExponential() {
		return millisToDuration(base)
	}

	multiplier := retry.EffectiveMultiplier()
	delay := base * math.Pow(multiplier, float64(attemptIndex-1))

	ceiling := maxRetryDelayMillis
	if retry.MaxDelay > 0 {
		ceiling = float64(retry.MaxDelay)
	}
	if delay > ceiling {
		delay = ceiling
	}

	return millisToDuration(delay)
}

// maxDurationMillis is the largest millisecond count that converts to a
// time.Duration without overflowing int64 nanoseconds.
const maxDurationMillis = float64(math.MaxInt64) / float64(time.Millisecond)

// millisToDuration converts a millisecond count into a time.Duration,
// clamping to the largest representable duration instead of wrapping
// around when ms exceeds what int64 nanoseconds can hold (spec §9 "Retry
// delay overflow").
func millisToDuration(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	if ms > maxDurationMillis {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// msToDuration converts a millisecond count from the configuration model
// into a time.Duration, clamped the same way as millisToDuration.
func msToDuration(ms int64) time.Duration {
	return millisToDuration(float64(ms))
}

// sleepOrCancel sleeps for d, returning ctx.Err() if ctx is cancelled first
// (spec §5 "suspension points ... must be interruptible").
func sleepOrCancel(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
