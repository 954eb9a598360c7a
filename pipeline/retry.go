package pipeline

import (
	"context"
	"time"

	"github.com/fwojciec/evidex"
)

// DefaultRetryDelays returns the backoff delays for commits that lost a
// lock race: 50ms, 100ms, 200ms.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
}

// applyWithRetry calls apply, retrying with the given delays while it
// fails with ECONFLICT. Other errors are returned immediately.
func applyWithRetry(ctx context.Context, apply func() (evidex.IndexOutcome, error), delays []time.Duration) (evidex.IndexOutcome, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		outcome, err := apply()
		if err == nil {
			return outcome, nil
		}
		lastErr = err

		if evidex.ErrorCode(err) != evidex.ECONFLICT || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return "", lastErr
}
