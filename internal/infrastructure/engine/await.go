package engine

import (
	"context"
	"time"

	"github.com/spf13/afero"
)

// pollDelay computes the delay before the next existence check.
// Exponential: (2^attempt) * initial, capped at maxDelay.
func pollDelay(attempt int, initial, maxDelay time.Duration) time.Duration {
	if attempt > 30 {
		return maxDelay
	}
	delay := time.Duration(1<<attempt) * initial
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

// awaitFiles waits until every path exists on fs or timeout elapses.
// It returns the paths still missing, in input order.
func awaitFiles(ctx context.Context, fs afero.Fs, paths []string, timeout, interval time.Duration) ([]string, error) {
	deadline := time.Now().Add(timeout)
	pending := paths

	for attempt := 0; ; attempt++ {
		pending = missingFiles(fs, pending)
		if len(pending) == 0 {
			return nil, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return pending, nil
		}

		delay := pollDelay(attempt, interval, MaxObjectPollInterval)
		if delay > remaining {
			delay = remaining
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return pending, ctx.Err()
		case <-timer.C:
		}
	}
}

func missingFiles(fs afero.Fs, paths []string) []string {
	var missing []string
	for _, p := range paths {
		if ok, err := afero.Exists(fs, p); err != nil || !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
