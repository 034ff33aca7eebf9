package util

import (
	"context"
	"time"
)

// Retry calls fn up to maxAttempts times with exponential backoff starting
// at baseDelay, returning nil on the first success or the last error once
// all attempts fail. Cancelling the context aborts the wait between
// attempts. Interactive flows never retry; this exists for the bulk fetch
// jobs only.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return err
		}

		timer := time.NewTimer(baseDelay << (attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
