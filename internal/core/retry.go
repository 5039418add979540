// AngelaMos | 2026
// retry.go

package core

import (
	"context"
	"fmt"
	"time"
)

const connectBaseDelay = 500 * time.Millisecond

// waitFor calls ping up to attempts times, doubling the pause between
// tries. Postgres and Redis usually start alongside the app containers.
func waitFor(
	ctx context.Context,
	what string,
	attempts int,
	ping func(context.Context) error,
) error {
	attempts = max(attempts, 1)
	delay := connectBaseDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt >= attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to %s: %w", what, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("connect to %s after %d attempts: %w", what, attempts, err)
}
