package util

import (
	"context"
	"time"
)

// Simulate blocks for d, standing in for a network round trip. It returns
// early with the context error when ctx is done first.
func Simulate(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
