// Package interrupt implements the cooperative cancellation checks required
// inside input-proportional loops. The host imposes timeouts externally;
// core routines only have to notice them at bounded intervals.
package interrupt

import "context"

// Interval bounds how many loop iterations may pass between checks.
const Interval = 1024

// Check returns the context error every Interval-th iteration.
func Check(ctx context.Context, i int) error {
	if i%Interval != 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
