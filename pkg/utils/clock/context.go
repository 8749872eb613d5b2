package clock

import (
	"context"
	"time"
)

type ctxClockKey struct{}

type Clock func() time.Time

// Now returns the current time from the context-injected clock, falling
// back to the wall clock. Detector evaluations and state transitions take
// their timestamps from here so tests can freeze time.
func Now(ctx context.Context) time.Time {
	clock, ok := ctx.Value(ctxClockKey{}).(Clock)
	if !ok {
		return time.Now()
	}
	return clock()
}

func Since(ctx context.Context, t time.Time) time.Duration {
	return Now(ctx).Sub(t)
}

func With(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, ctxClockKey{}, clock)
}
