package llm

import (
	"context"
	"time"
)

// Observer receives a notification after every provider call, successful
// or failed. Implement it to feed token usage, latency and error rates
// into whatever backend you use; implementations should be non-blocking.
type Observer interface {
	OnCall(ctx context.Context, event CallEvent)
}

// CallEvent describes one provider call.
type CallEvent struct {
	Provider string
	Model    string

	// Attempt is 0 for the first try, counting up per retry.
	Attempt int

	// Usage is zero when the call failed before a response arrived.
	Usage     Usage
	Duration  time.Duration
	Err       error
	StartedAt time.Time
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, event CallEvent)

func (f ObserverFunc) OnCall(ctx context.Context, event CallEvent) {
	f(ctx, event)
}
