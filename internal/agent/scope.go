package agent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EventScope models the host platform's lifetime-extension contract. The
// hosting context is free to terminate the agent the moment an event handler
// returns, silently dropping any in-flight network call -- unless the
// handler attached its asynchronous work to the event's scope. Every async
// chain in the agent (display -> report shown; click -> report -> open URL;
// close -> report; subscription invalidation -> report cancellation) MUST go
// through WaitUntil; the host settles the scope before acknowledging the
// event.
//
// A scope belongs to exactly one event invocation and is never shared.
type EventScope struct {
	ctx context.Context
	g   errgroup.Group
}

// NewEventScope creates the scope for one platform event. The context bounds
// the extended lifetime the host is willing to grant.
func NewEventScope(ctx context.Context) *EventScope {
	return &EventScope{ctx: ctx}
}

// WaitUntil attaches a unit of asynchronous work to the event's extended
// lifetime. The work starts immediately; Settle blocks until it finishes.
func (s *EventScope) WaitUntil(fn func(ctx context.Context) error) {
	s.g.Go(func() error {
		return fn(s.ctx)
	})
}

// Settle blocks until every attached unit of work has finished and returns
// the first non-nil error, if any. Handlers recover their own failures
// internally, so a non-nil settle error indicates a bug rather than an
// expected degraded path.
func (s *EventScope) Settle() error {
	return s.g.Wait()
}
