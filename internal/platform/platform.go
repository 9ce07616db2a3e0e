// Package platform defines the capability interfaces the host platform
// exposes to the push agent -- notification display, the notification
// registry, window opening, subscription management, and takeover of the
// previous agent version -- together with an HTTP bridge implementation that
// fulfils them against a display-bridge service.
//
// The agent consumes these as injected capabilities so tests can substitute
// in-memory fakes, and so the same agent core runs under either hosting
// mode (daemon ingress or Lambda).
package platform

import (
	"context"

	"pushagent/internal/types"
)

// Notification is the platform's handle to one displayed notification
// instance. The attribution record lives on the instance itself: it is
// written once at display time and read only by the click resolver.
type Notification interface {
	// ID returns the notification instance identifier.
	ID() string

	// Attribution returns the record attached at display time.
	Attribution() types.AttributionRecord

	// Close dismisses the notification synchronously. The platform removes
	// the instance from its registry, so a close event for a notification
	// that was programmatically closed resolves to nothing.
	Close()
}

// Surface is the platform's notification display capability.
type Surface interface {
	// ShowNotification renders the descriptor and attaches the attribution
	// record to the new notification instance.
	ShowNotification(ctx context.Context, id string, d types.DisplayDescriptor, attr types.AttributionRecord) error

	// Notification looks up a displayed notification in the platform's
	// registry. The registry is queried, never cached by the agent.
	Notification(ctx context.Context, id string) (Notification, bool)
}

// Windows is the platform's window-opening capability.
type Windows interface {
	// OpenWindow opens the URL in a new browsing context.
	OpenWindow(ctx context.Context, url string) error
}

// Subscriptions is the platform's push-subscription capability.
type Subscriptions interface {
	// Current returns the active push subscription, or nil when none exists.
	Current(ctx context.Context) (*types.Subscription, error)
}

// Host exposes the platform's agent-lifecycle controls. A newly deployed
// agent version calls these during install/activate so it supersedes the
// previous version without waiting for open pages to close.
type Host interface {
	// SkipWaiting promotes this agent version past the waiting state.
	SkipWaiting(ctx context.Context) error

	// ClaimClients takes control of all existing pages immediately.
	ClaimClients(ctx context.Context) error
}
