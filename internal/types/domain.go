// Package types defines the domain model and shared contracts for the push
// delivery agent: the normalized push payload, notification descriptors, the
// attribution record retained across the display->interaction gap, engagement
// events, and the Logger/Clock capabilities injected into every component.
package types

import "time"

// EngagementKind identifies a lifecycle transition of a displayed notification.
type EngagementKind string

const (
	// EngagementShown is reported once after the notification is rendered.
	EngagementShown EngagementKind = "shown"

	// EngagementClick is reported when the user presses an action button or
	// the notification body.
	EngagementClick EngagementKind = "click"

	// EngagementClose is reported when the user dismisses the notification
	// without clicking. Click and close are mutually exclusive terminal
	// states: the platform removes the notification on click before a close
	// event can fire.
	EngagementClose EngagementKind = "close"
)

// Default display values applied when the push payload omits a field.
const (
	// DefaultTitle is the notification title when the payload carries none.
	DefaultTitle = "Notificação"

	// DefaultIcon is the static asset path used when no icon is supplied.
	DefaultIcon = "/icon.png"

	// DefaultActionTitle labels an action button whose payload entry has no
	// title of its own.
	DefaultActionTitle = "Abrir"
)

// MaxVisibleActions caps how many action buttons are ever rendered,
// regardless of how many the payload supplies.
const MaxVisibleActions = 2

// RawAction is an action entry exactly as received in the push payload.
// Any field may be absent; the presenter fills in slug and title defaults.
type RawAction struct {
	Action string `json:"action,omitempty"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
}

// PushPayload is the normalized form of one push message body. It is
// ephemeral: it exists only for the duration of push handling.
//
// NID is the backend-assigned notification instance id. An empty NID is
// valid (anonymous notification) but disables engagement reporting.
type PushPayload struct {
	NID     string
	Title   string
	Body    string
	Icon    string
	Image   string
	URL     string
	Actions []RawAction
}

// ActionDescriptor is a fully resolved action: a non-empty, URL- and DOM-safe
// slug, a non-empty title, and an optional target URL.
type ActionDescriptor struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
}

// DisplayDescriptor is the platform-facing description of a notification:
// the visible title, body, artwork, and at most MaxVisibleActions buttons.
type DisplayDescriptor struct {
	Title   string             `json:"title"`
	Body    string             `json:"body,omitempty"`
	Icon    string             `json:"icon,omitempty"`
	Image   string             `json:"image,omitempty"`
	Actions []ActionDescriptor `json:"actions,omitempty"`
}

// AttributionRecord is the subset of normalized data retained on the
// notification instance so a later interaction can be attributed. The action
// list is deliberately untruncated: the click resolver can still match an
// interaction key against entries the display surface chose not to render.
//
// The record is owned exclusively by the notification instance. No component
// other than the click resolver may read it.
type AttributionRecord struct {
	NID     string             `json:"nid,omitempty"`
	URL     string             `json:"url,omitempty"`
	Actions []ActionDescriptor `json:"actions,omitempty"`
}

// Subscription is the platform's push subscription handle.
//
// ID is the backend-assigned subscription identifier used to key the
// cancellation report. Endpoint is the push-transport endpoint URL.
type Subscription struct {
	ID       string `json:"id,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// SubscriptionStatusCancelled is the terminal status reported for a
// subscription the platform has invalidated.
const SubscriptionStatusCancelled = "CANCELLED"

// SubscriptionCancellation is the partial-update body sent to the backend
// when a subscription dies.
type SubscriptionCancellation struct {
	Endpoint string `json:"endpoint"`
	Status   string `json:"status"`
	TS       string `json:"ts"`
}

// PlatformEventType identifies the kind of platform-delivered event carried
// by a PlatformEvent envelope.
type PlatformEventType string

const (
	EventPush               PlatformEventType = "push"
	EventClick              PlatformEventType = "click"
	EventClose              PlatformEventType = "close"
	EventSubscriptionChange PlatformEventType = "subscription_change"
)

// PlatformEvent is the transport envelope the hosting layers (HTTP ingress,
// SQS-fed Lambda) consume and dispatch onto the agent's handlers. The agent
// itself never sees the envelope; each handler receives only the fields its
// event kind carries.
type PlatformEvent struct {
	Type    PlatformEventType `json:"type"`
	TraceID string            `json:"trace_id,omitempty"`

	// Push delivery: the as-received message body, which may be a structured
	// object or raw text containing one.
	Body string `json:"body,omitempty"`

	// Interaction events: the displayed notification instance and, for
	// clicks, the interaction key of the pressed button (empty for a bare
	// body click).
	NotificationID string `json:"notification_id,omitempty"`
	Action         string `json:"action,omitempty"`

	// Subscription invalidation: the old subscription, when the platform
	// still has it. Absent means the current subscription must be queried.
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// Logger defines the structured logging interface used throughout the agent.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}
