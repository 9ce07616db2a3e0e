package agent

import (
	"context"
	"sync"

	"pushagent/internal/platform"
	"pushagent/internal/types"
)

// --- FakePlatform ---

// FakePlatform implements every platform capability in memory. It is the
// test double for the host environment: displayed notifications live in its
// registry, Close removes them (so a close event after a programmatic close
// resolves to nothing, exactly like the real platform), and opened windows
// are recorded for assertion.
//
// Usage:
//
//	p := NewFakePlatform()
//	a, _ := New(p, p, p, p, reporter, logger)
type FakePlatform struct {
	mu sync.Mutex

	// ShowErr, when set, is returned by ShowNotification.
	ShowErr error

	// Subscription is returned by Current. SubscriptionErr takes precedence.
	Subscription    *types.Subscription
	SubscriptionErr error

	// OpenErr, when set, is returned by OpenWindow.
	OpenErr error

	notifications map[string]*FakeNotification

	// OpenedWindows records every URL passed to OpenWindow.
	OpenedWindows []string

	// SkipWaitingCalls and ClaimCalls count lifecycle invocations.
	SkipWaitingCalls int
	ClaimCalls       int
}

// Compile-time assertions that FakePlatform fulfils every capability.
var (
	_ platform.Surface       = (*FakePlatform)(nil)
	_ platform.Windows       = (*FakePlatform)(nil)
	_ platform.Subscriptions = (*FakePlatform)(nil)
	_ platform.Host          = (*FakePlatform)(nil)
)

// NewFakePlatform creates an empty FakePlatform.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{notifications: make(map[string]*FakeNotification)}
}

// FakeNotification is the registry entry handed back to the agent.
type FakeNotification struct {
	platform *FakePlatform

	NotificationID string
	Descriptor     types.DisplayDescriptor
	Attr           types.AttributionRecord
	Closed         bool
}

func (n *FakeNotification) ID() string                           { return n.NotificationID }
func (n *FakeNotification) Attribution() types.AttributionRecord { return n.Attr }

// Close removes the notification from the fake registry.
func (n *FakeNotification) Close() {
	n.platform.mu.Lock()
	defer n.platform.mu.Unlock()
	n.Closed = true
	delete(n.platform.notifications, n.NotificationID)
}

// ShowNotification implements platform.Surface.
func (p *FakePlatform) ShowNotification(_ context.Context, id string, d types.DisplayDescriptor, attr types.AttributionRecord) error {
	if p.ShowErr != nil {
		return p.ShowErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications[id] = &FakeNotification{
		platform:       p,
		NotificationID: id,
		Descriptor:     d,
		Attr:           attr,
	}
	return nil
}

// Notification implements platform.Surface.
func (p *FakePlatform) Notification(_ context.Context, id string) (platform.Notification, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.notifications[id]
	if !ok {
		return nil, false
	}
	return n, true
}

// Displayed returns the registry entry for assertions, without the
// platform.Notification indirection.
func (p *FakePlatform) Displayed(id string) (*FakeNotification, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.notifications[id]
	return n, ok
}

// DisplayedCount returns how many notifications are currently registered.
func (p *FakePlatform) DisplayedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.notifications)
}

// OpenWindow implements platform.Windows.
func (p *FakePlatform) OpenWindow(_ context.Context, url string) error {
	if p.OpenErr != nil {
		return p.OpenErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.OpenedWindows = append(p.OpenedWindows, url)
	return nil
}

// Current implements platform.Subscriptions.
func (p *FakePlatform) Current(context.Context) (*types.Subscription, error) {
	if p.SubscriptionErr != nil {
		return nil, p.SubscriptionErr
	}
	return p.Subscription, nil
}

// SkipWaiting implements platform.Host.
func (p *FakePlatform) SkipWaiting(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SkipWaitingCalls++
	return nil
}

// ClaimClients implements platform.Host.
func (p *FakePlatform) ClaimClients(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ClaimCalls++
	return nil
}

// --- FakeReporter ---

// ReportedEvent records one Report call.
type ReportedEvent struct {
	NID   string
	Kind  types.EngagementKind
	Extra map[string]any
}

// FakeReporter implements EngagementReporter by recording calls. It applies
// the same silent-drop rule as the real reporter: calls without a nid are
// counted in Skipped but never appear in Events.
type FakeReporter struct {
	mu sync.Mutex

	Events        []ReportedEvent
	Cancellations []*types.Subscription
	Skipped       int
}

var _ EngagementReporter = (*FakeReporter)(nil)

// Report implements EngagementReporter.
func (r *FakeReporter) Report(_ context.Context, nid string, kind types.EngagementKind, extra map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if nid == "" {
		r.Skipped++
		return
	}
	r.Events = append(r.Events, ReportedEvent{NID: nid, Kind: kind, Extra: extra})
}

// ReportCancellation implements EngagementReporter.
func (r *FakeReporter) ReportCancellation(_ context.Context, sub *types.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cancellations = append(r.Cancellations, sub)
}
