package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pushagent/internal/platform"
	"pushagent/internal/types"
)

// EngagementReporter sends best-effort lifecycle reports to the campaign
// backend. Implementations recover every failure internally -- a report call
// never raises to the agent, is never retried, and is never queued for
// later delivery.
type EngagementReporter interface {
	// Report sends one engagement event. When nid is empty the call is a
	// logged no-op: a deliberate silent drop, not a deferred retry.
	Report(ctx context.Context, nid string, kind types.EngagementKind, extra map[string]any)

	// ReportCancellation tells the backend a subscription is dead.
	ReportCancellation(ctx context.Context, sub *types.Subscription)
}

// Agent reacts to discrete platform-delivered events. It has no background
// loop and no mutable state of its own; the platform's notification registry
// and current subscription are queried, never cached.
type Agent struct {
	surface  platform.Surface
	windows  platform.Windows
	subs     platform.Subscriptions
	host     platform.Host
	reporter EngagementReporter
	logger   types.Logger
}

// New creates an Agent. All capabilities are required.
func New(
	surface platform.Surface,
	windows platform.Windows,
	subs platform.Subscriptions,
	host platform.Host,
	reporter EngagementReporter,
	logger types.Logger,
) (*Agent, error) {
	if surface == nil {
		return nil, fmt.Errorf("agent: surface is nil")
	}
	if windows == nil {
		return nil, fmt.Errorf("agent: windows is nil")
	}
	if subs == nil {
		return nil, fmt.Errorf("agent: subscriptions is nil")
	}
	if host == nil {
		return nil, fmt.Errorf("agent: host is nil")
	}
	if reporter == nil {
		return nil, fmt.Errorf("agent: reporter is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("agent: logger is nil")
	}
	return &Agent{
		surface:  surface,
		windows:  windows,
		subs:     subs,
		host:     host,
		reporter: reporter,
		logger:   logger,
	}, nil
}

// HandleInstall runs when a new agent version is installed. It requests
// immediate promotion so the new version does not sit in the waiting state.
func (a *Agent) HandleInstall(ctx context.Context, scope *EventScope) {
	a.logger.Info("agent installed")
	scope.WaitUntil(func(ctx context.Context) error {
		if err := a.host.SkipWaiting(ctx); err != nil {
			a.logger.Warn("skip-waiting request failed", "error", err.Error())
		}
		return nil
	})
}

// HandleActivate runs when the agent version becomes active. It claims all
// existing pages so this version supersedes the previous one immediately.
func (a *Agent) HandleActivate(ctx context.Context, scope *EventScope) {
	a.logger.Info("agent activated")
	scope.WaitUntil(func(ctx context.Context) error {
		if err := a.host.ClaimClients(ctx); err != nil {
			a.logger.Warn("client claim request failed", "error", err.Error())
		}
		return nil
	})
}

// HandlePush processes one delivered push message: normalize the body, build
// the display descriptor and attribution record, display the notification,
// then report "shown". Display and report run inside the event's extended
// lifetime; a failed "shown" report never prevents display, and a failed
// display suppresses the report (the notification was never shown).
func (a *Agent) HandlePush(ctx context.Context, scope *EventScope, body []byte) {
	if len(body) == 0 {
		return
	}

	p := Normalize(body)
	if p.NID == "" {
		a.logger.Warn("push payload carries no notification id; engagement will not be reported")
	} else {
		a.logger.Info("push payload received", "nid", p.NID, "title", p.Title)
	}

	descriptor, record := Present(p)

	// The instance id keys the platform's registry so later interaction
	// events can find this notification. An anonymous payload still gets a
	// displayable instance.
	id := p.NID
	if id == "" {
		id = uuid.NewString()
	}

	scope.WaitUntil(func(ctx context.Context) error {
		if err := a.surface.ShowNotification(ctx, id, descriptor, record); err != nil {
			a.logger.Error("notification display failed",
				"notification_id", id,
				"error", err.Error(),
			)
			return nil
		}
		a.reporter.Report(ctx, p.NID, types.EngagementShown, nil)
		return nil
	})
}

// HandleClick processes a user interaction with a displayed notification.
// The notification is dismissed immediately and synchronously; the click
// report and the window open run inside the event's extended lifetime.
//
// actionKey is the identifier of the pressed button, empty for a bare
// notification-body click. An unmatched or empty key falls back to the
// record's first action; with zero actions the click is still reported, with
// no action and no window open (a "dead click").
func (a *Agent) HandleClick(ctx context.Context, scope *EventScope, notificationID, actionKey string) {
	n, ok := a.surface.Notification(ctx, notificationID)
	if !ok {
		a.logger.Warn("click for unknown notification", "notification_id", notificationID)
		return
	}

	n.Close()

	record := n.Attribution()
	chosen, matched := resolveAction(record, actionKey)

	target := ""
	if matched {
		target = chosen.URL
	}
	if target == "" {
		target = record.URL
	}

	scope.WaitUntil(func(ctx context.Context) error {
		var extra map[string]any
		if matched {
			extra = map[string]any{"action": chosen.Action}
		}
		a.logger.Info("notification clicked",
			"notification_id", notificationID,
			"nid", record.NID,
			"action", actionKey,
			"target", target,
		)
		a.reporter.Report(ctx, record.NID, types.EngagementClick, extra)
		if target != "" {
			if err := a.windows.OpenWindow(ctx, target); err != nil {
				a.logger.Warn("failed to open target window",
					"target", target,
					"error", err.Error(),
				)
			}
		}
		return nil
	})
}

// resolveAction matches the interaction key against the attribution record.
// An unmatched key (including the empty key of a body click) falls back to
// the first action. matched is false only when the record has no actions.
func resolveAction(record types.AttributionRecord, actionKey string) (types.ActionDescriptor, bool) {
	for _, a := range record.Actions {
		if a.Action == actionKey {
			return a, true
		}
	}
	if len(record.Actions) > 0 {
		return record.Actions[0], true
	}
	return types.ActionDescriptor{}, false
}

// HandleClose processes a user dismissal. A notification removed by a prior
// click resolves to nothing here, which is what keeps the clicked and closed
// terminal states mutually exclusive.
func (a *Agent) HandleClose(ctx context.Context, scope *EventScope, notificationID string) {
	n, ok := a.surface.Notification(ctx, notificationID)
	if !ok {
		a.logger.Warn("close for unknown notification", "notification_id", notificationID)
		return
	}

	nid := n.Attribution().NID
	scope.WaitUntil(func(ctx context.Context) error {
		a.reporter.Report(ctx, nid, types.EngagementClose, nil)
		return nil
	})
}

// HandleSubscriptionChange processes a platform-initiated subscription
// invalidation. The old subscription comes from the event when the platform
// still has it; otherwise the current subscription is queried. Every failure
// is logged and swallowed -- the backend independently detects dead
// subscriptions via failed send attempts as a fallback.
func (a *Agent) HandleSubscriptionChange(ctx context.Context, scope *EventScope, old *types.Subscription) {
	scope.WaitUntil(func(ctx context.Context) error {
		sub := old
		if sub == nil {
			current, err := a.subs.Current(ctx)
			if err != nil {
				a.logger.Warn("subscription query failed; cancellation not reported",
					"error", err.Error(),
				)
				return nil
			}
			sub = current
		}
		if sub == nil {
			a.logger.Warn("no subscription available; cancellation not reported")
			return nil
		}
		a.reporter.ReportCancellation(ctx, sub)
		return nil
	})
}
