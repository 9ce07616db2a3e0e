package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"pushagent/internal/config"
	"pushagent/internal/types"
)

// Bridge fulfils the platform capabilities against a display-bridge service:
// the process on the device side that actually renders notifications, opens
// windows, and owns the push subscription. The bridge service keeps the
// notification registry, so the agent itself caches nothing.
//
// Bridge endpoints:
//
//	PUT    /notifications/{id}   render descriptor, attach attribution
//	GET    /notifications/{id}   fetch a displayed notification
//	DELETE /notifications/{id}   dismiss (and drop from the registry)
//	POST   /windows              open a URL in a new browsing context
//	GET    /subscription         current push subscription (204 when none)
//	POST   /lifecycle/skip-waiting
//	POST   /lifecycle/claim
type Bridge struct {
	baseURL string
	client  *http.Client
	logger  types.Logger
}

// Compile-time assertions that Bridge fulfils every platform capability.
var (
	_ Surface       = (*Bridge)(nil)
	_ Windows       = (*Bridge)(nil)
	_ Subscriptions = (*Bridge)(nil)
	_ Host          = (*Bridge)(nil)
)

// NewBridge creates a Bridge against the display-bridge base URL.
func NewBridge(cfg config.BridgeConfig, logger types.Logger) (*Bridge, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("bridge: url is empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("bridge: logger is nil")
	}
	return &Bridge{
		baseURL: cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// displayRequest is the bridge wire format for rendering a notification.
type displayRequest struct {
	Descriptor  types.DisplayDescriptor `json:"descriptor"`
	Attribution types.AttributionRecord `json:"attribution"`
}

// displayedNotification is the bridge wire format of a registry entry, and
// doubles as the Notification handle handed to the agent.
type displayedNotification struct {
	bridge *Bridge

	NotificationID string                  `json:"id"`
	Attr           types.AttributionRecord `json:"attribution"`
}

func (n *displayedNotification) ID() string                           { return n.NotificationID }
func (n *displayedNotification) Attribution() types.AttributionRecord { return n.Attr }

// Close dismisses the notification on the bridge. Dismissal is best-effort;
// a failure leaves a stale entry the bridge will evict on its own.
func (n *displayedNotification) Close() {
	if err := n.bridge.do(context.Background(), http.MethodDelete, "/notifications/"+n.NotificationID, nil, nil); err != nil {
		n.bridge.logger.Warn("bridge dismiss failed",
			"notification_id", n.NotificationID,
			"error", err.Error(),
		)
	}
}

// ShowNotification implements Surface.
func (b *Bridge) ShowNotification(ctx context.Context, id string, d types.DisplayDescriptor, attr types.AttributionRecord) error {
	req := displayRequest{Descriptor: d, Attribution: attr}
	if err := b.do(ctx, http.MethodPut, "/notifications/"+id, req, nil); err != nil {
		return types.NewAppError(types.ErrCodeDisplayFailed, "bridge rejected display descriptor", err)
	}
	return nil
}

// Notification implements Surface by querying the bridge's registry.
func (b *Bridge) Notification(ctx context.Context, id string) (Notification, bool) {
	var n displayedNotification
	if err := b.do(ctx, http.MethodGet, "/notifications/"+id, nil, &n); err != nil {
		return nil, false
	}
	n.bridge = b
	if n.NotificationID == "" {
		n.NotificationID = id
	}
	return &n, true
}

// OpenWindow implements Windows.
func (b *Bridge) OpenWindow(ctx context.Context, url string) error {
	return b.do(ctx, http.MethodPost, "/windows", map[string]string{"url": url}, nil)
}

// Current implements Subscriptions. A 204 from the bridge means no active
// subscription and yields (nil, nil).
func (b *Bridge) Current(ctx context.Context) (*types.Subscription, error) {
	var sub types.Subscription
	found, err := b.get(ctx, "/subscription", &sub)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeSubscriptionQuery, "bridge subscription query failed", err)
	}
	if !found {
		return nil, nil
	}
	return &sub, nil
}

// SkipWaiting implements Host.
func (b *Bridge) SkipWaiting(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/lifecycle/skip-waiting", nil, nil)
}

// ClaimClients implements Host.
func (b *Bridge) ClaimClients(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/lifecycle/claim", nil, nil)
}

// do issues one bridge request, optionally decoding the response into out.
func (b *Bridge) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("bridge: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, config.JoinURL(b.baseURL, path), reader)
	if err != nil {
		return fmt.Errorf("bridge: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge: %s %s returned %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("bridge: decode response: %w", err)
		}
	}
	return nil
}

// get issues a GET that distinguishes "found" from an empty 204.
func (b *Bridge) get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.JoinURL(b.baseURL, path), nil)
	if err != nil {
		return false, fmt.Errorf("bridge: create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("bridge: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("bridge: GET %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("bridge: decode response: %w", err)
	}
	return true, nil
}
