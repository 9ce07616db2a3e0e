// Package report implements outbound reporting to the campaign backend: the
// engagement lifecycle reports (shown/click/close) and the subscription
// cancellation report. Reporting is best-effort and at-most-once by design:
// a single attempt per event, failures logged and dropped, nothing persisted
// or queued. A circuit breaker guards the extended-lifetime budget when the
// backend is down -- it skips calls, it never retries them.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"pushagent/internal/config"
	"pushagent/internal/types"
)

// maxResponseBodyRead limits how much of a response body we read when
// logging a rejected report.
const maxResponseBodyRead = 1024

// Reporter sends engagement and cancellation reports over HTTP. Requests
// carry no credentials; the backend may live on a different origin than the
// notification's display surface.
type Reporter struct {
	baseURL   string
	userAgent string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	metrics   EngagementMetrics
	logger    types.Logger
	clock     types.Clock
}

// ReporterOption is a functional option for configuring a Reporter.
type ReporterOption func(*Reporter)

// WithHTTPClient overrides the HTTP client, for testing.
func WithHTTPClient(c *http.Client) ReporterOption {
	return func(r *Reporter) { r.client = c }
}

// WithClock overrides the clock, for testing.
func WithClock(c types.Clock) ReporterOption {
	return func(r *Reporter) { r.clock = c }
}

// WithMetrics installs an engagement metrics sink. Defaults to no-op.
func WithMetrics(m EngagementMetrics) ReporterOption {
	return func(r *Reporter) { r.metrics = m }
}

// NewReporter creates a Reporter against the resolved backend base URL.
// An empty base URL is tolerated: every report becomes a logged no-op.
func NewReporter(baseURL string, cfg config.BackendConfig, logger types.Logger, opts ...ReporterOption) (*Reporter, error) {
	if logger == nil {
		return nil, fmt.Errorf("reporter: logger is nil")
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "engagement-reporter",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	r := &Reporter{
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		breaker:   cb,
		metrics:   NoopEngagementMetrics{},
		logger:    logger,
		clock:     types.RealClock{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// engagementPath maps an event kind to its backend path.
func engagementPath(nid string, kind types.EngagementKind) string {
	return fmt.Sprintf("/notifications/%s/%s", nid, kind)
}

// Report sends one engagement event: POST /notifications/{nid}/{kind} with
// extra merged with a client timestamp. Absent nid is a logged no-op -- a
// deliberate silent drop, not a deferred retry. Failures of any kind are
// logged and swallowed; the caller never sees them.
func (r *Reporter) Report(ctx context.Context, nid string, kind types.EngagementKind, extra map[string]any) {
	if nid == "" {
		r.logger.Warn("engagement report skipped: no notification id", "kind", string(kind))
		r.metrics.RecordEngagement(ctx, kind, MetricSkipped)
		return
	}
	if r.baseURL == "" {
		return
	}

	body := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		body[k] = v
	}
	body["ts"] = r.clock.Now().Format(time.RFC3339)

	url := config.JoinURL(r.baseURL, engagementPath(nid, kind))
	if r.send(ctx, http.MethodPost, url, body, "engagement report", "kind", string(kind), "nid", nid) {
		r.metrics.RecordEngagement(ctx, kind, MetricReported)
	} else {
		r.metrics.RecordEngagement(ctx, kind, MetricFailed)
	}
}

// ReportCancellation issues PATCH /subscriptions/{id} marking the
// subscription CANCELLED. A subscription without a backend id is skipped:
// there is nothing to key the partial update on.
func (r *Reporter) ReportCancellation(ctx context.Context, sub *types.Subscription) {
	if sub == nil || sub.ID == "" {
		r.logger.Warn("cancellation report skipped: subscription has no id")
		return
	}
	if r.baseURL == "" {
		return
	}

	body := types.SubscriptionCancellation{
		Endpoint: sub.Endpoint,
		Status:   types.SubscriptionStatusCancelled,
		TS:       r.clock.Now().Format(time.RFC3339),
	}

	url := config.JoinURL(r.baseURL, "/subscriptions/"+sub.ID)
	r.send(ctx, http.MethodPatch, url, body, "cancellation report", "subscription_id", sub.ID)
}

// send performs the single HTTP attempt through the circuit breaker and
// interprets the outcome. It returns true only for a 2xx response. All
// failure modes are logged with the given label and fields; none propagate.
func (r *Reporter) send(ctx context.Context, method, url string, body any, label string, fields ...any) bool {
	payload, err := json.Marshal(body)
	if err != nil {
		r.logger.Error(label+" not sent: body marshal failed", append(fields, "error", err.Error())...)
		return false
	}

	resp, err := r.breaker.Execute(func() (*http.Response, error) {
		req, reqErr := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		if r.userAgent != "" {
			req.Header.Set("User-Agent", r.userAgent)
		}
		if traceID := types.GetTraceID(ctx); traceID != "" {
			req.Header.Set("X-Trace-Id", traceID)
		}

		res, doErr := r.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx feeds the breaker; the attempt itself is never repeated.
		if res.StatusCode >= 500 {
			res.Body.Close()
			return nil, fmt.Errorf("backend returned %d", res.StatusCode)
		}
		return res, nil
	})
	if err != nil {
		r.logger.Error(label+" failed", append(fields, "url", url, "error", err.Error())...)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		rejected, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))
		r.logger.Warn(label+" rejected",
			append(fields, "url", url, "status", resp.StatusCode, "body", string(rejected))...)
		return false
	}

	r.logger.Info(label+" delivered", append(fields, "status", resp.StatusCode)...)
	return true
}
