// Package ingress exposes the daemon host's HTTP surface: the endpoints the
// platform transports call to deliver events to the agent. Each request is
// one platform event; the handler creates the event's scope, dispatches to
// the agent, and settles the scope before acknowledging -- the HTTP response
// is the daemon analog of the platform's lifetime-extension contract.
package ingress

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"pushagent/internal/agent"
	"pushagent/internal/report"
	"pushagent/internal/types"
)

// maxEventBody caps inbound event bodies. Push payloads are small; anything
// larger is not a push message.
const maxEventBody = 64 << 10

// Router maps transport HTTP requests onto agent handlers.
type Router struct {
	agent   *agent.Agent
	metrics report.EngagementMetrics
	logger  types.Logger
	mux     *chi.Mux
}

// NewRouter creates the ingress router for the daemon host.
func NewRouter(a *agent.Agent, metrics report.EngagementMetrics, logger types.Logger) *Router {
	r := &Router{
		agent:   a,
		metrics: metrics,
		logger:  logger,
		mux:     chi.NewRouter(),
	}

	r.mux.Get("/healthz", r.handleHealth)
	r.mux.Route("/v1", func(v1 chi.Router) {
		v1.Post("/push", r.handlePush)
		v1.Post("/notifications/{id}/click", r.handleClick)
		v1.Post("/notifications/{id}/close", r.handleClose)
		v1.Post("/subscription-change", r.handleSubscriptionChange)
	})

	return r
}

// Handler returns the http.Handler for the router.
func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// eventContext assigns a trace id, derives the event-scoped logger, and
// stores both on the request context.
func (r *Router) eventContext(req *http.Request, event types.PlatformEventType) (*http.Request, types.Logger) {
	traceID := req.Header.Get("X-Trace-Id")
	if traceID == "" {
		traceID = uuid.NewString()
	}
	logger := r.logger.With("trace_id", traceID, "event", string(event))
	ctx := types.WithTraceID(req.Context(), traceID)
	ctx = types.WithLogger(ctx, logger)
	return req.WithContext(ctx), logger
}

// settle runs the scope to completion and acknowledges the event. Handlers
// recover their own failures, so the acknowledgement is unconditional 202.
func (r *Router) settle(w http.ResponseWriter, req *http.Request, event types.PlatformEventType, scope *agent.EventScope, logger types.Logger, start time.Time) {
	if err := scope.Settle(); err != nil {
		logger.Error("event scope settled with error", "error", err.Error())
	}
	r.metrics.RecordHandlerLatency(req.Context(), event, time.Since(start))
	w.WriteHeader(http.StatusAccepted)
}

// handlePush accepts one push delivery. The body is the as-received push
// message; a Content-Encoding of gzip is transparently decoded.
func (r *Router) handlePush(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	req, logger := r.eventContext(req, types.EventPush)

	body, err := readEventBody(req)
	if err != nil {
		logger.Warn("unreadable push body", "error", err.Error())
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	scope := agent.NewEventScope(req.Context())
	r.agent.HandlePush(req.Context(), scope, body)
	r.settle(w, req, types.EventPush, scope, logger, start)
}

// interactionBody is the wire shape of click events: the pressed button's
// interaction key, absent for a bare body click.
type interactionBody struct {
	Action string `json:"action,omitempty"`
}

func (r *Router) handleClick(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	req, logger := r.eventContext(req, types.EventClick)
	id := chi.URLParam(req, "id")

	var body interactionBody
	raw, err := readEventBody(req)
	if err == nil && len(raw) > 0 {
		// A malformed interaction body degrades to a body click.
		_ = json.Unmarshal(raw, &body)
	}

	scope := agent.NewEventScope(req.Context())
	r.agent.HandleClick(req.Context(), scope, id, body.Action)
	r.settle(w, req, types.EventClick, scope, logger, start)
}

func (r *Router) handleClose(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	req, logger := r.eventContext(req, types.EventClose)
	id := chi.URLParam(req, "id")

	scope := agent.NewEventScope(req.Context())
	r.agent.HandleClose(req.Context(), scope, id)
	r.settle(w, req, types.EventClose, scope, logger, start)
}

// subscriptionChangeBody is the wire shape of invalidation events. The old
// subscription is optional; absence makes the agent query the platform.
type subscriptionChangeBody struct {
	Subscription *types.Subscription `json:"subscription,omitempty"`
}

func (r *Router) handleSubscriptionChange(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	req, logger := r.eventContext(req, types.EventSubscriptionChange)

	var body subscriptionChangeBody
	raw, err := readEventBody(req)
	if err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	scope := agent.NewEventScope(req.Context())
	r.agent.HandleSubscriptionChange(req.Context(), scope, body.Subscription)
	r.settle(w, req, types.EventSubscriptionChange, scope, logger, start)
}

// readEventBody reads a size-capped event body, decoding gzip transport
// compression when declared.
func readEventBody(req *http.Request) ([]byte, error) {
	var reader io.Reader = http.MaxBytesReader(nil, req.Body, maxEventBody)

	if req.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(reader)
}
