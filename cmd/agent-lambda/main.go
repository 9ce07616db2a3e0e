// Package main is the entry point for the push agent Lambda host.
//
// In this hosting mode, platform events (push deliveries, notification
// interactions, subscription invalidations) arrive as SQS messages whose
// bodies are PlatformEvent envelopes. Each record is dispatched onto the
// agent core inside its own event scope, and the handler returns only after
// every scope has settled -- returning earlier would let the platform freeze
// the execution context and silently drop in-flight reports, which is the
// exact failure class this design exists to prevent.
//
// Cold Start (main):
//  1. Initialize structured logger.
//  2. Load agent configuration and resolve the backend base URL.
//  3. Load AWS SDK configuration and initialize CloudWatch metrics.
//  4. Initialize the engagement reporter and the display bridge.
//  5. Wire the agent, register the handler, and call lambda.Start.
//
// Delivery is at-most-once by design: malformed envelopes and settled
// handler failures are logged and ACKed, never re-queued.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"pushagent/internal/agent"
	"pushagent/internal/config"
	"pushagent/internal/platform"
	"pushagent/internal/report"
	"pushagent/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

// Compile-time assertion that slogAdapter implements types.Logger.
var _ types.Logger = (*slogAdapter)(nil)

// Handler holds the dependencies for the Lambda event handler.
type Handler struct {
	agent   *agent.Agent
	metrics report.EngagementMetrics
	logger  types.Logger
}

// Handle processes an SQS event containing one or more platform events.
// Each record is handled as a fully independent invocation; records never
// interact. The response carries no batch item failures because reporting is
// best-effort and never retried.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	for _, record := range sqsEvent.Records {
		h.processRecord(ctx, record)
	}
	return events.SQSEventResponse{}, nil
}

// processRecord dispatches one platform event envelope onto the agent and
// settles its scope before returning.
func (h *Handler) processRecord(ctx context.Context, record events.SQSMessage) {
	start := time.Now()

	var ev types.PlatformEvent
	if err := json.Unmarshal([]byte(record.Body), &ev); err != nil {
		h.logger.Error("failed to unmarshal platform event",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		return
	}

	traceID := ev.TraceID
	if traceID == "" {
		traceID = record.MessageId
	}
	logger := h.logger.With("trace_id", traceID, "event", string(ev.Type))
	ctx = types.WithTraceID(ctx, traceID)
	ctx = types.WithLogger(ctx, logger)

	scope := agent.NewEventScope(ctx)
	switch ev.Type {
	case types.EventPush:
		h.agent.HandlePush(ctx, scope, []byte(ev.Body))
	case types.EventClick:
		h.agent.HandleClick(ctx, scope, ev.NotificationID, ev.Action)
	case types.EventClose:
		h.agent.HandleClose(ctx, scope, ev.NotificationID)
	case types.EventSubscriptionChange:
		h.agent.HandleSubscriptionChange(ctx, scope, ev.Subscription)
	default:
		logger.Warn("unknown platform event type")
		return
	}

	if err := scope.Settle(); err != nil {
		logger.Error("event scope settled with error", "error", err.Error())
	}
	h.metrics.RecordHandlerLatency(ctx, ev.Type, time.Since(start))
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	logger.Info("push agent Lambda initializing (cold start)")

	typedLogger := &slogAdapter{logger: logger}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("failed to load AWS SDK config", "error", err.Error())
		os.Exit(1)
	}

	metrics := report.NewCloudWatchEngagementMetrics(
		cloudwatch.NewFromConfig(awsCfg),
		cfg.Observability.MetricNamespace,
		typedLogger,
	)

	baseURL := cfg.ReportBaseURL()
	reporter, err := report.NewReporter(baseURL, cfg.Backend, typedLogger,
		report.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error("failed to create reporter", "error", err.Error())
		os.Exit(1)
	}

	bridge, err := platform.NewBridge(cfg.Bridge, typedLogger)
	if err != nil {
		logger.Error("failed to create display bridge", "error", err.Error())
		os.Exit(1)
	}

	a, err := agent.New(bridge, bridge, bridge, bridge, reporter, typedLogger)
	if err != nil {
		logger.Error("failed to create agent", "error", err.Error())
		os.Exit(1)
	}

	handler := &Handler{
		agent:   a,
		metrics: metrics,
		logger:  typedLogger,
	}

	logger.Info("push agent Lambda initialized",
		"environment", cfg.Environment,
		"report_base_url", baseURL,
		"bridge_url", cfg.Bridge.URL,
	)

	lambda.Start(handler.Handle)
}
