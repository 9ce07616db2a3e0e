package report

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"pushagent/internal/types"
)

// MetricResult categorizes a report outcome for metrics.
type MetricResult string

const (
	MetricReported MetricResult = "reported"
	MetricFailed   MetricResult = "failed"
	MetricSkipped  MetricResult = "skipped"
)

// EngagementMetrics abstracts telemetry for the reporting path.
type EngagementMetrics interface {
	RecordEngagement(ctx context.Context, kind types.EngagementKind, result MetricResult)
	RecordHandlerLatency(ctx context.Context, event types.PlatformEventType, duration time.Duration)
}

// NoopEngagementMetrics discards all metrics. Used by the daemon host and as
// the Reporter default.
type NoopEngagementMetrics struct{}

func (NoopEngagementMetrics) RecordEngagement(context.Context, types.EngagementKind, MetricResult) {
}
func (NoopEngagementMetrics) RecordHandlerLatency(context.Context, types.PlatformEventType, time.Duration) {
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchEngagementMetrics implements EngagementMetrics by emitting to
// AWS CloudWatch. Used by the Lambda host.
//
// Metrics emitted:
//   - EngagementReport: Dims {Kind, Result} -- on every report outcome
//   - HandlerLatency: Dims {Event} -- wall time of one event handler
type CloudWatchEngagementMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// Compile-time assertions that both implementations satisfy the interface.
var (
	_ EngagementMetrics = (*CloudWatchEngagementMetrics)(nil)
	_ EngagementMetrics = NoopEngagementMetrics{}
)

// NewCloudWatchEngagementMetrics creates a metrics sink publishing to the
// given CloudWatch namespace. An empty namespace falls back to the compiled
// default.
func NewCloudWatchEngagementMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchEngagementMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchEngagementMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordEngagement emits an EngagementReport metric with Kind and Result
// dimensions. Emission failures are logged and dropped; metrics never block
// or fail the reporting path.
func (m *CloudWatchEngagementMetrics) RecordEngagement(ctx context.Context, kind types.EngagementKind, result MetricResult) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricEngagementReport),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(types.DimKind),
						Value: aws.String(string(kind)),
					},
					{
						Name:  aws.String(types.DimResult),
						Value: aws.String(string(result)),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record engagement metric",
			"error", err.Error(),
			"kind", string(kind),
			"result", string(result),
		)
	}
}

// RecordHandlerLatency emits the wall time of one event handler in
// milliseconds with the Event dimension.
func (m *CloudWatchEngagementMetrics) RecordHandlerLatency(ctx context.Context, event types.PlatformEventType, duration time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricHandlerLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(types.DimEvent),
						Value: aws.String(string(event)),
					},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record handler latency metric",
			"error", err.Error(),
			"event", string(event),
		)
	}
}
