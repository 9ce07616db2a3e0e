package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushagent/internal/types"
)

// fakeCloudWatchClient records PutMetricData inputs.
type fakeCloudWatchClient struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestRecordEngagement_EmitsKindAndResult(t *testing.T) {
	client := &fakeCloudWatchClient{}
	m := NewCloudWatchEngagementMetrics(client, "CustomNamespace", noopLogger{})

	m.RecordEngagement(context.Background(), types.EngagementClick, MetricReported)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "CustomNamespace", *input.Namespace)
	require.Len(t, input.MetricData, 1)
	assert.Equal(t, types.MetricEngagementReport, *input.MetricData[0].MetricName)

	dims := map[string]string{}
	for _, d := range input.MetricData[0].Dimensions {
		dims[*d.Name] = *d.Value
	}
	assert.Equal(t, "click", dims[types.DimKind])
	assert.Equal(t, "reported", dims[types.DimResult])
}

func TestRecordHandlerLatency_EmitsMilliseconds(t *testing.T) {
	client := &fakeCloudWatchClient{}
	m := NewCloudWatchEngagementMetrics(client, "", noopLogger{})

	m.RecordHandlerLatency(context.Background(), types.EventPush, 250*time.Millisecond)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, types.MetricNamespace, *input.Namespace)
	require.Len(t, input.MetricData, 1)
	assert.Equal(t, types.MetricHandlerLatency, *input.MetricData[0].MetricName)
	assert.Equal(t, float64(250), *input.MetricData[0].Value)
}

func TestRecordEngagement_PublishFailureIsSwallowed(t *testing.T) {
	client := &fakeCloudWatchClient{err: errors.New("throttled")}
	m := NewCloudWatchEngagementMetrics(client, "", noopLogger{})

	// Must not panic or propagate; metrics never fail the reporting path.
	m.RecordEngagement(context.Background(), types.EngagementShown, MetricFailed)
	require.Len(t, client.inputs, 1)
}
