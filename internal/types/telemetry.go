package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricEngagementReport = "EngagementReport"
	MetricHandlerLatency   = "HandlerLatency"

	// Dimension Keys
	DimKind   = "Kind"
	DimResult = "Result"
	DimEvent  = "Event"

	// Metric Namespace
	MetricNamespace = "PushAgent"
)
