package types

import "fmt"

// ErrorCode is a typed string for categorizing agent errors.
type ErrorCode string

// Error code constants. All components MUST use these constants instead of
// hardcoded strings. Every code in this taxonomy is recovered locally -- the
// agent never surfaces an error to the user; the worst degraded behavior is
// a notification whose engagement goes untracked.
const (
	// Parse failure: malformed push body. Recovered by normalizing to an
	// empty payload so display defaults apply.
	ErrCodePayloadParse ErrorCode = "payload_parse_failed"

	// Missing attribution: no resolvable notification id. Recovered by
	// skipping the report entirely.
	ErrCodeMissingAttribution ErrorCode = "missing_attribution"

	// Report failure: the engagement report call failed or the backend
	// returned non-success. Never retried, never queued.
	ErrCodeReportFailed ErrorCode = "report_failed"

	// Subscription-query failure: the platform could not produce the
	// current subscription. The cancellation report is skipped.
	ErrCodeSubscriptionQuery ErrorCode = "subscription_query_failed"

	// Display failure: the platform rejected the display descriptor.
	ErrCodeDisplayFailed ErrorCode = "display_failed"

	// Configuration failure: invalid or missing startup configuration.
	// The only code that is fatal, and only at process start.
	ErrCodeConfigInvalid ErrorCode = "config_invalid"
)

// AppError is the structured error type used throughout the agent. It pairs
// an ErrorCode with a human-readable message and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping the given cause (which may be nil).
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}
