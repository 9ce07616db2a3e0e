package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushagent/internal/config"
	"pushagent/internal/types"
)

// noopLogger satisfies types.Logger for tests that do not assert on logs.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)        {}
func (noopLogger) Error(string, ...any)       {}
func (noopLogger) Warn(string, ...any)        {}
func (l noopLogger) With(...any) types.Logger { return l }

// fixedClock pins the reporter's timestamps.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// recordedRequest captures one backend call for assertion.
type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
	Header http.Header
}

// backendRecorder is an httptest handler recording every request.
type backendRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func (b *backendRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   body,
		Header: r.Header.Clone(),
	})
	b.mu.Unlock()

	status := b.status
	if status == 0 {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func (b *backendRecorder) all() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func newTestReporter(t *testing.T, baseURL string) *Reporter {
	t.Helper()
	cfg := config.BackendConfig{UserAgent: "NotivIQ-Agent/test", Timeout: 2 * time.Second}
	r, err := NewReporter(baseURL, cfg, noopLogger{},
		WithClock(fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}),
	)
	require.NoError(t, err)
	return r
}

func TestReport_Shown(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	r.Report(context.Background(), "n1", types.EngagementShown, nil)

	reqs := backend.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/notifications/n1/shown", reqs[0].Path)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "NotivIQ-Agent/test", reqs[0].Header.Get("User-Agent"))
	assert.Equal(t, "2024-05-01T12:00:00Z", reqs[0].Body["ts"])
}

func TestReport_ClickMergesExtra(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	r.Report(context.Background(), "n1", types.EngagementClick, map[string]any{"action": "ver-oferta"})

	reqs := backend.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/notifications/n1/click", reqs[0].Path)
	assert.Equal(t, "ver-oferta", reqs[0].Body["action"])
	assert.NotEmpty(t, reqs[0].Body["ts"])
}

func TestReport_MissingNIDIsSilentDrop(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	r.Report(context.Background(), "", types.EngagementShown, nil)

	assert.Empty(t, backend.all(), "no outbound call without a nid")
}

func TestReport_EmptyBaseURLIsNoop(t *testing.T) {
	r := newTestReporter(t, "")
	// Must not panic or attempt any network call.
	r.Report(context.Background(), "n1", types.EngagementShown, nil)
}

func TestReport_NonSuccessIsSwallowed(t *testing.T) {
	backend := &backendRecorder{status: http.StatusNotFound}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	// The call is recorded backend-side; the failure never surfaces.
	r.Report(context.Background(), "n1", types.EngagementClose, nil)
	require.Len(t, backend.all(), 1)
}

func TestReport_NeverRetries(t *testing.T) {
	backend := &backendRecorder{status: http.StatusInternalServerError}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	r.Report(context.Background(), "n1", types.EngagementShown, nil)

	assert.Len(t, backend.all(), 1, "a failed report is dropped, not retried")
}

func TestReport_BreakerSkipsCallsWhenBackendIsDown(t *testing.T) {
	backend := &backendRecorder{status: http.StatusInternalServerError}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	for i := 0; i < 10; i++ {
		r.Report(context.Background(), "n1", types.EngagementShown, nil)
	}

	// Six consecutive failures trip the breaker; later calls are skipped
	// without reaching the backend.
	assert.Less(t, len(backend.all()), 10)
	assert.GreaterOrEqual(t, len(backend.all()), 6)
}

func TestReport_NoDoubledSlashes(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL+"/")
	r.Report(context.Background(), "n1", types.EngagementShown, nil)

	reqs := backend.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/notifications/n1/shown", reqs[0].Path)
}

func TestReportCancellation(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	r.ReportCancellation(context.Background(), &types.Subscription{
		ID:       "s1",
		Endpoint: "https://push.test/ep",
	})

	reqs := backend.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, "/subscriptions/s1", reqs[0].Path)
	assert.Equal(t, "https://push.test/ep", reqs[0].Body["endpoint"])
	assert.Equal(t, types.SubscriptionStatusCancelled, reqs[0].Body["status"])
	assert.NotEmpty(t, reqs[0].Body["ts"])
}

func TestReportCancellation_NoIDIsSkipped(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	r.ReportCancellation(context.Background(), &types.Subscription{Endpoint: "https://push.test/ep"})
	r.ReportCancellation(context.Background(), nil)

	assert.Empty(t, backend.all())
}

func TestReport_PropagatesTraceID(t *testing.T) {
	backend := &backendRecorder{}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	r := newTestReporter(t, srv.URL)
	ctx := types.WithTraceID(context.Background(), "trace-123")
	r.Report(ctx, "n1", types.EngagementShown, nil)

	reqs := backend.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "trace-123", reqs[0].Header.Get("X-Trace-Id"))
}
