package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveToolCall(t *testing.T) {
	m := New()

	m.ObserveToolCall("calculator", false, 10*time.Millisecond)
	m.ObserveToolCall("calculator", false, 20*time.Millisecond)
	m.ObserveToolCall("calculator", true, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("calculator", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("calculator", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ToolCallDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveToolCall("calculator", false, time.Second)
		m.ObserveHTTPRequest("/", http.StatusOK)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("/mcp", http.StatusBadRequest)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `simple_mcp_http_requests_total{code="400",path="/mcp"} 1`)
}
