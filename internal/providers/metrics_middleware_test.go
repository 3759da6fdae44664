package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mockMetrics) IncCacheHits()                                    {}
func (m *mockMetrics) IncCacheMisses()                                  {}
func (m *mockMetrics) ObserveScanDuration(_ time.Duration)              {}
func (m *mockMetrics) IncExportJobs(_ string)                           {}
func (m *mockMetrics) ObserveSegmentDuration(_ time.Duration)           {}

type traceLogger struct {
	debugTypes []TypeEnum
}

func (m *traceLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *traceLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *traceLogger) Debugf(t TypeEnum, _ string, _ ...interface{}) {
	m.debugTypes = append(m.debugTypes, t)
}
func (m *traceLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *traceLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *traceLogger) Close()                                        {}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &mockMetrics{}
	logger := &traceLogger{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	mw := MetricsMiddleware(logger, metrics, handler)

	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "/export", metrics.requestEndpoint)
	assert.Equal(t, http.StatusAccepted, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
	// POST requests trace into the post log.
	assert.Equal(t, []TypeEnum{TypePost}, logger.debugTypes)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &mockMetrics{}
	logger := &traceLogger{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(logger, metrics, handler)

	req := httptest.NewRequest(http.MethodGet, "/dates", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
	assert.Equal(t, []TypeEnum{TypeGet}, logger.debugTypes)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
