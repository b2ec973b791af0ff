package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndExpose(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/content/:id", "200", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/content/:id", "200", 30*time.Millisecond)
	m.ObserveSchemaCache("memory", "get", "hit", time.Microsecond)
	m.ObserveGraphSync("link", errors.New("down"))
	m.IncRateLimited("/api/auth/login")
	m.ObserveContentTypeRequest("term", "GET")
	m.ObserveContentTypeRequest("", "GET")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/api/content/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.schemaCache.WithLabelValues("memory", "get", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.graphSync.WithLabelValues("link", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.contentTypes))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "philoatlas_api_requests_total"))
	assert.True(t, strings.Contains(body, "philoatlas_rate_limited_requests_total"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveSchemaCache("memory", "get", "miss", 0)
	m.ObserveGraphSync("delete", nil)
	m.IncRateLimited("")
	m.ObserveContentTypeRequest("term", "GET")
	require.NoError(t, m.RegisterDBStats(nil, "x"))
}

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
}
