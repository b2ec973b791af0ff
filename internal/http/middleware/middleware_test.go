package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/http/response"
	"github.com/yungbote/philoatlas-backend/internal/observability"
	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	valid  string
	userID uuid.UUID
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != s.valid {
		return ctx, apierr.Unauthorized("invalid token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID}), nil
}

func (s stubAuth) Profile(ctx context.Context) (*types.User, error) { return nil, nil }

func protectedEngine(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", am.RequireAuth(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String())
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	am := NewAuthMiddleware(logger.Nop(), stubAuth{valid: "good", userID: userID})
	r := protectedEngine(am)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic Z29vZA==", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"case insensitive scheme", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Body.String())
				return
			}
			var env response.ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, apierr.CodeUnauthorized, env.Error.Code)
		})
	}
}

func TestAttachTraceContextPropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	_, err := uuid.Parse(rec.Body.String())
	assert.NoError(t, err)
}

func TestAttachTraceContextReplacesUnsafeIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]string{
		"spaces":   "req 123",
		"too long": strings.Repeat("a", maxCorrelationIDLen+1),
		"markup":   "<script>",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-Request-Id", raw)
			req.Header.Set("X-Trace-Id", raw)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
			assert.NoError(t, err)
			_, err = uuid.Parse(rec.Header().Get("X-Trace-Id"))
			assert.NoError(t, err)
		})
	}
}

func TestAttachTraceContextPrefersActiveSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), sc))
		c.Next()
	})
	r.Use(AttachTraceContext())
	var got *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		got = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Trace-Id", "client-trace")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", got.SpanID)
	assert.Equal(t, got.TraceID, rec.Header().Get("X-Trace-Id"))
}

func TestRequestLoggerIncludesCorrelationIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(AttachTraceContext())
	r.Use(RequestLogger(log))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-77")
	req.Header.Set("X-Trace-Id", "trace-77")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-77", fields["request_id"])
	assert.Equal(t, "trace-77", fields["trace_id"])
	assert.Equal(t, "/x", fields["route"])
	assert.NotContains(t, fields, "span_id")
}

func TestMetricsSkipsListedPathsAndLabelsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m, "/healthcheck"))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/metadata/schema/:type", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/healthcheck", "/nope", "/api/metadata/schema/Term", "/api/metadata/schema/bogus"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.False(t, strings.Contains(body, `route="/healthcheck"`))
	assert.True(t, strings.Contains(body, `route="unmatched"`))
	assert.False(t, strings.Contains(body, `route="/nope"`))
	assert.True(t, strings.Contains(body, `philoatlas_content_type_requests_total{method="GET",type="term"} 1`))
	assert.False(t, strings.Contains(body, `type="bogus"`))
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0.001, 2, observability.NewMetrics())
	r := gin.New()
	r.Use(RateLimit(limiter))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.1.1.1:5555"
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.2.2.2:5555"
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, nil)
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }
	require.True(t, limiter.Allow("a"))
	now = now.Add(limiterIdleTTL + time.Minute)
	require.True(t, limiter.Allow("b"))
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	_, ok := limiter.visitors["a"]
	assert.False(t, ok)
}

func TestIPRateLimiterSweepsOncePerInterval(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, nil)
	start := time.Unix(1_700_000_000, 0)
	now := start
	limiter.now = func() time.Time { return now }
	require.True(t, limiter.Allow("a"))

	limiter.mu.Lock()
	limiter.visitors["a"].lastSeen = start.Add(-time.Hour)
	limiter.mu.Unlock()

	now = start.Add(limiterSweepInterval / 2)
	limiter.Allow("b")
	limiter.mu.Lock()
	_, ok := limiter.visitors["a"]
	limiter.mu.Unlock()
	assert.True(t, ok, "no sweep before the interval elapses")

	now = start.Add(limiterSweepInterval)
	limiter.Allow("b")
	limiter.mu.Lock()
	_, ok = limiter.visitors["a"]
	_, bOK := limiter.visitors["b"]
	limiter.mu.Unlock()
	assert.False(t, ok)
	assert.True(t, bOK)
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewIPRateLimiter(0, 1, nil)))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
