package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/philoatlas-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxCorrelationIDLen = 128
)

// AttachTraceContext puts trace and request ids on the request context and
// echoes them back. A sampled OpenTelemetry span wins over the X-Trace-Id
// header so log lines and exported spans share one id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := correlationID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}

		span := trace.SpanFromContext(c.Request.Context())
		spanCtx := span.SpanContext()
		td := &ctxutil.TraceData{RequestID: reqID}
		if spanCtx.IsValid() {
			td.TraceID = spanCtx.TraceID().String()
			td.SpanID = spanCtx.SpanID().String()
			span.SetAttributes(attribute.String("http.request_id", reqID))
		} else {
			td.TraceID = correlationID(c.GetHeader(headerTraceID))
		}
		if td.TraceID == "" {
			td.TraceID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", td.TraceID)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerTraceID, td.TraceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// correlationID accepts a client supplied id only if it is short and made of
// header-safe characters, so it can be logged and echoed verbatim.
func correlationID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxCorrelationIDLen {
		return ""
	}
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return ""
		}
	}
	return raw
}
