package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/philoatlas-backend/internal/domain/content"
	"github.com/yungbote/philoatlas-backend/internal/observability"
)

// unmatchedRoute labels requests that hit no registered route, keeping the
// route label bounded under path scanning.
const unmatchedRoute = "unmatched"

// Metrics records API counts and latency per route. Paths listed in skip
// (typically /healthcheck and /metrics) are not recorded.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		m.ObserveAPI(method, route, status, time.Since(start))
		if t, ok := requestContentType(c); ok {
			m.ObserveContentTypeRequest(string(t), method)
		}
	}
}

// requestContentType reads the content type a request is scoped to, from the
// :type path segment or the ?type= filter. Unknown values are not reported.
func requestContentType(c *gin.Context) (content.Type, bool) {
	raw := c.Param("type")
	if raw == "" {
		raw = c.Query("type")
	}
	if raw == "" {
		return "", false
	}
	return content.ParseType(raw)
}
