package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the correlation ids attached to one API request.
type TraceData struct {
	TraceID   string
	SpanID    string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the non-empty ids as logger key/value pairs.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	fields := make([]interface{}, 0, 6)
	if td.TraceID != "" {
		fields = append(fields, "trace_id", td.TraceID)
	}
	if td.SpanID != "" {
		fields = append(fields, "span_id", td.SpanID)
	}
	if td.RequestID != "" {
		fields = append(fields, "request_id", td.RequestID)
	}
	return fields
}
