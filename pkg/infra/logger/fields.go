// Package logger carries structured logging fields through a context so
// every log line of one query shares its identifiers.
package logger

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
)

type contextKey int

const (
	loggerFieldsKey contextKey = iota
	contextLoggerKey
)

// Field names attached by this package.
const (
	FieldQueryID    = "query_id"
	FieldCustomerID = "customer_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

type loggerFields struct {
	fields map[string]any
}

func (lf *loggerFields) clone() *loggerFields {
	out := &loggerFields{fields: make(map[string]any, len(lf.fields)+1)}
	for k, v := range lf.fields {
		out.fields[k] = v
	}
	return out
}

func getLoggerFields(ctx context.Context) *loggerFields {
	if lf, ok := ctx.Value(loggerFieldsKey).(*loggerFields); ok {
		return lf
	}
	return &loggerFields{fields: map[string]any{}}
}

// WithField returns a context whose logger includes key=value.
func WithField(ctx context.Context, key string, value any) context.Context {
	lf := getLoggerFields(ctx).clone()
	lf.fields[key] = value
	return context.WithValue(ctx, loggerFieldsKey, lf)
}

// WithQueryID adds query_id to the context logger fields.
func WithQueryID(ctx context.Context, queryID string) context.Context {
	if queryID == "" {
		return ctx
	}
	return WithField(ctx, FieldQueryID, queryID)
}

// WithCustomerID adds customer_id. An empty id is kept since it is a
// valid, if unusual, query.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	return WithField(ctx, FieldCustomerID, customerID)
}

// WithSpanContext adds trace_id and span_id from the active span, if any.
func WithSpanContext(ctx context.Context) context.Context {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ctx
	}
	ctx = WithField(ctx, FieldTraceID, sc.TraceID().String())
	return WithField(ctx, FieldSpanID, sc.SpanID().String())
}

// GetContextFields returns the context fields as a key-value slice,
// ordered by key.
func GetContextFields(ctx context.Context) []any {
	lf := getLoggerFields(ctx)
	if len(lf.fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(lf.fields))
	for k := range lf.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, lf.fields[k])
	}
	return out
}

// GetLogger returns the logger stored with WithLogger, or the global
// logger carrying the context fields.
func GetLogger(ctx context.Context) core.Logger {
	if l, ok := ctx.Value(contextLoggerKey).(core.Logger); ok {
		return l
	}
	base := logger.Global()
	fields := GetContextFields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// WithLogger stores a pre-configured logger in the context.
func WithLogger(ctx context.Context, l core.Logger) context.Context {
	return context.WithValue(ctx, contextLoggerKey, l)
}
