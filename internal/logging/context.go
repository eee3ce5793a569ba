package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	// Domain context
	if domainID := DomainIDFromContext(ctx); domainID != "" {
		fields = append(fields, zap.String("domain.id", domainID))
	}

	return fields
}

type domainCtxKey struct{}

// WithDomainID adds the active domain id to context so every log line in a
// request carries it.
func WithDomainID(ctx context.Context, domainID string) context.Context {
	return context.WithValue(ctx, domainCtxKey{}, domainID)
}

// DomainIDFromContext extracts the domain id from context.
func DomainIDFromContext(ctx context.Context) string {
	if d, ok := ctx.Value(domainCtxKey{}).(string); ok {
		return d
	}
	return ""
}
