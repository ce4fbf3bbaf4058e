package cryptolight

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rbaliyan/cryptolight"

// telemetry holds the tracer and instruments used by Service.
type telemetry struct {
	tracer   trace.Tracer
	ops      metric.Int64Counter
	failures metric.Int64Counter
	sizes    metric.Int64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)
	ops, err := meter.Int64Counter("cryptolight.operations",
		metric.WithDescription("Number of key, encrypt and decrypt operations."),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("cryptolight.failures",
		metric.WithDescription("Number of failed operations by error kind."),
	)
	if err != nil {
		return nil, err
	}
	sizes, err := meter.Int64Histogram("cryptolight.envelope.size",
		metric.WithDescription("Size of produced and consumed envelopes."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &telemetry{
		tracer:   tp.Tracer(instrumentationName),
		ops:      ops,
		failures: failures,
		sizes:    sizes,
	}, nil
}

func (t *telemetry) start(ctx context.Context, op string, prim Primitive) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "cryptolight."+op,
		trace.WithAttributes(
			attribute.String("cryptolight.primitive", prim.Name()),
		),
	)
	t.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	return ctx, span
}

// end closes span. kind is the internal error classification; it is recorded
// on the span and the failure counter only, never returned to callers.
func (t *telemetry) end(ctx context.Context, span trace.Span, op string, err error) {
	if err != nil {
		kind := errorKind(err)
		span.SetAttributes(attribute.String("cryptolight.error.kind", kind))
		span.SetStatus(codes.Error, kind)
		t.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", kind),
		))
	}
	span.End()
}

func (t *telemetry) recordSize(ctx context.Context, op string, n int) {
	t.sizes.Record(ctx, int64(n), metric.WithAttributes(attribute.String("op", op)))
}

// errorKind maps an error to a stable low-cardinality label.
func errorKind(err error) string {
	switch {
	case IsEntropyUnavailable(err):
		return "entropy_unavailable"
	case IsPersistence(err):
		return "persistence"
	case IsKeyNotFound(err):
		return "key_not_found"
	case IsCorruptKey(err):
		return "corrupt_key"
	case IsInvalidKeyLength(err):
		return "invalid_key_length"
	case IsMalformedEnvelope(err):
		return "malformed_envelope"
	case IsInvalidPadding(err):
		return "invalid_padding"
	case IsStoreDestroyed(err):
		return "store_destroyed"
	default:
		return "other"
	}
}
