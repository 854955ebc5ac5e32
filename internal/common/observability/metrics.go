package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability owns the meter and tracer providers. A nil *Observability is
// valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	jobCounter   otelmetric.Int64Counter
	jobDuration  otelmetric.Float64Histogram
	callCounter  otelmetric.Int64Counter
	callDuration otelmetric.Float64Histogram
}

// New sets up the Prometheus metric reader and, when jaegerEndpoint is set,
// a batching Jaeger trace exporter.
func New(serviceName, jaegerEndpoint string) *Observability {
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
		o.initInstruments(o.meterProvider.Meter(serviceName))
	}

	if jaegerEndpoint != "" {
		traceExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			o.tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(traceExporter),
				sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
			)
			otel.SetTracerProvider(o.tracerProvider)
			o.tracer = o.tracerProvider.Tracer(serviceName)
		}
	}

	return o
}

func (o *Observability) initInstruments(meter otelmetric.Meter) {
	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.callCounter, _ = meter.Int64Counter(
		"collaborator.calls",
		otelmetric.WithDescription("Calls made to external collaborators"),
	)
	o.callDuration, _ = meter.Float64Histogram(
		"collaborator.duration",
		otelmetric.WithDescription("Latency of external collaborator calls"),
		otelmetric.WithUnit("ms"),
	)
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// StartSpan starts a span on the configured tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// TrackCall wraps one collaborator call in a span and records its count and
// latency under collaborator/operation.
func (o *Observability) TrackCall(ctx context.Context, collaborator, operation string, fn func(ctx context.Context) error) error {
	ctx, span := o.StartSpan(ctx, collaborator+"."+operation,
		attribute.String("collaborator", collaborator),
		attribute.String("operation", operation),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if o != nil && o.callCounter != nil {
		attrs := otelmetric.WithAttributes(
			attribute.String("collaborator", collaborator),
			attribute.String("operation", operation),
			attribute.String("status", status),
		)
		o.callCounter.Add(ctx, 1, attrs)
		o.callDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	}
	return err
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
