package render

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	singleFlight   bool
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

func defaultOptions() options {
	return options{singleFlight: true}
}

type Option func(*options)

// WithSingleFlight collapses concurrent misses on one key into a single render.
func WithSingleFlight(enabled bool) Option {
	return func(o *options) {
		o.singleFlight = enabled
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

const instrumentationName = "github.com/debemdeboas/linkpanel/internal/render"

// Counter names reported through the meter provider.
const (
	MetricHits         = "widget.cache.hits"
	MetricMisses       = "widget.cache.misses"
	MetricSkips        = "widget.cache.skips"
	MetricRenderErrors = "widget.render.errors"
)

type instruments struct {
	tracer trace.Tracer

	hits   metric.Int64Counter
	misses metric.Int64Counter
	skips  metric.Int64Counter
	errors metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider, tp trace.TracerProvider) *instruments {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	meter := mp.Meter(instrumentationName)
	inst := &instruments{tracer: tp.Tracer(instrumentationName)}

	var err error
	inst.hits, err = meter.Int64Counter(MetricHits,
		metric.WithDescription("Fragments served from the store"))
	if err != nil {
		otel.Handle(err)
	}
	inst.misses, err = meter.Int64Counter(MetricMisses,
		metric.WithDescription("Fragments rendered because the store had no entry"))
	if err != nil {
		otel.Handle(err)
	}
	inst.skips, err = meter.Int64Counter(MetricSkips,
		metric.WithDescription("Invocations with nothing to render"))
	if err != nil {
		otel.Handle(err)
	}
	inst.errors, err = meter.Int64Counter(MetricRenderErrors,
		metric.WithDescription("Renderer failures"))
	if err != nil {
		otel.Handle(err)
	}

	return inst
}
