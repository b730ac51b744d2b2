// Package render memoises deterministic widget renderers behind a fragment store.
package render

import (
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/debemdeboas/linkpanel/internal/cache"
	"github.com/debemdeboas/linkpanel/internal/util"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// Renderer turns props into markup. It must be pure: same props, same bytes.
type Renderer[P any] func(props P) (template.HTML, error)

// PropsMapper reduces the raw page context to the props that identify a render.
// A nil result means there is nothing to render.
type PropsMapper[C, P any] func(raw C) (*P, error)

// Cached is a Renderer wrapped with a namespace, a props mapper and a store.
type Cached[C, P any] struct {
	namespace string
	render    Renderer[P]
	mapProps  PropsMapper[C, P]
	store     cache.Store

	singleFlight bool
	group        singleflight.Group

	inst  *instruments
	attrs metric.MeasurementOption
}

// Wrap returns the cached form of render. Props are keyed under namespace.
func Wrap[C, P any](render Renderer[P], namespace string, mapProps PropsMapper[C, P], store cache.Store, opts ...Option) *Cached[C, P] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Cached[C, P]{
		namespace:    namespace,
		render:       render,
		mapProps:     mapProps,
		store:        store,
		singleFlight: o.singleFlight,
		inst:         newInstruments(o.meterProvider, o.tracerProvider),
		attrs:        metric.WithAttributes(attribute.String("widget.namespace", namespace)),
	}
}

func (c *Cached[C, P]) Namespace() string {
	return c.namespace
}

// Key returns the store key for raw, or false when raw maps to nothing.
func (c *Cached[C, P]) Key(raw C) (string, bool, error) {
	props, err := c.mapProps(raw)
	if err != nil {
		return "", false, fmt.Errorf("%s: map props: %w", c.namespace, err)
	}
	if props == nil {
		return "", false, nil
	}
	key, err := util.CacheKey(c.namespace, props)
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// Render maps raw to props and serves the markup from the store, rendering on a miss.
// Mapper and renderer errors are returned as is and leave the store untouched.
func (c *Cached[C, P]) Render(ctx context.Context, raw C) (template.HTML, error) {
	ctx, span := c.inst.tracer.Start(ctx, "render "+c.namespace,
		trace.WithAttributes(attribute.String("widget.namespace", c.namespace)))
	defer span.End()

	props, err := c.mapProps(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "map props")
		return "", fmt.Errorf("%s: map props: %w", c.namespace, err)
	}
	if props == nil {
		c.inst.skips.Add(ctx, 1, c.attrs)
		span.SetAttributes(attribute.String("cache.result", "skip"))
		return "", nil
	}

	key, err := util.CacheKey(c.namespace, props)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache key")
		return "", err
	}
	span.SetAttributes(attribute.String("cache.key", key))

	if html, ok := c.lookup(ctx, key); ok {
		c.record(ctx, span, resultHit)
		return html, nil
	}

	if !c.singleFlight {
		html, err := c.renderAndStore(ctx, key, *props)
		c.record(ctx, span, resultMiss)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render")
			return "", err
		}
		return html, nil
	}

	// Only the leader's closure runs; joiners see executed == false.
	executed := false
	v, err, shared := c.group.Do(key, func() (any, error) {
		executed = true
		// Another caller may have stored the key between our lookup and Do.
		if html, ok := c.lookup(ctx, key); ok {
			return flight{html: html}, nil
		}
		html, err := c.renderAndStore(ctx, key, *props)
		return flight{html: html, rendered: true}, err
	})

	f, _ := v.(flight)
	switch {
	case !executed && err == nil:
		renderLogger.Debug().Str("key", key).Msg("Joined in-flight render")
		c.record(ctx, span, resultShared)
	case f.rendered || err != nil:
		c.record(ctx, span, resultMiss)
	default:
		c.record(ctx, span, resultHit)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render")
		return "", err
	}
	if shared && executed {
		renderLogger.Debug().Str("key", key).Msg("Render shared with waiting callers")
	}
	return f.html, nil
}

type flight struct {
	html     template.HTML
	rendered bool
}

const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultShared = "shared"
)

// record counts one outcome for one caller. Shared results count as hits.
func (c *Cached[C, P]) record(ctx context.Context, span trace.Span, result string) {
	if result == resultMiss {
		c.inst.misses.Add(ctx, 1, c.attrs)
	} else {
		c.inst.hits.Add(ctx, 1, c.attrs)
	}
	span.SetAttributes(attribute.String("cache.result", result))
}

// Warm renders raw in the background so later builds hit the store.
// The returned channel yields the render error, if any, and is then closed.
func (c *Cached[C, P]) Warm(ctx context.Context, raw C) <-chan error {
	done := make(chan error, 1)
	renderLogger.Debug().Str("namespace", c.namespace).Msg("Starting cache warming")
	go func() {
		defer close(done)
		_, err := c.Render(context.WithoutCancel(ctx), raw)
		if err != nil {
			renderLogger.Warn().Err(err).Str("namespace", c.namespace).Msg("Cache warming failed")
		} else {
			renderLogger.Debug().Str("namespace", c.namespace).Msg("Cache warming completed")
		}
		done <- err
	}()
	return done
}

func (c *Cached[C, P]) lookup(ctx context.Context, key string) (template.HTML, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		// Store failures degrade to a miss.
		renderLogger.Warn().Err(err).Str("key", key).Msg("Fragment lookup failed, treating as miss")
		return "", false
	}
	if ok {
		renderLogger.Debug().Str("key", key).Msg("Cache hit for rendered fragment")
	}
	return template.HTML(value), ok
}

func (c *Cached[C, P]) renderAndStore(ctx context.Context, key string, props P) (template.HTML, error) {
	renderLogger.Debug().Str("key", key).Msg("Cache miss for rendered fragment")

	html, err := c.render(props)
	if err != nil {
		c.inst.errors.Add(ctx, 1, c.attrs)
		return "", fmt.Errorf("%s: render: %w", c.namespace, err)
	}

	if err := c.store.Set(ctx, key, []byte(html)); err != nil {
		renderLogger.Warn().Err(err).Str("key", key).Msg("Failed to store rendered fragment")
	}
	return html, nil
}
