package component

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/reconcile"
	"github.com/vango-dev/inplace/pkg/render"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// Env is the rendering context injected into Mount. Components keep the
// Env they were mounted with and reuse it for reconciliation.
type Env struct {
	// Host parses markup and owns the live structure.
	Host dom.Host

	// Logger receives change notifications at Debug and drift or slot
	// mismatches at Warn.
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *instrument.Metrics

	// Tracer creates spans around mounts and reconciliations.
	Tracer trace.Tracer

	// Renderer produces markup from templates.
	Renderer *render.Renderer

	// Reconciler patches live structures.
	Reconciler *reconcile.Reconciler

	// StrictSlots makes a placeholder/child count mismatch fail the mount.
	// When false the extra placeholders or children are ignored.
	StrictSlots bool

	// OnPatch is called after every reconciliation with the component that
	// received the change.
	OnPatch func(source Component, result reconcile.Result)

	ctx context.Context
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *instrument.Metrics) EnvOption {
	return func(e *Env) {
		e.Metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) EnvOption {
	return func(e *Env) {
		e.Tracer = t
	}
}

// WithRenderer sets the markup renderer.
func WithRenderer(r *render.Renderer) EnvOption {
	return func(e *Env) {
		e.Renderer = r
	}
}

// WithStrictSlots sets slot mismatch handling.
func WithStrictSlots(strict bool) EnvOption {
	return func(e *Env) {
		e.StrictSlots = strict
	}
}

// WithOnPatch sets the reconciliation hook.
func WithOnPatch(fn func(source Component, result reconcile.Result)) EnvOption {
	return func(e *Env) {
		e.OnPatch = fn
	}
}

// WithContext sets the parent context of the spans the Env creates.
func WithContext(ctx context.Context) EnvOption {
	return func(e *Env) {
		e.ctx = ctx
	}
}

// NewEnv creates an Env over host. Slots are strict unless configured
// otherwise.
func NewEnv(host dom.Host, opts ...EnvOption) *Env {
	e := &Env{
		Host:        host,
		StrictSlots: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Tracer == nil {
		e.Tracer = instrument.Tracer("")
	}
	if e.Renderer == nil {
		e.Renderer = render.NewRenderer(render.RendererConfig{})
	}
	if e.Reconciler == nil {
		e.Reconciler = reconcile.New(
			reconcile.WithLogger(e.Logger),
			reconcile.WithMetrics(e.Metrics),
		)
	}
	return e
}

// Context returns the parent context for spans.
func (e *Env) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) reconciler() *reconcile.Reconciler {
	if e.Reconciler == nil {
		e.Reconciler = reconcile.New(
			reconcile.WithLogger(e.logger()),
			reconcile.WithMetrics(e.Metrics),
		)
	}
	return e.Reconciler
}

func (e *Env) renderer() *render.Renderer {
	if e == nil || e.Renderer == nil {
		return defaultRenderer
	}
	return e.Renderer
}

// slotClass returns the class of placeholders understood by the host.
func (e *Env) slotClass() string {
	if e == nil {
		return vdom.PlaceholderClass
	}
	if s, ok := e.Host.(interface{ SlotClass() string }); ok {
		return s.SlotClass()
	}
	return vdom.PlaceholderClass
}

var defaultRenderer = render.NewRenderer(render.RendererConfig{})
