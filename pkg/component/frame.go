package component

import (
	"context"
	"reflect"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/reconcile"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// Frame holds the state every component shares: its children and its live
// root. It is embedded by variants and is not safe for concurrent use.
type Frame struct {
	self     Component
	name     string
	children []Component
	template *vdom.VNode
	root     *html.Node
	env      *Env
	patches  []reconcile.Patch
}

// NewFrame creates the frame of self.
func NewFrame(self Component) *Frame {
	return &Frame{self: self, name: typeName(self)}
}

func typeName(c Component) string {
	t := reflect.TypeOf(c)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "component"
	}
	return t.Name()
}

func (f *Frame) frame() *Frame { return f }

// Name returns the variant's type name.
func (f *Frame) Name() string { return f.name }

// Element returns the live root, or nil before Mount.
func (f *Frame) Element() *html.Node { return f.root }

// Children returns the children attached by the last render.
func (f *Frame) Children() []Component {
	out := make([]Component, len(f.children))
	copy(out, f.children)
	return out
}

// Patches returns the patches applied by the last OnExternalChange.
func (f *Frame) Patches() []reconcile.Patch { return f.patches }

// Env returns the Env the component was mounted with.
func (f *Frame) Env() *Env { return f.env }

// Attach appends child and returns its placeholder.
func (f *Frame) Attach(child Component) *vdom.VNode {
	if child == nil {
		return nil
	}
	f.children = append(f.children, child)
	return vdom.Placeholder(f.env.slotClass())
}

// Markup resets the child list, evaluates Render and serialises the
// template. The template must have a single element root.
func (f *Frame) Markup() (string, error) {
	f.children = nil
	tmpl := f.self.Render()
	f.template = tmpl
	if tmpl == nil || tmpl.Kind != vdom.KindElement {
		return "", errors.New(errors.CodeMalformedMarkup).
			WithComponent(f.name).
			WithDetail("Render must return a single element")
	}
	markup, err := f.env.renderer().RenderToString(tmpl)
	if err != nil {
		return "", errors.New(errors.CodeMalformedMarkup).WithComponent(f.name).Wrap(err)
	}
	return markup, nil
}

// Mount builds the live structure, records its root and returns it.
// Children are mounted depth first and replace their placeholders.
func (f *Frame) Mount(env *Env) (*html.Node, error) {
	if env == nil {
		return nil, errors.New(errors.CodeNoHost).WithComponent(f.name)
	}
	node, err := f.mount(env.Context(), env)
	if err != nil {
		return nil, err
	}
	f.root = node
	return node, nil
}

func (f *Frame) mount(ctx context.Context, env *Env) (*html.Node, error) {
	if env == nil || env.Host == nil {
		return nil, errors.New(errors.CodeNoHost).WithComponent(f.name)
	}
	f.env = env

	start := time.Now()
	ctx, span := instrument.StartSpan(ctx, env.Tracer, "component.mount",
		attribute.String("component", f.name))
	node, err := f.build(ctx, env)
	env.Metrics.RecordMount(f.name, time.Since(start), err)
	instrument.EndSpan(span, err)
	return node, err
}

// build renders, parses and composes a structure without recording it.
func (f *Frame) build(ctx context.Context, env *Env) (*html.Node, error) {
	markup, err := f.Markup()
	if err != nil {
		return nil, err
	}
	node, err := env.Host.Parse(markup)
	if err != nil {
		return nil, errors.FromError(err, errors.CodeMalformedMarkup).WithComponent(f.name)
	}

	slots := env.Host.Slots(node)
	children := f.children
	if len(slots) != len(children) {
		env.Metrics.RecordSlotMismatch()
		mismatch := errors.New(errors.CodeSlotMismatch).
			WithComponent(f.name).
			WithDetailf("%d placeholders for %d children", len(slots), len(children))
		if env.StrictSlots {
			return nil, mismatch
		}
		env.logger().Warn("slot mismatch", "component", f.name, "error", mismatch)
		n := min(len(slots), len(children))
		slots, children = slots[:n], children[:n]
	}

	for i, child := range children {
		cf := child.frame()
		if cf == nil {
			return nil, errors.New(errors.CodeSlotMismatch).
				WithComponent(f.name).
				WithDetailf("child %d (%T) has no frame; construct it with NewFrame", i, child)
		}
		childNode, err := cf.mount(ctx, env)
		if err != nil {
			return nil, err
		}
		cf.root = childNode
		env.Host.Replace(slots[i], childNode)
	}

	f.bind(env, node)
	return node, nil
}

// bind attaches the root handlers of the template and of HandlerProvider.
func (f *Frame) bind(env *Env, node *html.Node) {
	for _, eh := range f.template.Events() {
		h, ok := toHandler(eh.Handler)
		if !ok {
			env.logger().Warn("unsupported handler type",
				"component", f.name,
				"event", eh.Name(),
				"type", reflect.TypeOf(eh.Handler).String(),
			)
			continue
		}
		env.Host.Bind(node, eh.Name(), instrumented(env, eh.Name(), h))
	}

	if p, ok := f.self.(HandlerProvider); ok {
		handlers := p.Handlers()
		events := make([]string, 0, len(handlers))
		for event := range handlers {
			events = append(events, event)
		}
		sort.Strings(events)
		for _, event := range events {
			if h := handlers[event]; h != nil {
				env.Host.Bind(node, event, instrumented(env, event, h))
			}
		}
	}
}

func toHandler(v any) (dom.Handler, bool) {
	switch h := v.(type) {
	case dom.Handler:
		return h, true
	case func(dom.Event):
		return h, true
	case func():
		return func(dom.Event) { h() }, true
	default:
		return nil, false
	}
}

func instrumented(env *Env, event string, h dom.Handler) dom.Handler {
	return func(e dom.Event) {
		env.Metrics.RecordEvent(event, nil)
		h(e)
	}
}

// OnExternalChange re-renders the component and patches its live structure
// toward the fresh one. The live root is kept; descendants are patched in
// place and child components are re-pointed at their live counterparts.
func (f *Frame) OnExternalChange(key string, oldValue, newValue any) error {
	if f.root == nil || f.env == nil {
		return errors.New(errors.CodeNotMounted).
			WithComponent(f.name).
			WithDetailf("change of %q", key)
	}
	env := f.env
	env.Metrics.RecordNotification()
	env.logger().Debug("data changed",
		"component", f.name,
		"key", key,
		"old", oldValue,
		"new", newValue,
	)

	ctx, span := instrument.StartSpan(env.Context(), env.Tracer, "component.reconcile",
		attribute.String("component", f.name),
		attribute.String("key", key),
	)
	fresh, err := f.build(ctx, env)
	if err != nil {
		instrument.EndSpan(span, err)
		return err
	}

	adopted := f.descendants(fresh, nil)
	res := env.reconciler().Reconcile(fresh, f.root)
	for _, a := range adopted {
		a.frame.root = dom.Resolve(f.root, a.path)
	}
	f.release(env, fresh, res.Patches)
	f.patches = res.Patches

	span.SetAttributes(
		attribute.Int("patches", len(res.Patches)),
		attribute.Int("drift", res.Drift),
	)
	instrument.EndSpan(span, nil)

	if env.OnPatch != nil {
		env.OnPatch(f.self, res)
	}
	return nil
}

type adoption struct {
	frame *Frame
	path  []int
}

// descendants records the position of every mounted descendant's root
// within fresh, before the reconciler moves any node.
func (f *Frame) descendants(fresh *html.Node, out []adoption) []adoption {
	for _, child := range f.children {
		cf := child.frame()
		if cf == nil {
			continue
		}
		if path, ok := dom.Path(fresh, cf.root); ok {
			out = append(out, adoption{frame: cf, path: path})
		}
		out = cf.descendants(fresh, out)
	}
	return out
}

// release frees host bookkeeping of the discarded fresh tree and of the
// live nodes the reconciler dropped.
func (f *Frame) release(env *Env, fresh *html.Node, patches []reconcile.Patch) {
	r, ok := env.Host.(dom.Releaser)
	if !ok {
		return
	}
	r.Release(fresh)
	for _, p := range patches {
		if p.Old != nil {
			r.Release(p.Old)
		}
	}
}
