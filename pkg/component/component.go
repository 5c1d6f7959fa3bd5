package component

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// Component is a unit of UI that renders to markup, mounts into a host and
// reconciles itself when the state it renders changes.
//
// Variants implement Render and embed *Frame for everything else.
type Component interface {
	// Render returns the template of the component. It must be a pure
	// function of the component's state and call Attach once for every
	// child, in document order.
	Render() *vdom.VNode

	// Markup evaluates Render and serialises the result.
	Markup() (string, error)

	// Attach appends child and returns the placeholder to inline where the
	// child appears.
	Attach(child Component) *vdom.VNode

	// Mount builds the live structure, records its root and returns it.
	Mount(env *Env) (*html.Node, error)

	// OnExternalChange reconciles the live structure with a fresh render.
	OnExternalChange(key string, oldValue, newValue any) error

	// Element returns the live root, or nil before Mount.
	Element() *html.Node

	// Name identifies the variant in logs, spans and patch streams.
	Name() string

	frame() *Frame
}

// HandlerProvider is implemented by variants that bind handlers to their
// root in code rather than in the template.
type HandlerProvider interface {
	Handlers() map[string]dom.Handler
}
