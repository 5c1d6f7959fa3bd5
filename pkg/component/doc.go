// Package component implements the component lifecycle: markup production,
// placeholder-based child composition, mounting into a host and in-place
// reconciliation when external state changes.
//
// A variant embeds *Frame and supplies Render:
//
//	type Greeting struct {
//	    *component.Frame
//	    name string
//	}
//
//	func NewGreeting(name string) *Greeting {
//	    g := &Greeting{name: name}
//	    g.Frame = component.NewFrame(g)
//	    return g
//	}
//
//	func (g *Greeting) Render() *vdom.VNode {
//	    return vdom.Div(vdom.Textf("Hello, %s", g.name))
//	}
//
// Children are composed by inlining the node returned by Attach where the
// child should appear. Mount replaces those placeholders with the mounted
// children in document order.
//
// Handlers declared on the root element of a template (vdom.OnClick,
// vdom.OnChange, ...) are bound to the mounted root. Handlers on inner
// elements are not bound; give the element its own component instead.
package component
