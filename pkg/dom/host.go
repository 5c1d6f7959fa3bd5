package dom

import "golang.org/x/net/html"

// Event is delivered to handlers bound with Bind.
type Event struct {
	// Type is the event name, e.g. "change" or "click".
	Type string

	// Target is the node the event was dispatched to.
	Target *html.Node

	// CurrentTarget is the node whose handler is running.
	CurrentTarget *html.Node

	// Value is the target's current input value.
	Value string
}

// Handler reacts to an event.
type Handler func(Event)

// Host is the structural environment the runtime mounts into.
type Host interface {
	// Parse turns markup into a detached tree with a single root element.
	Parse(markup string) (*html.Node, error)

	// Slots returns the child slot markers under root in document order.
	Slots(root *html.Node) []*html.Node

	// Replace puts replacement where old is. old ends up detached.
	Replace(old, replacement *html.Node)

	// Bind registers h for events of the given kind on node.
	Bind(node *html.Node, event string, h Handler)
}

// Releaser is implemented by hosts that keep per-node state and can drop it
// for a discarded subtree.
type Releaser interface {
	Release(root *html.Node)
}
