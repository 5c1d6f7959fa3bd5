package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// Document implements Host over golang.org/x/net/html trees.
// It is not safe for concurrent use.
type Document struct {
	slotTag   string
	slotClass string

	listeners map[*html.Node]map[string][]Handler
	values    map[*html.Node]string
}

// Option configures a Document.
type Option func(*Document)

// WithSlotClass changes the class that marks child slots.
func WithSlotClass(class string) Option {
	return func(d *Document) {
		if class != "" {
			d.slotClass = class
		}
	}
}

// NewDocument creates an empty host.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		slotTag:   vdom.PlaceholderTag,
		slotClass: vdom.PlaceholderClass,
		listeners: make(map[*html.Node]map[string][]Handler),
		values:    make(map[*html.Node]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SlotClass returns the class that marks child slots.
func (d *Document) SlotClass() string {
	return d.slotClass
}

// fragmentContext is the element markup fragments are parsed inside.
func fragmentContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// Parse parses markup as a body fragment and returns its single root element.
// Whitespace around the root is ignored. Anything else at the top level,
// including a second element, is malformed.
func (d *Document) Parse(markup string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext())
	if err != nil {
		return nil, errors.New(errors.CodeMalformedMarkup).Wrap(err)
	}

	var root *html.Node
	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
			continue
		case n.Type == html.CommentNode:
			continue
		case n.Type == html.ElementNode && root == nil:
			root = n
		default:
			return nil, errors.New(errors.CodeMalformedMarkup).
				WithDetailf("unexpected top-level %s in %q", describe(n), truncate(markup, 60))
		}
	}
	if root == nil {
		return nil, errors.New(errors.CodeMalformedMarkup).
			WithDetailf("no root element in %q", truncate(markup, 60))
	}
	return root, nil
}

// Slots returns the slot markers under root (root included) in document
// order. Markers are not searched for nested markers.
func (d *Document) Slots(root *html.Node) []*html.Node {
	var slots []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if d.IsSlot(n) {
			slots = append(slots, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return slots
}

// IsSlot reports whether n is a child slot marker.
func (d *Document) IsSlot(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.Data != d.slotTag {
		return false
	}
	return HasClass(n, d.slotClass)
}

// Replace puts replacement in old's position and detaches old.
// replacement is detached from its current parent first.
// When old has no parent, only replacement is detached.
func (d *Document) Replace(old, replacement *html.Node) {
	if old == nil || replacement == nil || old == replacement {
		return
	}
	if replacement.Parent != nil {
		replacement.Parent.RemoveChild(replacement)
	}
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// Bind registers h for events of the given kind on node.
func (d *Document) Bind(node *html.Node, event string, h Handler) {
	if node == nil || h == nil {
		return
	}
	byEvent, ok := d.listeners[node]
	if !ok {
		byEvent = make(map[string][]Handler)
		d.listeners[node] = byEvent
	}
	byEvent[event] = append(byEvent[event], h)
}

// Listeners returns the number of handlers bound to node for event.
func (d *Document) Listeners(node *html.Node, event string) int {
	return len(d.listeners[node][event])
}

// Release forgets handlers and values of every node in the subtree.
func (d *Document) Release(root *html.Node) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		delete(d.listeners, n)
		delete(d.values, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
}

// Dispatch delivers an event to target and then to each ancestor.
// It returns an E005 error when no node on the path handles the event.
func (d *Document) Dispatch(target *html.Node, event string) error {
	if target == nil {
		return errors.New(errors.CodeUnknownEvent).WithDetailf("%s dispatched to nil node", event)
	}
	handled := false
	for n := target; n != nil; n = n.Parent {
		handlers := d.listeners[n][event]
		for _, h := range handlers {
			handled = true
			h(Event{Type: event, Target: target, CurrentTarget: n, Value: d.Value(target)})
		}
	}
	if !handled {
		return errors.New(errors.CodeUnknownEvent).WithDetailf("%s on %s", event, describe(target))
	}
	return nil
}

// SetValue stores the input value of node and dispatches the given events,
// the way typing into a field updates its value before "input" and
// "change" fire. The value is not written to the markup.
func (d *Document) SetValue(node *html.Node, value string, events ...string) error {
	if node == nil {
		return errors.New(errors.CodeUnknownEvent).WithDetail("value set on nil node")
	}
	d.values[node] = value
	for _, event := range events {
		if err := d.Dispatch(node, event); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the input value of node. Nodes without a stored value fall
// back to their value attribute.
func (d *Document) Value(node *html.Node) string {
	if v, ok := d.values[node]; ok {
		return v
	}
	return Attr(node, "value")
}

// Render serialises node and its subtree to markup.
func (d *Document) Render(node *html.Node) (string, error) {
	return Render(node)
}

// Render serialises node and its subtree to markup.
func Render(node *html.Node) (string, error) {
	if node == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// describe returns a short human-readable name for n.
func describe(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.TextNode:
		return fmt.Sprintf("text %q", truncate(n.Data, 20))
	default:
		return fmt.Sprintf("node type %d", n.Type)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
