package vdom

import (
	"sort"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <input>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is a node of a component template.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes
	Text     string   // For KindText
}

// Props holds attributes and event handlers.
type Props map[string]any

// IsInteractive returns true if this node declares event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if isEventKey(key) {
			return true
		}
	}
	return false
}

// Events returns the declared handlers keyed by event name without the
// "on" prefix (e.g., "click"), in name order.
func (v *VNode) Events() []EventHandler {
	if v == nil || v.Kind != KindElement {
		return nil
	}
	var out []EventHandler
	for key, h := range v.Props {
		if isEventKey(key) && h != nil {
			out = append(out, EventHandler{Event: key, Handler: h})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event < out[j].Event })
	return out
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "onchange", etc.
	Handler any    // Function to call
}

// Name returns the event name without the "on" prefix.
func (e EventHandler) Name() string {
	return strings.TrimPrefix(strings.ToLower(e.Event), "on")
}

// isEventKey reports whether a prop key names an event handler.
// Case-insensitive so onclick, onClick and ONCLICK are all treated alike.
func isEventKey(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}
