package vdom

// PlaceholderClass is the default class carried by child slot markers.
const PlaceholderClass = "child_placeholder"

// PlaceholderTag is the element used for child slot markers.
const PlaceholderTag = "span"

// Placeholder returns a fresh child slot marker carrying class, or
// PlaceholderClass when class is empty.
func Placeholder(class string) *VNode {
	if class == "" {
		class = PlaceholderClass
	}
	return createElement(PlaceholderTag, []any{Class(class)})
}
