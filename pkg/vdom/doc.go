// Package vdom provides the structured markup builder used by inplace
// components.
//
// A component's template is an ordinary Go expression built from element
// factories instead of an interpolated string:
//
//	Form(
//	    f.Attach(widgets.NewTextInput(widgets.Props{Name: "name"})),
//	    Br(),
//	    Div(Textf("%s %s", form.String("name"), form.String("city"))),
//	)
//
// The tree is serialised to markup by package render and parsed back into
// the live host structure by package dom. It is a build-time description
// only: it is never kept between renders and never diffed.
//
// # Core Types
//
// VNode is an element or a text node. Props holds attributes and
// event handlers. Attr and EventHandler are used to build Props.
//
// # Placeholders
//
// Placeholder returns the marker element emitted in place of an attached
// child component. The marker renders as
//
//	<span class="child_placeholder"></span>
//
// and is replaced by the child's own live structure when the parent mounts.
//
// # Events
//
// OnChange, OnClick and On store handlers in Props under "on"-prefixed
// keys. They are never rendered as attributes; a component's root element
// handlers are bound to its live root when it mounts.
package vdom
