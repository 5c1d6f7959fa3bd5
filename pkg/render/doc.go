// Package render serialises vdom trees into the markup string a component
// produces on every render.
//
// The output is the markup contract consumed by the structural host: a single
// root element with escaped text and attribute values. Event handlers are
// never written; they are bound on the live structure after parsing.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	markup, err := renderer.RenderToString(node)
//
// To stream markup to a writer:
//
//	err := renderer.RenderToWriter(w, node)
//
// # Pretty Printing
//
// RendererConfig.Pretty indents block elements. Elements whose children are
// all text stay on one line, so leaf text content is identical in both modes.
//
// # Security
//
// Text and attribute values are always escaped. There is no raw HTML node.
package render
