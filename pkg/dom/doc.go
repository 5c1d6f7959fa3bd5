// Package dom is the structural host inplace components mount into.
//
// The runtime consumes four host services, captured by the Host interface:
// parse markup into a navigable fragment, find the child slot markers in it,
// replace one node with another, and bind interaction handlers to a node.
// Document implements Host over golang.org/x/net/html node trees, keeping
// handlers and input values in side tables the way a browser keeps listeners
// and the value property off the markup.
//
//	doc := dom.NewDocument()
//	root, err := doc.Parse(`<form><input name="city"></form>`)
//	doc.Bind(root.FirstChild, "change", func(e dom.Event) { ... })
//	doc.SetValue(root.FirstChild, "Boston", "change") // runs the handler
//
// Dispatch is synchronous. Events bubble from the target to the root of the
// tree it is attached to.
package dom
