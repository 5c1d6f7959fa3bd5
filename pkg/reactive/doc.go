// Package reactive provides the observable data layer for inplace.
//
// A plain data graph made of maps and slices is turned into a parallel tree of
// observable nodes by Wrap. Every write through an observable node, at any
// depth, calls one shared Listener with the changed key and the old and new
// values:
//
//	state := reactive.Wrap(map[string]any{
//	    "form": map[string]any{"name": "", "city": ""},
//	}, func(key string, oldValue, newValue any) {
//	    fmt.Println(key, "changed from", oldValue, "to", newValue)
//	}).(*reactive.Object)
//
//	form := state.Get("form").(*reactive.Object)
//	form.Set("name", "Ann") // prints: name changed from  to Ann
//
// # Node Kinds
//
// Object wraps map[string]any (and map[string]string); Array wraps []any
// ([]string, []map[string]any and []map[string]string are accepted as
// conveniences). Everything else is a leaf and is stored as-is.
//
// # Idempotence
//
// Wrapping a value that is already observable re-binds it, and its subtree, to
// the given listener instead of wrapping it a second time. A write therefore
// produces exactly one notification no matter how often the graph was wrapped.
// The same applies to container values stored with Set: they are wrapped (or
// re-bound) before they are stored.
//
// # Concurrency
//
// Observable nodes are not safe for concurrent use. The runtime is
// single-threaded: a write, its notification and the resulting re-render all
// complete before Set returns.
package reactive
