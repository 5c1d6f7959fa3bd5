// Package reconcile patches a live node tree toward a freshly mounted one.
//
// There is no intermediate diff representation. The fresh tree is walked
// against the live tree node by node and the live tree is mutated in place:
//
//   - text nodes take the fresh text when it differs
//   - element children correspond by position; a differing tag replaces
//     the live child
//   - children added or removed at the tail are inserted or removed
//   - attributes of every visited element pair are synchronised
//
// The live root itself is never replaced, so references to it and the
// handlers bound to it survive every reconciliation. Every mutation is
// reported as a Patch.
package reconcile
