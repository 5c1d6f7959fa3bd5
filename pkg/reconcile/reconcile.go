package reconcile

import (
	"log/slog"
	"slices"
	"time"

	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/instrument"
)

// Result is the outcome of one reconciliation.
type Result struct {
	Patches  []Patch
	Drift    int // Number of positions where the structures diverged
	Duration time.Duration
}

// Reconciler patches live trees and reports what it did.
type Reconciler struct {
	logger  *slog.Logger
	metrics *instrument.Metrics
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger for drift warnings and patch summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *instrument.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CompareAndReplace patches live toward fresh and returns the applied
// patches. Nodes taken from fresh are moved into live; fresh should be
// discarded afterwards.
func CompareAndReplace(fresh, live *html.Node) []Patch {
	return New().Reconcile(fresh, live).Patches
}

// Reconcile patches live toward fresh. It never fails: divergence is
// counted in Result.Drift and logged as a warning.
func (r *Reconciler) Reconcile(fresh, live *html.Node) Result {
	start := time.Now()
	w := &walker{logger: r.logger}
	w.root(fresh, live)

	res := Result{Patches: w.patches, Drift: w.drift, Duration: time.Since(start)}

	r.metrics.RecordReconcile(res.Duration)
	r.metrics.RecordDrift(res.Drift)
	for _, p := range res.Patches {
		r.metrics.RecordPatch(p.Op.String())
	}
	r.logger.Debug("reconciled",
		"patches", len(res.Patches),
		"drift", res.Drift,
		"duration", res.Duration,
	)
	return res
}

type walker struct {
	logger  *slog.Logger
	patches []Patch
	drift   int
}

func (w *walker) emit(p Patch) {
	w.patches = append(w.patches, p)
}

func (w *walker) diverged(path []int, format string, args ...any) {
	w.drift++
	err := errors.New(errors.CodeShapeDrift).WithDetailf(format, args...)
	w.logger.Warn("structural shape drift", "path", path, "error", err)
}

// root reconciles the root pair. The live root is kept even when the fresh
// root has a different tag.
func (w *walker) root(fresh, live *html.Node) {
	if fresh == nil || live == nil || fresh == live {
		return
	}
	if live.Type != html.ElementNode || fresh.Type != html.ElementNode {
		w.diverged(nil, "root is %s, fresh root is %s", kind(live), kind(fresh))
		return
	}
	if live.Data != fresh.Data {
		w.diverged(nil, "root <%s> kept, fresh root is <%s>", live.Data, fresh.Data)
	}
	w.element(fresh, live, nil)
}

// node reconciles a non-root pair. path is the element path of live, or of
// its parent when live is not an element; index is live's position among
// its parent's child nodes.
func (w *walker) node(fresh, live *html.Node, path []int, index int) {
	if fresh == nil || live == nil {
		return
	}
	switch live.Type {
	case html.TextNode:
		if fresh.Type != html.TextNode {
			w.replace(fresh, live, path, index)
			return
		}
		if live.Data != fresh.Data {
			live.Data = fresh.Data
			w.emit(Patch{Op: PatchSetText, Path: path, Index: index, Value: fresh.Data})
		}
	case html.ElementNode:
		if fresh.Type != html.ElementNode || fresh.Data != live.Data {
			w.replace(fresh, live, path, 0)
			return
		}
		w.element(fresh, live, path)
	}
}

// element reconciles two elements with the same tag.
func (w *walker) element(fresh, live *html.Node, path []int) {
	w.attrs(fresh, live, path)

	liveKids := dom.ElementChildren(live)
	freshKids := dom.ElementChildren(fresh)

	switch {
	case len(liveKids) > 0:
		for i, lc := range liveKids {
			if i >= len(freshKids) {
				// Earlier removals have shifted lc to index len(freshKids).
				live.RemoveChild(lc)
				w.emit(Patch{Op: PatchRemoveNode, Path: append(slices.Clone(path), len(freshKids)), Old: lc})
				continue
			}
			w.node(freshKids[i], lc, append(slices.Clone(path), i), 0)
		}
		for i := len(liveKids); i < len(freshKids); i++ {
			fc := freshKids[i]
			fc.Parent.RemoveChild(fc)
			live.AppendChild(fc)
			w.emit(Patch{Op: PatchInsertNode, Path: slices.Clone(path), Index: i, Node: fc})
		}
	case len(freshKids) > 0:
		// A leaf became a container; take the fresh children wholesale.
		w.diverged(path, "<%s> gained %d element children", live.Data, len(freshKids))
		w.adoptChildren(fresh, live, path)
	default:
		w.leaf(fresh, live, path)
	}
}

// leaf reconciles the first children of two elements without element
// children.
func (w *walker) leaf(fresh, live *html.Node, path []int) {
	lf, ff := live.FirstChild, fresh.FirstChild
	switch {
	case lf == nil && ff == nil:
	case lf == nil:
		fresh.RemoveChild(ff)
		live.AppendChild(ff)
		w.emit(Patch{Op: PatchInsertNode, Path: slices.Clone(path), Node: ff})
	case ff == nil:
		if lf.Type == html.TextNode && lf.Data != "" {
			lf.Data = ""
			w.emit(Patch{Op: PatchSetText, Path: slices.Clone(path)})
		}
	default:
		w.node(ff, lf, slices.Clone(path), 0)
	}
}

// adoptChildren replaces every child of live with the children of fresh.
func (w *walker) adoptChildren(fresh, live *html.Node, path []int) {
	for c := live.FirstChild; c != nil; c = live.FirstChild {
		live.RemoveChild(c)
		w.emit(Patch{Op: PatchRemoveNode, Path: slices.Clone(path), Old: c})
	}
	i := 0
	for c := fresh.FirstChild; c != nil; c = fresh.FirstChild {
		fresh.RemoveChild(c)
		live.AppendChild(c)
		w.emit(Patch{Op: PatchInsertNode, Path: slices.Clone(path), Index: i, Node: c})
		i++
	}
}

// replace puts fresh in live's position.
func (w *walker) replace(fresh, live *html.Node, path []int, index int) {
	parent := live.Parent
	if parent == nil {
		return
	}
	w.diverged(path, "%s replaced by %s", kind(live), kind(fresh))
	if fresh.Parent != nil {
		fresh.Parent.RemoveChild(fresh)
	}
	parent.InsertBefore(fresh, live)
	parent.RemoveChild(live)
	w.emit(Patch{Op: PatchReplaceNode, Path: slices.Clone(path), Index: index, Node: fresh, Old: live})
}

// attrs makes live's attributes equal to fresh's. Existing attributes keep
// their position; new ones are appended in fresh order.
func (w *walker) attrs(fresh, live *html.Node, path []int) {
	for _, fa := range fresh.Attr {
		i := attrIndex(live, fa)
		switch {
		case i < 0:
			live.Attr = append(live.Attr, fa)
		case live.Attr[i].Val != fa.Val:
			live.Attr[i].Val = fa.Val
		default:
			continue
		}
		w.emit(Patch{Op: PatchSetAttr, Path: slices.Clone(path), Key: fa.Key, Value: fa.Val})
	}

	kept := live.Attr[:0]
	for _, la := range live.Attr {
		if attrIndex(fresh, la) < 0 {
			w.emit(Patch{Op: PatchRemoveAttr, Path: slices.Clone(path), Key: la.Key})
			continue
		}
		kept = append(kept, la)
	}
	live.Attr = kept
}

func attrIndex(n *html.Node, a html.Attribute) int {
	for i, b := range n.Attr {
		if b.Namespace == a.Namespace && b.Key == a.Key {
			return i
		}
	}
	return -1
}

func kind(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.TextNode:
		return "text"
	case html.CommentNode:
		return "comment"
	default:
		return "node"
	}
}
