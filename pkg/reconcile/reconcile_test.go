package reconcile

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/instrument"
)

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	n, err := dom.NewDocument().Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", markup, err)
	}
	return n
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	s, err := dom.Render(n)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	return s
}

func ops(patches []Patch) []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.Op.String()
	}
	return out
}

func TestCompareAndReplace(t *testing.T) {
	tests := []struct {
		name    string
		live    string
		fresh   string
		want    string
		wantOps []string
	}{
		{
			name:  "identical",
			live:  `<div class="app"><p>a</p><p>b</p></div>`,
			fresh: `<div class="app"><p>a</p><p>b</p></div>`,
			want:  `<div class="app"><p>a</p><p>b</p></div>`,
		},
		{
			name:    "text change",
			live:    `<div><p>a</p><p>b</p></div>`,
			fresh:   `<div><p>a</p><p>c</p></div>`,
			want:    `<div><p>a</p><p>c</p></div>`,
			wantOps: []string{"SetText"},
		},
		{
			name:    "tag mismatch replaces child",
			live:    `<div><p>a</p><span>b</span></div>`,
			fresh:   `<div><p>a</p><b>b</b></div>`,
			want:    `<div><p>a</p><b>b</b></div>`,
			wantOps: []string{"ReplaceNode"},
		},
		{
			name:    "tail append",
			live:    `<ul><li>a</li></ul>`,
			fresh:   `<ul><li>a</li><li>b</li><li>c</li></ul>`,
			want:    `<ul><li>a</li><li>b</li><li>c</li></ul>`,
			wantOps: []string{"InsertNode", "InsertNode"},
		},
		{
			name:    "tail removal",
			live:    `<ul><li>a</li><li>b</li><li>c</li></ul>`,
			fresh:   `<ul><li>a</li></ul>`,
			want:    `<ul><li>a</li></ul>`,
			wantOps: []string{"RemoveNode", "RemoveNode"},
		},
		{
			name:    "attribute sync",
			live:    `<div id="x" class="old" title="t"></div>`,
			fresh:   `<div id="x" class="new" data-k="1"></div>`,
			want:    `<div id="x" class="new" data-k="1"></div>`,
			wantOps: []string{"SetAttr", "SetAttr", "RemoveAttr"},
		},
		{
			name:    "leaf gains text",
			live:    `<div><p></p></div>`,
			fresh:   `<div><p>hello</p></div>`,
			want:    `<div><p>hello</p></div>`,
			wantOps: []string{"InsertNode"},
		},
		{
			name:    "leaf loses text",
			live:    `<div><p>hello</p></div>`,
			fresh:   `<div><p></p></div>`,
			want:    `<div><p></p></div>`,
			wantOps: []string{"SetText"},
		},
		{
			name:    "text becomes element",
			live:    `<div><p>hello</p></div>`,
			fresh:   `<div><p><b>x</b></p></div>`,
			want:    `<div><p><b>x</b></p></div>`,
			wantOps: []string{"RemoveNode", "InsertNode"},
		},
		{
			name:    "container loses its elements",
			live:    `<p><b>x</b></p>`,
			fresh:   `<p>plain</p>`,
			want:    `<p></p>`,
			wantOps: []string{"RemoveNode"},
		},
		{
			name:    "root tag kept",
			live:    `<div><p>a</p></div>`,
			fresh:   `<section><p>b</p></section>`,
			want:    `<div><p>b</p></div>`,
			wantOps: []string{"SetText"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := parse(t, tt.live)
			patches := CompareAndReplace(parse(t, tt.fresh), live)

			if got := render(t, live); got != tt.want {
				t.Errorf("live = %s, want %s", got, tt.want)
			}
			if diff := cmp.Diff(tt.wantOps, ops(patches), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNilOperands(t *testing.T) {
	live := parse(t, `<div>x</div>`)
	if got := CompareAndReplace(nil, live); len(got) != 0 {
		t.Errorf("nil fresh produced %d patches", len(got))
	}
	if got := CompareAndReplace(live, nil); len(got) != 0 {
		t.Errorf("nil live produced %d patches", len(got))
	}
	if got := CompareAndReplace(live, live); len(got) != 0 {
		t.Errorf("self comparison produced %d patches", len(got))
	}
}

func TestIdempotent(t *testing.T) {
	const fresh = `<table><tbody><tr key="0"><td>Ann</td></tr><tr key="1"><td>Bob</td></tr></tbody></table>`
	live := parse(t, `<table><tbody><tr key="0"><td>Al</td></tr></tbody></table>`)

	first := CompareAndReplace(parse(t, fresh), live)
	if len(first) == 0 {
		t.Fatal("first pass produced no patches")
	}
	if second := CompareAndReplace(parse(t, fresh), live); len(second) != 0 {
		t.Errorf("second pass produced %v, want none", ops(second))
	}
	if got := render(t, live); got != fresh {
		t.Errorf("live = %s, want %s", got, fresh)
	}
}

func TestRootIdentityAndUntouchedNodes(t *testing.T) {
	live := parse(t, `<form><input name="name"><div>old</div></form>`)
	input := live.FirstChild
	summary := input.NextSibling

	CompareAndReplace(parse(t, `<form><input name="name"><div>new</div></form>`), live)

	if live.FirstChild != input {
		t.Error("unchanged input was replaced")
	}
	if input.NextSibling != summary {
		t.Error("patched element was replaced instead of updated")
	}
	if dom.Text(summary) != "new" {
		t.Errorf("summary text = %q", dom.Text(summary))
	}
}

func TestPatchPaths(t *testing.T) {
	live := parse(t, `<div><p>a</p><ul><li>x</li></ul></div>`)
	patches := CompareAndReplace(parse(t, `<div><p>b</p><ul><li>y</li><li>z</li></ul></div>`), live)

	type got struct {
		Op    string
		Path  []int
		Index int
	}
	var gotPatches []got
	for _, p := range patches {
		gotPatches = append(gotPatches, got{p.Op.String(), p.Path, p.Index})
	}
	want := []got{
		{"SetText", []int{0}, 0},
		{"SetText", []int{1, 0}, 0},
		{"InsertNode", []int{1}, 1},
	}
	if diff := cmp.Diff(want, gotPatches); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestRemovePathsApplyInOrder(t *testing.T) {
	live := parse(t, `<ul><li>a</li><li>b</li><li>c</li><li>d</li></ul>`)
	patches := CompareAndReplace(parse(t, `<ul><li>a</li></ul>`), live)

	var paths [][]int
	for _, p := range patches {
		paths = append(paths, p.Path)
	}
	if diff := cmp.Diff([][]int{{1}, {1}, {1}}, paths); diff != "" {
		t.Errorf("remove paths mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcilerDriftAndMetrics(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()
	r := New(WithLogger(logger), WithMetrics(instrument.NewMetrics(instrument.WithRegistry(reg))))

	live := parse(t, `<div><span>a</span><p>b</p></div>`)
	res := r.Reconcile(parse(t, `<div><em>a</em><p>c</p></div>`), live)

	if res.Drift != 1 {
		t.Errorf("Drift = %d, want 1", res.Drift)
	}
	if diff := cmp.Diff(map[string]int{"ReplaceNode": 1, "SetText": 1}, Count(res.Patches)); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "E003") {
		t.Errorf("drift warning not logged with code:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "reconciled") {
		t.Errorf("summary not logged:\n%s", logs.String())
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "inplace_shape_drift_total" {
			found = mf.GetMetric()[0].GetCounter().GetValue() == 1
		}
	}
	if !found {
		t.Error("drift counter not recorded")
	}
}

func TestPatchJSON(t *testing.T) {
	live := parse(t, `<ul><li>a</li></ul>`)
	patches := CompareAndReplace(parse(t, `<ul><li>a</li><li>b</li></ul>`), live)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(patches); err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := `[{"op":"InsertNode","path":[],"index":1,"html":"<li>b</li>"}]` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("json = %s, want %s", got, want)
	}

	var decoded []Patch
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Op != PatchInsertNode || decoded[0].Index != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if n := decoded[0].Node; n == nil || n.Data != "li" || dom.Text(n) != "b" {
		t.Errorf("decoded node = %v, want <li>b</li>", n)
	}

	if err := json.Unmarshal([]byte(`{"op":"Bogus"}`), &Patch{}); err == nil {
		t.Error("unknown op should fail to decode")
	}
}

func TestParseOp(t *testing.T) {
	for op := PatchSetText; op <= PatchReplaceNode; op++ {
		got, ok := ParseOp(op.String())
		if !ok || got != op {
			t.Errorf("ParseOp(%q) = %v, %v", op.String(), got, ok)
		}
	}
	if _, ok := ParseOp("Unknown"); ok {
		t.Error("ParseOp(Unknown) should fail")
	}
}

func TestPatchOpString(t *testing.T) {
	if PatchOp(0).String() != "Unknown" {
		t.Error("zero op should be Unknown")
	}
	if PatchReplaceNode.String() != "ReplaceNode" {
		t.Error("ReplaceNode name mismatch")
	}
}
