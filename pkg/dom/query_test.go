package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func TestQueries(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<form id="f">`+
		`<input name="name" class="a b">`+
		`<div id="summary">Ann <b>Boston</b></div>`+
		`<input name="city">`+
		`</form>`)

	if got := ByID(root, "summary"); got == nil || got.Data != "div" {
		t.Fatalf("ByID(summary) = %v", got)
	}
	if ByID(root, "missing") != nil {
		t.Error("ByID(missing) should be nil")
	}
	if got := ByName(root, "city"); got == nil || Attr(got, "name") != "city" {
		t.Errorf("ByName(city) = %v", got)
	}
	if got := len(ByTag(root, "input")); got != 2 {
		t.Errorf("len(ByTag(input)) = %d, want 2", got)
	}
	if got := Text(ByID(root, "summary")); got != "Ann Boston" {
		t.Errorf("Text = %q, want %q", got, "Ann Boston")
	}
	if !HasClass(ByName(root, "name"), "b") || HasClass(ByName(root, "name"), "c") {
		t.Error("HasClass mismatch")
	}
	if got := len(ElementChildren(root)); got != 3 {
		t.Errorf("len(ElementChildren) = %d, want 3", got)
	}
	if Text(nil) != "" || Attr(nil, "id") != "" || HasAttr(nil, "id") {
		t.Error("nil node helpers should return zero values")
	}
}

func TestPathResolve(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<div><section>text<p><b>a</b></p><p><b>b</b><b>c</b></p></section></div>`)
	target := ByTag(root, "b")[2]

	path, ok := Path(root, target)
	if !ok {
		t.Fatal("Path failed")
	}
	if diff := cmp.Diff([]int{0, 1, 1}, path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if Resolve(root, path) != target {
		t.Error("Resolve did not return the target")
	}

	if p, ok := Path(root, root); !ok || len(p) != 0 {
		t.Errorf("Path(root, root) = %v, %v", p, ok)
	}
	if Resolve(root, []int{5}) != nil {
		t.Error("Resolve past the tree should be nil")
	}

	other := mustParse(t, d, `<div></div>`)
	if _, ok := Path(root, other); ok {
		t.Error("Path to a node outside root should fail")
	}
	textNode := ByTag(root, "section")[0].FirstChild
	if textNode.Type != html.TextNode {
		t.Fatalf("expected leading text node, got %v", textNode.Type)
	}
	if _, ok := Path(root, textNode); ok {
		t.Error("Path to a text node should fail")
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(`<!DOCTYPE html><html><body><div id="main"></div></body></html>`)
	if err != nil {
		t.Fatalf("ParseDocument error: %v", err)
	}
	if ByID(doc, "main") == nil {
		t.Error("mount point not found")
	}
}
