package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/internal/errors"
)

func mustParse(t *testing.T, d *Document, markup string) *html.Node {
	t.Helper()
	root, err := d.Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", markup, err)
	}
	return root
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		wantTag string
	}{
		{"single element", `<div class="app"></div>`, "div"},
		{"surrounding whitespace", "\n   <form></form>\n  ", "form"},
		{"void element", `<input name="city">`, "input"},
		{"table", `<table><thead><tr><th>Name</th></tr></thead></table>`, "table"},
		{"comment ignored", `<!-- x --><p>hi</p>`, "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, NewDocument(), tt.markup)
			if root.Type != html.ElementNode || root.Data != tt.wantTag {
				t.Errorf("root = %v <%s>, want <%s>", root.Type, root.Data, tt.wantTag)
			}
			if root.Parent != nil {
				t.Error("parsed root should be detached")
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"empty", ""},
		{"whitespace only", "   \n"},
		{"bare text", "hello"},
		{"two roots", "<div></div><p></p>"},
		{"text after root", "<div></div>trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocument().Parse(tt.markup)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, errors.CodeMalformedMarkup) {
				t.Errorf("error code = %q, want %q", errors.CodeOf(err), errors.CodeMalformedMarkup)
			}
		})
	}
}

func TestSlots(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<form>`+
		`<span class="child_placeholder" id="a"></span>`+
		`<div><span class="x child_placeholder" id="b"></span></div>`+
		`<span class="other" id="c"></span>`+
		`<div class="child_placeholder" id="d"></div>`+
		`<span class="child_placeholder" id="e"></span>`+
		`</form>`)

	var ids []string
	for _, s := range d.Slots(root) {
		ids = append(ids, Attr(s, "id"))
	}
	if diff := cmp.Diff([]string{"a", "b", "e"}, ids); diff != "" {
		t.Errorf("slot ids mismatch (-want +got):\n%s", diff)
	}
	if d.Slots(nil) != nil {
		t.Error("Slots(nil) should be nil")
	}
}

func TestSlotsCustomClass(t *testing.T) {
	d := NewDocument(WithSlotClass("slot"))
	root := mustParse(t, d, `<div><span class="slot"></span><span class="child_placeholder"></span></div>`)
	if got := len(d.Slots(root)); got != 1 {
		t.Errorf("len(Slots) = %d, want 1", got)
	}
	if d.SlotClass() != "slot" {
		t.Errorf("SlotClass() = %q", d.SlotClass())
	}
}

func TestReplace(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<div><b></b><span class="child_placeholder"></span><i></i></div>`)
	slot := d.Slots(root)[0]
	child := mustParse(t, d, `<p>child</p>`)

	d.Replace(slot, child)

	got, err := Render(root)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got != `<div><b></b><p>child</p><i></i></div>` {
		t.Errorf("after Replace = %s", got)
	}
	if slot.Parent != nil {
		t.Error("replaced node should be detached")
	}

	// Moving an attached node detaches it from its old parent.
	other := mustParse(t, d, `<ul><li>x</li></ul>`)
	li := other.FirstChild
	d.Replace(child, li)
	if other.FirstChild != nil {
		t.Error("moved node still attached to old parent")
	}
	if root.FirstChild.NextSibling != li {
		t.Error("moved node not in replaced position")
	}
}

func TestBindAndDispatch(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<form><input name="name"></form>`)
	input := root.FirstChild

	var events []Event
	d.Bind(input, "change", func(e Event) { events = append(events, e) })
	d.Bind(root, "change", func(e Event) { events = append(events, e) })

	if err := d.SetValue(input, "Ann", "change"); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (target then bubbled)", len(events))
	}
	if events[0].CurrentTarget != input || events[1].CurrentTarget != root {
		t.Error("events did not bubble from target to root")
	}
	for _, e := range events {
		if e.Target != input || e.Value != "Ann" || e.Type != "change" {
			t.Errorf("event = %+v", e)
		}
	}
	if d.Value(input) != "Ann" {
		t.Errorf("Value = %q, want Ann", d.Value(input))
	}
	if HasAttr(input, "value") {
		t.Error("SetValue must not write the value attribute")
	}
	if d.Listeners(input, "change") != 1 {
		t.Errorf("Listeners = %d, want 1", d.Listeners(input, "change"))
	}
}

func TestDispatchUnhandled(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<div><button>x</button></div>`)

	err := d.Dispatch(root.FirstChild, "click")
	if !errors.Is(err, errors.CodeUnknownEvent) {
		t.Errorf("Dispatch error = %v, want E005", err)
	}
	if err := d.Dispatch(nil, "click"); !errors.Is(err, errors.CodeUnknownEvent) {
		t.Errorf("Dispatch(nil) error = %v, want E005", err)
	}
	if err := d.SetValue(nil, "x"); err == nil {
		t.Error("SetValue(nil) should fail")
	}
}

func TestValueFallsBackToAttribute(t *testing.T) {
	d := NewDocument()
	button := mustParse(t, d, `<input type="button" value="Click Me">`)
	if got := d.Value(button); got != "Click Me" {
		t.Errorf("Value = %q, want Click Me", got)
	}
}

func TestRelease(t *testing.T) {
	d := NewDocument()
	root := mustParse(t, d, `<div><input></div>`)
	input := root.FirstChild
	d.Bind(input, "change", func(Event) {})
	d.SetValue(input, "v")

	d.Release(root)

	if d.Listeners(input, "change") != 0 {
		t.Error("Release kept listeners")
	}
	if d.Value(input) != "" {
		t.Error("Release kept values")
	}
}

func TestBindIgnoresNil(t *testing.T) {
	d := NewDocument()
	d.Bind(nil, "click", func(Event) {})
	root := mustParse(t, d, `<div></div>`)
	d.Bind(root, "click", nil)
	if d.Listeners(root, "click") != 0 {
		t.Error("nil handler should not be bound")
	}
}

func TestRenderIndent(t *testing.T) {
	root := mustParse(t, NewDocument(), `<div class="app"><ul><li>a</li><li>b</li></ul>  <p>x<b>y</b></p><br></div>`)

	got, err := RenderIndent(root, "  ")
	if err != nil {
		t.Fatalf("RenderIndent error: %v", err)
	}
	want := `<div class="app">
  <ul>
    <li>a</li>
    <li>b</li>
  </ul>
  <p>
    x
    <b>y</b>
  </p>
  <br/>
</div>
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderIndent mismatch (-want +got):\n%s", diff)
	}
	if s, _ := RenderIndent(nil, "  "); s != "" {
		t.Errorf("RenderIndent(nil) = %q", s)
	}
}
