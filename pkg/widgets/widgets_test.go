package widgets

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/pkg/component"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/reactive"
)

func testEnv() (*component.Env, *dom.Document) {
	doc := dom.NewDocument()
	return component.NewEnv(doc, component.WithTracer(instrument.NoopTracer())), doc
}

func TestInputMarkup(t *testing.T) {
	tests := []struct {
		name string
		comp component.Component
		want string
	}{
		{
			name: "text input",
			comp: NewTextInput(Props{Name: "city"}),
			want: `<input name="city">`,
		},
		{
			name: "text input with id and class",
			comp: NewTextInput(Props{Name: "city", ID: "c", ClassName: "wide", OnChange: func(dom.Event) {}}),
			want: `<input class="wide" id="c" name="city">`,
		},
		{
			name: "button",
			comp: NewButtonInput(Props{Value: "Click Me", OnClick: func(dom.Event) {}}),
			want: `<input type="button" value="Click Me">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.comp.Markup()
			if err != nil {
				t.Fatalf("Markup error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Markup = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInputHandlers(t *testing.T) {
	env, doc := testEnv()
	var changed, clicked []string

	in := NewTextInput(Props{Name: "name", OnChange: func(e dom.Event) { changed = append(changed, e.Value) }})
	inRoot, err := in.Mount(env)
	if err != nil {
		t.Fatalf("Mount error: %v", err)
	}
	btn := NewButtonInput(Props{Value: "Go", OnClick: func(e dom.Event) { clicked = append(clicked, e.Value) }})
	btnRoot, err := btn.Mount(env)
	if err != nil {
		t.Fatalf("Mount error: %v", err)
	}

	if err := doc.SetValue(inRoot, "Ann", "change"); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}
	if err := doc.Dispatch(btnRoot, "click"); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if diff := cmp.Diff([]string{"Ann"}, changed); diff != "" {
		t.Errorf("change values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Go"}, clicked); diff != "" {
		t.Errorf("click values mismatch (-want +got):\n%s", diff)
	}
	if doc.Listeners(inRoot, "click") != 0 {
		t.Error("text input without OnClick bound a click handler")
	}
	if in.Props().Name != "name" || btn.Props().Value != "Go" {
		t.Error("Props accessor mismatch")
	}
}

func tableData() *reactive.Object {
	return reactive.Wrap(map[string]any{
		"columns": []string{"name", "City"},
		"rows": []map[string]string{
			{"name": "Steve", "city": "Madison"},
			{"name": "Mike", "city": "Wichita"},
		},
	}, nil).(*reactive.Object)
}

func TestTableMarkup(t *testing.T) {
	got, err := NewTable(tableData()).Markup()
	if err != nil {
		t.Fatalf("Markup error: %v", err)
	}
	want := `<table><thead><tr><th key="0">Name</th><th key="1">City</th></tr></thead>` +
		`<tbody><tr key="0"><td>Steve</td><td>Madison</td></tr>` +
		`<tr key="1"><td>Mike</td><td>Wichita</td></tr></tbody></table>`
	if got != want {
		t.Errorf("Markup =\n%s\nwant\n%s", got, want)
	}
}

func TestTableToleratesMissingData(t *testing.T) {
	tbl := NewTable(reactive.NewObject(nil))
	got, err := tbl.Markup()
	if err != nil {
		t.Fatalf("Markup error: %v", err)
	}
	if got != `<table><thead><tr></tr></thead><tbody></tbody></table>` {
		t.Errorf("Markup = %s", got)
	}
	if tbl.Columns() != nil || tbl.Rows() != nil {
		t.Error("missing columns/rows should be nil")
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{"": "", "name": "Name", "Age": "Age", "état": "État"}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func formData() *reactive.Object {
	return reactive.Wrap(map[string]any{"name": "", "city": "", "state": "", "age": ""}, nil).(*reactive.Object)
}

func TestFormMarkup(t *testing.T) {
	f := NewForm(formData())
	got, err := f.Markup()
	if err != nil {
		t.Fatalf("Markup error: %v", err)
	}
	slot := `<span class="child_placeholder"></span><br>`
	want := `<form>` + strings.Repeat(slot, 5) + `<div>   </div></form>`
	if got != want {
		t.Errorf("Markup =\n%s\nwant\n%s", got, want)
	}
	if len(f.Children()) != 5 {
		t.Errorf("children = %d, want 5", len(f.Children()))
	}
}

func TestFormWritesFields(t *testing.T) {
	env, doc := testEnv()
	data := formData()
	var logs bytes.Buffer
	f := NewForm(data, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	root, err := f.Mount(env)
	if err != nil {
		t.Fatalf("Mount error: %v", err)
	}

	if err := doc.SetValue(dom.ByName(root, "city"), "Boston", "change"); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}
	if got := data.String("city"); got != "Boston" {
		t.Errorf("city = %q, want Boston", got)
	}
	if got := f.Summary(); got != " Boston  " {
		t.Errorf("Summary = %q", got)
	}

	button := dom.Find(root, func(n *html.Node) bool { return dom.Attr(n, "type") == "button" })
	if err := doc.Dispatch(button, "click"); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if !strings.Contains(logs.String(), `Boston`) {
		t.Errorf("button did not log the form:\n%s", logs.String())
	}
}

func TestFormCustomFields(t *testing.T) {
	data := reactive.Wrap(map[string]any{"email": "a@b.c"}, nil).(*reactive.Object)
	f := NewForm(data, WithFields("email"))
	if f.Summary() != "a@b.c" {
		t.Errorf("Summary = %q", f.Summary())
	}
	if _, err := f.Markup(); err != nil {
		t.Fatalf("Markup error: %v", err)
	}
	if len(f.Children()) != 2 {
		t.Errorf("children = %d, want 2", len(f.Children()))
	}
}
