package widgets

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/inplace/pkg/component"
	"github.com/vango-dev/inplace/pkg/reactive"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// Table renders {columns, rows} where columns is an array of strings and
// rows an array of records. Each cell shows the row field named by the
// lower-cased column.
type Table struct {
	*component.Frame
	data *reactive.Object
}

// NewTable creates a table over data.
func NewTable(data *reactive.Object) *Table {
	t := &Table{data: data}
	t.Frame = component.NewFrame(t)
	return t
}

// Columns returns the column titles.
func (t *Table) Columns() []string {
	if cols, ok := t.data.Get("columns").(*reactive.Array); ok {
		return cols.Strings()
	}
	return nil
}

// Rows returns the row records. Rows that are not records are skipped.
func (t *Table) Rows() []*reactive.Object {
	arr, ok := t.data.Get("rows").(*reactive.Array)
	if !ok {
		return nil
	}
	rows := make([]*reactive.Object, 0, arr.Len())
	arr.Each(func(_ int, v any) {
		if row, ok := v.(*reactive.Object); ok {
			rows = append(rows, row)
		}
	})
	return rows
}

func (t *Table) Render() *vdom.VNode {
	columns := t.Columns()
	return vdom.Table(
		vdom.Thead(vdom.Tr(vdom.Range(columns, func(col string, i int) *vdom.VNode {
			return vdom.Th(vdom.Key(i), capitalize(col))
		}))),
		vdom.Tbody(vdom.Range(t.Rows(), func(row *reactive.Object, i int) *vdom.VNode {
			return vdom.Tr(vdom.Key(i), vdom.Range(columns, func(col string, _ int) *vdom.VNode {
				return vdom.Td(row.String(strings.ToLower(col)))
			}))
		})),
	)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
