package widgets

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/vango-dev/inplace/pkg/component"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/reactive"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// DefaultFields are the fields of a user record, in display order.
var DefaultFields = []string{"name", "city", "state", "age"}

// Form edits an observable record: one text input per field, a button that
// logs the record and a summary line showing the current values.
type Form struct {
	*component.Frame
	data   *reactive.Object
	fields []string
	logger *slog.Logger
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithFields sets the edited fields.
func WithFields(fields ...string) FormOption {
	return func(f *Form) {
		f.fields = fields
	}
}

// WithLogger sets the logger the button writes to.
func WithLogger(logger *slog.Logger) FormOption {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewForm creates a form over data.
func NewForm(data *reactive.Object, opts ...FormOption) *Form {
	f := &Form{data: data, fields: DefaultFields, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	f.Frame = component.NewFrame(f)
	return f
}

// Summary returns the field values separated by spaces.
func (f *Form) Summary() string {
	values := make([]string, len(f.fields))
	for i, field := range f.fields {
		values[i] = f.data.String(field)
	}
	return strings.Join(values, " ")
}

func (f *Form) Render() *vdom.VNode {
	args := make([]any, 0, 2*len(f.fields)+3)
	for _, field := range f.fields {
		field := field
		args = append(args,
			f.Attach(NewTextInput(Props{
				Name: field,
				OnChange: func(e dom.Event) {
					f.data.Set(field, e.Value)
				},
			})),
			vdom.Br(),
		)
	}
	args = append(args,
		f.Attach(NewButtonInput(Props{
			Value:   "Click Me",
			OnClick: func(dom.Event) { f.logRecord() },
		})),
		vdom.Br(),
		vdom.Div(f.Summary()),
	)
	return vdom.Form(args...)
}

func (f *Form) logRecord() {
	data, err := json.Marshal(f.data)
	if err != nil {
		f.logger.Error("form encode failed", "error", err)
		return
	}
	f.logger.Info("form", "data", string(data))
}
