package widgets

import (
	"github.com/vango-dev/inplace/pkg/component"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/vdom"
)

// Props configure the leaf inputs.
type Props struct {
	Name      string
	ID        string
	ClassName string
	Value     string
	OnChange  dom.Handler
	OnClick   dom.Handler
}

// common returns the attributes and handlers shared by every input.
func (p Props) common() []any {
	args := []any{
		vdom.AttrIf(p.ID != "", vdom.ID(p.ID)),
		vdom.AttrIf(p.ClassName != "", vdom.Class(p.ClassName)),
	}
	if p.OnChange != nil {
		args = append(args, vdom.OnChange(p.OnChange))
	}
	if p.OnClick != nil {
		args = append(args, vdom.OnClick(p.OnClick))
	}
	return args
}

// TextInput is a named text field. Its typed value lives in the host, not
// in the markup, so re-renders do not reset it.
type TextInput struct {
	*component.Frame
	props Props
}

// NewTextInput creates a text field.
func NewTextInput(props Props) *TextInput {
	t := &TextInput{props: props}
	t.Frame = component.NewFrame(t)
	return t
}

// Props returns the input's props.
func (t *TextInput) Props() Props { return t.props }

func (t *TextInput) Render() *vdom.VNode {
	args := append([]any{vdom.Name(t.props.Name)}, t.props.common()...)
	return vdom.Input(args...)
}

// ButtonInput is an <input type="button"> labelled with Props.Value.
type ButtonInput struct {
	*component.Frame
	props Props
}

// NewButtonInput creates a button.
func NewButtonInput(props Props) *ButtonInput {
	b := &ButtonInput{props: props}
	b.Frame = component.NewFrame(b)
	return b
}

// Props returns the button's props.
func (b *ButtonInput) Props() Props { return b.props }

func (b *ButtonInput) Render() *vdom.VNode {
	args := append([]any{
		vdom.Type("button"),
		vdom.Value(b.props.Value),
		vdom.AttrIf(b.props.Name != "", vdom.Name(b.props.Name)),
	}, b.props.common()...)
	return vdom.Input(args...)
}
