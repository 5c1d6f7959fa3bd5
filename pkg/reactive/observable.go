package reactive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// Listener is called after every write to an observable node.
// key is the property name for objects and the decimal index for arrays.
type Listener func(key string, oldValue, newValue any)

// Observable is implemented by *Object and *Array.
type Observable interface {
	// Len returns the number of properties or elements.
	Len() int

	bind(l Listener)
	unwrap() any
}

// Wrap returns value as an observable graph whose writes notify l.
//
// Maps become *Object and slices become *Array, depth first: children are
// wrapped before their container. Values that are already observable are
// re-bound to l and returned unchanged. Primitives and nil pass through.
func Wrap(value any, l Listener) any {
	switch v := value.(type) {
	case nil:
		return nil
	case Observable:
		v.bind(l)
		return v
	case map[string]any:
		obj := &Object{values: make(map[string]any, len(v)), listener: l}
		for _, key := range sortedKeys(v) {
			obj.keys = append(obj.keys, key)
			obj.values[key] = Wrap(v[key], l)
		}
		return obj
	case map[string]string:
		m := make(map[string]any, len(v))
		for key, s := range v {
			m[key] = s
		}
		return Wrap(m, l)
	case []any:
		arr := &Array{items: make([]any, len(v)), listener: l}
		for i, item := range v {
			arr.items[i] = Wrap(item, l)
		}
		return arr
	case []string:
		arr := &Array{items: make([]any, len(v)), listener: l}
		for i, s := range v {
			arr.items[i] = s
		}
		return arr
	case []map[string]any:
		arr := &Array{items: make([]any, len(v)), listener: l}
		for i, m := range v {
			arr.items[i] = Wrap(m, l)
		}
		return arr
	case []map[string]string:
		arr := &Array{items: make([]any, len(v)), listener: l}
		for i, m := range v {
			arr.items[i] = Wrap(m, l)
		}
		return arr
	default:
		return value
	}
}

// Unwrap converts an observable graph back into plain maps and slices.
// Non-observable values are returned as-is.
func Unwrap(value any) any {
	if o, ok := value.(Observable); ok {
		return o.unwrap()
	}
	return value
}

// IsObservable reports whether value is an *Object or *Array.
func IsObservable(value any) bool {
	_, ok := value.(Observable)
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// Object
// =============================================================================

// Object is an observable string-keyed mapping.
// Keys keep insertion order; keys taken from a Go map are inserted sorted.
type Object struct {
	keys     []string
	values   map[string]any
	listener Listener
}

// NewObject creates an empty Object that notifies l.
func NewObject(l Listener) *Object {
	return &Object{values: make(map[string]any), listener: l}
}

// Get returns the value stored under key, or nil.
func (o *Object) Get(key string) any {
	return o.values[key]
}

// String returns the value under key formatted as text.
// Missing keys and nil values yield "".
func (o *Object) String(key string) string {
	return toString(o.values[key])
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Set stores value under key and notifies the listener once.
// Container values are wrapped before they are stored.
func (o *Object) Set(key string, value any) bool {
	value = Wrap(value, o.listener)
	old, exists := o.values[key]
	if !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	if o.listener != nil {
		o.listener(key, old, value)
	}
	return true
}

func (o *Object) bind(l Listener) {
	o.listener = l
	for _, key := range o.keys {
		if child, ok := o.values[key].(Observable); ok {
			child.bind(l)
		}
	}
}

func (o *Object) unwrap() any {
	out := make(map[string]any, len(o.keys))
	for _, key := range o.keys {
		out[key] = Unwrap(o.values[key])
	}
	return out
}

// LogValue logs the object as its plain contents.
func (o *Object) LogValue() slog.Value {
	return slog.AnyValue(o.unwrap())
}

// MarshalJSON encodes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// =============================================================================
// Array
// =============================================================================

// Array is an observable ordered sequence.
type Array struct {
	items    []any
	listener Listener
}

// NewArray creates an empty Array that notifies l.
func NewArray(l Listener) *Array {
	return &Array{listener: l}
}

// Get returns the element at i, or nil when i is out of range.
func (a *Array) Get(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.items)
}

// Set stores value at index i and notifies the listener once with the
// decimal index as key. Setting i == Len() extends the array by one.
// Any other out-of-range index is rejected without notification.
func (a *Array) Set(i int, value any) bool {
	if i < 0 || i > len(a.items) {
		return false
	}
	value = Wrap(value, a.listener)
	var old any
	if i == len(a.items) {
		a.items = append(a.items, value)
	} else {
		old = a.items[i]
		a.items[i] = value
	}
	if a.listener != nil {
		a.listener(strconv.Itoa(i), old, value)
	}
	return true
}

// Append adds values at the end. Each element notifies with its new index,
// followed by one "length" notification carrying the old and new lengths.
func (a *Array) Append(values ...any) {
	if len(values) == 0 {
		return
	}
	oldLen := len(a.items)
	for _, v := range values {
		v = Wrap(v, a.listener)
		a.items = append(a.items, v)
		if a.listener != nil {
			a.listener(strconv.Itoa(len(a.items)-1), nil, v)
		}
	}
	if a.listener != nil {
		a.listener("length", oldLen, len(a.items))
	}
}

// Each calls fn for every element in order.
func (a *Array) Each(fn func(i int, v any)) {
	for i, v := range a.items {
		fn(i, v)
	}
}

// Strings returns the elements formatted as text.
func (a *Array) Strings() []string {
	out := make([]string, len(a.items))
	for i, v := range a.items {
		out[i] = toString(v)
	}
	return out
}

func (a *Array) bind(l Listener) {
	a.listener = l
	for _, item := range a.items {
		if child, ok := item.(Observable); ok {
			child.bind(l)
		}
	}
}

func (a *Array) unwrap() any {
	out := make([]any, len(a.items))
	for i, item := range a.items {
		out[i] = Unwrap(item)
	}
	return out
}

// LogValue logs the array as its plain elements.
func (a *Array) LogValue() slog.Value {
	return slog.AnyValue(a.unwrap())
}

// MarshalJSON encodes the array elements in order.
func (a *Array) MarshalJSON() ([]byte, error) {
	if a.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.items)
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
