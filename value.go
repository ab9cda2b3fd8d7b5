package yawn

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	gyaml "github.com/goccy/go-yaml"
)

// Kind is the variant held by a Value.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Entry is one key/value pair of a map Value.
type Entry struct {
	Key   string
	Value Value
}

// Value is a JSON-like document value. The zero Value is undefined, which is
// only meaningful at the root of a document (it clears the document).
//
// Values are immutable: the With/Without/Append helpers return copies.
type Value struct {
	kind    Kind
	b       bool
	integer bool // number held exactly in i
	i       int64
	f       float64
	s       string
	elems   []Value
	entries []Entry
}

func Null() Value { return Value{kind: KindNull} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindNumber, integer: true, i: i} }
func Float(f float64) Value { return Value{kind: KindNumber, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Array(elems ...Value) Value {
	return Value{kind: KindArray, elems: append([]Value{}, elems...)}
}

// Map builds a map Value keeping the order of entries. A repeated key keeps its
// first position and takes the last value.
func Map(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	pos := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.Key]; ok {
			out[i].Value = e.Value
			continue
		}
		pos[e.Key] = len(out)
		out = append(out, e)
	}
	return Value{kind: KindMap, entries: out}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Bool() bool { return v.b }
func (v Value) Str() string { return v.s }

// IsInt reports whether the number is held as an exact integer.
func (v Value) IsInt() bool { return v.kind == KindNumber && v.integer }

func (v Value) Int() int64 {
	if v.integer {
		return v.i
	}
	return int64(v.f)
}

func (v Value) Float() float64 {
	if v.integer {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindMap:
		return len(v.entries)
	case KindString:
		return len(v.s)
	}
	return 0
}

func (v Value) Index(i int) Value { return v.elems[i] }

// Elems returns a copy of the array elements.
func (v Value) Elems() []Value { return append([]Value(nil), v.elems...) }

// Entries returns a copy of the map entries in order.
func (v Value) Entries() []Entry { return append([]Entry(nil), v.entries...) }

func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// With returns a copy of the map with key set to val. New keys are appended.
func (v Value) With(key string, val Value) Value {
	entries := v.Entries()
	for i := range entries {
		if entries[i].Key == key {
			entries[i].Value = val
			return Value{kind: KindMap, entries: entries}
		}
	}
	return Value{kind: KindMap, entries: append(entries, Entry{Key: key, Value: val})}
}

// Without returns a copy of the map without key.
func (v Value) Without(key string) Value {
	entries := make([]Entry, 0, len(v.entries))
	for _, e := range v.entries {
		if e.Key != key {
			entries = append(entries, e)
		}
	}
	return Value{kind: KindMap, entries: entries}
}

// Append returns a copy of the array with elems added at the end.
func (v Value) Append(elems ...Value) Value {
	out := append(v.Elems(), elems...)
	return Value{kind: KindArray, elems: out}
}

// Equal reports deep equality. Map comparison ignores entry order, numbers
// compare by value (1 equals 1.0) and NaN equals NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindNumber:
		if v.integer && o.integer {
			return v.i == o.i
		}
		a, b := v.Float(), o.Float()
		if math.IsNaN(a) && math.IsNaN(b) {
			return true
		}
		return a == b
	case KindArray:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for _, e := range v.entries {
			ov, ok := o.Get(e.Key)
			if !ok || !e.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v to plain Go values: nil, bool, int64, float64, string,
// []any and gyaml.MapSlice (to keep key order).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.integer {
			return v.i
		}
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, 0, len(v.elems))
		for _, e := range v.elems {
			out = append(out, e.Interface())
		}
		return out
	case KindMap:
		out := make(gyaml.MapSlice, 0, len(v.entries))
		for _, e := range v.entries {
			out = append(out, gyaml.MapItem{Key: e.Key, Value: e.Value.Interface()})
		}
		return out
	}
	return nil
}

// MarshalJSON encodes v as JSON, keeping map key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindUndefined, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if v.integer {
			buf.WriteString(strconv.FormatInt(v.i, 10))
			return nil
		}
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return fmt.Errorf("yawn: %v cannot be encoded as JSON", v.f)
		}
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func (v Value) String() string {
	if v.kind == KindUndefined {
		return "<undefined>"
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprint(v.Interface())
	}
	return string(b)
}

// FromAny converts a Go value into a Value. Plain maps are ordered by key;
// use gyaml.MapSlice to control the order.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("yawn: invalid number %q: %w", t, err)
		}
		return Float(f), nil
	case []any:
		elems := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		return Value{kind: KindArray, elems: elems}, nil
	case gyaml.MapSlice:
		entries := make([]Entry, 0, len(t))
		for _, it := range t {
			ev, err := FromAny(it.Value)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: keyString(it.Key), Value: ev})
		}
		return Map(entries...), nil
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			return Value{}, fmt.Errorf("yawn: %T: %w", t, err)
		}
		return String(string(b)), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(t))
		for _, k := range keys {
			ev, err := FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k, Value: ev})
		}
		return Value{kind: KindMap, entries: entries}, nil
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// fromReflect handles typed slices and string-keyed maps ([]string, map[string]int, ...).
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		elems := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		return Value{kind: KindArray, elems: elems}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: %s", ErrUnknownType, rv.Type())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			ev, err := FromAny(rv.MapIndex(k).Interface())
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k.String(), Value: ev})
		}
		return Value{kind: KindMap, entries: entries}, nil
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		// named scalar types (type Port int)
		return fromNamedScalar(rv)
	}
	if !rv.IsValid() {
		return Null(), nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnknownType, rv.Type())
}

func fromNamedScalar(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	default:
		return Float(rv.Float()), nil
	}
}

func keyString(k any) string {
	switch kk := k.(type) {
	case string:
		return kk
	case fmt.Stringer:
		return kk.String()
	default:
		return fmt.Sprint(kk)
	}
}
