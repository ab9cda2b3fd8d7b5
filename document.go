package yawn

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Document is a YAML text that can be edited through its value. Assigning a
// new value rewrites only the parts of the text that changed; comments, blank
// lines, quoting and key order elsewhere are kept byte for byte.
//
// The value and the parsed tree are derived from the current text on every
// call and never cached. A Document is not safe for concurrent mutation.
type Document struct {
	text string
	opts options
}

type options struct {
	logger    *slog.Logger
	indent    int
	indentSeq *bool
}

// Option configures a Document.
type Option func(*options)

// WithLogger sets the logger used for debug output of each edit cycle.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIndent sets the indent of inserted blocks. By default it is detected
// from the document.
func WithIndent(n int) Option {
	return func(o *options) { o.indent = n }
}

// WithIndentSequence sets whether sequences nested under a key are indented
// in inserted blocks. By default it is detected from the document.
func WithIndentSequence(indent bool) Option {
	return func(o *options) { o.indentSeq = &indent }
}

// New returns a Document for text. It fails with ErrInvalidInput when text is
// not valid UTF-8.
func New(text string, opts ...Option) (*Document, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidInput
	}
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Document{text: text, opts: o}, nil
}

// Parse returns a Document for data and checks that it is valid YAML.
func Parse(data []byte, opts ...Option) (*Document, error) {
	d, err := New(string(data), opts...)
	if err != nil {
		return nil, err
	}
	if _, err := parseTree(d.text); err != nil {
		return nil, err
	}
	return d, nil
}

// Value loads the current text. An empty document is null.
func (d *Document) Value() (Value, error) {
	return load(d.text)
}

// ToValue is an alias of Value.
func (d *Document) ToValue() (Value, error) {
	return d.Value()
}

// SetValue rewrites the text so it holds v. Assigning a value equal to the
// current one leaves the text untouched; assigning the undefined Value
// empties the document, comments included.
//
// Only the first level is diffed: the root scalar, the root mapping's entries
// and the root sequence's elements. A changed mapping or sequence nested
// under a root key is left as is. Sequence elements are matched by value.
//
// On error the text is unchanged.
func (d *Document) SetValue(v Value) error {
	root, err := parseTree(d.text)
	if err != nil {
		return err
	}
	old, err := loadNode(root)
	if err != nil {
		return err
	}
	out, err := diff(old, v, root, d.text, newDumper(d.text, d.opts), d.opts.logger)
	if err != nil {
		return err
	}
	d.text = out
	return nil
}

// Set converts v with FromAny and assigns it.
func (d *Document) Set(v any) error {
	val, err := FromAny(v)
	if err != nil {
		return err
	}
	return d.SetValue(val)
}

// Clear empties the document.
func (d *Document) Clear() error {
	return d.SetValue(Value{})
}

// SetKey sets key in the root mapping. A null or empty document becomes a mapping.
func (d *Document) SetKey(key string, v any) error {
	val, err := FromAny(v)
	if err != nil {
		return err
	}
	cur, err := d.rootOf(KindMap)
	if err != nil {
		return err
	}
	return d.SetValue(cur.With(key, val))
}

// DeleteKey removes key from the root mapping. Deleting a missing key is a no-op.
func (d *Document) DeleteKey(key string) error {
	cur, err := d.rootOf(KindMap)
	if err != nil {
		return err
	}
	if _, ok := cur.Get(key); !ok {
		return nil
	}
	return d.SetValue(cur.Without(key))
}

// Append adds v at the end of the root sequence. A null or empty document
// becomes a sequence.
func (d *Document) Append(v any) error {
	val, err := FromAny(v)
	if err != nil {
		return err
	}
	cur, err := d.rootOf(KindArray)
	if err != nil {
		return err
	}
	return d.SetValue(cur.Append(val))
}

// Remove drops the first element equal to v from the root sequence. Since
// elements are matched by value, nothing is removed while an equal element
// remains.
func (d *Document) Remove(v any) error {
	val, err := FromAny(v)
	if err != nil {
		return err
	}
	cur, err := d.rootOf(KindArray)
	if err != nil {
		return err
	}
	elems := cur.Elems()
	for i, e := range elems {
		if e.Equal(val) {
			return d.SetValue(Array(append(elems[:i:i], elems[i+1:]...)...))
		}
	}
	return nil
}

func (d *Document) rootOf(kind Kind) (Value, error) {
	cur, err := d.Value()
	if err != nil {
		return Value{}, err
	}
	switch {
	case cur.kind == kind:
		return cur, nil
	case cur.kind != KindNull:
	case kind == KindMap:
		return Map(), nil
	default:
		return Array(), nil
	}
	if kind == KindMap {
		return Value{}, fmt.Errorf("%w: got %s", ErrNotMapping, cur.kind)
	}
	return Value{}, fmt.Errorf("%w: got %s", ErrNotSequence, cur.kind)
}

// Decode unmarshals the current text into out.
func (d *Document) Decode(out any) error {
	if err := yaml.Unmarshal([]byte(d.text), out); err != nil {
		return fmt.Errorf("yawn: failed to decode document: %w", err)
	}
	return nil
}

// Text returns the current text verbatim.
func (d *Document) Text() string { return d.text }

// String returns the current text; it implements fmt.Stringer.
func (d *Document) String() string { return d.text }

// Bytes returns a copy of the current text.
func (d *Document) Bytes() []byte { return []byte(d.text) }

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.text)
	return int64(n), err
}
