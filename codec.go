package yawn

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	gyaml "github.com/goccy/go-yaml"
	"gopkg.in/yaml.v3"
)

// parseTree parses text into its root node with source positions. It returns
// nil when the text holds no document (empty or comments only).
func parseTree(text string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("yawn: failed to parse YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}

// load parses text into a plain Value.
func load(text string) (Value, error) {
	root, err := parseTree(text)
	if err != nil {
		return Value{}, err
	}
	return loadNode(root)
}

// loadNode converts a parsed node into a Value. Map order follows the source
// and aliases are resolved.
func loadNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return loadNode(n.Content[0])
	case yaml.AliasNode:
		return loadNode(n.Alias)
	case yaml.SequenceNode:
		elems := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := loadNode(c)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Value{kind: KindArray, elems: elems}, nil
	case yaml.MappingNode:
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("yawn: line %d: only scalar mapping keys are supported", k.Line)
			}
			v, err := loadNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k.Value, Value: v})
		}
		return Map(entries...), nil
	}
	return loadScalar(n), nil
}

func loadScalar(n *yaml.Node) Value {
	switch nodeTag(n) {
	case TagNull:
		return Null()
	case TagBool:
		var b bool
		if err := n.Decode(&b); err == nil {
			return Bool(b)
		}
	case TagInt:
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i)
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return fromUint(u)
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f)
		}
	case TagFloat:
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f)
		}
	}
	return String(n.Value)
}

// ParseValue decodes YAML or JSON data into a Value, keeping map key order.
func ParseValue(data []byte) (Value, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Null(), nil
	}
	var v any
	if err := gyaml.UnmarshalWithOptions(data, &v, gyaml.UseOrderedMap()); err != nil {
		return Value{}, fmt.Errorf("yawn: failed to decode value: %w", err)
	}
	return FromAny(v)
}

// dumper renders values as YAML text for inserted and replaced fragments.
type dumper struct {
	indent    int
	indentSeq bool
}

func newDumper(text string, o options) *dumper {
	indent, seq := detectIndentAndSequence(text)
	if o.indent > 0 {
		indent = o.indent
	}
	if o.indentSeq != nil {
		seq = *o.indentSeq
	}
	return &dumper{indent: indent, indentSeq: seq}
}

// dump renders v in block style without its trailing line terminator. The
// fragment starts at column 0: IndentSequence also indents a top-level
// sequence, so the common leading indent is removed.
func (d *dumper) dump(v Value) (string, error) {
	b, err := gyaml.MarshalWithOptions(v.Interface(), gyaml.Indent(d.indent), gyaml.IndentSequence(d.indentSeq))
	if err != nil {
		return "", fmt.Errorf("yawn: failed to dump value: %w", err)
	}
	return dedent(strings.TrimSuffix(string(b), "\n")), nil
}

// dedent strips the indent shared by all non-blank lines of s.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	common := -1
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		if n := leadingSpaces(ln); common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return s
	}
	for i, ln := range lines {
		if len(ln) >= common {
			lines[i] = ln[common:]
		} else {
			lines[i] = strings.TrimLeft(ln, " ")
		}
	}
	return strings.Join(lines, "\n")
}

// flow renders v on a single line ("{a: 1}", "[1, 2]").
func (d *dumper) flow(v Value) (string, error) {
	b, err := gyaml.MarshalWithOptions(v.Interface(), gyaml.Flow(true))
	if err != nil {
		return "", fmt.Errorf("yawn: failed to dump value: %w", err)
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// literal renders v the way it is spliced into an existing scalar span.
// Strings are written verbatim: a string that needs quoting is not quoted.
func (d *dumper) literal(v Value) (string, error) {
	switch v.kind {
	case KindNull:
		return "null", nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindNumber:
		return formatNumber(v), nil
	case KindString:
		return v.s, nil
	case KindArray, KindMap:
		return d.flow(v)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownType, v.kind)
}

func formatNumber(v Value) string {
	if v.integer {
		return strconv.FormatInt(v.i, 10)
	}
	f := v.f
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// detectIndentAndSequence returns the base indent, and whether sequences that are values
// of mapping keys are indented one level (true) or "indentless" (false).
func detectIndentAndSequence(text string) (int, bool) {
	indent := detectIndent(text)
	lines := strings.Split(text, "\n")
	votes := 0 // >0 prefer indented seq, <0 prefer indentless

	for i, ln := range lines {
		if isBlankOrComment(ln) || !endsWithMappingKey(ln) {
			continue
		}
		keyIndent := leadingSpaces(ln)
		for _, nxt := range lines[i+1:] {
			if isBlankOrComment(nxt) {
				continue
			}
			if strings.HasPrefix(strings.TrimLeft(nxt, " "), "-") {
				switch leadingSpaces(nxt) {
				case keyIndent + indent:
					votes++
				case keyIndent:
					votes--
				}
			}
			break
		}
	}
	// no evidence either way: indented sequences
	return indent, votes >= 0
}

func isBlankOrComment(ln string) bool {
	t := strings.TrimSpace(ln)
	return t == "" || t[0] == '#'
}

// endsWithMappingKey returns true if the line is a block mapping key of the form "key:" possibly
// followed by spaces and/or a comment.
func endsWithMappingKey(ln string) bool {
	idx := strings.IndexByte(ln, ':')
	if idx < 0 {
		return false
	}
	rest := strings.TrimSpace(ln[idx+1:])
	return rest == "" || rest[0] == '#'
}

// detectIndent returns the GCD of all non-zero indents, 2 when there are none.
func detectIndent(text string) int {
	result := 0
	for _, ln := range strings.Split(text, "\n") {
		if isBlankOrComment(ln) {
			continue
		}
		if n := leadingSpaces(ln); n > 0 {
			result = gcd(result, n)
		}
	}
	if result > 0 && result <= 8 {
		return result
	}
	return 2
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
