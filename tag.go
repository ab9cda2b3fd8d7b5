package yawn

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Tag is the YAML kind of a value or of a parsed node.
type Tag int

const (
	TagNull Tag = iota
	TagBool
	TagStr
	TagInt
	TagFloat
	TagMap
	TagSeq
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "!!null"
	case TagBool:
		return "!!bool"
	case TagStr:
		return "!!str"
	case TagInt:
		return "!!int"
	case TagFloat:
		return "!!float"
	case TagMap:
		return "!!map"
	case TagSeq:
		return "!!seq"
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

// IsScalar reports whether t is neither a mapping nor a sequence.
func (t Tag) IsScalar() bool { return t != TagMap && t != TagSeq }

// Classify returns the tag of v. The whole value is validated: an undefined
// value nested inside an array or map fails with ErrUnknownType, as does an
// undefined root.
//
// Numbers with a zero fractional part are TagInt, others TagFloat.
func Classify(v Value) (Tag, error) {
	if err := validate(v, "$"); err != nil {
		return 0, err
	}
	return kindTag(v)
}

func validate(v Value, path string) error {
	switch v.kind {
	case KindUndefined:
		return fmt.Errorf("%w: undefined value at %s", ErrUnknownType, path)
	case KindArray:
		for i, e := range v.elems {
			if err := validate(e, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case KindMap:
		for _, e := range v.entries {
			if err := validate(e.Value, path+"."+e.Key); err != nil {
				return err
			}
		}
	case KindNull, KindBool, KindNumber, KindString:
	default:
		return fmt.Errorf("%w: %s at %s", ErrUnknownType, v.kind, path)
	}
	return nil
}

func kindTag(v Value) (Tag, error) {
	switch v.kind {
	case KindNull:
		return TagNull, nil
	case KindBool:
		return TagBool, nil
	case KindString:
		return TagStr, nil
	case KindNumber:
		if hasZeroFraction(v) {
			return TagInt, nil
		}
		return TagFloat, nil
	case KindArray:
		return TagSeq, nil
	case KindMap:
		return TagMap, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownType, v.kind)
}

func hasZeroFraction(v Value) bool {
	if v.integer {
		return true
	}
	if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
		return false
	}
	return math.Trunc(v.f) == v.f
}

// nodeTag classifies a parsed node. Timestamps, binaries and custom tags
// are strings as far as editing is concerned.
func nodeTag(n *yaml.Node) Tag {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return TagNull
		}
		return nodeTag(n.Content[0])
	case yaml.MappingNode:
		return TagMap
	case yaml.SequenceNode:
		return TagSeq
	case yaml.AliasNode:
		if n.Alias != nil {
			return nodeTag(n.Alias)
		}
		return TagNull
	}
	switch n.ShortTag() {
	case "!!null":
		return TagNull
	case "!!bool":
		return TagBool
	case "!!int":
		return TagInt
	case "!!float":
		return TagFloat
	}
	return TagStr
}

func isCollection(n *yaml.Node) bool {
	return n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode
}

func isFlow(n *yaml.Node) bool {
	return isCollection(n) && n.Style&yaml.FlowStyle != 0
}
