package yawn

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// diff computes the text that results from replacing old with next in text,
// where root is the parsed tree of text and old its loaded value. Edits are
// computed against the unmodified text and applied in one pass.
func diff(old, next Value, root *yaml.Node, text string, d *dumper, logger *slog.Logger) (string, error) {
	if next.Equal(old) {
		logger.Debug("value unchanged")
		return text, nil
	}
	if next.IsUndefined() {
		logger.Debug("value cleared")
		return "", nil
	}
	// validate the whole value before touching the text
	nextTag, err := Classify(next)
	if err != nil {
		return "", err
	}

	if root == nil {
		return appendDocument(text, next, d)
	}

	src := newSource(text)
	ed := newEditor(src, d)
	rootTag := nodeTag(root)
	branch := rootTag.String()

	switch {
	case nextTag != rootTag:
		branch = "kind " + rootTag.String() + " -> " + nextTag.String()
		if nextTag.IsScalar() {
			s, err := d.dump(next)
			if err != nil {
				return "", err
			}
			ed.replaceSpan(root, s)
		} else if err := ed.replaceWholeNode(root, next); err != nil {
			return "", err
		}
	case rootTag.IsScalar():
		if err := ed.replaceScalarSpan(root, next); err != nil {
			return "", err
		}
	case rootTag == TagMap:
		if err := diffMap(ed, old, next, root, logger); err != nil {
			return "", err
		}
	case rootTag == TagSeq:
		if err := diffSeq(ed, old, next, root); err != nil {
			return "", err
		}
	}

	out, err := applyEdits(text, ed.edits)
	if err != nil {
		return "", err
	}
	// an alias left pointing at a removed anchor makes the text unloadable
	if _, err := parseTree(out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBrokenDocument, err)
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "value changed",
		slog.String("branch", branch),
		slog.Int("edits", len(ed.edits)),
	)
	return out, nil
}

// diffMap edits the direct entries of the root mapping. Changes inside a
// nested mapping or sequence are not reconciled. An alias entry whose anchor
// is removed or rewritten is replaced by its value.
func diffMap(ed *editor, old, next Value, root *yaml.Node, logger *slog.Logger) error {
	type aliasEntry struct {
		node  *yaml.Node
		value Value
	}
	var kept []aliasEntry
	gone := make(map[*yaml.Node]bool)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		key := keyNode.Value
		nv, ok := next.Get(key)
		if !ok {
			if err := ed.removeEntry(root, keyNode, valNode); err != nil {
				return err
			}
			markAnchors(gone, valNode)
			continue
		}
		ov, _ := old.Get(key)
		if nv.Equal(ov) {
			if valNode.Kind == yaml.AliasNode {
				kept = append(kept, aliasEntry{node: valNode, value: nv})
			}
			continue
		}
		if isCollection(valNode) {
			logger.Debug("nested change not applied", slog.String("key", key))
			continue
		}
		if err := ed.replaceScalarSpan(valNode, nv); err != nil {
			return err
		}
		if valNode.Anchor != "" {
			gone[valNode] = true
		}
	}

	for _, a := range kept {
		if !gone[a.node.Alias] {
			continue
		}
		logger.Debug("alias replaced by value", slog.String("alias", a.node.Value))
		if err := ed.replaceScalarSpan(a.node, a.value); err != nil {
			return err
		}
	}

	for _, e := range next.entries {
		if _, ok := old.Get(e.Key); ok {
			continue
		}
		if isFlow(root) {
			return fmt.Errorf("%w: add key %q", ErrFlowStyle, e.Key)
		}
		if err := ed.insertAfter(root, Map(e)); err != nil {
			return err
		}
	}
	return nil
}

// markAnchors adds every anchored node of the subtree at n to set.
func markAnchors(set map[*yaml.Node]bool, n *yaml.Node) {
	if n.Anchor != "" {
		set[n] = true
	}
	for _, c := range n.Content {
		markAnchors(set, c)
	}
}

// diffSeq adds values that are new and removes values that are gone, by
// value equality. Reordering is not reflected.
func diffSeq(ed *editor, old, next Value, root *yaml.Node) error {
	for _, v := range difference(next.elems, old.elems) {
		if isFlow(root) {
			return fmt.Errorf("%w: append %s", ErrFlowStyle, v)
		}
		if err := ed.insertAfter(root, Array(v)); err != nil {
			return err
		}
	}

	removed := make([]bool, len(root.Content))
	for _, v := range difference(old.elems, next.elems) {
		for i, el := range root.Content {
			if removed[i] || i >= len(old.elems) || !old.elems[i].Equal(v) {
				continue
			}
			removed[i] = true
			if err := ed.removeBlockElement(root, el); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// difference returns the elements of a that are not equal to any element of b.
func difference(a, b []Value) []Value {
	var out []Value
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Equal(y) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, x)
		}
	}
	return out
}

// appendDocument writes a value into a text that holds no document yet,
// keeping whatever comments it has.
func appendDocument(text string, v Value, d *dumper) (string, error) {
	dumped, err := d.dump(v)
	if err != nil {
		return "", err
	}
	src := newSource(text)
	nl := src.newline()
	if text != "" && text[len(text)-1] != '\n' {
		text += nl
	}
	return text + reindent(dumped, 0, nl) + nl, nil
}
