package yawn

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// edit replaces text[start:end] with data. All edits of one cycle are
// computed against the same snapshot and applied together by applyEdits,
// so no offset is ever read after the text has changed.
type edit struct {
	start int
	end   int
	data  string
	seq   int // stable order for equal ranges
}

// editor collects the edits of one diff cycle.
type editor struct {
	src   *source
	dump  *dumper
	edits []edit
}

func newEditor(src *source, d *dumper) *editor {
	return &editor{src: src, dump: d}
}

func (e *editor) add(start, end int, data string) {
	e.edits = append(e.edits, edit{start: start, end: end, data: data, seq: len(e.edits)})
}

// replaceSpan replaces the node's span with already rendered text. An anchor
// on the node is written back in front of the new text; a tag is dropped.
func (e *editor) replaceSpan(n *yaml.Node, text string) {
	sp := e.src.locate(n)
	if n.Anchor != "" && n.Kind != yaml.AliasNode {
		text = "&" + n.Anchor + " " + text
	}
	if sp.start == sp.end && sp.start > 0 {
		if c := e.src.text[sp.start-1]; c == ':' || c == '-' {
			text = " " + text
		}
	}
	e.add(sp.start, sp.end, text)
}

// replaceScalarSpan replaces a scalar node with the literal form of v.
func (e *editor) replaceScalarSpan(n *yaml.Node, v Value) error {
	lit, err := e.dump.literal(v)
	if err != nil {
		return err
	}
	e.replaceSpan(n, lit)
	return nil
}

// replaceWholeNode replaces everything from the start of the node's line
// through its end with the dumped value, reindented to the node's column.
func (e *editor) replaceWholeNode(n *yaml.Node, v Value) error {
	dumped, err := e.dump.dump(v)
	if err != nil {
		return err
	}
	m := e.src.startOf(n)
	block := reindent(dumped, m.column, e.src.newline())
	e.add(e.src.lineStart(m.offset), e.src.locate(n).end, block)
	return nil
}

// insertAfter adds the dumped value on its own line after the node. When the
// node ends a line, the new lines go after that line so a trailing comment
// stays where it is.
func (e *editor) insertAfter(n *yaml.Node, v Value) error {
	dumped, err := e.dump.dump(v)
	if err != nil {
		return err
	}
	nl := e.src.newline()
	block := reindent(dumped, e.src.startOf(n).column, nl)
	end := e.src.locate(n).end
	if !e.src.restIsTrivia(end) {
		e.add(end, end, nl+block)
		return nil
	}
	le := e.src.lineEnd(end)
	if le < len(e.src.text) {
		e.add(le+1, le+1, block+nl)
		return nil
	}
	e.add(le, le, nl+block)
	return nil
}

// removeBlockElement deletes a block sequence element together with its "-"
// marker. Flow sequences are rejected.
func (e *editor) removeBlockElement(seq, elem *yaml.Node) error {
	if isFlow(seq) {
		return fmt.Errorf("%w: remove element at line %d", ErrFlowStyle, elem.Line)
	}
	start := e.src.startOf(elem).offset
	i := start - 1
	for i > 0 && e.src.text[i] != '-' {
		i--
	}
	if i < 0 {
		i = 0
	}
	e.deleteLines(i, e.src.locate(elem).end)
	return nil
}

// removeEntry deletes a mapping entry from its key through the end of its value.
func (e *editor) removeEntry(m, key, val *yaml.Node) error {
	if isFlow(m) {
		return fmt.Errorf("%w: remove key %q", ErrFlowStyle, key.Value)
	}
	e.deleteLines(e.src.startOf(key).offset, e.src.locate(val).end)
	return nil
}

// deleteLines deletes [start, end). When nothing else shares the first and
// last line, the lines are removed whole: indentation, trailing comment and
// line terminator included.
func (e *editor) deleteLines(start, end int) {
	text := e.src.text
	ls := e.src.lineStart(start)
	if strings.TrimSpace(text[ls:start]) != "" || !e.src.restIsTrivia(end) {
		e.add(start, end, "")
		return
	}
	le := e.src.lineEnd(end)
	switch {
	case le < len(text):
		le++
	case ls > 0:
		// last line has no terminator: take the one before it instead
		ls--
		if ls > 0 && text[ls-1] == '\r' {
			ls--
		}
	}
	e.add(ls, le, "")
}

// reindent prefixes every non-empty line with column spaces.
func reindent(s string, column int, nl string) string {
	pad := strings.Repeat(" ", column)
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if ln != "" {
			lines[i] = pad + ln
		}
	}
	return strings.Join(lines, nl)
}

// applyEdits builds the new text in one linear copy over the snapshot.
// Destructive edits may not overlap; insertions at the same point keep the
// order they were added in.
func applyEdits(text string, edits []edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}
	sorted := append([]edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start == sorted[j].start {
			if sorted[i].end == sorted[j].end {
				return sorted[i].seq < sorted[j].seq
			}
			return sorted[i].end < sorted[j].end
		}
		return sorted[i].start < sorted[j].start
	})

	var out strings.Builder
	out.Grow(len(text))
	cursor := 0
	for _, ed := range sorted {
		if ed.start < cursor || ed.end < ed.start || ed.end > len(text) {
			return "", fmt.Errorf("%w: [%d,%d) after offset %d", ErrOverlappingEdits, ed.start, ed.end, cursor)
		}
		out.WriteString(text[cursor:ed.start])
		out.WriteString(ed.data)
		cursor = ed.end
	}
	out.WriteString(text[cursor:])
	return out.String(), nil
}
