package yawn

import (
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// mark is a position in the source text. offset is in bytes, line and
// column are 0-based with column counted in characters.
type mark struct {
	offset int
	line   int
	column int
}

// span is the byte range [start, end) a node occupies.
type span struct {
	start int
	end   int
}

// source indexes one snapshot of the document text. yaml.v3 only reports
// line/column positions, so node marks are turned into byte offsets here.
type source struct {
	text  string
	lines []int // byte offset of each line start
}

func newSource(text string) *source {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &source{text: text, lines: lines}
}

// newline returns the line terminator used by the text.
func (s *source) newline() string {
	if strings.Contains(s.text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// startOf converts a node's 1-based yaml.v3 position into a mark.
func (s *source) startOf(n *yaml.Node) mark {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	line := n.Line - 1
	if line < 0 {
		line = 0
	}
	if line >= len(s.lines) {
		return mark{offset: len(s.text), line: len(s.lines) - 1}
	}
	off := s.lines[line]
	col := 0
	for col < n.Column-1 && off < len(s.text) && s.text[off] != '\n' {
		_, w := utf8.DecodeRuneInString(s.text[off:])
		off += w
		col++
	}
	return mark{offset: off, line: line, column: col}
}

// lineStart returns the offset of the first byte of the line holding off.
func (s *source) lineStart(off int) int {
	if off > len(s.text) {
		off = len(s.text)
	}
	return strings.LastIndexByte(s.text[:off], '\n') + 1
}

// lineEnd returns the offset of the '\n' ending the line holding off, or
// len(text) on the last line.
func (s *source) lineEnd(off int) int {
	if off >= len(s.text) {
		return len(s.text)
	}
	if i := strings.IndexByte(s.text[off:], '\n'); i >= 0 {
		return off + i
	}
	return len(s.text)
}

// indentAt counts the leading spaces of the line holding off.
func (s *source) indentAt(off int) int {
	ls := s.lineStart(off)
	n := 0
	for ls+n < len(s.text) && s.text[ls+n] == ' ' {
		n++
	}
	return n
}

// locate returns the text span of n. For block collections the end is the
// end of the last descendant: a collection's own end marker stops before
// trailing content its last child still covers.
func (s *source) locate(n *yaml.Node) span {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return span{start: len(s.text), end: len(s.text)}
		}
		n = n.Content[0]
	}
	start := s.startOf(n).offset
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		if n.Style&yaml.FlowStyle != 0 {
			return span{start: start, end: s.flowEnd(start)}
		}
		if len(n.Content) == 0 {
			return span{start: start, end: start}
		}
		return span{start: start, end: s.locate(n.Content[len(n.Content)-1]).end}
	case yaml.AliasNode:
		return span{start: start, end: min(start+1+len(n.Value), len(s.text))}
	}
	return span{start: start, end: s.scalarEnd(n, start)}
}

func (s *source) scalarEnd(n *yaml.Node, start int) int {
	if start >= len(s.text) {
		return len(s.text)
	}
	switch {
	case n.Style&yaml.DoubleQuotedStyle != 0:
		return s.quotedEnd(start, '"')
	case n.Style&yaml.SingleQuotedStyle != 0:
		return s.quotedEnd(start, '\'')
	case n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
		return s.blockScalarEnd(start)
	}
	if n.Value == "" {
		if c := s.text[start]; c == '&' || c == '!' {
			// properties with no value ("key: &a"): the span covers them
			return s.contentEnd(start, s.lineEnd(start))
		}
		// implicit null ("key:" or "-"): the node sits right after the indicator
		return start
	}
	if strings.HasPrefix(s.text[start:], n.Value) {
		return start + len(n.Value)
	}
	return s.plainEnd(start)
}

// quotedEnd returns the offset just past the closing quote.
func (s *source) quotedEnd(start int, q byte) int {
	i := start
	for i < len(s.text) && s.text[i] != q {
		i++ // skip tag/anchor properties
	}
	for i++; i < len(s.text); i++ {
		c := s.text[i]
		if q == '"' && c == '\\' {
			i++
			continue
		}
		if c != q {
			continue
		}
		if q == '\'' && i+1 < len(s.text) && s.text[i+1] == '\'' {
			i++
			continue
		}
		return i + 1
	}
	return len(s.text)
}

// blockScalarEnd returns the end of the last content line of a literal or
// folded scalar whose indicator is at start, or of its last trailing blank
// line with keep chomping.
func (s *source) blockScalarEnd(start int) int {
	i := start
	for i < len(s.text) && s.text[i] != '|' && s.text[i] != '>' {
		i++
	}
	if i == len(s.text) {
		return s.plainEnd(start)
	}
	i++
	keep := false
	for i < len(s.text) && strings.IndexByte("+-0123456789", s.text[i]) >= 0 {
		keep = keep || s.text[i] == '+'
		i++
	}
	end := i

	ls := s.lineStart(start)
	minIndent := s.indentAt(start)
	if strings.TrimSpace(s.text[ls:start]) != "" {
		minIndent++
	}

	contentIndent := -1
	for off := s.lineEnd(start) + 1; off < len(s.text); off = s.lineEnd(off) + 1 {
		le := s.lineEnd(off)
		line := strings.TrimRight(s.text[off:le], "\r")
		if strings.TrimSpace(line) == "" {
			// "|+" keeps trailing blank lines as part of the value
			if keep && contentIndent >= 0 {
				end = off + len(line)
			}
			continue
		}
		ind := len(line) - len(strings.TrimLeft(line, " "))
		if contentIndent < 0 {
			if ind < minIndent {
				break
			}
			contentIndent = ind
		}
		if ind < contentIndent {
			break
		}
		end = off + len(line)
	}
	return end
}

// plainEnd scans a plain scalar that spans lines or carries properties.
func (s *source) plainEnd(start int) int {
	end := s.contentEnd(start, s.lineEnd(start))
	baseIndent := s.indentAt(start)
	for off := s.lineEnd(start) + 1; off < len(s.text); off = s.lineEnd(off) + 1 {
		le := s.lineEnd(off)
		line := s.text[off:le]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed[0] == '#' || s.indentAt(off) <= baseIndent {
			break
		}
		end = s.contentEnd(off, le)
	}
	return end
}

// contentEnd returns the end of the text in [from, to) before a comment,
// with trailing whitespace removed.
func (s *source) contentEnd(from, to int) int {
	end := to
	for i := from; i < to; i++ {
		if s.text[i] == '#' && i > from && (s.text[i-1] == ' ' || s.text[i-1] == '\t') {
			end = i
			break
		}
	}
	for end > from && strings.IndexByte(" \t\r", s.text[end-1]) >= 0 {
		end--
	}
	return end
}

// flowEnd returns the offset just past the bracket closing the flow
// collection that opens at (or after) start.
func (s *source) flowEnd(start int) int {
	i := start
	for i < len(s.text) && s.text[i] != '[' && s.text[i] != '{' {
		i++
	}
	depth := 0
	for ; i < len(s.text); i++ {
		switch c := s.text[i]; c {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"', '\'':
			i = s.quotedEnd(i, c) - 1
		case '#':
			if i > 0 && (s.text[i-1] == ' ' || s.text[i-1] == '\t' || s.text[i-1] == '\n') {
				i = s.lineEnd(i)
			}
		}
	}
	return len(s.text)
}

// restIsTrivia reports whether [off, end of line) holds only whitespace or a comment.
func (s *source) restIsTrivia(off int) bool {
	rest := strings.TrimSpace(s.text[off:s.lineEnd(off)])
	return rest == "" || rest[0] == '#'
}
