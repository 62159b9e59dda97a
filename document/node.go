package document

import (
	"strings"
	"unicode/utf8"
)

// Child is any node that can appear in a block's children list: a text run,
// an atomic inline node, or a nested block.
type Child interface {
	childNode()
}

// TextNode is a run of text sharing one mark set.
type TextNode struct {
	Text  string
	Marks []Mark
}

func (TextNode) childNode() {}

// InlineNode is an atomic inline element. It occupies exactly one unit of
// the parent's inline offset space; offsets land before or after it, never
// inside.
type InlineNode struct {
	Type  InlineType
	Attrs map[string]any
}

func (InlineNode) childNode() {}

// BlockNode is a structural document unit with stable identity. Children may
// mix inline content (TextNode, InlineNode) and nested blocks for container
// types. BlockNodes are immutable: all mutation helpers return new nodes
// sharing unaffected children.
type BlockNode struct {
	ID       BlockID
	Type     NodeType
	Attrs    map[string]any
	Children []Child
}

func (*BlockNode) childNode() {}

// Document is the ordered sequence of root blocks, in reading order.
type Document struct {
	Blocks []*BlockNode
}

// NewBlock creates a block with normalized inline content.
func NewBlock(id BlockID, typ NodeType, attrs map[string]any, children ...Child) *BlockNode {
	return &BlockNode{ID: id, Type: typ, Attrs: attrs, Children: NormalizeInline(children)}
}

// Text returns the concatenated text of the block's direct TextNode
// children. InlineNodes and nested blocks contribute nothing.
func (b *BlockNode) Text() string {
	var sb strings.Builder
	for _, c := range b.Children {
		if t, ok := c.(TextNode); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

// Length returns the block's inline content length: text runes plus one per
// InlineNode, over direct children only.
func (b *BlockNode) Length() int {
	n := 0
	for _, c := range b.Children {
		switch t := c.(type) {
		case TextNode:
			n += utf8.RuneCountInString(t.Text)
		case InlineNode:
			n++
		}
	}
	return n
}

// InlineNodeCount returns the number of direct InlineNode children.
func (b *BlockNode) InlineNodeCount() int {
	n := 0
	for _, c := range b.Children {
		if _, ok := c.(InlineNode); ok {
			n++
		}
	}
	return n
}

// MarksAt returns the marks of the text covering offset. An offset exactly
// at an empty TextNode returns that node's marks. Offsets past all content
// fall back to the last TextNode's marks, so typing at the end of a block
// inherits trailing marks.
func (b *BlockNode) MarksAt(offset int) []Mark {
	var last []Mark
	haveText := false
	for _, span := range b.InlineSpans() {
		t, ok := span.Child.(TextNode)
		if !ok {
			continue
		}
		haveText = true
		last = t.Marks
		if span.From == span.To && offset == span.From {
			return t.Marks
		}
		if offset >= span.From && offset < span.To {
			return t.Marks
		}
	}
	if haveText {
		return last
	}
	return nil
}

// Span locates one inline child in the block's offset space. From and To are
// the half-open offset range the child occupies.
type Span struct {
	Child Child
	From  int
	To    int
}

// InlineSpans returns (child, from, to) triples for every direct inline
// child, in order. Nested blocks are skipped: they live outside the inline
// offset space. The result is freshly built on every call.
func (b *BlockNode) InlineSpans() []Span {
	var spans []Span
	off := 0
	for _, c := range b.Children {
		switch t := c.(type) {
		case TextNode:
			w := utf8.RuneCountInString(t.Text)
			spans = append(spans, Span{Child: c, From: off, To: off + w})
			off += w
		case InlineNode:
			spans = append(spans, Span{Child: c, From: off, To: off + 1})
			off++
		}
	}
	return spans
}

// WalkInline calls fn for each direct inline child with its offset range,
// stopping early when fn returns false.
func (b *BlockNode) WalkInline(fn func(c Child, from, to int) bool) {
	for _, span := range b.InlineSpans() {
		if !fn(span.Child, span.From, span.To) {
			return
		}
	}
}

// ChildBlocks returns the block's direct nested block children.
func (b *BlockNode) ChildBlocks() []*BlockNode {
	var out []*BlockNode
	for _, c := range b.Children {
		if nb, ok := c.(*BlockNode); ok {
			out = append(out, nb)
		}
	}
	return out
}

// WithChildren returns a copy of the block with the given children,
// normalized.
func (b *BlockNode) WithChildren(children []Child) *BlockNode {
	return &BlockNode{ID: b.ID, Type: b.Type, Attrs: b.Attrs, Children: NormalizeInline(children)}
}

// WithType returns a copy of the block with a new type and, when attrs is
// non-nil, new attrs. Id and children are preserved.
func (b *BlockNode) WithType(typ NodeType, attrs map[string]any) *BlockNode {
	next := attrs
	if next == nil {
		next = b.Attrs
	}
	return &BlockNode{ID: b.ID, Type: typ, Attrs: next, Children: b.Children}
}

// WithAttr returns a copy of the block with one attribute set. A nil value
// deletes the attribute.
func (b *BlockNode) WithAttr(name string, value any) *BlockNode {
	attrs := make(map[string]any, len(b.Attrs)+1)
	for k, v := range b.Attrs {
		attrs[k] = v
	}
	if value == nil {
		delete(attrs, name)
	} else {
		attrs[name] = value
	}
	return &BlockNode{ID: b.ID, Type: b.Type, Attrs: attrs, Children: b.Children}
}

// Clone deep-copies the block and its subtree.
func (b *BlockNode) Clone() *BlockNode {
	children := make([]Child, len(b.Children))
	for i, c := range b.Children {
		switch t := c.(type) {
		case TextNode:
			children[i] = TextNode{Text: t.Text, Marks: CloneMarks(t.Marks)}
		case InlineNode:
			children[i] = InlineNode{Type: t.Type, Attrs: cloneAttrs(t.Attrs)}
		case *BlockNode:
			children[i] = t.Clone()
		}
	}
	return &BlockNode{ID: b.ID, Type: b.Type, Attrs: cloneAttrs(b.Attrs), Children: children}
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// runeSlice returns the rune-offset substring s[from:to], clamping both ends.
func runeSlice(s string, from, to int) string {
	runes := []rune(s)
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from >= to {
		return ""
	}
	return string(runes[from:to])
}
