// Package schema holds node and mark specs the engine consults for
// validity. It owns spec storage only; document mutation stays with the
// state package.
package schema

import "notectl/document"

// NodeSpec describes the editing behavior of one block type.
type NodeSpec struct {
	// Void blocks have no internally editable text and are selected as a
	// whole unit (image, divider).
	Void bool
	// Isolating blocks shield their content from cross-boundary cursor and
	// selection operations (table cell).
	Isolating bool
	// Selectable reports whether the block can carry a NodeSelection.
	Selectable bool
	// Tag is the HTML element used by clipboard serialization.
	Tag string
}

// MarkSpec describes one inline mark type.
type MarkSpec struct {
	// Tag is the HTML element used by clipboard serialization.
	Tag string
}

// Registry maps type names to specs. Plugins register their own specs at
// startup; the built-in set covers the core block vocabulary.
type Registry struct {
	nodes map[document.NodeType]NodeSpec
	marks map[document.MarkType]MarkSpec
}

// Builtin block and mark types.
const (
	Paragraph        document.NodeType = "paragraph"
	Heading          document.NodeType = "heading"
	Blockquote       document.NodeType = "blockquote"
	BulletListItem   document.NodeType = "bulletListItem"
	NumberedListItem document.NodeType = "numberedListItem"
	Image            document.NodeType = "image"
	Divider          document.NodeType = "divider"
	Table            document.NodeType = "table"
	TableRow         document.NodeType = "tableRow"
	TableCell        document.NodeType = "tableCell"

	Bold      document.MarkType = "bold"
	Italic    document.MarkType = "italic"
	Underline document.MarkType = "underline"
	Strike    document.MarkType = "strikethrough"
	Code      document.MarkType = "code"
	Link      document.MarkType = "link"
)

// NewRegistry returns a registry preloaded with the builtin specs.
func NewRegistry() *Registry {
	r := &Registry{
		nodes: make(map[document.NodeType]NodeSpec),
		marks: make(map[document.MarkType]MarkSpec),
	}
	r.RegisterNode(Paragraph, NodeSpec{Selectable: true, Tag: "p"})
	r.RegisterNode(Heading, NodeSpec{Selectable: true, Tag: "h1"})
	r.RegisterNode(Blockquote, NodeSpec{Selectable: true, Tag: "blockquote"})
	r.RegisterNode(BulletListItem, NodeSpec{Selectable: true, Tag: "li"})
	r.RegisterNode(NumberedListItem, NodeSpec{Selectable: true, Tag: "li"})
	r.RegisterNode(Image, NodeSpec{Void: true, Selectable: true, Tag: "img"})
	r.RegisterNode(Divider, NodeSpec{Void: true, Selectable: true, Tag: "hr"})
	r.RegisterNode(Table, NodeSpec{Selectable: true, Tag: "table"})
	r.RegisterNode(TableRow, NodeSpec{Tag: "tr"})
	r.RegisterNode(TableCell, NodeSpec{Isolating: true, Tag: "td"})
	r.RegisterMark(Bold, MarkSpec{Tag: "strong"})
	r.RegisterMark(Italic, MarkSpec{Tag: "em"})
	r.RegisterMark(Underline, MarkSpec{Tag: "u"})
	r.RegisterMark(Strike, MarkSpec{Tag: "s"})
	r.RegisterMark(Code, MarkSpec{Tag: "code"})
	r.RegisterMark(Link, MarkSpec{Tag: "a"})
	return r
}

// RegisterNode adds or replaces a node spec.
func (r *Registry) RegisterNode(t document.NodeType, spec NodeSpec) {
	r.nodes[t] = spec
}

// RegisterMark adds or replaces a mark spec.
func (r *Registry) RegisterMark(t document.MarkType, spec MarkSpec) {
	r.marks[t] = spec
}

// NodeSpec returns the spec for a block type.
func (r *Registry) NodeSpec(t document.NodeType) (NodeSpec, bool) {
	s, ok := r.nodes[t]
	return s, ok
}

// MarkSpec returns the spec for a mark type.
func (r *Registry) MarkSpec(t document.MarkType) (MarkSpec, bool) {
	s, ok := r.marks[t]
	return s, ok
}

// IsVoid reports whether t is a known void block type.
func (r *Registry) IsVoid(t document.NodeType) bool {
	return r.nodes[t].Void
}

// IsIsolating reports whether t is a known isolating block type.
func (r *Registry) IsIsolating(t document.NodeType) bool {
	return r.nodes[t].Isolating
}

// IsSelectable reports whether t can carry a NodeSelection.
func (r *Registry) IsSelectable(t document.NodeType) bool {
	return r.nodes[t].Selectable
}
