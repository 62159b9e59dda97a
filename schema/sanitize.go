package schema

import "notectl/document"

// Sanitize rewrites a parsed or pasted document to the registry's
// vocabulary: unknown block types fall back to paragraph, unknown marks are
// dropped, blocks without an id get one, and inline content is normalized.
// Malformed input degrades instead of being rejected; this is a user-facing
// import path.
func (r *Registry) Sanitize(d *document.Document) *document.Document {
	blocks := make([]*document.BlockNode, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		blocks = append(blocks, r.sanitizeBlock(b))
	}
	return &document.Document{Blocks: blocks}
}

func (r *Registry) sanitizeBlock(b *document.BlockNode) *document.BlockNode {
	typ := b.Type
	if _, ok := r.nodes[typ]; !ok {
		typ = Paragraph
	}
	id := b.ID
	if id == "" {
		id = document.NewBlockID()
	}
	children := make([]document.Child, 0, len(b.Children))
	for _, c := range b.Children {
		switch t := c.(type) {
		case document.TextNode:
			children = append(children, document.TextNode{Text: t.Text, Marks: r.sanitizeMarks(t.Marks)})
		case document.InlineNode:
			children = append(children, t)
		case *document.BlockNode:
			children = append(children, r.sanitizeBlock(t))
		}
	}
	return document.NewBlock(id, typ, b.Attrs, children...)
}

func (r *Registry) sanitizeMarks(marks []document.Mark) []document.Mark {
	var out []document.Mark
	for _, m := range marks {
		if _, ok := r.marks[m.Type]; ok {
			out = append(out, m)
		}
	}
	return out
}
