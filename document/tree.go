package document

// New creates a document from root blocks.
func New(blocks ...*BlockNode) *Document {
	return &Document{Blocks: blocks}
}

// Block finds a block anywhere in the tree by id. EditorState keeps an
// id index; this scan is for callers that only hold a Document.
func (d *Document) Block(id BlockID) *BlockNode {
	var found *BlockNode
	d.Walk(func(b *BlockNode, _ *BlockNode) bool {
		if b.ID == id {
			found = b
			return false
		}
		return true
	})
	return found
}

// Walk visits every block depth-first in reading order, passing its parent
// (nil for root blocks). Returning false stops the walk.
func (d *Document) Walk(fn func(b, parent *BlockNode) bool) {
	var walk func(b, parent *BlockNode) bool
	walk = func(b, parent *BlockNode) bool {
		if !fn(b, parent) {
			return false
		}
		for _, c := range b.Children {
			if nb, ok := c.(*BlockNode); ok {
				if !walk(nb, b) {
					return false
				}
			}
		}
		return true
	}
	for _, b := range d.Blocks {
		if !walk(b, nil) {
			return
		}
	}
}

// ParentPath returns the ancestor id chain of id from the root, excluding id
// itself. Root-level blocks have an empty path. ok is false when id is not
// in the document.
func (d *Document) ParentPath(id BlockID) (path []BlockID, ok bool) {
	var chain []BlockID
	var walk func(b *BlockNode) bool
	walk = func(b *BlockNode) bool {
		if b.ID == id {
			path = append([]BlockID(nil), chain...)
			ok = true
			return false
		}
		chain = append(chain, b.ID)
		for _, c := range b.Children {
			if nb, okc := c.(*BlockNode); okc {
				if !walk(nb) {
					return false
				}
			}
		}
		chain = chain[:len(chain)-1]
		return true
	}
	for _, b := range d.Blocks {
		if !walk(b) {
			break
		}
	}
	return path, ok
}

// IndexOf locates a block by id, returning its parent path and its index
// among the parent's children (among root blocks for a top-level block).
func (d *Document) IndexOf(id BlockID) (parent []BlockID, index int, ok bool) {
	parent, ok = d.ParentPath(id)
	if !ok {
		return nil, 0, false
	}
	if len(parent) == 0 {
		for i, b := range d.Blocks {
			if b.ID == id {
				return parent, i, true
			}
		}
		return nil, 0, false
	}
	container := d.Block(parent[len(parent)-1])
	for i, c := range container.Children {
		if nb, okc := c.(*BlockNode); okc && nb.ID == id {
			return parent, i, true
		}
	}
	return nil, 0, false
}

// Transform replaces the block with the given id by fn(block), sharing every
// untouched subtree. ok is false and the receiver is returned unchanged when
// id is not in the document.
func (d *Document) Transform(id BlockID, fn func(*BlockNode) *BlockNode) (*Document, bool) {
	blocks, ok := transformIn(d.Blocks, id, fn)
	if !ok {
		return d, false
	}
	return &Document{Blocks: blocks}, true
}

func transformIn(blocks []*BlockNode, id BlockID, fn func(*BlockNode) *BlockNode) ([]*BlockNode, bool) {
	for i, b := range blocks {
		if b.ID == id {
			out := make([]*BlockNode, len(blocks))
			copy(out, blocks)
			out[i] = fn(b)
			return out, true
		}
		children, ok := transformChild(b.Children, id, fn)
		if ok {
			out := make([]*BlockNode, len(blocks))
			copy(out, blocks)
			out[i] = &BlockNode{ID: b.ID, Type: b.Type, Attrs: b.Attrs, Children: children}
			return out, true
		}
	}
	return nil, false
}

func transformChild(children []Child, id BlockID, fn func(*BlockNode) *BlockNode) ([]Child, bool) {
	for i, c := range children {
		nb, okc := c.(*BlockNode)
		if !okc {
			continue
		}
		if nb.ID == id {
			out := make([]Child, len(children))
			copy(out, children)
			out[i] = fn(nb)
			return out, true
		}
		sub, ok := transformChild(nb.Children, id, fn)
		if ok {
			out := make([]Child, len(children))
			copy(out, children)
			out[i] = &BlockNode{ID: nb.ID, Type: nb.Type, Attrs: nb.Attrs, Children: sub}
			return out, true
		}
	}
	return nil, false
}

// InsertBlockAt inserts node at index under the block named by parent (the
// root block list for an empty path). The index is clamped to the child
// count. ok is false when the parent path does not resolve.
func (d *Document) InsertBlockAt(parent []BlockID, index int, node *BlockNode) (*Document, bool) {
	if len(parent) == 0 {
		if index < 0 {
			index = 0
		}
		if index > len(d.Blocks) {
			index = len(d.Blocks)
		}
		out := make([]*BlockNode, 0, len(d.Blocks)+1)
		out = append(out, d.Blocks[:index]...)
		out = append(out, node)
		out = append(out, d.Blocks[index:]...)
		return &Document{Blocks: out}, true
	}
	return d.Transform(parent[len(parent)-1], func(b *BlockNode) *BlockNode {
		if index < 0 {
			index = 0
		}
		if index > len(b.Children) {
			index = len(b.Children)
		}
		children := make([]Child, 0, len(b.Children)+1)
		children = append(children, b.Children[:index]...)
		children = append(children, node)
		children = append(children, b.Children[index:]...)
		return &BlockNode{ID: b.ID, Type: b.Type, Attrs: b.Attrs, Children: children}
	})
}

// RemoveBlockAt removes the block child at index under the given parent
// path, returning the removed subtree. ok is false when the path or index
// does not resolve to a block.
func (d *Document) RemoveBlockAt(parent []BlockID, index int) (*Document, *BlockNode, bool) {
	if len(parent) == 0 {
		if index < 0 || index >= len(d.Blocks) {
			return d, nil, false
		}
		removed := d.Blocks[index]
		out := make([]*BlockNode, 0, len(d.Blocks)-1)
		out = append(out, d.Blocks[:index]...)
		out = append(out, d.Blocks[index+1:]...)
		return &Document{Blocks: out}, removed, true
	}
	var removed *BlockNode
	next, ok := d.Transform(parent[len(parent)-1], func(b *BlockNode) *BlockNode {
		if index < 0 || index >= len(b.Children) {
			return b
		}
		nb, okc := b.Children[index].(*BlockNode)
		if !okc {
			return b
		}
		removed = nb
		children := make([]Child, 0, len(b.Children)-1)
		children = append(children, b.Children[:index]...)
		children = append(children, b.Children[index+1:]...)
		return &BlockNode{ID: b.ID, Type: b.Type, Attrs: b.Attrs, Children: children}
	})
	if !ok || removed == nil {
		return d, nil, false
	}
	return next, removed, true
}
