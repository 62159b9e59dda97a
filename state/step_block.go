package state

import (
	"fmt"

	"notectl/document"
)

// SetBlockType changes a block's type tag in place; id and children are
// preserved. Attrs replaces the block's attrs when non-nil.
type SetBlockType struct {
	Block document.BlockID
	Type  document.NodeType
	Attrs map[string]any
}

// Apply implements Step.
func (s SetBlockType) Apply(doc *document.Document) Result {
	next, ok := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		return b.WithType(s.Type, s.Attrs)
	})
	if !ok {
		return Fail(fmt.Sprintf("setBlockType: unknown block %s", s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s SetBlockType) Invert(pre *document.Document) Step {
	b := pre.Block(s.Block)
	if b == nil {
		return SetBlockType{Block: s.Block, Type: s.Type}
	}
	return SetBlockType{Block: s.Block, Type: b.Type, Attrs: b.Attrs}
}

// SetNodeAttr sets one block attribute. A nil value deletes the attribute.
type SetNodeAttr struct {
	Block document.BlockID
	Name  string
	Value any
}

// Apply implements Step.
func (s SetNodeAttr) Apply(doc *document.Document) Result {
	next, ok := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		return b.WithAttr(s.Name, s.Value)
	})
	if !ok {
		return Fail(fmt.Sprintf("setNodeAttr: unknown block %s", s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s SetNodeAttr) Invert(pre *document.Document) Step {
	inv := SetNodeAttr{Block: s.Block, Name: s.Name}
	if b := pre.Block(s.Block); b != nil {
		if v, ok := b.Attrs[s.Name]; ok {
			inv.Value = v
		}
	}
	return inv
}

// SplitBlock divides a block at Offset into two sibling blocks. The new
// block takes the original's type and attrs plus everything from Offset on,
// nested block children included, and is inserted immediately after. Nested
// blocks sitting exactly at Offset stay with the original by default; Carry
// moves that many of them to the new block, so JoinBlocks can invert to the
// exact partition it merged.
type SplitBlock struct {
	Block  document.BlockID
	Offset int
	NewID  document.BlockID
	Carry  int
}

// Apply implements Step.
func (s SplitBlock) Apply(doc *document.Document) Result {
	b := doc.Block(s.Block)
	if b == nil {
		return Fail(fmt.Sprintf("splitBlock: unknown block %s", s.Block))
	}
	parent, index, ok := doc.IndexOf(s.Block)
	if !ok {
		return Fail(fmt.Sprintf("splitBlock: unknown block %s", s.Block))
	}
	off := clampOffset(s.Offset, b.Length())
	leftChildren, rightChildren := b.SplitChildren(off, s.Carry)
	right := document.NewBlock(s.NewID, b.Type, b.Attrs, rightChildren...)
	next, _ := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		return b.WithChildren(leftChildren)
	})
	next, ok = next.InsertBlockAt(parent, index+1, right)
	if !ok {
		return Fail(fmt.Sprintf("splitBlock: parent of %s vanished", s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s SplitBlock) Invert(pre *document.Document) Step {
	off := s.Offset
	if b := pre.Block(s.Block); b != nil {
		off = clampOffset(off, b.Length())
	}
	return JoinBlocks{Block: s.Block, With: s.NewID, At: off}
}

// JoinBlocks appends With's children, inline content and nested blocks
// alike, to Block's and removes With. With must be the sibling immediately
// after Block. At records Block's pre-join inline length; decoration
// mapping shifts With's decorations by it.
type JoinBlocks struct {
	Block document.BlockID
	With  document.BlockID
	At    int
}

// Apply implements Step.
func (s JoinBlocks) Apply(doc *document.Document) Result {
	left := doc.Block(s.Block)
	right := doc.Block(s.With)
	if left == nil || right == nil {
		return Fail(fmt.Sprintf("joinBlocks: unknown block %s or %s", s.Block, s.With))
	}
	lp, li, _ := doc.IndexOf(s.Block)
	rp, ri, _ := doc.IndexOf(s.With)
	if !samePath(lp, rp) || ri != li+1 {
		return Fail(fmt.Sprintf("joinBlocks: %s is not the next sibling of %s", s.With, s.Block))
	}
	children := make([]document.Child, 0, len(left.Children)+len(right.Children))
	children = append(children, left.Children...)
	children = append(children, right.Children...)
	next, _ := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		return b.WithChildren(children)
	})
	next, _, ok := next.RemoveBlockAt(rp, ri)
	if !ok {
		return Fail(fmt.Sprintf("joinBlocks: cannot remove %s", s.With))
	}
	return OK(next)
}

// Invert implements Step.
func (s JoinBlocks) Invert(pre *document.Document) Step {
	off := s.At
	carry := 0
	if b := pre.Block(s.Block); b != nil {
		off = b.Length()
	}
	if w := pre.Block(s.With); w != nil {
		// With's leading nested blocks sit at the join point after merging;
		// carrying them back reproduces the exact pre-join partition.
		for _, c := range w.Children {
			if _, ok := c.(*document.BlockNode); !ok {
				break
			}
			carry++
		}
	}
	return SplitBlock{Block: s.Block, Offset: off, NewID: s.With, Carry: carry}
}

// InsertNode inserts a block subtree at an index under the parent path
// (the root block list for an empty path). Addressing is by parent+index,
// not sibling id, so reorders within one transaction stay unambiguous.
type InsertNode struct {
	Parent []document.BlockID
	Index  int
	Node   *document.BlockNode
}

// Apply implements Step.
func (s InsertNode) Apply(doc *document.Document) Result {
	if s.Node == nil {
		return Fail("insertNode: nil node")
	}
	next, ok := doc.InsertBlockAt(s.Parent, s.Index, s.Node)
	if !ok {
		return Fail(fmt.Sprintf("insertNode: unknown parent %v", s.Parent))
	}
	return OK(next)
}

// Invert implements Step.
func (s InsertNode) Invert(pre *document.Document) Step {
	return RemoveNode{Parent: s.Parent, Index: s.Index, Block: s.Node.ID, RemovedIDs: subtreeIDs(s.Node)}
}

// RemoveNode removes the block child at Index under Parent. Block, when
// set, guards against removing a reordered sibling. RemovedIDs lists the
// removed block and its descendants for decoration mapping.
type RemoveNode struct {
	Parent     []document.BlockID
	Index      int
	Block      document.BlockID
	RemovedIDs []document.BlockID
}

// Apply implements Step.
func (s RemoveNode) Apply(doc *document.Document) Result {
	next, removed, ok := doc.RemoveBlockAt(s.Parent, s.Index)
	if !ok {
		return Fail(fmt.Sprintf("removeNode: no block at %v[%d]", s.Parent, s.Index))
	}
	if s.Block != "" && removed.ID != s.Block {
		return Fail(fmt.Sprintf("removeNode: block at %v[%d] is %s, want %s", s.Parent, s.Index, removed.ID, s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s RemoveNode) Invert(pre *document.Document) Step {
	var node *document.BlockNode
	if s.Block != "" {
		node = pre.Block(s.Block)
	}
	if node == nil {
		if len(s.Parent) == 0 {
			if s.Index >= 0 && s.Index < len(pre.Blocks) {
				node = pre.Blocks[s.Index]
			}
		} else if container := pre.Block(s.Parent[len(s.Parent)-1]); container != nil {
			if s.Index >= 0 && s.Index < len(container.Children) {
				node, _ = container.Children[s.Index].(*document.BlockNode)
			}
		}
	}
	if node == nil {
		return InsertNode{Parent: s.Parent, Index: s.Index}
	}
	return InsertNode{Parent: s.Parent, Index: s.Index, Node: node.Clone()}
}

func samePath(a, b []document.BlockID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func subtreeIDs(n *document.BlockNode) []document.BlockID {
	ids := []document.BlockID{n.ID}
	for _, nb := range n.ChildBlocks() {
		ids = append(ids, subtreeIDs(nb)...)
	}
	return ids
}
