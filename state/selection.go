// Package state implements the transactional editing engine: the selection
// model, invertible steps, transactions, the EditorState reducer, and
// undo/redo history.
package state

import "notectl/document"

// Position addresses one point in a block's inline offset space. Offset
// counts text runes plus one unit per atomic inline node. Path, when set,
// is the id chain from root to the block; BlockID uniqueness makes it
// optional.
type Position struct {
	Block  document.BlockID
	Offset int
	Path   []document.BlockID
}

// Selection is a tagged union: TextSelection, NodeSelection or GapCursor.
// Exactly one variant is active at a time.
type Selection interface {
	selection()
}

// TextSelection is an anchor/head range over inline content. It is
// collapsed (a caret) when anchor equals head. Anchor is where the
// selection started; head is the moving end.
type TextSelection struct {
	Anchor Position
	Head   Position
}

func (TextSelection) selection() {}

// Collapsed reports whether the selection is a caret.
func (s TextSelection) Collapsed() bool {
	return s.Anchor.Block == s.Head.Block && s.Anchor.Offset == s.Head.Offset
}

// Caret returns a collapsed selection at the given point.
func Caret(block document.BlockID, offset int) TextSelection {
	p := Position{Block: block, Offset: offset}
	return TextSelection{Anchor: p, Head: p}
}

// NodeSelection selects an entire block as an atomic unit, used for void
// and otherwise whole-selectable blocks.
type NodeSelection struct {
	Node document.BlockID
	Path []document.BlockID
}

func (NodeSelection) selection() {}

// GapSide says which side of a void block a gap cursor sits on.
type GapSide string

const (
	GapBefore GapSide = "before"
	GapAfter  GapSide = "after"
)

// GapCursor is a caret adjacent to, not inside, a void block.
type GapCursor struct {
	Block document.BlockID
	Side  GapSide
}

func (GapCursor) selection() {}

// SameSelection reports structural equality of two selections.
func SameSelection(a, b Selection) bool {
	switch x := a.(type) {
	case TextSelection:
		y, ok := b.(TextSelection)
		return ok && x.Anchor.Block == y.Anchor.Block && x.Anchor.Offset == y.Anchor.Offset &&
			x.Head.Block == y.Head.Block && x.Head.Offset == y.Head.Offset
	case NodeSelection:
		y, ok := b.(NodeSelection)
		return ok && x.Node == y.Node
	case GapCursor:
		y, ok := b.(GapCursor)
		return ok && x.Block == y.Block && x.Side == y.Side
	case nil:
		return b == nil
	}
	return false
}
