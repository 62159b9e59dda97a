// Package caret computes cursor movement across and inside blocks. All
// functions are pure: they read an EditorState and return the selection a
// navigation command would produce, or report the command as not handled.
package caret

import (
	"github.com/rivo/uniseg"

	"notectl/document"
	"notectl/state"
)

// Dir is an arrow-key direction.
type Dir int

const (
	Left Dir = iota
	Right
	Up
	Down
)

func (d Dir) forward() bool {
	return d == Right || d == Down
}

func (d Dir) horizontal() bool {
	return d == Left || d == Right
}

// Move computes the selection after one arrow-key movement. handled is
// false when the movement is impossible (document edge, isolating
// boundary), letting the host fall through to default behavior.
func Move(st *state.EditorState, dir Dir) (sel state.Selection, handled bool) {
	switch cur := st.Selection.(type) {
	case state.TextSelection:
		return moveFromText(st, cur, dir)
	case state.NodeSelection:
		return moveFromNode(st, cur, dir)
	case state.GapCursor:
		return moveFromGap(st, cur, dir)
	}
	return nil, false
}

func moveFromText(st *state.EditorState, cur state.TextSelection, dir Dir) (state.Selection, bool) {
	if !cur.Collapsed() && dir.horizontal() {
		// A horizontal arrow collapses a range to its edge.
		lo, hi := orderPositions(st, cur.Anchor, cur.Head)
		if dir == Left {
			return state.Caret(lo.Block, lo.Offset), true
		}
		return state.Caret(hi.Block, hi.Offset), true
	}
	pos := cur.Head
	b := st.Block(pos.Block)
	if b == nil {
		return nil, false
	}
	if dir.horizontal() {
		if w := stepWidth(b, pos.Offset, dir == Right); w > 0 {
			if dir == Right {
				return state.Caret(pos.Block, pos.Offset+w), true
			}
			return state.Caret(pos.Block, pos.Offset-w), true
		}
	}
	return enterNeighbor(st, pos.Block, dir)
}

func moveFromNode(st *state.EditorState, cur state.NodeSelection, dir Dir) (state.Selection, bool) {
	sel, ok := enterNeighbor(st, cur.Node, dir)
	if ok {
		return sel, true
	}
	// At a document edge a selected void block degrades to a gap cursor,
	// so typing before or after it stays possible.
	if b := st.Block(cur.Node); b != nil && st.Schema.IsVoid(b.Type) {
		if dir.forward() {
			return state.GapCursor{Block: cur.Node, Side: state.GapAfter}, true
		}
		return state.GapCursor{Block: cur.Node, Side: state.GapBefore}, true
	}
	return nil, false
}

func moveFromGap(st *state.EditorState, cur state.GapCursor, dir Dir) (state.Selection, bool) {
	toward := (cur.Side == state.GapBefore && dir.forward()) ||
		(cur.Side == state.GapAfter && !dir.forward())
	if toward {
		return state.NodeSelection{Node: cur.Block, Path: st.NodePath(cur.Block)}, true
	}
	return enterNeighbor(st, cur.Block, dir)
}

// enterNeighbor moves the selection into the nearest navigable block on the
// given side of `from`, respecting isolating boundaries.
func enterNeighbor(st *state.EditorState, from document.BlockID, dir Dir) (state.Selection, bool) {
	nb, ok := neighbor(st, from, dir.forward())
	if !ok {
		return nil, false
	}
	if !CanCrossBlockBoundary(st, from, nb) {
		return nil, false
	}
	target := st.Block(nb)
	if st.Schema.IsVoid(target.Type) {
		return state.NodeSelection{Node: nb, Path: st.NodePath(nb)}, true
	}
	if dir.forward() {
		return state.Caret(nb, 0), true
	}
	return state.Caret(nb, target.Length()), true
}

// neighbor finds the closest navigable block before or after id in reading
// order. Containers whose children are blocks are skipped; the cursor lives
// in leaf blocks and void blocks only.
func neighbor(st *state.EditorState, id document.BlockID, forward bool) (document.BlockID, bool) {
	order := st.BlockOrder()
	idx := -1
	for i, b := range order {
		if b == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}
	step := -1
	if forward {
		step = 1
	}
	for i := idx + step; i >= 0 && i < len(order); i += step {
		if navigable(st, order[i]) {
			return order[i], true
		}
	}
	return "", false
}

func navigable(st *state.EditorState, id document.BlockID) bool {
	b := st.Block(id)
	if b == nil {
		return false
	}
	if st.Schema.IsVoid(b.Type) {
		return true
	}
	return len(b.ChildBlocks()) == 0
}

// CanCrossBlockBoundary reports whether the cursor may travel between two
// blocks. Crossing is forbidden when either block is itself isolating, or
// when exactly one of the two sits inside an isolating ancestor; both
// inside is allowed only when they share the same isolating parent.
func CanCrossBlockBoundary(st *state.EditorState, a, b document.BlockID) bool {
	ba, bb := st.Block(a), st.Block(b)
	if ba == nil || bb == nil {
		return false
	}
	if st.Schema.IsIsolating(ba.Type) || st.Schema.IsIsolating(bb.Type) {
		return false
	}
	ia, oka := isolatingAncestor(st, a)
	ib, okb := isolatingAncestor(st, b)
	if oka != okb {
		return false
	}
	if oka && okb {
		return ia == ib
	}
	return true
}

func isolatingAncestor(st *state.EditorState, id document.BlockID) (document.BlockID, bool) {
	cur := id
	for {
		p, ok := st.Parent(cur)
		if !ok {
			return "", false
		}
		if pb := st.Block(p); pb != nil && st.Schema.IsIsolating(pb.Type) {
			return p, true
		}
		cur = p
	}
}

// stepWidth returns the width in offset units of one horizontal movement
// from off inside the block, or 0 at the block boundary. Movement over an
// atomic inline node jumps its whole one-unit span; movement over text
// advances by grapheme clusters, never splitting one.
func stepWidth(b *document.BlockNode, off int, forward bool) int {
	for _, span := range b.InlineSpans() {
		t, isText := span.Child.(document.TextNode)
		if forward {
			if off < span.From || off >= span.To {
				continue
			}
			if !isText {
				return 1
			}
			rest := runeSlice(t.Text, off-span.From, span.To-span.From)
			return firstClusterWidth(rest)
		}
		if off <= span.From || off > span.To {
			continue
		}
		if !isText {
			return 1
		}
		head := runeSlice(t.Text, 0, off-span.From)
		return lastClusterWidth(head)
	}
	return 0
}

func firstClusterWidth(s string) int {
	if s == "" {
		return 0
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return runeCount(cluster)
}

func lastClusterWidth(s string) int {
	if s == "" {
		return 0
	}
	rest := s
	last := ""
	st := -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, st = uniseg.FirstGraphemeClusterInString(rest, st)
		last = cluster
	}
	return runeCount(last)
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

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

// orderPositions returns the two positions of a range selection in reading
// order.
func orderPositions(st *state.EditorState, a, b state.Position) (lo, hi state.Position) {
	if a.Block == b.Block {
		if a.Offset <= b.Offset {
			return a, b
		}
		return b, a
	}
	for _, id := range st.BlockOrder() {
		if id == a.Block {
			return a, b
		}
		if id == b.Block {
			return b, a
		}
	}
	return a, b
}
