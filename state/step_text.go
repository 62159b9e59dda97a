package state

import (
	"fmt"

	"notectl/document"
)

// InsertText inserts a text run with the given marks at an inline offset.
// Out-of-range offsets clamp to [0, block length]. Nested block children
// keep their positions; the run lands ahead of any nested block sitting
// exactly at the offset.
type InsertText struct {
	Block  document.BlockID
	Offset int
	Text   string
	Marks  []document.Mark
}

// Apply implements Step.
func (s InsertText) Apply(doc *document.Document) Result {
	next, ok := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		off := clampOffset(s.Offset, b.Length())
		return b.SpliceInline(off, off, []document.Segment{{Text: s.Text, Marks: s.Marks}}, nil)
	})
	if !ok {
		return Fail(fmt.Sprintf("insertText: unknown block %s", s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s InsertText) Invert(pre *document.Document) Step {
	off := s.Offset
	if b := pre.Block(s.Block); b != nil {
		off = clampOffset(off, b.Length())
	}
	return DeleteText{Block: s.Block, From: off, To: off + runeLen(s.Text)}
}

// InsertContent inserts whole content segments (text runs and atomic inline
// nodes) at an inline offset. It is the inverse shape of DeleteText and the
// workhorse of paste. Anchors, when set, distributes the segments around
// the nested blocks sitting at Offset so undoing a delete that ran across
// them restores the original child order.
type InsertContent struct {
	Block    document.BlockID
	Offset   int
	Segments []document.Segment
	Anchors  []int
}

// Apply implements Step.
func (s InsertContent) Apply(doc *document.Document) Result {
	next, ok := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		off := clampOffset(s.Offset, b.Length())
		return b.SpliceInline(off, off, s.Segments, s.Anchors)
	})
	if !ok {
		return Fail(fmt.Sprintf("insertContent: unknown block %s", s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s InsertContent) Invert(pre *document.Document) Step {
	off := s.Offset
	if b := pre.Block(s.Block); b != nil {
		off = clampOffset(off, b.Length())
	}
	return DeleteText{Block: s.Block, From: off, To: off + document.SegmentsWidth(s.Segments)}
}

// DeleteText removes inline content in [From,To). The range clamps to the
// block's length. Nested block children inside the range are untouched; the
// inverse carries the removed segments and their positions relative to
// those blocks, so undo restores text, marks, inline nodes and child order
// exactly.
type DeleteText struct {
	Block document.BlockID
	From  int
	To    int
}

// Apply implements Step.
func (s DeleteText) Apply(doc *document.Document) Result {
	next, ok := doc.Transform(s.Block, func(b *document.BlockNode) *document.BlockNode {
		from, to := clampSpan(s.From, s.To, b.Length())
		return b.SpliceInline(from, to, nil, nil)
	})
	if !ok {
		return Fail(fmt.Sprintf("deleteText: unknown block %s", s.Block))
	}
	return OK(next)
}

// Invert implements Step.
func (s DeleteText) Invert(pre *document.Document) Step {
	b := pre.Block(s.Block)
	if b == nil {
		return InsertContent{Block: s.Block, Offset: s.From}
	}
	from, to := clampSpan(s.From, s.To, b.Length())
	segs, anchors := b.ContentAnchorsInRange(from, to)
	return InsertContent{Block: s.Block, Offset: from, Segments: segs, Anchors: anchors}
}
