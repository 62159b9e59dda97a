package state

import (
	"time"

	"notectl/document"
)

// Builder accumulates steps against a running draft of the document, so
// each call sees the effect of the previous ones, while the emitted
// Transaction keeps the original ordered step list. Apply and Invert then
// work against true pre-step state, step by step.
type Builder struct {
	base      *EditorState
	draft     *document.Document
	steps     []Step
	selection Selection
	stored    []document.Mark
	meta      Metadata
}

// Tr starts a transaction builder against this state.
func (s *EditorState) Tr(origin Origin) *Builder {
	return &Builder{
		base:      s,
		draft:     s.Doc,
		selection: s.Selection,
		stored:    s.StoredMarks,
		meta:      Metadata{Origin: origin, Time: time.Now()},
	}
}

// Draft returns the document as mutated by the steps added so far.
func (b *Builder) Draft() *document.Document {
	return b.draft
}

func (b *Builder) add(step Step) *Builder {
	res := step.Apply(b.draft)
	if res.Failed == "" {
		b.draft = res.Doc
	}
	b.steps = append(b.steps, step)
	return b
}

// InsertText inserts text with marks at an inline offset.
func (b *Builder) InsertText(block document.BlockID, offset int, text string, marks []document.Mark) *Builder {
	return b.add(InsertText{Block: block, Offset: offset, Text: text, Marks: marks})
}

// InsertContent inserts content segments at an inline offset.
func (b *Builder) InsertContent(block document.BlockID, offset int, segs []document.Segment) *Builder {
	return b.add(InsertContent{Block: block, Offset: offset, Segments: segs})
}

// DeleteText removes inline content in [from,to).
func (b *Builder) DeleteText(block document.BlockID, from, to int) *Builder {
	return b.add(DeleteText{Block: block, From: from, To: to})
}

// AddMark applies a mark over [from,to).
func (b *Builder) AddMark(block document.BlockID, from, to int, mark document.Mark) *Builder {
	return b.add(AddMark{Block: block, From: from, To: to, Mark: mark})
}

// RemoveMark clears a mark type over [from,to).
func (b *Builder) RemoveMark(block document.BlockID, from, to int, mark document.Mark) *Builder {
	return b.add(RemoveMark{Block: block, From: from, To: to, Mark: mark})
}

// SetBlockType converts a block to another type.
func (b *Builder) SetBlockType(block document.BlockID, typ document.NodeType, attrs map[string]any) *Builder {
	return b.add(SetBlockType{Block: block, Type: typ, Attrs: attrs})
}

// SetNodeAttr sets one block attribute; nil deletes it.
func (b *Builder) SetNodeAttr(block document.BlockID, name string, value any) *Builder {
	return b.add(SetNodeAttr{Block: block, Name: name, Value: value})
}

// SplitBlock splits a block at offset, returning the new right-hand block's
// id alongside the builder.
func (b *Builder) SplitBlock(block document.BlockID, offset int) (*Builder, document.BlockID) {
	newID := document.NewBlockID()
	return b.add(SplitBlock{Block: block, Offset: offset, NewID: newID}), newID
}

// JoinBlocks merges the next sibling `with` into block.
func (b *Builder) JoinBlocks(block, with document.BlockID) *Builder {
	at := 0
	if n := b.draft.Block(block); n != nil {
		at = n.Length()
	}
	return b.add(JoinBlocks{Block: block, With: with, At: at})
}

// InsertNodeAt inserts a block subtree at parent[index].
func (b *Builder) InsertNodeAt(parent []document.BlockID, index int, node *document.BlockNode) *Builder {
	return b.add(InsertNode{Parent: parent, Index: index, Node: node})
}

// InsertBlockAfter inserts node as the next sibling of the given block.
func (b *Builder) InsertBlockAfter(sibling document.BlockID, node *document.BlockNode) *Builder {
	parent, index, ok := b.draft.IndexOf(sibling)
	if !ok {
		return b.add(InsertNode{Parent: []document.BlockID{sibling}, Index: 0, Node: node})
	}
	return b.add(InsertNode{Parent: parent, Index: index + 1, Node: node})
}

// InsertBlockBefore inserts node as the previous sibling of the given block.
func (b *Builder) InsertBlockBefore(sibling document.BlockID, node *document.BlockNode) *Builder {
	parent, index, ok := b.draft.IndexOf(sibling)
	if !ok {
		return b.add(InsertNode{Parent: []document.BlockID{sibling}, Index: 0, Node: node})
	}
	return b.add(InsertNode{Parent: parent, Index: index, Node: node})
}

// RemoveNode removes a block (and its subtree) by id.
func (b *Builder) RemoveNode(block document.BlockID) *Builder {
	parent, index, ok := b.draft.IndexOf(block)
	if !ok {
		return b.add(RemoveNode{Block: block, Index: -1})
	}
	var ids []document.BlockID
	if n := b.draft.Block(block); n != nil {
		ids = subtreeIDs(n)
	}
	return b.add(RemoveNode{Parent: parent, Index: index, Block: block, RemovedIDs: ids})
}

// SetSelection records the selection the transaction ends with.
func (b *Builder) SetSelection(sel Selection) *Builder {
	b.add(SetSelection{Sel: sel, Prev: b.selection})
	b.selection = sel
	return b
}

// SetStoredMarks records the stored-mark set the transaction ends with.
func (b *Builder) SetStoredMarks(marks []document.Mark) *Builder {
	b.add(SetStoredMarks{Marks: marks, Prev: b.stored})
	b.stored = marks
	return b
}

// WithUndoGroup names an explicit history coalescing group.
func (b *Builder) WithUndoGroup(name string) *Builder {
	b.meta.UndoGroup = name
	return b
}

// WithHistoryDirection flags the transaction as undo/redo playback.
func (b *Builder) WithHistoryDirection(dir HistoryDirection) *Builder {
	b.meta.HistoryDirection = dir
	return b
}

// Build emits the transaction.
func (b *Builder) Build() *Transaction {
	return &Transaction{
		Steps:            b.steps,
		SelectionBefore:  b.base.Selection,
		SelectionAfter:   b.selection,
		StoredMarksAfter: b.stored,
		Meta:             b.meta,
	}
}
