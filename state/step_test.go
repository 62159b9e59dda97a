package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"notectl/document"
	"notectl/state"
)

func para(id document.BlockID, text string) *document.BlockNode {
	return document.NewBlock(id, "paragraph", nil, document.TextNode{Text: text})
}

func bold() document.Mark {
	return document.Mark{Type: "bold"}
}

// roundTrip applies step, then its inverse, and requires the original
// document back.
func roundTrip(t *testing.T, doc *document.Document, step state.Step) {
	t.Helper()
	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.NotSame(t, doc, res.Doc)

	inv := step.Invert(doc)
	back := inv.Apply(res.Doc)
	require.Empty(t, back.Failed)
	require.Equal(t, doc, back.Doc)
}

// Test_InsertText_ApplyAndInvert verifies the basic text edit round trip.
func Test_InsertText_ApplyAndInvert(t *testing.T) {
	doc := document.New(para("p1", "Hello"))
	step := state.InsertText{Block: "p1", Offset: 2, Text: "XY", Marks: []document.Mark{bold()}}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "HeXYllo", res.Doc.Block("p1").Text())
	require.Equal(t, []document.Mark{bold()}, res.Doc.Block("p1").MarksAt(2))

	// The source document is untouched.
	require.Equal(t, "Hello", doc.Block("p1").Text())

	roundTrip(t, doc, step)
}

// Test_InsertText_ClampsOffset verifies out-of-range offsets clamp to the
// block edges instead of failing.
func Test_InsertText_ClampsOffset(t *testing.T) {
	doc := document.New(para("p1", "ab"))

	res := state.InsertText{Block: "p1", Offset: 99, Text: "!"}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "ab!", res.Doc.Block("p1").Text())

	res = state.InsertText{Block: "p1", Offset: -3, Text: "!"}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "!ab", res.Doc.Block("p1").Text())

	roundTrip(t, doc, state.InsertText{Block: "p1", Offset: 99, Text: "!"})
}

// Test_InsertText_UnknownBlockFails verifies a miss reports rather than
// panics; the reducer turns this into a skipped step.
func Test_InsertText_UnknownBlockFails(t *testing.T) {
	doc := document.New(para("p1", "x"))
	res := state.InsertText{Block: "ghost", Offset: 0, Text: "y"}.Apply(doc)
	require.NotEmpty(t, res.Failed)
	require.Contains(t, res.Failed, "ghost")
}

// Test_DeleteText_InverseRestoresContent verifies undo brings back text,
// marks and atomic inline nodes exactly.
func Test_DeleteText_InverseRestoresContent(t *testing.T) {
	doc := document.New(document.NewBlock("p1", "paragraph", nil,
		document.TextNode{Text: "He", Marks: []document.Mark{bold()}},
		document.InlineNode{Type: "mention", Attrs: map[string]any{"user": "u1"}},
		document.TextNode{Text: "llo"},
	))
	step := state.DeleteText{Block: "p1", From: 1, To: 4}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "Hlo", res.Doc.Block("p1").Text())
	require.Equal(t, 0, res.Doc.Block("p1").InlineNodeCount())

	roundTrip(t, doc, step)
}

// Test_DeleteText_AllContentLeavesPlaceholder verifies an emptied block stays
// editable and the inverse still restores it.
func Test_DeleteText_AllContentLeavesPlaceholder(t *testing.T) {
	doc := document.New(para("p1", "Hello"))
	step := state.DeleteText{Block: "p1", From: 0, To: 5}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "", res.Doc.Block("p1").Text())
	require.Equal(t, []document.Child{document.TextNode{}}, res.Doc.Block("p1").Children)

	roundTrip(t, doc, step)
}

// Test_DeleteText_ClampsRange verifies over-long ranges clamp.
func Test_DeleteText_ClampsRange(t *testing.T) {
	doc := document.New(para("p1", "abc"))
	res := state.DeleteText{Block: "p1", From: 1, To: 99}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "a", res.Doc.Block("p1").Text())

	roundTrip(t, doc, state.DeleteText{Block: "p1", From: 1, To: 99})
}

// Test_InsertContent_CarriesInlineNodes verifies the paste-shaped insert.
func Test_InsertContent_CarriesInlineNodes(t *testing.T) {
	doc := document.New(para("p1", "ab"))
	mention := document.InlineNode{Type: "mention"}
	step := state.InsertContent{Block: "p1", Offset: 1, Segments: []document.Segment{
		{Text: "X", Marks: []document.Mark{bold()}},
		{Inline: &mention},
	}}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, 4, res.Doc.Block("p1").Length())
	require.Equal(t, 1, res.Doc.Block("p1").InlineNodeCount())

	roundTrip(t, doc, step)
}

// Test_AddMark_SplitsRunsAtBoundaries verifies partial-range marking and its
// exact inverse.
func Test_AddMark_SplitsRunsAtBoundaries(t *testing.T) {
	doc := document.New(para("p1", "Hello"))
	step := state.AddMark{Block: "p1", From: 1, To: 3, Mark: bold()}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	b := res.Doc.Block("p1")
	require.Equal(t, "Hello", b.Text())
	require.Nil(t, b.MarksAt(0))
	require.Equal(t, []document.Mark{bold()}, b.MarksAt(1))
	require.Equal(t, []document.Mark{bold()}, b.MarksAt(2))
	require.Nil(t, b.MarksAt(3))

	roundTrip(t, doc, step)
}

// Test_AddMark_SkipsInlineNodes verifies atomic inline nodes never carry
// text marks.
func Test_AddMark_SkipsInlineNodes(t *testing.T) {
	doc := document.New(document.NewBlock("p1", "paragraph", nil,
		document.TextNode{Text: "a"},
		document.InlineNode{Type: "math"},
		document.TextNode{Text: "b"},
	))
	step := state.AddMark{Block: "p1", From: 0, To: 3, Mark: bold()}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, 1, res.Doc.Block("p1").InlineNodeCount())

	roundTrip(t, doc, step)
}

// Test_RemoveMark_MatchesByType verifies removal ignores mark attrs and the
// inverse restores the exact pre-edit layout, attrs included.
func Test_RemoveMark_MatchesByType(t *testing.T) {
	link := document.Mark{Type: "link", Attrs: map[string]any{"href": "https://a"}}
	doc := document.New(document.NewBlock("p1", "paragraph", nil,
		document.TextNode{Text: "Hello", Marks: []document.Mark{link}}))
	step := state.RemoveMark{Block: "p1", From: 1, To: 3, Mark: document.Mark{Type: "link"}}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	b := res.Doc.Block("p1")
	require.Equal(t, []document.Mark{link}, b.MarksAt(0))
	require.Nil(t, b.MarksAt(1))

	roundTrip(t, doc, step)
}

// Test_SetBlockType_InvertRestoresAttrs verifies type conversion round trip.
func Test_SetBlockType_InvertRestoresAttrs(t *testing.T) {
	doc := document.New(document.NewBlock("b1", "heading", map[string]any{"level": 2},
		document.TextNode{Text: "Title"}))
	step := state.SetBlockType{Block: "b1", Type: "paragraph", Attrs: map[string]any{}}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, document.NodeType("paragraph"), res.Doc.Block("b1").Type)
	require.Equal(t, "Title", res.Doc.Block("b1").Text())

	roundTrip(t, doc, step)
}

// Test_SetNodeAttr_NilDeletes verifies single-attr updates and deletion.
func Test_SetNodeAttr_NilDeletes(t *testing.T) {
	doc := document.New(document.NewBlock("b1", "heading", map[string]any{"level": 2},
		document.TextNode{Text: "t"}))

	res := state.SetNodeAttr{Block: "b1", Name: "level", Value: 3}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, 3, res.Doc.Block("b1").Attrs["level"])

	res = state.SetNodeAttr{Block: "b1", Name: "level"}.Apply(doc)
	require.Empty(t, res.Failed)
	require.NotContains(t, res.Doc.Block("b1").Attrs, "level")
}

// Test_SplitBlock_ApplyAndInvert verifies split places the tail in a new
// sibling and joining back restores the original.
func Test_SplitBlock_ApplyAndInvert(t *testing.T) {
	doc := document.New(para("p1", "Hello world"), para("p2", "after"))
	step := state.SplitBlock{Block: "p1", Offset: 5, NewID: "p1b"}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Len(t, res.Doc.Blocks, 3)
	require.Equal(t, "Hello", res.Doc.Blocks[0].Text())
	require.Equal(t, document.BlockID("p1b"), res.Doc.Blocks[1].ID)
	require.Equal(t, " world", res.Doc.Blocks[1].Text())
	require.Equal(t, document.BlockID("p2"), res.Doc.Blocks[2].ID)

	roundTrip(t, doc, step)
}

// Test_SplitBlock_NestedBlocksFollowTheirContent verifies container children
// travel with the side of the split their anchor falls on: a nested block
// past the offset goes to the new sibling, one sitting exactly at the end
// stays.
func Test_SplitBlock_NestedBlocksFollowTheirContent(t *testing.T) {
	doc := document.New(document.NewBlock("item", "bulletListItem", nil,
		document.TextNode{Text: "ab"},
		document.NewBlock("sub", "bulletListItem", nil, document.TextNode{Text: "nested"}),
	))

	res := state.SplitBlock{Block: "item", Offset: 1, NewID: "item2"}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Empty(t, res.Doc.Block("item").ChildBlocks())
	require.Equal(t, "a", res.Doc.Block("item").Text())
	require.Len(t, res.Doc.Block("item2").ChildBlocks(), 1)
	require.Equal(t, "b", res.Doc.Block("item2").Text())

	res = state.SplitBlock{Block: "item", Offset: 2, NewID: "item2"}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Len(t, res.Doc.Block("item").ChildBlocks(), 1)
	require.Empty(t, res.Doc.Block("item2").ChildBlocks())

	roundTrip(t, doc, state.SplitBlock{Block: "item", Offset: 1, NewID: "item2"})
	roundTrip(t, doc, state.SplitBlock{Block: "item", Offset: 2, NewID: "item2"})
}

// Test_JoinBlocks_RequiresAdjacentSibling verifies the adjacency guard.
func Test_JoinBlocks_RequiresAdjacentSibling(t *testing.T) {
	doc := document.New(para("a", "1"), para("b", "2"), para("c", "3"))

	res := state.JoinBlocks{Block: "a", With: "c", At: 1}.Apply(doc)
	require.NotEmpty(t, res.Failed)

	res = state.JoinBlocks{Block: "a", With: "b", At: 1}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Len(t, res.Doc.Blocks, 2)
	require.Equal(t, "12", res.Doc.Block("a").Text())
}

// Test_JoinBlocks_ApplyAndInvert verifies the join/split round trip.
func Test_JoinBlocks_ApplyAndInvert(t *testing.T) {
	doc := document.New(para("a", "Hello"), para("b", " world"))
	roundTrip(t, doc, state.JoinBlocks{Block: "a", With: "b", At: 5})
}

// interleavedItem builds a container whose children mix text runs around a
// nested block: ["ab", sub, "cd"].
func interleavedItem() *document.Document {
	return document.New(document.NewBlock("item", "bulletListItem", nil,
		document.TextNode{Text: "ab"},
		document.NewBlock("sub", "bulletListItem", nil, document.TextNode{Text: "nested"}),
		document.TextNode{Text: "cd"},
	))
}

// Test_InsertText_KeepsInterleavedNestedBlocks verifies an insert into a
// block whose children mix text and nested blocks leaves the nested block
// where it was.
func Test_InsertText_KeepsInterleavedNestedBlocks(t *testing.T) {
	doc := interleavedItem()
	step := state.InsertText{Block: "item", Offset: 1, Text: "X"}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, []document.Child{
		document.TextNode{Text: "aXb"},
		res.Doc.Block("sub"),
		document.TextNode{Text: "cd"},
	}, res.Doc.Block("item").Children)

	roundTrip(t, doc, step)
}

// Test_DeleteText_KeepsInterleavedNestedBlocks verifies a delete before a
// mid-list nested block neither moves it nor merges the runs around it, and
// that the inverse restores the original child order.
func Test_DeleteText_KeepsInterleavedNestedBlocks(t *testing.T) {
	doc := interleavedItem()
	step := state.DeleteText{Block: "item", From: 0, To: 1}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, []document.Child{
		document.TextNode{Text: "b"},
		res.Doc.Block("sub"),
		document.TextNode{Text: "cd"},
	}, res.Doc.Block("item").Children)

	roundTrip(t, doc, step)
}

// Test_DeleteText_AcrossNestedBlockRestoresLayout verifies a range running
// over a nested block's position deletes only inline content, and undo puts
// each run back on its own side of the block.
func Test_DeleteText_AcrossNestedBlockRestoresLayout(t *testing.T) {
	doc := interleavedItem()
	step := state.DeleteText{Block: "item", From: 1, To: 3}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, []document.Child{
		document.TextNode{Text: "a"},
		res.Doc.Block("sub"),
		document.TextNode{Text: "d"},
	}, res.Doc.Block("item").Children)

	roundTrip(t, doc, step)
}

// Test_AddMark_KeepsInterleavedNestedBlocks verifies marking a range that
// spans a nested block's position rewrites the runs in place.
func Test_AddMark_KeepsInterleavedNestedBlocks(t *testing.T) {
	doc := interleavedItem()
	step := state.AddMark{Block: "item", From: 1, To: 3, Mark: bold()}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, []document.Child{
		document.TextNode{Text: "a"},
		document.TextNode{Text: "b", Marks: []document.Mark{bold()}},
		res.Doc.Block("sub"),
		document.TextNode{Text: "c", Marks: []document.Mark{bold()}},
		document.TextNode{Text: "d"},
	}, res.Doc.Block("item").Children)

	roundTrip(t, doc, step)
}

// Test_SplitBlock_InterleavedRoundTrip verifies splitting through mixed
// children keeps every child on the side its anchor falls on and joins back
// exactly.
func Test_SplitBlock_InterleavedRoundTrip(t *testing.T) {
	doc := interleavedItem()
	step := state.SplitBlock{Block: "item", Offset: 1, NewID: "item2"}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, "a", res.Doc.Block("item").Text())
	require.Equal(t, []document.Child{
		document.TextNode{Text: "b"},
		res.Doc.Block("sub"),
		document.TextNode{Text: "cd"},
	}, res.Doc.Block("item2").Children)

	roundTrip(t, doc, step)
}

// Test_JoinBlocks_KeepsInterleavedNestedBlocks verifies joining appends the
// absorbed block's children after the survivor's, mid-list nested blocks
// staying put on both sides.
func Test_JoinBlocks_KeepsInterleavedNestedBlocks(t *testing.T) {
	doc := document.New(
		document.NewBlock("item", "bulletListItem", nil,
			document.TextNode{Text: "ab"},
			document.NewBlock("subL", "bulletListItem", nil, document.TextNode{Text: "left"}),
		),
		document.NewBlock("next", "bulletListItem", nil,
			document.NewBlock("subR", "bulletListItem", nil, document.TextNode{Text: "right"}),
			document.TextNode{Text: "cd"},
		),
	)
	step := state.JoinBlocks{Block: "item", With: "next", At: 2}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Equal(t, []document.Child{
		document.TextNode{Text: "ab"},
		res.Doc.Block("subL"),
		res.Doc.Block("subR"),
		document.TextNode{Text: "cd"},
	}, res.Doc.Block("item").Children)

	roundTrip(t, doc, step)
}

// Test_InsertNode_ApplyAndInvert verifies structural insert round trip under
// a nested parent.
func Test_InsertNode_ApplyAndInvert(t *testing.T) {
	doc := document.New(document.NewBlock("list", "bulletListItem", nil,
		document.TextNode{Text: "top"},
		document.NewBlock("item1", "bulletListItem", nil, document.TextNode{Text: "one"}),
	))
	node := para("item2", "two")
	step := state.InsertNode{Parent: []document.BlockID{"list"}, Index: 2, Node: node}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Len(t, res.Doc.Block("list").ChildBlocks(), 2)

	roundTrip(t, doc, step)
}

// Test_RemoveNode_GuardsAgainstReorderedSibling verifies the id guard.
func Test_RemoveNode_GuardsAgainstReorderedSibling(t *testing.T) {
	doc := document.New(para("a", "1"), para("b", "2"))

	res := state.RemoveNode{Index: 0, Block: "b"}.Apply(doc)
	require.NotEmpty(t, res.Failed)

	res = state.RemoveNode{Index: 0, Block: "a"}.Apply(doc)
	require.Empty(t, res.Failed)
	require.Len(t, res.Doc.Blocks, 1)
}

// Test_RemoveNode_InverseRestoresSubtree verifies undo of a subtree removal.
func Test_RemoveNode_InverseRestoresSubtree(t *testing.T) {
	doc := document.New(
		para("p1", "before"),
		document.NewBlock("list", "bulletListItem", nil,
			document.TextNode{Text: "top"},
			document.NewBlock("item1", "bulletListItem", nil, document.TextNode{Text: "one"}),
		),
	)
	step := state.RemoveNode{Index: 1, Block: "list",
		RemovedIDs: []document.BlockID{"list", "item1"}}
	roundTrip(t, doc, step)
}

// Test_SetSelection_DocNoOp verifies meta steps leave the document alone and
// self-invert from their carried previous value.
func Test_SetSelection_DocNoOp(t *testing.T) {
	doc := document.New(para("p1", "x"))
	step := state.SetSelection{Sel: state.Caret("p1", 1), Prev: state.Caret("p1", 0)}

	res := step.Apply(doc)
	require.Empty(t, res.Failed)
	require.Same(t, doc, res.Doc)
	require.False(t, state.DocStep(step))

	inv, ok := step.Invert(doc).(state.SetSelection)
	require.True(t, ok)
	require.True(t, state.SameSelection(state.Caret("p1", 0), inv.Sel))
}
