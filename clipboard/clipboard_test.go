package clipboard_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"notectl/clipboard"
	"notectl/document"
	"notectl/schema"
	"notectl/state"
)

func para(id document.BlockID, text string) *document.BlockNode {
	return document.NewBlock(id, schema.Paragraph, nil, document.TextNode{Text: text})
}

func stateWith(sel state.Selection, blocks ...*document.BlockNode) *state.EditorState {
	return state.New(document.New(blocks...), sel, schema.NewRegistry())
}

// Test_Copy_RangeSameBlock verifies a plain text-range copy.
func Test_Copy_RangeSameBlock(t *testing.T) {
	sel := state.TextSelection{
		Anchor: state.Position{Block: "p1", Offset: 0},
		Head:   state.Position{Block: "p1", Offset: 5},
	}
	st := stateWith(sel, para("p1", "Hello world"))

	payload, ok := clipboard.Copy(st)
	require.True(t, ok)
	require.Equal(t, "Hello", payload.Plain)
	require.Equal(t, "Hello", payload.HTML)
	require.Nil(t, payload.Block)
}

// Test_Copy_ReversedRangeNormalizes verifies anchor/head order is irrelevant.
func Test_Copy_ReversedRangeNormalizes(t *testing.T) {
	sel := state.TextSelection{
		Anchor: state.Position{Block: "p1", Offset: 5},
		Head:   state.Position{Block: "p1", Offset: 0},
	}
	st := stateWith(sel, para("p1", "Hello world"))

	payload, ok := clipboard.Copy(st)
	require.True(t, ok)
	require.Equal(t, "Hello", payload.Plain)
}

// Test_Copy_MarksRenderToHTML verifies the text/html flavor nests mark tags.
func Test_Copy_MarksRenderToHTML(t *testing.T) {
	sel := state.TextSelection{
		Anchor: state.Position{Block: "p1", Offset: 0},
		Head:   state.Position{Block: "p1", Offset: 5},
	}
	st := stateWith(sel, document.NewBlock("p1", schema.Paragraph, nil,
		document.TextNode{Text: "Hello", Marks: []document.Mark{{Type: schema.Bold}}},
		document.TextNode{Text: " world"},
	))

	payload, ok := clipboard.Copy(st)
	require.True(t, ok)
	require.Equal(t, "<strong>Hello</strong>", payload.HTML)
}

// Test_Copy_NodeSelectionWritesBlockFlavor verifies a block copy carries the
// structural JSON flavor and dispatches nothing.
func Test_Copy_NodeSelectionWritesBlockFlavor(t *testing.T) {
	img := document.NewBlock("img1", schema.Image,
		map[string]any{"url": "https://x/pic.png", "caption": "pic"})
	st := stateWith(state.NodeSelection{Node: "img1"}, para("p1", "text"), img)

	payload, ok := clipboard.Copy(st)
	require.True(t, ok)
	require.NotNil(t, payload.Block)

	var back document.BlockNode
	require.NoError(t, json.Unmarshal(payload.Block, &back))
	require.Equal(t, document.BlockID("img1"), back.ID)
	require.Equal(t, schema.Image, back.Type)
	require.Equal(t, "https://x/pic.png", back.Attrs["url"])

	require.Contains(t, payload.Data(), clipboard.MIMEBlock)
	require.Equal(t, `<img src="https://x/pic.png" alt="pic">`, payload.HTML)
}

// Test_Copy_CrossBlockRange verifies whole-block middle plus partial ends.
func Test_Copy_CrossBlockRange(t *testing.T) {
	sel := state.TextSelection{
		Anchor: state.Position{Block: "p1", Offset: 3},
		Head:   state.Position{Block: "p3", Offset: 2},
	}
	st := stateWith(sel, para("p1", "abcde"), para("p2", "middle"), para("p3", "xyz"))

	payload, ok := clipboard.Copy(st)
	require.True(t, ok)
	require.Equal(t, "de\nmiddle\nxy", payload.Plain)
}

// Test_Copy_NothingToCopy verifies collapsed and gap selections refuse.
func Test_Copy_NothingToCopy(t *testing.T) {
	st := stateWith(state.Caret("p1", 2), para("p1", "abc"))
	_, ok := clipboard.Copy(st)
	require.False(t, ok)

	gap := stateWith(state.GapCursor{Block: "p1", Side: state.GapBefore}, para("p1", "abc"))
	_, ok = clipboard.Copy(gap)
	require.False(t, ok)
}

// Test_Cut_RangeBuildsDeletingTransaction verifies cut returns the payload
// plus one input-origin transaction that deletes the range and collapses the
// caret.
func Test_Cut_RangeBuildsDeletingTransaction(t *testing.T) {
	sel := state.TextSelection{
		Anchor: state.Position{Block: "p1", Offset: 0},
		Head:   state.Position{Block: "p1", Offset: 5},
	}
	st := stateWith(sel, para("p1", "Hello world"))

	payload, tr, ok := clipboard.Cut(st)
	require.True(t, ok)
	require.Equal(t, "Hello", payload.Plain)
	require.Equal(t, state.OriginInput, tr.Meta.Origin)

	next := st.Apply(tr)
	require.Equal(t, " world", next.Block("p1").Text())
	require.True(t, state.SameSelection(state.Caret("p1", 0), next.Selection))
	// The snapshot the cut was built from is untouched.
	require.Equal(t, "Hello world", st.Block("p1").Text())
}

// Test_Cut_NodeSelectionRemovesBlock verifies a block cut removes the node
// and parks the caret at the end of the previous text block.
func Test_Cut_NodeSelectionRemovesBlock(t *testing.T) {
	st := stateWith(state.NodeSelection{Node: "hr1"},
		para("p1", "abc"),
		document.NewBlock("hr1", schema.Divider, nil),
	)

	payload, tr, ok := clipboard.Cut(st)
	require.True(t, ok)
	require.NotNil(t, payload.Block)

	next := st.Apply(tr)
	require.Nil(t, next.Block("hr1"))
	require.True(t, state.SameSelection(state.Caret("p1", 3), next.Selection))
}

// Test_Cut_CrossBlockRefused verifies multi-block cut is not offered.
func Test_Cut_CrossBlockRefused(t *testing.T) {
	sel := state.TextSelection{
		Anchor: state.Position{Block: "p1", Offset: 0},
		Head:   state.Position{Block: "p2", Offset: 1},
	}
	st := stateWith(sel, para("p1", "ab"), para("p2", "cd"))

	_, _, ok := clipboard.Cut(st)
	require.False(t, ok)
}

// Test_ParseHTML_BasicStructure verifies pasted markup maps into the block
// vocabulary with marks attached.
func Test_ParseHTML_BasicStructure(t *testing.T) {
	reg := schema.NewRegistry()
	doc, err := clipboard.ParseHTML(reg,
		`<h2>Title</h2><p>Hello <strong>bold</strong> text</p><hr>`)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)

	require.Equal(t, schema.Heading, doc.Blocks[0].Type)
	require.Equal(t, "Title", doc.Blocks[0].Text())

	p := doc.Blocks[1]
	require.Equal(t, schema.Paragraph, p.Type)
	require.Equal(t, "Hello bold text", p.Text())
	require.Equal(t, []document.Mark{{Type: schema.Bold}}, p.MarksAt(6))

	require.Equal(t, schema.Divider, doc.Blocks[2].Type)
}

// Test_ParseHTML_LooseTextBecomesParagraph verifies bare inline content
// outside any block element still imports.
func Test_ParseHTML_LooseTextBecomesParagraph(t *testing.T) {
	reg := schema.NewRegistry()
	doc, err := clipboard.ParseHTML(reg, `just <em>some</em> text`)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, schema.Paragraph, doc.Blocks[0].Type)
	require.Equal(t, "just some text", doc.Blocks[0].Text())
}

// Test_ParseHTML_StripsDangerousMarkup verifies scripts never survive the
// import.
func Test_ParseHTML_StripsDangerousMarkup(t *testing.T) {
	reg := schema.NewRegistry()
	doc, err := clipboard.ParseHTML(reg,
		`<p>safe</p><script>alert("x")</script>`)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	require.Equal(t, "safe", doc.Blocks[0].Text())
}

// Test_ParseHTML_LinkCarriesHref verifies link marks keep their target.
func Test_ParseHTML_LinkCarriesHref(t *testing.T) {
	reg := schema.NewRegistry()
	doc, err := clipboard.ParseHTML(reg, `<p><a href="https://example.com">go</a></p>`)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)

	marks := doc.Blocks[0].MarksAt(0)
	require.Len(t, marks, 1)
	require.Equal(t, schema.Link, marks[0].Type)
	require.Equal(t, "https://example.com", marks[0].Attrs["href"])
}

// Test_RenderBlocksHTML_NestedMarks verifies nested mark tags close in
// reverse order.
func Test_RenderBlocksHTML_NestedMarks(t *testing.T) {
	reg := schema.NewRegistry()
	b := document.NewBlock("p1", schema.Paragraph, nil,
		document.TextNode{Text: "x", Marks: []document.Mark{
			{Type: schema.Bold}, {Type: schema.Italic},
		}},
	)
	out := clipboard.RenderBlocksHTML(reg, []*document.BlockNode{b})
	require.Equal(t, "<p><strong><em>x</em></strong></p>", out)
}

// Test_RenderSegmentsHTML_EscapesText verifies markup characters in content
// are escaped.
func Test_RenderSegmentsHTML_EscapesText(t *testing.T) {
	reg := schema.NewRegistry()
	out := clipboard.RenderSegmentsHTML(reg, []document.Segment{{Text: "a < b"}})
	require.Equal(t, "a &lt; b", out)
}
