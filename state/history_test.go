package state_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notectl/document"
	"notectl/schema"
	"notectl/state"
)

func historyFixture() (*state.EditorState, *state.History) {
	st := newState(para("p1", ""))
	h := state.NewHistory(state.HistoryConfig{GroupWindow: time.Minute, MaxDepth: 100})
	return st, h
}

// typeText applies one input transaction and records it, returning the next
// state.
func typeText(h *state.History, st *state.EditorState, offset int, text string) *state.EditorState {
	tr := st.Tr(state.OriginInput).InsertText("p1", offset, text, nil).Build()
	next := st.Apply(tr)
	h.Record(tr, st)
	return next
}

// Test_History_UndoRedoRoundTrip verifies one edit cycles through undo and
// redo.
func Test_History_UndoRedoRoundTrip(t *testing.T) {
	st0, h := historyFixture()
	st1 := typeText(h, st0, 0, "Hello")
	require.True(t, h.CanUndo())
	require.False(t, h.CanRedo())

	play, ok := h.Undo(st1)
	require.True(t, ok)
	require.Equal(t, state.HistoryUndo, play.Meta.HistoryDirection)
	st2 := st1.Apply(play)
	require.Equal(t, st0.Doc, st2.Doc)
	require.True(t, h.CanRedo())

	replay, ok := h.Redo(st2)
	require.True(t, ok)
	require.Equal(t, state.HistoryRedo, replay.Meta.HistoryDirection)
	st3 := st2.Apply(replay)
	require.Equal(t, st1.Doc, st3.Doc)
	require.True(t, h.CanUndo())
}

// Test_History_CoalescesTypingBursts verifies consecutive input edits inside
// the group window undo as one unit.
func Test_History_CoalescesTypingBursts(t *testing.T) {
	st0, h := historyFixture()
	st1 := typeText(h, st0, 0, "a")
	st2 := typeText(h, st1, 1, "b")
	st3 := typeText(h, st2, 2, "c")

	undo, _ := h.Depths()
	require.Equal(t, 1, undo)

	play, ok := h.Undo(st3)
	require.True(t, ok)
	st4 := st3.Apply(play)
	require.Equal(t, "", st4.Block("p1").Text())
}

// Test_History_CoalescedRedoRestoresLatestCaret verifies undoing a grouped
// typing burst and redoing it puts the caret back after the last keystroke,
// not the first.
func Test_History_CoalescedRedoRestoresLatestCaret(t *testing.T) {
	st0 := state.New(document.New(para("p1", "")), state.Caret("p1", 0), schema.NewRegistry())
	h := state.NewHistory(state.HistoryConfig{GroupWindow: time.Minute, MaxDepth: 100})

	tr1 := st0.Tr(state.OriginInput).
		InsertText("p1", 0, "a", nil).
		SetSelection(state.Caret("p1", 1)).
		Build()
	st1 := st0.Apply(tr1)
	h.Record(tr1, st0)

	tr2 := st1.Tr(state.OriginInput).
		InsertText("p1", 1, "b", nil).
		SetSelection(state.Caret("p1", 2)).
		Build()
	st2 := st1.Apply(tr2)
	h.Record(tr2, st1)

	undo, _ := h.Depths()
	require.Equal(t, 1, undo)

	play, ok := h.Undo(st2)
	require.True(t, ok)
	st3 := st2.Apply(play)
	require.Equal(t, "", st3.Block("p1").Text())
	require.True(t, state.SameSelection(state.Caret("p1", 0), st3.Selection))

	replay, ok := h.Redo(st3)
	require.True(t, ok)
	st4 := st3.Apply(replay)
	require.Equal(t, "ab", st4.Block("p1").Text())
	require.True(t, state.SameSelection(state.Caret("p1", 2), st4.Selection))
}

// Test_History_GroupWindowExpires verifies edits spaced beyond the window
// land in separate entries.
func Test_History_GroupWindowExpires(t *testing.T) {
	st0 := newState(para("p1", ""))
	h := state.NewHistory(state.HistoryConfig{GroupWindow: 10 * time.Millisecond, MaxDepth: 100})

	tr1 := st0.Tr(state.OriginInput).InsertText("p1", 0, "a", nil).Build()
	st1 := st0.Apply(tr1)
	h.Record(tr1, st0)

	tr2 := st1.Tr(state.OriginInput).InsertText("p1", 1, "b", nil).Build()
	tr2.Meta.Time = tr1.Meta.Time.Add(time.Hour)
	st2 := st1.Apply(tr2)
	h.Record(tr2, st1)

	undo, _ := h.Depths()
	require.Equal(t, 2, undo)

	play, _ := h.Undo(st2)
	st3 := st2.Apply(play)
	require.Equal(t, "a", st3.Block("p1").Text())
}

// Test_History_CommandsNeverCoalesce verifies only input-origin edits group
// by timing.
func Test_History_CommandsNeverCoalesce(t *testing.T) {
	st0, h := historyFixture()

	tr1 := st0.Tr(state.OriginCommand).InsertText("p1", 0, "a", nil).Build()
	st1 := st0.Apply(tr1)
	h.Record(tr1, st0)

	tr2 := st1.Tr(state.OriginCommand).InsertText("p1", 1, "b", nil).Build()
	st1.Apply(tr2)
	h.Record(tr2, st1)

	undo, _ := h.Depths()
	require.Equal(t, 2, undo)
}

// Test_History_ExplicitUndoGroup verifies a named group coalesces regardless
// of origin and timing.
func Test_History_ExplicitUndoGroup(t *testing.T) {
	st0, h := historyFixture()

	tr1 := st0.Tr(state.OriginCommand).InsertText("p1", 0, "a", nil).WithUndoGroup("drag").Build()
	st1 := st0.Apply(tr1)
	h.Record(tr1, st0)

	tr2 := st1.Tr(state.OriginCommand).InsertText("p1", 1, "b", nil).WithUndoGroup("drag").Build()
	tr2.Meta.Time = tr1.Meta.Time.Add(time.Hour)
	st2 := st1.Apply(tr2)
	h.Record(tr2, st1)

	undo, _ := h.Depths()
	require.Equal(t, 1, undo)

	play, _ := h.Undo(st2)
	st3 := st2.Apply(play)
	require.Equal(t, "", st3.Block("p1").Text())
}

// Test_History_SelectionBreaksGrouping verifies a selection-only transaction
// acts as a coalescing barrier without creating an entry.
func Test_History_SelectionBreaksGrouping(t *testing.T) {
	st0, h := historyFixture()
	st1 := typeText(h, st0, 0, "a")

	sel := st1.Tr(state.OriginInput).SetSelection(state.Caret("p1", 0)).Build()
	st2 := st1.Apply(sel)
	h.Record(sel, st1)

	undo, _ := h.Depths()
	require.Equal(t, 1, undo)

	typeText(h, st2, 1, "b")
	undo, _ = h.Depths()
	require.Equal(t, 2, undo)
}

// Test_History_NewEditClearsRedo verifies the redo stack drops once the
// timeline diverges.
func Test_History_NewEditClearsRedo(t *testing.T) {
	st0, h := historyFixture()
	st1 := typeText(h, st0, 0, "a")

	play, ok := h.Undo(st1)
	require.True(t, ok)
	st2 := st1.Apply(play)
	require.True(t, h.CanRedo())

	typeText(h, st2, 0, "x")
	require.False(t, h.CanRedo())
}

// Test_History_IgnoresPlayback verifies undo/redo playback transactions do
// not re-enter the undo stack through Record.
func Test_History_IgnoresPlayback(t *testing.T) {
	st0, h := historyFixture()
	st1 := typeText(h, st0, 0, "a")

	play, ok := h.Undo(st1)
	require.True(t, ok)
	st1.Apply(play)
	h.Record(play, st1)

	undo, _ := h.Depths()
	require.Equal(t, 0, undo)
}

// Test_History_MaxDepthEvictsOldest verifies the stack cap.
func Test_History_MaxDepthEvictsOldest(t *testing.T) {
	st := newState(para("p1", ""))
	h := state.NewHistory(state.HistoryConfig{GroupWindow: time.Minute, MaxDepth: 2})

	for i, text := range []string{"a", "b", "c"} {
		tr := st.Tr(state.OriginCommand).InsertText("p1", i, text, nil).Build()
		next := st.Apply(tr)
		h.Record(tr, st)
		st = next
	}

	undo, _ := h.Depths()
	require.Equal(t, 2, undo)

	// Two undos peel "c" then "b"; the eviction ate the first entry.
	play, _ := h.Undo(st)
	st = st.Apply(play)
	play, _ = h.Undo(st)
	st = st.Apply(play)
	require.Equal(t, "a", st.Block("p1").Text())
	require.False(t, h.CanUndo())
}

// Test_History_UndoAfterUndoDoesNotGroup verifies the barrier set by an undo
// keeps the next edit in its own entry.
func Test_History_UndoAfterUndoDoesNotGroup(t *testing.T) {
	st0, h := historyFixture()
	st1 := typeText(h, st0, 0, "a")
	st2 := typeText(h, st1, 1, "b")

	// Coalesced into one entry; undo it, then type again.
	play, ok := h.Undo(st2)
	require.True(t, ok)
	st3 := st2.Apply(play)

	st4 := typeText(h, st3, 0, "z")
	undo, _ := h.Depths()
	require.Equal(t, 1, undo)

	play, ok = h.Undo(st4)
	require.True(t, ok)
	st5 := st4.Apply(play)
	require.Equal(t, "", st5.Block("p1").Text())
}
