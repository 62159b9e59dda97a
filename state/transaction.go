package state

import (
	"time"

	"notectl/document"
)

// Origin classifies the source of a transaction. Middleware and announcers
// branch on it.
type Origin string

const (
	// OriginInput marks direct typing and IME composition.
	OriginInput Origin = "input"
	// OriginCommand marks toolbar and keymap actions.
	OriginCommand Origin = "command"
	// OriginHistory marks undo/redo playback.
	OriginHistory Origin = "history"
	// OriginPaste marks clipboard inserts.
	OriginPaste Origin = "paste"
)

// HistoryDirection flags playback transactions so they do not re-enter the
// undo stack.
type HistoryDirection string

const (
	HistoryUndo HistoryDirection = "undo"
	HistoryRedo HistoryDirection = "redo"
)

// Metadata describes a transaction's provenance and history grouping.
type Metadata struct {
	Origin           Origin
	Time             time.Time
	HistoryDirection HistoryDirection
	// UndoGroup names an explicit coalescing group. Transactions sharing a
	// non-empty UndoGroup collapse into one undo entry regardless of
	// timing.
	UndoGroup string
}

// Transaction is an ordered batch of steps plus the before/after selection
// and metadata, applied atomically. Steps apply in order; later steps see
// the document as mutated by earlier steps of the same transaction.
type Transaction struct {
	Steps            []Step
	SelectionBefore  Selection
	SelectionAfter   Selection
	StoredMarksAfter []document.Mark
	Meta             Metadata
}

// DocChanged reports whether any step can change document content.
func (tr *Transaction) DocChanged() bool {
	for _, s := range tr.Steps {
		if DocStep(s) {
			return true
		}
	}
	return false
}

// Invert produces the transaction that undoes tr against the state it was
// applied to. Each step is inverted against the document as it stood just
// before that step, and the inverted steps run in reverse order. Failed
// steps invert to nothing, matching the reducer's skip policy.
func (tr *Transaction) Invert(pre *EditorState) *Transaction {
	doc := pre.Doc
	type staged struct {
		step Step
		pre  *document.Document
	}
	var applied []staged
	for _, s := range tr.Steps {
		res := s.Apply(doc)
		if res.Failed != "" {
			continue
		}
		applied = append(applied, staged{step: s, pre: doc})
		doc = res.Doc
	}
	inv := &Transaction{
		SelectionBefore:  tr.SelectionAfter,
		SelectionAfter:   tr.SelectionBefore,
		StoredMarksAfter: pre.StoredMarks,
		Meta:             Metadata{Origin: OriginHistory, Time: time.Now()},
	}
	for i := len(applied) - 1; i >= 0; i-- {
		inv.Steps = append(inv.Steps, applied[i].step.Invert(applied[i].pre))
	}
	if inv.SelectionAfter == nil {
		inv.SelectionAfter = pre.Selection
	}
	return inv
}
