package state

import (
	"sync"
	"time"
)

// HistoryConfig tunes undo coalescing.
type HistoryConfig struct {
	// GroupWindow is the maximum gap between two input transactions that
	// still coalesce into one undo entry.
	GroupWindow time.Duration
	// MaxDepth caps the undo stack; oldest entries are evicted.
	MaxDepth int
}

// DefaultHistoryConfig matches continuous-typing coalescing within one
// second and a thousand undo entries.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{GroupWindow: time.Second, MaxDepth: 1000}
}

type historyEntry struct {
	tr       *Transaction // inverse of the recorded edits
	origin   Origin
	group    string
	lastEdit time.Time
}

// History keeps undo and redo stacks of inverse transactions. Consecutive
// input edits coalesce into one entry when they fall inside the group
// window; explicit UndoGroup labels coalesce regardless of timing; a
// selection-only transaction breaks the current group.
type History struct {
	mu      sync.Mutex
	cfg     HistoryConfig
	undo    []*historyEntry
	redo    []*historyEntry
	barrier bool
}

// NewHistory creates a history with the given config, falling back to
// defaults for zero values.
func NewHistory(cfg HistoryConfig) *History {
	if cfg.GroupWindow <= 0 {
		cfg.GroupWindow = time.Second
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 1000
	}
	return &History{cfg: cfg}
}

// Record captures the inverse of tr against the state it applied to.
// History playback transactions are ignored; selection-only transactions
// only break grouping.
func (h *History) Record(tr *Transaction, pre *EditorState) {
	if tr.Meta.HistoryDirection != "" {
		return
	}
	if !tr.DocChanged() {
		h.mu.Lock()
		h.barrier = true
		h.mu.Unlock()
		return
	}
	inv := tr.Invert(pre)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.redo = nil
	if top := h.topLocked(); top != nil && h.canGroupLocked(top, tr) {
		// The new inverse must play before the entry's existing steps, and
		// undoing the group now starts from the newest edit's selection, so
		// redo lands the caret after the last keystroke.
		top.tr.Steps = append(append([]Step(nil), inv.Steps...), top.tr.Steps...)
		if inv.SelectionBefore != nil {
			top.tr.SelectionBefore = inv.SelectionBefore
		}
		top.lastEdit = tr.Meta.Time
		return
	}
	h.undo = append(h.undo, &historyEntry{
		tr:       inv,
		origin:   tr.Meta.Origin,
		group:    tr.Meta.UndoGroup,
		lastEdit: tr.Meta.Time,
	})
	h.barrier = false
	if len(h.undo) > h.cfg.MaxDepth {
		h.undo = h.undo[len(h.undo)-h.cfg.MaxDepth:]
	}
}

func (h *History) topLocked() *historyEntry {
	if len(h.undo) == 0 {
		return nil
	}
	return h.undo[len(h.undo)-1]
}

func (h *History) canGroupLocked(top *historyEntry, tr *Transaction) bool {
	if h.barrier {
		return false
	}
	if tr.Meta.UndoGroup != "" && tr.Meta.UndoGroup == top.group {
		return true
	}
	if tr.Meta.Origin != OriginInput || top.origin != OriginInput {
		return false
	}
	return tr.Meta.Time.Sub(top.lastEdit) <= h.cfg.GroupWindow
}

// Undo pops the next undo entry as a playback transaction and stages the
// matching redo. ok is false when there is nothing to undo.
func (h *History) Undo(cur *EditorState) (*Transaction, bool) {
	h.mu.Lock()
	if len(h.undo) == 0 {
		h.mu.Unlock()
		return nil, false
	}
	entry := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.barrier = true
	h.mu.Unlock()

	play := entry.tr
	play.Meta.HistoryDirection = HistoryUndo
	redoTr := play.Invert(cur)
	redoTr.Meta.HistoryDirection = HistoryRedo

	h.mu.Lock()
	h.redo = append(h.redo, &historyEntry{tr: redoTr, lastEdit: time.Now()})
	h.mu.Unlock()
	return play, true
}

// Redo pops the next redo entry as a playback transaction and stages the
// matching undo entry back, without grouping.
func (h *History) Redo(cur *EditorState) (*Transaction, bool) {
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return nil, false
	}
	entry := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.barrier = true
	h.mu.Unlock()

	play := entry.tr
	play.Meta.HistoryDirection = HistoryRedo
	undoTr := play.Invert(cur)
	undoTr.Meta.HistoryDirection = HistoryUndo

	h.mu.Lock()
	h.undo = append(h.undo, &historyEntry{tr: undoTr, lastEdit: time.Now()})
	h.mu.Unlock()
	return play, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Depths returns the undo and redo stack depths.
func (h *History) Depths() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}
