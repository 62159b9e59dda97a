// Package editor owns the host-facing editing instance: one synchronous
// dispatch path feeding the EditorState reducer, history and change
// listeners.
package editor

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"notectl/clipboard"
	"notectl/document"
	"notectl/schema"
	"notectl/state"
)

var logIO = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Listener observes applied transactions. Listeners run synchronously on
// the dispatching goroutine; a dispatch fired from inside a listener is
// re-entrant and ignored.
type Listener func(old, new *state.EditorState, tr *state.Transaction)

// Editor applies transactions atomically and synchronously on the calling
// goroutine. It is not reentrant by design: a nested dispatch (including
// undo/redo fired from a change listener) is detected and silently
// ignored.
type Editor struct {
	st        *state.EditorState
	history   *state.History
	listeners []Listener

	dispatching bool
	destroyed   bool

	cfg        Config
	log        zerolog.Logger
	logHistory zerolog.Logger
}

// New creates an editor over an initial state.
func New(st *state.EditorState, cfg Config) *Editor {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return &Editor{
		st:         st,
		history:    state.NewHistory(cfg.HistoryConfig()),
		cfg:        cfg,
		log:        newLogger(logIO, level).With().Str("sub", "dispatch").Logger(),
		logHistory: newLogger(logIO, level).With().Str("sub", "history").Logger(),
	}
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return logger.Level(level)
}

// State returns the current snapshot.
func (e *Editor) State() *state.EditorState {
	e.mustBeLive("State")
	return e.st
}

// History exposes the undo/redo stacks.
func (e *Editor) History() *state.History {
	e.mustBeLive("History")
	return e.history
}

// OnChange registers a change listener.
func (e *Editor) OnChange(l Listener) {
	e.mustBeLive("OnChange")
	e.listeners = append(e.listeners, l)
}

// Dispatch applies one transaction through the single dispatch path.
// It returns false when the dispatch was re-entrant and ignored.
func (e *Editor) Dispatch(tr *state.Transaction) bool {
	e.mustBeLive("Dispatch")
	if e.dispatching {
		e.log.Debug().Str("origin", string(tr.Meta.Origin)).Msg("re-entrant dispatch ignored")
		return false
	}
	e.dispatching = true
	defer func() { e.dispatching = false }()

	old := e.st
	next, skipped := old.ApplyReport(tr)
	for _, sk := range skipped {
		e.log.Warn().Int("step", sk.Index).Str("reason", sk.Reason).Msg("step skipped")
	}
	e.history.Record(tr, old)
	e.st = next

	for _, l := range e.listeners {
		l(old, next, tr)
	}
	return true
}

// Undo plays back the most recent undo entry. It returns false when there
// is nothing to undo or the call is re-entrant.
func (e *Editor) Undo() bool {
	e.mustBeLive("Undo")
	if e.dispatching {
		e.logHistory.Debug().Msg("re-entrant undo ignored")
		return false
	}
	tr, ok := e.history.Undo(e.st)
	if !ok {
		return false
	}
	e.logHistory.Debug().Int("steps", len(tr.Steps)).Msg("undo")
	return e.Dispatch(tr)
}

// Redo plays back the most recent redo entry.
func (e *Editor) Redo() bool {
	e.mustBeLive("Redo")
	if e.dispatching {
		e.logHistory.Debug().Msg("re-entrant redo ignored")
		return false
	}
	tr, ok := e.history.Redo(e.st)
	if !ok {
		return false
	}
	e.logHistory.Debug().Int("steps", len(tr.Steps)).Msg("redo")
	return e.Dispatch(tr)
}

// Copy builds a clipboard payload for the current selection without
// dispatching anything.
func (e *Editor) Copy() (*clipboard.Payload, bool) {
	e.mustBeLive("Copy")
	return clipboard.Copy(e.st)
}

// Cut copies the selection and dispatches the single deleting transaction.
func (e *Editor) Cut() (*clipboard.Payload, bool) {
	e.mustBeLive("Cut")
	payload, tr, ok := clipboard.Cut(e.st)
	if !ok {
		return nil, false
	}
	if !e.Dispatch(tr) {
		return nil, false
	}
	return payload, true
}

// Type inserts text at a collapsed cursor, consuming stored marks. It
// returns false for non-caret selections.
func (e *Editor) Type(text string) bool {
	e.mustBeLive("Type")
	sel, ok := e.st.Selection.(state.TextSelection)
	if !ok || !sel.Collapsed() {
		return false
	}
	marks := e.st.StoredMarks
	if marks == nil {
		if b := e.st.Block(sel.Head.Block); b != nil {
			marks = b.MarksAt(sel.Head.Offset)
		}
	}
	tr := e.st.Tr(state.OriginInput).
		InsertText(sel.Head.Block, sel.Head.Offset, text, marks).
		SetSelection(state.Caret(sel.Head.Block, sel.Head.Offset+len([]rune(text)))).
		SetStoredMarks(nil).
		Build()
	return e.Dispatch(tr)
}

// LoadDocument replaces the whole document, sanitized against the schema,
// and resets history. Hosts use it to open a persisted file.
func (e *Editor) LoadDocument(doc *document.Document) {
	e.mustBeLive("LoadDocument")
	reg := e.st.Schema
	clean := reg.Sanitize(doc)
	var sel state.Selection
	if len(clean.Blocks) > 0 {
		sel = state.Caret(clean.Blocks[0].ID, 0)
	}
	e.st = state.New(clean, sel, reg)
	e.history = state.NewHistory(e.cfg.HistoryConfig())
}

// Schema returns the schema registry the state was built with.
func (e *Editor) Schema() *schema.Registry {
	e.mustBeLive("Schema")
	return e.st.Schema
}

// Destroy tears the instance down. Any later API call panics: using a dead
// editor is a host-application bug, not recoverable document state.
func (e *Editor) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.listeners = nil
}

func (e *Editor) mustBeLive(op string) {
	if e.destroyed {
		panic("notectl: editor." + op + " called after Destroy")
	}
}
