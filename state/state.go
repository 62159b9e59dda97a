package state

import (
	"golang.org/x/exp/maps"

	"notectl/document"
	"notectl/schema"
)

// EditorState is an immutable snapshot of the editing session: document,
// selection, stored marks and schema, plus derived indices rebuilt in one
// tree walk per Apply so block lookup stays O(1) and path lookup O(depth)
// during interactive typing.
type EditorState struct {
	Doc         *document.Document
	Selection   Selection
	StoredMarks []document.Mark
	Schema      *schema.Registry

	byID   map[document.BlockID]*document.BlockNode
	parent map[document.BlockID]document.BlockID
	order  []document.BlockID
}

// New builds a state snapshot and its indices.
func New(doc *document.Document, sel Selection, reg *schema.Registry) *EditorState {
	s := &EditorState{Doc: doc, Selection: sel, Schema: reg}
	s.reindex()
	return s
}

func (s *EditorState) reindex() {
	s.byID = make(map[document.BlockID]*document.BlockNode)
	s.parent = make(map[document.BlockID]document.BlockID)
	s.order = s.order[:0]
	s.Doc.Walk(func(b, parent *document.BlockNode) bool {
		s.byID[b.ID] = b
		if parent != nil {
			s.parent[b.ID] = parent.ID
		}
		s.order = append(s.order, b.ID)
		return true
	})
}

// Block returns the block with the given id, or nil.
func (s *EditorState) Block(id document.BlockID) *document.BlockNode {
	return s.byID[id]
}

// BlockOrder returns every block id in reading order, containers before
// their children.
func (s *EditorState) BlockOrder() []document.BlockID {
	return s.order
}

// BlockIDs returns the set of known block ids in no particular order.
func (s *EditorState) BlockIDs() []document.BlockID {
	return maps.Keys(s.byID)
}

// NodePath returns the id chain from root to id, inclusive.
func (s *EditorState) NodePath(id document.BlockID) []document.BlockID {
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	var rev []document.BlockID
	for cur := id; ; {
		rev = append(rev, cur)
		p, ok := s.parent[cur]
		if !ok {
			break
		}
		cur = p
	}
	path := make([]document.BlockID, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// Parent returns the parent block id of id; ok is false for root blocks and
// unknown ids.
func (s *EditorState) Parent(id document.BlockID) (document.BlockID, bool) {
	p, ok := s.parent[id]
	return p, ok
}

// PrevBlock returns the block preceding id in reading order.
func (s *EditorState) PrevBlock(id document.BlockID) (document.BlockID, bool) {
	for i, b := range s.order {
		if b == id {
			if i == 0 {
				return "", false
			}
			return s.order[i-1], true
		}
	}
	return "", false
}

// NextBlock returns the block following id in reading order.
func (s *EditorState) NextBlock(id document.BlockID) (document.BlockID, bool) {
	for i, b := range s.order {
		if b == id {
			if i == len(s.order)-1 {
				return "", false
			}
			return s.order[i+1], true
		}
	}
	return "", false
}

// SkippedStep records one step the reducer treated as a no-op.
type SkippedStep struct {
	Index  int
	Reason string
}

// Apply folds the transaction's steps left to right over the document and
// returns the next state. It never partially fails: a step targeting a
// block an earlier step removed is skipped, keeping the editing session
// alive over strict failure.
func (s *EditorState) Apply(tr *Transaction) *EditorState {
	next, _ := s.ApplyReport(tr)
	return next
}

// ApplyReport is Apply plus the list of skipped steps, for callers that
// log them.
func (s *EditorState) ApplyReport(tr *Transaction) (*EditorState, []SkippedStep) {
	doc := s.Doc
	var skipped []SkippedStep
	for i, step := range tr.Steps {
		res := step.Apply(doc)
		if res.Failed != "" {
			skipped = append(skipped, SkippedStep{Index: i, Reason: res.Failed})
			continue
		}
		doc = res.Doc
	}
	sel := tr.SelectionAfter
	if sel == nil {
		sel = s.Selection
	}
	next := &EditorState{
		Doc:         doc,
		Selection:   sel,
		StoredMarks: tr.StoredMarksAfter,
		Schema:      s.Schema,
	}
	next.reindex()
	return next, skipped
}
