package state

import "notectl/document"

// SetSelection records a selection change as a step. It carries the prior
// selection so it inverts without external context; the document is
// untouched.
type SetSelection struct {
	Sel  Selection
	Prev Selection
}

// Apply implements Step.
func (s SetSelection) Apply(doc *document.Document) Result {
	return OK(doc)
}

// Invert implements Step.
func (s SetSelection) Invert(*document.Document) Step {
	return SetSelection{Sel: s.Prev, Prev: s.Sel}
}

// SetStoredMarks queues marks to apply to the next typed character at a
// collapsed cursor. The document is untouched.
type SetStoredMarks struct {
	Marks []document.Mark
	Prev  []document.Mark
}

// Apply implements Step.
func (s SetStoredMarks) Apply(doc *document.Document) Result {
	return OK(doc)
}

// Invert implements Step.
func (s SetStoredMarks) Invert(*document.Document) Step {
	return SetStoredMarks{Marks: s.Prev, Prev: s.Marks}
}

// DocStep reports whether the step can change document content. Selection
// and stored-mark steps are state-only.
func DocStep(s Step) bool {
	switch s.(type) {
	case SetSelection, SetStoredMarks:
		return false
	}
	return true
}
