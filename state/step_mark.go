package state

import (
	"fmt"

	"notectl/document"
)

// AddMark applies a mark across an inline range, splitting text runs at the
// range boundaries as needed. Atomic inline nodes inside the range are left
// untouched.
type AddMark struct {
	Block document.BlockID
	From  int
	To    int
	Mark  document.Mark
}

// Apply implements Step.
func (s AddMark) Apply(doc *document.Document) Result {
	return applyMarkChange(doc, s.Block, s.From, s.To, "addMark", func(marks []document.Mark) []document.Mark {
		return document.AddMark(marks, s.Mark)
	})
}

// Invert implements Step.
func (s AddMark) Invert(pre *document.Document) Step {
	return SetMarks{Block: s.Block, Spans: captureMarkSpans(pre, s.Block, s.From, s.To)}
}

// RemoveMark clears a mark across an inline range. Matching is by mark type;
// attrs are ignored.
type RemoveMark struct {
	Block document.BlockID
	From  int
	To    int
	Mark  document.Mark
}

// Apply implements Step.
func (s RemoveMark) Apply(doc *document.Document) Result {
	return applyMarkChange(doc, s.Block, s.From, s.To, "removeMark", func(marks []document.Mark) []document.Mark {
		return document.RemoveMarkType(marks, s.Mark.Type)
	})
}

// Invert implements Step.
func (s RemoveMark) Invert(pre *document.Document) Step {
	return SetMarks{Block: s.Block, Spans: captureMarkSpans(pre, s.Block, s.From, s.To)}
}

// MarkSpan is an exact mark set over an inline range.
type MarkSpan struct {
	From  int
	To    int
	Marks []document.Mark
}

// SetMarks replaces the mark sets of text runs inside each span exactly. It
// exists as the inverse shape of AddMark and RemoveMark: restoring captured
// pre-edit mark layout cannot be expressed as a single add or remove.
type SetMarks struct {
	Block document.BlockID
	Spans []MarkSpan
}

// Apply implements Step.
func (s SetMarks) Apply(doc *document.Document) Result {
	cur := doc
	for _, span := range s.Spans {
		marks := span.Marks
		res := applyMarkChange(cur, s.Block, span.From, span.To, "setMarks", func([]document.Mark) []document.Mark {
			return marks
		})
		if res.Failed != "" {
			return res
		}
		cur = res.Doc
	}
	return OK(cur)
}

// Invert implements Step.
func (s SetMarks) Invert(pre *document.Document) Step {
	lo, hi := 0, 0
	for i, span := range s.Spans {
		if i == 0 || span.From < lo {
			lo = span.From
		}
		if span.To > hi {
			hi = span.To
		}
	}
	return SetMarks{Block: s.Block, Spans: captureMarkSpans(pre, s.Block, lo, hi)}
}

func applyMarkChange(doc *document.Document, id document.BlockID, from, to int, op string, fn func([]document.Mark) []document.Mark) Result {
	next, ok := doc.Transform(id, func(b *document.BlockNode) *document.BlockNode {
		cfrom, cto := clampSpan(from, to, b.Length())
		return b.MapMarks(cfrom, cto, fn)
	})
	if !ok {
		return Fail(fmt.Sprintf("%s: unknown block %s", op, id))
	}
	return OK(next)
}

// captureMarkSpans records the exact mark layout of [from,to) in the
// pre-step document, one span per text segment.
func captureMarkSpans(pre *document.Document, id document.BlockID, from, to int) []MarkSpan {
	b := pre.Block(id)
	if b == nil {
		return nil
	}
	cfrom, cto := clampSpan(from, to, b.Length())
	var spans []MarkSpan
	off := cfrom
	for _, seg := range b.ContentInRange(cfrom, cto) {
		w := seg.Width()
		if seg.Inline == nil {
			spans = append(spans, MarkSpan{From: off, To: off + w, Marks: document.CloneMarks(seg.Marks)})
		}
		off += w
	}
	return spans
}
