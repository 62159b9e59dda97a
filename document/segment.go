package document

// Segment is a slice of a block's inline content. Either Text is set (a text
// run with Marks) or Inline is set (an atomic inline node carried whole).
type Segment struct {
	Text   string
	Marks  []Mark
	Inline *InlineNode
}

// Width returns the segment's width in inline offset units.
func (s Segment) Width() int {
	if s.Inline != nil {
		return 1
	}
	return len([]rune(s.Text))
}

// SegmentsWidth sums the widths of segs.
func SegmentsWidth(segs []Segment) int {
	n := 0
	for _, s := range segs {
		n += s.Width()
	}
	return n
}

// TextInRange returns the text segments overlapping [from,to), splitting
// TextNodes at partial boundaries. InlineNodes are skipped entirely.
func (b *BlockNode) TextInRange(from, to int) []Segment {
	var out []Segment
	for _, seg := range b.ContentInRange(from, to) {
		if seg.Inline == nil {
			out = append(out, seg)
		}
	}
	return out
}

// ContentInRange returns the inline content overlapping [from,to). TextNodes
// are split at partial boundaries; an InlineNode appears as an opaque segment
// only when it lies fully inside the range (all-or-nothing at its one-unit
// width). Out-of-range bounds are clamped.
func (b *BlockNode) ContentInRange(from, to int) []Segment {
	length := b.Length()
	from, to = clampRange(from, to, length)
	if from >= to {
		return nil
	}
	var out []Segment
	for _, span := range b.InlineSpans() {
		if span.To <= from || span.From >= to {
			continue
		}
		switch t := span.Child.(type) {
		case TextNode:
			lo, hi := span.From, span.To
			if lo < from {
				lo = from
			}
			if hi > to {
				hi = to
			}
			text := runeSlice(t.Text, lo-span.From, hi-span.From)
			if text != "" {
				out = append(out, Segment{Text: text, Marks: t.Marks})
			}
		case InlineNode:
			if span.From >= from && span.To <= to {
				in := t
				out = append(out, Segment{Inline: &in})
			}
		}
	}
	return out
}

// SegmentsToChildren converts segments back into inline children.
func SegmentsToChildren(segs []Segment) []Child {
	out := make([]Child, 0, len(segs))
	for _, s := range segs {
		if s.Inline != nil {
			out = append(out, *s.Inline)
		} else {
			out = append(out, TextNode{Text: s.Text, Marks: s.Marks})
		}
	}
	return out
}

func clampRange(from, to, length int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > length {
		to = length
	}
	if from > length {
		from = length
	}
	if to < from {
		to = from
	}
	return from, to
}
