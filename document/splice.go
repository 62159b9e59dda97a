package document

import "unicode/utf8"

// SpliceInline replaces the inline content in [from,to) with repl, leaving
// nested block children in their original list positions. The optional
// anchors distribute repl around the nested blocks sitting at the splice
// point: anchors[i] counts the leading repl segments placed before the
// (i+1)-th such block, the rest follow the last one. Nil anchors places all
// of repl ahead of any nested block at the splice point. Bounds clamp to
// the block's length.
func (b *BlockNode) SpliceInline(from, to int, repl []Segment, anchors []int) *BlockNode {
	from, to = clampRange(from, to, b.Length())
	children := make([]Child, 0, len(b.Children)+len(repl))
	emitted := 0
	spliced := false
	anchored := 0
	emit := func(n int) {
		if n > len(repl) {
			n = len(repl)
		}
		for ; emitted < n; emitted++ {
			if in := repl[emitted].Inline; in != nil {
				children = append(children, *in)
			} else {
				children = append(children, TextNode{Text: repl[emitted].Text, Marks: repl[emitted].Marks})
			}
		}
	}
	splice := func() {
		if spliced {
			return
		}
		spliced = true
		if len(anchors) > 0 {
			emit(anchors[0])
		} else {
			emit(len(repl))
		}
	}
	flush := func() {
		splice()
		anchored = len(anchors)
		emit(len(repl))
	}
	off := 0
	for _, c := range b.Children {
		switch t := c.(type) {
		case *BlockNode:
			switch {
			case off < from:
			case off > to:
				flush()
			default:
				splice()
				if anchored < len(anchors) {
					children = append(children, t)
					anchored++
					if anchored < len(anchors) {
						emit(anchors[anchored])
					} else {
						emit(len(repl))
					}
					continue
				}
			}
			children = append(children, t)
		case InlineNode:
			cf, ct := off, off+1
			off = ct
			switch {
			case ct <= from:
				children = append(children, t)
			case cf >= to:
				flush()
				children = append(children, t)
			default:
				// Width 1 means any overlap is full containment.
				splice()
			}
		case TextNode:
			w := utf8.RuneCountInString(t.Text)
			cf, ct := off, off+w
			off = ct
			switch {
			case ct <= from:
				children = append(children, t)
			case cf >= to:
				flush()
				children = append(children, t)
			default:
				if from > cf {
					children = append(children, TextNode{Text: runeSlice(t.Text, 0, from-cf), Marks: t.Marks})
				}
				splice()
				if ct > to {
					flush()
					children = append(children, TextNode{Text: runeSlice(t.Text, to-cf, w), Marks: t.Marks})
				}
			}
		}
	}
	flush()
	return b.WithChildren(children)
}

// ContentAnchorsInRange returns the content segments of [from,to) together
// with the anchors SpliceInline needs to put the nested blocks in the range
// back between them. Anchors is nil when no nested block sits in the range.
func (b *BlockNode) ContentAnchorsInRange(from, to int) ([]Segment, []int) {
	from, to = clampRange(from, to, b.Length())
	var segs []Segment
	var anchors []int
	off := 0
	for _, c := range b.Children {
		switch t := c.(type) {
		case *BlockNode:
			if off >= from && off <= to {
				anchors = append(anchors, len(segs))
			}
		case TextNode:
			w := utf8.RuneCountInString(t.Text)
			cf, ct := off, off+w
			off = ct
			if w == 0 || ct <= from || cf >= to {
				continue
			}
			lo, hi := max(cf, from), min(ct, to)
			segs = append(segs, Segment{Text: runeSlice(t.Text, lo-cf, hi-cf), Marks: t.Marks})
		case InlineNode:
			if off >= from && off+1 <= to {
				in := t
				segs = append(segs, Segment{Inline: &in})
			}
			off++
		}
	}
	return segs, anchors
}

// MapMarks rewrites the mark sets of the text content overlapping [from,to),
// splitting runs at the range boundaries. Atomic inline nodes and nested
// blocks stay in place untouched.
func (b *BlockNode) MapMarks(from, to int, fn func([]Mark) []Mark) *BlockNode {
	children := make([]Child, 0, len(b.Children)+2)
	off := 0
	for _, c := range b.Children {
		t, ok := c.(TextNode)
		if !ok {
			if _, isInline := c.(InlineNode); isInline {
				off++
			}
			children = append(children, c)
			continue
		}
		w := utf8.RuneCountInString(t.Text)
		cf, ct := off, off+w
		off = ct
		if ct <= from || cf >= to || w == 0 {
			children = append(children, t)
			continue
		}
		if from > cf {
			children = append(children, TextNode{Text: runeSlice(t.Text, 0, from-cf), Marks: t.Marks})
		}
		lo, hi := max(cf, from), min(ct, to)
		children = append(children, TextNode{Text: runeSlice(t.Text, lo-cf, hi-cf), Marks: fn(t.Marks)})
		if ct > to {
			children = append(children, TextNode{Text: runeSlice(t.Text, to-cf, w), Marks: t.Marks})
		}
	}
	return b.WithChildren(children)
}

// SplitChildren divides the children list at inline offset off. Content
// before off stays in the first list, content at or after off goes to the
// second, with a text run straddling off cut in two. Nested blocks anchored
// exactly at off stay in the first list except the last carry of them;
// blocks anchored past off always go second.
func (b *BlockNode) SplitChildren(off, carry int) (left, right []Child) {
	if off < 0 {
		off = 0
	}
	if l := b.Length(); off > l {
		off = l
	}
	var atOff []*BlockNode
	var rest []Child
	pos := 0
	for _, c := range b.Children {
		switch t := c.(type) {
		case *BlockNode:
			switch {
			case pos < off:
				left = append(left, t)
			case pos == off && len(rest) == 0:
				atOff = append(atOff, t)
			default:
				rest = append(rest, t)
			}
		case InlineNode:
			if pos+1 <= off {
				left = append(left, t)
			} else {
				rest = append(rest, t)
			}
			pos++
		case TextNode:
			w := utf8.RuneCountInString(t.Text)
			cf, ct := pos, pos+w
			pos = ct
			switch {
			case ct <= off:
				left = append(left, t)
			case cf >= off:
				rest = append(rest, t)
			default:
				left = append(left, TextNode{Text: runeSlice(t.Text, 0, off-cf), Marks: t.Marks})
				rest = append(rest, TextNode{Text: runeSlice(t.Text, off-cf, w), Marks: t.Marks})
			}
		}
	}
	if carry < 0 {
		carry = 0
	}
	if carry > len(atOff) {
		carry = len(atOff)
	}
	keep := len(atOff) - carry
	for _, nb := range atOff[:keep] {
		left = append(left, nb)
	}
	right = make([]Child, 0, carry+len(rest))
	for _, nb := range atOff[keep:] {
		right = append(right, nb)
	}
	right = append(right, rest...)
	return left, right
}
