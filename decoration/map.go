package decoration

import (
	"notectl/document"
	"notectl/state"
)

// Map translates every decoration through the transaction's steps exactly
// as the underlying content moved, dropping decorations left without valid
// content to anchor to.
//
// Mapping an empty-step transaction or an empty set returns the receiver
// itself: reference equality is an observable contract callers use to skip
// re-render, not just an optimization.
func (s *Set) Map(tr *state.Transaction) *Set {
	if len(tr.Steps) == 0 || s.IsEmpty() {
		return s
	}
	m := &mapper{blocks: make(map[document.BlockID][]Decoration, len(s.blocks))}
	for id, list := range s.blocks {
		m.blocks[id] = list
	}
	for _, step := range tr.Steps {
		switch st := step.(type) {
		case state.InsertText:
			m.insert(st.Block, st.Offset, runeLen(st.Text))
		case state.InsertContent:
			m.insert(st.Block, st.Offset, document.SegmentsWidth(st.Segments))
		case state.DeleteText:
			m.delete(st.Block, st.From, st.To)
		case state.SplitBlock:
			m.split(st.Block, st.Offset, st.NewID)
		case state.JoinBlocks:
			m.join(st.Block, st.With, st.At)
		case state.RemoveNode:
			ids := st.RemovedIDs
			if len(ids) == 0 && st.Block != "" {
				ids = []document.BlockID{st.Block}
			}
			m.drop(ids)
		}
	}
	if !m.changed {
		return s
	}
	for id, list := range m.blocks {
		if len(list) == 0 {
			delete(m.blocks, id)
		}
	}
	if len(m.blocks) == 0 {
		return Empty
	}
	return &Set{blocks: m.blocks}
}

type mapper struct {
	blocks  map[document.BlockID][]Decoration
	changed bool
}

// insert shifts decorations on one block right of the insertion point by w.
// Straddling inline decorations grow; a widget exactly at the point moves
// only when its side is not "before".
func (m *mapper) insert(block document.BlockID, offset, w int) {
	list, ok := m.blocks[block]
	if !ok || w == 0 {
		return
	}
	out := make([]Decoration, 0, len(list))
	touched := false
	for _, d := range list {
		switch dec := d.(type) {
		case Inline:
			switch {
			case dec.From >= offset:
				dec.From += w
				dec.To += w
				touched = true
			case dec.To > offset:
				dec.To += w
				touched = true
			}
			out = append(out, dec)
		case Widget:
			if dec.Offset > offset || (dec.Offset == offset && dec.Side >= 0) {
				dec.Offset += w
				touched = true
			}
			out = append(out, dec)
		default:
			out = append(out, d)
		}
	}
	if touched {
		m.blocks[block] = out
		m.changed = true
	}
}

// delete removes decorations fully inside [from,to), clips straddlers to
// the surviving boundary and shifts everything after the range left.
// Zero-width decorations sitting exactly on a boundary survive.
func (m *mapper) delete(block document.BlockID, from, to int) {
	list, ok := m.blocks[block]
	w := to - from
	if !ok || w <= 0 {
		return
	}
	out := make([]Decoration, 0, len(list))
	touched := false
	for _, d := range list {
		switch dec := d.(type) {
		case Inline:
			switch {
			case dec.To <= from:
			case dec.From >= to:
				dec.From -= w
				dec.To -= w
				touched = true
			case dec.From >= from && dec.To <= to:
				touched = true
				continue
			case dec.From < from && dec.To > to:
				dec.To -= w
				touched = true
			case dec.From < from:
				dec.To = from
				touched = true
			default:
				dec.From = from
				dec.To -= w
				touched = true
			}
			out = append(out, dec)
		case Widget:
			switch {
			case dec.Offset <= from:
			case dec.Offset >= to:
				dec.Offset -= w
				touched = true
			default:
				dec.Offset = from
				touched = true
			}
			out = append(out, dec)
		default:
			out = append(out, d)
		}
	}
	if touched {
		m.blocks[block] = out
		m.changed = true
	}
}

// split keeps decorations before the split point on the original block,
// moves those at or after it onto the new block with offsets rebased, and
// splits straddlers into one decoration per side.
func (m *mapper) split(block document.BlockID, offset int, newID document.BlockID) {
	list, ok := m.blocks[block]
	if !ok {
		return
	}
	var stay, moved []Decoration
	for _, d := range list {
		switch dec := d.(type) {
		case Inline:
			switch {
			case dec.To <= offset:
				stay = append(stay, dec)
			case dec.From >= offset:
				moved = append(moved, Inline{From: dec.From - offset, To: dec.To - offset, Attrs: dec.Attrs})
			default:
				stay = append(stay, Inline{From: dec.From, To: offset, Attrs: dec.Attrs})
				moved = append(moved, Inline{From: 0, To: dec.To - offset, Attrs: dec.Attrs})
			}
		case Widget:
			if dec.Offset < offset {
				stay = append(stay, dec)
			} else {
				dec.Offset -= offset
				moved = append(moved, dec)
			}
		default:
			stay = append(stay, d)
		}
	}
	if len(moved) == 0 {
		return
	}
	m.blocks[block] = stay
	m.blocks[newID] = appendFresh(m.blocks[newID], moved)
	m.changed = true
}

// join moves the absorbed block's offset-bearing decorations onto the
// surviving block, shifted past its pre-join content. Node decorations on
// the absorbed block are dropped with it.
func (m *mapper) join(block, with document.BlockID, at int) {
	list, ok := m.blocks[with]
	if !ok {
		return
	}
	var moved []Decoration
	for _, d := range list {
		switch dec := d.(type) {
		case Inline:
			moved = append(moved, Inline{From: dec.From + at, To: dec.To + at, Attrs: dec.Attrs})
		case Widget:
			dec.Offset += at
			moved = append(moved, dec)
		}
	}
	delete(m.blocks, with)
	if len(moved) > 0 {
		m.blocks[block] = appendFresh(m.blocks[block], moved)
	}
	m.changed = true
}

// appendFresh concatenates into a new slice so block lists shared with the
// source set are never mutated in place.
func appendFresh(a, b []Decoration) []Decoration {
	out := make([]Decoration, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// drop discards all decorations keyed to the given block ids.
func (m *mapper) drop(ids []document.BlockID) {
	for _, id := range ids {
		if _, ok := m.blocks[id]; ok {
			delete(m.blocks, id)
			m.changed = true
		}
	}
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
