// Package decoration implements non-content overlays anchored to document
// positions, and their remapping through transactions.
package decoration

import (
	"reflect"

	"notectl/document"
)

// Decoration is a tagged union: Inline, Node or Widget.
type Decoration interface {
	decoration()
}

// Inline styles the half-open inline range [From,To) of one block. A
// zero-width inline decoration is legal; plugins use it for composition
// points.
type Inline struct {
	From  int
	To    int
	Attrs map[string]string
}

func (Inline) decoration() {}

// Node marks an entire block.
type Node struct {
	Attrs map[string]string
}

func (Node) decoration() {}

// Widget anchors a rendered element at one inline offset. Side < 0 draws
// before content at the offset and keeps the widget in place when an insert
// lands exactly there; side >= 0 draws after and shifts with the insert.
type Widget struct {
	Offset int
	Side   int
	Key    string
	Render func() string
}

func (Widget) decoration() {}

// Set maps block ids to their ordered decoration lists. Sets are immutable;
// every operation returns a new set sharing untouched block lists.
type Set struct {
	blocks map[document.BlockID][]Decoration
}

// Empty is the shared empty set.
var Empty = &Set{}

// NewSet builds a set from per-block decoration lists.
func NewSet(blocks map[document.BlockID][]Decoration) *Set {
	if len(blocks) == 0 {
		return Empty
	}
	return &Set{blocks: blocks}
}

// Add returns a set with dec appended to the block's list.
func (s *Set) Add(block document.BlockID, dec Decoration) *Set {
	next := make(map[document.BlockID][]Decoration, len(s.blocks)+1)
	for k, v := range s.blocks {
		next[k] = v
	}
	list := make([]Decoration, 0, len(next[block])+1)
	list = append(list, next[block]...)
	list = append(list, dec)
	next[block] = list
	return &Set{blocks: next}
}

// IsEmpty reports whether the set holds no decorations.
func (s *Set) IsEmpty() bool {
	for _, list := range s.blocks {
		if len(list) > 0 {
			return false
		}
	}
	return true
}

// Find returns the block's decorations in order.
func (s *Set) Find(block document.BlockID) []Decoration {
	return s.blocks[block]
}

// FindInline returns the block's inline decorations.
func (s *Set) FindInline(block document.BlockID) []Inline {
	var out []Inline
	for _, d := range s.blocks[block] {
		if in, ok := d.(Inline); ok {
			out = append(out, in)
		}
	}
	return out
}

// FindNode returns the block's node decorations.
func (s *Set) FindNode(block document.BlockID) []Node {
	var out []Node
	for _, d := range s.blocks[block] {
		if n, ok := d.(Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// FindWidget returns the block's widget decorations.
func (s *Set) FindWidget(block document.BlockID) []Widget {
	var out []Widget
	for _, d := range s.blocks[block] {
		if w, ok := d.(Widget); ok {
			out = append(out, w)
		}
	}
	return out
}

// Equals compares two sets structurally. Widgets compare by render-function
// identity: two visually identical widgets with different closures are
// different decorations.
func (s *Set) Equals(o *Set) bool {
	if s == o {
		return true
	}
	if len(s.blocks) != len(o.blocks) {
		return false
	}
	for id, list := range s.blocks {
		other, ok := o.blocks[id]
		if !ok || len(list) != len(other) {
			return false
		}
		for i := range list {
			if !sameDecoration(list[i], other[i]) {
				return false
			}
		}
	}
	return true
}

func sameDecoration(a, b Decoration) bool {
	switch x := a.(type) {
	case Inline:
		y, ok := b.(Inline)
		return ok && x.From == y.From && x.To == y.To && sameAttrs(x.Attrs, y.Attrs)
	case Node:
		y, ok := b.(Node)
		return ok && sameAttrs(x.Attrs, y.Attrs)
	case Widget:
		y, ok := b.(Widget)
		return ok && x.Offset == y.Offset && x.Side == y.Side && x.Key == y.Key &&
			renderIdentity(x.Render) == renderIdentity(y.Render)
	}
	return false
}

func renderIdentity(fn func() string) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

func sameAttrs(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
