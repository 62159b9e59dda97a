// Package clipboard builds copy/cut payloads from a selection and imports
// pasted HTML back into the document vocabulary. Cut never mutates the
// model directly: it returns a transaction for the normal dispatch path.
package clipboard

import (
	"encoding/json"

	"notectl/document"
	"notectl/state"
)

// Clipboard MIME keys.
const (
	MIMEPlain = "text/plain"
	MIMEHTML  = "text/html"
	MIMEBlock = "application/x-notectl-block"
)

// Payload holds one clipboard write, keyed by MIME type. Block is set only
// for block-level (NodeSelection) copies.
type Payload struct {
	Plain string
	HTML  string
	Block []byte
}

// Data returns the payload as MIME-keyed entries.
func (p *Payload) Data() map[string][]byte {
	out := map[string][]byte{
		MIMEPlain: []byte(p.Plain),
		MIMEHTML:  []byte(p.HTML),
	}
	if p.Block != nil {
		out[MIMEBlock] = p.Block
	}
	return out
}

// Copy builds the payload for the current selection. Copy is read-only: no
// transaction is dispatched. ok is false when there is nothing to copy
// (collapsed caret, gap cursor).
func Copy(st *state.EditorState) (*Payload, bool) {
	switch sel := st.Selection.(type) {
	case state.NodeSelection:
		b := st.Block(sel.Node)
		if b == nil {
			return nil, false
		}
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, false
		}
		return &Payload{
			Plain: b.Text(),
			HTML:  RenderBlocksHTML(st.Schema, []*document.BlockNode{b}),
			Block: raw,
		}, true
	case state.TextSelection:
		if sel.Collapsed() {
			return nil, false
		}
		return copyRange(st, sel)
	}
	return nil, false
}

func copyRange(st *state.EditorState, sel state.TextSelection) (*Payload, bool) {
	lo, hi, sameBlock := orderRange(st, sel)
	if sameBlock {
		b := st.Block(lo.Block)
		if b == nil {
			return nil, false
		}
		segs := b.ContentInRange(lo.Offset, hi.Offset)
		return &Payload{
			Plain: segmentsText(segs),
			HTML:  RenderSegmentsHTML(st.Schema, segs),
		}, true
	}
	// Cross-block range: whole-block granularity for the middle, partial
	// content at the ends.
	var plain, htmlOut string
	started := false
	for _, id := range st.BlockOrder() {
		b := st.Block(id)
		if id == lo.Block {
			started = true
			segs := b.ContentInRange(lo.Offset, b.Length())
			plain += segmentsText(segs)
			htmlOut += RenderSegmentsHTML(st.Schema, segs)
			continue
		}
		if !started {
			continue
		}
		if id == hi.Block {
			segs := b.ContentInRange(0, hi.Offset)
			plain += "\n" + segmentsText(segs)
			htmlOut += RenderSegmentsHTML(st.Schema, segs)
			break
		}
		if len(b.ChildBlocks()) > 0 {
			continue
		}
		plain += "\n" + b.Text()
		htmlOut += RenderBlocksHTML(st.Schema, []*document.BlockNode{b})
	}
	return &Payload{Plain: plain, HTML: htmlOut}, true
}

// Cut builds the payload plus the single deleting transaction, tagged with
// origin "input" so it flows through the normal dispatch path. Cross-block
// ranges are not cut; the caller falls back to per-block commands.
func Cut(st *state.EditorState) (*Payload, *state.Transaction, bool) {
	payload, ok := Copy(st)
	if !ok {
		return nil, nil, false
	}
	switch sel := st.Selection.(type) {
	case state.TextSelection:
		lo, hi, sameBlock := orderRange(st, sel)
		if !sameBlock {
			return nil, nil, false
		}
		tr := st.Tr(state.OriginInput).
			DeleteText(lo.Block, lo.Offset, hi.Offset).
			SetSelection(state.Caret(lo.Block, lo.Offset)).
			Build()
		return payload, tr, true
	case state.NodeSelection:
		b := st.Tr(state.OriginInput).RemoveNode(sel.Node)
		if prev, ok := st.PrevBlock(sel.Node); ok {
			if pb := st.Block(prev); pb != nil && len(pb.ChildBlocks()) == 0 && !st.Schema.IsVoid(pb.Type) {
				b = b.SetSelection(state.Caret(prev, pb.Length()))
			}
		}
		return payload, b.Build(), true
	}
	return nil, nil, false
}

func segmentsText(segs []document.Segment) string {
	out := ""
	for _, s := range segs {
		if s.Inline == nil {
			out += s.Text
		}
	}
	return out
}

func orderRange(st *state.EditorState, sel state.TextSelection) (lo, hi state.Position, sameBlock bool) {
	a, b := sel.Anchor, sel.Head
	if a.Block == b.Block {
		if a.Offset > b.Offset {
			a, b = b, a
		}
		return a, b, true
	}
	for _, id := range st.BlockOrder() {
		if id == a.Block {
			return a, b, false
		}
		if id == b.Block {
			return b, a, false
		}
	}
	return a, b, false
}
