package document

import (
	"bytes"
	"encoding/json"

	"golang.org/x/xerrors"
)

// The persisted form is a JSON tree mirroring the model: blocks carry
// id/type/attrs/children, text runs carry text/marks, inline nodes carry
// inlineType/attrs. This is the save format host applications consume.

type blockJSON struct {
	ID       BlockID           `json:"id"`
	Type     NodeType          `json:"type"`
	Attrs    map[string]any    `json:"attrs,omitempty"`
	Children []json.RawMessage `json:"children"`
}

type textJSON struct {
	Text  string `json:"text"`
	Marks []Mark `json:"marks,omitempty"`
}

type inlineJSON struct {
	InlineType InlineType     `json:"inlineType"`
	Attrs      map[string]any `json:"attrs,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (b *BlockNode) MarshalJSON() ([]byte, error) {
	out := blockJSON{ID: b.ID, Type: b.Type, Attrs: b.Attrs, Children: []json.RawMessage{}}
	for _, c := range b.Children {
		var (
			raw []byte
			err error
		)
		switch t := c.(type) {
		case TextNode:
			raw, err = json.Marshal(textJSON{Text: t.Text, Marks: t.Marks})
		case InlineNode:
			raw, err = json.Marshal(inlineJSON{InlineType: t.Type, Attrs: t.Attrs})
		case *BlockNode:
			raw, err = json.Marshal(t)
		}
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BlockNode) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return xerrors.New("document: block without id")
	}
	children := make([]Child, 0, len(raw.Children))
	for _, rc := range raw.Children {
		c, err := decodeChild(rc)
		if err != nil {
			return err
		}
		children = append(children, c)
	}
	*b = BlockNode{ID: raw.ID, Type: raw.Type, Attrs: raw.Attrs, Children: children}
	return nil
}

func decodeChild(data []byte) (Child, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch {
	case hasKey(probe, "text"):
		var t textJSON
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return TextNode{Text: t.Text, Marks: t.Marks}, nil
	case hasKey(probe, "inlineType"):
		var in inlineJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, err
		}
		return InlineNode{Type: in.InlineType, Attrs: in.Attrs}, nil
	case hasKey(probe, "id"):
		var nb BlockNode
		if err := json.Unmarshal(data, &nb); err != nil {
			return nil, err
		}
		return &nb, nil
	default:
		return nil, xerrors.Errorf("document: unrecognized child node %s", bytes.TrimSpace(data))
	}
}

func hasKey(m map[string]json.RawMessage, k string) bool {
	_, ok := m[k]
	return ok
}

type documentJSON struct {
	Blocks []*BlockNode `json:"blocks"`
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []*BlockNode{}
	}
	return json.Marshal(documentJSON{Blocks: blocks})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Blocks = raw.Blocks
	return nil
}

// Decode parses a persisted document.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, xerrors.Errorf("document: decode: %w", err)
	}
	return &d, nil
}

// Encode serializes the document to its persisted JSON form.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}
