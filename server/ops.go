package server

import (
	"encoding/json"

	"golang.org/x/xerrors"

	"notectl/document"
	"notectl/state"
)

// opJSON is one edit operation in a POST /api/ops batch. The batch builds a
// single transaction, so later operations see the effect of earlier ones.
type opJSON struct {
	Op     string            `json:"op"`
	Block  document.BlockID  `json:"block,omitempty"`
	Offset int               `json:"offset,omitempty"`
	From   int               `json:"from,omitempty"`
	To     int               `json:"to,omitempty"`
	Text   string            `json:"text,omitempty"`
	Marks  []document.Mark   `json:"marks,omitempty"`
	Mark   *document.Mark    `json:"mark,omitempty"`
	Type   document.NodeType `json:"type,omitempty"`
	Attrs  map[string]any    `json:"attrs,omitempty"`
	Name   string            `json:"name,omitempty"`
	Value  any               `json:"value,omitempty"`
	After  document.BlockID  `json:"after,omitempty"`
	Node   json.RawMessage   `json:"node,omitempty"`
	Origin string            `json:"origin,omitempty"`
}

func buildTransaction(st *state.EditorState, ops []opJSON) (*state.Transaction, error) {
	origin := state.OriginCommand
	if len(ops) > 0 && ops[0].Origin != "" {
		origin = state.Origin(ops[0].Origin)
	}
	b := st.Tr(origin)
	for _, op := range ops {
		switch op.Op {
		case "insertText":
			b.InsertText(op.Block, op.Offset, op.Text, op.Marks)
		case "deleteText":
			b.DeleteText(op.Block, op.From, op.To)
		case "addMark":
			if op.Mark == nil {
				return nil, xerrors.New("addMark: missing mark")
			}
			b.AddMark(op.Block, op.From, op.To, *op.Mark)
		case "removeMark":
			if op.Mark == nil {
				return nil, xerrors.New("removeMark: missing mark")
			}
			b.RemoveMark(op.Block, op.From, op.To, *op.Mark)
		case "setBlockType":
			b.SetBlockType(op.Block, op.Type, op.Attrs)
		case "setNodeAttr":
			b.SetNodeAttr(op.Block, op.Name, op.Value)
		case "splitBlock":
			b.SplitBlock(op.Block, op.Offset)
		case "removeNode":
			b.RemoveNode(op.Block)
		case "insertBlockAfter":
			node, err := decodeNode(op.Node)
			if err != nil {
				return nil, err
			}
			b.InsertBlockAfter(op.After, node)
		case "setSelection":
			b.SetSelection(state.Caret(op.Block, op.Offset))
		default:
			return nil, xerrors.Errorf("unknown op %q", op.Op)
		}
	}
	return b.Build(), nil
}

// BuildScript parses a JSON edit script (the same shape as POST /api/ops)
// into a single transaction against st.
func BuildScript(st *state.EditorState, script []byte) (*state.Transaction, error) {
	var ops []opJSON
	if err := json.Unmarshal(script, &ops); err != nil {
		return nil, xerrors.Errorf("edit script: %w", err)
	}
	return buildTransaction(st, ops)
}

func decodeNode(raw json.RawMessage) (*document.BlockNode, error) {
	if len(raw) == 0 {
		return nil, xerrors.New("insertBlockAfter: missing node")
	}
	var node document.BlockNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, xerrors.Errorf("insertBlockAfter: %w", err)
	}
	return &node, nil
}
