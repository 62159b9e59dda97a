package document

import "github.com/rs/xid"

// BlockID identifies a block for the lifetime of a document. Ids are never
// reused, even after the block is deleted, so selections and decorations
// captured before an undo still resolve afterwards.
type BlockID string

// NodeType names a block node type, e.g. "paragraph" or "heading".
type NodeType string

// MarkType names an inline mark type, e.g. "bold" or "link".
type MarkType string

// InlineType names an atomic inline node type, e.g. "mention".
type InlineType string

// NewBlockID returns a fresh globally unique block id.
func NewBlockID() BlockID {
	return BlockID(xid.New().String())
}
