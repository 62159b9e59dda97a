package document

// NormalizeInline canonicalizes a children list:
//
//   - adjacent TextNodes with identical mark sets are merged
//   - empty TextNodes are dropped
//   - merging never crosses an InlineNode or nested-block boundary
//   - InlineNode identity and order are preserved
//   - if no inline content and no nested blocks remain, a single empty
//     TextNode is kept so an editable position exists
//
// The pass is idempotent: NormalizeInline(NormalizeInline(x)) yields the
// same structure as one application.
func NormalizeInline(children []Child) []Child {
	out := make([]Child, 0, len(children))
	for _, c := range children {
		t, ok := c.(TextNode)
		if !ok {
			out = append(out, c)
			continue
		}
		if t.Text == "" {
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(TextNode); ok && SameMarks(prev.Marks, t.Marks) {
				out[len(out)-1] = TextNode{Text: prev.Text + t.Text, Marks: prev.Marks}
				continue
			}
		}
		out = append(out, TextNode{Text: t.Text, Marks: t.Marks})
	}
	if len(out) == 0 {
		out = append(out, TextNode{})
	}
	return out
}
