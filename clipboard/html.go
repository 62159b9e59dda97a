package clipboard

import (
	"fmt"
	"html"
	"strings"

	"notectl/document"
	"notectl/schema"
)

// RenderBlocksHTML serializes blocks to the text/html clipboard flavor
// using the registry's tag mapping.
func RenderBlocksHTML(reg *schema.Registry, blocks []*document.BlockNode) string {
	var sb strings.Builder
	for _, b := range blocks {
		renderBlock(&sb, reg, b)
	}
	return sb.String()
}

func renderBlock(sb *strings.Builder, reg *schema.Registry, b *document.BlockNode) {
	spec, _ := reg.NodeSpec(b.Type)
	tag := spec.Tag
	if tag == "" {
		tag = "p"
	}
	if spec.Void {
		if b.Type == schema.Image {
			fmt.Fprintf(sb, `<img src=%q alt=%q>`, attrString(b.Attrs, "url"), attrString(b.Attrs, "caption"))
			return
		}
		fmt.Fprintf(sb, "<%s>", tag)
		return
	}
	fmt.Fprintf(sb, "<%s>", tag)
	sb.WriteString(RenderSegmentsHTML(reg, b.ContentInRange(0, b.Length())))
	for _, nb := range b.ChildBlocks() {
		renderBlock(sb, reg, nb)
	}
	fmt.Fprintf(sb, "</%s>", tag)
}

// RenderSegmentsHTML serializes inline segments, nesting mark tags in the
// registry's order.
func RenderSegmentsHTML(reg *schema.Registry, segs []document.Segment) string {
	var sb strings.Builder
	for _, seg := range segs {
		if seg.Inline != nil {
			fmt.Fprintf(&sb, `<span data-inline=%q></span>`, string(seg.Inline.Type))
			continue
		}
		opening, closing := markTags(reg, seg.Marks)
		sb.WriteString(opening)
		sb.WriteString(html.EscapeString(seg.Text))
		sb.WriteString(closing)
	}
	return sb.String()
}

func markTags(reg *schema.Registry, marks []document.Mark) (opening, closing string) {
	var closers []string
	var sb strings.Builder
	for _, m := range marks {
		spec, ok := reg.MarkSpec(m.Type)
		if !ok || spec.Tag == "" {
			continue
		}
		if m.Type == schema.Link {
			fmt.Fprintf(&sb, `<a href=%q>`, attrString(m.Attrs, "href"))
		} else {
			fmt.Fprintf(&sb, "<%s>", spec.Tag)
		}
		closers = append(closers, fmt.Sprintf("</%s>", spec.Tag))
	}
	for i := len(closers) - 1; i >= 0; i-- {
		closing += closers[i]
	}
	return sb.String(), closing
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
