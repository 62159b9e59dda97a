package clipboard

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"notectl/document"
	"notectl/schema"
)

// blockTags maps pasted HTML elements to block types. Anything else at
// block level degrades to a paragraph; paste must never reject input.
var blockTags = map[string]document.NodeType{
	"p":          schema.Paragraph,
	"h1":         schema.Heading,
	"h2":         schema.Heading,
	"h3":         schema.Heading,
	"h4":         schema.Heading,
	"blockquote": schema.Blockquote,
	"li":         schema.BulletListItem,
	"hr":         schema.Divider,
	"img":        schema.Image,
	"pre":        schema.Paragraph,
}

var markTagTypes = map[string]document.MarkType{
	"strong": schema.Bold,
	"b":      schema.Bold,
	"em":     schema.Italic,
	"i":      schema.Italic,
	"u":      schema.Underline,
	"s":      schema.Strike,
	"del":    schema.Strike,
	"code":   schema.Code,
	"a":      schema.Link,
}

// ParseHTML imports pasted HTML: the input is sanitized first, then parsed
// into blocks of the registry's vocabulary. Unknown structure degrades
// (unknown element → paragraph, unknown mark → dropped); malformed markup
// never fails the paste.
func ParseHTML(reg *schema.Registry, input string) (*document.Document, error) {
	clean := bluemonday.UGCPolicy().Sanitize(input)
	root, err := html.Parse(strings.NewReader(clean))
	if err != nil {
		return nil, err
	}
	p := &htmlImporter{}
	p.walk(root, nil)
	p.flush(nil)
	doc := &document.Document{Blocks: p.blocks}
	return reg.Sanitize(doc), nil
}

type htmlImporter struct {
	blocks  []*document.BlockNode
	pending []document.Child
}

func (p *htmlImporter) walk(n *html.Node, marks []document.Mark) {
	switch n.Type {
	case html.TextNode:
		text := strings.ReplaceAll(n.Data, "\n", " ")
		if strings.TrimSpace(text) != "" {
			p.pending = append(p.pending, document.TextNode{Text: text, Marks: document.CloneMarks(marks)})
		}
		return
	case html.ElementNode:
		if mt, ok := markTagTypes[n.Data]; ok {
			m := document.Mark{Type: mt}
			if mt == schema.Link {
				if href := attrValue(n, "href"); href != "" {
					m.Attrs = map[string]any{"href": href}
				}
			}
			next := document.AddMark(document.CloneMarks(marks), m)
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.walk(c, next)
			}
			return
		}
		if typ, ok := blockTags[n.Data]; ok {
			p.flush(nil)
			switch n.Data {
			case "hr":
				p.blocks = append(p.blocks, document.NewBlock(document.NewBlockID(), schema.Divider, nil))
			case "img":
				attrs := map[string]any{"url": attrValue(n, "src")}
				if alt := attrValue(n, "alt"); alt != "" {
					attrs["caption"] = alt
				}
				p.blocks = append(p.blocks, document.NewBlock(document.NewBlockID(), schema.Image, attrs))
			default:
				var attrs map[string]any
				if typ == schema.Heading {
					attrs = map[string]any{"level": headingLevel(n.Data)}
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					p.walk(c, marks)
				}
				p.flush(&blockSpec{typ: typ, attrs: attrs})
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, marks)
	}
}

type blockSpec struct {
	typ   document.NodeType
	attrs map[string]any
}

// flush turns accumulated inline content into a block. Loose inline content
// outside any block element becomes a paragraph.
func (p *htmlImporter) flush(spec *blockSpec) {
	typ := schema.Paragraph
	var attrs map[string]any
	if spec != nil {
		typ = spec.typ
		attrs = spec.attrs
	}
	if len(p.pending) == 0 && typ == schema.Paragraph {
		return
	}
	p.blocks = append(p.blocks, document.NewBlock(document.NewBlockID(), typ, attrs, p.pending...))
	p.pending = nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	default:
		return 4
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
