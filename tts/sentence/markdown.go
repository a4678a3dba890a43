package sentence

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownNormalizer extracts speakable text from a goldmark AST. Unlike
// the regex normalizer it understands nesting, so emphasis inside links and
// list structure come out clean. Headings and list items are closed with a
// period so they segment as sentences of their own.
type MarkdownNormalizer struct {
	md goldmark.Markdown
}

// NewMarkdownNormalizer creates an AST-based normalizer.
func NewMarkdownNormalizer() *MarkdownNormalizer {
	return &MarkdownNormalizer{md: goldmark.New()}
}

// Normalize renders markdown to a single line of plain text.
func (m *MarkdownNormalizer) Normalize(markdown string) string {
	reader := text.NewReader([]byte(markdown))
	doc := m.md.Parser().Parse(reader)

	var buf strings.Builder
	m.walkNode(doc, reader.Source(), &buf)

	return strings.Join(strings.Fields(buf.String()), " ")
}

func (m *MarkdownNormalizer) walkNode(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.CodeSpan, *ast.RawHTML:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.AutoLink:
		buf.Write(n.Label(source))
		return

	case *ast.Heading, *ast.ListItem:
		m.walkChildren(n, source, buf)
		terminate(buf)
		return
	}

	m.walkChildren(node, source, buf)
	if node.Type() == ast.TypeBlock {
		buf.WriteByte(' ')
	}
}

func (m *MarkdownNormalizer) walkChildren(node ast.Node, source []byte, buf *strings.Builder) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		m.walkNode(c, source, buf)
	}
}

// terminate ends the text written so far with a sentence terminator.
func terminate(buf *strings.Builder) {
	s := strings.TrimRight(buf.String(), " \t\n")
	if s == "" {
		return
	}
	buf.Reset()
	buf.WriteString(s)
	switch s[len(s)-1] {
	case '.', '!', '?', ':', ';':
		buf.WriteByte(' ')
	default:
		buf.WriteString(". ")
	}
}
