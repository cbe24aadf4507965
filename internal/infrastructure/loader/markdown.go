package loader

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// MarkdownLoader walks the goldmark AST and cuts the document into sections
// at level-1/2 headings. A document without headings is one section.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(raw []byte, filename string) ([]domain.Section, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(raw))

	var sections []domain.Section
	var body strings.Builder
	heading := ""

	flush := func() {
		content := strings.TrimSpace(body.String())
		body.Reset()
		if content == "" {
			return
		}
		name := heading
		if name == "" {
			name = "document"
		}
		sections = append(sections, domain.Section{
			Text: content,
			Metadata: map[string]any{
				"type":      "markdown",
				"file_path": filename,
				"section":   name,
			},
		})
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= 2 {
			flush()
			heading = string(h.Text(raw))
			body.WriteString(heading)
			body.WriteString("\n")
			continue
		}
		appendBlockText(node, raw, &body)
		body.WriteString("\n")
	}
	flush()

	if len(sections) == 0 && strings.TrimSpace(string(raw)) != "" {
		sections = append(sections, domain.Section{
			Text: strings.TrimSpace(string(raw)),
			Metadata: map[string]any{
				"type":      "markdown",
				"file_path": filename,
				"section":   "document",
			},
		})
	}
	return sections, nil
}

// appendBlockText collects the raw source lines of a block node and its
// block children; container nodes (lists, quotes) carry no lines themselves.
// Inline nodes are skipped: calling Lines on them panics, and their text is
// already covered by the enclosing block's source lines.
func appendBlockText(node ast.Node, source []byte, b *strings.Builder) {
	if node.Type() != ast.TypeBlock {
		return
	}
	if lines := node.Lines(); lines != nil && lines.Len() > 0 {
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			b.Write(segment.Value(source))
		}
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		appendBlockText(child, source, b)
	}
}
