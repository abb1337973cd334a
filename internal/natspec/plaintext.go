package natspec

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// RenderPlain flattens rendered markdown down to plain text for clients
// that declared no markdown support in their hover/completion
// capabilities: it walks goldmark's parsed AST and concatenates every
// text node, with a blank line between block-level siblings so
// paragraphs and list items stay visually separated.
func RenderPlain(markdown string) string {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n\n") {
				b.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
