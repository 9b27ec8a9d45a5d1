// Package bodytext renders stored markdown bodies into the plain text
// that search matches and excerpts against.
package bodytext

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// FromMarkdown returns the readable text of md with markup removed
// and all whitespace collapsed to single spaces.
// Raw HTML is dropped.
func FromMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	// parsers keep state, never share one
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse([]byte(md), p)

	var sb strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Text:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.Code:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.CodeBlock:
			if entering {
				sb.WriteByte(' ')
				sb.Write(n.Literal)
				sb.WriteByte(' ')
			}
		case *ast.Softbreak, *ast.Hardbreak:
			sb.WriteByte(' ')
		case *ast.Paragraph, *ast.Heading, *ast.ListItem,
			*ast.BlockQuote, *ast.TableCell:
			// block boundaries never glue words together
			sb.WriteByte(' ')
		}

		return ast.GoToNext
	})

	return strings.Join(strings.Fields(sb.String()), " ")
}
