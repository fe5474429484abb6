package converter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/service/docsystem/converter/sanitizer"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownRenderer derives a document's HTML and plain text from its raw markdown.
// Raw HTML inside the markdown is passed through goldmark and removed by the sanitizer.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	sanitizer *sanitizer.HTMLSanitizer
}

var _ docsysSvc.ContentRenderer = (*MarkdownRenderer)(nil)

// NewMarkdownRenderer creates a GFM renderer with class-based syntax highlighting
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRenderer{
		md:        md,
		sanitizer: sanitizer.NewHTMLSanitizer(),
	}
}

// Render converts markdown to sanitized HTML, plain text and a word count
func (r *MarkdownRenderer) Render(ctx context.Context, raw string) (*docsysSvc.RenderedContent, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(raw), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	safe := r.sanitizer.Sanitize(buf.String())
	plain := sanitizer.PlainText(safe)

	return &docsysSvc.RenderedContent{
		HTML:      safe,
		Plain:     plain,
		WordCount: len(strings.Fields(plain)),
	}, nil
}
