package converter

import (
	"context"
	"strings"

	docsysSvc "vault/internal/domain/services/docsystem"
)

// passthroughConverter stores the upload as markdown unchanged, apart from line endings
type passthroughConverter struct {
	name       string
	extensions []string
}

// NewMarkdownConverter handles markdown, the native storage format
func NewMarkdownConverter() docsysSvc.ContentConverter {
	return &passthroughConverter{name: "markdown", extensions: []string{".md", ".markdown"}}
}

// NewTextConverter handles plain text, which is already valid markdown
func NewTextConverter() docsysSvc.ContentConverter {
	return &passthroughConverter{name: "plaintext", extensions: []string{".txt", ".text"}}
}

func (c *passthroughConverter) Convert(ctx context.Context, input []byte) (string, error) {
	text := strings.TrimPrefix(string(input), "\ufeff")
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

func (c *passthroughConverter) SupportedExtensions() []string {
	return c.extensions
}

func (c *passthroughConverter) Name() string {
	return c.name
}
