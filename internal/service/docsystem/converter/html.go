package converter

import (
	"context"
	"fmt"

	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/service/docsystem/converter/sanitizer"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// htmlConverter sanitizes uploaded HTML and converts it to markdown
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewHTMLConverter creates an HTML to markdown converter
func NewHTMLConverter() docsysSvc.ContentConverter {
	return &htmlConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

// Convert strips scripts, event handlers and javascript: URLs, then converts to markdown
func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(string(input)))
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Name() string {
	return "html"
}
