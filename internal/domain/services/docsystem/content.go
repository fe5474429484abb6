package docsystem

import "context"

// RenderedContent holds the derived variants of a document's raw markdown
type RenderedContent struct {
	HTML      string // Sanitized HTML
	Plain     string // Tag-free text used for substring search
	WordCount int
}

// ContentRenderer derives HTML and plain text from raw markdown
type ContentRenderer interface {
	Render(ctx context.Context, raw string) (*RenderedContent, error)
}

// ContentConverter converts uploaded file content to markdown.
// Implementations should be stateless and thread-safe.
type ContentConverter interface {
	// Convert transforms input content to markdown
	Convert(ctx context.Context, input []byte) (markdown string, err error)

	// SupportedExtensions returns file extensions this converter handles, with the leading dot
	SupportedExtensions() []string

	// Name returns a human-readable converter name for logging
	Name() string
}
