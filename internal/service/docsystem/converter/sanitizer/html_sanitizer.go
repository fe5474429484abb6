package sanitizer

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// classNames matches syntax-highlighting class lists such as "chroma kd"
	classNames = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)
	whitespace = regexp.MustCompile(`\s+`)

	// blockTags matches tags whose boundaries separate words
	blockTags = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ul|ol|tr|td|th|pre|blockquote|br|hr|table)\b[^>]*>`)
)

// HTMLSanitizer removes dangerous HTML elements and attributes.
// Safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer for user generated content. It keeps common
// formatting, links, tables and code, and drops scripts, event handlers and javascript: URLs.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classNames).OnElements("pre", "code", "span")
	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer creates a sanitizer that strips every tag
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize applies the policy
func (s *HTMLSanitizer) Sanitize(input string) string {
	return s.policy.Sanitize(input)
}

// PlainText strips every tag from rendered HTML, unescapes entities and collapses
// whitespace runs into single spaces. Block boundaries become spaces so words
// from adjacent paragraphs do not merge.
func PlainText(rendered string) string {
	spaced := blockTags.ReplaceAllString(rendered, " $0 ")
	stripped := bluemonday.StrictPolicy().Sanitize(spaced)
	return strings.TrimSpace(whitespace.ReplaceAllString(html.UnescapeString(stripped), " "))
}
