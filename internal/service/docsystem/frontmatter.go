package docsystem

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// importMetadata holds the optional frontmatter fields an imported file may carry
type importMetadata struct {
	Title     string   `yaml:"title"`
	Tags      []string `yaml:"tags"`
	DocType   string   `yaml:"doc_type"`
	SourceURL string   `yaml:"source_url"`
}

// parseFrontmatter splits optional YAML frontmatter from markdown.
// Content without an opening "---" line is returned unchanged with empty metadata.
//
//	---
//	title: Reading list
//	tags: [books, later]
//	---
//	# Markdown content here
func parseFrontmatter(content string) (*importMetadata, string, error) {
	meta := &importMetadata{}
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return meta, content, nil
	}

	lines := bytes.Split([]byte(content), []byte("\n"))
	closing := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			closing = i
			break
		}
	}
	if closing == 0 {
		return nil, "", fmt.Errorf("missing closing frontmatter delimiter '---'")
	}

	if err := yaml.Unmarshal(bytes.Join(lines[1:closing], []byte("\n")), meta); err != nil {
		return nil, "", fmt.Errorf("parse YAML frontmatter: %w", err)
	}

	body := string(bytes.Join(lines[closing+1:], []byte("\n")))
	return meta, strings.TrimLeft(body, "\r\n"), nil
}
