package converter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoutesByExtension(t *testing.T) {
	registry := NewConverterRegistry()

	assert.Equal(t, []string{".htm", ".html", ".markdown", ".md", ".text", ".txt"}, registry.SupportedExtensions())
	assert.Equal(t, "markdown", registry.GetConverter(".MD").Name())
	assert.Nil(t, registry.GetConverter(".pdf"))

	_, err := registry.Convert(context.Background(), "report.pdf", []byte("%PDF"))
	assert.Error(t, err)
}

func TestPassthroughNormalizesLineEndings(t *testing.T) {
	out, err := NewTextConverter().Convert(context.Background(), []byte("\ufeffline one\r\nline two"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", out)
}

func TestHTMLConverterDropsScripts(t *testing.T) {
	input := `<h1>Title</h1><p onclick="steal()">Hello <strong>world</strong></p><script>alert(1)</script>`

	out, err := NewHTMLConverter().Convert(context.Background(), []byte(input))
	require.NoError(t, err)

	assert.Contains(t, out, "# Title")
	assert.Contains(t, out, "**world**")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "onclick")
}

func TestMarkdownRenderer(t *testing.T) {
	renderer := NewMarkdownRenderer()

	rendered, err := renderer.Render(context.Background(), "# Note A\n\nSome *important* idea.\n\n<script>alert('x')</script>\n\n- [ ] todo")
	require.NoError(t, err)

	assert.Contains(t, rendered.HTML, "<h1")
	assert.Contains(t, rendered.HTML, "<em>important</em>")
	assert.NotContains(t, rendered.HTML, "<script")
	assert.Equal(t, "Note A Some important idea. todo", rendered.Plain)
	assert.Equal(t, 6, rendered.WordCount)
}

func TestMarkdownRendererEmpty(t *testing.T) {
	rendered, err := NewMarkdownRenderer().Render(context.Background(), "")
	require.NoError(t, err)

	assert.Empty(t, rendered.Plain)
	assert.Zero(t, rendered.WordCount)
}
