package prd

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// previewRenderer converts PRD markdown to HTML for the in-app preview
var previewRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// RenderHTML converts PRD markdown to an HTML fragment
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := previewRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML preview: %w", err)
	}
	return buf.String(), nil
}
