package server

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// renderMarkdown converts markdown to an HTML fragment.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	_ = goldmark.Convert([]byte(md), &buf)
	return buf.String()
}
