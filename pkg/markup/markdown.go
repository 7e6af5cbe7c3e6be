// Package markup converts between the editor's HTML, model markdown and plain text.
package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// ToHTML renders model markdown for the rich-text editor.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// IsEmptyHTML reports whether an editor document carries no content.
// The editor serialises a cleared document as a single empty paragraph.
func IsEmptyHTML(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "<p></p>"
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
