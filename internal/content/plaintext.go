// Package content turns server-provided status content into terminal text.
//
// Content is first passed through a bluemonday allow-list that keeps only
// paragraph and line-break elements (dropping script and style bodies
// entirely), then flattened to plain text with golang.org/x/net/html.
package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Sanitizer converts status content to plain text. It is safe for
// concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the allow-list policy.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br")
	return &Sanitizer{policy: p}
}

// PlainText sanitizes raw and flattens it: <br> becomes a newline,
// consecutive paragraphs are separated by a blank line, entities are
// unescaped and surrounding whitespace is trimmed. Text without markup
// passes through unchanged apart from trimming.
func (s *Sanitizer) PlainText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return strings.TrimSpace(raw)
	}

	safe := s.policy.Sanitize(raw)

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(safe))
	paragraphs := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				b.WriteByte('\n')
			case "p":
				if paragraphs > 0 {
					b.WriteString("\n\n")
				}
				paragraphs++
			}
		}
	}
}
