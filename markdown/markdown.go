// Package markdown turns post bodies into sanitised HTML. Bodies may be
// Markdown, raw HTML or a mix of both; scripts, event handlers and other
// active content are always stripped.
package markdown

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy  = newBodyPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
	return p
}

// ToHTML renders md and sanitises the result.
func ToHTML(md string) string {
	// parsers carry state, so one per call
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	out := markdown.Render(doc, r)
	return string(bodyPolicy.SanitizeBytes(out))
}

// Excerpt returns the first n characters of the body's text content with all
// markup removed. A trailing ellipsis marks truncation.
func Excerpt(md string, n int) string {
	text := html.UnescapeString(plainPolicy.Sanitize(ToHTML(md)))
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	cut := strings.TrimRight(string(r[:n]), " ")
	return cut + "…"
}
