package confluence

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText renders Confluence storage-format markup as plain text.
// Script and style bodies are dropped; block elements become newlines
// and runs of blank lines collapse to one.
func HTMLToText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// Storage format is XHTML-ish; if it will not parse, keep the
		// raw markup rather than lose the content.
		return markup
	}

	doc.Find("script, style").Remove()
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, br").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
