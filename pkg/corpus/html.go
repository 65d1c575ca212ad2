package corpus

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the text content of a line, with any HTML markup
// removed and surrounding whitespace trimmed. Lines without markup
// pass through unparsed.
func StripHTML(content string) string {
	if !strings.ContainsRune(content, '<') {
		return strings.TrimSpace(content)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// Unparseable markup: fall back to the raw line
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(doc.Text())
}
