package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup extracts the visible text from an HTML fragment. Dialogue
// front-ends sometimes deliver rich text; extraction and gating always run on
// the stripped form. Plain text passes through unchanged.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to the raw string if parsing fails
		return s
	}

	var sb strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
