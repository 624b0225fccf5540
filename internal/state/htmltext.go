package state

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose text is never part of visible page content.
var skippedHTMLTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"iframe":   true,
}

// flattenHTML strips markup from a raw HTML document and returns its text
// content. Used as the fallback when live innerText extraction is not
// available.
func flattenHTML(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	collectText(doc, &b)
	return b.String(), nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && skippedHTMLTags[strings.ToLower(n.Data)] {
		return
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
