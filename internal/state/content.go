package state

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const truncationMarker = "... [content truncated at %d chars, use the read command for full text]"

// pageContent extracts the flattened visible text of a page, truncated to
// maxLength (0 = unlimited). When live innerText extraction fails or comes
// back empty, the raw HTML is parsed and stripped instead.
func pageContent(page Page, maxLength int) (string, error) {
	text, err := page.InnerText("body")
	if err != nil || strings.TrimSpace(text) == "" {
		html, htmlErr := page.Content()
		if htmlErr != nil {
			if err != nil {
				return "", fmt.Errorf("inner text: %w", err)
			}
			return "", nil
		}
		flattened, flatErr := flattenHTML(html)
		if flatErr != nil {
			if err != nil {
				return "", fmt.Errorf("inner text: %w", err)
			}
			return "", nil
		}
		text = flattened
	}
	return truncateContent(normalizeWhitespace(text), maxLength), nil
}

func truncateContent(text string, maxLength int) string {
	if maxLength <= 0 || len(text) <= maxLength {
		return text
	}
	return clipRunes(text, maxLength) + fmt.Sprintf(truncationMarker, maxLength)
}

// clipRunes cuts text at the byte budget, backing up so a multibyte rune is
// never split.
func clipRunes(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}
