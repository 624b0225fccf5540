package selector

import (
	"fmt"
	"strings"
)

// escapeIdent escapes a value for use as a CSS identifier (after "#" or ".").
// Follows the CSS.escape algorithm closely enough for selectors produced here.
func escapeIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\x00':
			b.WriteRune('�')
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&b, `\3%c `, r)
			} else {
				b.WriteRune(r)
			}
		case r == '-' && i == 0 && len(s) == 1:
			b.WriteString(`\-`)
		case r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f:
			b.WriteRune(r)
		case r < 0x20:
			fmt.Fprintf(&b, `\%x `, r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeAttrValue escapes a value placed inside a double-quoted attribute
// selector.
func escapeAttrValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
