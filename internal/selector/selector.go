// Package selector synthesizes CSS selectors for live DOM elements so an
// external agent can re-find them across calls. Selectors follow a fixed
// priority chain and avoid auto-generated identifiers that do not survive
// re-renders.
package selector

import (
	"fmt"
	"strings"
)

const (
	// DefaultTestIDAttr is the marker attribute checked first in the chain.
	DefaultTestIDAttr = "data-testid"

	maxHrefLen = 100
)

// Attrs is the attribute snapshot of one element at resolve time.
type Attrs struct {
	Tag         string
	ID          string
	Name        string
	Class       string
	TestID      string
	AriaLabel   string
	Placeholder string
	Href        string
	Role        string
}

// Resolver builds selectors from element attributes. The zero value uses
// DefaultTestIDAttr.
type Resolver struct {
	TestIDAttr string
}

func (r Resolver) testIDAttr() string {
	if r.TestIDAttr == "" {
		return DefaultTestIDAttr
	}
	return r.TestIDAttr
}

// Resolve returns the best selector for the given attributes. The chain is
// deterministic: the same attributes always yield the same selector.
func (r Resolver) Resolve(a Attrs) string {
	tag := strings.ToLower(strings.TrimSpace(a.Tag))

	if v := strings.TrimSpace(a.TestID); v != "" {
		return attrSelector(r.testIDAttr(), v)
	}
	if id := strings.TrimSpace(a.ID); id != "" && !IsGarbageID(id) {
		return "#" + escapeIdent(id)
	}
	if v := strings.TrimSpace(a.Name); v != "" {
		return attrSelector("name", v)
	}
	if v := strings.TrimSpace(a.Placeholder); v != "" && (tag == "input" || tag == "textarea") {
		return tag + attrSelector("placeholder", v)
	}
	if v := strings.TrimSpace(a.AriaLabel); v != "" {
		return attrSelector("aria-label", v)
	}
	if v := strings.TrimSpace(a.Href); v != "" && tag == "a" && usableHref(v) {
		return attrSelector("href", v)
	}
	if c := firstMeaningfulClass(a.Class); c != "" {
		return "." + escapeIdent(c)
	}

	// ARIA-only widgets have no dedicated tag to fall back to.
	role := strings.ToLower(strings.TrimSpace(a.Role))
	if tag == "" || ((role == "checkbox" || role == "menuitem") && tag != "input") {
		if role != "" {
			return attrSelector("role", role)
		}
	}
	if tag == "" {
		return "*"
	}
	return tag
}

func usableHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "vbscript:") {
		return false
	}
	return len(href) < maxHrefLen
}

func attrSelector(attr, value string) string {
	return fmt.Sprintf(`[%s="%s"]`, attr, escapeAttrValue(value))
}
