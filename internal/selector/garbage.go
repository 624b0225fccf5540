package selector

import (
	"regexp"
	"strings"
	"unicode"
)

// Ordered tables driving the heuristics below. Kept as data so new framework
// patterns can be added without touching the resolve chain.
var (
	// Prefixes of ids emitted by auto-increment id generators.
	garbageIDPrefixes = []string{
		"rc-",
		"rc_",
		"mui-",
		"react-",
		"radix-",
		"headlessui-",
		"downshift-",
		"ember",
		"yui_",
	}

	// React useId tokens look like ":r0:", ":r1a:".
	reactUseIDPattern = regexp.MustCompile(`^:r[0-9a-z]+:$`)

	// Prefixes of build-generated utility classes that change between builds.
	utilityClassPrefixes = []string{
		"css-",
		"sc-",
		"jsx-",
		"svelte-",
		"emotion-",
		"makeStyles-",
		"chakra-",
		"_",
	}
)

const opaqueTokenMinLen = 20

// IsGarbageID reports whether an id value looks auto-generated and therefore
// unsafe to address an element with.
func IsGarbageID(id string) bool {
	if id == "" {
		return true
	}
	lower := strings.ToLower(id)
	for _, prefix := range garbageIDPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	if reactUseIDPattern.MatchString(lower) {
		return true
	}
	for _, r := range id {
		if r > unicode.MaxASCII {
			return true
		}
		switch r {
		case ':', '[', ']', '{', '}', '(', ')', '<', '>':
			return true
		}
	}
	return isOpaqueToken(id)
}

// isOpaqueToken matches long alphanumeric blobs with no case transitions,
// e.g. "a7f3k9x2m5q8w1e4r7t0". Human-chosen ids of that length mix case or
// use separators.
func isOpaqueToken(s string) bool {
	if len(s) < opaqueTokenMinLen {
		return false
	}
	hasUpper, hasLower := false, false
	transitions := 0
	prevUpper := false
	for i, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		upper := unicode.IsUpper(r)
		if unicode.IsLetter(r) {
			if upper {
				hasUpper = true
			} else {
				hasLower = true
			}
			if i > 0 && upper != prevUpper {
				transitions++
			}
			prevUpper = upper
		}
	}
	if hasUpper && hasLower && transitions > 1 {
		return false // camelCase-ish, likely deliberate
	}
	return true
}

// firstMeaningfulClass returns the first class token that is stable enough to
// use in a selector, or "" when none qualifies.
func firstMeaningfulClass(class string) string {
	for _, token := range strings.Fields(class) {
		if meaningfulClass(token) {
			return token
		}
	}
	return ""
}

func meaningfulClass(token string) bool {
	if len(token) <= 2 {
		return false
	}
	for _, prefix := range utilityClassPrefixes {
		if strings.HasPrefix(token, prefix) {
			return false
		}
	}
	hasLetter := false
	digits := 0
	for _, r := range token {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if !hasLetter {
		return false
	}
	// Hash-like tokens ("a1b2c3d4e5") carry digits throughout.
	if len(token) >= 8 && digits >= len(token)/2 {
		return false
	}
	return true
}
