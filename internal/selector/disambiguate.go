package selector

import "fmt"

// Disambiguate rewrites colliding selectors into uniquely addressable display
// forms. Selectors occurring once pass through unmodified; every occurrence of
// a repeated selector gets a zero-based positional qualifier in input order,
// rendered as the locator suffix ">> nth=<i>". The qualified form resolves to
// exactly one element via page.Locator at scan time.
//
// Counting is per input slice: callers disambiguate each element category
// independently.
func Disambiguate(selectors []string) []string {
	counts := make(map[string]int, len(selectors))
	for _, s := range selectors {
		counts[s]++
	}
	seen := make(map[string]int, len(selectors))
	out := make([]string, len(selectors))
	for i, s := range selectors {
		if counts[s] > 1 {
			out[i] = fmt.Sprintf("%s >> nth=%d", s, seen[s])
			seen[s]++
		} else {
			out[i] = s
		}
	}
	return out
}
