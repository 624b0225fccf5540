package state

import (
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

// maxDataAttrDisplay caps how many marker attribute values are rendered; the
// remainder is summarized with a count.
const maxDataAttrDisplay = 25

const dataAttrsJS = `(attr) => {
	const out = [];
	try {
		for (const el of document.querySelectorAll("[" + attr + "]")) {
			const v = el.getAttribute(attr);
			if (v) out.push(v);
			if (out.length >= 500) break;
		}
	} catch (e) {}
	return out;
}`

// dataAttributes collects the distinct values of the marker attribute across
// the page, sorted alphabetically. Returns the display slice and the total
// distinct count.
func dataAttributes(page Page, attr string) ([]string, int, error) {
	val, err := page.Evaluate(dataAttrsJS, attr)
	if err != nil {
		return nil, 0, fmt.Errorf("data attributes: %w", err)
	}
	data, err := json.Marshal(val)
	if err != nil {
		return nil, 0, err
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, 0, fmt.Errorf("decode data attributes: %w", err)
	}

	distinct := mapset.NewSet(values...).ToSlice()
	slices.Sort(distinct)
	total := len(distinct)
	if total > maxDataAttrDisplay {
		distinct = distinct[:maxDataAttrDisplay]
	}
	return distinct, total, nil
}
