package state

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/polzovatel/browser-state/internal/selector"
)

const maxElementText = 120

// categoryQueries maps each element class to its DOM lookup expression.
// Ordered to match render order.
var categoryQueries = map[Category]string{
	CategoryInput:    `input:not([type="button"]):not([type="submit"]):not([type="reset"]):not([type="checkbox"]):not([type="radio"]):not([type="hidden"])`,
	CategoryButton:   `button, input[type="button"], input[type="submit"], [role="button"]`,
	CategoryLink:     `a[href]`,
	CategorySelect:   `select`,
	CategoryTextarea: `textarea`,
	CategoryMenuItem: `[role="menuitem"]`,
	CategoryCheckbox: `input[type="checkbox"], [role="checkbox"]`,
}

// rawElement is the per-element attribute harvest produced in page context.
// Selector synthesis happens on the Go side so the chain stays deterministic
// and testable.
type rawElement struct {
	Tag         string         `json:"tag"`
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Class       string         `json:"class"`
	TestID      string         `json:"testId"`
	AriaLabel   string         `json:"ariaLabel"`
	Placeholder string         `json:"placeholder"`
	Href        string         `json:"href"`
	Role        string         `json:"role"`
	Text        string         `json:"text"`
	InputType   string         `json:"inputType"`
	Options     []SelectOption `json:"options"`
}

// collectElementsJS enumerates visible elements matching params.query and
// harvests the attributes the resolver needs. Elements that detach or throw
// mid-harvest are skipped, never aborting the batch.
const collectElementsJS = `(params) => {
	const out = [];
	const isVisible = (el) => {
		try {
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 && rect.height === 0) return false;
			const style = window.getComputedStyle(el);
			if (!style) return true;
			return style.display !== "none" && style.visibility !== "hidden";
		} catch (e) { return false; }
	};
	let nodes;
	try { nodes = document.querySelectorAll(params.query); } catch (e) { return out; }
	for (const el of nodes) {
		if (out.length >= params.max) break;
		try {
			if (!isVisible(el)) continue;
			const rec = {
				tag: el.tagName.toLowerCase(),
				id: el.id || "",
				name: el.getAttribute("name") || "",
				class: el.getAttribute("class") || "",
				testId: el.getAttribute(params.testAttr) || "",
				ariaLabel: el.getAttribute("aria-label") || "",
				placeholder: el.getAttribute("placeholder") || "",
				href: el.getAttribute("href") || "",
				role: el.getAttribute("role") || "",
				text: (el.innerText || el.textContent || "").trim(),
				inputType: el.getAttribute("type") || "",
				options: []
			};
			if (rec.tag === "select") {
				for (const opt of el.options) {
					rec.options.push({value: opt.value, label: (opt.label || opt.text || "").trim()});
				}
			}
			out.push(rec);
		} catch (e) {
			// element detached mid-scan, skip it
		}
	}
	return out;
}`

const maxElementsPerCategory = 200

// extractCategory enumerates one element class and builds its records.
func extractCategory(page Page, cat Category, res selector.Resolver, testAttr string) ([]ElementRecord, error) {
	val, err := page.Evaluate(collectElementsJS, map[string]interface{}{
		"query":    categoryQueries[cat],
		"testAttr": testAttr,
		"max":      maxElementsPerCategory,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", cat, err)
	}
	raws, err := decodeRawElements(val)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", cat, err)
	}

	records := make([]ElementRecord, 0, len(raws))
	selectors := make([]string, 0, len(raws))
	for _, raw := range raws {
		rec, ok := buildRecord(cat, raw, res)
		if !ok {
			continue
		}
		records = append(records, rec)
		selectors = append(selectors, rec.Selector)
	}
	for i, display := range selector.Disambiguate(selectors) {
		records[i].Selector = display
	}
	return records, nil
}

func decodeRawElements(val interface{}) ([]rawElement, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var raws []rawElement
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// buildRecord maps one raw harvest to a record, or reports false when the
// element carries nothing addressable.
func buildRecord(cat Category, raw rawElement, res selector.Resolver) (ElementRecord, bool) {
	if raw.Tag == "" {
		return ElementRecord{}, false
	}
	sel := res.Resolve(selector.Attrs{
		Tag:         raw.Tag,
		ID:          raw.ID,
		Name:        raw.Name,
		Class:       raw.Class,
		TestID:      raw.TestID,
		AriaLabel:   raw.AriaLabel,
		Placeholder: raw.Placeholder,
		Href:        raw.Href,
		Role:        raw.Role,
	})
	rec := ElementRecord{
		Type:        cat,
		Selector:    sel,
		Text:        displayText(raw),
		InputType:   raw.InputType,
		Placeholder: raw.Placeholder,
		Href:        raw.Href,
		Options:     raw.Options,
	}
	return rec, true
}

// displayText picks element text, then aria-label, then placeholder. The
// fallbacks are bracket-wrapped so the agent can tell them from visible text.
func displayText(raw rawElement) string {
	if text := clipText(raw.Text); text != "" {
		return text
	}
	if label := clipText(raw.AriaLabel); label != "" {
		return "[" + label + "]"
	}
	if ph := clipText(raw.Placeholder); ph != "" {
		return "[" + ph + "]"
	}
	return ""
}

func clipText(s string) string {
	s = normalizeWhitespace(s)
	if len(s) > maxElementText {
		s = clipRunes(s, maxElementText) + "..."
	}
	return s
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractAllElements runs the seven category scans concurrently. A failing
// category contributes a scan error and an empty list, never aborting the
// others.
func extractAllElements(page Page, opts Options) (map[Category][]ElementRecord, []string) {
	res := selector.Resolver{TestIDAttr: opts.TestIDAttr}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		elements = make(map[Category][]ElementRecord, len(Categories))
		errs     []string
	)
	for _, cat := range Categories {
		cat := cat
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := extractCategory(page, cat, res, opts.TestIDAttr)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Sprintf("elements/%s: %v", cat, err))
				elements[cat] = nil
				return
			}
			elements[cat] = records
		}()
	}
	wg.Wait()
	return elements, errs
}
