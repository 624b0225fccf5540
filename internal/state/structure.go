package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/polzovatel/browser-state/internal/selector"
)

// mainContentCandidates is tried in order; the first selector present on the
// page is reported as the main content region.
var mainContentCandidates = []string{
	"main",
	`[role="main"]`,
	"#main",
	"#content",
	".main-content",
	"article",
}

type formField struct {
	Tag     string `json:"tag"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

type formOutline struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Fields []formField `json:"fields"`
}

type tableOutline struct {
	ID   string `json:"id"`
	Rows int    `json:"rows"`
}

type structurePayload struct {
	Forms  []formOutline  `json:"forms"`
	Main   string         `json:"main"`
	Tables []tableOutline `json:"tables"`
}

const structureJS = `(params) => {
	const payload = {forms: [], main: "", tables: []};
	const isVisible = (el) => {
		try {
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 && rect.height === 0) return false;
			const style = window.getComputedStyle(el);
			return !style || (style.display !== "none" && style.visibility !== "hidden");
		} catch (e) { return false; }
	};
	for (const form of document.querySelectorAll("form")) {
		try {
			const outline = {id: form.id || "", name: form.getAttribute("name") || "", fields: []};
			for (const field of form.querySelectorAll("input, select, textarea")) {
				outline.fields.push({
					tag: field.tagName.toLowerCase(),
					id: field.id || "",
					name: field.getAttribute("name") || "",
					type: field.getAttribute("type") || "",
					visible: isVisible(field) && field.getAttribute("type") !== "hidden"
				});
			}
			payload.forms.push(outline);
		} catch (e) {}
	}
	for (const candidate of params.mainCandidates) {
		try {
			if (document.querySelector(candidate)) { payload.main = candidate; break; }
		} catch (e) {}
	}
	for (const table of document.querySelectorAll("table")) {
		try {
			payload.tables.push({id: table.id || "", rows: table.querySelectorAll("tr").length});
		} catch (e) {}
	}
	return payload;
}`

// pageStructure builds the compact outline of forms, main region and tables.
func pageStructure(page Page) (string, error) {
	val, err := page.Evaluate(structureJS, map[string]interface{}{
		"mainCandidates": mainContentCandidates,
	})
	if err != nil {
		return "", fmt.Errorf("structure scan: %w", err)
	}
	var payload structurePayload
	data, err := json.Marshal(val)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode structure: %w", err)
	}
	return formatStructure(payload), nil
}

func formatStructure(p structurePayload) string {
	var b strings.Builder
	for i, form := range p.Forms {
		name := form.ID
		if name == "" {
			name = form.Name
		}
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		fmt.Fprintf(&b, "Form %s:\n", name)
		for _, f := range form.Fields {
			line := "  - " + f.Tag
			if f.ID != "" {
				line += "#" + f.ID
			}
			if f.Name != "" {
				line += fmt.Sprintf(" name=%s", f.Name)
			}
			if f.Type != "" {
				line += fmt.Sprintf(" type=%s", f.Type)
			}
			if !f.Visible {
				line += " [hidden]"
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if p.Main != "" {
		fmt.Fprintf(&b, "Main content: %s\n", p.Main)
	}
	for i, table := range p.Tables {
		name := table.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		fmt.Fprintf(&b, "Table %s: %d rows\n", name, table.Rows)
	}
	return strings.TrimRight(b.String(), "\n")
}

// collapsedSectionsJS finds collapsed disclosure regions the agent may want
// to expand: closed <details> and anything with aria-expanded="false".
const collapsedSectionsJS = `() => {
	const out = [];
	const describe = (el) => {
		try {
			const summary = el.querySelector ? el.querySelector("summary") : null;
			const title = (el.getAttribute("aria-label") || (summary && summary.innerText) || el.innerText || "").trim();
			return title.slice(0, 80);
		} catch (e) { return ""; }
	};
	for (const el of document.querySelectorAll("details:not([open])")) {
		try {
			out.push({tag: "details", id: el.id || "", class: el.getAttribute("class") || "", ariaLabel: el.getAttribute("aria-label") || "", title: describe(el)});
		} catch (e) {}
	}
	for (const el of document.querySelectorAll('[aria-expanded="false"]')) {
		try {
			out.push({tag: el.tagName.toLowerCase(), id: el.id || "", class: el.getAttribute("class") || "", ariaLabel: el.getAttribute("aria-label") || "", title: describe(el)});
		} catch (e) {}
	}
	return out.slice(0, 40);
}`

type rawCollapsed struct {
	Tag       string `json:"tag"`
	ID        string `json:"id"`
	Class     string `json:"class"`
	AriaLabel string `json:"ariaLabel"`
	Title     string `json:"title"`
}

func collapsedSections(page Page) ([]CollapsedSection, error) {
	val, err := page.Evaluate(collapsedSectionsJS)
	if err != nil {
		return nil, fmt.Errorf("collapsed sections: %w", err)
	}
	data, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var raws []rawCollapsed
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode collapsed sections: %w", err)
	}
	out := make([]CollapsedSection, 0, len(raws))
	for _, raw := range raws {
		sel := collapsedSelector(raw)
		if sel == "" {
			continue
		}
		out = append(out, CollapsedSection{Selector: sel, Title: normalizeWhitespace(raw.Title)})
	}
	return out, nil
}

func collapsedSelector(raw rawCollapsed) string {
	sel := selector.Resolver{}.Resolve(selector.Attrs{
		Tag:       raw.Tag,
		ID:        raw.ID,
		Class:     raw.Class,
		AriaLabel: raw.AriaLabel,
	})
	if sel == "*" {
		return ""
	}
	return sel
}
