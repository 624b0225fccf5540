// Package overlay finds and dismisses cookie/consent banners without
// site-specific instructions. Three ordered tiers: known CMP accept buttons,
// a visual-prominence heuristic over suspicious fixed containers, and a
// last-resort pass that hides residual overlay chrome.
package overlay

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Page is the browser surface the heuristic needs.
type Page interface {
	Evaluate(expression string, args ...interface{}) (interface{}, error)
}

const defaultSettle = 500 * time.Millisecond

// Dismisser runs the dismissal heuristic against one page.
type Dismisser struct {
	page   Page
	log    zerolog.Logger
	settle time.Duration
}

func NewDismisser(page Page, log zerolog.Logger) *Dismisser {
	return &Dismisser{page: page, log: log, settle: defaultSettle}
}

// Dismiss attempts to clear consent/cookie overlays and returns the number of
// affected elements (clicked plus hidden). It never returns an error: every
// tier failure counts as "no effect".
func (d *Dismisser) Dismiss() int {
	affected := 0

	clicked := d.clickKnownAccept()
	if clicked {
		affected++
	} else if d.clickProminent() {
		affected++
		clicked = true
	}
	if clicked {
		time.Sleep(d.settle)
	}

	// Unconditional: a successful click can leave residual chrome behind.
	affected += d.hideResiduals()

	d.log.Debug().Int("affected", affected).Msg("overlay dismissal done")
	return affected
}

// clickFirstVisibleJS walks an ordered selector list and clicks the first
// present, visible match.
const clickFirstVisibleJS = `(selectors) => {
	for (const sel of selectors) {
		try {
			const el = document.querySelector(sel);
			if (!el) continue;
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 && rect.height === 0) continue;
			const style = window.getComputedStyle(el);
			if (style && (style.display === "none" || style.visibility === "hidden")) continue;
			el.click();
			return sel;
		} catch (e) {}
	}
	return "";
}`

func (d *Dismisser) clickKnownAccept() bool {
	val, err := d.page.Evaluate(clickFirstVisibleJS, cmpAcceptSelectors)
	if err != nil {
		d.log.Debug().Err(err).Msg("known-pattern tier failed")
		return false
	}
	sel, _ := val.(string)
	if sel == "" {
		return false
	}
	d.log.Debug().Str("selector", sel).Msg("clicked known consent button")
	return true
}

// collectOverlayCandidatesJS finds suspicious overlay containers (fixed or
// absolute, raised z-index, consent-ish class/id) and harvests the visual
// metrics of their clickable descendants. Scoring happens on the Go side.
const collectOverlayCandidatesJS = `(params) => {
	const keyword = new RegExp(params.keywords, "i");
	const out = [];
	const cssEscape = (v) => (window.CSS && window.CSS.escape) ? window.CSS.escape(v) : v;
	const buildPath = (el) => {
		const parts = [];
		while (el && el.nodeType === 1 && parts.length < 8) {
			let part = el.tagName.toLowerCase();
			if (el.id) { parts.unshift(part + "#" + cssEscape(el.id)); break; }
			let sibling = el, index = 1;
			while ((sibling = sibling.previousElementSibling)) {
				if (sibling.tagName === el.tagName) index++;
			}
			parts.unshift(part + ":nth-of-type(" + index + ")");
			el = el.parentElement;
		}
		return parts.join(" > ");
	};
	for (const el of document.querySelectorAll("div, section, aside, dialog")) {
		try {
			const style = window.getComputedStyle(el);
			if (style.position !== "fixed" && style.position !== "absolute") continue;
			const z = parseInt(style.zIndex, 10);
			if (isNaN(z) || z <= params.zThreshold) continue;
			const rect = el.getBoundingClientRect();
			if (rect.width === 0) continue;
			const marker = (el.className + " " + el.id);
			if (!keyword.test(marker)) continue;
			const clickables = [];
			const nodes = el.querySelectorAll("button, a, [role='button'], input[type='button'], input[type='submit']");
			let index = 0;
			for (const node of nodes) {
				try {
					const nodeRect = node.getBoundingClientRect();
					const nodeStyle = window.getComputedStyle(node);
					const bg = nodeStyle.backgroundColor || "";
					const m = bg.match(/rgba?\(([\d.]+),\s*([\d.]+),\s*([\d.]+)(?:,\s*([\d.]+))?\)/);
					clickables.push({
						path: buildPath(node),
						text: (node.innerText || node.value || "").trim().slice(0, 80),
						r: m ? parseFloat(m[1]) : 0,
						g: m ? parseFloat(m[2]) : 0,
						b: m ? parseFloat(m[3]) : 0,
						a: m ? (m[4] === undefined ? 1 : parseFloat(m[4])) : 0,
						width: nodeRect.width,
						height: nodeRect.height,
						index: index++
					});
				} catch (e) {}
				if (clickables.length >= 20) break;
			}
			if (clickables.length > 0) out.push({clickables});
		} catch (e) {}
		if (out.length >= 5) break;
	}
	return out;
}`

const clickByPathJS = `(path) => {
	try {
		const el = document.querySelector(path);
		if (!el) return false;
		el.click();
		return true;
	} catch (e) { return false; }
}`

const overlayZThreshold = 10

func (d *Dismisser) clickProminent() bool {
	val, err := d.page.Evaluate(collectOverlayCandidatesJS, map[string]interface{}{
		"keywords":   containerKeywordPattern,
		"zThreshold": overlayZThreshold,
	})
	if err != nil {
		d.log.Debug().Err(err).Msg("visual-prominence tier failed")
		return false
	}
	containers, err := decodeContainers(val)
	if err != nil {
		d.log.Debug().Err(err).Msg("visual-prominence decode failed")
		return false
	}
	for _, c := range containers {
		best, ok := bestCandidate(c)
		if !ok {
			continue
		}
		clicked, err := d.page.Evaluate(clickByPathJS, best.Path)
		if err != nil {
			continue
		}
		if ok, _ := clicked.(bool); ok {
			d.log.Debug().Str("path", best.Path).Str("text", best.Text).Msg("clicked prominent overlay button")
			return true
		}
	}
	return false
}

func decodeContainers(val interface{}) ([]container, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var containers []container
	if err := json.Unmarshal(data, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// hideOverlaysJS force-hides fixed/absolute matches of the generic overlay
// patterns that carry an unusually high or unset z-index.
const hideOverlaysJS = `(patterns) => {
	let hidden = 0;
	for (const pattern of patterns) {
		try {
			for (const el of document.querySelectorAll(pattern)) {
				const style = window.getComputedStyle(el);
				if (style.position !== "fixed" && style.position !== "absolute") continue;
				const z = parseInt(style.zIndex, 10);
				if (!isNaN(z) && z < 100) continue;
				if (el.style.display === "none") continue;
				el.style.setProperty("display", "none", "important");
				hidden++;
			}
		} catch (e) {}
	}
	return hidden;
}`

func (d *Dismisser) hideResiduals() int {
	val, err := d.page.Evaluate(hideOverlaysJS, overlayHidePatterns)
	if err != nil {
		d.log.Debug().Err(err).Msg("suppression tier failed")
		return 0
	}
	switch n := val.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
