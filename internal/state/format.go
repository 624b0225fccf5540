package state

import (
	"fmt"
	"strings"
)

const (
	stateBlockOpen  = "<CurrentBrowserState>"
	stateBlockClose = "</CurrentBrowserState>"

	// SentinelNoBrowser is returned before a browser is available.
	SentinelNoBrowser = stateBlockOpen + "\nNo browser running.\n" + stateBlockClose
	// SentinelNoPages is returned when the registry holds no pages.
	SentinelNoPages = stateBlockOpen + "\nNo pages open.\n" + stateBlockClose
)

var categoryHeaders = map[Category]string{
	CategoryInput:    "INPUTS",
	CategoryButton:   "BUTTONS",
	CategoryLink:     "LINKS",
	CategorySelect:   "SELECTS",
	CategoryTextarea: "TEXTAREAS",
	CategoryMenuItem: "MENUITEMS",
	CategoryCheckbox: "CHECKBOXES",
}

// formatAll merges per-page blocks into the wrapped browser state text.
func formatAll(pageIDs []string, blocks []string) string {
	var b strings.Builder
	b.WriteString(stateBlockOpen)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Open pages: %s\n", strings.Join(pageIDs, ", "))
	for _, block := range blocks {
		b.WriteString("\n")
		b.WriteString(block)
	}
	b.WriteString(stateBlockClose)
	return b.String()
}

// formatPageError renders the placeholder block for a page whose scan failed
// entirely.
func formatPageError(pageID string, err error) string {
	return fmt.Sprintf("=== PAGE: %s ===\n[Error scanning: %v]\n", pageID, err)
}

// formatPageState renders one page snapshot in the fixed line-oriented format
// downstream consumers parse.
func formatPageState(st PageState, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== PAGE: %s ===\n", st.PageID)
	fmt.Fprintf(&b, "URL: %s\n", st.URL)
	fmt.Fprintf(&b, "Title: %s\n", st.Title)

	if len(st.ScanErrors) > 0 {
		b.WriteString("!!! SCAN WARNINGS (partial results):\n")
		for _, e := range st.ScanErrors {
			fmt.Fprintf(&b, "!!! - %s\n", e)
		}
	}

	if opts.IncludeContent {
		b.WriteString("CONTENT:\n")
		if st.Content != "" {
			b.WriteString(st.Content)
			b.WriteString("\n")
		}
	}
	if opts.IncludeStructure {
		b.WriteString("STRUCTURE:\n")
		if st.Structure != "" {
			b.WriteString(st.Structure)
			b.WriteString("\n")
		}
		if len(st.Collapsed) > 0 {
			b.WriteString("COLLAPSED SECTIONS:\n")
			for _, c := range st.Collapsed {
				line := "- " + c.Selector
				if c.Title != "" {
					line += " " + c.Title
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	for _, cat := range Categories {
		records := st.Elements[cat]
		writeCategory(&b, cat, records, opts)
	}

	fmt.Fprintf(&b, "DATA_ATTRIBUTES (%d):\n", st.DataAttrTotal)
	if len(st.DataAttributes) > 0 {
		b.WriteString(strings.Join(st.DataAttributes, ", "))
		if rest := st.DataAttrTotal - len(st.DataAttributes); rest > 0 {
			fmt.Fprintf(&b, " (+%d more)", rest)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeCategory(b *strings.Builder, cat Category, records []ElementRecord, opts Options) {
	header := categoryHeaders[cat]
	if cat == CategoryLink {
		fmt.Fprintf(b, "%s (%d):\n", header, len(records))
		shown := records
		if opts.MaxLinks > 0 && len(records) > opts.MaxLinks {
			shown = records[:opts.MaxLinks]
		}
		for _, rec := range shown {
			b.WriteString(formatRecord(rec))
		}
		if hidden := len(records) - len(shown); hidden > 0 {
			fmt.Fprintf(b, "... and %d more links hidden\n", hidden)
		}
		return
	}
	fmt.Fprintf(b, "%s:\n", header)
	for _, rec := range records {
		b.WriteString(formatRecord(rec))
	}
}

func formatRecord(rec ElementRecord) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(rec.Selector)
	if rec.Text != "" {
		fmt.Fprintf(&b, " %q", rec.Text)
	}
	var extras []string
	if rec.InputType != "" && rec.Type == CategoryInput {
		extras = append(extras, "type="+rec.InputType)
	}
	if rec.Placeholder != "" && rec.Text != "["+rec.Placeholder+"]" {
		extras = append(extras, "placeholder="+rec.Placeholder)
	}
	if rec.Href != "" && rec.Type == CategoryLink {
		extras = append(extras, "href="+rec.Href)
	}
	if len(extras) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(extras, ", "))
	}
	b.WriteString("\n")
	for _, opt := range rec.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		fmt.Fprintf(&b, "    option %q value=%q\n", label, opt.Value)
	}
	return b.String()
}
