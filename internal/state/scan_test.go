package state

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage implements Page in memory. Evaluate dispatches on the script text
// the scanner sends; results go through the same JSON round-trip as live
// playwright values.
type fakePage struct {
	url       string
	title     string
	innerText string
	innerErr  error
	html      string

	elementsByQuery map[string][]map[string]interface{}
	structErr       error
	structure       map[string]interface{}
	collapsed       []map[string]interface{}
	dataAttrs       []string
}

func (p *fakePage) URL() string              { return p.url }
func (p *fakePage) Title() (string, error)   { return p.title, nil }
func (p *fakePage) Content() (string, error) { return p.html, nil }

func (p *fakePage) InnerText(selector string) (string, error) {
	return p.innerText, p.innerErr
}

func (p *fakePage) Evaluate(expr string, args ...interface{}) (interface{}, error) {
	switch {
	case strings.Contains(expr, "params.query"):
		params := args[0].(map[string]interface{})
		query := params["query"].(string)
		rows := p.elementsByQuery[query]
		out := make([]interface{}, len(rows))
		for i, r := range rows {
			out[i] = r
		}
		return out, nil
	case strings.Contains(expr, "payload.forms"):
		if p.structErr != nil {
			return nil, p.structErr
		}
		if p.structure == nil {
			return map[string]interface{}{"forms": []interface{}{}, "main": "", "tables": []interface{}{}}, nil
		}
		return p.structure, nil
	case strings.Contains(expr, "details:not([open])"):
		out := make([]interface{}, len(p.collapsed))
		for i, c := range p.collapsed {
			out[i] = c
		}
		return out, nil
	case strings.Contains(expr, "getAttribute(attr)"):
		out := make([]interface{}, len(p.dataAttrs))
		for i, v := range p.dataAttrs {
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected script: %s", expr[:40])
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func loginPage() *fakePage {
	return &fakePage{
		url:       "https://example.test/login",
		title:     "Sign in",
		innerText: "Welcome back\nPlease sign in",
		elementsByQuery: map[string][]map[string]interface{}{
			categoryQueries[CategoryInput]: {
				{"tag": "input", "id": "email", "inputType": "email"},
				{"tag": "input", "name": "password", "inputType": "password"},
			},
			categoryQueries[CategoryButton]: {
				{"tag": "button", "testId": "submit-btn", "text": "Login"},
			},
		},
		dataAttrs: []string{"submit-btn"},
	}
}

func TestScanPageLoginExample(t *testing.T) {
	st := scanPage(loginPage(), PageInfo{ID: "page-1"}, DefaultOptions(), testLogger())

	require.Empty(t, st.ScanErrors)
	assert.Equal(t, "https://example.test/login", st.URL)
	assert.Equal(t, "Sign in", st.Title)
	assert.Equal(t, "Welcome back Please sign in", st.Content)

	inputs := st.Elements[CategoryInput]
	require.Len(t, inputs, 2)
	assert.Equal(t, "#email", inputs[0].Selector)
	assert.Equal(t, `[name="password"]`, inputs[1].Selector)

	buttons := st.Elements[CategoryButton]
	require.Len(t, buttons, 1)
	assert.Equal(t, `[data-testid="submit-btn"]`, buttons[0].Selector)
	assert.Equal(t, "Login", buttons[0].Text)

	assert.Equal(t, []string{"submit-btn"}, st.DataAttributes)
	assert.Equal(t, 1, st.DataAttrTotal)
}

func TestScanPagePartialFailure(t *testing.T) {
	page := loginPage()
	page.structErr = errors.New("execution context destroyed")

	st := scanPage(page, PageInfo{ID: "page-1"}, DefaultOptions(), testLogger())

	// content and elements survive the structure failure
	assert.NotEmpty(t, st.Content)
	assert.Len(t, st.Elements[CategoryInput], 2)

	require.Len(t, st.ScanErrors, 1)
	assert.Contains(t, st.ScanErrors[0], "structure")

	block := formatPageState(st, DefaultOptions())
	assert.Contains(t, block, "!!! SCAN WARNINGS")
	assert.Contains(t, block, "structure")
}

func TestScanPageContentFallbackToHTML(t *testing.T) {
	page := loginPage()
	page.innerErr = errors.New("frame detached")
	page.html = `<html><head><script>var x=1;</script></head><body><p>Hello</p><p>world</p></body></html>`

	st := scanPage(page, PageInfo{ID: "page-1"}, DefaultOptions(), testLogger())
	assert.Equal(t, "Hello world", st.Content)
	assert.Empty(t, st.ScanErrors)
}

func TestDisplayTextPrecedence(t *testing.T) {
	assert.Equal(t, "Click me", displayText(rawElement{Text: "Click me", AriaLabel: "x"}))
	assert.Equal(t, "[Close]", displayText(rawElement{AriaLabel: "Close"}))
	assert.Equal(t, "[Search...]", displayText(rawElement{Placeholder: "Search..."}))
	assert.Equal(t, "", displayText(rawElement{}))
}

func TestTruncateContent(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := truncateContent(long, 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 10)))
	assert.Contains(t, got, "truncated at 10 chars")
	assert.Contains(t, got, "read command")

	assert.Equal(t, long, truncateContent(long, 0), "0 means unlimited")
	assert.Equal(t, "short", truncateContent("short", 10))
}

func TestTruncateContentKeepsRunesWhole(t *testing.T) {
	text := "héllo wörld ünïcodé"
	for budget := 1; budget < len(text); budget++ {
		got := truncateContent(text, budget)
		assert.True(t, utf8.ValidString(got), "budget %d", budget)
	}

	// cutting inside the two-byte é backs up to the rune boundary
	got := truncateContent("né"+strings.Repeat("a", 100), 2)
	assert.True(t, strings.HasPrefix(got, "n..."))
}

func TestClipTextKeepsRunesWhole(t *testing.T) {
	long := "a" + strings.Repeat("é", maxElementText)
	got := clipText(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestDuplicateSelectorsDisambiguatedPerCategory(t *testing.T) {
	page := loginPage()
	page.elementsByQuery[categoryQueries[CategoryLink]] = []map[string]interface{}{
		{"tag": "a", "class": "nav-item", "href": strings.Repeat("x", 200), "text": "Home"},
		{"tag": "a", "class": "nav-item", "href": strings.Repeat("y", 200), "text": "Docs"},
		{"tag": "a", "class": "nav-item", "href": strings.Repeat("z", 200), "text": "About"},
	}

	st := scanPage(page, PageInfo{ID: "page-1"}, DefaultOptions(), testLogger())
	links := st.Elements[CategoryLink]
	require.Len(t, links, 3)
	assert.Equal(t, ".nav-item >> nth=0", links[0].Selector)
	assert.Equal(t, ".nav-item >> nth=1", links[1].Selector)
	assert.Equal(t, ".nav-item >> nth=2", links[2].Selector)
}

func TestFormatLinksBudget(t *testing.T) {
	st := PageState{
		PageID:   "page-1",
		URL:      "https://example.test",
		Elements: map[Category][]ElementRecord{},
	}
	links := make([]ElementRecord, 100)
	for i := range links {
		links[i] = ElementRecord{
			Type:     CategoryLink,
			Selector: fmt.Sprintf(`[href="/item/%d"]`, i),
			Text:     fmt.Sprintf("Item %d", i),
		}
	}
	st.Elements[CategoryLink] = links

	opts := DefaultOptions()
	opts.MaxLinks = 5
	block := formatPageState(st, opts)

	assert.Contains(t, block, "LINKS (100):")
	assert.Contains(t, block, "... and 95 more links hidden")
	shown := strings.Count(block, `- [href="/item/`)
	assert.Equal(t, 5, shown)
}

func TestFormatSelectOptions(t *testing.T) {
	st := PageState{
		PageID: "page-1",
		Elements: map[Category][]ElementRecord{
			CategorySelect: {{
				Type:     CategorySelect,
				Selector: "#country",
				Options: []SelectOption{
					{Value: "de", Label: "Germany"},
					{Value: "fr", Label: "France"},
				},
			}},
		},
	}
	block := formatPageState(st, DefaultOptions())
	assert.Contains(t, block, "SELECTS:\n- #country\n")
	assert.Contains(t, block, `option "Germany" value="de"`)
	assert.Contains(t, block, `option "France" value="fr"`)
}

func TestDataAttributesCapped(t *testing.T) {
	page := loginPage()
	page.dataAttrs = nil
	for i := 0; i < 40; i++ {
		page.dataAttrs = append(page.dataAttrs, fmt.Sprintf("attr-%02d", i))
	}
	// duplicates collapse
	page.dataAttrs = append(page.dataAttrs, "attr-00", "attr-01")

	st := scanPage(page, PageInfo{ID: "page-1"}, DefaultOptions(), testLogger())
	assert.Equal(t, 40, st.DataAttrTotal)
	assert.Len(t, st.DataAttributes, maxDataAttrDisplay)
	assert.Equal(t, "attr-00", st.DataAttributes[0], "sorted alphabetically")

	block := formatPageState(st, DefaultOptions())
	assert.Contains(t, block, "DATA_ATTRIBUTES (40):")
	assert.Contains(t, block, "(+15 more)")
}

func TestFlattenHTML(t *testing.T) {
	text, err := flattenHTML(`<html><body><style>.a{}</style><div>one<span>two</span></div></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "one two", strings.TrimSpace(strings.Join(strings.Fields(text), " ")))
}
