// Package state turns live pages into a compact, stable, LLM-consumable text
// description. It enumerates interactive elements with re-findable selectors,
// summarizes content and structure under size budgets, and merges everything
// across open pages behind a single-flight cache.
package state

// Page is the narrow browser surface the scanner needs. The live
// implementation wraps a playwright page (internal/browser); tests supply
// in-memory fakes.
type Page interface {
	URL() string
	Title() (string, error)
	Content() (string, error)
	InnerText(selector string) (string, error)
	Evaluate(expression string, args ...interface{}) (interface{}, error)
}

// PageInfo identifies one registered page.
type PageInfo struct {
	ID  string
	URL string
}

// Registry is the external page registry the synthesizer fans out over.
type Registry interface {
	ListPages() []PageInfo
	GetPage(id string) (Page, bool)
}

// Options is the flat configuration surface of the scanner.
type Options struct {
	// MaxContentLength caps the flattened visible text. 0 means unlimited.
	MaxContentLength int
	// IncludeContent controls the CONTENT section.
	IncludeContent bool
	// IncludeStructure controls the STRUCTURE and COLLAPSED SECTIONS sections.
	IncludeStructure bool
	// MaxLinks caps rendered link lines; the total stays visible in the header.
	MaxLinks int
	// TestIDAttr is the designated marker attribute, "data-testid" by default.
	TestIDAttr string
}

// DefaultOptions returns the options used when the caller passes zero values.
func DefaultOptions() Options {
	return Options{
		MaxContentLength: 4000,
		IncludeContent:   true,
		IncludeStructure: true,
		MaxLinks:         25,
		TestIDAttr:       "data-testid",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxLinks <= 0 {
		o.MaxLinks = def.MaxLinks
	}
	if o.TestIDAttr == "" {
		o.TestIDAttr = def.TestIDAttr
	}
	return o
}
