package state

// Category is one of the interactive element classes tracked per page.
type Category string

const (
	CategoryInput    Category = "input"
	CategoryButton   Category = "button"
	CategoryLink     Category = "link"
	CategorySelect   Category = "select"
	CategoryTextarea Category = "textarea"
	CategoryMenuItem Category = "menuitem"
	CategoryCheckbox Category = "checkbox"
)

// Categories lists all element classes in render order.
var Categories = []Category{
	CategoryInput,
	CategoryButton,
	CategoryLink,
	CategorySelect,
	CategoryTextarea,
	CategoryMenuItem,
	CategoryCheckbox,
}

// SelectOption is one option of a <select> element.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ElementRecord is one interactive element snapshot. Selector matches the
// originating element at extraction time; after disambiguation the displayed
// selector matches exactly one element within its category.
type ElementRecord struct {
	Type        Category
	Selector    string
	Text        string
	InputType   string
	Placeholder string
	Href        string
	Options     []SelectOption // selects only
}

// CollapsedSection is a collapsed disclosure region the agent may expand.
type CollapsedSection struct {
	Selector string
	Title    string
}

// PageState is one page snapshot. Constructed fresh on every scan and never
// mutated afterwards.
type PageState struct {
	PageID string
	URL    string
	Title  string

	Content   string
	Structure string
	Collapsed []CollapsedSection

	Elements map[Category][]ElementRecord

	DataAttributes []string
	DataAttrTotal  int

	// ScanErrors holds human-readable sub-scan failures so the page renders
	// partial results instead of failing outright.
	ScanErrors []string
}
