package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/multierr"

	"github.com/polzovatel/browser-state/internal/state"
)

// Registry tracks open pages under stable ids ("page-1", "page-2", ...). It
// implements the page registry surface the state synthesizer consumes.
type Registry struct {
	mu      sync.Mutex
	context playwright.BrowserContext
	pages   map[string]playwright.Page
	order   []string
	nextID  int
}

func newRegistry(context playwright.BrowserContext) *Registry {
	return &Registry{
		context: context,
		pages:   make(map[string]playwright.Page),
	}
}

// OpenPage creates a page, navigates it and registers it under a fresh id.
func (r *Registry) OpenPage(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, err := r.context.NewPage()
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(float64(defaultNavTimeout.Milliseconds()))
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(defaultNavTimeout.Milliseconds())),
	}); err != nil {
		_ = page.Close()
		return "", wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("page-%d", r.nextID)
	r.pages[id] = page
	r.order = append(r.order, id)
	return id, nil
}

// ClosePage closes and unregisters one page.
func (r *Registry) ClosePage(id string) error {
	r.mu.Lock()
	page, ok := r.pages[id]
	if ok {
		delete(r.pages, id)
		for i, existing := range r.order {
			if existing == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("page %s not found", id)
	}
	return wrap(page.Close())
}

// ListPages returns the open pages in creation order.
func (r *Registry) ListPages() []state.PageInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]state.PageInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, state.PageInfo{ID: id, URL: r.pages[id].URL()})
	}
	return infos
}

// GetPage returns the page under id, wrapped for the scanner.
func (r *Registry) GetPage(id string) (state.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.pages[id]
	if !ok {
		return nil, false
	}
	return pageAdapter{page: page}, true
}

// raw returns the underlying playwright page for action wrappers.
func (r *Registry) raw(id string) (playwright.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.pages[id]
	return page, ok
}

// Close closes every page and the browser context, collecting all failures.
func (r *Registry) Close() error {
	r.mu.Lock()
	pages := make([]playwright.Page, 0, len(r.pages))
	for _, page := range r.pages {
		pages = append(pages, page)
	}
	r.pages = make(map[string]playwright.Page)
	r.order = nil
	r.mu.Unlock()

	var errs error
	for _, page := range pages {
		errs = multierr.Append(errs, page.Close())
	}
	errs = multierr.Append(errs, r.context.Close())
	return errs
}

// pageAdapter narrows a playwright page to the scanner's Page surface.
type pageAdapter struct {
	page playwright.Page
}

func (p pageAdapter) URL() string {
	return p.page.URL()
}

func (p pageAdapter) Title() (string, error) {
	return p.page.Title()
}

func (p pageAdapter) Content() (string, error) {
	return p.page.Content()
}

func (p pageAdapter) InnerText(selector string) (string, error) {
	return p.page.InnerText(selector)
}

func (p pageAdapter) Evaluate(expression string, args ...interface{}) (interface{}, error) {
	return p.page.Evaluate(expression, args...)
}
