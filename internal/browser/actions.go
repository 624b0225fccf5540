package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Thin action wrappers the CLI drives against registered pages. Selectors
// coming back from the scanner may carry a ">> nth=<i>" qualifier, which
// playwright locators resolve natively.

func (r *Registry) Navigate(ctx context.Context, id, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, ok := r.raw(id)
	if !ok {
		return fmt.Errorf("page %s not found", id)
	}
	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(defaultNavTimeout.Milliseconds())),
	})
	return wrap(err)
}

func (r *Registry) Click(ctx context.Context, id, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, ok := r.raw(id)
	if !ok {
		return fmt.Errorf("page %s not found", id)
	}
	loc := page.Locator(selector)
	first := loc.First()
	if err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(defaultActionTime.Milliseconds())),
	}); err != nil {
		return wrap(err)
	}
	if err := first.ScrollIntoViewIfNeeded(); err != nil {
		// best effort, click may still land
	}
	return wrap(first.Click())
}

func (r *Registry) Fill(ctx context.Context, id, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, ok := r.raw(id)
	if !ok {
		return fmt.Errorf("page %s not found", id)
	}
	loc := page.Locator(selector)
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(defaultActionTime.Milliseconds())),
	}); err != nil {
		return wrap(err)
	}
	return wrap(loc.Fill(text))
}

// Read returns the inner text of selector, or the whole body when selector
// is empty.
func (r *Registry) Read(ctx context.Context, id, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, ok := r.raw(id)
	if !ok {
		return "", fmt.Errorf("page %s not found", id)
	}
	if strings.TrimSpace(selector) == "" {
		return page.InnerText("body")
	}
	loc := page.Locator(selector)
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		return "", wrap(err)
	}
	return loc.InnerText()
}

// WaitForStableDOM waits for the network to settle after navigation before
// scanning or dismissing overlays.
func (r *Registry) WaitForStableDOM(ctx context.Context, id string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, ok := r.raw(id)
	if !ok {
		return fmt.Errorf("page %s not found", id)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		_ = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateDomcontentloaded,
			Timeout: playwright.Float(1000),
		})
	}
	return nil
}
