package state

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// scanPage builds one fresh PageState. Sub-scans run concurrently and fail
// independently: a failing sub-scan records an error and leaves its slot
// empty, it never blanks the others.
func scanPage(page Page, info PageInfo, opts Options, log zerolog.Logger) PageState {
	opts = opts.withDefaults()

	st := PageState{
		PageID:   info.ID,
		URL:      page.URL(),
		Elements: make(map[Category][]ElementRecord, len(Categories)),
	}
	st.Title, _ = page.Title()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	fail := func(name string, err error) {
		log.Debug().Str("page", info.ID).Str("scan", name).Err(err).Msg("sub-scan failed")
		mu.Lock()
		st.ScanErrors = append(st.ScanErrors, fmt.Sprintf("%s: %v", name, err))
		mu.Unlock()
	}
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(name, fmt.Errorf("panic: %v", r))
				}
			}()
			if err := fn(); err != nil {
				fail(name, err)
			}
		}()
	}

	if opts.IncludeContent {
		run("content", func() error {
			content, err := pageContent(page, opts.MaxContentLength)
			if err != nil {
				return err
			}
			mu.Lock()
			st.Content = content
			mu.Unlock()
			return nil
		})
	}
	if opts.IncludeStructure {
		run("structure", func() error {
			structure, err := pageStructure(page)
			if err != nil {
				return err
			}
			mu.Lock()
			st.Structure = structure
			mu.Unlock()
			return nil
		})
		run("collapsed-sections", func() error {
			collapsed, err := collapsedSections(page)
			if err != nil {
				return err
			}
			mu.Lock()
			st.Collapsed = collapsed
			mu.Unlock()
			return nil
		})
	}
	run("elements", func() error {
		elements, errs := extractAllElements(page, opts)
		mu.Lock()
		st.Elements = elements
		st.ScanErrors = append(st.ScanErrors, errs...)
		mu.Unlock()
		return nil
	})
	run("data-attributes", func() error {
		values, total, err := dataAttributes(page, opts.TestIDAttr)
		if err != nil {
			return err
		}
		mu.Lock()
		st.DataAttributes = values
		st.DataAttrTotal = total
		mu.Unlock()
		return nil
	})

	wg.Wait()
	sort.Strings(st.ScanErrors)
	return st
}
