package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Synthesizer orchestrates page scans and owns the formatted state cache.
// At most one scan is in flight per instance: refresh requests arriving while
// a scan runs attach to it instead of starting another.
type Synthesizer struct {
	registry Registry
	opts     Options
	log      zerolog.Logger

	mu      sync.Mutex
	current *scanOp
	cached  string
}

type scanOp struct {
	done   chan struct{}
	result string
}

func NewSynthesizer(registry Registry, opts Options, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		registry: registry,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// CachedState is a synchronous read of the last completed snapshot. It never
// observes a half-written scan: the cache is swapped under the lock only when
// a scan completes.
func (s *Synthesizer) CachedState() string {
	if s == nil || s.registry == nil {
		return SentinelNoBrowser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == "" {
		return SentinelNoPages
	}
	return s.cached
}

// Refresh scans all pages and returns the new formatted state. Concurrent
// callers share one underlying scan. A caller abandoning the wait (ctx
// cancelled) does not stop the scan; it still completes and updates the
// cache.
func (s *Synthesizer) Refresh(ctx context.Context) (string, error) {
	if s.registry == nil {
		return SentinelNoBrowser, nil
	}

	s.mu.Lock()
	if op := s.current; op != nil {
		s.mu.Unlock()
		return awaitScan(ctx, op)
	}
	op := &scanOp{done: make(chan struct{})}
	s.current = op
	s.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				op.result = formatAll(nil, []string{fmt.Sprintf("[Error scanning: %v]\n", r)})
			}
			s.mu.Lock()
			s.cached = op.result
			s.current = nil
			s.mu.Unlock()
			close(op.done)
		}()
		s.log.Debug().Msg("state scan started")
		op.result = s.scanAllPages()
		s.log.Debug().Msg("state scan finished")
	}()

	return awaitScan(ctx, op)
}

func awaitScan(ctx context.Context, op *scanOp) (string, error) {
	select {
	case <-op.done:
		return op.result, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// scanAllPages fans out over the registry. A failing page yields an error
// placeholder block; the other pages are unaffected.
func (s *Synthesizer) scanAllPages() string {
	infos := s.registry.ListPages()
	if len(infos) == 0 {
		return SentinelNoPages
	}

	ids := make([]string, len(infos))
	blocks := make([]string, len(infos))
	var wg sync.WaitGroup
	for i, info := range infos {
		ids[i] = info.ID
		wg.Add(1)
		go func(i int, info PageInfo) {
			defer wg.Done()
			blocks[i] = s.scanOnePage(info)
		}(i, info)
	}
	wg.Wait()
	return formatAll(ids, blocks)
}

func (s *Synthesizer) scanOnePage(info PageInfo) (block string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn().Str("page", info.ID).Interface("panic", r).Msg("page scan failed")
			block = formatPageError(info.ID, fmt.Errorf("%v", r))
		}
	}()
	page, ok := s.registry.GetPage(info.ID)
	if !ok {
		return formatPageError(info.ID, fmt.Errorf("page no longer registered"))
	}
	st := scanPage(page, info, s.opts, s.log)
	return formatPageState(st, s.opts)
}
