package overlay

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOverlayPage scripts the three evaluate round-trips the dismisser makes.
type fakeOverlayPage struct {
	clickedKnown  string
	containers    []interface{}
	clickedPaths  []string
	hiddenCount   float64
	evaluateError error
}

func (p *fakeOverlayPage) Evaluate(expr string, args ...interface{}) (interface{}, error) {
	if p.evaluateError != nil {
		return nil, p.evaluateError
	}
	switch {
	case strings.Contains(expr, "for (const sel of selectors)"):
		return p.clickedKnown, nil
	case strings.Contains(expr, "zThreshold"):
		return p.containers, nil
	case strings.Contains(expr, "if (!el) return false;"):
		p.clickedPaths = append(p.clickedPaths, args[0].(string))
		return true, nil
	case strings.Contains(expr, "hidden++"):
		return p.hiddenCount, nil
	}
	return nil, errors.New("unexpected script")
}

func newTestDismisser(p Page) *Dismisser {
	d := NewDismisser(p, zerolog.Nop())
	d.settle = 0
	return d
}

func TestDismissKnownPattern(t *testing.T) {
	page := &fakeOverlayPage{clickedKnown: "#onetrust-accept-btn-handler", hiddenCount: 2}
	got := newTestDismisser(page).Dismiss()

	// one click plus two residuals hidden by the unconditional tier
	assert.Equal(t, 3, got)
	assert.Empty(t, page.clickedPaths, "tier 2 skipped after a tier 1 hit")
}

func TestDismissProminentButton(t *testing.T) {
	page := &fakeOverlayPage{
		containers: []interface{}{
			map[string]interface{}{
				"clickables": []interface{}{
					map[string]interface{}{
						"path": "div#cookie-banner > button:nth-of-type(1)",
						"text": "Accept all",
						"r":    30.0, "g": 120.0, "b": 230.0, "a": 1.0,
						"width": 140.0, "height": 40.0, "index": 0,
					},
					map[string]interface{}{
						"path": "div#cookie-banner > button:nth-of-type(2)",
						"text": "Reject",
						"r":    240.0, "g": 240.0, "b": 240.0, "a": 1.0,
						"width": 140.0, "height": 40.0, "index": 1,
					},
				},
			},
		},
	}
	got := newTestDismisser(page).Dismiss()

	assert.Equal(t, 1, got)
	require.Len(t, page.clickedPaths, 1)
	assert.Equal(t, "div#cookie-banner > button:nth-of-type(1)", page.clickedPaths[0])
}

func TestDismissNothingFound(t *testing.T) {
	got := newTestDismisser(&fakeOverlayPage{}).Dismiss()
	assert.Equal(t, 0, got)
}

func TestDismissNeverErrors(t *testing.T) {
	page := &fakeOverlayPage{evaluateError: errors.New("page crashed")}
	assert.NotPanics(t, func() {
		got := newTestDismisser(page).Dismiss()
		assert.Equal(t, 0, got)
	})
}

func TestScoreSaturatedFirstButtonWins(t *testing.T) {
	accept := candidate{Text: "Accept all", R: 30, G: 120, B: 230, A: 1, Width: 140, Height: 40, Index: 0}
	later := candidate{Text: "More info", R: 30, G: 120, B: 230, A: 1, Width: 140, Height: 40, Index: 3}
	gray := candidate{Text: "Maybe later", R: 240, G: 240, B: 240, A: 1, Width: 140, Height: 40, Index: 1}

	assert.Greater(t, scoreCandidate(accept), scoreCandidate(gray), "saturation outweighs")
	assert.Greater(t, scoreCandidate(accept), scoreCandidate(later), "earlier DOM order scores higher")
}

func TestScoreRejectWordsDisqualify(t *testing.T) {
	reject := candidate{Text: "Reject all", R: 30, G: 120, B: 230, A: 1, Width: 140, Height: 40}
	assert.Negative(t, scoreCandidate(reject))

	settings := candidate{Text: "Cookie Settings", R: 30, G: 120, B: 230, A: 1, Width: 200, Height: 40}
	assert.Negative(t, scoreCandidate(settings))
}

func TestBestCandidateRequiresPositiveScore(t *testing.T) {
	_, ok := bestCandidate(container{Clickables: []candidate{
		{Text: "Reject", R: 200, G: 0, B: 0, A: 1, Width: 100, Height: 40},
		{Path: "", Text: "Accept"},
	}})
	assert.False(t, ok)

	best, ok := bestCandidate(container{Clickables: []candidate{
		{Path: "button:nth-of-type(1)", Text: "OK", R: 10, G: 180, B: 60, A: 1, Width: 80, Height: 32, Index: 0},
	}})
	require.True(t, ok)
	assert.Equal(t, "button:nth-of-type(1)", best.Path)
}

func TestScoreAreaContributionCapped(t *testing.T) {
	small := candidate{Path: "a", R: 0, G: 0, B: 0, A: 0, Width: 200, Height: 150, Index: 5}
	huge := candidate{Path: "b", R: 0, G: 0, B: 0, A: 0, Width: 2000, Height: 1500, Index: 5}
	assert.Equal(t, scoreCandidate(small), scoreCandidate(huge), "area beyond the cap adds nothing")
}
