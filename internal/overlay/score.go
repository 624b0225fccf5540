package overlay

import (
	"math"
	"strings"
)

// candidate is one clickable descendant of an overlay container, with the raw
// visual metrics harvested in page context.
type candidate struct {
	Path   string  `json:"path"`
	Text   string  `json:"text"`
	R      float64 `json:"r"`
	G      float64 `json:"g"`
	B      float64 `json:"b"`
	A      float64 `json:"a"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Index  int     `json:"index"` // DOM order within the container
}

type container struct {
	Clickables []candidate `json:"clickables"`
}

const (
	saturationWeight    = 120.0
	brightnessThreshold = 0.55
	brightnessBonus     = 15.0
	areaCap             = 30000.0
	areaWeight          = 1.0 / 1500.0
	orderBonus          = 20.0
	orderDecay          = 0.7
)

// scoreCandidate models "the accept button is the loud, early one": saturated
// background weighted heaviest, a bonus for bright fills, capped area, and a
// bonus decaying by DOM order. Reject-word candidates score below zero so
// they are never clicked.
func scoreCandidate(c candidate) float64 {
	text := strings.ToLower(c.Text)
	for _, word := range rejectWords {
		if strings.Contains(text, word) {
			return -1
		}
	}
	if c.Width <= 0 || c.Height <= 0 {
		return 0
	}

	var score float64
	if c.A > 0 {
		sat, val := saturationValue(c.R, c.G, c.B)
		score += sat * saturationWeight
		if val >= brightnessThreshold {
			score += brightnessBonus
		}
	}
	area := c.Width * c.Height
	if area > areaCap {
		area = areaCap
	}
	score += area * areaWeight
	score += orderBonus * math.Pow(orderDecay, float64(c.Index))
	return score
}

// bestCandidate returns the highest-scoring clickable with a strictly
// positive score, or false when the container offers none.
func bestCandidate(c container) (candidate, bool) {
	best := candidate{}
	bestScore := 0.0
	found := false
	for _, cand := range c.Clickables {
		if cand.Path == "" {
			continue
		}
		if score := scoreCandidate(cand); score > bestScore {
			best = cand
			bestScore = score
			found = true
		}
	}
	return best, found
}

// saturationValue computes HSV saturation and value from 0-255 channels.
func saturationValue(r, g, b float64) (float64, float64) {
	max := math.Max(r, math.Max(g, b)) / 255
	min := math.Min(r, math.Min(g, b)) / 255
	if max == 0 {
		return 0, 0
	}
	return (max - min) / max, max
}
