package voronoi

import (
	"image"
)

// CandidateFilter accepts or rejects a candidate point (x, y) on its own.
// These run before any SiteFilter.
type CandidateFilter func(x, y int) bool

// SiteFilter accepts or rejects a candidate point (ax, ay) against one
// existing site (sx, sy). A candidate must pass against every site.
type SiteFilter func(ax, ay, sx, sy int) bool

// MinDistance keeps sites at least dist apart
func MinDistance(dist float64) SiteFilter {
	return func(ax, ay, sx, sy int) bool {
		return calculateDist(sx, sy, ax, ay) >= dist
	}
}

// Inset keeps sites at least margin away from the edge of bounds
func Inset(bounds image.Rectangle, margin int) CandidateFilter {
	inner := bounds.Inset(margin)
	return func(x, y int) bool {
		return image.Pt(x, y).In(inner)
	}
}
