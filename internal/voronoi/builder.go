package voronoi

import (
	"image"
	"math"
	"math/rand"
)

// Builder lays out voronoi sites within some bounds, subject to filters.
type Builder struct {
	bounds image.Rectangle
	sites  []image.Point
	rng    *rand.Rand
	sfilt  []SiteFilter
	cfilt  []CandidateFilter
}

// NewBuilder returns a builder whose random sites are drawn from rng
func NewBuilder(bounds image.Rectangle, rng *rand.Rand) *Builder {
	return &Builder{
		bounds: bounds,
		sites:  []image.Point{},
		rng:    rng,
	}
}

// SiteCount returns how many sites we've currently got configured
func (b *Builder) SiteCount() int {
	return len(b.sites)
}

// Voronoi returns the diagram for the current sites, or nil if there are none
func (b *Builder) Voronoi() *Voronoi {
	if len(b.sites) == 0 {
		return nil
	}
	return newVoronoi(b)
}

// SetCandidateFilters sets filters that accept / reject a proposed site without
// reference to other site(s).
func (b *Builder) SetCandidateFilters(f ...CandidateFilter) {
	b.cfilt = f
}

// SetSiteFilters sets filters that compare proposed sites to all current sites.
func (b *Builder) SetSiteFilters(f ...SiteFilter) {
	b.sfilt = f
}

// AddRandomSites tries up to attempts random sites, stopping once n are placed.
// Returns how many were added.
func (b *Builder) AddRandomSites(n, attempts int) int {
	added := 0
	for i := 0; i < attempts && added < n; i++ {
		if _, ok := b.AddRandomSite(); ok {
			added++
		}
	}
	return added
}

// AddRandomSite places a site at random, if it passes all filters
func (b *Builder) AddRandomSite() (image.Point, bool) {
	if b.bounds.Empty() {
		return image.Point{}, false
	}
	p := image.Pt(
		b.rng.Intn(b.bounds.Dx())+b.bounds.Min.X,
		b.rng.Intn(b.bounds.Dy())+b.bounds.Min.Y,
	)
	if !b.accepted(p) {
		return p, false
	}
	b.sites = append(b.sites, p)
	return p, true
}

// AddSite places a site at p, if it passes all filters
func (b *Builder) AddSite(p image.Point) bool {
	if !b.accepted(p) {
		return false
	}
	b.sites = append(b.sites, p)
	return true
}

// accepted runs CandidateFilter(s) first so we can reject early
func (b *Builder) accepted(p image.Point) bool {
	for _, fn := range b.cfilt {
		if !fn(p.X, p.Y) {
			return false
		}
	}
	for _, s := range b.sites {
		for _, fn := range b.sfilt {
			if !fn(p.X, p.Y, s.X, s.Y) {
				return false
			}
		}
	}
	return true
}

// calculateDist standard pythag.
func calculateDist(ax, ay, bx, by int) float64 {
	return math.Hypot(float64(ax-bx), float64(ay-by))
}
