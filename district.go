package citygrid

import (
	"image"
	"math"
	"math/rand"
	"sort"

	"github.com/voidshard/citygrid/internal/voronoi"
)

// DistrictType indicates roughly what one might find in part of a
// generated town. Buildings there take it as their Style.
type DistrictType string

const (
	Civic             DistrictType = "civic"                   // city hall(s), courts
	Commercial        DistrictType = "commercial"              // shops of all sorts
	ResidentialUpper  DistrictType = "residential-upperclass"  // large homes, fancy shops
	Park              DistrictType = "park"                    // greenery, trees, grass
	Market            DistrictType = "market"                  // stalls, produce sales
	ResidentialMiddle DistrictType = "residential-middleclass" // nice homes, taverns, shops
	ResidentialLower  DistrictType = "residential-lowerclass"  // smaller homes, inns
	Industrial        DistrictType = "industrial"              // workshops, yards
	Warehouse         DistrictType = "warehouse"               // large sheds, possibly behind fences
	Fields            DistrictType = "fields"                  // farmland, open space
)

// ordered by their relative closeness to the centre
var allDistricts = []DistrictType{
	Civic, Commercial, ResidentialUpper, Park, Market,
	ResidentialMiddle, ResidentialLower, Industrial, Warehouse, Fields,
}

// AllDistrictTypes returns all known DistrictType values, most central first
func AllDistrictTypes() []DistrictType {
	return allDistricts
}

// buildable returns if buildings should be placed in this district
func (d DistrictType) buildable() bool {
	return d != Park && d != Fields
}

// storeys returns the lowest & highest building in this district, in floors
func (d DistrictType) storeys() (int, int) {
	switch d {
	case Civic, Commercial:
		return 3, 6
	case Industrial, Warehouse:
		return 1, 2
	case ResidentialLower, Market:
		return 1, 3
	default:
		return 2, 4
	}
}

// zoning is the district layout of a generated map
type zoning struct {
	diagram *voronoi.Voronoi
	types   []DistrictType
}

// newZoning splits a w x h map into (up to) n districts.
// Sites nearer the centre of the map get the more central district types.
func newZoning(w, h, n int, rng *rand.Rand) *zoning {
	if n <= 0 {
		return nil
	}

	bounds := image.Rect(0, 0, w, h)
	b := voronoi.NewBuilder(bounds, rng)
	spacing := math.Min(float64(w), float64(h)) / (2 * math.Sqrt(float64(n)))
	b.SetSiteFilters(voronoi.MinDistance(spacing))
	b.AddRandomSites(n, n*20)

	diagram := b.Voronoi()
	if diagram == nil {
		return nil
	}
	sites := diagram.Sites()

	centre := image.Pt(w/2, h/2)
	order := make([]int, len(sites))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distSq(sites[order[a]], centre) < distSq(sites[order[b]], centre)
	})

	types := make([]DistrictType, len(sites))
	for rank, i := range order {
		types[i] = allDistricts[rank*len(allDistricts)/len(sites)]
	}

	return &zoning{diagram: diagram, types: types}
}

// at returns the district type of tile p
func (z *zoning) at(p image.Point) DistrictType {
	i := z.diagram.SiteFor(p.X, p.Y)
	if i < 0 || i >= len(z.types) {
		return ResidentialMiddle
	}
	return z.types[i]
}

// distSq is the squared distance between two tiles
func distSq(a, b image.Point) int {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}
