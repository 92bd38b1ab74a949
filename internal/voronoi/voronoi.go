package voronoi

import (
	"image"

	"github.com/unixpickle/model3d/model2d"
)

// Voronoi answers which site's cell a point falls in.
type Voronoi struct {
	sites  []image.Point
	byPos  map[model2d.Coord]int
	tree   *model2d.CoordTree
	bounds image.Rectangle
}

// newVoronoi indexes the builder's sites
func newVoronoi(b *Builder) *Voronoi {
	me := &Voronoi{
		sites:  append([]image.Point{}, b.sites...),
		byPos:  map[model2d.Coord]int{},
		bounds: b.bounds,
	}

	coords := make([]model2d.Coord, 0, len(me.sites))
	for i, s := range me.sites {
		c := model2d.Coord{X: float64(s.X), Y: float64(s.Y)}
		if _, ok := me.byPos[c]; ok {
			continue
		}
		me.byPos[c] = i
		coords = append(coords, c)
	}
	me.tree = model2d.NewCoordTree(coords)

	return me
}

// Bounds returns the bounding rect for this diagram
func (v *Voronoi) Bounds() image.Rectangle {
	return v.bounds
}

// Sites returns all site centres, in the order they were added
func (v *Voronoi) Sites() []image.Point {
	return v.sites
}

// SiteFor returns the id of the site whose cell holds (x, y)
func (v *Voronoi) SiteFor(x, y int) int {
	nearest := v.tree.KNN(1, model2d.Coord{X: float64(x), Y: float64(y)})
	if len(nearest) == 0 {
		return -1
	}
	return v.byPos[nearest[0]]
}
