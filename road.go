package citygrid

import (
	"image"
	"math"

	"github.com/golang/geo/s1"
	"github.com/unixpickle/model3d/model2d"
)

const (
	// road angles are snapped to multiples of this
	angleSnap = 15 * s1.Degree

	// within this of a half turn we wrap back to 0
	angleEpsilon = 1e-6
)

// RoadShape is either a Segment or a Polyline.
type RoadShape interface {
	isRoadShape()
}

// Segment is a straight road between two tile-space endpoints.
type Segment struct {
	A image.Point
	B image.Point
}

// PolylinePoint is a world-space point on a Polyline.
// Radius is only meaningful if HasRadius is set.
type PolylinePoint struct {
	Pos       model2d.Coord
	Radius    float64
	HasRadius bool
}

// Polyline is a road through a series of world-space points.
// Consecutive points that land on the same tile have already been merged.
type Polyline struct {
	Points        []PolylinePoint
	DefaultRadius float64
}

func (Segment) isRoadShape()  {}
func (Polyline) isRoadShape() {}

// Road is a single registered road.
type Road struct {
	ID       int
	Shape    RoadShape
	LanesF   int
	LanesB   int
	Tag      string
	Rendered bool

	// direction snapped to 15 degrees, always in [0, 180)
	Angle s1.Angle

	// tiles this road covers, in order, each tile once
	Tiles []image.Point
}

// Lanes returns the total lane count (both directions)
func (r *Road) Lanes() int {
	return r.LanesF + r.LanesB
}

// RoadOptions are the optional parts of adding a road.
type RoadOptions struct {
	// ID to use, 0 picks the next free id
	ID int

	Tag string

	// Rendered defaults to true if nil
	Rendered *bool

	// radius for polyline points that do not give one
	DefaultRadius float64
}

// rendered returns the Rendered setting with its default applied
func (o *RoadOptions) rendered() bool {
	if o == nil || o.Rendered == nil {
		return true
	}
	return *o.Rendered
}

// snapAngle returns the direction of (dx, dy) snapped to the nearest 15 degrees
// and folded into [0, 180) so opposite directions are equal.
// A zero vector has angle 0.
func snapAngle(dx, dy float64) s1.Angle {
	if dx == 0 && dy == 0 {
		return 0
	}

	raw := s1.Angle(math.Atan2(dy, dx))
	snapped := math.Round(float64(raw/angleSnap)) * angleSnap.Degrees()

	deg := math.Mod(snapped, 180)
	if deg < 0 {
		deg += 180
	}
	if math.Abs(deg-180) <= angleEpsilon || math.Abs(deg) <= angleEpsilon {
		deg = 0
	}
	return s1.Angle(deg) * s1.Degree
}
