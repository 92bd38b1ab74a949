package line

import (
	"image"
)

// listPlot meets the Plotter interface,
// In our case we just append the x,y to a list,
type listPlot struct {
	pts []image.Point
}

// Set records a new point on the line
func (l *listPlot) Set(x, y int) bool {
	l.pts = append(l.pts, image.Pt(x, y))
	return true
}

// clipPlot records only the points inside bounds.
// x & y only ever step one way along a line, so once it has been inside
// bounds & left again it never comes back; the walk ends there.
type clipPlot struct {
	bounds image.Rectangle
	pts    []image.Point
}

// Set records the point if it is inside bounds
func (l *clipPlot) Set(x, y int) bool {
	p := image.Pt(x, y)
	if p.In(l.bounds) {
		l.pts = append(l.pts, p)
		return true
	}
	return len(l.pts) == 0
}

// PointsBetween returns all points on a line from a to b (inclusive),
// ordered starting at a.
func PointsBetween(a, b image.Point) []image.Point {
	lp := &listPlot{pts: []image.Point{}}
	bresenham(lp, a.X, a.Y, b.X, b.Y)
	return lp.pts
}

// PointsWithin returns the points on a line from a to b that fall inside
// bounds, ordered starting at a. They are exactly the in-bounds points of
// PointsBetween, but the walk stops as soon as the line leaves bounds.
func PointsWithin(a, b image.Point, bounds image.Rectangle) []image.Point {
	cp := &clipPlot{bounds: bounds, pts: []image.Point{}}
	bresenham(cp, a.X, a.Y, b.X, b.Y)
	return cp.pts
}
