package citygrid

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
)

// ColourScheme defines how tiles & props should be coloured.
type ColourScheme struct {
	Background   color.Color
	EW           color.Color
	NS           color.Color
	Intersection color.Color
	Corner       color.Color
	Buildings    color.Color
	Lights       color.Color
	Stops        color.Color

	// pixels per tile edge
	TileSize int
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Background:   colornames.White,
		EW:           colornames.Dimgray,
		NS:           colornames.Slategray,
		Intersection: colornames.Black,
		Corner:       colornames.Darkgray,
		Buildings:    colornames.Burlywood,
		Lights:       colornames.Limegreen,
		Stops:        colornames.Crimson,
		TileSize:     8,
	}
}

// axisColour returns the colour for a road tile of axis a
func (s *ColourScheme) axisColour(a Axis) color.Color {
	switch a {
	case AxisNS:
		return s.NS
	case AxisIntersection:
		return s.Intersection
	case AxisCorner:
		return s.Corner
	default:
		return s.EW
	}
}

// CustomImage returns the map coloured with the given scheme, with any
// placements drawn on top.
func (c *CityMap) CustomImage(scheme *ColourScheme, placements []*Placement) image.Image {
	if scheme == nil {
		scheme = DefaultScheme()
	}
	px := scheme.TileSize
	if px <= 0 {
		px = 1
	}

	ctx := gg.NewContext(c.width*px, c.height*px)
	ctx.SetColor(scheme.Background)
	ctx.Clear()

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			i := x + y*c.width
			switch {
			case c.roadMask.Get(i):
				ctx.SetColor(scheme.axisColour(c.tiles[i].Axis))
			case c.buildingMask.Get(i):
				ctx.SetColor(scheme.Buildings)
			default:
				continue
			}
			ctx.DrawRectangle(float64(x*px), float64(y*px), float64(px), float64(px))
			ctx.Fill()
		}
	}

	// world -> pixel
	scale := float64(px) / c.tileSize
	radius := float64(px) / 4
	if radius < 1 {
		radius = 1
	}
	for _, pl := range placements {
		if pl == nil {
			continue
		}
		if pl.Kind == TrafficLight {
			ctx.SetColor(scheme.Lights)
		} else {
			ctx.SetColor(scheme.Stops)
		}
		ctx.DrawCircle((pl.Position.X-c.origin.X)*scale, (pl.Position.Z-c.origin.Y)*scale, radius)
		ctx.Fill()
	}

	return ctx.Image()
}

// SavePNG writes the coloured map to fpath
func (c *CityMap) SavePNG(fpath string, scheme *ColourScheme, placements []*Placement) error {
	im := c.CustomImage(scheme, placements)
	return gg.SavePNG(fpath, im)
}
