package citygrid

import (
	"image"

	"go.uber.org/zap"
)

// Building is a footprint of tiles. Beyond the footprint buildings are
// opaque here; Style & Height are carried through for whoever renders them.
type Building struct {
	ID     int
	Tiles  []image.Point
	Style  string
	Height float64
}

// AddBuilding adds a building over the given tiles.
//
// Tiles are accepted in order. A tile is rejected if it is off the map,
// a road, already part of a building, or not 4-way adjacent to a tile
// of this building accepted before it. The first rejected tile ends the
// footprint; the tiles after it are dropped too.
//
// Returns nil if not even the first tile could be accepted.
func (c *CityMap) AddBuilding(id int, tiles []image.Point, style string, height float64) *Building {
	accepted := []image.Point{}
	taken := map[image.Point]bool{}

	for _, p := range tiles {
		i := c.Index(p.X, p.Y)
		reason := ""
		switch {
		case i < 0:
			reason = "out of bounds"
		case c.roadMask.Get(i):
			reason = "road tile"
		case c.buildingMask.Get(i) || taken[p]:
			reason = "already built on"
		case len(accepted) > 0 && !adjacentToAny(p, taken):
			reason = "not adjacent"
		}
		if reason != "" {
			c.log.Debug("truncating building footprint",
				zap.Int("id", id),
				zap.String("reason", reason),
				zap.Int("accepted", len(accepted)),
				zap.Int("dropped", len(tiles)-len(accepted)),
			)
			break
		}

		accepted = append(accepted, p)
		taken[p] = true
	}

	if len(accepted) == 0 {
		return nil
	}

	for _, p := range accepted {
		c.buildingMask.Set(c.Index(p.X, p.Y), true)
	}

	if id <= 0 {
		c.lastBuildingID++
		id = c.lastBuildingID
	} else if id > c.lastBuildingID {
		c.lastBuildingID = id
	}

	b := &Building{ID: id, Tiles: accepted, Style: style, Height: height}
	c.buildings = append(c.buildings, b)
	return b
}

// Buildings returns all buildings in the order they were added
func (c *CityMap) Buildings() []*Building {
	return c.buildings
}

// clearBuilding cuts the footprint of the building over tile i off at i,
// just as AddBuilding would have had i been a road. A building left with no
// tiles is removed.
func (c *CityMap) clearBuilding(i int) {
	p := image.Pt(i%c.width, i/c.width)
	for bi, b := range c.buildings {
		for j, t := range b.Tiles {
			if t != p {
				continue
			}
			for _, d := range b.Tiles[j:] {
				c.buildingMask.Set(c.Index(d.X, d.Y), false)
			}
			c.log.Debug("truncating building footprint",
				zap.Int("id", b.ID),
				zap.String("reason", "road tile"),
				zap.Int("accepted", j),
				zap.Int("dropped", len(b.Tiles)-j),
			)
			b.Tiles = b.Tiles[:j]
			if j == 0 {
				c.buildings = append(c.buildings[:bi], c.buildings[bi+1:]...)
			}
			return
		}
	}
}

// adjacentToAny returns if p is a 4-way neighbour of any tile in set
func adjacentToAny(p image.Point, set map[image.Point]bool) bool {
	for _, d := range allDirections {
		if set[p.Add(d.Offset())] {
			return true
		}
	}
	return false
}
