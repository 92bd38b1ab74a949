package citygrid

import (
	"go.uber.org/zap"
)

// Finalize works out connectivity, axis & intersection data for every tile.
// It throws away anything a previous Finalize worked out first, so it can
// be run again after more roads are added.
func (c *CityMap) Finalize() {
	intersections := 0
	roadTiles := 0

	for i := range c.tiles {
		t := &c.tiles[i]
		t.Axis = AxisNone
		t.Conn = 0
		t.Intersection = false
		t.PrimaryRoadID = -1
		t.RoadAngle = 0
	}

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			t := &c.tiles[x+y*c.width]
			switch t.roads.Len() {
			case 0:
				continue
			case 1:
				id := t.roads.at(0)
				t.PrimaryRoadID = id
				if r, ok := c.roadsByID[id]; ok {
					t.RoadAngle = r.Angle
				}
			default:
				t.Intersection = true
				intersections++
			}
			roadTiles++

			t.Conn = c.connectivity(x, y, t)
			t.Axis = classifyAxis(t.Conn, t.LanesEW(), t.LanesNS())
		}
	}

	c.finalized = true
	c.log.Debug("finalized map",
		zap.Int("road_tiles", roadTiles),
		zap.Int("intersections", intersections),
		zap.Int("roads", len(c.roads)),
	)
}

// connectivity returns the mask of neighbours that share a road with t.
// A neighbour that is a road tile but only carries other roads does not count.
func (c *CityMap) connectivity(x, y int, t *Tile) Conn {
	var conn Conn
	for _, d := range allDirections {
		off := d.Offset()
		i := c.Index(x+off.X, y+off.Y)
		if i < 0 {
			continue
		}
		n := &c.tiles[i]
		if n.roads.Len() == 0 {
			continue
		}

		small, big := &t.roads, &n.roads
		if big.Len() < small.Len() {
			small, big = big, small
		}
		if small.Shares(big) {
			conn |= 1 << d
		}
	}
	return conn
}

// classifyAxis labels a road tile from its connectivity and lane totals.
//   - exactly two orthogonal bits: corner
//   - bits on both axes otherwise: intersection
//   - bits on one axis: that axis
//   - no bits: whichever axis has more lanes, EW on a tie
func classifyAxis(conn Conn, lanesEW, lanesNS int) Axis {
	ns := conn&connNS != 0
	ew := conn&connEW != 0

	switch {
	case ns && ew && conn.Count() == 2:
		return AxisCorner
	case ns && ew:
		return AxisIntersection
	case ew:
		return AxisEW
	case ns:
		return AxisNS
	}

	if lanesNS > lanesEW {
		return AxisNS
	}
	return AxisEW
}
