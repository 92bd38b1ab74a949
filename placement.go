package citygrid

import (
	"image"
	"math"
	"sort"

	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"
)

// ControlKind is the type of traffic control prop
type ControlKind uint8

const (
	TrafficLight ControlKind = iota
	StopSign
)

// String returns TRAFFIC_LIGHT or STOP_SIGN
func (k ControlKind) String() string {
	if k == TrafficLight {
		return "TRAFFIC_LIGHT"
	}
	return "STOP_SIGN"
}

// MarshalText writes the kind by name
func (k ControlKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	// light pole scale is clamped to this range
	minLightScale = 2.4
	maxLightScale = 3.2

	stopSignScale = 1.1

	// a one way road is laid out at least this wide
	oneWayMinLanes = 2
)

// Placement is a single stop sign or traffic light.
//
// With a RoadNetwork, Node & Edge are the graph node and approach edge ids.
// Without one, Node is the tile index and Edge the Direction of the approach.
type Placement struct {
	Kind      ControlKind     `json:"kind"`
	Node      int             `json:"node"`
	Edge      int             `json:"edge"`
	Position  model3d.Coord3D `json:"position"`
	RotationY float64         `json:"rotationY"`
	Scale     float64         `json:"scale"`

	// lights only
	ArmLength float64 `json:"armLength,omitempty"`
}

// placementKey stops a junction getting the same prop twice
type placementKey struct {
	node int
	kind ControlKind
	edge int
}

// approach is one road leaving a junction
type approach struct {
	edge      int
	dir       model2d.Coord // unit (x, z)
	outgoing  int
	halfWidth float64
	angle     float64
}

// placer collects placements for one run
type placer struct {
	style  *StyleConfig
	bounds *model2d.Rect
	seen   map[placementKey]bool
	out    []*Placement
	log    *zap.Logger
}

// PlaceTrafficControls works out where stop signs & traffic lights go.
//
// If network is given its nodes & edges decide the junctions, otherwise the
// map's finalized tile data is used. A nil map or an empty network gives no
// placements. Placements that would fall outside the map are dropped.
// Nothing is modified, so this can be called as often as needed.
func PlaceTrafficControls(c *CityMap, network RoadNetwork, style *StyleConfig) []*Placement {
	if c == nil {
		return []*Placement{}
	}
	if style == nil {
		style = DefaultStyle()
	}
	if g, ok := network.(*Graph); ok && g == nil {
		network = nil
	}

	p := &placer{
		style:  style,
		bounds: c.WorldBounds(),
		seen:   map[placementKey]bool{},
		out:    []*Placement{},
		log:    c.log,
	}

	if network != nil {
		p.fromNetwork(network)
		p.log.Debug("placed traffic controls", zap.String("mode", "graph"), zap.Int("count", len(p.out)))
	} else {
		if !c.Finalized() {
			p.log.Warn("placing traffic controls on a map that is not finalized")
		}
		p.fromTiles(c)
		p.log.Debug("placed traffic controls", zap.String("mode", "grid"), zap.Int("count", len(p.out)))
	}

	return p.out
}

// add records pl unless it is off the map or a duplicate
func (p *placer) add(pl *Placement) {
	if !p.bounds.Contains(model2d.Coord{X: pl.Position.X, Y: pl.Position.Z}) {
		return
	}
	key := placementKey{node: pl.Node, kind: pl.Kind, edge: pl.Edge}
	if p.seen[key] {
		return
	}
	p.seen[key] = true
	p.out = append(p.out, pl)
}

// roadWidth is the width laid out for a road of the given lanes, never
// narrower than one lane
func (p *placer) roadWidth(lanes int) float64 {
	return math.Max(float64(lanes)*p.style.LaneWidth+2*p.style.Shoulder, p.style.LaneWidth)
}

// clearance is the distance from a road's edge to where poles stand
func (p *placer) clearance() float64 {
	return p.style.Curb.Thickness + p.style.stopInset()
}

// lightScale picks a pole scale so the arm reaches across lateral
func (p *placer) lightScale(lateral float64) (float64, float64) {
	scale := minLightScale
	if p.style.TrafficControl.TargetArmLength > 0 {
		scale = clamp(lateral/p.style.TrafficControl.TargetArmLength, minLightScale, maxLightScale)
	}
	return scale, p.style.LaneWidth / scale
}

// fromNetwork places props at every graph node with 3+ usable approaches
func (p *placer) fromNetwork(network RoadNetwork) {
	edges := map[int]*Edge{}
	for _, e := range network.Edges() {
		if e != nil {
			edges[e.ID] = e
		}
	}

	for _, n := range network.Nodes() {
		if n == nil {
			continue
		}

		apps := p.approaches(network, edges, n)
		if len(apps) < 3 {
			continue
		}

		maxHalf := 0.0
		allWide := true
		for _, a := range apps {
			maxHalf = math.Max(maxHalf, a.halfWidth)
			if a.outgoing < p.style.TrafficControl.LightLaneThreshold {
				allWide = false
			}
		}

		if len(apps) == 4 && allWide {
			sort.SliceStable(apps, func(i, j int) bool { return apps[i].angle < apps[j].angle })
			for _, a := range lightPair(apps) {
				p.placeAtNode(TrafficLight, n, a, maxHalf)
			}
			continue
		}

		for _, a := range apps {
			p.placeAtNode(StopSign, n, a, maxHalf)
		}
	}
}

// approaches returns the visible edges at n that have lanes & a direction
func (p *placer) approaches(network RoadNetwork, edges map[int]*Edge, n *Node) []approach {
	apps := []approach{}
	seen := map[int]bool{}
	for _, id := range n.EdgeIDs {
		e, ok := edges[id]
		if !ok || !e.Rendered || seen[id] {
			continue
		}
		seen[id] = true
		total := e.LanesF + e.LanesB
		if total < 1 {
			continue
		}
		other := network.Node(e.Other(n.ID))
		if other == nil {
			continue
		}

		dir := model2d.Coord{X: other.Position.X - n.Position.X, Y: other.Position.Z - n.Position.Z}
		if dir.Norm() == 0 {
			continue
		}
		dir = dir.Normalize()

		width := total
		if (e.LanesF == 0 || e.LanesB == 0) && width < oneWayMinLanes {
			width = oneWayMinLanes
		}

		apps = append(apps, approach{
			edge:      e.ID,
			dir:       dir,
			outgoing:  e.Outgoing(n.ID),
			halfWidth: p.roadWidth(width),
			angle:     math.Atan2(dir.Y, dir.X),
		})
	}
	return apps
}

// lightPair picks which two opposite approaches of an angle sorted 4-way
// junction get lights: the pair with more outgoing lanes, then the pair
// running closer to the x axis. Rotating a junction can flip the choice.
func lightPair(apps []approach) []approach {
	a := []approach{apps[0], apps[2]}
	b := []approach{apps[1], apps[3]}

	lanesA := a[0].outgoing + a[1].outgoing
	lanesB := b[0].outgoing + b[1].outgoing
	if lanesB > lanesA {
		return b
	}
	if lanesB == lanesA {
		xA := math.Abs(a[0].dir.X) + math.Abs(a[1].dir.X)
		xB := math.Abs(b[0].dir.X) + math.Abs(b[1].dir.X)
		if xB > xA {
			return b
		}
	}
	return a
}

// placeAtNode stands a prop on the right hand corner of approach a.
// It is pushed back along a past the widest road at the node & out to
// the side past a's own edge.
func (p *placer) placeAtNode(kind ControlKind, n *Node, a approach, maxHalf float64) {
	along := maxHalf + p.clearance()
	lateral := a.halfWidth + p.clearance()

	right := model2d.Coord{X: -a.dir.Y, Y: a.dir.X}
	at := model2d.Coord{X: n.Position.X, Y: n.Position.Z}.
		Add(a.dir.Scale(along)).
		Add(right.Scale(lateral))

	pl := &Placement{
		Kind:      kind,
		Node:      n.ID,
		Edge:      a.edge,
		Position:  model3d.Coord3D{X: at.X, Y: n.Position.Y + p.style.curbHeight(), Z: at.Y},
		RotationY: math.Atan2(a.dir.X, a.dir.Y),
		Scale:     stopSignScale,
	}
	if kind == TrafficLight {
		pl.Scale, pl.ArmLength = p.lightScale(lateral)
	}
	p.add(pl)
}

// gridCorner is where the prop for an approach goes on an intersection tile.
// sx, sz are the signs of the x & z offsets from the tile centre.
type gridCorner struct {
	sx, sz float64
	yaw    float64
}

// N -> NW, E -> NE, S -> SE, W -> SW
var gridCorners = [4]gridCorner{
	North: {sx: -1, sz: -1, yaw: math.Pi},
	East:  {sx: 1, sz: -1, yaw: math.Pi / 2},
	South: {sx: 1, sz: 1, yaw: 0},
	West:  {sx: -1, sz: 1, yaw: -math.Pi / 2},
}

// fromTiles places props on intersection tiles using tile lanes alone
func (p *placer) fromTiles(c *CityMap) {
	thr := p.style.TrafficControl.LightLaneThreshold

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			idx := x + y*c.width
			t := &c.tiles[idx]
			if t.Axis != AxisIntersection {
				continue
			}
			ew, ns := t.LanesEW(), t.LanesNS()
			if ew == 0 || ns == 0 {
				continue
			}

			ewWidth := clamp(float64(ew)*p.style.LaneWidth+2*p.style.Shoulder, p.style.LaneWidth, c.tileSize)
			nsWidth := clamp(float64(ns)*p.style.LaneWidth+2*p.style.Shoulder, p.style.LaneWidth, c.tileSize)

			// the NS road spans x, the EW road spans z
			ox := nsWidth/2 + p.clearance()
			oz := ewWidth/2 + p.clearance()

			light := t.Conn.Count() == 4
			for _, d := range allDirections {
				if int(t.Lanes[d]) < thr {
					light = false
				}
			}

			centre := c.TileToWorld(image.Pt(x, y))
			place := func(kind ControlKind, d Direction) {
				corner := gridCorners[d]
				pl := &Placement{
					Kind:      kind,
					Node:      idx,
					Edge:      int(d),
					Position:  model3d.Coord3D{X: centre.X + corner.sx*ox, Y: p.style.curbHeight(), Z: centre.Y + corner.sz*oz},
					RotationY: corner.yaw,
					Scale:     stopSignScale,
				}
				if kind == TrafficLight {
					lateral := oz
					if d == North || d == South {
						lateral = ox
					}
					pl.Scale, pl.ArmLength = p.lightScale(lateral)
				}
				p.add(pl)
			}

			if light {
				// same rule as lightPair: more lanes, then the x axis pair
				pair := [2]Direction{East, West}
				if ns > ew {
					pair = [2]Direction{North, South}
				}
				for _, d := range pair {
					place(TrafficLight, d)
				}
				continue
			}

			for _, d := range allDirections {
				if !t.Conn.Has(d) || int(t.Lanes[d])+int(t.Lanes[d.Opposite()]) == 0 {
					continue
				}
				place(StopSign, d)
			}
		}
	}
}

// clamp v into [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
