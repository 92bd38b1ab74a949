package citygrid

import (
	"image"
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

const epsilon = 1e-9

// arm is one road leaving a test junction
type arm struct {
	dx, dz         float64
	lanesF, lanesB int
	hidden         bool
}

// junction returns a graph with a centre node at (x, z) joined to a leaf
// node for each arm. Edges run from the centre outwards.
func junction(x, z float64, arms ...arm) (*Graph, *Node) {
	g := NewGraph()
	centre := g.AddNode(model3d.Coord3D{X: x, Z: z}, image.Point{})
	for _, a := range arms {
		leaf := g.AddNode(model3d.Coord3D{X: x + a.dx, Z: z + a.dz}, image.Point{})
		g.AddEdge(centre.ID, leaf.ID, a.lanesF, a.lanesB, !a.hidden)
	}
	return g, centre
}

// bigMap is 40x40 tiles of 24, so 960 world units a side
func bigMap(t *testing.T) *CityMap {
	t.Helper()
	return mustMap(t, 40, 40)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func countKind(ps []*Placement, kind ControlKind) int {
	n := 0
	for _, p := range ps {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func TestPlaceFourWayLights(t *testing.T) {
	c := bigMap(t)
	g, centre := junction(480, 480,
		arm{dx: 100, lanesF: 3, lanesB: 3},
		arm{dz: 100, lanesF: 3, lanesB: 3},
		arm{dx: -100, lanesF: 3, lanesB: 3},
		arm{dz: -100, lanesF: 3, lanesB: 3},
	)
	style := DefaultStyle()

	ps := PlaceTrafficControls(c, g, style)
	if len(ps) != 2 || countKind(ps, TrafficLight) != 2 {
		t.Fatalf("placements = %d (%d lights), want 2 lights", len(ps), countKind(ps, TrafficLight))
	}

	// equal lanes: the pair nearer the x axis (east & west, edges 1 & 3)
	edges := map[int]bool{}
	for _, p := range ps {
		edges[p.Edge] = true
		if p.Node != centre.ID {
			t.Errorf("placement on node %d, want %d", p.Node, centre.ID)
		}
		if p.Scale < minLightScale || p.Scale > maxLightScale {
			t.Errorf("light scale = %v, outside [%v, %v]", p.Scale, minLightScale, maxLightScale)
		}
		if !near(p.ArmLength, style.LaneWidth/p.Scale) {
			t.Errorf("arm length = %v, want %v", p.ArmLength, style.LaneWidth/p.Scale)
		}
	}
	if !edges[1] || !edges[3] {
		t.Errorf("lit edges = %v, want 1 & 3", edges)
	}

	// east approach: back past the widest road & out to its right hand side
	half := 6*style.LaneWidth + 2*style.Shoulder
	off := half + style.Curb.Thickness + style.Sidewalk.ExtraWidth/2
	for _, p := range ps {
		if p.Edge != 1 {
			continue
		}
		if !near(p.Position.X, 480+off) || !near(p.Position.Z, 480+off) {
			t.Errorf("east light at (%v, %v), want (%v, %v)", p.Position.X, p.Position.Z, 480+off, 480+off)
		}
		if !near(p.Position.Y, style.curbHeight()) {
			t.Errorf("light y = %v, want curb height %v", p.Position.Y, style.curbHeight())
		}
		if !near(p.RotationY, math.Pi/2) {
			t.Errorf("east light rotation = %v, want pi/2", p.RotationY)
		}
	}
}

func TestPlaceLightsOnBusierPair(t *testing.T) {
	c := bigMap(t)
	g, _ := junction(480, 480,
		arm{dx: 100, lanesF: 2, lanesB: 2},
		arm{dz: 100, lanesF: 4, lanesB: 4},
		arm{dx: -100, lanesF: 2, lanesB: 2},
		arm{dz: -100, lanesF: 4, lanesB: 4},
	)

	ps := PlaceTrafficControls(c, g, nil)
	if len(ps) != 2 {
		t.Fatalf("placements = %d, want 2", len(ps))
	}
	for _, p := range ps {
		if p.Edge != 2 && p.Edge != 4 {
			t.Errorf("light on edge %d, want the north / south edges 2 & 4", p.Edge)
		}
	}
}

func TestPlaceStopSigns(t *testing.T) {
	c := bigMap(t)

	cases := []struct {
		name string
		arms []arm
		want int
	}{
		{"three way", []arm{
			{dx: 100, lanesF: 2, lanesB: 2},
			{dz: 100, lanesF: 2, lanesB: 2},
			{dx: -100, lanesF: 2, lanesB: 2},
		}, 3},
		{"four way with a narrow exit", []arm{
			{dx: 100, lanesF: 3, lanesB: 3},
			{dz: 100, lanesF: 1, lanesB: 3},
			{dx: -100, lanesF: 3, lanesB: 3},
			{dz: -100, lanesF: 3, lanesB: 3},
		}, 4},
		{"hidden arm", []arm{
			{dx: 100, lanesF: 3, lanesB: 3},
			{dz: 100, lanesF: 3, lanesB: 3},
			{dx: -100, lanesF: 3, lanesB: 3},
			{dz: -100, lanesF: 3, lanesB: 3, hidden: true},
		}, 3},
		{"laneless arm", []arm{
			{dx: 100, lanesF: 2, lanesB: 2},
			{dz: 100, lanesF: 2, lanesB: 2},
			{dx: -100},
		}, 0},
	}
	for _, tt := range cases {
		g, _ := junction(480, 480, tt.arms...)
		ps := PlaceTrafficControls(c, g, nil)
		if len(ps) != tt.want || countKind(ps, StopSign) != tt.want {
			t.Errorf("%s: placements = %d (%d stops), want %d stops", tt.name, len(ps), countKind(ps, StopSign), tt.want)
		}
		for _, p := range ps {
			if p.Scale != stopSignScale || p.ArmLength != 0 {
				t.Errorf("%s: stop scale = %v arm = %v", tt.name, p.Scale, p.ArmLength)
			}
		}
	}
}

func TestPlaceThresholdFromStyle(t *testing.T) {
	c := bigMap(t)
	g, _ := junction(480, 480,
		arm{dx: 100, lanesF: 3, lanesB: 3},
		arm{dz: 100, lanesF: 3, lanesB: 3},
		arm{dx: -100, lanesF: 3, lanesB: 3},
		arm{dz: -100, lanesF: 3, lanesB: 3},
	)
	style := DefaultStyle()
	style.TrafficControl.LightLaneThreshold = 4

	ps := PlaceTrafficControls(c, g, style)
	if countKind(ps, StopSign) != 4 {
		t.Errorf("stops = %d, want 4 with a threshold above every road", countKind(ps, StopSign))
	}
}

func TestPlaceDuplicateEdgeIDs(t *testing.T) {
	c := bigMap(t)
	g, centre := junction(480, 480,
		arm{dx: 100, lanesF: 2, lanesB: 2},
		arm{dz: 100, lanesF: 2, lanesB: 2},
		arm{dx: -100, lanesF: 2, lanesB: 2},
	)
	centre.EdgeIDs = append(centre.EdgeIDs, centre.EdgeIDs[0])

	ps := PlaceTrafficControls(c, g, nil)
	if len(ps) != 3 {
		t.Errorf("placements = %d, want 3", len(ps))
	}
}

func TestPlaceDropsOffMap(t *testing.T) {
	c := bigMap(t)
	g, _ := junction(10, 480,
		arm{dx: 100, lanesF: 1, lanesB: 1},
		arm{dz: 100, lanesF: 1, lanesB: 1},
		arm{dz: -100, lanesF: 1, lanesB: 1},
	)

	ps := PlaceTrafficControls(c, g, nil)
	if len(ps) != 2 {
		t.Fatalf("placements = %d, want 2", len(ps))
	}
	b := c.WorldBounds()
	for _, p := range ps {
		if p.Position.X < b.MinVal.X || p.Position.Z < b.MinVal.Y {
			t.Errorf("placement at %v is off the map", p.Position)
		}
		if p.Edge == 2 {
			t.Error("the southern approach should have been dropped")
		}
	}
}

func TestPlaceEmptyInputs(t *testing.T) {
	if ps := PlaceTrafficControls(nil, nil, nil); ps == nil || len(ps) != 0 {
		t.Errorf("nil map = %v, want empty", ps)
	}
	c := crossMap(t, 3, 3)
	if ps := PlaceTrafficControls(c, NewGraph(), nil); len(ps) != 0 {
		t.Errorf("empty network gave %d placements, want 0", len(ps))
	}

	// a typed nil graph means "no network"
	var g *Graph
	if ps := PlaceTrafficControls(c, g, nil); len(ps) != 2 {
		t.Errorf("nil *Graph gave %d placements, want 2 from the grid", len(ps))
	}
}

func TestPlaceGridLights(t *testing.T) {
	c := crossMap(t, 3, 3)
	style := DefaultStyle()

	ps := PlaceTrafficControls(c, nil, style)
	if len(ps) != 2 || countKind(ps, TrafficLight) != 2 {
		t.Fatalf("placements = %d (%d lights), want 2 lights", len(ps), countKind(ps, TrafficLight))
	}

	centre := c.TileToWorld(image.Pt(5, 5))
	off := c.TileSize()/2 + style.Curb.Thickness + style.Sidewalk.ExtraWidth/2
	for _, p := range ps {
		if p.Node != c.Index(5, 5) {
			t.Errorf("node = %d, want tile index %d", p.Node, c.Index(5, 5))
		}
		switch Direction(p.Edge) {
		case East:
			if !near(p.Position.X, centre.X+off) || !near(p.Position.Z, centre.Y-off) || !near(p.RotationY, math.Pi/2) {
				t.Errorf("east light = %+v", p)
			}
		case West:
			if !near(p.Position.X, centre.X-off) || !near(p.Position.Z, centre.Y+off) || !near(p.RotationY, -math.Pi/2) {
				t.Errorf("west light = %+v", p)
			}
		default:
			t.Errorf("light on approach %v, want E or W", Direction(p.Edge))
		}
	}
}

func TestPlaceGridStops(t *testing.T) {
	c := crossMap(t, 3, 1)
	if ps := PlaceTrafficControls(c, nil, nil); countKind(ps, StopSign) != 4 || len(ps) != 4 {
		t.Errorf("narrow crossing gave %d placements, want 4 stops", len(ps))
	}

	tee := mustMap(t, 11, 11)
	tee.AddRoadSegment(image.Pt(0, 5), image.Pt(10, 5), 2, 2, nil)
	tee.AddRoadSegment(image.Pt(5, 0), image.Pt(5, 5), 2, 2, nil)
	tee.Finalize()

	ps := PlaceTrafficControls(tee, nil, nil)
	if len(ps) != 3 {
		t.Fatalf("tee gave %d placements, want 3", len(ps))
	}
	for _, p := range ps {
		if p.Kind != StopSign || Direction(p.Edge) == South {
			t.Errorf("tee placement = %v on %v", p.Kind, Direction(p.Edge))
		}
	}
}

func TestPlaceIsRepeatable(t *testing.T) {
	c := crossMap(t, 2, 2)
	g := BuildNetwork(c)

	a := PlaceTrafficControls(c, g, nil)
	b := PlaceTrafficControls(c, g, nil)
	if len(a) != len(b) {
		t.Fatalf("runs gave %d and %d placements", len(a), len(b))
	}
	for i := range a {
		if *a[i] != *b[i] {
			t.Errorf("placement %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
	if !c.Finalized() {
		t.Error("placing props should not touch the map")
	}
}

func TestPlaceOneWayWidthFloor(t *testing.T) {
	c := bigMap(t)
	g, _ := junction(480, 480,
		arm{dx: 100, lanesF: 2, lanesB: 2},
		arm{dz: 100, lanesF: 2, lanesB: 2},
		arm{dx: -100, lanesF: 1, lanesB: 0},
	)
	style := DefaultStyle()

	ps := PlaceTrafficControls(c, g, style)
	if len(ps) != 3 {
		t.Fatalf("placements = %d, want 3", len(ps))
	}

	kerb := style.Curb.Thickness + style.Sidewalk.ExtraWidth/2
	oneWay := 2*style.LaneWidth + 2*style.Shoulder + kerb
	single := 1*style.LaneWidth + 2*style.Shoulder + kerb

	for _, p := range ps {
		if p.Edge != 3 {
			continue
		}
		// heading west the right hand side is -z
		lateral := 480 - p.Position.Z
		if !near(lateral, oneWay) {
			t.Errorf("one way lateral offset = %v, want %v (not the 1 lane %v)", lateral, oneWay, single)
		}
		along := 480 - p.Position.X
		if want := 4*style.LaneWidth + 2*style.Shoulder + kerb; !near(along, want) {
			t.Errorf("one way offset along the road = %v, want %v", along, want)
		}
		return
	}
	t.Error("no stop sign on the one way arm")
}
