package citygrid

import (
	"image"
	"sort"

	"github.com/voidshard/citygrid/internal/encoding"

	"github.com/unixpickle/model3d/model3d"
)

// RoadNetwork is a read only node / edge view of a road system.
// Placement only relies on this interface, never on how it was built.
type RoadNetwork interface {
	Nodes() []*Node
	Edges() []*Edge
	Node(id int) *Node
}

// Node is a junction or road end.
type Node struct {
	ID       int
	Position model3d.Coord3D
	Tile     image.Point
	EdgeIDs  []int
}

// Edge joins nodes A & B. LanesF run A -> B, LanesB run B -> A.
type Edge struct {
	ID       int
	A        int
	B        int
	LanesF   int
	LanesB   int
	Rendered bool

	// road the edge was cut from, 0 if unknown
	RoadID int
}

// Other returns the node at the far end of the edge from node
func (e *Edge) Other(node int) int {
	if e.A == node {
		return e.B
	}
	return e.A
}

// Outgoing returns the lanes leaving node along this edge
func (e *Edge) Outgoing(node int) int {
	if e.A == node {
		return e.LanesF
	}
	return e.LanesB
}

// Graph is a simple in memory RoadNetwork.
type Graph struct {
	nodes []*Node
	edges []*Edge
	byID  map[int]*Node
	eByID map[int]*Edge
}

// NewGraph returns an empty Graph
func NewGraph() *Graph {
	return &Graph{byID: map[int]*Node{}, eByID: map[int]*Edge{}}
}

// Nodes returns all nodes in id order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns all edges in id order
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Node returns the node with the given id or nil
func (g *Graph) Node(id int) *Node {
	return g.byID[id]
}

// Edge returns the edge with the given id or nil
func (g *Graph) Edge(id int) *Edge {
	return g.eByID[id]
}

// AddNode adds a node at the given position, returning it.
func (g *Graph) AddNode(pos model3d.Coord3D, tile image.Point) *Node {
	n := &Node{ID: len(g.nodes) + 1, Position: pos, Tile: tile, EdgeIDs: []int{}}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return n
}

// AddEdge joins nodes a & b, returning the edge or nil if either is unknown.
func (g *Graph) AddEdge(a, b, lanesF, lanesB int, rendered bool) *Edge {
	na, nb := g.byID[a], g.byID[b]
	if na == nil || nb == nil {
		return nil
	}

	e := &Edge{ID: len(g.edges) + 1, A: a, B: b, LanesF: lanesF, LanesB: lanesB, Rendered: rendered}
	g.edges = append(g.edges, e)
	g.eByID[e.ID] = e

	na.EdgeIDs = append(na.EdgeIDs, e.ID)
	if b != a {
		nb.EdgeIDs = append(nb.EdgeIDs, e.ID)
	}
	return e
}

// BuildNetwork derives a Graph from the map's roads.
//
// Every road gets a node at its first & last tile and at each tile where
// another road leaves its route (a crossing, or a road ending on it).
// Roads that only run along each other share no node there. Consecutive
// nodes along a road are joined by an edge carrying that road's lanes;
// roads covering the same stretch share one edge with the most lanes of
// either. Roads meeting on a tile share the node there.
func BuildNetwork(c *CityMap) *Graph {
	g := NewGraph()
	if c == nil {
		return g
	}

	routes := routesByTile(c)

	nodeAt := map[uint32]*Node{}
	getNode := func(p image.Point) *Node {
		key := encoding.PointKey(p)
		n, ok := nodeAt[key]
		if !ok {
			w := c.TileToWorld(p)
			n = g.AddNode(model3d.Coord3D{X: w.X, Y: 0, Z: w.Y}, p)
			nodeAt[key] = n
		}
		return n
	}

	// make nodes in tile order so ids do not depend on road order
	junctions := []image.Point{}
	for ri, r := range c.roads {
		for i, p := range r.Tiles {
			if isJunction(routes, ri, r, i) {
				junctions = append(junctions, p)
			}
		}
	}
	sort.Slice(junctions, func(a, b int) bool {
		pa, pb := junctions[a], junctions[b]
		if pa.Y != pb.Y {
			return pa.Y < pb.Y
		}
		return pa.X < pb.X
	})
	for _, p := range junctions {
		getNode(p)
	}

	between := map[[2]int]*Edge{}
	for ri, r := range c.roads {
		var prev *Node
		for i, p := range r.Tiles {
			if !isJunction(routes, ri, r, i) {
				continue
			}
			n := getNode(p)
			if prev != nil && prev != n {
				joinNodes(g, between, prev, n, r)
			}
			prev = n
		}
	}

	return g
}

// joinNodes adds an edge for road r from a to b, or folds r into the edge
// already joining them
func joinNodes(g *Graph, between map[[2]int]*Edge, a, b *Node, r *Road) {
	key := [2]int{a.ID, b.ID}
	if b.ID < a.ID {
		key = [2]int{b.ID, a.ID}
	}

	e, ok := between[key]
	if !ok {
		e = g.AddEdge(a.ID, b.ID, r.LanesF, r.LanesB, r.Rendered)
		e.RoadID = r.ID
		between[key] = e
		return
	}

	fwd, back := r.LanesF, r.LanesB
	if e.A != a.ID {
		fwd, back = back, fwd
	}
	e.LanesF = maxint(e.LanesF, fwd)
	e.LanesB = maxint(e.LanesB, back)
	e.Rendered = e.Rendered || r.Rendered
}

// routeStep is where one road's route goes next from a tile
type routeStep struct {
	road       int
	neighbours []image.Point
}

// routesByTile returns, for every tile some road covers, each road's
// neighbouring tiles along its route
func routesByTile(c *CityMap) map[uint32][]routeStep {
	out := map[uint32][]routeStep{}
	for ri, r := range c.roads {
		for i, p := range r.Tiles {
			step := routeStep{road: ri, neighbours: make([]image.Point, 0, 2)}
			if i > 0 {
				step.neighbours = append(step.neighbours, r.Tiles[i-1])
			}
			if i < len(r.Tiles)-1 {
				step.neighbours = append(step.neighbours, r.Tiles[i+1])
			}
			key := encoding.PointKey(p)
			out[key] = append(out[key], step)
		}
	}
	return out
}

// isJunction returns if the i-th tile of r (the ri-th road) should be a
// network node: either end of r, or a tile where another road's route
// goes somewhere r's does not
func isJunction(routes map[uint32][]routeStep, ri int, r *Road, i int) bool {
	if i == 0 || i == len(r.Tiles)-1 {
		return true
	}
	before, after := r.Tiles[i-1], r.Tiles[i+1]
	for _, step := range routes[encoding.PointKey(r.Tiles[i])] {
		if step.road == ri {
			continue
		}
		for _, n := range step.neighbours {
			if n != before && n != after {
				return true
			}
		}
	}
	return false
}
