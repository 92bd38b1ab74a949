package citygrid

import (
	"image"
	"sort"

	"github.com/golang/geo/s1"
)

// TileKind is what occupies a tile
type TileKind uint8

const (
	Empty TileKind = iota
	RoadTile
)

// Axis is the local road topology of a tile, set by Finalize.
type Axis uint8

const (
	AxisNone Axis = iota
	AxisEW
	AxisNS
	AxisIntersection
	AxisCorner
)

// String returns a human readable axis name
func (a Axis) String() string {
	switch a {
	case AxisEW:
		return "EW"
	case AxisNS:
		return "NS"
	case AxisIntersection:
		return "INTERSECTION"
	case AxisCorner:
		return "CORNER"
	default:
		return "NONE"
	}
}

// Direction is one of the four cardinal directions.
// North is -y in tile space (and -z in world space).
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var (
	// all directions in bit order
	allDirections = []Direction{North, East, South, West}

	directionNames = [4]string{"N", "E", "S", "W"}

	// tile offset to the neighbour in each direction
	directionOffsets = [4]image.Point{
		North: {0, -1},
		East:  {1, 0},
		South: {0, 1},
		West:  {-1, 0},
	}
)

// String returns N, E, S or W
func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return "?"
	}
	return directionNames[d]
}

// Offset returns the tile step towards d
func (d Direction) Offset() image.Point {
	return directionOffsets[d]
}

// Opposite returns the direction facing the other way
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Conn is a 4 bit connectivity mask, one bit per Direction.
type Conn uint8

const (
	ConnN Conn = 1 << North
	ConnE Conn = 1 << East
	ConnS Conn = 1 << South
	ConnW Conn = 1 << West

	connNS = ConnN | ConnS
	connEW = ConnE | ConnW
)

// Has returns if the bit for d is set
func (c Conn) Has(d Direction) bool {
	return c&(1<<d) != 0
}

// Count returns the number of bits set
func (c Conn) Count() int {
	n := 0
	for _, d := range allDirections {
		if c.Has(d) {
			n++
		}
	}
	return n
}

// roadSetInline is how many ids a tile holds before spilling to the heap.
// Almost all tiles have 1, crossings 2, the odd junction 3 or 4.
const roadSetInline = 4

// roadSet is a small sorted set of road ids.
type roadSet struct {
	n      int
	inline [roadSetInline]int
	extra  []int
}

// Len returns the number of ids in the set
func (s *roadSet) Len() int {
	return s.n
}

// at returns the i-th smallest id
func (s *roadSet) at(i int) int {
	if i < roadSetInline {
		return s.inline[i]
	}
	return s.extra[i-roadSetInline]
}

// set writes the i-th slot
func (s *roadSet) set(i, id int) {
	if i < roadSetInline {
		s.inline[i] = id
		return
	}
	s.extra[i-roadSetInline] = id
}

// IDs returns a copy of the ids, ascending
func (s *roadSet) IDs() []int {
	out := make([]int, s.n)
	for i := range out {
		out[i] = s.at(i)
	}
	return out
}

// search returns the index id is (or would be) at
func (s *roadSet) search(id int) int {
	return sort.Search(s.n, func(i int) bool { return s.at(i) >= id })
}

// Contains returns if id is in the set
func (s *roadSet) Contains(id int) bool {
	i := s.search(id)
	return i < s.n && s.at(i) == id
}

// Add inserts id, returning false if it was already present
func (s *roadSet) Add(id int) bool {
	i := s.search(id)
	if i < s.n && s.at(i) == id {
		return false
	}
	if s.n >= roadSetInline {
		s.extra = append(s.extra, 0)
	}
	for j := s.n; j > i; j-- {
		s.set(j, s.at(j-1))
	}
	s.set(i, id)
	s.n++
	return true
}

// Shares returns if the two sets have any id in common.
// Both are sorted so this is a merge walk, bounded by the smaller set.
func (s *roadSet) Shares(o *roadSet) bool {
	i, j := 0, 0
	for i < s.n && j < o.n {
		a, b := s.at(i), o.at(j)
		switch {
		case a == b:
			return true
		case a < b:
			i++
		default:
			j++
		}
	}
	return false
}

// Tile is one grid cell.
type Tile struct {
	Kind TileKind

	// set by Finalize
	Axis         Axis
	Conn         Conn
	Intersection bool

	// max lanes heading in each Direction of any (axis aligned) road here
	Lanes [4]uint8

	roads roadSet

	// only valid if exactly one road owns the tile (otherwise -1 / 0)
	PrimaryRoadID int
	RoadAngle     s1.Angle
}

// RoadIDs returns the ids of all roads on this tile, ascending
func (t *Tile) RoadIDs() []int {
	return t.roads.IDs()
}

// RoadCount returns how many roads own this tile
func (t *Tile) RoadCount() int {
	return t.roads.Len()
}

// LanesEW returns total lanes along the east-west axis
func (t *Tile) LanesEW() int {
	return int(t.Lanes[East]) + int(t.Lanes[West])
}

// LanesNS returns total lanes along the north-south axis
func (t *Tile) LanesNS() int {
	return int(t.Lanes[North]) + int(t.Lanes[South])
}

// addLanes keeps the per-direction maximum (widths do not add up across roads)
func (t *Tile) addLanes(d Direction, n int) {
	if n <= 0 {
		return
	}
	if n > 255 {
		n = 255
	}
	if uint8(n) > t.Lanes[d] {
		t.Lanes[d] = uint8(n)
	}
}
