package citygrid

import (
	"fmt"
	"image"
	"math"

	"github.com/voidshard/citygrid/internal/encoding"
	"github.com/voidshard/citygrid/internal/line"

	"github.com/boljen/go-bitmap"
	"github.com/unixpickle/model3d/model2d"
	"go.uber.org/zap"
)

var (
	// ErrInvalidSize is returned for maps without a positive width & height
	ErrInvalidSize = fmt.Errorf("map width and height must be positive")
)

const (
	// DefaultTileSize is the world size of a tile if none is given
	DefaultTileSize = 24.0

	// keys for tiles are packed into 16 bits per axis
	maxDimension = 1 << 16

	// road endpoints may lie this many map sizes off the map
	reachFactor = 2
)

// CityMap is a tile grid of roads (and building footprints).
//
// Roads are added with AddRoadSegment / AddRoadPolyline, after which
// Finalize must be called before Tile axis / connectivity data is valid.
//
// A CityMap is not safe for concurrent writers; callers should hold a lock
// around any series of adds followed by Finalize. A finalized map that is
// no longer being written to may be read from many goroutines.
type CityMap struct {
	width    int
	height   int
	tileSize float64
	origin   model2d.Coord

	Version int
	Seed    int64

	tiles []Tile

	// one bit per tile index
	roadMask     bitmap.Bitmap
	buildingMask bitmap.Bitmap

	roads     []*Road
	roadsByID map[int]*Road
	lastID    int

	buildings      []*Building
	lastBuildingID int

	finalized bool

	log *zap.Logger
}

// Option configures a CityMap
type Option func(*CityMap)

// WithTileSize sets the world size of one tile
func WithTileSize(size float64) Option {
	return func(c *CityMap) {
		if size > 0 {
			c.tileSize = size
		}
	}
}

// WithOrigin sets the world (x, z) of the top-left corner of tile (0, 0)
func WithOrigin(x, z float64) Option {
	return func(c *CityMap) {
		c.origin = model2d.Coord{X: x, Y: z}
	}
}

// WithLogger sets the logger used to report skipped input
func WithLogger(l *zap.Logger) Option {
	return func(c *CityMap) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns an empty CityMap of width x height tiles
func New(width, height int, opts ...Option) (*CityMap, error) {
	if width <= 0 || height <= 0 || width >= maxDimension || height >= maxDimension {
		return nil, ErrInvalidSize
	}

	c := &CityMap{
		width:     width,
		height:    height,
		tileSize:  DefaultTileSize,
		Version:   SpecVersion,
		tiles:     make([]Tile, width*height),
		roadsByID: map[int]*Road{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.roadMask = bitmap.New(width * height)
	c.buildingMask = bitmap.New(width * height)
	for i := range c.tiles {
		c.tiles[i].PrimaryRoadID = -1
	}

	return c, nil
}

// Width in tiles
func (c *CityMap) Width() int {
	return c.width
}

// Height in tiles
func (c *CityMap) Height() int {
	return c.height
}

// TileSize is the world size of one tile
func (c *CityMap) TileSize() float64 {
	return c.tileSize
}

// Origin is the world (x, z) of the corner of tile (0, 0), z held in Y
func (c *CityMap) Origin() model2d.Coord {
	return c.origin
}

// Finalized returns if Finalize has run since the last change
func (c *CityMap) Finalized() bool {
	return c.finalized
}

// InBounds returns if x,y is a tile on the map
func (c *CityMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// Index returns the tile index for x,y or -1 if out of bounds
func (c *CityMap) Index(x, y int) int {
	if !c.InBounds(x, y) {
		return -1
	}
	return x + y*c.width
}

// Tile returns the tile at x,y or nil if out of bounds.
// The returned tile must not be modified.
func (c *CityMap) Tile(x, y int) *Tile {
	i := c.Index(x, y)
	if i < 0 {
		return nil
	}
	return &c.tiles[i]
}

// IsRoad returns if there is a road at x,y
func (c *CityMap) IsRoad(x, y int) bool {
	i := c.Index(x, y)
	if i < 0 {
		return false
	}
	return c.roadMask.Get(i)
}

// IsBuilding returns if a building footprint covers x,y
func (c *CityMap) IsBuilding(x, y int) bool {
	i := c.Index(x, y)
	if i < 0 {
		return false
	}
	return c.buildingMask.Get(i)
}

// CountRoadTiles returns how many tiles hold at least one road
func (c *CityMap) CountRoadTiles() int {
	count := 0
	for i := range c.tiles {
		if c.roadMask.Get(i) {
			count++
		}
	}
	return count
}

// Roads returns all roads in the order they were added
func (c *CityMap) Roads() []*Road {
	return c.roads
}

// Road returns the road with the given id, or nil
func (c *CityMap) Road(id int) *Road {
	return c.roadsByID[id]
}

// WorldToTile returns the tile holding world position (x, z).
// The result may be out of bounds.
func (c *CityMap) WorldToTile(x, z float64) image.Point {
	return image.Pt(
		int(math.Floor((x-c.origin.X)/c.tileSize)),
		int(math.Floor((z-c.origin.Y)/c.tileSize)),
	)
}

// TileToWorld returns the world (x, z) of the centre of tile p
func (c *CityMap) TileToWorld(p image.Point) model2d.Coord {
	return model2d.Coord{
		X: c.origin.X + (float64(p.X)+0.5)*c.tileSize,
		Y: c.origin.Y + (float64(p.Y)+0.5)*c.tileSize,
	}
}

// WorldBounds returns the world space (x, z) rect covered by the map
func (c *CityMap) WorldBounds() *model2d.Rect {
	return model2d.NewRect(
		c.origin,
		c.origin.Add(model2d.Coord{X: float64(c.width) * c.tileSize, Y: float64(c.height) * c.tileSize}),
	)
}

// nextRoadID returns the id to use for a new road.
// Explicit ids move the counter on so automatic ids never collide.
func (c *CityMap) nextRoadID(explicit int) int {
	if explicit > 0 {
		if explicit > c.lastID {
			c.lastID = explicit
		}
		return explicit
	}
	c.lastID++
	return c.lastID
}

// AddRoadSegment adds a straight road between tiles a & b.
// lanesF run from a towards b, lanesB from b towards a.
// Lane data is only written for axis aligned roads, diagonal roads still
// own their tiles. A road with no tile on the map is a no-op.
func (c *CityMap) AddRoadSegment(a, b image.Point, lanesF, lanesB int, opts *RoadOptions) *Road {
	if opts == nil {
		opts = &RoadOptions{}
	}
	if lanesF < 0 || lanesB < 0 {
		c.log.Debug("skipping road segment", zap.String("reason", "negative lanes"), zap.Int("id", opts.ID))
		return nil
	}
	reach := c.reach()
	if !a.In(reach) || !b.In(reach) {
		c.log.Debug("skipping road segment", zap.String("reason", "endpoint far off the map"), zap.Int("id", opts.ID))
		return nil
	}

	tiles := line.PointsWithin(a, b, c.bounds())
	if len(tiles) == 0 {
		c.log.Debug("skipping road segment", zap.String("reason", "no tiles on the map"), zap.Int("id", opts.ID))
		return nil
	}

	dx, dy := b.X-a.X, b.Y-a.Y
	r := &Road{
		ID:       c.nextRoadID(opts.ID),
		Shape:    Segment{A: a, B: b},
		LanesF:   lanesF,
		LanesB:   lanesB,
		Tag:      opts.Tag,
		Rendered: opts.rendered(),
		Angle:    snapAngle(float64(dx), float64(dy)),
	}

	fwd, axial := segmentDirection(dx, dy)
	for _, p := range tiles {
		i := c.Index(p.X, p.Y)
		c.claimTile(i, r.ID)
		r.Tiles = append(r.Tiles, p)

		if axial {
			c.tiles[i].addLanes(fwd, lanesF)
			c.tiles[i].addLanes(fwd.Opposite(), lanesB)
		}
	}

	c.register(r)
	return r
}

// polylineStep is one tile of a polyline walk
type polylineStep struct {
	p     image.Point
	fwd   Direction
	axial bool
}

// AddRoadPolyline adds a road through the given world space points.
// A point landing on the same tile as the one before it is merged into it
// (taking its radius if it has one). Points that are not finite or lie far
// off the map are dropped. Less than 2 distinct tiles, or none of them on
// the map, is a no-op.
func (c *CityMap) AddRoadPolyline(points []PolylinePoint, lanesF, lanesB int, opts *RoadOptions) *Road {
	if opts == nil {
		opts = &RoadOptions{}
	}

	kept := []PolylinePoint{}
	tiles := []image.Point{}
	for _, p := range points {
		if !c.inWorldReach(p.Pos) {
			continue
		}
		if !p.HasRadius && opts.DefaultRadius > 0 {
			p.Radius = opts.DefaultRadius
		}

		t := c.WorldToTile(p.Pos.X, p.Pos.Y)
		if len(tiles) > 0 && tiles[len(tiles)-1] == t {
			if p.HasRadius {
				kept[len(kept)-1].Radius = p.Radius
				kept[len(kept)-1].HasRadius = true
			}
			continue
		}
		kept = append(kept, p)
		tiles = append(tiles, t)
	}

	if len(kept) < 2 || lanesF < 0 || lanesB < 0 {
		c.log.Debug("skipping road polyline", zap.String("reason", "fewer than 2 usable points"), zap.Int("id", opts.ID))
		return nil
	}

	steps := []polylineStep{}
	for j := 1; j < len(tiles); j++ {
		a, b := tiles[j-1], tiles[j]
		fwd, axial := segmentDirection(b.X-a.X, b.Y-a.Y)
		for _, p := range line.PointsWithin(a, b, c.bounds()) {
			steps = append(steps, polylineStep{p: p, fwd: fwd, axial: axial})
		}
	}
	if len(steps) == 0 {
		c.log.Debug("skipping road polyline", zap.String("reason", "no tiles on the map"), zap.Int("id", opts.ID))
		return nil
	}

	first, last := kept[0].Pos, kept[len(kept)-1].Pos
	r := &Road{
		ID:       c.nextRoadID(opts.ID),
		Shape:    Polyline{Points: kept, DefaultRadius: opts.DefaultRadius},
		LanesF:   lanesF,
		LanesB:   lanesB,
		Tag:      opts.Tag,
		Rendered: opts.rendered(),
		Angle:    snapAngle(last.X-first.X, last.Y-first.Y),
	}

	seen := map[uint32]bool{}
	for _, st := range steps {
		i := c.Index(st.p.X, st.p.Y)
		if st.axial {
			c.tiles[i].addLanes(st.fwd, lanesF)
			c.tiles[i].addLanes(st.fwd.Opposite(), lanesB)
		}

		key := encoding.PointKey(st.p)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.claimTile(i, r.ID)
		r.Tiles = append(r.Tiles, st.p)
	}

	c.register(r)
	return r
}

// bounds is the tile rectangle of the map
func (c *CityMap) bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// reach is the tile rectangle road endpoints must fall in; the map grown by
// reachFactor map sizes on every side. Walking a road is bounded by it.
func (c *CityMap) reach() image.Rectangle {
	m := reachFactor * maxint(c.width, c.height)
	return c.bounds().Inset(-m)
}

// inWorldReach returns if world point p is finite & lands in reach.
// NaN fails every comparison so it is rejected too.
func (c *CityMap) inWorldReach(p model2d.Coord) bool {
	r := c.reach()
	fx := (p.X - c.origin.X) / c.tileSize
	fz := (p.Y - c.origin.Y) / c.tileSize
	return fx >= float64(r.Min.X) && fx < float64(r.Max.X) &&
		fz >= float64(r.Min.Y) && fz < float64(r.Max.Y)
}

// register records r as a road on the map
func (c *CityMap) register(r *Road) {
	if old, ok := c.roadsByID[r.ID]; ok {
		c.log.Debug("road id reused", zap.Int("id", r.ID), zap.Int("previous_tiles", len(old.Tiles)))
	}
	c.roads = append(c.roads, r)
	c.roadsByID[r.ID] = r
	c.finalized = false
}

// claimTile marks tile i as owned by road id, cutting back any building on it
func (c *CityMap) claimTile(i, id int) {
	if c.buildingMask.Get(i) {
		c.clearBuilding(i)
	}
	t := &c.tiles[i]
	t.Kind = RoadTile
	t.roads.Add(id)
	c.roadMask.Set(i, true)
}

// segmentDirection returns the Direction a road travelling (dx, dy) heads in,
// and whether the road is axis aligned at all.
// A zero step has no direction.
func segmentDirection(dx, dy int) (Direction, bool) {
	switch {
	case dx == 0 && dy == 0:
		return North, false
	case dy == 0 && dx > 0:
		return East, true
	case dy == 0:
		return West, true
	case dx == 0 && dy > 0:
		return South, true
	case dx == 0:
		return North, true
	}
	return North, false
}
