package citygrid

import (
	"image"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GeneratorConfig outlines the rough shape of a generated street grid.
type GeneratorConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	TileSize float64 `yaml:"tile_size"`

	// Seed for rng (random number chosen if not set)
	Seed int64 `yaml:"seed"`

	// number of full length arterials running each way
	ArterialsEW int `yaml:"arterials_ew"`
	ArterialsNS int `yaml:"arterials_ns"`

	// lanes each way on arterials & side streets
	ArterialLanes int `yaml:"arterial_lanes"`
	StreetLanes   int `yaml:"street_lanes"`

	// chance of a side street between each pair of parallel arterials,
	// at each candidate column / row
	StreetDensity float64 `yaml:"street_density"`

	// chance a side street is one way
	OneWayChance float64 `yaml:"one_way_chance"`

	// add a curved avenue (polyline) from the top left towards the bottom right
	Avenue       bool    `yaml:"avenue"`
	AvenueRadius float64 `yaml:"avenue_radius"`

	// where 1 is "place a building where-ever possible" and 0 is "place nothing"
	BuildingDensity float64 `yaml:"building_density"`

	// number of districts buildings are zoned into (0 for no zoning)
	Districts int `yaml:"districts"`
}

// DefaultGeneratorConfig returns a GeneratorConfig for a small town
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Width:           48,
		Height:          48,
		TileSize:        DefaultTileSize,
		ArterialsEW:     2,
		ArterialsNS:     2,
		ArterialLanes:   2,
		StreetLanes:     1,
		StreetDensity:   0.15,
		OneWayChance:    0.2,
		Avenue:          true,
		AvenueRadius:    12,
		BuildingDensity: 0.4,
		Districts:       6,
	}
}

// LoadGeneratorConfig reads a YAML generator config over the defaults
func LoadGeneratorConfig(path string) (*GeneratorConfig, error) {
	cfg := DefaultGeneratorConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading generator config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing generator config %s", path)
	}

	return cfg, nil
}

// Generate lays out a street grid & buildings, returning it as a Spec.
// The same config (with the same seed) always gives the same Spec.
func Generate(cfg *GeneratorConfig, log *zap.Logger) (*Spec, error) {
	if cfg == nil {
		cfg = DefaultGeneratorConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	c, err := New(cfg.Width, cfg.Height, WithTileSize(cfg.TileSize), WithLogger(log))
	if err != nil {
		return nil, errors.Wrap(err, "generator")
	}
	c.Seed = seed

	rows := spreadSlots(cfg.Height, cfg.ArterialsEW, rng)
	cols := spreadSlots(cfg.Width, cfg.ArterialsNS, rng)

	for _, y := range rows {
		c.AddRoadSegment(image.Pt(0, y), image.Pt(cfg.Width-1, y), cfg.ArterialLanes, cfg.ArterialLanes, &RoadOptions{Tag: "arterial"})
	}
	for _, x := range cols {
		c.AddRoadSegment(image.Pt(x, 0), image.Pt(x, cfg.Height-1), cfg.ArterialLanes, cfg.ArterialLanes, &RoadOptions{Tag: "arterial"})
	}

	// side streets join neighbouring arterials (or the map edge)
	addStreets := func(bands, across []int, span int, vertical bool) {
		edges := append([]int{0}, bands...)
		edges = append(edges, span-1)
		used := map[int]bool{}
		for _, b := range across {
			used[b] = true
		}

		limit := cfg.Width
		if !vertical {
			limit = cfg.Height
		}

		for i := 1; i < len(edges); i++ {
			from, to := edges[i-1], edges[i]
			if to-from < 3 {
				continue
			}
			for pos := 2; pos < limit-2; pos++ {
				if used[pos] || used[pos-1] || used[pos+1] || rng.Float64() >= cfg.StreetDensity {
					continue
				}
				lanesB := cfg.StreetLanes
				if rng.Float64() < cfg.OneWayChance {
					lanesB = 0
				}
				a, b := image.Pt(pos, from), image.Pt(pos, to)
				if !vertical {
					a, b = image.Pt(from, pos), image.Pt(to, pos)
				}
				c.AddRoadSegment(a, b, cfg.StreetLanes, lanesB, &RoadOptions{Tag: "street"})
				used[pos] = true
			}
		}
	}
	addStreets(rows, cols, cfg.Height, true)
	addStreets(cols, rows, cfg.Width, false)

	if cfg.Avenue {
		ts := c.TileSize()
		w, h := float64(cfg.Width)*ts, float64(cfg.Height)*ts
		pts := []PolylinePoint{
			{Pos: model2d.Coord{X: w * 0.1, Y: h * 0.15}},
			{Pos: model2d.Coord{X: w * (0.35 + rng.Float64()*0.2), Y: h * 0.15}, Radius: cfg.AvenueRadius, HasRadius: true},
			{Pos: model2d.Coord{X: w * 0.6, Y: h * (0.5 + rng.Float64()*0.3)}, Radius: cfg.AvenueRadius, HasRadius: true},
			{Pos: model2d.Coord{X: w * 0.9, Y: h * 0.85}},
		}
		c.AddRoadPolyline(pts, cfg.StreetLanes, cfg.StreetLanes, &RoadOptions{Tag: "avenue", DefaultRadius: cfg.AvenueRadius})
	}

	c.Finalize()
	placeBuildings(c, rng, cfg.BuildingDensity, newZoning(cfg.Width, cfg.Height, cfg.Districts, rng))
	c.Finalize()

	log.Debug("generated map",
		zap.Int64("seed", seed),
		zap.Int("roads", len(c.Roads())),
		zap.Int("buildings", len(c.Buildings())),
	)
	return c.ExportSpec(), nil
}

// world height of one building floor
const storeyHeight = 4.0

// placeBuildings puts small footprints on tiles that front a road.
// With zoning, buildings take their district as style & height range.
func placeBuildings(c *CityMap, rng *rand.Rand, density float64, zones *zoning) {
	if density <= 0 {
		return
	}

	shapes := [][]image.Point{
		{{0, 0}},
		{{0, 0}, {1, 0}},
		{{0, 0}, {0, 1}},
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}

	// candidates in a fixed order so the rng draws line up run to run
	candidates := []image.Point{}
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if c.IsRoad(x, y) || c.IsBuilding(x, y) {
				continue
			}
			for _, d := range allDirections {
				off := d.Offset()
				if c.IsRoad(x+off.X, y+off.Y) {
					candidates = append(candidates, image.Pt(x, y))
					break
				}
			}
		}
	}

	for _, p := range candidates {
		if c.IsBuilding(p.X, p.Y) || rng.Float64() >= density {
			continue
		}
		style, lo, hi := "", 1, 4
		if zones != nil {
			d := zones.at(p)
			if !d.buildable() {
				continue
			}
			style = string(d)
			lo, hi = d.storeys()
		}

		shape := shapes[rng.Intn(len(shapes))]
		tiles := make([]image.Point, len(shape))
		for i, s := range shape {
			tiles[i] = p.Add(s)
		}
		c.AddBuilding(0, tiles, style, float64(lo+rng.Intn(hi-lo+1))*storeyHeight)
	}
}

// spreadSlots spreads n positions across size with some jitter
func spreadSlots(size, n int, rng *rand.Rand) []int {
	if n <= 0 || size <= 0 {
		return []int{}
	}

	slots := make([]int, 0, n)
	margin := size / 8
	usable := size - 2*margin
	if usable < n*4 {
		usable = size
		margin = 0
	}
	for i := 0; i < n; i++ {
		base := margin + (usable*(2*i+1))/(2*n)
		jitter := rng.Intn(maxint(1, usable/(n*4))) - usable/(n*8)
		pos := base + jitter
		if pos < margin {
			pos = margin
		}
		if pos >= size-margin {
			pos = size - margin - 1
		}
		slots = append(slots, pos)
	}
	return slots
}

// maxint returns the highest of two ints
func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}
