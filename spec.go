package citygrid

import (
	"encoding/json"
	"image"
	"os"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"go.uber.org/zap"
)

// SpecVersion is written into exported specs
const SpecVersion = 1

// Spec is the JSON form of a CityMap; what FromSpec reads & ExportSpec writes.
type Spec struct {
	Version   int             `json:"version"`
	Seed      int64           `json:"seed"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	TileSize  float64         `json:"tileSize"`
	Origin    SpecOrigin      `json:"origin"`
	Roads     []*SpecRoad     `json:"roads"`
	Buildings []*SpecBuilding `json:"buildings"`
}

// SpecOrigin is the world position of the corner of tile (0, 0)
type SpecOrigin struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// SpecRoad is either a segment (A & B set, tile coords) or a polyline
// (Points set, world coords). Points wins if both are given.
type SpecRoad struct {
	ID            int          `json:"id,omitempty"`
	A             *[2]int      `json:"a,omitempty"`
	B             *[2]int      `json:"b,omitempty"`
	Points        []*SpecPoint `json:"points,omitempty"`
	DefaultRadius *float64     `json:"defaultRadius,omitempty"`
	LanesF        int          `json:"lanesF"`
	LanesB        int          `json:"lanesB"`
	Tag           string       `json:"tag,omitempty"`
	Rendered      *bool        `json:"rendered,omitempty"`
}

// SpecPoint is a world space polyline point
type SpecPoint struct {
	X      float64  `json:"x"`
	Z      float64  `json:"z"`
	Radius *float64 `json:"radius,omitempty"`
}

// SpecBuilding is a building footprint in tile coords
type SpecBuilding struct {
	ID     int      `json:"id,omitempty"`
	Tiles  [][2]int `json:"tiles"`
	Style  string   `json:"style,omitempty"`
	Height float64  `json:"height,omitempty"`
}

// ParseSpec decodes a JSON spec
func ParseSpec(data []byte) (*Spec, error) {
	s := &Spec{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "decoding spec")
	}
	return s, nil
}

// LoadSpec reads a JSON spec from disk
func LoadSpec(fpath string) (*Spec, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading spec %s", fpath)
	}
	return ParseSpec(data)
}

// JSON returns the spec as json
func (s *Spec) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Save writes the spec as json to the given path
func (s *Spec) Save(fpath string) error {
	data, err := s.JSON()
	if err != nil {
		return errors.Wrap(err, "encoding spec")
	}
	return errors.Wrapf(os.WriteFile(fpath, data, 0644), "writing spec %s", fpath)
}

// FromSpec builds and finalizes a CityMap from spec.
// Roads & buildings that make no sense are skipped; only a bad map size
// is an error.
func FromSpec(s *Spec, opts ...Option) (*CityMap, error) {
	if s == nil {
		return nil, errors.Wrap(ErrInvalidSize, "nil spec")
	}

	base := []Option{WithOrigin(s.Origin.X, s.Origin.Z)}
	if s.TileSize > 0 {
		base = append(base, WithTileSize(s.TileSize))
	}
	c, err := New(s.Width, s.Height, append(base, opts...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "spec size %dx%d", s.Width, s.Height)
	}
	if s.Version > 0 {
		c.Version = s.Version
	}
	c.Seed = s.Seed

	for i, sr := range s.Roads {
		if sr == nil {
			continue
		}
		ro := &RoadOptions{ID: sr.ID, Tag: sr.Tag, Rendered: sr.Rendered}
		if sr.DefaultRadius != nil {
			ro.DefaultRadius = *sr.DefaultRadius
		}

		switch {
		case len(sr.Points) > 0:
			pts := make([]PolylinePoint, 0, len(sr.Points))
			for _, sp := range sr.Points {
				if sp == nil {
					continue
				}
				pp := PolylinePoint{Pos: model2d.Coord{X: sp.X, Y: sp.Z}}
				if sp.Radius != nil {
					pp.Radius = *sp.Radius
					pp.HasRadius = true
				}
				pts = append(pts, pp)
			}
			c.AddRoadPolyline(pts, sr.LanesF, sr.LanesB, ro)
		case sr.A != nil && sr.B != nil:
			a := image.Pt(sr.A[0], sr.A[1])
			b := image.Pt(sr.B[0], sr.B[1])
			c.AddRoadSegment(a, b, sr.LanesF, sr.LanesB, ro)
		default:
			c.log.Debug("skipping spec road", zap.Int("index", i), zap.String("reason", "no endpoints or points"))
		}
	}

	for _, sb := range s.Buildings {
		if sb == nil {
			continue
		}
		tiles := make([]image.Point, len(sb.Tiles))
		for i, t := range sb.Tiles {
			tiles[i] = image.Pt(t[0], t[1])
		}
		c.AddBuilding(sb.ID, tiles, sb.Style, sb.Height)
	}

	c.Finalize()
	return c, nil
}

// ExportSpec returns a Spec that FromSpec would rebuild this map from.
func (c *CityMap) ExportSpec() *Spec {
	s := &Spec{
		Version:   c.Version,
		Seed:      c.Seed,
		Width:     c.width,
		Height:    c.height,
		TileSize:  c.tileSize,
		Origin:    SpecOrigin{X: c.origin.X, Z: c.origin.Y},
		Roads:     make([]*SpecRoad, 0, len(c.roads)),
		Buildings: make([]*SpecBuilding, 0, len(c.buildings)),
	}

	for _, r := range c.roads {
		rendered := r.Rendered
		sr := &SpecRoad{ID: r.ID, LanesF: r.LanesF, LanesB: r.LanesB, Tag: r.Tag, Rendered: &rendered}

		switch shape := r.Shape.(type) {
		case Segment:
			sr.A = &[2]int{shape.A.X, shape.A.Y}
			sr.B = &[2]int{shape.B.X, shape.B.Y}
		case Polyline:
			if shape.DefaultRadius > 0 {
				dr := shape.DefaultRadius
				sr.DefaultRadius = &dr
			}
			for _, p := range shape.Points {
				sp := &SpecPoint{X: p.Pos.X, Z: p.Pos.Y}
				if p.HasRadius {
					radius := p.Radius
					sp.Radius = &radius
				}
				sr.Points = append(sr.Points, sp)
			}
		}

		s.Roads = append(s.Roads, sr)
	}

	for _, b := range c.buildings {
		sb := &SpecBuilding{ID: b.ID, Style: b.Style, Height: b.Height, Tiles: make([][2]int, len(b.Tiles))}
		for i, t := range b.Tiles {
			sb.Tiles[i] = [2]int{t.X, t.Y}
		}
		s.Buildings = append(s.Buildings, sb)
	}

	return s
}
