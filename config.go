package citygrid

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StyleConfig holds the street dimensions that traffic control placements
// are derived from. All distances are world units.
type StyleConfig struct {
	// width of a single lane
	LaneWidth float64 `yaml:"lane_width" json:"laneWidth"`

	// extra tarmac either side of the outer lanes
	Shoulder float64 `yaml:"shoulder" json:"shoulder"`

	Curb     CurbConfig     `yaml:"curb" json:"curb"`
	Sidewalk SidewalkConfig `yaml:"sidewalk" json:"sidewalk"`

	// height of the road surface
	SurfaceY float64 `yaml:"surface_y" json:"surfaceY"`

	TrafficControl TrafficControlConfig `yaml:"traffic_control" json:"trafficControl"`
}

// CurbConfig sets the curb stone between road & sidewalk
type CurbConfig struct {
	Thickness   float64 `yaml:"thickness" json:"thickness"`
	Height      float64 `yaml:"height" json:"height"`
	ExtraHeight float64 `yaml:"extra_height" json:"extraHeight"`
}

// SidewalkConfig sets the sidewalk beyond the curb
type SidewalkConfig struct {
	ExtraWidth float64 `yaml:"extra_width" json:"extraWidth"`
	Lift       float64 `yaml:"lift" json:"lift"`
}

// TrafficControlConfig tunes how junctions are signed.
type TrafficControlConfig struct {
	// every approach of a 4-way junction needs at least this many lanes
	// for the junction to get lights rather than stop signs
	LightLaneThreshold int `yaml:"light_lane_threshold" json:"lightLaneThreshold"`

	// light pole scale is picked so the arm roughly spans this distance
	TargetArmLength float64 `yaml:"target_arm_length" json:"targetArmLength"`
}

// DefaultStyle returns a StyleConfig with reasonable defaults.
func DefaultStyle() *StyleConfig {
	return &StyleConfig{
		LaneWidth: 4.8,
		Shoulder:  0.6,
		Curb: CurbConfig{
			Thickness:   0.32,
			Height:      0.17,
			ExtraHeight: 0.0,
		},
		Sidewalk: SidewalkConfig{
			ExtraWidth: 2.4,
			Lift:       0.001,
		},
		SurfaceY: 0.02,
		TrafficControl: TrafficControlConfig{
			LightLaneThreshold: 2,
			TargetArmLength:    5.2,
		},
	}
}

// curbHeight is the top of the curb / sidewalk above y=0
func (s *StyleConfig) curbHeight() float64 {
	return s.SurfaceY + s.Curb.Height + s.Curb.ExtraHeight + s.Sidewalk.Lift
}

// stopInset is how far past the curb poles sit, onto the sidewalk
func (s *StyleConfig) stopInset() float64 {
	return s.Sidewalk.ExtraWidth * 0.5
}

// LoadStyle reads a YAML style file over the defaults.
// Values missing from the file keep their default.
func LoadStyle(path string) (*StyleConfig, error) {
	cfg := DefaultStyle()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading style %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing style %s", path)
	}

	return cfg, nil
}

// SaveTo writes the style as YAML to path, creating the parent directory.
func (s *StyleConfig) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating style dir")
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding style")
	}

	return errors.Wrap(os.WriteFile(path, data, 0644), "writing style")
}
