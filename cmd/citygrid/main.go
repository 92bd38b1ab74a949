// citygrid is a CLI for building, inspecting & signing tile road maps.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/voidshard/citygrid"
	"github.com/voidshard/citygrid/internal/logger"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "place":
		cmdPlace(args)
	case "render":
		cmdRender(args)
	case "generate", "gen":
		cmdGenerate(args)
	case "export":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`citygrid - tile road map utility

Usage:
  citygrid <command> [options]

Commands:
  info <spec.json>                  Show map & network stats
  place [-grid] [-style s.yaml] <spec.json> [out.json]
                                    Compute traffic control placements
  render [-px N] <spec.json> <out.png>
                                    Draw the map & placements to a PNG
  generate [-config g.yaml] [-seed N] <out.json>
                                    Generate a street grid spec
  export <spec.json> <out.json>     Rebuild a spec & write it back out

Common options:
  -log-level debug|info|warn|error
  -log-file <path>

Examples:
  citygrid generate -seed 42 town.json
  citygrid place -style style.yaml town.json lights.json
  citygrid render -px 12 town.json town.png`)
}

// commonFlags are accepted by every command
type commonFlags struct {
	level   *string
	logFile *string
}

func newFlags(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, &commonFlags{
		level:   fs.String("log-level", "info", "Log level"),
		logFile: fs.String("log-file", "", "Also log to this (rotated) file"),
	}
}

func (c *commonFlags) logger() *zap.Logger {
	return logger.New(*c.level, *c.logFile)
}

// fail prints err & exits
func fail(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	_ = log.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// loadMap reads a spec & builds a finalized map from it
func loadMap(log *zap.Logger, path string) *citygrid.CityMap {
	spec, err := citygrid.LoadSpec(path)
	if err != nil {
		fail(log, "loading spec", err)
	}
	c, err := citygrid.FromSpec(spec, citygrid.WithLogger(log))
	if err != nil {
		fail(log, "building map", err)
	}
	return c
}

// loadStyle returns the style at path, or the default style
func loadStyle(log *zap.Logger, path string) *citygrid.StyleConfig {
	if path == "" {
		return citygrid.DefaultStyle()
	}
	style, err := citygrid.LoadStyle(path)
	if err != nil {
		fail(log, "loading style", err)
	}
	return style
}

func cmdInfo(args []string) {
	fs, common := newFlags("info")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: citygrid info <spec.json>")
		os.Exit(1)
	}
	log := common.logger()
	defer log.Sync()

	c := loadMap(log, fs.Arg(0))

	axes := map[citygrid.Axis]int{}
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if c.IsRoad(x, y) {
				axes[c.Tile(x, y).Axis]++
			}
		}
	}
	g := citygrid.BuildNetwork(c)

	fmt.Printf("Size:          %d x %d (tile %.2f)\n", c.Width(), c.Height(), c.TileSize())
	fmt.Printf("Seed:          %d\n", c.Seed)
	fmt.Printf("Roads:         %d\n", len(c.Roads()))
	fmt.Printf("Road tiles:    %d\n", c.CountRoadTiles())
	fmt.Printf("Buildings:     %d\n", len(c.Buildings()))
	for _, a := range []citygrid.Axis{citygrid.AxisEW, citygrid.AxisNS, citygrid.AxisIntersection, citygrid.AxisCorner} {
		fmt.Printf("  %-13s %d\n", a.String()+":", axes[a])
	}
	fmt.Printf("Network nodes: %d\n", len(g.Nodes()))
	fmt.Printf("Network edges: %d\n", len(g.Edges()))
}

func cmdPlace(args []string) {
	fs, common := newFlags("place")
	gridOnly := fs.Bool("grid", false, "Use tile data instead of the derived network")
	stylePath := fs.String("style", "", "Style YAML file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: citygrid place [-grid] [-style s.yaml] <spec.json> [out.json]")
		os.Exit(1)
	}
	log := common.logger()
	defer log.Sync()

	c := loadMap(log, fs.Arg(0))
	style := loadStyle(log, *stylePath)

	var network citygrid.RoadNetwork
	if !*gridOnly {
		network = citygrid.BuildNetwork(c)
	}
	placements := citygrid.PlaceTrafficControls(c, network, style)

	data, err := json.MarshalIndent(placements, "", "  ")
	if err != nil {
		fail(log, "encoding placements", err)
	}
	if fs.NArg() < 2 {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(fs.Arg(1), data, 0644); err != nil {
		fail(log, "writing placements", err)
	}
	log.Info("wrote placements", zap.String("path", fs.Arg(1)), zap.Int("count", len(placements)))
}

func cmdRender(args []string) {
	fs, common := newFlags("render")
	px := fs.Int("px", 8, "Pixels per tile")
	stylePath := fs.String("style", "", "Style YAML file")
	fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: citygrid render [-px N] <spec.json> <out.png>")
		os.Exit(1)
	}
	log := common.logger()
	defer log.Sync()

	c := loadMap(log, fs.Arg(0))
	placements := citygrid.PlaceTrafficControls(c, citygrid.BuildNetwork(c), loadStyle(log, *stylePath))

	scheme := citygrid.DefaultScheme()
	scheme.TileSize = *px
	if err := c.SavePNG(fs.Arg(1), scheme, placements); err != nil {
		fail(log, "saving png", err)
	}
	log.Info("wrote image", zap.String("path", fs.Arg(1)))
}

func cmdGenerate(args []string) {
	fs, common := newFlags("generate")
	cfgPath := fs.String("config", "", "Generator YAML file")
	seed := fs.Int64("seed", 0, "Seed (random if 0)")
	width := fs.Int("width", 0, "Width in tiles")
	height := fs.Int("height", 0, "Height in tiles")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: citygrid generate [-config g.yaml] [-seed N] <out.json>")
		os.Exit(1)
	}
	log := common.logger()
	defer log.Sync()

	cfg := citygrid.DefaultGeneratorConfig()
	if *cfgPath != "" {
		var err error
		cfg, err = citygrid.LoadGeneratorConfig(*cfgPath)
		if err != nil {
			fail(log, "loading generator config", err)
		}
	}
	// flags win over the file
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}

	spec, err := citygrid.Generate(cfg, log)
	if err != nil {
		fail(log, "generating", err)
	}
	if err := spec.Save(fs.Arg(0)); err != nil {
		fail(log, "saving spec", err)
	}
	log.Info("wrote spec", zap.String("path", fs.Arg(0)), zap.Int64("seed", spec.Seed), zap.Int("roads", len(spec.Roads)))
}

func cmdExport(args []string) {
	fs, common := newFlags("export")
	fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: citygrid export <spec.json> <out.json>")
		os.Exit(1)
	}
	log := common.logger()
	defer log.Sync()

	c := loadMap(log, fs.Arg(0))
	if err := c.ExportSpec().Save(fs.Arg(1)); err != nil {
		fail(log, "saving spec", err)
	}
	log.Info("wrote spec", zap.String("path", fs.Arg(1)), zap.Int("roads", len(c.Roads())))
}
