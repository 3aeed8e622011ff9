package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"voloctree/pkg/config"
	"voloctree/pkg/octree"
	"voloctree/pkg/visualization"
	"voloctree/pkg/volume"
)

func main() {
	inputDir := flag.String("input", "", "Directory containing JPEG volume slices")
	configPath := flag.String("config", "voloctree.yaml", "Path to YAML configuration file")
	minCube := flag.Int("min-cube", 0, "Smallest octree cell size in voxels (overrides config)")
	rangeMin := flag.Float64("range-min", -1, "Normalized lower intensity bound (overrides config)")
	rangeMax := flag.Float64("range-max", -1, "Normalized upper intensity bound (overrides config)")
	maskedDir := flag.String("masked-dir", "", "Directory to save masked slice renderings (overrides config)")
	flag.Parse()

	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *minCube > 0 {
		cfg.Octree.MinCubeSize = *minCube
	}
	if *rangeMin >= 0 {
		cfg.Range.Min = *rangeMin
		cfg.Range.Auto = false
	}
	if *rangeMax >= 0 {
		cfg.Range.Max = *rangeMax
		cfg.Range.Auto = false
	}
	if *maskedDir != "" {
		cfg.Output.MaskedSlicesDir = *maskedDir
	}

	level := zerolog.InfoLevel
	if cfg.Output.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	log.Info().Str("dir", *inputDir).Msg("loading volume slices")
	vol, err := volume.FromSliceDir(*inputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load volume")
	}
	log.Info().
		Int("width", vol.Width()).
		Int("height", vol.Height()).
		Int("slices", vol.Slices()).
		Msg("volume loaded")

	// Build the index in the background and poll for readiness. Nothing may
	// classify or enumerate before Usable reports true.
	tree := octree.NewFromVolume(vol, cfg.Octree.MinCubeSize)
	defer tree.Close()

	for !tree.Usable() {
		if err := tree.FillErr(); err != nil {
			log.Fatal().Err(err).Msg("octree fill failed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	tree.SetLogger(log)

	lo, hi := cfg.Range.Min, cfg.Range.Max
	if cfg.Range.Auto {
		min, max := volume.SuggestRange(vol, cfg.Range.DeviationFactor)
		scale := float64(volume.MaxValue(vol))
		lo, hi = float64(min)/scale, float64(max)/scale
		log.Info().Float64("min", lo).Float64("max", hi).Msg("derived inside range from volume statistics")
	}

	if !tree.SetInsideRangeNormalized(lo, hi) {
		log.Warn().Msg("range unchanged, nothing to do")
		return
	}
	boxes := tree.Enumerate()

	viewer := visualization.NewViewer(vol, boxes)
	stats := viewer.CullStats()
	fmt.Printf("Octree: %d layers, min cube size %d\n", tree.NumLayers(), cfg.Octree.MinCubeSize)
	fmt.Printf("Inside range [%.2f..%.2f]: %d boxes covering %d voxels (%.1f%% of volume)\n",
		lo, hi, stats.Boxes, stats.CoveredVoxels, 100*stats.CoveredFraction)
	fmt.Printf("Voxels satisfying range: %d\n", tree.VoxelsInside())

	if cfg.Output.MaskedSlicesDir != "" {
		log.Info().Str("dir", cfg.Output.MaskedSlicesDir).Msg("saving masked slices")
		if err := viewer.SaveMaskedSequence(cfg.Output.MaskedSlicesDir); err != nil {
			log.Fatal().Err(err).Msg("failed to save masked slices")
		}
	}
}
