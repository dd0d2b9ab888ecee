package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/forbiddenlink/ocean-simulator-sub000/config"
	"github.com/forbiddenlink/ocean-simulator-sub000/sim"
	"github.com/forbiddenlink/ocean-simulator-sub000/telemetry"
	"github.com/forbiddenlink/ocean-simulator-sub000/viewer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(config.Cfg()); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	s := sim.New(rngSeed, output)

	slog.Info("starting simulation",
		"seed", rngSeed,
		"headless", *headless,
		"max_ticks", *maxTicks,
	)

	if *headless {
		runHeadless(s, *maxTicks)
		return
	}

	v := viewer.New(s)
	defer v.Close()
	v.Run(*maxTicks)
}

func runHeadless(s *sim.Simulation, maxTicks int64) {
	for {
		s.Step()
		if maxTicks > 0 && s.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", s.Tick(), "alive", s.TotalAlive())
			return
		}
	}
}
