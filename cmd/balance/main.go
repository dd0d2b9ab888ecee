// Command balance searches for ecosystem parameters that keep every species
// alive. It runs short headless simulations across several seeds and scores
// how far the final populations drift from their starting counts, then
// minimizes that score with CMA-ES.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/optimize"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
	"github.com/forbiddenlink/ocean-simulator-sub000/sim"
)

// paramSpec defines one tunable knob: its bounds and how to apply a value to
// the live config.
type paramSpec struct {
	name     string
	min, max float64
	apply    func(cfg *config.Config, v float64)
	read     func(cfg *config.Config) float64
}

var specs = []paramSpec{
	{
		name: "pursuit_force", min: 5, max: 30,
		apply: func(c *config.Config, v float64) { c.Hunting.PursuitForce = v },
		read:  func(c *config.Config) float64 { return c.Hunting.PursuitForce },
	},
	{
		name: "flee_force", min: 5, max: 40,
		apply: func(c *config.Config, v float64) { c.Hunting.FleeForce = v },
		read:  func(c *config.Config) float64 { return c.Hunting.FleeForce },
	},
	{
		name: "kill_reward", min: 10, max: 100,
		apply: func(c *config.Config, v float64) { c.Hunting.KillReward = v },
		read:  func(c *config.Config) float64 { return c.Hunting.KillReward },
	},
	{
		name: "predator_energy_drain", min: 0.1, max: 3,
		apply: func(c *config.Config, v float64) { c.Hunting.PredatorEnergyDrain = v },
		read:  func(c *config.Config) float64 { return c.Hunting.PredatorEnergyDrain },
	},
	{
		name: "metabolic_cost", min: 0.05, max: 1.5,
		apply: func(c *config.Config, v float64) { c.Lifecycle.MetabolicCost = v },
		read:  func(c *config.Config) float64 { return c.Lifecycle.MetabolicCost },
	},
	{
		name: "spawn_cooldown", min: 5, max: 90,
		apply: func(c *config.Config, v float64) { c.Lifecycle.SpawnCooldown = v },
		read:  func(c *config.Config) float64 { return c.Lifecycle.SpawnCooldown },
	},
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "balance_out", "Directory for the search log and best config")
	maxEvals := flag.Int("max-evals", 200, "Objective evaluations budget")
	ticks := flag.Int64("ticks", 18000, "Simulation ticks per evaluation (18000 = 5 sim minutes)")
	seeds := flag.Int("seeds", 3, "Seeds averaged per evaluation")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("failed to create output dir", "error", err)
		os.Exit(1)
	}

	logFile, err := os.Create(filepath.Join(*outputDir, "search_log.csv"))
	if err != nil {
		slog.Error("failed to create search log", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "score"}
	for _, spec := range specs {
		header = append(header, spec.name)
	}
	logWriter.Write(header)

	eval := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := denormalize(x)
			applyParams(raw)

			score := evaluate(*ticks, *seeds)
			eval++

			row := []string{fmt.Sprint(eval), fmt.Sprintf("%.4f", score)}
			for _, v := range raw {
				row = append(row, fmt.Sprintf("%.4f", v))
			}
			logWriter.Write(row)
			logWriter.Flush()

			slog.Info("evaluated", "eval", eval, "score", score)
			return score
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   4 + 3*len(specs)/2,
	}

	initX := make([]float64, len(specs))
	cfg := config.Cfg()
	for i, spec := range specs {
		initX[i] = normalizeOne(spec.read(cfg), spec)
	}

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}

	applyParams(denormalize(result.X))
	bestPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := config.Cfg().WriteYAML(bestPath); err != nil {
		slog.Error("failed to write best config", "error", err)
		os.Exit(1)
	}

	slog.Info("search complete",
		"evals", eval,
		"best_score", result.F,
		"best_config", bestPath,
	)
}

// evaluate runs headless simulations and scores population stability. Lower
// is better: 0 means every species ended exactly at its starting count.
func evaluate(ticks int64, seeds int) float64 {
	total := 0.0
	for seed := 1; seed <= seeds; seed++ {
		s := sim.New(int64(seed)*7919, nil)
		for s.Tick() < ticks {
			s.Step()
		}
		total += scoreRun(s)
	}
	return total / float64(seeds)
}

// scoreRun measures drift from the configured initial counts. Extinction of
// a configured species dominates everything else.
func scoreRun(s *sim.Simulation) float64 {
	cfg := config.Cfg()
	counts := s.Counts()

	score := 0.0
	for _, sp := range cfg.Species {
		if sp.InitialCount == 0 {
			continue
		}
		t, ok := components.ParseCreatureType(sp.Type)
		if !ok {
			continue
		}
		n := counts[t]
		if n == 0 {
			score += 100
			continue
		}
		drift := float64(n-sp.InitialCount) / float64(sp.InitialCount)
		if drift < 0 {
			drift = -drift
		}
		score += drift
	}
	return score
}

func applyParams(raw []float64) {
	cfg := config.Cfg()
	for i, spec := range specs {
		spec.apply(cfg, raw[i])
	}
}

// denormalize maps the optimizer's [0,1] space to raw parameter values,
// clamping so CMA-ES excursions cannot produce nonsense configs.
func denormalize(x []float64) []float64 {
	raw := make([]float64, len(specs))
	for i, spec := range specs {
		v := x[i]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		raw[i] = spec.min + v*(spec.max-spec.min)
	}
	return raw
}

func normalizeOne(v float64, spec paramSpec) float64 {
	n := (v - spec.min) / (spec.max - spec.min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
