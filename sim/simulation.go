package sim

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
	"github.com/forbiddenlink/ocean-simulator-sub000/systems"
	"github.com/forbiddenlink/ocean-simulator-sub000/telemetry"
)

// Simulation owns the ECS world and drives the fixed-timestep loop. One Step
// call advances the world by exactly one tick of config physics.dt seconds.
//
// Within a tick the phases run in a fixed order: spatial grid rebuild,
// flocking, hunting, population lifecycle, locomotion animation, movement
// integration, then structural changes (removals and spawns). Structural
// changes never happen while a query is iterating.
type Simulation struct {
	world   *ecs.World
	factory *Factory
	grid    *systems.SpatialGrid
	bounds  systems.Bounds
	rng     *rand.Rand

	flocking   *systems.FlockingSystem
	hunting    *systems.HuntingSystem
	population *systems.PopulationSystem
	movement   *systems.MovementSystem

	gridFilter   ecs.Filter2[components.Position, components.Vitals]
	censusFilter ecs.Filter2[components.Creature, components.Vitals]
	glideFilter  ecs.Filter2[components.Creature, components.Velocity]
	viewFilter   *snapshotFilter
	motionMap    *ecs.Map[components.Motion]

	collector *telemetry.Collector
	perf      *telemetry.PerfTracker
	output    *telemetry.OutputManager

	// speciesByType maps a creature type to its config entry for offspring
	// spawning. Nil entries mean the type is not configured.
	speciesByType [components.NumCreatureTypes]*config.SpeciesConfig

	tick    int64
	elapsed float64
	dt      float32

	// Per-window energy sample buffers, reused between windows.
	preyEnergy []float64
	predEnergy []float64
}

// New creates a simulation from the loaded config and spawns the initial
// population. output may be nil to disable CSV artifacts.
func New(seed int64, output *telemetry.OutputManager) *Simulation {
	cfg := config.Cfg()
	systems.InitCache()

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(seed))
	bounds := systems.WorldBounds()

	s := &Simulation{
		world:   world,
		factory: NewFactory(world, rng),
		grid:    systems.NewSpatialGrid(float32(cfg.Physics.GridCellSize), bounds),
		bounds:  bounds,
		rng:     rng,

		flocking:   systems.NewFlockingSystem(world, bounds, rng),
		hunting:    systems.NewHuntingSystem(world),
		population: systems.NewPopulationSystem(world, rng),
		movement:   systems.NewMovementSystem(world, bounds, rng),

		gridFilter:   *ecs.NewFilter2[components.Position, components.Vitals](world),
		censusFilter: *ecs.NewFilter2[components.Creature, components.Vitals](world),
		glideFilter:  *ecs.NewFilter2[components.Creature, components.Velocity](world),
		motionMap:    ecs.NewMap[components.Motion](world),

		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		perf:      telemetry.NewPerfTracker(cfg.Telemetry.PerfWindow),
		output:    output,

		dt: cfg.Derived.DT32,
	}

	for i := range cfg.Species {
		sp := &cfg.Species[i]
		t, ok := components.ParseCreatureType(sp.Type)
		if !ok {
			slog.Warn("species has unknown type, skipping", "name", sp.Name, "type", sp.Type)
			continue
		}
		s.speciesByType[t] = sp
	}

	s.spawnInitialPopulation()
	return s
}

// spawnInitialPopulation seeds every configured species at random positions
// inside its preferred depth band.
func (s *Simulation) spawnInitialPopulation() {
	for t, sp := range s.speciesByType {
		if sp == nil {
			continue
		}
		for i := 0; i < sp.InitialCount; i++ {
			pos := components.Vec3{
				X: (s.rng.Float32()*2 - 1) * s.bounds.HalfX,
				Y: float32(sp.PreferredDepthMin) + s.rng.Float32()*float32(sp.PreferredDepthMax-sp.PreferredDepthMin),
				Z: (s.rng.Float32()*2 - 1) * s.bounds.HalfZ,
			}
			variant := uint8(s.rng.Intn(sp.Variants))
			s.factory.Spawn(sp, components.CreatureType(t), variant, pos, 1, true)
		}
	}

	slog.Info("initial population spawned", "total", s.TotalAlive())
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	s.tick++
	s.elapsed += float64(s.dt)

	s.perf.Begin(telemetry.PhaseGrid)
	s.rebuildGrid()
	s.perf.End(telemetry.PhaseGrid)

	s.perf.Begin(telemetry.PhaseFlocking)
	s.flocking.Update(s.grid, s.dt)
	s.perf.End(telemetry.PhaseFlocking)

	s.perf.Begin(telemetry.PhaseHunting)
	s.hunting.Update(s.grid, s.dt)
	s.perf.End(telemetry.PhaseHunting)

	s.perf.Begin(telemetry.PhasePopulation)
	s.population.Update(s.dt)
	s.perf.End(telemetry.PhasePopulation)

	s.perf.Begin(telemetry.PhaseMovement)
	s.advanceGlideCycles(s.dt)
	s.movement.Update(s.dt)
	s.perf.End(telemetry.PhaseMovement)

	s.applyStructuralChanges()
	s.sampleTelemetry()
}

// rebuildGrid reindexes every living entity at its current position.
func (s *Simulation) rebuildGrid() {
	s.grid.Clear()
	query := s.gridFilter.Query()
	for query.Next() {
		pos, vitals := query.Get()
		if vitals.Alive {
			s.grid.Insert(query.Entity(), pos.X, pos.Y, pos.Z)
		}
	}
}

// applyStructuralChanges removes dead entities and creates queued offspring.
// Runs after all system queries have finished iterating.
func (s *Simulation) applyStructuralChanges() {
	for _, entity := range s.population.Removals() {
		s.grid.Remove(entity)
		s.factory.Remove(entity)
	}

	for _, req := range s.population.Spawns() {
		sp := s.speciesByType[req.Type]
		if sp == nil {
			slog.Warn("spawn request for unconfigured type", "type", req.Type.String())
			continue
		}
		pos := s.clampToWorld(req.Pos)
		s.factory.Spawn(sp, req.Type, req.Variant, pos, float32(config.Cfg().Lifecycle.OffspringVitals), false)
	}

	s.population.Reset()
}

// sampleTelemetry drains the per-tick event counters and closes the stats
// window when due.
func (s *Simulation) sampleTelemetry() {
	s.collector.RecordBirths(s.population.Births)
	s.collector.RecordDeaths(s.population.Deaths)
	s.collector.RecordKills(s.hunting.Kills)
	s.population.Births = 0
	s.population.Deaths = 0
	s.hunting.Kills = 0

	if rec, ok := s.perf.EndTick(s.tick, s.TotalAlive()); ok {
		if err := s.output.WritePerf(rec); err != nil {
			slog.Error("perf write failed", "error", err)
		}
	}

	if !s.collector.WindowEnded(s.tick) {
		return
	}

	s.preyEnergy = s.preyEnergy[:0]
	s.predEnergy = s.predEnergy[:0]
	preyCount, predCount := 0, 0

	query := s.censusFilter.Query()
	for query.Next() {
		creature, vitals := query.Get()
		if !vitals.Alive {
			continue
		}
		frac := float64(vitals.Energy / vitals.MaxEnergy)
		if creature.IsPredator {
			predCount++
			s.predEnergy = append(s.predEnergy, frac)
		} else {
			preyCount++
			s.preyEnergy = append(s.preyEnergy, frac)
		}
	}

	ws := s.collector.EndWindow(s.tick, preyCount, predCount, s.preyEnergy, s.predEnergy)
	ws.Log()
	if err := s.output.WriteStats(ws); err != nil {
		slog.Error("stats write failed", "error", err)
	}
}

// clampToWorld keeps a spawn position inside the world volume.
func (s *Simulation) clampToWorld(p components.Vec3) components.Vec3 {
	if p.X > s.bounds.HalfX {
		p.X = s.bounds.HalfX
	} else if p.X < -s.bounds.HalfX {
		p.X = -s.bounds.HalfX
	}
	if p.Z > s.bounds.HalfZ {
		p.Z = s.bounds.HalfZ
	} else if p.Z < -s.bounds.HalfZ {
		p.Z = -s.bounds.HalfZ
	}
	if p.Y > s.bounds.SurfaceY {
		p.Y = s.bounds.SurfaceY
	} else if p.Y < s.bounds.FloorY {
		p.Y = s.bounds.FloorY
	}
	return p
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int64 {
	return s.tick
}

// Elapsed returns simulated seconds since the start.
func (s *Simulation) Elapsed() float64 {
	return s.elapsed
}

// Counts returns the living population per creature type.
func (s *Simulation) Counts() [components.NumCreatureTypes]int {
	return s.population.Counts()
}

// TotalAlive returns the number of living entities.
func (s *Simulation) TotalAlive() int {
	total := 0
	query := s.censusFilter.Query()
	for query.Next() {
		_, vitals := query.Get()
		if vitals.Alive {
			total++
		}
	}
	return total
}

// GridStats exposes spatial index occupancy for diagnostics.
func (s *Simulation) GridStats() systems.GridStats {
	return s.grid.Stats()
}
