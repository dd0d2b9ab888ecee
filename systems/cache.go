package systems

import (
	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
)

// Cached config values for hot paths. Config lookups hit a pointer chain and
// float64->float32 conversions; the systems run these numbers thousands of
// times per tick, so they are snapshotted once at startup.
var (
	cacheInitialized bool

	// Flocking
	cachedWanderDistance    float32
	cachedWanderRadius      float32
	cachedWanderJitter      float32
	cachedWanderVerticalMax float32
	cachedSeparationEps     float32
	cachedLateralBias       float32
	cachedBoundaryForce     float32

	// Hunting
	cachedVisionRange     float32
	cachedVisionInterval  float32
	cachedForgetTimeout   float32
	cachedAttackRangeSq   float32
	cachedDamagePerSecond float32
	cachedKillReward      float32
	cachedPursuitForce    float32
	cachedFleeForce       float32
	cachedFearRadius      float32
	cachedPredatorDrain   float32

	// Lifecycle
	cachedStarvationThreshold float32
	cachedStarvationRate      float32
	cachedWellFedThreshold    float32
	cachedRegenRate           float32
	cachedMetabolicCost       float32
	cachedGrazeRate           float32
	cachedSpawnThreshold      float32
	cachedSpawnCost           float32
	cachedSpawnCooldown       float32
	cachedSpawnRadius         float32

	// Movement
	cachedMinSpeedKick   float32
	cachedSemiStatDamp   float32
	cachedPulseFrequency float32
	cachedPulseStrength  float32
	cachedBuoyancyForce  float32
	cachedBottomOffset   float32

	// Per-type population caps, indexed by components.CreatureType.
	cachedPopulationCap [components.NumCreatureTypes]int
)

// InitCache snapshots config values used in hot paths. Must be called after
// config.Init and before any system Update.
func InitCache() {
	cfg := config.Cfg()

	cachedWanderDistance = float32(cfg.Flocking.WanderDistance)
	cachedWanderRadius = float32(cfg.Flocking.WanderRadius)
	cachedWanderJitter = float32(cfg.Flocking.WanderJitter)
	cachedWanderVerticalMax = float32(cfg.Flocking.WanderVerticalMax)
	cachedSeparationEps = float32(cfg.Flocking.SeparationEpsilon)
	cachedLateralBias = float32(cfg.Flocking.LateralBias)
	cachedBoundaryForce = float32(cfg.World.BoundaryForce)

	cachedVisionRange = float32(cfg.Hunting.VisionRange)
	cachedVisionInterval = float32(cfg.Hunting.VisionCheckInterval)
	cachedForgetTimeout = float32(cfg.Hunting.ForgetTimeout)
	attackRange := float32(cfg.Hunting.AttackRange)
	cachedAttackRangeSq = attackRange * attackRange
	cachedDamagePerSecond = float32(cfg.Hunting.DamagePerSecond)
	cachedKillReward = float32(cfg.Hunting.KillReward)
	cachedPursuitForce = float32(cfg.Hunting.PursuitForce)
	cachedFleeForce = float32(cfg.Hunting.FleeForce)
	cachedFearRadius = float32(cfg.Hunting.FearRadius)
	cachedPredatorDrain = float32(cfg.Hunting.PredatorEnergyDrain)

	cachedStarvationThreshold = float32(cfg.Lifecycle.StarvationThreshold)
	cachedStarvationRate = float32(cfg.Lifecycle.StarvationRate)
	cachedWellFedThreshold = float32(cfg.Lifecycle.WellFedThreshold)
	cachedRegenRate = float32(cfg.Lifecycle.RegenRate)
	cachedMetabolicCost = float32(cfg.Lifecycle.MetabolicCost)
	cachedGrazeRate = float32(cfg.Lifecycle.GrazeRate)
	cachedSpawnThreshold = float32(cfg.Lifecycle.SpawnThreshold)
	cachedSpawnCost = float32(cfg.Lifecycle.SpawnCost)
	cachedSpawnCooldown = float32(cfg.Lifecycle.SpawnCooldown)
	cachedSpawnRadius = float32(cfg.Lifecycle.SpawnRadius)

	cachedMinSpeedKick = float32(cfg.Lifecycle.MinSpeedKick)
	cachedSemiStatDamp = float32(cfg.Lifecycle.SemiStationaryDamp)
	cachedPulseFrequency = float32(cfg.Lifecycle.PulseFrequency)
	cachedPulseStrength = float32(cfg.Lifecycle.PulseStrength)
	cachedBuoyancyForce = float32(cfg.Lifecycle.BuoyancyForce)
	cachedBottomOffset = float32(cfg.World.BottomOffset)

	for i := range cachedPopulationCap {
		cachedPopulationCap[i] = 0
	}
	for _, sp := range cfg.Species {
		if t, ok := components.ParseCreatureType(sp.Type); ok {
			cachedPopulationCap[t] = sp.PopulationCap
		}
	}

	cacheInitialized = true
}

// PopulationCap returns the configured live-population cap for a type.
func PopulationCap(t components.CreatureType) int {
	return cachedPopulationCap[t]
}

// WorldBounds builds the simulation Bounds from the loaded config.
func WorldBounds() Bounds {
	cfg := config.Cfg()
	return Bounds{
		HalfX:    float32(cfg.World.HalfWidth),
		HalfZ:    float32(cfg.World.HalfBreadth),
		FloorY:   float32(cfg.World.FloorDepth),
		SurfaceY: float32(cfg.World.SurfaceDepth),
	}
}
