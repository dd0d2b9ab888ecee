// Package sim owns the simulation loop: entity creation, system ordering,
// structural changes, and telemetry sampling.
package sim

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
)

// Factory creates fully wired creature entities from species configs.
type Factory struct {
	world  *ecs.World
	mapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Creature,
		components.Vitals,
		components.Steering,
		components.Behavior,
	]
	motionMap *ecs.Map[components.Motion]
	rng       *rand.Rand
}

// NewFactory creates a factory bound to the world.
func NewFactory(w *ecs.World, rng *rand.Rand) *Factory {
	return &Factory{
		world: w,
		mapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Creature,
			components.Vitals,
			components.Steering,
			components.Behavior,
		](w),
		motionMap: ecs.NewMap[components.Motion](w),
		rng:       rng,
	}
}

// Spawn creates one creature of the given species at pos. vitalsFrac sets the
// initial health and energy as a fraction of the species maximums (1 for the
// starting population, lifecycle.offspring_vitals for newborns). desyncRepro
// randomizes the reproduction cooldown so an initial population does not
// reproduce in lockstep; offspring get the full cooldown as a maturity delay.
func (f *Factory) Spawn(sp *config.SpeciesConfig, t components.CreatureType, variant uint8, pos components.Vec3, vitalsFrac float32, desyncRepro bool) ecs.Entity {
	cfg := config.Cfg()

	caps := capsFor(sp)

	position := components.Position{Vec3: pos}
	velocity := components.Velocity{}
	accel := components.Acceleration{}

	creature := components.Creature{
		Type:         t,
		Variant:      variant,
		IsPredator:   sp.Predator,
		IsAggressive: sp.Aggressive,
		Caps:         caps,
	}

	cooldown := float32(cfg.Lifecycle.SpawnCooldown)
	if desyncRepro {
		cooldown *= f.rng.Float32()
	}
	vitals := components.Vitals{
		Health:        float32(sp.MaxHealth) * vitalsFrac,
		MaxHealth:     float32(sp.MaxHealth),
		Energy:        float32(sp.MaxEnergy) * vitalsFrac,
		MaxEnergy:     float32(sp.MaxEnergy),
		ReproCooldown: cooldown,
		Alive:         true,
	}

	steering := components.Steering{
		SeparationW:      float32(sp.SeparationWeight),
		AlignmentW:       float32(sp.AlignmentWeight),
		CohesionW:        float32(sp.CohesionWeight),
		WanderW:          float32(sp.WanderWeight),
		PerceptionRadius: float32(sp.PerceptionRadius),
		SeparationRadius: float32(sp.SeparationRadius),
		MaxSpeed:         float32(sp.MaxSpeed),
		MinSpeed:         float32(sp.MinSpeed),
		MaxForce:         float32(sp.MaxForce),
		Drag:             float32(sp.Drag),
		DepthMin:         float32(sp.PreferredDepthMin),
		DepthMax:         float32(sp.PreferredDepthMax),
		DepthTolerance:   float32(sp.DepthTolerance),
	}

	// Random vision phase staggers acquisition scans across the population.
	behavior := components.Behavior{
		VisionTimer: f.rng.Float32() * float32(cfg.Hunting.VisionCheckInterval),
	}

	entity := f.mapper.NewEntity(&position, &velocity, &accel, &creature, &vitals, &steering, &behavior)

	if !caps.Has(components.CapStationary) {
		motion := components.Motion{
			WanderTheta: f.rng.Float32() * 2 * math.Pi,
			PulsePhase:  f.rng.Float32() * 2 * math.Pi,
		}
		if caps.Has(components.CapBurstGlide) {
			motion.Initialized = true
			motion.Phase = components.PhaseGlide
			motion.BurstDuration = float32(sp.BurstDuration)
			motion.GlideDuration = float32(sp.GlideDuration)
			motion.BurstBoost = float32(sp.BurstBoost)
			motion.PhaseTime = f.rng.Float32() * motion.GlideDuration
		}
		f.motionMap.Add(entity, &motion)
	}

	return entity
}

// Remove deletes an entity and all its components.
func (f *Factory) Remove(entity ecs.Entity) {
	f.world.RemoveEntity(entity)
}

// capsFor derives the capability bitset from a species config. Which systems
// touch an entity is decided here, once, at creation time.
func capsFor(sp *config.SpeciesConfig) components.Capability {
	var caps components.Capability

	switch sp.Locomotion {
	case "sessile":
		return components.CapStationary
	case "crawl":
		caps = caps.Add(components.CapSemiStationary)
	case "pulse":
		caps = caps.Add(components.CapPulses)
	}

	if sp.SeparationWeight > 0 || sp.AlignmentWeight > 0 ||
		sp.CohesionWeight > 0 || sp.WanderWeight > 0 {
		caps = caps.Add(components.CapFlocks)
	}
	if sp.Predator && sp.Aggressive {
		caps = caps.Add(components.CapHunts)
	}
	if !sp.Predator && sp.MaxSpeed > 0 {
		caps = caps.Add(components.CapFlees)
	}
	if sp.BurstDuration > 0 && sp.GlideDuration > 0 {
		caps = caps.Add(components.CapBurstGlide)
	}

	return caps
}
