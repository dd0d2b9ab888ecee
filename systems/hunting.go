package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
)

// HuntingSystem runs the predator-prey decision logic: target acquisition on
// a staggered vision timer, pursuit of the last seen position, close-range
// attacks, and the prey-side threat scan and flee response.
//
// Kills are applied as Vitals.Alive = false; the corpse is collected by the
// population system at the end of the tick, so entity handles held elsewhere
// stay valid for the rest of this tick.
type HuntingSystem struct {
	world  *ecs.World
	filter ecs.Filter6[components.Position, components.Velocity, components.Acceleration, components.Creature, components.Vitals, components.Behavior]

	posMap      *ecs.Map1[components.Position]
	vitalsMap   *ecs.Map1[components.Vitals]
	creatureMap *ecs.Map1[components.Creature]

	neighborBuf []ecs.Entity

	// Kills counts successful takedowns since the last telemetry drain.
	Kills int
}

// NewHuntingSystem creates the hunting system.
func NewHuntingSystem(w *ecs.World) *HuntingSystem {
	return &HuntingSystem{
		world:       w,
		filter:      *ecs.NewFilter6[components.Position, components.Velocity, components.Acceleration, components.Creature, components.Vitals, components.Behavior](w),
		posMap:      ecs.NewMap1[components.Position](w),
		vitalsMap:   ecs.NewMap1[components.Vitals](w),
		creatureMap: ecs.NewMap1[components.Creature](w),
		neighborBuf: make([]ecs.Entity, 0, 64),
	}
}

// Update advances predator and prey behavior by dt seconds.
func (s *HuntingSystem) Update(grid *SpatialGrid, dt float32) {
	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, acc, creature, vitals, behavior := query.Get()

		if !vitals.Alive {
			continue
		}

		behavior.VisionTimer -= dt
		scan := behavior.VisionTimer <= 0
		if scan {
			behavior.VisionTimer += cachedVisionInterval
		}

		if creature.Caps.Has(components.CapHunts) {
			s.updatePredator(grid, entity, pos, acc, creature, vitals, behavior, scan, dt)
		}
		if creature.Caps.Has(components.CapFlees) {
			s.updatePrey(grid, entity, pos, acc, behavior, scan, dt)
		}
	}
}

func (s *HuntingSystem) updatePredator(grid *SpatialGrid, entity ecs.Entity,
	pos *components.Position, acc *components.Acceleration,
	creature *components.Creature, vitals *components.Vitals,
	behavior *components.Behavior, scan bool, dt float32) {

	// Hunting is metabolically expensive beyond the baseline cost.
	vitals.Energy -= cachedPredatorDrain * dt
	if vitals.Energy < 0 {
		vitals.Energy = 0
	}

	if behavior.HasTarget() && !s.targetValid(behavior.Target) {
		behavior.ClearTarget()
	}

	if !behavior.HasTarget() && scan {
		if target, tpos, ok := s.nearestPrey(grid, entity, pos.Vec3, creature.Type); ok {
			behavior.Target = target
			behavior.LastSeen = tpos
			behavior.SinceSeen = 0
			behavior.Mode = components.ModePursuing
		}
	}

	if !behavior.HasTarget() {
		behavior.Mode = components.ModeIdle
		return
	}

	tpos := s.posMap.Get(behavior.Target)
	if tpos == nil {
		behavior.ClearTarget()
		return
	}

	// Refresh memory while the target stays in sight; otherwise chase the
	// last seen position until the memory expires.
	distSq := tpos.Vec3.Sub(pos.Vec3).LenSq()
	if distSq <= cachedVisionRange*cachedVisionRange {
		behavior.LastSeen = tpos.Vec3
		behavior.SinceSeen = 0
	} else {
		behavior.SinceSeen += dt
		if behavior.SinceSeen > cachedForgetTimeout {
			behavior.ClearTarget()
			return
		}
	}

	if distSq <= cachedAttackRangeSq {
		behavior.Mode = components.ModeAttacking
		s.attack(behavior, vitals, dt)
		return
	}

	behavior.Mode = components.ModePursuing
	dir := behavior.LastSeen.Sub(pos.Vec3).Normalized()
	acc.Vec3 = acc.Vec3.Add(dir.Scale(cachedPursuitForce))
}

// attack damages the current target and credits the kill reward when it dies.
func (s *HuntingSystem) attack(behavior *components.Behavior, vitals *components.Vitals, dt float32) {
	tvitals := s.vitalsMap.Get(behavior.Target)
	if tvitals == nil || !tvitals.Alive {
		behavior.ClearTarget()
		return
	}

	tvitals.Health -= cachedDamagePerSecond * dt
	if tvitals.Health > 0 {
		return
	}

	tvitals.Health = 0
	tvitals.Alive = false
	vitals.Energy += cachedKillReward
	if vitals.Energy > vitals.MaxEnergy {
		vitals.Energy = vitals.MaxEnergy
	}
	s.Kills++
	behavior.ClearTarget()
}

func (s *HuntingSystem) updatePrey(grid *SpatialGrid, entity ecs.Entity,
	pos *components.Position, acc *components.Acceleration,
	behavior *components.Behavior, scan bool, dt float32) {

	if scan {
		if tpos, ok := s.nearestPredator(grid, entity, pos.Vec3); ok {
			behavior.Mode = components.ModeFleeing
			behavior.LastSeen = tpos
		} else if behavior.Mode == components.ModeFleeing {
			behavior.Mode = components.ModeIdle
		}
	}

	// Between scans a fleeing entity keeps running from the last known
	// threat position.
	if behavior.Mode != components.ModeFleeing {
		return
	}

	away := pos.Vec3.Sub(behavior.LastSeen).Normalized()
	acc.Vec3 = acc.Vec3.Add(away.Scale(cachedFleeForce))
}

// nearestPrey scans the vision range for the closest living non-predator of
// a different type.
func (s *HuntingSystem) nearestPrey(grid *SpatialGrid, self ecs.Entity, pos components.Vec3, selfType components.CreatureType) (ecs.Entity, components.Vec3, bool) {
	s.neighborBuf = grid.NeighborsInto(s.neighborBuf[:0], pos.X, pos.Y, pos.Z, cachedVisionRange, self)

	var best ecs.Entity
	var bestPos components.Vec3
	bestSq := cachedVisionRange * cachedVisionRange
	found := false

	for _, other := range s.neighborBuf {
		ocreature := s.creatureMap.Get(other)
		if ocreature == nil || ocreature.IsPredator || ocreature.Type == selfType {
			continue
		}
		ovitals := s.vitalsMap.Get(other)
		if ovitals == nil || !ovitals.Alive {
			continue
		}
		opos := s.posMap.Get(other)
		if opos == nil {
			continue
		}
		distSq := opos.Vec3.Sub(pos).LenSq()
		if distSq <= bestSq {
			best = other
			bestPos = opos.Vec3
			bestSq = distSq
			found = true
		}
	}

	return best, bestPos, found
}

// nearestPredator scans the fear radius for the closest living predator and
// returns its position.
func (s *HuntingSystem) nearestPredator(grid *SpatialGrid, self ecs.Entity, pos components.Vec3) (components.Vec3, bool) {
	s.neighborBuf = grid.NeighborsInto(s.neighborBuf[:0], pos.X, pos.Y, pos.Z, cachedFearRadius, self)

	var bestPos components.Vec3
	bestSq := cachedFearRadius * cachedFearRadius
	found := false

	for _, other := range s.neighborBuf {
		ocreature := s.creatureMap.Get(other)
		if ocreature == nil || !ocreature.IsPredator {
			continue
		}
		ovitals := s.vitalsMap.Get(other)
		if ovitals == nil || !ovitals.Alive {
			continue
		}
		opos := s.posMap.Get(other)
		if opos == nil {
			continue
		}
		distSq := opos.Vec3.Sub(pos).LenSq()
		if distSq <= bestSq {
			bestPos = opos.Vec3
			bestSq = distSq
			found = true
		}
	}

	return bestPos, found
}

// targetValid reports whether a remembered target still exists and is alive.
func (s *HuntingSystem) targetValid(target ecs.Entity) bool {
	if !s.world.Alive(target) {
		return false
	}
	vitals := s.vitalsMap.Get(target)
	return vitals != nil && vitals.Alive
}
