package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
)

// SpawnRequest asks the factory to create one offspring. Offspring start at
// a fraction of full vitals, configured by lifecycle.offspring_vitals.
type SpawnRequest struct {
	Type    components.CreatureType
	Variant uint8
	Pos     components.Vec3
}

// PopulationSystem runs the per-entity lifecycle: grazing income for
// non-predators, metabolic energy drain, the starvation and regeneration
// health bands, death marking, and reproduction gating. It never mutates the world structurally; dead
// entities and spawn requests are queued and applied by the simulation
// after all queries finish.
type PopulationSystem struct {
	filter ecs.Filter3[components.Position, components.Creature, components.Vitals]
	rng    *rand.Rand

	counts   [components.NumCreatureTypes]int
	removals []ecs.Entity
	spawns   []SpawnRequest

	// Deaths counts entities marked dead this tick from starvation or
	// injuries. Kill-reward accounting lives in HuntingSystem.
	Deaths int
	Births int
}

// NewPopulationSystem creates the population system.
func NewPopulationSystem(w *ecs.World, rng *rand.Rand) *PopulationSystem {
	return &PopulationSystem{
		filter:   *ecs.NewFilter3[components.Position, components.Creature, components.Vitals](w),
		rng:      rng,
		removals: make([]ecs.Entity, 0, 64),
		spawns:   make([]SpawnRequest, 0, 64),
	}
}

// Update advances vitals by dt seconds and queues removals and spawns.
func (s *PopulationSystem) Update(dt float32) {
	s.census()

	query := s.filter.Query()
	for query.Next() {
		pos, creature, vitals := query.Get()

		if !vitals.Alive {
			s.removals = append(s.removals, query.Entity())
			continue
		}

		// Non-predators graze passively; predators only gain energy
		// through kills.
		if !creature.IsPredator {
			vitals.Energy += cachedGrazeRate * dt
			if vitals.Energy > vitals.MaxEnergy {
				vitals.Energy = vitals.MaxEnergy
			}
		}

		vitals.Energy -= cachedMetabolicCost * dt
		if vitals.Energy <= 0 {
			vitals.Energy = 0
			vitals.Alive = false
			s.Deaths++
			s.removals = append(s.removals, query.Entity())
			continue
		}

		// Health tracks the energy state through two bands with a dead
		// zone between them: starving entities bleed health, well fed
		// ones regenerate, and in between health holds steady.
		energyFrac := vitals.Energy / vitals.MaxEnergy
		switch {
		case energyFrac < cachedStarvationThreshold:
			vitals.Health -= cachedStarvationRate * dt
		case energyFrac > cachedWellFedThreshold:
			vitals.Health += cachedRegenRate * dt
			if vitals.Health > vitals.MaxHealth {
				vitals.Health = vitals.MaxHealth
			}
		}

		if vitals.Health <= 0 {
			vitals.Health = 0
			vitals.Alive = false
			s.Deaths++
			s.removals = append(s.removals, query.Entity())
			continue
		}

		if vitals.ReproCooldown > 0 {
			vitals.ReproCooldown -= dt
		}

		s.tryReproduce(pos, creature, vitals, energyFrac)
	}
}

// tryReproduce checks every reproduction gate and queues an offspring when
// all pass. The census count is bumped immediately so multiple parents in the
// same tick cannot overshoot the population cap together.
func (s *PopulationSystem) tryReproduce(pos *components.Position, creature *components.Creature, vitals *components.Vitals, energyFrac float32) {
	if energyFrac < cachedSpawnThreshold {
		return
	}
	if vitals.ReproCooldown > 0 {
		return
	}
	if s.counts[creature.Type] >= PopulationCap(creature.Type) {
		return
	}

	vitals.Energy -= cachedSpawnCost
	if vitals.Energy < 0 {
		vitals.Energy = 0
	}
	vitals.ReproCooldown = cachedSpawnCooldown
	s.counts[creature.Type]++
	s.Births++

	offset := components.Vec3{
		X: (s.rng.Float32()*2 - 1),
		Y: (s.rng.Float32()*2 - 1),
		Z: (s.rng.Float32()*2 - 1),
	}.Normalized().Scale(s.rng.Float32() * cachedSpawnRadius)

	s.spawns = append(s.spawns, SpawnRequest{
		Type:    creature.Type,
		Variant: creature.Variant,
		Pos:     pos.Vec3.Add(offset),
	})
}

// census recounts living entities per type.
func (s *PopulationSystem) census() {
	for i := range s.counts {
		s.counts[i] = 0
	}
	query := s.filter.Query()
	for query.Next() {
		_, creature, vitals := query.Get()
		if vitals.Alive {
			s.counts[creature.Type]++
		}
	}
}

// Counts returns the living population per type as of the last Update.
func (s *PopulationSystem) Counts() [components.NumCreatureTypes]int {
	return s.counts
}

// Removals returns the entities queued for removal this tick.
func (s *PopulationSystem) Removals() []ecs.Entity {
	return s.removals
}

// Spawns returns the offspring queued this tick.
func (s *PopulationSystem) Spawns() []SpawnRequest {
	return s.spawns
}

// Reset clears the per-tick queues. Call after the simulation has applied
// removals and spawns.
func (s *PopulationSystem) Reset() {
	s.removals = s.removals[:0]
	s.spawns = s.spawns[:0]
}
