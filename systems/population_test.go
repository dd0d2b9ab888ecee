package systems

import (
	"testing"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
)

func whaleOpts(energy float32) creatureOpts {
	o := defaultOpts()
	o.creature.Type = components.TypeWhale
	o.vitals = components.Vitals{
		Health: 400, MaxHealth: 400,
		Energy: energy, MaxEnergy: 300,
		Alive: true,
	}
	return o
}

func TestPopulationMetabolicDrain(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	// Predators have no grazing income, so the baseline cost shows directly.
	o := predatorOpts()
	o.vitals.Energy = 30
	e := tw.spawn(components.Vec3{Y: -50}, o)

	ps.Update(1)

	if v := tw.vitals(e); v.Energy >= 30 {
		t.Errorf("existing should cost energy: %f", v.Energy)
	}
}

func TestPopulationEnergyDepletionIsFatal(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := predatorOpts()
	o.vitals.Energy = 0.1
	e := tw.spawn(components.Vec3{Y: -50}, o)

	ps.Update(1)

	v := tw.vitals(e)
	if v.Alive {
		t.Fatalf("creature with no energy left should die")
	}
	if v.Energy != 0 {
		t.Errorf("energy should clamp to zero on death, got %f", v.Energy)
	}
	if ps.Deaths != 1 {
		t.Errorf("deaths = %d, want 1", ps.Deaths)
	}
	if removals := ps.Removals(); len(removals) != 1 || removals[0] != e {
		t.Errorf("starved creature should be queued for removal: %v", removals)
	}
}

func TestPopulationGrazingFeedsNonPredators(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := defaultOpts() // fish
	o.vitals.Energy = 30
	fish := tw.spawn(components.Vec3{Y: -50}, o)

	full := defaultOpts()
	full.vitals.Energy = full.vitals.MaxEnergy
	fed := tw.spawn(components.Vec3{X: 50, Y: -50}, full)

	ps.Update(1)

	if v := tw.vitals(fish); v.Energy <= 30 {
		t.Errorf("grazing income should outpace the metabolic cost: %f", v.Energy)
	}
	if v := tw.vitals(fed); v.Energy > v.MaxEnergy {
		t.Errorf("grazing must not exceed max energy, got %f", v.Energy)
	}
}

func TestPopulationStarvationBleedsHealth(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := defaultOpts()
	o.vitals.Energy = 3 // 5% of 60, well under the starvation threshold
	e := tw.spawn(components.Vec3{Y: -50}, o)

	before := tw.vitals(e).Health
	ps.Update(1)

	if after := tw.vitals(e).Health; after >= before {
		t.Errorf("starving creature should lose health: %f -> %f", before, after)
	}
}

func TestPopulationWellFedRegenerates(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := defaultOpts()
	o.vitals.Health = 20
	o.vitals.Energy = 55 // 92% of 60
	o.vitals.ReproCooldown = 100
	e := tw.spawn(components.Vec3{Y: -50}, o)

	ps.Update(1)

	if after := tw.vitals(e).Health; after <= 20 {
		t.Errorf("well fed creature should regenerate: %f", after)
	}

	// Regen never exceeds max health.
	tw.vitals(e).Health = 39.9
	tw.vitals(e).Energy = 55
	ps.Update(1)
	if v := tw.vitals(e); v.Health > v.MaxHealth {
		t.Errorf("health %f exceeds max %f", v.Health, v.MaxHealth)
	}
}

func TestPopulationDeadZoneHoldsHealth(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := defaultOpts()
	o.vitals.Health = 20
	o.vitals.Energy = 24 // 40%: above starvation, below well fed
	e := tw.spawn(components.Vec3{Y: -50}, o)

	ps.Update(1)

	if after := tw.vitals(e).Health; after != 20 {
		t.Errorf("health should hold steady between the bands: %f", after)
	}
}

func TestPopulationDeathQueuesRemoval(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := defaultOpts()
	o.vitals.Health = 0.5
	o.vitals.Energy = 1 // starving
	e := tw.spawn(components.Vec3{Y: -50}, o)

	ps.Update(1)

	v := tw.vitals(e)
	if v.Alive {
		t.Fatalf("creature at zero health should be dead")
	}
	if v.Health != 0 {
		t.Errorf("health should clamp to zero on death, got %f", v.Health)
	}
	if ps.Deaths != 1 {
		t.Errorf("deaths = %d, want 1", ps.Deaths)
	}
	if removals := ps.Removals(); len(removals) != 1 || removals[0] != e {
		t.Errorf("dead creature should be queued for removal: %v", removals)
	}

	ps.Reset()
	if len(ps.Removals()) != 0 || len(ps.Spawns()) != 0 {
		t.Errorf("reset should clear the queues")
	}
}

func TestPopulationCollectsAlreadyDead(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	o := defaultOpts()
	o.vitals.Alive = false
	e := tw.spawn(components.Vec3{Y: -50}, o)

	ps.Update(1)

	if removals := ps.Removals(); len(removals) != 1 || removals[0] != e {
		t.Errorf("killed creature should be queued for removal: %v", removals)
	}
	if ps.Deaths != 0 {
		t.Errorf("collection of an existing corpse is not a new death")
	}
}

func TestPopulationReproductionGates(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	// Eligible parent: high energy, no cooldown, far under the cap.
	parent := tw.spawn(components.Vec3{X: 10, Y: -50}, whaleOpts(290))
	ps.Update(1.0 / 60.0)

	spawns := ps.Spawns()
	if len(spawns) != 1 {
		t.Fatalf("eligible parent should reproduce, got %d spawns", len(spawns))
	}
	if spawns[0].Type != components.TypeWhale {
		t.Errorf("offspring type = %v, want whale", spawns[0].Type)
	}
	if off := spawns[0].Pos.Sub(tw.pos(parent).Vec3).Len(); off > float32(9) {
		t.Errorf("offspring should spawn near the parent, offset = %f", off)
	}

	v := tw.vitals(parent)
	if v.Energy >= 290-25 {
		t.Errorf("reproduction should cost energy, got %f", v.Energy)
	}
	if v.ReproCooldown <= 0 {
		t.Errorf("reproduction should start the cooldown")
	}
	if ps.Births != 1 {
		t.Errorf("births = %d, want 1", ps.Births)
	}

	// The cooldown gates further reproduction.
	ps.Reset()
	ps.Births = 0
	ps.Update(1.0 / 60.0)
	if len(ps.Spawns()) != 0 {
		t.Errorf("parent on cooldown must not reproduce")
	}
}

func TestPopulationLowEnergyBlocksReproduction(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	tw.spawn(components.Vec3{Y: -50}, whaleOpts(150)) // 50%, under the 75% gate

	ps.Update(1.0 / 60.0)

	if len(ps.Spawns()) != 0 {
		t.Errorf("parent under the energy threshold must not reproduce")
	}
}

func TestPopulationCapBlocksReproduction(t *testing.T) {
	tw := newTestWorld()
	ps := NewPopulationSystem(tw.world, tw.rng)

	// Whale cap is 6. Five eligible parents: exactly one slot is free, and
	// the in-tick census bump keeps the rest from overshooting together.
	for i := 0; i < 5; i++ {
		tw.spawn(components.Vec3{X: float32(i * 30), Y: -50}, whaleOpts(290))
	}

	ps.Update(1.0 / 60.0)

	if got := len(ps.Spawns()); got != 1 {
		t.Errorf("spawns = %d, want exactly the one free slot under the cap", got)
	}

	counts := ps.Counts()
	if counts[components.TypeWhale] != 6 {
		t.Errorf("census should include the queued offspring, got %d", counts[components.TypeWhale])
	}
}
