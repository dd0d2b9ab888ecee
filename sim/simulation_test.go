package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
)

func init() {
	config.MustInit("")
}

func TestSimulationStepKeepsInvariants(t *testing.T) {
	s := New(1, nil)

	initial := s.TotalAlive()
	if initial == 0 {
		t.Fatalf("initial population is empty")
	}

	for i := 0; i < 120; i++ {
		s.Step()
	}

	if s.Tick() != 120 {
		t.Errorf("tick = %d, want 120", s.Tick())
	}
	if s.TotalAlive() == 0 {
		t.Fatalf("population collapsed within two simulated seconds")
	}

	bounds := config.Cfg().World
	views := s.Snapshot(nil)
	for _, v := range views {
		if math.IsNaN(float64(v.Pos.X)) || math.IsNaN(float64(v.Pos.Y)) || math.IsNaN(float64(v.Pos.Z)) {
			t.Fatalf("NaN position for %v: %+v", v.Type, v.Pos)
		}
		if v.Pos.Y > float32(bounds.SurfaceDepth)+0.001 || v.Pos.Y < float32(bounds.FloorDepth)-0.001 {
			t.Errorf("%v outside the depth limits: y = %f", v.Type, v.Pos.Y)
		}
		if v.EnergyFrac < 0 || v.EnergyFrac > 1.001 {
			t.Errorf("%v energy fraction out of range: %f", v.Type, v.EnergyFrac)
		}
	}
}

func TestSimulationDeterministicForSeed(t *testing.T) {
	a := New(7, nil)
	b := New(7, nil)

	for i := 0; i < 60; i++ {
		a.Step()
		b.Step()
	}

	va := a.Snapshot(nil)
	vb := b.Snapshot(nil)
	if len(va) != len(vb) {
		t.Fatalf("same seed diverged in population: %d vs %d", len(va), len(vb))
	}
	for i := range va {
		if va[i].Pos != vb[i].Pos {
			t.Fatalf("same seed diverged at creature %d: %+v vs %+v", i, va[i].Pos, vb[i].Pos)
		}
	}
}

func TestSimulationRemovesDeadEntities(t *testing.T) {
	s := New(3, nil)
	before := s.TotalAlive()

	// Kill one arbitrary creature.
	vitalsMap := ecs.NewMap1[components.Vitals](s.world)
	filter := ecs.NewFilter1[components.Vitals](s.world)
	var victim ecs.Entity
	query := filter.Query()
	for query.Next() {
		if victim == (ecs.Entity{}) {
			victim = query.Entity()
		}
	}
	vitalsMap.Get(victim).Alive = false

	s.Step()

	if !(s.TotalAlive() < before+5) { // births may offset, but the corpse is gone
		t.Errorf("population accounting looks wrong: %d -> %d", before, s.TotalAlive())
	}
	if s.world.Alive(victim) {
		t.Errorf("dead creature should be removed from the world")
	}
}

func TestFactoryCapabilitiesPerLocomotion(t *testing.T) {
	w := ecs.NewWorld()
	f := NewFactory(w, rand.New(rand.NewSource(1)))
	cfg := config.Cfg()

	spawnByName := func(name string) ecs.Entity {
		sp := &cfg.Species[cfg.Derived.SpeciesIndex[name]]
		tp, _ := components.ParseCreatureType(sp.Type)
		return f.Spawn(sp, tp, 0, components.Vec3{Y: -50}, 1, false)
	}

	creatureMap := ecs.NewMap1[components.Creature](w)

	cases := []struct {
		species string
		want    components.Capability
		absent  components.Capability
	}{
		{"fish", components.CapFlocks | components.CapFlees | components.CapBurstGlide, components.CapHunts | components.CapStationary},
		{"shark", components.CapFlocks | components.CapHunts, components.CapFlees},
		{"jellyfish", components.CapPulses | components.CapFlees, components.CapHunts | components.CapStationary},
		{"crab", components.CapSemiStationary | components.CapFlees, components.CapStationary},
		{"starfish", components.CapStationary, components.CapFlocks | components.CapFlees | components.CapHunts},
	}

	for _, tc := range cases {
		e := spawnByName(tc.species)
		caps := creatureMap.Get(e).Caps
		if !caps.Has(tc.want) {
			t.Errorf("%s: caps %b missing %b", tc.species, caps, tc.want)
		}
		if caps&tc.absent != 0 {
			t.Errorf("%s: caps %b should not include %b", tc.species, caps, tc.absent)
		}
	}
}

func TestFactoryOffspringVitalsFraction(t *testing.T) {
	w := ecs.NewWorld()
	f := NewFactory(w, rand.New(rand.NewSource(1)))
	cfg := config.Cfg()

	sp := &cfg.Species[cfg.Derived.SpeciesIndex["fish"]]
	e := f.Spawn(sp, components.TypeFish, 0, components.Vec3{Y: -50}, 0.5, false)

	v := ecs.NewMap1[components.Vitals](w).Get(e)
	if v.Health != v.MaxHealth*0.5 {
		t.Errorf("offspring health = %f, want half of %f", v.Health, v.MaxHealth)
	}
	if v.Energy != v.MaxEnergy*0.5 {
		t.Errorf("offspring energy = %f, want half of %f", v.Energy, v.MaxEnergy)
	}
	if v.ReproCooldown != float32(cfg.Lifecycle.SpawnCooldown) {
		t.Errorf("offspring should mature through a full cooldown, got %f", v.ReproCooldown)
	}
}

func TestSimulationCountsMatchSnapshot(t *testing.T) {
	s := New(11, nil)
	for i := 0; i < 10; i++ {
		s.Step()
	}

	counts := s.Counts()
	total := 0
	for _, n := range counts {
		total += n
	}

	if snap := len(s.Snapshot(nil)); snap != total {
		t.Errorf("census total %d disagrees with snapshot %d", total, snap)
	}
}
