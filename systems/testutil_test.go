package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
	"github.com/forbiddenlink/ocean-simulator-sub000/config"
)

func init() {
	config.MustInit("")
	InitCache()
}

// testWorld bundles the ECS plumbing the system tests need to create
// creatures directly, bypassing the factory.
type testWorld struct {
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
	grid      *SpatialGrid
	rng       *rand.Rand
}

func newTestWorld() *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
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
		grid:      NewSpatialGrid(float32(config.Cfg().Physics.GridCellSize), WorldBounds()),
		rng:       rand.New(rand.NewSource(1)),
	}
}

// creatureOpts tweaks the default test creature.
type creatureOpts struct {
	creature components.Creature
	vitals   components.Vitals
	steering components.Steering
	vel      components.Vec3
	motion   *components.Motion
}

func defaultOpts() creatureOpts {
	return creatureOpts{
		creature: components.Creature{
			Type: components.TypeFish,
			Caps: components.CapFlocks | components.CapFlees,
		},
		vitals: components.Vitals{
			Health: 40, MaxHealth: 40,
			Energy: 30, MaxEnergy: 60,
			Alive: true,
		},
		steering: components.Steering{
			SeparationW: 1.5, AlignmentW: 1, CohesionW: 1, WanderW: 0.5,
			PerceptionRadius: 25, SeparationRadius: 6,
			MaxSpeed: 22, MinSpeed: 4, MaxForce: 18, Drag: 0.012,
			DepthMin: -120, DepthMax: -15, DepthTolerance: 10,
		},
	}
}

func predatorOpts() creatureOpts {
	o := defaultOpts()
	o.creature = components.Creature{
		Type:         components.TypeShark,
		IsPredator:   true,
		IsAggressive: true,
		Caps:         components.CapFlocks | components.CapHunts,
	}
	o.vitals = components.Vitals{
		Health: 160, MaxHealth: 160,
		Energy: 60, MaxEnergy: 120,
		Alive: true,
	}
	o.steering.MaxSpeed = 30
	return o
}

// spawn creates one creature at pos and registers it in the grid.
func (tw *testWorld) spawn(pos components.Vec3, o creatureOpts) ecs.Entity {
	position := components.Position{Vec3: pos}
	velocity := components.Velocity{Vec3: o.vel}
	accel := components.Acceleration{}

	entity := tw.mapper.NewEntity(&position, &velocity, &accel, &o.creature, &o.vitals, &o.steering, &components.Behavior{})
	if o.motion != nil {
		tw.motionMap.Add(entity, o.motion)
	}
	tw.grid.Insert(entity, pos.X, pos.Y, pos.Z)
	return entity
}

func (tw *testWorld) pos(e ecs.Entity) *components.Position {
	return ecs.NewMap1[components.Position](tw.world).Get(e)
}

func (tw *testWorld) vel(e ecs.Entity) *components.Velocity {
	return ecs.NewMap1[components.Velocity](tw.world).Get(e)
}

func (tw *testWorld) acc(e ecs.Entity) *components.Acceleration {
	return ecs.NewMap1[components.Acceleration](tw.world).Get(e)
}

func (tw *testWorld) vitals(e ecs.Entity) *components.Vitals {
	return ecs.NewMap1[components.Vitals](tw.world).Get(e)
}

func (tw *testWorld) behavior(e ecs.Entity) *components.Behavior {
	return ecs.NewMap1[components.Behavior](tw.world).Get(e)
}

// regrid reindexes every test creature after positions changed.
func (tw *testWorld) regrid() {
	tw.grid.Clear()
	filter := ecs.NewFilter1[components.Position](tw.world)
	query := filter.Query()
	for query.Next() {
		p := query.Get()
		tw.grid.Insert(query.Entity(), p.X, p.Y, p.Z)
	}
}
