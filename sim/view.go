package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
)

// CreatureView is a render-facing snapshot of one living creature. It copies
// the fields the viewer needs so rendering never holds ECS pointers across
// a Step call.
type CreatureView struct {
	Pos        components.Vec3
	Vel        components.Vec3
	Type       components.CreatureType
	Variant    uint8
	Mode       components.HuntMode
	EnergyFrac float32
	HealthFrac float32
}

type snapshotFilter = ecs.Filter5[components.Position, components.Velocity, components.Creature, components.Vitals, components.Behavior]

// Snapshot appends a view of every living creature to dst and returns the
// extended slice.
func (s *Simulation) Snapshot(dst []CreatureView) []CreatureView {
	if s.viewFilter == nil {
		// Lazily created; headless runs never pay for it.
		s.viewFilter = ecs.NewFilter5[components.Position, components.Velocity, components.Creature, components.Vitals, components.Behavior](s.world)
	}

	query := s.viewFilter.Query()
	for query.Next() {
		pos, vel, creature, vitals, behavior := query.Get()
		if !vitals.Alive {
			continue
		}
		dst = append(dst, CreatureView{
			Pos:        pos.Vec3,
			Vel:        vel.Vec3,
			Type:       creature.Type,
			Variant:    creature.Variant,
			Mode:       behavior.Mode,
			EnergyFrac: vitals.Energy / vitals.MaxEnergy,
			HealthFrac: vitals.Health / vitals.MaxHealth,
		})
	}
	return dst
}
