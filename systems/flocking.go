package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
)

// boundaryMargin is how far from a side wall the restoring force starts;
// verticalMargin is the same for the floor and surface.
const (
	boundaryMargin = 20
	verticalMargin = 5
)

// FlockingSystem applies FIRA steering (separation, alignment, cohesion,
// wander) plus horizontal boundary avoidance. It only writes Acceleration;
// integration happens in MovementSystem.
type FlockingSystem struct {
	filter      ecs.Filter5[components.Position, components.Velocity, components.Acceleration, components.Creature, components.Steering]
	motionMap   *ecs.Map[components.Motion]
	posMap      *ecs.Map1[components.Position]
	velMap      *ecs.Map1[components.Velocity]
	creatureMap *ecs.Map1[components.Creature]

	bounds Bounds
	rng    *rand.Rand

	neighborBuf []ecs.Entity
}

// NewFlockingSystem creates the flocking system.
func NewFlockingSystem(w *ecs.World, bounds Bounds, rng *rand.Rand) *FlockingSystem {
	return &FlockingSystem{
		filter:      *ecs.NewFilter5[components.Position, components.Velocity, components.Acceleration, components.Creature, components.Steering](w),
		motionMap:   ecs.NewMap[components.Motion](w),
		posMap:      ecs.NewMap1[components.Position](w),
		velMap:      ecs.NewMap1[components.Velocity](w),
		creatureMap: ecs.NewMap1[components.Creature](w),
		bounds:      bounds,
		rng:         rng,
		neighborBuf: make([]ecs.Entity, 0, 128),
	}
}

// Update accumulates steering forces for every flocking entity.
func (s *FlockingSystem) Update(grid *SpatialGrid, dt float32) {
	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, acc, creature, st := query.Get()

		if !creature.Caps.Has(components.CapFlocks) {
			continue
		}

		forward := vel.Vec3.Normalized()
		if forward.IsZero() {
			forward = components.Vec3{X: 1}
		}

		var force components.Vec3

		if st.WanderW > 0 {
			if motion := s.motionMap.Get(entity); motion != nil {
				force = force.Add(s.wanderForce(motion, forward, dt).Scale(st.WanderW))
			}
		}

		if st.PerceptionRadius > 0 {
			s.neighborBuf = grid.NeighborsInto(s.neighborBuf[:0],
				pos.X, pos.Y, pos.Z, st.PerceptionRadius, entity)
			force = force.Add(s.neighborForces(pos.Vec3, vel.Vec3, creature, st))
		}

		force = force.Add(s.boundaryForce(pos.Vec3))

		// Scale down so a pile of agreeing forces cannot exceed the
		// species force budget. Individual terms stay in proportion.
		lenSq := force.LenSq()
		if maxSq := st.MaxForce * st.MaxForce; lenSq > maxSq && lenSq > 0 {
			force = force.Scale(st.MaxForce / fastSqrt(lenSq))
		}

		acc.Vec3 = acc.Vec3.Add(force)
	}
}

// wanderForce evolves the entity's wander angles as a random walk and projects
// them onto a point ahead of the creature. The vertical angle is clamped so
// wandering stays mostly horizontal; depth changes come from buoyancy.
func (s *FlockingSystem) wanderForce(motion *components.Motion, forward components.Vec3, dt float32) components.Vec3 {
	motion.WanderTheta += (s.rng.Float32()*2 - 1) * cachedWanderJitter * dt
	motion.WanderPhi += (s.rng.Float32()*2 - 1) * cachedWanderJitter * dt
	motion.WanderPhi = clamp32(motion.WanderPhi, -cachedWanderVerticalMax, cachedWanderVerticalMax)

	// Offset on a sphere of wander_radius centered wander_distance ahead.
	cosPhi := cosf(motion.WanderPhi)
	offset := components.Vec3{
		X: cosf(motion.WanderTheta) * cosPhi,
		Y: sinf(motion.WanderPhi),
		Z: sinf(motion.WanderTheta) * cosPhi,
	}.Scale(cachedWanderRadius)

	return forward.Scale(cachedWanderDistance).Add(offset).Normalized()
}

// neighborForces computes separation, alignment, and cohesion from the
// current neighbor buffer. Separation considers every nearby creature;
// alignment and cohesion only flockmates of the same type.
func (s *FlockingSystem) neighborForces(pos, vel components.Vec3, creature *components.Creature, st *components.Steering) components.Vec3 {
	perceptionSq := st.PerceptionRadius * st.PerceptionRadius
	separationSq := st.SeparationRadius * st.SeparationRadius

	var separation components.Vec3
	var alignment components.Vec3
	var cohesion components.Vec3
	var flockmates int

	for _, other := range s.neighborBuf {
		opos := s.posMap.Get(other)
		if opos == nil {
			continue
		}
		diff := pos.Sub(opos.Vec3)
		distSq := diff.LenSq()
		if distSq > perceptionSq {
			// Grid cells overshoot the radius; refilter on true distance.
			continue
		}

		if distSq < separationSq {
			push := diff.Normalized().Scale(1 / (distSq + cachedSeparationEps))
			if ovel := s.velMap.Get(other); ovel != nil {
				nforward := ovel.Vec3.Normalized()
				nright := nforward.Cross(components.Up).Normalized()
				if !nright.IsZero() {
					// In-line encounters produce a push along the axis of
					// travel, which stalls instead of separating. Bias the
					// push sideways in the neighbor's frame, toward
					// whichever of its sides we already are.
					inline := absf(nforward.Dot(diff.Normalized()))
					side := float32(1)
					if nright.Dot(diff) < 0 {
						side = -1
					}
					push = push.Add(nright.Scale(side * inline * cachedLateralBias / (distSq + cachedSeparationEps)))
				}
			}
			separation = separation.Add(push)
		}

		ocreature := s.creatureMap.Get(other)
		if ocreature == nil || ocreature.Type != creature.Type {
			continue
		}

		// Closer flockmates count more.
		dist := fastSqrt(distSq)
		w := 1 - dist/st.PerceptionRadius
		if ovel := s.velMap.Get(other); ovel != nil {
			alignment = alignment.Add(ovel.Vec3.Scale(w))
		}
		cohesion = cohesion.Add(opos.Vec3.Sub(pos).Scale(w))
		flockmates++
	}

	// Separation and alignment keep their magnitudes: the inverse-square
	// sum is what makes close neighbors repel sharply and distant ones
	// barely at all. Only cohesion is a pure direction.
	force := separation.Scale(st.SeparationW)
	if flockmates > 0 {
		steer := alignment.Scale(1 / float32(flockmates)).Sub(vel)
		force = force.Add(steer.Scale(st.AlignmentW))
		force = force.Add(cohesion.Normalized().Scale(st.CohesionW))
	}
	return force
}

// boundaryForce pushes entities back inside the world volume, proportional to
// how deep they are into the margin. It is summed with the other steering
// terms; the hard clamps live in the integrator.
func (s *FlockingSystem) boundaryForce(pos components.Vec3) components.Vec3 {
	var f components.Vec3
	if over := pos.X - (s.bounds.HalfX - boundaryMargin); over > 0 {
		f.X -= over * cachedBoundaryForce
	} else if over := -pos.X - (s.bounds.HalfX - boundaryMargin); over > 0 {
		f.X += over * cachedBoundaryForce
	}
	if over := pos.Z - (s.bounds.HalfZ - boundaryMargin); over > 0 {
		f.Z -= over * cachedBoundaryForce
	} else if over := -pos.Z - (s.bounds.HalfZ - boundaryMargin); over > 0 {
		f.Z += over * cachedBoundaryForce
	}

	// Vertical limits use a tighter margin; floor dwellers live close to
	// the bottom.
	if over := pos.Y - (s.bounds.SurfaceY - verticalMargin); over > 0 {
		f.Y -= over * cachedBoundaryForce
	} else if over := (s.bounds.FloorY + verticalMargin) - pos.Y; over > 0 {
		f.Y += over * cachedBoundaryForce
	}
	return f
}
