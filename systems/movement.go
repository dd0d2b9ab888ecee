package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/forbiddenlink/ocean-simulator-sub000/components"
)

// MovementSystem integrates accumulated forces into velocity and position.
// Per entity the order is fixed: force integration, burst-glide thrust,
// quadratic drag, species locomotion overrides, the speed clamp, the pulse
// thrust, the buoyancy band, position integration, then the acceleration
// reset that returns the accumulator to scratch state.
type MovementSystem struct {
	filter    ecs.Filter5[components.Position, components.Velocity, components.Acceleration, components.Creature, components.Steering]
	motionMap *ecs.Map[components.Motion]

	bounds Bounds
	rng    *rand.Rand
}

// NewMovementSystem creates the movement system.
func NewMovementSystem(w *ecs.World, bounds Bounds, rng *rand.Rand) *MovementSystem {
	return &MovementSystem{
		filter:    *ecs.NewFilter5[components.Position, components.Velocity, components.Acceleration, components.Creature, components.Steering](w),
		motionMap: ecs.NewMap[components.Motion](w),
		bounds:    bounds,
		rng:       rng,
	}
}

// Update integrates one tick of dt seconds.
func (s *MovementSystem) Update(dt float32) {
	floorRest := s.bounds.FloorY + cachedBottomOffset

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, acc, creature, st := query.Get()

		if creature.Caps.Has(components.CapStationary) {
			// Floor dwellers with no locomotion. Pin and discard forces.
			pos.Y = floorRest
			vel.Vec3 = components.Vec3{}
			acc.Vec3 = components.Vec3{}
			continue
		}

		vel.Vec3 = vel.Vec3.Add(acc.Vec3.Scale(dt))

		motion := s.motionMap.Get(entity)

		if creature.Caps.Has(components.CapBurstGlide) && motion != nil && motion.Initialized {
			if motion.Phase == components.PhaseBurst {
				vel.Vec3 = vel.Vec3.Scale(1 + motion.BurstBoost*dt)
			}
		}

		speed := vel.Vec3.Len()
		if st.Drag > 0 && speed > 0 {
			// Quadratic drag: deceleration grows with the square of speed.
			factor := 1 - st.Drag*speed*dt
			if factor < 0 {
				factor = 0
			}
			vel.Vec3 = vel.Vec3.Scale(factor)
			speed *= factor
		}

		if creature.Caps.Has(components.CapSemiStationary) {
			// Crawlers: horizontal motion decays quickly, and instead of
			// swimming vertically they settle onto the floor.
			damp := 1 - (1-cachedSemiStatDamp)*dt
			vel.X *= damp
			vel.Z *= damp
			vel.Y = floorRest - pos.Y
			speed = vel.Vec3.Len()
		}

		if speed > st.MaxSpeed {
			vel.Vec3 = vel.Vec3.Scale(st.MaxSpeed / speed)
		} else if st.MinSpeed > 0 && speed < st.MinSpeed {
			if speed < cachedMinSpeedKick {
				// Fully stalled. A random heading avoids the degenerate
				// zero-velocity state that steering cannot escape.
				vel.Vec3 = s.randomHeading().Scale(st.MinSpeed)
			} else {
				vel.Vec3 = vel.Vec3.Scale(st.MinSpeed / speed)
			}
		}

		if creature.Caps.Has(components.CapPulses) && motion != nil {
			motion.PulsePhase += cachedPulseFrequency * dt
			if motion.PulsePhase > 2*math.Pi {
				motion.PulsePhase -= 2 * math.Pi
			}
			if thrust := sinf(motion.PulsePhase); thrust > 0 {
				vel.Y += thrust * cachedPulseStrength * dt
			}
		}

		// Soft correction toward the preferred depth band, active only
		// outside the tolerance margin.
		if pos.Y < st.DepthMin-st.DepthTolerance {
			vel.Y += cachedBuoyancyForce * dt
		} else if pos.Y > st.DepthMax+st.DepthTolerance {
			vel.Y -= cachedBuoyancyForce * dt
		}

		pos.Vec3 = pos.Vec3.Add(vel.Vec3.Scale(dt))

		// Hard world limits. Contact kills the vertical velocity so
		// entities settle instead of bouncing.
		if pos.Y < floorRest {
			pos.Y = floorRest
			if vel.Y < 0 {
				vel.Y = 0
			}
		} else if pos.Y > s.bounds.SurfaceY {
			pos.Y = s.bounds.SurfaceY
			if vel.Y > 0 {
				vel.Y = 0
			}
		}

		acc.Vec3 = components.Vec3{}
	}
}

// randomHeading returns a uniformly distributed unit vector with a damped
// vertical component, matching how creatures actually swim.
func (s *MovementSystem) randomHeading() components.Vec3 {
	theta := s.rng.Float32() * 2 * math.Pi
	v := components.Vec3{
		X: cosf(theta),
		Y: (s.rng.Float32()*2 - 1) * 0.3,
		Z: sinf(theta),
	}
	return v.Normalized()
}
