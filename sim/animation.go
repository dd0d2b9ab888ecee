package sim

import "github.com/forbiddenlink/ocean-simulator-sub000/components"

// advanceGlideCycles steps the burst-and-glide state machine for every
// swimmer that uses it. The integrator reads the phase; this is the only
// writer.
func (s *Simulation) advanceGlideCycles(dt float32) {
	query := s.glideFilter.Query()
	for query.Next() {
		creature, _ := query.Get()
		if !creature.Caps.Has(components.CapBurstGlide) {
			continue
		}
		motion := s.motionMap.Get(query.Entity())
		if motion == nil || !motion.Initialized {
			continue
		}

		motion.PhaseTime -= dt
		if motion.PhaseTime > 0 {
			continue
		}

		if motion.Phase == components.PhaseGlide {
			motion.Phase = components.PhaseBurst
			// Small jitter keeps schools from kicking in unison.
			motion.PhaseTime += motion.BurstDuration * (0.8 + 0.4*s.rng.Float32())
		} else {
			motion.Phase = components.PhaseGlide
			motion.PhaseTime += motion.GlideDuration * (0.8 + 0.4*s.rng.Float32())
		}
	}
}
