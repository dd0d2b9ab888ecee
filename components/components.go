// Package components defines ECS components for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// CreatureType tags an entity with its species family.
type CreatureType uint8

const (
	TypeFish CreatureType = iota
	TypeShark
	TypeDolphin
	TypeJellyfish
	TypeRay
	TypeTurtle
	TypeCrab
	TypeStarfish
	TypeSeaUrchin
	TypeWhale

	NumCreatureTypes = 10
)

var creatureTypeNames = [NumCreatureTypes]string{
	"fish", "shark", "dolphin", "jellyfish", "ray",
	"turtle", "crab", "starfish", "sea_urchin", "whale",
}

// String returns the config-facing name of the type.
func (t CreatureType) String() string {
	if int(t) < len(creatureTypeNames) {
		return creatureTypeNames[t]
	}
	return "unknown"
}

// ParseCreatureType maps a config species name to its type tag.
func ParseCreatureType(name string) (CreatureType, bool) {
	for i, n := range creatureTypeNames {
		if n == name {
			return CreatureType(i), true
		}
	}
	return 0, false
}

// Capability is a bitset of behaviors an entity participates in. Systems
// check it once per entity during dispatch, so "which systems touch which
// entities" is an explicit decision made at creation time rather than a side
// effect of which components the factory happened to attach.
type Capability uint8

const (
	CapFlocks         Capability = 1 << iota // FIRA steering
	CapHunts                                 // predator target acquisition and attack
	CapFlees                                 // prey threat scan and flee response
	CapStationary                            // pinned to the sea floor, no locomotion
	CapSemiStationary                        // floor dweller with damped horizontal crawl
	CapPulses                                // jellyfish-style vertical thrust pulse
	CapBurstGlide                            // burst-and-glide thrust cycle
)

// Has reports whether all bits in c are set.
func (b Capability) Has(c Capability) bool {
	return b&c == c
}

// Add returns b with the bits in c set.
func (b Capability) Add(c Capability) Capability {
	return b | c
}

// Position is an entity's world position. Y is depth (negative below the
// surface at y=0).
type Position struct {
	Vec3
}

// Velocity is an entity's velocity in world units per second.
type Velocity struct {
	Vec3
}

// Acceleration is the per-tick force accumulator. It is scratch state: every
// system adds steering forces during a tick and the movement integrator
// resets it to zero after integration. It is never read across ticks.
type Acceleration struct {
	Vec3
}

// Creature bundles the identity tags that never change after creation.
type Creature struct {
	Type         CreatureType
	Variant      uint8 // species variant index within the type
	IsPredator   bool
	IsAggressive bool
	Caps         Capability
}

// Vitals tracks an entity's bounded health and energy pools plus the
// reproduction cooldown. Health <= 0 or Energy <= 0 marks the entity for
// removal by the population system at the end of the tick.
type Vitals struct {
	Health    float32
	MaxHealth float32
	Energy    float32
	MaxEnergy float32

	ReproCooldown float32 // seconds until eligible to reproduce again
	Alive         bool
}

// HuntMode is the behavioral state of the predator-prey decision system.
// Predators move through Idle -> Pursuing -> Attacking; prey independently
// toggle Idle <-> Fleeing.
type HuntMode uint8

const (
	ModeIdle HuntMode = iota
	ModePursuing
	ModeAttacking
	ModeFleeing
)

// Behavior is the target memory for the hunting system. For predators it
// remembers the current prey; for prey only Mode is meaningful. The zero
// value means "no target, idle", which is also the lazily-initialized state
// of a fresh entity.
type Behavior struct {
	Mode HuntMode

	Target    ecs.Entity // zero entity = no target
	LastSeen  Vec3       // last confirmed position of Target
	SinceSeen float32    // seconds since Target was last confirmed

	// VisionTimer counts down to the next target acquisition scan. It is
	// initialized with a random phase per entity so acquisition checks are
	// staggered across the population instead of firing in lockstep.
	VisionTimer float32
}

// HasTarget reports whether a target is currently remembered.
func (b *Behavior) HasTarget() bool {
	return b.Target != ecs.Entity{}
}

// ClearTarget drops the remembered target and returns to idle.
func (b *Behavior) ClearTarget() {
	b.Target = ecs.Entity{}
	b.SinceSeen = 0
	b.Mode = ModeIdle
}

// Steering holds the per-species FIRA tuning constants plus the locomotion
// limits the integrator needs. Set once at creation, read-only afterwards.
type Steering struct {
	SeparationW float32
	AlignmentW  float32
	CohesionW   float32
	WanderW     float32

	PerceptionRadius float32
	SeparationRadius float32

	MaxSpeed float32
	MinSpeed float32
	MaxForce float32
	Drag     float32 // quadratic drag coefficient

	// Preferred depth band for buoyancy. The integrator applies a soft
	// correction only outside [DepthMin-DepthTolerance, DepthMax+DepthTolerance].
	DepthMin       float32
	DepthMax       float32
	DepthTolerance float32
}

// GlidePhase is the burst-and-glide locomotion phase.
type GlidePhase uint8

const (
	PhaseGlide GlidePhase = iota
	PhaseBurst
)

// Motion carries the mutable locomotion state that is not a steering force:
// the wander angles evolved by the flocking system and the burst-glide cycle
// maintained by the animation collaborator. PulsePhase offsets the jellyfish
// thrust pulse so a bloom does not contract in unison.
type Motion struct {
	// Wander state: horizontal angle walks freely, vertical angle is clamped
	// to a narrow band so creatures do not wander vertically without bound.
	WanderTheta float32
	WanderPhi   float32

	// Burst-glide cycle. Initialized is set by the factory for species that
	// swim this way; the integrator only reads the phase.
	Initialized   bool
	Phase         GlidePhase
	PhaseTime     float32 // seconds remaining in the current phase
	BurstDuration float32
	GlideDuration float32
	BurstBoost    float32 // thrust multiplier applied per second during burst

	PulsePhase float32
}
