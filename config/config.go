// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Flocking  FlockingConfig  `yaml:"flocking"`
	Hunting   HuntingConfig   `yaml:"hunting"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Species   []SpeciesConfig `yaml:"species"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the simulated ocean volume. The world spans
// [-half_width, +half_width] on X, [-half_breadth, +half_breadth] on Z, and
// [floor_depth, surface_depth] on Y (depth is negative, surface near 0).
type WorldConfig struct {
	HalfWidth    float64 `yaml:"half_width"`
	HalfBreadth  float64 `yaml:"half_breadth"`
	FloorDepth   float64 `yaml:"floor_depth"`
	SurfaceDepth float64 `yaml:"surface_depth"`

	BoundaryForce float64 `yaml:"boundary_force"` // restoring force per unit of penetration
	BottomOffset  float64 `yaml:"bottom_offset"`  // resting height of floor dwellers above floor_depth
}

// PhysicsConfig holds tick and spatial index parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// FlockingConfig holds the FIRA steering constants shared by all species.
// Per-species weights and radii live in SpeciesConfig.
type FlockingConfig struct {
	WanderDistance    float64 `yaml:"wander_distance"`
	WanderRadius      float64 `yaml:"wander_radius"`
	WanderJitter      float64 `yaml:"wander_jitter"`       // radians/sec of heading random walk
	WanderVerticalMax float64 `yaml:"wander_vertical_max"` // clamp on the vertical wander angle
	SeparationEpsilon float64 `yaml:"separation_epsilon"`  // softens the inverse-square pole
	LateralBias       float64 `yaml:"lateral_bias"`        // extra repulsion for in-line neighbors
}

// HuntingConfig holds predator-prey decision parameters.
type HuntingConfig struct {
	VisionRange         float64 `yaml:"vision_range"`
	VisionCheckInterval float64 `yaml:"vision_check_interval"` // seconds between acquisition scans
	ForgetTimeout       float64 `yaml:"forget_timeout"`        // seconds until an unseen target is dropped
	AttackRange         float64 `yaml:"attack_range"`
	DamagePerSecond     float64 `yaml:"damage_per_second"`
	KillReward          float64 `yaml:"kill_reward"` // energy credited on a kill
	PursuitForce        float64 `yaml:"pursuit_force"`
	FleeForce           float64 `yaml:"flee_force"`
	FearRadius          float64 `yaml:"fear_radius"`
	PredatorEnergyDrain float64 `yaml:"predator_energy_drain"` // energy/sec cost of being a hunter
}

// LifecycleConfig holds starvation, regeneration, and reproduction parameters.
// Thresholds are fractions of the entity's maximum energy.
type LifecycleConfig struct {
	StarvationThreshold float64 `yaml:"starvation_threshold"`
	StarvationRate      float64 `yaml:"starvation_rate"` // health/sec lost while starving
	WellFedThreshold    float64 `yaml:"well_fed_threshold"`
	RegenRate           float64 `yaml:"regen_rate"`     // health/sec regained while well fed
	MetabolicCost       float64 `yaml:"metabolic_cost"` // energy/sec of simply existing
	GrazeRate           float64 `yaml:"graze_rate"`     // energy/sec non-predators gain from ambient food

	SpawnThreshold     float64 `yaml:"spawn_threshold"`      // fraction of max energy needed to reproduce
	SpawnCost          float64 `yaml:"spawn_cost"`           // flat energy cost paid by the parent
	SpawnCooldown      float64 `yaml:"spawn_cooldown"`       // seconds between reproductions
	SpawnRadius        float64 `yaml:"spawn_radius"`         // offspring offset from the parent
	OffspringVitals    float64 `yaml:"offspring_vitals"`     // fraction of max health/energy at birth
	MinSpeedKick       float64 `yaml:"min_speed_kick"`       // speed below which a random heading kick applies
	SemiStationaryDamp float64 `yaml:"semi_stationary_damp"` // horizontal damping for crawlers
	PulseFrequency     float64 `yaml:"pulse_frequency"`      // jellyfish pulses per second (angular)
	PulseStrength      float64 `yaml:"pulse_strength"`
	BuoyancyForce      float64 `yaml:"buoyancy_force"`
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // ticks averaged by the perf tracker
}

// ViewerConfig holds debug viewer settings.
type ViewerConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SpeciesConfig defines one creature species: identity flags, FIRA tuning,
// locomotion limits, depth band, and population economics. Type must match a
// components.CreatureType name.
type SpeciesConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Variants   int    `yaml:"variants"`
	Predator   bool   `yaml:"predator"`
	Aggressive bool   `yaml:"aggressive"`

	// Locomotion selects the movement model: "swim" (default), "pulse"
	// (jellyfish thrust cycle), "crawl" (damped floor movement), or
	// "sessile" (pinned to the floor).
	Locomotion string `yaml:"locomotion"`

	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	WanderWeight     float64 `yaml:"wander_weight"`
	PerceptionRadius float64 `yaml:"perception_radius"`
	SeparationRadius float64 `yaml:"separation_radius"`

	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`
	MaxForce float64 `yaml:"max_force"`
	Drag     float64 `yaml:"drag"`

	PreferredDepthMin float64 `yaml:"preferred_depth_min"`
	PreferredDepthMax float64 `yaml:"preferred_depth_max"`
	DepthTolerance    float64 `yaml:"depth_tolerance"`

	MaxHealth float64 `yaml:"max_health"`
	MaxEnergy float64 `yaml:"max_energy"`

	InitialCount  int `yaml:"initial_count"`
	PopulationCap int `yaml:"population_cap"`

	BurstDuration float64 `yaml:"burst_duration"`
	GlideDuration float64 `yaml:"glide_duration"`
	BurstBoost    float64 `yaml:"burst_boost"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32         float32        // Physics.DT as float32
	SpeciesIndex map[string]int // species name -> index into Species
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config and validates
// the species table.
func (c *Config) computeDerived() error {
	c.Derived.DT32 = float32(c.Physics.DT)

	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i := range c.Species {
		sp := &c.Species[i]
		if sp.Variants <= 0 {
			sp.Variants = 1
		}
		switch sp.Locomotion {
		case "":
			sp.Locomotion = "swim"
		case "swim", "pulse", "crawl", "sessile":
		default:
			return fmt.Errorf("species %q: unknown locomotion %q", sp.Name, sp.Locomotion)
		}
		if sp.DepthTolerance == 0 {
			sp.DepthTolerance = 5
		}
		if _, ok := c.Derived.SpeciesIndex[sp.Name]; ok {
			return fmt.Errorf("duplicate species name %q", sp.Name)
		}
		c.Derived.SpeciesIndex[sp.Name] = i
	}

	if c.World.SurfaceDepth <= c.World.FloorDepth {
		return fmt.Errorf("world: surface_depth (%v) must be above floor_depth (%v)",
			c.World.SurfaceDepth, c.World.FloorDepth)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
