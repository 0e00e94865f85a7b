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
	World        WorldConfig        `yaml:"world"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Entity       EntityConfig       `yaml:"entity"`
	Population   PopulationConfig   `yaml:"population"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Energy       EnergyConfig       `yaml:"energy"`
	Brain        BrainConfig        `yaml:"brain"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds simulation world dimensions in world units.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"` // seconds per tick
	GridCellSize float64 `yaml:"grid_cell_size"`
}

// EntityConfig holds entity creation parameters.
type EntityConfig struct {
	BodyRadius    float64 `yaml:"body_radius"`
	InitialEnergy float64 `yaml:"initial_energy"`
	MaxEnergy     float64 `yaml:"max_energy"`
	VisionRange   float64 `yaml:"vision_range"`
	MaxSpeed      float64 `yaml:"max_speed"`
	MaxTurnRate   float64 `yaml:"max_turn_rate"`
	Drag          float64 `yaml:"drag"`
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	Initial          int `yaml:"initial"`
	Max              int `yaml:"max"`
	RespawnThreshold int `yaml:"respawn_threshold"` // respawn when population falls below
	RespawnCount     int `yaml:"respawn_count"`
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	EnergyThreshold   float64 `yaml:"energy_threshold"`    // fraction of max energy required
	UrgeThreshold     float64 `yaml:"urge_threshold"`      // reproduction-module urge gate
	MaturityAge       float64 `yaml:"maturity_age"`        // seconds before first breeding
	Cooldown          float64 `yaml:"cooldown"`            // seconds between births
	ParentEnergySplit float64 `yaml:"parent_energy_split"` // fraction of energy given to child
	SpawnOffset       float64 `yaml:"spawn_offset"`        // child spawn distance
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate              float64 `yaml:"rate"`
	Sigma             float64 `yaml:"sigma"`
	BigRate           float64 `yaml:"big_rate"`
	BigSigma          float64 `yaml:"big_sigma"`
	AddNodeProb       float64 `yaml:"add_node_prob"`
	AddConnectionProb float64 `yaml:"add_connection_prob"`
	ToggleProb        float64 `yaml:"toggle_prob"`
	NodeParamProb     float64 `yaml:"node_param_prob"`
}

// EnergyConfig holds energy economics parameters.
type EnergyConfig struct {
	BaseCost   float64 `yaml:"base_cost"`   // drain per second for existing
	MoveCost   float64 `yaml:"move_cost"`   // movement cost multiplier
	BiteGain   float64 `yaml:"bite_gain"`   // energy gained per successful bite
	GrazeGain  float64 `yaml:"graze_gain"`  // passive intake per second while still
	StillSpeed float64 `yaml:"still_speed"` // speed below which grazing applies
}

// BrainConfig holds brain bootstrap parameters.
type BrainConfig struct {
	ConnectionProb float64 `yaml:"connection_prob"` // bootstrap wiring density
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	WindowSec float64 `yaml:"window_sec"` // stats window in simulation seconds
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	DT32          float32
	WorldW32      float32
	WorldH32      float32
	TicksPerSec   int64
	MaturityTicks int64
	CooldownTicks int64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	if c.Physics.DT > 0 {
		c.Derived.TicksPerSec = int64(1.0/c.Physics.DT + 0.5)
		c.Derived.MaturityTicks = int64(c.Reproduction.MaturityAge / c.Physics.DT)
		c.Derived.CooldownTicks = int64(c.Reproduction.Cooldown / c.Physics.DT)
	}
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
