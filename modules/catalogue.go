// Package modules defines the module catalogue: the shared definitions
// (ports, type, category, tier) that brains instantiate, and the factories
// that bind them to concrete interface nodes. The concrete sensor/actuator
// math lives in the systems package; the brain core only ever sees port
// values.
package modules

import "github.com/pthm-cable/vat/brain"

// Definition IDs are stable across runs and serialized with each brain.
const (
	DefVision       int32 = 1
	DefStomach      int32 = 2
	DefHealth       int32 = 3
	DefClock        int32 = 4
	DefMotor        int32 = 5
	DefMouth        int32 = 6
	DefReproduction int32 = 7
	DefHormone      int32 = 8
	DefGenes        int32 = 9
	DefPheromoneIn  int32 = 10
	DefPheromoneOut int32 = 11
)

// Vision sensor sectors. Each sector reports food and threat density.
const VisionSectors = 5

// Definition is the shared schema a module instance is built from.
type Definition struct {
	ID       int32
	Name     string
	Type     brain.ModuleType
	Category string
	Tier     uint8

	InputPorts  []string // ordered; actuator commands flow in here
	OutputPorts []string // ordered; sensor values flow out of here

	// Node defaults applied to every interface node at instantiation.
	Affinity       brain.Affinity
	Activation     brain.Activation
	UpdateInterval int32
}

func visionPorts() []string {
	ports := make([]string, 0, VisionSectors*2+1)
	for i := 0; i < VisionSectors; i++ {
		ports = append(ports, sectorPort("food", i))
	}
	for i := 0; i < VisionSectors; i++ {
		ports = append(ports, sectorPort("threat", i))
	}
	ports = append(ports, "light")
	return ports
}

func sectorPort(kind string, sector int) string {
	return kind + string(rune('0'+sector))
}

// catalogue is the full definition set. Tier 1 is the mandatory bootstrap
// set installed into every fresh brain; pheromone modules are optional.
var catalogue = []Definition{
	{
		ID: DefVision, Name: "vision", Type: brain.ModuleInput, Category: "sensor", Tier: 1,
		OutputPorts: visionPorts(),
		Affinity:    brain.Behavioral, Activation: brain.ActIdentity, UpdateInterval: 1,
	},
	{
		ID: DefStomach, Name: "stomach", Type: brain.ModuleInput, Category: "sensor", Tier: 1,
		OutputPorts: []string{"fullness", "energy"},
		Affinity:    brain.Behavioral, Activation: brain.ActIdentity, UpdateInterval: 1,
	},
	{
		ID: DefHealth, Name: "health", Type: brain.ModuleInput, Category: "sensor", Tier: 1,
		OutputPorts: []string{"vitality", "age"},
		Affinity:    brain.Behavioral, Activation: brain.ActIdentity, UpdateInterval: 1,
	},
	{
		ID: DefClock, Name: "clock", Type: brain.ModuleInput, Category: "sensor", Tier: 1,
		OutputPorts: []string{"sin", "cos"},
		Affinity:    brain.Behavioral, Activation: brain.ActIdentity, UpdateInterval: 1,
	},
	{
		ID: DefMotor, Name: "motor", Type: brain.ModuleOutput, Category: "actuator", Tier: 1,
		InputPorts: []string{"turn", "thrust"},
		Affinity:   brain.Behavioral, Activation: brain.ActTanh, UpdateInterval: 1,
	},
	{
		ID: DefMouth, Name: "mouth", Type: brain.ModuleOutput, Category: "actuator", Tier: 1,
		InputPorts: []string{"bite"},
		Affinity:   brain.Behavioral, Activation: brain.ActSigmoid, UpdateInterval: 1,
	},
	{
		ID: DefReproduction, Name: "reproduction", Type: brain.ModuleOutput, Category: "actuator", Tier: 1,
		InputPorts: []string{"urge"},
		Affinity:   brain.Hormonal, Activation: brain.ActSigmoid, UpdateInterval: 60,
	},
	{
		ID: DefHormone, Name: "hormone", Type: brain.ModuleFunctional, Category: "internal", Tier: 1,
		InputPorts:  []string{"stimulus"},
		OutputPorts: []string{"level"},
		Affinity:    brain.Hormonal, Activation: brain.ActSigmoid, UpdateInterval: 60,
	},
	{
		ID: DefGenes, Name: "genes", Type: brain.ModuleFunctional, Category: "genome", Tier: 1,
		OutputPorts: []string{"aggression", "metabolism", "fertility"},
		Affinity:    brain.Genetic, Activation: brain.ActIdentity, UpdateInterval: brain.UpdateNever,
	},
	{
		ID: DefPheromoneIn, Name: "pheromone_sense", Type: brain.ModuleInput, Category: "sensor", Tier: 2,
		OutputPorts: []string{"strength", "gradient"},
		Affinity:    brain.Behavioral, Activation: brain.ActIdentity, UpdateInterval: 1,
	},
	{
		ID: DefPheromoneOut, Name: "pheromone_emit", Type: brain.ModuleOutput, Category: "actuator", Tier: 2,
		InputPorts: []string{"emit"},
		Affinity:   brain.Behavioral, Activation: brain.ActSigmoid, UpdateInterval: 1,
	},
}

// Catalogue returns every known definition.
func Catalogue() []Definition {
	return catalogue
}

// ByID returns the definition with the given ID.
func ByID(id int32) (Definition, bool) {
	for _, def := range catalogue {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// Tier1 returns the mandatory bootstrap definitions.
func Tier1() []Definition {
	out := make([]Definition, 0, len(catalogue))
	for _, def := range catalogue {
		if def.Tier == 1 {
			out = append(out, def)
		}
	}
	return out
}
