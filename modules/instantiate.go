package modules

import (
	"math/rand"

	"github.com/pthm-cable/vat/brain"
)

// Instantiate builds a module instance from a definition: one freshly
// allocated interface node per declared port, positionally matching the
// definition's port order. The instance is installed into the brain; callers
// that install several modules in a batch should rebuild the name cache once
// at the end instead (see InitializeTier1).
func Instantiate(b *brain.Brain, def Definition) brain.ModuleInstance {
	inst := brain.ModuleInstance{
		ID:          b.AllocModuleID(),
		Definition:  def.ID,
		Name:        def.Name,
		Type:        def.Type,
		Category:    def.Category,
		Tier:        def.Tier,
		InputPorts:  append([]string(nil), def.InputPorts...),
		OutputPorts: append([]string(nil), def.OutputPorts...),
	}

	for range def.InputPorts {
		id := b.AllocNodeID()
		b.AddNode(brain.Node{
			ID:             id,
			Kind:           brain.KindOutput,
			Affinity:       def.Affinity,
			Activation:     def.Activation,
			UpdateInterval: def.UpdateInterval,
			Module:         inst.ID,
			Tier:           def.Tier,
		})
		inst.InputNodes = append(inst.InputNodes, id)
	}
	for range def.OutputPorts {
		id := b.AllocNodeID()
		b.AddNode(brain.Node{
			ID:             id,
			Kind:           brain.KindInput,
			Affinity:       def.Affinity,
			Activation:     def.Activation,
			UpdateInterval: def.UpdateInterval,
			Module:         inst.ID,
			Tier:           def.Tier,
		})
		inst.OutputNodes = append(inst.OutputNodes, id)
	}

	b.InstallModule(inst)
	return inst
}

// InitializeTier1 installs the mandatory bootstrap module set into a fresh
// brain and rebuilds the name cache. Precondition: call once per brain;
// calling twice duplicates modules.
func InitializeTier1(b *brain.Brain) {
	for _, def := range Tier1() {
		Instantiate(b, def)
	}
	b.RebuildNameCache()
}

// BootstrapWiring seeds a sparse default topology on a freshly initialized
// brain: each vision sector gets a chance to reach the motor ports, and the
// stomach feeds the mouth so newborns can eat. Weights and connectivity are
// illustrative; evolution owns them from here on.
func BootstrapWiring(b *brain.Brain, rng *rand.Rand, connectionProb float64) {
	motorPorts := 2
	for sector := 0; sector < VisionSectors*2; sector++ {
		for port := 0; port < motorPorts; port++ {
			if rng.Float64() >= connectionProb {
				continue
			}
			weight := rng.Float64()*2 - 1
			b.ConnectModules(DefVision, sector, DefMotor, port, weight)
		}
	}

	// Hunger drives biting regardless of the random draw above.
	b.ConnectModules(DefStomach, 0, DefMouth, 0, -1.0)
	b.ConnectModules(DefStomach, 1, DefReproduction, 0, 1.0)

	// Hormone loop: clock stimulates the gland, the gland modulates motion.
	b.ConnectModules(DefClock, 0, DefHormone, 0, 0.5)
	b.ConnectModules(DefHormone, 0, DefMotor, 1, rng.Float64()*0.5)
	if stim, ok := b.NodeByName("hormone.stimulus"); ok {
		if level, ok := b.NodeByName("hormone.level"); ok {
			b.Connect(stim, level, 1.0)
		}
	}
}

// SeedGeneValues writes initial gene-module values. Genetic nodes freeze
// after initialization, so this is the only time they are set outside the
// mutation system. Bias and output are kept equal so the gene value survives
// both serialization and any forced re-activation.
func SeedGeneValues(b *brain.Brain, rng *rand.Rand) {
	def, ok := ByID(DefGenes)
	if !ok {
		return
	}
	for port := range def.OutputPorts {
		id, ok := b.ModuleOutputNode(DefGenes, port)
		if !ok {
			continue
		}
		node, ok := b.Nodes[id]
		if !ok {
			continue
		}
		v := rng.Float64()
		node.Bias = v
		node.Output = v
		b.Nodes[id] = node
	}
}
