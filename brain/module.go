package brain

import (
	"log/slog"
)

// ModuleType classifies what a module does at the graph boundary.
type ModuleType uint8

const (
	// ModuleInput modules are sensors: external physics writes their output
	// nodes before evaluation, and the evaluator never overwrites them.
	ModuleInput ModuleType = iota
	// ModuleOutput modules are actuators: the graph writes their input nodes
	// and external physics reads them after evaluation.
	ModuleOutput
	// ModuleFunctional modules are internal machinery with no external I/O.
	ModuleFunctional
)

// String returns the display name of the module type.
func (t ModuleType) String() string {
	switch t {
	case ModuleInput:
		return "input"
	case ModuleOutput:
		return "output"
	case ModuleFunctional:
		return "functional"
	}
	return "unknown"
}

// ModuleInstance binds a module definition to concrete interface nodes:
// one node per declared input port and one per declared output port, in the
// definition's port order. Modules never reference each other directly; all
// module-to-module interaction flows through connections between their
// interface nodes.
type ModuleInstance struct {
	ID         ModuleID
	Definition int32  // stable definition ID from the module catalogue
	Name       string // definition name, used for the "<module>.<port>" cache
	Type       ModuleType
	Category   string
	Tier       uint8

	InputPorts  []string // port names, positional, from the definition
	OutputPorts []string

	InputNodes  []NodeID // one per input port, same order
	OutputNodes []NodeID // one per output port, same order

	// State holds per-instance scratch values owned by the external module
	// implementation (sensor smoothing, actuator cooldowns). Cloned by value.
	State map[string]float64
}

// InputNode returns the node bound to the given input port index.
func (m *ModuleInstance) InputNode(port int) (NodeID, bool) {
	if port < 0 || port >= len(m.InputNodes) {
		return InvalidNode, false
	}
	return m.InputNodes[port], true
}

// OutputNode returns the node bound to the given output port index.
func (m *ModuleInstance) OutputNode(port int) (NodeID, bool) {
	if port < 0 || port >= len(m.OutputNodes) {
		return InvalidNode, false
	}
	return m.OutputNodes[port], true
}

// clone returns a copy with independent node-ID lists and state map.
func (m *ModuleInstance) clone() ModuleInstance {
	out := *m
	out.InputPorts = append([]string(nil), m.InputPorts...)
	out.OutputPorts = append([]string(nil), m.OutputPorts...)
	out.InputNodes = append([]NodeID(nil), m.InputNodes...)
	out.OutputNodes = append([]NodeID(nil), m.OutputNodes...)
	if m.State != nil {
		out.State = make(map[string]float64, len(m.State))
		for k, v := range m.State {
			out.State[k] = v
		}
	}
	return out
}

// moduleByDefinition finds the first instance built from the given definition.
// Linear scan is fine: module counts per brain are small, bounded by the
// catalogue.
func (b *Brain) moduleByDefinition(definition int32) *ModuleInstance {
	for i := range b.Modules {
		if b.Modules[i].Definition == definition {
			return &b.Modules[i]
		}
	}
	return nil
}

// ModuleInputNode resolves (definition, input port index) to a node ID.
func (b *Brain) ModuleInputNode(definition int32, port int) (NodeID, bool) {
	m := b.moduleByDefinition(definition)
	if m == nil {
		return InvalidNode, false
	}
	return m.InputNode(port)
}

// ModuleOutputNode resolves (definition, output port index) to a node ID.
func (b *Brain) ModuleOutputNode(definition int32, port int) (NodeID, bool) {
	m := b.moduleByDefinition(definition)
	if m == nil {
		return InvalidNode, false
	}
	return m.OutputNode(port)
}

// GetModuleInput reads the value accumulated on an Output-type module's input
// node. This is the sanctioned read path for actuator systems after Process.
// Missing modules and out-of-range ports yield the neutral value 0: absent
// wiring is a normal sparse-network state, not a fault.
func (b *Brain) GetModuleInput(definition int32, port int) float64 {
	id, ok := b.ModuleInputNode(definition, port)
	if !ok {
		return 0
	}
	node, ok := b.Nodes[id]
	if !ok {
		return 0
	}
	return node.Output
}

// SetModuleOutput writes a sensor reading onto an Input-type module's output
// node before Process. This is the only sanctioned external write into the
// graph. Missing modules and out-of-range ports are silent no-ops.
func (b *Brain) SetModuleOutput(definition int32, port int, value float64) {
	id, ok := b.ModuleOutputNode(definition, port)
	if !ok {
		return
	}
	node, ok := b.Nodes[id]
	if !ok {
		slog.Debug("module output node missing from store", "definition", definition, "port", port, "node", id)
		return
	}
	node.Output = value
	b.Nodes[id] = node
}
