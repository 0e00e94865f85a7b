package brain

import (
	"fmt"
	"log/slog"
	"time"
)

// MetaTemplate is a shared, evolvable sub-graph definition that any number of
// module instances may reference. Templates are shared by pointer across
// clones: mutating a template is visible to every brain descended from the
// one that first referenced it. Callers sharing templates across threads own
// the required synchronization.
type MetaTemplate struct {
	ID          int32
	Name        string
	Nodes       []Node
	Connections []Connection
}

// Brain is the per-organism aggregate: genome and neural network unified into
// one sparse graph. All external interaction goes through module ports; the
// physics systems never touch nodes directly.
type Brain struct {
	Nodes       map[NodeID]Node
	Connections []Connection
	Modules     []ModuleInstance
	Templates   []*MetaTemplate

	Seed int64

	nextNodeID   NodeID
	nextModuleID ModuleID

	// nameCache maps "<moduleName>.<portName>" to the bound node. Derived
	// state: rebuilt whenever module membership changes, read-only otherwise.
	nameCache map[string]NodeID
}

// New creates an empty brain with no nodes or modules.
// A zero seed is replaced with the current time; runs that need
// reproducibility must pass an explicit seed.
func New(seed int64) *Brain {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Brain{
		Nodes:     make(map[NodeID]Node),
		Seed:      seed,
		nameCache: make(map[string]NodeID),
	}
}

// AllocNodeID hands out the next node ID without inserting a node.
// Module factories use this to build instance descriptors.
func (b *Brain) AllocNodeID() NodeID {
	id := b.nextNodeID
	b.nextNodeID++
	return id
}

// AllocModuleID hands out the next module instance ID.
func (b *Brain) AllocModuleID() ModuleID {
	id := b.nextModuleID
	b.nextModuleID++
	return id
}

// AddNode inserts a node under its own ID. The ID must have been allocated
// through AllocNodeID (or carried over by deserialization).
func (b *Brain) AddNode(n Node) {
	b.Nodes[n.ID] = n
	if n.ID >= b.nextNodeID {
		b.nextNodeID = n.ID + 1
	}
}

// AddHiddenNode allocates and inserts a free hidden node and returns its ID.
func (b *Brain) AddHiddenNode(affinity Affinity, activation Activation, bias float64) NodeID {
	id := b.AllocNodeID()
	b.Nodes[id] = Node{
		ID:             id,
		Kind:           KindHidden,
		Affinity:       affinity,
		Activation:     activation,
		Bias:           bias,
		UpdateInterval: 1,
		Module:         -1,
	}
	return id
}

// InstallModule appends a module instance and registers its nodes' port names
// in the name cache. The instance's nodes must already be in the store.
func (b *Brain) InstallModule(inst ModuleInstance) {
	if inst.ID >= b.nextModuleID {
		b.nextModuleID = inst.ID + 1
	}
	b.Modules = append(b.Modules, inst)
	b.cacheModule(&b.Modules[len(b.Modules)-1])
}

// Connect adds an enabled connection between two existing nodes.
// Returns false without modifying the brain when either endpoint is missing
// or an identical (from, to) pair already exists. Duplicates are rejected,
// never merged.
func (b *Brain) Connect(from, to NodeID, weight float64) bool {
	src, okFrom := b.Nodes[from]
	dst, okTo := b.Nodes[to]
	if !okFrom || !okTo {
		slog.Debug("connection endpoint missing", "from", from, "to", to)
		return false
	}
	for i := range b.Connections {
		if b.Connections[i].From == from && b.Connections[i].To == to {
			return false
		}
	}
	b.Connections = append(b.Connections, Connection{
		From:    from,
		To:      to,
		Weight:  weight,
		Type:    connectionTypeFor(src.Affinity, dst.Affinity),
		Enabled: true,
	})
	return true
}

// ConnectModules wires an output port of one module to an input port of
// another by symbolic (definition, port index) address. Unresolved endpoints
// are tolerated no-ops: brains only carry the modules they evolved to have,
// so wiring against an absent module is expected, not an error.
func (b *Brain) ConnectModules(fromDef int32, fromPort int, toDef int32, toPort int, weight float64) bool {
	from, ok := b.ModuleOutputNode(fromDef, fromPort)
	if !ok {
		slog.Debug("module wiring source unresolved", "definition", fromDef, "port", fromPort)
		return false
	}
	to, ok := b.ModuleInputNode(toDef, toPort)
	if !ok {
		slog.Debug("module wiring destination unresolved", "definition", toDef, "port", toPort)
		return false
	}
	return b.Connect(from, to, weight)
}

// SetWeight updates an existing connection's weight. Returns false when no
// such connection exists.
func (b *Brain) SetWeight(from, to NodeID, weight float64) bool {
	for i := range b.Connections {
		if b.Connections[i].From == from && b.Connections[i].To == to {
			b.Connections[i].Weight = weight
			return true
		}
	}
	return false
}

// SetEnabled toggles an existing connection. Disabled connections stay in the
// list so mutation can reactivate them later.
func (b *Brain) SetEnabled(from, to NodeID, enabled bool) bool {
	for i := range b.Connections {
		if b.Connections[i].From == from && b.Connections[i].To == to {
			b.Connections[i].Enabled = enabled
			return true
		}
	}
	return false
}

// NodeByName resolves a "<moduleName>.<portName>" address through the cache.
func (b *Brain) NodeByName(name string) (NodeID, bool) {
	id, ok := b.nameCache[name]
	return id, ok
}

// RebuildNameCache regenerates the symbolic lookup table from the module
// list. Must be called after any change to module membership; the mutation
// system owns that obligation for its own edits.
func (b *Brain) RebuildNameCache() {
	b.nameCache = make(map[string]NodeID, len(b.nameCache))
	for i := range b.Modules {
		b.cacheModule(&b.Modules[i])
	}
}

func (b *Brain) cacheModule(m *ModuleInstance) {
	for i, port := range m.InputPorts {
		if i < len(m.InputNodes) {
			b.nameCache[fmt.Sprintf("%s.%s", m.Name, port)] = m.InputNodes[i]
		}
	}
	for i, port := range m.OutputPorts {
		if i < len(m.OutputNodes) {
			b.nameCache[fmt.Sprintf("%s.%s", m.Name, port)] = m.OutputNodes[i]
		}
	}
}

// NodeCount returns the number of nodes in the graph.
func (b *Brain) NodeCount() int {
	return len(b.Nodes)
}

// ConnectionCount returns the number of connections, enabled or not.
func (b *Brain) ConnectionCount() int {
	return len(b.Connections)
}

// ModuleCount returns the number of installed module instances.
func (b *Brain) ModuleCount() int {
	return len(b.Modules)
}

// Counters reports the next node and module IDs, for serialization.
func (b *Brain) Counters() (NodeID, ModuleID) {
	return b.nextNodeID, b.nextModuleID
}

// SetCounters restores ID counters from a serialized brain. Counters only
// move forward so IDs stay unique across a lineage.
func (b *Brain) SetCounters(nextNode NodeID, nextModule ModuleID) {
	if nextNode > b.nextNodeID {
		b.nextNodeID = nextNode
	}
	if nextModule > b.nextModuleID {
		b.nextModuleID = nextModule
	}
}
