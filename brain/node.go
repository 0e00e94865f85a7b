// Package brain implements the sparse, typed neural graph that drives each
// organism: nodes, weighted connections, module-based I/O, the per-tick
// evaluator, and structural cloning for reproduction.
package brain

import "math"

// NodeID identifies a node within one brain. IDs are allocated from a
// monotonic counter and never reused within a lineage.
type NodeID int32

// ModuleID identifies a module instance within one brain.
type ModuleID int32

// InvalidNode is returned by lookups that miss.
const InvalidNode NodeID = -1

// NodeKind classifies the node's role in the graph.
// Interface kinds are vestigial once a module owns the mapping, but they are
// kept for diagnostics and serialization.
type NodeKind uint8

const (
	KindHidden NodeKind = iota
	KindInput           // output node of an Input-type module (sensor value)
	KindOutput          // input node of an Output-type module (actuator value)
)

// Affinity classifies a node by simulated timescale. It controls how often
// the node updates and whether its outgoing connections propagate each tick.
type Affinity uint8

const (
	// Behavioral nodes update and propagate every tick.
	Behavioral Affinity = iota
	// Hormonal nodes propagate only on the hormonal cadence (once per second
	// at the 60-tick cadence).
	Hormonal
	// Genetic nodes never propagate. Their output is a frozen gene value,
	// read only at birth by mutation and configuration logic.
	Genetic
)

// String returns the display name of the affinity.
func (a Affinity) String() string {
	switch a {
	case Behavioral:
		return "behavioral"
	case Hormonal:
		return "hormonal"
	case Genetic:
		return "genetic"
	}
	return "unknown"
}

// UpdateNever freezes a node after initialization: its output is written once
// at creation time and never recomputed by the evaluator.
const UpdateNever int32 = math.MaxInt32

// Node is the atomic computing/genetic unit. Nodes are value records stored
// by ID in the brain's node map; every mutation is read-modify-store.
type Node struct {
	ID         NodeID
	Kind       NodeKind
	Affinity   Affinity
	Activation Activation

	Bias        float64 // baseline input applied every tick (gene value for bias-only nodes)
	Accumulator float64 // transient per-tick sum, reset at the start of every tick
	Output      float64 // last activation result; persists across gated ticks

	FrameCounter   int64 // last tick this node actually updated
	UpdateInterval int32 // ticks between updates; 1 = every tick, UpdateNever = frozen

	Module ModuleID // owning module instance, or -1 for free hidden nodes
	Tier   uint8    // tier of the owning module
}
