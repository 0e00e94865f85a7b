// Package mutation implements the structural and parametric operators that
// evolution applies to brains between generations. Operators preserve the
// graph invariants the evaluator relies on: endpoints exist, duplicate edges
// are rejected, connections are disabled rather than removed.
package mutation

import (
	"math/rand"
	"sort"

	"github.com/pthm-cable/vat/brain"
)

// Structural mutation limits.
const (
	maxConnectionWeight = 8.0 // maximum absolute connection weight
	maxLinkAttempts     = 20  // attempts to find a novel connection pair
)

// Params controls mutation probabilities and magnitudes.
type Params struct {
	Rate     float64 // probability each weight mutates
	Sigma    float64 // stddev of normal perturbation
	BigRate  float64 // probability of a large mutation
	BigSigma float64 // sigma for large mutations

	AddNodeProb       float64 // probability of splitting a connection
	AddConnectionProb float64 // probability of adding a novel connection
	ToggleProb        float64 // probability of flipping one connection's enable bit
	NodeParamProb     float64 // probability of drifting one node's parameters
}

// DefaultParams returns mutation rates tuned for the vat simulation.
func DefaultParams() Params {
	return Params{
		Rate:              0.05,
		Sigma:             0.08,
		BigRate:           0.01,
		BigSigma:          0.4,
		AddNodeProb:       0.03,
		AddConnectionProb: 0.08,
		ToggleProb:        0.01,
		NodeParamProb:     0.05,
	}
}

// PerturbWeights applies sparse per-weight gaussian mutation and returns the
// average absolute delta of all applied mutations, which breeding uses as a
// lineage-divergence signal.
func PerturbWeights(b *brain.Brain, rng *rand.Rand, p Params) float64 {
	var totalDelta float64
	var count int

	for i := range b.Connections {
		if rng.Float64() >= p.Rate {
			continue
		}
		var delta float64
		if rng.Float64() < p.BigRate {
			delta = rng.NormFloat64() * p.BigSigma
		} else {
			delta = rng.NormFloat64() * p.Sigma
		}
		w := b.Connections[i].Weight + delta
		if w > maxConnectionWeight {
			w = maxConnectionWeight
		} else if w < -maxConnectionWeight {
			w = -maxConnectionWeight
		}
		b.Connections[i].Weight = w
		if delta < 0 {
			delta = -delta
		}
		totalDelta += delta
		count++
	}

	if count == 0 {
		return 0
	}
	return totalDelta / float64(count)
}

// AddHiddenNode splits a random enabled connection: the old edge is disabled
// and replaced by from->new (weight 1) and new->to (old weight), keeping the
// pre-split signal roughly intact. Returns the new node ID, or false when the
// brain has no enabled connection to split.
func AddHiddenNode(b *brain.Brain, rng *rand.Rand) (brain.NodeID, bool) {
	enabled := make([]int, 0, len(b.Connections))
	for i := range b.Connections {
		if b.Connections[i].Enabled {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		return brain.InvalidNode, false
	}

	idx := enabled[rng.Intn(len(enabled))]
	conn := b.Connections[idx]
	b.Connections[idx].Enabled = false

	id := b.AddHiddenNode(brain.Behavioral, randomActivation(rng), 0)
	b.Connect(conn.From, id, 1.0)
	b.Connect(id, conn.To, conn.Weight)
	return id, true
}

// AddConnection wires two random existing nodes with a bounded number of
// attempts. Pairs that already exist (enabled or not) are skipped, as are
// self-loops and edges out of Genetic nodes, which could never propagate.
func AddConnection(b *brain.Brain, rng *rand.Rand) bool {
	ids := sortedNodeIDs(b)
	if len(ids) < 2 {
		return false
	}
	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		from := ids[rng.Intn(len(ids))]
		to := ids[rng.Intn(len(ids))]
		if from == to {
			continue
		}
		if b.Nodes[from].Affinity == brain.Genetic {
			continue
		}
		weight := rng.Float64()*2 - 1
		if b.Connect(from, to, weight) {
			return true
		}
	}
	return false
}

// ToggleConnection flips the enabled flag of one random connection,
// supporting NEAT-style reactivation of disabled edges.
func ToggleConnection(b *brain.Brain, rng *rand.Rand) bool {
	if len(b.Connections) == 0 {
		return false
	}
	i := rng.Intn(len(b.Connections))
	b.Connections[i].Enabled = !b.Connections[i].Enabled
	return true
}

// MutateNodeParams drifts bias, activation, affinity, or update interval on
// random nodes. Module interface nodes keep their affinity and interval so a
// sensor stays a sensor; only free hidden nodes shift timescale.
func MutateNodeParams(b *brain.Brain, rng *rand.Rand, p Params) int {
	mutated := 0
	for _, id := range sortedNodeIDs(b) {
		if rng.Float64() >= p.NodeParamProb {
			continue
		}
		node := b.Nodes[id]
		switch rng.Intn(4) {
		case 0:
			node.Bias += rng.NormFloat64() * p.Sigma
		case 1:
			node.Activation = randomActivation(rng)
		case 2:
			if node.Module < 0 {
				node.Affinity = brain.Affinity(rng.Intn(3))
			}
		case 3:
			if node.Module < 0 && node.UpdateInterval != brain.UpdateNever {
				intervals := []int32{1, 1, 1, 5, 15, 60}
				node.UpdateInterval = intervals[rng.Intn(len(intervals))]
			}
		}
		b.Nodes[id] = node
		mutated++
	}
	return mutated
}

// Apply runs the full operator suite with the configured probabilities.
// Module membership never changes here, so the name cache stays valid.
func Apply(b *brain.Brain, rng *rand.Rand, p Params) {
	PerturbWeights(b, rng, p)
	if rng.Float64() < p.AddNodeProb {
		AddHiddenNode(b, rng)
	}
	if rng.Float64() < p.AddConnectionProb {
		AddConnection(b, rng)
	}
	if rng.Float64() < p.ToggleProb {
		ToggleConnection(b, rng)
	}
	MutateNodeParams(b, rng, p)
}

// sortedNodeIDs returns node IDs in ascending order so operator choices are
// deterministic for a given RNG state.
func sortedNodeIDs(b *brain.Brain) []brain.NodeID {
	ids := make([]brain.NodeID, 0, len(b.Nodes))
	for id := range b.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func randomActivation(rng *rand.Rand) brain.Activation {
	return brain.Activation(rng.Intn(brain.ActivationCount()))
}
