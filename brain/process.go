package brain

// hormonalPeriod is the propagation cadence for Hormonal-affinity sources:
// once every 60 ticks, about 1 Hz at the 60-tick/second simulation rate.
const hormonalPeriod = 60

// Process runs one evaluation tick over the whole graph:
//
//  1. Reset: every accumulator is set to its node's bias, so a bias-only node
//     behaves like a fixed gene-value node.
//  2. Propagate: every enabled connection whose source passes the affinity
//     gate adds source.Output * weight to its destination's accumulator.
//     The gate is evaluated on the SOURCE node: Genetic sources never
//     propagate, Hormonal sources only when tick is on the hormonal cadence,
//     Behavioral sources always.
//  3. Activate: every node not driven externally applies its activation
//     function, subject to the update-interval throttle. Skipped nodes keep
//     their previous output; staleness is how slow internal state is
//     simulated.
//
// Process mutates accumulators, outputs, and frame counters in place. It
// never adds or removes nodes or connections, performs no I/O, and is
// deterministic given the graph and tick number. It must not be called
// concurrently with external reads or writes on the same brain; distinct
// brains evaluate in parallel with no coordination.
func (b *Brain) Process(tick int64) {
	hormonalTick := tick%hormonalPeriod == 0

	// 1. Reset
	for id, node := range b.Nodes {
		node.Accumulator = node.Bias
		b.Nodes[id] = node
	}

	// 2. Propagate. Order does not matter: pure summation.
	for i := range b.Connections {
		conn := &b.Connections[i]
		if !conn.Enabled {
			continue
		}
		src, ok := b.Nodes[conn.From]
		if !ok {
			continue
		}
		switch src.Affinity {
		case Genetic:
			continue
		case Hormonal:
			if !hormonalTick {
				continue
			}
		}
		dst, ok := b.Nodes[conn.To]
		if !ok {
			continue
		}
		dst.Accumulator += src.Output * conn.Weight
		b.Nodes[conn.To] = dst
	}

	// 3. Activate
	externallyDriven := b.inputModuleOutputs()
	for id, node := range b.Nodes {
		if externallyDriven[id] {
			continue
		}
		if node.UpdateInterval > 1 {
			if node.UpdateInterval == UpdateNever {
				continue
			}
			if tick-node.FrameCounter < int64(node.UpdateInterval) {
				continue
			}
		}
		node.Output = node.Activation.Apply(node.Accumulator)
		node.FrameCounter = tick
		b.Nodes[id] = node
	}
}

// inputModuleOutputs collects the node IDs that external sensor writes own.
// Those nodes must never be overwritten by the activation step.
func (b *Brain) inputModuleOutputs() map[NodeID]bool {
	driven := make(map[NodeID]bool)
	for i := range b.Modules {
		if b.Modules[i].Type != ModuleInput {
			continue
		}
		for _, id := range b.Modules[i].OutputNodes {
			driven[id] = true
		}
	}
	return driven
}
