package brain

import (
	"math"
	"testing"
)

// addTestNode inserts a behavioral identity node and returns its ID.
func addTestNode(b *Brain, affinity Affinity, bias float64) NodeID {
	return b.AddHiddenNode(affinity, ActIdentity, bias)
}

func TestProcessBiasOnlyNode(t *testing.T) {
	b := New(1)
	id := addTestNode(b, Behavioral, 0.75)

	b.Process(1)

	node := b.Nodes[id]
	if node.Accumulator != 0.75 {
		t.Errorf("expected accumulator == bias (0.75), got %v", node.Accumulator)
	}
	if node.Output != 0.75 {
		t.Errorf("expected output == activation(bias) (0.75), got %v", node.Output)
	}
}

func TestProcessScenarioTwoNodes(t *testing.T) {
	// A -> B, weight 2.0, A.output preset to 3.0 externally.
	b := New(1)
	a := addTestNode(b, Behavioral, 0)
	bNode := addTestNode(b, Behavioral, 0)
	if !b.Connect(a, bNode, 2.0) {
		t.Fatal("Connect failed")
	}

	node := b.Nodes[a]
	node.Output = 3.0
	b.Nodes[a] = node

	b.Process(1)

	got := b.Nodes[bNode]
	if got.Accumulator != 6.0 {
		t.Errorf("expected B.accumulator = 6.0, got %v", got.Accumulator)
	}
	if got.Output != 6.0 {
		t.Errorf("expected B.output = 6.0, got %v", got.Output)
	}
}

func TestProcessGateIsSourceAffinity(t *testing.T) {
	// C has Hormonal affinity but its incoming connection comes from a
	// Behavioral source, so the value must propagate on every tick.
	b := New(1)
	a := addTestNode(b, Behavioral, 0)
	c := addTestNode(b, Hormonal, 0)
	b.Connect(a, c, 1.0)

	node := b.Nodes[a]
	node.Output = 1.0
	b.Nodes[a] = node

	b.Process(1) // tick 1 is off the hormonal cadence

	if got := b.Nodes[c].Accumulator; got != 1.0 {
		t.Errorf("behavioral source must propagate on tick 1, got accumulator %v", got)
	}
}

func TestProcessGeneticFreeze(t *testing.T) {
	b := New(1)
	gene := addTestNode(b, Genetic, 0)
	dst := addTestNode(b, Behavioral, 0)
	b.Connect(gene, dst, 5.0)

	node := b.Nodes[gene]
	node.Output = 1.0
	b.Nodes[gene] = node

	for tick := int64(1); tick <= 180; tick++ {
		b.Process(tick)
		if got := b.Nodes[dst].Accumulator; got != 0 {
			t.Fatalf("tick %d: genetic source leaked into destination accumulator: %v", tick, got)
		}
	}
}

func TestProcessHormonalCadence(t *testing.T) {
	b := New(1)
	src := addTestNode(b, Hormonal, 0)
	dst := addTestNode(b, Behavioral, 0)
	b.Connect(src, dst, 1.0)

	// Freeze the source so Process never recomputes its output.
	node := b.Nodes[src]
	node.Output = 2.0
	node.UpdateInterval = UpdateNever
	b.Nodes[src] = node

	for tick := int64(1); tick <= 180; tick++ {
		b.Process(tick)
		got := b.Nodes[dst].Accumulator
		if tick%60 == 0 {
			if got != 2.0 {
				t.Fatalf("tick %d: expected hormonal propagation (2.0), got %v", tick, got)
			}
		} else if got != 0 {
			t.Fatalf("tick %d: hormonal source propagated off cadence: %v", tick, got)
		}
	}
}

func TestProcessUpdateThrottle(t *testing.T) {
	const interval = 5
	b := New(1)
	id := addTestNode(b, Behavioral, 1.0)

	node := b.Nodes[id]
	node.UpdateInterval = interval
	b.Nodes[id] = node

	// First eligible update happens when tick - frameCounter >= interval.
	for tick := int64(1); tick < interval; tick++ {
		b.Process(tick)
		if got := b.Nodes[id].Output; got != 0 {
			t.Fatalf("tick %d: node updated before its interval elapsed: %v", tick, got)
		}
	}
	b.Process(interval)
	if got := b.Nodes[id]; got.Output != 1.0 || got.FrameCounter != interval {
		t.Fatalf("expected update exactly at tick %d, got output=%v frame=%d", interval, got.Output, got.FrameCounter)
	}

	// Output stays stale until the next interval boundary.
	node = b.Nodes[id]
	node.Bias = 3.0
	b.Nodes[id] = node
	for tick := int64(interval + 1); tick < 2*interval; tick++ {
		b.Process(tick)
		if got := b.Nodes[id].Output; got != 1.0 {
			t.Fatalf("tick %d: expected stale output 1.0, got %v", tick, got)
		}
	}
	b.Process(2 * interval)
	if got := b.Nodes[id].Output; got != 3.0 {
		t.Fatalf("expected refreshed output 3.0 at tick %d, got %v", 2*interval, got)
	}
}

func TestProcessUpdateNeverFreezesNode(t *testing.T) {
	b := New(1)
	id := addTestNode(b, Genetic, 0.5)

	node := b.Nodes[id]
	node.Output = 0.9
	node.UpdateInterval = UpdateNever
	b.Nodes[id] = node

	for tick := int64(1); tick <= 10; tick++ {
		b.Process(tick)
	}
	if got := b.Nodes[id].Output; got != 0.9 {
		t.Errorf("frozen node output changed: %v", got)
	}
}

func TestProcessInputModuleImmunity(t *testing.T) {
	b := New(1)
	sensor := addTestNode(b, Behavioral, 42.0) // huge bias that must never surface
	inst := ModuleInstance{
		ID:          b.AllocModuleID(),
		Definition:  7,
		Name:        "eye",
		Type:        ModuleInput,
		OutputPorts: []string{"intensity"},
		OutputNodes: []NodeID{sensor},
	}
	b.InstallModule(inst)

	b.SetModuleOutput(7, 0, 0.25)
	for tick := int64(1); tick <= 5; tick++ {
		b.Process(tick)
		if got := b.Nodes[sensor].Output; got != 0.25 {
			t.Fatalf("tick %d: evaluator overwrote input-module output: %v", tick, got)
		}
	}
}

func TestProcessDeterminism(t *testing.T) {
	build := func() *Brain {
		b := New(99)
		a := addTestNode(b, Behavioral, 0.3)
		h := addTestNode(b, Hormonal, -0.2)
		g := addTestNode(b, Genetic, 1.0)
		d := addTestNode(b, Behavioral, 0.1)
		b.Connect(a, d, 1.5)
		b.Connect(h, d, -0.5)
		b.Connect(g, d, 2.0)
		b.Connect(a, h, 0.25)
		node := b.Nodes[d]
		node.Activation = ActTanh
		b.Nodes[d] = node
		return b
	}

	b1, b2 := build(), build()
	for tick := int64(1); tick <= 120; tick++ {
		b1.Process(tick)
		b2.Process(tick)
	}
	for id, n1 := range b1.Nodes {
		n2 := b2.Nodes[id]
		if n1.Accumulator != n2.Accumulator || n1.Output != n2.Output {
			t.Errorf("node %d diverged: (%v,%v) vs (%v,%v)", id, n1.Accumulator, n1.Output, n2.Accumulator, n2.Output)
		}
	}
}

func TestActivationFunctions(t *testing.T) {
	cases := []struct {
		act  Activation
		in   float64
		want float64
	}{
		{ActIdentity, 1.5, 1.5},
		{ActSigmoid, 0, 0.5},
		{ActTanh, 0, 0},
		{ActReLU, -2, 0},
		{ActReLU, 2, 2},
		{ActLeakyReLU, -1, -0.01},
		{ActGaussian, 0, 1},
		{ActSin, 0, 0},
		{ActAbs, -3, 3},
		{ActStep, 0.1, 1},
		{ActStep, 0, 0},
		{ActStep, -0.1, 0},
	}
	for _, tc := range cases {
		if got := tc.act.Apply(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("%s(%v) = %v, want %v", tc.act, tc.in, got, tc.want)
		}
	}
	if got := ActGaussian.Apply(2); math.Abs(got-math.Exp(-4)) > 1e-12 {
		t.Errorf("gaussian(2) = %v, want %v", got, math.Exp(-4))
	}
}
