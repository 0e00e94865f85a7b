package brain

import "testing"

func TestConnectRejectsMissingEndpoints(t *testing.T) {
	b := New(1)
	a := b.AddHiddenNode(Behavioral, ActIdentity, 0)

	if b.Connect(a, 999, 1.0) {
		t.Error("expected Connect to reject missing destination")
	}
	if b.Connect(999, a, 1.0) {
		t.Error("expected Connect to reject missing source")
	}
	if b.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections, got %d", b.ConnectionCount())
	}
}

func TestConnectRejectsDuplicates(t *testing.T) {
	b := New(1)
	a := b.AddHiddenNode(Behavioral, ActIdentity, 0)
	c := b.AddHiddenNode(Behavioral, ActIdentity, 0)

	if !b.Connect(a, c, 1.0) {
		t.Fatal("first Connect failed")
	}
	if b.Connect(a, c, 2.0) {
		t.Error("duplicate (from,to) pair was accepted")
	}
	if b.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", b.ConnectionCount())
	}
	// The reverse direction is a distinct edge.
	if !b.Connect(c, a, 1.0) {
		t.Error("reverse connection was rejected")
	}
}

func TestNodeIDsAreMonotonic(t *testing.T) {
	b := New(1)
	prev := NodeID(-1)
	for i := 0; i < 10; i++ {
		id := b.AddHiddenNode(Behavioral, ActIdentity, 0)
		if id <= prev {
			t.Fatalf("node ID went backwards: %d after %d", id, prev)
		}
		prev = id
	}
}

func TestConnectionTypeStub(t *testing.T) {
	// Modulatory/Gating are reserved: every affinity pairing yields Standard.
	affinities := []Affinity{Behavioral, Hormonal, Genetic}
	for _, from := range affinities {
		for _, to := range affinities {
			if got := connectionTypeFor(from, to); got != ConnStandard {
				t.Errorf("connectionTypeFor(%s, %s) = %s, want standard", from, to, got)
			}
		}
	}
}

func newTestModule(b *Brain, def int32, name string, typ ModuleType, inPorts, outPorts []string) ModuleInstance {
	inst := ModuleInstance{
		ID:          b.AllocModuleID(),
		Definition:  def,
		Name:        name,
		Type:        typ,
		InputPorts:  inPorts,
		OutputPorts: outPorts,
	}
	for range inPorts {
		id := b.AllocNodeID()
		b.AddNode(Node{ID: id, Kind: KindOutput, Affinity: Behavioral, UpdateInterval: 1, Module: inst.ID})
		inst.InputNodes = append(inst.InputNodes, id)
	}
	for range outPorts {
		id := b.AllocNodeID()
		b.AddNode(Node{ID: id, Kind: KindInput, Affinity: Behavioral, UpdateInterval: 1, Module: inst.ID})
		inst.OutputNodes = append(inst.OutputNodes, id)
	}
	return inst
}

func TestModulePortLookup(t *testing.T) {
	b := New(1)
	eye := newTestModule(b, 1, "eye", ModuleInput, nil, []string{"left", "right"})
	motor := newTestModule(b, 2, "motor", ModuleOutput, []string{"turn", "thrust"}, nil)
	b.InstallModule(eye)
	b.InstallModule(motor)

	if id, ok := b.NodeByName("eye.right"); !ok || id != eye.OutputNodes[1] {
		t.Errorf("eye.right lookup: got (%d,%v)", id, ok)
	}
	if id, ok := b.NodeByName("motor.turn"); !ok || id != motor.InputNodes[0] {
		t.Errorf("motor.turn lookup: got (%d,%v)", id, ok)
	}
	if _, ok := b.NodeByName("nose.sniff"); ok {
		t.Error("lookup of absent module should miss")
	}

	if id, ok := b.ModuleOutputNode(1, 0); !ok || id != eye.OutputNodes[0] {
		t.Errorf("positional output lookup: got (%d,%v)", id, ok)
	}
	if _, ok := b.ModuleOutputNode(1, 5); ok {
		t.Error("out-of-range port index should miss")
	}
	if _, ok := b.ModuleInputNode(42, 0); ok {
		t.Error("absent definition should miss")
	}
}

func TestModuleIOSparseDefaults(t *testing.T) {
	b := New(1)

	// No modules at all: reads return neutral 0, writes are no-ops.
	if got := b.GetModuleInput(3, 0); got != 0 {
		t.Errorf("expected neutral 0 from absent module, got %v", got)
	}
	b.SetModuleOutput(3, 0, 1.5) // must not panic

	motor := newTestModule(b, 2, "motor", ModuleOutput, []string{"turn"}, nil)
	b.InstallModule(motor)
	if got := b.GetModuleInput(2, 7); got != 0 {
		t.Errorf("expected neutral 0 from out-of-range port, got %v", got)
	}
}

func TestSetModuleOutputWritesSensorNode(t *testing.T) {
	b := New(1)
	eye := newTestModule(b, 1, "eye", ModuleInput, nil, []string{"intensity"})
	b.InstallModule(eye)

	b.SetModuleOutput(1, 0, 0.7)
	if got := b.Nodes[eye.OutputNodes[0]].Output; got != 0.7 {
		t.Errorf("sensor write did not land: %v", got)
	}
}

func TestConnectModules(t *testing.T) {
	b := New(1)
	b.InstallModule(newTestModule(b, 1, "eye", ModuleInput, nil, []string{"intensity"}))
	b.InstallModule(newTestModule(b, 2, "motor", ModuleOutput, []string{"thrust"}, nil))

	if !b.ConnectModules(1, 0, 2, 0, 0.5) {
		t.Fatal("symbolic wiring between installed modules failed")
	}
	if b.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", b.ConnectionCount())
	}

	// Wiring against a module the brain never instantiated is a tolerated no-op.
	if b.ConnectModules(9, 0, 2, 0, 0.5) {
		t.Error("wiring from absent module should fail silently")
	}
	if b.ConnectModules(1, 0, 9, 0, 0.5) {
		t.Error("wiring to absent module should fail silently")
	}
	if b.ConnectionCount() != 1 {
		t.Errorf("failed wiring must not add connections, got %d", b.ConnectionCount())
	}
}

func TestRebuildNameCache(t *testing.T) {
	b := New(1)
	eye := newTestModule(b, 1, "eye", ModuleInput, nil, []string{"intensity"})
	b.InstallModule(eye)

	// Simulate a structural mutation renaming module membership.
	b.Modules[0].Name = "photoreceptor"
	b.RebuildNameCache()

	if _, ok := b.NodeByName("eye.intensity"); ok {
		t.Error("stale cache entry survived rebuild")
	}
	if id, ok := b.NodeByName("photoreceptor.intensity"); !ok || id != eye.OutputNodes[0] {
		t.Errorf("rebuilt cache missing new entry: (%d,%v)", id, ok)
	}
}
