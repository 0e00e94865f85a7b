package genome

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/vat/brain"
	"github.com/pthm-cable/vat/modules"
)

func buildBrain(t *testing.T, seed int64) *brain.Brain {
	t.Helper()
	b := brain.New(seed)
	modules.InitializeTier1(b)
	rng := rand.New(rand.NewSource(seed))
	modules.BootstrapWiring(b, rng, 0.5)
	modules.SeedGeneValues(b, rng)
	b.Templates = append(b.Templates, &brain.MetaTemplate{ID: 1, Name: "oscillator"})

	// Run a few ticks so transient state (accumulators, frame counters) is
	// nonzero and must round-trip too.
	for tick := int64(1); tick <= 7; tick++ {
		b.SetModuleOutput(modules.DefVision, 0, 0.3)
		b.Process(tick)
	}
	return b
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := buildBrain(t, 11)
	rec := Encode("brain-1", b)

	restored, err := Decode(rec)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if restored.NodeCount() != b.NodeCount() {
		t.Fatalf("node count: %d vs %d", restored.NodeCount(), b.NodeCount())
	}
	for id, n := range b.Nodes {
		if restored.Nodes[id] != n {
			t.Errorf("node %d did not round-trip: %+v vs %+v", id, restored.Nodes[id], n)
		}
	}
	if len(restored.Connections) != len(b.Connections) {
		t.Fatalf("connection count: %d vs %d", len(restored.Connections), len(b.Connections))
	}
	for i, c := range b.Connections {
		if restored.Connections[i] != c {
			t.Errorf("connection %d did not round-trip", i)
		}
	}
	if restored.Seed != b.Seed {
		t.Errorf("seed did not round-trip")
	}

	// Counters carry over so the lineage keeps allocating unique IDs.
	bn, bm := b.Counters()
	rn, rm := restored.Counters()
	if rn != bn || rm != bm {
		t.Errorf("counters: (%d,%d) vs (%d,%d)", rn, rm, bn, bm)
	}

	// Name cache is rebuilt on decode.
	want, _ := b.NodeByName("motor.turn")
	got, ok := restored.NodeByName("motor.turn")
	if !ok || got != want {
		t.Errorf("motor.turn after decode: (%d,%v), want %d", got, ok, want)
	}

	// Templates round-trip by value here; sharing only applies within a
	// process lineage.
	if len(restored.Templates) != 1 || restored.Templates[0].Name != "oscillator" {
		t.Errorf("template did not round-trip")
	}
}

func TestRoundTripPreservesEvaluation(t *testing.T) {
	b := buildBrain(t, 13)
	restored, err := Decode(Encode("brain-2", b))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	// Identical state must produce identical evaluation from here on.
	for tick := int64(8); tick <= 130; tick++ {
		b.Process(tick)
		restored.Process(tick)
	}
	for id, n := range b.Nodes {
		r := restored.Nodes[id]
		if n.Output != r.Output || n.Accumulator != r.Accumulator {
			t.Errorf("node %d diverged after round-trip: (%v,%v) vs (%v,%v)",
				id, n.Accumulator, n.Output, r.Accumulator, r.Output)
		}
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	b := buildBrain(t, 17)
	rec := Encode("brain-3", b)

	data, err := Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	parsed, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if parsed.ID != rec.ID || len(parsed.Nodes) != len(rec.Nodes) {
		t.Errorf("JSON round-trip lost data")
	}
}

func TestDecodeRejectsBadVersions(t *testing.T) {
	rec := Encode("brain-4", buildBrain(t, 19))
	rec.SchemaVersion = 99
	if _, err := Decode(rec); err == nil {
		t.Error("expected version mismatch error")
	}
}

func TestDecodeRejectsDanglingConnection(t *testing.T) {
	rec := Encode("brain-5", buildBrain(t, 23))
	rec.Connections = append(rec.Connections, ConnectionRecord{From: 9999, To: 0, Weight: 1, Enabled: true})
	if _, err := Decode(rec); err == nil {
		t.Error("expected error for connection referencing missing node")
	}
}

func TestEncodeIsStable(t *testing.T) {
	b := buildBrain(t, 29)
	d1, err := Marshal(Encode("brain-6", b))
	if err != nil {
		t.Fatal(err)
	}
	d2, err := Marshal(Encode("brain-6", b))
	if err != nil {
		t.Fatal(err)
	}
	if string(d1) != string(d2) {
		t.Error("encoding the same brain twice produced different payloads")
	}
}
