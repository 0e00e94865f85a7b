package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/vat/brain"
	"github.com/pthm-cable/vat/components"
	"github.com/pthm-cable/vat/modules"
)

func TestWriteSensorsFeedsStomach(t *testing.T) {
	b := brain.New(1)
	modules.InitializeTier1(b)

	frame := &SensorFrame{
		Energy:      components.Energy{Value: 0.5, Max: 1.0, Alive: true},
		Body:        components.Body{Radius: 8},
		VisionRange: 120,
		Tick:        1,
		DT:          1.0 / 60,
	}
	WriteSensors(b, frame, func(Neighbor) float32 { return 8 })

	if got := readPort(t, b, "stomach.fullness"); got != 0.5 {
		t.Errorf("stomach.fullness = %v, want 0.5", got)
	}
	if got := readPort(t, b, "vision.light"); got != 1.0 {
		t.Errorf("vision.light = %v, want 1.0", got)
	}
}

func TestWriteSensorsVisionSectors(t *testing.T) {
	b := brain.New(1)
	modules.InitializeTier1(b)

	// One small neighbor dead ahead, one large neighbor behind (out of FOV).
	frame := &SensorFrame{
		Rot:         components.Rotation{Heading: 0},
		Energy:      components.Energy{Value: 1, Max: 1, Alive: true},
		Body:        components.Body{Radius: 10},
		VisionRange: 100,
		Neighbors: []Neighbor{
			{DX: 50, DY: 0, DistSq: 2500},
			{DX: -50, DY: 0, DistSq: 2500},
		},
		DT: 1.0 / 60,
	}
	radii := map[int]float32{0: 5, 1: 20}
	i := 0
	WriteSensors(b, frame, func(Neighbor) float32 {
		r := radii[i]
		i++
		return r
	})

	// Forward neighbor lands in the center sector as food.
	center := modules.VisionSectors / 2
	if got := readPortIdx(t, b, modules.DefVision, center); got != 0.5 {
		t.Errorf("center food sector = %v, want 0.5", got)
	}
	// The rear neighbor is outside the FOV: every threat sector stays zero.
	for s := 0; s < modules.VisionSectors; s++ {
		if got := readPortIdx(t, b, modules.DefVision, modules.VisionSectors+s); got != 0 {
			t.Errorf("threat sector %d = %v, want 0", s, got)
		}
	}
}

func TestSectorForSweep(t *testing.T) {
	const halfFOV = math.Pi * 0.75

	// A full sweep across the field of view must hit every sector in order,
	// and bearings outside it must report no sector at all.
	seen := make(map[int]bool)
	prev := -1
	for b := float32(-halfFOV + 1e-3); b < halfFOV; b += 0.01 {
		s := sectorFor(b)
		if s < 0 || s >= modules.VisionSectors {
			t.Fatalf("sectorFor(%v) = %d, out of range", b, s)
		}
		if s < prev {
			t.Fatalf("sectorFor not monotonic: %d after %d at bearing %v", s, prev, b)
		}
		prev = s
		seen[s] = true
	}
	if len(seen) != modules.VisionSectors {
		t.Errorf("sweep covered %d sectors, want %d", len(seen), modules.VisionSectors)
	}

	if got := sectorFor(math.Pi); got != -1 {
		t.Errorf("sectorFor(pi) = %d, want -1", got)
	}
	if got := sectorFor(float32(-halfFOV) - 0.01); got != -1 {
		t.Errorf("behind-left bearing gave sector %d, want -1", got)
	}
}

func TestWriteSensorsSparseBrain(t *testing.T) {
	// A brain with no modules at all accepts sensor writes as no-ops.
	b := brain.New(1)
	frame := &SensorFrame{
		Energy:      components.Energy{Value: 1, Max: 1},
		VisionRange: 100,
		DT:          1.0 / 60,
	}
	WriteSensors(b, frame, func(Neighbor) float32 { return 1 }) // must not panic
}

func TestReadActuatorsMovesForward(t *testing.T) {
	b := brain.New(1)
	modules.InitializeTier1(b)

	// Drive motor.thrust directly through its port node.
	id, ok := b.ModuleInputNode(modules.DefMotor, 1)
	if !ok {
		t.Fatal("motor.thrust missing")
	}
	node := b.Nodes[id]
	node.Output = 1.0
	b.Nodes[id] = node

	limits := ActuatorLimits{MaxSpeed: 60, MaxTurnRate: 3, Drag: 0}
	intent := ReadActuators(b, components.Position{X: 100, Y: 100}, components.Velocity{},
		components.Rotation{Heading: 0}, limits, 1000, 1000, 1.0/60)

	if intent.NewVelX <= 0 {
		t.Errorf("expected forward velocity, got %v", intent.NewVelX)
	}
	if math.Abs(float64(intent.NewVelY)) > 1e-3 {
		t.Errorf("expected no lateral velocity, got %v", intent.NewVelY)
	}
	if intent.NewPosX <= 100 {
		t.Errorf("expected position advance, got %v", intent.NewPosX)
	}
}

func TestReadActuatorsWrapsWorld(t *testing.T) {
	b := brain.New(1) // no modules: all commands neutral
	limits := ActuatorLimits{MaxSpeed: 60, MaxTurnRate: 3, Drag: 0}
	intent := ReadActuators(b, components.Position{X: 999.9, Y: 0.05}, components.Velocity{X: 60, Y: -60},
		components.Rotation{}, limits, 1000, 1000, 1.0/60)

	if intent.NewPosX < 0 || intent.NewPosX >= 1000 || intent.NewPosY < 0 || intent.NewPosY >= 1000 {
		t.Errorf("position escaped world: (%v, %v)", intent.NewPosX, intent.NewPosY)
	}
}

func TestSpatialGridQuery(t *testing.T) {
	grid := NewSpatialGrid(1000, 1000, 50)
	// Entity queries exclude the querying entity itself; use zero-value
	// entities distinctly by position only. ark zero Entity is fine here
	// because we pass a nil-safe posMap via a map-backed stub.
	// The grid itself is exercised through Insert/Clear cell bookkeeping.
	grid.Clear()
	if got := grid.cellIndex(0, 0); got != 0 {
		t.Errorf("cellIndex(0,0) = %d", got)
	}
	if got := grid.cellIndex(-10, -10); got < 0 {
		t.Errorf("negative coords must wrap, got %d", got)
	}
}

func TestToroidalDelta(t *testing.T) {
	if got := toroidalDelta(900, 1000); got != -100 {
		t.Errorf("toroidalDelta(900, 1000) = %v, want -100", got)
	}
	if got := toroidalDelta(-900, 1000); got != 100 {
		t.Errorf("toroidalDelta(-900, 1000) = %v, want 100", got)
	}
	if got := toroidalDelta(100, 1000); got != 100 {
		t.Errorf("toroidalDelta(100, 1000) = %v, want 100", got)
	}
}

func readPort(t *testing.T, b *brain.Brain, name string) float64 {
	t.Helper()
	id, ok := b.NodeByName(name)
	if !ok {
		t.Fatalf("port %q not found", name)
	}
	return b.Nodes[id].Output
}

func readPortIdx(t *testing.T, b *brain.Brain, def int32, port int) float64 {
	t.Helper()
	id, ok := b.ModuleOutputNode(def, port)
	if !ok {
		t.Fatalf("definition %d port %d not found", def, port)
	}
	return b.Nodes[id].Output
}
