package systems

import (
	"math"

	"github.com/pthm-cable/vat/brain"
	"github.com/pthm-cable/vat/components"
	"github.com/pthm-cable/vat/modules"
)

// maxAge normalizes the health module's age sensor.
const maxAge = 300.0 // seconds

// SensorFrame holds everything sensor computation needs for one entity.
type SensorFrame struct {
	Pos         components.Position
	Rot         components.Rotation
	Energy      components.Energy
	Body        components.Body
	VisionRange float32
	Neighbors   []Neighbor
	Tick        int64
	DT          float32
}

// WriteSensors computes all sensor values for one organism and writes them
// onto the brain's input modules. Modules the brain does not carry are
// silently skipped by the port write path; sparse brains pay nothing for
// sensors they never evolved.
func WriteSensors(b *brain.Brain, frame *SensorFrame, radii func(Neighbor) float32) {
	writeVision(b, frame, radii)

	// Stomach: fullness mirrors the energy fraction; energy is absolute.
	b.SetModuleOutput(modules.DefStomach, 0, float64(frame.Energy.Value/frame.Energy.Max))
	b.SetModuleOutput(modules.DefStomach, 1, float64(frame.Energy.Value))

	// Health: vitality decays with age, age saturates at maxAge.
	ageNorm := float64(frame.Energy.Age) / maxAge
	if ageNorm > 1 {
		ageNorm = 1
	}
	b.SetModuleOutput(modules.DefHealth, 0, 1-ageNorm)
	b.SetModuleOutput(modules.DefHealth, 1, ageNorm)

	// Clock: a slow oscillator pair, one cycle per 10 simulated seconds.
	phase := 2 * math.Pi * float64(frame.Tick) * float64(frame.DT) / 10.0
	b.SetModuleOutput(modules.DefClock, 0, math.Sin(phase))
	b.SetModuleOutput(modules.DefClock, 1, math.Cos(phase))
}

// writeVision bins neighbors into forward-facing sectors. Smaller bodies read
// as food, larger ones as threat; signal strength falls off with distance.
func writeVision(b *brain.Brain, frame *SensorFrame, radii func(Neighbor) float32) {
	var food, threat [modules.VisionSectors]float64

	selfRadius := frame.Body.Radius
	for _, n := range frame.Neighbors {
		bearing := float32(math.Atan2(float64(n.DY), float64(n.DX))) - frame.Rot.Heading
		sector := sectorFor(bearing)
		if sector < 0 {
			continue
		}
		dist := float32(math.Sqrt(float64(n.DistSq)))
		signal := float64(1 - dist/frame.VisionRange)
		if signal <= 0 {
			continue
		}
		if radii(n) <= selfRadius {
			food[sector] += signal
		} else {
			threat[sector] += signal
		}
	}

	for i := 0; i < modules.VisionSectors; i++ {
		b.SetModuleOutput(modules.DefVision, i, clampSignal(food[i]))
		b.SetModuleOutput(modules.DefVision, modules.VisionSectors+i, clampSignal(threat[i]))
	}
	// Ambient light is uniform for now; kept as a port so future terrain can
	// vary it without touching the brain core.
	b.SetModuleOutput(modules.DefVision, modules.VisionSectors*2, 1.0)
}

// sectorFor maps a relative bearing onto a forward-facing sector index, or
// -1 when the neighbor is outside the field of view.
func sectorFor(bearing float32) int {
	b := normalizeAngle(bearing)
	const halfFOV = math.Pi * 0.75
	if b < -halfFOV || b > halfFOV {
		return -1
	}
	span := float32(2 * halfFOV / modules.VisionSectors)
	sector := int((b + halfFOV) / span)
	if sector >= modules.VisionSectors {
		sector = modules.VisionSectors - 1
	}
	return sector
}

func clampSignal(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
