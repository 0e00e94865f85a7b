package systems

import (
	"math"

	"github.com/pthm-cable/vat/brain"
	"github.com/pthm-cable/vat/components"
	"github.com/pthm-cable/vat/modules"
)

// ActuatorLimits carries the per-entity movement envelope.
type ActuatorLimits struct {
	MaxSpeed    float32
	MaxTurnRate float32
	Drag        float32
}

// Intent captures one tick of computed movement, applied after the parallel
// phase so component writes stay single-threaded.
type Intent struct {
	NewHeading float32
	NewVelX    float32
	NewVelY    float32
	NewPosX    float32
	NewPosY    float32
	Thrust     float32
	Bite       float32
}

// ReadActuators pulls actuator commands off the brain's output modules and
// integrates one tick of movement. Pure math over the snapshot: no shared
// state, safe to run from worker goroutines.
func ReadActuators(b *brain.Brain, pos components.Position, vel components.Velocity, rot components.Rotation,
	limits ActuatorLimits, worldW, worldH, dt float32) Intent {

	turn := float32(b.GetModuleInput(modules.DefMotor, 0))
	thrust := float32(b.GetModuleInput(modules.DefMotor, 1))
	bite := float32(b.GetModuleInput(modules.DefMouth, 0))

	if turn > 1 {
		turn = 1
	} else if turn < -1 {
		turn = -1
	}
	if thrust < 0 {
		thrust = 0
	} else if thrust > 1 {
		thrust = 1
	}

	newHeading := normalizeAngle(rot.Heading + turn*limits.MaxTurnRate*dt)

	targetSpeed := thrust * limits.MaxSpeed
	desiredVelX := float32(math.Cos(float64(newHeading))) * targetSpeed
	desiredVelY := float32(math.Sin(float64(newHeading))) * targetSpeed

	// Exponential approach toward desired velocity, then drag.
	blend := 1 - float32(math.Exp(float64(-4*dt)))
	newVelX := vel.X + (desiredVelX-vel.X)*blend
	newVelY := vel.Y + (desiredVelY-vel.Y)*blend
	dragFactor := float32(math.Exp(float64(-limits.Drag * dt)))
	newVelX *= dragFactor
	newVelY *= dragFactor

	speed := float32(math.Sqrt(float64(newVelX*newVelX + newVelY*newVelY)))
	if speed > limits.MaxSpeed {
		scale := limits.MaxSpeed / speed
		newVelX *= scale
		newVelY *= scale
	}

	return Intent{
		NewHeading: newHeading,
		NewVelX:    newVelX,
		NewVelY:    newVelY,
		NewPosX:    wrapCoord(pos.X+newVelX*dt, worldW),
		NewPosY:    wrapCoord(pos.Y+newVelY*dt, worldH),
		Thrust:     thrust,
		Bite:       bite,
	}
}

// wrapCoord wraps a coordinate onto the toroidal world.
func wrapCoord(v, span float32) float32 {
	v = float32(math.Mod(float64(v), float64(span)))
	if v < 0 {
		v += span
	}
	return v
}
