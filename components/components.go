// Package components defines the ECS component types for the simulation.
// Brains are not components: the sim owns them in a side table keyed by
// organism ID, so ECS storage stays plain value data.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y float32
}

// Rotation represents an entity's heading.
type Rotation struct {
	Heading float32 // radians
}

// Body holds physical properties of an entity.
type Body struct {
	Radius float32
}

// Energy tracks an entity's metabolic state.
// Value is a fraction of Max; brain sensor inputs use it directly.
type Energy struct {
	Value float32
	Max   float32
	Age   float32 // seconds alive
	Alive bool
}

// Organism bundles identity and reproduction state.
type Organism struct {
	ID            uint32
	Generation    uint32
	ReproCooldown float32 // seconds until the organism can reproduce again
	LastBite      float32 // mouth output from the last tick, for feeding
	LastThrust    float32 // motor output from the last tick, for move cost
}
