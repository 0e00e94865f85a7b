package brain

import "math"

// Activation selects the function applied to a node's accumulator.
type Activation uint8

const (
	ActIdentity Activation = iota
	ActSigmoid
	ActTanh
	ActReLU
	ActLeakyReLU
	ActGaussian
	ActSin
	ActAbs
	ActStep
)

// activationNames maps tags to display names, in constant order.
var activationNames = []string{
	"identity", "sigmoid", "tanh", "relu", "leaky_relu",
	"gaussian", "sin", "abs", "step",
}

// String returns the display name of the activation function.
func (a Activation) String() string {
	if int(a) < len(activationNames) {
		return activationNames[a]
	}
	return "unknown"
}

// ActivationCount is the number of defined activation functions.
func ActivationCount() int {
	return len(activationNames)
}

// Apply evaluates the activation function at x.
// Unknown tags fall back to identity so a mutated graph can never fault the
// evaluator.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case ActIdentity:
		return x
	case ActSigmoid:
		return 1.0 / (1.0 + math.Exp(-x))
	case ActTanh:
		return math.Tanh(x)
	case ActReLU:
		if x < 0 {
			return 0
		}
		return x
	case ActLeakyReLU:
		if x > 0 {
			return x
		}
		return 0.01 * x
	case ActGaussian:
		return math.Exp(-x * x)
	case ActSin:
		return math.Sin(x)
	case ActAbs:
		return math.Abs(x)
	case ActStep:
		if x > 0 {
			return 1
		}
		return 0
	}
	return x
}
