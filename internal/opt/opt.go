// Package opt provides the momentum parameter update.
package opt

import "gonum.org/v1/gonum/mat"

// Momentum is gradient descent smoothed by an exponential moving
// average of past gradients:
//
//	velocity = beta*velocity + (1-beta)*gradient
//	param    = param - lr*velocity
//
// With Beta == 0 it is plain gradient descent.
type Momentum struct {
	LearningRate float64
	Beta         float64
}

// StepInPlace updates velocity and param in place.
// All three matrices must have the same shape.
func (m Momentum) StepInPlace(param, velocity *mat.Dense, gradient mat.Matrix) {
	velocity.Scale(m.Beta, velocity)
	velocity.Apply(func(i, j int, v float64) float64 {
		return v + (1-m.Beta)*gradient.At(i, j)
	}, velocity)

	param.Apply(func(i, j int, p float64) float64 {
		return p - m.LearningRate*velocity.At(i, j)
	}, param)
}
