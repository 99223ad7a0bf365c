// Package activations provides elementwise activation functions.
package activations

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if x > 0, else 0.
// The sub-gradient at exactly zero is 0.
func (r ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// Sigmoid activation function.
type Sigmoid struct{}

// Activate computes 1 / (1 + exp(-x))
func (s Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Derivative computes exp(-x) / (1 + exp(-x))^2.
// Large negative x overflows exp, so the mirrored form is used there;
// the derivative is symmetric around zero.
func (s Sigmoid) Derivative(x float64) float64 {
	if x < 0 {
		x = -x
	}
	e := math.Exp(-x)
	return e / ((1 + e) * (1 + e))
}

// Apply writes f(x) for every element of x into a new matrix.
func Apply(act Activation, x mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return act.Activate(v)
	}, x)
	return &out
}

// Derive writes f'(x) for every element of x into a new matrix.
func Derive(act Activation, x mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return act.Derivative(v)
	}, x)
	return &out
}
