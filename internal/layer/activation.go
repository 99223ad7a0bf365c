package layer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ekreutz/ml-from-scratch/internal/activations"
)

// elementwise is a parameter-free layer applying an activation to every
// element. The gradient is grad ⊙ f'(x) with x the cached input.
type elementwise struct {
	cache

	name string
	act  activations.Activation
	size int
}

func (e *elementwise) Forward(x *mat.Dense) *mat.Dense {
	checkRows(e.name+" forward", x, e.size)
	e.store(x)
	return activations.Apply(e.act, x)
}

func (e *elementwise) Backward(grad *mat.Dense) *mat.Dense {
	x := e.take(e.name + " backward")
	r, c := x.Dims()
	checkDims(e.name+" backward", grad, r, c)

	out := activations.Derive(e.act, x)
	out.MulElem(out, grad)
	return out
}

// Update is a no-op: the layer has no parameters.
func (e *elementwise) Update(alpha, beta float64) {}

func (e *elementwise) InSize() int  { return e.size }
func (e *elementwise) OutSize() int { return e.size }

// ReLU is max(0, x). Backward passes the gradient where the cached input is
// positive and zeroes it elsewhere, including at exactly zero.
type ReLU struct {
	elementwise
}

// NewReLU creates a ReLU layer over size features.
func NewReLU(size int) *ReLU {
	return &ReLU{elementwise{name: "relu", act: activations.ReLU{}, size: size}}
}

// Sigmoid is 1/(1+exp(-x)). Its derivative is evaluated from the cached
// input as exp(-x)/(1+exp(-x))², not from the forward output.
type Sigmoid struct {
	elementwise
}

// NewSigmoid creates a Sigmoid layer over size features.
func NewSigmoid(size int) *Sigmoid {
	return &Sigmoid{elementwise{name: "sigmoid", act: activations.Sigmoid{}, size: size}}
}
