package layer

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ekreutz/ml-from-scratch/internal/opt"
)

// Linear is a fully connected affine layer: W·x + b.
// W is out x in and b is out x 1, broadcast across the samples of a batch.
type Linear struct {
	cache

	weights *mat.Dense
	bias    *mat.Dense
	inSize  int
	outSize int

	gradW *mat.Dense
	gradB *mat.Dense
	velW  *mat.Dense
	velB  *mat.Dense
}

// NewLinear creates a linear layer with Glorot uniform weights and small
// uniform biases drawn from rng. Velocities start at zero.
func NewLinear(in, out int, rng *rand.Rand) *Linear {
	weights := mat.NewDense(out, in, nil)
	bias := mat.NewDense(out, 1, nil)

	scale := math.Sqrt(2.0 / (float64(in) + float64(out)))
	weights.Apply(func(_, _ int, _ float64) float64 {
		return rng.Float64()*2*scale - scale
	}, weights)
	bias.Apply(func(_, _ int, _ float64) float64 {
		return rng.Float64()*0.2 - 0.1
	}, bias)

	return NewLinearFrom(weights, bias)
}

// NewLinearFrom creates a linear layer around the given parameters.
// bias must be a column vector with one row per row of weights.
func NewLinearFrom(weights, bias *mat.Dense) *Linear {
	out, in := weights.Dims()
	checkDims("linear bias", bias, out, 1)
	return &Linear{
		weights: weights,
		bias:    bias,
		inSize:  in,
		outSize: out,
		gradW:   mat.NewDense(out, in, nil),
		gradB:   mat.NewDense(out, 1, nil),
		velW:    mat.NewDense(out, in, nil),
		velB:    mat.NewDense(out, 1, nil),
	}
}

// Forward computes W·x + b for every column of x.
func (l *Linear) Forward(x *mat.Dense) *mat.Dense {
	checkRows("linear forward", x, l.inSize)
	l.store(x)

	_, m := x.Dims()
	out := mat.NewDense(l.outSize, m, nil)
	out.Mul(l.weights, x)
	out.Apply(func(i, _ int, v float64) float64 {
		return v + l.bias.At(i, 0)
	}, out)
	return out
}

// Backward stores the batch-averaged parameter gradients
//
//	dW = grad·xᵀ / m
//	db = mean(grad, over samples)
//
// and returns Wᵀ·grad.
func (l *Linear) Backward(grad *mat.Dense) *mat.Dense {
	x := l.take("linear backward")
	_, m := x.Dims()
	checkDims("linear backward", grad, l.outSize, m)

	l.gradW.Mul(grad, x.T())
	l.gradW.Scale(1/float64(m), l.gradW)

	for i := 0; i < l.outSize; i++ {
		l.gradB.Set(i, 0, mat.Sum(grad.RowView(i))/float64(m))
	}

	gradIn := mat.NewDense(l.inSize, m, nil)
	gradIn.Mul(l.weights.T(), grad)
	return gradIn
}

// Update applies one momentum step to the weights and bias.
func (l *Linear) Update(alpha, beta float64) {
	step := opt.Momentum{LearningRate: alpha, Beta: beta}
	step.StepInPlace(l.weights, l.velW, l.gradW)
	step.StepInPlace(l.bias, l.velB, l.gradB)
}

// InSize returns the input size of the layer.
func (l *Linear) InSize() int {
	return l.inSize
}

// OutSize returns the output size of the layer.
func (l *Linear) OutSize() int {
	return l.outSize
}

// Weights returns the weight matrix. It is updated in place by Update.
func (l *Linear) Weights() *mat.Dense {
	return l.weights
}

// Bias returns the bias column vector. It is updated in place by Update.
func (l *Linear) Bias() *mat.Dense {
	return l.bias
}

// WeightGrad returns the weight gradient from the last Backward.
func (l *Linear) WeightGrad() *mat.Dense {
	return l.gradW
}

// BiasGrad returns the bias gradient from the last Backward.
func (l *Linear) BiasGrad() *mat.Dense {
	return l.gradB
}

// WeightVelocity returns the momentum accumulator for the weights.
func (l *Linear) WeightVelocity() *mat.Dense {
	return l.velW
}

// BiasVelocity returns the momentum accumulator for the bias.
func (l *Linear) BiasVelocity() *mat.Dense {
	return l.velB
}

// NumParams returns the number of trainable values.
func (l *Linear) NumParams() int {
	return l.outSize*l.inSize + l.outSize
}
