// Package loss provides loss functions over batches of predictions.
//
// Predictions and targets share one shape (n_classes x n_samples). Forward
// returns the mean over every entry; Backward returns the elementwise
// derivative of the summed loss, leaving batch averaging to the layers.
package loss

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShape is the panic value cause when predictions and targets differ in shape.
var ErrShape = errors.New("prediction and target must have same shape")

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue mat.Matrix) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue mat.Matrix) *mat.Dense
}

func checkShape(name string, yPred, yTrue mat.Matrix) (int, int) {
	pr, pc := yPred.Dims()
	tr, tc := yTrue.Dims()
	if pr != tr || pc != tc {
		panic(errors.Wrapf(ErrShape, "%s: %dx%d vs %dx%d", name, pr, pc, tr, tc))
	}
	return pr, pc
}

// BinaryCrossEntropy treats every output unit as an independent Bernoulli
// probability (sigmoid output, not softmax):
//
//	L  = -mean( y·log(ŷ) + (1-y)·log(1-ŷ) )
//	dL = -( y/ŷ - (1-y)/(1-ŷ) )
//
// With Epsilon == 0 predictions of exactly 0 or 1 produce Inf or NaN, which
// propagate unchanged. With Epsilon > 0 predictions are clamped to
// [Epsilon, 1-Epsilon] before both Forward and Backward.
type BinaryCrossEntropy struct {
	Epsilon float64
}

func (b BinaryCrossEntropy) clamp(p float64) float64 {
	if b.Epsilon <= 0 {
		return p
	}
	return math.Min(math.Max(p, b.Epsilon), 1-b.Epsilon)
}

// Forward computes the cross entropy averaged over all entries.
func (b BinaryCrossEntropy) Forward(yPred, yTrue mat.Matrix) float64 {
	rows, cols := checkShape("BinaryCrossEntropy", yPred, yTrue)

	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			p := b.clamp(yPred.At(i, j))
			y := yTrue.At(i, j)
			sum += y*math.Log(p) + (1-y)*math.Log(1-p)
		}
	}
	return -sum / float64(rows*cols)
}

// Backward computes -(y/ŷ - (1-y)/(1-ŷ)) elementwise.
func (b BinaryCrossEntropy) Backward(yPred, yTrue mat.Matrix) *mat.Dense {
	checkShape("BinaryCrossEntropy", yPred, yTrue)

	var grad mat.Dense
	grad.Apply(func(i, j int, p float64) float64 {
		p = b.clamp(p)
		y := yTrue.At(i, j)
		return -(y/p - (1-y)/(1-p))
	}, yPred)
	return &grad
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue mat.Matrix) float64 {
	rows, cols := checkShape("MSE", yPred, yTrue)

	var diff mat.Dense
	diff.Sub(yPred, yTrue)
	diff.MulElem(&diff, &diff)
	return mat.Sum(&diff) / float64(rows*cols)
}

// Backward computes 2 * (y_pred - y_true) elementwise.
func (m MSE) Backward(yPred, yTrue mat.Matrix) *mat.Dense {
	checkShape("MSE", yPred, yTrue)

	var grad mat.Dense
	grad.Sub(yPred, yTrue)
	grad.Scale(2, &grad)
	return &grad
}

// ByName returns the loss registered under name.
func ByName(name string, epsilon float64) (Loss, error) {
	switch name {
	case "", "bce", "cross_entropy":
		return BinaryCrossEntropy{Epsilon: epsilon}, nil
	case "mse":
		return MSE{}, nil
	default:
		return nil, errors.Errorf("unknown loss %q", name)
	}
}
