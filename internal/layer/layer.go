// Package layer provides neural network layer implementations.
//
// All layers work on feature-major batches: a batch of m samples with n
// features is an n x m matrix, one sample per column.
package layer

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimensionMismatch is the panic value cause when a batch or gradient
	// does not fit the layer it is passed to.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNoCachedInput is the panic value cause when Backward is called
	// without a Forward call whose input has not been consumed yet.
	ErrNoCachedInput = errors.New("backward called without a cached forward input")
)

// Layer is a neural network layer.
//
// Forward caches its input, replacing any earlier cache. Backward consumes
// that cache, so it can run at most once per Forward; a second call panics
// with ErrNoCachedInput. During training every Forward is followed by exactly
// one Backward. Update applies the gradient computed by the last Backward and
// is a no-op for layers without parameters.
type Layer interface {
	Forward(x *mat.Dense) *mat.Dense
	Backward(grad *mat.Dense) *mat.Dense
	Update(alpha, beta float64)
	InSize() int
	OutSize() int
}

// cache holds the input of the last Forward call until Backward consumes it.
type cache struct {
	input *mat.Dense
}

func (c *cache) store(x *mat.Dense) {
	c.input = mat.DenseCopyOf(x)
}

func (c *cache) take(name string) *mat.Dense {
	if c.input == nil {
		panic(errors.Wrap(ErrNoCachedInput, name))
	}
	x := c.input
	c.input = nil
	return x
}

// Cached reports whether a Forward input is waiting for Backward.
func (c *cache) Cached() bool {
	return c.input != nil
}

func checkRows(name string, m mat.Matrix, want int) {
	if r, _ := m.Dims(); r != want {
		panic(errors.Wrapf(ErrDimensionMismatch, "%s: got %d rows, want %d", name, r, want))
	}
}

func checkDims(name string, m mat.Matrix, rows, cols int) {
	if r, c := m.Dims(); r != rows || c != cols {
		panic(errors.Wrapf(ErrDimensionMismatch, "%s: got %dx%d, want %dx%d", name, r, c, rows, cols))
	}
}
