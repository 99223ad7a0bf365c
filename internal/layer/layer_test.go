package layer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

const gradTol = 1e-4

var central = &fd.Settings{Formula: fd.Central, Step: 1e-6}

func randomDense(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}

// projected returns f(v) = sum(r ⊙ out(v)), a scalar whose gradient with
// respect to the layer output is r.
func projected(r *mat.Dense, out func([]float64) *mat.Dense) func([]float64) float64 {
	return func(v []float64) float64 {
		var p mat.Dense
		p.MulElem(r, out(v))
		return mat.Sum(&p)
	}
}

func assertSliceInDelta(t *testing.T, want, got []float64, delta float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "index %d", i)
	}
}

// TestLinearForward tests the affine map with bias broadcast.
func TestLinearForward(t *testing.T) {
	l := NewLinearFrom(
		mat.NewDense(2, 3, []float64{1, 0, -1, 2, 1, 0}),
		mat.NewDense(2, 1, []float64{0.5, -1}),
	)

	x := mat.NewDense(3, 2, []float64{
		1, 4,
		2, 5,
		3, 6,
	})
	out := l.Forward(x)

	want := mat.NewDense(2, 2, []float64{
		1 - 3 + 0.5, 4 - 6 + 0.5,
		2 + 2 - 1, 8 + 5 - 1,
	})
	assert.True(t, mat.EqualApprox(want, out, 1e-12), "got %v", mat.Formatted(out))
}

func TestLinearBackwardKnownValues(t *testing.T) {
	l := NewLinearFrom(
		mat.NewDense(1, 2, []float64{2, -1}),
		mat.NewDense(1, 1, []float64{0}),
	)
	x := mat.NewDense(2, 2, []float64{
		1, 3,
		2, 4,
	})
	l.Forward(x)

	gradIn := l.Backward(mat.NewDense(1, 2, []float64{1, -1}))

	// dW = grad·xᵀ / 2 = [1*1 + -1*3, 1*2 + -1*4] / 2
	assertSliceInDelta(t, []float64{-1, -1}, l.WeightGrad().RawMatrix().Data, 1e-12)
	// db = mean(1, -1)
	assert.InDelta(t, 0, l.BiasGrad().At(0, 0), 1e-12)
	// Wᵀ·grad
	want := mat.NewDense(2, 2, []float64{2, -2, -1, 1})
	assert.True(t, mat.EqualApprox(want, gradIn, 1e-12))
}

// TestLinearGradientCheck compares Backward against central finite differences
// for the input, the weights and the bias.
func TestLinearGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const in, out, m = 4, 3, 5

	l := NewLinear(in, out, rng)
	x := randomDense(rng, in, m)
	r := randomDense(rng, out, m)

	l.Forward(x)
	gradIn := l.Backward(r)

	t.Run("input", func(t *testing.T) {
		f := projected(r, func(v []float64) *mat.Dense {
			return l.Forward(mat.NewDense(in, m, v))
		})
		numeric := fd.Gradient(nil, f, mat.DenseCopyOf(x).RawMatrix().Data, central)
		assertSliceInDelta(t, numeric, mat.DenseCopyOf(gradIn).RawMatrix().Data, gradTol)
	})

	t.Run("weights", func(t *testing.T) {
		w0 := mat.DenseCopyOf(l.Weights())
		f := projected(r, func(v []float64) *mat.Dense {
			l.Weights().Copy(mat.NewDense(out, in, v))
			return l.Forward(x)
		})
		numeric := fd.Gradient(nil, f, w0.RawMatrix().Data, central)
		l.Weights().Copy(w0)

		// Backward averages over the batch.
		var scaled mat.Dense
		scaled.Scale(m, l.WeightGrad())
		assertSliceInDelta(t, numeric, scaled.RawMatrix().Data, gradTol)
	})

	t.Run("bias", func(t *testing.T) {
		b0 := mat.DenseCopyOf(l.Bias())
		f := projected(r, func(v []float64) *mat.Dense {
			l.Bias().Copy(mat.NewDense(out, 1, v))
			return l.Forward(x)
		})
		numeric := fd.Gradient(nil, f, b0.RawMatrix().Data, central)
		l.Bias().Copy(b0)

		var scaled mat.Dense
		scaled.Scale(m, l.BiasGrad())
		assertSliceInDelta(t, numeric, scaled.RawMatrix().Data, gradTol)
	})
}

func TestActivationGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	const n, m = 3, 4

	tests := []struct {
		name  string
		layer Layer
	}{
		{"ReLU", NewReLU(n)},
		{"Sigmoid", NewSigmoid(n)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := randomDense(rng, n, m)
			// keep ReLU inputs away from the kink
			x.Apply(func(_, _ int, v float64) float64 {
				if math.Abs(v) < 1e-2 {
					return v + 0.1
				}
				return v
			}, x)
			r := randomDense(rng, n, m)

			tt.layer.Forward(x)
			gradIn := tt.layer.Backward(r)

			f := projected(r, func(v []float64) *mat.Dense {
				return tt.layer.Forward(mat.NewDense(n, m, v))
			})
			numeric := fd.Gradient(nil, f, mat.DenseCopyOf(x).RawMatrix().Data, central)
			assertSliceInDelta(t, numeric, gradIn.RawMatrix().Data, gradTol)
		})
	}
}

// TestReLUBackwardMask tests that gradient is zeroed exactly where input <= 0.
func TestReLUBackwardMask(t *testing.T) {
	relu := NewReLU(2)
	x := mat.NewDense(2, 3, []float64{
		-1, 0, 2,
		3, -0.5, 1e-12,
	})
	grad := mat.NewDense(2, 3, []float64{
		10, 20, 30,
		40, 50, 60,
	})

	out := relu.Forward(x)
	assert.Equal(t, []float64{0, 0, 2, 3, 0, 1e-12}, out.RawMatrix().Data)

	gradIn := relu.Backward(grad)
	assert.Equal(t, []float64{0, 0, 30, 40, 0, 60}, gradIn.RawMatrix().Data)
}

func TestSigmoidForwardRange(t *testing.T) {
	s := NewSigmoid(1)
	x := mat.NewDense(1, 7, []float64{-30, -5, -1, 0, 1, 5, 30})

	for _, v := range s.Forward(x).RawMatrix().Data {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestBackwardWithoutForwardPanics(t *testing.T) {
	layers := []Layer{
		NewLinear(2, 2, rand.New(rand.NewSource(3))),
		NewReLU(2),
		NewSigmoid(2),
	}
	grad := mat.NewDense(2, 1, []float64{1, 1})

	for _, l := range layers {
		assert.Panics(t, func() { l.Backward(grad) })
	}
}

// TestBackwardConsumesCache tests that a second Backward for one Forward panics.
func TestBackwardConsumesCache(t *testing.T) {
	relu := NewReLU(2)
	x := mat.NewDense(2, 1, []float64{1, -1})
	grad := mat.NewDense(2, 1, []float64{1, 1})

	relu.Forward(x)
	assert.True(t, relu.Cached())
	relu.Backward(grad)
	assert.False(t, relu.Cached())

	assert.Panics(t, func() { relu.Backward(grad) })
}

// TestForwardCachesCopy tests that mutating the caller's batch after Forward
// does not change the gradient.
func TestForwardCachesCopy(t *testing.T) {
	relu := NewReLU(1)
	x := mat.NewDense(1, 2, []float64{1, -1})
	relu.Forward(x)
	x.Set(0, 0, -1)

	gradIn := relu.Backward(mat.NewDense(1, 2, []float64{5, 5}))
	assert.Equal(t, []float64{5, 0}, gradIn.RawMatrix().Data)
}

func TestDimensionMismatchPanics(t *testing.T) {
	l := NewLinear(3, 2, rand.New(rand.NewSource(4)))

	assert.Panics(t, func() { l.Forward(mat.NewDense(4, 1, nil)) })

	l.Forward(mat.NewDense(3, 2, nil))
	assert.Panics(t, func() { l.Backward(mat.NewDense(2, 3, nil)) })

	assert.Panics(t, func() { NewReLU(3).Forward(mat.NewDense(2, 1, nil)) })
	assert.Panics(t, func() {
		NewLinearFrom(mat.NewDense(2, 2, nil), mat.NewDense(3, 1, nil))
	})
}

// TestLinearUpdate tests one momentum step against hand-computed values.
func TestLinearUpdate(t *testing.T) {
	l := NewLinearFrom(
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{0}),
	)
	l.Forward(mat.NewDense(1, 1, []float64{2}))
	l.Backward(mat.NewDense(1, 1, []float64{3}))

	// dW = 6, db = 3
	l.Update(0.1, 0.5)

	// v = 0.5*6 = 3, W = 1 - 0.1*3
	assert.InDelta(t, 3, l.WeightVelocity().At(0, 0), 1e-12)
	assert.InDelta(t, 0.7, l.Weights().At(0, 0), 1e-12)
	// v = 0.5*3 = 1.5, b = 0 - 0.1*1.5
	assert.InDelta(t, 1.5, l.BiasVelocity().At(0, 0), 1e-12)
	assert.InDelta(t, -0.15, l.Bias().At(0, 0), 1e-12)
}

func TestActivationUpdateIsNoop(t *testing.T) {
	s := NewSigmoid(2)
	s.Update(1, 0.9)
	assert.Equal(t, 2, s.InSize())
	assert.Equal(t, 2, s.OutSize())
}

func TestNewLinearInit(t *testing.T) {
	l := NewLinear(64, 30, rand.New(rand.NewSource(5)))

	assert.Equal(t, 64, l.InSize())
	assert.Equal(t, 30, l.OutSize())
	assert.Equal(t, 64*30+30, l.NumParams())

	limit := math.Sqrt(2.0 / (64 + 30))
	for _, w := range l.Weights().RawMatrix().Data {
		assert.LessOrEqual(t, math.Abs(w), limit)
	}
	assert.Equal(t, 0.0, mat.Norm(l.WeightVelocity(), 1))
	assert.Equal(t, 0.0, mat.Norm(l.BiasVelocity(), 1))
}
