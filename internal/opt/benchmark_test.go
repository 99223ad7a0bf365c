// Package opt provides benchmarks for optimizers.
package opt

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// randomDense returns a rows x cols matrix of uniform values in [0, 1).
func randomDense(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rand.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// BenchmarkMomentumStepInPlace benchmarks the momentum update.
func BenchmarkMomentumStepInPlace(b *testing.B) {
	m := Momentum{LearningRate: 0.05, Beta: 0.9}
	params := randomDense(30, 64)
	velocity := mat.NewDense(30, 64, nil)
	gradients := randomDense(30, 64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.StepInPlace(params, velocity, gradients)
	}
}
