package train

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ekreutz/ml-from-scratch/internal/layer"
)

// Predict returns the index of the largest output in every column of yHat.
func Predict(yHat mat.Matrix) []int {
	_, cols := yHat.Dims()
	pred := make([]int, cols)
	for j := range pred {
		pred[j] = floats.MaxIdx(mat.Col(nil, j, yHat))
	}
	return pred
}

// Accuracy returns the fraction of columns of yHat whose argmax equals the label.
// It panics with an error wrapping layer.ErrDimensionMismatch unless there is
// exactly one label per column.
func Accuracy(yHat mat.Matrix, labels []int) float64 {
	if _, cols := yHat.Dims(); cols != len(labels) {
		panic(errors.Wrapf(layer.ErrDimensionMismatch, "accuracy: %d columns but %d labels", cols, len(labels)))
	}
	if len(labels) == 0 {
		return 0
	}
	correct := 0
	for j, p := range Predict(yHat) {
		if p == labels[j] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}

// ConfusionMatrix counts predictions per true class: row = true label,
// column = predicted label.
type ConfusionMatrix [][]int

// NewConfusionMatrix tallies predicted against labels for classes classes.
func NewConfusionMatrix(predicted, labels []int, classes int) (ConfusionMatrix, error) {
	if len(predicted) != len(labels) {
		return nil, errors.Errorf("%d predictions for %d labels", len(predicted), len(labels))
	}

	cm := make(ConfusionMatrix, classes)
	for i := range cm {
		cm[i] = make([]int, classes)
	}
	for i, l := range labels {
		p := predicted[i]
		if l < 0 || l >= classes || p < 0 || p >= classes {
			return nil, errors.Errorf("sample %d: label %d or prediction %d outside %d classes", i, l, p, classes)
		}
		cm[l][p]++
	}
	return cm, nil
}

// Total returns the number of tallied samples.
func (cm ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Recall returns the fraction of class c samples predicted as c.
func (cm ConfusionMatrix) Recall(c int) float64 {
	total := 0
	for _, v := range cm[c] {
		total += v
	}
	if total == 0 {
		return 0
	}
	return float64(cm[c][c]) / float64(total)
}

func (cm ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for c := range cm {
		fmt.Fprintf(&b, " %5d", c)
	}
	b.WriteString("\n")
	for r, row := range cm {
		fmt.Fprintf(&b, "%9d", r)
		for _, v := range row {
			fmt.Fprintf(&b, " %5d", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}
