// Package dataset holds labelled feature matrices for classification.
package dataset

import (
	"encoding/csv"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset represents a collection of samples and integer class labels.
// X has one sample per row; Labels[i] is the class of row i.
type Dataset struct {
	X      *mat.Dense
	Labels []int
}

// New wraps X and labels, checking that every row has a non-negative label.
func New(x *mat.Dense, labels []int) (*Dataset, error) {
	if x == nil {
		return nil, errors.New("dataset has no samples")
	}
	if r, _ := x.Dims(); r != len(labels) {
		return nil, errors.Errorf("%d samples but %d labels", r, len(labels))
	}
	for i, l := range labels {
		if l < 0 {
			return nil, errors.Errorf("label %d of sample %d is negative", l, i)
		}
	}
	return &Dataset{X: x, Labels: labels}, nil
}

// LoadCSV loads data from a CSV file.
// labelCol is the index of the integer label column; a negative value
// counts from the end, so -1 is the last column. All other columns are
// used as features. hasHeader skips the first line if true.
func LoadCSV(filename string, labelCol int, hasHeader bool) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv")
	}

	if hasHeader && len(records) > 0 {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.New("csv file has no data rows")
	}

	numCols := len(records[0])
	if labelCol < 0 {
		labelCol += numCols
	}
	if labelCol < 0 || labelCol >= numCols || numCols < 2 {
		return nil, errors.Errorf("label column %d out of range for %d columns", labelCol, numCols)
	}

	x := mat.NewDense(len(records), numCols-1, nil)
	labels := make([]int, len(records))

	for i, record := range records {
		if len(record) != numCols {
			return nil, errors.Errorf("inconsistent number of columns at row %d", i)
		}

		col := 0
		for j, valStr := range record {
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse value at row %d, col %d", i, j)
			}

			if j == labelCol {
				if val != math.Trunc(val) {
					return nil, errors.Errorf("label %v at row %d is not an integer", val, i)
				}
				labels[i] = int(val)
				continue
			}
			x.Set(i, col, val)
			col++
		}
	}

	return New(x, labels)
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// NumFeatures returns the number of features per sample.
func (d *Dataset) NumFeatures() int {
	_, c := d.X.Dims()
	return c
}

// NumClasses returns max(label) + 1.
func (d *Dataset) NumClasses() int {
	n := 0
	for _, l := range d.Labels {
		if l+1 > n {
			n = l + 1
		}
	}
	return n
}

// Normalize divides every feature by the global maximum so values fall in
// [0, 1] for non-negative data. A dataset whose maximum is not positive is
// left unchanged.
func (d *Dataset) Normalize() {
	maxVal := mat.Max(d.X)
	if maxVal <= 0 {
		return
	}
	d.X.Scale(1/maxVal, d.X)
}

// Features returns the samples in feature-major layout (features x samples).
func (d *Dataset) Features() *mat.Dense {
	return mat.DenseCopyOf(d.X.T())
}

// OneHot returns the labels as a classes x samples indicator matrix.
func (d *Dataset) OneHot(classes int) *mat.Dense {
	return OneHot(d.Labels, classes)
}

// OneHot returns a classes x len(labels) matrix with a single 1 per column.
func OneHot(labels []int, classes int) *mat.Dense {
	y := mat.NewDense(classes, len(labels), nil)
	for j, l := range labels {
		y.Set(l, j, 1)
	}
	return y
}

// Shuffle permutes the samples in place.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(d.Len(), func(i, j int) {
		ri := mat.Row(nil, i, d.X)
		rj := mat.Row(nil, j, d.X)
		d.X.SetRow(i, rj)
		d.X.SetRow(j, ri)
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	})
}

// Split splits the dataset into two based on the given ratio (0.0 to 1.0).
// Returns two new Datasets (train, test); a side without samples is nil.
func (d *Dataset) Split(ratio float64) (*Dataset, *Dataset) {
	n := d.Len()
	splitIdx := int(float64(n) * ratio)
	if splitIdx <= 0 {
		return nil, d
	}
	if splitIdx >= n {
		return d, nil
	}

	cols := d.NumFeatures()
	train := &Dataset{
		X:      mat.DenseCopyOf(d.X.Slice(0, splitIdx, 0, cols)),
		Labels: append([]int(nil), d.Labels[:splitIdx]...),
	}
	test := &Dataset{
		X:      mat.DenseCopyOf(d.X.Slice(splitIdx, n, 0, cols)),
		Labels: append([]int(nil), d.Labels[splitIdx:]...),
	}
	return train, test
}
