// Package train runs full-batch gradient descent over a network.
package train

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ekreutz/ml-from-scratch/internal/dataset"
	"github.com/ekreutz/ml-from-scratch/internal/layer"
	"github.com/ekreutz/ml-from-scratch/internal/loss"
	"github.com/ekreutz/ml-from-scratch/internal/net"
)

// Result summarizes a training run.
type Result struct {
	Epochs   int     // last epoch executed
	Accuracy float64 // accuracy of the last epoch's forward pass
	Loss     float64 // loss at the last checkpoint
	Stopped  bool    // true if the early stopping condition ended training
	History  []Checkpoint
}

// Trainer drives the optimization loop.
type Trainer struct {
	Alpha             float64
	Beta              float64
	EarlyStopAccuracy float64
	MaxEpochs         int
	LogInterval       int
	WindowSize        int
	Loss              loss.Loss
	Callbacks         []Callback
}

// NewTrainer validates conf and creates a trainer from it.
func NewTrainer(conf Config, callbacks ...Callback) (*Trainer, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	l, err := loss.ByName(conf.Loss, conf.Epsilon)
	if err != nil {
		return nil, err
	}
	return &Trainer{
		Alpha:             conf.Alpha,
		Beta:              conf.Beta,
		EarlyStopAccuracy: conf.EarlyStopAccuracy,
		MaxEpochs:         conf.MaxEpochs,
		LogInterval:       conf.LogInterval,
		WindowSize:        conf.Window,
		Loss:              l,
		Callbacks:         callbacks,
	}, nil
}

// validate checks the fields Train depends on. Alpha may be zero, which
// computes gradients and velocities without moving any parameter.
func (t *Trainer) validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(net.ErrConfiguration, format, args...)
	}

	switch {
	case t.Alpha < 0:
		return invalid("alpha must not be negative, got %v", t.Alpha)
	case t.Beta < 0 || t.Beta >= 1:
		return invalid("beta must be in [0, 1), got %v", t.Beta)
	case t.MaxEpochs < 1:
		return invalid("max epochs must be positive, got %d", t.MaxEpochs)
	case t.LogInterval < 1:
		return invalid("log interval must be positive, got %d", t.LogInterval)
	case t.WindowSize < 1:
		return invalid("window size must be positive, got %d", t.WindowSize)
	case t.Loss == nil:
		return invalid("no loss function")
	}
	return nil
}

func (t *Trainer) checkpoint(epoch int) bool {
	return epoch == 1 || epoch%t.LogInterval == 0
}

// Train fits n to x (samples x features) and labels with full-batch updates.
//
// Every epoch runs forward, records the accuracy in the rolling window, and
// runs backward with per-layer updates. At epoch 1 and every LogInterval
// epochs the loss is evaluated for the callbacks, and training stops once
// the window is full and its minimum exceeds EarlyStopAccuracy.
func (t *Trainer) Train(x *mat.Dense, labels []int, n *net.Network) (Result, error) {
	if err := t.validate(); err != nil {
		return Result{}, err
	}
	rows, cols := x.Dims()
	switch {
	case rows == 0 || rows != len(labels):
		return Result{}, errors.Errorf("%d samples but %d labels", rows, len(labels))
	case cols != n.InSize():
		return Result{}, errors.Wrapf(layer.ErrDimensionMismatch,
			"samples have %d features, network expects %d", cols, n.InSize())
	}
	for i, l := range labels {
		if l < 0 || l >= n.OutSize() {
			return Result{}, errors.Wrapf(layer.ErrDimensionMismatch,
				"label %d of sample %d outside %d network outputs", l, i, n.OutSize())
		}
	}

	data := &dataset.Dataset{X: x, Labels: labels}
	features := data.Features()
	target := data.OneHot(n.OutSize())
	window := NewWindow(t.WindowSize)

	for _, cb := range t.Callbacks {
		cb.OnTrainBegin(n)
	}

	var res Result
	for epoch := 1; epoch <= t.MaxEpochs; epoch++ {
		yHat := n.Forward(features)
		acc := Accuracy(yHat, labels)
		window.Push(acc)
		res.Epochs, res.Accuracy = epoch, acc

		stop := false
		if t.checkpoint(epoch) {
			cp := Checkpoint{Epoch: epoch, Accuracy: acc, Loss: t.Loss.Forward(yHat, target)}
			res.Loss = cp.Loss
			res.History = append(res.History, cp)
			for _, cb := range t.Callbacks {
				cb.OnCheckpoint(cp, n)
			}
			stop = window.Full() && window.Min() > t.EarlyStopAccuracy
		}

		n.Backward(t.Loss.Backward(yHat, target), t.Alpha, t.Beta)

		if stop {
			res.Stopped = true
			break
		}
	}

	for _, cb := range t.Callbacks {
		cb.OnTrainEnd(n, res)
	}
	return res, nil
}

// Evaluate runs a forward pass over x (samples x features) and returns the
// accuracy and the confusion matrix against labels.
func Evaluate(n *net.Network, x *mat.Dense, labels []int) (float64, ConfusionMatrix, error) {
	data, err := dataset.New(x, labels)
	if err != nil {
		return 0, nil, errors.Wrap(layer.ErrDimensionMismatch, err.Error())
	}
	if cols := data.NumFeatures(); cols != n.InSize() {
		return 0, nil, errors.Wrapf(layer.ErrDimensionMismatch,
			"samples have %d features, network expects %d", cols, n.InSize())
	}
	yHat := n.Forward(data.Features())
	pred := Predict(yHat)

	cm, err := NewConfusionMatrix(pred, labels, n.OutSize())
	if err != nil {
		return 0, nil, err
	}
	return Accuracy(yHat, labels), cm, nil
}
