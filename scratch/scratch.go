// Package scratch exposes the network, layers, losses and trainer for use
// outside this module.
package scratch

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ekreutz/ml-from-scratch/internal/dataset"
	"github.com/ekreutz/ml-from-scratch/internal/layer"
	"github.com/ekreutz/ml-from-scratch/internal/loss"
	"github.com/ekreutz/ml-from-scratch/internal/net"
	"github.com/ekreutz/ml-from-scratch/internal/train"
)

// Re-export common types and functions for easier access
type (
	Network         = net.Network
	Layer           = layer.Layer
	Loss            = loss.Loss
	Dataset         = dataset.Dataset
	Config          = train.Config
	Trainer         = train.Trainer
	Result          = train.Result
	Callback        = train.Callback
	Checkpoint      = train.Checkpoint
	ConfusionMatrix = train.ConfusionMatrix
)

// Errors
var (
	ErrConfiguration     = net.ErrConfiguration
	ErrDimensionMismatch = layer.ErrDimensionMismatch
	ErrNoCachedInput     = layer.ErrNoCachedInput
)

// Network creation
func Build(sizes []int, rng *rand.Rand) (*Network, error) {
	return net.Build(sizes, rng)
}

func NewNetwork(layers ...Layer) (*Network, error) {
	return net.New(layers...)
}

// Layers
func Linear(in, out int, rng *rand.Rand) Layer {
	return layer.NewLinear(in, out, rng)
}

func ReLU(size int) Layer {
	return layer.NewReLU(size)
}

func Sigmoid(size int) Layer {
	return layer.NewSigmoid(size)
}

// Losses
func BinaryCrossEntropy(epsilon float64) Loss {
	return loss.BinaryCrossEntropy{Epsilon: epsilon}
}

var MSE = loss.MSE{}

// Data
func LoadCSV(filename string, labelCol int, hasHeader bool) (*Dataset, error) {
	return dataset.LoadCSV(filename, labelCol, hasHeader)
}

func SyntheticDigits(n int, rng *rand.Rand) *Dataset {
	return dataset.SyntheticDigits(n, rng)
}

// Training
func DefaultConfig() Config {
	return train.DefaultConfig()
}

func LoadConfig(filename string) (Config, error) {
	return train.LoadConfig(filename)
}

func NewTrainer(conf Config, callbacks ...Callback) (*Trainer, error) {
	return train.NewTrainer(conf, callbacks...)
}

func Evaluate(n *Network, x *mat.Dense, labels []int) (float64, ConfusionMatrix, error) {
	return train.Evaluate(n, x, labels)
}
