// Package net provides core neural network types.
package net

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ekreutz/ml-from-scratch/internal/layer"
)

// ErrConfiguration is returned for malformed network definitions.
var ErrConfiguration = errors.New("invalid network configuration")

// Network is an ordered chain of layers. Its structure is fixed after construction.
type Network struct {
	layers []layer.Layer
}

// New creates a network from the given layers, checking that the output size
// of each layer equals the input size of the next.
func New(layers ...layer.Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, errors.Wrap(ErrConfiguration, "no layers")
	}
	for i := 1; i < len(layers); i++ {
		if out, in := layers[i-1].OutSize(), layers[i].InSize(); out != in {
			return nil, errors.Wrapf(ErrConfiguration,
				"layer %d outputs %d values but layer %d expects %d", i-1, out, i, in)
		}
	}
	return &Network{layers: layers}, nil
}

// Build creates Linear+ReLU blocks for every interior transition of sizes and
// a final Linear+Sigmoid block. sizes[0] is the input dimensionality and the
// last entry the number of output units.
func Build(sizes []int, rng *rand.Rand) (*Network, error) {
	if len(sizes) < 2 {
		return nil, errors.Wrapf(ErrConfiguration, "need at least 2 layer sizes, got %d", len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, errors.Wrapf(ErrConfiguration, "layer size %d is %d", i, s)
		}
	}

	layers := make([]layer.Layer, 0, 2*(len(sizes)-1))
	last := len(sizes) - 2
	for i := 0; i <= last; i++ {
		in, out := sizes[i], sizes[i+1]
		layers = append(layers, layer.NewLinear(in, out, rng))
		if i < last {
			layers = append(layers, layer.NewReLU(out))
		} else {
			layers = append(layers, layer.NewSigmoid(out))
		}
	}
	return New(layers...)
}

// Forward feeds x (features x samples) through every layer in order.
func (n *Network) Forward(x *mat.Dense) *mat.Dense {
	curr := x
	for _, l := range n.layers {
		curr = l.Forward(curr)
	}
	return curr
}

// Backward feeds grad through the layers in reverse order. Each layer is
// updated with (alpha, beta) right after its own Backward, before the
// gradient moves on to the preceding layer.
func (n *Network) Backward(grad *mat.Dense, alpha, beta float64) *mat.Dense {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr)
		n.layers[i].Update(alpha, beta)
	}
	return curr
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// InSize returns the number of input features.
func (n *Network) InSize() int {
	return n.layers[0].InSize()
}

// OutSize returns the number of output units.
func (n *Network) OutSize() int {
	return n.layers[len(n.layers)-1].OutSize()
}

// NumParams returns the number of trainable values.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.layers {
		if lin, ok := l.(*layer.Linear); ok {
			total += lin.NumParams()
		}
	}
	return total
}

// Summary writes a table of the network architecture to w.
func (n *Network) Summary(w io.Writer) {
	rule := strings.Repeat("_", 57)
	fmt.Fprintln(w, "Model: Network")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-25s %-20s %-10s\n", "Layer (type)", "Output Shape", "Param #")
	fmt.Fprintln(w, strings.Repeat("=", 57))

	for i, l := range n.layers {
		params := 0
		if lin, ok := l.(*layer.Linear); ok {
			params = lin.NumParams()
		}
		fmt.Fprintf(w, "%-25s %-20s %-10d\n",
			fmt.Sprintf("%s_%d", layerName(l), i), fmt.Sprintf("(%d)", l.OutSize()), params)
	}
	fmt.Fprintln(w, strings.Repeat("=", 57))
	fmt.Fprintf(w, "Total params: %d\n", n.NumParams())
	fmt.Fprintln(w, rule)
}

func layerName(l layer.Layer) string {
	switch l.(type) {
	case *layer.Linear:
		return "Linear"
	case *layer.ReLU:
		return "ReLU"
	case *layer.Sigmoid:
		return "Sigmoid"
	default:
		name := fmt.Sprintf("%T", l)
		return name[strings.LastIndex(name, ".")+1:]
	}
}
