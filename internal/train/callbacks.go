package train

import (
	"fmt"
	"io"

	"github.com/ekreutz/ml-from-scratch/internal/net"
)

// Checkpoint is the state of training at a logging epoch.
type Checkpoint struct {
	Epoch    int
	Accuracy float64
	Loss     float64
}

// Callback defines the interface for training callbacks.
type Callback interface {
	OnTrainBegin(n *net.Network)
	OnTrainEnd(n *net.Network, r Result)
	OnCheckpoint(c Checkpoint, n *net.Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (BaseCallback) OnTrainBegin(n *net.Network)               {}
func (BaseCallback) OnTrainEnd(n *net.Network, r Result)       {}
func (BaseCallback) OnCheckpoint(c Checkpoint, n *net.Network) {}

// Logger prints one progress line per checkpoint:
//
//	Round <epoch>, accuracy: <2 decimals>, loss: <4 decimals>
//
// When early stopping ended the run it prints one more line at the end,
// "Early stopping at round <epoch>: accuracy stayed above threshold".
type Logger struct {
	BaseCallback
	W io.Writer
}

// OnCheckpoint prints the progress line for cp.
func (c Logger) OnCheckpoint(cp Checkpoint, n *net.Network) {
	fmt.Fprintf(c.W, "Round %d, accuracy: %.2f, loss: %.4f\n", cp.Epoch, cp.Accuracy, cp.Loss)
}

// OnTrainEnd prints the early stopping line if training stopped early.
func (c Logger) OnTrainEnd(n *net.Network, r Result) {
	if r.Stopped {
		fmt.Fprintf(c.W, "Early stopping at round %d: accuracy stayed above threshold\n", r.Epochs)
	}
}
