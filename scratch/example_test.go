package scratch_test

import (
	"fmt"
	"math/rand"

	"github.com/ekreutz/ml-from-scratch/scratch"
)

func Example() {
	rng := rand.New(rand.NewSource(1))

	data := scratch.SyntheticDigits(50, rng)
	data.Normalize()

	network, err := scratch.Build([]int{64, 16, 10}, rng)
	if err != nil {
		panic(err)
	}

	conf := scratch.DefaultConfig()
	conf.LayerSizes = []int{64, 16, 10}
	conf.MaxEpochs = 5

	trainer, err := scratch.NewTrainer(conf)
	if err != nil {
		panic(err)
	}
	res, err := trainer.Train(data.X, data.Labels, network)
	if err != nil {
		panic(err)
	}

	fmt.Println("epochs:", res.Epochs, "params:", network.NumParams())
	// Output: epochs: 5 params: 1210
}
