package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ekreutz/ml-from-scratch/internal/dataset"
	"github.com/ekreutz/ml-from-scratch/internal/net"
	"github.com/ekreutz/ml-from-scratch/internal/train"
)

// Handwritten digit classification with a fully connected network.
// Reads a CSV of 8x8 pixel intensities with the label in the last column,
// or generates synthetic digits when no file is given.
func main() {
	configPath := flag.String("config", "", "YAML file with training options")
	dataPath := flag.String("data", "", "CSV dataset, label in the last column (synthetic digits if empty)")
	samples := flag.Int("samples", 1797, "number of synthetic samples")
	sizes := flag.String("sizes", "", "comma separated layer sizes, e.g. 64,30,30,10")
	alpha := flag.Float64("alpha", 0, "learning rate")
	beta := flag.Float64("beta", -1, "momentum in [0, 1)")
	stop := flag.Float64("stop", 0, "early stopping accuracy")
	epochs := flag.Int("epochs", 0, "maximum number of epochs")
	interval := flag.Int("log-interval", 0, "epochs between progress lines")
	seed := flag.Int64("seed", 0, "random seed (0 keeps the configured seed)")
	csvLog := flag.String("csv", "", "write checkpoints to this CSV file")
	holdout := flag.Float64("holdout", 0, "fraction of samples held out for evaluation")
	flag.Parse()

	conf := train.DefaultConfig()
	if *configPath != "" {
		var err error
		if conf, err = train.LoadConfig(*configPath); err != nil {
			log.Fatal("Error loading config: ", err)
		}
	}
	if *sizes != "" {
		parsed, err := parseSizes(*sizes)
		if err != nil {
			log.Fatal("Error parsing sizes: ", err)
		}
		conf.LayerSizes = parsed
	}
	if *alpha != 0 {
		conf.Alpha = *alpha
	}
	if *beta >= 0 {
		conf.Beta = *beta
	}
	if *stop != 0 {
		conf.EarlyStopAccuracy = *stop
	}
	if *epochs != 0 {
		conf.MaxEpochs = *epochs
	}
	if *interval != 0 {
		conf.LogInterval = *interval
	}
	if *seed != 0 {
		conf.Seed = *seed
	}
	if *csvLog != "" {
		conf.CSVLog = *csvLog
	}
	if err := conf.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	rng := rand.New(rand.NewSource(conf.Seed))

	var data *dataset.Dataset
	if *dataPath != "" {
		var err error
		if data, err = dataset.LoadCSV(*dataPath, -1, false); err != nil {
			log.Fatal("Error loading CSV: ", err)
		}
	} else {
		data = dataset.SyntheticDigits(*samples, rng)
	}
	data.Normalize()

	in, out := conf.LayerSizes[0], conf.LayerSizes[len(conf.LayerSizes)-1]
	if in != data.NumFeatures() || out != data.NumClasses() {
		log.Fatalf("Invalid configuration: layer sizes %v do not fit %d features and %d classes",
			conf.LayerSizes, data.NumFeatures(), data.NumClasses())
	}

	trainSet, testSet := data, (*dataset.Dataset)(nil)
	if *holdout > 0 {
		data.Shuffle(rng)
		trainSet, testSet = data.Split(1 - *holdout)
		if trainSet == nil {
			log.Fatal("Invalid configuration: holdout leaves no training samples")
		}
	}

	network, err := net.Build(conf.LayerSizes, rng)
	if err != nil {
		log.Fatal("Error building network: ", err)
	}

	fmt.Printf("=== Digit Classification (%d samples, %d classes) ===\n\n", data.Len(), data.NumClasses())
	network.Summary(os.Stdout)
	fmt.Printf("\nalpha=%v beta=%v early stop=%v max epochs=%d\n\n",
		conf.Alpha, conf.Beta, conf.EarlyStopAccuracy, conf.MaxEpochs)

	callbacks := []train.Callback{train.Logger{W: os.Stdout}}
	var csvLogger *train.CSVLogger
	if conf.CSVLog != "" {
		csvLogger = train.NewCSVLogger(conf.CSVLog, false)
		callbacks = append(callbacks, csvLogger)
	}

	trainer, err := train.NewTrainer(conf, callbacks...)
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	res, err := trainer.Train(trainSet.X, trainSet.Labels, network)
	if err != nil {
		log.Fatal("Error training: ", err)
	}
	if csvLogger != nil && csvLogger.Err() != nil {
		log.Print(csvLogger.Err())
	}

	acc, cm, err := train.Evaluate(network, trainSet.X, trainSet.Labels)
	if err != nil {
		log.Fatal("Error evaluating: ", err)
	}
	fmt.Printf("\nTrained %d epochs (early stop: %v)\n", res.Epochs, res.Stopped)
	fmt.Printf("Final Training Accuracy: %.1f%%\n\n", acc*100)
	printConfusion(cm)

	if testSet != nil {
		acc, cm, err := train.Evaluate(network, testSet.X, testSet.Labels)
		if err != nil {
			log.Fatal("Error evaluating: ", err)
		}
		fmt.Printf("\nHoldout Accuracy: %.1f%% (%d samples)\n\n", acc*100, testSet.Len())
		printConfusion(cm)
	}
}

func printConfusion(cm train.ConfusionMatrix) {
	fmt.Println("Confusion matrix:")
	fmt.Print(cm)
	for c := range cm {
		fmt.Printf("  class %d recall: %.2f\n", c, cm.Recall(c))
	}
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "layer size %q", p)
		}
		sizes[i] = v
	}
	return sizes, nil
}
