package train

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ekreutz/ml-from-scratch/internal/loss"
	"github.com/ekreutz/ml-from-scratch/internal/net"
)

// Config holds the training hyperparameters.
type Config struct {
	LayerSizes        []int   `yaml:"layer_sizes"`         // first = input features, last = classes
	Alpha             float64 `yaml:"alpha"`               // learning rate
	Beta              float64 `yaml:"beta"`                // momentum, in [0, 1)
	EarlyStopAccuracy float64 `yaml:"early_stop_accuracy"` // stop once the window minimum exceeds this
	MaxEpochs         int     `yaml:"max_epochs"`
	LogInterval       int     `yaml:"log_interval"`
	Window            int     `yaml:"window"` // accuracy window length for early stopping

	Loss    string  `yaml:"loss"`    // "bce" or "mse"
	Epsilon float64 `yaml:"epsilon"` // prediction clamp for bce, 0 disables

	Seed   int64  `yaml:"seed"`
	CSVLog string `yaml:"csv_log"` // optional path of a per-checkpoint CSV log
}

// DefaultConfig returns the configuration for 8x8 digit classification.
func DefaultConfig() Config {
	return Config{
		LayerSizes:        []int{64, 30, 30, 10},
		Alpha:             0.05,
		Beta:              0.9,
		EarlyStopAccuracy: 0.99,
		MaxEpochs:         20000,
		LogInterval:       1000,
		Window:            20,
		Loss:              "bce",
		Epsilon:           1e-12,
		Seed:              42,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates the result.
func LoadConfig(filename string) (Config, error) {
	conf := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return conf, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, errors.Wrapf(err, "failed to parse config %s", filename)
	}
	return conf, conf.Validate()
}

// Validate reports the first invalid option as an error wrapping
// net.ErrConfiguration.
func (conf Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(net.ErrConfiguration, format, args...)
	}

	switch {
	case len(conf.LayerSizes) < 2:
		return invalid("layer_sizes needs at least 2 entries, got %d", len(conf.LayerSizes))
	case conf.Alpha <= 0:
		return invalid("alpha must be positive, got %v", conf.Alpha)
	case conf.Beta < 0 || conf.Beta >= 1:
		return invalid("beta must be in [0, 1), got %v", conf.Beta)
	case conf.EarlyStopAccuracy <= 0 || conf.EarlyStopAccuracy > 1:
		return invalid("early_stop_accuracy must be in (0, 1], got %v", conf.EarlyStopAccuracy)
	case conf.MaxEpochs < 1:
		return invalid("max_epochs must be positive, got %d", conf.MaxEpochs)
	case conf.LogInterval < 1:
		return invalid("log_interval must be positive, got %d", conf.LogInterval)
	case conf.Window < 1:
		return invalid("window must be positive, got %d", conf.Window)
	case conf.Epsilon < 0 || conf.Epsilon >= 0.5:
		return invalid("epsilon must be in [0, 0.5), got %v", conf.Epsilon)
	}

	for i, s := range conf.LayerSizes {
		if s <= 0 {
			return invalid("layer_sizes[%d] is %d", i, s)
		}
	}
	if _, err := loss.ByName(conf.Loss, conf.Epsilon); err != nil {
		return errors.Wrap(net.ErrConfiguration, err.Error())
	}
	return nil
}
