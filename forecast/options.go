package forecast

import "github.com/aouyang1/go-demandforecaster/smoothing"

// ModelFunc constructs the smoothing model used by the trend and seasonal tiers
type ModelFunc func(opt *smoothing.Options) (smoothing.Model, error)

// Options configures how the model tiers are fit. Zero values fall back to the smoothing defaults.
type Options struct {
	Iterations int     `json:"iterations" yaml:"iterations"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance"`

	NewModel ModelFunc `json:"-" yaml:"-"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		Iterations: smoothing.DefaultIterations,
		Tolerance:  smoothing.DefaultTolerance,
		NewModel:   NewExponentialSmoothing,
	}
}

// NewExponentialSmoothing is the default ModelFunc
func NewExponentialSmoothing(opt *smoothing.Options) (smoothing.Model, error) {
	return smoothing.New(opt)
}
