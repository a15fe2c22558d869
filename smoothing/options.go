package smoothing

const (
	DefaultIterations = 2000
	DefaultTolerance  = 1e-10
)

// Options represents input options to fit an additive exponential smoothing model
type Options struct {
	// Seasonal adds an additive seasonal component repeating every SeasonalPeriods samples
	Seasonal        bool `json:"seasonal"`
	SeasonalPeriods int  `json:"seasonal_periods"`

	// Iterations is the maximum number of optimizer iterations used to estimate the smoothing parameters.
	Iterations int `json:"iterations"`

	// Tolerance is the smallest change in the sum of squared errors that counts as an improvement.
	Tolerance float64 `json:"tolerance"`
}

// Validate runs basic validation on exponential smoothing options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if o.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if o.Seasonal && o.SeasonalPeriods < 2 {
		return nil, ErrInvalidSeasonalPeriods
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	return o, nil
}

// NewDefaultOptions returns an additive trend model without seasonality
func NewDefaultOptions() *Options {
	return &Options{
		Iterations: DefaultIterations,
		Tolerance:  DefaultTolerance,
	}
}

// NewSeasonalOptions returns an additive trend, additive seasonal model with the given period
func NewSeasonalOptions(periods int) *Options {
	opt := NewDefaultOptions()
	opt.Seasonal = true
	opt.SeasonalPeriods = periods
	return opt
}

// MinSamples returns the fewest samples the configured model can be fit with
func (o *Options) MinSamples() int {
	if o != nil && o.Seasonal {
		return 2 * o.SeasonalPeriods
	}
	return 2
}
