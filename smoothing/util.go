package smoothing

import "errors"

var (
	ErrNoOptions              = errors.New("no initialized model options")
	ErrNegativeIterations     = errors.New("negative iterations")
	ErrNegativeTolerance      = errors.New("negative tolerance")
	ErrInvalidSeasonalPeriods = errors.New("seasonal periods must be at least 2")
	ErrInsufficientData       = errors.New("insufficient samples to fit model")
	ErrNonFiniteData          = errors.New("training data contains non finite values")
	ErrFitDiverged            = errors.New("model fit diverged")
	ErrFitPanic               = errors.New("model fit panicked")
	ErrUntrainedModel         = errors.New("model has not been trained yet")
	ErrNegativeHorizon        = errors.New("horizon must not be negative")
)

// Model is the interface every smoothing model fulfils
type Model interface {
	Fit(y []float64) error
	Forecast(h int) ([]float64, error)
	Fitted() []float64
}
