// Package smoothing fits additive Holt and Holt-Winters exponential smoothing models. Smoothing
// parameters and the initial level and trend are estimated by minimizing the one step ahead sum of
// squared errors with a Nelder-Mead search started from a fixed point, so fits are deterministic.
package smoothing

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	initialAlpha = 0.5
	initialBeta  = 0.1
	initialGamma = 0.1

	convergeIterations = 100
)

// Params holds the estimated smoothing parameters and the model states after the last sample
type Params struct {
	Alpha        float64   `json:"alpha"`
	Beta         float64   `json:"beta"`
	Gamma        float64   `json:"gamma,omitempty"`
	InitialLevel float64   `json:"initial_level"`
	InitialTrend float64   `json:"initial_trend"`
	Level        float64   `json:"level"`
	Trend        float64   `json:"trend"`
	Season       []float64 `json:"season,omitempty"`
	SSE          float64   `json:"sse"`
}

// ExponentialSmoothing is an additive trend model with an optional additive seasonal component
type ExponentialSmoothing struct {
	opt *Options

	// training data and derived initial states
	y          []float64
	initLevel  float64
	initTrend  float64
	initSeason []float64
	scale      float64

	params  Params
	fitted  []float64
	trained bool
}

// New initializes an exponential smoothing model ready for fitting
func New(opt *Options) (*ExponentialSmoothing, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &ExponentialSmoothing{
		opt: opt,
	}, nil
}

// Fit estimates the smoothing parameters against the training data. Any panic raised while
// optimizing is returned as ErrFitPanic.
func (e *ExponentialSmoothing) Fit(y []float64) (err error) {
	if e == nil || e.opt == nil {
		return ErrNoOptions
	}
	defer func() {
		if r := recover(); r != nil {
			e.trained = false
			err = fmt.Errorf("%v, %w", r, ErrFitPanic)
		}
	}()

	if len(y) < e.opt.MinSamples() {
		return fmt.Errorf("got %d samples, but need at least %d, %w", len(y), e.opt.MinSamples(), ErrInsufficientData)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %f at %d, %w", v, i, ErrNonFiniteData)
		}
	}

	e.trained = false
	e.y = make([]float64, len(y))
	copy(e.y, y)
	e.initStates()

	x0 := e.initialPoint()
	problem := optimize.Problem{
		Func: e.objective,
	}
	settings := &optimize.Settings{
		MajorIterations: e.opt.Iterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   e.opt.Tolerance,
			Iterations: convergeIterations,
		},
	}

	result, optErr := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if result == nil {
		return fmt.Errorf("unable to estimate smoothing parameters, %v, %w", optErr, ErrFitDiverged)
	}
	if optErr != nil {
		slog.Debug("smoothing optimizer stopped early", "status", result.Status.String(), "error", optErr.Error())
	}

	params, fitted := e.run(result.X)
	if math.IsNaN(params.SSE) || math.IsInf(params.SSE, 0) {
		return fmt.Errorf("sum of squared errors is %f, %w", params.SSE, ErrFitDiverged)
	}
	if !finite(params.Level) || !finite(params.Trend) || !allFinite(params.Season) {
		return fmt.Errorf("non finite model states, %w", ErrFitDiverged)
	}

	e.params = params
	e.fitted = fitted
	e.trained = true
	return nil
}

// initStates derives the initial level, trend and seasonal states. For a noiseless linear or
// linear plus seasonal series these reproduce the data exactly.
func (e *ExponentialSmoothing) initStates() {
	y := e.y
	e.initSeason = nil
	if e.opt.Seasonal {
		m := e.opt.SeasonalPeriods
		firstMean := stat.Mean(y[:m], nil)
		secondMean := stat.Mean(y[m:2*m], nil)
		e.initTrend = (secondMean - firstMean) / float64(m)
		e.initLevel = firstMean - e.initTrend*float64(m+1)/2.0
		e.initSeason = make([]float64, m)
		for i := 0; i < m; i++ {
			e.initSeason[i] = y[i] - (e.initLevel + e.initTrend*float64(i+1))
		}
	} else {
		e.initTrend = y[1] - y[0]
		e.initLevel = y[0] - e.initTrend
	}

	e.scale = floats.Norm(y, 1) / float64(len(y))
	if e.scale == 0 {
		e.scale = 1
	}
}

// initialPoint returns the starting point of the search in the unconstrained parameter space of
// logit(alpha), logit(beta), [logit(gamma)], level offset and trend offset.
func (e *ExponentialSmoothing) initialPoint() []float64 {
	x := []float64{logit(initialAlpha), logit(initialBeta)}
	if e.opt.Seasonal {
		x = append(x, logit(initialGamma))
	}
	return append(x, 0, 0)
}

func (e *ExponentialSmoothing) decode(x []float64) (alpha, beta, gamma, level, trend float64) {
	alpha = logistic(x[0])
	beta = logistic(x[1])
	i := 2
	if e.opt.Seasonal {
		gamma = logistic(x[2])
		i = 3
	}
	level = e.initLevel + x[i]*e.scale
	trend = e.initTrend + x[i+1]*e.scale/float64(len(e.y))
	return alpha, beta, gamma, level, trend
}

func (e *ExponentialSmoothing) objective(x []float64) float64 {
	params, _ := e.run(x)
	if math.IsNaN(params.SSE) {
		return math.Inf(1)
	}
	return params.SSE
}

// run applies the smoothing recursions over the training data returning the final states and the
// one step ahead fitted values.
func (e *ExponentialSmoothing) run(x []float64) (Params, []float64) {
	alpha, beta, gamma, level, trend := e.decode(x)
	p := Params{
		Alpha:        alpha,
		Beta:         beta,
		Gamma:        gamma,
		InitialLevel: level,
		InitialTrend: trend,
	}

	n := len(e.y)
	m := len(e.initSeason)
	season := make([]float64, n+m)
	copy(season, e.initSeason)

	fitted := make([]float64, n)
	var sse float64
	for t := 0; t < n; t++ {
		var s float64
		if m > 0 {
			s = season[t]
		}
		yhat := level + trend + s
		fitted[t] = yhat
		resid := e.y[t] - yhat
		sse += resid * resid

		prevLevel := level
		prevTrend := trend
		level = alpha*(e.y[t]-s) + (1-alpha)*(prevLevel+prevTrend)
		trend = beta*(level-prevLevel) + (1-beta)*prevTrend
		if m > 0 {
			season[t+m] = gamma*(e.y[t]-prevLevel-prevTrend) + (1-gamma)*s
		}
	}

	p.Level = level
	p.Trend = trend
	if m > 0 {
		p.Season = make([]float64, m)
		copy(p.Season, season[n:])
	}
	p.SSE = sse
	return p, fitted
}

// Forecast projects the fitted model h steps past the end of the training data
func (e *ExponentialSmoothing) Forecast(h int) ([]float64, error) {
	if e == nil || !e.trained {
		return nil, ErrUntrainedModel
	}
	if h < 0 {
		return nil, ErrNegativeHorizon
	}

	res := make([]float64, h)
	m := len(e.params.Season)
	for k := 1; k <= h; k++ {
		val := e.params.Level + float64(k)*e.params.Trend
		if m > 0 {
			val += e.params.Season[(k-1)%m]
		}
		res[k-1] = val
	}
	if !allFinite(res) {
		return nil, fmt.Errorf("non finite forecast, %w", ErrFitDiverged)
	}
	return res, nil
}

// Fitted returns the one step ahead predictions over the training data
func (e *ExponentialSmoothing) Fitted() []float64 {
	if e == nil {
		return nil
	}
	res := make([]float64, len(e.fitted))
	copy(res, e.fitted)
	return res
}

// Params returns the estimated parameters and final states
func (e *ExponentialSmoothing) Params() Params {
	if e == nil {
		return Params{}
	}
	p := e.params
	if e.params.Season != nil {
		p.Season = make([]float64, len(e.params.Season))
		copy(p.Season, e.params.Season)
	}
	return p
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1.0 - p))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(arr []float64) bool {
	for _, v := range arr {
		if !finite(v) {
			return false
		}
	}
	return true
}
