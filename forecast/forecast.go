// Package forecast projects a regularized monthly series forward using the strategy tier its
// history length supports. Model tiers that fail to fit fall back to the flat average so a single
// product never aborts a catalog run.
package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aouyang1/go-demandforecaster/forecast/util"
	"github.com/aouyang1/go-demandforecaster/smoothing"
	"github.com/aouyang1/go-demandforecaster/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrUninitializedForecast = errors.New("uninitialized forecast")
	ErrNoSeries              = errors.New("no monthly series to fit")
	ErrModelFit              = errors.New("unable to fit model")
	ErrUntrainedForecast     = errors.New("forecast has not been trained yet")
	ErrInvalidHorizon        = errors.New("horizon must be positive")
)

// Row is the projected demand of one product for one future month. Quantity is never negative.
type Row struct {
	ProductID string    `json:"product_id"`
	Month     time.Time `json:"month_start"`
	Quantity  float64   `json:"forecast_quantity"`
	Tier      Tier      `json:"tier"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// Forecast fits one monthly series and can project it any number of months forward
type Forecast struct {
	opt *Options

	series  *timedataset.MonthlySeries
	tier    Tier // selected from the series length
	fitTier Tier // tier actually producing the projection
	model   smoothing.Model
	mean    float64
	fitErr  error
	scores  *Scores
	trained bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *Options) (*Forecast, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	o := *opt
	if o.NewModel == nil {
		o.NewModel = NewExponentialSmoothing
	}
	return &Forecast{opt: &o}, nil
}

// Fit selects the tier for the series and fits it. A model tier that fails is recorded, logged and
// replaced by the flat average; only a missing or empty series is returned as an error.
func (f *Forecast) Fit(series *timedataset.MonthlySeries) error {
	if f == nil {
		return ErrUninitializedForecast
	}
	if series == nil || series.Len() == 0 {
		return ErrNoSeries
	}

	f.trained = false
	f.series = series.Copy()
	f.tier = SelectTier(series.Len())
	f.fitTier = f.tier
	f.model = nil
	f.fitErr = nil
	f.mean = stat.Mean(f.series.Y, nil)

	if sOpt := f.tier.smoothingOptions(f.opt); sOpt != nil {
		model, err := f.fitModel(sOpt)
		if err != nil {
			f.fallback(err)
		} else {
			f.model = model
		}
	}

	scores, err := NewScores(f.fitted(), f.series.Y)
	if err != nil {
		return err
	}
	f.scores = scores
	f.trained = true
	return nil
}

// fitModel builds and fits the tier model. A panic from the model is returned as ErrFitPanic.
func (f *Forecast) fitModel(sOpt *smoothing.Options) (model smoothing.Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			model = nil
			err = fmt.Errorf("%v, %w", r, smoothing.ErrFitPanic)
		}
	}()

	model, err = f.opt.NewModel(sOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize %s model, %w", f.tier, err)
	}
	if err := model.Fit(f.series.Y); err != nil {
		return nil, fmt.Errorf("unable to fit %s model, %w", f.tier, err)
	}
	if n := len(model.Fitted()); n != f.series.Len() {
		return nil, fmt.Errorf("%s model fitted %d of %d months, %w", f.tier, n, f.series.Len(), smoothing.ErrFitDiverged)
	}
	return model, nil
}

func (f *Forecast) fallback(err error) {
	f.fitErr = fmt.Errorf("%w, %w", ErrModelFit, err)
	f.fitTier = TierFlatAverage
	f.model = nil
	slog.Warn("unable to fit model, falling back to flat average",
		"product_id", f.series.ProductID,
		"tier", f.tier.String(),
		"error", err.Error(),
	)
}

func (f *Forecast) fitted() []float64 {
	if f.model != nil {
		return f.model.Fitted()
	}
	res := make([]float64, f.series.Len())
	floats.AddConst(f.mean, res)
	return res
}

// Predict projects the series horizon months past its last month, one row per month
func (f *Forecast) Predict(horizon int) ([]Row, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}

	var values []float64
	if f.model != nil {
		res, err := f.modelForecast(horizon)
		if err != nil || len(res) != horizon {
			if err == nil {
				err = fmt.Errorf("model returned %d values for a horizon of %d", len(res), horizon)
			}
			f.fallback(err)
		} else {
			values = res
		}
	}
	if values == nil {
		values = make([]float64, horizon)
		floats.AddConst(f.mean, values)
	}
	util.SliceMap(values, util.FloorZero)

	months := timedataset.Horizon(f.series.LastMonth(), horizon)
	rows := make([]Row, 0, horizon)
	for i, month := range months {
		rows = append(rows, Row{
			ProductID: f.series.ProductID,
			Month:     month,
			Quantity:  values[i],
			Tier:      f.fitTier,
			Fallback:  f.fitErr != nil,
		})
	}
	return rows, nil
}

// modelForecast projects the fitted model. A panic from the model is returned as ErrFitPanic.
func (f *Forecast) modelForecast(horizon int) (res []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%v, %w", r, smoothing.ErrFitPanic)
		}
	}()
	return f.model.Forecast(horizon)
}

// Tier returns the tier selected from the series length
func (f *Forecast) Tier() Tier {
	if f == nil {
		return TierFlatAverage
	}
	return f.tier
}

// FitTier returns the tier producing the projection which differs from Tier after a fallback
func (f *Forecast) FitTier() Tier {
	if f == nil {
		return TierFlatAverage
	}
	return f.fitTier
}

// FitErr returns the model error that caused a fallback to the flat average, if any
func (f *Forecast) FitErr() error {
	if f == nil {
		return nil
	}
	return f.fitErr
}

// Mean returns the arithmetic mean of the series including zero filled months
func (f *Forecast) Mean() float64 {
	if f == nil {
		return 0
	}
	return f.mean
}

// Scores returns the in-sample fit scores
func (f *Forecast) Scores() Scores {
	if f == nil || f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Series returns a copy of the fitted monthly series
func (f *Forecast) Series() *timedataset.MonthlySeries {
	if f == nil || f.series == nil {
		return nil
	}
	return f.series.Copy()
}

// Model returns the serializeable description of the fit
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	scores := f.Scores()
	m := Model{
		ProductID:  f.series.ProductID,
		Tier:       f.tier,
		FitTier:    f.fitTier,
		SeriesLen:  f.series.Len(),
		FirstMonth: f.series.FirstMonth(),
		LastMonth:  f.series.LastMonth(),
		Mean:       f.mean,
		Scores:     &scores,
	}
	if f.fitErr != nil {
		m.FitError = f.fitErr.Error()
	}
	if p, ok := f.model.(interface{ Params() smoothing.Params }); ok {
		params := p.Params()
		m.Params = &params
	}
	return m, nil
}
