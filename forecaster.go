// Package demandforecaster forecasts the monthly demand of every product in a catalog from raw
// timestamped quantity observations. Each product is regularized into a gap free monthly series
// and projected with the strongest model its history supports. A product whose model fails is
// forecast with its flat average and never aborts the run.
package demandforecaster

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aouyang1/go-demandforecaster/calendar"
	"github.com/aouyang1/go-demandforecaster/forecast"
	"github.com/aouyang1/go-demandforecaster/stats"
	"github.com/aouyang1/go-demandforecaster/timedataset"
)

var ErrUninitializedForecaster = errors.New("uninitialized forecaster")

// Forecaster runs catalog forecasts and memoizes complete results
type Forecaster struct {
	opt   *Options
	cal   *calendar.Calendar
	cache *forecastCache
}

// New creates a catalog forecaster with the given options. If none are provided, a default is used
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	cal, err := calendar.New(opt.HolidayRegion)
	if err != nil {
		return nil, err
	}

	cache, err := newForecastCache(opt.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable to create forecast cache, %w", err)
	}

	return &Forecaster{
		opt:   opt,
		cal:   cal,
		cache: cache,
	}, nil
}

// Options returns the validated options of the forecaster
func (f *Forecaster) Options() Options {
	if f == nil {
		return Options{}
	}
	return *f.opt
}

// Forecast runs a catalog forecast over the configured horizon
func (f *Forecaster) Forecast(ctx context.Context, obs []timedataset.Observation) (*CatalogForecast, error) {
	if f == nil {
		return nil, ErrUninitializedForecaster
	}
	return f.ForecastCatalog(ctx, obs, f.opt.Horizon)
}

// ForecastCatalog projects every product in the observations horizon months past its own last
// observed month. Rows are ordered by product id then month. Products are forecast independently
// and a failing model only degrades its own product to the flat average. If the context is
// cancelled the products completed so far are returned along with the context error.
func (f *Forecaster) ForecastCatalog(ctx context.Context, obs []timedataset.Observation, horizon int) (*CatalogForecast, error) {
	if f == nil {
		return nil, ErrUninitializedForecaster
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}

	key := Fingerprint(obs, horizon)
	if cf, ok := f.cache.get(key); ok {
		slog.Debug("catalog forecast cache hit", "observations", len(obs), "horizon", horizon)
		return cf, nil
	}

	productObs, productIDs := timedataset.Partition(obs)
	slices.Sort(productIDs)

	res := &CatalogForecast{
		Horizon:  horizon,
		Products: make([]ProductReport, len(productIDs)),
		cal:      f.cal,
	}
	for i, id := range productIDs {
		valid := slices.DeleteFunc(slices.Clone(productObs[id]), func(o timedataset.Observation) bool {
			return !o.Valid()
		})
		res.Dropped += len(productObs[id]) - len(valid)
		productObs[id] = valid
		res.Products[i] = ProductReport{ProductID: id, Observations: len(valid)}
	}
	if res.Dropped > 0 {
		slog.Debug("dropped invalid observations", "dropped", res.Dropped, "observations", len(obs))
	}

	rows := make([][]forecast.Row, len(productIDs))
	done := make([]bool, len(productIDs))

	sem := make(chan struct{}, f.opt.Parallelization)
	var wg sync.WaitGroup
	for i, id := range productIDs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)

		go f.runProduct(ctx, productObs[id], horizon, &res.Products[i], &rows[i], &done[i], &wg, sem)
	}
	wg.Wait()

	// only products that finished are reported so a partial result never holds half a product
	reports := res.Products[:0]
	for i := range productIDs {
		if !done[i] {
			continue
		}
		res.Rows = append(res.Rows, rows[i]...)
		reports = append(reports, res.Products[i])
	}
	res.Products = reports
	slices.SortStableFunc(res.Rows, func(a, b forecast.Row) int {
		if d := cmp.Compare(a.ProductID, b.ProductID); d != 0 {
			return d
		}
		return a.Month.Compare(b.Month)
	})

	if err := ctx.Err(); err != nil {
		slog.Warn("catalog forecast cancelled", "completed", len(res.Products), "products", len(productIDs), "error", err)
		return res, err
	}

	slog.Debug("catalog forecast complete",
		"products", len(res.Products),
		"rows", len(res.Rows),
		"fallbacks", len(res.Fallbacks()),
		"failures", len(res.Failures()),
	)
	f.cache.add(key, res)
	return res, nil
}

func (f *Forecaster) runProduct(ctx context.Context, obs []timedataset.Observation, horizon int,
	report *ProductReport, rows *[]forecast.Row, done *bool, wg *sync.WaitGroup, sem chan struct{}) {
	defer func() {
		wg.Done()
		<-sem
	}()
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			*rows = nil
			report.Model = nil
			report.err = fmt.Errorf("panic while forecasting product, %v", r)
			report.Error = report.err.Error()
			slog.Error("recovered product forecast panic", "product_id", report.ProductID, "panic", r)
			*done = true
		}
	}()

	series, err := timedataset.Regularize(obs)
	if err != nil {
		err = fmt.Errorf("unable to regularize observations, %w", err)
	} else {
		report.series = series
		for _, idx := range stats.DetectOutliers(series.Y, stats.DefaultLowerPercentile, stats.DefaultUpperPercentile, stats.DefaultTukeyFactor) {
			report.Outliers = append(report.Outliers, series.T[idx])
		}
		*rows, report.Model, err = f.forecastProduct(series, horizon)
	}
	if err != nil {
		report.err = err
		report.Error = err.Error()
		slog.Warn("unable to forecast product", "product_id", report.ProductID, "error", err)
	}
	*done = true
}

func (f *Forecaster) forecastProduct(series *timedataset.MonthlySeries, horizon int) ([]forecast.Row, *forecast.Model, error) {
	fc, err := forecast.New(f.opt.ForecastOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to initialize forecast, %w", err)
	}
	if err := fc.Fit(series); err != nil {
		return nil, nil, fmt.Errorf("unable to fit product series, %w", err)
	}

	rows, err := fc.Predict(horizon)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to predict product series, %w", err)
	}

	// Predict may fall back after Fit succeeded so the model is read last
	model, err := fc.Model()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to describe product model, %w", err)
	}
	return rows, &model, nil
}

// Invalidate removes the cached forecast of an observation set and horizon, reporting if one was
// present
func (f *Forecaster) Invalidate(obs []timedataset.Observation, horizon int) bool {
	if f == nil {
		return false
	}
	return f.cache.remove(Fingerprint(obs, horizon))
}

// Purge removes every cached forecast
func (f *Forecaster) Purge() {
	if f == nil {
		return
	}
	f.cache.purge()
}

// CacheLen returns the number of cached forecasts
func (f *Forecaster) CacheLen() int {
	if f == nil {
		return 0
	}
	return f.cache.len()
}
