package demandforecaster

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/aouyang1/go-demandforecaster/calendar"
	"github.com/aouyang1/go-demandforecaster/forecast"
)

const (
	DefaultHorizon       = 24
	DefaultCacheSize     = 16
	DefaultHolidayRegion = calendar.RegionNL
)

var (
	ErrInvalidHorizon         = errors.New("horizon must be a positive number of months")
	ErrInvalidParallelization = errors.New("parallelization must not be negative")
	ErrInvalidCacheSize       = errors.New("cache size must not be negative")
)

// Options configures a catalog forecast run
type Options struct {
	// Horizon is the number of future months projected per product.
	Horizon int `json:"horizon" yaml:"horizon"`

	// Parallelization sets how many products are forecast at once. 0 uses every CPU.
	Parallelization int `json:"parallelization" yaml:"parallelization"`

	// CacheSize is the number of catalog forecasts memoized by fingerprint. 0 disables the cache.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// HolidayRegion selects the holidays excluded from workdays in period summaries.
	HolidayRegion string `json:"holiday_region" yaml:"holiday_region"`

	ForecastOptions *forecast.Options `json:"forecast_options" yaml:"forecast_options"`
}

// NewDefaultOptions returns a set of default catalog options
func NewDefaultOptions() *Options {
	return &Options{
		Horizon:         DefaultHorizon,
		Parallelization: runtime.NumCPU(),
		CacheSize:       DefaultCacheSize,
		HolidayRegion:   DefaultHolidayRegion,
		ForecastOptions: forecast.NewDefaultOptions(),
	}
}

// Validate checks the options and fills unset values with defaults
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Horizon < 0 {
		return nil, fmt.Errorf("got %d, %w", o.Horizon, ErrInvalidHorizon)
	}
	if o.Horizon == 0 {
		o.Horizon = DefaultHorizon
	}
	if o.Parallelization < 0 {
		return nil, fmt.Errorf("got %d, %w", o.Parallelization, ErrInvalidParallelization)
	}
	if o.Parallelization == 0 {
		o.Parallelization = runtime.NumCPU()
	}
	if o.CacheSize < 0 {
		return nil, fmt.Errorf("got %d, %w", o.CacheSize, ErrInvalidCacheSize)
	}
	if o.ForecastOptions == nil {
		o.ForecastOptions = forecast.NewDefaultOptions()
	}
	return o, nil
}
