package forecast

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-demandforecaster/smoothing"
)

// Tier thresholds are fixed policy and not configurable at runtime.
const (
	SeasonalPeriod    = 12
	SeasonalMinLength = 2 * SeasonalPeriod
	TrendMinLength    = 12
)

var ErrUnknownTier = errors.New("unknown forecast tier")

// Tier is the forecasting strategy chosen from the length of a monthly series
type Tier int

const (
	TierFlatAverage Tier = iota
	TierTrendOnly
	TierSeasonal
)

// SelectTier picks the strategy for a series of n months
func SelectTier(n int) Tier {
	switch {
	case n >= SeasonalMinLength:
		return TierSeasonal
	case n >= TrendMinLength:
		return TierTrendOnly
	default:
		return TierFlatAverage
	}
}

func (t Tier) String() string {
	switch t {
	case TierFlatAverage:
		return "flat_average"
	case TierTrendOnly:
		return "trend_only"
	case TierSeasonal:
		return "seasonal"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func (t Tier) MarshalText() ([]byte, error) {
	switch t {
	case TierFlatAverage, TierTrendOnly, TierSeasonal:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("%d, %w", int(t), ErrUnknownTier)
}

func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "flat_average":
		*t = TierFlatAverage
	case "trend_only":
		*t = TierTrendOnly
	case "seasonal":
		*t = TierSeasonal
	default:
		return fmt.Errorf("%q, %w", string(text), ErrUnknownTier)
	}
	return nil
}

// smoothingOptions returns the model configuration of a tier or nil for the flat average
func (t Tier) smoothingOptions(opt *Options) *smoothing.Options {
	var sOpt *smoothing.Options
	switch t {
	case TierSeasonal:
		sOpt = smoothing.NewSeasonalOptions(SeasonalPeriod)
	case TierTrendOnly:
		sOpt = smoothing.NewDefaultOptions()
	default:
		return nil
	}
	if opt != nil {
		if opt.Iterations > 0 {
			sOpt.Iterations = opt.Iterations
		}
		if opt.Tolerance > 0 {
			sOpt.Tolerance = opt.Tolerance
		}
	}
	return sOpt
}
