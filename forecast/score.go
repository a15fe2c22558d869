package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks how well the in-sample one step ahead predictions match the monthly series
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	MAE  float64 `json:"mean_absolute_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	return &Scores{
		MSE:  MSE(predicted, actual),
		MAE:  MAE(predicted, actual),
		MAPE: MAPE(predicted, actual),
		R2:   RSquared(predicted, actual),
	}, nil
}

// MSE computes the mean squared error. A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mse := 0.0
	for i := 0; i < len(actual); i++ {
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	return mse / float64(len(actual))
}

// MAE computes the mean absolute error in the units of the series
func MAE(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mae := 0.0
	for i := 0; i < len(actual); i++ {
		mae += math.Abs(actual[i] - predicted[i])
	}
	return mae / float64(len(actual))
}

// MAPE calculates the mean average percent error. Months without demand are skipped since they
// have no defined percentage error.
func MAPE(predicted, actual []float64) float64 {
	var mape float64
	var n int
	for i := 0; i < len(actual); i++ {
		if actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return mape / float64(n)
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit. A constant series that is matched exactly scores 1.0.
func RSquared(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 1.0
	}
	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		if MSE(predicted, actual) == 0 {
			return 1.0
		}
		return 0.0
	}
	return r2
}
