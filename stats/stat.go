// Package stats holds descriptive statistics over monthly demand series
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLowerPercentile = 0.25
	DefaultUpperPercentile = 0.75
	DefaultTukeyFactor     = 1.5

	// MinOutlierSamples is the shortest series outliers are detected on
	MinOutlierSamples = 4
)

// DetectOutliers returns the indices of values outside Tukey's fences around the given
// percentiles. Values on a fence are not outliers.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) < MinOutlierSamples {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	if lowerPerc > upperPerc {
		lowerPerc, upperPerc = upperPerc, lowerPerc
	}
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := slices.Clone(y)
	slices.Sort(sorted)
	lower := stat.Quantile(lowerPerc, stat.Empirical, sorted, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, sorted, nil)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
