package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoObservations     = errors.New("no observations")
	ErrMixedProducts      = errors.New("observations belong to more than one product")
	ErrNonContiguous      = errors.New("months are not contiguous")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
)

// Observation is a single transaction row for a product. Quantities are expected to be strictly
// positive by the time they reach the regularizer.
type Observation struct {
	Time      time.Time `json:"timestamp"`
	ProductID string    `json:"product_id"`
	Quantity  float64   `json:"quantity"`
}

// Valid reports whether the observation can take part in a forecast
func (o Observation) Valid() bool {
	if o.Time.IsZero() || o.ProductID == "" {
		return false
	}
	if math.IsNaN(o.Quantity) || math.IsInf(o.Quantity, 0) {
		return false
	}
	return o.Quantity > 0
}

// MonthlySeries is an evenly spaced monthly series for one product. T holds the first instant of
// each month in UTC and contains no gaps; months without demand carry a value of 0.
type MonthlySeries struct {
	ProductID string      `json:"product_id"`
	T         []time.Time `json:"time"`
	Y         []float64   `json:"values"`
}

// NewMonthlySeries returns an instance of a MonthlySeries given a month and value slice. Every month
// must directly follow the previous one.
func NewMonthlySeries(productID string, t []time.Time, y []float64) (*MonthlySeries, error) {
	if len(y) == 0 {
		return nil, ErrNoObservations
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 0; i < len(t); i++ {
		if !t[i].Equal(MonthStart(t[i])) {
			return nil, fmt.Errorf("%s at %d is not the start of a month, %w", t[i], i, ErrNonContiguous)
		}
		if i > 0 && !t[i].Equal(AddMonths(t[i-1], 1)) {
			return nil, fmt.Errorf("gap between %s and %s at %d, %w", t[i-1], t[i], i, ErrNonContiguous)
		}
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	return &MonthlySeries{
		ProductID: productID,
		T:         tSeries,
		Y:         ySeries,
	}, nil
}

// Len returns the number of months in the series
func (s *MonthlySeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Y)
}

// FirstMonth returns the first month of the series
func (s *MonthlySeries) FirstMonth() time.Time {
	if s == nil {
		return time.Time{}
	}
	return TimeSlice(s.T).StartTime()
}

// LastMonth returns the last month of the series
func (s *MonthlySeries) LastMonth() time.Time {
	if s == nil {
		return time.Time{}
	}
	return TimeSlice(s.T).EndTime()
}

// Copy returns a deep copy of the series
func (s *MonthlySeries) Copy() *MonthlySeries {
	if s == nil {
		return nil
	}
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(s.T))
	copy(tSeries, s.T)
	copy(ySeries, s.Y)
	return &MonthlySeries{
		ProductID: s.ProductID,
		T:         tSeries,
		Y:         ySeries,
	}
}

// Regularize converts the observations of a single product into a gap free monthly series spanning
// the first to the last observed month. Quantities falling in the same month are summed and months
// with no observations are filled with 0.
func Regularize(obs []Observation) (*MonthlySeries, error) {
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	productID := obs[0].ProductID
	monthly := make(map[time.Time]float64)
	first := MonthStart(obs[0].Time)
	last := first
	for i, o := range obs {
		if o.ProductID != productID {
			return nil, fmt.Errorf("expected %q but got %q at %d, %w", productID, o.ProductID, i, ErrMixedProducts)
		}
		month := MonthStart(o.Time)
		monthly[month] += o.Quantity
		if month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}

	t := MonthRange(first, last)
	y := make([]float64, len(t))
	for i, month := range t {
		y[i] = monthly[month]
	}
	return &MonthlySeries{
		ProductID: productID,
		T:         t,
		Y:         y,
	}, nil
}

// Partition groups observations by product id. The returned ids are in order of first appearance.
func Partition(obs []Observation) (map[string][]Observation, []string) {
	groups := make(map[string][]Observation)
	var ids []string
	for _, o := range obs {
		if _, exists := groups[o.ProductID]; !exists {
			ids = append(ids, o.ProductID)
		}
		groups[o.ProductID] = append(groups[o.ProductID], o)
	}
	return groups, ids
}
