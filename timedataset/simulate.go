package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT generates n consecutive month starts beginning at the month of start
func GenerateT(n int, start time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, AddMonths(MonthStart(start), i))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetConst overwrites every value whose month falls within [start, end)
func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if (t[i].After(start) || t[i].Equal(start)) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

// Floor raises every value below lower up to lower
func (s Series) Floor(lower float64) Series {
	for i, v := range s {
		if v < lower {
			s[i] = lower
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateTrendY generates a linear series starting at bias and changing by slope every month
func GenerateTrendY(n int, bias, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, bias+slope*float64(i))
	}
	return Series(y)
}

// GenerateSeasonalY generates a yearly sine wave where offset shifts the peak by a number of months
func GenerateSeasonalY(t []time.Time, amp, offset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		month := float64(t[i].Month() - 1)
		val := amp * math.Sin(2.0*math.Pi/12.0*(month+offset))
		y = append(y, val)
	}
	return Series(y)
}

// GenerateNoise generates gaussian noise from a fixed seed so repeated calls are identical
func GenerateNoise(n int, scale float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Series(y)
}

// GenerateObservations spreads each monthly value over perMonth transactions on distinct days of
// the month. Months with a non-positive value produce no observations.
func GenerateObservations(productID string, t []time.Time, y []float64, perMonth int) []Observation {
	if perMonth < 1 {
		perMonth = 1
	}
	obs := make([]Observation, 0, len(t)*perMonth)
	for i := 0; i < len(t) && i < len(y); i++ {
		if y[i] <= 0 {
			continue
		}
		qty := y[i] / float64(perMonth)
		for j := 0; j < perMonth; j++ {
			obs = append(obs, Observation{
				Time:      t[i].Add(time.Duration(j%28) * 24 * time.Hour).Add(9 * time.Hour),
				ProductID: productID,
				Quantity:  qty,
			})
		}
	}
	return obs
}
