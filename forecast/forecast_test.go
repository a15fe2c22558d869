package forecast

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/aouyang1/go-demandforecaster/smoothing"
	"github.com/aouyang1/go-demandforecaster/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected fit failure")

type failingModel struct{}

func (failingModel) Fit([]float64) error             { return errInjected }
func (failingModel) Forecast(int) ([]float64, error) { return nil, errInjected }
func (failingModel) Fitted() []float64               { return nil }

func newFailingModel(*smoothing.Options) (smoothing.Model, error) {
	return failingModel{}, nil
}

type panickingModel struct {
	onFit      bool
	onForecast bool
	fitted     []float64
}

func (m *panickingModel) Fit(y []float64) error {
	if m.onFit {
		panic("fit exploded")
	}
	m.fitted = make([]float64, len(y))
	copy(m.fitted, y)
	return nil
}

func (m *panickingModel) Forecast(h int) ([]float64, error) {
	if m.onForecast {
		panic("forecast exploded")
	}
	return make([]float64, h), nil
}

func (m *panickingModel) Fitted() []float64 { return m.fitted }

// failingFittedModel fits without error but reports no fitted values
type failingFittedModel struct{}

func (failingFittedModel) Fit([]float64) error             { return nil }
func (failingFittedModel) Forecast(int) ([]float64, error) { return nil, nil }
func (failingFittedModel) Fitted() []float64               { return nil }

func newSeries(t *testing.T, y []float64) *timedataset.MonthlySeries {
	t.Helper()
	tMonths := timedataset.GenerateT(len(y), time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))
	s, err := timedataset.NewMonthlySeries("pils", tMonths, y)
	require.Nil(t, err)
	return s
}

func TestFlatAverage(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(newSeries(t, []float64{10, 0, 20})))

	rows, err := f.Predict(2)
	require.Nil(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 10.0, row.Quantity)
		assert.Equal(t, TierFlatAverage, row.Tier)
		assert.False(t, row.Fallback)
	}
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), rows[0].Month)
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), rows[1].Month)
}

func TestPredictHorizon(t *testing.T) {
	tMonths := timedataset.GenerateT(40, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))
	y := timedataset.GenerateTrendY(40, 300, 1).
		Add(timedataset.GenerateSeasonalY(tMonths, 50, 0)).
		Add(timedataset.GenerateNoise(40, 10, 3))

	testData := map[string]struct {
		n       int
		horizon int
		tier    Tier
	}{
		"single month":  {1, 24, TierFlatAverage},
		"flat average":  {11, 1, TierFlatAverage},
		"trend only":    {12, 7, TierTrendOnly},
		"long trend":    {23, 24, TierTrendOnly},
		"seasonal":      {24, 13, TierSeasonal},
		"long seasonal": {40, 36, TierSeasonal},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			series := newSeries(t, y[:td.n])
			f, err := New(nil)
			require.Nil(t, err)
			require.Nil(t, f.Fit(series))
			assert.Equal(t, td.tier, f.Tier())
			assert.Equal(t, td.tier, f.FitTier())
			assert.Nil(t, f.FitErr())

			rows, err := f.Predict(td.horizon)
			require.Nil(t, err)
			require.Len(t, rows, td.horizon)

			expected := timedataset.Horizon(series.LastMonth(), td.horizon)
			for i, row := range rows {
				assert.Equal(t, expected[i], row.Month)
				assert.Equal(t, "pils", row.ProductID)
				assert.GreaterOrEqual(t, row.Quantity, 0.0)
			}
		})
	}
}

func TestPredictNonNegative(t *testing.T) {
	testData := map[string]struct {
		y []float64
	}{
		"declining trend": {
			y: timedataset.GenerateTrendY(12, 230, -10),
		},
		"declining seasonal": {
			y: timedataset.GenerateTrendY(24, 480, -20).
				Add(timedataset.GenerateSeasonalY(timedataset.GenerateT(24, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)), 15, 0)),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.Nil(t, err)
			require.Nil(t, f.Fit(newSeries(t, td.y)))

			rows, err := f.Predict(36)
			require.Nil(t, err)
			require.Len(t, rows, 36)
			for _, row := range rows {
				assert.GreaterOrEqual(t, row.Quantity, 0.0)
			}
			assert.Equal(t, 0.0, rows[35].Quantity)
		})
	}
}

func TestPredictDecliningTrendValues(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(newSeries(t, timedataset.GenerateTrendY(12, 230, -10))))

	rows, err := f.Predict(14)
	require.Nil(t, err)

	res := make([]float64, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.Quantity)
	}
	expected := timedataset.GenerateTrendY(14, 110, -10).Floor(0)
	assert.InDeltaSlice(t, []float64(expected), res, 1e-3)
}

func TestFitFallback(t *testing.T) {
	opt := NewDefaultOptions()
	opt.NewModel = newFailingModel

	y := timedataset.GenerateTrendY(30, 10, 1)
	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(newSeries(t, y)))

	assert.Equal(t, TierSeasonal, f.Tier())
	assert.Equal(t, TierFlatAverage, f.FitTier())
	assert.ErrorIs(t, f.FitErr(), ErrModelFit)
	assert.ErrorIs(t, f.FitErr(), errInjected)

	rows, err := f.Predict(6)
	require.Nil(t, err)
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.InDelta(t, 24.5, row.Quantity, 1e-9)
		assert.True(t, row.Fallback)
		assert.Equal(t, TierFlatAverage, row.Tier)
	}

	m, err := f.Model()
	require.Nil(t, err)
	assert.Nil(t, m.Params)
	assert.Contains(t, m.FitError, errInjected.Error())
}

func TestFitPanicFallback(t *testing.T) {
	testData := map[string]struct {
		newModel ModelFunc
		err      error
	}{
		"panic on construction": {
			newModel: func(*smoothing.Options) (smoothing.Model, error) { panic("construction exploded") },
			err:      smoothing.ErrFitPanic,
		},
		"panic on fit": {
			newModel: func(*smoothing.Options) (smoothing.Model, error) { return &panickingModel{onFit: true}, nil },
			err:      smoothing.ErrFitPanic,
		},
		"panic on forecast": {
			newModel: func(*smoothing.Options) (smoothing.Model, error) { return &panickingModel{onForecast: true}, nil },
			err:      smoothing.ErrFitPanic,
		},
		"short fitted values": {
			newModel: func(*smoothing.Options) (smoothing.Model, error) { return failingFittedModel{}, nil },
			err:      smoothing.ErrFitDiverged,
		},
	}

	y := timedataset.GenerateTrendY(30, 10, 1)
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.NewModel = td.newModel
			f, err := New(opt)
			require.Nil(t, err)
			require.Nil(t, f.Fit(newSeries(t, y)))

			rows, err := f.Predict(6)
			require.Nil(t, err)
			require.Len(t, rows, 6)
			for _, row := range rows {
				assert.InDelta(t, 24.5, row.Quantity, 1e-9)
				assert.True(t, row.Fallback)
				assert.Equal(t, TierFlatAverage, row.Tier)
			}
			assert.Equal(t, TierSeasonal, f.Tier())
			assert.Equal(t, TierFlatAverage, f.FitTier())
			assert.ErrorIs(t, f.FitErr(), ErrModelFit)
			assert.ErrorIs(t, f.FitErr(), td.err)
		})
	}
}

func TestFitConstantZeroSeries(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(newSeries(t, timedataset.GenerateConstY(26, 0))))

	rows, err := f.Predict(4)
	require.Nil(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.InDelta(t, 0.0, row.Quantity, 1e-9)
	}
}

func TestFitErrors(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)

	_, err = f.Predict(3)
	assert.ErrorIs(t, err, ErrUntrainedForecast)

	assert.ErrorIs(t, f.Fit(nil), ErrNoSeries)
	assert.ErrorIs(t, f.Fit(&timedataset.MonthlySeries{ProductID: "pils"}), ErrNoSeries)

	require.Nil(t, f.Fit(newSeries(t, []float64{1, 2})))
	_, err = f.Predict(0)
	assert.ErrorIs(t, err, ErrInvalidHorizon)

	var nilForecast *Forecast
	assert.ErrorIs(t, nilForecast.Fit(nil), ErrUninitializedForecast)
	_, err = nilForecast.Predict(1)
	assert.ErrorIs(t, err, ErrUninitializedForecast)
}

func TestFitDeterministic(t *testing.T) {
	tMonths := timedataset.GenerateT(36, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))
	y := timedataset.GenerateTrendY(36, 300, 2).
		Add(timedataset.GenerateSeasonalY(tMonths, 60, 1)).
		Add(timedataset.GenerateNoise(36, 20, 11))

	var runs [][]Row
	for i := 0; i < 2; i++ {
		f, err := New(nil)
		require.Nil(t, err)
		require.Nil(t, f.Fit(newSeries(t, y)))
		rows, err := f.Predict(24)
		require.Nil(t, err)
		runs = append(runs, rows)
	}
	assert.Equal(t, runs[0], runs[1])
}

func TestModel(t *testing.T) {
	tMonths := timedataset.GenerateT(24, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC))
	y := timedataset.GenerateTrendY(24, 300, 2).Add(timedataset.GenerateSeasonalY(tMonths, 60, 1))

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(newSeries(t, y)))

	m, err := f.Model()
	require.Nil(t, err)
	assert.Equal(t, "pils", m.ProductID)
	assert.Equal(t, TierSeasonal, m.Tier)
	assert.Equal(t, 24, m.SeriesLen)
	require.NotNil(t, m.Params)
	assert.Len(t, m.Params.Season, SeasonalPeriod)
	require.NotNil(t, m.Scores)
	assert.InDelta(t, 1.0, m.Scores.R2, 1e-6)

	out, err := json.Marshal(m)
	require.Nil(t, err)
	assert.Contains(t, string(out), `"tier":"seasonal"`)

	var decoded Model
	require.Nil(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, m.Tier, decoded.Tier)
	assert.Equal(t, m.FitTier, decoded.FitTier)

	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "", "  "))
	assert.Contains(t, buf.String(), "Forecast: pils\n")
	assert.Contains(t, buf.String(), "  Tier: seasonal\n")
	assert.Contains(t, buf.String(), "gamma")
}

func TestModelTablePrintFlat(t *testing.T) {
	m := Model{
		ProductID: "stout",
		Tier:      TierTrendOnly,
		FitTier:   TierFlatAverage,
		SeriesLen: 14,
		Mean:      12.5,
		FitError:  "boom",
	}
	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "--", "**"))
	out := buf.String()
	assert.Contains(t, out, "--Forecast: stout\n")
	assert.Contains(t, out, "--**Tier: trend_only (fallback to flat_average)\n")
	assert.Contains(t, out, "--**Fit Error: boom\n")
	assert.Contains(t, out, "12.500")
	assert.NotContains(t, out, "Scores")
}

func TestScores(t *testing.T) {
	s, err := NewScores([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.Nil(t, err)
	assert.Equal(t, &Scores{R2: 1.0}, s)

	s, err = NewScores([]float64{2, 2}, []float64{0, 4})
	require.Nil(t, err)
	assert.InDelta(t, 4.0, s.MSE, 1e-9)
	assert.InDelta(t, 2.0, s.MAE, 1e-9)
	assert.InDelta(t, 0.5, s.MAPE, 1e-9)
	assert.InDelta(t, 0.0, s.R2, 1e-9)

	s, err = NewScores([]float64{1, 1}, []float64{0, 0})
	require.Nil(t, err)
	assert.Equal(t, 0.0, s.R2)

	_, err = NewScores([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrResLenMismatch)
}
