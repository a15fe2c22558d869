package demandforecaster

import (
	"cmp"
	"slices"
	"time"

	"github.com/aouyang1/go-demandforecaster/calendar"
	"github.com/aouyang1/go-demandforecaster/forecast"
	"github.com/aouyang1/go-demandforecaster/timedataset"
)

// ProductReport describes how one product of the catalog was forecast
type ProductReport struct {
	ProductID    string          `json:"product_id"`
	Observations int             `json:"observations"`
	Model        *forecast.Model `json:"model,omitempty"`
	Outliers     []time.Time     `json:"outlier_months,omitempty"`
	Error        string          `json:"error,omitempty"`

	series *timedataset.MonthlySeries
	err    error
}

// Err returns the input error that kept the product out of the forecast, if any
func (p ProductReport) Err() error {
	return p.err
}

// Fallback reports if the product's model tier failed and the flat average was used instead
func (p ProductReport) Fallback() bool {
	return p.Model != nil && p.Model.FitError != ""
}

// Series returns the regularized history of the product
func (p ProductReport) Series() *timedataset.MonthlySeries {
	return p.series
}

// PeriodSummary aggregates the catalog forecast of a single month
type PeriodSummary struct {
	Month      time.Time          `json:"month_start"`
	Total      float64            `json:"total"`
	Products   int                `json:"products"`
	Workdays   int                `json:"workdays"`
	PerWorkday float64            `json:"per_workday"`
	Holidays   []calendar.Holiday `json:"holidays,omitempty"`
}

// CatalogForecast is the combined forecast of every product, ordered by product then month
type CatalogForecast struct {
	Horizon  int             `json:"horizon"`
	Rows     []forecast.Row  `json:"rows"`
	Products []ProductReport `json:"products"`
	Dropped  int             `json:"dropped_observations"`

	cal *calendar.Calendar
}

// Len returns the number of forecast rows
func (c *CatalogForecast) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Rows)
}

// Product returns the report of a product
func (c *CatalogForecast) Product(productID string) (ProductReport, bool) {
	if c == nil {
		return ProductReport{}, false
	}
	idx, found := slices.BinarySearchFunc(c.Products, productID, func(p ProductReport, id string) int {
		return cmp.Compare(p.ProductID, id)
	})
	if !found {
		return ProductReport{}, false
	}
	return c.Products[idx], true
}

// Fallbacks returns the ids of products forecast with the flat average after a model failure
func (c *CatalogForecast) Fallbacks() []string {
	if c == nil {
		return nil
	}
	var ids []string
	for _, p := range c.Products {
		if p.Fallback() {
			ids = append(ids, p.ProductID)
		}
	}
	return ids
}

// Failures returns the ids of products that produced no rows
func (c *CatalogForecast) Failures() []string {
	if c == nil {
		return nil
	}
	var ids []string
	for _, p := range c.Products {
		if p.err != nil {
			ids = append(ids, p.ProductID)
		}
	}
	return ids
}

// ProductRows returns the forecast rows of a single product in month order
func (c *CatalogForecast) ProductRows(productID string) []forecast.Row {
	if c == nil {
		return nil
	}
	start, _ := slices.BinarySearchFunc(c.Rows, productID, func(r forecast.Row, id string) int {
		return cmp.Compare(r.ProductID, id)
	})
	end := start
	for end < len(c.Rows) && c.Rows[end].ProductID == productID {
		end++
	}
	if start == end {
		return nil
	}
	return slices.Clone(c.Rows[start:end])
}

// Months returns the distinct forecast months in ascending order
func (c *CatalogForecast) Months() []time.Time {
	if c == nil {
		return nil
	}
	seen := make(map[time.Time]struct{})
	var months []time.Time
	for _, r := range c.Rows {
		if _, exists := seen[r.Month]; exists {
			continue
		}
		seen[r.Month] = struct{}{}
		months = append(months, r.Month)
	}
	slices.SortFunc(months, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return months
}

// Years returns the distinct years covered by the forecast in ascending order
func (c *CatalogForecast) Years() []int {
	var years []int
	for _, m := range c.Months() {
		if n := len(years); n == 0 || years[n-1] != m.Year() {
			years = append(years, m.Year())
		}
	}
	return years
}

// Period returns every product's forecast for a month, largest quantity first. Equal quantities
// are ordered by product id.
func (c *CatalogForecast) Period(year int, month time.Month) []forecast.Row {
	if c == nil {
		return nil
	}
	var rows []forecast.Row
	for _, r := range c.Rows {
		if r.Month.Year() == year && r.Month.Month() == month {
			rows = append(rows, r)
		}
	}
	slices.SortStableFunc(rows, func(a, b forecast.Row) int {
		if d := cmp.Compare(b.Quantity, a.Quantity); d != 0 {
			return d
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return rows
}

// Top returns at most n rows of a month's forecast, largest quantity first
func (c *CatalogForecast) Top(year int, month time.Month, n int) []forecast.Row {
	if n <= 0 {
		return nil
	}
	rows := c.Period(year, month)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Summary aggregates the forecast of a month with the number of workdays in the holiday region
func (c *CatalogForecast) Summary(year int, month time.Month) PeriodSummary {
	s := PeriodSummary{
		Month: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
	}
	if c == nil {
		return s
	}
	for _, r := range c.Period(year, month) {
		s.Total += r.Quantity
		s.Products++
	}
	s.Workdays = c.cal.Workdays(year, month)
	s.Holidays = c.cal.Holidays(year, month)
	if s.Workdays > 0 {
		s.PerWorkday = s.Total / float64(s.Workdays)
	}
	return s
}

// Summaries returns the summary of every forecast month in ascending order
func (c *CatalogForecast) Summaries() []PeriodSummary {
	months := c.Months()
	summaries := make([]PeriodSummary, 0, len(months))
	for _, m := range months {
		summaries = append(summaries, c.Summary(m.Year(), m.Month()))
	}
	return summaries
}

// Clone returns a deep copy so callers can never alter a cached forecast
func (c *CatalogForecast) Clone() *CatalogForecast {
	if c == nil {
		return nil
	}
	out := &CatalogForecast{
		Horizon:  c.Horizon,
		Rows:     slices.Clone(c.Rows),
		Products: make([]ProductReport, len(c.Products)),
		Dropped:  c.Dropped,
		cal:      c.cal,
	}
	for i, p := range c.Products {
		if p.Model != nil {
			m := *p.Model
			if m.Params != nil {
				params := *m.Params
				params.Season = slices.Clone(params.Season)
				m.Params = &params
			}
			if m.Scores != nil {
				scores := *m.Scores
				m.Scores = &scores
			}
			p.Model = &m
		}
		p.Outliers = slices.Clone(p.Outliers)
		p.series = p.series.Copy()
		out.Products[i] = p
	}
	return out
}
