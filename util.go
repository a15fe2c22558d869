package demandforecaster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-demandforecaster/forecast"
	"github.com/aouyang1/go-demandforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const monthLayout = "2006-01"

var (
	ErrUnknownProduct = errors.New("product not found in catalog forecast")
	ErrEmptyPeriod    = errors.New("no forecast rows for period")
)

// LineTSeries generates an echart multi-line chart over a list of months. Each series in y must
// have the same length as the months and NaN values are drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	labels := make([]string, 0, len(t))
	for _, month := range t {
		labels = append(labels, month.Format(monthLayout))
	}

	line = line.SetXAxis(labels)
	for i, series := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for _, v := range y[i] {
			if math.IsNaN(v) {
				// echarts skips "-" values
				lineData = append(lineData, opts.LineData{Value: "-"})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: v})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// LineProduct generates an echart line chart of a product's monthly history followed by its forecast
func LineProduct(series *timedataset.MonthlySeries, rows []forecast.Row) *charts.Line {
	n := series.Len()
	t := make([]time.Time, 0, n+len(rows))
	actual := make([]float64, 0, n+len(rows))
	projected := make([]float64, 0, n+len(rows))
	if series != nil {
		t = append(t, series.T...)
		actual = append(actual, series.Y...)
	}
	for i := 0; i < n; i++ {
		projected = append(projected, math.NaN())
	}
	for _, r := range rows {
		t = append(t, r.Month)
		actual = append(actual, math.NaN())
		projected = append(projected, r.Quantity)
	}

	var productID string
	if len(rows) > 0 {
		productID = rows[0].ProductID
	} else if series != nil {
		productID = series.ProductID
	}
	return LineTSeries(
		fmt.Sprintf("Demand Forecast %s", productID),
		[]string{"Actual", "Forecast"},
		t,
		[][]float64{actual, projected},
	)
}

// BarPeriod generates an echart bar chart of every product's forecast for one month
func BarPeriod(title string, rows []forecast.Row) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	labels := make([]string, 0, len(rows))
	barData := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.ProductID)
		barData = append(barData, opts.BarData{Value: r.Quantity})
	}
	bar.SetXAxis(labels).
		AddSeries("Forecast", barData)
	return bar
}

// PlotProduct renders the history and forecast of a product as an html page
func (c *CatalogForecast) PlotProduct(w io.Writer, productID string) error {
	report, exists := c.Product(productID)
	if !exists {
		return fmt.Errorf("product %q, %w", productID, ErrUnknownProduct)
	}

	page := components.NewPage()
	page.AddCharts(
		LineProduct(report.Series(), c.ProductRows(productID)),
	)
	return page.Render(w)
}

// PlotPeriod renders the forecast of every product for a month as an html page
func (c *CatalogForecast) PlotPeriod(w io.Writer, year int, month time.Month) error {
	rows := c.Period(year, month)
	if len(rows) == 0 {
		return fmt.Errorf("period %d-%02d, %w", year, month, ErrEmptyPeriod)
	}

	page := components.NewPage()
	page.AddCharts(
		BarPeriod(fmt.Sprintf("Demand Forecast %d-%02d", year, month), rows),
	)
	return page.Render(w)
}

// Plot renders the catalog total and the per workday demand of every forecast month as an html page
func (c *CatalogForecast) Plot(w io.Writer) error {
	summaries := c.Summaries()
	t := make([]time.Time, 0, len(summaries))
	total := make([]float64, 0, len(summaries))
	perWorkday := make([]float64, 0, len(summaries))
	for _, s := range summaries {
		t = append(t, s.Month)
		total = append(total, s.Total)
		perWorkday = append(perWorkday, s.PerWorkday)
	}

	page := components.NewPage()
	page.AddCharts(
		LineTSeries("Catalog Demand Forecast", []string{"Total"}, t, [][]float64{total}),
		LineTSeries("Demand Per Workday", []string{"Per Workday"}, t, [][]float64{perWorkday}),
	)
	return page.Render(w)
}
