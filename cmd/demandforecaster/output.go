package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	demandforecaster "github.com/aouyang1/go-demandforecaster"
	"github.com/aouyang1/go-demandforecaster/forecast"
	"github.com/goccy/go-json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"

	monthLayout = "2006-01"
)

var ErrUnknownFormat = errors.New("unknown output format")

func writeForecast(w io.Writer, format string, res *demandforecaster.CatalogForecast) error {
	switch format {
	case formatTable:
		return writeRowsTable(w, res.Rows)
	case formatJSON:
		return writeJSON(w, res)
	case formatCSV:
		return writeRowsCSV(w, res.Rows)
	default:
		return fmt.Errorf("%q, %w", format, ErrUnknownFormat)
	}
}

func writePeriod(w io.Writer, format string, summary demandforecaster.PeriodSummary, rows []forecast.Row) error {
	switch format {
	case formatTable:
		tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
		lines := [][2]string{
			{"Month:", summary.Month.Format(monthLayout)},
			{"Total:", fmt.Sprintf("%.2f", summary.Total)},
			{"Products:", strconv.Itoa(summary.Products)},
			{"Workdays:", strconv.Itoa(summary.Workdays)},
			{"Per Workday:", fmt.Sprintf("%.2f", summary.PerWorkday)},
		}
		for _, h := range summary.Holidays {
			lines = append(lines, [2]string{"Holiday:", h.Date.Format("2006-01-02") + " " + h.Name})
		}
		for _, line := range lines {
			if _, err := fmt.Fprintf(tbl, "%s\t%s\t\n", line[0], line[1]); err != nil {
				return err
			}
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return writeRowsTable(w, rows)
	case formatJSON:
		return writeJSON(w, struct {
			Summary demandforecaster.PeriodSummary `json:"summary"`
			Rows    []forecast.Row                 `json:"rows"`
		}{summary, rows})
	case formatCSV:
		return writeRowsCSV(w, rows)
	default:
		return fmt.Errorf("%q, %w", format, ErrUnknownFormat)
	}
}

func writeRowsTable(w io.Writer, rows []forecast.Row) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "Product\tMonth\tForecast\tTier\tFallback\t\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tbl, "%s\t%s\t%.2f\t%s\t%t\t\n",
			r.ProductID, r.Month.Format(monthLayout), r.Quantity, r.Tier, r.Fallback); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func writeRowsCSV(w io.Writer, rows []forecast.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_id", "month_start", "forecast_quantity", "tier", "fallback"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ProductID,
			r.Month.Format("2006-01-02"),
			strconv.FormatFloat(r.Quantity, 'f', -1, 64),
			r.Tier.String(),
			strconv.FormatBool(r.Fallback),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeModels(w io.Writer, res *demandforecaster.CatalogForecast) error {
	for _, p := range res.Products {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if p.Model == nil {
			if _, err := fmt.Fprintf(w, "Forecast: %s\n  Error: %s\n", p.ProductID, p.Error); err != nil {
				return err
			}
			continue
		}
		if err := p.Model.TablePrint(w, "", "  "); err != nil {
			return err
		}
		for _, month := range p.Outliers {
			if _, err := fmt.Fprintf(w, "  Outlier Month: %s\n", month.Format(monthLayout)); err != nil {
				return err
			}
		}
	}
	return nil
}
