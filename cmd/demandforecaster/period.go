package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

func periodCmd(root *rootFlags) *cobra.Command {
	flags := &forecastFlags{}
	var (
		year  int
		month int
		top   int
	)
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the forecast demand distribution of one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("got %d, %w", month, ErrInvalidMonth)
			}

			res, err := flags.run(cmd, root)
			if err != nil {
				return err
			}

			if year == 0 {
				years := res.Years()
				if len(years) == 0 {
					return fmt.Errorf("no forecast rows to select a year from")
				}
				year = years[0]
			}

			summary := res.Summary(year, time.Month(month))
			rows := res.Period(year, time.Month(month))
			if top > 0 {
				rows = res.Top(year, time.Month(month), top)
			}

			return withOutput(cmd, flags.output, func(w io.Writer) error {
				return writePeriod(w, flags.format, summary, rows)
			}, func() error {
				if flags.plot == "" || len(rows) == 0 {
					return nil
				}
				file, err := os.Create(flags.plot)
				if err != nil {
					return fmt.Errorf("failed to create plot file %s: %w", flags.plot, err)
				}
				defer file.Close()
				return res.PlotPeriod(file, year, time.Month(month))
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "forecast year, defaults to the first forecast year")
	cmd.Flags().IntVar(&month, "month", int(time.January), "forecast month")
	cmd.Flags().IntVar(&top, "top", 0, "only show the n products with the highest demand")
	return cmd
}
