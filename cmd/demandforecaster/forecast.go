package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	demandforecaster "github.com/aouyang1/go-demandforecaster"
	"github.com/aouyang1/go-demandforecaster/ingest"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var ErrNoInput = errors.New("no input file provided")

type forecastFlags struct {
	input           string
	output          string
	format          string
	plot            string
	horizon         int
	parallelization int
	region          string
	separator       string
	models          bool
	profile         bool
}

func (f *forecastFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "sales export to forecast")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the forecast to a file instead of stdout")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatTable, "output format: table, json or csv")
	cmd.Flags().StringVar(&f.plot, "plot", "", "render an html chart page to this path")
	cmd.Flags().IntVar(&f.horizon, "horizon", demandforecaster.DefaultHorizon, "number of months to forecast")
	cmd.Flags().IntVar(&f.parallelization, "parallelization", 0, "number of products forecast at once, 0 uses every cpu")
	cmd.Flags().StringVar(&f.region, "region", demandforecaster.DefaultHolidayRegion, "holiday region used to count workdays: nl, us or empty")
	cmd.Flags().StringVar(&f.separator, "separator", ingest.DefaultSeparator, "field separator of the sales export")
	cmd.Flags().BoolVar(&f.models, "models", false, "print the fitted model of every product")
	cmd.Flags().BoolVar(&f.profile, "profile", false, "write a cpu profile to the working directory")
}

// apply overrides the configuration with every flag set on the command line
func (f *forecastFlags) apply(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("horizon") {
		cfg.Forecast.Horizon = f.horizon
	}
	if cmd.Flags().Changed("parallelization") {
		cfg.Forecast.Parallelization = f.parallelization
	}
	if cmd.Flags().Changed("region") {
		cfg.Forecast.HolidayRegion = f.region
	}
	if cmd.Flags().Changed("separator") {
		cfg.Ingest.Separator = f.separator
	}
}

// run loads the sales export and forecasts the catalog
func (f *forecastFlags) run(cmd *cobra.Command, root *rootFlags) (*demandforecaster.CatalogForecast, error) {
	if f.input == "" {
		return nil, ErrNoInput
	}
	cfg, err := loadConfig(root.config)
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)

	obs, stats, err := ingest.LoadFile(f.input, cfg.Ingest)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded sales export", "file", f.input, "rows", stats.Rows, "observations", stats.Loaded, "skipped", stats.Skipped())

	// a single run never benefits from memoization
	cfg.Forecast.CacheSize = 0
	forecaster, err := demandforecaster.New(cfg.Forecast)
	if err != nil {
		return nil, err
	}
	res, err := forecaster.Forecast(cmd.Context(), obs)
	if err != nil {
		return nil, err
	}

	for _, id := range res.Fallbacks() {
		slog.Warn("product forecast with flat average after model failure", "product_id", id)
	}
	for _, id := range res.Failures() {
		p, _ := res.Product(id)
		slog.Warn("product not forecast", "product_id", id, "error", p.Error)
	}
	return res, nil
}

func forecastCmd(root *rootFlags) *cobra.Command {
	flags := &forecastFlags{}
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the monthly demand of every product in a sales export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.profile {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
			}

			res, err := flags.run(cmd, root)
			if err != nil {
				return err
			}

			return withOutput(cmd, flags.output, func(w io.Writer) error {
				if err := writeForecast(w, flags.format, res); err != nil {
					return err
				}
				if flags.models {
					return writeModels(w, res)
				}
				return nil
			}, func() error {
				if flags.plot == "" {
					return nil
				}
				file, err := os.Create(flags.plot)
				if err != nil {
					return fmt.Errorf("failed to create plot file %s: %w", flags.plot, err)
				}
				defer file.Close()
				return res.Plot(file)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// withOutput runs write against the output file or the command's stdout, then every follow up
func withOutput(cmd *cobra.Command, output string, write func(io.Writer) error, then ...func() error) error {
	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", output, err)
		}
		defer file.Close()
		w = file
	}
	if err := write(w); err != nil {
		return err
	}
	for _, fn := range then {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
