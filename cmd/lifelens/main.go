// Command lifelens serves and inspects the global development dashboard
// backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/lifelens-io/lifelens/config"
	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/ensemble"
	"github.com/lifelens-io/lifelens/figure"
	"github.com/lifelens-io/lifelens/metrics"
	"github.com/lifelens-io/lifelens/model"
	"github.com/lifelens-io/lifelens/pkg/log"
	"github.com/lifelens-io/lifelens/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "lifelens",
		Short:         "Global development dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	root.AddCommand(serveCommand(), trainCommand(), predictCommand(), exportCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config, installs logging and returns the training table
// with rows containing missing values dropped.
func setup(ctx context.Context) (*config.Config, *dataset.Table, *model.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Setup(log.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	table, err := dataset.Fetch(ctx, cfg.Data.URL, cfg.Data.CachePath)
	if err != nil {
		return nil, nil, nil, err
	}
	table = table.DropMissing()

	store := model.NewStore(cfg.Model.Dir)
	store.NewRegressor = func() *ensemble.RandomForestRegressor {
		rf := ensemble.NewRandomForestRegressor()
		rf.NEstimators = cfg.Model.Trees
		rf.MaxDepth = cfg.Model.MaxDepth
		rf.RandomState = cfg.Model.RandomState
		return rf
	}
	return cfg, table, store, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, table, store, err := setup(ctx)
			if err != nil {
				return err
			}
			regressor, ranges, err := store.Obtain(table)
			if err != nil {
				return err
			}
			srv, err := server.NewRestServer(table, regressor, ranges)
			if err != nil {
				return err
			}
			return srv.Serve(ctx, fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		},
	}
}

func trainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Retrain the model, ignoring cached artifacts, and print a fit report",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, store, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			regressor, _, err := store.Retrain(table)
			if err != nil {
				return err
			}

			X, y, err := table.FeatureMatrix()
			if err != nil {
				return err
			}
			preds, err := regressor.Predict(X)
			if err != nil {
				return err
			}
			predVec := mat.VecDenseCopyOf(preds.(*mat.Dense).ColView(0))
			r2, err := metrics.R2Score(y, predVec)
			if err != nil {
				return err
			}
			rmse, err := metrics.RMSE(y, predVec)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trained on %d rows\n", table.Len())
			fmt.Fprintf(out, "in-sample R2:   %.4f\n", r2)
			fmt.Fprintf(out, "in-sample RMSE: %.4f years\n", rmse)

			ranked, err := ensemble.RankedImportances(regressor, dataset.FeatureColumns)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "feature importances (ascending):")
			for _, fi := range ranked {
				fmt.Fprintf(out, "  %-45s %.4f\n", fi.Feature, fi.Score)
			}
			return nil
		},
	}
}

func predictCommand() *cobra.Command {
	var gdp, poverty float64
	var year int

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict life expectancy for one input",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, store, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			regressor, ranges, err := store.Obtain(table)
			if err != nil {
				return err
			}

			inputs := map[string]float64{
				dataset.ColGDPPerCapita: gdp,
				dataset.ColPovertyRate:  poverty,
				dataset.ColYear:         float64(year),
			}
			for _, feature := range dataset.FeatureColumns {
				if err := ranges.Validate(feature, inputs[feature]); err != nil {
					return err
				}
			}

			pred, err := regressor.PredictOne([]float64{gdp, poverty, float64(year)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "predicted life expectancy: %.1f years\n", pred)
			return nil
		},
	}
	cmd.Flags().Float64Var(&gdp, "gdp", 0, "GDP per capita (USD)")
	cmd.Flags().Float64Var(&poverty, "poverty", 0, "poverty rate (%)")
	cmd.Flags().IntVar(&year, "year", 0, "year")
	_ = cmd.MarkFlagRequired("gdp")
	_ = cmd.MarkFlagRequired("poverty")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func exportCommand() *cobra.Command {
	var name, outPath, format, countries string
	var year int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a figure to SVG or PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, store, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			if year == 0 {
				_, year, err = table.YearBounds()
				if err != nil {
					return err
				}
			}

			var spec *figure.Spec
			switch name {
			case "scatter":
				spec, err = figure.GDPLifeExpectancyScatter(table, year)
			case "poverty":
				spec, err = figure.GDPPovertyScatter(table, year)
			case "trends":
				spec, err = figure.CountryTrends(table, splitList(countries))
			case "importance":
				regressor, _, obtainErr := store.Obtain(table)
				if obtainErr != nil {
					return obtainErr
				}
				ranked, rankErr := ensemble.RankedImportances(regressor, dataset.FeatureColumns)
				if rankErr != nil {
					return rankErr
				}
				spec = figure.ImportanceBar(ranked)
			default:
				return fmt.Errorf("unknown figure %q", name)
			}
			if err != nil {
				return err
			}

			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer file.Close()
			return figure.Render(spec, file, format)
		},
	}
	cmd.Flags().StringVar(&name, "figure", "scatter", "figure name: scatter, poverty, trends, importance")
	cmd.Flags().IntVar(&year, "year", 0, "year filter, defaults to the latest")
	cmd.Flags().StringVar(&countries, "countries", "", "comma-separated countries for trends")
	cmd.Flags().StringVar(&outPath, "out", "figure.svg", "output path")
	cmd.Flags().StringVar(&format, "format", "svg", "svg or png")
	return cmd
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
