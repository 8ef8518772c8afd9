// Package lifelens is the backend for a global development dashboard: it
// ingests the Our World in Data life-expectancy panel, trains a random-forest
// regressor on GDP per capita, poverty rate and year, and serves predictions,
// figures and data exploration over a REST API.
//
// # Quick Start
//
// Train a model and predict for one input:
//
//	table, err := dataset.Fetch(ctx, dataset.DefaultDataURL, "data.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table = table.DropMissing()
//
//	store := model.NewStore("models")
//	regressor, ranges, err := store.Obtain(table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	life, err := regressor.PredictOne([]float64{64_000, 0.7, 2020})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("predicted life expectancy: %.1f years\n", life)
//
// The ranges returned by Obtain describe the observed bounds of each training
// feature; validate user input against them before predicting.
//
// # Packages
//
//   - dataset: CSV ingest, filtering, summaries and feature ranges
//   - ensemble: the random-forest regressor and feature importances
//   - model: content-addressed artifact cache around training
//   - metrics: regression metrics (MSE, RMSE, MAE, R²)
//   - figure: figure specs for the dashboard plus gonum/plot rendering
//   - server: the REST API
//   - config: file/env configuration
//
// The lifelens command under cmd/lifelens wires these together: `lifelens
// serve` starts the API, `lifelens train` forces a retrain and prints a fit
// report, `lifelens predict` and `lifelens export` run one-shot predictions
// and figure renders.
package lifelens
