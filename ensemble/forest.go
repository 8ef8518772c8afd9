// Package ensemble implements a random-forest regressor with a
// scikit-learn-compatible API on gonum matrices. The forest is deterministic
// for a fixed random seed and serializes with encoding/gob.
package ensemble

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Defaults match the reference configuration: 100 trees, seed 42.
const (
	DefaultNEstimators = 100
	DefaultMaxDepth    = 16
	DefaultRandomState = 42
)

// RandomForestRegressor averages the predictions of bootstrap-trained
// regression trees. All fields are exported for gob encoding; mutate them
// only before Fit.
type RandomForestRegressor struct {
	NEstimators    int
	MaxDepth       int
	MinSamplesLeaf int
	RandomState    int64

	Trees       []RegressionTree
	NumFeatures int
	Importances []float64 // normalized split-gain importance, sums to 1
	Fitted      bool
}

// NewRandomForestRegressor creates a regressor with the default
// hyperparameters.
func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{
		NEstimators:    DefaultNEstimators,
		MaxDepth:       DefaultMaxDepth,
		MinSamplesLeaf: 1,
		RandomState:    DefaultRandomState,
	}
}

// Fit trains the forest on X (samples × features) and the target column y.
// Calling Fit again retrains from scratch with the same seed.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewTrainingError("RandomForestRegressor.Fit", "empty training matrix")
	}
	if yCols != 1 {
		return errors.NewShapeError("RandomForestRegressor.Fit", 1, yCols)
	}
	if yRows != rows {
		return errors.NewShapeError("RandomForestRegressor.Fit", rows, yRows)
	}

	x := make([][]float64, rows)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		x[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			x[i][j] = X.At(i, j)
		}
		targets[i] = y.At(i, 0)
	}

	// Each tree derives its own seed from RandomState, so training is
	// reproducible regardless of how the trees are scheduled across CPUs.
	trees := make([]RegressionTree, rf.NEstimators)
	treeGains := make([][]float64, rf.NEstimators)
	runParallel(rf.NEstimators, func(start, end int) {
		for t := start; t < end; t++ {
			rng := rand.New(rand.NewSource(rf.RandomState + int64(t)))
			indices := make([]int, rows)
			for i := range indices {
				indices[i] = rng.Intn(rows)
			}
			builder := &treeBuilder{
				x:              x,
				y:              targets,
				maxDepth:       rf.MaxDepth,
				minSamplesLeaf: rf.MinSamplesLeaf,
				gains:          make([]float64, cols),
			}
			trees[t] = RegressionTree{Nodes: builder.build(indices, 0)}
			treeGains[t] = builder.gains
		}
	})

	gains := make([]float64, cols)
	for _, g := range treeGains {
		for j, v := range g {
			gains[j] += v
		}
	}

	rf.Trees = trees
	rf.NumFeatures = cols
	rf.Importances = normalize(gains)
	rf.Fitted = true
	return nil
}

// Predict returns a samples × 1 matrix of predictions.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.Fitted {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	rows, cols := X.Dims()
	if cols != rf.NumFeatures {
		return nil, errors.NewShapeError("RandomForestRegressor.Predict", rf.NumFeatures, cols)
	}
	out := mat.NewDense(rows, 1, nil)
	x := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x[j] = X.At(i, j)
		}
		out.Set(i, 0, rf.predictRow(x))
	}
	return out, nil
}

// PredictOne predicts a single input vector. No bounds clamping is applied:
// out-of-range inputs extrapolate, they do not error.
func (rf *RandomForestRegressor) PredictOne(x []float64) (float64, error) {
	if !rf.Fitted {
		return 0, errors.NewNotFittedError("RandomForestRegressor", "PredictOne")
	}
	if len(x) != rf.NumFeatures {
		return 0, errors.NewShapeError("RandomForestRegressor.PredictOne", rf.NumFeatures, len(x))
	}
	return rf.predictRow(x), nil
}

func (rf *RandomForestRegressor) predictRow(x []float64) float64 {
	var sum float64
	for i := range rf.Trees {
		sum += rf.Trees[i].predict(x)
	}
	return sum / float64(len(rf.Trees))
}

// FeatureImportances returns the per-feature importance scores. Scores are
// non-negative and sum to 1 when any split occurred during training.
func (rf *RandomForestRegressor) FeatureImportances() ([]float64, error) {
	if !rf.Fitted {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "FeatureImportances")
	}
	out := make([]float64, len(rf.Importances))
	copy(out, rf.Importances)
	return out, nil
}

func normalize(gains []float64) []float64 {
	out := make([]float64, len(gains))
	var total float64
	for _, g := range gains {
		total += g
	}
	if total == 0 {
		return out
	}
	for i, g := range gains {
		out[i] = g / total
	}
	return out
}
