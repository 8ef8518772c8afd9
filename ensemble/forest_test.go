package ensemble

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// syntheticData builds a table-shaped training set: feature 0 dominates the
// target, feature 1 contributes weakly, feature 2 is noise.
func syntheticData(rows int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(rows, 3, nil)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		f0 := float64(i) / float64(rows)
		f1 := float64(i%10) / 10.0
		f2 := float64((i*7)%13) / 13.0
		X.Set(i, 0, f0)
		X.Set(i, 1, f1)
		X.Set(i, 2, f2)
		y.SetVec(i, 50+20*f0+2*f1+0.2*f2)
	}
	return X, y
}

func smallForest() *RandomForestRegressor {
	rf := NewRandomForestRegressor()
	rf.NEstimators = 20
	rf.MaxDepth = 6
	return rf
}

func TestFitPredictDeterministic(t *testing.T) {
	X, y := syntheticData(120)

	first := smallForest()
	require.NoError(t, first.Fit(X, y))
	second := smallForest()
	require.NoError(t, second.Fit(X, y))

	input := []float64{0.5, 0.3, 0.1}
	p1, err := first.PredictOne(input)
	require.NoError(t, err)
	p2, err := second.PredictOne(input)
	require.NoError(t, err)
	assert.Equal(t, p1, p2, "same seed and data must give identical predictions")

	// Repeated calls on one model are pure.
	p3, err := first.PredictOne(input)
	require.NoError(t, err)
	assert.Equal(t, p1, p3)
}

func TestPredictionsWithinTargetBounds(t *testing.T) {
	X, y := syntheticData(120)
	rf := smallForest()
	require.NoError(t, rf.Fit(X, y))

	// A forest prediction is an average of observed targets, so even
	// extrapolated inputs stay within the observed target bounds.
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i := 0; i < y.Len(); i++ {
		yMin = math.Min(yMin, y.AtVec(i))
		yMax = math.Max(yMax, y.AtVec(i))
	}
	for _, input := range [][]float64{{0.5, 0.5, 0.5}, {2.0, -1.0, 9.0}} {
		pred, err := rf.PredictOne(input)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pred, yMin)
		assert.LessOrEqual(t, pred, yMax)
	}
}

func TestPredictMatrix(t *testing.T) {
	X, y := syntheticData(100)
	rf := smallForest()
	require.NoError(t, rf.Fit(X, y))

	preds, err := rf.Predict(X)
	require.NoError(t, err)
	rows, cols := preds.Dims()
	assert.Equal(t, 100, rows)
	assert.Equal(t, 1, cols)

	// In-sample fit on a near-deterministic target should be close.
	var sse, tot float64
	meanY := mat.Sum(y) / float64(y.Len())
	for i := 0; i < rows; i++ {
		d := preds.At(i, 0) - y.AtVec(i)
		sse += d * d
		m := y.AtVec(i) - meanY
		tot += m * m
	}
	assert.Less(t, sse/tot, 0.1, "R2 should exceed 0.9 in-sample")
}

func TestFeatureImportancesNormalized(t *testing.T) {
	X, y := syntheticData(120)
	rf := smallForest()
	require.NoError(t, rf.Fit(X, y))

	imps, err := rf.FeatureImportances()
	require.NoError(t, err)
	require.Len(t, imps, 3)

	var sum float64
	for _, imp := range imps {
		assert.GreaterOrEqual(t, imp, 0.0)
		sum += imp
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Greater(t, imps[0], imps[1], "dominant feature outranks weak feature")
	assert.Greater(t, imps[0], imps[2], "dominant feature outranks noise")
}

func TestNotFittedErrors(t *testing.T) {
	rf := NewRandomForestRegressor()

	_, err := rf.PredictOne([]float64{1, 2, 3})
	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr))

	_, err = rf.FeatureImportances()
	assert.True(t, errors.As(err, &nfErr))
}

func TestFitRejectsBadShapes(t *testing.T) {
	rf := smallForest()

	err := rf.Fit(mat.NewDense(1, 1, []float64{1}), mat.NewVecDense(2, []float64{1, 2}))
	var shapeErr *errors.ShapeError
	assert.True(t, errors.As(err, &shapeErr))

	var trainErr *errors.TrainingError
	err = rf.Fit(&mat.Dense{}, &mat.VecDense{})
	assert.True(t, errors.As(err, &trainErr))
}

func TestPredictOneWrongWidth(t *testing.T) {
	X, y := syntheticData(50)
	rf := smallForest()
	require.NoError(t, rf.Fit(X, y))

	_, err := rf.PredictOne([]float64{1, 2})
	var shapeErr *errors.ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 3, shapeErr.Expected)
}

func TestGobRoundTrip(t *testing.T) {
	X, y := syntheticData(80)
	rf := smallForest()
	require.NoError(t, rf.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(rf))

	var decoded RandomForestRegressor
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))

	input := []float64{0.4, 0.2, 0.6}
	want, err := rf.PredictOne(input)
	require.NoError(t, err)
	got, err := decoded.PredictOne(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, rf.Importances, decoded.Importances)
}
