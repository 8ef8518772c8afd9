// Package metrics implements the regression metrics used in fit reports.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// MSE computes the mean squared error between the true and predicted values.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.New("MSE: empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewShapeError("MSE", n, yPred.Len())
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE computes the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.New("MAE: empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewShapeError("MAE", n, yPred.Len())
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination. It errors when yTrue
// has no variance.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.New("R2Score: empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewShapeError("R2Score", n, yPred.Len())
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		trueVal := yTrue.AtVec(i)
		predVal := yPred.AtVec(i)
		tss += (trueVal - yMean) * (trueVal - yMean)
		rss += (trueVal - predVal) * (trueVal - predVal)
	}
	if tss == 0 {
		return 0, errors.New("R2Score: no variance in yTrue")
	}
	return 1 - rss/tss, nil
}
