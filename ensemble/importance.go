package ensemble

import (
	"sort"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// FeatureImportance pairs a feature name with its importance score.
type FeatureImportance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// RankedImportances returns the model's feature importances labelled with
// featureNames and sorted ascending by score, matching the importance bar
// chart order. The name count must equal the model's feature count.
func RankedImportances(model *RandomForestRegressor, featureNames []string) ([]FeatureImportance, error) {
	scores, err := model.FeatureImportances()
	if err != nil {
		return nil, err
	}
	if len(featureNames) != len(scores) {
		return nil, errors.NewShapeError("RankedImportances", len(scores), len(featureNames))
	}

	ranked := make([]FeatureImportance, len(scores))
	for i, name := range featureNames {
		ranked[i] = FeatureImportance{Feature: name, Score: scores[i]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score < ranked[b].Score
	})
	return ranked, nil
}
