package dataset

import (
	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Range is the observed (min, max) of one feature at model-build time.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FeatureRanges maps a feature column to its observed range. It is computed
// once when the model is trained and only recomputed on retrain; the UI uses
// it to bound input widgets and the server to validate prediction inputs.
type FeatureRanges map[string]Range

// ExtractRanges computes the per-feature (min, max) over all rows of the
// table. It is undefined for an empty table and returns a TrainingError.
func ExtractRanges(t *Table, features []string) (FeatureRanges, error) {
	if t.Len() == 0 {
		return nil, errors.NewTrainingError("ExtractRanges", "empty table")
	}
	ranges := make(FeatureRanges, len(features))
	for _, feature := range features {
		first, ok := featureValue(t.rows[0], feature)
		if !ok {
			return nil, errors.NewMissingColumnError("ExtractRanges", feature)
		}
		r := Range{Min: first, Max: first}
		for _, row := range t.rows[1:] {
			v, _ := featureValue(row, feature)
			if v < r.Min {
				r.Min = v
			}
			if v > r.Max {
				r.Max = v
			}
		}
		ranges[feature] = r
	}
	return ranges, nil
}

// Validate returns a ValidationError when v lies outside the observed range
// of the feature. Unknown features are rejected as well.
func (fr FeatureRanges) Validate(feature string, v float64) error {
	r, ok := fr[feature]
	if !ok {
		return errors.NewValidationError(feature, "unknown feature", v)
	}
	if v < r.Min || v > r.Max {
		return errors.NewValidationError(feature, "outside observed range", v)
	}
	return nil
}
