// Package model persists trained regressors and their feature ranges across
// runs. The store is a content-addressed cache: artifacts are keyed by a
// fingerprint of the training table so a schema or size change misses the
// cache instead of silently loading a stale model.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/ensemble"
	"github.com/lifelens-io/lifelens/pkg/errors"
)

// Store trains the life-expectancy model once and reuses the persisted
// artifact on later runs. Obtain is safe for concurrent use; simultaneous
// first runs train once.
type Store struct {
	dir string
	mu  sync.Mutex

	// NewRegressor builds the regressor to train on a cache miss. Defaults
	// to ensemble.NewRandomForestRegressor.
	NewRegressor func() *ensemble.RandomForestRegressor
}

// NewStore creates a store writing artifacts under dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:          dir,
		NewRegressor: ensemble.NewRandomForestRegressor,
	}
}

// ContentKey fingerprints the training table: feature columns, target column
// and row count. Two tables with the same schema and size share a key.
func ContentKey(table *dataset.Table) string {
	h := sha256.New()
	for _, col := range dataset.FeatureColumns {
		h.Write([]byte(col))
		h.Write([]byte{0})
	}
	h.Write([]byte(dataset.TargetColumn))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(table.Len())))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (s *Store) modelPath(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("model-%s.gob", key))
}

func (s *Store) rangesPath(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("ranges-%s.gob", key))
}

// Obtain returns the trained model and its feature ranges for the table,
// loading the persisted artifacts when they exist and training otherwise.
// Training failures surface before any file is written.
func (s *Store) Obtain(table *dataset.Table) (*ensemble.RandomForestRegressor, dataset.FeatureRanges, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if table.Len() == 0 {
		return nil, nil, errors.NewTrainingError("Store.Obtain", "empty table")
	}

	key := ContentKey(table)
	modelPath, rangesPath := s.modelPath(key), s.rangesPath(key)

	if fileExists(modelPath) && fileExists(rangesPath) {
		var regressor ensemble.RandomForestRegressor
		if err := LoadArtifact(modelPath, &regressor); err != nil {
			return nil, nil, err
		}
		ranges := make(dataset.FeatureRanges)
		if err := LoadArtifact(rangesPath, &ranges); err != nil {
			return nil, nil, err
		}
		slog.Debug("loaded model artifacts", "key", key, "trees", len(regressor.Trees))
		return &regressor, ranges, nil
	}

	return s.train(table, key)
}

// Retrain trains and persists unconditionally, overwriting any cached
// artifact for the table's key.
func (s *Store) Retrain(table *dataset.Table) (*ensemble.RandomForestRegressor, dataset.FeatureRanges, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if table.Len() == 0 {
		return nil, nil, errors.NewTrainingError("Store.Retrain", "empty table")
	}
	return s.train(table, ContentKey(table))
}

func (s *Store) train(table *dataset.Table, key string) (*ensemble.RandomForestRegressor, dataset.FeatureRanges, error) {
	X, y, err := table.FeatureMatrix()
	if err != nil {
		return nil, nil, err
	}
	ranges, err := dataset.ExtractRanges(table, dataset.FeatureColumns)
	if err != nil {
		return nil, nil, err
	}

	regressor := s.NewRegressor()
	if err := regressor.Fit(X, y); err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, nil, errors.NewArtifactError("Store.train", s.dir, err)
	}
	if err := SaveArtifact(s.modelPath(key), regressor); err != nil {
		return nil, nil, err
	}
	if err := SaveArtifact(s.rangesPath(key), ranges); err != nil {
		return nil, nil, err
	}
	slog.Info("trained and persisted model",
		"key", key, "rows", table.Len(), "trees", regressor.NEstimators)
	return regressor, ranges, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
