package model

import (
	"encoding/gob"
	"os"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// SaveArtifact gob-encodes v to path. Failures are ArtifactErrors so callers
// can distinguish persistence problems from training problems.
func SaveArtifact(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewArtifactError("SaveArtifact", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(v); err != nil {
		return errors.NewArtifactError("SaveArtifact", path, err)
	}
	return nil
}

// LoadArtifact gob-decodes path into v, which must be a pointer.
func LoadArtifact(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.NewArtifactError("LoadArtifact", path, err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(v); err != nil {
		return errors.NewArtifactError("LoadArtifact", path, err)
	}
	return nil
}
