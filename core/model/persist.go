package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/optiscan/optiscan/schema"
)

// Save serializes the bundle with msgpack and writes it atomically via a
// temp file plus rename, so a crash never leaves a truncated bundle at the
// well-known path.
func Save(b *Bundle, path string) error {
	if b == nil {
		return ErrModelNotReady
	}
	data, err := msgpack.Marshal(b)
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".optiscan-model-*")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Load reads a bundle back from disk. A missing or corrupt file fails this
// call only; the caller decides whether to continue without a model.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	var b Bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	if err := validateBundle(&b); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return &b, nil
}

// validateBundle rejects bundles that decoded structurally but cannot serve
// predictions.
func validateBundle(b *Bundle) error {
	if _, ok := schema.ValidAlgorithms[b.Algorithm]; !ok {
		return fmt.Errorf("bundle names unknown algorithm %q", b.Algorithm)
	}
	if len(b.FeatureNames) != schema.NumFeatures {
		return fmt.Errorf("bundle has %d feature names, want %d", len(b.FeatureNames), schema.NumFeatures)
	}
	if b.Forest == nil && b.Boosting == nil && b.SVM == nil && b.Logistic == nil {
		return fmt.Errorf("bundle carries no fitted estimator")
	}
	return nil
}

// SaveReport writes the training report sidecar as indented JSON so it
// stays readable without tooling.
func SaveReport(report *schema.TrainingReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save-report", Path: path, Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &PersistenceError{Op: "save-report", Path: path, Err: err}
	}
	return nil
}

// LoadReport reads the training report sidecar. Callers treat a missing
// sidecar as "no recorded training run", not an error condition.
func LoadReport(path string) (*schema.TrainingReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "load-report", Path: path, Err: err}
	}
	var report schema.TrainingReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &PersistenceError{Op: "load-report", Path: path, Err: err}
	}
	return &report, nil
}
