package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/optiscan/optiscan/schema"
)

// ErrModelNotReady signals that inference or evaluation was attempted
// before any model was trained or loaded.
var ErrModelNotReady = errors.New("model not ready: train or load a model first")

// ErrMetricUnavailable marks metrics that cannot be computed for the given
// test data. Callers should log and omit the metric, not fail.
var ErrMetricUnavailable = errors.New("metric unavailable")

// UnsupportedAlgorithmError reports a train request for an algorithm
// identifier outside the supported set.
type UnsupportedAlgorithmError struct {
	Algorithm string
}

func (e *UnsupportedAlgorithmError) Error() string {
	names := make([]string, len(schema.AllAlgorithms))
	for i, a := range schema.AllAlgorithms {
		names[i] = string(a)
	}
	return fmt.Sprintf("unsupported algorithm %q: valid choices are %s", e.Algorithm, strings.Join(names, ", "))
}

// PersistenceError reports a failed save or load of the model bundle.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("model %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
