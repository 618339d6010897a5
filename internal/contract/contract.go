// Package contract defines the configuration surface and the store interfaces
// shared across the optiscan packages.
package contract

import (
	"time"

	"github.com/optiscan/optiscan/schema"
)

// HistoryStore persists training runs and prediction history.
type HistoryStore interface {
	// BeginTrainingRun creates a new training run and returns its unique ID.
	BeginTrainingRun(startTime time.Time, algorithm schema.Algorithm, datasetSize, trainSamples, testSamples int) (int64, error)

	// EndTrainingRun updates the training run with completion data.
	EndTrainingRun(runID int64, endTime time.Time, metricsJSON, modelPath string) error

	// RecordPrediction stores a single prediction outcome.
	RecordPrediction(record schema.PredictionRecord) error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// GetAllTrainingRuns retrieves all training runs from the store.
	GetAllTrainingRuns() ([]schema.TrainingRunRecord, error)

	// GetAllPredictions retrieves all prediction records from the store.
	GetAllPredictions() ([]schema.PredictionRecord, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager provides access to the configured persistence stores.
type StoreManager interface {
	// GetHistoryStore returns the history store, or nil when tracking is disabled.
	GetHistoryStore() HistoryStore
}
