package schema

import "time"

// HistoryStatus represents the status of the history store.
type HistoryStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int64            `json:"total_runs"`
	LastRunID        int64            `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalPredictions int64            `json:"total_predictions"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// TrainingRunRecord represents a row from the optiscan_training_runs table.
type TrainingRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Algorithm     string
	DatasetSize   int32
	TrainSamples  int32
	TestSamples   int32
	MetricsJSON   *string
	ModelPath     *string
}

// PredictionRecord represents a row from the optiscan_predictions table.
type PredictionRecord struct {
	PredictionID    int64
	PredictedAt     time.Time
	Source          string
	Features        FeatureVector
	Label           Label
	ConfidenceScore float64
}
