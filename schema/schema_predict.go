package schema

import "time"

// PredictionResult is the full advisory output for a single source unit.
// Field names follow the wire contract of the prediction API.
type PredictionResult struct {
	Timestamp          string             `json:"timestamp"`
	IsOptimized        bool               `json:"is_optimized"`
	OptimizationStatus string             `json:"optimization_status"`
	Confidence         string             `json:"confidence"`
	ConfidenceScore    float64            `json:"confidence_score"`
	InputMetrics       FeatureVector      `json:"input_metrics"`
	FeatureImportance  map[string]float64 `json:"feature_importance"`
	Recommendations    []string           `json:"recommendations"`
}

// FilePrediction pairs a file path with its prediction outcome. Score is the
// positive-class probability and drives ranking (least optimized first).
type FilePrediction struct {
	Path   string           `json:"path"`
	Score  float64          `json:"score"`
	Result PredictionResult `json:"result"`
}

// FileMetrics pairs a file path with its extracted features, for
// metrics-only analysis runs that skip the classifier.
type FileMetrics struct {
	Path     string        `json:"path"`
	Features FeatureVector `json:"features"`
}

// EvaluationMetrics holds classification quality metrics from a held-out test
// split. AUCROC is nil when the metric could not be computed (e.g. the test
// split contains a single class or the algorithm has no probability output).
type EvaluationMetrics struct {
	Accuracy  float64  `json:"accuracy"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	F1Score   float64  `json:"f1_score"`
	AUCROC    *float64 `json:"auc_roc,omitempty"`
}

// DatasetInfo describes the synthetic dataset used for a training run.
type DatasetInfo struct {
	TotalSamples       int `json:"total_samples"`
	TrainingSamples    int `json:"training_samples"`
	TestSamples        int `json:"test_samples"`
	OptimizedSamples   int `json:"optimized_samples"`
	UnoptimizedSamples int `json:"unoptimized_samples"`
}

// TrainingReport is the JSON sidecar written next to the model bundle after
// every successful training run.
type TrainingReport struct {
	Timestamp         time.Time          `json:"timestamp"`
	Algorithm         Algorithm          `json:"algorithm"`
	Dataset           DatasetInfo        `json:"dataset"`
	Metrics           EvaluationMetrics  `json:"metrics"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
	FeatureNames      []string           `json:"feature_names"`
}

// ModelInfo summarizes the currently loaded model for diagnostics.
type ModelInfo struct {
	ModelLoaded       bool               `json:"model_loaded"`
	Algorithm         Algorithm          `json:"algorithm,omitempty"`
	TrainingTimestamp string             `json:"training_timestamp,omitempty"`
	Metrics           *EvaluationMetrics `json:"metrics,omitempty"`
	Dataset           *DatasetInfo       `json:"dataset,omitempty"`
	FeatureNames      []string           `json:"feature_names,omitempty"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}
