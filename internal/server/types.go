package server

import (
	"github.com/optiscan/optiscan/schema"
)

// PredictRequest carries one feature vector on the wire. All nine fields are
// pointers with required bindings so a missing field fails validation instead
// of silently zeroing.
type PredictRequest struct {
	LinesOfCode          *float64 `json:"lines_of_code" binding:"required"`
	CyclomaticComplexity *float64 `json:"cyclomatic_complexity" binding:"required"`
	DependencyCount      *float64 `json:"dependency_count" binding:"required"`
	FunctionCount        *float64 `json:"function_count" binding:"required"`
	ClassCount           *float64 `json:"class_count" binding:"required"`
	CommentLines         *float64 `json:"comment_lines" binding:"required"`
	ComplexityPerLOC     *float64 `json:"complexity_per_loc" binding:"required"`
	CommentRatio         *float64 `json:"comment_ratio" binding:"required"`
	FunctionsPerClass    *float64 `json:"functions_per_class" binding:"required"`
}

// Vector converts the request into a feature vector. Derived ratios are
// recomputed by the engine before scoring, so submitted ratios only need to
// be present, not consistent.
func (r *PredictRequest) Vector() schema.FeatureVector {
	return schema.FeatureVector{
		LinesOfCode:          *r.LinesOfCode,
		CyclomaticComplexity: *r.CyclomaticComplexity,
		DependencyCount:      *r.DependencyCount,
		FunctionCount:        *r.FunctionCount,
		ClassCount:           *r.ClassCount,
		CommentLines:         *r.CommentLines,
		ComplexityPerLOC:     *r.ComplexityPerLOC,
		CommentRatio:         *r.CommentRatio,
		FunctionsPerClass:    *r.FunctionsPerClass,
	}
}

// BatchPredictRequest scores many feature vectors in one call.
type BatchPredictRequest struct {
	MetricsList []PredictRequest `json:"metrics_list" binding:"required,min=1,dive"`
}

// BatchPredictResponse returns one result per submitted vector, in order.
type BatchPredictResponse struct {
	Results []schema.PredictionResult `json:"results"`
	Count   int                       `json:"count"`
}

// RetrainRequest optionally overrides the training configuration. Omitted
// fields fall back to the server's startup configuration.
type RetrainRequest struct {
	Algorithm   string `json:"algorithm"`
	DatasetSize *int   `json:"dataset_size"`
}

// RetrainResponse summarizes a completed synchronous training run.
type RetrainResponse struct {
	Message     string                   `json:"message"`
	Algorithm   schema.Algorithm         `json:"algorithm"`
	Metrics     schema.EvaluationMetrics `json:"metrics"`
	DatasetInfo schema.DatasetInfo       `json:"dataset_info"`
}

// HealthResponse reports service liveness and model readiness.
type HealthResponse struct {
	Status         string           `json:"status"`
	Service        string           `json:"service"`
	ModelLoaded    bool             `json:"model_loaded"`
	ModelAlgorithm schema.Algorithm `json:"model_algorithm,omitempty"`
	Timestamp      string           `json:"timestamp"`
}
