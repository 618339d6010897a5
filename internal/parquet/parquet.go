// Package parquet provides data structures and functions for exporting
// training history and synthetic datasets to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/optiscan/optiscan/schema"
)

// TrainingRun represents a single training run with metadata.
// This struct maps to the optiscan_training_runs database table.
type TrainingRun struct {
	// RunID is the unique identifier for this training run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when training began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when training completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Algorithm is the classifier algorithm identifier
	Algorithm string `parquet:"algorithm,snappy"`

	// DatasetSize is the total number of synthetic samples generated
	DatasetSize int32 `parquet:"dataset_size,snappy"`

	// TrainSamples is the size of the training partition
	TrainSamples int32 `parquet:"train_samples,snappy"`

	// TestSamples is the size of the held-out partition
	TestSamples int32 `parquet:"test_samples,snappy"`

	// MetricsJSON contains the JSON-encoded evaluation metrics (nullable)
	MetricsJSON *string `parquet:"metrics_json,optional,snappy"`

	// ModelPath is where the trained bundle was persisted (nullable)
	ModelPath *string `parquet:"model_path,optional,snappy"`
}

// Prediction represents one recorded inference with its flattened feature
// block. This struct maps to the optiscan_predictions database table.
type Prediction struct {
	PredictionID    int64     `parquet:"prediction_id,snappy"`
	PredictedAt     time.Time `parquet:"predicted_at,snappy"`
	Source          string    `parquet:"source,snappy"`
	Label           int32     `parquet:"label,snappy"`
	ConfidenceScore float64   `parquet:"confidence_score,snappy"`

	LinesOfCode          float64 `parquet:"lines_of_code,snappy"`
	CyclomaticComplexity float64 `parquet:"cyclomatic_complexity,snappy"`
	DependencyCount      float64 `parquet:"dependency_count,snappy"`
	FunctionCount        float64 `parquet:"function_count,snappy"`
	ClassCount           float64 `parquet:"class_count,snappy"`
	CommentLines         float64 `parquet:"comment_lines,snappy"`
	ComplexityPerLOC     float64 `parquet:"complexity_per_loc,snappy"`
	CommentRatio         float64 `parquet:"comment_ratio,snappy"`
	FunctionsPerClass    float64 `parquet:"functions_per_class,snappy"`
}

// DatasetSample represents one labeled synthetic sample with its partition.
type DatasetSample struct {
	Partition string `parquet:"partition,snappy"` // "train" or "test"
	Label     int32  `parquet:"label,snappy"`

	LinesOfCode          float64 `parquet:"lines_of_code,snappy"`
	CyclomaticComplexity float64 `parquet:"cyclomatic_complexity,snappy"`
	DependencyCount      float64 `parquet:"dependency_count,snappy"`
	FunctionCount        float64 `parquet:"function_count,snappy"`
	ClassCount           float64 `parquet:"class_count,snappy"`
	CommentLines         float64 `parquet:"comment_lines,snappy"`
	ComplexityPerLOC     float64 `parquet:"complexity_per_loc,snappy"`
	CommentRatio         float64 `parquet:"comment_ratio,snappy"`
	FunctionsPerClass    float64 `parquet:"functions_per_class,snappy"`
}

// WriteTrainingRunsParquet writes a slice of TrainingRun structs to a Parquet file.
func WriteTrainingRunsParquet(data []TrainingRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WritePredictionsParquet writes a slice of Prediction structs to a Parquet file.
func WritePredictionsParquet(data []Prediction, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteDataset writes a generated train/test split to a Parquet file, with
// the partition recorded per row.
func WriteDataset(outputPath string, data schema.SplitResult) error {
	rows := make([]DatasetSample, 0, len(data.Train)+len(data.Test))
	for _, s := range data.Train {
		rows = append(rows, datasetRow("train", s))
	}
	for _, s := range data.Test {
		rows = append(rows, datasetRow("test", s))
	}
	return writeRows(rows, outputPath)
}

// writeRows creates the output file and streams rows through a generic
// writer whose schema is inferred from the struct tags.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return writer.Close()
}

func datasetRow(partition string, s schema.LabeledSample) DatasetSample {
	fv := s.Features
	return DatasetSample{
		Partition: partition,
		Label:     int32(s.Label),

		LinesOfCode:          fv.LinesOfCode,
		CyclomaticComplexity: fv.CyclomaticComplexity,
		DependencyCount:      fv.DependencyCount,
		FunctionCount:        fv.FunctionCount,
		ClassCount:           fv.ClassCount,
		CommentLines:         fv.CommentLines,
		ComplexityPerLOC:     fv.ComplexityPerLOC,
		CommentRatio:         fv.CommentRatio,
		FunctionsPerClass:    fv.FunctionsPerClass,
	}
}

// ConvertTrainingRunRecords converts schema.TrainingRunRecord to TrainingRun for Parquet export.
func ConvertTrainingRunRecords(records []schema.TrainingRunRecord) []TrainingRun {
	result := make([]TrainingRun, len(records))
	for i, record := range records {
		result[i] = TrainingRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Algorithm:     record.Algorithm,
			DatasetSize:   record.DatasetSize,
			TrainSamples:  record.TrainSamples,
			TestSamples:   record.TestSamples,
			MetricsJSON:   record.MetricsJSON,
			ModelPath:     record.ModelPath,
		}
	}
	return result
}

// ConvertPredictionRecords converts schema.PredictionRecord to Prediction for Parquet export.
func ConvertPredictionRecords(records []schema.PredictionRecord) []Prediction {
	result := make([]Prediction, len(records))
	for i, record := range records {
		fv := record.Features
		result[i] = Prediction{
			PredictionID:    record.PredictionID,
			PredictedAt:     record.PredictedAt,
			Source:          record.Source,
			Label:           int32(record.Label),
			ConfidenceScore: record.ConfidenceScore,

			LinesOfCode:          fv.LinesOfCode,
			CyclomaticComplexity: fv.CyclomaticComplexity,
			DependencyCount:      fv.DependencyCount,
			FunctionCount:        fv.FunctionCount,
			ClassCount:           fv.ClassCount,
			CommentLines:         fv.CommentLines,
			ComplexityPerLOC:     fv.ComplexityPerLOC,
			CommentRatio:         fv.CommentRatio,
			FunctionsPerClass:    fv.FunctionsPerClass,
		}
	}
	return result
}
