// Package core orchestrates the optimization pipeline: training runs,
// file analysis, and inference against the active model.
package core

import (
	"encoding/json"
	"errors"
	"io/fs"
	"sync/atomic"
	"time"

	"github.com/optiscan/optiscan/core/advice"
	"github.com/optiscan/optiscan/core/model"
	"github.com/optiscan/optiscan/core/synth"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// Engine owns the active model. The bundle pointer is swapped atomically on
// retrain, so in-flight predictions keep reading the bundle they started
// with (read-copy-update). Bundles themselves are immutable after training.
type Engine struct {
	active atomic.Pointer[model.Bundle]
	report atomic.Pointer[schema.TrainingReport]
}

// NewEngine returns an engine with no model loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// Load restores the bundle and its training report sidecar from disk. A
// missing sidecar is tolerated; a missing or corrupt bundle is not.
func (e *Engine) Load(modelPath, reportPath string) error {
	bundle, err := model.Load(modelPath)
	if err != nil {
		return err
	}

	report, err := model.LoadReport(reportPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			contract.LogWarn("Training report sidecar unreadable", err)
		}
	} else {
		e.report.Store(report)
	}

	e.active.Store(bundle)
	return nil
}

// Ready reports whether a model is available for inference.
func (e *Engine) Ready() bool {
	return e.active.Load() != nil
}

// Bundle returns the active model bundle, or ErrModelNotReady.
func (e *Engine) Bundle() (*model.Bundle, error) {
	bundle := e.active.Load()
	if bundle == nil {
		return nil, model.ErrModelNotReady
	}
	return bundle, nil
}

// Predict runs one inference against the active model. The vector's derived
// ratios are recomputed before scoring so callers cannot submit drifted
// values.
func (e *Engine) Predict(fv schema.FeatureVector) (schema.PredictionResult, error) {
	bundle, err := e.Bundle()
	if err != nil {
		return schema.PredictionResult{}, err
	}

	fv.Normalize()
	label, proba := bundle.Predict(fv)
	isOptimized := label == schema.Optimized

	// Confidence is the probability of the predicted class.
	score := proba
	if !isOptimized {
		score = 1 - proba
	}

	return schema.PredictionResult{
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		IsOptimized:        isOptimized,
		OptimizationStatus: schema.StatusForLabel(label),
		Confidence:         schema.FormatConfidence(score),
		ConfidenceScore:    score,
		InputMetrics:       fv,
		FeatureImportance:  bundle.FeatureImportance(),
		Recommendations:    advice.Recommend(fv, isOptimized),
	}, nil
}

// Retrain runs the full training pipeline: synthesize a dataset, fit a new
// bundle, evaluate it, persist bundle and report, then swap the active
// reference. History tracking failures degrade to warnings.
func (e *Engine) Retrain(cfg *contract.Config, store contract.HistoryStore) (*schema.TrainingReport, error) {
	start := time.Now()

	half := cfg.DatasetSize / 2
	data := synth.Generate(half, cfg.DatasetSize-half, cfg.TestFrac, cfg.Seed)

	var runID int64
	if store != nil {
		var err error
		runID, err = store.BeginTrainingRun(start, cfg.Algorithm, cfg.DatasetSize, len(data.Train), len(data.Test))
		if err != nil {
			contract.LogWarn("Training run tracking initialization failed", err)
		}
	}

	bundle, err := model.Train(data.Train, cfg.Algorithm, nil)
	if err != nil {
		return nil, err
	}

	metrics, err := bundle.Evaluate(data.Test)
	if err != nil {
		if !errors.Is(err, model.ErrMetricUnavailable) {
			return nil, err
		}
		contract.LogWarn("Evaluation metric omitted", err)
	}

	report := &schema.TrainingReport{
		Timestamp: bundle.TrainedAt,
		Algorithm: bundle.Algorithm,
		Dataset: schema.DatasetInfo{
			TotalSamples:       cfg.DatasetSize,
			TrainingSamples:    len(data.Train),
			TestSamples:        len(data.Test),
			OptimizedSamples:   half,
			UnoptimizedSamples: cfg.DatasetSize - half,
		},
		Metrics:           metrics,
		FeatureImportance: bundle.FeatureImportance(),
		FeatureNames:      bundle.FeatureNames,
	}

	if err := model.Save(bundle, cfg.ModelPath); err != nil {
		return nil, err
	}
	if err := model.SaveReport(report, cfg.ReportPath); err != nil {
		return nil, err
	}

	e.active.Store(bundle)
	e.report.Store(report)

	if store != nil && runID > 0 {
		metricsJSON, err := json.Marshal(metrics)
		if err != nil {
			contract.LogWarn("Metrics serialization for tracking failed", err)
		} else if err := store.EndTrainingRun(runID, time.Now(), string(metricsJSON), cfg.ModelPath); err != nil {
			contract.LogWarn("Failed to finalize training run tracking", err)
		}
	}

	return report, nil
}

// Info summarizes the active model for diagnostics.
func (e *Engine) Info() schema.ModelInfo {
	bundle := e.active.Load()
	if bundle == nil {
		return schema.ModelInfo{ModelLoaded: false}
	}

	info := schema.ModelInfo{
		ModelLoaded:       true,
		Algorithm:         bundle.Algorithm,
		TrainingTimestamp: bundle.TrainedAt.UTC().Format(time.RFC3339),
		FeatureNames:      bundle.FeatureNames,
		FeatureImportance: bundle.FeatureImportance(),
	}
	if report := e.report.Load(); report != nil {
		info.Metrics = &report.Metrics
		info.Dataset = &report.Dataset
	}
	return info
}
