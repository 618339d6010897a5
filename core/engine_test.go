package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/core/model"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		Algorithm:   schema.RandomForest,
		DatasetSize: 200,
		TestFrac:    0.2,
		Seed:        42,
		ModelPath:   filepath.Join(dir, "model.bin"),
		ReportPath:  filepath.Join(dir, "training.json"),
		Workers:     2,
		ResultLimit: 25,
		MaxFileSize: contract.DefaultMaxFileSize,
	}
}

func optimizedVector() schema.FeatureVector {
	fv := schema.FeatureVector{
		LinesOfCode:          250,
		CyclomaticComplexity: 8,
		DependencyCount:      2,
		FunctionCount:        12,
		ClassCount:           3,
		CommentLines:         45,
	}
	fv.Normalize()
	return fv
}

func unoptimizedVector() schema.FeatureVector {
	fv := schema.FeatureVector{
		LinesOfCode:          600,
		CyclomaticComplexity: 40,
		DependencyCount:      12,
		FunctionCount:        5,
		ClassCount:           6,
		CommentLines:         6,
	}
	fv.Normalize()
	return fv
}

func TestEngineNotReady(t *testing.T) {
	eng := NewEngine()

	assert.False(t, eng.Ready())

	_, err := eng.Predict(optimizedVector())
	assert.ErrorIs(t, err, model.ErrModelNotReady)

	_, err = eng.Bundle()
	assert.ErrorIs(t, err, model.ErrModelNotReady)

	info := eng.Info()
	assert.False(t, info.ModelLoaded)
}

func TestEngineRetrainAndPredict(t *testing.T) {
	cfg := testConfig(t)
	eng := NewEngine()

	report, err := eng.Retrain(cfg, nil)
	require.NoError(t, err)
	require.True(t, eng.Ready())

	assert.Equal(t, schema.RandomForest, report.Algorithm)
	assert.Equal(t, 200, report.Dataset.TotalSamples)
	assert.Equal(t, 160, report.Dataset.TrainingSamples)
	assert.Equal(t, 40, report.Dataset.TestSamples)
	assert.Greater(t, report.Metrics.Accuracy, 0.9)
	assert.NotEmpty(t, report.FeatureImportance)

	good, err := eng.Predict(optimizedVector())
	require.NoError(t, err)
	assert.True(t, good.IsOptimized)
	assert.Equal(t, schema.OptimizedStatus, good.OptimizationStatus)
	assert.GreaterOrEqual(t, good.ConfidenceScore, 0.5)
	assert.NotEmpty(t, good.Recommendations)
	assert.NotEmpty(t, good.Timestamp)

	bad, err := eng.Predict(unoptimizedVector())
	require.NoError(t, err)
	assert.False(t, bad.IsOptimized)
	assert.Equal(t, schema.UnoptimizedStatus, bad.OptimizationStatus)
	assert.GreaterOrEqual(t, bad.ConfidenceScore, 0.5)
}

func TestEnginePredictNormalizesInput(t *testing.T) {
	cfg := testConfig(t)
	eng := NewEngine()
	_, err := eng.Retrain(cfg, nil)
	require.NoError(t, err)

	// Drifted derived fields must be recomputed before scoring.
	drifted := optimizedVector()
	drifted.CommentRatio = 99
	drifted.ComplexityPerLOC = 99

	result, err := eng.Predict(drifted)
	require.NoError(t, err)
	assert.Equal(t, optimizedVector(), result.InputMetrics)
}

func TestEngineLoadRestoresState(t *testing.T) {
	cfg := testConfig(t)

	trainer := NewEngine()
	_, err := trainer.Retrain(cfg, nil)
	require.NoError(t, err)

	restored := NewEngine()
	require.NoError(t, restored.Load(cfg.ModelPath, cfg.ReportPath))
	require.True(t, restored.Ready())

	info := restored.Info()
	assert.True(t, info.ModelLoaded)
	assert.Equal(t, schema.RandomForest, info.Algorithm)
	require.NotNil(t, info.Metrics)
	assert.Greater(t, info.Metrics.Accuracy, 0.9)
	require.NotNil(t, info.Dataset)
	assert.Equal(t, 200, info.Dataset.TotalSamples)

	// Predictions must match the engine that trained the bundle.
	for _, fv := range []schema.FeatureVector{optimizedVector(), unoptimizedVector()} {
		want, err := trainer.Predict(fv)
		require.NoError(t, err)
		got, err := restored.Predict(fv)
		require.NoError(t, err)
		assert.Equal(t, want.IsOptimized, got.IsOptimized)
		assert.InDelta(t, want.ConfidenceScore, got.ConfidenceScore, 1e-12)
	}
}

func TestEngineLoadMissingBundle(t *testing.T) {
	eng := NewEngine()
	err := eng.Load(filepath.Join(t.TempDir(), "missing.bin"), "")
	require.Error(t, err)

	var perr *model.PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.False(t, eng.Ready())
}

func TestEngineRetrainTinyDataset(t *testing.T) {
	// Two samples at test fraction 0.2 leave an empty test split. Training
	// must still complete, persist a consistent bundle and sidecar pair, and
	// swap the active model; the unavailable metrics stay at zero.
	cfg := testConfig(t)
	cfg.DatasetSize = 2
	eng := NewEngine()

	report, err := eng.Retrain(cfg, nil)
	require.NoError(t, err)
	require.True(t, eng.Ready())

	assert.Equal(t, 0, report.Dataset.TestSamples)
	assert.Equal(t, 2, report.Dataset.TrainingSamples)
	assert.Zero(t, report.Metrics.Accuracy)
	assert.Nil(t, report.Metrics.AUCROC)

	restored := NewEngine()
	require.NoError(t, restored.Load(cfg.ModelPath, cfg.ReportPath))

	info := restored.Info()
	assert.True(t, info.ModelLoaded)
	require.NotNil(t, info.Dataset)
	assert.Equal(t, 2, info.Dataset.TotalSamples)
}

func TestEngineRetrainSwapsModel(t *testing.T) {
	cfg := testConfig(t)
	eng := NewEngine()

	_, err := eng.Retrain(cfg, nil)
	require.NoError(t, err)
	first, err := eng.Bundle()
	require.NoError(t, err)

	cfg.Algorithm = schema.LogisticRegression
	_, err = eng.Retrain(cfg, nil)
	require.NoError(t, err)
	second, err := eng.Bundle()
	require.NoError(t, err)

	// The old bundle stays intact for in-flight readers.
	assert.NotSame(t, first, second)
	assert.Equal(t, schema.RandomForest, first.Algorithm)
	assert.Equal(t, schema.LogisticRegression, second.Algorithm)
}
