package model

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/core/synth"
	"github.com/optiscan/optiscan/schema"
)

func trainingData(t *testing.T) schema.SplitResult {
	t.Helper()
	return synth.Generate(100, 100, 0.2, 42)
}

func TestTrainAndEvaluateAllAlgorithms(t *testing.T) {
	data := trainingData(t)

	for _, algorithm := range schema.AllAlgorithms {
		t.Run(string(algorithm), func(t *testing.T) {
			b, err := Train(data.Train, algorithm, nil)
			require.NoError(t, err)
			require.Equal(t, algorithm, b.Algorithm)

			metrics, err := b.Evaluate(data.Test)
			require.NoError(t, err)

			// The synthetic classes are widely separated, so every
			// algorithm should classify the held-out set almost perfectly.
			assert.Greater(t, metrics.Accuracy, 0.9, "accuracy")
			assert.Greater(t, metrics.F1Score, 0.9, "f1")

			if b.HasProbabilities() {
				require.NotNil(t, metrics.AUCROC)
				assert.Greater(t, *metrics.AUCROC, 0.9, "auc")
			} else {
				assert.Nil(t, metrics.AUCROC)
			}
		})
	}
}

func TestTrainUnsupportedAlgorithm(t *testing.T) {
	data := trainingData(t)

	_, err := Train(data.Train, "bogus", nil)
	require.Error(t, err)

	var unsupported *UnsupportedAlgorithmError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "bogus", unsupported.Algorithm)
	for _, algorithm := range schema.AllAlgorithms {
		assert.Contains(t, err.Error(), string(algorithm))
	}
}

func TestFeatureImportanceAvailability(t *testing.T) {
	data := trainingData(t)

	for _, algorithm := range []schema.Algorithm{schema.RandomForest, schema.GradientBoosting} {
		b, err := Train(data.Train, algorithm, nil)
		require.NoError(t, err)

		importance := b.FeatureImportance()
		require.NotNil(t, importance, algorithm)
		assert.Len(t, importance, schema.NumFeatures)

		total := 0.0
		for name, weight := range importance {
			assert.GreaterOrEqual(t, weight, 0.0, name)
			total += weight
		}
		assert.InDelta(t, 1.0, total, 1e-9, algorithm)
	}

	for _, algorithm := range []schema.Algorithm{schema.SVM, schema.LogisticRegression} {
		b, err := Train(data.Train, algorithm, nil)
		require.NoError(t, err)
		assert.Nil(t, b.FeatureImportance(), algorithm)
	}
}

func TestScalingOnlyForMarginModels(t *testing.T) {
	data := trainingData(t)

	for _, algorithm := range []schema.Algorithm{schema.RandomForest, schema.GradientBoosting} {
		b, err := Train(data.Train, algorithm, nil)
		require.NoError(t, err)
		assert.True(t, b.Scaler.Identity, algorithm)
	}

	for _, algorithm := range []schema.Algorithm{schema.SVM, schema.LogisticRegression} {
		b, err := Train(data.Train, algorithm, nil)
		require.NoError(t, err)
		assert.False(t, b.Scaler.Identity, algorithm)
		assert.Len(t, b.Scaler.Mean, schema.NumFeatures)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	data := trainingData(t)

	for _, algorithm := range schema.AllAlgorithms {
		t.Run(string(algorithm), func(t *testing.T) {
			b, err := Train(data.Train, algorithm, nil)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "model.bin")
			require.NoError(t, Save(b, path))

			restored, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, b.Algorithm, restored.Algorithm)
			assert.Equal(t, b.FeatureNames, restored.FeatureNames)

			for _, s := range data.Test {
				wantLabel, wantProba := b.Predict(s.Features)
				gotLabel, gotProba := restored.Predict(s.Features)
				assert.Equal(t, wantLabel, gotLabel)
				assert.InDelta(t, wantProba, gotProba, 1e-12)
			}
		})
	}
}

func TestLoadFailures(t *testing.T) {
	var perr *PersistenceError

	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "load", perr.Op)

	corrupt := filepath.Join(t.TempDir(), "corrupt.bin")
	require.NoError(t, os.WriteFile(corrupt, []byte("not msgpack at all"), 0o644))
	_, err = Load(corrupt)
	assert.ErrorAs(t, err, &perr)
}

func TestSaveNilBundle(t *testing.T) {
	err := Save(nil, filepath.Join(t.TempDir(), "model.bin"))
	assert.ErrorIs(t, err, ErrModelNotReady)
}

func TestEvaluateSingleClassOmitsAUC(t *testing.T) {
	data := trainingData(t)
	b, err := Train(data.Train, schema.RandomForest, nil)
	require.NoError(t, err)

	singleClass := make([]schema.LabeledSample, 0, len(data.Test))
	for _, s := range data.Test {
		if s.Label == schema.Optimized {
			singleClass = append(singleClass, s)
		}
	}
	require.NotEmpty(t, singleClass)

	metrics, err := b.Evaluate(singleClass)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetricUnavailable)
	assert.Nil(t, metrics.AUCROC)
	assert.Greater(t, metrics.Accuracy, 0.9)
}

func TestEvaluateEmptyTestSet(t *testing.T) {
	data := trainingData(t)
	b, err := Train(data.Train, schema.RandomForest, nil)
	require.NoError(t, err)

	metrics, err := b.Evaluate(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMetricUnavailable)

	// Metrics stay at zero so downstream JSON encoding never sees NaN.
	assert.False(t, math.IsNaN(metrics.Accuracy))
	assert.Equal(t, schema.EvaluationMetrics{}, metrics)
}

func TestComputeMetricsKnownValues(t *testing.T) {
	truth := []schema.Label{1, 1, 1, 0, 0, 0}
	predicted := []schema.Label{1, 1, 0, 0, 0, 1}

	metrics := computeMetrics(truth, predicted)
	assert.InDelta(t, 2.0/3.0, metrics.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, metrics.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, metrics.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, metrics.F1Score, 1e-9)
}

func TestRocAUCKnownValues(t *testing.T) {
	truth := []schema.Label{0, 0, 1, 1}
	scores := []float64{0.1, 0.4, 0.35, 0.8}

	auc, err := rocAUC(truth, scores)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-9)

	perfect, err := rocAUC(truth, []float64{0.1, 0.2, 0.8, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, perfect, 1e-9)

	_, err = rocAUC([]schema.Label{1, 1}, []float64{0.5, 0.6})
	assert.True(t, errors.Is(err, ErrMetricUnavailable))
}

func TestDefaultHyperparams(t *testing.T) {
	rf := DefaultHyperparams(schema.RandomForest)
	assert.Equal(t, DefaultForestTrees, rf.Trees)
	assert.Equal(t, DefaultForestDepth, rf.MaxDepth)

	gb := DefaultHyperparams(schema.GradientBoosting)
	assert.Equal(t, DefaultBoostTrees, gb.Trees)
	assert.Equal(t, DefaultBoostDepth, gb.MaxDepth)
	assert.Equal(t, DefaultBoostLearningRate, gb.LearningRate)

	svm := DefaultHyperparams(schema.SVM)
	assert.Equal(t, DefaultSVMC, svm.C)

	lr := DefaultHyperparams(schema.LogisticRegression)
	assert.Equal(t, DefaultLogRegIterations, lr.MaxIter)
}

func TestTrainHyperparamZeroFieldsUseDefaults(t *testing.T) {
	data := trainingData(t)

	small, err := Train(data.Train, schema.RandomForest, &Hyperparams{Trees: 7})
	require.NoError(t, err)
	assert.Len(t, small.Forest.Trees, 7)

	// Fields left at zero fall back to the documented defaults.
	full, err := Train(data.Train, schema.RandomForest, &Hyperparams{})
	require.NoError(t, err)
	assert.Len(t, full.Forest.Trees, DefaultForestTrees)

	merged := mergeHyperparams(DefaultHyperparams(schema.GradientBoosting), Hyperparams{LearningRate: 0.05})
	assert.Equal(t, 0.05, merged.LearningRate)
	assert.Equal(t, DefaultBoostTrees, merged.Trees)
	assert.Equal(t, DefaultBoostDepth, merged.MaxDepth)
	assert.Equal(t, int64(DefaultTrainSeed), merged.Seed)
}

func TestReportSidecarRoundTrip(t *testing.T) {
	auc := 0.97
	report := &schema.TrainingReport{
		Algorithm: schema.RandomForest,
		Metrics: schema.EvaluationMetrics{
			Accuracy:  0.96,
			Precision: 0.95,
			Recall:    0.97,
			F1Score:   0.96,
			AUCROC:    &auc,
		},
		Dataset: schema.DatasetInfo{
			TotalSamples:       800,
			TrainingSamples:    640,
			TestSamples:        160,
			OptimizedSamples:   400,
			UnoptimizedSamples: 400,
		},
		FeatureNames: schema.FeatureNames,
	}

	path := filepath.Join(t.TempDir(), "training.json")
	require.NoError(t, SaveReport(report, path))

	restored, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report, restored)
}
