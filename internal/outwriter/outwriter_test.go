package outwriter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

func samplePrediction(path string, score float64) schema.FilePrediction {
	fv := schema.FeatureVector{
		LinesOfCode:          220,
		CyclomaticComplexity: 14,
		DependencyCount:      3,
		FunctionCount:        9,
		ClassCount:           2,
		CommentLines:         30,
	}
	fv.Normalize()

	optimized := score >= 0.5
	return schema.FilePrediction{
		Path:  path,
		Score: score,
		Result: schema.PredictionResult{
			Timestamp:          time.Now().UTC().Format(time.RFC3339),
			IsOptimized:        optimized,
			OptimizationStatus: schema.StatusForLabel(schema.Label(boolToInt(optimized))),
			Confidence:         schema.FormatConfidence(score),
			ConfidenceScore:    score,
			InputMetrics:       fv,
			Recommendations:    []string{"Code structure looks reasonable"},
		},
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestWriteJSONPredictions(t *testing.T) {
	results := []schema.FilePrediction{
		samplePrediction("src/a.py", 0.15),
		samplePrediction("src/b.py", 0.85),
	}

	var buf bytes.Buffer
	err := writeJSONPredictions(&buf, results)
	require.NoError(t, err)

	var parsed []map[string]any
	err = json.Unmarshal(buf.Bytes(), &parsed)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, float64(1), parsed[0]["rank"])
	assert.Equal(t, "src/a.py", parsed[0]["path"])
	assert.Equal(t, "Unoptimized", parsed[0]["label"])
	assert.Equal(t, float64(2), parsed[1]["rank"])
	assert.Equal(t, "Optimized", parsed[1]["label"])
}

func TestWriteCSVPredictions(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	results := []schema.FilePrediction{samplePrediction("src/main.py", 0.72)}

	var buf bytes.Buffer
	err := writeCSVPredictions(&buf, results, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2) // header + 1 row

	assert.Contains(t, lines[0], "rank")
	assert.Contains(t, lines[0], "recommendations")
	assert.Contains(t, lines[1], "src/main.py")
	assert.Contains(t, lines[1], "0.72")
	assert.Contains(t, lines[1], "Likely")
}

func TestWriteCSVPredictionsEmpty(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	var buf bytes.Buffer
	err := writeCSVPredictions(&buf, nil, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "rank")
}

func TestWritePredictionsTable(t *testing.T) {
	cfg := &contract.Config{
		Output:         schema.TextOut,
		Precision:      2,
		Width:          120,
		Workers:        4,
		HistoryBackend: schema.SQLiteBackend,
	}
	fmtFloat, _ := createFormatters(cfg.Precision)
	results := []schema.FilePrediction{
		samplePrediction("legacy/parser.py", 0.12),
		samplePrediction("src/clean.py", 0.91),
	}

	var buf bytes.Buffer
	err := writePredictionsTable(results, cfg, fmtFloat, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "legacy/parser.py")
	assert.Contains(t, output, "0.12")
	assert.Contains(t, output, "Unoptimized")
	assert.Contains(t, output, "Showing 2 files")
	assert.Contains(t, output, "1 flagged unoptimized")
	assert.Contains(t, output, "4 workers")
}

func TestWriteCSVMetrics(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	fv := schema.FeatureVector{LinesOfCode: 50, CyclomaticComplexity: 6, FunctionCount: 3}
	fv.Normalize()

	var buf bytes.Buffer
	err := writeCSVMetrics(&buf, []schema.FileMetrics{{Path: "a.py", Features: fv}}, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "lines_of_code")
	assert.Contains(t, lines[0], "functions_per_class")
	assert.Contains(t, lines[1], "a.py")
	assert.Contains(t, lines[1], "50.00")
}

func TestWriteReportText(t *testing.T) {
	auc := 0.97
	report := &schema.TrainingReport{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Algorithm: schema.RandomForest,
		Dataset: schema.DatasetInfo{
			TotalSamples:       800,
			TrainingSamples:    640,
			TestSamples:        160,
			OptimizedSamples:   400,
			UnoptimizedSamples: 400,
		},
		Metrics: schema.EvaluationMetrics{
			Accuracy:  0.95,
			Precision: 0.94,
			Recall:    0.96,
			F1Score:   0.95,
			AUCROC:    &auc,
		},
		FeatureImportance: map[string]float64{
			"cyclomatic_complexity": 0.4,
			"lines_of_code":         0.35,
			"comment_ratio":         0.25,
		},
	}

	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	err := writeReportText(report, fmtFloat, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "random_forest")
	assert.Contains(t, output, "800 samples")
	assert.Contains(t, output, "0.95")
	assert.Contains(t, output, "AUC-ROC")
	assert.Contains(t, output, "Feature importance:")

	// Importance must be printed highest first
	cxIdx := strings.Index(output, "cyclomatic_complexity")
	locIdx := strings.Index(output, "lines_of_code")
	ratioIdx := strings.Index(output, "comment_ratio")
	assert.Less(t, cxIdx, locIdx)
	assert.Less(t, locIdx, ratioIdx)
}

func TestWriteReportTextNoAUC(t *testing.T) {
	report := &schema.TrainingReport{
		Timestamp: time.Now(),
		Algorithm: schema.SVM,
		Metrics:   schema.EvaluationMetrics{Accuracy: 0.9, F1Score: 0.9},
	}

	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	err := writeReportText(report, fmtFloat, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "svm")
	assert.NotContains(t, output, "AUC-ROC")
	assert.NotContains(t, output, "Feature importance:")
}

func TestWriteCSVDataset(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	fv := schema.FeatureVector{LinesOfCode: 100, CyclomaticComplexity: 10}
	fv.Normalize()

	data := schema.SplitResult{
		Train: []schema.LabeledSample{{Features: fv, Label: schema.Optimized}},
		Test:  []schema.LabeledSample{{Features: fv, Label: schema.Unoptimized}},
	}

	var buf bytes.Buffer
	err := writeCSVDataset(&buf, data, fmtFloat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Contains(t, lines[0], "partition")
	assert.True(t, strings.HasPrefix(lines[1], "train,1"))
	assert.True(t, strings.HasPrefix(lines[2], "test,0"))
}

func TestWriteDatasetSummary(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	fv := schema.FeatureVector{LinesOfCode: 200, CyclomaticComplexity: 8, CommentLines: 30}
	fv.Normalize()

	data := schema.SplitResult{
		Train: []schema.LabeledSample{
			{Features: fv, Label: schema.Optimized},
			{Features: fv, Label: schema.Unoptimized},
		},
		Test: []schema.LabeledSample{{Features: fv, Label: schema.Optimized}},
	}

	var buf bytes.Buffer
	err := writeDatasetSummary(data, fmtFloat, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "train/Optimized")
	assert.Contains(t, output, "test/Optimized")
	assert.Contains(t, output, "Generated 3 samples (2 train, 1 test)")
}

func TestWriteModelInfoText(t *testing.T) {
	info := schema.ModelInfo{
		ModelLoaded:       true,
		Algorithm:         schema.GradientBoosting,
		TrainingTimestamp: "2026-03-01T12:00:00Z",
		Metrics:           &schema.EvaluationMetrics{Accuracy: 0.93, Precision: 0.92, Recall: 0.94, F1Score: 0.93},
		FeatureImportance: map[string]float64{"lines_of_code": 1.0},
	}

	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	err := writeModelInfoText(info, fmtFloat, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "gradient_boosting")
	assert.Contains(t, output, "Accuracy: 0.93")
	assert.Contains(t, output, "lines_of_code")
}

func TestWriteModelInfoTextNotLoaded(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	var buf bytes.Buffer
	err := writeModelInfoText(schema.ModelInfo{}, fmtFloat, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No model loaded")
}

func TestTopAdvice(t *testing.T) {
	assert.Equal(t, "", topAdvice(nil))
	assert.Equal(t, "short", topAdvice([]string{"short", "second"}))

	long := strings.Repeat("x", 60)
	truncated := topAdvice([]string{long})
	assert.Len(t, truncated, 40)
	assert.True(t, strings.HasSuffix(truncated, "..."))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	cfg := &contract.Config{Width: 120}
	assert.Equal(t, 45, getMaxTablePathWidth(cfg))

	cfg.Width = 60
	assert.Equal(t, 15, getMaxTablePathWidth(cfg))

	cfg.Width = 300
	assert.Equal(t, 70, getMaxTablePathWidth(cfg))
}
