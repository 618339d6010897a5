package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/core"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		Algorithm:   schema.RandomForest,
		DatasetSize: 200,
		TestFrac:    0.2,
		Seed:        contract.DefaultSeed,
		ModelPath:   filepath.Join(dir, "model.bin"),
		ReportPath:  filepath.Join(dir, "model.training.json"),
	}
}

func trainedRouter(t *testing.T) (*gin.Engine, *core.Engine) {
	t.Helper()
	cfg := testConfig(t)
	eng := core.NewEngine()
	_, err := eng.Retrain(cfg, nil)
	require.NoError(t, err)
	return NewRouter(cfg, eng, nil), eng
}

func optimizedBody() map[string]float64 {
	return map[string]float64{
		"lines_of_code":         200,
		"cyclomatic_complexity": 8,
		"dependency_count":      2,
		"function_count":        12,
		"class_count":           3,
		"comment_lines":         40,
		"complexity_per_loc":    0.04,
		"comment_ratio":         0.2,
		"functions_per_class":   4,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredict(t *testing.T) {
	router, _ := trainedRouter(t)

	w := doJSON(t, router, "POST", "/api/ml/predict", optimizedBody())
	require.Equal(t, http.StatusOK, w.Code)

	var result schema.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsOptimized)
	assert.Equal(t, schema.OptimizedStatus, result.OptimizationStatus)
	assert.NotEmpty(t, result.Recommendations)
	assert.GreaterOrEqual(t, result.ConfidenceScore, 0.5)
}

func TestPredictMissingField(t *testing.T) {
	router, _ := trainedRouter(t)

	body := optimizedBody()
	delete(body, "cyclomatic_complexity")

	w := doJSON(t, router, "POST", "/api/ml/predict", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CyclomaticComplexity")
}

func TestPredictNoModel(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg, core.NewEngine(), nil)

	w := doJSON(t, router, "POST", "/api/ml/predict", optimizedBody())
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "no model loaded")
}

func TestBatchPredict(t *testing.T) {
	router, _ := trainedRouter(t)

	body := map[string]any{
		"metrics_list": []map[string]float64{optimizedBody(), optimizedBody()},
	}
	w := doJSON(t, router, "POST", "/api/ml/batch-predict", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BatchPredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, resp.Results[0].OptimizationStatus, resp.Results[1].OptimizationStatus)
}

func TestBatchPredictEmptyList(t *testing.T) {
	router, _ := trainedRouter(t)

	w := doJSON(t, router, "POST", "/api/ml/batch-predict", map[string]any{"metrics_list": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetrain(t *testing.T) {
	cfg := testConfig(t)
	eng := core.NewEngine()
	router := NewRouter(cfg, eng, nil)

	size := 200
	w := doJSON(t, router, "POST", "/api/ml/retrain", map[string]any{
		"algorithm":    "logistic_regression",
		"dataset_size": size,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp RetrainResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, schema.LogisticRegression, resp.Algorithm)
	assert.Equal(t, size, resp.DatasetInfo.TotalSamples)
	assert.Greater(t, resp.Metrics.Accuracy, 0.8)
	assert.True(t, eng.Ready())

	// Startup config must not be mutated by per-request overrides
	assert.Equal(t, schema.RandomForest, cfg.Algorithm)
	assert.Equal(t, 200, cfg.DatasetSize)
}

func TestRetrainUnknownAlgorithm(t *testing.T) {
	router, _ := trainedRouter(t)

	w := doJSON(t, router, "POST", "/api/ml/retrain", map[string]any{"algorithm": "neural_net"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported algorithm")
	assert.Contains(t, w.Body.String(), "random_forest")
}

func TestRetrainInvalidDatasetSize(t *testing.T) {
	router, _ := trainedRouter(t)

	w := doJSON(t, router, "POST", "/api/ml/retrain", map[string]any{"dataset_size": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := trainedRouter(t)

	w := doJSON(t, router, "GET", "/api/ml/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "optiscan", resp.Service)
	assert.True(t, resp.ModelLoaded)
	assert.Equal(t, schema.RandomForest, resp.ModelAlgorithm)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestHealthNoModel(t *testing.T) {
	router := NewRouter(testConfig(t), core.NewEngine(), nil)

	w := doJSON(t, router, "GET", "/api/ml/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.ModelLoaded)
	assert.Empty(t, resp.ModelAlgorithm)
}

func TestModelInfo(t *testing.T) {
	router, _ := trainedRouter(t)

	w := doJSON(t, router, "GET", "/api/ml/model-info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info schema.ModelInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.ModelLoaded)
	assert.Equal(t, schema.RandomForest, info.Algorithm)
	assert.Equal(t, schema.FeatureNames, info.FeatureNames)
	require.NotNil(t, info.Dataset)
	assert.Equal(t, 200, info.Dataset.TotalSamples)
}
