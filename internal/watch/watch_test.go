package watch

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/schema"
)

// fakePredictor returns a canned result and records the vectors it saw.
type fakePredictor struct {
	result schema.PredictionResult
	seen   []schema.FeatureVector
}

func (f *fakePredictor) Predict(fv schema.FeatureVector) (schema.PredictionResult, error) {
	f.seen = append(f.seen, fv)
	return f.result, nil
}

func watchConfig() *contract.Config {
	return &contract.Config{
		Output:      schema.TextOut,
		MinFileSize: 10,
		MaxFileSize: contract.DefaultMaxFileSize,
		Debounce:    50 * time.Millisecond,
	}
}

func TestDedupeChanges(t *testing.T) {
	now := time.Now()
	changes := []FileChange{
		{Path: "a.py", Op: FileOpCreate, Time: now},
		{Path: "b.py", Op: FileOpWrite, Time: now},
		{Path: "a.py", Op: FileOpWrite, Time: now.Add(time.Second)},
	}

	deduped := dedupeChanges(changes)
	require.Len(t, deduped, 2)
	assert.Equal(t, "a.py", deduped[0].Path)
	assert.Equal(t, FileOpWrite, deduped[0].Op) // newest op wins
	assert.Equal(t, "b.py", deduped[1].Path)
}

func TestAcceptChange(t *testing.T) {
	dir := t.TempDir()
	cfg := watchConfig()

	source := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(source, []byte("def main():\n    return 1\n"), 0o644))
	tiny := filepath.Join(dir, "tiny.py")
	require.NoError(t, os.WriteFile(tiny, []byte("x"), 0o644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("some notes here"), 0o644))

	tests := []struct {
		name   string
		change FileChange
		want   bool
	}{
		{"source write", FileChange{Path: source, Op: FileOpWrite}, true},
		{"source create", FileChange{Path: source, Op: FileOpCreate}, true},
		{"remove event", FileChange{Path: source, Op: FileOpRemove}, false},
		{"rename event", FileChange{Path: source, Op: FileOpRename}, false},
		{"below min size", FileChange{Path: tiny, Op: FileOpWrite}, false},
		{"not source", FileChange{Path: text, Op: FileOpWrite}, false},
		{"missing file", FileChange{Path: filepath.Join(dir, "gone.py"), Op: FileOpWrite}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := acceptChange(cfg, tt.change)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionHandleChanges(t *testing.T) {
	dir := t.TempDir()
	cfg := watchConfig()

	source := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(source, []byte("import os\n\ndef main():\n    return 1\n"), 0o644))

	predictor := &fakePredictor{
		result: schema.PredictionResult{
			IsOptimized:        true,
			OptimizationStatus: schema.OptimizedStatus,
			Confidence:         "91.00%",
			ConfidenceScore:    0.91,
		},
	}

	var buf bytes.Buffer
	session := NewSession(cfg, predictor, nil, &buf)
	session.HandleChanges([]FileChange{
		{Path: source, Op: FileOpWrite, Time: time.Now()},
		{Path: filepath.Join(dir, "gone.py"), Op: FileOpRemove, Time: time.Now()},
	})

	stats := session.Stats()
	assert.Equal(t, 2, stats.EventsSeen)
	assert.Equal(t, 1, stats.Analyzed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)

	require.Len(t, predictor.seen, 1)
	assert.Equal(t, float64(3), predictor.seen[0].LinesOfCode)

	output := buf.String()
	assert.Contains(t, output, "app.py")
	assert.Contains(t, output, "Optimized")
	assert.Contains(t, output, "skipped")
}

func TestSessionJSONOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := watchConfig()
	cfg.Output = schema.JSONOut

	source := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(source, []byte("def main():\n    return 1\n"), 0o644))

	predictor := &fakePredictor{
		result: schema.PredictionResult{IsOptimized: false, OptimizationStatus: schema.UnoptimizedStatus, ConfidenceScore: 0.8},
	}

	var buf bytes.Buffer
	session := NewSession(cfg, predictor, nil, &buf)
	session.HandleChanges([]FileChange{{Path: source, Op: FileOpWrite, Time: time.Now()}})

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, source, event["path"])
	assert.Equal(t, "write", event["op"])
	result, ok := event["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, result["is_optimized"])
}

func TestRemoteClientPredict(t *testing.T) {
	want := schema.PredictionResult{
		IsOptimized:        true,
		OptimizationStatus: schema.OptimizedStatus,
		ConfidenceScore:    0.88,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ml/predict", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var fv schema.FeatureVector
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fv))
		assert.Equal(t, float64(100), fv.LinesOfCode)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL)
	fv := schema.FeatureVector{LinesOfCode: 100, CyclomaticComplexity: 5}
	fv.Normalize()

	got, err := client.Predict(fv)
	require.NoError(t, err)
	assert.Equal(t, want.OptimizationStatus, got.OptimizationStatus)
	assert.Equal(t, want.ConfidenceScore, got.ConfidenceScore)
}

func TestRemoteClientPredictError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"no model loaded, train a model first"}`))
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL)
	_, err := client.Predict(schema.FeatureVector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "no model loaded")
}

func TestWatcherDetectsWrites(t *testing.T) {
	dir := t.TempDir()

	got := make(chan []FileChange, 1)
	watcher, err := NewWatcher(dir, 50*time.Millisecond, nil, func(changes []FileChange) {
		select {
		case got <- changes:
		default:
		}
	})
	require.NoError(t, err)
	defer watcher.Stop()

	ctx := t.Context()
	require.NoError(t, watcher.Start(ctx))
	assert.True(t, watcher.IsWatching())

	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644))

	select {
	case changes := <-got:
		require.NotEmpty(t, changes)
		assert.Equal(t, path, changes[0].Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}
}
