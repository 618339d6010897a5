//go:build integration

// Package integration contains integration tests for optiscan.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetricsVerification runs analyze --metrics-only and verifies line counts
// against an independent computation over the same sources.
func TestMetricsVerification(t *testing.T) {
	binPath := buildBinary(t)

	projectDir := t.TempDir()
	sources := map[string]string{
		"clean.py": "def add(a, b):\n    \"\"\"Adds two numbers.\"\"\"\n    return a + b\n",
		"messy.py": "import os\nimport sys\nimport json\n\ndef tangled(x):\n    # no early exit\n    if x:\n        for i in range(10):\n            while i > 0:\n                i -= 1\n    return x\n",
	}
	for name, content := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, name), []byte(content), 0o644))
	}

	outFile := filepath.Join(projectDir, "metrics.csv")
	cmd := exec.Command(binPath, "analyze", projectDir, "--metrics-only",
		"--output", "csv", "--output-file", outFile, "--history-backend", "none")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "analyze failed: %s", string(output))

	rows := readCSV(t, outFile)
	require.GreaterOrEqual(t, len(rows), 3, "expected header plus one row per file")

	header := rows[0]
	locIdx := indexOf(header, "lines_of_code")
	commentIdx := indexOf(header, "comment_lines")
	require.GreaterOrEqual(t, locIdx, 0)
	require.GreaterOrEqual(t, commentIdx, 0)

	for _, row := range rows[1:] {
		file := row[0]
		content, ok := sources[filepath.Base(file)]
		require.True(t, ok, "unexpected file in output: %s", file)
		wantLOC, wantComments := countLines(content)

		gotLOC, err := strconv.ParseFloat(row[locIdx], 64)
		require.NoError(t, err)
		gotComments, err := strconv.ParseFloat(row[commentIdx], 64)
		require.NoError(t, err)

		assert.Equal(t, float64(wantLOC), gotLOC, "LOC mismatch for %s", file)
		assert.Equal(t, float64(wantComments), gotComments, "comment count mismatch for %s", file)
	}
}

// TestAnalyzeRankingVerification trains a model and checks that analyze output
// is ordered least optimized first.
func TestAnalyzeRankingVerification(t *testing.T) {
	binPath := buildBinary(t)

	workDir := t.TempDir()
	modelPath := filepath.Join(workDir, "model.bin")

	trainCmd := exec.Command(binPath, "train",
		"--algorithm", "random_forest", "--dataset-size", "400",
		"--model-path", modelPath, "--history-backend", "none")
	output, err := trainCmd.CombinedOutput()
	require.NoError(t, err, "train failed: %s", string(output))

	projectDir := filepath.Join(workDir, "project")
	require.NoError(t, os.Mkdir(projectDir, 0o755))
	require.NoError(t, writeRankingProject(projectDir))

	analyzeCmd := exec.Command(binPath, "analyze", projectDir,
		"--output", "json", "--model-path", modelPath, "--history-backend", "none")
	var stdout bytes.Buffer
	analyzeCmd.Stdout = &stdout
	require.NoError(t, analyzeCmd.Run())

	var results []struct {
		Path  string  `json:"path"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Score, results[i].Score,
			"results must be ordered least optimized first")
	}
}

func buildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "optiscan")
	buildCmd := exec.Command("go", "build", "-o", binPath, ".")
	buildCmd.Dir = ".." // Project root
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(output))
	return binPath
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func indexOf(row []string, name string) int {
	for i, col := range row {
		if col == name {
			return i
		}
	}
	return -1
}

// countLines independently counts code and comment lines the way the
// extractor defines them: blank lines are ignored, comment lines start with
// a comment marker.
func countLines(content string) (loc, comments int) {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") ||
			strings.HasPrefix(trimmed, "\"\"\"") || strings.HasPrefix(trimmed, "'''") {
			comments++
			continue
		}
		loc++
	}
	return loc, comments
}

func writeRankingProject(dir string) error {
	files := map[string]string{
		"tidy.py": "def add(a, b):\n    \"\"\"Adds two numbers.\"\"\"\n    return a + b\n",
		"deep.py": "import a\nimport b\nimport c\nimport d\n\ndef nest(x):\n    if x:\n        if x > 1:\n            if x > 2:\n                if x > 3:\n                    while x:\n                        x -= 1\n    return x\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
