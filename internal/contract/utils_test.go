package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0.95, OptimizedValue},
		{0.8, OptimizedValue},
		{0.7, LikelyValue},
		{0.6, LikelyValue},
		{0.5, UncertainValue},
		{0.4, UncertainValue},
		{0.39, UnoptimizedText},
		{0.0, UnoptimizedText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetPlainLabel(tt.score), "score %v", tt.score)
	}
}

func TestShouldIgnore(t *testing.T) {
	excludes := []string{"vendor/", ".min.js", "*.pb.go", "node_modules"}

	tests := []struct {
		path     string
		expected bool
	}{
		{"vendor/lib/code.go", true},
		{"src/app.min.js", true},
		{"api/service.pb.go", true},
		{"deep/node_modules/pkg/index.js", true},
		{"src/app.go", false},
		{"cmd/main.go", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ShouldIgnore(tt.path, excludes), "path %s", tt.path)
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path unchanged", "a/b.go", 20, "a/b.go"},
		{"long path truncated", "internal/contract/configs.go", 15, "...t/configs.go"},
		{"tiny width unchanged", "internal/contract/configs.go", 3, "internal/contract/configs.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	truthy := []string{"yes", "YES", "true", "1"}
	for _, s := range truthy {
		v, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.True(t, v, s)
	}

	falsy := []string{"no", "No", "false", "0"}
	for _, s := range falsy {
		v, err := ParseBoolString(s)
		assert.NoError(t, err)
		assert.False(t, v, s)
	}

	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestReportPathForModel(t *testing.T) {
	assert.Equal(t, GetReportFilePath(), ReportPathForModel(GetModelFilePath()))
	assert.Equal(t, "/tmp/m.training.json", ReportPathForModel("/tmp/m.bin"))
	assert.Equal(t, "models/prod.training.json", ReportPathForModel("models/prod.msgpack"))
}
