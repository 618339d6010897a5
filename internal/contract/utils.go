package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Confidence label constants.
const (
	OptimizedValue  = "Optimized"   // High-confidence optimized verdict
	LikelyValue     = "Likely"      // Leaning optimized
	UncertainValue  = "Uncertain"   // Near the decision boundary
	UnoptimizedText = "Unoptimized" // Leaning or firmly unoptimized
)

// Color variables for console output.
var (
	OptimizedColor   = color.New(color.FgGreen, color.Bold) // optimizedColor represents a confident pass.
	LikelyColor      = color.New(color.FgCyan)              // likelyColor represents a soft pass.
	UncertainColor   = color.New(color.FgYellow)            // uncertainColor represents a borderline score.
	UnoptimizedColor = color.New(color.FgRed, color.Bold)   // unoptimizedColor represents a fail.
)

// GetPlainLabel returns a plain text label indicating the optimization verdict
// based on the model's optimized-class probability. This is the core logic used
// for CSV, JSON, and table printing.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.8:
		return OptimizedValue
	case score >= 0.6:
		return LikelyValue
	case score >= 0.4:
		return UncertainValue
	default:
		return UnoptimizedText
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := GetPlainLabel(score)

	switch text {
	case OptimizedValue:
		return OptimizedColor.Sprint(text)
	case LikelyValue:
		return LikelyColor.Sprint(text)
	case UncertainValue:
		return UncertainColor.Sprint(text)
	default: // "Unoptimized"
		return UnoptimizedColor.Sprint(text)
	}
}

// SourceExtensions lists the file extensions treated as analyzable source
// code by the analyzer and the file watchers.
var SourceExtensions = map[string]bool{
	".py":    true,
	".js":    true,
	".jsx":   true,
	".ts":    true,
	".tsx":   true,
	".go":    true,
	".java":  true,
	".c":     true,
	".h":     true,
	".cpp":   true,
	".hpp":   true,
	".cc":    true,
	".cs":    true,
	".rb":    true,
	".rs":    true,
	".php":   true,
	".swift": true,
	".kt":    true,
	".scala": true,
}

// IsSourceFile reports whether a path has a recognized source extension.
func IsSourceFile(path string) bool {
	return SourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// SelectOutputFile returns the appropriate file handle for output, based on the
// provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
// A user can provide patterns like "vendor/", "node_modules/", "*.min.js".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		// If the pattern contains glob characters, try filepath.Match.
		if strings.ContainsAny(ex, "*?[") || strings.Contains(ex, "**") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *.min.js)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		// Handle prefix, suffix, or substring matches
		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetModelFilePath returns the default path to the serialized model bundle.
func GetModelFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".optiscan_model.bin"
	}
	return filepath.Join(homeDir, ".optiscan_model.bin")
}

// GetReportFilePath returns the default path to the training report sidecar.
func GetReportFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".optiscan_training.json"
	}
	return filepath.Join(homeDir, ".optiscan_training.json")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".optiscan_history.db"
	}
	return filepath.Join(homeDir, ".optiscan_history.db")
}

// ReportPathForModel derives the training report sidecar path from a model
// bundle path. The default bundle keeps its conventional sidecar name; custom
// bundle paths get a ".training.json" sibling so the pair travels together.
func ReportPathForModel(modelPath string) string {
	if modelPath == GetModelFilePath() {
		return GetReportFilePath()
	}
	ext := filepath.Ext(modelPath)
	return strings.TrimSuffix(modelPath, ext) + ".training.json"
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
