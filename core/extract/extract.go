// Package extract turns raw source text into the fixed feature vector used
// by the classification pipeline. It is regex-heuristic only; there is no
// parsing or AST work here.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/optiscan/optiscan/schema"
)

// ErrBinaryContent signals input that cannot be decoded as source text.
var ErrBinaryContent = errors.New("content is binary or not valid UTF-8")

// Function definition heuristics. These are a union of language-specific
// shapes; overlapping matches across patterns are counted, not deduplicated.
var functionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bdef\s+\w+\s*\(`),
	regexp.MustCompile(`\bfunction\s+\w+\s*\(`),
	regexp.MustCompile(`(?:\w|\))\s*=>`),
	regexp.MustCompile(`\b(?:void|int|long|short|float|double|char|bool)\s+\w+\s*\(`),
	regexp.MustCompile(`\b(?:public|private|protected|static)\s+[\w<>\[\]]+\s+\w+\s*\(`),
}

var classPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bclass\s+\w+`),
	regexp.MustCompile(`\bstruct\s+\w+`),
	regexp.MustCompile(`\binterface\s+\w+`),
}

var dependencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*import\b`),
	regexp.MustCompile(`require\s*\(`),
	regexp.MustCompile(`(?m)^\s*#include\b`),
	regexp.MustCompile(`(?m)^\s*using\b`),
}

// decisionPattern captures the keyword-based decision points. Boolean
// operators and ternaries are counted separately as plain substrings.
var decisionPattern = regexp.MustCompile(`\b(?:if|elif|else|for|while|do|switch|case|catch|finally)\b`)

// Decode validates that data is readable source text.
func Decode(data []byte) (string, error) {
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", ErrBinaryContent
	}
	return string(data), nil
}

// Metrics extracts the feature vector from already-decoded source text.
// The result is deterministic for a given input.
func Metrics(source string) schema.FeatureVector {
	loc, comments := classifyLines(source)
	if loc < 1 {
		loc = 1
	}

	functions := countMatches(functionPatterns, source)
	classes := countMatches(classPatterns, source)
	dependencies := countMatches(dependencyPatterns, source)

	raw := 1.0 + float64(len(decisionPattern.FindAllStringIndex(source, -1)))
	raw += float64(strings.Count(source, "&&"))
	raw += float64(strings.Count(source, "||"))
	raw += float64(strings.Count(source, "?"))

	var complexity float64
	if functions > 0 {
		complexity = raw / float64(functions)
	} else {
		denom := float64(loc) / 10
		if denom < 1 {
			denom = 1
		}
		complexity = raw / denom
	}

	fv := schema.FeatureVector{
		LinesOfCode:          float64(loc),
		CyclomaticComplexity: schema.Round2(complexity),
		DependencyCount:      float64(dependencies),
		FunctionCount:        float64(functions),
		ClassCount:           float64(classes),
		CommentLines:         float64(comments),
	}
	fv.Normalize()
	return fv
}

// FromBytes decodes the content and extracts its metrics. Binary or
// undecodable content is rejected before it reaches the extractor.
func FromBytes(data []byte) (schema.FeatureVector, error) {
	source, err := Decode(data)
	if err != nil {
		return schema.FeatureVector{}, err
	}
	return Metrics(source), nil
}

// FromFile reads a file from disk and extracts its metrics.
func FromFile(path string) (schema.FeatureVector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.FeatureVector{}, fmt.Errorf("reading %s: %w", path, err)
	}
	fv, err := FromBytes(data)
	if err != nil {
		return schema.FeatureVector{}, fmt.Errorf("extracting %s: %w", path, err)
	}
	return fv, nil
}

// classifyLines walks the text once and splits lines into code and comment.
// A line is a comment when, after stripping whitespace, it starts with '#'
// or '//', or falls inside a block region opened by triple quotes or '/*'
// and not yet closed. Blank lines count as neither.
func classifyLines(text string) (loc, comments int) {
	inBlock := false
	blockClose := ""

	for line := range strings.SplitSeq(text, "\n") {
		stripped := strings.TrimSpace(line)
		if inBlock {
			comments++
			if strings.Contains(stripped, blockClose) {
				inBlock = false
			}
			continue
		}
		if stripped == "" {
			continue
		}

		switch {
		case strings.HasPrefix(stripped, "#"), strings.HasPrefix(stripped, "//"):
			comments++
		case strings.HasPrefix(stripped, `"""`), strings.HasPrefix(stripped, "'''"):
			comments++
			delim := stripped[:3]
			if !strings.Contains(stripped[3:], delim) {
				inBlock, blockClose = true, delim
			}
		case strings.HasPrefix(stripped, "/*"):
			comments++
			if !strings.Contains(stripped[2:], "*/") {
				inBlock, blockClose = true, "*/"
			}
		default:
			loc++
		}
	}
	return loc, comments
}

func countMatches(patterns []*regexp.Regexp, source string) int {
	total := 0
	for _, p := range patterns {
		total += len(p.FindAllStringIndex(source, -1))
	}
	return total
}
