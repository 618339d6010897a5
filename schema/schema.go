// Package schema has configs, models and global variables for all parts of optiscan.
package schema

// FeatureVector represents the static source metrics extracted from a single file.
// The first six fields are primitives counted directly from the source text; the
// last three are ratios derived from the primitives.
type FeatureVector struct {
	LinesOfCode          float64 `json:"lines_of_code"`
	CyclomaticComplexity float64 `json:"cyclomatic_complexity"`
	DependencyCount      float64 `json:"dependency_count"`
	FunctionCount        float64 `json:"function_count"`
	ClassCount           float64 `json:"class_count"`
	CommentLines         float64 `json:"comment_lines"`
	ComplexityPerLOC     float64 `json:"complexity_per_loc"`
	CommentRatio         float64 `json:"comment_ratio"`
	FunctionsPerClass    float64 `json:"functions_per_class"`
}

// Normalize recomputes the derived ratios from the primitive counts and rounds
// them to two decimals. Any caller that fills the primitives by hand must call
// this before using the vector, so that derived fields never drift from their
// sources.
func (fv *FeatureVector) Normalize() {
	loc := fv.LinesOfCode
	if loc < 1 {
		loc = 1
	}
	fv.CyclomaticComplexity = Round2(fv.CyclomaticComplexity)
	fv.ComplexityPerLOC = Round2(fv.CyclomaticComplexity / loc)
	fv.CommentRatio = Round2(fv.CommentLines / loc)
	if fv.ClassCount > 0 {
		fv.FunctionsPerClass = Round2(fv.FunctionCount / fv.ClassCount)
	} else {
		fv.FunctionsPerClass = 0
	}
}

// Values returns the feature values in canonical order (see FeatureNames).
func (fv *FeatureVector) Values() []float64 {
	return []float64{
		fv.LinesOfCode,
		fv.CyclomaticComplexity,
		fv.DependencyCount,
		fv.FunctionCount,
		fv.ClassCount,
		fv.CommentLines,
		fv.ComplexityPerLOC,
		fv.CommentRatio,
		fv.FunctionsPerClass,
	}
}

// VectorFromValues reconstructs a FeatureVector from values in canonical order.
func VectorFromValues(values []float64) FeatureVector {
	var fv FeatureVector
	if len(values) != NumFeatures {
		return fv
	}
	fv.LinesOfCode = values[0]
	fv.CyclomaticComplexity = values[1]
	fv.DependencyCount = values[2]
	fv.FunctionCount = values[3]
	fv.ClassCount = values[4]
	fv.CommentLines = values[5]
	fv.ComplexityPerLOC = values[6]
	fv.CommentRatio = values[7]
	fv.FunctionsPerClass = values[8]
	return fv
}

// LabeledSample pairs a feature vector with its classification label.
type LabeledSample struct {
	Features FeatureVector `json:"features"`
	Label    Label         `json:"label"`
}

// SplitResult holds the outcome of a stratified train/test split.
type SplitResult struct {
	Train []LabeledSample
	Test  []LabeledSample
}
