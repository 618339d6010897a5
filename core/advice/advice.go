// Package advice maps a feature vector onto canned improvement
// recommendations via fixed thresholds. The mapping is a pure function and
// its output is never empty.
package advice

import "github.com/optiscan/optiscan/schema"

// Threshold constants for the recommendation rules.
const (
	complexityCeiling    = 30
	commentRatioFloor    = 0.08
	commentRatioCeiling  = 0.25
	dependencyCeiling    = 10
	locCeiling           = 500
	fnPerClassFloor      = 1.5
	fnPerClassCeiling    = 4
	complexityDensityMax = 0.6
)

// Recommendation texts. Each rule triggers independently; a vector may
// collect several.
const (
	adviceSplitFunctions  = "High cyclomatic complexity detected. Consider breaking complex functions into smaller, focused units."
	adviceAddDocs         = "Low comment ratio. Add documentation to clarify intent, especially for non-obvious logic."
	adviceTrimComments    = "Very high comment density. Consider whether comments restate the code and can be reduced."
	adviceReduceCoupling  = "High dependency count. Reduce coupling by consolidating imports or extracting shared abstractions."
	adviceSplitModule     = "Large module detected. Consider splitting it into smaller, cohesive modules."
	adviceSplitClasses    = "Classes define very few functions each, suggesting too many responsibilities per class. Consider redistributing logic."
	adviceMergeFunctions  = "Many functions per class. Consider consolidating related functions."
	adviceSimplifyLogic   = "High complexity relative to module size. Simplify branching logic where possible."
	advicePositive        = "Code appears well optimized. Keep up the good structure and documentation practices."
	adviceNoIssues        = "No significant issues detected. The code has a reasonable structure."
)

// Recommend returns the recommendation list for a vector and its predicted
// label. The result always has at least one entry.
func Recommend(fv schema.FeatureVector, isOptimized bool) []string {
	var out []string

	if fv.CyclomaticComplexity > complexityCeiling {
		out = append(out, adviceSplitFunctions)
	}
	if fv.CommentRatio < commentRatioFloor {
		out = append(out, adviceAddDocs)
	}
	if fv.CommentRatio > commentRatioCeiling {
		out = append(out, adviceTrimComments)
	}
	if fv.DependencyCount > dependencyCeiling {
		out = append(out, adviceReduceCoupling)
	}
	if fv.LinesOfCode > locCeiling {
		out = append(out, adviceSplitModule)
	}
	if fv.FunctionsPerClass > 0 && fv.FunctionsPerClass < fnPerClassFloor {
		out = append(out, adviceSplitClasses)
	}
	if fv.FunctionsPerClass > fnPerClassCeiling {
		out = append(out, adviceMergeFunctions)
	}
	if fv.ComplexityPerLOC > complexityDensityMax {
		out = append(out, adviceSimplifyLogic)
	}
	if isOptimized {
		out = append(out, advicePositive)
	}

	if len(out) == 0 {
		out = append(out, adviceNoIssues)
	}
	return out
}
