package schema

// Custom string types for type safety.
type (
	// Algorithm identifies a supported classification algorithm.
	Algorithm string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history tracking.
	DatabaseBackend string
)

// Label represents a binary classification outcome.
// Optimized code is the positive class.
type Label int

// All labels supported.
const (
	Unoptimized Label = 0
	Optimized   Label = 1
)

// All algorithms supported.
const (
	RandomForest       Algorithm = "random_forest" // default
	GradientBoosting   Algorithm = "gradient_boosting"
	SVM                Algorithm = "svm"
	LogisticRegression Algorithm = "logistic_regression"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Status values reported in prediction output.
const (
	OptimizedStatus   = "Optimized"
	UnoptimizedStatus = "Unoptimized"
)

// AllAlgorithms returns a list of all supported algorithms.
var AllAlgorithms = []Algorithm{RandomForest, GradientBoosting, SVM, LogisticRegression}

// ValidAlgorithms lists all valid algorithms.
var ValidAlgorithms = map[Algorithm]struct{}{
	RandomForest:       {},
	GradientBoosting:   {},
	SVM:                {},
	LogisticRegression: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// FeatureNames lists the nine features in canonical vector order.
var FeatureNames = []string{
	"lines_of_code",
	"cyclomatic_complexity",
	"dependency_count",
	"function_count",
	"class_count",
	"comment_lines",
	"complexity_per_loc",
	"comment_ratio",
	"functions_per_class",
}

// NumFeatures is the dimensionality of the feature vector.
const NumFeatures = 9

// StatusForLabel returns the display status for a classification label.
func StatusForLabel(label Label) string {
	if label == Optimized {
		return OptimizedStatus
	}
	return UnoptimizedStatus
}
