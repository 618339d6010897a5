// Package model implements the classifier wrapper: four interchangeable
// algorithms behind a common train/predict/evaluate surface, feature
// scaling for the margin-based variants, and bundle persistence.
package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/optiscan/optiscan/schema"
)

// Default hyperparameters per algorithm. These are fixed, documented
// constants; changing them silently would invalidate stored bundles'
// comparability across training runs.
const (
	DefaultForestTrees       = 100
	DefaultForestDepth       = 10
	DefaultBoostTrees        = 100
	DefaultBoostDepth        = 5
	DefaultBoostLearningRate = 0.1
	DefaultMinSamplesSplit   = 5
	DefaultMinSamplesLeaf    = 2
	DefaultSVMC              = 1.0
	DefaultLogRegIterations  = 1000
	DefaultLogRegRate        = 0.1
	DefaultLogRegL2          = 1e-4
	DefaultTrainSeed         = 42
)

// Hyperparams collects the tunable knobs across all four algorithms. Only
// the fields relevant to the chosen algorithm are consulted.
type Hyperparams struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	LearningRate    float64
	C               float64
	L2              float64
	MaxIter         int
	Seed            int64
}

// DefaultHyperparams returns the documented defaults for an algorithm.
func DefaultHyperparams(algorithm schema.Algorithm) Hyperparams {
	hp := Hyperparams{
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
		Seed:            DefaultTrainSeed,
	}
	switch algorithm {
	case schema.RandomForest:
		hp.Trees = DefaultForestTrees
		hp.MaxDepth = DefaultForestDepth
	case schema.GradientBoosting:
		hp.Trees = DefaultBoostTrees
		hp.MaxDepth = DefaultBoostDepth
		hp.LearningRate = DefaultBoostLearningRate
	case schema.SVM:
		hp.C = DefaultSVMC
	case schema.LogisticRegression:
		hp.MaxIter = DefaultLogRegIterations
		hp.LearningRate = DefaultLogRegRate
		hp.L2 = DefaultLogRegL2
	}
	return hp
}

// mergeHyperparams overlays the caller's non-zero fields onto the defaults.
func mergeHyperparams(defaults, hp Hyperparams) Hyperparams {
	if hp.Trees != 0 {
		defaults.Trees = hp.Trees
	}
	if hp.MaxDepth != 0 {
		defaults.MaxDepth = hp.MaxDepth
	}
	if hp.MinSamplesSplit != 0 {
		defaults.MinSamplesSplit = hp.MinSamplesSplit
	}
	if hp.MinSamplesLeaf != 0 {
		defaults.MinSamplesLeaf = hp.MinSamplesLeaf
	}
	if hp.LearningRate != 0 {
		defaults.LearningRate = hp.LearningRate
	}
	if hp.C != 0 {
		defaults.C = hp.C
	}
	if hp.L2 != 0 {
		defaults.L2 = hp.L2
	}
	if hp.MaxIter != 0 {
		defaults.MaxIter = hp.MaxIter
	}
	if hp.Seed != 0 {
		defaults.Seed = hp.Seed
	}
	return defaults
}

// Bundle is a fully trained model: the fitted estimator for exactly one
// algorithm, the fitted scaler (identity for the tree ensembles), the
// feature name list, and the training timestamp. A Bundle is immutable
// after training; concurrent reads are safe.
type Bundle struct {
	Algorithm    schema.Algorithm `msgpack:"algorithm"`
	FeatureNames []string         `msgpack:"feature_names"`
	TrainedAt    time.Time        `msgpack:"trained_at"`
	Scaler       *Scaler          `msgpack:"scaler"`
	Importance   []float64        `msgpack:"importance"` // nil for svm and logistic_regression

	Forest   *Forest   `msgpack:"forest,omitempty"`
	Boosting *Boosting `msgpack:"boosting,omitempty"`
	SVM      *SVM      `msgpack:"svm,omitempty"`
	Logistic *Logistic `msgpack:"logistic,omitempty"`
}

// Train fits a new Bundle on the given samples. A nil hp uses the
// documented defaults for the algorithm; zero-valued fields in a non-nil hp
// also fall back to the defaults.
func Train(samples []schema.LabeledSample, algorithm schema.Algorithm, hp *Hyperparams) (*Bundle, error) {
	if _, ok := schema.ValidAlgorithms[algorithm]; !ok {
		return nil, &UnsupportedAlgorithmError{Algorithm: string(algorithm)}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("training requires at least one sample")
	}

	params := DefaultHyperparams(algorithm)
	if hp != nil {
		params = mergeHyperparams(params, *hp)
	}
	rng := rand.New(rand.NewSource(params.Seed))

	xs := make([][]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Features.Values()
		ys[i] = float64(s.Label)
	}

	b := &Bundle{
		Algorithm:    algorithm,
		FeatureNames: schema.FeatureNames,
		TrainedAt:    time.Now().UTC(),
		Scaler:       identityScaler(),
	}

	switch algorithm {
	case schema.RandomForest:
		b.Importance = make([]float64, schema.NumFeatures)
		b.Forest = trainForest(xs, ys, params, rng, b.Importance)
	case schema.GradientBoosting:
		b.Importance = make([]float64, schema.NumFeatures)
		b.Boosting = trainBoosting(xs, ys, params, rng, b.Importance)
	case schema.SVM:
		b.Scaler = fitScaler(xs)
		b.SVM = trainSVM(b.Scaler.TransformAll(xs), ys, params, rng)
	case schema.LogisticRegression:
		b.Scaler = fitScaler(xs)
		b.Logistic = trainLogistic(b.Scaler.TransformAll(xs), ys, params)
	}

	normalizeImportance(b.Importance)
	return b, nil
}

// Proba returns the positive-class probability for one feature vector.
// Algorithms without a native probability yield 0.0 or 1.0.
func (b *Bundle) Proba(fv schema.FeatureVector) float64 {
	x := b.Scaler.Transform(fv.Values())
	switch {
	case b.Forest != nil:
		return b.Forest.Proba(x)
	case b.Boosting != nil:
		return b.Boosting.Proba(x)
	case b.SVM != nil:
		return b.SVM.Proba(x)
	default:
		return b.Logistic.Proba(x)
	}
}

// Predict returns the binary label and positive-class probability for one
// feature vector.
func (b *Bundle) Predict(fv schema.FeatureVector) (schema.Label, float64) {
	p := b.Proba(fv)
	if p >= 0.5 {
		return schema.Optimized, p
	}
	return schema.Unoptimized, p
}

// HasProbabilities reports whether the algorithm exposes calibrated class
// probabilities. The kernel SVM does not.
func (b *Bundle) HasProbabilities() bool {
	return b.SVM == nil
}

// Evaluate scores the bundle on held-out samples. When a metric cannot be
// computed for degenerate test data (empty or single-class sets) the
// returned error wraps ErrMetricUnavailable and the remaining metrics are
// still valid; callers should warn and continue.
func (b *Bundle) Evaluate(test []schema.LabeledSample) (schema.EvaluationMetrics, error) {
	if len(test) == 0 {
		return schema.EvaluationMetrics{}, fmt.Errorf("evaluation needs a non-empty test set: %w", ErrMetricUnavailable)
	}

	truth := make([]schema.Label, len(test))
	predicted := make([]schema.Label, len(test))
	scores := make([]float64, len(test))
	for i, s := range test {
		truth[i] = s.Label
		predicted[i], scores[i] = b.Predict(s.Features)
	}

	metrics := computeMetrics(truth, predicted)
	if !b.HasProbabilities() {
		return metrics, nil
	}

	auc, err := rocAUC(truth, scores)
	if err != nil {
		return metrics, err
	}
	metrics.AUCROC = &auc
	return metrics, nil
}

// FeatureImportance maps feature names to normalized importance weights.
// Only the tree ensembles expose importances; others return nil.
func (b *Bundle) FeatureImportance() map[string]float64 {
	if b.Importance == nil {
		return nil
	}
	out := make(map[string]float64, len(b.FeatureNames))
	for i, name := range b.FeatureNames {
		out[name] = b.Importance[i]
	}
	return out
}

// normalizeImportance rescales accumulated gains to sum to 1.
func normalizeImportance(importance []float64) {
	if importance == nil {
		return
	}
	total := 0.0
	for _, v := range importance {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range importance {
		importance[i] /= total
	}
}
