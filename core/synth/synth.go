// Package synth generates labeled synthetic datasets for training the
// optimization classifier. Sampling is fully deterministic for a given seed
// so evaluation runs are reproducible.
package synth

import (
	"math"
	"math/rand"

	"github.com/optiscan/optiscan/schema"
)

// Sampling ranges for the optimized class. All draws are uniform integers
// over [lo, hi). Comment counts are tied to the drawn LOC so the comment
// ratio lands in [0.12, 0.25).
const (
	optLocLo, optLocHi   = 100, 500
	optCxLo, optCxHi     = 5, 20
	optDepLo, optDepHi   = 1, 4
	optFnLo, optFnHi     = 8, 20
	optClsLo, optClsHi   = 2, 6
	optCommentLoFraction = 0.12
	optCommentHiFraction = 0.25
)

// Sampling ranges for the unoptimized class. Comments land in
// [max(1, 0.01*loc), 0.08*loc).
const (
	unoptLocLo, unoptLocHi = 200, 800
	unoptCxLo, unoptCxHi   = 25, 50
	unoptDepLo, unoptDepHi = 5, 15
	unoptFnLo, unoptFnHi   = 3, 10
	unoptClsLo, unoptClsHi = 3, 8
	unoptCommentLoFraction = 0.01
	unoptCommentHiFraction = 0.08
)

// Generate produces nOptimized + nUnoptimized labeled samples, then
// stratified-splits them by label at testFraction. Identical seeds
// reproduce identical datasets.
func Generate(nOptimized, nUnoptimized int, testFraction float64, seed int64) schema.SplitResult {
	rng := rand.New(rand.NewSource(seed))

	optimized := make([]schema.LabeledSample, nOptimized)
	for i := range optimized {
		optimized[i] = schema.LabeledSample{Features: sampleOptimized(rng), Label: schema.Optimized}
	}

	unoptimized := make([]schema.LabeledSample, nUnoptimized)
	for i := range unoptimized {
		unoptimized[i] = schema.LabeledSample{Features: sampleUnoptimized(rng), Label: schema.Unoptimized}
	}

	return stratifiedSplit(rng, optimized, unoptimized, testFraction)
}

func sampleOptimized(rng *rand.Rand) schema.FeatureVector {
	loc := drawInt(rng, optLocLo, optLocHi)
	// Ceil on the lower bound keeps comment_ratio >= 0.12 for every loc.
	commentLo := int(math.Ceil(optCommentLoFraction * float64(loc)))
	commentHi := int(optCommentHiFraction * float64(loc))

	fv := schema.FeatureVector{
		LinesOfCode:          float64(loc),
		CyclomaticComplexity: float64(drawInt(rng, optCxLo, optCxHi)),
		DependencyCount:      float64(drawInt(rng, optDepLo, optDepHi)),
		FunctionCount:        float64(drawInt(rng, optFnLo, optFnHi)),
		ClassCount:           float64(drawInt(rng, optClsLo, optClsHi)),
		CommentLines:         float64(drawInt(rng, commentLo, commentHi)),
	}
	fv.Normalize()
	return fv
}

func sampleUnoptimized(rng *rand.Rand) schema.FeatureVector {
	loc := drawInt(rng, unoptLocLo, unoptLocHi)
	commentLo := max(1, int(unoptCommentLoFraction*float64(loc)))
	commentHi := int(unoptCommentHiFraction * float64(loc))

	fv := schema.FeatureVector{
		LinesOfCode:          float64(loc),
		CyclomaticComplexity: float64(drawInt(rng, unoptCxLo, unoptCxHi)),
		DependencyCount:      float64(drawInt(rng, unoptDepLo, unoptDepHi)),
		FunctionCount:        float64(drawInt(rng, unoptFnLo, unoptFnHi)),
		ClassCount:           float64(drawInt(rng, unoptClsLo, unoptClsHi)),
		CommentLines:         float64(drawInt(rng, commentLo, commentHi)),
	}
	fv.Normalize()
	return fv
}

// stratifiedSplit shuffles each class independently, carves the test
// portion off each, then shuffles the combined partitions so training
// order does not correlate with label.
func stratifiedSplit(rng *rand.Rand, optimized, unoptimized []schema.LabeledSample, testFraction float64) schema.SplitResult {
	optTrain, optTest := splitClass(rng, optimized, testFraction)
	unoptTrain, unoptTest := splitClass(rng, unoptimized, testFraction)

	train := append(optTrain, unoptTrain...)
	test := append(optTest, unoptTest...)

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	return schema.SplitResult{Train: train, Test: test}
}

func splitClass(rng *rand.Rand, samples []schema.LabeledSample, testFraction float64) (train, test []schema.LabeledSample) {
	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	testCount := int(float64(len(samples)) * testFraction)
	return samples[testCount:], samples[:testCount]
}

func drawInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo)
}
