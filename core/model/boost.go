package model

import (
	"math"
	"math/rand"
)

// Boosting is a gradient-boosted ensemble over logistic loss. Prior holds
// the initial log-odds of the positive class; each tree fits the residual
// between the label and the current sigmoid score.
type Boosting struct {
	Prior        float64           `msgpack:"prior"`
	LearningRate float64           `msgpack:"lr"`
	Trees        []*RegressionTree `msgpack:"trees"`
}

// trainBoosting fits hp.Trees sequential residual trees. Importance gains
// accumulate into the provided slice.
func trainBoosting(xs [][]float64, ys []float64, hp Hyperparams, rng *rand.Rand, importance []float64) *Boosting {
	n := len(xs)
	cfg := treeConfig{
		maxDepth:        hp.MaxDepth,
		minSamplesSplit: hp.MinSamplesSplit,
		minSamplesLeaf:  hp.MinSamplesLeaf,
	}

	positives := 0.0
	for _, y := range ys {
		positives += y
	}
	boost := &Boosting{
		Prior:        logOdds(positives / float64(n)),
		LearningRate: hp.LearningRate,
		Trees:        make([]*RegressionTree, 0, hp.Trees),
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = boost.Prior
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	residuals := make([]float64, n)
	for range hp.Trees {
		for i := range residuals {
			residuals[i] = ys[i] - sigmoid(scores[i])
		}
		tree := growTree(xs, residuals, idx, cfg, rng, importance)
		boost.Trees = append(boost.Trees, tree)
		for i, x := range xs {
			scores[i] += hp.LearningRate * tree.Predict(x)
		}
	}
	return boost
}

// Proba returns the boosted positive-class probability for one vector.
func (b *Boosting) Proba(x []float64) float64 {
	score := b.Prior
	for _, t := range b.Trees {
		score += b.LearningRate * t.Predict(x)
	}
	return sigmoid(score)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// logOdds converts a probability into a log-odds score, clamping away from
// the degenerate single-class endpoints.
func logOdds(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}
