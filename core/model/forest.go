package model

import (
	"math"
	"math/rand"
)

// Forest is a bagged ensemble of regression trees over 0/1 targets. Each
// tree votes with its leaf mean; the ensemble average is the positive-class
// probability.
type Forest struct {
	Trees []*RegressionTree `msgpack:"trees"`
}

// trainForest grows hp.Trees trees, each on a bootstrap resample of the
// training rows with sqrt(d) feature subsampling at every node. Importance
// gains accumulate into the provided slice.
func trainForest(xs [][]float64, ys []float64, hp Hyperparams, rng *rand.Rand, importance []float64) *Forest {
	n := len(xs)
	d := len(xs[0])
	cfg := treeConfig{
		maxDepth:        hp.MaxDepth,
		minSamplesSplit: hp.MinSamplesSplit,
		minSamplesLeaf:  hp.MinSamplesLeaf,
		maxFeatures:     int(math.Max(1, math.Sqrt(float64(d)))),
	}

	forest := &Forest{Trees: make([]*RegressionTree, hp.Trees)}
	idx := make([]int, n)
	for t := range forest.Trees {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		forest.Trees[t] = growTree(xs, ys, idx, cfg, rng, importance)
	}
	return forest
}

// Proba returns the ensemble's positive-class probability for one vector.
func (f *Forest) Proba(x []float64) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	return clamp01(sum / float64(len(f.Trees)))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
