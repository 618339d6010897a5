package model

import (
	"math/rand"
	"sort"
)

// TreeNode is one node in a flattened regression tree. Leaves carry a Value;
// internal nodes route on Feature/Threshold to child indices within the
// owning tree's node slice.
type TreeNode struct {
	Feature   int     `msgpack:"f"`
	Threshold float64 `msgpack:"t"`
	Left      int     `msgpack:"l"`
	Right     int     `msgpack:"r"`
	Value     float64 `msgpack:"v"`
	Leaf      bool    `msgpack:"leaf"`
}

// RegressionTree is a binary regression tree grown with a variance
// (mean squared error) criterion. For 0/1 targets the variance ordering
// matches Gini impurity, so one builder serves both the probability forest
// and the boosted residual trees.
type RegressionTree struct {
	Nodes []TreeNode `msgpack:"nodes"`
}

// Predict walks the tree for one vector and returns the leaf value.
func (t *RegressionTree) Predict(x []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int // 0 means consider every feature
}

type treeBuilder struct {
	xs         [][]float64
	ys         []float64
	cfg        treeConfig
	rng        *rand.Rand
	importance []float64 // accumulated impurity decrease per feature
	nodes      []TreeNode
}

// growTree fits a regression tree to the rows selected by idx and
// accumulates per-feature impurity decreases into importance.
func growTree(xs [][]float64, ys []float64, idx []int, cfg treeConfig, rng *rand.Rand, importance []float64) *RegressionTree {
	b := &treeBuilder{xs: xs, ys: ys, cfg: cfg, rng: rng, importance: importance}
	b.grow(idx, 0)
	return &RegressionTree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	mean, sse := meanAndSSE(b.ys, idx)

	nodeID := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Leaf: true, Value: mean})

	if depth >= b.cfg.maxDepth || len(idx) < b.cfg.minSamplesSplit || sse <= 1e-12 {
		return nodeID
	}

	feature, threshold, gain, ok := b.bestSplit(idx, sse)
	if !ok {
		return nodeID
	}

	var left, right []int
	for _, i := range idx {
		if b.xs[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	if b.importance != nil {
		b.importance[feature] += gain
	}

	leftID := b.grow(left, depth+1)
	rightID := b.grow(right, depth+1)

	b.nodes[nodeID] = TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      leftID,
		Right:     rightID,
	}
	return nodeID
}

// bestSplit scans candidate features for the threshold that minimizes the
// summed squared error of the two children. Returns ok=false when no split
// beats the parent or satisfies the leaf-size floor.
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (feature int, threshold, gain float64, ok bool) {
	d := len(b.xs[idx[0]])
	features := b.candidateFeatures(d)

	bestGain := 0.0
	type pair struct{ v, y float64 }
	pairs := make([]pair, len(idx))

	for _, f := range features {
		for k, i := range idx {
			pairs[k] = pair{v: b.xs[i][f], y: b.ys[i]}
		}
		sort.Slice(pairs, func(a, c int) bool { return pairs[a].v < pairs[c].v })

		// Prefix sums over the sorted order let each threshold be scored
		// in constant time.
		n := len(pairs)
		var sumLeft, sqLeft float64
		sumTotal, sqTotal := 0.0, 0.0
		for _, p := range pairs {
			sumTotal += p.y
			sqTotal += p.y * p.y
		}

		for k := 1; k < n; k++ {
			sumLeft += pairs[k-1].y
			sqLeft += pairs[k-1].y * pairs[k-1].y
			if pairs[k-1].v == pairs[k].v {
				continue
			}
			nl, nr := k, n-k
			if nl < b.cfg.minSamplesLeaf || nr < b.cfg.minSamplesLeaf {
				continue
			}
			sumRight := sumTotal - sumLeft
			sqRight := sqTotal - sqLeft
			childSSE := (sqLeft - sumLeft*sumLeft/float64(nl)) + (sqRight - sumRight*sumRight/float64(nr))
			if g := parentSSE - childSSE; g > bestGain {
				bestGain = g
				feature = f
				threshold = (pairs[k-1].v + pairs[k].v) / 2
			}
		}
	}

	if bestGain <= 0 {
		return 0, 0, 0, false
	}
	return feature, threshold, bestGain, true
}

// candidateFeatures returns the feature subset to scan at this node.
func (b *treeBuilder) candidateFeatures(d int) []int {
	if b.cfg.maxFeatures <= 0 || b.cfg.maxFeatures >= d {
		features := make([]int, d)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return b.rng.Perm(d)[:b.cfg.maxFeatures]
}

func meanAndSSE(ys []float64, idx []int) (mean, sse float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	for _, i := range idx {
		mean += ys[i]
	}
	mean /= float64(len(idx))
	for _, i := range idx {
		diff := ys[i] - mean
		sse += diff * diff
	}
	return mean, sse
}
