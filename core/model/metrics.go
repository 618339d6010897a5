package model

import (
	"fmt"
	"sort"

	"github.com/optiscan/optiscan/schema"
)

// computeMetrics derives accuracy and support-weighted precision/recall/F1
// from predicted and true labels.
func computeMetrics(truth, predicted []schema.Label) schema.EvaluationMetrics {
	n := len(truth)
	correct := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			correct++
		}
	}

	var precision, recall, f1 float64
	for _, class := range []schema.Label{schema.Unoptimized, schema.Optimized} {
		var tp, fp, fn, support float64
		for i := range truth {
			switch {
			case truth[i] == class && predicted[i] == class:
				tp++
				support++
			case truth[i] == class:
				fn++
				support++
			case predicted[i] == class:
				fp++
			}
		}
		var p, r float64
		if tp+fp > 0 {
			p = tp / (tp + fp)
		}
		if tp+fn > 0 {
			r = tp / (tp + fn)
		}
		var f float64
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		weight := support / float64(n)
		precision += weight * p
		recall += weight * r
		f1 += weight * f
	}

	return schema.EvaluationMetrics{
		Accuracy:  float64(correct) / float64(n),
		Precision: precision,
		Recall:    recall,
		F1Score:   f1,
	}
}

// rocAUC computes the area under the ROC curve with the rank statistic,
// averaging ranks across tied scores. A single-class truth vector makes the
// area undefined.
func rocAUC(truth []schema.Label, scores []float64) (float64, error) {
	var positives, negatives float64
	for _, label := range truth {
		if label == schema.Optimized {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0, fmt.Errorf("auc_roc needs both classes in the test set: %w", ErrMetricUnavailable)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			j++
		}
		// 1-based average rank over the tie group
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	rankSum := 0.0
	for i, label := range truth {
		if label == schema.Optimized {
			rankSum += ranks[i]
		}
	}
	return (rankSum - positives*(positives+1)/2) / (positives * negatives), nil
}
