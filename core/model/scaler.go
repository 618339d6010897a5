package model

import "math"

// Scaler standardizes features to zero mean and unit variance. The identity
// form passes vectors through untouched; tree-based algorithms use it so the
// persisted bundle always carries a scaler.
type Scaler struct {
	Identity bool      `msgpack:"identity"`
	Mean     []float64 `msgpack:"mean"`
	Std      []float64 `msgpack:"std"`
}

// identityScaler returns a pass-through scaler.
func identityScaler() *Scaler {
	return &Scaler{Identity: true}
}

// fitScaler computes per-feature mean and standard deviation from the
// training matrix only. Zero-variance features keep a unit divisor.
func fitScaler(xs [][]float64) *Scaler {
	if len(xs) == 0 {
		return identityScaler()
	}
	d := len(xs[0])
	mean := make([]float64, d)
	std := make([]float64, d)

	for _, x := range xs {
		for j, v := range x {
			mean[j] += v
		}
	}
	n := float64(len(xs))
	for j := range mean {
		mean[j] /= n
	}

	for _, x := range xs {
		for j, v := range x {
			diff := v - mean[j]
			std[j] += diff * diff
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &Scaler{Mean: mean, Std: std}
}

// Transform applies the fitted scaling to a single vector.
func (s *Scaler) Transform(x []float64) []float64 {
	if s == nil || s.Identity {
		return x
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll applies the fitted scaling to a matrix.
func (s *Scaler) TransformAll(xs [][]float64) [][]float64 {
	if s == nil || s.Identity {
		return xs
	}
	out := make([][]float64, len(xs))
	for i, x := range xs {
		out[i] = s.Transform(x)
	}
	return out
}
