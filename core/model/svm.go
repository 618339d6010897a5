package model

import (
	"math"
	"math/rand"
)

// SVM is a kernelized support-vector classifier with an RBF kernel, trained
// with the Pegasos update. It exposes a hard decision only; there is no
// calibrated probability.
type SVM struct {
	SupportX [][]float64 `msgpack:"support_x"`
	SupportY []float64   `msgpack:"support_y"` // labels mapped to -1/+1
	Alpha    []float64   `msgpack:"alpha"`
	Gamma    float64     `msgpack:"gamma"`
	Scale    float64     `msgpack:"scale"` // 1/(lambda * T)
}

const svmEpochs = 20

// trainSVM runs kernelized Pegasos over epochs*n random steps with
// lambda = 1/(C*n) and gamma set by the "scale" heuristic. Only rows with
// nonzero alpha are retained as support vectors.
func trainSVM(xs [][]float64, ys []float64, hp Hyperparams, rng *rand.Rand) *SVM {
	n := len(xs)
	signs := make([]float64, n)
	for i, y := range ys {
		if y > 0.5 {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}

	lambda := 1 / (hp.C * float64(n))
	gamma := scaleGamma(xs)
	alpha := make([]float64, n)

	steps := svmEpochs * n
	for t := 1; t <= steps; t++ {
		i := rng.Intn(n)
		decision := 0.0
		for j := range alpha {
			if alpha[j] == 0 {
				continue
			}
			decision += alpha[j] * signs[j] * rbf(xs[j], xs[i], gamma)
		}
		decision /= lambda * float64(t)
		if signs[i]*decision < 1 {
			alpha[i]++
		}
	}

	m := &SVM{Gamma: gamma, Scale: 1 / (lambda * float64(steps))}
	for i, a := range alpha {
		if a == 0 {
			continue
		}
		m.SupportX = append(m.SupportX, xs[i])
		m.SupportY = append(m.SupportY, signs[i])
		m.Alpha = append(m.Alpha, a)
	}
	return m
}

// Decision returns the signed margin for one vector.
func (m *SVM) Decision(x []float64) float64 {
	sum := 0.0
	for j, sx := range m.SupportX {
		sum += m.Alpha[j] * m.SupportY[j] * rbf(sx, x, m.Gamma)
	}
	return sum * m.Scale
}

// Proba casts the hard decision to 0.0 or 1.0. The caller treats this as a
// degenerate probability since the kernel machine has no native one.
func (m *SVM) Proba(x []float64) float64 {
	if m.Decision(x) >= 0 {
		return 1
	}
	return 0
}

func rbf(a, b []float64, gamma float64) float64 {
	sq := 0.0
	for j := range a {
		diff := a[j] - b[j]
		sq += diff * diff
	}
	return math.Exp(-gamma * sq)
}

// scaleGamma mirrors the common 1/(d * var) heuristic, with var the pooled
// variance over every feature value in the matrix.
func scaleGamma(xs [][]float64) float64 {
	d := len(xs[0])
	count := 0.0
	mean := 0.0
	for _, x := range xs {
		for _, v := range x {
			mean += v
			count++
		}
	}
	mean /= count

	variance := 0.0
	for _, x := range xs {
		for _, v := range x {
			diff := v - mean
			variance += diff * diff
		}
	}
	variance /= count
	if variance == 0 {
		variance = 1
	}
	return 1 / (float64(d) * variance)
}
