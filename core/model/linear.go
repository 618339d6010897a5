package model

// Logistic is an L2-regularized logistic regression fit by batch gradient
// descent over standardized features.
type Logistic struct {
	Weights []float64 `msgpack:"weights"`
	Bias    float64   `msgpack:"bias"`
}

// trainLogistic runs hp.MaxIter full-batch gradient steps.
func trainLogistic(xs [][]float64, ys []float64, hp Hyperparams) *Logistic {
	n := len(xs)
	d := len(xs[0])
	m := &Logistic{Weights: make([]float64, d)}

	grad := make([]float64, d)
	for range hp.MaxIter {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, x := range xs {
			err := sigmoid(m.decision(x)) - ys[i]
			for j, v := range x {
				grad[j] += err * v
			}
			gradBias += err
		}

		scale := 1 / float64(n)
		for j := range m.Weights {
			m.Weights[j] -= hp.LearningRate * (grad[j]*scale + hp.L2*m.Weights[j])
		}
		m.Bias -= hp.LearningRate * gradBias * scale
	}
	return m
}

// Proba returns the positive-class probability for one vector.
func (m *Logistic) Proba(x []float64) float64 {
	return sigmoid(m.decision(x))
}

func (m *Logistic) decision(x []float64) float64 {
	z := m.Bias
	for j, w := range m.Weights {
		z += w * x[j]
	}
	return z
}
