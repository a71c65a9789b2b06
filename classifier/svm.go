package classifier

import (
	"context"
	"math"

	"github.com/verimatch/verimatch/distance"
	"github.com/verimatch/verimatch/internal/randutil"
)

// SVMModel is an RBF-kernel support vector machine. Only the vectors
// with non-zero multipliers are kept after training.
type SVMModel struct {
	Support [][]float64
	Alphas  []float64 // α_i·y_i, signs folded in
	Bias    float64
	Gamma   float64
}

func (m *SVMModel) Kind() Kind { return KindSVM }

// decision evaluates f(x) = Σ α_i·y_i·K(s_i, x) + b.
func (m *SVMModel) decision(x []float64) float64 {
	f := m.Bias
	for i, s := range m.Support {
		f += m.Alphas[i] * math.Exp(-m.Gamma*distance.SquaredL2(s, x))
	}
	return f
}

// Predict returns the label and a logistic confidence derived from the
// decision value's magnitude.
func (m *SVMModel) Predict(x []float64) (int, float64) {
	f := m.decision(x)
	p := 1 / (1 + math.Exp(-f)) // probability of the genuine class
	if f >= 0 {
		return LabelGenuine, p
	}
	return LabelImpostor, 1 - p
}

// trainSVM fits the model with simplified sequential minimal
// optimization: pick a KKT-violating multiplier, pair it with a random
// second one, and solve the two-variable subproblem analytically.
// Terminates after MaxPasses full passes without an update. The context
// is consulted between passes, the cooperative cutoff for this bounded
// but potentially long loop.
func trainSVM(ctx context.Context, vectors [][]float64, labels []int, cfg Config) (*SVMModel, error) {
	n := len(vectors)
	gamma := cfg.Gamma
	if gamma <= 0 {
		gamma = 1 / float64(len(vectors[0]))
	}
	c := cfg.C
	if c <= 0 {
		c = 1
	}
	tol := cfg.Tol
	if tol <= 0 {
		tol = 1e-3
	}
	maxPasses := cfg.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 5
	}

	// Signed labels and the precomputed kernel matrix. Training sets are
	// small (hundreds of samples), so O(n²) storage is fine.
	y := make([]float64, n)
	for i, l := range labels {
		if l == LabelGenuine {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	kernel := make([][]float64, n)
	for i := range kernel {
		kernel[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			k := math.Exp(-gamma * distance.SquaredL2(vectors[i], vectors[j]))
			kernel[i][j] = k
			kernel[j][i] = k
		}
	}

	rng := randutil.NewRNG(cfg.Seed)
	alpha := make([]float64, n)
	var b float64

	f := func(i int) float64 {
		sum := b
		for j := 0; j < n; j++ {
			if alpha[j] != 0 {
				sum += alpha[j] * y[j] * kernel[j][i]
			}
		}
		return sum
	}

	passes := 0
	for passes < maxPasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed := 0
		for i := 0; i < n; i++ {
			ei := f(i) - y[i]
			if !((y[i]*ei < -tol && alpha[i] < c) || (y[i]*ei > tol && alpha[i] > 0)) {
				continue
			}

			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := f(j) - y[j]

			aiOld, ajOld := alpha[i], alpha[j]
			var lo, hi float64
			if y[i] != y[j] {
				lo = math.Max(0, ajOld-aiOld)
				hi = math.Min(c, c+ajOld-aiOld)
			} else {
				lo = math.Max(0, aiOld+ajOld-c)
				hi = math.Min(c, aiOld+ajOld)
			}
			if lo == hi {
				continue
			}

			eta := 2*kernel[i][j] - kernel[i][i] - kernel[j][j]
			if eta >= 0 {
				continue
			}

			aj := ajOld - y[j]*(ei-ej)/eta
			aj = math.Min(math.Max(aj, lo), hi)
			if math.Abs(aj-ajOld) < 1e-5 {
				continue
			}
			ai := aiOld + y[i]*y[j]*(ajOld-aj)
			alpha[i], alpha[j] = ai, aj

			b1 := b - ei - y[i]*(ai-aiOld)*kernel[i][i] - y[j]*(aj-ajOld)*kernel[i][j]
			b2 := b - ej - y[i]*(ai-aiOld)*kernel[i][j] - y[j]*(aj-ajOld)*kernel[j][j]
			switch {
			case ai > 0 && ai < c:
				b = b1
			case aj > 0 && aj < c:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}

	m := &SVMModel{Bias: b, Gamma: gamma}
	for i := 0; i < n; i++ {
		if alpha[i] > 0 {
			m.Support = append(m.Support, vectors[i])
			m.Alphas = append(m.Alphas, alpha[i]*y[i])
		}
	}
	return m, nil
}
