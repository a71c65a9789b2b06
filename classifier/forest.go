package classifier

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/verimatch/verimatch/internal/randutil"
)

// ForestModel is a bagged ensemble of CART trees voting by majority;
// the confidence is the winning vote fraction.
type ForestModel struct {
	Trees []*treeNode
}

func (m *ForestModel) Kind() Kind { return KindRandomForest }

// Predict runs every tree and reports the majority label with its vote
// fraction.
func (m *ForestModel) Predict(x []float64) (int, float64) {
	genuine := 0
	for _, t := range m.Trees {
		if t.predict(x) == LabelGenuine {
			genuine++
		}
	}
	frac := float64(genuine) / float64(len(m.Trees))
	if frac >= 0.5 {
		return LabelGenuine, frac
	}
	return LabelImpostor, 1 - frac
}

type treeNode struct {
	leaf      bool
	label     int
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (t *treeNode) predict(x []float64) int {
	for !t.leaf {
		if x[t.feature] <= t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.label
}

// trainForest grows cfg.Trees bootstrap trees in parallel. Each tree
// derives its own RNG from the base seed, so the forest is deterministic
// regardless of goroutine scheduling.
func trainForest(ctx context.Context, vectors [][]float64, labels []int, cfg Config) (*ForestModel, error) {
	trees := cfg.Trees
	if trees <= 0 {
		trees = 100
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}
	minLeaf := cfg.MinLeaf
	if minLeaf <= 0 {
		minLeaf = 1
	}
	dim := len(vectors[0])
	mtry := int(math.Ceil(math.Sqrt(float64(dim))))

	m := &ForestModel{Trees: make([]*treeNode, trees)}
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for t := 0; t < trees; t++ {
		t := t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := randutil.NewRNG(cfg.Seed + int64(t))

			// Bootstrap sample with replacement.
			idx := make([]int, len(vectors))
			for i := range idx {
				idx[i] = rng.Intn(len(vectors))
			}
			m.Trees[t] = growTree(vectors, labels, idx, maxDepth, minLeaf, mtry, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func growTree(vectors [][]float64, labels, idx []int, depth, minLeaf, mtry int, rng *randutil.RNG) *treeNode {
	genuine := 0
	for _, i := range idx {
		if labels[i] == LabelGenuine {
			genuine++
		}
	}
	majority := LabelImpostor
	if genuine*2 >= len(idx) {
		majority = LabelGenuine
	}
	if depth == 0 || len(idx) <= minLeaf || genuine == 0 || genuine == len(idx) {
		return &treeNode{leaf: true, label: majority}
	}

	feature, threshold, ok := bestSplit(vectors, labels, idx, mtry, rng)
	if !ok {
		return &treeNode{leaf: true, label: majority}
	}

	var left, right []int
	for _, i := range idx {
		if vectors[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{leaf: true, label: majority}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(vectors, labels, left, depth-1, minLeaf, mtry, rng),
		right:     growTree(vectors, labels, right, depth-1, minLeaf, mtry, rng),
	}
}

// bestSplit searches a random feature subset for the threshold with the
// lowest weighted Gini impurity. Candidate thresholds are the midpoints
// between consecutive distinct values.
func bestSplit(vectors [][]float64, labels, idx []int, mtry int, rng *randutil.RNG) (feature int, threshold float64, ok bool) {
	dim := len(vectors[0])
	features := rng.Perm(dim)[:mtry]

	best := math.Inf(1)
	for _, f := range features {
		values := make([]float64, len(idx))
		for k, i := range idx {
			values[k] = vectors[i][f]
		}
		sort.Float64s(values)

		for k := 1; k < len(values); k++ {
			if values[k] == values[k-1] {
				continue
			}
			t := (values[k] + values[k-1]) / 2
			if g := splitGini(vectors, labels, idx, f, t); g < best {
				best = g
				feature = f
				threshold = t
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func splitGini(vectors [][]float64, labels, idx []int, feature int, threshold float64) float64 {
	var nL, gL, nR, gR int
	for _, i := range idx {
		if vectors[i][feature] <= threshold {
			nL++
			if labels[i] == LabelGenuine {
				gL++
			}
		} else {
			nR++
			if labels[i] == LabelGenuine {
				gR++
			}
		}
	}
	gini := func(n, g int) float64 {
		if n == 0 {
			return 0
		}
		p := float64(g) / float64(n)
		return 2 * p * (1 - p)
	}
	total := float64(nL + nR)
	return float64(nL)/total*gini(nL, gL) + float64(nR)/total*gini(nR, gR)
}
