// Package forest implements a random-forest regressor: bagged CART
// regression trees with per-split feature subsampling. It is sized for
// fitting offline on a few thousand rows and predicting one vector at a
// time on the request path, and is fully deterministic under a fixed seed.
package forest

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Config controls fitting. Zero values fall back to the defaults used by
// the training job.
type Config struct {
	Trees    int   `json:"trees"`     // number of bagged trees
	MaxDepth int   `json:"max_depth"` // 0 = unlimited
	MinLeaf  int   `json:"min_leaf"`  // minimum samples per leaf
	Seed     int64 `json:"seed"`
}

const (
	DefaultTrees   = 200
	DefaultMinLeaf = 2
)

var (
	ErrEmptyDataset = errors.New("forest: empty training dataset")
	ErrDimension    = errors.New("forest: feature dimension mismatch")
)

// Node is one tree node in flat, index-linked form so the whole forest
// serializes to JSON without recursion. Leaves carry the mean target value;
// internal nodes route on x[Feature] <= Threshold.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
	Leaf      bool    `json:"leaf"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

type Forest struct {
	Trees    []Tree `json:"trees"`
	Features int    `json:"features"`
	Config   Config `json:"config"`
}

// Fit trains a forest on X (rows of equal length) against target y.
// Fitting is sequential; the training job is a single-threaded batch run.
func Fit(x [][]float64, y []float64, cfg Config) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, ErrEmptyDataset
	}
	p := len(x[0])
	for _, row := range x {
		if len(row) != p {
			return nil, ErrDimension
		}
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultTrees
	}
	if cfg.MinLeaf <= 0 {
		cfg.MinLeaf = DefaultMinLeaf
	}

	// Per-split feature subsample size: p/3 is the usual regression choice.
	mtry := p / 3
	if mtry < 1 {
		mtry = 1
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	f := &Forest{Trees: make([]Tree, 0, cfg.Trees), Features: p, Config: cfg}
	n := len(x)
	for i := 0; i < cfg.Trees; i++ {
		// Each tree grows from its own derived seed so the forest is
		// reproducible regardless of how growTree consumes randomness.
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		idx := make([]int, n)
		for j := range idx {
			idx[j] = treeRng.Intn(n) // bootstrap sample, with replacement
		}
		f.Trees = append(f.Trees, growTree(x, y, idx, cfg, mtry, treeRng))
	}
	return f, nil
}

// Predict returns the mean prediction of all trees for one feature vector.
func (f *Forest) Predict(row []float64) (float64, error) {
	if len(row) != f.Features {
		return 0, ErrDimension
	}
	if len(f.Trees) == 0 {
		return 0, ErrEmptyDataset
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(row)
	}
	return sum / float64(len(f.Trees)), nil
}

func (t *Tree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ---- tree growing ----

type grower struct {
	x    [][]float64
	y    []float64
	cfg  Config
	mtry int
	rng  *rand.Rand

	nodes []Node
}

func growTree(x [][]float64, y []float64, idx []int, cfg Config, mtry int, rng *rand.Rand) Tree {
	g := &grower{x: x, y: y, cfg: cfg, mtry: mtry, rng: rng}
	g.build(idx, 1)
	return Tree{Nodes: g.nodes}
}

// build appends the subtree for idx and returns its root node index.
func (g *grower) build(idx []int, depth int) int {
	mean := g.mean(idx)

	if len(idx) < 2*g.cfg.MinLeaf || (g.cfg.MaxDepth > 0 && depth > g.cfg.MaxDepth) {
		return g.leaf(mean)
	}
	feat, thr, ok := g.bestSplit(idx)
	if !ok {
		return g.leaf(mean)
	}

	var left, right []int
	for _, i := range idx {
		if g.x[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < g.cfg.MinLeaf || len(right) < g.cfg.MinLeaf {
		return g.leaf(mean)
	}

	self := len(g.nodes)
	g.nodes = append(g.nodes, Node{Feature: feat, Threshold: thr})
	l := g.build(left, depth+1)
	r := g.build(right, depth+1)
	g.nodes[self].Left = l
	g.nodes[self].Right = r
	return self
}

func (g *grower) leaf(value float64) int {
	g.nodes = append(g.nodes, Node{Leaf: true, Value: value})
	return len(g.nodes) - 1
}

func (g *grower) mean(idx []int) float64 {
	s := 0.0
	for _, i := range idx {
		s += g.y[i]
	}
	return s / float64(len(idx))
}

// bestSplit scans a random subset of features for the threshold with the
// largest sum-of-squares reduction. Candidate thresholds are midpoints
// between consecutive distinct values; the scan keeps running sums so each
// feature costs one sort plus one pass.
func (g *grower) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	p := len(g.x[0])
	feats := g.rng.Perm(p)[:g.mtry]

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += g.y[i]
		totalSq += g.y[i] * g.y[i]
	}
	n := float64(len(idx))
	baseSSE := totalSq - totalSum*totalSum/n

	best := math.Inf(1)
	sorted := make([]int, len(idx))
	for _, f := range feats {
		copy(sorted, idx)
		sortByFeature(sorted, g.x, f)

		var leftSum, leftSq float64
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			leftSum += g.y[i]
			leftSq += g.y[i] * g.y[i]

			cur, next := g.x[i][f], g.x[sorted[k+1]][f]
			if cur == next {
				continue // no threshold separates equal values
			}
			nl := float64(k + 1)
			nr := n - nl
			if int(nl) < g.cfg.MinLeaf || int(nr) < g.cfg.MinLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < best {
				best = sse
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	if ok && best >= baseSSE {
		ok = false // no split improves on the parent
	}
	return feature, threshold, ok
}

func sortByFeature(idx []int, x [][]float64, f int) {
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]][f] < x[idx[b]][f] })
}
