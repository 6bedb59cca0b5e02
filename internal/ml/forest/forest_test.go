package forest_test

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"smartrate/internal/ml/forest"
)

// synthetic regression problem with a clear nonlinear structure:
// y = 10*x0 + step at x1>0.5, plus small noise.
func syntheticDataset(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := rng.Float64()
		b := rng.Float64()
		c := rng.Float64() // irrelevant feature
		x[i] = []float64{a, b, c}
		y[i] = 10*a + 5
		if b > 0.5 {
			y[i] += 20
		}
		y[i] += rng.NormFloat64() * 0.5
	}
	return x, y
}

func TestFit_LearnsSignal(t *testing.T) {
	x, y := syntheticDataset(600, 7)
	f, err := forest.Fit(x, y, forest.Config{Trees: 50, Seed: 42})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	// In-sample error should be far below the spread of y (~[5, 35]).
	var mae float64
	for i := range x {
		p, err := f.Predict(x[i])
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		mae += math.Abs(p - y[i])
	}
	mae /= float64(len(x))
	if mae > 3 {
		t.Fatalf("in-sample MAE too high: %v", mae)
	}
}

func TestFit_DeterministicUnderFixedSeed(t *testing.T) {
	x, y := syntheticDataset(200, 3)
	cfg := forest.Config{Trees: 20, Seed: 42}

	f1, err := forest.Fit(x, y, cfg)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	f2, err := forest.Fit(x, y, cfg)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	sample := []float64{0.3, 0.7, 0.1}
	p1, _ := f1.Predict(sample)
	p2, _ := f2.Predict(sample)
	if p1 != p2 {
		t.Fatalf("same seed must give identical forests: %v vs %v", p1, p2)
	}
}

func TestFit_InputValidation(t *testing.T) {
	if _, err := forest.Fit(nil, nil, forest.Config{}); err == nil {
		t.Fatal("expected error on empty dataset")
	}
	if _, err := forest.Fit([][]float64{{1, 2}, {1}}, []float64{1, 2}, forest.Config{}); err == nil {
		t.Fatal("expected error on ragged rows")
	}
}

func TestPredict_DimensionMismatch(t *testing.T) {
	x, y := syntheticDataset(50, 1)
	f, err := forest.Fit(x, y, forest.Config{Trees: 5, Seed: 1})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := f.Predict([]float64{1}); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestForest_JSONRoundTripPreservesPredictions(t *testing.T) {
	x, y := syntheticDataset(150, 11)
	f, err := forest.Fit(x, y, forest.Config{Trees: 10, Seed: 9})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back forest.Forest
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for i := 0; i < 10; i++ {
		want, _ := f.Predict(x[i])
		got, err := back.Predict(x[i])
		if err != nil {
			t.Fatalf("predict after round trip: %v", err)
		}
		if got != want {
			t.Fatalf("row %d: round trip changed prediction %v -> %v", i, want, got)
		}
	}
}

func TestPredict_ConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{42, 42, 42, 42, 42, 42}
	f, err := forest.Fit(x, y, forest.Config{Trees: 5, Seed: 1})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	p, err := f.Predict([]float64{99})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if p != 42 {
		t.Fatalf("constant target must predict the constant, got %v", p)
	}
}
