package optimize

import (
	"math"
	"testing"
)

func quadratic(center []float64) Evaluator {
	return func(x []float64) (float64, []float64, error) {
		f := 0.0
		g := make([]float64, len(x))
		for i := range x {
			d := x[i] - center[i]
			f += d * d
			g[i] = 2 * d
		}
		return f, g, nil
	}
}

func TestMinimizeUnconstrainedQuadratic(t *testing.T) {
	center := []float64{3, -2}
	problem := Problem{
		Evaluate: quadratic(center),
		Lower:    []float64{math.Inf(-1), math.Inf(-1)},
		Upper:    []float64{math.Inf(1), math.Inf(1)},
	}
	res, err := Minimize(problem, []float64{0, 0}, DefaultConfig())
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if !res.Converged {
		t.Fatalf("expected convergence, got message: %s", res.Message)
	}
	for i := range center {
		if math.Abs(res.X[i]-center[i]) > 1e-3 {
			t.Fatalf("x[%d] = %v, want close to %v", i, res.X[i], center[i])
		}
	}
}

func TestMinimizeRespectsBoxConstraint(t *testing.T) {
	center := []float64{5}
	problem := Problem{
		Evaluate: quadratic(center),
		Lower:    []float64{0},
		Upper:    []float64{1},
	}
	res, err := Minimize(problem, []float64{0.5}, DefaultConfig())
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if res.X[0] < 0 || res.X[0] > 1 {
		t.Fatalf("x out of box: %v", res.X[0])
	}
	if math.Abs(res.X[0]-1) > 1e-3 {
		t.Fatalf("expected minimizer pinned at upper bound 1, got %v", res.X[0])
	}
	if !res.AtBoundary[0] {
		t.Fatalf("expected boundary flag set at the pinned optimum")
	}
}

func TestMinimizeReprojectsInitialPoint(t *testing.T) {
	center := []float64{0}
	problem := Problem{
		Evaluate: quadratic(center),
		Lower:    []float64{2},
		Upper:    []float64{4},
	}
	res, err := Minimize(problem, []float64{-5}, DefaultConfig())
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if res.X[0] < 2 || res.X[0] > 4 {
		t.Fatalf("result escaped box: %v", res.X[0])
	}
}

func TestMinimizeConvergesAcrossWolfeSettings(t *testing.T) {
	center := []float64{3, -2}
	for _, wolfe := range []float64{0.01, 0.5, 0.9, 0.9999} {
		cfg := DefaultConfig()
		cfg.Wolfe = wolfe
		cfg.MaxIterations = 500
		problem := Problem{
			Evaluate: quadratic(center),
			Lower:    []float64{math.Inf(-1), math.Inf(-1)},
			Upper:    []float64{math.Inf(1), math.Inf(1)},
		}
		res, err := Minimize(problem, []float64{0, 0}, cfg)
		if err != nil {
			t.Fatalf("wolfe=%v: minimize: %v", wolfe, err)
		}
		if !res.Converged {
			t.Fatalf("wolfe=%v: expected convergence, message: %s", wolfe, res.Message)
		}
		for i := range center {
			if math.Abs(res.X[i]-center[i]) > 1e-2 {
				t.Fatalf("wolfe=%v: x[%d] = %v, want close to %v", wolfe, i, res.X[i], center[i])
			}
		}
	}
}

func TestMinimizeHandlesNonFiniteInitialPoint(t *testing.T) {
	problem := Problem{
		Evaluate: func(x []float64) (float64, []float64, error) {
			return math.NaN(), []float64{0}, nil
		},
		Lower: []float64{0},
		Upper: []float64{1},
	}
	res, err := Minimize(problem, []float64{0.5}, DefaultConfig())
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if res.Converged {
		t.Fatalf("expected non-convergence for non-finite objective")
	}
}
