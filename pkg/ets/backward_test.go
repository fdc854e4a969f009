package ets

import (
	"math"
	"testing"
)

// sseForAlpha returns the innovation SSE for a given alpha, holding every
// other parameter and the initial state fixed.
// It is the central-difference reference used to check DAlpha below.
func sseForAlpha(cfg Config, values []float64, level0, trend0 float64, seasonal0 []float64, alpha float64) float64 {
	c := cfg
	c.Alpha = alpha
	traj, err := Forward(c, values, level0, trend0, seasonal0)
	if err != nil {
		panic(err)
	}
	return traj.InnovationSSE
}

func centralDiffAlpha(cfg Config, values []float64, level0, trend0 float64, seasonal0 []float64, h float64) float64 {
	plus := sseForAlpha(cfg, values, level0, trend0, seasonal0, cfg.Alpha+h)
	minus := sseForAlpha(cfg, values, level0, trend0, seasonal0, cfg.Alpha-h)
	return (plus - minus) / (2 * h)
}

// TestBackwardDAlphaMatchesCentralDifference exercises the S3 scenario: an
// AAN model over a short linear series, checking that the analytical
// d(SSE)/d(alpha) gradient matches a central-difference estimate to within
// a tight relative tolerance.
func TestBackwardDAlphaMatchesCentralDifference(t *testing.T) {
	cfg := Config{Error: Additive, Trend: TrendAdditive, Season: SeasonNone, Alpha: 0.3, Beta: 0.1}
	values := []float64{10, 11, 12, 13, 14, 15}
	level0, trend0 := 10.0, 1.0

	traj, err := Forward(cfg, values, level0, trend0, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	// Backward differentiates the innovations-form NLL, seeding each step
	// with innovation/sigma2, i.e. the gradient of SSE/(2*sigma2). Forcing
	// sigma2=1 makes it the gradient of SSE/2, so twice DAlpha is compared
	// with the central difference of the SSE.
	n := len(values)
	unitTraj := traj
	unitTraj.InnovationSSE = float64(n) // forces sigma2 = 1 in Backward
	grad, err := Backward(cfg, values, unitTraj)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}

	h := 1e-5
	numeric := centralDiffAlpha(cfg, values, level0, trend0, nil, h)

	relErr := math.Abs(2*grad.DAlpha-numeric) / math.Max(1e-8, math.Abs(numeric))
	if relErr > 1e-3 {
		t.Fatalf("d_alpha mismatch: analytical=%v numeric=%v relErr=%v", 2*grad.DAlpha, numeric, relErr)
	}
}

func TestBackwardFiniteOnMultiplicativeSeasonal(t *testing.T) {
	cfg := Config{Error: Multiplicative, Trend: TrendDampedMultiplicative, Season: SeasonMultiplicative, Alpha: 0.3, Beta: 0.1, Gamma: 0.2, Phi: 0.95, M: 4}
	values := []float64{10, 12, 9, 14, 11, 13, 10, 15, 12, 16, 11, 17}
	seasonal0 := []float64{1.1, 0.9, 1.05, 0.95}

	traj, err := Forward(cfg, values, 10, 1.0, seasonal0)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	grad, err := Backward(cfg, values, traj)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s not finite: %v", name, v)
		}
	}
	check("d_alpha", grad.DAlpha)
	check("d_beta", grad.DBeta)
	check("d_gamma", grad.DGamma)
	check("d_phi", grad.DPhi)
	check("d_level0", grad.DLevel0)
	check("d_trend0", grad.DTrend0)
	for i, v := range grad.DSeasonal0 {
		check("d_seasonal0", v)
		_ = i
	}
}

func TestBackwardRejectsEmptySeries(t *testing.T) {
	cfg := Config{Error: Additive, Alpha: 0.3}
	if _, err := Backward(cfg, nil, Trajectory{}); err == nil {
		t.Fatalf("expected error for empty series")
	}
}
