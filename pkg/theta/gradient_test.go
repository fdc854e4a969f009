package theta

import (
	"errors"
	"math"
	"testing"
)

func TestGradientQuadraticMatchesAnalytical(t *testing.T) {
	// f(x) = (x0-3)^2 + (x1+2)^2; grad = [2(x0-3), 2(x1+2)]
	obj := func(x []float64) (float64, error) {
		return (x[0]-3)*(x[0]-3) + (x[1]+2)*(x[1]+2), nil
	}
	x := []float64{1.0, 0.5}
	res, err := Gradient(obj, x, []ParamKind{Generic, Generic})
	if err != nil {
		t.Fatalf("gradient: %v", err)
	}
	want := []float64{2 * (x[0] - 3), 2 * (x[1] + 2)}
	for i := range want {
		if math.Abs(res.Grad[i]-want[i]) > 1e-4 {
			t.Fatalf("grad[%d]: got %v want %v", i, res.Grad[i], want[i])
		}
		if res.Backward[i] || res.ZeroFallback[i] {
			t.Fatalf("unexpected fallback at %d", i)
		}
	}
}

func TestGradientBackwardFallback(t *testing.T) {
	// f is non-finite for x0 > 0.5, forcing the +eps probe to fail.
	obj := func(x []float64) (float64, error) {
		if x[0] > 0.5 {
			return math.NaN(), nil
		}
		return x[0] * x[0], nil
	}
	x := []float64{0.5, 0}
	res, err := Gradient(obj, x, []ParamKind{Generic, Generic})
	if err != nil {
		t.Fatalf("gradient: %v", err)
	}
	if !res.Backward[0] {
		t.Fatalf("expected backward-difference fallback for param 0")
	}
}

func TestGradientZeroFallbackWhenBothDirectionsFail(t *testing.T) {
	obj := func(x []float64) (float64, error) {
		if x[0] != 1.0 {
			return 0, errors.New("boom")
		}
		return 1.0, nil
	}
	x := []float64{1.0}
	res, err := Gradient(obj, x, []ParamKind{Generic})
	if err != nil {
		t.Fatalf("gradient: %v", err)
	}
	if !res.ZeroFallback[0] || res.Grad[0] != 0 {
		t.Fatalf("expected zero-gradient fallback, got grad=%v zero=%v", res.Grad[0], res.ZeroFallback[0])
	}
}

func TestStepRespectsAlphaAndThetaBounds(t *testing.T) {
	if got := Step(AlphaBounded, 0.989); got > 0.99-0.989+1e-12 {
		t.Fatalf("alpha step too large near upper bound: %v", got)
	}
	if got := Step(ThetaBounded, 9.9999); got > 10-9.9999+1e-9 {
		t.Fatalf("theta step too large near upper bound: %v", got)
	}
}

func TestWorkspaceResetClearsState(t *testing.T) {
	w := NewWorkspace(5, 3)
	for i := range w.State {
		w.State[i] = 42
	}
	for i := range w.AMSE {
		w.AMSE[i] = 7
	}
	w.Reset()
	for _, v := range w.State {
		if v != 0 {
			t.Fatalf("state not reset")
		}
	}
	for _, v := range w.AMSE {
		if v != 0 {
			t.Fatalf("amse not reset")
		}
	}
}
