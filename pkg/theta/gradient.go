// Package theta provides the numerical central-difference gradient harness
// used by forecasters that have no analytical derivative (the Theta/Pegels
// family; see §4.E), plus the reusable scratch workspace their objective
// evaluations share across perturbations.
package theta

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

// ParamKind selects the per-parameter step-size rule. Most smoothing
// parameters use the generic rule; alpha and theta get tighter bounds so a
// perturbation never pushes the evaluation outside the model's valid
// domain.
type ParamKind int

const (
	Generic ParamKind = iota
	AlphaBounded
	ThetaBounded
)

// Step computes the adaptive central-difference step for parameter value x
// under the given kind (§4.E).
func Step(kind ParamKind, x float64) float64 {
	eps := math.Max(1e-5, 1e-5*math.Abs(x))
	switch kind {
	case AlphaBounded:
		eps = 1e-5
		if bound := 0.99 - x; bound < eps {
			eps = math.Max(bound, 1e-10)
		}
	case ThetaBounded:
		if bound := 10 - x; bound < eps {
			eps = math.Max(bound, 1e-10)
		}
	}
	return eps
}

// Objective evaluates the scalar loss (typically MSE) at a parameter
// vector. Implementations are expected to reuse a *Workspace across calls
// from the same Gradient invocation rather than allocate per call.
type Objective func(x []float64) (float64, error)

// Result is the outcome of one Gradient call: the gradient vector and, for
// diagnostics, which parameters fell back to a one-sided difference or to
// a zero gradient because neither direction was evaluable.
type Result struct {
	Grad         []float64
	Backward     []bool // true where the central difference fell back to backward-only
	ZeroFallback []bool // true where neither direction was finite and grad[i] was forced to 0
}

// Gradient computes the central-difference gradient of objective at x,
// using kinds[i] to pick the step rule for parameter i. Per §4.E: if
// f(x+eps) is non-finite, fall back to a backward difference; if that is
// also non-finite, emit a zero gradient for that parameter and flag it so
// the caller can surface the condition rather than silently proceeding.
func Gradient(objective Objective, x []float64, kinds []ParamKind) (Result, error) {
	const op = "theta.Gradient"
	n := len(x)
	if len(kinds) != n {
		return Result{}, engerr.New(engerr.InvalidArgument, op, "kinds length must match x length")
	}

	base, err := objective(x)
	if err != nil {
		return Result{}, engerr.Wrap(engerr.NumericalFailure, op, "base objective evaluation failed", err)
	}
	if math.IsNaN(base) || math.IsInf(base, 0) {
		return Result{}, engerr.New(engerr.NumericalFailure, op, "base objective value is non-finite")
	}

	res := Result{
		Grad:         make([]float64, n),
		Backward:     make([]bool, n),
		ZeroFallback: make([]bool, n),
	}

	perturbed := make([]float64, n)
	copy(perturbed, x)

	for i := 0; i < n; i++ {
		eps := Step(kinds[i], x[i])

		perturbed[i] = x[i] + eps
		fPlus, errPlus := objective(perturbed)
		plusFinite := errPlus == nil && !math.IsNaN(fPlus) && !math.IsInf(fPlus, 0)

		perturbed[i] = x[i] - eps
		fMinus, errMinus := objective(perturbed)
		minusFinite := errMinus == nil && !math.IsNaN(fMinus) && !math.IsInf(fMinus, 0)

		perturbed[i] = x[i]

		switch {
		case plusFinite && minusFinite:
			res.Grad[i] = (fPlus - fMinus) / (2 * eps)
		case minusFinite:
			res.Grad[i] = (base - fMinus) / eps
			res.Backward[i] = true
		default:
			res.Grad[i] = 0
			res.ZeroFallback[i] = true
		}
	}

	return res, nil
}

// Workspace is the arena-allocated scratch a Theta/Pegels objective reuses
// across every perturbation within one Gradient call, avoiding an
// allocation per central-difference evaluation. The caller owns its
// lifetime and must call Reset between independent fits.
type Workspace struct {
	State       []float64 // len n: level/state history scratch
	Innovations []float64 // len n
	AMSE        []float64 // len nmse: accumulated mean squared error per horizon
}

// NewWorkspace allocates a workspace sized for series length n and nmse
// forecast horizons.
func NewWorkspace(n, nmse int) *Workspace {
	return &Workspace{
		State:       make([]float64, n),
		Innovations: make([]float64, n),
		AMSE:        make([]float64, nmse),
	}
}

// Reset zeroes the workspace for reuse without reallocating.
func (w *Workspace) Reset() {
	for i := range w.State {
		w.State[i] = 0
	}
	for i := range w.Innovations {
		w.Innovations[i] = 0
	}
	for i := range w.AMSE {
		w.AMSE[i] = 0
	}
}
