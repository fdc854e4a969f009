// Package optimize implements a box-constrained L-BFGS driver (§4.F): the
// two-loop recursion for the inverse-Hessian action, a backtracking
// Armijo line search with a Wolfe curvature safeguard on history updates,
// and projection onto the feasible box at every candidate point.
package optimize

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Config holds the driver's tunables; all have the spec's documented
// defaults.
type Config struct {
	MaxIterations      int
	AbsTol             float64
	RelTol             float64
	Memory             int // L-BFGS history depth, default 10
	Armijo             float64
	Wolfe              float64
	MaxLineSearchSteps int
}

// DefaultConfig returns the driver's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations:      200,
		AbsTol:             1e-8,
		RelTol:             1e-10,
		Memory:             10,
		Armijo:             1e-4,
		Wolfe:              0.9,
		MaxLineSearchSteps: 20,
	}
}

// Evaluator computes the objective and its gradient at x. Implementations
// must return a non-finite value through the error return or a NaN/Inf
// float, never panic.
type Evaluator func(x []float64) (f float64, grad []float64, err error)

// Problem bundles the objective with its box constraints. Lower and Upper
// must have the same length as the parameter vector; use -Inf/+Inf for an
// unconstrained component.
type Problem struct {
	Evaluate Evaluator
	Lower    []float64
	Upper    []float64
}

// Result is the driver's outcome.
type Result struct {
	X          []float64
	F          float64
	Grad       []float64
	Iterations int
	Converged  bool
	Message    string
	// AtBoundary[i] is true when X[i] sits on a bound and the gradient
	// pushes further outward, the condition callers use to decide whether
	// to re-initialize the search from the interior.
	AtBoundary []bool
}

type historyPair struct {
	s, y []float64
	rho  float64
}

// Minimize finds a local minimizer of problem.Evaluate within the box
// [Lower, Upper], starting from x0 (projected onto the box first).
func Minimize(problem Problem, x0 []float64, cfg Config) (Result, error) {
	const op = "optimize.Minimize"
	n := len(x0)
	if len(problem.Lower) != n || len(problem.Upper) != n {
		return Result{}, engerr.New(engerr.InvalidArgument, op, "bounds length must match parameter length")
	}
	if cfg.Memory <= 0 {
		cfg.Memory = 10
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 200
	}
	if cfg.MaxLineSearchSteps <= 0 {
		cfg.MaxLineSearchSteps = 20
	}

	x := project(cloneVec(x0), problem.Lower, problem.Upper)
	f, g, err := problem.Evaluate(x)
	if err != nil || nonFinite(f) {
		return bestEffortResult(x, f, g, problem, 0, false, "initial point is infeasible or non-finite"), nil
	}

	var history []historyPair
	bestX := cloneVec(x)
	bestF := f

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		if gradNorm(g, x, problem.Lower, problem.Upper) <= cfg.AbsTol {
			return finalize(x, f, g, problem, iter, true, "gradient tolerance reached"), nil
		}

		direction := twoLoopRecursion(g, history)
		clampActiveSet(direction, x, g, problem.Lower, problem.Upper)

		maxAlpha := maxStepInBox(x, direction, problem.Lower, problem.Upper)
		if maxAlpha <= 0 {
			return finalize(x, f, g, problem, iter, true, "at box boundary with no feasible descent"), nil
		}

		alpha, newX, newF, newG, gd, ok := backtrackingLineSearch(problem, x, f, g, direction, maxAlpha, cfg)
		if !ok {
			return finalize(bestX, bestF, g, problem, iter, false, "line search failed to find a descent step"), nil
		}
		_ = alpha

		s := subVec(newX, x)
		y := subVec(newG, g)
		sy := dotVec(s, y)
		// Wolfe curvature safeguard: only trust the new (s, y) pair for the
		// inverse-Hessian update when the directional derivative has grown
		// enough along direction (dotVec(newG, direction) >= cfg.Wolfe*gd,
		// gd being the negative descent-direction derivative at x); without
		// it a step accepted on Armijo decrease alone can still corrupt the
		// history with a non-positive-definite update.
		wolfeOK := dotVec(newG, direction) >= cfg.Wolfe*gd
		if sy > 1e-10*math.Max(1, normVec(s)*normVec(y)) && wolfeOK {
			history = append(history, historyPair{s: s, y: y, rho: 1 / sy})
			if len(history) > cfg.Memory {
				history = history[1:]
			}
		}

		converged := math.Abs(newF-f) <= cfg.AbsTol+cfg.RelTol*math.Abs(f)
		x, f, g = newX, newF, newG
		if f < bestF {
			bestF = f
			bestX = cloneVec(x)
		}
		if converged {
			return finalize(x, f, g, problem, iter+1, true, "objective tolerance reached"), nil
		}
	}

	return finalize(x, f, g, problem, cfg.MaxIterations, false, "maximum iterations reached"), nil
}

func finalize(x []float64, f float64, g []float64, problem Problem, iters int, converged bool, msg string) Result {
	xProj := project(cloneVec(x), problem.Lower, problem.Upper)
	return Result{
		X:          xProj,
		F:          f,
		Grad:       g,
		Iterations: iters,
		Converged:  converged,
		Message:    msg,
		AtBoundary: boundaryFlags(xProj, g, problem.Lower, problem.Upper),
	}
}

func bestEffortResult(x []float64, f float64, g []float64, problem Problem, iters int, converged bool, msg string) Result {
	return Result{
		X:          x,
		F:          f,
		Grad:       g,
		Iterations: iters,
		Converged:  converged,
		Message:    msg,
		AtBoundary: boundaryFlags(x, g, problem.Lower, problem.Upper),
	}
}

// boundaryFlags reports, per component, whether x sits on a bound with the
// gradient pushing further outward (minimizing means descent direction is
// -g, so at the lower bound a positive gradient wants to push x below the
// bound; at the upper bound a negative gradient wants to push x above it).
func boundaryFlags(x, g, lower, upper []float64) []bool {
	flags := make([]bool, len(x))
	for i := range x {
		atLower := x[i] <= lower[i]+1e-12
		atUpper := x[i] >= upper[i]-1e-12
		if atLower && g[i] > 0 {
			flags[i] = true
		}
		if atUpper && g[i] < 0 {
			flags[i] = true
		}
	}
	return flags
}

// twoLoopRecursion computes the L-BFGS search direction -H*g from the
// stored (s, y) history, using identity scaling when history is empty.
func twoLoopRecursion(g []float64, history []historyPair) []float64 {
	n := len(g)
	q := make([]float64, n)
	copy(q, g)

	m := len(history)
	alpha := make([]float64, m)
	for i := m - 1; i >= 0; i-- {
		h := history[i]
		alpha[i] = h.rho * dotVec(h.s, q)
		addScaled(q, h.y, -alpha[i])
	}

	gamma := 1.0
	if m > 0 {
		last := history[m-1]
		sy := dotVec(last.s, last.y)
		yy := dotVec(last.y, last.y)
		if yy > 0 {
			gamma = sy / yy
		}
	}
	for i := range q {
		q[i] *= gamma
	}

	for i := 0; i < m; i++ {
		h := history[i]
		beta := h.rho * dotVec(h.y, q)
		addScaled(q, h.s, alpha[i]-beta)
	}

	for i := range q {
		q[i] = -q[i]
	}
	return q
}

// clampActiveSet zeroes direction components that would immediately push
// an already-at-bound variable further outside the box (projected-gradient
// active-set handling).
func clampActiveSet(direction, x, g, lower, upper []float64) {
	for i := range direction {
		atLower := x[i] <= lower[i]+1e-12
		atUpper := x[i] >= upper[i]-1e-12
		if atLower && direction[i] < 0 {
			direction[i] = 0
		}
		if atUpper && direction[i] > 0 {
			direction[i] = 0
		}
	}
}

func maxStepInBox(x, direction, lower, upper []float64) float64 {
	maxAlpha := math.Inf(1)
	for i := range x {
		switch {
		case direction[i] > 0 && !math.IsInf(upper[i], 1):
			limit := (upper[i] - x[i]) / direction[i]
			if limit < maxAlpha {
				maxAlpha = limit
			}
		case direction[i] < 0 && !math.IsInf(lower[i], -1):
			limit := (lower[i] - x[i]) / direction[i]
			if limit < maxAlpha {
				maxAlpha = limit
			}
		}
	}
	if math.IsInf(maxAlpha, 1) {
		maxAlpha = 1e8
	}
	return maxAlpha
}

func backtrackingLineSearch(problem Problem, x []float64, f float64, g, direction []float64, maxAlpha float64, cfg Config) (alpha float64, newX []float64, newF float64, newG []float64, gd float64, ok bool) {
	gd = dotVec(g, direction)
	if gd >= 0 {
		return 0, nil, 0, nil, gd, false
	}
	alpha = math.Min(1.0, maxAlpha)
	for step := 0; step < cfg.MaxLineSearchSteps; step++ {
		candidate := project(addVec(x, scaleVec(direction, alpha)), problem.Lower, problem.Upper)
		fc, gc, err := problem.Evaluate(candidate)
		if err == nil && !nonFinite(fc) && fc <= f+cfg.Armijo*alpha*gd {
			return alpha, candidate, fc, gc, gd, true
		}
		alpha *= 0.5
	}
	return 0, nil, 0, nil, gd, false
}

func gradNorm(g, x, lower, upper []float64) float64 {
	sum := 0.0
	for i := range g {
		gi := g[i]
		atLower := x[i] <= lower[i]+1e-12
		atUpper := x[i] >= upper[i]-1e-12
		if (atLower && gi > 0) || (atUpper && gi < 0) {
			continue // projected gradient is zero along an active bound
		}
		sum += gi * gi
	}
	return math.Sqrt(sum)
}

func nonFinite(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

func project(x, lower, upper []float64) []float64 {
	for i := range x {
		if x[i] < lower[i] {
			x[i] = lower[i]
		}
		if x[i] > upper[i] {
			x[i] = upper[i]
		}
	}
	return x
}

func cloneVec(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

func subVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func addVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func scaleVec(a []float64, s float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * s
	}
	return out
}

func addScaled(dst, src []float64, s float64) {
	for i := range dst {
		dst[i] += s * src[i]
	}
}

func dotVec(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normVec(a []float64) float64 {
	return math.Sqrt(dotVec(a, a))
}
