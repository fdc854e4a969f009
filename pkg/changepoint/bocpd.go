// Package changepoint implements Bayesian online changepoint detection
// (§4.L): a Normal-Gamma conjugate prior over per-segment mean and
// precision, tracking a run-length posterior online as each observation
// arrives.
package changepoint

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Config parameterizes the detector. Hazard is the constant hazard rate
// 1/lambda: the prior probability of a changepoint at any step.
type Config struct {
	Hazard float64
	Mu0    float64
	Kappa0 float64
	Alpha0 float64
	Beta0  float64
}

// DefaultConfig leaves Mu0 at 0 (callers set it, typically to the series
// mean); Kappa0/Alpha0/Beta0 use the weakly-informative defaults
// common to Normal-Gamma priors over unknown mean and precision.
func DefaultConfig(hazardLambda float64) Config {
	return Config{
		Hazard: 1 / hazardLambda,
		Kappa0: 1,
		Alpha0: 1,
		Beta0:  1,
	}
}

type normalGamma struct {
	mu, kappa, alpha, beta float64
}

func (p normalGamma) predictiveLogPDF(x float64) float64 {
	dof := 2 * p.alpha
	scale := math.Sqrt(p.beta * (p.kappa + 1) / (p.alpha * p.kappa))
	return studentTLogPDF(x, dof, p.mu, scale)
}

func (p normalGamma) update(x float64) normalGamma {
	newMu := (p.kappa*p.mu + x) / (p.kappa + 1)
	newKappa := p.kappa + 1
	newAlpha := p.alpha + 0.5
	newBeta := p.beta + p.kappa*(x-p.mu)*(x-p.mu)/(2*(p.kappa+1))
	return normalGamma{mu: newMu, kappa: newKappa, alpha: newAlpha, beta: newBeta}
}

func studentTLogPDF(x, dof, loc, scale float64) float64 {
	z := (x - loc) / scale
	return lgamma((dof+1)/2) - lgamma(dof/2) -
		0.5*math.Log(dof*math.Pi) - math.Log(scale) -
		(dof+1)/2*math.Log(1+z*z/dof)
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// Result is the detector's output over a series of length n.
type Result struct {
	IsChangepoint []bool      // len n
	RunLengthMAP  []int       // len n: argmax run length at each step
	Probabilities [][]float64 // len n, ragged: run-length posterior at each step
}

// pruneThreshold discards run-length hypotheses with negligible posterior
// mass so the distribution doesn't grow unbounded on long series.
const pruneThreshold = 1e-9

// Run performs online changepoint detection over values, returning a flag
// per step. Whenever the MAP run length fails to grow from one step to the
// next (RunLengthMAP[t] <= RunLengthMAP[t-1]), the first index of the
// segment that MAP run length implies, t-RunLengthMAP[t]+1, is flagged as
// the start of a new segment.
func Run(values []float64, cfg Config) (Result, error) {
	const op = "changepoint.Run"
	if len(values) == 0 {
		return Result{}, engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	if cfg.Hazard <= 0 || cfg.Hazard >= 1 {
		return Result{}, engerr.New(engerr.InvalidArgument, op, "hazard must be in (0,1)")
	}

	n := len(values)
	result := Result{
		IsChangepoint: make([]bool, n),
		RunLengthMAP:  make([]int, n),
		Probabilities: make([][]float64, n),
	}

	prior := normalGamma{mu: cfg.Mu0, kappa: cfg.Kappa0, alpha: cfg.Alpha0, beta: cfg.Beta0}

	// probs[r] is P(run length = r | x_1..x_t); params[r] the posterior for
	// that hypothesis's segment so far.
	probs := []float64{1.0}
	params := []normalGamma{prior}

	for t := 0; t < n; t++ {
		x := values[t]
		predLogLik := make([]float64, len(probs))
		for r := range probs {
			predLogLik[r] = params[r].predictiveLogPDF(x)
		}

		growth := make([]float64, len(probs)+1)
		maxLog := math.Inf(-1)
		for r := range probs {
			lp := math.Log(probs[r]) + predLogLik[r]
			if lp > maxLog {
				maxLog = lp
			}
		}
		// Changepoint mass: sum over r of probs[r]*lik[r]*hazard, landing
		// in growth[0]; continuation mass: probs[r]*lik[r]*(1-hazard) in
		// growth[r+1].
		cpMass := 0.0
		for r := range probs {
			lik := math.Exp(predLogLik[r])
			mass := probs[r] * lik
			growth[r+1] = mass * (1 - cfg.Hazard)
			cpMass += mass * cfg.Hazard
		}
		growth[0] = cpMass

		total := 0.0
		for _, g := range growth {
			total += g
		}
		if total <= 0 || math.IsNaN(total) {
			return Result{}, engerr.New(engerr.NumericalFailure, op, "run-length posterior collapsed to zero mass")
		}
		for i := range growth {
			growth[i] /= total
		}

		newParams := make([]normalGamma, len(growth))
		newParams[0] = prior // run length 0 always resets to the prior
		for r := range probs {
			newParams[r+1] = params[r].update(x)
		}

		probs, params = pruneRunLengths(growth, newParams)

		argmax := 0
		best := probs[0]
		for r, p := range probs {
			if p > best {
				best = p
				argmax = r
			}
		}
		result.RunLengthMAP[t] = argmax
		if t > 0 && argmax <= result.RunLengthMAP[t-1] {
			start := t - argmax + 1
			if start > t {
				start = t
			}
			if start >= 0 {
				result.IsChangepoint[start] = true
			}
		}
		snapshot := make([]float64, len(probs))
		copy(snapshot, probs)
		result.Probabilities[t] = snapshot
	}

	return result, nil
}

func pruneRunLengths(probs []float64, params []normalGamma) ([]float64, []normalGamma) {
	outP := probs[:0:0]
	outQ := params[:0:0]
	for i, p := range probs {
		if p >= pruneThreshold || i == 0 {
			outP = append(outP, p)
			outQ = append(outQ, params[i])
		}
	}
	total := 0.0
	for _, p := range outP {
		total += p
	}
	if total > 0 {
		for i := range outP {
			outP[i] /= total
		}
	}
	return outP, outQ
}
