package models

import (
	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/optimize"
	thetapkg "github.com/anofox/tsforge/pkg/theta"
)

func init() {
	Register("Theta", func(Params) (Forecaster, error) { return &thetaModel{theta: 2, alpha: 0.2}, nil })
	Register("OptimizedTheta", func(Params) (Forecaster, error) { return &thetaModel{theta: 2, alpha: 0.2, optimizeAlpha: true}, nil })
	Register("DynamicTheta", func(Params) (Forecaster, error) { return &thetaModel{alpha: 0.2, dynamicTheta: true}, nil })
	Register("DynamicOptimizedTheta", func(Params) (Forecaster, error) {
		return &thetaModel{alpha: 0.2, dynamicTheta: true, optimizeAlpha: true}, nil
	})
	Register("AutoTheta", func(Params) (Forecaster, error) { return &autoThetaModel{}, nil })
}

// thetaModel implements the classic Theta method (Assimakopoulos &
// Nikolopoulos): decompose the series into a linear trend line (theta=0)
// and an amplified-curvature line (theta=θ), forecast the latter with
// simple exponential smoothing, and combine both lines with equal
// weight. DynamicTheta searches θ instead of fixing it at 2;
// OptimizedTheta fits the SES smoothing constant instead of using a
// fixed default.
type thetaModel struct {
	theta         float64
	alpha         float64
	dynamicTheta  bool
	optimizeAlpha bool

	a, b       float64 // fitted linear trend: a + b*index
	n          int
	finalLevel float64
}

func (m *thetaModel) Fit(values []float64) error {
	const op = "Theta.Fit"
	n := len(values)
	if n < 3 {
		return engerr.New(engerr.InvalidArgument, op, "need at least 3 observations")
	}
	m.n = n
	m.a, m.b = linearRegression(values)

	theta := m.theta
	if m.dynamicTheta {
		theta = bestTheta(values, m.a, m.b, m.optimizeAlpha, m.alpha)
	}
	m.theta = theta

	thetaLine := thetaLine(values, m.a, m.b, theta)
	alpha := m.alpha
	if m.optimizeAlpha {
		alpha = fitSESAlpha(thetaLine, alpha)
	}
	m.alpha = alpha
	m.finalLevel = sesFinalLevel(thetaLine, alpha)
	return nil
}

func (m *thetaModel) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		trendForecast := m.a + m.b*float64(m.n-1+h)
		out[h-1] = 0.5*m.finalLevel + 0.5*trendForecast
	}
	return out, nil
}

func linearRegression(values []float64) (a, b float64) {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n, 0
	}
	b = (n*sumXY - sumX*sumY) / denom
	a = (sumY - b*sumX) / n
	return a, b
}

func thetaLine(values []float64, a, b, theta float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		trend := a + b*float64(i)
		out[i] = theta*v + (1-theta)*trend
	}
	return out
}

func sesFinalLevel(values []float64, alpha float64) float64 {
	level := values[0]
	for i := 1; i < len(values); i++ {
		level = alpha*values[i] + (1-alpha)*level
	}
	return level
}

func sesSSE(values []float64, alpha float64) float64 {
	level := values[0]
	sse := 0.0
	for i := 1; i < len(values); i++ {
		e := values[i] - level
		sse += e * e
		level = alpha*values[i] + (1-alpha)*level
	}
	return sse
}

// fitSESAlpha optimizes the smoothing constant against one-step-ahead SSE,
// using pkg/theta's central-difference harness for the gradient (SES has
// no convenient closed-form derivative worth hand-deriving for a single
// scalar parameter) and pkg/optimize's box-constrained driver to respect
// alpha in [0,1].
func fitSESAlpha(values []float64, initial float64) float64 {
	objective := func(x []float64) (float64, error) { return sesSSE(values, x[0]), nil }
	problem := optimize.Problem{
		Lower: []float64{1e-4},
		Upper: []float64{0.999},
		Evaluate: func(x []float64) (float64, []float64, error) {
			f, err := objective(x)
			if err != nil {
				return 0, nil, err
			}
			grad, err := thetapkg.Gradient(objective, x, []thetapkg.ParamKind{thetapkg.AlphaBounded})
			if err != nil {
				return 0, nil, err
			}
			return f, grad.Grad, nil
		},
	}
	result, err := optimize.Minimize(problem, []float64{initial}, optimize.DefaultConfig())
	if err != nil {
		return initial
	}
	return result.X[0]
}

func bestTheta(values []float64, a, b float64, optimizeAlpha bool, defaultAlpha float64) float64 {
	best := 2.0
	bestSSE := -1.0
	for theta := 1.0; theta <= 3.0; theta += 0.2 {
		line := thetaLine(values, a, b, theta)
		alpha := defaultAlpha
		if optimizeAlpha {
			alpha = fitSESAlpha(line, defaultAlpha)
		}
		sse := sesSSE(line, alpha)
		if bestSSE < 0 || sse < bestSSE {
			best, bestSSE = theta, sse
		}
	}
	return best
}

// autoThetaModel fits the four Theta variants and keeps the one with the
// lowest in-sample residual SSE over the theta=2 (or dynamic) line.
type autoThetaModel struct {
	chosen *thetaModel
}

func (m *autoThetaModel) Fit(values []float64) error {
	const op = "AutoTheta.Fit"
	candidates := []*thetaModel{
		{theta: 2, alpha: 0.2},
		{theta: 2, alpha: 0.2, optimizeAlpha: true},
		{alpha: 0.2, dynamicTheta: true},
		{alpha: 0.2, dynamicTheta: true, optimizeAlpha: true},
	}
	var best *thetaModel
	bestSSE := -1.0
	for _, c := range candidates {
		if err := c.Fit(values); err != nil {
			continue
		}
		line := thetaLine(values, c.a, c.b, c.theta)
		sse := sesSSE(line, c.alpha)
		if bestSSE < 0 || sse < bestSSE {
			best, bestSSE = c, sse
		}
	}
	if best == nil {
		return engerr.New(engerr.NumericalFailure, op, "no theta variant fit successfully")
	}
	m.chosen = best
	return nil
}

func (m *autoThetaModel) Forecast(steps int) ([]float64, error) {
	const op = "AutoTheta.Forecast"
	if m.chosen == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	return m.chosen.Forecast(steps)
}
