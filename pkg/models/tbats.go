package models

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

func init() {
	Register("TBATS", func(p Params) (Forecaster, error) {
		return &tbatsModel{period: p.Int("seasonal_period", 0), harmonics: p.Int("harmonics", 2)}, nil
	})
	Register("AutoTBATS", func(Params) (Forecaster, error) { return &autoSeasonalModel{build: newTBATS}, nil })
}

func newTBATS(period int) Forecaster { return &tbatsModel{period: period, harmonics: 2} }

// tbatsModel is a Fourier-term regression stand-in for TBATS: a linear
// trend plus a bank of sine/cosine harmonics at the seasonal period,
// fit by ordinary least squares. The full TBATS additionally fits a
// Box-Cox transform and an ARMA error model; those require a nonlinear
// likelihood optimizer this engine's catalog does not otherwise carry,
// so they are left as a documented simplification (see DESIGN.md).
type tbatsModel struct {
	period    int
	harmonics int

	coeffs []float64 // [intercept, trend, (sin,cos) x harmonics]
	n      int
}

func (m *tbatsModel) Fit(values []float64) error {
	const op = "TBATS.Fit"
	n := len(values)
	if n < 4 {
		return engerr.New(engerr.InvalidArgument, op, "series too short")
	}
	if m.harmonics < 1 {
		m.harmonics = 1
	}
	m.n = n

	hasSeason := m.period > 1 && n >= 2*m.period
	cols := 2
	if hasSeason {
		cols += 2 * m.harmonics
	}

	design := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, cols)
		row[0] = 1
		row[1] = float64(i)
		if hasSeason {
			for h := 1; h <= m.harmonics; h++ {
				angle := 2 * math.Pi * float64(h) * float64(i) / float64(m.period)
				row[2+2*(h-1)] = math.Sin(angle)
				row[2+2*(h-1)+1] = math.Cos(angle)
			}
		}
		design[i] = row
	}

	coeffs, err := leastSquares(design, values)
	if err != nil {
		return engerr.Wrap(engerr.NumericalFailure, op, "least squares failed", err)
	}
	m.coeffs = coeffs
	return nil
}

func (m *tbatsModel) Forecast(steps int) ([]float64, error) {
	const op = "TBATS.Forecast"
	if m.coeffs == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	out := make([]float64, steps)
	hasSeason := len(m.coeffs) > 2
	for h := 1; h <= steps; h++ {
		idx := float64(m.n - 1 + h)
		value := m.coeffs[0] + m.coeffs[1]*idx
		if hasSeason {
			for hm := 1; hm <= m.harmonics; hm++ {
				angle := 2 * math.Pi * float64(hm) * idx / float64(m.period)
				value += m.coeffs[2+2*(hm-1)]*math.Sin(angle) + m.coeffs[2+2*(hm-1)+1]*math.Cos(angle)
			}
		}
		out[h-1] = value
	}
	return out, nil
}

// leastSquares solves the normal equations (X'X)b = X'y via Gauss-Jordan
// elimination with partial pivoting. Column counts here stay small
// (intercept + trend + a handful of Fourier pairs), so a dense solve is
// both simple and fast enough.
func leastSquares(design [][]float64, y []float64) ([]float64, error) {
	cols := len(design[0])
	xtx := make([][]float64, cols)
	xty := make([]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	for i, row := range design {
		for a := 0; a < cols; a++ {
			xty[a] += row[a] * y[i]
			for b := 0; b < cols; b++ {
				xtx[a][b] += row[a] * row[b]
			}
		}
	}
	return solveLinearSystem(xtx, xty)
}

func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, n+1)
		copy(aug[i], a[i])
		aug[i][n] = b[i]
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(aug[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if best < 1e-12 {
			return nil, errSingularMatrix
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pivotVal := aug[col][col]
		for c := col; c <= n; c++ {
			aug[col][c] /= pivotVal
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for c := col; c <= n; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = aug[i][n]
	}
	return out, nil
}

var errSingularMatrix = engerr.New(engerr.NumericalFailure, "solveLinearSystem", "design matrix is singular")
