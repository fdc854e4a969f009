package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

func init() {
	Register("ARIMA", func(p Params) (Forecaster, error) {
		return &arimaModel{p: p.Int("p", 1), d: p.Int("d", 1), q: p.Int("q", 1)}, nil
	})
	Register("AutoARIMA", func(Params) (Forecaster, error) { return &autoARIMAModel{}, nil })
}

// arimaModel is ARIMA(p,d,q): Yule-Walker/Levinson-Durbin AR fitting,
// autocorrelation-based MA fitting, and a proper recursive forecast that
// integrates the stationary-scale prediction back through each
// differencing level.
type arimaModel struct {
	p, d, q int

	arCoeffs   []float64
	maCoeffs   []float64
	mean       float64
	lastCenter []float64 // last p centered stationary values
	lastErrors []float64 // last q residuals
	tails      []float64 // tails[k] = last actual value at differencing level k, k=0..d
}

func (m *arimaModel) Fit(values []float64) error {
	const op = "ARIMA.Fit"
	if m.d < 0 || m.d > 2 {
		return engerr.New(engerr.InvalidArgument, op, "d must be in [0,2]")
	}
	if m.p < 0 || m.q < 0 {
		return engerr.New(engerr.InvalidArgument, op, "p and q must be >= 0")
	}
	minPoints := maxInt(maxInt(m.p+m.d, m.q+m.d), 10)
	if len(values) < minPoints {
		return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("need at least %d points for ARIMA(%d,%d,%d), got %d", minPoints, m.p, m.d, m.q, len(values)))
	}

	cur := append([]float64(nil), values...)
	tails := make([]float64, m.d+1)
	tails[0] = cur[len(cur)-1]
	for k := 1; k <= m.d; k++ {
		next := make([]float64, len(cur)-1)
		for i := 0; i < len(cur)-1; i++ {
			next[i] = cur[i+1] - cur[i]
		}
		cur = next
		tails[k] = cur[len(cur)-1]
	}
	stationary := cur

	mean := computeMean(stationary)
	centered := make([]float64, len(stationary))
	for i, v := range stationary {
		centered[i] = v - mean
	}

	arCoeffs, err := fitAR(centered, m.p)
	if err != nil {
		return engerr.Wrap(engerr.NumericalFailure, op, "AR coefficient fit failed", err)
	}
	residuals := computeResiduals(centered, arCoeffs, m.p)
	maCoeffs, err := fitMA(residuals, m.q)
	if err != nil {
		return engerr.Wrap(engerr.NumericalFailure, op, "MA coefficient fit failed", err)
	}

	lastCenter := make([]float64, m.p)
	if m.p > 0 && len(centered) >= m.p {
		copy(lastCenter, centered[len(centered)-m.p:])
	}
	lastErrors := make([]float64, m.q)
	if m.q > 0 && len(residuals) >= m.q {
		copy(lastErrors, residuals[len(residuals)-m.q:])
	}

	m.arCoeffs, m.maCoeffs, m.mean = arCoeffs, maCoeffs, mean
	m.lastCenter, m.lastErrors, m.tails = lastCenter, lastErrors, tails
	return nil
}

func (m *arimaModel) Forecast(steps int) ([]float64, error) {
	const op = "ARIMA.Forecast"
	if m.tails == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}

	arHist := append([]float64(nil), m.lastCenter...)
	errHist := append([]float64(nil), m.lastErrors...)
	tails := append([]float64(nil), m.tails...)

	out := make([]float64, steps)
	for h := 0; h < steps; h++ {
		arPred := 0.0
		for i := 0; i < m.p && i < len(arHist); i++ {
			arPred += m.arCoeffs[i] * arHist[len(arHist)-1-i]
		}
		maPred := 0.0
		for j := 0; j < m.q && j < len(errHist); j++ {
			maPred += m.maCoeffs[j] * errHist[len(errHist)-1-j]
		}
		predCentered := arPred + maPred

		if m.p > 0 {
			arHist = append(arHist[1:], predCentered)
		}
		if m.q > 0 {
			// The realized error for a forecasted (not observed) step is
			// unknown; its expectation is zero, so it contributes nothing
			// to later MA terms once shifted in.
			errHist = append(errHist[1:], 0)
		}

		stationaryForecast := predCentered + m.mean
		out[h] = integrate(tails, stationaryForecast)
	}
	return out, nil
}

// integrate inverts d-order differencing for one forecasted value at the
// most-differenced level, walking back up through each level's running
// tail and updating it so the next call continues from this forecast.
func integrate(tails []float64, stationaryForecast float64) float64 {
	value := stationaryForecast
	for k := len(tails) - 1; k >= 1; k-- {
		value = tails[k-1] + value
		tails[k-1] = value
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// difference applies d-order differencing, used by arimaInSampleSSE to
// put a series on the differenced scale the fitted coefficients apply to.
func difference(series []float64, d int) []float64 {
	if d == 0 || len(series) == 0 {
		result := make([]float64, len(series))
		copy(result, series)
		return result
	}
	result := make([]float64, len(series)-1)
	for i := 0; i < len(series)-1; i++ {
		result[i] = series[i+1] - series[i]
	}
	if d > 1 {
		return difference(result, d-1)
	}
	return result
}

func computeMean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func computeVariance(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	mean := computeMean(series)
	var sumSq float64
	for _, v := range series {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(series))
}

// fitAR estimates AR coefficients via Yule-Walker equations solved with
// Levinson-Durbin recursion.
func fitAR(centered []float64, p int) ([]float64, error) {
	if p == 0 {
		return []float64{}, nil
	}
	variance := computeVariance(centered)
	if variance < 1e-10 {
		return make([]float64, p), nil
	}
	acf := make([]float64, p+1)
	for k := 0; k <= p; k++ {
		acf[k] = autocorr(centered, k)
	}
	coeffs, err := levinsonDurbin(acf, p)
	if err != nil {
		coeffs = make([]float64, p)
		coeffs[0] = 0.5
	}
	return coeffs, nil
}

func autocorr(series []float64, lag int) float64 {
	if lag < 0 || lag >= len(series) {
		return 0
	}
	n := len(series)
	mean := computeMean(series)
	var c0, ck float64
	for i := 0; i < n; i++ {
		c0 += (series[i] - mean) * (series[i] - mean)
	}
	for i := 0; i < n-lag; i++ {
		ck += (series[i] - mean) * (series[i+lag] - mean)
	}
	if c0 == 0 {
		return 0
	}
	return ck / c0
}

func levinsonDurbin(acf []float64, p int) ([]float64, error) {
	if p == 0 {
		return []float64{}, nil
	}
	phi := make([][]float64, p+1)
	for i := range phi {
		phi[i] = make([]float64, p+1)
	}
	v := acf[0]
	for k := 1; k <= p; k++ {
		num := acf[k]
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
		}
		if v == 0 {
			return nil, errors.New("numerical instability in Levinson-Durbin")
		}
		phi[k][k] = num / v
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
		v = v * (1 - phi[k][k]*phi[k][k])
		if v < 0 {
			return nil, errors.New("negative variance in Levinson-Durbin")
		}
	}
	coeffs := make([]float64, p)
	for i := 0; i < p; i++ {
		coeffs[i] = phi[p][i+1]
	}
	return coeffs, nil
}

func computeResiduals(centered []float64, arCoeffs []float64, p int) []float64 {
	if len(centered) <= p {
		return []float64{}
	}
	residuals := make([]float64, len(centered)-p)
	for t := p; t < len(centered); t++ {
		arPred := 0.0
		for i := 0; i < p && i < len(arCoeffs); i++ {
			arPred += arCoeffs[i] * centered[t-1-i]
		}
		residuals[t-p] = centered[t] - arPred
	}
	return residuals
}

func fitMA(residuals []float64, q int) ([]float64, error) {
	if q == 0 || len(residuals) == 0 {
		return []float64{}, nil
	}
	coeffs := make([]float64, q)
	for i := 0; i < q && i < len(residuals); i++ {
		coeffs[i] = autocorr(residuals, i+1)
	}
	for i := range coeffs {
		if math.Abs(coeffs[i]) > 1 {
			coeffs[i] = coeffs[i] / math.Abs(coeffs[i]) * 0.9
		}
	}
	return coeffs, nil
}

// autoARIMAModel tries a small grid of (p,d,q) orders and keeps the one
// with the lowest in-sample residual SSE, standing in for a full
// AIC-stepwise search.
type autoARIMAModel struct {
	chosen *arimaModel
}

func (m *autoARIMAModel) Fit(values []float64) error {
	const op = "AutoARIMA.Fit"
	type order struct{ p, d, q int }
	orders := []order{{1, 1, 0}, {0, 1, 1}, {1, 1, 1}, {2, 1, 0}, {1, 0, 1}, {2, 1, 2}}

	var best *arimaModel
	bestSSE := -1.0
	for _, o := range orders {
		candidate := &arimaModel{p: o.p, d: o.d, q: o.q}
		if err := candidate.Fit(values); err != nil {
			continue
		}
		sse := arimaInSampleSSE(candidate, values)
		if bestSSE < 0 || sse < bestSSE {
			best, bestSSE = candidate, sse
		}
	}
	if best == nil {
		return engerr.New(engerr.NumericalFailure, op, "no ARIMA order fit successfully")
	}
	m.chosen = best
	return nil
}

func arimaInSampleSSE(m *arimaModel, values []float64) float64 {
	stationary := difference(values, m.d)
	centered := make([]float64, len(stationary))
	for i, v := range stationary {
		centered[i] = v - m.mean
	}
	residuals := computeResiduals(centered, m.arCoeffs, m.p)
	sse := 0.0
	for _, r := range residuals {
		sse += r * r
	}
	return sse
}

func (m *autoARIMAModel) Forecast(steps int) ([]float64, error) {
	const op = "AutoARIMA.Forecast"
	if m.chosen == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	return m.chosen.Forecast(steps)
}
