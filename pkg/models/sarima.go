package models

import (
	"fmt"

	"github.com/anofox/tsforge/pkg/engerr"
)

func init() {
	Register("SARIMA", func(p Params) (Forecaster, error) {
		return &sarimaModel{
			p: p.Int("p", 1), d: p.Int("d", 1), q: p.Int("q", 1),
			seasonalP: p.Int("seasonal_p", 0), seasonalD: p.Int("seasonal_d", 0), seasonalQ: p.Int("seasonal_q", 0),
			period: p.Int("seasonal_period", 0),
		}, nil
	})
}

// sarimaModel is SARIMA(p,d,q)(P,D,Q)[s]: non-seasonal differencing followed
// by seasonal (lag-s) differencing, AR/MA coefficients fit via the same
// Yule-Walker/Levinson-Durbin and autocorrelation idiom as arimaModel, plus a
// seasonal AR/MA pair fit from the seasonal-lag autocorrelation structure.
// Forecasting recurses both the regular and seasonal lag terms step by step
// and integrates back through both differencing levels, the same pattern
// arimaModel.Forecast uses for the non-seasonal case.
type sarimaModel struct {
	p, d, q                         int
	seasonalP, seasonalD, seasonalQ int
	period                          int

	arCoeffs         []float64
	maCoeffs         []float64
	seasonalARCoeffs []float64
	seasonalMACoeffs []float64
	mean             float64

	arHist      []float64   // last values on the doubly-differenced, centered scale
	errHist     []float64   // last residuals on that scale
	tails       []float64   // non-seasonal differencing tails, tails[k] = last value at level k
	seasonTails [][]float64 // seasonal differencing tails, one length-period slice per seasonal diff level
}

func (m *sarimaModel) Fit(values []float64) error {
	const op = "SARIMA.Fit"
	if m.d < 0 || m.d > 2 || m.seasonalD < 0 || m.seasonalD > 1 {
		return engerr.New(engerr.InvalidArgument, op, "d must be in [0,2] and seasonal_d in [0,1]")
	}
	if m.p < 0 || m.q < 0 || m.seasonalP < 0 || m.seasonalQ < 0 {
		return engerr.New(engerr.InvalidArgument, op, "orders must be >= 0")
	}
	if m.seasonalP > 0 || m.seasonalQ > 0 || m.seasonalD > 0 {
		if m.period < 2 {
			return engerr.New(engerr.InvalidArgument, op, "seasonal_period must be >= 2 when a seasonal term is requested")
		}
	}
	minPoints := maxInt(maxInt(m.p+m.d, m.q+m.d), maxInt(2*m.period, 20))
	if len(values) < minPoints {
		return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("need at least %d points for this SARIMA order, got %d", minPoints, len(values)))
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

	var seasonTails [][]float64
	if m.seasonalD > 0 {
		seasonTails = make([][]float64, m.seasonalD)
		for k := 0; k < m.seasonalD; k++ {
			if len(cur) <= m.period {
				return engerr.New(engerr.InvalidArgument, op, "series too short for seasonal differencing at this period")
			}
			tail := make([]float64, m.period)
			copy(tail, cur[len(cur)-m.period:])
			seasonTails[k] = tail
			next := make([]float64, len(cur)-m.period)
			for i := 0; i < len(cur)-m.period; i++ {
				next[i] = cur[i+m.period] - cur[i]
			}
			cur = next
		}
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
	var seasonalARCoeffs []float64
	if m.seasonalP > 0 {
		seasonalARCoeffs, err = fitSeasonalAR(centered, m.seasonalP, m.period)
		if err != nil {
			return engerr.Wrap(engerr.NumericalFailure, op, "seasonal AR coefficient fit failed", err)
		}
	}

	residuals := computeSeasonalResiduals(centered, arCoeffs, seasonalARCoeffs, m.p, m.seasonalP, m.period)
	maCoeffs, err := fitMA(residuals, m.q)
	if err != nil {
		return engerr.Wrap(engerr.NumericalFailure, op, "MA coefficient fit failed", err)
	}
	var seasonalMACoeffs []float64
	if m.seasonalQ > 0 {
		seasonalMACoeffs, err = fitSeasonalMA(residuals, m.seasonalQ, m.period)
		if err != nil {
			return engerr.Wrap(engerr.NumericalFailure, op, "seasonal MA coefficient fit failed", err)
		}
	}

	histLen := m.p
	if s := m.seasonalP * m.period; s > histLen {
		histLen = s
	}
	arHist := make([]float64, histLen)
	if histLen > 0 && len(centered) >= histLen {
		copy(arHist, centered[len(centered)-histLen:])
	}
	errLen := m.q
	if s := m.seasonalQ * m.period; s > errLen {
		errLen = s
	}
	errHist := make([]float64, errLen)
	if errLen > 0 && len(residuals) >= errLen {
		copy(errHist, residuals[len(residuals)-errLen:])
	}

	m.arCoeffs, m.maCoeffs = arCoeffs, maCoeffs
	m.seasonalARCoeffs, m.seasonalMACoeffs = seasonalARCoeffs, seasonalMACoeffs
	m.mean = mean
	m.arHist, m.errHist, m.tails, m.seasonTails = arHist, errHist, tails, seasonTails
	return nil
}

func (m *sarimaModel) Forecast(steps int) ([]float64, error) {
	const op = "SARIMA.Forecast"
	if m.tails == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}

	arHist := append([]float64(nil), m.arHist...)
	errHist := append([]float64(nil), m.errHist...)
	tails := append([]float64(nil), m.tails...)
	var seasonTails [][]float64
	for _, t := range m.seasonTails {
		seasonTails = append(seasonTails, append([]float64(nil), t...))
	}

	out := make([]float64, steps)
	for h := 0; h < steps; h++ {
		pred := 0.0
		for i := 0; i < m.p && i < len(arHist); i++ {
			pred += m.arCoeffs[i] * arHist[len(arHist)-1-i]
		}
		for i := 0; i < m.seasonalP; i++ {
			lag := (i + 1) * m.period
			if lag <= len(arHist) {
				pred += m.seasonalARCoeffs[i] * arHist[len(arHist)-lag]
			}
		}
		for j := 0; j < m.q && j < len(errHist); j++ {
			pred += m.maCoeffs[j] * errHist[len(errHist)-1-j]
		}
		for j := 0; j < m.seasonalQ; j++ {
			lag := (j + 1) * m.period
			if lag <= len(errHist) {
				pred += m.seasonalMACoeffs[j] * errHist[len(errHist)-lag]
			}
		}

		if len(arHist) > 0 {
			arHist = append(arHist[1:], pred)
		}
		if len(errHist) > 0 {
			// The realized error for an unobserved future step has expectation
			// zero, so it drops out of later AR/MA terms once shifted in.
			errHist = append(errHist[1:], 0)
		}

		seasonalForecast := pred + m.mean
		for k := len(seasonTails) - 1; k >= 0; k-- {
			tail := seasonTails[k]
			v := tail[0] + seasonalForecast
			seasonalForecast = v
			seasonTails[k] = append(tail[1:], v)
		}
		out[h] = integrate(tails, seasonalForecast)
	}
	return out, nil
}

// fitSeasonalAR estimates seasonal AR coefficients from the autocorrelation
// at lags that are whole multiples of the period, solved with the same
// Levinson-Durbin recursion fitAR uses for the non-seasonal case.
func fitSeasonalAR(centered []float64, seasonalP, period int) ([]float64, error) {
	acf := make([]float64, seasonalP+1)
	for k := 0; k <= seasonalP; k++ {
		acf[k] = autocorr(centered, k*period)
	}
	coeffs, err := levinsonDurbin(acf, seasonalP)
	if err != nil {
		coeffs = make([]float64, seasonalP)
		coeffs[0] = 0.3
	}
	return coeffs, nil
}

// fitSeasonalMA estimates seasonal MA coefficients directly from the
// residual autocorrelation at seasonal-lag multiples, clamped to keep the
// implied moving-average process invertible.
func fitSeasonalMA(residuals []float64, seasonalQ, period int) ([]float64, error) {
	coeffs := make([]float64, seasonalQ)
	for i := 0; i < seasonalQ; i++ {
		c := autocorr(residuals, (i+1)*period)
		if c > 0.9 {
			c = 0.9
		} else if c < -0.9 {
			c = -0.9
		}
		coeffs[i] = c
	}
	return coeffs, nil
}

// computeSeasonalResiduals is computeResiduals extended with a seasonal AR
// term, used both to produce the MA fitting series and as errHist's source.
func computeSeasonalResiduals(centered []float64, arCoeffs, seasonalARCoeffs []float64, p, seasonalP, period int) []float64 {
	start := p
	if s := seasonalP * period; s > start {
		start = s
	}
	if len(centered) <= start {
		return []float64{}
	}
	residuals := make([]float64, len(centered)-start)
	for t := start; t < len(centered); t++ {
		pred := 0.0
		for i := 0; i < p && i < len(arCoeffs); i++ {
			pred += arCoeffs[i] * centered[t-1-i]
		}
		for i := 0; i < seasonalP; i++ {
			lag := (i + 1) * period
			if t-lag >= 0 {
				pred += seasonalARCoeffs[i] * centered[t-lag]
			}
		}
		residuals[t-start] = centered[t] - pred
	}
	return residuals
}
