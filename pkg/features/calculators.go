package features

import "math"

func init() {
	Register("mean", calcMean)
	Register("median", calcMedian)
	Register("minimum", calcMinimum)
	Register("maximum", calcMaximum)
	Register("sum_values", calcSumValues)
	Register("length", calcLength)
	Register("variance", calcVariance)
	Register("standard_deviation", calcStandardDeviation)
	Register("skewness", calcSkewness)
	Register("kurtosis", calcKurtosis)
	Register("abs_energy", calcAbsEnergy)
	Register("root_mean_square", calcRootMeanSquare)
	Register("variation_coefficient", calcVariationCoefficient)
	Register("absolute_sum_of_changes", calcAbsoluteSumOfChanges)
	Register("mean_abs_change", calcMeanAbsChange)
	Register("mean_change", calcMeanChange)
	Register("mean_second_derivative_central", calcMeanSecondDerivativeCentral)
	Register("variance_larger_than_standard_deviation", calcVarianceLargerThanStd)
	Register("has_duplicate", calcHasDuplicate)
	Register("has_duplicate_max", calcHasDuplicateMax)
	Register("has_duplicate_min", calcHasDuplicateMin)
	Register("sum_of_reoccurring_values", calcSumOfReoccurringValues)
	Register("sum_of_reoccurring_data_points", calcSumOfReoccurringDataPoints)
	Register("ratio_value_number_to_time_series_length", calcRatioValueNumberToLength)
	Register("percentage_of_reoccurring_values", calcPercentageOfReoccurringValues)
	Register("count_above_mean", calcCountAboveMean)
	Register("count_below_mean", calcCountBelowMean)
	Register("longest_strike_above_mean", calcLongestStrikeAboveMean)
	Register("longest_strike_below_mean", calcLongestStrikeBelowMean)
	Register("first_location_of_maximum", calcFirstLocationOfMaximum)
	Register("first_location_of_minimum", calcFirstLocationOfMinimum)
	Register("last_location_of_maximum", calcLastLocationOfMaximum)
	Register("last_location_of_minimum", calcLastLocationOfMinimum)
	Register("quantile", calcQuantile)
	Register("large_standard_deviation", calcLargeStandardDeviation)
	Register("cid_ce", calcCidCe)
	Register("c3", calcC3)
	Register("autocorrelation", calcAutocorrelation)
	Register("number_peaks", calcNumberPeaks)
	Register("linear_trend_slope", calcLinearTrendSlope)
	Register("symmetry_looking", calcSymmetryLooking)
	Register("fft_coefficient_abs", calcFFTCoefficientAbs)
	Register("spectral_entropy", calcSpectralEntropy)
	Register("binned_entropy", calcBinnedEntropy)
	Register("energy_ratio_by_chunk", calcEnergyRatioByChunk)
	Register("mean_abs_change_quantiles", calcMeanAbsChangeQuantiles)
	Register("number_cwt_peaks", calcNumberCWTPeaks)
	Register("augmented_dickey_fuller", calcAugmentedDickeyFuller)
	Register("fourier_entropy", calcFourierEntropy)
	Register("max_langevin_fixed_point", calcMaxLangevinFixedPoint)
}

func calcMean(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, _ := cache.MeanStd()
	return mean, nil
}

func calcMedian(values []float64, _ Params, cache *Cache) (float64, error) {
	return cache.Quantile(0.5), nil
}

func calcMinimum(values []float64, _ Params, cache *Cache) (float64, error) {
	sorted := cache.Sorted()
	return sorted[0], nil
}

func calcMaximum(values []float64, _ Params, cache *Cache) (float64, error) {
	sorted := cache.Sorted()
	return sorted[len(sorted)-1], nil
}

func calcSumValues(values []float64, _ Params, _ *Cache) (float64, error) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum, nil
}

func calcLength(values []float64, _ Params, _ *Cache) (float64, error) {
	return float64(len(values)), nil
}

func calcVariance(values []float64, _ Params, cache *Cache) (float64, error) {
	_, std := cache.MeanStd()
	return std * std, nil
}

func calcStandardDeviation(values []float64, _ Params, cache *Cache) (float64, error) {
	_, std := cache.MeanStd()
	return std, nil
}

func calcSkewness(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, std := cache.MeanStd()
	n := float64(len(values))
	if std == 0 || n < 3 {
		return 0, nil
	}
	sum := 0.0
	for _, v := range values {
		d := (v - mean) / std
		sum += d * d * d
	}
	return sum / n, nil
}

func calcKurtosis(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, std := cache.MeanStd()
	n := float64(len(values))
	if std == 0 || n < 4 {
		return 0, nil
	}
	sum := 0.0
	for _, v := range values {
		d := (v - mean) / std
		sum += d * d * d * d
	}
	return sum/n - 3, nil
}

func calcAbsEnergy(values []float64, _ Params, _ *Cache) (float64, error) {
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	return sum, nil
}

func calcRootMeanSquare(values []float64, _ Params, _ *Cache) (float64, error) {
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(values))), nil
}

func calcVariationCoefficient(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, std := cache.MeanStd()
	if mean == 0 {
		return math.NaN(), nil
	}
	return std / mean, nil
}

func calcAbsoluteSumOfChanges(values []float64, _ Params, _ *Cache) (float64, error) {
	sum := 0.0
	for i := 1; i < len(values); i++ {
		sum += math.Abs(values[i] - values[i-1])
	}
	return sum, nil
}

func calcMeanAbsChange(values []float64, _ Params, _ *Cache) (float64, error) {
	if len(values) < 2 {
		return 0, nil
	}
	sum := 0.0
	for i := 1; i < len(values); i++ {
		sum += math.Abs(values[i] - values[i-1])
	}
	return sum / float64(len(values)-1), nil
}

func calcMeanChange(values []float64, _ Params, _ *Cache) (float64, error) {
	if len(values) < 2 {
		return 0, nil
	}
	return (values[len(values)-1] - values[0]) / float64(len(values)-1), nil
}

func calcMeanSecondDerivativeCentral(values []float64, _ Params, _ *Cache) (float64, error) {
	n := len(values)
	if n < 3 {
		return 0, nil
	}
	sum := 0.0
	for i := 1; i < n-1; i++ {
		sum += (values[i+1] - 2*values[i] + values[i-1]) / 2
	}
	return sum / float64(n-2), nil
}

func calcVarianceLargerThanStd(values []float64, _ Params, cache *Cache) (float64, error) {
	_, std := cache.MeanStd()
	if std*std > std {
		return 1, nil
	}
	return 0, nil
}

func calcHasDuplicate(values []float64, _ Params, cache *Cache) (float64, error) {
	sorted := cache.Sorted()
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return 1, nil
		}
	}
	return 0, nil
}

func calcHasDuplicateMax(values []float64, _ Params, cache *Cache) (float64, error) {
	sorted := cache.Sorted()
	maxV := sorted[len(sorted)-1]
	count := 0
	for _, v := range values {
		if v == maxV {
			count++
		}
	}
	return boolFloat(count > 1), nil
}

func calcHasDuplicateMin(values []float64, _ Params, cache *Cache) (float64, error) {
	sorted := cache.Sorted()
	minV := sorted[0]
	count := 0
	for _, v := range values {
		if v == minV {
			count++
		}
	}
	return boolFloat(count > 1), nil
}

func calcSumOfReoccurringValues(values []float64, _ Params, _ *Cache) (float64, error) {
	counts := valueCounts(values)
	sum := 0.0
	for v, c := range counts {
		if c > 1 {
			sum += v
		}
	}
	return sum, nil
}

func calcSumOfReoccurringDataPoints(values []float64, _ Params, _ *Cache) (float64, error) {
	counts := valueCounts(values)
	sum := 0.0
	for v, c := range counts {
		if c > 1 {
			sum += v * float64(c)
		}
	}
	return sum, nil
}

func calcRatioValueNumberToLength(values []float64, _ Params, _ *Cache) (float64, error) {
	counts := valueCounts(values)
	return float64(len(counts)) / float64(len(values)), nil
}

func calcPercentageOfReoccurringValues(values []float64, _ Params, _ *Cache) (float64, error) {
	counts := valueCounts(values)
	if len(counts) == 0 {
		return 0, nil
	}
	reoccurring := 0
	for _, c := range counts {
		if c > 1 {
			reoccurring++
		}
	}
	return float64(reoccurring) / float64(len(counts)), nil
}

func calcCountAboveMean(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, _ := cache.MeanStd()
	count := 0
	for _, v := range values {
		if v > mean {
			count++
		}
	}
	return float64(count), nil
}

func calcCountBelowMean(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, _ := cache.MeanStd()
	count := 0
	for _, v := range values {
		if v < mean {
			count++
		}
	}
	return float64(count), nil
}

func calcLongestStrikeAboveMean(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, _ := cache.MeanStd()
	return float64(longestStrike(values, func(v float64) bool { return v > mean })), nil
}

func calcLongestStrikeBelowMean(values []float64, _ Params, cache *Cache) (float64, error) {
	mean, _ := cache.MeanStd()
	return float64(longestStrike(values, func(v float64) bool { return v < mean })), nil
}

func calcFirstLocationOfMaximum(values []float64, _ Params, _ *Cache) (float64, error) {
	idx := 0
	for i, v := range values {
		if v > values[idx] {
			idx = i
		}
	}
	return float64(idx) / float64(len(values)), nil
}

func calcFirstLocationOfMinimum(values []float64, _ Params, _ *Cache) (float64, error) {
	idx := 0
	for i, v := range values {
		if v < values[idx] {
			idx = i
		}
	}
	return float64(idx) / float64(len(values)), nil
}

func calcLastLocationOfMaximum(values []float64, _ Params, _ *Cache) (float64, error) {
	idx := 0
	for i, v := range values {
		if v >= values[idx] {
			idx = i
		}
	}
	return float64(idx+1) / float64(len(values)), nil
}

func calcLastLocationOfMinimum(values []float64, _ Params, _ *Cache) (float64, error) {
	idx := 0
	for i, v := range values {
		if v <= values[idx] {
			idx = i
		}
	}
	return float64(idx+1) / float64(len(values)), nil
}

func calcQuantile(values []float64, params Params, cache *Cache) (float64, error) {
	q := params["q"]
	return cache.Quantile(q), nil
}

func calcLargeStandardDeviation(values []float64, params Params, cache *Cache) (float64, error) {
	r := params["r"]
	sorted := cache.Sorted()
	_, std := cache.MeanStd()
	rng := sorted[len(sorted)-1] - sorted[0]
	return boolFloat(std > r*rng), nil
}

func calcCidCe(values []float64, params Params, _ *Cache) (float64, error) {
	normalize := params["normalize"] != 0
	v := values
	if normalize {
		mean, std := meanStdOf(values)
		if std == 0 {
			return 0, nil
		}
		v = make([]float64, len(values))
		for i, x := range values {
			v[i] = (x - mean) / std
		}
	}
	sum := 0.0
	for i := 1; i < len(v); i++ {
		d := v[i] - v[i-1]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

func calcC3(values []float64, params Params, _ *Cache) (float64, error) {
	lag := int(params["lag"])
	if lag < 1 {
		lag = 1
	}
	n := len(values)
	if n <= 2*lag {
		return 0, nil
	}
	sum := 0.0
	count := 0
	for i := 0; i < n-2*lag; i++ {
		sum += values[i+2*lag] * values[i+lag] * values[i]
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

func calcAutocorrelation(values []float64, params Params, cache *Cache) (float64, error) {
	lag := int(params["lag"])
	return cache.Autocorrelation(lag), nil
}

func calcNumberPeaks(values []float64, params Params, _ *Cache) (float64, error) {
	support := int(params["support"])
	if support < 1 {
		support = 1
	}
	count := 0
	for i := support; i < len(values)-support; i++ {
		isPeak := true
		for j := 1; j <= support; j++ {
			if values[i] <= values[i-j] || values[i] <= values[i+j] {
				isPeak = false
				break
			}
		}
		if isPeak {
			count++
		}
	}
	return float64(count), nil
}

func calcLinearTrendSlope(values []float64, _ Params, _ *Cache) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, nil
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0, nil
	}
	return (nf*sumXY - sumX*sumY) / denom, nil
}

func calcSymmetryLooking(values []float64, params Params, cache *Cache) (float64, error) {
	r := params["r"]
	mean, _ := cache.MeanStd()
	sorted := cache.Sorted()
	rng := sorted[len(sorted)-1] - sorted[0]
	return boolFloat(math.Abs(mean-cache.Quantile(0.5)) < r*rng), nil
}

func calcFFTCoefficientAbs(values []float64, params Params, cache *Cache) (float64, error) {
	coeff := int(params["coeff"])
	power := cache.FFTPower()
	if coeff < 0 || coeff >= len(power) {
		return 0, nil
	}
	return power[coeff], nil
}

func calcSpectralEntropy(values []float64, _ Params, cache *Cache) (float64, error) {
	power := cache.FFTPower()
	total := 0.0
	for _, p := range power {
		total += p * p
	}
	if total == 0 {
		return 0, nil
	}
	entropy := 0.0
	for _, p := range power {
		prob := (p * p) / total
		if prob > 0 {
			entropy -= prob * math.Log(prob)
		}
	}
	return entropy, nil
}

func calcBinnedEntropy(values []float64, params Params, cache *Cache) (float64, error) {
	bins := int(params["bins"])
	if bins < 1 {
		bins = 10
	}
	sorted := cache.Sorted()
	lo, hi := sorted[0], sorted[len(sorted)-1]
	return histogramShannonEntropy(values, lo, hi, bins), nil
}

// histogramShannonEntropy bins values into bins equal-width buckets over
// [lo, hi] and returns the Shannon entropy of the resulting occupancy
// distribution. Shared by calcBinnedEntropy (over raw values) and
// calcFourierEntropy (over the FFT magnitude spectrum).
func histogramShannonEntropy(values []float64, lo, hi float64, bins int) float64 {
	if hi == lo || len(values) == 0 {
		return 0
	}
	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	n := float64(len(values))
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log(p)
	}
	return entropy
}

func calcEnergyRatioByChunk(values []float64, params Params, _ *Cache) (float64, error) {
	numSegments := int(params["num_segments"])
	segmentIdx := int(params["segment_index"])
	if numSegments < 1 {
		numSegments = 1
	}
	n := len(values)
	total := 0.0
	for _, v := range values {
		total += v * v
	}
	if total == 0 {
		return 0, nil
	}
	segLen := n / numSegments
	if segLen == 0 {
		return 0, nil
	}
	start := segmentIdx * segLen
	end := start + segLen
	if segmentIdx == numSegments-1 {
		end = n
	}
	if start >= n {
		return 0, nil
	}
	if end > n {
		end = n
	}
	segEnergy := 0.0
	for _, v := range values[start:end] {
		segEnergy += v * v
	}
	return segEnergy / total, nil
}

func calcMeanAbsChangeQuantiles(values []float64, params Params, cache *Cache) (float64, error) {
	ql := params["ql"]
	qh := params["qh"]
	lo := cache.Quantile(ql)
	hi := cache.Quantile(qh)
	sum := 0.0
	count := 0
	for i := 1; i < len(values); i++ {
		if values[i-1] >= lo && values[i-1] <= hi && values[i] >= lo && values[i] <= hi {
			sum += math.Abs(values[i] - values[i-1])
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func valueCounts(values []float64) map[float64]int {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	return counts
}

func longestStrike(values []float64, pred func(float64) bool) int {
	best, cur := 0, 0
	for _, v := range values {
		if pred(v) {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

func meanStdOf(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / n)
}

// calcNumberCWTPeaks approximates tsfresh's number_cwt_peaks: it convolves
// the series with a Ricker ("Mexican hat") wavelet at widths 1..max_width
// and counts positions where the per-position max response across widths
// is a local maximum. tsfresh delegates to scipy.signal.find_peaks_cwt,
// which additionally filters candidates by signal-to-noise ratio and
// persistence across widths; this calculator has neither filter, so its
// peak counts diverge from tsfresh's on noisy series.
func calcNumberCWTPeaks(values []float64, params Params, _ *Cache) (float64, error) {
	maxWidth := int(params["max_width"])
	if maxWidth < 1 {
		maxWidth = 5
	}
	n := len(values)
	if n < 3 {
		return 0, nil
	}
	response := make([]float64, n)
	for width := 1; width <= maxWidth; width++ {
		convolved := convolveSame(values, rickerWavelet(width))
		for i, v := range convolved {
			if v > response[i] {
				response[i] = v
			}
		}
	}
	count := 0
	for i := 1; i < n-1; i++ {
		if response[i] > 0 && response[i] > response[i-1] && response[i] > response[i+1] {
			count++
		}
	}
	return float64(count), nil
}

func rickerWavelet(width int) []float64 {
	length := 10*width + 1
	half := length / 2
	a := float64(width)
	wavelet := make([]float64, length)
	norm := 2 / (math.Sqrt(3*a) * math.Pow(math.Pi, 0.25))
	for i := range wavelet {
		x := float64(i - half)
		xx := x * x / (a * a)
		wavelet[i] = norm * (1 - xx) * math.Exp(-xx/2)
	}
	return wavelet
}

func convolveSame(signal, kernel []float64) []float64 {
	n, k := len(signal), len(kernel)
	half := k / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < k; j++ {
			idx := i + j - half
			if idx < 0 || idx >= n {
				continue
			}
			sum += signal[idx] * kernel[k-1-j]
		}
		out[i] = sum
	}
	return out
}

// calcAugmentedDickeyFuller approximates tsfresh's augmented_dickey_fuller:
// it returns the t-statistic of the y_{t-1} coefficient from the plain
// Dickey-Fuller regression Δy_t = c + γ·y_{t-1} + ε_t. tsfresh's
// statsmodels-backed version additionally selects lagged difference terms
// by AIC and reports against MacKinnon's critical-value tables; neither is
// implemented here, so treat the result as a directional stationarity
// signal (more negative means more stationary), not a tsfresh-parity
// statistic or p-value.
func calcAugmentedDickeyFuller(values []float64, _ Params, _ *Cache) (float64, error) {
	n := len(values)
	if n < 4 {
		return 0, nil
	}
	var sumX, sumY, sumXY, sumXX float64
	count := 0.0
	for i := 1; i < n; i++ {
		x := values[i-1]
		y := values[i] - values[i-1]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		count++
	}
	meanX := sumX / count
	meanY := sumY / count
	sxx := sumXX - count*meanX*meanX
	if sxx == 0 {
		return 0, nil
	}
	sxy := sumXY - count*meanX*meanY
	gamma := sxy / sxx
	intercept := meanY - gamma*meanX

	sse := 0.0
	for i := 1; i < n; i++ {
		x := values[i-1]
		y := values[i] - values[i-1]
		resid := y - (intercept + gamma*x)
		sse += resid * resid
	}
	if count < 3 {
		return 0, nil
	}
	variance := sse / (count - 2)
	seGamma := math.Sqrt(variance / sxx)
	if seGamma == 0 {
		return 0, nil
	}
	return gamma / seGamma, nil
}

// calcFourierEntropy approximates tsfresh's fourier_entropy: tsfresh
// estimates a Welch power spectral density and bins its values (not
// frequencies) into `bins` equal-width buckets, reporting the Shannon
// entropy of that occupancy histogram. This bins the FFT magnitude
// spectrum Cache already memoises instead of a Welch estimate, so the
// result tracks tsfresh's shape without being bit-exact.
func calcFourierEntropy(values []float64, params Params, cache *Cache) (float64, error) {
	bins := int(params["bins"])
	if bins < 1 {
		bins = 10
	}
	power := cache.FFTPower()
	if len(power) == 0 {
		return 0, nil
	}
	lo, hi := power[0], power[0]
	for _, p := range power {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return histogramShannonEntropy(power, lo, hi, bins), nil
}

// calcMaxLangevinFixedPoint approximates tsfresh's max_langevin_fixed_point:
// tsfresh bins the series by value, estimates the drift (mean one-step
// change) per bin, fits a cubic polynomial to the binned drift curve, and
// returns the largest real root of that polynomial (the largest fixed
// point of the estimated Langevin deterministic force). This uses a
// quadratic fit instead of tsfresh's cubic and solves it directly, so
// results diverge from tsfresh whenever the true drift curve is not
// well-approximated by a parabola.
func calcMaxLangevinFixedPoint(values []float64, params Params, _ *Cache) (float64, error) {
	bins := int(params["bins"])
	if bins < 1 {
		bins = 10
	}
	n := len(values)
	if n < bins+1 {
		return 0, nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return lo, nil
	}
	width := (hi - lo) / float64(bins)
	sumDrift := make([]float64, bins)
	sumX := make([]float64, bins)
	counts := make([]int, bins)
	for i := 0; i < n-1; i++ {
		idx := int((values[i] - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		sumDrift[idx] += values[i+1] - values[i]
		sumX[idx] += values[i]
		counts[idx]++
	}
	var xs, ys []float64
	for b := 0; b < bins; b++ {
		if counts[b] == 0 {
			continue
		}
		xs = append(xs, sumX[b]/float64(counts[b]))
		ys = append(ys, sumDrift[b]/float64(counts[b]))
	}
	a, b, c, ok := quadraticFit(xs, ys)
	if !ok {
		return 0, nil
	}
	if a == 0 {
		if b == 0 {
			return 0, nil
		}
		return -c / b, nil
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return -b / (2 * a), nil
	}
	sqrtDisc := math.Sqrt(disc)
	r1 := (-b + sqrtDisc) / (2 * a)
	r2 := (-b - sqrtDisc) / (2 * a)
	if r1 > r2 {
		return r1, nil
	}
	return r2, nil
}

// quadraticFit least-squares fits y = a*x^2 + b*x + c, solving the normal
// equations directly (3x3 system, no external linear algebra needed).
func quadraticFit(xs, ys []float64) (a, b, c float64, ok bool) {
	n := float64(len(xs))
	if n < 3 {
		return 0, 0, 0, false
	}
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for i, x := range xs {
		y := ys[i]
		x2 := x * x
		sx += x
		sx2 += x2
		sx3 += x2 * x
		sx4 += x2 * x2
		sy += y
		sxy += x * y
		sx2y += x2 * y
	}
	// Normal equations for [a b c] over basis [x^2, x, 1]:
	m := [3][4]float64{
		{sx4, sx3, sx2, sx2y},
		{sx3, sx2, sx, sxy},
		{sx2, sx, n, sy},
	}
	if !solve3x3(&m) {
		return 0, 0, 0, false
	}
	return m[0][3], m[1][3], m[2][3], true
}

// solve3x3 Gaussian-eliminates the augmented 3x4 matrix m in place, leaving
// the solution in column 3. Returns false on a singular system.
func solve3x3(m *[3][4]float64) bool {
	for col := 0; col < 3; col++ {
		pivot := col
		for r := col + 1; r < 3; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := 0; r < 3; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[r][k] -= factor * m[col][k]
			}
		}
	}
	for r := 0; r < 3; r++ {
		m[r][3] /= m[r][r]
	}
	return true
}
