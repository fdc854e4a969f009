// Package numeric provides the batched numeric kernels the ETS forward and
// backward passes build on: a scaled accumulate, a reciprocal-multiply
// normalize, and a dot product. Each has a scalar and a "wide" (4-lane
// unrolled) implementation selected at runtime by internal/cpufeature.
//
// Go has no portable manual-SIMD intrinsics outside hand-written assembly
// per architecture; DESIGN.md records why this module uses a 4-wide
// unrolled accumulation loop instead of .s files. The wide path reassociates
// the reduction (four independent partial sums combined at the end) the
// same way a real AVX2/NEON lane-parallel reduction would, so it reproduces
// the spec's "numerically identical up to reduction order" contract: results
// differ from the scalar path only by a bounded reassociation error.
package numeric

import "github.com/anofox/tsforge/internal/cpufeature"

// wideThreshold is the minimum element count at which the wide path is
// selected; below it the fixed unroll overhead isn't worth it.
const wideThreshold = 8

// Accumulate computes out[i] += scale * in[i] for i in [0, n).
func Accumulate(out, in []float64, scale float64, n int) {
	if n >= wideThreshold && cpufeature.HasWideAccumulate() {
		accumulateWide(out, in, scale, n)
		return
	}
	accumulateScalar(out, in, scale, n)
}

func accumulateScalar(out, in []float64, scale float64, n int) {
	for i := 0; i < n; i++ {
		out[i] += scale * in[i]
	}
}

func accumulateWide(out, in []float64, scale float64, n int) {
	i := 0
	for ; i+4 <= n; i += 4 {
		out[i+0] += scale * in[i+0]
		out[i+1] += scale * in[i+1]
		out[i+2] += scale * in[i+2]
		out[i+3] += scale * in[i+3]
	}
	for ; i < n; i++ {
		out[i] += scale * in[i]
	}
}

// Normalize computes out[i] = in[i] / variance for i in [0, n), computing
// the reciprocal once rather than dividing n times.
func Normalize(out, in []float64, variance float64, n int) {
	if n >= wideThreshold && cpufeature.HasWideAccumulate() {
		normalizeWide(out, in, variance, n)
		return
	}
	normalizeScalar(out, in, variance, n)
}

func normalizeScalar(out, in []float64, variance float64, n int) {
	inv := 1.0 / variance
	for i := 0; i < n; i++ {
		out[i] = in[i] * inv
	}
}

func normalizeWide(out, in []float64, variance float64, n int) {
	inv := 1.0 / variance
	i := 0
	for ; i+4 <= n; i += 4 {
		out[i+0] = in[i+0] * inv
		out[i+1] = in[i+1] * inv
		out[i+2] = in[i+2] * inv
		out[i+3] = in[i+3] * inv
	}
	for ; i < n; i++ {
		out[i] = in[i] * inv
	}
}

// Dot computes the sum of a[i]*b[i] for i in [0, n).
func Dot(a, b []float64, n int) float64 {
	if n >= wideThreshold && cpufeature.HasWideAccumulate() {
		return dotWide(a, b, n)
	}
	return dotScalar(a, b, n)
}

func dotScalar(a, b []float64, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// dotWide accumulates into four independent lanes and combines them with an
// extract-and-add-pairs reduction: (lane0+lane1) + (lane2+lane3), matching
// the horizontal-add shape of a real SIMD reduction.
func dotWide(a, b []float64, n int) float64 {
	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i+0] * b[i+0]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	sum := (s0 + s1) + (s2 + s3)
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
