// Package dataprep implements the §6 data-prep function family
// (ts_drop_*, ts_fill_nulls_*, ts_diff): filters and transforms applied to
// a series.Series before it reaches a model kernel. Every operation is
// pure — it returns a new Series rather than mutating its argument, the
// same immutable-from-the-model's-perspective contract series.Series
// documents.
package dataprep

import (
	"time"

	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/series"
)

// DropShort returns (s, true) unchanged if s has at least minLength valid
// points, or (zero, false) signalling the row should be dropped.
func DropShort(s series.Series, minLength int) (series.Series, bool) {
	if s.ValidCount() < minLength {
		return series.Series{}, false
	}
	return s, true
}

// DropConstant drops a series whose valid values are all equal (no signal
// for a model to fit against).
func DropConstant(s series.Series) (series.Series, bool) {
	first, seen := 0.0, false
	for i := 0; i < s.Len(); i++ {
		if !s.IsValid(i) {
			continue
		}
		if !seen {
			first, seen = s.Values[i], true
			continue
		}
		if s.Values[i] != first {
			return s, true
		}
	}
	return series.Series{}, false
}

// DropLeadingZeros removes leading zero-valued points. A series with no
// leading zeros is returned unchanged (by reference to the same
// underlying semantics, not a pointer identity — the idempotence property
// the spec names).
func DropLeadingZeros(s series.Series) series.Series {
	start := 0
	for start < s.Len() && s.IsValid(start) && s.Values[start] == 0 {
		start++
	}
	return sliceSeries(s, start, s.Len())
}

// DropTrailingZeros removes trailing zero-valued points.
func DropTrailingZeros(s series.Series) series.Series {
	end := s.Len()
	for end > 0 && s.IsValid(end-1) && s.Values[end-1] == 0 {
		end--
	}
	return sliceSeries(s, 0, end)
}

// DropEdgeZeros removes both leading and trailing zero runs.
func DropEdgeZeros(s series.Series) series.Series {
	return DropTrailingZeros(DropLeadingZeros(s))
}

func sliceSeries(s series.Series, start, end int) series.Series {
	if start >= end {
		return series.Series{}
	}
	out := series.Series{
		Timestamps: append([]time.Time(nil), s.Timestamps[start:end]...),
		Values:     append([]float64(nil), s.Values[start:end]...),
	}
	if s.Valid != nil {
		out.Valid = append([]bool(nil), s.Valid[start:end]...)
	}
	return out
}

// FillNullsConst replaces every invalid point with v, marking it valid.
// Applying it twice is a no-op: the second pass finds nothing invalid left.
func FillNullsConst(s series.Series, v float64) series.Series {
	return fillWith(s, func(i int, values []float64, valid []bool) {
		values[i] = v
	})
}

// FillNullsForward replaces an invalid point with the nearest preceding
// valid value. Leading invalid points (no prior value) are left invalid.
func FillNullsForward(s series.Series) series.Series {
	out := s.Clone()
	last, haveLast := 0.0, false
	for i := 0; i < out.Len(); i++ {
		if out.IsValid(i) {
			last, haveLast = out.Values[i], true
			continue
		}
		if haveLast {
			out.Values[i] = last
			setValid(&out, i, true)
		}
	}
	return out
}

// FillNullsBackward replaces an invalid point with the nearest following
// valid value. Trailing invalid points are left invalid.
func FillNullsBackward(s series.Series) series.Series {
	out := s.Clone()
	next, haveNext := 0.0, false
	for i := out.Len() - 1; i >= 0; i-- {
		if out.IsValid(i) {
			next, haveNext = out.Values[i], true
			continue
		}
		if haveNext {
			out.Values[i] = next
			setValid(&out, i, true)
		}
	}
	return out
}

// FillNullsMean replaces every invalid point with the mean of the valid
// points. A series with no valid points is returned unchanged.
func FillNullsMean(s series.Series) series.Series {
	sum, count := 0.0, 0
	for i := 0; i < s.Len(); i++ {
		if s.IsValid(i) {
			sum += s.Values[i]
			count++
		}
	}
	if count == 0 {
		return s.Clone()
	}
	m := sum / float64(count)
	return fillWith(s, func(i int, values []float64, valid []bool) {
		values[i] = m
	})
}

func fillWith(s series.Series, set func(i int, values []float64, valid []bool)) series.Series {
	out := s.Clone()
	if out.Valid == nil {
		return out
	}
	for i := 0; i < out.Len(); i++ {
		if !out.Valid[i] {
			set(i, out.Values, out.Valid)
			out.Valid[i] = true
		}
	}
	return out
}

func setValid(s *series.Series, i int, v bool) {
	if s.Valid == nil {
		s.Valid = make([]bool, s.Len())
		for j := range s.Valid {
			s.Valid[j] = true
		}
	}
	s.Valid[i] = v
}

// Diff returns the order-k differenced series: order 0 is identity, order
// k applies first-differencing k times. The first k points of the result
// have no defined difference and are marked invalid rather than dropped,
// so the output keeps the same length as the input — callers that want
// the dense tail can drop the leading invalid points themselves.
func Diff(s series.Series, order int) (series.Series, error) {
	const op = "Diff"
	if order < 0 {
		return series.Series{}, engerr.New(engerr.InvalidArgument, op, "order must be >= 0")
	}
	out := s.Clone()
	for k := 0; k < order; k++ {
		out = diffOnce(out)
	}
	return out, nil
}

func diffOnce(s series.Series) series.Series {
	n := s.Len()
	values := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		if i == 0 || !s.IsValid(i) || !s.IsValid(i-1) {
			valid[i] = false
			continue
		}
		values[i] = s.Values[i] - s.Values[i-1]
		valid[i] = true
	}
	return series.Series{Timestamps: s.Timestamps, Values: values, Valid: valid}
}

// Integrate inverts one order of Diff: given a differenced series and the
// original values preceding it, reconstructs the original scale with one
// running cumulative sum seeded from the last leading value (earlier
// leading values are not used). Undoing order-k differencing takes k calls.
func Integrate(diffed []float64, leading []float64) ([]float64, error) {
	const op = "Integrate"
	if len(leading) == 0 {
		return nil, engerr.New(engerr.InvalidArgument, op, "need at least one leading value")
	}
	out := make([]float64, len(diffed)+1)
	out[0] = leading[len(leading)-1]
	for i, d := range diffed {
		out[i+1] = out[i] + d
	}
	return out[1:], nil
}
