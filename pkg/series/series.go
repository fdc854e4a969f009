// Package series defines the ordered (timestamp, value) sequence that every
// model, aggregate, and detector in this module operates on.
package series

import (
	"sort"
	"time"
)

// Series is an ordered sequence of (timestamp, value) pairs. Values carry an
// explicit validity bitmap rather than a sentinel NaN encoding, per the data
// model: a null is a missing observation, not a value.
//
// A Series is immutable from the model's perspective; callers that need to
// mutate should build a new one.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Valid      []bool // len(Valid) == len(Values); nil means all-valid
}

// New builds a Series, defaulting Valid to all-true when nil is passed.
func New(ts []time.Time, values []float64, valid []bool) Series {
	if valid == nil {
		valid = make([]bool, len(values))
		for i := range valid {
			valid[i] = true
		}
	}
	return Series{Timestamps: ts, Values: values, Valid: valid}
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.Values) }

// IsValid reports whether point i is a real observation.
func (s Series) IsValid(i int) bool {
	if s.Valid == nil {
		return true
	}
	return s.Valid[i]
}

// ValidCount returns the number of non-null observations.
func (s Series) ValidCount() int {
	if s.Valid == nil {
		return s.Len()
	}
	n := 0
	for _, v := range s.Valid {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	ts := make([]time.Time, len(s.Timestamps))
	copy(ts, s.Timestamps)
	vals := make([]float64, len(s.Values))
	copy(vals, s.Values)
	var valid []bool
	if s.Valid != nil {
		valid = make([]bool, len(s.Valid))
		copy(valid, s.Valid)
	}
	return Series{Timestamps: ts, Values: vals, Valid: valid}
}

// SortByTime returns a copy of s sorted by ascending timestamp. Per the
// concurrency model, group-operator finalize does this once per group
// before handing the series to any model kernel; no intra-group input
// ordering is assumed.
func (s Series) SortByTime() Series {
	n := s.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Timestamps[idx[a]].Before(s.Timestamps[idx[b]])
	})

	out := Series{
		Timestamps: make([]time.Time, n),
		Values:     make([]float64, n),
	}
	if s.Valid != nil {
		out.Valid = make([]bool, n)
	}
	for i, j := range idx {
		out.Timestamps[i] = s.Timestamps[j]
		out.Values[i] = s.Values[j]
		if s.Valid != nil {
			out.Valid[i] = s.Valid[j]
		}
	}
	return out
}

// ValuesOnly extracts the value slice, substituting fill for invalid points.
// Most model kernels operate on dense []float64; this is the boundary
// conversion from the nullable Series representation.
func (s Series) ValuesOnly(fill float64) []float64 {
	out := make([]float64, s.Len())
	for i, v := range s.Values {
		if s.IsValid(i) {
			out[i] = v
		} else {
			out[i] = fill
		}
	}
	return out
}

// Monotone reports whether timestamps are strictly increasing, the
// post-sort invariant the data model requires.
func (s Series) Monotone() bool {
	for i := 1; i < len(s.Timestamps); i++ {
		if !s.Timestamps[i].After(s.Timestamps[i-1]) {
			return false
		}
	}
	return true
}
