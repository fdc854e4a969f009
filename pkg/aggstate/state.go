// Package aggstate implements the per-group aggregate state container
// (§4.H) that pkg/groupop's transform callback and any SQL aggregate
// wrapper build on: accumulate rows, combine partial states from parallel
// partial aggregation, then finalize by sorting and handing the series to
// a model/metric/detector kernel.
package aggstate

import (
	"time"

	"github.com/anofox/tsforge/pkg/series"
)

// State is one group's accumulated (timestamp, value) pairs plus the
// parameter snapshot captured from the first valid row. It is small and
// trivially copyable by value except for its heap-backed slices, which
// Combine/Reset manage explicitly.
type State struct {
	Timestamps  []time.Time
	Values      []float64
	Valid       []bool
	Initialized bool
	Params      map[string]any
}

// New returns an empty, uninitialized State.
func New() *State {
	return &State{}
}

// Accumulate adds one row's observation. The first call captures params as
// the group's parameter snapshot; later calls' params are ignored, since
// every row in a well-formed group carries identical parameters.
func (s *State) Accumulate(ts time.Time, value float64, valid bool, params map[string]any) {
	if !s.Initialized {
		s.Params = params
		s.Initialized = true
	}
	s.Timestamps = append(s.Timestamps, ts)
	s.Values = append(s.Values, value)
	s.Valid = append(s.Valid, valid)
}

// Combine merges a partial-aggregate source state into the target,
// appending the source's vectors. Used when the host runtime computes
// partial aggregates on separate threads before a final merge.
func (s *State) Combine(source *State) {
	if source == nil || !source.Initialized {
		return
	}
	if !s.Initialized {
		s.Params = source.Params
		s.Initialized = true
	}
	s.Timestamps = append(s.Timestamps, source.Timestamps...)
	s.Values = append(s.Values, source.Values...)
	s.Valid = append(s.Valid, source.Valid...)
}

// ValidCount reports how many accumulated rows are non-null.
func (s *State) ValidCount() int {
	n := 0
	for _, v := range s.Valid {
		if v {
			n++
		}
	}
	return n
}

// Kernel is the final per-group computation: it receives the
// timestamp-sorted series and the parameter snapshot and returns whatever
// the caller's output column type is.
type Kernel[Out any] func(s series.Series, params map[string]any) (Out, error)

// Finalize sorts the accumulated rows by timestamp and runs kernel over
// the result. ok is false when the group has zero valid observations, the
// condition under which SQL aggregate finalize produces a null instead of
// calling the kernel at all.
func Finalize[Out any](s *State, kernel Kernel[Out]) (result Out, ok bool, err error) {
	if s.ValidCount() == 0 {
		return result, false, nil
	}
	sorted := series.New(s.Timestamps, s.Values, s.Valid).SortByTime()
	result, err = kernel(sorted, s.Params)
	return result, err == nil, err
}

// Reset releases the state's heap storage, the Go equivalent of the
// destructor the spec describes; a State must not be reused after Reset.
func (s *State) Reset() {
	s.Timestamps = nil
	s.Values = nil
	s.Valid = nil
	s.Params = nil
	s.Initialized = false
}
