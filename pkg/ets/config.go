// Package ets implements the Error-Trend-Seasonal state-space forecasting
// family: deterministic forward recursion (§4.B), analytical reverse-mode
// gradients (§4.C), and gradient checkpointing for long series (§4.D).
package ets

import (
	"fmt"

	"github.com/anofox/tsforge/pkg/engerr"
)

// ErrorType is the error distribution axis of an ETS configuration.
type ErrorType int

const (
	Additive ErrorType = iota
	Multiplicative
)

func (e ErrorType) String() string {
	if e == Multiplicative {
		return "Multiplicative"
	}
	return "Additive"
}

// TrendType is the trend axis of an ETS configuration.
type TrendType int

const (
	TrendNone TrendType = iota
	TrendAdditive
	TrendMultiplicative
	TrendDampedAdditive
	TrendDampedMultiplicative
)

func (t TrendType) String() string {
	switch t {
	case TrendAdditive:
		return "Additive"
	case TrendMultiplicative:
		return "Multiplicative"
	case TrendDampedAdditive:
		return "DampedAdditive"
	case TrendDampedMultiplicative:
		return "DampedMultiplicative"
	default:
		return "None"
	}
}

// Damped reports whether this trend variant applies the φ damping factor.
func (t TrendType) Damped() bool {
	return t == TrendDampedAdditive || t == TrendDampedMultiplicative
}

// IsMultiplicative reports whether this trend variant combines with level
// multiplicatively (base = level * f(trend)) rather than additively.
func (t TrendType) IsMultiplicative() bool {
	return t == TrendMultiplicative || t == TrendDampedMultiplicative
}

// SeasonType is the seasonal axis of an ETS configuration.
type SeasonType int

const (
	SeasonNone SeasonType = iota
	SeasonAdditive
	SeasonMultiplicative
)

func (s SeasonType) String() string {
	switch s {
	case SeasonAdditive:
		return "Additive"
	case SeasonMultiplicative:
		return "Multiplicative"
	default:
		return "None"
	}
}

// Config is the tagged-variant ETS configuration: an error/trend/season
// triple plus the smoothing parameters that apply to it. Per the data
// model's invariants, Beta is only meaningful when Trend != TrendNone,
// Gamma only when Season != SeasonNone, and Phi only when Trend is damped.
type Config struct {
	Error  ErrorType
	Trend  TrendType
	Season SeasonType

	Alpha float64 // in [0,1]
	Beta  float64 // in [0,1], meaningful iff HasTrend()
	Gamma float64 // in [0,1], meaningful iff HasSeason()
	Phi   float64 // in (0,1], meaningful iff Trend.Damped()

	// M is the season length. The engine treats M=1 when Season ==
	// SeasonNone, per the data model.
	M int
}

// HasTrend reports whether the configuration carries a trend state.
func (c Config) HasTrend() bool { return c.Trend != TrendNone }

// HasSeason reports whether the configuration carries seasonal state.
func (c Config) HasSeason() bool { return c.Season != SeasonNone }

// SeasonLength returns the effective season length: M when seasonal, 1
// otherwise, matching the data model's "treats m = 1" rule.
func (c Config) SeasonLength() int {
	if !c.HasSeason() {
		return 1
	}
	return c.M
}

// Validate checks the configuration invariants, returning an
// engerr.InvalidArgument on violation.
func (c Config) Validate() error {
	const op = "ets.Config.Validate"
	if c.Alpha < 0 || c.Alpha > 1 {
		return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("alpha %v out of [0,1]", c.Alpha))
	}
	if c.HasTrend() {
		if c.Beta < 0 || c.Beta > 1 {
			return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("beta %v out of [0,1]", c.Beta))
		}
		if c.Trend.Damped() && (c.Phi <= 0 || c.Phi > 1) {
			return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("phi %v out of (0,1]", c.Phi))
		}
	}
	if c.HasSeason() {
		if c.Gamma < 0 || c.Gamma > 1 {
			return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("gamma %v out of [0,1]", c.Gamma))
		}
		if c.M < 1 {
			return engerr.New(engerr.InvalidArgument, op, fmt.Sprintf("season length %d must be >= 1", c.M))
		}
	}
	return nil
}

// NumParams returns how many free smoothing parameters this configuration
// has (alpha always, plus beta/gamma/phi where applicable); used by the
// L-BFGS-B driver to size its parameter vector.
func (c Config) NumParams() int {
	n := 1
	if c.HasTrend() {
		n++
		if c.Trend.Damped() {
			n++
		}
	}
	if c.HasSeason() {
		n++
	}
	return n
}
