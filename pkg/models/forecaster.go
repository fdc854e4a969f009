// Package models implements the forecaster catalog (§9): Naive through
// TBATS and the intermittent-demand family, dispatched by a case-sensitive
// name registry so the engine facade can select a model from a textual
// parameter the way a SQL caller would pass `model => 'AutoETS'`.
package models

import (
	"sort"
	"strconv"
	"sync"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Forecaster is the shared contract every catalog entry implements; it is
// also pkg/cv's Forecaster shape, so any entry here plugs directly into
// backtesting.
type Forecaster interface {
	Fit(values []float64) error
	Forecast(steps int) ([]float64, error)
}

// Params is the parsed form of the engine's textual string->string
// parameter map (§6): numeric fields pulled out with sensible fallbacks.
type Params map[string]string

func (p Params) Float(key string, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	if raw, ok := p[key]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func (p Params) Int(key string, fallback int) int {
	if p == nil {
		return fallback
	}
	if raw, ok := p[key]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func (p Params) Bool(key string, fallback bool) bool {
	if p == nil {
		return fallback
	}
	if raw, ok := p[key]; ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return fallback
}

// FittedLengthMode controls how a model's in-sample fitted-value vector is
// aligned back to the input length when the model's own recursion does not
// update at every position (the Croston family only updates on nonzero
// periods, so there is no fitted value until the first such period).
type FittedLengthMode int

const (
	// PadLeadingNaN pads the positions before the model's first internal
	// update with NaN, so Fitted always returns a vector of len(values).
	PadLeadingNaN FittedLengthMode = iota
	// TruncateToInput omits those leading positions instead, so Fitted
	// returns a vector shorter than the input by the count of periods
	// before the first update.
	TruncateToInput
)

// FittedProvider is implemented by models that can report their own
// in-sample fitted values directly from internal state, instead of the
// engine facade's generic expanding-window refit. Fitted reports which
// FittedLengthMode produced the returned vector's length so a caller can
// align it against the input series.
type FittedProvider interface {
	Fitted() ([]float64, FittedLengthMode)
}

// Factory builds a fresh, unfitted Forecaster from parameters.
type Factory func(params Params) (Forecaster, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a model factory under its case-sensitive catalog name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Names returns every registered model name, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a model instance by catalog name.
func New(name string, params Params) (Forecaster, error) {
	const op = "models.New"
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, engerr.New(engerr.InvalidArgument, op, "unknown model: "+name)
	}
	return factory(params)
}
