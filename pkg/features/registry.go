package features

import (
	"sort"
	"sync"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Params is the typed parameter mapping passed to a calculator, e.g.
// {"q": 0.25} for a quantile feature or {"lag": 2} for autocorrelation.
type Params map[string]float64

// Calculator computes one scalar statistic over values, using cache to
// share intermediates with other calculators invoked over the same
// series.
type Calculator func(values []float64, params Params, cache *Cache) (float64, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Calculator{}
)

// Register adds a calculator under name, overwriting any prior
// registration. Called from this package's init() for the built-in
// catalog; exported so a host can register additional calculators.
func Register(name string, calc Calculator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = calc
}

// Names returns every registered calculator name, sorted.
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

// Compute looks up name (case-sensitive, per §4.K) and evaluates it over
// values with the given parameters, sharing cache across calls.
func Compute(name string, values []float64, params Params, cache *Cache) (float64, error) {
	const op = "features.Compute"
	registryMu.RLock()
	calc, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return 0, engerr.New(engerr.InvalidArgument, op, "unknown feature calculator: "+name)
	}
	if len(values) == 0 {
		return 0, engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	return calc(values, params, cache)
}

// ComputeAll evaluates every name in names over values, sharing one cache,
// returning a map of name to value. A calculator error aborts the whole
// batch; callers wanting per-feature error isolation should call Compute
// individually.
func ComputeAll(names []string, values []float64, params Params) (map[string]float64, error) {
	return ComputeAllWithCache(names, values, params, NewCache(values))
}

// ComputeAllWithCache is ComputeAll over a caller-supplied cache, letting a
// host reuse a *BackedCache hydrated from a cross-process backing store
// instead of recomputing FFT/ACF/sorted intermediates from scratch.
func ComputeAllWithCache(names []string, values []float64, params Params, cache *Cache) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	for _, name := range names {
		v, err := Compute(name, values, params, cache)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// Row is one row of a table-oriented feature listing: a calculator name
// paired with its scalar result. The result column is always named
// "value" regardless of the source series' own metric name — a display
// convention carried over from the original tooling this was distilled
// from, not a data contract beyond "the second column is called value".
type Row struct {
	Name  string
	Value float64
}

// ComputeRows is ComputeAll's row-oriented form: one Row per requested
// calculator, in the order names was given, for a host presenting a
// feature listing as a table rather than a wide name->value map.
func ComputeRows(names []string, values []float64, params Params) ([]Row, error) {
	cache := NewCache(values)
	rows := make([]Row, 0, len(names))
	for _, name := range names {
		v, err := Compute(name, values, params, cache)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{Name: name, Value: v})
	}
	return rows, nil
}
