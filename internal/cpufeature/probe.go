// Package cpufeature exposes a process-wide, cached CPU-capability probe.
// Per the design notes, the SIMD capability bit is a pure CPU attribute, so
// caching it globally is safe: it can never change for the lifetime of the
// process.
package cpufeature

import (
	"sync"

	"golang.org/x/sys/cpu"
)

var (
	once        sync.Once
	hasFastPath bool
)

// HasWideAccumulate reports whether the runtime CPU supports the
// wide-accumulation path used by internal/numeric (AVX2 on amd64; NEON is
// always present on arm64). The probe runs once and is cached for the life
// of the process, matching the teacher corpus's "probe on first call, cache
// the result" idiom (FrankMgb-GO-BACKTEST-AggTrades/probe.go runs a similar
// one-shot diagnostic sweep).
func HasWideAccumulate() bool {
	once.Do(func() {
		hasFastPath = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
	})
	return hasFastPath
}

// Reset clears the cached probe result. Test-only: production code must
// never call this, since the underlying CPU capability cannot change.
func Reset() {
	once = sync.Once{}
}
