//go:build amd64 && !noasm

// tsc_amd64.go
//
// Go declaration for the raw time-stamp counter read on amd64. The
// implementation lives in tsc_amd64.s and is a bare RDTSC — no serializing
// fence, which is fine for interval measurement at this granularity.

package clock

// rdtsc returns the CPU's time-stamp counter.
//
//go:noescape
func rdtsc() uint64

// tscSupported selects the calibrated TSC fast path in TimestampNS.
const tscSupported = true
