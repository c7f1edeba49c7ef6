//go:build !amd64 || noasm

// tsc_stub.go
//
// Portable fall-back for targets without a usable TSC read. TimestampNS
// never calls rdtsc on these builds; the declaration exists so clock.go
// compiles unchanged on every architecture.

package clock

// rdtsc is unreachable on unsupported targets.
func rdtsc() uint64 { return 0 }

// tscSupported routes every read through runtime.nanotime.
const tscSupported = false
