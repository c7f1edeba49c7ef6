// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: clock.go — Monotonic nanosecond clock with cached calibration
//
// Purpose:
//   - Provides the single timestamp primitive the timing wheel consumes:
//     a monotonic nanosecond counter with the lowest overhead the platform
//     offers.
//
// Notes:
//   - On amd64 the raw TSC is read directly and converted through a
//     nanoseconds-per-cycle factor measured once against the runtime clock.
//   - The factor is cached behind a double-checked atomic so concurrent
//     first use calibrates exactly once; a degenerate measurement falls back
//     to a fixed default frequency and is never surfaced to callers.
//   - Calibration state lives in an explicit Clock object constructed at
//     process start and injected into consumers — no package-level lazy
//     statics.
//
// ⚠️ The TSC path assumes an invariant, core-synchronized counter (any
//    post-Nehalem x86). Hosts without that guarantee should construct the
//    clock with noasm builds, which pin every read to runtime.nanotime.
// ─────────────────────────────────────────────────────────────────────────────

package clock

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	// defaultCyclesPerNs stands in when calibration yields a degenerate
	// sample (VM clock jumps, frequency query failure). 3 GHz is a safe
	// midpoint for the deployment fleet.
	defaultCyclesPerNs = 3.0

	// calibrationWindow is how long the TSC is sampled against the runtime
	// clock. Long enough to swamp syscall jitter, short enough for startup.
	calibrationWindow = 2 * time.Millisecond
)

// Clock converts the platform's cheapest monotonic counter into nanoseconds.
// Construct one per process with New and inject it; the zero value is not
// usable on the TSC path.
type Clock struct {
	// nsPerCycleBits holds math.Float64bits of the ns-per-cycle factor.
	// Zero means "not yet calibrated" (a calibrated factor is never 0.0).
	// Published last: readers that observe it non-zero also observe the
	// anchor fields below.
	nsPerCycleBits uint64

	// calibOwner serializes calibration; exactly one caller measures.
	calibOwner uint32

	// baseTSC/baseNs anchor the TSC delta into the runtime clock's domain so
	// TSC and fallback reads stay mutually coherent.
	baseTSC uint64
	baseNs  uint64
}

// New builds a calibrated clock. On amd64 this burns ~2ms measuring the TSC
// rate; on other platforms it returns immediately and every read delegates
// to runtime.nanotime.
func New() *Clock {
	c := &Clock{}
	if tscSupported {
		c.calibrate()
	}
	return c
}

// TimestampNS returns the current monotonic time in nanoseconds. Values are
// comparable only within one process lifetime.
//
//go:nosplit
func (c *Clock) TimestampNS() uint64 {
	if !tscSupported {
		return uint64(nanotime())
	}
	bits := atomic.LoadUint64(&c.nsPerCycleBits)
	if bits == 0 {
		// First use raced ahead of New's calibration (or New was skipped in
		// a test harness). Calibrate once; losers of the race reuse the
		// winner's factor.
		c.calibrate()
		bits = atomic.LoadUint64(&c.nsPerCycleBits)
	}
	delta := rdtsc() - c.baseTSC
	return c.baseNs + uint64(float64(delta)*math.Float64frombits(bits))
}

// calibrate measures nanoseconds-per-cycle against the runtime clock. One
// caller claims ownership and measures; concurrent first users wait on the
// published factor, which is stored last so the anchor fields are visible
// before any reader converts a delta.
func (c *Clock) calibrate() {
	if atomic.LoadUint64(&c.nsPerCycleBits) != 0 {
		return // double-checked: already calibrated
	}
	if !atomic.CompareAndSwapUint32(&c.calibOwner, 0, 1) {
		// Lost the claim: wait for the winner's factor.
		for atomic.LoadUint64(&c.nsPerCycleBits) == 0 {
			time.Sleep(100 * time.Microsecond)
		}
		return
	}

	// Warm the TSC read path before sampling.
	rdtsc()
	rdtsc()

	startTSC := rdtsc()
	startNs := nanotime()
	time.Sleep(calibrationWindow)
	endTSC := rdtsc()
	endNs := nanotime()

	cycles := endTSC - startTSC
	ns := endNs - startNs

	var nsPerCycle float64
	if cycles == 0 || ns <= 0 {
		// Platform query failed or the counter did not advance: recover
		// locally with the default frequency, per the no-surface policy.
		nsPerCycle = 1.0 / defaultCyclesPerNs
	} else {
		nsPerCycle = float64(ns) / float64(cycles)
	}

	c.baseTSC = endTSC
	c.baseNs = uint64(endNs)
	atomic.StoreUint64(&c.nsPerCycleBits, math.Float64bits(nsPerCycle))
}
