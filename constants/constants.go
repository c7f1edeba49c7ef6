// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global Timer-Core Tunables
//
// Purpose:
//   - Defines compile-time constants for the timing wheel, command ring,
//     driver loop, and statistics journal.
//
// Notes:
//   - Tuned for sub-microsecond scheduling granularity with bounded memory
//   - Power-of-2 sizing wherever a value feeds mask arithmetic
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

import "time"

// ───────────────────────────── Wheel Cadence ───────────────────────────────

const (
	// BaseTick is the finest granularity the wheel resolves. One microsecond
	// keeps level-0 slots meaningful for market-data refresh timers while the
	// top level still spans ~4.6 hours (1µs × 256⁴).
	BaseTick = time.Microsecond

	// TickPollInterval bounds how long the driver idles between forced wheel
	// advances when the command ring is empty. Kept far under a level-0
	// revolution so quiet periods never skip slots wholesale.
	TickPollInterval = 50 * time.Microsecond
)

// ──────────────────────────── Command Ring ──────────────────────────────────

const (
	// CommandRingBits sizes the SPSC schedule/cancel ring: 2^12 = 4096 slots.
	// A producer bursting 4K pending commands without the driver draining is
	// already a failure mode; beyond that Push spins politely.
	CommandRingBits = 12
	CommandRingSize = 1 << CommandRingBits
)

// ───────────────────────────── Driver Loop ──────────────────────────────────

const (
	// DriverCore is the logical CPU the wheel-owning thread pins to.
	// Out-of-range values fall back to "no pin" on constrained hosts.
	DriverCore = 2

	// SpinBudget is the number of empty polls before the cold path inserts a
	// CPU relax hint between ring checks.
	SpinBudget = 256

	// HotTimeout is the grace window after the last observed activity during
	// which the driver stays in the tight hot-spin path.
	HotTimeout = 15 * time.Second
)

// ──────────────────────────── Monitoring ────────────────────────────────────

const (
	// HeartbeatInterval is the cadence of the wheel-health snapshot timer.
	// Coarse on purpose: the heartbeat callback runs inline on the driver
	// thread and touches the journal.
	HeartbeatInterval = 1 * time.Second

	// StatsJournalPath is the SQLite journal of wheel statistics snapshots.
	StatsJournalPath = "wheel_stats.db"

	// StatsRecentWindow caps how many snapshots startup diagnostics read back.
	StatsRecentWindow = 64
)

// ─────────────────────────── Memory Guardrails ──────────────────────────────

const (
	// HeapSoftLimit triggers a manual GC pass when exceeded. The timer core
	// allocates only on schedule, so steady state sits far below this.
	HeapSoftLimit = 64 << 20 // 64 MiB

	// HeapHardLimit aborts the process on runaway allocation, surfacing leaks
	// quickly instead of degrading tick latency.
	HeapHardLimit = 256 << 20 // 256 MiB
)
