// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🧪 STRESS TEST SUITE: HIERARCHICAL TIMING WHEEL
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: HFX Timer Core
// Component: Timing Wheel Stress Validation
//
// Description:
//   High-volume randomized workloads validating accounting invariants: every scheduled timer is
//   eventually executed, cancelled, or still active; nothing is lost or double-counted.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package timewheel

import (
	"math/rand"
	"testing"
	"time"
)

func TestWheelStress_RandomOneShots(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	tw, clk := newTestWheel()
	rng := rand.New(rand.NewSource(42))

	const timers = 50000
	fired := 0
	for i := 0; i < timers; i++ {
		delay := time.Duration(1+rng.Intn(100_000)) * time.Microsecond
		tw.ScheduleOnce(delay, func() { fired++ })
	}

	// Advance well past the longest possible expiry in coarse steps.
	for i := 0; i < 1100; i++ {
		tw.Tick(clk.advance(100 * time.Microsecond))
	}

	if fired != timers {
		t.Fatalf("fired %d of %d timers", fired, timers)
	}
	if tw.ActiveTimerCount() != 0 {
		t.Fatalf("active = %d after drain, want 0", tw.ActiveTimerCount())
	}
	s := tw.GetStatistics()
	if s.TotalScheduled != timers || s.TotalExecuted != timers {
		t.Fatalf("stats scheduled=%d executed=%d, want %d/%d",
			s.TotalScheduled, s.TotalExecuted, timers, timers)
	}
	if len(tw.index) != 0 {
		t.Fatalf("index holds %d stale entries", len(tw.index))
	}
}

func TestWheelStress_InterleavedCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	tw, clk := newTestWheel()
	rng := rand.New(rand.NewSource(7))

	const timers = 20000
	fired := 0
	ids := make([]TimerID, 0, timers)
	for i := 0; i < timers; i++ {
		delay := time.Duration(1+rng.Intn(50_000)) * time.Microsecond
		ids = append(ids, tw.ScheduleOnce(delay, func() { fired++ }))
	}

	// Cancel every third timer before any tick.
	cancelled := 0
	for i := 0; i < timers; i += 3 {
		if tw.CancelTimer(ids[i]) {
			cancelled++
		}
	}

	for i := 0; i < 600; i++ {
		tw.Tick(clk.advance(100 * time.Microsecond))
	}

	if fired+cancelled != timers {
		t.Fatalf("fired(%d) + cancelled(%d) != scheduled(%d)", fired, cancelled, timers)
	}
	s := tw.GetStatistics()
	if s.TotalExecuted != uint64(fired) || s.TotalCancelled != uint64(cancelled) {
		t.Fatalf("stats executed=%d cancelled=%d, want %d/%d",
			s.TotalExecuted, s.TotalCancelled, fired, cancelled)
	}
	if tw.ActiveTimerCount() != 0 || len(tw.index) != 0 {
		t.Fatalf("leftovers: active=%d index=%d", tw.ActiveTimerCount(), len(tw.index))
	}
}

func TestWheelStress_RecurringChurn(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	tw, clk := newTestWheel()
	rng := rand.New(rand.NewSource(99))

	const workers = 500
	fires := make([]int, workers)
	ids := make([]TimerID, workers)
	for i := 0; i < workers; i++ {
		i := i
		interval := time.Duration(50+rng.Intn(1000)) * time.Microsecond
		ids[i] = tw.ScheduleRecurring(interval, func() { fires[i]++ })
	}

	for step := 0; step < 2000; step++ {
		tw.Tick(clk.advance(25 * time.Microsecond))
		// Churn: occasionally cancel one recurring timer mid-flight.
		if step%100 == 50 {
			victim := rng.Intn(workers)
			tw.CancelTimer(ids[victim])
		}
	}

	total := 0
	for i := 0; i < workers; i++ {
		total += fires[i]
	}
	if total == 0 {
		t.Fatal("no recurring fires observed under churn")
	}
	s := tw.GetStatistics()
	if s.TotalExecuted != uint64(total) {
		t.Fatalf("executed stat %d != observed fires %d", s.TotalExecuted, total)
	}
	if tw.ActiveTimerCount() != len(tw.index) {
		t.Fatalf("active count %d diverged from index size %d",
			tw.ActiveTimerCount(), len(tw.index))
	}
}
